package client_test

import (
	"context"
	"testing"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kkrt-labs/kakarot-rpc-go/client"
	"github.com/kkrt-labs/kakarot-rpc-go/mocks"
	"github.com/kkrt-labs/kakarot-rpc-go/models"
)

func TestCallUndeployedTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, testConfig(t), mockProvider)

	expectResolve(mockProvider, &felt.Zero)

	_, err := c.Call(context.Background(), testAddress, []byte{0x01}, latestBlock)
	var preconditionErr *client.PreconditionError
	require.ErrorAs(t, err, &preconditionErr)
	assert.Equal(t, testAddress, preconditionErr.Address)
}

func TestCallReturnsData(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, testConfig(t), mockProvider)

	contract := hexToFelt(t, "0xabc123")
	calldata := []byte{0x70, 0xa0, 0x82, 0x31} // balanceOf(address) selector
	returndata := []byte{0x00, 0x2a}

	expectResolve(mockProvider, contract)
	mockProvider.EXPECT().
		Call(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, call rpc.FunctionCall, _ rpc.BlockID) ([]*felt.Felt, error) {
			assert.True(t, call.ContractAddress.Equal(contract))
			// Calldata is length-prefixed, one byte per felt.
			require.Len(t, call.Calldata, len(calldata)+1)
			assert.True(t, call.Calldata[0].Equal(new(felt.Felt).SetUint64(uint64(len(calldata)))))
			assert.Equal(t, calldata, models.FeltsToBytes(call.Calldata[1:]))

			response := []*felt.Felt{new(felt.Felt).SetUint64(uint64(len(returndata)))}
			return append(response, models.BytesToFelts(returndata)...), nil
		})

	result, err := c.Call(context.Background(), testAddress, calldata, latestBlock)
	require.NoError(t, err)
	assert.Equal(t, returndata, result)
}

func TestCallReverted(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, testConfig(t), mockProvider)

	expectResolve(mockProvider, hexToFelt(t, "0xabc123"))
	mockProvider.EXPECT().
		Call(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &rpc.RPCError{Code: 40, Message: "Contract error", Data: "Kakarot: transfer amount exceeds balance"})

	_, err := c.Call(context.Background(), testAddress, nil, latestBlock)
	var revertErr *client.RevertError
	require.ErrorAs(t, err, &revertErr)
	assert.Contains(t, revertErr.Reason, "exceeds balance")
}
