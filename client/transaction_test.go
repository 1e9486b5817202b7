package client_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kkrt-labs/kakarot-rpc-go/client"
	"github.com/kkrt-labs/kakarot-rpc-go/mocks"
	"github.com/kkrt-labs/kakarot-rpc-go/models"
	"github.com/kkrt-labs/kakarot-rpc-go/starknet"
)

// signedLegacyTx builds and signs a legacy transaction, returning its RLP
// encoding and the sender address.
func signedLegacyTx(t *testing.T, inner *types.LegacyTx) ([]byte, common.Address) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	signer := types.LatestSignerForChainID(big.NewInt(0x4b4b5254))
	tx, err := types.SignNewTx(key, signer, inner)
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return raw, crypto.PubkeyToAddress(key.PublicKey)
}

func TestSendTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	cfg := testConfig(t)
	c := newTestClient(t, cfg, mockProvider)

	dest := common.HexToAddress("0x2e11ed82f5ec165ab8ce3cc094f025fe7527f4d1")
	payload := []byte{0xca, 0xfe}
	raw, sender := signedLegacyTx(t, &types.LegacyTx{
		Nonce:    7,
		To:       &dest,
		Value:    big.NewInt(1000),
		Gas:      21000,
		GasPrice: big.NewInt(2_000_000_000),
		Data:     payload,
	})

	senderContract := hexToFelt(t, "0xfeed")
	starknetHash := hexToFelt(t, "0x32403ed356c033d52200c0f4b1fbbcfc4f4d0a4d309a5eb1ac52f1f4e9d32a")

	mockProvider.EXPECT().
		Call(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, call rpc.FunctionCall, blockID rpc.BlockID) ([]*felt.Felt, error) {
			// Resolution targets the recovered sender at the latest block.
			assert.Equal(t, "latest", string(blockID.Tag))
			require.Len(t, call.Calldata, 1)
			assert.True(t, call.Calldata[0].Equal(models.EthAddressToFelt(sender)))
			return []*felt.Felt{senderContract}, nil
		})
	mockProvider.EXPECT().
		AddInvokeTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txn rpc.BroadcastInvokev1Txn) (*felt.Felt, error) {
			assert.True(t, txn.SenderAddress.Equal(senderContract))
			assert.True(t, txn.Nonce.Equal(new(felt.Felt).SetUint64(7)))
			require.Len(t, txn.Signature, 5)

			uintFelt := func(v uint64) *felt.Felt { return new(felt.Felt).SetUint64(v) }
			calldata := txn.Calldata
			require.Len(t, calldata, 11+len(payload))
			assert.True(t, calldata[0].Equal(uintFelt(1)))
			assert.True(t, calldata[1].Equal(cfg.KakarotAddress))
			assert.True(t, calldata[2].Equal(client.DefaultSelectors().EthSendTransaction))
			assert.True(t, calldata[3].IsZero())
			assert.True(t, calldata[4].Equal(uintFelt(uint64(5+len(payload)))))
			assert.True(t, calldata[5].Equal(uintFelt(uint64(5+len(payload)))))
			assert.True(t, calldata[6].Equal(models.EthAddressToFelt(dest)))
			assert.True(t, calldata[7].Equal(uintFelt(21000)))
			assert.True(t, calldata[8].Equal(uintFelt(2_000_000_000)))
			assert.True(t, calldata[9].Equal(uintFelt(1000)))
			assert.True(t, calldata[10].Equal(uintFelt(uint64(len(payload)))))
			assert.Equal(t, payload, models.FeltsToBytes(calldata[11:]))

			return starknetHash, nil
		})

	hash, err := c.SendTransaction(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, models.FeltToHash(starknetHash), hash)
}

func TestSendTransactionContractCreation(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, testConfig(t), mockProvider)

	raw, _ := signedLegacyTx(t, &types.LegacyTx{
		Gas:      1_000_000,
		GasPrice: big.NewInt(1),
		Data:     []byte{0x60, 0x80},
	})

	expectResolve(mockProvider, hexToFelt(t, "0xfeed"))
	mockProvider.EXPECT().
		AddInvokeTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txn rpc.BroadcastInvokev1Txn) (*felt.Felt, error) {
			// A nil destination travels as the zero felt.
			assert.True(t, txn.Calldata[6].IsZero())
			return hexToFelt(t, "0x1"), nil
		})

	_, err := c.SendTransaction(context.Background(), raw)
	require.NoError(t, err)
}

func TestSendTransactionUndeployedSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, testConfig(t), mockProvider)

	raw, sender := signedLegacyTx(t, &types.LegacyTx{Gas: 21000, GasPrice: big.NewInt(1)})

	expectResolve(mockProvider, &felt.Zero)

	_, err := c.SendTransaction(context.Background(), raw)
	var preconditionErr *client.PreconditionError
	require.ErrorAs(t, err, &preconditionErr)
	assert.Equal(t, sender, preconditionErr.Address)
}

func TestSendTransactionMalformedPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := newTestClient(t, testConfig(t), mocks.NewMockProvider(ctrl))

	_, err := c.SendTransaction(context.Background(), []byte{0xde, 0xad})
	require.Error(t, err)
}

// pollConfig shortens the confirmation loop so terminal-state tests finish
// quickly.
func pollConfig(t *testing.T) client.Config {
	cfg := testConfig(t)
	cfg.PollInterval = 2 * time.Millisecond
	cfg.PollTimeout = 200 * time.Millisecond
	return cfg
}

var testTxHash = common.HexToHash("0x32403ed356c033d52200c0f4b1fbbcfc4f4d0a4d309a5eb1ac52f1f4e9d32a")

func TestTransactionReceiptAccepted(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, pollConfig(t), mockProvider)

	blockHash := hexToFelt(t, "0x7777")

	// Not yet seen, then pending, then accepted.
	mockProvider.EXPECT().
		TransactionStatus(gomock.Any(), gomock.Any()).
		Return(nil, &rpc.RPCError{Code: 29, Message: "Transaction hash not found"})
	mockProvider.EXPECT().
		TransactionStatus(gomock.Any(), gomock.Any()).
		Return(&starknet.TxStatus{Finality: starknet.FinalityReceived}, nil)
	mockProvider.EXPECT().
		TransactionStatus(gomock.Any(), gomock.Any()).
		Return(&starknet.TxStatus{
			Finality:  starknet.FinalityAcceptedOnL2,
			Execution: starknet.ExecutionSucceeded,
		}, nil)
	mockProvider.EXPECT().
		TransactionReceipt(gomock.Any(), gomock.Any()).
		Return(&starknet.TxReceipt{
			BlockHash:       blockHash,
			BlockNumber:     128,
			ExecutionStatus: starknet.ExecutionSucceeded,
		}, nil)

	receipt, err := c.TransactionReceipt(context.Background(), testTxHash)
	require.NoError(t, err)
	assert.Equal(t, testTxHash, receipt.TxHash)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	assert.Equal(t, uint64(128), receipt.BlockNumber)
	assert.Equal(t, models.FeltToHash(blockHash), receipt.BlockHash)
	assert.Empty(t, receipt.RevertReason)
}

func TestTransactionReceiptRevertedInBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, pollConfig(t), mockProvider)

	mockProvider.EXPECT().
		TransactionStatus(gomock.Any(), gomock.Any()).
		Return(&starknet.TxStatus{
			Finality:  starknet.FinalityAcceptedOnL2,
			Execution: starknet.ExecutionReverted,
		}, nil)
	mockProvider.EXPECT().
		TransactionReceipt(gomock.Any(), gomock.Any()).
		Return(&starknet.TxReceipt{
			BlockNumber:     42,
			ExecutionStatus: starknet.ExecutionReverted,
			RevertReason:    "out of gas",
		}, nil)

	receipt, err := c.TransactionReceipt(context.Background(), testTxHash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
	assert.Equal(t, "out of gas", receipt.RevertReason)
}

func TestTransactionReceiptRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, pollConfig(t), mockProvider)

	mockProvider.EXPECT().
		TransactionStatus(gomock.Any(), gomock.Any()).
		Return(&starknet.TxStatus{
			Finality:      starknet.FinalityRejected,
			FailureReason: "invalid signature",
		}, nil)

	receipt, err := c.TransactionReceipt(context.Background(), testTxHash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusFailed, receipt.Status)
	assert.Equal(t, "invalid signature", receipt.RevertReason)
	assert.Equal(t, common.Hash{}, receipt.BlockHash)
}

func TestTransactionReceiptTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)

	cfg := pollConfig(t)
	cfg.PollTimeout = 20 * time.Millisecond
	c := newTestClient(t, cfg, mockProvider)

	mockProvider.EXPECT().
		TransactionStatus(gomock.Any(), gomock.Any()).
		Return(&starknet.TxStatus{Finality: starknet.FinalityReceived}, nil).
		AnyTimes()

	_, err := c.TransactionReceipt(context.Background(), testTxHash)
	var timeoutErr *client.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, testTxHash, timeoutErr.TxHash)
}

func TestTransactionReceiptContextCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, pollConfig(t), mockProvider)

	mockProvider.EXPECT().
		TransactionStatus(gomock.Any(), gomock.Any()).
		Return(&starknet.TxStatus{Finality: starknet.FinalityReceived}, nil).
		AnyTimes()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.TransactionReceipt(ctx, testTxHash)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTransactionReceiptHashLostAfterPending(t *testing.T) {
	// A hash that vanishes after the ledger acknowledged it is an error, not
	// something to keep polling for.
	ctrl := gomock.NewController(t)
	mockProvider := mocks.NewMockProvider(ctrl)
	c := newTestClient(t, pollConfig(t), mockProvider)

	mockProvider.EXPECT().
		TransactionStatus(gomock.Any(), gomock.Any()).
		Return(&starknet.TxStatus{Finality: starknet.FinalityReceived}, nil)
	mockProvider.EXPECT().
		TransactionStatus(gomock.Any(), gomock.Any()).
		Return(nil, &rpc.RPCError{Code: 29, Message: "Transaction hash not found"})

	_, err := c.TransactionReceipt(context.Background(), testTxHash)
	require.ErrorContains(t, err, "not found")
}
