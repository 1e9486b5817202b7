package client

import (
	"context"
	"errors"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/ethereum/go-ethereum/common"
	ethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/kkrt-labs/kakarot-rpc-go/models"
)

// Call simulates EVM execution against the contract behind the given address
// and returns its return data. Executing against a nonexistent contract has
// no empty-result reading, so an undeployed target is a PreconditionError
// here, unlike the zero-returning state reads.
func (c *Client) Call(ctx context.Context, address common.Address, calldata []byte, blockNrOrHash ethrpc.BlockNumberOrHash) ([]byte, error) {
	blockID, err := models.StarknetBlockID(blockNrOrHash)
	if err != nil {
		return nil, err
	}

	contractAddress, err := c.resolveContractAddress(ctx, address, blockID)
	if errors.Is(err, ErrNotDeployed) {
		return nil, &PreconditionError{Address: address, Op: "call"}
	} else if err != nil {
		return nil, err
	}

	args := make([]*felt.Felt, 0, len(calldata)+1)
	args = append(args, new(felt.Felt).SetUint64(uint64(len(calldata))))
	args = append(args, models.BytesToFelts(calldata)...)

	call := rpc.FunctionCall{
		ContractAddress:    contractAddress,
		EntryPointSelector: c.cfg.Selectors.EthCall,
		Calldata:           args,
	}
	result, err := c.starknetCall(ctx, "eth_call", call, blockID)
	if err != nil {
		return nil, err
	}
	return decodeByteArray("eth_call", result)
}
