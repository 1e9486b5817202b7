package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	snutils "github.com/NethermindEth/starknet.go/utils"
	"github.com/ethereum/go-ethereum/common"
	ethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/kkrt-labs/kakarot-rpc-go/models"
)

// Nonce returns the transaction count of an Ethereum address. An address with
// no deployed account contract reads as zero, matching Ethereum semantics for
// absent accounts.
func (c *Client) Nonce(ctx context.Context, address common.Address, blockNrOrHash ethrpc.BlockNumberOrHash) (*big.Int, error) {
	blockID, err := models.StarknetBlockID(blockNrOrHash)
	if err != nil {
		return nil, err
	}

	contractAddress, err := c.resolveContractAddress(ctx, address, blockID)
	if errors.Is(err, ErrNotDeployed) {
		return new(big.Int), nil
	} else if err != nil {
		return nil, err
	}

	nonce, err := c.provider.Nonce(ctx, blockID, contractAddress)
	if err != nil {
		if translated := translateProviderError("starknet_getNonce", err); !errors.Is(translated, ErrNotDeployed) {
			return nil, translated
		}
		// The registry answered but the contract is gone at this block;
		// absent reads as zero here too.
		return new(big.Int), nil
	}
	return snutils.FeltToBigInt(nonce), nil
}

// Balance returns the native token balance of an Ethereum address, zero when
// no account is deployed.
func (c *Client) Balance(ctx context.Context, address common.Address, blockNrOrHash ethrpc.BlockNumberOrHash) (*big.Int, error) {
	blockID, err := models.StarknetBlockID(blockNrOrHash)
	if err != nil {
		return nil, err
	}

	contractAddress, err := c.resolveContractAddress(ctx, address, blockID)
	if errors.Is(err, ErrNotDeployed) {
		return new(big.Int), nil
	} else if err != nil {
		return nil, err
	}

	call := rpc.FunctionCall{
		ContractAddress:    c.cfg.KakarotAddress,
		EntryPointSelector: c.cfg.Selectors.BalanceOf,
		Calldata:           []*felt.Felt{contractAddress},
	}
	result, err := c.starknetCall(ctx, "balance_of", call, blockID)
	if err != nil {
		return nil, err
	}
	if len(result) != 2 {
		return nil, &TransportError{
			Method: "balance_of",
			Err:    fmt.Errorf("expected a u256 (2 felts), got %d", len(result)),
		}
	}
	balance, err := models.U256FromFelts(result[0], result[1])
	if err != nil {
		return nil, &TransportError{Method: "balance_of", Err: err}
	}
	return balance, nil
}

// CodeAt returns the EVM bytecode stored for an Ethereum address, empty when
// no account is deployed.
func (c *Client) CodeAt(ctx context.Context, address common.Address, blockNrOrHash ethrpc.BlockNumberOrHash) ([]byte, error) {
	blockID, err := models.StarknetBlockID(blockNrOrHash)
	if err != nil {
		return nil, err
	}

	contractAddress, err := c.resolveContractAddress(ctx, address, blockID)
	if errors.Is(err, ErrNotDeployed) {
		return []byte{}, nil
	} else if err != nil {
		return nil, err
	}

	call := rpc.FunctionCall{
		ContractAddress:    contractAddress,
		EntryPointSelector: c.cfg.Selectors.Bytecode,
	}
	result, err := c.starknetCall(ctx, "bytecode", call, blockID)
	if err != nil {
		return nil, err
	}
	return decodeByteArray("bytecode", result)
}

// StorageAt returns the 32-byte word stored at an EVM slot, zero when no
// account is deployed.
func (c *Client) StorageAt(ctx context.Context, address common.Address, slot common.Hash, blockNrOrHash ethrpc.BlockNumberOrHash) (common.Hash, error) {
	blockID, err := models.StarknetBlockID(blockNrOrHash)
	if err != nil {
		return common.Hash{}, err
	}

	contractAddress, err := c.resolveContractAddress(ctx, address, blockID)
	if errors.Is(err, ErrNotDeployed) {
		return common.Hash{}, nil
	} else if err != nil {
		return common.Hash{}, err
	}

	slotLow, slotHigh, err := models.U256ToFelts(new(big.Int).SetBytes(slot.Bytes()))
	if err != nil {
		return common.Hash{}, err
	}

	call := rpc.FunctionCall{
		ContractAddress:    contractAddress,
		EntryPointSelector: c.cfg.Selectors.Storage,
		Calldata:           []*felt.Felt{slotLow, slotHigh},
	}
	result, err := c.starknetCall(ctx, "storage", call, blockID)
	if err != nil {
		return common.Hash{}, err
	}
	if len(result) != 2 {
		return common.Hash{}, &TransportError{
			Method: "storage",
			Err:    fmt.Errorf("expected a u256 (2 felts), got %d", len(result)),
		}
	}
	value, err := models.U256FromFelts(result[0], result[1])
	if err != nil {
		return common.Hash{}, &TransportError{Method: "storage", Err: err}
	}
	return common.BigToHash(value), nil
}

// decodeByteArray unpacks the Kakarot (len, bytes...) return convention.
func decodeByteArray(method string, result []*felt.Felt) ([]byte, error) {
	if len(result) == 0 {
		return nil, &TransportError{Method: method, Err: errors.New("empty response")}
	}
	if !result[0].Equal(new(felt.Felt).SetUint64(uint64(len(result) - 1))) {
		return nil, &TransportError{
			Method: method,
			Err:    fmt.Errorf("declared length %s does not match %d felts", result[0].String(), len(result)-1),
		}
	}
	return models.FeltsToBytes(result[1:]), nil
}
