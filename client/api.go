package client

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethrpc "github.com/ethereum/go-ethereum/rpc"
)

// EthAPI is the Ethereum-shaped surface the JSON-RPC layer exposes. Reads
// against addresses with no deployed account return the zero value of their
// type; Call and SendTransaction instead fail with PreconditionError.
type EthAPI interface {
	ChainID(ctx context.Context) (*big.Int, error)
	Nonce(ctx context.Context, address common.Address, blockNrOrHash ethrpc.BlockNumberOrHash) (*big.Int, error)
	Balance(ctx context.Context, address common.Address, blockNrOrHash ethrpc.BlockNumberOrHash) (*big.Int, error)
	CodeAt(ctx context.Context, address common.Address, blockNrOrHash ethrpc.BlockNumberOrHash) ([]byte, error)
	StorageAt(ctx context.Context, address common.Address, slot common.Hash, blockNrOrHash ethrpc.BlockNumberOrHash) (common.Hash, error)
	Call(ctx context.Context, address common.Address, calldata []byte, blockNrOrHash ethrpc.BlockNumberOrHash) ([]byte, error)
	SendTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
}

var _ EthAPI = (*Client)(nil)
