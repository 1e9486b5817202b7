package starknet

import (
	"context"
	"fmt"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
)

// RPCProvider adapts starknet.go's JSON-RPC provider to the Provider
// interface. It is stateless and safe for concurrent use.
type RPCProvider struct {
	provider *rpc.Provider
}

var _ Provider = (*RPCProvider)(nil)

func NewRPCProvider(endpoint string) (*RPCProvider, error) {
	provider, err := rpc.NewProvider(endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial starknet provider at %s: %w", endpoint, err)
	}
	return &RPCProvider{provider: provider}, nil
}

func (p *RPCProvider) Call(ctx context.Context, call rpc.FunctionCall, blockID rpc.BlockID) ([]*felt.Felt, error) {
	return p.provider.Call(ctx, call, blockID)
}

func (p *RPCProvider) Nonce(ctx context.Context, blockID rpc.BlockID, contractAddress *felt.Felt) (*felt.Felt, error) {
	return p.provider.Nonce(ctx, blockID, contractAddress)
}

func (p *RPCProvider) AddInvokeTransaction(ctx context.Context, txn rpc.BroadcastInvokev1Txn) (*felt.Felt, error) {
	resp, err := p.provider.AddInvokeTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}
	return resp.TransactionHash, nil
}

func (p *RPCProvider) TransactionStatus(ctx context.Context, hash *felt.Felt) (*TxStatus, error) {
	resp, err := p.provider.GetTransactionStatus(ctx, hash)
	if err != nil {
		return nil, err
	}

	// The status endpoint does not carry a rejection reason; it only shows
	// up on the full receipt.
	return &TxStatus{
		Finality:  FinalityStatus(resp.FinalityStatus),
		Execution: ExecutionStatus(resp.ExecutionStatus),
	}, nil
}

func (p *RPCProvider) TransactionReceipt(ctx context.Context, hash *felt.Felt) (*TxReceipt, error) {
	resp, err := p.provider.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}

	return &TxReceipt{
		TransactionHash: resp.TransactionReceipt.TransactionHash,
		BlockHash:       resp.BlockHash,
		BlockNumber:     uint64(resp.BlockNumber),
		ExecutionStatus: ExecutionStatus(resp.TransactionReceipt.ExecutionStatus),
		RevertReason:    resp.TransactionReceipt.RevertReason,
	}, nil
}

func (p *RPCProvider) ChainID(ctx context.Context) (string, error) {
	return p.provider.ChainID(ctx)
}
