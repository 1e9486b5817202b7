// Package starknet narrows the target-ledger RPC surface to the handful of
// operations the Kakarot client needs, so the client can be exercised against
// a mock and the starknet.go dependency stays confined to one adapter.
package starknet

import (
	"context"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
)

type FinalityStatus string

const (
	FinalityReceived     FinalityStatus = "RECEIVED"
	FinalityRejected     FinalityStatus = "REJECTED"
	FinalityAcceptedOnL2 FinalityStatus = "ACCEPTED_ON_L2"
	FinalityAcceptedOnL1 FinalityStatus = "ACCEPTED_ON_L1"
)

type ExecutionStatus string

const (
	ExecutionSucceeded ExecutionStatus = "SUCCEEDED"
	ExecutionReverted  ExecutionStatus = "REVERTED"
)

// TxStatus is the current view of a submitted transaction. Execution is only
// meaningful once Finality is one of the accepted states.
type TxStatus struct {
	Finality      FinalityStatus
	Execution     ExecutionStatus
	FailureReason string
}

func (s *TxStatus) Terminal() bool {
	switch s.Finality {
	case FinalityAcceptedOnL2, FinalityAcceptedOnL1, FinalityRejected:
		return true
	default:
		return false
	}
}

// TxReceipt is the confirmed record of an included transaction.
type TxReceipt struct {
	TransactionHash *felt.Felt
	BlockHash       *felt.Felt
	BlockNumber     uint64
	ExecutionStatus ExecutionStatus
	RevertReason    string
}

//go:generate mockgen -destination=../mocks/mock_provider.go -package=mocks github.com/kkrt-labs/kakarot-rpc-go/starknet Provider
type Provider interface {
	// Call executes a read-only entrypoint at the given block.
	Call(ctx context.Context, call rpc.FunctionCall, blockID rpc.BlockID) ([]*felt.Felt, error)
	// Nonce returns the protocol-level nonce of a deployed contract.
	Nonce(ctx context.Context, blockID rpc.BlockID, contractAddress *felt.Felt) (*felt.Felt, error)
	// AddInvokeTransaction submits a signed invoke and returns its hash.
	AddInvokeTransaction(ctx context.Context, txn rpc.BroadcastInvokev1Txn) (*felt.Felt, error)
	// TransactionStatus reports the finality/execution state of a transaction.
	TransactionStatus(ctx context.Context, hash *felt.Felt) (*TxStatus, error)
	// TransactionReceipt fetches the receipt of an included transaction.
	TransactionReceipt(ctx context.Context, hash *felt.Felt) (*TxReceipt, error)
	// ChainID returns the target ledger's chain identifier string.
	ChainID(ctx context.Context) (string, error)
}
