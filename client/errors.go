package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/ethereum/go-ethereum/common"
)

// StarkNet JSON-RPC error codes, fixed by the starknet_api_openrpc spec.
const (
	codeContractNotFound  = 20
	codeHashNotFound      = 29
	codeContractError     = 40
	codeTxnExecutionError = 41
	codeValidationFailure = 55
)

// ErrNotDeployed marks an Ethereum address with no account contract behind it.
// State reads recover it locally by returning the zero value; it never crosses
// the public API.
var ErrNotDeployed = errors.New("starknet contract not deployed for address")

// errTxnNotFound is returned while a submitted transaction has not yet been
// picked up by the ledger; the receipt poller keeps waiting on it.
var errTxnNotFound = errors.New("transaction hash not found")

// PreconditionError reports an operation that requires a deployed account
// contract where none exists. Unlike state reads, there is no meaningful zero
// result for executing against a missing contract.
type PreconditionError struct {
	Address common.Address
	Op      string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: no account contract deployed for %s", e.Op, e.Address.Hex())
}

// TransportError wraps an unreachable endpoint or a malformed response. The
// call that produced it is safe to retry; the client never retries it itself.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RevertError carries an on-chain execution failure and whatever reason the
// ledger supplied.
type RevertError struct {
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return "execution reverted"
	}
	return "execution reverted: " + e.Reason
}

// TimeoutError means receipt polling exhausted its bound. The transaction's
// fate is unknown: it is neither confirmed nor lost.
type TimeoutError struct {
	TxHash  common.Hash
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no terminal status for transaction %s after %v", e.TxHash.Hex(), e.Elapsed)
}

// translateProviderError is the single mapping point from target-ledger
// failures into the client's taxonomy. Every provider call routes its error
// through here so the absent-account policy cannot drift between methods.
func translateProviderError(method string, err error) error {
	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case codeContractNotFound:
			return ErrNotDeployed
		case codeHashNotFound:
			return errTxnNotFound
		case codeContractError, codeTxnExecutionError, codeValidationFailure:
			return &RevertError{Reason: revertReason(rpcErr)}
		}
	}
	return &TransportError{Method: method, Err: err}
}

func revertReason(rpcErr *rpc.RPCError) string {
	if rpcErr.Data != nil {
		return fmt.Sprintf("%v", rpcErr.Data)
	}
	return rpcErr.Message
}
