package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/kkrt-labs/kakarot-rpc-go/models"
	"github.com/kkrt-labs/kakarot-rpc-go/starknet"
)

// Receipt is the Ethereum-shaped terminal record of a submitted transaction.
// Status follows go-ethereum's convention: 1 succeeded, 0 reverted.
type Receipt struct {
	TxHash       common.Hash
	BlockHash    common.Hash
	BlockNumber  uint64
	Status       uint64
	RevertReason string
}

// confirmationState tracks a submitted transaction through the polling loop:
// Submitted -> Pending -> {Accepted | Rejected | TimedOut}.
type confirmationState uint8

const (
	stateSubmitted confirmationState = iota
	statePending
)

// SendTransaction re-expresses a signed Ethereum transaction as a StarkNet
// invocation from the sender's account contract and submits it. It returns
// the invocation hash immediately; confirmation is TransactionReceipt's job.
// The sender's account contract must already be deployed: this client does
// not deploy accounts lazily.
func (c *Client) SendTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, fmt.Errorf("decode transaction: %w", err)
	}

	sender, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("recover sender: %w", err)
	}

	blockID, err := models.StarknetBlockID(ethrpc.BlockNumberOrHashWithNumber(ethrpc.LatestBlockNumber))
	if err != nil {
		return common.Hash{}, err
	}
	senderContract, err := c.resolveContractAddress(ctx, sender, blockID)
	if errors.Is(err, ErrNotDeployed) {
		return common.Hash{}, &PreconditionError{Address: sender, Op: "send transaction"}
	} else if err != nil {
		return common.Hash{}, err
	}

	calldata, err := c.invokeCalldata(tx)
	if err != nil {
		return common.Hash{}, err
	}
	signature, err := signatureFelts(tx)
	if err != nil {
		return common.Hash{}, err
	}

	invoke := rpc.BroadcastInvokev1Txn{
		InvokeTxnV1: rpc.InvokeTxnV1{
			Type:          rpc.TransactionType_Invoke,
			Version:       rpc.TransactionV1,
			MaxFee:        c.cfg.MaxFee,
			SenderAddress: senderContract,
			Nonce:         new(felt.Felt).SetUint64(tx.Nonce()),
			Signature:     signature,
			Calldata:      calldata,
		},
	}

	txHash, err := c.provider.AddInvokeTransaction(ctx, invoke)
	if err != nil {
		return common.Hash{}, translateProviderError("starknet_addInvokeTransaction", err)
	}

	handle := models.FeltToHash(txHash)
	c.listener.OnTransactionSubmitted(handle)
	c.log.Debugw("Submitted transaction", "ethSender", sender.Hex(), "starknetHash", txHash.String())
	return handle, nil
}

// TransactionReceipt polls the target ledger until the transaction behind the
// handle reaches a terminal state, then returns its Ethereum-shaped receipt.
// The loop always terminates: terminal status, context cancellation, or the
// configured timeout, whichever first. A timeout means the transaction's fate
// is unknown, not that it failed.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	txHash, err := models.HashToFelt(hash)
	if err != nil {
		return nil, err
	}

	state := stateSubmitted
	start := time.Now()
	timeout := time.NewTimer(c.cfg.PollTimeout)
	defer timeout.Stop()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := c.provider.TransactionStatus(ctx, txHash)
		if err != nil {
			translated := translateProviderError("starknet_getTransactionStatus", err)
			// The ledger may not have seen the hash yet right after
			// submission; anything else is fatal for this call.
			if !errors.Is(translated, errTxnNotFound) || state != stateSubmitted {
				return nil, translated
			}
		} else {
			switch status.Finality {
			case starknet.FinalityReceived:
				if state == stateSubmitted {
					state = statePending
					c.log.Debugw("Transaction pending", "hash", hash.Hex())
				}
			case starknet.FinalityRejected:
				return &Receipt{
					TxHash:       hash,
					Status:       types.ReceiptStatusFailed,
					RevertReason: status.FailureReason,
				}, nil
			case starknet.FinalityAcceptedOnL2, starknet.FinalityAcceptedOnL1:
				return c.acceptedReceipt(ctx, hash, txHash)
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			return nil, &TimeoutError{TxHash: hash, Elapsed: time.Since(start)}
		case <-ticker.C:
		}
	}
}

// acceptedReceipt fetches the full receipt of an accepted transaction; the
// execution may still have reverted inside the block.
func (c *Client) acceptedReceipt(ctx context.Context, hash common.Hash, txHash *felt.Felt) (*Receipt, error) {
	rec, err := c.provider.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, translateProviderError("starknet_getTransactionReceipt", err)
	}

	receipt := &Receipt{
		TxHash:      hash,
		BlockNumber: rec.BlockNumber,
		Status:      types.ReceiptStatusSuccessful,
	}
	if rec.BlockHash != nil {
		receipt.BlockHash = models.FeltToHash(rec.BlockHash)
	}
	if rec.ExecutionStatus == starknet.ExecutionReverted {
		receipt.Status = types.ReceiptStatusFailed
		receipt.RevertReason = rec.RevertReason
	}
	return receipt, nil
}

// invokeCalldata wraps the Ethereum transaction fields into the account
// contract's call array, targeting the core contract's external-invoke
// entrypoint:
//
//	[1, kakarot, eth_send_transaction, 0, n, n,
//	 to, gas_limit, gas_price, value, payload_len, payload...]
//
// A nil destination (contract creation) is carried as the zero felt.
func (c *Client) invokeCalldata(tx *types.Transaction) ([]*felt.Felt, error) {
	payload := tx.Data()

	to := new(felt.Felt)
	if dst := tx.To(); dst != nil {
		to = models.EthAddressToFelt(*dst)
	}
	value, err := models.FeltFromBig(tx.Value())
	if err != nil {
		return nil, fmt.Errorf("transaction value: %w", err)
	}
	gasPrice, err := models.FeltFromBig(tx.GasPrice())
	if err != nil {
		return nil, fmt.Errorf("transaction gas price: %w", err)
	}

	innerLen := uint64(5 + len(payload))
	calldata := make([]*felt.Felt, 0, 6+innerLen)
	calldata = append(calldata,
		new(felt.Felt).SetUint64(1), // one call in the array
		c.cfg.KakarotAddress,
		c.cfg.Selectors.EthSendTransaction,
		new(felt.Felt), // data offset
		new(felt.Felt).SetUint64(innerLen),
		new(felt.Felt).SetUint64(innerLen),
		to,
		new(felt.Felt).SetUint64(tx.Gas()),
		gasPrice,
		value,
		new(felt.Felt).SetUint64(uint64(len(payload))),
	)
	return append(calldata, models.BytesToFelts(payload)...), nil
}

// signatureFelts re-encodes the secp256k1 signature for the account
// contract's validation: r and s split into 128-bit limbs, then v.
func signatureFelts(tx *types.Transaction) ([]*felt.Felt, error) {
	v, r, s := tx.RawSignatureValues()

	rLow, rHigh, err := models.U256ToFelts(r)
	if err != nil {
		return nil, fmt.Errorf("signature r: %w", err)
	}
	sLow, sHigh, err := models.U256ToFelts(s)
	if err != nil {
		return nil, fmt.Errorf("signature s: %w", err)
	}
	vFelt, err := models.FeltFromBig(v)
	if err != nil {
		return nil, fmt.Errorf("signature v: %w", err)
	}
	return []*felt.Felt{rLow, rHigh, sLow, sHigh, vFelt}, nil
}
