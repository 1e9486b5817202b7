package models

import (
	"errors"
	"fmt"

	starknetrpc "github.com/NethermindEth/starknet.go/rpc"
	ethrpc "github.com/ethereum/go-ethereum/rpc"
)

var ErrInvalidBlockID = errors.New("invalid block identifier")

// StarknetBlockID maps an Ethereum block reference onto the StarkNet block
// identification scheme. Kakarot blocks are StarkNet blocks, so numbers pass
// through unchanged and an Ethereum-side block hash is read as the StarkNet
// block hash. The "safe" and "finalized" tags have no StarkNet counterpart at
// this layer and collapse to "latest"; "pending" maps to the StarkNet pending
// block, and "earliest" to block zero.
func StarknetBlockID(blockID ethrpc.BlockNumberOrHash) (starknetrpc.BlockID, error) {
	if hash, ok := blockID.Hash(); ok {
		hashFelt, err := HashToFelt(hash)
		if err != nil {
			return starknetrpc.BlockID{}, fmt.Errorf("%w: %v", ErrInvalidBlockID, err)
		}
		return starknetrpc.WithBlockHash(hashFelt), nil
	}

	number, ok := blockID.Number()
	if !ok {
		return starknetrpc.BlockID{}, fmt.Errorf("%w: neither number nor hash set", ErrInvalidBlockID)
	}

	switch number {
	case ethrpc.LatestBlockNumber, ethrpc.SafeBlockNumber, ethrpc.FinalizedBlockNumber:
		return starknetrpc.WithBlockTag("latest"), nil
	case ethrpc.PendingBlockNumber:
		return starknetrpc.WithBlockTag("pending"), nil
	case ethrpc.EarliestBlockNumber:
		return starknetrpc.WithBlockNumber(0), nil
	default:
		if number < 0 {
			return starknetrpc.BlockID{}, fmt.Errorf("%w: unknown tag %d", ErrInvalidBlockID, number)
		}
		return starknetrpc.WithBlockNumber(uint64(number)), nil
	}
}
