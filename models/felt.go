// Package models translates between Kakarot's Ethereum-facing representations
// and the StarkNet-native ones: 20-byte addresses, 256-bit words and byte
// arrays on one side, felt252 values and felt arrays on the other.
package models

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/NethermindEth/juno/core/felt"
	snutils "github.com/NethermindEth/starknet.go/utils"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrFeltOverflow = errors.New("felt does not fit the target type")
	ErrU256Overflow = errors.New("value does not fit a u256")

	// Cairo uint256 values are carried as two 128-bit limbs.
	maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// EthAddressToFelt lifts a 20-byte Ethereum address into the StarkNet field.
// An address always fits: felt252 holds anything below 2^251.
func EthAddressToFelt(address common.Address) *felt.Felt {
	return new(felt.Felt).SetBytes(address.Bytes())
}

// FeltToEthAddress truncation-checks a felt back into an Ethereum address.
func FeltToEthAddress(f *felt.Felt) (common.Address, error) {
	b := f.Bytes()
	for _, v := range b[:common.HashLength-common.AddressLength] {
		if v != 0 {
			return common.Address{}, fmt.Errorf("%w: %s exceeds 20 bytes", ErrFeltOverflow, f.String())
		}
	}
	return common.BytesToAddress(b[common.HashLength-common.AddressLength:]), nil
}

// U256FromFelts recombines a Cairo uint256 (low, high) pair: (high << 128) | low.
func U256FromFelts(low, high *felt.Felt) (*big.Int, error) {
	lowInt := snutils.FeltToBigInt(low)
	highInt := snutils.FeltToBigInt(high)
	if lowInt.BitLen() > 128 || highInt.BitLen() > 128 {
		return nil, fmt.Errorf("%w: limbs (%s, %s) exceed 128 bits", ErrU256Overflow, low.String(), high.String())
	}
	return highInt.Lsh(highInt, 128).Or(highInt, lowInt), nil
}

// U256ToFelts splits a 256-bit value into the Cairo (low, high) limb pair.
func U256ToFelts(value *big.Int) (low, high *felt.Felt, err error) {
	if value.Sign() < 0 || value.BitLen() > 256 {
		return nil, nil, fmt.Errorf("%w: %s", ErrU256Overflow, value.String())
	}
	lowInt := new(big.Int).And(value, maxU128)
	highInt := new(big.Int).Rsh(value, 128)
	return snutils.BigIntToFelt(lowInt), snutils.BigIntToFelt(highInt), nil
}

// FeltFromBig lifts a non-negative integer into the field, rejecting values
// at or above the field modulus instead of silently reducing them.
func FeltFromBig(value *big.Int) (*felt.Felt, error) {
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %s", ErrFeltOverflow, value.String())
	}
	f := snutils.BigIntToFelt(value)
	if snutils.FeltToBigInt(f).Cmp(value) != 0 {
		return nil, fmt.Errorf("%w: %s exceeds the field modulus", ErrFeltOverflow, value.String())
	}
	return f, nil
}

// BytesToFelts encodes an EVM byte string the way the Kakarot contracts carry
// it: one byte per felt, in order.
func BytesToFelts(data []byte) []*felt.Felt {
	felts := make([]*felt.Felt, len(data))
	for i, b := range data {
		felts[i] = new(felt.Felt).SetUint64(uint64(b))
	}
	return felts
}

// FeltsToBytes is the inverse of BytesToFelts: the low byte of every felt,
// concatenated.
func FeltsToBytes(felts []*felt.Felt) []byte {
	data := make([]byte, len(felts))
	for i, f := range felts {
		b := f.Bytes()
		data[i] = b[len(b)-1]
	}
	return data
}

// FeltToHash widens a felt (a StarkNet transaction or block hash) into a
// 32-byte Ethereum-style hash, left-padded.
func FeltToHash(f *felt.Felt) common.Hash {
	return common.Hash(f.Bytes())
}

// HashToFelt reads a 32-byte hash back as a felt. Not every 32-byte string is
// a valid field element; values at or above the field modulus are rejected
// rather than silently reduced.
func HashToFelt(h common.Hash) (*felt.Felt, error) {
	f := new(felt.Felt).SetBytes(h.Bytes())
	if common.Hash(f.Bytes()) != h {
		return nil, fmt.Errorf("%w: %s is not a field element", ErrFeltOverflow, h.Hex())
	}
	return f, nil
}
