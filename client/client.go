// Package client implements the Kakarot translation engine: it answers
// Ethereum account, state and transaction queries by consulting the Kakarot
// contract system deployed on a StarkNet-family chain.
package client

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/rpc"
	snutils "github.com/NethermindEth/starknet.go/utils"
	"github.com/ethereum/go-ethereum/common"

	"github.com/kkrt-labs/kakarot-rpc-go/models"
	"github.com/kkrt-labs/kakarot-rpc-go/starknet"
	"github.com/kkrt-labs/kakarot-rpc-go/utils"
)

// Ethereum tooling chokes on chain identifiers above 2^53 - 1; the StarkNet
// chain id string is truncated into that range, matching the contract side.
var maxSafeChainID = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 53), big.NewInt(1))

type Client struct {
	cfg      Config
	provider starknet.Provider
	log      utils.SimpleLogger
	listener EventListener
}

func New(cfg Config, provider starknet.Provider, log utils.SimpleLogger) (*Client, error) {
	if provider == nil {
		return nil, errors.New("nil starknet provider")
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:      cfg,
		provider: provider,
		log:      log,
		listener: &SelectiveListener{},
	}, nil
}

// WithListener registers a listener for call metrics. Not safe to call once
// operations are in flight.
func (c *Client) WithListener(listener EventListener) *Client {
	c.listener = listener
	return c
}

// ChainID derives the Ethereum-facing chain identifier from the StarkNet
// chain id string.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		return nil, translateProviderError("starknet_chainId", err)
	}
	return new(big.Int).And(snutils.UTF8StrToBig(chainID), maxSafeChainID), nil
}

// resolveContractAddress asks the account registry for the StarkNet contract
// backing an Ethereum address. A zero answer means no account is deployed and
// comes back as ErrNotDeployed; registry failures translate and propagate.
// For a fixed block the result is a pure function of the address.
func (c *Client) resolveContractAddress(ctx context.Context, address common.Address, blockID rpc.BlockID) (*felt.Felt, error) {
	call := rpc.FunctionCall{
		ContractAddress:    c.cfg.AccountRegistryAddress,
		EntryPointSelector: c.cfg.Selectors.ResolveAddress,
		Calldata:           []*felt.Felt{models.EthAddressToFelt(address)},
	}

	result, err := c.starknetCall(ctx, "resolve_address", call, blockID)
	if err != nil {
		return nil, err
	}
	if len(result) != 1 {
		return nil, &TransportError{
			Method: "resolve_address",
			Err:    errors.New("registry returned malformed response"),
		}
	}
	if result[0].IsZero() {
		return nil, ErrNotDeployed
	}
	return result[0], nil
}

// starknetCall runs one read-only provider call with error translation and
// listener accounting. All contract reads go through here.
func (c *Client) starknetCall(ctx context.Context, method string, call rpc.FunctionCall, blockID rpc.BlockID) ([]*felt.Felt, error) {
	start := time.Now()
	result, err := c.provider.Call(ctx, call, blockID)
	if err != nil {
		translated := translateProviderError(method, err)
		c.listener.OnStarknetCallFailed(method, translated)
		return nil, translated
	}
	c.listener.OnStarknetCall(method, time.Since(start))
	return result, nil
}
