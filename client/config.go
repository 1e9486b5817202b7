package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/utils"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPollInterval = time.Second
	defaultPollTimeout  = 2 * time.Minute
)

// defaultMaxFee bounds the declared fee of submitted invokes when the caller
// does not set one (0.01 of the fee token).
var defaultMaxFee = new(felt.Felt).SetUint64(10_000_000_000_000_000)

// Selectors are the entrypoint selectors the client invokes on the Kakarot
// system contracts. They are configuration rather than constants so a test
// deployment with renamed entrypoints can be substituted wholesale.
type Selectors struct {
	// ResolveAddress maps an Ethereum address to its account contract
	// (account registry entrypoint).
	ResolveAddress *felt.Felt `validate:"required"`
	// Bytecode reads the stored EVM bytecode of a resolved contract.
	Bytecode *felt.Felt `validate:"required"`
	// Storage reads one EVM storage slot of a resolved contract.
	Storage *felt.Felt `validate:"required"`
	// BalanceOf reads the native token balance through the core contract.
	BalanceOf *felt.Felt `validate:"required"`
	// EthCall simulates EVM execution on a resolved contract.
	EthCall *felt.Felt `validate:"required"`
	// EthSendTransaction is the core contract's external-invoke entrypoint.
	EthSendTransaction *felt.Felt `validate:"required"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		ResolveAddress:     utils.GetSelectorFromNameFelt("get_starknet_contract_address"),
		Bytecode:           utils.GetSelectorFromNameFelt("bytecode"),
		Storage:            utils.GetSelectorFromNameFelt("storage"),
		BalanceOf:          utils.GetSelectorFromNameFelt("balance_of"),
		EthCall:            utils.GetSelectorFromNameFelt("eth_call"),
		EthSendTransaction: utils.GetSelectorFromNameFelt("eth_send_transaction"),
	}
}

// Config carries the fixed system addresses of a Kakarot deployment. It is
// immutable after New and shared read-only by every in-flight operation.
type Config struct {
	// KakarotAddress is the core EVM-emulation contract.
	KakarotAddress *felt.Felt `validate:"required"`
	// ProxyAccountClassHash identifies the account proxy class the registry
	// deploys for externally-owned accounts.
	ProxyAccountClassHash *felt.Felt `validate:"required"`
	// AccountRegistryAddress maps Ethereum addresses to account contracts.
	AccountRegistryAddress *felt.Felt `validate:"required"`

	// Selectors defaults to DefaultSelectors when left zero.
	Selectors Selectors

	// MaxFee is declared on submitted invokes. Defaults to defaultMaxFee.
	MaxFee *felt.Felt

	// PollInterval and PollTimeout bound the receipt confirmation loop.
	PollInterval time.Duration `validate:"min=0"`
	PollTimeout  time.Duration `validate:"min=0"`
}

// withDefaults returns a copy with unset fields filled in; the original is
// never mutated.
func (c Config) withDefaults() Config {
	if c.Selectors == (Selectors{}) {
		c.Selectors = DefaultSelectors()
	}
	if c.MaxFee == nil {
		c.MaxFee = defaultMaxFee
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = defaultPollTimeout
	}
	return c
}

var (
	validatorOnce   sync.Once
	configValidator *validator.Validate
)

func (c *Config) validate() error {
	validatorOnce.Do(func() {
		configValidator = validator.New()
	})
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid client configuration: %w", err)
	}
	return nil
}
