// Package cli implements the kakarot-cli command: one-shot Ethereum-shaped
// queries against a Kakarot deployment, for debugging devnets and live chains.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	snutils "github.com/NethermindEth/starknet.go/utils"
	"github.com/ethereum/go-ethereum/common"
	ethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kkrt-labs/kakarot-rpc-go/client"
	"github.com/kkrt-labs/kakarot-rpc-go/starknet"
	"github.com/kkrt-labs/kakarot-rpc-go/utils"
)

const (
	configF         = "config"
	starknetRPCF    = "starknet-rpc"
	kakarotF        = "kakarot"
	registryF       = "registry"
	proxyClassHashF = "proxy-class-hash"
	blockF          = "block"
	verbosityF      = "verbosity"

	configUsage      = "The yaml configuration file."
	starknetRPCUsage = "The StarkNet JSON-RPC endpoint hosting the Kakarot deployment."
	kakarotUsage     = "Address of the core Kakarot contract."
	registryUsage    = "Address of the account registry contract."
	proxyClassUsage  = "Class hash of the account proxy."
	blockUsage       = "Block to query: 'latest', 'pending', a number, or a 0x block hash."
	verbosityUsage   = "Log verbosity: debug, info, warn or error."
)

type settings struct {
	StarknetRPC    string `mapstructure:"starknet-rpc"`
	Kakarot        string `mapstructure:"kakarot"`
	Registry       string `mapstructure:"registry"`
	ProxyClassHash string `mapstructure:"proxy-class-hash"`
	Block          string `mapstructure:"block"`
	Verbosity      string `mapstructure:"verbosity"`
}

var (
	cfgFile string
	cfg     settings
)

func NewCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kakarot-cli [command] [flags]",
		Short:         "Query a Kakarot EVM deployment on StarkNet with Ethereum semantics.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			if cfgFile != "" {
				v.SetConfigType("yaml")
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return err
				}
			}
			v.SetEnvPrefix("KAKAROT")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return v.Unmarshal(&cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, configF, "c", "", configUsage)
	rootCmd.PersistentFlags().String(starknetRPCF, "http://localhost:5050", starknetRPCUsage)
	rootCmd.PersistentFlags().String(kakarotF, "", kakarotUsage)
	rootCmd.PersistentFlags().String(registryF, "", registryUsage)
	rootCmd.PersistentFlags().String(proxyClassHashF, "", proxyClassUsage)
	rootCmd.PersistentFlags().String(blockF, "latest", blockUsage)
	rootCmd.PersistentFlags().String(verbosityF, "info", verbosityUsage)

	rootCmd.AddCommand(
		nonceCmd(),
		balanceCmd(),
		getCodeCmd(),
		storageAtCmd(),
		callCmd(),
		sendRawCmd(),
		receiptCmd(),
	)
	return rootCmd
}

// newClient assembles provider, logger, and client from the loaded settings.
func newClient() (*client.Client, error) {
	kakarot, err := snutils.HexToFelt(cfg.Kakarot)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", kakarotF, err)
	}
	registry, err := snutils.HexToFelt(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", registryF, err)
	}
	proxyClassHash, err := snutils.HexToFelt(cfg.ProxyClassHash)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", proxyClassHashF, err)
	}

	var level utils.LogLevel
	if err = level.Set(cfg.Verbosity); err != nil {
		return nil, err
	}
	log, err := utils.NewZapLogger(level, true)
	if err != nil {
		return nil, err
	}

	provider, err := starknet.NewRPCProvider(cfg.StarknetRPC)
	if err != nil {
		return nil, err
	}

	return client.New(client.Config{
		KakarotAddress:         kakarot,
		AccountRegistryAddress: registry,
		ProxyAccountClassHash:  proxyClassHash,
	}, provider, log)
}

// blockRef parses the --block flag into an Ethereum block reference.
func blockRef() (ethrpc.BlockNumberOrHash, error) {
	value := cfg.Block
	switch value {
	case "", "latest":
		return ethrpc.BlockNumberOrHashWithNumber(ethrpc.LatestBlockNumber), nil
	case "pending":
		return ethrpc.BlockNumberOrHashWithNumber(ethrpc.PendingBlockNumber), nil
	case "earliest":
		return ethrpc.BlockNumberOrHashWithNumber(ethrpc.EarliestBlockNumber), nil
	}
	if strings.HasPrefix(value, "0x") {
		if len(value) != 2+2*common.HashLength {
			return ethrpc.BlockNumberOrHash{}, errors.New("block hash must be 32 bytes")
		}
		return ethrpc.BlockNumberOrHashWithHash(common.HexToHash(value), false), nil
	}
	number, err := strconv.ParseInt(value, 10, 64)
	if err != nil || number < 0 {
		return ethrpc.BlockNumberOrHash{}, fmt.Errorf("invalid block %q", value)
	}
	return ethrpc.BlockNumberOrHashWithNumber(ethrpc.BlockNumber(number)), nil
}

func parseAddress(arg string) (common.Address, error) {
	if !common.IsHexAddress(arg) {
		return common.Address{}, fmt.Errorf("%q is not an Ethereum address", arg)
	}
	return common.HexToAddress(arg), nil
}
