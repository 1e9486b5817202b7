package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func nonceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nonce [ADDRESS]",
		Short: "Transaction count of an Ethereum address.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			block, err := blockRef()
			if err != nil {
				return err
			}
			nonce, err := c.Nonce(cmd.Context(), address, block)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), nonce.String())
			return nil
		},
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [ADDRESS]",
		Short: "Native token balance of an Ethereum address.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			block, err := blockRef()
			if err != nil {
				return err
			}
			balance, err := c.Balance(cmd.Context(), address, block)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), balance.String())
			return nil
		},
	}
}

func getCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-code [ADDRESS]",
		Short: "EVM bytecode stored for an Ethereum address.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			block, err := blockRef()
			if err != nil {
				return err
			}
			code, err := c.CodeAt(cmd.Context(), address, block)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(code))
			return nil
		},
	}
}

func storageAtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "storage-at [ADDRESS] [SLOT]",
		Short: "Value of an EVM storage slot.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			block, err := blockRef()
			if err != nil {
				return err
			}
			value, err := c.StorageAt(cmd.Context(), address, common.HexToHash(args[1]), block)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value.Hex())
			return nil
		},
	}
}

func callCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call [ADDRESS] [CALLDATA]",
		Short: "Simulate an EVM call and print the return data.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			calldata, err := hexutil.Decode(args[1])
			if err != nil {
				return fmt.Errorf("calldata: %w", err)
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			block, err := blockRef()
			if err != nil {
				return err
			}
			ret, err := c.Call(cmd.Context(), address, calldata, block)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(ret))
			return nil
		},
	}
}
