package cli

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

func sendRawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send-raw [RLP_HEX]",
		Short: "Submit a signed Ethereum transaction and print its handle.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hexutil.Decode(args[0])
			if err != nil {
				return fmt.Errorf("raw transaction: %w", err)
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			hash, err := c.SendTransaction(cmd.Context(), raw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash.Hex())
			return nil
		},
	}
}

func receiptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt [TX_HASH]",
		Short: "Await and print the terminal receipt of a submitted transaction.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			receipt, err := c.TransactionReceipt(cmd.Context(), common.HexToHash(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: %d\nblock: %d (%s)\n",
				receipt.Status, receipt.BlockNumber, receipt.BlockHash.Hex())
			if receipt.RevertReason != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "revert reason: %s\n", receipt.RevertReason)
			}
			return nil
		},
	}
}
