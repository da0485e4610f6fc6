package cmd

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/bundler"
)

var receiptCmd = &cobra.Command{
	Use:   "receipt <userOpHash>",
	Short: "Look up a user operation receipt",
	Long:  `Ask the bundler for the receipt of a user operation. Pending operations are reported as such.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(common.FromHex(args[0])) != common.HashLength {
			return fmt.Errorf("invalid user operation hash %q", args[0])
		}
		hash := common.HexToHash(args[0])

		ctx := cmd.Context()
		s, err := newSession(ctx, config, true)
		if err != nil {
			return err
		}
		defer s.close()

		out := cmd.OutOrStdout()
		receipt, err := s.bundler.GetUserOperationReceipt(ctx, hash)
		if err != nil {
			return err
		}
		if receipt != nil {
			printReceipt(out, receipt)
			return nil
		}

		byHash, err := s.bundler.GetUserOperationByHash(ctx, hash)
		if err != nil {
			return err
		}
		if byHash != nil && byHash.Pending() {
			fmt.Fprintf(out, "%s is pending in the bundler mempool\n", hash.Hex())
			return nil
		}
		fmt.Fprintf(out, "%s not found\n", hash.Hex())
		return nil
	},
}

type receiptSummary struct {
	UserOpHash      string
	Sender          string
	Success         bool
	Reason          string
	ActualGasUsed   string
	ActualGasCost   string
	TransactionHash string
	Events          int
}

func summarizeReceipt(r *bundler.UserOperationReceipt) receiptSummary {
	s := receiptSummary{
		UserOpHash:    r.UserOpHash.Hex(),
		Sender:        r.Sender.Hex(),
		Success:       r.Success,
		Reason:        r.Reason,
		ActualGasCost: formatEther(r.ActualGasCost) + " ETH",
		Events:        len(r.UserOperationEvents()),
	}
	if r.ActualGasUsed != nil {
		s.ActualGasUsed = r.ActualGasUsed.String()
	}
	if r.Receipt != nil {
		s.TransactionHash = r.Receipt.TransactionHash.Hex()
	}
	return s
}

func printReceipt(out io.Writer, r *bundler.UserOperationReceipt) {
	printer := pp.New()
	printer.SetOutput(out)
	printer.SetColoringEnabled(false)
	printer.Println(summarizeReceipt(r))
}

func init() {
	rootCmd.AddCommand(receiptCmd)
}
