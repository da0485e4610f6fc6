package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the smart account address",
	Long: `Print the counterfactual address of the passkey account and whether it
is deployed yet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := newSession(ctx, config, false)
		if err != nil {
			return err
		}
		defer s.close()

		addr, err := s.account.AccountAddress(ctx)
		if err != nil {
			return err
		}
		phantom, err := s.account.IsPhantom(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Account:  %s\n", addr.Hex())
		fmt.Fprintf(out, "Factory:  %s\n", s.cfg.FactoryAddress.Hex())
		fmt.Fprintf(out, "Deployed: %t\n", !phantom)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}
