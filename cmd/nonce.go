package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nonceCmd = &cobra.Command{
	Use:   "nonce",
	Short: "Print the account nonce",
	Long:  `Print the next nonce of the passkey account. An undeployed account has nonce 0.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := newSession(ctx, config, false)
		if err != nil {
			return err
		}
		defer s.close()

		nonce, err := s.account.Nonce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), nonce.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nonceCmd)
}
