package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	signFlags txFlags

	signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Build and sign a user operation without sending it",
		Long: `Build a user operation calling --to with --value and --data, sign it with
the configured passkey and print it as JSON together with its hash.
Signing needs passkey.dev_private_key in the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := signFlags.details()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := newSession(ctx, config, false)
			if err != nil {
				return err
			}
			defer s.close()

			op, err := s.builder.CreateSignedUserOp(ctx, details)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(op, "", "  ")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, string(data))
			fmt.Fprintf(out, "UserOpHash: %s\n", s.builder.UserOpHash(op).Hex())
			return nil
		},
	}
)

func addTxFlags(cmd *cobra.Command, f *txFlags) {
	cmd.Flags().StringVar(&f.to, "to", "", "Target contract or recipient")
	cmd.Flags().StringVar(&f.value, "value", "", `Value in wei, or with an "ether" suffix such as 0.01ether`)
	cmd.Flags().StringVar(&f.data, "data", "", "Hex calldata for the target")
	cmd.Flags().Uint64Var(&f.gasLimit, "gas-limit", 0, "Call gas limit, estimated when omitted")
	cmd.Flags().StringVar(&f.nonce, "nonce", "", "Nonce override")
	_ = cmd.MarkFlagRequired("to")
}

func init() {
	addTxFlags(signCmd, &signFlags)
	rootCmd.AddCommand(signCmd)
}
