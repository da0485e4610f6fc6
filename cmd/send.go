package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/preset"
)

var (
	sendFlags       txFlags
	sendWait        bool
	sendTimeout     time.Duration
	sendUseEstimate bool

	sendCmd = &cobra.Command{
		Use:   "send",
		Short: "Sign a user operation and submit it to the bundler",
		Long: `Build, sign and submit a user operation. With --wait the command polls the
bundler until the operation is included or --timeout passes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := sendFlags.details()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := newSession(ctx, config, true)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.bundler.Ready(ctx); err != nil {
				return err
			}

			provider := s.provider(sendUseEstimate)
			op, hash, err := provider.SendUserOp(ctx, details)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sender:     %s\n", op.Sender.Hex())
			fmt.Fprintf(out, "Nonce:      %s\n", op.Nonce.String())
			fmt.Fprintf(out, "UserOpHash: %s\n", hash.Hex())
			if !sendWait {
				return nil
			}

			cfg := preset.DefaultPollConfig()
			cfg.Timeout = sendTimeout
			receipt, err := provider.WaitForReceipt(ctx, hash, cfg)
			if err != nil {
				return err
			}
			if receipt == nil {
				fmt.Fprintf(out, "not included after %s, check later with: passkeys-aa receipt %s\n", sendTimeout, hash.Hex())
				return nil
			}
			printReceipt(out, receipt)
			return nil
		},
	}
)

func init() {
	addTxFlags(sendCmd, &sendFlags)
	sendCmd.Flags().BoolVar(&sendWait, "wait", false, "Wait for the operation receipt")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 30*time.Second, "How long --wait polls for")
	sendCmd.Flags().BoolVar(&sendUseEstimate, "bundler-estimate", false, "Raise gas limits to the bundler's estimate")
	rootCmd.AddCommand(sendCmd)
}
