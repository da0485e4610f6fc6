package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var (
	config  = "./config/passkeys.yaml"
	rootCmd = &cobra.Command{
		Use:   "passkeys-aa",
		Short: "Passkey smart account CLI",
		Long: `Build, sign and submit ERC-4337 user operations for a passkey
controlled smart account.

Such as "passkeys-aa address" or "passkeys-aa send --to 0x... --wait" and so on
`,
		SilenceUsage: true,
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&config, "config", "c", "config/passkeys.yaml", "Path to config file")
}
