package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/AvaProtocol/passkeys-aa/core/chainio/aa"
	pkconfig "github.com/AvaProtocol/passkeys-aa/core/config"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/aaerrors"
)

var initCodeCmd = &cobra.Command{
	Use:   "init-code",
	Short: "Print the account init code",
	Long: `Print factory || createAccount(index, keyId, x, y) for the configured
passkey. This does not touch the network.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := pkconfig.NewConfig(config)
		if err != nil {
			return err
		}

		key := cfg.PassKey
		if key.IsZero() {
			signer, err := devSigner(cfg)
			if err != nil {
				return err
			}
			if signer == nil {
				return &aaerrors.InvalidKeyError{Reason: "passkey public key is not configured"}
			}
			key = signer.KeyPair()
		}
		if cfg.FactoryAddress == (common.Address{}) {
			return &aaerrors.ConfigurationError{Field: "factory_address", Reason: "factory not set"}
		}

		initCode, err := aa.GetInitCode(cfg.FactoryAddress, cfg.AccountIndex, key.KeyID, key.PubKeyX, key.PubKeyY)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(initCode))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCodeCmd)
}
