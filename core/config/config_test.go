package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/passkeys"
)

const fullConfig = `
environment: development
eth_rpc_url: https://sepolia.drpc.org
bundler_url: https://bundler.example.org/rpc
chain_id: 11155111
factory_address: "0x29adA1b5217242DEaBB142BC3b1bCfFdd56008e7"
account_index: 2
passkey:
  key_id: my-key
  pub_key_x: "0x1f"
  pub_key_y: "42"
  rp_id: wallet.example.org
gas:
  verification_gas_limit: 700000
  pre_verification_gas_multiplier: "2.5"
metrics_address: "localhost:9090"
`

func TestParseFullConfig(t *testing.T) {
	t.Setenv("BUNDLER_URL", "")
	t.Setenv("RPC_URL", "")

	c, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://bundler.example.org/rpc", c.BundlerURL)
	assert.Equal(t, 0, c.ChainID.Cmp(big.NewInt(11155111)))
	assert.Equal(t, common.HexToAddress("0x29adA1b5217242DEaBB142BC3b1bCfFdd56008e7"), c.FactoryAddress)
	assert.Equal(t, common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789"), c.EntrypointAddress)
	assert.Equal(t, int64(2), c.AccountIndex.Int64())
	assert.Nil(t, c.AccountAddress)
	assert.Equal(t, "my-key", c.PassKey.KeyID)
	assert.Equal(t, int64(31), c.PassKey.PubKeyX.Int64())
	assert.Equal(t, int64(42), c.PassKey.PubKeyY.Int64())
	assert.Equal(t, int64(700000), c.VerificationGasLimit.Int64())
	assert.True(t, c.PreVerificationGasMultiplier.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "https://wallet.example.org", c.Origin)
	assert.NotNil(t, c.Logger)
}

func TestParseDefaults(t *testing.T) {
	t.Setenv("BUNDLER_URL", "")
	t.Setenv("RPC_URL", "")

	c, err := Parse([]byte("eth_rpc_url: http://localhost:8545\nchain_id: 1\n"))
	require.NoError(t, err)

	assert.Equal(t, int64(passkeys.DefaultVerificationGasLimit), c.VerificationGasLimit.Int64())
	assert.True(t, c.PreVerificationGasMultiplier.Equal(passkeys.DefaultPreVerificationGasMultiplier))
	assert.True(t, c.PreVerificationGasMultiplier.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, common.Address{}, c.FactoryAddress)
	assert.Nil(t, c.PassKey.PubKeyX)
	assert.True(t, c.PassKey.IsZero())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("BUNDLER_URL", "http://127.0.0.1:4337")
	t.Setenv("RPC_URL", "http://127.0.0.1:8545")

	c, err := Parse([]byte(fullConfig))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:4337", c.BundlerURL)
	assert.Equal(t, "http://127.0.0.1:8545", c.EthRpcUrl)
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	t.Setenv("BUNDLER_URL", "")
	t.Setenv("RPC_URL", "")

	tests := map[string]string{
		"missing rpc url":    "chain_id: 1\n",
		"missing chain id":   "eth_rpc_url: http://localhost:8545\n",
		"bad bundler url":    "eth_rpc_url: http://localhost:8545\nchain_id: 1\nbundler_url: not a url\n",
		"bad factory":        "eth_rpc_url: http://localhost:8545\nchain_id: 1\nfactory_address: 0x1234\n",
		"bad pub key":        "eth_rpc_url: http://localhost:8545\nchain_id: 1\npasskey:\n  pub_key_x: zz\n",
		"bad multiplier":     "eth_rpc_url: http://localhost:8545\nchain_id: 1\ngas:\n  pre_verification_gas_multiplier: lots\n",
		"unknown log preset": "eth_rpc_url: http://localhost:8545\nchain_id: 1\nenvironment: staging\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestNewConfigReadsFile(t *testing.T) {
	t.Setenv("BUNDLER_URL", "")
	t.Setenv("RPC_URL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullConfig), 0o600))

	c, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "my-key", c.PassKey.KeyID)

	_, err = NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
