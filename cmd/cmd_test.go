package cmd

import (
	"bytes"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/passkeys-aa/core/chainio/aa"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/bundler"
	"github.com/AvaProtocol/passkeys-aa/version"
)

const initCodeConfig = `
environment: development
eth_rpc_url: http://127.0.0.1:8545
chain_id: 11155111
factory_address: "0x29adA1b5217242DEaBB142BC3b1bCfFdd56008e7"
account_index: 1
passkey:
  key_id: cli-key
  pub_key_x: "0x6b17d1f2e12c4247f8bce6e563a440f277037d812deb33a0f4a13945d898c296"
  pub_key_y: "0x4fe342e2fe1a7f9b8ee7eb4a7c0f9e162bce33576b315ececbb6406837bf51f5"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passkeys.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BUNDLER_URL", "")
	t.Setenv("RPC_URL", "")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestInitCodeCommand(t *testing.T) {
	path := writeConfig(t, initCodeConfig)

	out, err := runRoot(t, "init-code", "--config", path)
	require.NoError(t, err)

	initCode, err := hexutil.Decode(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x29adA1b5217242DEaBB142BC3b1bCfFdd56008e7").Bytes(), initCode[:20])

	factoryABI, err := aa.FactoryABI()
	require.NoError(t, err)
	method, err := factoryABI.MethodById(initCode[20:24])
	require.NoError(t, err)
	argv, err := method.Inputs.Unpack(initCode[24:])
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(1).Cmp(argv[0].(*big.Int)))
	assert.Equal(t, "cli-key", argv[1].(string))
}

func TestInitCodeFromDevKey(t *testing.T) {
	path := writeConfig(t, `
eth_rpc_url: http://127.0.0.1:8545
chain_id: 1
factory_address: "0x29adA1b5217242DEaBB142BC3b1bCfFdd56008e7"
passkey:
  key_id: dev-key
  dev_private_key: "0x01"
`)

	out, err := runRoot(t, "init-code", "--config", path)
	require.NoError(t, err)

	initCode, err := hexutil.Decode(strings.TrimSpace(out))
	require.NoError(t, err)
	factoryABI, err := aa.FactoryABI()
	require.NoError(t, err)
	argv, err := factoryABI.Methods["createAccount"].Inputs.Unpack(initCode[24:])
	require.NoError(t, err)

	// the generator point is the public key of scalar 1
	gx, _ := new(big.Int).SetString("6b17d1f2e12c4247f8bce6e563a440f277037d812deb33a0f4a13945d898c296", 16)
	assert.Equal(t, 0, gx.Cmp(argv[2].(*big.Int)))
}

func TestInitCodeWithoutKey(t *testing.T) {
	path := writeConfig(t, `
eth_rpc_url: http://127.0.0.1:8545
chain_id: 1
factory_address: "0x29adA1b5217242DEaBB142BC3b1bCfFdd56008e7"
`)

	_, err := runRoot(t, "init-code", "--config", path)
	assert.ErrorContains(t, err, "passkey public key is not configured")
}

func TestDevKeyMustMatchPublicKey(t *testing.T) {
	path := writeConfig(t, initCodeConfig+"  dev_private_key: \"0x02\"\n")

	_, err := runRoot(t, "init-code", "--config", path)
	require.NoError(t, err, "init-code uses the configured public key as is")

	_, err = runRoot(t, "nonce", "--config", path)
	assert.ErrorContains(t, err, "does not match")
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version.Get())
}

func TestTxFlagsDetails(t *testing.T) {
	f := txFlags{
		to:       "0xe0f7D11FD714674722d325Cd86062A5F1882E13a",
		value:    "0.5ether",
		data:     "deadbeef",
		gasLimit: 50000,
		nonce:    "0x7",
	}
	d, err := f.details()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(f.to), d.Target)
	assert.Equal(t, "500000000000000000", d.Value.String())
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, d.Data)
	assert.Equal(t, int64(50000), d.GasLimit.Int64())
	assert.Equal(t, int64(7), d.Nonce.Int64())

	_, err = (&txFlags{to: "nope"}).details()
	assert.Error(t, err)
	_, err = (&txFlags{to: f.to, value: "-1"}).details()
	assert.Error(t, err)
	_, err = (&txFlags{to: f.to, data: "0xzz"}).details()
	assert.Error(t, err)
}

func TestParseAndFormatEther(t *testing.T) {
	wei, err := parseEther("1000")
	require.NoError(t, err)
	assert.Equal(t, "1000", wei.String())

	wei, err = parseEther("1.25ether")
	require.NoError(t, err)
	assert.Equal(t, "1250000000000000000", wei.String())

	_, err = parseEther("0.0000000000000000001ether")
	assert.Error(t, err, "below one wei")

	assert.Equal(t, "1.25", formatEther(wei))
	assert.Equal(t, "0.000000000000001", formatEther(big.NewInt(1000)))
	assert.Equal(t, "0", formatEther(nil))
}

func TestPrintReceipt(t *testing.T) {
	r := &bundler.UserOperationReceipt{
		UserOpHash:    common.HexToHash("0x01"),
		Sender:        common.HexToAddress("0x02"),
		Success:       true,
		ActualGasCost: big.NewInt(2_000_000_000_000_000),
		ActualGasUsed: big.NewInt(120000),
		Receipt:       &bundler.TransactionReceipt{TransactionHash: common.HexToHash("0x03")},
	}

	s := summarizeReceipt(r)
	assert.Equal(t, "0.002 ETH", s.ActualGasCost)
	assert.Equal(t, "120000", s.ActualGasUsed)
	assert.Equal(t, common.HexToHash("0x03").Hex(), s.TransactionHash)

	var buf bytes.Buffer
	printReceipt(&buf, r)
	assert.Contains(t, buf.String(), "0.002 ETH")
	assert.Contains(t, buf.String(), r.Sender.Hex())
}
