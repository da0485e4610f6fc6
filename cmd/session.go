package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/AvaProtocol/passkeys-aa/core/chainio/aa"
	pkconfig "github.com/AvaProtocol/passkeys-aa/core/config"
	"github.com/AvaProtocol/passkeys-aa/metrics"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/aaerrors"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/account"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/bundler"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/passkeys"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/preset"
	"github.com/AvaProtocol/passkeys-aa/pkg/passkey"
)

// session holds the clients one command invocation needs.
type session struct {
	cfg     *pkconfig.Config
	client  *ethclient.Client
	account *passkeys.Account
	builder *account.Builder
	bundler *bundler.BundlerClient
	metrics *metrics.PasskeyMetrics

	cancelMetrics context.CancelFunc
}

// newSession loads the config and connects to the node. The bundler is only
// dialed when withBundler is set.
func newSession(ctx context.Context, configPath string, withBundler bool) (*session, error) {
	cfg, err := pkconfig.NewConfig(configPath)
	if err != nil {
		return nil, err
	}
	aa.SetEntrypointAddress(cfg.EntrypointAddress)

	s := &session{cfg: cfg}

	if cfg.MetricsAddress != "" {
		reg := prometheus.NewRegistry()
		s.metrics = metrics.New(cfg.MetricsAddress, reg, cfg.Logger)
		metricsCtx, cancel := context.WithCancel(ctx)
		s.cancelMetrics = cancel
		errC := s.metrics.Start(metricsCtx, reg)
		go func() {
			if err, ok := <-errC; ok && err != nil {
				cfg.Logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	s.client, err = ethclient.DialContext(ctx, cfg.EthRpcUrl)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("cannot connect to rpc %s: %w", cfg.EthRpcUrl, err)
	}

	signer, err := devSigner(cfg)
	if err != nil {
		s.close()
		return nil, err
	}
	keyPair := cfg.PassKey
	if keyPair.IsZero() && signer != nil {
		keyPair = signer.KeyPair()
	}

	params := passkeys.Params{
		Chain:                        s.client,
		EntryPoint:                   cfg.EntrypointAddress,
		ChainID:                      cfg.ChainID,
		FactoryAddress:               cfg.FactoryAddress,
		Index:                        cfg.AccountIndex,
		KeyPair:                      keyPair,
		AccountAddress:               cfg.AccountAddress,
		VerificationGasLimit:         cfg.VerificationGasLimit,
		PreVerificationGasMultiplier: cfg.PreVerificationGasMultiplier,
		Logger:                       cfg.Logger,
	}
	if signer != nil {
		params.Signer = signer
	}
	s.account, err = passkeys.New(params)
	if err != nil {
		s.close()
		return nil, err
	}
	if s.metrics != nil {
		s.account.RegisterObserver(s.metrics.Observer())
	}
	s.builder = account.NewBuilder(s.account, s.client, cfg.EntrypointAddress, cfg.ChainID, cfg.Logger)

	if withBundler {
		if cfg.BundlerURL == "" {
			s.close()
			return nil, &aaerrors.ConfigurationError{Field: "bundler_url", Reason: "required for this command"}
		}
		var opts []bundler.Option
		if s.metrics != nil {
			opts = append(opts, bundler.WithMetrics(s.metrics))
		}
		s.bundler, err = bundler.NewBundlerClient(ctx, cfg.BundlerURL, cfg.ChainID, cfg.Logger, opts...)
		if err != nil {
			s.close()
			return nil, err
		}
	}

	return s, nil
}

func (s *session) provider(useBundlerEstimates bool) *preset.Provider {
	opts := []preset.Option{preset.WithNonceManager(bundler.NewNonceManager(s.cfg.Logger))}
	if useBundlerEstimates {
		opts = append(opts, preset.WithBundlerGasEstimation())
	}
	if s.metrics != nil {
		opts = append(opts, preset.WithMetrics(s.metrics))
	}
	return preset.NewProvider(s.account, s.builder, s.bundler, s.cfg.Logger, opts...)
}

func (s *session) close() {
	if s.bundler != nil {
		s.bundler.Close()
	}
	if s.client != nil {
		s.client.Close()
	}
	if s.cancelMetrics != nil {
		s.cancelMetrics()
	}
}

// devSigner returns a virtual authenticator when the config carries a
// development private key, nil otherwise.
func devSigner(cfg *pkconfig.Config) (*passkey.VirtualAuthenticator, error) {
	if cfg.DevPrivateKey == "" {
		return nil, nil
	}
	key, err := passkey.PrivateKeyFromHex(cfg.DevPrivateKey)
	if err != nil {
		return nil, &aaerrors.ConfigurationError{Field: "passkey.dev_private_key", Reason: err.Error()}
	}
	keyID := cfg.PassKey.KeyID
	if keyID == "" {
		keyID = "dev"
	}

	auth := passkey.NewVirtualAuthenticatorFromKey(keyID, cfg.RPID, cfg.Origin, key)
	if !cfg.PassKey.IsZero() {
		pub := auth.KeyPair()
		if pub.PubKeyX.Cmp(cfg.PassKey.PubKeyX) != 0 || pub.PubKeyY.Cmp(cfg.PassKey.PubKeyY) != 0 {
			return nil, &aaerrors.ConfigurationError{Field: "passkey.dev_private_key", Reason: "does not match pub_key_x/pub_key_y"}
		}
	}
	return auth, nil
}

// txFlags are the operation fields shared by sign and send.
type txFlags struct {
	to       string
	value    string
	data     string
	gasLimit uint64
	nonce    string
}

func (f *txFlags) details() (account.TransactionDetails, error) {
	var d account.TransactionDetails
	if !common.IsHexAddress(f.to) {
		return d, fmt.Errorf("--to must be an address, got %q", f.to)
	}
	d.Target = common.HexToAddress(f.to)

	if f.value != "" {
		v, err := parseEther(f.value)
		if err != nil {
			return d, err
		}
		d.Value = v
	}
	if f.data != "" {
		data, err := hexutil.Decode(ensure0x(f.data))
		if err != nil {
			return d, fmt.Errorf("invalid --data: %w", err)
		}
		d.Data = data
	}
	if f.gasLimit > 0 {
		d.GasLimit = new(big.Int).SetUint64(f.gasLimit)
	}
	if f.nonce != "" {
		n, ok := new(big.Int).SetString(f.nonce, 0)
		if !ok || n.Sign() < 0 {
			return d, fmt.Errorf("invalid --nonce %q", f.nonce)
		}
		d.Nonce = n
	}
	return d, nil
}

func ensure0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}

var weiPerEther = decimal.New(1, 18)

// parseEther accepts "1.5ether" style amounts or a plain wei integer.
func parseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if amount, ok := strings.CutSuffix(s, "ether"); ok {
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		wei := d.Mul(weiPerEther)
		if !wei.IsInteger() || wei.IsNegative() {
			return nil, fmt.Errorf("invalid amount %q", s)
		}
		return wei.BigInt(), nil
	}

	wei, ok := new(big.Int).SetString(s, 10)
	if !ok || wei.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return wei, nil
}

// formatEther renders wei as a decimal ETH amount.
func formatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}
