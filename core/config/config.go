package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/AvaProtocol/passkeys-aa/core/chainio/aa"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/passkeys"
	pklogger "github.com/AvaProtocol/passkeys-aa/pkg/logger"
	"github.com/AvaProtocol/passkeys-aa/pkg/passkey"
)

// Config holds everything needed to build, sign and submit operations for one
// passkey account.
type Config struct {
	Logger sdklogging.Logger

	EthRpcUrl  string
	BundlerURL string
	ChainID    *big.Int

	EntrypointAddress common.Address
	FactoryAddress    common.Address
	AccountIndex      *big.Int
	// AccountAddress skips derivation through the factory when set.
	AccountAddress *common.Address

	PassKey passkey.KeyPair
	// DevPrivateKey lets the CLI sign with a virtual authenticator on test
	// networks. Empty in production where signing happens on a device.
	DevPrivateKey string
	RPID          string
	Origin        string

	VerificationGasLimit         *big.Int
	PreVerificationGasMultiplier decimal.Decimal

	MetricsAddress string
}

// These are read from configPath
type ConfigRaw struct {
	Environment       sdklogging.LogLevel `yaml:"environment" validate:"omitempty,oneof=production development"`
	EthRpcUrl         string              `yaml:"eth_rpc_url" validate:"required,url"`
	BundlerURL        string              `yaml:"bundler_url" validate:"omitempty,url"`
	ChainID           uint64              `yaml:"chain_id" validate:"required,gt=0"`
	EntrypointAddress string              `yaml:"entrypoint_address" validate:"omitempty,eth_addr"`
	FactoryAddress    string              `yaml:"factory_address" validate:"omitempty,eth_addr"`
	AccountIndex      uint64              `yaml:"account_index"`
	AccountAddress    string              `yaml:"account_address" validate:"omitempty,eth_addr"`
	PassKey           PassKeyRaw          `yaml:"passkey"`
	Gas               GasRaw              `yaml:"gas"`
	MetricsAddress    string              `yaml:"metrics_address" validate:"omitempty,hostname_port"`
}

type PassKeyRaw struct {
	KeyID         string `yaml:"key_id"`
	PubKeyX       string `yaml:"pub_key_x"`
	PubKeyY       string `yaml:"pub_key_y"`
	DevPrivateKey string `yaml:"dev_private_key" validate:"omitempty,hexadecimal"`
	RPID          string `yaml:"rp_id"`
	Origin        string `yaml:"origin" validate:"omitempty,url"`
}

type GasRaw struct {
	VerificationGasLimit         uint64 `yaml:"verification_gas_limit"`
	PreVerificationGasMultiplier string `yaml:"pre_verification_gas_multiplier" validate:"omitempty,numeric"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewConfig reads a yaml file. BUNDLER_URL and RPC_URL from the environment
// override the file.
func NewConfig(configFilePath string) (*Config, error) {
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", configFilePath, err)
	}
	return Parse(data)
}

// Parse builds a Config from yaml bytes.
func Parse(data []byte) (*Config, error) {
	var raw ConfigRaw
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}

	if v := os.Getenv("BUNDLER_URL"); v != "" {
		raw.BundlerURL = v
	}
	if v := os.Getenv("RPC_URL"); v != "" {
		raw.EthRpcUrl = v
	}

	return raw.build()
}

func (raw *ConfigRaw) build() (*Config, error) {
	if err := validate.Struct(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := pklogger.New(raw.Environment)
	if err != nil {
		return nil, err
	}

	pubKeyX, err := parseBigInt(raw.PassKey.PubKeyX)
	if err != nil {
		return nil, fmt.Errorf("invalid passkey.pub_key_x: %w", err)
	}
	pubKeyY, err := parseBigInt(raw.PassKey.PubKeyY)
	if err != nil {
		return nil, fmt.Errorf("invalid passkey.pub_key_y: %w", err)
	}

	config := &Config{
		Logger:            logger,
		EthRpcUrl:         raw.EthRpcUrl,
		BundlerURL:        raw.BundlerURL,
		ChainID:           new(big.Int).SetUint64(raw.ChainID),
		EntrypointAddress: aa.EntrypointAddress,
		FactoryAddress:    common.HexToAddress(raw.FactoryAddress),
		AccountIndex:      new(big.Int).SetUint64(raw.AccountIndex),
		PassKey: passkey.KeyPair{
			KeyID:   raw.PassKey.KeyID,
			PubKeyX: pubKeyX,
			PubKeyY: pubKeyY,
		},
		DevPrivateKey:                strings.TrimPrefix(raw.PassKey.DevPrivateKey, "0x"),
		RPID:                         raw.PassKey.RPID,
		Origin:                       raw.PassKey.Origin,
		VerificationGasLimit:         big.NewInt(passkeys.DefaultVerificationGasLimit),
		PreVerificationGasMultiplier: passkeys.DefaultPreVerificationGasMultiplier,
		MetricsAddress:               raw.MetricsAddress,
	}

	if raw.EntrypointAddress != "" {
		config.EntrypointAddress = common.HexToAddress(raw.EntrypointAddress)
	}
	if raw.AccountAddress != "" {
		addr := common.HexToAddress(raw.AccountAddress)
		config.AccountAddress = &addr
	}
	if raw.Gas.VerificationGasLimit > 0 {
		config.VerificationGasLimit = new(big.Int).SetUint64(raw.Gas.VerificationGasLimit)
	}
	if raw.Gas.PreVerificationGasMultiplier != "" {
		m, err := decimal.NewFromString(raw.Gas.PreVerificationGasMultiplier)
		if err != nil {
			return nil, fmt.Errorf("invalid gas.pre_verification_gas_multiplier: %w", err)
		}
		config.PreVerificationGasMultiplier = m
	}
	if config.RPID == "" {
		config.RPID = "localhost"
	}
	if config.Origin == "" {
		config.Origin = "https://" + config.RPID
	}

	return config, nil
}

// parseBigInt accepts decimal or 0x-prefixed hex. Empty means unset.
func parseBigInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("negative value: %q", s)
	}
	return v, nil
}
