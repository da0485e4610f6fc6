// Package preset wires a passkey account, the operation builder and a
// bundler client into a provider that sends operations and waits for them.
package preset

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/account"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/bundler"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
	"github.com/AvaProtocol/passkeys-aa/pkg/logger"
	"github.com/AvaProtocol/passkeys-aa/pkg/passkey"
)

// Metrics records provider level outcomes.
type Metrics interface {
	IncUserOpSent(status string)
	ObserveReceiptWait(found bool, elapsed time.Duration)
}

// PollConfig controls WaitForReceipt. Zero fields take the defaults.
type PollConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	BackoffFactor   float64
	Timeout         time.Duration
}

// DefaultPollConfig polls every second, growing by half each time up to 5s,
// for at most 30s. Bundlers usually include an operation within 2-5s.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		InitialInterval: 1 * time.Second,
		MaxInterval:     5 * time.Second,
		BackoffFactor:   1.5,
		Timeout:         30 * time.Second,
	}
}

func (c PollConfig) withDefaults() PollConfig {
	d := DefaultPollConfig()
	if c.InitialInterval <= 0 {
		c.InitialInterval = d.InitialInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = d.MaxInterval
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = d.BackoffFactor
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

type Option func(*Provider)

// WithBundlerGasEstimation raises the locally computed gas limits to the
// bundler's estimate when that is higher.
func WithBundlerGasEstimation() Option {
	return func(p *Provider) { p.useBundlerEstimates = true }
}

func WithNonceManager(nm *bundler.NonceManager) Option {
	return func(p *Provider) { p.nonces = nm }
}

func WithMetrics(m Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// Provider sends operations for one account through one bundler.
type Provider struct {
	account account.SmartAccount
	builder *account.Builder
	bundler *bundler.BundlerClient
	nonces  *bundler.NonceManager
	metrics Metrics
	logger  logger.Logger

	useBundlerEstimates bool
}

func NewProvider(acct account.SmartAccount, builder *account.Builder, bc *bundler.BundlerClient, lgr logger.Logger, opts ...Option) *Provider {
	p := &Provider{
		account: acct,
		builder: builder,
		bundler: bc,
		logger:  logger.EnsureLogger(lgr),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.nonces == nil {
		p.nonces = bundler.NewNonceManager(p.logger)
	}
	return p
}

// SendUserOp builds, signs and submits an operation. It returns the signed
// operation and the hash the bundler reported for it.
func (p *Provider) SendUserOp(ctx context.Context, details account.TransactionDetails) (*userop.UserOperation, common.Hash, error) {
	// A bundler on the wrong chain fails before the user is asked to sign.
	if err := p.bundler.Ready(ctx); err != nil {
		return nil, common.Hash{}, err
	}

	sender, err := p.account.AccountAddress(ctx)
	if err != nil {
		return nil, common.Hash{}, err
	}

	nonce, err := p.nonces.GetNextNonce(ctx, sender, p.account.Nonce)
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("cannot determine nonce for %s: %w", sender.Hex(), err)
	}
	details.Nonce = nonce

	op, err := p.builder.CreateUnsignedUserOp(ctx, details)
	if err != nil {
		p.nonces.ResetNonce(sender)
		return nil, common.Hash{}, err
	}

	if p.useBundlerEstimates {
		p.mergeBundlerEstimate(ctx, op)
	}

	signed, err := p.account.SignUserOp(ctx, op)
	if err != nil {
		p.nonces.ResetNonce(sender)
		p.recordSent("sign_error")
		return nil, common.Hash{}, err
	}

	hash, err := p.bundler.SendUserOperation(ctx, signed, p.builder.EntryPoint())
	if err != nil {
		p.nonces.ResetNonce(sender)
		p.recordSent("send_error")
		return signed, common.Hash{}, err
	}
	p.nonces.IncrementNonce(sender, nonce)
	p.recordSent("ok")

	if local := p.builder.UserOpHash(signed); local != hash {
		p.logger.Warn("bundler returned a different user operation hash", "local", local.Hex(), "bundler", hash.Hex())
	}

	p.logger.Info("user operation submitted", "sender", sender.Hex(), "nonce", nonce.String(), "userOpHash", hash.Hex())
	return signed, hash, nil
}

// mergeBundlerEstimate never lowers a limit. Estimation failures keep the
// local values.
func (p *Provider) mergeBundlerEstimate(ctx context.Context, op *userop.UserOperation) {
	probe := op.Copy()
	probe.Signature = passkey.DummySignature()

	est, err := p.bundler.EstimateUserOperationGas(ctx, probe, p.builder.EntryPoint())
	if err != nil {
		p.logger.Warn("bundler gas estimation failed, keeping local limits", "error", err)
		return
	}

	op.CallGasLimit = maxBig(op.CallGasLimit, est.CallGasLimit)
	op.VerificationGasLimit = maxBig(op.VerificationGasLimit, est.VerificationGasLimit)
	op.PreVerificationGas = maxBig(op.PreVerificationGas, est.PreVerificationGas)
}

// WaitForReceipt polls the bundler with exponential backoff until the
// operation is included. It returns nil and no error when cfg.Timeout passes
// first: the operation may still be pending.
func (p *Provider) WaitForReceipt(ctx context.Context, hash common.Hash, cfg PollConfig) (*bundler.UserOperationReceipt, error) {
	cfg = cfg.withDefaults()
	start := time.Now()
	deadline := start.Add(cfg.Timeout)
	interval := cfg.InitialInterval

	for attempt := 1; ; attempt++ {
		receipt, err := p.bundler.GetUserOperationReceipt(ctx, hash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			p.logger.Debug("user operation included", "userOpHash", hash.Hex(), "attempts", attempt, "elapsed", time.Since(start).Round(time.Millisecond))
			p.recordWait(true, start)
			return receipt, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			p.logger.Debug("timed out waiting for user operation, it may still be pending", "userOpHash", hash.Hex(), "attempts", attempt)
			p.recordWait(false, start)
			return nil, nil
		}

		wait := interval
		if wait > remaining {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		interval = time.Duration(float64(interval) * cfg.BackoffFactor)
		if interval > cfg.MaxInterval {
			interval = cfg.MaxInterval
		}
	}
}

func (p *Provider) recordSent(status string) {
	if p.metrics != nil {
		p.metrics.IncUserOpSent(status)
	}
}

func (p *Provider) recordWait(found bool, start time.Time) {
	if p.metrics != nil {
		p.metrics.ObserveReceiptWait(found, time.Since(start))
	}
}

func maxBig(a, b *big.Int) *big.Int {
	if b == nil || (a != nil && a.Cmp(b) >= 0) {
		return a
	}
	return new(big.Int).Set(b)
}
