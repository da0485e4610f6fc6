// Package passkeys implements a smart account controlled by a WebAuthn
// passkey. The account is deployed by a PassKeysAccountFactory on its first
// operation and verifies P-256 signatures produced by the passkey.
package passkeys

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/AvaProtocol/passkeys-aa/core/chainio/aa"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/aaerrors"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/account"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
	"github.com/AvaProtocol/passkeys-aa/pkg/logger"
	"github.com/AvaProtocol/passkeys-aa/pkg/passkey"
)

const DefaultVerificationGasLimit = 600000

// DefaultPreVerificationGasMultiplier is applied on top of the generic
// estimate, which assumes a 65-byte signature.
var DefaultPreVerificationGasMultiplier = decimal.NewFromInt(5)

type Params struct {
	Chain      account.Chain
	EntryPoint common.Address
	ChainID    *big.Int

	FactoryAddress common.Address
	Index          *big.Int
	KeyPair        passkey.KeyPair
	Signer         passkey.Signer

	// AccountAddress skips derivation through the factory.
	AccountAddress *common.Address

	// VerificationGasLimit defaults to DefaultVerificationGasLimit.
	VerificationGasLimit *big.Int
	// PreVerificationGasMultiplier defaults to DefaultPreVerificationGasMultiplier
	// when zero. Values below 1 are raised to 1.
	PreVerificationGasMultiplier decimal.Decimal
	// GasOverheads defaults to account.DefaultGasOverheads.
	GasOverheads *account.GasOverheads

	Logger logger.Logger
}

// Account is a passkey controlled smart account. It is safe for concurrent
// use, but signing and RotatePassKey should be serialised by the caller so an
// operation is not signed with a key that is being replaced.
type Account struct {
	chain      account.Chain
	entryPoint common.Address
	chainID    *big.Int
	factory    common.Address
	index      *big.Int

	verificationGasLimit *big.Int
	multiplier           decimal.Decimal
	overheads            account.GasOverheads

	logger    logger.Logger
	observers observers

	mu            sync.RWMutex
	keyPair       passkey.KeyPair
	signer        passkey.Signer
	address       *common.Address
	factoryHandle *aa.PassKeysAccountFactoryCaller
	accountHandle *aa.PassKeysAccountCaller
}

var _ account.SmartAccount = (*Account)(nil)

// New creates the account. Factory and key are checked lazily by the
// operations that need them, so an account with a known address can still
// sign without a factory.
func New(p Params) (*Account, error) {
	if p.Chain == nil {
		return nil, &aaerrors.ConfigurationError{Field: "chain", Reason: "chain client not set"}
	}
	if p.ChainID == nil || p.ChainID.Sign() <= 0 {
		return nil, &aaerrors.ConfigurationError{Field: "chain_id", Reason: "chain id not set"}
	}

	a := &Account{
		chain:                p.Chain,
		entryPoint:           p.EntryPoint,
		chainID:              new(big.Int).Set(p.ChainID),
		factory:              p.FactoryAddress,
		index:                new(big.Int),
		verificationGasLimit: big.NewInt(DefaultVerificationGasLimit),
		multiplier:           DefaultPreVerificationGasMultiplier,
		overheads:            account.DefaultGasOverheads(),
		logger:               logger.EnsureLogger(p.Logger),
		keyPair:              p.KeyPair,
		signer:               p.Signer,
	}

	if a.entryPoint == (common.Address{}) {
		a.entryPoint = aa.EntrypointAddress
	}
	if p.Index != nil {
		a.index.Set(p.Index)
	}
	if p.AccountAddress != nil {
		addr := *p.AccountAddress
		a.address = &addr
	}
	if p.VerificationGasLimit != nil && p.VerificationGasLimit.Sign() > 0 {
		a.verificationGasLimit = new(big.Int).Set(p.VerificationGasLimit)
	}
	if !p.PreVerificationGasMultiplier.IsZero() {
		a.multiplier = decimal.Max(p.PreVerificationGasMultiplier, decimal.NewFromInt(1))
	}
	if p.GasOverheads != nil {
		a.overheads = *p.GasOverheads
	}

	return a, nil
}

func (a *Account) EntryPoint() common.Address { return a.entryPoint }

func (a *Account) ChainID() *big.Int { return new(big.Int).Set(a.chainID) }

// KeyPair returns the passkey currently controlling the account.
func (a *Account) KeyPair() passkey.KeyPair {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.keyPair
}

// UserOpHash is the challenge the passkey signs for op.
func (a *Account) UserOpHash(op *userop.UserOperation) common.Hash {
	return op.GetUserOpHash(a.entryPoint, a.chainID)
}

// AccountAddress returns the configured address, or asks the factory for the
// counterfactual one. The result is remembered for the life of the account.
func (a *Account) AccountAddress(ctx context.Context) (common.Address, error) {
	a.mu.RLock()
	if a.address != nil {
		addr := *a.address
		a.mu.RUnlock()
		return addr, nil
	}
	keyPair := a.keyPair
	a.mu.RUnlock()

	if keyPair.IsZero() {
		return common.Address{}, &aaerrors.InvalidKeyError{Reason: "zero passkey key"}
	}

	factory, err := a.factoryCaller()
	if err != nil {
		return common.Address{}, err
	}

	addr, err := factory.GetAddress(&bind.CallOpts{Context: ctx}, a.index, keyPair.KeyID, keyPair.PubKeyX, keyPair.PubKeyY)
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot derive account address from factory %s: %w", a.factory.Hex(), err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// First resolution wins if several callers raced here.
	if a.address == nil {
		a.address = &addr
		a.logger.Debug("derived passkey account address", "address", addr.Hex(), "factory", a.factory.Hex(), "index", a.index.String())
	}
	return *a.address, nil
}

// IsPhantom reports whether the account has no code yet. Not cached.
func (a *Account) IsPhantom(ctx context.Context) (bool, error) {
	addr, err := a.AccountAddress(ctx)
	if err != nil {
		return false, err
	}

	code, err := a.chain.CodeAt(ctx, addr, nil)
	if err != nil {
		return false, fmt.Errorf("cannot fetch code at %s: %w", addr.Hex(), err)
	}
	return len(code) == 0, nil
}

// InitCode is factory || createAccount(index, keyId, x, y).
func (a *Account) InitCode(ctx context.Context) ([]byte, error) {
	if a.factory == (common.Address{}) {
		return nil, &aaerrors.ConfigurationError{Field: "factory_address", Reason: "factory not set"}
	}

	keyPair := a.KeyPair()
	if keyPair.IsZero() {
		return nil, &aaerrors.InvalidKeyError{Reason: "zero passkey key"}
	}

	return aa.GetInitCode(a.factory, a.index, keyPair.KeyID, keyPair.PubKeyX, keyPair.PubKeyY)
}

// Nonce is zero until the account is deployed, then the account's own counter.
func (a *Account) Nonce(ctx context.Context) (*big.Int, error) {
	phantom, err := a.IsPhantom(ctx)
	if err != nil {
		return nil, err
	}
	if phantom {
		return new(big.Int), nil
	}

	handle, err := a.accountCaller(ctx)
	if err != nil {
		return nil, err
	}
	return handle.Nonce(&bind.CallOpts{Context: ctx})
}

// EncodeExecute encodes execute(target, value, data).
func (a *Account) EncodeExecute(ctx context.Context, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	return aa.PackExecute(target, value, data)
}

// EncodeExecuteBatch encodes executeBatch(targets, data).
func (a *Account) EncodeExecuteBatch(ctx context.Context, targets []common.Address, data [][]byte) ([]byte, error) {
	return aa.PackExecuteBatch(targets, data)
}

func (a *Account) VerificationGasLimit(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(a.verificationGasLimit), nil
}

// PreVerificationGas scales the generic estimate by the configured
// multiplier, rounding up. It never returns less than the generic estimate.
func (a *Account) PreVerificationGas(ctx context.Context, op *userop.UserOperation) (*big.Int, error) {
	base := account.CalcPreVerificationGas(op, a.overheads)
	scaled := decimal.NewFromBigInt(base, 0).Mul(a.multiplier).Ceil().BigInt()
	if scaled.Cmp(base) < 0 {
		return base, nil
	}
	return scaled, nil
}

// SignUserOp asks the passkey to sign the operation hash and returns a copy
// of op carrying the encoded signature. Observers see pre_sign before the
// hash is computed.
func (a *Account) SignUserOp(ctx context.Context, op *userop.UserOperation) (*userop.UserOperation, error) {
	a.mu.RLock()
	signer := a.signer
	keyPair := a.keyPair
	a.mu.RUnlock()

	a.observers.notify(op, StagePreSign)

	if signer == nil {
		return nil, a.fail(op, fmt.Errorf("%w: no passkey signer configured", passkey.ErrAuthenticator))
	}

	hash := a.UserOpHash(op)
	a.observers.notify(op, StageHashComputed)

	a.observers.notify(op, StageAssertionRequested)
	assertion, err := signer.SignChallenge(ctx, hash)
	if err != nil {
		return nil, a.fail(op, err)
	}
	if assertion == nil {
		return nil, a.fail(op, fmt.Errorf("%w: empty assertion", passkey.ErrAuthenticator))
	}
	filled := *assertion
	if filled.CredentialID == ([32]byte{}) {
		filled.CredentialID = keyPair.CredentialID()
	}

	sig, err := passkey.EncodeSignature(&filled)
	if err != nil {
		return nil, a.fail(op, fmt.Errorf("%w: %v", passkey.ErrAuthenticator, err))
	}

	signed := op.Copy()
	signed.Signature = sig

	a.logger.Debug("signed user operation", "sender", signed.Sender.Hex(), "userOpHash", hash.Hex())
	a.observers.notify(signed, StageSigned)
	return signed, nil
}

func (a *Account) fail(op *userop.UserOperation, err error) error {
	a.observers.notify(op, StageFailed)
	return &aaerrors.SigningError{Err: err}
}

// RegisterObserver adds an observer of signing progress and returns a
// function that removes it.
func (a *Account) RegisterObserver(obs ProgressObserver) (unregister func()) {
	return a.observers.register(obs)
}

// SetProgressObserver replaces every registered observer with obs. A nil obs
// clears them.
func (a *Account) SetProgressObserver(obs ProgressObserver) {
	a.observers.replace(obs)
}

// RotatePassKey makes key (and signer, when not nil) control the account from
// now on. The account address is resolved first and stays the same.
func (a *Account) RotatePassKey(ctx context.Context, key passkey.KeyPair, signer passkey.Signer) error {
	if key.IsZero() {
		return &aaerrors.InvalidKeyError{Reason: "zero passkey key"}
	}
	if _, err := a.AccountAddress(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.keyPair = key
	if signer != nil {
		a.signer = signer
	}
	a.accountHandle = nil

	a.logger.Debug("rotated passkey", "address", a.address.Hex(), "keyId", key.KeyID)
	return nil
}

func (a *Account) factoryCaller() (*aa.PassKeysAccountFactoryCaller, error) {
	if a.factory == (common.Address{}) {
		return nil, &aaerrors.ConfigurationError{Field: "factory_address", Reason: "factory not set"}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.factoryHandle == nil {
		handle, err := aa.NewPassKeysAccountFactoryCaller(a.factory, a.chain)
		if err != nil {
			return nil, err
		}
		a.factoryHandle = handle
	}
	return a.factoryHandle, nil
}

func (a *Account) accountCaller(ctx context.Context) (*aa.PassKeysAccountCaller, error) {
	addr, err := a.AccountAddress(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.accountHandle == nil {
		handle, err := aa.NewPassKeysAccountCaller(addr, a.chain)
		if err != nil {
			return nil, err
		}
		a.accountHandle = handle
	}
	return a.accountHandle, nil
}
