package bundler

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/passkeys-aa/pkg/logger"
)

// NonceFetcher returns the account's on-chain nonce.
type NonceFetcher func(ctx context.Context) (*big.Int, error)

// NonceManager tracks the next nonce per sender so several operations can be
// submitted before the first one is included. It combines the on-chain nonce
// with what this process already handed to the bundler.
type NonceManager struct {
	// Key: sender.Hex(), value: next nonce to use
	pendingNonces map[string]*big.Int
	mu            sync.RWMutex
	logger        logger.Logger
}

func NewNonceManager(lgr logger.Logger) *NonceManager {
	return &NonceManager{
		pendingNonces: make(map[string]*big.Int),
		logger:        logger.EnsureLogger(lgr),
	}
}

// GetNextNonce returns max(on-chain nonce, cached pending nonce) and reserves
// it, so concurrent callers for one sender get distinct nonces and a nonce
// already pending in the bundler is never reused. Call ResetNonce when the
// operation carrying the returned nonce is not submitted.
func (nm *NonceManager) GetNextNonce(ctx context.Context, sender common.Address, fetch NonceFetcher) (*big.Int, error) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	onChainNonce, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	next := new(big.Int).Set(onChainNonce)
	// The cache falls behind when pending operations were included or
	// dropped by the bundler. In both cases the chain is right.
	if cachedNonce, ok := nm.pendingNonces[sender.Hex()]; ok && cachedNonce.Cmp(onChainNonce) > 0 {
		next.Set(cachedNonce)
		nm.logger.Debug("using cached nonce", "sender", sender.Hex(), "nonce", next.String(), "onChain", onChainNonce.String())
	} else {
		nm.logger.Debug("using on-chain nonce", "sender", sender.Hex(), "nonce", next.String())
	}

	nm.pendingNonces[sender.Hex()] = new(big.Int).Add(next, big.NewInt(1))
	return next, nil
}

// IncrementNonce records that currentNonce was submitted for sender. It never
// moves the cache back.
func (nm *NonceManager) IncrementNonce(sender common.Address, currentNonce *big.Int) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	next := new(big.Int).Add(currentNonce, big.NewInt(1))
	if cached, ok := nm.pendingNonces[sender.Hex()]; ok && cached.Cmp(next) > 0 {
		return
	}
	nm.pendingNonces[sender.Hex()] = next
}

// ResetNonce forgets the cached nonce so the next call reads the chain again.
// Use it after a submission failed.
func (nm *NonceManager) ResetNonce(sender common.Address) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	delete(nm.pendingNonces, sender.Hex())
	nm.logger.Debug("reset cached nonce", "sender", sender.Hex())
}

// SetNonce explicitly sets the cached nonce for a sender.
func (nm *NonceManager) SetNonce(sender common.Address, nonce *big.Int) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	nm.pendingNonces[sender.Hex()] = new(big.Int).Set(nonce)
}

// GetCachedNonce returns the cached nonce for a sender without touching the chain.
func (nm *NonceManager) GetCachedNonce(sender common.Address) (*big.Int, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()

	nonce, exists := nm.pendingNonces[sender.Hex()]
	if !exists {
		return nil, false
	}
	return new(big.Int).Set(nonce), true
}
