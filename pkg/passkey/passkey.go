// Package passkey adapts WebAuthn passkey assertions into the signature format
// expected by the on-chain PassKeysAccount verifier.
package passkey

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrUserCancelled is returned when the user aborts the authenticator ceremony.
	ErrUserCancelled = errors.New("passkey ceremony cancelled by user")
	// ErrAuthenticator is returned when the authenticator fails to produce an assertion.
	ErrAuthenticator = errors.New("authenticator error")
)

// KeyPair identifies a passkey credential and its P-256 public key.
type KeyPair struct {
	KeyID   string
	PubKeyX *big.Int
	PubKeyY *big.Int
}

// CredentialID is the bytes32 id the verifier uses to look up the credential.
func (k KeyPair) CredentialID() [32]byte {
	return crypto.Keccak256Hash([]byte(k.KeyID))
}

// IsZero reports whether either public key coordinate is missing or zero. Such
// a key cannot initialise an account.
func (k KeyPair) IsZero() bool {
	return k.PubKeyX == nil || k.PubKeyY == nil || k.PubKeyX.Sign() == 0 || k.PubKeyY.Sign() == 0
}

// Assertion is a finished WebAuthn assertion over a challenge. The client data
// JSON is split around the base64url challenge so the verifier can rebuild it
// without parsing JSON on-chain.
type Assertion struct {
	CredentialID      [32]byte
	R                 *big.Int
	S                 *big.Int
	AuthenticatorData []byte
	ClientDataPrefix  string
	ClientDataSuffix  string
}

// Signer produces an assertion for a challenge. Implementations may block until
// the platform authenticator UI times out.
type Signer interface {
	SignChallenge(ctx context.Context, challenge common.Hash) (*Assertion, error)
}

// SignerFunc adapts a function to the Signer interface.
type SignerFunc func(ctx context.Context, challenge common.Hash) (*Assertion, error)

func (f SignerFunc) SignChallenge(ctx context.Context, challenge common.Hash) (*Assertion, error) {
	return f(ctx, challenge)
}
