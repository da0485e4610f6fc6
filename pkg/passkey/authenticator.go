package passkey

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-webauthn/webauthn/protocol"
)

var (
	p256Order     = elliptic.P256().Params().N
	p256HalfOrder = new(big.Int).Rsh(p256Order, 1)
)

// VirtualAuthenticator is a software P-256 authenticator. It produces the same
// assertion shape a platform authenticator would and is meant for development
// setups and tests.
type VirtualAuthenticator struct {
	keyID  string
	rpID   string
	origin string

	mu        sync.Mutex
	key       *ecdsa.PrivateKey
	counter   uint32
	cancelled bool
}

// NewVirtualAuthenticator creates an authenticator with a freshly generated key.
func NewVirtualAuthenticator(keyID, rpID, origin string) (*VirtualAuthenticator, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cannot generate passkey: %w", err)
	}
	return NewVirtualAuthenticatorFromKey(keyID, rpID, origin, key), nil
}

// NewVirtualAuthenticatorFromKey wraps an existing P-256 private key.
func NewVirtualAuthenticatorFromKey(keyID, rpID, origin string, key *ecdsa.PrivateKey) *VirtualAuthenticator {
	return &VirtualAuthenticator{
		keyID:  keyID,
		rpID:   rpID,
		origin: origin,
		key:    key,
	}
}

// PrivateKeyFromHex parses a raw P-256 scalar, with or without 0x.
func PrivateKeyFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	raw, err := hexutil.Decode("0x" + strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid passkey private key: %w", err)
	}
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, fmt.Errorf("passkey private key out of range")
	}

	key := &ecdsa.PrivateKey{D: d}
	key.PublicKey.Curve = curve
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(raw)
	return key, nil
}

// KeyPair returns the public half registered with the account factory.
func (v *VirtualAuthenticator) KeyPair() KeyPair {
	return KeyPair{
		KeyID:   v.keyID,
		PubKeyX: new(big.Int).Set(v.key.PublicKey.X),
		PubKeyY: new(big.Int).Set(v.key.PublicKey.Y),
	}
}

// SetCancelled makes subsequent ceremonies fail as if the user dismissed the prompt.
func (v *VirtualAuthenticator) SetCancelled(cancelled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cancelled = cancelled
}

// SignChallenge implements Signer.
func (v *VirtualAuthenticator) SignChallenge(ctx context.Context, challenge common.Hash) (*Assertion, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticator, err)
	}

	v.mu.Lock()
	if v.cancelled {
		v.mu.Unlock()
		return nil, ErrUserCancelled
	}
	v.counter++
	counter := v.counter
	v.mu.Unlock()

	authData := v.authenticatorData(counter)

	clientData, err := json.Marshal(protocol.CollectedClientData{
		Type:      protocol.AssertCeremony,
		Challenge: EncodeChallenge(challenge),
		Origin:    v.origin,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot encode client data: %v", ErrAuthenticator, err)
	}

	prefix, suffix, err := SplitClientData(clientData, challenge)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticator, err)
	}

	digest := assertionDigest(authData, clientData)
	r, s, err := ecdsa.Sign(rand.Reader, v.key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticator, err)
	}

	// Verifiers reject the high-s form.
	if s.Cmp(p256HalfOrder) > 0 {
		s = new(big.Int).Sub(p256Order, s)
	}

	return &Assertion{
		CredentialID:      v.KeyPair().CredentialID(),
		R:                 r,
		S:                 s,
		AuthenticatorData: authData,
		ClientDataPrefix:  prefix,
		ClientDataSuffix:  suffix,
	}, nil
}

// authenticatorData is rpIdHash || flags || signCount with no attested
// credential data or extensions.
func (v *VirtualAuthenticator) authenticatorData(counter uint32) []byte {
	rpIDHash := sha256.Sum256([]byte(v.rpID))

	data := make([]byte, 0, 37)
	data = append(data, rpIDHash[:]...)
	data = append(data, byte(protocol.FlagUserPresent|protocol.FlagUserVerified))
	data = binary.BigEndian.AppendUint32(data, counter)
	return data
}

// assertionDigest is the message a WebAuthn assertion signs:
// sha256(authenticatorData || sha256(clientDataJSON)).
func assertionDigest(authData, clientDataJSON []byte) [32]byte {
	clientHash := sha256.Sum256(clientDataJSON)
	msg := make([]byte, 0, len(authData)+len(clientHash))
	msg = append(msg, authData...)
	msg = append(msg, clientHash[:]...)
	return sha256.Sum256(msg)
}
