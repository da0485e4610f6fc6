package passkey

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-webauthn/webauthn/protocol"
)

// Verify checks an assertion against a key pair the way the account contract
// does: rebuild clientDataJSON around the challenge, check the authenticator
// flags and verify the P-256 signature.
func Verify(key KeyPair, challenge common.Hash, a *Assertion) error {
	if a == nil {
		return fmt.Errorf("nil assertion")
	}
	if key.IsZero() {
		return fmt.Errorf("zero passkey key")
	}
	if a.CredentialID != key.CredentialID() {
		return fmt.Errorf("credential id mismatch")
	}

	var authData protocol.AuthenticatorData
	if err := authData.Unmarshal(a.AuthenticatorData); err != nil {
		return fmt.Errorf("invalid authenticator data: %w", err)
	}
	if authData.Flags&protocol.FlagUserPresent == 0 {
		return fmt.Errorf("user presence flag not set")
	}

	if a.R == nil || a.S == nil || a.R.Sign() <= 0 || a.S.Sign() <= 0 {
		return fmt.Errorf("invalid signature values")
	}
	if a.S.Cmp(p256HalfOrder) > 0 {
		return fmt.Errorf("signature s is not in the lower half order")
	}

	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: key.PubKeyX, Y: key.PubKeyY}
	digest := assertionDigest(a.AuthenticatorData, ClientDataJSON(a, challenge))
	if !ecdsa.Verify(pub, digest[:], a.R, a.S) {
		return fmt.Errorf("signature does not match passkey")
	}

	return nil
}
