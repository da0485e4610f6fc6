package passkey

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// EncodeChallenge returns the base64url (unpadded) form of a challenge, as it
// appears in the clientDataJSON "challenge" member.
func EncodeChallenge(challenge common.Hash) string {
	return base64.RawURLEncoding.EncodeToString(challenge.Bytes())
}

// SplitClientData splits clientDataJSON around the encoded challenge.
func SplitClientData(clientDataJSON []byte, challenge common.Hash) (prefix string, suffix string, err error) {
	raw := string(clientDataJSON)
	encoded := EncodeChallenge(challenge)

	idx := strings.Index(raw, encoded)
	if idx < 0 {
		return "", "", fmt.Errorf("challenge %s not found in client data", encoded)
	}

	return raw[:idx], raw[idx+len(encoded):], nil
}

// ClientDataJSON rebuilds the signed clientDataJSON from an assertion the same
// way the on-chain verifier does.
func ClientDataJSON(a *Assertion, challenge common.Hash) []byte {
	return []byte(a.ClientDataPrefix + EncodeChallenge(challenge) + a.ClientDataSuffix)
}
