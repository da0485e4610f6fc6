package passkey

import (
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomAssertion(rng *rand.Rand) *Assertion {
	var id [32]byte
	rng.Read(id[:])

	randInt := func() *big.Int {
		b := make([]byte, rng.Intn(33))
		rng.Read(b)
		return new(big.Int).SetBytes(b)
	}

	authData := make([]byte, rng.Intn(128))
	rng.Read(authData)

	randString := func() string {
		const alphabet = `abcdefghijklmnopqrstuvwxyz0123456789{}":,./-_ `
		var sb strings.Builder
		n := rng.Intn(96)
		for i := 0; i < n; i++ {
			sb.WriteByte(alphabet[rng.Intn(len(alphabet))])
		}
		return sb.String()
	}

	return &Assertion{
		CredentialID:      id,
		R:                 randInt(),
		S:                 randInt(),
		AuthenticatorData: authData,
		ClientDataPrefix:  randString(),
		ClientDataSuffix:  randString(),
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(4337))

	for i := 0; i < 200; i++ {
		want := randomAssertion(rng)

		blob, err := EncodeSignature(want)
		require.NoError(t, err)

		got, err := DecodeSignature(blob)
		require.NoError(t, err)

		assert.Equal(t, want.CredentialID, got.CredentialID)
		assert.Zero(t, want.R.Cmp(got.R), "r mismatch on iteration %d", i)
		assert.Zero(t, want.S.Cmp(got.S), "s mismatch on iteration %d", i)
		assert.Equal(t, want.AuthenticatorData, got.AuthenticatorData)
		assert.Equal(t, want.ClientDataPrefix, got.ClientDataPrefix)
		assert.Equal(t, want.ClientDataSuffix, got.ClientDataSuffix)
	}
}

func TestEncodeSignatureFieldLayout(t *testing.T) {
	a := &Assertion{
		CredentialID:      [32]byte{0x01},
		R:                 big.NewInt(2),
		S:                 big.NewInt(3),
		AuthenticatorData: []byte{0xaa},
		ClientDataPrefix:  `{"type":"webauthn.get","challenge":"`,
		ClientDataSuffix:  `","origin":"https://example.org"}`,
	}

	blob, err := EncodeSignature(a)
	require.NoError(t, err)

	// Head: id, r, s static; authData, prefix, suffix are offsets.
	require.True(t, len(blob) > 6*32)
	assert.Equal(t, byte(0x01), blob[0])
	assert.Equal(t, byte(2), blob[63])
	assert.Equal(t, byte(3), blob[95])
	assert.Equal(t, byte(6*32), blob[127], "authData offset")
}

func TestEncodeSignatureRejectsIncomplete(t *testing.T) {
	_, err := EncodeSignature(nil)
	assert.Error(t, err)

	_, err = EncodeSignature(&Assertion{R: big.NewInt(1)})
	assert.Error(t, err)
}

func TestDecodeSignatureRejectsGarbage(t *testing.T) {
	_, err := DecodeSignature([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestCredentialIDIsKeccakOfKeyID(t *testing.T) {
	k := KeyPair{KeyID: "credential-1"}
	assert.Equal(t, k.CredentialID(), KeyPair{KeyID: "credential-1"}.CredentialID())
	assert.NotEqual(t, k.CredentialID(), KeyPair{KeyID: "credential-2"}.CredentialID())
}

func TestKeyPairIsZero(t *testing.T) {
	assert.True(t, KeyPair{}.IsZero())
	assert.True(t, KeyPair{PubKeyX: big.NewInt(1), PubKeyY: big.NewInt(0)}.IsZero())
	assert.True(t, KeyPair{PubKeyX: big.NewInt(0), PubKeyY: big.NewInt(1)}.IsZero())
	assert.False(t, KeyPair{PubKeyX: big.NewInt(1), PubKeyY: big.NewInt(1)}.IsZero())
}

func TestDummySignatureDecodes(t *testing.T) {
	sig := DummySignature()

	a, err := DecodeSignature(sig)
	require.NoError(t, err)
	assert.Len(t, a.AuthenticatorData, 37)
	assert.Equal(t, 0, a.S.Cmp(p256HalfOrder))
	assert.Greater(t, len(sig), 65*5)
}
