package passkey

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var signatureArgs abi.Arguments

func init() {
	bytes32, _ := abi.NewType("bytes32", "", nil)
	uint256, _ := abi.NewType("uint256", "", nil)
	bytesT, _ := abi.NewType("bytes", "", nil)
	stringT, _ := abi.NewType("string", "", nil)

	// Order and types are fixed by the verifier's calldata layout.
	signatureArgs = abi.Arguments{
		{Name: "id", Type: bytes32},
		{Name: "r", Type: uint256},
		{Name: "s", Type: uint256},
		{Name: "authData", Type: bytesT},
		{Name: "clientDataPrefix", Type: stringT},
		{Name: "clientDataSuffix", Type: stringT},
	}
}

// EncodeSignature ABI-encodes an assertion into the signature blob placed in
// UserOperation.signature.
func EncodeSignature(a *Assertion) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("nil assertion")
	}
	if a.R == nil || a.S == nil {
		return nil, fmt.Errorf("assertion is missing r or s")
	}
	authData := a.AuthenticatorData
	if authData == nil {
		authData = []byte{}
	}

	return signatureArgs.Pack(
		a.CredentialID,
		a.R,
		a.S,
		authData,
		a.ClientDataPrefix,
		a.ClientDataSuffix,
	)
}

// DecodeSignature is the reference decoder for EncodeSignature.
func DecodeSignature(sig []byte) (*Assertion, error) {
	values, err := signatureArgs.Unpack(sig)
	if err != nil {
		return nil, fmt.Errorf("cannot decode passkey signature: %w", err)
	}
	if len(values) != len(signatureArgs) {
		return nil, fmt.Errorf("unexpected number of signature fields: %d", len(values))
	}

	id, ok := values[0].([32]byte)
	if !ok {
		return nil, fmt.Errorf("invalid id field type %T", values[0])
	}
	r, ok := values[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid r field type %T", values[1])
	}
	s, ok := values[2].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid s field type %T", values[2])
	}
	authData, ok := values[3].([]byte)
	if !ok {
		return nil, fmt.Errorf("invalid authData field type %T", values[3])
	}
	prefix, ok := values[4].(string)
	if !ok {
		return nil, fmt.Errorf("invalid clientDataPrefix field type %T", values[4])
	}
	suffix, ok := values[5].(string)
	if !ok {
		return nil, fmt.Errorf("invalid clientDataSuffix field type %T", values[5])
	}

	return &Assertion{
		CredentialID:      id,
		R:                 r,
		S:                 s,
		AuthenticatorData: authData,
		ClientDataPrefix:  prefix,
		ClientDataSuffix:  suffix,
	}, nil
}

// DummySignature is a well-formed signature of realistic size that will not
// verify. Bundlers need one to simulate an operation before it is signed.
func DummySignature() []byte {
	authData := make([]byte, 37)
	for i := range authData {
		authData[i] = 0xff
	}
	maxWord := new(big.Int).Sub(p256Order, big.NewInt(1))

	sig, err := EncodeSignature(&Assertion{
		CredentialID:      [32]byte{0xff},
		R:                 maxWord,
		S:                 new(big.Int).Set(p256HalfOrder),
		AuthenticatorData: authData,
		ClientDataPrefix:  `{"type":"webauthn.get","challenge":"`,
		ClientDataSuffix:  `","origin":"https://passkeys.example.org","crossOrigin":false}`,
	})
	if err != nil {
		panic(err)
	}
	return sig
}
