package testutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"math/big"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/ethereum/go-ethereum/common"

	pklogger "github.com/AvaProtocol/passkeys-aa/pkg/logger"
	"github.com/AvaProtocol/passkeys-aa/pkg/passkey"
)

const (
	TestRPID   = "wallet.example.org"
	TestOrigin = "https://wallet.example.org"
	TestKeyID  = "test-passkey-1"
)

var (
	TestFactoryAddress    = common.HexToAddress("0x29adA1b5217242DEaBB142BC3b1bCfFdd56008e7")
	TestEntrypointAddress = common.HexToAddress("0x5FF137D4b0FDCD49DcA30c7CF57E578a026d2789")
	TestTargetAddress     = common.HexToAddress("0xe0f7D11FD714674722d325Cd86062A5F1882E13a")
)

func GetLogger() sdklogging.Logger {
	logger, err := pklogger.New(sdklogging.Development)
	if err != nil {
		panic(err)
	}
	return logger
}

// TestAuthenticator returns a virtual authenticator whose key is derived from
// seed, so tests get stable key pairs and addresses.
func TestAuthenticator(keyID string, seed int64) *passkey.VirtualAuthenticator {
	curve := elliptic.P256()
	d := new(big.Int).SetInt64(seed)
	d.Add(d, big.NewInt(1_000_003))

	key := &ecdsa.PrivateKey{D: d}
	key.PublicKey.Curve = curve
	key.PublicKey.X, key.PublicKey.Y = curve.ScalarBaseMult(d.Bytes())

	return passkey.NewVirtualAuthenticatorFromKey(keyID, TestRPID, TestOrigin, key)
}
