package aa

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	abiOnce    sync.Once
	abiErr     error
	factoryABI *abi.ABI
	accountABI *abi.ABI
)

func loadABIs() error {
	abiOnce.Do(func() {
		factoryABI, abiErr = PassKeysAccountFactoryMetaData.GetAbi()
		if abiErr != nil {
			abiErr = fmt.Errorf("invalid factory ABI: %w", abiErr)
			return
		}
		accountABI, abiErr = PassKeysAccountMetaData.GetAbi()
		if abiErr != nil {
			abiErr = fmt.Errorf("invalid account ABI: %w", abiErr)
		}
	})
	return abiErr
}

// GetInitCode returns factory || createAccount(index, keyId, x, y). The entry
// point deploys the account from it on the first operation.
func GetInitCode(factory common.Address, index *big.Int, keyID string, pubKeyX, pubKeyY *big.Int) ([]byte, error) {
	if err := loadABIs(); err != nil {
		return nil, err
	}

	calldata, err := factoryABI.Pack("createAccount", index, keyID, pubKeyX, pubKeyY)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, common.AddressLength+len(calldata))
	data = append(data, factory.Bytes()...)
	data = append(data, calldata...)
	return data, nil
}

// PackExecute generates calldata for the account's execute entry point.
func PackExecute(targetAddress common.Address, ethValue *big.Int, calldata []byte) ([]byte, error) {
	if err := loadABIs(); err != nil {
		return nil, err
	}
	if ethValue == nil {
		ethValue = new(big.Int)
	}
	if calldata == nil {
		calldata = []byte{}
	}

	return accountABI.Pack("execute", targetAddress, ethValue, calldata)
}

// PackExecuteBatch generates calldata for executeBatch.
func PackExecuteBatch(targets []common.Address, calldata [][]byte) ([]byte, error) {
	if err := loadABIs(); err != nil {
		return nil, err
	}
	if len(targets) != len(calldata) {
		return nil, fmt.Errorf("executeBatch length mismatch: %d targets, %d calls", len(targets), len(calldata))
	}

	return accountABI.Pack("executeBatch", targets, calldata)
}

// FactoryABI exposes the parsed factory ABI, mostly for decoding in tests and tooling.
func FactoryABI() (*abi.ABI, error) {
	if err := loadABIs(); err != nil {
		return nil, err
	}
	return factoryABI, nil
}

// AccountABI exposes the parsed account ABI.
func AccountABI() (*abi.ABI, error) {
	if err := loadABIs(); err != nil {
		return nil, err
	}
	return accountABI, nil
}
