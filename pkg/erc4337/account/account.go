// Package account builds ERC-4337 user operations for any smart account that
// implements SmartAccount. The account supplies identity, calldata, gas policy
// and signing; the Builder assembles them into a UserOperation.
package account

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/passkeys-aa/pkg/eip1559"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
)

// Chain is the read-only chain access used by accounts and the builder.
// *ethclient.Client satisfies it.
type Chain interface {
	bind.ContractCaller
	ethereum.GasEstimator
	eip1559.FeeBackend
}

// SmartAccount is the capability set a concrete account exposes to the builder.
type SmartAccount interface {
	AccountAddress(ctx context.Context) (common.Address, error)
	IsPhantom(ctx context.Context) (bool, error)
	InitCode(ctx context.Context) ([]byte, error)
	Nonce(ctx context.Context) (*big.Int, error)
	EncodeExecute(ctx context.Context, target common.Address, value *big.Int, data []byte) ([]byte, error)
	VerificationGasLimit(ctx context.Context) (*big.Int, error)
	PreVerificationGas(ctx context.Context, op *userop.UserOperation) (*big.Int, error)
	SignUserOp(ctx context.Context, op *userop.UserOperation) (*userop.UserOperation, error)
}

// TransactionDetails describes the call the account should make. Nil gas and
// fee fields are estimated.
type TransactionDetails struct {
	Target               common.Address
	Value                *big.Int
	Data                 []byte
	GasLimit             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	// Nonce overrides the account nonce, e.g. when several operations are
	// queued before the first one lands.
	Nonce            *big.Int
	PaymasterAndData []byte
}
