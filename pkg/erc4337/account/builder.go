package account

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/passkeys-aa/pkg/eip1559"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
	"github.com/AvaProtocol/passkeys-aa/pkg/logger"
)

// Builder turns TransactionDetails into user operations for one account.
type Builder struct {
	account    SmartAccount
	chain      Chain
	entryPoint common.Address
	chainID    *big.Int
	logger     logger.Logger
}

// NewBuilder returns a Builder for acct. The logger may be nil.
func NewBuilder(acct SmartAccount, chain Chain, entryPoint common.Address, chainID *big.Int, lgr logger.Logger) *Builder {
	return &Builder{
		account:    acct,
		chain:      chain,
		entryPoint: entryPoint,
		chainID:    new(big.Int).Set(chainID),
		logger:     logger.EnsureLogger(lgr),
	}
}

func (b *Builder) EntryPoint() common.Address { return b.entryPoint }

func (b *Builder) ChainID() *big.Int { return new(big.Int).Set(b.chainID) }

// UserOpHash is the hash the account signs for op on this builder's chain.
func (b *Builder) UserOpHash(op *userop.UserOperation) common.Hash {
	return op.GetUserOpHash(b.entryPoint, b.chainID)
}

// CreateUnsignedUserOp fills every field of the operation except the signature.
func (b *Builder) CreateUnsignedUserOp(ctx context.Context, details TransactionDetails) (*userop.UserOperation, error) {
	sender, err := b.account.AccountAddress(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve account address: %w", err)
	}

	callData, err := b.account.EncodeExecute(ctx, details.Target, details.Value, details.Data)
	if err != nil {
		return nil, fmt.Errorf("cannot encode execute call: %w", err)
	}

	phantom, err := b.account.IsPhantom(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot check deployment status: %w", err)
	}

	// A queued operation with a nonce above zero follows one that deploys
	// the account, so only the first carries init code.
	deploys := phantom && (details.Nonce == nil || details.Nonce.Sign() == 0)

	var initCode []byte
	initGas := new(big.Int)
	if deploys {
		initCode, err = b.account.InitCode(ctx)
		if err != nil {
			return nil, err
		}
		initGas, err = b.estimateCreationGas(ctx, initCode)
		if err != nil {
			return nil, err
		}
	}

	callGasLimit := details.GasLimit
	if callGasLimit == nil {
		gas, err := b.chain.EstimateGas(ctx, ethereum.CallMsg{
			From: b.entryPoint,
			To:   &sender,
			Data: callData,
		})
		if err != nil {
			return nil, fmt.Errorf("cannot estimate call gas: %w", err)
		}
		callGasLimit = new(big.Int).SetUint64(gas)
	}

	verificationGasLimit, err := b.account.VerificationGasLimit(ctx)
	if err != nil {
		return nil, err
	}
	verificationGasLimit = new(big.Int).Add(verificationGasLimit, initGas)

	maxFeePerGas, maxPriorityFeePerGas := details.MaxFeePerGas, details.MaxPriorityFeePerGas
	if maxFeePerGas == nil || maxPriorityFeePerGas == nil {
		suggestedMax, suggestedPrio, err := eip1559.SuggestFee(ctx, b.chain)
		if err != nil {
			return nil, err
		}
		if maxFeePerGas == nil {
			maxFeePerGas = suggestedMax
		}
		if maxPriorityFeePerGas == nil {
			maxPriorityFeePerGas = suggestedPrio
		}
	}

	nonce := details.Nonce
	if nonce == nil {
		nonce, err = b.account.Nonce(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot fetch account nonce: %w", err)
		}
	}

	op := &userop.UserOperation{
		Sender:               sender,
		Nonce:                new(big.Int).Set(nonce),
		InitCode:             initCode,
		CallData:             callData,
		CallGasLimit:         new(big.Int).Set(callGasLimit),
		VerificationGasLimit: verificationGasLimit,
		MaxFeePerGas:         new(big.Int).Set(maxFeePerGas),
		MaxPriorityFeePerGas: new(big.Int).Set(maxPriorityFeePerGas),
		PaymasterAndData:     details.PaymasterAndData,
	}

	op.PreVerificationGas, err = b.account.PreVerificationGas(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("cannot compute preVerificationGas: %w", err)
	}

	b.logger.Debug("built unsigned user operation",
		"sender", sender.Hex(),
		"nonce", op.Nonce.String(),
		"phantom", phantom,
		"initCode", len(initCode) > 0,
		"callGasLimit", op.CallGasLimit.String(),
		"verificationGasLimit", op.VerificationGasLimit.String(),
		"preVerificationGas", op.PreVerificationGas.String())

	return op, nil
}

// CreateSignedUserOp builds the operation and has the account sign it.
func (b *Builder) CreateSignedUserOp(ctx context.Context, details TransactionDetails) (*userop.UserOperation, error) {
	op, err := b.CreateUnsignedUserOp(ctx, details)
	if err != nil {
		return nil, err
	}
	return b.account.SignUserOp(ctx, op)
}

// estimateCreationGas prices the factory call carried by initCode.
func (b *Builder) estimateCreationGas(ctx context.Context, initCode []byte) (*big.Int, error) {
	if len(initCode) < common.AddressLength {
		return nil, fmt.Errorf("init code too short: %d bytes", len(initCode))
	}
	factory := common.BytesToAddress(initCode[:common.AddressLength])
	gas, err := b.chain.EstimateGas(ctx, ethereum.CallMsg{
		To:   &factory,
		Data: initCode[common.AddressLength:],
	})
	if err != nil {
		return nil, fmt.Errorf("cannot estimate account creation gas: %w", err)
	}
	return new(big.Int).SetUint64(gas), nil
}
