package account

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/passkeys-aa/core/testutil"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
)

// fakeAccount is a SmartAccount with canned answers.
type fakeAccount struct {
	address  common.Address
	phantom  bool
	initCode []byte
	nonce    *big.Int
	signed   int
	signErr  error
}

func (f *fakeAccount) AccountAddress(ctx context.Context) (common.Address, error) {
	return f.address, nil
}

func (f *fakeAccount) IsPhantom(ctx context.Context) (bool, error) { return f.phantom, nil }

func (f *fakeAccount) InitCode(ctx context.Context) ([]byte, error) { return f.initCode, nil }

func (f *fakeAccount) Nonce(ctx context.Context) (*big.Int, error) { return f.nonce, nil }

func (f *fakeAccount) EncodeExecute(ctx context.Context, target common.Address, value *big.Int, data []byte) ([]byte, error) {
	return append(target.Bytes(), data...), nil
}

func (f *fakeAccount) VerificationGasLimit(ctx context.Context) (*big.Int, error) {
	return big.NewInt(600000), nil
}

func (f *fakeAccount) PreVerificationGas(ctx context.Context, op *userop.UserOperation) (*big.Int, error) {
	return CalcPreVerificationGas(op, DefaultGasOverheads()), nil
}

func (f *fakeAccount) SignUserOp(ctx context.Context, op *userop.UserOperation) (*userop.UserOperation, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	f.signed++
	signed := op.Copy()
	signed.Signature = []byte{0xde, 0xad}
	return signed, nil
}

func newTestBuilder(acct SmartAccount) (*Builder, *testutil.StubChain) {
	chain := testutil.NewStubChain(testutil.TestFactoryAddress)
	return NewBuilder(acct, chain, testutil.TestEntrypointAddress, big.NewInt(11155111), nil), chain
}

func TestCreateUnsignedUserOpPhantomAccount(t *testing.T) {
	acct := &fakeAccount{
		address:  common.HexToAddress("0x7c3a76086588230c7B3f4839A4c1F5BBafcd57C6"),
		phantom:  true,
		initCode: append(testutil.TestFactoryAddress.Bytes(), 0xbb, 0x0b, 0x36, 0x51),
		nonce:    big.NewInt(0),
	}
	builder, chain := newTestBuilder(acct)

	op, err := builder.CreateUnsignedUserOp(context.Background(), TransactionDetails{
		Target: testutil.TestTargetAddress,
		Data:   []byte{0x01, 0x02},
	})
	require.NoError(t, err)

	assert.Equal(t, acct.address, op.Sender)
	assert.Equal(t, acct.initCode, op.InitCode)
	assert.Equal(t, append(testutil.TestTargetAddress.Bytes(), 0x01, 0x02), op.CallData)
	assert.Equal(t, int64(chain.CallGas), op.CallGasLimit.Int64())
	assert.Equal(t, int64(600000+chain.CreationGas), op.VerificationGasLimit.Int64())
	assert.Equal(t, int64(0), op.Nonce.Int64())
	assert.Empty(t, op.Signature)
	assert.Equal(t, 2, chain.Calls("EstimateGas"))

	// 1.5 gwei tip plus buffer is under the 2 gwei floor, 2 * 8 gwei + 2 gwei under the 20 gwei floor
	assert.Equal(t, "2000000000", op.MaxPriorityFeePerGas.String())
	assert.Equal(t, "20000000000", op.MaxFeePerGas.String())

	assert.Equal(t, CalcPreVerificationGas(op, DefaultGasOverheads()), op.PreVerificationGas)
}

func TestCreateUnsignedUserOpDeployedAccountUsesDetails(t *testing.T) {
	acct := &fakeAccount{
		address: common.HexToAddress("0x7c3a76086588230c7B3f4839A4c1F5BBafcd57C6"),
		nonce:   big.NewInt(7),
	}
	builder, chain := newTestBuilder(acct)

	op, err := builder.CreateUnsignedUserOp(context.Background(), TransactionDetails{
		Target:               testutil.TestTargetAddress,
		GasLimit:             big.NewInt(90000),
		MaxFeePerGas:         big.NewInt(30_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(3_000_000_000),
		Nonce:                big.NewInt(9),
	})
	require.NoError(t, err)

	assert.Empty(t, op.InitCode)
	assert.Equal(t, int64(90000), op.CallGasLimit.Int64())
	assert.Equal(t, int64(600000), op.VerificationGasLimit.Int64())
	assert.Equal(t, int64(30_000_000_000), op.MaxFeePerGas.Int64())
	assert.Equal(t, int64(3_000_000_000), op.MaxPriorityFeePerGas.Int64())
	assert.Equal(t, int64(9), op.Nonce.Int64())
	assert.Equal(t, 0, chain.Calls("EstimateGas"))
}

func TestCreateUnsignedUserOpQueuedBehindDeployment(t *testing.T) {
	acct := &fakeAccount{
		address:  common.HexToAddress("0x7c3a76086588230c7B3f4839A4c1F5BBafcd57C6"),
		phantom:  true,
		initCode: append(testutil.TestFactoryAddress.Bytes(), 0xbb, 0x0b, 0x36, 0x51),
		nonce:    big.NewInt(0),
	}
	builder, chain := newTestBuilder(acct)

	// nonce 0 deploys the account, so nonce 2 must not try again
	op, err := builder.CreateUnsignedUserOp(context.Background(), TransactionDetails{
		Target: testutil.TestTargetAddress,
		Nonce:  big.NewInt(2),
	})
	require.NoError(t, err)

	assert.Empty(t, op.InitCode)
	assert.Equal(t, int64(600000), op.VerificationGasLimit.Int64())
	assert.Equal(t, int64(2), op.Nonce.Int64())
	assert.Equal(t, 1, chain.Calls("EstimateGas"))

	first, err := builder.CreateUnsignedUserOp(context.Background(), TransactionDetails{
		Target: testutil.TestTargetAddress,
		Nonce:  big.NewInt(0),
	})
	require.NoError(t, err)
	assert.Equal(t, acct.initCode, first.InitCode)
}

func TestCreateUnsignedUserOpEstimateFailure(t *testing.T) {
	acct := &fakeAccount{nonce: big.NewInt(0)}
	builder, chain := newTestBuilder(acct)
	boom := errors.New("execution reverted")
	chain.EstimateErr = boom

	_, err := builder.CreateUnsignedUserOp(context.Background(), TransactionDetails{Target: testutil.TestTargetAddress})
	assert.ErrorIs(t, err, boom)
}

func TestCreateSignedUserOp(t *testing.T) {
	acct := &fakeAccount{nonce: big.NewInt(1)}
	builder, _ := newTestBuilder(acct)

	op, err := builder.CreateSignedUserOp(context.Background(), TransactionDetails{Target: testutil.TestTargetAddress})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad}, op.Signature)
	assert.Equal(t, 1, acct.signed)

	acct.signErr = errors.New("cancelled")
	_, err = builder.CreateSignedUserOp(context.Background(), TransactionDetails{Target: testutil.TestTargetAddress})
	assert.ErrorIs(t, err, acct.signErr)
}

func TestUserOpHashUsesBuilderChain(t *testing.T) {
	builder, _ := newTestBuilder(&fakeAccount{})
	op := &userop.UserOperation{Nonce: big.NewInt(1)}

	assert.Equal(t, op.GetUserOpHash(testutil.TestEntrypointAddress, big.NewInt(11155111)), builder.UserOpHash(op))
	assert.Equal(t, testutil.TestEntrypointAddress, builder.EntryPoint())
	assert.Equal(t, int64(11155111), builder.ChainID().Int64())
}
