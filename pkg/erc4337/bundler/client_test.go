package bundler

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/passkeys-aa/core/chainio/aa"
	"github.com/AvaProtocol/passkeys-aa/core/testutil"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/aaerrors"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
)

type countingMetrics struct {
	mu    sync.Mutex
	calls map[string]int
}

func (m *countingMetrics) IncBundlerCall(method, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[method+"/"+status]++
}

func newTestClient(t *testing.T, stub *testutil.StubBundler, chainID int64, opts ...Option) *BundlerClient {
	t.Helper()
	bc, err := NewBundlerClient(context.Background(), stub.URL, big.NewInt(chainID), testutil.GetLogger(), opts...)
	require.NoError(t, err)
	t.Cleanup(bc.Close)
	return bc
}

func sampleOp() *userop.UserOperation {
	return &userop.UserOperation{
		Sender:               common.HexToAddress("0x7c3a76086588230c7B3f4839A4c1F5BBafcd57C6"),
		Nonce:                big.NewInt(0),
		CallData:             []byte{0xb6, 0x1d, 0x27, 0xf6},
		CallGasLimit:         big.NewInt(35000),
		VerificationGasLimit: big.NewInt(850000),
		PreVerificationGas:   big.NewInt(212940),
		MaxFeePerGas:         big.NewInt(20_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(2_000_000_000),
		Signature:            []byte{0x01},
	}
}

func TestNewBundlerClientRejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "ftp://bundler.example.org", "bundler.example.org", "http://"} {
		_, err := NewBundlerClient(context.Background(), u, big.NewInt(1), nil)

		var cfgErr *aaerrors.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr, "url %q", u)
	}

	_, err := NewBundlerClient(context.Background(), "http://localhost:4337", nil, nil)
	var cfgErr *aaerrors.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestChainMismatchFailsEveryCall(t *testing.T) {
	ctx := context.Background()
	stub := testutil.NewStubBundler(5, testutil.TestEntrypointAddress)
	defer stub.Close()

	bc := newTestClient(t, stub, 1)

	for i := 0; i < 3; i++ {
		receipt, err := bc.GetUserOperationReceipt(ctx, common.HexToHash("0x01"))
		assert.Nil(t, receipt)

		var mismatch *aaerrors.ChainMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, int64(1), mismatch.Expected.Int64())
		assert.Equal(t, int64(5), mismatch.Actual.Int64())
		assert.Equal(t, stub.URL, mismatch.Endpoint)
	}

	var mismatch *aaerrors.ChainMismatchError
	_, err := bc.SendUserOperation(ctx, sampleOp(), testutil.TestEntrypointAddress)
	assert.ErrorAs(t, err, &mismatch)
	_, err = bc.EstimateUserOperationGas(ctx, sampleOp(), testutil.TestEntrypointAddress)
	assert.ErrorAs(t, err, &mismatch)
	_, err = bc.GetUserOperationByHash(ctx, common.HexToHash("0x01"))
	assert.ErrorAs(t, err, &mismatch)
	_, err = bc.SupportedEntryPoints(ctx)
	assert.ErrorAs(t, err, &mismatch)

	assert.Equal(t, 1, stub.Calls("eth_chainId"))
	assert.Equal(t, 0, stub.Calls("eth_getUserOperationReceipt"))
	assert.Equal(t, 0, stub.Calls("eth_sendUserOperation"))
	assert.Equal(t, 0, stub.Calls("eth_estimateUserOperationGas"))
	assert.Equal(t, 0, stub.Calls("eth_getUserOperationByHash"))
	assert.Equal(t, 0, stub.Calls("eth_supportedEntryPoints"))
}

func TestConcurrentCallersShareOneValidation(t *testing.T) {
	stub := testutil.NewStubBundler(11155111, testutil.TestEntrypointAddress)
	defer stub.Close()
	stub.SetChainIDDelay(100 * time.Millisecond)

	bc := newTestClient(t, stub, 11155111)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			receipt, err := bc.GetUserOperationReceipt(context.Background(), common.BigToHash(big.NewInt(int64(i))))
			assert.NoError(t, err)
			assert.Nil(t, receipt)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, stub.Calls("eth_chainId"))
	assert.Equal(t, 16, stub.Calls("eth_getUserOperationReceipt"))
}

func TestReadyHonoursContext(t *testing.T) {
	stub := testutil.NewStubBundler(1, testutil.TestEntrypointAddress)
	defer stub.Close()
	stub.SetChainIDDelay(500 * time.Millisecond)

	bc := newTestClient(t, stub, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bc.Ready(ctx), context.DeadlineExceeded)

	assert.NoError(t, bc.Ready(context.Background()))
}

func TestUnreachableBundler(t *testing.T) {
	stub := testutil.NewStubBundler(1, testutil.TestEntrypointAddress)
	stub.Close()

	bc := newTestClient(t, stub, 1)
	err := bc.Ready(context.Background())
	require.Error(t, err)

	var mismatch *aaerrors.ChainMismatchError
	assert.False(t, errors.As(err, &mismatch))
}

func TestGetUserOperationReceipt(t *testing.T) {
	ctx := context.Background()
	stub := testutil.NewStubBundler(1, testutil.TestEntrypointAddress)
	defer stub.Close()

	metrics := &countingMetrics{}
	bc := newTestClient(t, stub, 1, WithMetrics(metrics))

	hash := common.HexToHash("0x9a5b7d0cb2d4be2f5a8a1e63f0e96d9fd1d5b3e6f4f0c5a8f9d0e1c2b3a49586")
	receipt, err := bc.GetUserOperationReceipt(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, receipt)

	body := json.RawMessage(`{
		"userOpHash": "` + hash.Hex() + `",
		"sender": "0x7c3a76086588230c7B3f4839A4c1F5BBafcd57C6",
		"nonce": "0x2",
		"paymaster": "0x0000000000000000000000000000000000000000",
		"actualGasCost": 412000000000000,
		"actualGasUsed": "0x324b0",
		"success": false,
		"reason": "AA23 reverted",
		"logs": [
			{"address": "` + aa.EntrypointAddress.Hex() + `", "topics": ["` + aa.UserOperationEventTopic.Hex() + `"], "data": "0x"},
			{"address": "0x7c3a76086588230c7B3f4839A4c1F5BBafcd57C6", "topics": [], "data": "0x01"}
		],
		"receipt": {"transactionHash": "` + hash.Hex() + `", "blockNumber": "0x65", "status": "0x0"}
	}`)
	stub.AddReceipt(hash, body)

	receipt, err = bc.GetUserOperationReceipt(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, receipt)

	assert.Equal(t, hash, receipt.UserOpHash)
	assert.Equal(t, common.HexToAddress("0x7c3a76086588230c7B3f4839A4c1F5BBafcd57C6"), receipt.Sender)
	assert.Equal(t, int64(2), receipt.Nonce.Int64())
	assert.Equal(t, int64(412000000000000), receipt.ActualGasCost.Int64())
	assert.Equal(t, int64(0x324b0), receipt.ActualGasUsed.Int64())
	assert.False(t, receipt.Success)
	assert.Equal(t, "AA23 reverted", receipt.Reason)
	assert.Len(t, receipt.Logs, 2)
	assert.Len(t, receipt.UserOperationEvents(), 1)
	assert.Equal(t, int64(101), receipt.Receipt.BlockNumber.Big().Int64())
	assert.JSONEq(t, string(body), string(receipt.Raw))

	assert.Equal(t, 2, metrics.calls["eth_getUserOperationReceipt/ok"])
	assert.Equal(t, 1, metrics.calls["eth_chainId/ok"])
}

func TestSendUserOperation(t *testing.T) {
	ctx := context.Background()
	stub := testutil.NewStubBundler(11155111, testutil.TestEntrypointAddress)
	defer stub.Close()
	stub.SetIncludeAfterPolls(1)

	bc := newTestClient(t, stub, 11155111)

	op := sampleOp()
	hash, err := bc.SendUserOperation(ctx, op, testutil.TestEntrypointAddress)
	require.NoError(t, err)
	assert.Equal(t, op.GetUserOpHash(testutil.TestEntrypointAddress, big.NewInt(11155111)), hash)

	sent := stub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, op.Signature, sent[0].Signature)
	assert.Equal(t, 0, op.PreVerificationGas.Cmp(sent[0].PreVerificationGas))

	byHash, err := bc.GetUserOperationByHash(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, byHash)
	assert.True(t, byHash.Pending())
	assert.Equal(t, op.Sender, byHash.UserOperation.Sender)

	receipt, err := bc.GetUserOperationReceipt(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, receipt)

	receipt, err = bc.GetUserOperationReceipt(ctx, hash)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.True(t, receipt.Success)
	assert.Equal(t, op.Sender, receipt.Sender)

	missing, err := bc.GetUserOperationByHash(ctx, common.HexToHash("0xdead"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSendUserOperationRPCError(t *testing.T) {
	stub := testutil.NewStubBundler(1, testutil.TestEntrypointAddress)
	defer stub.Close()
	stub.SetSendError(&testutil.RPCError{Code: -32500, Message: "AA21 didn't pay prefund"})

	bc := newTestClient(t, stub, 1)

	_, err := bc.SendUserOperation(context.Background(), sampleOp(), testutil.TestEntrypointAddress)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32500, rpcErr.ErrorCode())
	assert.Contains(t, rpcErr.Message, "AA21")
}

func TestEstimateUserOperationGas(t *testing.T) {
	stub := testutil.NewStubBundler(1, testutil.TestEntrypointAddress)
	defer stub.Close()
	stub.SetGasEstimate(big.NewInt(60000), big.NewInt(700000), big.NewInt(45000))

	bc := newTestClient(t, stub, 1)

	est, err := bc.EstimateUserOperationGas(context.Background(), sampleOp(), testutil.TestEntrypointAddress)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), est.PreVerificationGas.Int64())
	assert.Equal(t, int64(700000), est.VerificationGasLimit.Int64())
	assert.Equal(t, int64(45000), est.CallGasLimit.Int64())

	entryPoints, err := bc.SupportedEntryPoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{testutil.TestEntrypointAddress}, entryPoints)
}

func TestQuantityDecoding(t *testing.T) {
	var est gasEstimationJSON
	require.NoError(t, json.Unmarshal([]byte(`{"preVerificationGas":"0x10","verificationGas":300,"callGasLimit":null}`), &est))

	got := est.toGasEstimation()
	assert.Equal(t, int64(16), got.PreVerificationGas.Int64())
	assert.Equal(t, int64(300), got.VerificationGasLimit.Int64())
	assert.Equal(t, int64(0), got.CallGasLimit.Int64())

	var q Quantity
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &q))
}
