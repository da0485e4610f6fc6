package testutil

import (
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
)

// RPCError is returned by the stub bundler with a JSON-RPC error code.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string  { return e.Message }
func (e *RPCError) ErrorCode() int { return e.Code }

// StubBundler is an ERC-4337 bundler speaking JSON-RPC over HTTP, backed by
// go-ethereum's rpc server. Operations it accepts become receipts after
// IncludeAfterPolls receipt lookups.
type StubBundler struct {
	URL string

	server *httptest.Server
	svc    *bundlerService
}

// NewStubBundler starts a bundler reporting chainID and serving entryPoint.
func NewStubBundler(chainID uint64, entryPoint common.Address) *StubBundler {
	svc := &bundlerService{
		chainID:    chainID,
		entryPoint: entryPoint,
		calls:      map[string]int{},
		receipts:   map[common.Hash]json.RawMessage{},
		pending:    map[common.Hash]*pendingOp{},
	}

	server := rpc.NewServer()
	if err := server.RegisterName("eth", svc); err != nil {
		panic(err)
	}
	ts := httptest.NewServer(server)

	return &StubBundler{URL: ts.URL, server: ts, svc: svc}
}

func (b *StubBundler) Close() {
	b.server.Close()
}

// Calls reports how many requests the bundler saw for a JSON-RPC method.
func (b *StubBundler) Calls(method string) int {
	b.svc.mu.Lock()
	defer b.svc.mu.Unlock()
	return b.svc.calls[method]
}

// Sent returns the operations accepted so far.
func (b *StubBundler) Sent() []*userop.UserOperation {
	b.svc.mu.Lock()
	defer b.svc.mu.Unlock()
	return append([]*userop.UserOperation{}, b.svc.sent...)
}

// SetChainIDDelay slows down eth_chainId, to keep callers waiting on readiness.
func (b *StubBundler) SetChainIDDelay(d time.Duration) {
	b.svc.mu.Lock()
	defer b.svc.mu.Unlock()
	b.svc.chainIDDelay = d
}

// SetIncludeAfterPolls sets how many receipt lookups return null before an
// accepted operation is reported as included. Negative means never.
func (b *StubBundler) SetIncludeAfterPolls(n int) {
	b.svc.mu.Lock()
	defer b.svc.mu.Unlock()
	b.svc.includeAfterPolls = n
}

// SetSendError makes eth_sendUserOperation fail with err.
func (b *StubBundler) SetSendError(err error) {
	b.svc.mu.Lock()
	defer b.svc.mu.Unlock()
	b.svc.sendErr = err
}

// SetGasEstimate fixes the eth_estimateUserOperationGas answer.
func (b *StubBundler) SetGasEstimate(preVerificationGas, verificationGasLimit, callGasLimit *big.Int) {
	b.svc.mu.Lock()
	defer b.svc.mu.Unlock()
	b.svc.estimate = map[string]*hexutil.Big{
		"preVerificationGas":   (*hexutil.Big)(preVerificationGas),
		"verificationGasLimit": (*hexutil.Big)(verificationGasLimit),
		"callGasLimit":         (*hexutil.Big)(callGasLimit),
	}
}

// OnInclude registers a hook run when an operation becomes included, so
// tests can advance a StubChain alongside.
func (b *StubBundler) OnInclude(fn func(op *userop.UserOperation)) {
	b.svc.mu.Lock()
	defer b.svc.mu.Unlock()
	b.svc.onInclude = fn
}

// AddReceipt serves body verbatim for hash.
func (b *StubBundler) AddReceipt(hash common.Hash, body json.RawMessage) {
	b.svc.mu.Lock()
	defer b.svc.mu.Unlock()
	b.svc.receipts[hash] = body
}

type pendingOp struct {
	op    *userop.UserOperation
	polls int
}

type bundlerService struct {
	chainID    uint64
	entryPoint common.Address

	mu                sync.Mutex
	calls             map[string]int
	chainIDDelay      time.Duration
	includeAfterPolls int
	sendErr           error
	estimate          map[string]*hexutil.Big
	onInclude         func(op *userop.UserOperation)
	sent              []*userop.UserOperation
	pending           map[common.Hash]*pendingOp
	receipts          map[common.Hash]json.RawMessage
}

func (s *bundlerService) count(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
}

func (s *bundlerService) ChainId() hexutil.Uint64 {
	s.count("eth_chainId")

	s.mu.Lock()
	delay := s.chainIDDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return hexutil.Uint64(s.chainID)
}

func (s *bundlerService) SupportedEntryPoints() []common.Address {
	s.count("eth_supportedEntryPoints")
	return []common.Address{s.entryPoint}
}

func (s *bundlerService) SendUserOperation(op userop.UserOperation, entryPoint common.Address) (common.Hash, error) {
	s.count("eth_sendUserOperation")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return common.Hash{}, s.sendErr
	}
	if entryPoint != s.entryPoint {
		return common.Hash{}, &RPCError{Code: -32602, Message: "unsupported entrypoint"}
	}

	cp := op.Copy()
	hash := cp.GetUserOpHash(s.entryPoint, new(big.Int).SetUint64(s.chainID))
	s.sent = append(s.sent, cp)
	s.pending[hash] = &pendingOp{op: cp}
	return hash, nil
}

func (s *bundlerService) EstimateUserOperationGas(op userop.UserOperation, entryPoint common.Address) (map[string]*hexutil.Big, error) {
	s.count("eth_estimateUserOperationGas")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.estimate == nil {
		return nil, &RPCError{Code: -32601, Message: "estimation disabled"}
	}
	return s.estimate, nil
}

func (s *bundlerService) GetUserOperationByHash(hash common.Hash) (map[string]interface{}, error) {
	s.count("eth_getUserOperationByHash")

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[hash]
	if !ok {
		return nil, nil
	}
	return map[string]interface{}{
		"userOperation": p.op,
		"entryPoint":    s.entryPoint,
	}, nil
}

func (s *bundlerService) GetUserOperationReceipt(hash common.Hash) (json.RawMessage, error) {
	s.count("eth_getUserOperationReceipt")

	s.mu.Lock()
	if body, ok := s.receipts[hash]; ok {
		s.mu.Unlock()
		return body, nil
	}

	p, ok := s.pending[hash]
	if !ok || s.includeAfterPolls < 0 || p.polls < s.includeAfterPolls {
		if ok {
			p.polls++
		}
		s.mu.Unlock()
		return nil, nil
	}

	body := receiptFor(hash, p.op)
	s.receipts[hash] = body
	delete(s.pending, hash)
	hook := s.onInclude
	s.mu.Unlock()

	if hook != nil {
		hook(p.op)
	}
	return body, nil
}

func receiptFor(hash common.Hash, op *userop.UserOperation) json.RawMessage {
	txHash := common.BytesToHash(append(hash.Bytes()[16:], hash.Bytes()[:16]...))
	body, err := json.Marshal(map[string]interface{}{
		"userOpHash":    hash,
		"sender":        op.Sender,
		"nonce":         (*hexutil.Big)(op.Nonce),
		"paymaster":     common.Address{},
		"actualGasCost": (*hexutil.Big)(big.NewInt(412_000_000_000_000)),
		"actualGasUsed": (*hexutil.Big)(big.NewInt(206_000)),
		"success":       true,
		"logs":          []interface{}{},
		"receipt": map[string]interface{}{
			"transactionHash": txHash,
			"blockHash":       common.HexToHash("0x01"),
			"blockNumber":     (*hexutil.Big)(big.NewInt(101)),
			"gasUsed":         (*hexutil.Big)(big.NewInt(230_000)),
			"status":          hexutil.Uint64(1),
		},
	})
	if err != nil {
		panic(err)
	}
	return body
}
