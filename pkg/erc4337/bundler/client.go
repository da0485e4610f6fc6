// Package bundler talks to an ERC-4337 bundler over JSON-RPC.
//
// A BundlerClient checks once, in the background, that the bundler serves the
// configured chain. Every call waits for that check and fails with its result
// if it did not pass.
package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-resty/resty/v2"

	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/aaerrors"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
	"github.com/AvaProtocol/passkeys-aa/pkg/logger"
)

const (
	DefaultValidationTimeout = 30 * time.Second
	DefaultHTTPTimeout       = 30 * time.Second
)

// Metrics records the outcome of each bundler call.
type Metrics interface {
	IncBundlerCall(method, status string)
}

type Option func(*BundlerClient)

func WithMetrics(m Metrics) Option {
	return func(bc *BundlerClient) { bc.metrics = m }
}

// WithValidationTimeout bounds the background chain id check.
func WithValidationTimeout(d time.Duration) Option {
	return func(bc *BundlerClient) { bc.validationTimeout = d }
}

func WithHTTPTimeout(d time.Duration) Option {
	return func(bc *BundlerClient) { bc.httpTimeout = d }
}

// BundlerClient defines a client for interacting with an EIP-4337 bundler RPC endpoint.
type BundlerClient struct {
	client  *rpc.Client
	http    *resty.Client
	url     string
	chainID *big.Int
	logger  logger.Logger
	metrics Metrics

	validationTimeout time.Duration
	httpTimeout       time.Duration

	requestID atomic.Uint64

	// ready is closed once readyErr holds the validation result.
	ready    chan struct{}
	readyErr error
	cancel   context.CancelFunc
}

// NewBundlerClient connects to bundlerURL and starts verifying that it serves
// chainID. It does not wait for the check; ctx only bounds the check itself.
func NewBundlerClient(ctx context.Context, bundlerURL string, chainID *big.Int, lgr logger.Logger, opts ...Option) (*BundlerClient, error) {
	if err := validateURL(bundlerURL); err != nil {
		return nil, err
	}
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, &aaerrors.ConfigurationError{Field: "chain_id", Reason: "chain id not set"}
	}

	c, err := rpc.DialHTTP(bundlerURL)
	if err != nil {
		return nil, fmt.Errorf("error creating bundler client: %w", err)
	}

	bc := &BundlerClient{
		client:            c,
		url:               bundlerURL,
		chainID:           new(big.Int).Set(chainID),
		logger:            logger.EnsureLogger(lgr),
		validationTimeout: DefaultValidationTimeout,
		httpTimeout:       DefaultHTTPTimeout,
		ready:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(bc)
	}

	bc.http = resty.New().
		SetTimeout(bc.httpTimeout).
		SetHeader("Content-Type", "application/json")

	vctx, cancel := context.WithTimeout(ctx, bc.validationTimeout)
	bc.cancel = cancel
	go bc.validateChain(vctx)

	return bc, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return &aaerrors.ConfigurationError{Field: "bundler_url", Reason: "bundler url not set"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &aaerrors.ConfigurationError{Field: "bundler_url", Reason: err.Error()}
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return &aaerrors.ConfigurationError{Field: "bundler_url", Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return &aaerrors.ConfigurationError{Field: "bundler_url", Reason: "missing host"}
	}
	return nil
}

func (bc *BundlerClient) validateChain(ctx context.Context) {
	defer close(bc.ready)
	defer bc.cancel()

	var id hexutil.Big
	err := bc.client.CallContext(ctx, &id, "eth_chainId")
	bc.record("eth_chainId", err)
	if err != nil {
		bc.readyErr = fmt.Errorf("cannot fetch bundler chain id: %w", err)
		return
	}

	if (*big.Int)(&id).Cmp(bc.chainID) != 0 {
		bc.readyErr = &aaerrors.ChainMismatchError{
			Endpoint: bc.url,
			Expected: new(big.Int).Set(bc.chainID),
			Actual:   new(big.Int).Set((*big.Int)(&id)),
		}
		return
	}

	bc.logger.Debug("bundler chain verified", "url", bc.url, "chainId", bc.chainID.String())
}

// Ready waits for the chain check and returns its result. The result never
// changes for the life of the client.
func (bc *BundlerClient) Ready(ctx context.Context) error {
	select {
	case <-bc.ready:
		return bc.readyErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ChainID is the chain the client was configured for.
func (bc *BundlerClient) ChainID() *big.Int {
	return new(big.Int).Set(bc.chainID)
}

func (bc *BundlerClient) URL() string {
	return bc.url
}

// Close closes the underlying RPC client connection.
func (bc *BundlerClient) Close() {
	bc.cancel()
	bc.client.Close()
}

// GetUserOperationReceipt fetches the receipt of a UserOperation. It returns
// nil and no error while the operation is not included yet.
func (bc *BundlerClient) GetUserOperationReceipt(ctx context.Context, hash common.Hash) (*UserOperationReceipt, error) {
	if err := bc.Ready(ctx); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err := bc.client.CallContext(ctx, &raw, "eth_getUserOperationReceipt", hash)
	bc.record("eth_getUserOperationReceipt", err)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}

	var receipt UserOperationReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("cannot decode user operation receipt: %w", err)
	}
	return &receipt, nil
}

// GetUserOperationByHash fetches a UserOperation by its hash, nil if the
// bundler does not know it.
func (bc *BundlerClient) GetUserOperationByHash(ctx context.Context, hash common.Hash) (*UserOperationByHash, error) {
	if err := bc.Ready(ctx); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	err := bc.client.CallContext(ctx, &raw, "eth_getUserOperationByHash", hash)
	bc.record("eth_getUserOperationByHash", err)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}

	var result UserOperationByHash
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("cannot decode user operation: %w", err)
	}
	return &result, nil
}

// SupportedEntryPoints lists the entry points the bundler accepts operations for.
func (bc *BundlerClient) SupportedEntryPoints(ctx context.Context) ([]common.Address, error) {
	if err := bc.Ready(ctx); err != nil {
		return nil, err
	}

	var entryPoints []common.Address
	err := bc.client.CallContext(ctx, &entryPoints, "eth_supportedEntryPoints")
	bc.record("eth_supportedEntryPoints", err)
	return entryPoints, err
}

// SendUserOperation submits a signed operation and returns the hash the
// bundler tracks it by. Nothing is retried.
func (bc *BundlerClient) SendUserOperation(ctx context.Context, op *userop.UserOperation, entrypoint common.Address) (common.Hash, error) {
	if err := bc.Ready(ctx); err != nil {
		return common.Hash{}, err
	}

	bc.logger.Debug("sending user operation",
		"sender", op.Sender.Hex(),
		"nonce", op.Nonce.String(),
		"entrypoint", entrypoint.Hex(),
		"signature", safePreview(hexutil.Encode(op.Signature), 50))

	// Some bundlers require the EIP-55 checksummed EntryPoint address.
	var hash common.Hash
	err := bc.httpCall(ctx, &hash, "eth_sendUserOperation", op, entrypoint.Hex())
	bc.record("eth_sendUserOperation", err)
	if err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// EstimateUserOperationGas estimates the gas required for a UserOperation.
// https://eips.ethereum.org/EIPS/eip-4337#rpc-methods-eth-namespace
// The signature is not checked, but it has to have the right shape, e.g.
// passkey.DummySignature().
func (bc *BundlerClient) EstimateUserOperationGas(ctx context.Context, op *userop.UserOperation, entrypoint common.Address) (*GasEstimation, error) {
	if err := bc.Ready(ctx); err != nil {
		return nil, err
	}

	var result gasEstimationJSON
	err := bc.httpCall(ctx, &result, "eth_estimateUserOperationGas", op, entrypoint.Hex())
	bc.record("eth_estimateUserOperationGas", err)
	if err != nil {
		return nil, fmt.Errorf("eth_estimateUserOperationGas RPC response error: %w", err)
	}
	return result.toGasEstimation(), nil
}

type jsonrpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// httpCall posts a single JSON-RPC request with resty.
func (bc *BundlerClient) httpCall(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	var resp jsonrpcResponse
	httpResp, err := bc.http.R().
		SetContext(ctx).
		SetBody(jsonrpcRequest{
			JSONRPC: "2.0",
			ID:      bc.requestID.Add(1),
			Method:  method,
			Params:  params,
		}).
		SetResult(&resp).
		Post(bc.url)
	if err != nil {
		return err
	}
	if httpResp.IsError() {
		return fmt.Errorf("bundler returned HTTP %d: %s", httpResp.StatusCode(), safePreview(httpResp.String(), 200))
	}
	if resp.Error != nil {
		return resp.Error
	}
	if isNull(resp.Result) {
		return fmt.Errorf("missing result in %s response", method)
	}
	return json.Unmarshal(resp.Result, result)
}

func (bc *BundlerClient) record(method string, err error) {
	if bc.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	bc.metrics.IncBundlerCall(method, status)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// safePreview returns a truncated preview of s with ellipsis when longer than n
func safePreview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
