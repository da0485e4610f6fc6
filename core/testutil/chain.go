package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/AvaProtocol/passkeys-aa/core/chainio/aa"
)

var errReverted = errors.New("execution reverted")

// StubChain is an in-memory chain backend: it serves the passkey factory's
// getAddress view, the account's nonce view, code lookups, gas estimation and
// fee data. It satisfies account.Chain.
type StubChain struct {
	Factory common.Address

	CallGas     uint64
	CreationGas uint64
	TipCap      *big.Int
	BaseFee     *big.Int

	// EstimateErr, when set, fails every EstimateGas call.
	EstimateErr error

	mu     sync.Mutex
	code   map[common.Address][]byte
	nonces map[common.Address]*big.Int
	calls  map[string]int
}

func NewStubChain(factory common.Address) *StubChain {
	c := &StubChain{
		Factory:     factory,
		CallGas:     35000,
		CreationGas: 250000,
		TipCap:      big.NewInt(1_500_000_000),
		BaseFee:     big.NewInt(8_000_000_000),
		code:        map[common.Address][]byte{},
		nonces:      map[common.Address]*big.Int{},
		calls:       map[string]int{},
	}
	if factory != (common.Address{}) {
		c.code[factory] = []byte{0x60, 0x80, 0x60, 0x40}
	}
	return c
}

// DeriveAddress is the address the stub factory reports for these arguments.
func (c *StubChain) DeriveAddress(index *big.Int, keyID string, x, y *big.Int) common.Address {
	factoryABI, err := aa.FactoryABI()
	if err != nil {
		panic(err)
	}
	args, err := factoryABI.Methods["getAddress"].Inputs.Pack(index, keyID, x, y)
	if err != nil {
		panic(err)
	}
	return c.deriveFromPackedArgs(args)
}

func (c *StubChain) deriveFromPackedArgs(args []byte) common.Address {
	return common.BytesToAddress(crypto.Keccak256(c.Factory.Bytes(), args)[12:])
}

// Deploy marks addr as a contract with nonce 0.
func (c *StubChain) Deploy(addr common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code[addr] = []byte{0x60, 0x80}
	if _, ok := c.nonces[addr]; !ok {
		c.nonces[addr] = new(big.Int)
	}
}

// Include simulates the entry point executing one operation from sender:
// the account gets deployed if needed and its nonce moves forward.
func (c *StubChain) Include(sender common.Address) {
	c.Deploy(sender)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nonces[sender] = new(big.Int).Add(c.nonces[sender], big.NewInt(1))
}

// Calls reports how many times a backend method or contract view was hit,
// e.g. "CodeAt", "EstimateGas", "getAddress", "nonce".
func (c *StubChain) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *StubChain) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["CodeAt"]++
	return append([]byte{}, c.code[contract]...), nil
}

func (c *StubChain) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if call.To == nil || len(call.Data) < 4 {
		return nil, errReverted
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if *call.To == c.Factory {
		factoryABI, err := aa.FactoryABI()
		if err != nil {
			return nil, err
		}
		method, err := factoryABI.MethodById(call.Data[:4])
		if err != nil {
			return nil, errReverted
		}
		c.calls[method.Name]++

		switch method.Name {
		case "getAddress":
			return method.Outputs.Pack(c.deriveFromPackedArgs(call.Data[4:]))
		case "accountImplementation":
			return method.Outputs.Pack(common.HexToAddress("0x000000000000000000000000000000000000aa01"))
		}
		return nil, errReverted
	}

	if len(c.code[*call.To]) == 0 {
		// Same as a node: calling an address without code returns nothing.
		return []byte{}, nil
	}

	accountABI, err := aa.AccountABI()
	if err != nil {
		return nil, err
	}
	method, err := accountABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, errReverted
	}
	c.calls[method.Name]++

	switch method.Name {
	case "nonce":
		nonce := new(big.Int)
		if n, ok := c.nonces[*call.To]; ok {
			nonce.Set(n)
		}
		return method.Outputs.Pack(nonce)
	case "entryPoint":
		return method.Outputs.Pack(aa.EntrypointAddress)
	}
	return nil, fmt.Errorf("%w: %s not supported by stub", errReverted, method.Name)
}

func (c *StubChain) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls["EstimateGas"]++

	if c.EstimateErr != nil {
		return 0, c.EstimateErr
	}
	if call.To != nil && *call.To == c.Factory {
		return c.CreationGas, nil
	}
	return c.CallGas, nil
}

func (c *StubChain) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.TipCap), nil
}

func (c *StubChain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	h := &types.Header{Number: big.NewInt(100)}
	if c.BaseFee != nil {
		h.BaseFee = new(big.Int).Set(c.BaseFee)
	}
	return h, nil
}
