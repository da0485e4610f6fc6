// Package userop models the EntryPoint v0.6 UserOperation and its hash.
package userop

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// UserOperation represents an EIP-4337 style transaction for a smart contract account.
type UserOperation struct {
	Sender               common.Address
	Nonce                *big.Int
	InitCode             []byte
	CallData             []byte
	CallGasLimit         *big.Int
	VerificationGasLimit *big.Int
	PreVerificationGas   *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	PaymasterAndData     []byte
	Signature            []byte
}

var (
	address, _ = abi.NewType("address", "", nil)
	uint256, _ = abi.NewType("uint256", "", nil)
	bytes32, _ = abi.NewType("bytes32", "", nil)
	bytesT, _  = abi.NewType("bytes", "", nil)

	packArgs = abi.Arguments{
		{Name: "sender", Type: address},
		{Name: "nonce", Type: uint256},
		{Name: "hashInitCode", Type: bytes32},
		{Name: "hashCallData", Type: bytes32},
		{Name: "callGasLimit", Type: uint256},
		{Name: "verificationGasLimit", Type: uint256},
		{Name: "preVerificationGas", Type: uint256},
		{Name: "maxFeePerGas", Type: uint256},
		{Name: "maxPriorityFeePerGas", Type: uint256},
		{Name: "hashPaymasterAndData", Type: bytes32},
	}

	hashArgs = abi.Arguments{
		{Name: "userOpHash", Type: bytes32},
		{Name: "entryPoint", Type: address},
		{Name: "chainId", Type: uint256},
	}

	fullArgs = abi.Arguments{
		{Name: "sender", Type: address},
		{Name: "nonce", Type: uint256},
		{Name: "initCode", Type: bytesT},
		{Name: "callData", Type: bytesT},
		{Name: "callGasLimit", Type: uint256},
		{Name: "verificationGasLimit", Type: uint256},
		{Name: "preVerificationGas", Type: uint256},
		{Name: "maxFeePerGas", Type: uint256},
		{Name: "maxPriorityFeePerGas", Type: uint256},
		{Name: "paymasterAndData", Type: bytesT},
		{Name: "signature", Type: bytesT},
	}
)

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func orEmpty(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// Pack returns abi.encode of the operation without its signature, with the
// dynamic fields replaced by their keccak256 hashes.
func (op *UserOperation) Pack() []byte {
	packed, err := packArgs.Pack(
		op.Sender,
		orZero(op.Nonce),
		crypto.Keccak256Hash(op.InitCode),
		crypto.Keccak256Hash(op.CallData),
		orZero(op.CallGasLimit),
		orZero(op.VerificationGasLimit),
		orZero(op.PreVerificationGas),
		orZero(op.MaxFeePerGas),
		orZero(op.MaxPriorityFeePerGas),
		crypto.Keccak256Hash(op.PaymasterAndData),
	)
	if err != nil {
		// Only fails on negative values, which are not valid quantities.
		panic(err)
	}
	return packed
}

// PackForGas returns the abi encoding of the struct members, signature included,
// without the leading tuple offset word. Its bytes drive the calldata cost part
// of preVerificationGas.
func (op *UserOperation) PackForGas() []byte {
	packed, err := fullArgs.Pack(
		op.Sender,
		orZero(op.Nonce),
		orEmpty(op.InitCode),
		orEmpty(op.CallData),
		orZero(op.CallGasLimit),
		orZero(op.VerificationGasLimit),
		orZero(op.PreVerificationGas),
		orZero(op.MaxFeePerGas),
		orZero(op.MaxPriorityFeePerGas),
		orEmpty(op.PaymasterAndData),
		orEmpty(op.Signature),
	)
	if err != nil {
		panic(err)
	}
	return packed
}

// GetUserOpHash computes keccak256(abi.encode(keccak256(pack(op)), entryPoint, chainId)).
// The result is both the signing challenge and the bundler tracking key.
func (op *UserOperation) GetUserOpHash(entryPoint common.Address, chainID *big.Int) common.Hash {
	encoded, err := hashArgs.Pack(crypto.Keccak256Hash(op.Pack()), entryPoint, orZero(chainID))
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(encoded)
}

// Copy returns a deep copy so builders never mutate an operation that may
// already have been hashed.
func (op *UserOperation) Copy() *UserOperation {
	cp := func(v *big.Int) *big.Int {
		if v == nil {
			return nil
		}
		return new(big.Int).Set(v)
	}
	cb := func(b []byte) []byte {
		if b == nil {
			return nil
		}
		return append([]byte{}, b...)
	}

	return &UserOperation{
		Sender:               op.Sender,
		Nonce:                cp(op.Nonce),
		InitCode:             cb(op.InitCode),
		CallData:             cb(op.CallData),
		CallGasLimit:         cp(op.CallGasLimit),
		VerificationGasLimit: cp(op.VerificationGasLimit),
		PreVerificationGas:   cp(op.PreVerificationGas),
		MaxFeePerGas:         cp(op.MaxFeePerGas),
		MaxPriorityFeePerGas: cp(op.MaxPriorityFeePerGas),
		PaymasterAndData:     cb(op.PaymasterAndData),
		Signature:            cb(op.Signature),
	}
}

// userOperationJSON is the hex encoded form bundlers accept over JSON-RPC.
type userOperationJSON struct {
	Sender               common.Address `json:"sender"`
	Nonce                *hexutil.Big   `json:"nonce"`
	InitCode             hexutil.Bytes  `json:"initCode"`
	CallData             hexutil.Bytes  `json:"callData"`
	CallGasLimit         *hexutil.Big   `json:"callGasLimit"`
	VerificationGasLimit *hexutil.Big   `json:"verificationGasLimit"`
	PreVerificationGas   *hexutil.Big   `json:"preVerificationGas"`
	MaxFeePerGas         *hexutil.Big   `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *hexutil.Big   `json:"maxPriorityFeePerGas"`
	PaymasterAndData     hexutil.Bytes  `json:"paymasterAndData"`
	Signature            hexutil.Bytes  `json:"signature"`
}

// MarshalJSON encodes quantities and byte fields as 0x-prefixed hex.
func (op UserOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(userOperationJSON{
		Sender:               op.Sender,
		Nonce:                (*hexutil.Big)(orZero(op.Nonce)),
		InitCode:             orEmpty(op.InitCode),
		CallData:             orEmpty(op.CallData),
		CallGasLimit:         (*hexutil.Big)(orZero(op.CallGasLimit)),
		VerificationGasLimit: (*hexutil.Big)(orZero(op.VerificationGasLimit)),
		PreVerificationGas:   (*hexutil.Big)(orZero(op.PreVerificationGas)),
		MaxFeePerGas:         (*hexutil.Big)(orZero(op.MaxFeePerGas)),
		MaxPriorityFeePerGas: (*hexutil.Big)(orZero(op.MaxPriorityFeePerGas)),
		PaymasterAndData:     orEmpty(op.PaymasterAndData),
		Signature:            orEmpty(op.Signature),
	})
}

// UnmarshalJSON decodes the bundler JSON form.
func (op *UserOperation) UnmarshalJSON(data []byte) error {
	var raw userOperationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	toInt := func(v *hexutil.Big) *big.Int {
		if v == nil {
			return nil
		}
		return v.ToInt()
	}

	*op = UserOperation{
		Sender:               raw.Sender,
		Nonce:                toInt(raw.Nonce),
		InitCode:             raw.InitCode,
		CallData:             raw.CallData,
		CallGasLimit:         toInt(raw.CallGasLimit),
		VerificationGasLimit: toInt(raw.VerificationGasLimit),
		PreVerificationGas:   toInt(raw.PreVerificationGas),
		MaxFeePerGas:         toInt(raw.MaxFeePerGas),
		MaxPriorityFeePerGas: toInt(raw.MaxPriorityFeePerGas),
		PaymasterAndData:     raw.PaymasterAndData,
		Signature:            raw.Signature,
	}
	return nil
}
