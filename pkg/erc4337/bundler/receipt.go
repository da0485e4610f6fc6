package bundler

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/lo"

	"github.com/AvaProtocol/passkeys-aa/core/chainio/aa"
	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
)

// UserOperationReceipt is the bundler's answer to eth_getUserOperationReceipt.
// Raw keeps the payload as received.
type UserOperationReceipt struct {
	UserOpHash    common.Hash         `json:"userOpHash"`
	Sender        common.Address      `json:"sender"`
	Nonce         *big.Int            `json:"-"`
	Paymaster     common.Address      `json:"paymaster"`
	ActualGasCost *big.Int            `json:"-"`
	ActualGasUsed *big.Int            `json:"-"`
	Success       bool                `json:"success"`
	Reason        string              `json:"reason,omitempty"`
	Logs          []ReceiptLog        `json:"logs"`
	Receipt       *TransactionReceipt `json:"receipt"`

	Raw json.RawMessage `json:"-"`
}

// ReceiptLog is an event log as bundlers return it. Fields some bundlers omit
// are left zero.
type ReceiptLog struct {
	Address         common.Address `json:"address"`
	Topics          []common.Hash  `json:"topics"`
	Data            hexutil.Bytes  `json:"data"`
	TransactionHash common.Hash    `json:"transactionHash"`
	LogIndex        *Quantity      `json:"logIndex"`
}

// TransactionReceipt is the bundle transaction that included the operation.
type TransactionReceipt struct {
	TransactionHash common.Hash    `json:"transactionHash"`
	BlockHash       common.Hash    `json:"blockHash"`
	BlockNumber     *Quantity      `json:"blockNumber"`
	GasUsed         *Quantity      `json:"gasUsed"`
	Status          hexutil.Uint64 `json:"status"`
}

func (r *UserOperationReceipt) UnmarshalJSON(input []byte) error {
	type plain UserOperationReceipt
	var dec struct {
		*plain
		Nonce         *Quantity `json:"nonce"`
		ActualGasCost *Quantity `json:"actualGasCost"`
		ActualGasUsed *Quantity `json:"actualGasUsed"`
	}
	dec.plain = (*plain)(r)
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}

	r.Nonce = dec.Nonce.Big()
	r.ActualGasCost = dec.ActualGasCost.Big()
	r.ActualGasUsed = dec.ActualGasUsed.Big()
	r.Raw = append(json.RawMessage{}, input...)
	return nil
}

// UserOperationEvents returns the EntryPoint UserOperationEvent logs in the
// receipt.
func (r *UserOperationReceipt) UserOperationEvents() []ReceiptLog {
	return lo.Filter(r.Logs, func(l ReceiptLog, _ int) bool {
		return len(l.Topics) > 0 && l.Topics[0] == aa.UserOperationEventTopic
	})
}

// UserOperationByHash is the answer to eth_getUserOperationByHash.
type UserOperationByHash struct {
	UserOperation   *userop.UserOperation `json:"userOperation"`
	EntryPoint      common.Address        `json:"entryPoint"`
	TransactionHash common.Hash           `json:"transactionHash"`
	BlockHash       common.Hash           `json:"blockHash"`
	BlockNumber     *Quantity             `json:"blockNumber"`
}

// Pending reports whether the operation is still in the bundler mempool.
func (u *UserOperationByHash) Pending() bool {
	return u.BlockNumber == nil || u.BlockNumber.Big().Sign() == 0
}
