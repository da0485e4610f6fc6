package eip1559

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// MinPriorityFee keeps bundlers interested on quiet chains.
	MinPriorityFee = big.NewInt(2_000_000_000) // 2 gwei
	// MinMaxFee covers chains with a spiky base fee.
	MinMaxFee = big.NewInt(20_000_000_000) // 20 gwei
)

// FeeBackend is the subset of ethclient.Client needed to price an operation.
type FeeBackend interface {
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// SuggestFee returns maxFeePerGas and maxPriorityFeePerGas for the next block.
func SuggestFee(ctx context.Context, client FeeBackend) (*big.Int, *big.Int, error) {
	tipCap, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot suggest gas tip cap: %w", err)
	}

	header, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot fetch latest header: %w", err)
	}

	// 13% on top of the suggested tip
	buffer := new(big.Int).Div(tipCap, big.NewInt(100))
	buffer.Mul(buffer, big.NewInt(13))
	maxPriorityFeePerGas := new(big.Int).Add(tipCap, buffer)

	if maxPriorityFeePerGas.Cmp(MinPriorityFee) < 0 {
		maxPriorityFeePerGas = new(big.Int).Set(MinPriorityFee)
	}

	var maxFeePerGas *big.Int
	if baseFee := header.BaseFee; baseFee != nil {
		// maxFeePerGas = 2 * baseFee + tip, so the op survives a doubling of the base fee
		maxFeePerGas = new(big.Int).Add(
			new(big.Int).Mul(baseFee, big.NewInt(2)),
			maxPriorityFeePerGas,
		)
		if maxFeePerGas.Cmp(MinMaxFee) < 0 {
			maxFeePerGas = new(big.Int).Set(MinMaxFee)
		}
	} else {
		// Legacy chain
		maxFeePerGas = new(big.Int).Set(maxPriorityFeePerGas)
	}

	return maxFeePerGas, maxPriorityFeePerGas, nil
}
