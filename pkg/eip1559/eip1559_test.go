package eip1559

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	tip     *big.Int
	baseFee *big.Int
	err     error
}

func (f *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tip, nil
}

func (f *fakeBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: f.baseFee}, nil
}

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

func TestSuggestFee(t *testing.T) {
	tests := []struct {
		name        string
		tip         *big.Int
		baseFee     *big.Int
		wantMaxFee  *big.Int
		wantPrioFee *big.Int
	}{
		{
			name:        "tiny tip and base fee hit both floors",
			tip:         big.NewInt(1),
			baseFee:     big.NewInt(1),
			wantMaxFee:  gwei(20),
			wantPrioFee: gwei(2),
		},
		{
			name:        "busy chain",
			tip:         gwei(10),
			baseFee:     gwei(50),
			wantMaxFee:  new(big.Int).Add(gwei(100), big.NewInt(11_300_000_000)),
			wantPrioFee: big.NewInt(11_300_000_000),
		},
		{
			name:        "legacy chain",
			tip:         gwei(3),
			baseFee:     nil,
			wantMaxFee:  big.NewInt(3_390_000_000),
			wantPrioFee: big.NewInt(3_390_000_000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxFee, prio, err := SuggestFee(context.Background(), &fakeBackend{tip: tt.tip, baseFee: tt.baseFee})
			require.NoError(t, err)
			assert.Equal(t, 0, tt.wantMaxFee.Cmp(maxFee), "maxFee %s", maxFee)
			assert.Equal(t, 0, tt.wantPrioFee.Cmp(prio), "prio %s", prio)
		})
	}
}

func TestSuggestFeeBackendError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := SuggestFee(context.Background(), &fakeBackend{err: boom})
	assert.ErrorIs(t, err, boom)
}
