package account

import (
	"math/big"

	"github.com/AvaProtocol/passkeys-aa/pkg/erc4337/userop"
)

// GasOverheads are the constants of the reference pre-verification gas formula.
type GasOverheads struct {
	// Fixed is the per-bundle transaction overhead, split over BundleSize.
	Fixed uint64
	// PerUserOp is the per-operation bundler overhead.
	PerUserOp uint64
	// PerUserOpWord is charged per 32-byte word of the packed operation.
	PerUserOpWord uint64
	// ZeroByte and NonZeroByte are the calldata costs.
	ZeroByte    uint64
	NonZeroByte uint64
	// BundleSize is the expected number of operations per bundle.
	BundleSize uint64
	// SigSize is the length of the placeholder signature used when the
	// operation is not signed yet.
	SigSize int
}

// DefaultGasOverheads mirrors the values used by the reference bundler.
func DefaultGasOverheads() GasOverheads {
	return GasOverheads{
		Fixed:         21000,
		PerUserOp:     18300,
		PerUserOpWord: 4,
		ZeroByte:      4,
		NonZeroByte:   16,
		BundleSize:    1,
		SigSize:       65,
	}
}

// CalcPreVerificationGas estimates the gas a bundler spends on an operation
// outside of its verification and execution: calldata plus a share of the
// bundle overhead. The operation is not modified.
func CalcPreVerificationGas(op *userop.UserOperation, ov GasOverheads) *big.Int {
	p := op.Copy()
	if p.PreVerificationGas == nil {
		p.PreVerificationGas = big.NewInt(21000)
	}
	if len(p.Signature) == 0 {
		p.Signature = make([]byte, ov.SigSize)
		for i := range p.Signature {
			p.Signature[i] = 1
		}
	}

	packed := p.PackForGas()
	lengthInWord := uint64(len(packed)+31) / 32

	var callDataCost uint64
	for _, b := range packed {
		if b == 0 {
			callDataCost += ov.ZeroByte
		} else {
			callDataCost += ov.NonZeroByte
		}
	}

	bundleSize := ov.BundleSize
	if bundleSize == 0 {
		bundleSize = 1
	}
	// fixed / bundleSize, rounded half up
	fixedShare := (ov.Fixed + bundleSize/2) / bundleSize

	total := callDataCost + fixedShare + ov.PerUserOp + ov.PerUserOpWord*lengthInWord
	return new(big.Int).SetUint64(total)
}
