package bundler

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type GasEstimation struct {
	PreVerificationGas   *big.Int
	VerificationGasLimit *big.Int
	CallGasLimit         *big.Int
	// VerificationGas is reported by older bundlers instead of VerificationGasLimit.
	VerificationGas *big.Int
}

type gasEstimationJSON struct {
	PreVerificationGas   *Quantity `json:"preVerificationGas"`
	VerificationGasLimit *Quantity `json:"verificationGasLimit"`
	CallGasLimit         *Quantity `json:"callGasLimit"`
	VerificationGas      *Quantity `json:"verificationGas"`
}

func (g *gasEstimationJSON) toGasEstimation() *GasEstimation {
	est := &GasEstimation{
		PreVerificationGas:   g.PreVerificationGas.Big(),
		VerificationGasLimit: g.VerificationGasLimit.Big(),
		CallGasLimit:         g.CallGasLimit.Big(),
		VerificationGas:      g.VerificationGas.Big(),
	}
	if est.VerificationGasLimit.Sign() == 0 {
		est.VerificationGasLimit = new(big.Int).Set(est.VerificationGas)
	}
	return est
}

// Quantity decodes both hex strings and plain JSON numbers, since bundlers
// disagree on how to encode gas values.
type Quantity big.Int

func (q *Quantity) UnmarshalJSON(input []byte) error {
	s := strings.TrimSpace(string(input))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var h hexutil.Big
		if err := json.Unmarshal(input, &h); err != nil {
			return err
		}
		*q = Quantity(h)
		return nil
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid quantity %s", s)
	}
	*q = Quantity(*v)
	return nil
}

func (q *Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal((*hexutil.Big)(q))
}

// Big returns a copy of the value, zero when q is nil.
func (q *Quantity) Big() *big.Int {
	if q == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(q))
}
