package bridge

import (
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"time"

	"relay-bridger/pkg/types"
)

// percentScale fixes random percentages to 3 decimal places.
const percentScale = 1000

// AmountResolver computes the integer transfer amount for a strategy and
// the wallet's current balances. The random source is injected so tests
// can run deterministically; production runs use an independent seed per
// process since the randomness exists for fleet diversification.
type AmountResolver struct {
	rng *rand.Rand
}

// NewAmountResolver creates a resolver. A nil rng gets a time-seeded one.
func NewAmountResolver(rng *rand.Rand) *AmountResolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AmountResolver{rng: rng}
}

// ResolveParams are the inputs to one amount computation. All amounts are
// base units.
type ResolveParams struct {
	Method        types.BridgeMethod
	NativeBalance *big.Int
	// MinAmount is the configured balance floor, already converted.
	MinAmount *big.Int
	// Range holds the [min, max] transfer fraction for percent methods.
	Range [2]float64
	// FixedAmount is the converted amount for MethodFixed.
	FixedAmount *big.Int
}

// Resolve returns the transfer amount, or skip=true when the balance is
// below the configured floor. A skip is a non-error outcome; the caller
// must not attempt a transfer.
func (r *AmountResolver) Resolve(p ResolveParams) (amount *big.Int, skip bool, err error) {
	if p.NativeBalance == nil || p.MinAmount == nil {
		return nil, false, fmt.Errorf("balance and minimum amount are required")
	}
	if p.NativeBalance.Cmp(p.MinAmount) < 0 {
		return nil, true, nil
	}

	switch p.Method {
	case types.MethodFixed:
		if p.FixedAmount == nil {
			return nil, false, fmt.Errorf("fixed amount is required for method %s", p.Method)
		}
		return new(big.Int).Set(p.FixedAmount), false, nil

	case types.MethodPercent:
		return r.applyPercent(p.NativeBalance, p.Range), false, nil

	case types.MethodPercentFreeLiquidity:
		free := new(big.Int).Sub(p.NativeBalance, p.MinAmount)
		return r.applyPercent(free, p.Range), false, nil

	default:
		return nil, false, fmt.Errorf("unsupported bridge method %q", p.Method)
	}
}

// applyPercent draws a uniform fraction in the range, rounded to 3
// decimals, and applies it with integer math: floor(base * p).
func (r *AmountResolver) applyPercent(base *big.Int, rng [2]float64) *big.Int {
	p := rng[0] + r.rng.Float64()*(rng[1]-rng[0])
	milli := int64(math.Round(p * percentScale))
	if milli < 0 {
		milli = 0
	}
	if milli > percentScale {
		milli = percentScale
	}
	amount := new(big.Int).Mul(base, big.NewInt(milli))
	return amount.Div(amount, big.NewInt(percentScale))
}
