package bridge

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-bridger/pkg/types"
)

func bigFromString(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "invalid big int %q", s)
	return v
}

func TestResolveFixedIgnoresBalance(t *testing.T) {
	resolver := NewAmountResolver(rand.New(rand.NewSource(1)))

	amount, skip, err := resolver.Resolve(ResolveParams{
		Method:        types.MethodFixed,
		NativeBalance: big.NewInt(1_000_000),
		MinAmount:     big.NewInt(100),
		FixedAmount:   big.NewInt(42),
	})
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Equal(t, big.NewInt(42), amount)
}

func TestResolvePercentStaysWithinBalance(t *testing.T) {
	resolver := NewAmountResolver(rand.New(rand.NewSource(7)))
	balance := bigFromString(t, "1000000000000000000")

	for i := 0; i < 200; i++ {
		amount, skip, err := resolver.Resolve(ResolveParams{
			Method:        types.MethodPercent,
			NativeBalance: balance,
			MinAmount:     big.NewInt(0),
			Range:         [2]float64{0.1, 0.9},
		})
		require.NoError(t, err)
		require.False(t, skip)
		assert.True(t, amount.Sign() >= 0)
		assert.True(t, amount.Cmp(balance) <= 0, "amount %s exceeds balance", amount)
	}
}

func TestResolvePercentFreeLiquidityPreservesFloor(t *testing.T) {
	resolver := NewAmountResolver(rand.New(rand.NewSource(11)))
	balance := bigFromString(t, "1000000000000000000")
	floor := bigFromString(t, "100000000000000000")
	free := new(big.Int).Sub(balance, floor)

	for i := 0; i < 200; i++ {
		amount, skip, err := resolver.Resolve(ResolveParams{
			Method:        types.MethodPercentFreeLiquidity,
			NativeBalance: balance,
			MinAmount:     floor,
			Range:         [2]float64{0.0, 1.0},
		})
		require.NoError(t, err)
		require.False(t, skip)
		assert.True(t, amount.Cmp(free) <= 0, "amount %s exceeds free balance %s", amount, free)
	}
}

func TestResolvePercentFreeLiquidityExample(t *testing.T) {
	// 1 unit at 18 decimals, 0.1 floor, fixed 50% -> 0.45 units.
	resolver := NewAmountResolver(rand.New(rand.NewSource(3)))

	amount, skip, err := resolver.Resolve(ResolveParams{
		Method:        types.MethodPercentFreeLiquidity,
		NativeBalance: bigFromString(t, "1000000000000000000"),
		MinAmount:     bigFromString(t, "100000000000000000"),
		Range:         [2]float64{0.5, 0.5},
	})
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Equal(t, bigFromString(t, "450000000000000000"), amount)
}

func TestResolveSkipsBelowFloor(t *testing.T) {
	resolver := NewAmountResolver(rand.New(rand.NewSource(5)))

	amount, skip, err := resolver.Resolve(ResolveParams{
		Method:        types.MethodPercent,
		NativeBalance: big.NewInt(99),
		MinAmount:     big.NewInt(100),
		Range:         [2]float64{0.5, 0.5},
	})
	require.NoError(t, err)
	assert.True(t, skip)
	assert.Nil(t, amount)
}

func TestResolveRejectsUnknownMethod(t *testing.T) {
	resolver := NewAmountResolver(nil)

	_, _, err := resolver.Resolve(ResolveParams{
		Method:        types.BridgeMethod("HALVING"),
		NativeBalance: big.NewInt(1000),
		MinAmount:     big.NewInt(0),
	})
	assert.Error(t, err)
}
