package chain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToUnits(t *testing.T) {
	tests := []struct {
		amount   string
		decimals uint8
		want     string
	}{
		{"1", 18, "1000000000000000000"},
		{"0.0001", 18, "100000000000000"},
		{"1.5", 18, "1500000000000000000"},
		{"100.123456", 6, "100123456"},
		{"0.0001", 6, "100"},
		{"0", 18, "0"},
	}

	for _, tt := range tests {
		amount := decimal.RequireFromString(tt.amount)
		want, ok := new(big.Int).SetString(tt.want, 10)
		require.True(t, ok)
		assert.Equal(t, want, ToUnits(amount, tt.decimals), "ToUnits(%s, %d)", tt.amount, tt.decimals)
	}
}

func TestToUnitsTruncatesExcessPrecision(t *testing.T) {
	// 6-decimal assets cannot represent the 7th decimal place.
	amount := decimal.RequireFromString("1.2345678")
	assert.Equal(t, big.NewInt(1234567), ToUnits(amount, 6))
}

func TestUnitsRoundTrip(t *testing.T) {
	for _, s := range []string{"0.0001", "1.5", "100.123456"} {
		for _, decimals := range []uint8{18, 6} {
			amount := decimal.RequireFromString(s)
			back := FromUnits(ToUnits(amount, decimals), decimals)
			assert.True(t, amount.Equal(back), "round trip %s at %d decimals: got %s", s, decimals, back)
		}
	}
}

func TestFromUnits(t *testing.T) {
	wei, ok := new(big.Int).SetString("450000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "0.45", FromUnits(wei, 18).String())
	assert.Equal(t, "1.234567", FromUnits(big.NewInt(1234567), 6).String())
}
