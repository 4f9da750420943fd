package chain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToUnits converts a decimal token amount to base units, truncating any
// precision beyond the asset's decimals.
func ToUnits(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).BigInt()
}

// FromUnits converts an integer base-unit amount back to a decimal token
// amount for display.
func FromUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(amount, -int32(decimals))
}
