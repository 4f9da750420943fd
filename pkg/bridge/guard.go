package bridge

import (
	"fmt"
	"math/big"

	"relay-bridger/pkg/chain"
	"relay-bridger/pkg/types"
)

// InsufficientFundsError means the wallet cannot cover the transfer plus
// its gas. Amounts are kept in base units; the message converts to
// decimal for display only.
type InsufficientFundsError struct {
	Asset     string
	Required  *big.Int
	Available *big.Int
	Decimals  uint8
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s balance: need %s, have %s",
		e.Asset,
		chain.FromUnits(e.Required, e.Decimals).String(),
		chain.FromUnits(e.Available, e.Decimals).String())
}

// GuardParams are the inputs to the pre-flight sufficiency check. All
// comparisons happen in base integer units.
type GuardParams struct {
	Token         types.Token
	Amount        *big.Int
	NativeBalance *big.Int
	// TokenBalance is required for ERC-20 transfers.
	TokenBalance *big.Int
	// GasFee is the estimated cost of the transaction in native units.
	GasFee *big.Int
	// BridgeFee is any extra native-denominated fee attached to the
	// route (zero when unknown at check time).
	BridgeFee *big.Int
	// TokenDecimals renders ERC-20 amounts in error messages.
	TokenDecimals uint8
}

// CheckBalance validates the wallet holds enough of the transfer asset
// and enough native currency for gas, before any transaction is built.
// Gas is always paid in the native asset, even for ERC-20 transfers.
func CheckBalance(p GuardParams) error {
	bridgeFee := p.BridgeFee
	if bridgeFee == nil {
		bridgeFee = big.NewInt(0)
	}

	if p.Token.IsERC20() {
		if p.TokenBalance == nil || p.Amount.Cmp(p.TokenBalance) > 0 {
			avail := p.TokenBalance
			if avail == nil {
				avail = big.NewInt(0)
			}
			return &InsufficientFundsError{
				Asset:     string(p.Token),
				Required:  p.Amount,
				Available: avail,
				Decimals:  p.TokenDecimals,
			}
		}
		gasCost := new(big.Int).Add(p.GasFee, bridgeFee)
		if gasCost.Cmp(p.NativeBalance) > 0 {
			return &InsufficientFundsError{
				Asset:     "native",
				Required:  gasCost,
				Available: p.NativeBalance,
				Decimals:  18,
			}
		}
		return nil
	}

	totalCost := new(big.Int).Add(p.Amount, p.GasFee)
	if totalCost.Cmp(p.NativeBalance) > 0 {
		return &InsufficientFundsError{
			Asset:     string(p.Token),
			Required:  totalCost,
			Available: p.NativeBalance,
			Decimals:  18,
		}
	}
	return nil
}
