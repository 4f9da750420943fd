package bridge

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-bridger/pkg/types"
)

func TestCheckBalanceNativeBoundary(t *testing.T) {
	// amount + gas == balance is still affordable.
	err := CheckBalance(GuardParams{
		Token:         types.TokenETH,
		Amount:        big.NewInt(900),
		NativeBalance: big.NewInt(1000),
		GasFee:        big.NewInt(100),
	})
	assert.NoError(t, err)
}

func TestCheckBalanceNativeInsufficient(t *testing.T) {
	err := CheckBalance(GuardParams{
		Token:         types.TokenETH,
		Amount:        big.NewInt(901),
		NativeBalance: big.NewInt(1000),
		GasFee:        big.NewInt(100),
	})
	require.Error(t, err)

	var insufficient *InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, big.NewInt(1001), insufficient.Required)
	assert.Equal(t, big.NewInt(1000), insufficient.Available)
}

func TestCheckBalanceERC20RequiresTokenBalance(t *testing.T) {
	err := CheckBalance(GuardParams{
		Token:         types.TokenUSDC,
		Amount:        big.NewInt(5_000_000),
		TokenBalance:  big.NewInt(4_000_000),
		NativeBalance: big.NewInt(1_000_000_000),
		GasFee:        big.NewInt(1000),
		TokenDecimals: 6,
	})
	require.Error(t, err)

	var insufficient *InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, string(types.TokenUSDC), insufficient.Asset)
}

func TestCheckBalanceERC20GasPaidInNative(t *testing.T) {
	// Plenty of tokens, but the native balance cannot cover gas + fee.
	err := CheckBalance(GuardParams{
		Token:         types.TokenUSDC,
		Amount:        big.NewInt(1_000_000),
		TokenBalance:  big.NewInt(10_000_000),
		NativeBalance: big.NewInt(500),
		GasFee:        big.NewInt(400),
		BridgeFee:     big.NewInt(200),
		TokenDecimals: 6,
	})
	require.Error(t, err)

	var insufficient *InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, "native", insufficient.Asset)
	assert.Equal(t, big.NewInt(600), insufficient.Required)
}

func TestCheckBalanceERC20Sufficient(t *testing.T) {
	err := CheckBalance(GuardParams{
		Token:         types.TokenUSDC,
		Amount:        big.NewInt(1_000_000),
		TokenBalance:  big.NewInt(1_000_000),
		NativeBalance: big.NewInt(1000),
		GasFee:        big.NewInt(600),
		BridgeFee:     big.NewInt(400),
		TokenDecimals: 6,
	})
	assert.NoError(t, err)
}

func TestInsufficientFundsErrorRendersDecimals(t *testing.T) {
	err := &InsufficientFundsError{
		Asset:     "ETH",
		Required:  big.NewInt(1_500_000_000_000_000_000),
		Available: big.NewInt(1_000_000_000_000_000_000),
		Decimals:  18,
	}
	assert.Contains(t, err.Error(), "1.5")
	assert.Contains(t, err.Error(), "1")
}
