package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-bridger/pkg/types"
)

func validSettings() *Settings {
	return &Settings{
		FromNetwork:         "Arbitrum",
		ToNetwork:           "Abstract",
		Token:               types.TokenETH,
		Amount:              decimal.RequireFromString("0.01"),
		BridgeMethod:        types.MethodPercent,
		TransferAmountRange: [2]float64{0.1, 0.5},
		MinBalanceToBridge:  decimal.RequireFromString("0.001"),
		DelayRange:          [2]int{5, 10},
	}
}

func TestValidateAccepts(t *testing.T) {
	assert.NoError(t, validSettings().Validate())
}

func TestValidateRejectsUnknownNetwork(t *testing.T) {
	s := validSettings()
	s.FromNetwork = "Hyperborea"
	assert.Error(t, s.Validate())
}

func TestValidateRejectsSameNetworks(t *testing.T) {
	s := validSettings()
	s.ToNetwork = s.FromNetwork
	assert.Error(t, s.Validate())
}

func TestValidateRejectsUnknownToken(t *testing.T) {
	s := validSettings()
	s.Token = types.Token("DOGE")
	assert.Error(t, s.Validate())
}

func TestValidateRejectsUnknownMethod(t *testing.T) {
	s := validSettings()
	s.BridgeMethod = types.BridgeMethod("YOLO")
	assert.Error(t, s.Validate())
}

func TestValidateRejectsTinyAmount(t *testing.T) {
	s := validSettings()
	s.Amount = decimal.RequireFromString("0.00009")
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minimum")
}

func TestValidateRejectsInvertedRange(t *testing.T) {
	s := validSettings()
	s.TransferAmountRange = [2]float64{0.8, 0.2}
	assert.Error(t, s.Validate())

	s.TransferAmountRange = [2]float64{-0.1, 0.5}
	assert.Error(t, s.Validate())

	s.TransferAmountRange = [2]float64{0.5, 1.5}
	assert.Error(t, s.Validate())
}

func TestValidateRejectsNegativeDelay(t *testing.T) {
	s := validSettings()
	s.DelayRange = [2]int{-1, 5}
	assert.Error(t, s.Validate())

	s.DelayRange = [2]int{10, 5}
	assert.Error(t, s.Validate())
}

func TestNetworkRegistry(t *testing.T) {
	for _, name := range SupportedNetworks() {
		n, ok := Network(name)
		require.True(t, ok)
		assert.NotZero(t, n.ChainID, "network %s", name)
		assert.NotEmpty(t, n.RPCURL, "network %s", name)
	}

	_, ok := Network("Hyperborea")
	assert.False(t, ok)
}

func TestCurrencySelection(t *testing.T) {
	n, ok := Network("Arbitrum")
	require.True(t, ok)

	assert.Equal(t, n.NativeAddress, n.Currency(types.TokenETH))
	assert.Equal(t, n.USDCAddress, n.Currency(types.TokenUSDC))
}
