package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"relay-bridger/pkg/types"
)

// minBridgeAmount is the smallest decimal amount accepted for a transfer.
var minBridgeAmount = decimal.RequireFromString("0.0001")

// Settings holds the validated application configuration. Immutable after
// Load; the core trusts every field.
type Settings struct {
	FromNetwork         string
	ToNetwork           string
	Token               types.Token
	Amount              decimal.Decimal
	BridgeMethod        types.BridgeMethod
	TransferAmountRange [2]float64
	MinBalanceToBridge  decimal.Decimal
	// DelayRange is the [min, max] inter-profile delay in seconds.
	DelayRange [2]int

	PrivateKeysFile string
	ProxiesFile     string
	RelayBaseURL    string
	UseReceiver     bool
}

// Load reads configuration from the yaml config file and environment
// variables, then validates every field. Any failure here is fatal for
// the whole run.
func Load() (*Settings, error) {
	viper.SetConfigName(".relay-bridger")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	viper.SetDefault("bridge_method", string(types.MethodPercent))
	viper.SetDefault("transfer_amount_range", []string{"0.5", "0.5"})
	viper.SetDefault("min_balance_to_bridge", "0")
	viper.SetDefault("delay_between_profiles_range", []int{5, 10})
	viper.SetDefault("private_keys_file", "config/private_keys.txt")
	viper.SetDefault("proxies_file", "config/proxies.txt")
	viper.SetDefault("relay_base_url", "https://api.relay.link")
	viper.SetDefault("use_receiver", true)

	viper.SetEnvPrefix("RELAY_BRIDGER")
	viper.AutomaticEnv()

	// The config file is optional when everything arrives via env.
	_ = viper.ReadInConfig()

	cfg := &Settings{
		FromNetwork:     viper.GetString("from_network"),
		ToNetwork:       viper.GetString("to_network"),
		Token:           types.Token(viper.GetString("token")),
		BridgeMethod:    types.BridgeMethod(viper.GetString("bridge_method")),
		PrivateKeysFile: viper.GetString("private_keys_file"),
		ProxiesFile:     viper.GetString("proxies_file"),
		RelayBaseURL:    viper.GetString("relay_base_url"),
		UseReceiver:     viper.GetBool("use_receiver"),
	}

	amount, err := decimal.NewFromString(viper.GetString("amount"))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", viper.GetString("amount"), err)
	}
	cfg.Amount = amount

	minBalance, err := decimal.NewFromString(viper.GetString("min_balance_to_bridge"))
	if err != nil {
		return nil, fmt.Errorf("invalid min_balance_to_bridge %q: %w", viper.GetString("min_balance_to_bridge"), err)
	}
	cfg.MinBalanceToBridge = minBalance

	transferRange := viper.GetStringSlice("transfer_amount_range")
	if len(transferRange) != 2 {
		return nil, fmt.Errorf("transfer_amount_range must hold exactly two values")
	}
	for i, raw := range transferRange {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid transfer_amount_range value %q: %w", raw, err)
		}
		cfg.TransferAmountRange[i], _ = v.Float64()
	}

	delayRange := viper.GetIntSlice("delay_between_profiles_range")
	if len(delayRange) != 2 {
		return nil, fmt.Errorf("delay_between_profiles_range must hold exactly two values")
	}
	cfg.DelayRange[0], cfg.DelayRange[1] = delayRange[0], delayRange[1]

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against the supported registry and value
// ranges.
func (s *Settings) Validate() error {
	if _, ok := Network(s.FromNetwork); !ok {
		return fmt.Errorf("unsupported source network %q, supported: %v", s.FromNetwork, SupportedNetworks())
	}
	if _, ok := Network(s.ToNetwork); !ok {
		return fmt.Errorf("unsupported destination network %q, supported: %v", s.ToNetwork, SupportedNetworks())
	}
	if s.FromNetwork == s.ToNetwork {
		return fmt.Errorf("source and destination networks must differ")
	}

	switch s.Token {
	case types.TokenETH, types.TokenUSDC:
	default:
		return fmt.Errorf("unsupported token %q, supported: %s, %s", s.Token, types.TokenETH, types.TokenUSDC)
	}

	switch s.BridgeMethod {
	case types.MethodFixed, types.MethodPercent, types.MethodPercentFreeLiquidity:
	default:
		return fmt.Errorf("unsupported bridge method %q", s.BridgeMethod)
	}

	if s.Amount.LessThan(minBridgeAmount) {
		return fmt.Errorf("amount %s is below the minimum of %s", s.Amount, minBridgeAmount)
	}
	if s.MinBalanceToBridge.IsNegative() {
		return fmt.Errorf("min_balance_to_bridge must not be negative")
	}

	lo, hi := s.TransferAmountRange[0], s.TransferAmountRange[1]
	if lo < 0 || hi > 1 || lo > hi {
		return fmt.Errorf("transfer_amount_range [%v, %v] must satisfy 0 <= min <= max <= 1", lo, hi)
	}

	if s.DelayRange[0] < 0 || s.DelayRange[0] > s.DelayRange[1] {
		return fmt.Errorf("delay_between_profiles_range [%d, %d] must satisfy 0 <= min <= max", s.DelayRange[0], s.DelayRange[1])
	}
	return nil
}
