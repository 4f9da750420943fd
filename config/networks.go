package config

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"relay-bridger/pkg/types"
)

// NetworkConfig describes one supported EVM network. Loaded once, shared
// read-only across all profiles.
type NetworkConfig struct {
	Name        string
	ChainID     int64
	RPCURL      string
	ExplorerURL string
	// NativeAddress is the aggregator's convention for the native
	// currency: the zero address.
	NativeAddress common.Address
	// USDCAddress is the canonical USDC contract, empty when the token
	// is not deployed on the network.
	USDCAddress common.Address
	// EndpointID identifies the network in cross-chain messaging; only
	// used by routes that message a destination endpoint directly.
	EndpointID uint32
}

// Currency returns the contract address the aggregator expects for the
// given token on this network.
func (n NetworkConfig) Currency(token types.Token) common.Address {
	if token.IsERC20() {
		return n.USDCAddress
	}
	return n.NativeAddress
}

// networks is the fixed registry of supported networks.
var networks = map[string]NetworkConfig{
	"Abstract": {
		Name:        "Abstract",
		ChainID:     2741,
		RPCURL:      "https://api.mainnet.abs.xyz",
		ExplorerURL: "https://abscan.org",
		USDCAddress: common.HexToAddress("0x84A71ccD554Cc1b02749b35d22F684CC8ec987e1"),
		EndpointID:  30324,
	},
	"Arbitrum": {
		Name:        "Arbitrum",
		ChainID:     42161,
		RPCURL:      "https://arb1.arbitrum.io/rpc",
		ExplorerURL: "https://arbiscan.io",
		USDCAddress: common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
		EndpointID:  30110,
	},
	"Base": {
		Name:        "Base",
		ChainID:     8453,
		RPCURL:      "https://mainnet.base.org",
		ExplorerURL: "https://basescan.org",
		USDCAddress: common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
		EndpointID:  30184,
	},
	"Optimism": {
		Name:        "Optimism",
		ChainID:     10,
		RPCURL:      "https://mainnet.optimism.io",
		ExplorerURL: "https://optimistic.etherscan.io",
		USDCAddress: common.HexToAddress("0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"),
		EndpointID:  30111,
	},
}

// Network looks up a network by its registry name.
func Network(name string) (NetworkConfig, bool) {
	n, ok := networks[name]
	return n, ok
}

// SupportedNetworks lists the registry names in stable order.
func SupportedNetworks() []string {
	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
