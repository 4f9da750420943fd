package types

// Profile pairs a wallet private key with its network egress proxy.
// Profiles are immutable once loaded and processed one at a time.
type Profile struct {
	PrivateKey string
	Proxy      string
}

// Token is the asset being bridged.
type Token string

const (
	TokenETH  Token = "ETH"
	TokenUSDC Token = "USDC"
)

// IsERC20 reports whether transfers of the token move an ERC-20 contract
// balance rather than the chain's native currency.
func (t Token) IsERC20() bool {
	return t == TokenUSDC
}

// BridgeMethod selects how the transfer amount is computed.
type BridgeMethod string

const (
	// MethodFixed transfers the configured amount regardless of balance.
	MethodFixed BridgeMethod = "FIXED"
	// MethodPercent transfers a random percentage of the full balance.
	MethodPercent BridgeMethod = "PERCENT"
	// MethodPercentFreeLiquidity transfers a random percentage of the
	// balance above the configured floor, so the floor survives the bridge.
	MethodPercentFreeLiquidity BridgeMethod = "PERCENT_FREE_LIQUIDITY"
)

// Outcome is the terminal result of one profile's bridge run.
type Outcome int

const (
	// OutcomeDone means the bridge transaction confirmed on-chain.
	OutcomeDone Outcome = iota
	// OutcomeSkipped means the wallet balance was below the configured
	// floor and no transaction was built. Not an error.
	OutcomeSkipped
	// OutcomeFailed means the run aborted before on-chain confirmation.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BridgeState is the off-chain completion state reported by the aggregator.
type BridgeState int

const (
	StateUnknown BridgeState = iota
	StatePending
	StateSuccess
	StateFailed
)

func (s BridgeState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether polling can stop.
func (s BridgeState) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// BridgeStatus is one polled status sample for a submitted intent.
type BridgeStatus struct {
	RequestID string
	State     BridgeState
	// Raw carries the provider payload untouched, for display and logging.
	Raw []byte
}
