package bridge

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"relay-bridger/pkg/chain"
	"relay-bridger/pkg/relay"
	"relay-bridger/pkg/types"
)

// State tracks the orchestrator's linear progress through one bridge run.
type State int

const (
	StateIdle State = iota
	StateQuoteRequested
	StateQuoteReceived
	StateTxBuilt
	StateTxSubmitted
	StateTxConfirmed
	StateStatusPolled
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQuoteRequested:
		return "quote_requested"
	case StateQuoteReceived:
		return "quote_received"
	case StateTxBuilt:
		return "tx_built"
	case StateTxSubmitted:
		return "tx_submitted"
	case StateTxConfirmed:
		return "tx_confirmed"
	case StateStatusPolled:
		return "status_polled"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	statusPollInterval = 5 * time.Second
	statusMaxPolls     = 6
)

// ChainAPI is the subset of the chain client the orchestrator drives.
type ChainAPI interface {
	Address() common.Address
	NativeBalance(ctx context.Context) (*big.Int, error)
	ERC20Balance(ctx context.Context, token common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int, wait bool) (common.Hash, error)
	TxFee(ctx context.Context) (*big.Int, error)
	Decimals(ctx context.Context, asset common.Address) (uint8, error)
	ToWeiMain(ctx context.Context, amount decimal.Decimal, asset common.Address) (*big.Int, error)
	SetAmount(amount *big.Int) error
	PrepareTx(ctx context.Context, to common.Address, value *big.Int, data []byte, maxFeePerGas, maxPriorityFeePerGas *big.Int) (*chain.TxRequest, error)
	SignAndSendTx(ctx context.Context, req *chain.TxRequest, externalGas uint64) (common.Hash, error)
	WaitTx(ctx context.Context, hash common.Hash) error
	ExplorerURL() string
}

// QuoteAPI is the aggregator surface the orchestrator needs.
type QuoteAPI interface {
	GetQuote(ctx context.Context, req relay.QuoteRequest) (*relay.Quote, error)
	GetStatus(ctx context.Context, requestID string) types.BridgeStatus
}

// Params configure one profile's bridge run. Currency addresses come from
// the network registry: the zero address for the native asset, the token
// contract for ERC-20 transfers.
type Params struct {
	Token               types.Token
	Method              types.BridgeMethod
	FromChainID         int64
	ToChainID           int64
	OriginCurrency      common.Address
	DestinationCurrency common.Address
	// FixedAmount is the configured decimal amount for MethodFixed.
	FixedAmount decimal.Decimal
	// MinBalance is the decimal balance floor below which the profile
	// is skipped.
	MinBalance decimal.Decimal
	// TransferRange is the [min, max] fraction for percent methods.
	TransferRange [2]float64
	UseReceiver   bool
}

// Orchestrator drives one profile's bridge: quote, build, sign, submit,
// confirm, poll. Each instance makes a single linear pass; no state is
// re-entered.
type Orchestrator struct {
	client   ChainAPI
	quotes   QuoteAPI
	resolver *AmountResolver
	params   Params
	log      *zap.SugaredLogger
	state    State
}

// NewOrchestrator wires the collaborators for one run.
func NewOrchestrator(client ChainAPI, quotes QuoteAPI, resolver *AmountResolver, params Params, log *zap.SugaredLogger) *Orchestrator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if resolver == nil {
		resolver = NewAmountResolver(nil)
	}
	return &Orchestrator{
		client:   client,
		quotes:   quotes,
		resolver: resolver,
		params:   params,
		log:      log,
		state:    StateIdle,
	}
}

// State returns the current state of the run.
func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) setState(s State) {
	o.log.Debugw("state transition", "from", o.state.String(), "to", s.String())
	o.state = s
}

func (o *Orchestrator) fail(err error) (types.Outcome, error) {
	o.setState(StateFailed)
	return types.OutcomeFailed, err
}

// Run executes the full bridge sequence for one profile. Errors are
// contained to this run: the caller logs them and moves to the next
// profile. A skipped outcome means the balance was below the floor and
// nothing was submitted.
func (o *Orchestrator) Run(ctx context.Context) (types.Outcome, error) {
	amount, skip, err := o.resolveAmount(ctx)
	if err != nil {
		return o.fail(err)
	}
	if skip {
		o.log.Infow("balance below configured floor, skipping profile")
		return types.OutcomeSkipped, nil
	}

	if err := o.client.SetAmount(amount); err != nil {
		return o.fail(err)
	}

	if err := o.checkFunds(ctx, amount); err != nil {
		return o.fail(err)
	}

	// Quote acquisition.
	o.setState(StateQuoteRequested)
	quote, err := o.quotes.GetQuote(ctx, relay.QuoteRequest{
		UseReceiver:         o.params.UseReceiver,
		User:                o.client.Address().Hex(),
		OriginChainID:       o.params.FromChainID,
		DestinationChainID:  o.params.ToChainID,
		OriginCurrency:      o.params.OriginCurrency.Hex(),
		DestinationCurrency: o.params.DestinationCurrency.Hex(),
		Amount:              amount.String(),
		TradeType:           "EXACT_INPUT",
	})
	if err != nil {
		return o.fail(err)
	}
	o.setState(StateQuoteReceived)

	item, requestID, err := quote.PrimaryItem()
	if err != nil {
		return o.fail(err)
	}

	to := common.HexToAddress(item.Data.To)
	value, err := relay.ParseBig(item.Data.Value)
	if err != nil {
		return o.fail(fmt.Errorf("quote value: %w", err))
	}
	maxFee, err := relay.ParseBig(item.Data.MaxFeePerGas)
	if err != nil {
		return o.fail(fmt.Errorf("quote maxFeePerGas: %w", err))
	}
	maxTip, err := relay.ParseBig(item.Data.MaxPriorityFeePerGas)
	if err != nil {
		return o.fail(fmt.Errorf("quote maxPriorityFeePerGas: %w", err))
	}
	gas, err := relay.ParseBig(item.Data.Gas)
	if err != nil {
		return o.fail(fmt.Errorf("quote gas: %w", err))
	}
	if maxFee.Sign() == 0 {
		maxFee = nil
	}
	if maxTip != nil && maxTip.Sign() == 0 {
		maxTip = nil
	}

	// Approval sub-step: an approval-gated token must allow the route's
	// target contract to pull the amount before the main transaction.
	if o.params.Token.IsERC20() {
		if err := o.ensureAllowance(ctx, to, amount); err != nil {
			return o.fail(err)
		}
	}

	// Build and submit the route's primary transaction. The quote's gas
	// limit overrides local estimation.
	req, err := o.client.PrepareTx(ctx, to, value, common.FromHex(item.Data.Data), maxFee, maxTip)
	if err != nil {
		return o.fail(err)
	}
	o.setState(StateTxBuilt)

	hash, err := o.client.SignAndSendTx(ctx, req, gas.Uint64())
	if err != nil {
		return o.fail(err)
	}
	o.setState(StateTxSubmitted)
	o.log.Infow("bridge transaction submitted", "hash", hash.Hex(), "explorer", o.txLink(hash))

	if err := o.client.WaitTx(ctx, hash); err != nil {
		return o.fail(err)
	}
	o.setState(StateTxConfirmed)
	o.log.Infow("bridge transaction confirmed", "hash", hash.Hex())

	// Off-chain status is informational only; on-chain confirmation is
	// the authoritative success signal.
	o.pollStatus(ctx, requestID)
	o.setState(StateStatusPolled)

	o.setState(StateDone)
	return types.OutcomeDone, nil
}

// resolveAmount converts the configured thresholds and runs the amount
// strategy against the wallet's native balance.
func (o *Orchestrator) resolveAmount(ctx context.Context) (*big.Int, bool, error) {
	balance, err := o.client.NativeBalance(ctx)
	if err != nil {
		return nil, false, err
	}

	minAmount, err := o.client.ToWeiMain(ctx, o.params.MinBalance, common.Address{})
	if err != nil {
		return nil, false, err
	}

	var fixed *big.Int
	if o.params.Method == types.MethodFixed {
		fixed, err = o.client.ToWeiMain(ctx, o.params.FixedAmount, o.params.OriginCurrency)
		if err != nil {
			return nil, false, err
		}
	}

	return o.resolver.Resolve(ResolveParams{
		Method:        o.params.Method,
		NativeBalance: balance,
		MinAmount:     minAmount,
		Range:         o.params.TransferRange,
		FixedAmount:   fixed,
	})
}

// checkFunds runs the pre-flight sufficiency check before any quote or
// transaction.
func (o *Orchestrator) checkFunds(ctx context.Context, amount *big.Int) error {
	nativeBalance, err := o.client.NativeBalance(ctx)
	if err != nil {
		return err
	}
	gasFee, err := o.client.TxFee(ctx)
	if err != nil {
		return err
	}

	params := GuardParams{
		Token:         o.params.Token,
		Amount:        amount,
		NativeBalance: nativeBalance,
		GasFee:        gasFee,
	}
	if o.params.Token.IsERC20() {
		tokenBalance, err := o.client.ERC20Balance(ctx, o.params.OriginCurrency)
		if err != nil {
			return err
		}
		decimals, err := o.client.Decimals(ctx, o.params.OriginCurrency)
		if err != nil {
			return err
		}
		params.TokenBalance = tokenBalance
		params.TokenDecimals = decimals
	}
	return CheckBalance(params)
}

// ensureAllowance approves the spender with the maximal sentinel when the
// current allowance cannot cover the amount. The larger grant trades
// exposure for never paying a second approval.
func (o *Orchestrator) ensureAllowance(ctx context.Context, spender common.Address, amount *big.Int) error {
	allowance, err := o.client.Allowance(ctx, o.params.OriginCurrency, o.client.Address(), spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	o.log.Infow("approving token spend", "token", o.params.OriginCurrency.Hex(), "spender", spender.Hex())
	hash, err := o.client.Approve(ctx, o.params.OriginCurrency, spender, chain.MaxApproval, true)
	if err != nil {
		return err
	}
	o.log.Infow("approval confirmed", "hash", hash.Hex())
	return nil
}

// pollStatus samples the aggregator until a terminal state or the poll
// budget runs out. Failures downgrade to an unknown state and never
// abort the run.
func (o *Orchestrator) pollStatus(ctx context.Context, requestID string) {
	if requestID == "" {
		o.log.Warnw("quote carried no request id, skipping status polling")
		return
	}

	for i := 0; i < statusMaxPolls; i++ {
		status := o.quotes.GetStatus(ctx, requestID)
		o.log.Infow("bridge status", "request_id", requestID, "state", status.State.String())

		if status.State.Terminal() {
			if status.State == types.StateFailed {
				o.log.Warnw("aggregator reports failure after on-chain confirmation",
					"request_id", requestID, "payload", string(status.Raw))
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(statusPollInterval):
		}
	}
	o.log.Infow("status still pending, funds arrive on the destination chain asynchronously",
		"request_id", requestID)
}

// txLink renders an explorer link for a submitted transaction.
func (o *Orchestrator) txLink(hash common.Hash) string {
	explorer := o.client.ExplorerURL()
	if explorer == "" {
		return hash.Hex()
	}
	return fmt.Sprintf("%s/tx/%s", explorer, hash.Hex())
}
