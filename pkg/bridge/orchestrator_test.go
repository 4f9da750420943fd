package bridge

import (
	"context"
	"math/big"
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-bridger/pkg/chain"
	"relay-bridger/pkg/relay"
	"relay-bridger/pkg/types"
)

// fakeChain scripts the chain client surface for orchestrator tests.
type fakeChain struct {
	nativeBalance *big.Int
	tokenBalance  *big.Int
	allowance     *big.Int
	txFee         *big.Int
	waitErr       error

	amount      *big.Int
	submissions int
	approvals   int
	lastGas     uint64
}

func (f *fakeChain) Address() common.Address { return common.HexToAddress("0xabc1") }

func (f *fakeChain) NativeBalance(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.nativeBalance), nil
}

func (f *fakeChain) ERC20Balance(ctx context.Context, token common.Address) (*big.Int, error) {
	return new(big.Int).Set(f.tokenBalance), nil
}

func (f *fakeChain) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return new(big.Int).Set(f.allowance), nil
}

func (f *fakeChain) Approve(ctx context.Context, token, spender common.Address, amount *big.Int, wait bool) (common.Hash, error) {
	f.approvals++
	return common.HexToHash("0xaa"), nil
}

func (f *fakeChain) TxFee(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(f.txFee), nil
}

func (f *fakeChain) Decimals(ctx context.Context, asset common.Address) (uint8, error) {
	if asset == (common.Address{}) {
		return 18, nil
	}
	return 6, nil
}

func (f *fakeChain) ToWeiMain(ctx context.Context, amount decimal.Decimal, asset common.Address) (*big.Int, error) {
	d, _ := f.Decimals(ctx, asset)
	return chain.ToUnits(amount, d), nil
}

func (f *fakeChain) SetAmount(amount *big.Int) error {
	f.amount = new(big.Int).Set(amount)
	return nil
}

func (f *fakeChain) PrepareTx(ctx context.Context, to common.Address, value *big.Int, data []byte, maxFeePerGas, maxPriorityFeePerGas *big.Int) (*chain.TxRequest, error) {
	return &chain.TxRequest{
		To:                   to,
		Value:                value,
		Data:                 data,
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
		Nonce:                1,
		ChainID:              big.NewInt(42161),
	}, nil
}

func (f *fakeChain) SignAndSendTx(ctx context.Context, req *chain.TxRequest, externalGas uint64) (common.Hash, error) {
	f.submissions++
	f.lastGas = externalGas
	return common.HexToHash("0xbb"), nil
}

func (f *fakeChain) WaitTx(ctx context.Context, hash common.Hash) error { return f.waitErr }

func (f *fakeChain) ExplorerURL() string { return "https://arbiscan.io" }

// fakeQuotes scripts the aggregator.
type fakeQuotes struct {
	quote    *relay.Quote
	quoteErr error
	status   types.BridgeState

	quoteCalls  int
	statusPolls int
}

func (f *fakeQuotes) GetQuote(ctx context.Context, req relay.QuoteRequest) (*relay.Quote, error) {
	f.quoteCalls++
	return f.quote, f.quoteErr
}

func (f *fakeQuotes) GetStatus(ctx context.Context, requestID string) types.BridgeStatus {
	f.statusPolls++
	return types.BridgeStatus{RequestID: requestID, State: f.status}
}

func healthyChain() *fakeChain {
	balance, _ := new(big.Int).SetString("1000000000000000000", 10)
	return &fakeChain{
		nativeBalance: balance,
		tokenBalance:  big.NewInt(0),
		allowance:     big.NewInt(0),
		txFee:         big.NewInt(21_000_000_000_000),
	}
}

func routedQuote() *relay.Quote {
	return &relay.Quote{Steps: []relay.Step{{
		ID:        "deposit",
		RequestID: "0xreq1",
		Items: []relay.Item{{Data: relay.TxData{
			To:                   "0xa5f565650890fba1824ee0f21ebbbf660a179934",
			Value:                "500000000000000000",
			Data:                 "0x01",
			MaxFeePerGas:         "20000000",
			MaxPriorityFeePerGas: "1000000",
			Gas:                  "300000",
		}}},
	}}}
}

func testParams() Params {
	return Params{
		Token:         types.TokenETH,
		Method:        types.MethodPercent,
		FromChainID:   42161,
		ToChainID:     2741,
		TransferRange: [2]float64{0.5, 0.5},
		MinBalance:    decimal.RequireFromString("0.0001"),
		UseReceiver:   true,
	}
}

func newTestOrchestrator(client ChainAPI, quotes QuoteAPI, params Params) *Orchestrator {
	resolver := NewAmountResolver(rand.New(rand.NewSource(1)))
	return NewOrchestrator(client, quotes, resolver, params, nil)
}

func TestRunHappyPath(t *testing.T) {
	client := healthyChain()
	quotes := &fakeQuotes{quote: routedQuote(), status: types.StateSuccess}
	o := newTestOrchestrator(client, quotes, testParams())

	outcome, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeDone, outcome)
	assert.Equal(t, StateDone, o.State())

	// Exactly one submission and one status poll.
	assert.Equal(t, 1, client.submissions)
	assert.Equal(t, 1, quotes.statusPolls)
	// The quote's gas limit overrides local estimation.
	assert.Equal(t, uint64(300000), client.lastGas)
	// Half the balance at range 0.5/0.5.
	expected, _ := new(big.Int).SetString("500000000000000000", 10)
	assert.Equal(t, expected, client.amount)
}

func TestRunMalformedQuoteFails(t *testing.T) {
	client := healthyChain()
	quotes := &fakeQuotes{quote: &relay.Quote{}}
	o := newTestOrchestrator(client, quotes, testParams())

	outcome, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.OutcomeFailed, outcome)
	assert.Equal(t, StateFailed, o.State())
	assert.Zero(t, client.submissions)
}

func TestRunQuoteUnavailableFails(t *testing.T) {
	client := healthyChain()
	quotes := &fakeQuotes{quoteErr: &relay.QuoteUnavailableError{StatusCode: 503, Message: "no routes"}}
	o := newTestOrchestrator(client, quotes, testParams())

	outcome, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.OutcomeFailed, outcome)
	assert.Zero(t, client.submissions)
}

func TestRunSkipsBelowFloor(t *testing.T) {
	client := healthyChain()
	client.nativeBalance = big.NewInt(1) // far below the 0.0001 floor
	quotes := &fakeQuotes{quote: routedQuote(), status: types.StateSuccess}
	o := newTestOrchestrator(client, quotes, testParams())

	outcome, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeSkipped, outcome)
	assert.Zero(t, quotes.quoteCalls)
	assert.Zero(t, client.submissions)
}

func TestRunFailsOnRevert(t *testing.T) {
	client := healthyChain()
	client.waitErr = &chain.TxRevertedError{Hash: common.HexToHash("0xbb")}
	quotes := &fakeQuotes{quote: routedQuote(), status: types.StateSuccess}
	o := newTestOrchestrator(client, quotes, testParams())

	outcome, err := o.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.OutcomeFailed, outcome)
	assert.Equal(t, 1, client.submissions)
	assert.Zero(t, quotes.statusPolls)
}

func TestRunERC20ApprovesWhenAllowanceShort(t *testing.T) {
	client := healthyChain()
	client.tokenBalance = big.NewInt(100_000_000) // 100 USDC
	params := testParams()
	params.Token = types.TokenUSDC
	params.Method = types.MethodFixed
	params.FixedAmount = decimal.RequireFromString("25")
	params.OriginCurrency = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	params.DestinationCurrency = common.HexToAddress("0x84A71ccD554Cc1b02749b35d22F684CC8ec987e1")

	quotes := &fakeQuotes{quote: routedQuote(), status: types.StateSuccess}
	o := newTestOrchestrator(client, quotes, params)

	outcome, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeDone, outcome)
	assert.Equal(t, 1, client.approvals)
	// 25 USDC at 6 decimals.
	assert.Equal(t, big.NewInt(25_000_000), client.amount)
}

func TestRunERC20SkipsApprovalWhenAllowanceCovers(t *testing.T) {
	client := healthyChain()
	client.tokenBalance = big.NewInt(100_000_000)
	client.allowance = chain.MaxApproval
	params := testParams()
	params.Token = types.TokenUSDC
	params.Method = types.MethodFixed
	params.FixedAmount = decimal.RequireFromString("25")
	params.OriginCurrency = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")

	quotes := &fakeQuotes{quote: routedQuote(), status: types.StateSuccess}
	o := newTestOrchestrator(client, quotes, params)

	outcome, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeDone, outcome)
	assert.Zero(t, client.approvals)
}
