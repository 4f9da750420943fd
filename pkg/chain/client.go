package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
)

const (
	// nativeDecimals is the precision of the chain's native currency.
	nativeDecimals = uint8(18)
	// transferGasLimit is the gas cost of a plain value transfer, used
	// for pre-flight fee estimates only.
	transferGasLimit = 21000

	confirmTimeout  = 3 * time.Minute
	confirmInterval = 2 * time.Second
)

// Minimal ERC-20 interface: balance, allowance, approval, decimals.
const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"},{"name":"_spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}
]`

var parsedERC20ABI abi.ABI

func init() {
	var err error
	parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(fmt.Errorf("parse ERC20 ABI: %w", err))
	}
}

// MaxApproval is the sentinel allowance (2^256-1) granted on approval so
// future operations never need a second approve transaction.
var MaxApproval = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Options configures a Client for one wallet on one chain.
type Options struct {
	RPCURL      string
	ChainID     int64
	PrivateKey  string
	Proxy       string
	ExplorerURL string
}

// TxRequest is an unsigned transaction assembled by PrepareTx. Built
// fresh per submission and never reused.
type TxRequest struct {
	To                   common.Address
	Value                *big.Int
	Data                 []byte
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	GasLimit             uint64
	Nonce                uint64
	ChainID              *big.Int
}

// Client is the single point of contact with one chain's JSON-RPC
// endpoint, scoped to one wallet. Not safe for concurrent use; each
// profile run owns its own instance.
type Client struct {
	eth         *ethclient.Client
	privateKey  *ecdsa.PrivateKey
	address     common.Address
	chainID     *big.Int
	explorerURL string

	amount    *big.Int
	amountSet bool

	decimalsCache map[common.Address]uint8
}

// NewClient connects to the RPC endpoint through the profile's proxy and
// derives the wallet address from its private key.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(opts.PrivateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	httpClient, err := NewProxyHTTPClient(opts.Proxy)
	if err != nil {
		return nil, err
	}

	rpcClient, err := rpc.DialOptions(ctx, opts.RPCURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	return &Client{
		eth:           ethclient.NewClient(rpcClient),
		privateKey:    privateKey,
		address:       crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:       big.NewInt(opts.ChainID),
		explorerURL:   opts.ExplorerURL,
		decimalsCache: map[common.Address]uint8{},
	}, nil
}

// NewProxyHTTPClient builds an HTTP client routing through the given
// proxy. The proxy may omit the scheme ("user:pass@host:port"); http is
// assumed. An empty proxy yields a direct client.
func NewProxyHTTPClient(proxy string) (*http.Client, error) {
	proxy = strings.TrimSpace(proxy)
	if proxy == "" {
		return &http.Client{Timeout: 30 * time.Second}, nil
	}
	if !strings.Contains(proxy, "://") {
		proxy = "http://" + proxy
	}
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", proxy, err)
	}
	return &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		Timeout:   30 * time.Second,
	}, nil
}

// Address returns the wallet address derived from the private key.
func (c *Client) Address() common.Address { return c.address }

// ChainID returns the chain the client is connected to.
func (c *Client) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// ExplorerURL returns the block explorer base URL, if configured.
func (c *Client) ExplorerURL() string { return c.explorerURL }

// SetAmount stores the resolved transfer amount in base units. It must be
// called exactly once before the amount is read.
func (c *Client) SetAmount(amount *big.Int) error {
	if c.amountSet {
		return fmt.Errorf("transfer amount already set")
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("transfer amount must be a non-negative integer")
	}
	c.amount = new(big.Int).Set(amount)
	c.amountSet = true
	return nil
}

// Amount returns the resolved transfer amount set by SetAmount.
func (c *Client) Amount() (*big.Int, error) {
	if !c.amountSet {
		return nil, fmt.Errorf("transfer amount not set")
	}
	return new(big.Int).Set(c.amount), nil
}

// NativeBalance returns the wallet's native currency balance in wei.
func (c *Client) NativeBalance(ctx context.Context) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, c.address, nil)
	if err != nil {
		return nil, &RPCError{Op: "eth_getBalance", Err: err}
	}
	return balance, nil
}

// ERC20Balance returns the wallet's token balance in base units.
func (c *Client) ERC20Balance(ctx context.Context, token common.Address) (*big.Int, error) {
	out, err := c.callERC20(ctx, token, "balanceOf", c.address)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(out), nil
}

// Allowance returns how much of the token the spender may move on the
// owner's behalf.
func (c *Client) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	out, err := c.callERC20(ctx, token, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(out), nil
}

// Approve grants the spender an allowance on the token and, when wait is
// set, blocks until the approval transaction confirms.
func (c *Client) Approve(ctx context.Context, token, spender common.Address, amount *big.Int, wait bool) (common.Hash, error) {
	data, err := parsedERC20ABI.Pack("approve", spender, amount)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to pack approve data: %w", err)
	}

	req, err := c.PrepareTx(ctx, token, big.NewInt(0), data, nil, nil)
	if err != nil {
		return common.Hash{}, err
	}

	hash, err := c.SignAndSendTx(ctx, req, 0)
	if err != nil {
		return common.Hash{}, err
	}

	if wait {
		if err := c.WaitTx(ctx, hash); err != nil {
			return hash, err
		}
	}
	return hash, nil
}

// TxFee estimates the gas cost of a standard value transfer, for
// pre-flight affordability checks. The quote's own gas parameters are
// used for the bridge transaction itself.
func (c *Client) TxFee(ctx context.Context) (*big.Int, error) {
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, &RPCError{Op: "eth_gasPrice", Err: err}
	}
	return new(big.Int).Mul(gasPrice, big.NewInt(transferGasLimit)), nil
}

// Decimals returns the asset's decimal precision. The zero address means
// the native currency. ERC-20 lookups are cached per client.
func (c *Client) Decimals(ctx context.Context, asset common.Address) (uint8, error) {
	if asset == (common.Address{}) {
		return nativeDecimals, nil
	}
	if d, ok := c.decimalsCache[asset]; ok {
		return d, nil
	}
	out, err := c.callERC20(ctx, asset, "decimals")
	if err != nil {
		return 0, err
	}
	d := uint8(new(big.Int).SetBytes(out).Uint64())
	c.decimalsCache[asset] = d
	return d, nil
}

// ToWeiMain converts a decimal amount of the asset to base units.
func (c *Client) ToWeiMain(ctx context.Context, amount decimal.Decimal, asset common.Address) (*big.Int, error) {
	d, err := c.Decimals(ctx, asset)
	if err != nil {
		return nil, err
	}
	return ToUnits(amount, d), nil
}

// FromWeiMain converts a base-unit amount of the asset to decimal form.
func (c *Client) FromWeiMain(ctx context.Context, amount *big.Int, asset common.Address) (decimal.Decimal, error) {
	d, err := c.Decimals(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}
	return FromUnits(amount, d), nil
}

// PrepareTx assembles an unsigned transaction, resolving the wallet's
// current nonce at call time. Gas fee parameters may be nil; they are
// then resolved from the node when the transaction is sent.
func (c *Client) PrepareTx(ctx context.Context, to common.Address, value *big.Int, data []byte, maxFeePerGas, maxPriorityFeePerGas *big.Int) (*TxRequest, error) {
	nonce, err := c.eth.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, &RPCError{Op: "eth_getTransactionCount", Err: err}
	}
	if value == nil {
		value = big.NewInt(0)
	}
	return &TxRequest{
		To:                   to,
		Value:                new(big.Int).Set(value),
		Data:                 data,
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
		Nonce:                nonce,
		ChainID:              new(big.Int).Set(c.chainID),
	}, nil
}

// SignAndSendTx signs the request with the wallet key and broadcasts it.
// If externalGas is non-zero it overrides local estimation; the quote
// provider's limit accounts for destination-side execution the client
// cannot simulate.
func (c *Client) SignAndSendTx(ctx context.Context, req *TxRequest, externalGas uint64) (common.Hash, error) {
	maxFee := req.MaxFeePerGas
	tip := req.MaxPriorityFeePerGas
	if tip == nil {
		suggested, err := c.eth.SuggestGasTipCap(ctx)
		if err != nil {
			return common.Hash{}, &RPCError{Op: "eth_maxPriorityFeePerGas", Err: err}
		}
		tip = suggested
	}
	if maxFee == nil {
		gasPrice, err := c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return common.Hash{}, &RPCError{Op: "eth_gasPrice", Err: err}
		}
		// Double the suggested price so the cap survives base fee moves.
		maxFee = new(big.Int).Add(new(big.Int).Mul(gasPrice, big.NewInt(2)), tip)
	}

	gasLimit := externalGas
	if gasLimit == 0 {
		msg := ethereum.CallMsg{
			From:  c.address,
			To:    &req.To,
			Value: req.Value,
			Data:  req.Data,
		}
		estimated, err := c.eth.EstimateGas(ctx, msg)
		if err != nil {
			return common.Hash{}, &RPCError{Op: "eth_estimateGas", Err: err}
		}
		gasLimit = estimated * 120 / 100
	}

	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   req.ChainID,
		Nonce:     req.Nonce,
		Gas:       gasLimit,
		GasTipCap: tip,
		GasFeeCap: maxFee,
		To:        &req.To,
		Value:     req.Value,
		Data:      req.Data,
	})

	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(req.ChainID), c.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, &RPCError{Op: "eth_sendRawTransaction", Err: err}
	}
	return signed.Hash(), nil
}

// WaitTx polls for the transaction receipt until it confirms, reverts or
// the confirmation window elapses.
func (c *Client) WaitTx(ctx context.Context, hash common.Hash) error {
	deadline := time.Now().Add(confirmTimeout)
	ticker := time.NewTicker(confirmInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == ethtypes.ReceiptStatusFailed {
				return &TxRevertedError{Hash: hash}
			}
			return nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return &RPCError{Op: "eth_getTransactionReceipt", Err: err}
		}

		if time.Now().After(deadline) {
			return &TxTimeoutError{Hash: hash, Wait: confirmTimeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// callERC20 performs a read-only call against the token contract.
func (c *Client) callERC20(ctx context.Context, token common.Address, method string, args ...interface{}) ([]byte, error) {
	data, err := parsedERC20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s data: %w", method, err)
	}
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, &RPCError{Op: "eth_call " + method, Err: err}
	}
	return out, nil
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}
