package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"relay-bridger/pkg/types"
)

// DefaultBaseURL is the production Relay aggregation API.
const DefaultBaseURL = "https://api.relay.link"

// QuoteUnavailableError means the aggregator could not produce a usable
// route. The caller must not build a transaction without a valid quote.
type QuoteUnavailableError struct {
	StatusCode int
	Message    string
}

func (e *QuoteUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("quote unavailable (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("quote unavailable: %s", e.Message)
}

// QuoteRequest describes the desired transfer. Currencies are token
// contract addresses; the zero address means the native currency.
type QuoteRequest struct {
	UseReceiver         bool   `json:"useReceiver"`
	User                string `json:"user"`
	OriginChainID       int64  `json:"originChainId"`
	DestinationChainID  int64  `json:"destinationChainId"`
	OriginCurrency      string `json:"originCurrency"`
	DestinationCurrency string `json:"destinationCurrency"`
	Amount              string `json:"amount"`
	TradeType           string `json:"tradeType"`
}

// TxData carries the on-chain call of one routing item. Numeric fields
// arrive as decimal strings.
type TxData struct {
	To                   string `json:"to"`
	Value                string `json:"value"`
	Data                 string `json:"data"`
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
	Gas                  string `json:"gas"`
}

// Item is one executable action within a routing step.
type Item struct {
	Status string `json:"status"`
	Data   TxData `json:"data"`
}

// Step is one stage of the quoted route, correlated with off-chain
// completion tracking through its request ID.
type Step struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	RequestID string `json:"requestId"`
	Items     []Item `json:"items"`
}

// Quote is the aggregator's proposed route. Immutable once received.
type Quote struct {
	Steps []Step `json:"steps"`
}

// PrimaryItem returns the first step's first item, the route's primary
// transaction, along with the step's request ID.
func (q *Quote) PrimaryItem() (*Item, string, error) {
	if len(q.Steps) == 0 || len(q.Steps[0].Items) == 0 {
		return nil, "", &QuoteUnavailableError{Message: "quote has no executable steps"}
	}
	return &q.Steps[0].Items[0], q.Steps[0].RequestID, nil
}

// ParseBig converts one of the quote's decimal string fields to big.Int.
// Empty strings parse as zero.
func ParseBig(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid numeric field %q", s)
	}
	return v, nil
}

// Client is the adapter to the Relay aggregation API. All requests route
// through the HTTP client it is constructed with, which carries the
// profile's proxy.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates an API client. A nil httpc falls back to a default
// client without a proxy.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

// GetQuote requests a route for an exact-input transfer.
func (c *Client) GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	if req.TradeType == "" {
		req.TradeType = "EXACT_INPUT"
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quote request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/quote", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, &QuoteUnavailableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &QuoteUnavailableError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &QuoteUnavailableError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	var quote Quote
	if err := json.Unmarshal(respBody, &quote); err != nil {
		return nil, &QuoteUnavailableError{StatusCode: resp.StatusCode, Message: "malformed quote payload: " + err.Error()}
	}
	return &quote, nil
}

// GetStatus polls the aggregator for completion of a submitted intent.
// Polling is best-effort: transient HTTP or parse failures return an
// unknown status rather than an error, so they never abort the run.
func (c *Client) GetStatus(ctx context.Context, requestID string) types.BridgeStatus {
	status := types.BridgeStatus{RequestID: requestID, State: types.StateUnknown}

	endpoint := c.baseURL + "/intents/status/v2?requestId=" + url.QueryEscape(requestID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return status
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return status
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return status
	}
	status.Raw = body

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return status
	}
	status.State = mapState(payload.Status)
	return status
}

// mapState normalizes the provider's status vocabulary.
func mapState(s string) types.BridgeState {
	switch strings.ToLower(s) {
	case "success":
		return types.StateSuccess
	case "failure", "failed", "refund":
		return types.StateFailed
	case "pending", "waiting", "delayed":
		return types.StatePending
	default:
		return types.StateUnknown
	}
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte) string {
	var errorResp map[string]interface{}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		if message, ok := errorResp["message"].(string); ok {
			return message
		}
		if errs, ok := errorResp["errors"]; ok {
			return fmt.Sprintf("%v", errs)
		}
	}
	return string(body)
}
