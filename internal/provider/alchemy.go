package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"eth-token-sentry/internal/budget"
	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/ethconv"
)

// Default Alchemy configuration.
const (
	AlchemyBaseURL = "https://eth-mainnet.g.alchemy.com/v2"
	alchemyTimeout = 15 * time.Second

	// Per-method compute unit costs charged against the budget tracker.
	costGasPrice      = 10
	costGetBalance    = 10
	costTokenBalances = 26
)

// Alchemy is a JSON-RPC client against an Ethereum node endpoint.
type Alchemy struct {
	baseURL string
	apiKey  string
	client  *http.Client
	budget  *budget.Tracker

	nextID atomic.Uint64
}

// AlchemyOption configures the Alchemy client.
type AlchemyOption func(*Alchemy)

// WithAlchemyBaseURL overrides the RPC base URL (tests).
func WithAlchemyBaseURL(u string) AlchemyOption {
	return func(c *Alchemy) { c.baseURL = u }
}

// WithAlchemyHTTPClient sets a custom http.Client.
func WithAlchemyHTTPClient(client *http.Client) AlchemyOption {
	return func(c *Alchemy) { c.client = client }
}

// WithAlchemyBudget charges each request to the given tracker.
func WithAlchemyBudget(t *budget.Tracker) AlchemyOption {
	return func(c *Alchemy) { c.budget = t }
}

// NewAlchemy creates a new Alchemy JSON-RPC client.
func NewAlchemy(apiKey string, opts ...AlchemyOption) *Alchemy {
	c := &Alchemy{
		baseURL: AlchemyBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: alchemyTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// GasPrice returns the current gas price in gwei.
func (c *Alchemy) GasPrice(ctx context.Context) (float64, error) {
	var hex string
	if err := c.call(ctx, "eth_gasPrice", nil, costGasPrice, &hex); err != nil {
		return 0, err
	}
	gwei, err := ethconv.HexWeiToGwei(hex)
	if err != nil {
		return 0, fmt.Errorf("gas price: %w", err)
	}
	return gwei, nil
}

// EthBalance returns the native balance of the address in ETH.
func (c *Alchemy) EthBalance(ctx context.Context, address string) (float64, error) {
	var hex string
	params := []any{address, "latest"}
	if err := c.call(ctx, "eth_getBalance", params, costGetBalance, &hex); err != nil {
		return 0, err
	}
	eth, err := ethconv.HexWeiToEth(hex)
	if err != nil {
		return 0, fmt.Errorf("balance for %s: %w", address, err)
	}
	return eth, nil
}

type tokenBalancesResult struct {
	Address       string `json:"address"`
	TokenBalances []struct {
		ContractAddress string `json:"contractAddress"`
		TokenBalance    string `json:"tokenBalance"`
	} `json:"tokenBalances"`
}

// TokenBalances returns the ERC-20 balances of the address, with zero
// balances filtered out.
func (c *Alchemy) TokenBalances(ctx context.Context, address string) ([]domain.TokenBalance, error) {
	var res tokenBalancesResult
	params := []any{address, "erc20"}
	if err := c.call(ctx, "alchemy_getTokenBalances", params, costTokenBalances, &res); err != nil {
		return nil, err
	}
	balances := make([]domain.TokenBalance, 0, len(res.TokenBalances))
	for _, tb := range res.TokenBalances {
		if ethconv.IsZeroHex(tb.TokenBalance) {
			continue
		}
		balances = append(balances, domain.TokenBalance{
			ContractAddress: tb.ContractAddress,
			Amount:          tb.TokenBalance,
		})
	}
	return balances, nil
}

func (c *Alchemy) call(ctx context.Context, method string, params []any, cost uint64, out any) error {
	if params == nil {
		params = []any{}
	}
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	endpoint := c.baseURL + "/" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.budget != nil {
		c.budget.AddUnits(cost)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", method, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s rpc error %d: %s", method, rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

var _ NodeGateway = (*Alchemy)(nil)
