package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eth-token-sentry/internal/budget"
)

// Default Chainbase configuration.
const (
	ChainbaseBaseURL  = "https://api.chainbase.online/v1"
	chainbaseTimeout  = 15 * time.Second
	chainbaseCallCost = 1
	chainbaseChainID  = "1" // mainnet
	topHolderLimit    = 10
)

// Chainbase is a client for the Chainbase token API.
type Chainbase struct {
	baseURL string
	apiKey  string
	client  *http.Client
	budget  *budget.Tracker
}

// ChainbaseOption configures the Chainbase client.
type ChainbaseOption func(*Chainbase)

// WithChainbaseBaseURL overrides the API base URL (tests).
func WithChainbaseBaseURL(u string) ChainbaseOption {
	return func(c *Chainbase) { c.baseURL = u }
}

// WithChainbaseHTTPClient sets a custom http.Client.
func WithChainbaseHTTPClient(client *http.Client) ChainbaseOption {
	return func(c *Chainbase) { c.client = client }
}

// WithChainbaseBudget charges each request to the given tracker.
func WithChainbaseBudget(t *budget.Tracker) ChainbaseOption {
	return func(c *Chainbase) { c.budget = t }
}

// NewChainbase creates a new Chainbase client.
func NewChainbase(apiKey string, opts ...ChainbaseOption) *Chainbase {
	c := &Chainbase{
		baseURL: ChainbaseBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: chainbaseTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chainbaseEnvelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type chainbaseHolder struct {
	WalletAddress string `json:"wallet_address"`
}

// TopHolders returns the top holder addresses of the contract, largest
// balance first.
func (c *Chainbase) TopHolders(ctx context.Context, contract string) ([]string, error) {
	if c.budget != nil {
		c.budget.AddUnits(chainbaseCallCost)
	}

	params := url.Values{}
	params.Set("chain_id", chainbaseChainID)
	params.Set("contract_address", contract)
	params.Set("limit", fmt.Sprintf("%d", topHolderLimit))
	reqURL := c.baseURL + "/token/top-holders?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build chainbase request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chainbase request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chainbase status %d", resp.StatusCode)
	}

	var env chainbaseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode chainbase response: %w", err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("chainbase error %d: %s", env.Code, env.Message)
	}

	var holders []chainbaseHolder
	if err := json.Unmarshal(env.Data, &holders); err != nil {
		return nil, fmt.Errorf("decode chainbase holders: %w", err)
	}

	out := make([]string, 0, len(holders))
	for _, h := range holders {
		out = append(out, strings.ToLower(h.WalletAddress))
	}
	return out, nil
}

// Compile-time interface check.
var _ TopHolderSource = (*Chainbase)(nil)
