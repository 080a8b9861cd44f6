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
	"eth-token-sentry/internal/domain"
)

// Default Honeypot.is configuration.
const (
	HoneypotBaseURL  = "https://api.honeypot.is/v2/IsHoneypot"
	honeypotTimeout  = 20 * time.Second
	honeypotCallCost = 1
)

// Honeypot is a client for the honeypot.is simulation API.
type Honeypot struct {
	baseURL string
	client  *http.Client
	budget  *budget.Tracker
}

// HoneypotOption configures the Honeypot client.
type HoneypotOption func(*Honeypot)

// WithHoneypotBaseURL overrides the API base URL (tests).
func WithHoneypotBaseURL(u string) HoneypotOption {
	return func(c *Honeypot) { c.baseURL = u }
}

// WithHoneypotHTTPClient sets a custom http.Client.
func WithHoneypotHTTPClient(client *http.Client) HoneypotOption {
	return func(c *Honeypot) { c.client = client }
}

// WithHoneypotBudget charges each request to the given tracker.
func WithHoneypotBudget(t *budget.Tracker) HoneypotOption {
	return func(c *Honeypot) { c.budget = t }
}

// NewHoneypot creates a new Honeypot client.
func NewHoneypot(opts ...HoneypotOption) *Honeypot {
	c := &Honeypot{
		baseURL: HoneypotBaseURL,
		client:  &http.Client{Timeout: honeypotTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type honeypotResponse struct {
	Token struct {
		Name     string `json:"name"`
		Symbol   string `json:"symbol"`
		Decimals uint8  `json:"decimals"`
		Address  string `json:"address"`
	} `json:"token"`
	HoneypotResult *struct {
		IsHoneypot     bool   `json:"isHoneypot"`
		HoneypotReason string `json:"honeypotReason"`
	} `json:"honeypotResult"`
	SimulationResult *struct {
		BuyTax  float64 `json:"buyTax"`
		SellTax float64 `json:"sellTax"`
	} `json:"simulationResult"`
	Summary struct {
		Flags []struct {
			Description string `json:"description"`
		} `json:"flags"`
	} `json:"summary"`
	Pair struct {
		Liquidity float64 `json:"liquidity"`
	} `json:"pair"`
}

// TokenMeta resolves metadata and the simulation verdict for a pair or
// token address. When the simulation result is missing the token is treated
// as a honeypot with 100% taxes; when the honeypot result itself is missing
// the verdict defaults to honeypot as well.
func (c *Honeypot) TokenMeta(ctx context.Context, address string) (*domain.TokenMeta, error) {
	if c.budget != nil {
		c.budget.AddUnits(honeypotCallCost)
	}

	reqURL := c.baseURL + "?address=" + url.QueryEscape(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build honeypot request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("honeypot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("honeypot status %d", resp.StatusCode)
	}

	var hp honeypotResponse
	if err := json.NewDecoder(resp.Body).Decode(&hp); err != nil {
		return nil, fmt.Errorf("decode honeypot response: %w", err)
	}

	meta := &domain.TokenMeta{
		TokenAddress: strings.ToLower(hp.Token.Address),
		Name:         hp.Token.Name,
		Symbol:       hp.Token.Symbol,
		Decimals:     hp.Token.Decimals,
		LiquidityUSD: hp.Pair.Liquidity,
	}

	if hp.HoneypotResult != nil {
		meta.IsHoneypot = hp.HoneypotResult.IsHoneypot
		meta.HoneypotReason = hp.HoneypotResult.HoneypotReason
	} else {
		meta.IsHoneypot = true
		meta.HoneypotReason = "honeypot result missing from simulation"
	}

	if hp.SimulationResult != nil {
		meta.BuyTax = hp.SimulationResult.BuyTax
		meta.SellTax = hp.SimulationResult.SellTax
	} else {
		meta.BuyTax = 100
		meta.SellTax = 100
	}

	for _, f := range hp.Summary.Flags {
		meta.Flags = append(meta.Flags, f.Description)
	}

	return meta, nil
}

// Compile-time interface check.
var _ TokenMetaResolver = (*Honeypot)(nil)
