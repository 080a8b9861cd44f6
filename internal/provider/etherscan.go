package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eth-token-sentry/internal/budget"
	"eth-token-sentry/internal/domain"
)

// Default Etherscan configuration.
const (
	EtherscanBaseURL   = "https://api.etherscan.io/api"
	etherscanTimeout   = 15 * time.Second
	etherscanPageSize  = 25
	etherscanCallCost  = 5 // quota units per request
	CreationBatchLimit = 5 // getcontractcreation caps the address list
)

// Etherscan is a client for the Etherscan account/contract/stats modules.
type Etherscan struct {
	baseURL string
	apiKey  string
	client  *http.Client
	budget  *budget.Tracker
}

// EtherscanOption configures the Etherscan client.
type EtherscanOption func(*Etherscan)

// WithEtherscanBaseURL overrides the API base URL (tests).
func WithEtherscanBaseURL(u string) EtherscanOption {
	return func(c *Etherscan) { c.baseURL = u }
}

// WithEtherscanHTTPClient sets a custom http.Client.
func WithEtherscanHTTPClient(client *http.Client) EtherscanOption {
	return func(c *Etherscan) { c.client = client }
}

// WithEtherscanBudget charges each request to the given tracker.
func WithEtherscanBudget(t *budget.Tracker) EtherscanOption {
	return func(c *Etherscan) { c.budget = t }
}

// NewEtherscan creates a new Etherscan client.
func NewEtherscan(apiKey string, opts ...EtherscanOption) *Etherscan {
	c := &Etherscan{
		baseURL: EtherscanBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: etherscanTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common Etherscan response wrapper. Result stays raw
// because failure responses carry a string where success carries a list.
type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// txRow covers the account-module list actions; Etherscan encodes every
// field as a string.
type etherscanTxRow struct {
	Hash            string `json:"hash"`
	TimeStamp       string `json:"timeStamp"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
	FunctionName    string `json:"functionName"`
	IsError         string `json:"isError"`
}

func (c *Etherscan) get(ctx context.Context, params url.Values, result interface{}) error {
	if c.budget != nil {
		c.budget.AddUnits(etherscanCallCost)
	}

	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build etherscan request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("etherscan request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("etherscan status %d", resp.StatusCode)
	}

	var env etherscanEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode etherscan response: %w", err)
	}

	// "No transactions found" arrives as status 0 with an empty list.
	if env.Status != "1" && !strings.HasPrefix(env.Message, "No transactions") {
		return fmt.Errorf("etherscan error: %s", env.Message)
	}

	if err := json.Unmarshal(env.Result, result); err != nil {
		return fmt.Errorf("decode etherscan result: %w", err)
	}
	return nil
}

func (c *Etherscan) listTxs(ctx context.Context, action, address string, count int) ([]etherscanTxRow, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", action)
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(count))
	params.Set("sort", "desc")

	var rows []etherscanTxRow
	if err := c.get(ctx, params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentTokenTransfers returns the newest page of ERC-20 transfers touching
// the address, newest-first.
func (c *Etherscan) RecentTokenTransfers(ctx context.Context, address string) ([]domain.TokenTransfer, error) {
	rows, err := c.listTxs(ctx, "tokentx", address, etherscanPageSize)
	if err != nil {
		return nil, err
	}

	out := make([]domain.TokenTransfer, 0, len(rows))
	for _, r := range rows {
		decimals, _ := strconv.ParseUint(r.TokenDecimal, 10, 8)
		out = append(out, domain.TokenTransfer{
			Hash:            r.Hash,
			TimeStamp:       parseTimestamp(r.TimeStamp),
			From:            strings.ToLower(r.From),
			To:              strings.ToLower(r.To),
			ContractAddress: strings.ToLower(r.ContractAddress),
			TokenName:       r.TokenName,
			TokenSymbol:     r.TokenSymbol,
			TokenDecimal:    uint8(decimals),
			Value:           r.Value,
		})
	}
	return out, nil
}

// RecentInternalTxs returns the count newest internal transactions against
// the address, newest-first.
func (c *Etherscan) RecentInternalTxs(ctx context.Context, address string, count int) ([]domain.ChainTx, error) {
	rows, err := c.listTxs(ctx, "txlistinternal", address, count)
	if err != nil {
		return nil, err
	}
	return toChainTxs(rows), nil
}

// NormalTxs returns the newest page of normal transactions for the address,
// newest-first, with the decoded function name when Etherscan knows it.
func (c *Etherscan) NormalTxs(ctx context.Context, address string) ([]domain.ChainTx, error) {
	rows, err := c.listTxs(ctx, "txlist", address, etherscanPageSize)
	if err != nil {
		return nil, err
	}
	return toChainTxs(rows), nil
}

type creationRow struct {
	ContractAddress string `json:"contractAddress"`
	ContractCreator string `json:"contractCreator"`
	TxHash          string `json:"txHash"`
}

// ContractCreations resolves creator and creation tx for up to
// CreationBatchLimit contract addresses in one request.
func (c *Etherscan) ContractCreations(ctx context.Context, addresses []string) ([]domain.ContractCreation, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	if len(addresses) > CreationBatchLimit {
		return nil, fmt.Errorf("contract creation batch exceeds %d addresses", CreationBatchLimit)
	}

	params := url.Values{}
	params.Set("module", "contract")
	params.Set("action", "getcontractcreation")
	params.Set("contractaddresses", strings.Join(addresses, ","))

	var rows []creationRow
	if err := c.get(ctx, params, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.ContractCreation, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ContractCreation{
			ContractAddress: strings.ToLower(r.ContractAddress),
			Creator:         strings.ToLower(r.ContractCreator),
			TxHash:          r.TxHash,
		})
	}
	return out, nil
}

type ethPriceResult struct {
	EthUSD string `json:"ethusd"`
}

// EthPrice returns the current ETH/USD price.
func (c *Etherscan) EthPrice(ctx context.Context) (float64, error) {
	params := url.Values{}
	params.Set("module", "stats")
	params.Set("action", "ethprice")

	var result ethPriceResult
	if err := c.get(ctx, params, &result); err != nil {
		return 0, err
	}

	price, err := strconv.ParseFloat(result.EthUSD, 64)
	if err != nil {
		return 0, fmt.Errorf("parse eth price %q: %w", result.EthUSD, err)
	}
	return price, nil
}

func toChainTxs(rows []etherscanTxRow) []domain.ChainTx {
	out := make([]domain.ChainTx, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.ChainTx{
			Hash:            r.Hash,
			TimeStamp:       parseTimestamp(r.TimeStamp),
			From:            strings.ToLower(r.From),
			To:              strings.ToLower(r.To),
			Value:           r.Value,
			ContractAddress: strings.ToLower(r.ContractAddress),
			FunctionName:    r.FunctionName,
			IsError:         r.IsError == "1",
		})
	}
	return out
}

func parseTimestamp(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

// Compile-time interface checks.
var (
	_ TransferSource   = (*Etherscan)(nil)
	_ InternalTxSource = (*Etherscan)(nil)
	_ NormalTxSource   = (*Etherscan)(nil)
	_ CreationSource   = (*Etherscan)(nil)
)
