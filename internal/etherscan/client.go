package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"balance_checker/internal/logger"
	"balance_checker/internal/models"
)

const defaultAPIBase = "https://api.etherscan.io/v2/api"

// noTransactions is the remote "no data" message; it maps to a zero
// balance, not to an error.
const noTransactions = "No transactions found"

// nativeToken is the settings value selecting the native ETH balance
// lookup instead of an ERC-20 token balance.
const nativeToken = "eth"

// weiDecimals is the fixed 1e18 scaling between wei and whole tokens.
const weiDecimals = 18

// Client queries the Etherscan v2 API for address balances.
type Client struct {
	apiBase string
	apiKey  string
	client  *http.Client
	log     *logger.Logger
}

// NewClient builds a Client. The http.Client carries no timeout of its
// own; callers bound each lookup through the request context.
func NewClient(apiKey string, log *logger.Logger) *Client {
	return &Client{
		apiBase: defaultAPIBase,
		apiKey:  apiKey,
		client:  &http.Client{},
		log:     log,
	}
}

// apiResponse is the etherscan envelope. Result is a decimal wei string
// on success and an explanatory string on failure, so it stays raw here.
type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// Check looks up the balance of address on the given chain. token is
// either "eth" for the native balance or an ERC-20 symbol/contract
// address. The returned result is Success or Empty; any other condition
// is an error for the caller's failure classifier.
func (c *Client) Check(ctx context.Context, address, chainID, token string) (models.LookupResult, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("chainid", chainID)
	q.Set("module", "account")
	q.Set("address", address)
	if strings.EqualFold(token, nativeToken) {
		q.Set("action", "balance")
	} else {
		q.Set("action", "tokenbalance")
		q.Set("contractaddress", token)
	}

	resp, err := c.get(ctx, q)
	if err != nil {
		return models.LookupResult{}, err
	}

	if resp.Status != "1" {
		if resp.Message == noTransactions {
			c.log.Infow("no_transactions_found", "address", address)
			return models.LookupResult{
				Outcome: models.OutcomeEmpty,
				Amount:  "0",
				Message: noTransactions,
			}, nil
		}
		return models.LookupResult{}, fmt.Errorf("balance lookup for %s: status %q, message %q", address, resp.Status, resp.Message)
	}

	var wei string
	if err := json.Unmarshal(resp.Result, &wei); err != nil {
		return models.LookupResult{}, fmt.Errorf("balance lookup for %s: unexpected result shape: %w", address, err)
	}
	amount, err := formatWei(wei)
	if err != nil {
		return models.LookupResult{}, fmt.Errorf("balance lookup for %s: %w", address, err)
	}

	c.log.Infow("balance_checked", "address", address, "amount", amount, "token", token)
	return models.LookupResult{Outcome: models.OutcomeSuccess, Amount: amount}, nil
}

// get performs one API request and decodes the envelope.
func (c *Client) get(ctx context.Context, q url.Values) (apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"?"+q.Encode(), nil)
	if err != nil {
		return apiResponse{}, fmt.Errorf("build etherscan request: %w", err)
	}

	httpResp, err := c.client.Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("etherscan request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return apiResponse{}, fmt.Errorf("etherscan request: unexpected status %d", httpResp.StatusCode)
	}

	var resp apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return apiResponse{}, fmt.Errorf("decode etherscan response: %w", err)
	}
	return resp, nil
}

// formatWei converts a decimal wei string into a whole-token decimal
// string, trimming trailing zeros ("1500000000000000000" -> "1.5").
func formatWei(wei string) (string, error) {
	n, ok := new(big.Int).SetString(wei, 10)
	if !ok {
		return "", fmt.Errorf("non-numeric balance %q", wei)
	}
	r := new(big.Rat).SetFrac(n, new(big.Int).Exp(big.NewInt(10), big.NewInt(weiDecimals), nil))
	s := r.FloatString(weiDecimals)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		s = "0"
	}
	return s, nil
}
