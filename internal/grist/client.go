package grist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"balance_checker/internal/logger"
	"balance_checker/internal/models"
)

// requestTimeout bounds every document API call; store reads and writes
// are expected to be fast compared to the balance lookup.
const requestTimeout = 15 * time.Second

// naiveZoneOffset is the timezone assumed for wall-clock timestamps that
// carry no explicit zone before converting to Unix seconds (UTC+3).
const naiveZoneOffset = 3 * 60 * 60

// Resolution errors surfaced to the reconciliation loop.
var (
	ErrChainNotSet   = errors.New("chain is not set")
	ErrChainsEmpty   = errors.New("chains table is empty")
	ErrChainNotFound = errors.New("chain not found")
	ErrChainIDEmpty  = errors.New("chain id is empty")
)

// Config identifies one Grist document and the tables the checker uses.
type Config struct {
	Server        string
	DocID         string
	APIKey        string
	WalletsTable  string
	SettingsTable string
	ChainsTable   string
}

// Client talks to the Grist records API of a single document.
type Client struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// NewClient builds a Client. Table names are normalized the way the
// document API expects (spaces become underscores).
func NewClient(cfg Config, log *logger.Logger) *Client {
	cfg.WalletsTable = normalizeName(cfg.WalletsTable)
	cfg.SettingsTable = normalizeName(cfg.SettingsTable)
	cfg.ChainsTable = normalizeName(cfg.ChainsTable)
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
		log:    log,
	}
}

// normalizeName maps a human column/table name onto its API identifier.
func normalizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// record is one row of the records API payload.
type record struct {
	ID     int64          `json:"id"`
	Fields map[string]any `json:"fields"`
}

type recordsPayload struct {
	Records []record `json:"records"`
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/api/docs/%s/tables/%s/records",
		strings.TrimRight(c.cfg.Server, "/"), c.cfg.DocID, table)
}

// fetchRecords reads a whole table in document order.
func (c *Client) fetchRecords(ctx context.Context, table string) ([]record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table), nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request for %s: %w", table, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch table %s: %w", table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch table %s: unexpected status %d", table, resp.StatusCode)
	}

	var payload recordsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode table %s: %w", table, err)
	}
	return payload.Records, nil
}

// update patches the given fields of a single row. Column names are
// normalized and time.Time values become Unix-epoch seconds.
func (c *Client) update(ctx context.Context, table string, rowID int64, fields map[string]any) error {
	normalized := make(map[string]any, len(fields))
	for name, value := range fields {
		if t, ok := value.(time.Time); ok {
			value = toTimestamp(t)
		}
		normalized[normalizeName(name)] = value
	}

	body, err := json.Marshal(recordsPayload{Records: []record{{ID: rowID, Fields: normalized}}})
	if err != nil {
		return fmt.Errorf("marshal update for %s: %w", table, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.tableURL(table), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build update request for %s: %w", table, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("update table %s: %w", table, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update table %s row %d: unexpected status %d", table, rowID, resp.StatusCode)
	}
	return nil
}

// ListWallets returns the wallets table in document order.
func (c *Client) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	records, err := c.fetchRecords(ctx, c.cfg.WalletsTable)
	if err != nil {
		return nil, err
	}
	wallets := make([]models.Wallet, 0, len(records))
	for _, r := range records {
		wallets = append(wallets, models.Wallet{
			ID:      r.ID,
			Address: fieldString(r.Fields["Address"]),
			Value:   fieldString(r.Fields["Value"]),
			Comment: fieldString(r.Fields["Comment"]),
		})
	}
	return wallets, nil
}

// UpdateWallet patches fields of one wallet row.
func (c *Client) UpdateWallet(ctx context.Context, rowID int64, fields map[string]any) error {
	return c.update(ctx, c.cfg.WalletsTable, rowID, fields)
}

// Setting reads a named column from the first row of the settings table.
func (c *Client) Setting(ctx context.Context, name string) (string, error) {
	records, err := c.fetchRecords(ctx, c.cfg.SettingsTable)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", fmt.Errorf("settings table %s is empty", c.cfg.SettingsTable)
	}
	return fieldString(records[0].Fields[normalizeName(name)]), nil
}

// ChainID resolves the chain reference from the settings table into the
// numeric chain id stored in the chains table.
func (c *Client) ChainID(ctx context.Context, chainRef string) (string, error) {
	ref, err := strconv.ParseInt(strings.TrimSpace(chainRef), 10, 64)
	if err != nil || ref == 0 {
		return "", ErrChainNotSet
	}

	records, err := c.fetchRecords(ctx, c.cfg.ChainsTable)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", ErrChainsEmpty
	}
	for _, r := range records {
		if r.ID != ref {
			continue
		}
		id := fieldString(r.Fields["Chain_id"])
		if id == "" {
			return "", ErrChainIDEmpty
		}
		return id, nil
	}
	return "", ErrChainNotFound
}

// toTimestamp converts a time to Unix-epoch seconds. Wall-clock times
// without an explicit zone (Location == time.Local) are reinterpreted as
// UTC+3 first.
func toTimestamp(t time.Time) int64 {
	if t.Location() == time.Local {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
			t.Nanosecond(), time.FixedZone("UTC+3", naiveZoneOffset))
	}
	return t.Unix()
}

// fieldString renders a document cell as a string. Grist returns numbers
// as float64 and empty cells as nil.
func fieldString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
