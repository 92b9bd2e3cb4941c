package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"balance_checker/internal/logger"
)

const defaultAPIBase = "https://api.telegram.org"

const requestTimeout = 10 * time.Second

// Telegram posts plain-text alerts to a Telegram chat via the Bot API.
// It is strictly fire-and-forget: callers are expected to log and drop
// any returned error.
type Telegram struct {
	apiBase string
	token   string
	chatID  string
	client  *http.Client
	log     *logger.Logger
}

// NewTelegram returns a notifier, or nil when token or chat id are not
// configured. Absence of credentials disables alerting; it is not an error.
func NewTelegram(token, chatID string, log *logger.Logger) *Telegram {
	if token == "" || chatID == "" {
		return nil
	}
	return &Telegram{
		apiBase: defaultAPIBase,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// Notify sends one sendMessage call. The context bounds the request; the
// method performs no retries.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage: unexpected status %d", resp.StatusCode)
	}
	t.log.Infow("telegram_alert_sent", "chat_id", t.chatID)
	return nil
}
