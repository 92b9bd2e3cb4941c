package models

import "time"

// Wallet is one row of the Grist wallets table. Only the columns the
// checker touches are mapped; everything else stays in the document.
type Wallet struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
	Value   string `json:"value"`   // empty = pending, "--" = failed lookup
	Comment string `json:"comment"` // remote message or "Error: ..." text
}

// Pending reports whether the wallet still needs a balance lookup.
func (w Wallet) Pending() bool {
	return w.Value == "" && w.Address != ""
}

// LookupOutcome classifies the result of one remote balance lookup.
type LookupOutcome int

const (
	// OutcomeSuccess means the remote side returned a balance.
	OutcomeSuccess LookupOutcome = iota
	// OutcomeEmpty means the remote side reported "no data"; treated as a
	// zero balance plus a human-readable message, not as an error.
	OutcomeEmpty
	// OutcomeTransient covers network, parse and unexpected-shape
	// failures; the row gets the sentinel value.
	OutcomeTransient
)

// LookupResult is the transient result of one balance lookup.
type LookupResult struct {
	Outcome LookupOutcome `json:"outcome"`
	Amount  string        `json:"amount"`  // decimal string, "" on transient failure
	Message string        `json:"message"` // remote message ("No transactions found", ...)
}

// HealthStatus is what GET /health reports.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Reason  string `json:"reason,omitempty"` // set only when unhealthy
}

// Unhealthy reasons.
const (
	ReasonWatchdogLow    = "watchdog-low"
	ReasonLookupInFlight = "lookup-in-progress-too-long"
)

// DaemonStatus is the richer snapshot served on /api/v1/status and
// streamed over the WebSocket.
type DaemonStatus struct {
	Healthy           bool      `json:"healthy"`
	Reason            string    `json:"reason,omitempty"`
	WatchdogRemaining float64   `json:"watchdog_remaining_s"`
	Busy              bool      `json:"busy"`
	LastAddress       string    `json:"last_address,omitempty"`
	LastCheckedAt     time.Time `json:"last_checked_at,omitempty"`
}

// CheckEvent is a single journal entry.
type CheckEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"` // CHECKED | CHECK_FAILED | RESOLUTION_ERROR | WATCHDOG_EXPIRED
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}

// Journal event types.
const (
	EventChecked         = "CHECKED"
	EventCheckFailed     = "CHECK_FAILED"
	EventResolutionError = "RESOLUTION_ERROR"
	EventWatchdogExpired = "WATCHDOG_EXPIRED"
)
