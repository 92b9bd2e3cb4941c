package health

import (
	"sync"

	"balance_checker/internal/models"
)

// Reporter holds the externally visible health state of the daemon.
// Two independent conditions feed it: the watchdog flips watchdogLow when
// its countdown crosses the warning threshold, and the checker marks busy
// while a remote lookup is in flight. Both writers and the HTTP handler
// run on different goroutines, so every access goes through the RWMutex.
type Reporter struct {
	mu          sync.RWMutex
	watchdogLow bool
	busy        bool
}

// NewReporter returns a Reporter in the healthy state.
func NewReporter() *Reporter {
	return &Reporter{}
}

// SetWatchdogLow marks (or clears) the watchdog-low condition. Idempotent.
func (r *Reporter) SetWatchdogLow(low bool) {
	r.mu.Lock()
	r.watchdogLow = low
	r.mu.Unlock()
}

// SetBusy marks (or clears) the lookup-in-flight condition. Clearing busy
// restores whatever the watchdog currently dictates. Idempotent.
func (r *Reporter) SetBusy(busy bool) {
	r.mu.Lock()
	r.busy = busy
	r.mu.Unlock()
}

// Status derives the reported state. The watchdog-low condition wins over
// busy: a starving watchdog is the stronger restart signal.
func (r *Reporter) Status() models.HealthStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch {
	case r.watchdogLow:
		return models.HealthStatus{Healthy: false, Reason: models.ReasonWatchdogLow}
	case r.busy:
		return models.HealthStatus{Healthy: false, Reason: models.ReasonLookupInFlight}
	default:
		return models.HealthStatus{Healthy: true}
	}
}
