package watchdog

import (
	"context"
	"os"
	"sync"
	"time"

	"balance_checker/internal/logger"
)

// HealthSink receives the watchdog-low condition. Implemented by
// health.Reporter; kept as a local interface so tests can observe flips.
type HealthSink interface {
	SetWatchdogLow(low bool)
}

// Notifier delivers the best-effort expiry alert. A failed or slow
// notification never delays termination beyond notifyTimeout.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Config carries the countdown tuning knobs. The countdown starts at
// Ceiling, loses DecayStep every DecayInterval and is pulled back up to
// Ceiling by every Reset.
type Config struct {
	Ceiling       time.Duration
	DecayStep     time.Duration
	DecayInterval time.Duration
	WarnThreshold time.Duration
}

// DefaultConfig matches the deployment defaults: 5 minute ceiling,
// 10s decay every 10s, warning below 60s.
func DefaultConfig() Config {
	return Config{
		Ceiling:       5 * time.Minute,
		DecayStep:     10 * time.Second,
		DecayInterval: 10 * time.Second,
		WarnThreshold: 60 * time.Second,
	}
}

const notifyTimeout = 10 * time.Second

// ExitCodeExpired is the process exit status used on watchdog expiry, so
// a supervisor can tell a stall restart from a configuration failure.
const ExitCodeExpired = 1

// Watchdog bounds the total stall time of the daemon. Progress is proven
// only by explicit Reset calls; everything else (network hang, store hang,
// deadlock) lets the countdown run out and the process gets replaced by
// its supervisor.
type Watchdog struct {
	mu        sync.Mutex
	remaining time.Duration
	expired   bool

	cfg       Config
	health    HealthSink
	notifier  Notifier
	terminate func(code int)
	log       *logger.Logger
}

// New builds a Watchdog with remaining = cfg.Ceiling. notifier may be nil
// (alerting disabled). terminate may be nil, in which case os.Exit is used;
// tests inject their own to intercept the would-terminate effect.
func New(cfg Config, health HealthSink, notifier Notifier, terminate func(int), log *logger.Logger) *Watchdog {
	if terminate == nil {
		terminate = os.Exit
	}
	return &Watchdog{
		remaining: cfg.Ceiling,
		cfg:       cfg,
		health:    health,
		notifier:  notifier,
		terminate: terminate,
		log:       log,
	}
}

// Reset proves forward progress: remaining goes back to the ceiling and
// the watchdog-low condition is cleared. Safe from any goroutine; holds
// the lock only for the assignment.
func (w *Watchdog) Reset() {
	w.mu.Lock()
	w.remaining = w.cfg.Ceiling
	w.mu.Unlock()
	w.health.SetWatchdogLow(false)
}

// Remaining returns a snapshot of the countdown.
func (w *Watchdog) Remaining() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.remaining
}

// Run decays the countdown until ctx is canceled. Expiry terminates the
// process and never returns control to the loop.
func (w *Watchdog) Run(ctx context.Context) {
	t := time.NewTicker(w.cfg.DecayInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick()
		}
	}
}

// tick applies one decay step and acts on the thresholds it crosses.
func (w *Watchdog) tick() {
	w.mu.Lock()
	if w.expired {
		w.mu.Unlock()
		return
	}
	w.remaining -= w.cfg.DecayStep
	if w.remaining < 0 {
		w.remaining = 0
	}
	remaining := w.remaining
	justExpired := remaining == 0
	if justExpired {
		w.expired = true
	}
	w.mu.Unlock()

	w.log.Infow("watchdog_tick", "remaining_s", remaining.Seconds())

	if remaining <= w.cfg.WarnThreshold {
		w.health.SetWatchdogLow(true)
	}
	if justExpired {
		w.expire()
	}
}

// expire runs the terminal path: best-effort alert, then process exit.
// Runs at most once per process lifetime.
func (w *Watchdog) expire() {
	w.log.Errorw("watchdog_expired", "ceiling_s", w.cfg.Ceiling.Seconds())
	if w.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := w.notifier.Notify(ctx, "balance checker watchdog expired, terminating"); err != nil {
			w.log.Errorw("watchdog_notify_failed", "err", err)
		}
	}
	w.terminate(ExitCodeExpired)
}
