package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"balance_checker/internal/logger"
	"balance_checker/internal/models"
	"balance_checker/internal/repository"
)

// Settings table columns the loop resolves each pass.
const (
	settingChain = "Chain"
	settingToken = "Token"
)

// CheckerConfig carries the loop's timing knobs.
type CheckerConfig struct {
	LookupTimeout time.Duration // bound on one remote balance lookup
	IdleSleep     time.Duration // backoff when idle or when resolution fails
}

// DefaultCheckerConfig matches the deployment defaults.
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{
		LookupTimeout: 30 * time.Second,
		IdleSleep:     10 * time.Second,
	}
}

// CheckerService is the reconciliation loop: one pending wallet per pass,
// one remote lookup, one write-back. Strictly sequential; every pass
// starts by proving progress to the watchdog, before anything can block.
type CheckerService struct {
	store   Store
	balance Balance
	dog     Progress
	health  HealthState
	events  repository.EventRepo
	cfg     CheckerConfig
	log     *logger.Logger

	mu          sync.Mutex
	busy        bool
	lastAddress string
	lastAt      time.Time
}

// NewCheckerService wires the loop. events may be nil (journal disabled).
func NewCheckerService(store Store, balance Balance, dog Progress, health HealthState,
	events repository.EventRepo, cfg CheckerConfig, log *logger.Logger) *CheckerService {
	return &CheckerService{
		store:   store,
		balance: balance,
		dog:     dog,
		health:  health,
		events:  events,
		cfg:     cfg,
		log:     log,
	}
}

// Run loops until ctx is canceled. No error escapes an iteration: the
// process terminates only through the watchdog's expiry path.
func (s *CheckerService) Run(ctx context.Context) {
	for ctx.Err() == nil {
		s.runOnce(ctx)
	}
}

// runOnce is one full pass of the loop.
func (s *CheckerService) runOnce(ctx context.Context) {
	// Progress is "the loop is alive and about to attempt work"; the reset
	// must precede any call that can block.
	s.dog.Reset()

	chainID, token, err := s.resolve(ctx)
	if err != nil {
		s.log.Errorw("resolution_failed", "err", err)
		s.journal(ctx, models.EventResolutionError, err.Error(), nil)
		s.sleep(ctx)
		return
	}

	wallet, err := s.nextPending(ctx)
	if err != nil {
		s.log.Errorw("wallet_scan_failed", "err", err)
		s.journal(ctx, models.EventResolutionError, err.Error(), nil)
		s.sleep(ctx)
		return
	}
	if wallet == nil {
		s.log.Infow("all_wallets_have_values", "sleep", s.cfg.IdleSleep)
		s.sleep(ctx)
		return
	}

	s.log.Infow("checking_wallet", "address", wallet.Address, "chain_id", chainID, "token", token)
	res, lookupErr := s.lookup(ctx, wallet.Address, chainID, token)
	s.finish(ctx, *wallet, res, lookupErr)
	// Failure must not stall the next wallet: no sleep on either path.
}

// resolve reads the current chain and token settings from the store.
func (s *CheckerService) resolve(ctx context.Context) (chainID, token string, err error) {
	chainRef, err := s.store.Setting(ctx, settingChain)
	if err != nil {
		return "", "", fmt.Errorf("read chain setting: %w", err)
	}
	chainID, err = s.store.ChainID(ctx, chainRef)
	if err != nil {
		return "", "", fmt.Errorf("resolve chain %q: %w", chainRef, err)
	}
	token, err = s.store.Setting(ctx, settingToken)
	if err != nil {
		return "", "", fmt.Errorf("read token setting: %w", err)
	}
	return chainID, token, nil
}

// nextPending returns the first wallet in document order with an unset
// value and a set address, or nil when all wallets have values.
func (s *CheckerService) nextPending(ctx context.Context) (*models.Wallet, error) {
	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	for i := range wallets {
		if wallets[i].Pending() {
			return &wallets[i], nil
		}
	}
	return nil, nil
}

// lookup runs the remote call under the configured timeout, with the
// health reporter marked busy for exactly the duration of the call.
func (s *CheckerService) lookup(ctx context.Context, address, chainID, token string) (models.LookupResult, error) {
	s.setBusy(true)
	defer s.setBusy(false)

	lookupCtx, cancel := context.WithTimeout(ctx, s.cfg.LookupTimeout)
	defer cancel()
	return s.balance.Check(lookupCtx, address, chainID, token)
}

// finish classifies the lookup outcome, persists it and journals it.
func (s *CheckerService) finish(ctx context.Context, wallet models.Wallet, res models.LookupResult, lookupErr error) {
	wb := classifyLookup(res, lookupErr)

	if err := s.store.UpdateWallet(ctx, wallet.ID, wb.fields); err != nil {
		s.log.Errorw("wallet_update_failed", "address", wallet.Address, "row_id", wallet.ID, "err", err)
	}

	meta := map[string]any{"address": wallet.Address, "row_id": wallet.ID}
	if wb.eventType == models.EventChecked {
		meta["value"] = wb.fields["Value"]
		s.log.Infow("wallet_checked", "address", wallet.Address, "value", wb.fields["Value"])
	} else {
		s.log.Errorw("wallet_check_failed", "address", wallet.Address, "err", lookupErr)
	}
	s.journal(ctx, wb.eventType, wb.description, meta)

	s.mu.Lock()
	s.lastAddress = wallet.Address
	s.lastAt = time.Now().UTC()
	s.mu.Unlock()
}

// journal appends a best-effort entry; journal failures are only logged.
func (s *CheckerService) journal(ctx context.Context, typ, description string, meta map[string]any) {
	if s.events == nil {
		return
	}
	e := models.CheckEvent{Type: typ, Description: description}
	if meta != nil {
		e.Metadata = meta
	}
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Errorw("journal_append_failed", "type", typ, "err", err)
	}
}

// sleep waits the idle backoff, returning early on cancellation.
func (s *CheckerService) sleep(ctx context.Context) {
	t := time.NewTimer(s.cfg.IdleSleep)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *CheckerService) setBusy(busy bool) {
	s.mu.Lock()
	s.busy = busy
	s.mu.Unlock()
	s.health.SetBusy(busy)
}

// Busy reports whether a lookup is in flight.
func (s *CheckerService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// LastChecked returns the address and time of the most recent write-back.
func (s *CheckerService) LastChecked() (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAddress, s.lastAt
}
