package service

import (
	"context"
	"time"

	"balance_checker/internal/logger"
	"balance_checker/internal/models"
	"balance_checker/internal/repository"
)

// Store is the narrow record-store surface the loop needs. Implemented by
// the Grist client; everything behind it is plain CRUD over the document.
type Store interface {
	ListWallets(ctx context.Context) ([]models.Wallet, error)
	UpdateWallet(ctx context.Context, rowID int64, fields map[string]any) error
	Setting(ctx context.Context, name string) (string, error)
	ChainID(ctx context.Context, chainRef string) (string, error)
}

// Balance performs the remote balance lookup.
type Balance interface {
	Check(ctx context.Context, address, chainID, token string) (models.LookupResult, error)
}

// Progress receives proof-of-progress signals. Implemented by the watchdog.
type Progress interface {
	Reset()
	Remaining() time.Duration
}

// HealthState is the loop's view of the health reporter.
type HealthState interface {
	SetBusy(busy bool)
	Status() models.HealthStatus
}

// Checker runs the reconciliation loop until ctx is canceled.
type Checker interface {
	Run(ctx context.Context)
	LastChecked() (address string, at time.Time)
	Busy() bool
}

// Monitoring exposes the daemon status snapshot for HTTP and WebSocket.
type Monitoring interface {
	Status(ctx context.Context) models.DaemonStatus
}

// EventLog exposes the journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.CheckEvent, error)
}

// Service aggregates all sub-services.
type Service struct {
	Checker
	Monitoring
	EventLog
}

// Deps carries everything the services are wired with.
type Deps struct {
	Store    Store
	Balance  Balance
	Watchdog Progress
	Health   HealthState
	Events   repository.EventRepo
	Checker  CheckerConfig
	Log      *logger.Logger
}

// NewService wires the collaborators into concrete services.
func NewService(d Deps) *Service {
	checker := NewCheckerService(d.Store, d.Balance, d.Watchdog, d.Health, d.Events, d.Checker, d.Log)
	return &Service{
		Checker:    checker,
		Monitoring: NewMonitoringService(d.Watchdog, d.Health, checker),
		EventLog:   NewEventLogService(d.Events),
	}
}
