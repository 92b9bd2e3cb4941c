package service

import (
	"context"

	"balance_checker/internal/models"
)

// MonitoringService assembles the daemon status snapshot out of the
// watchdog countdown, the health reporter and the checker's last activity.
type MonitoringService struct {
	dog     Progress
	health  HealthState
	checker Checker
}

func NewMonitoringService(dog Progress, health HealthState, checker Checker) *MonitoringService {
	return &MonitoringService{dog: dog, health: health, checker: checker}
}

// Status never blocks on the loop; all inputs are lock-guarded snapshots.
func (s *MonitoringService) Status(ctx context.Context) models.DaemonStatus {
	hs := s.health.Status()
	addr, at := s.checker.LastChecked()
	return models.DaemonStatus{
		Healthy:           hs.Healthy,
		Reason:            hs.Reason,
		WatchdogRemaining: s.dog.Remaining().Seconds(),
		Busy:              s.checker.Busy(),
		LastAddress:       addr,
		LastCheckedAt:     at,
	}
}
