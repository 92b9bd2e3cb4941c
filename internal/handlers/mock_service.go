package handlers

import (
	"context"
	"time"

	"balance_checker/internal/models"
	"balance_checker/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks (test wiring for the HTTP layer) ----

type mockMonitoring struct {
	status models.DaemonStatus
	calls  int
}

func (m *mockMonitoring) Status(ctx context.Context) models.DaemonStatus {
	m.calls++
	return m.status
}

type mockEventLog struct {
	events     []models.CheckEvent
	err        error
	lastFilter service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.CheckEvent, error) {
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

type mockChecker struct{}

func (m *mockChecker) Run(ctx context.Context)          {}
func (m *mockChecker) Busy() bool                       { return false }
func (m *mockChecker) LastChecked() (string, time.Time) { return "", time.Time{} }

// newTestRouter builds the full route table around the given service.
func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}
