package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"balance_checker/internal/models"
	"balance_checker/internal/service"
)

func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name       string
		status     models.DaemonStatus
		wantCode   int
		wantStatus string
		wantReason string
	}{
		{
			name:       "healthy",
			status:     models.DaemonStatus{Healthy: true},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name:       "watchdog low",
			status:     models.DaemonStatus{Healthy: false, Reason: models.ReasonWatchdogLow},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantReason: models.ReasonWatchdogLow,
		},
		{
			name:       "lookup in flight",
			status:     models.DaemonStatus{Healthy: false, Reason: models.ReasonLookupInFlight},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantReason: models.ReasonLookupInFlight,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mon := &mockMonitoring{status: tc.status}
			r := newTestRouter(&service.Service{Monitoring: mon, Checker: &mockChecker{}})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d (body %s)", w.Code, tc.wantCode, w.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if body["status"] != tc.wantStatus {
				t.Errorf("status = %q, want %q", body["status"], tc.wantStatus)
			}
			if body["reason"] != tc.wantReason {
				t.Errorf("reason = %q, want %q", body["reason"], tc.wantReason)
			}
		})
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	r := newTestRouter(&service.Service{Monitoring: &mockMonitoring{}, Checker: &mockChecker{}})

	for _, path := range []string{"/", "/healthz", "/api/v1/wallets"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
}

func TestStatusEndpoint(t *testing.T) {
	at := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	mon := &mockMonitoring{status: models.DaemonStatus{
		Healthy:           true,
		WatchdogRemaining: 290,
		Busy:              true,
		LastAddress:       "0xabc",
		LastCheckedAt:     at,
	}}
	r := newTestRouter(&service.Service{Monitoring: mon, Checker: &mockChecker{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", w.Code, w.Body.String())
	}
	var got models.DaemonStatus
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Healthy || got.WatchdogRemaining != 290 || !got.Busy || got.LastAddress != "0xabc" {
		t.Fatalf("unexpected status %+v", got)
	}
}
