package health

import (
	"sync"
	"testing"

	"balance_checker/internal/models"
)

func TestReporter_Status(t *testing.T) {
	t.Parallel()

	type step struct {
		watchdogLow *bool
		busy        *bool
	}
	b := func(v bool) *bool { return &v }

	cases := []struct {
		name       string
		steps      []step
		wantOK     bool
		wantReason string
	}{
		{
			name:   "healthy by default",
			wantOK: true,
		},
		{
			name:       "busy reports lookup in progress",
			steps:      []step{{busy: b(true)}},
			wantOK:     false,
			wantReason: models.ReasonLookupInFlight,
		},
		{
			name:   "clearing busy restores healthy",
			steps:  []step{{busy: b(true)}, {busy: b(false)}},
			wantOK: true,
		},
		{
			name:       "watchdog low wins over busy",
			steps:      []step{{busy: b(true)}, {watchdogLow: b(true)}},
			wantOK:     false,
			wantReason: models.ReasonWatchdogLow,
		},
		{
			name:       "clearing busy keeps watchdog-dictated state",
			steps:      []step{{watchdogLow: b(true)}, {busy: b(true)}, {busy: b(false)}},
			wantOK:     false,
			wantReason: models.ReasonWatchdogLow,
		},
		{
			name:   "watchdog recovery restores healthy",
			steps:  []step{{watchdogLow: b(true)}, {watchdogLow: b(false)}},
			wantOK: true,
		},
		{
			name:       "setting the same flag twice is idempotent",
			steps:      []step{{watchdogLow: b(true)}, {watchdogLow: b(true)}},
			wantOK:     false,
			wantReason: models.ReasonWatchdogLow,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := NewReporter()
			for _, s := range tc.steps {
				if s.watchdogLow != nil {
					r.SetWatchdogLow(*s.watchdogLow)
				}
				if s.busy != nil {
					r.SetBusy(*s.busy)
				}
			}
			got := r.Status()
			if got.Healthy != tc.wantOK {
				t.Fatalf("Healthy: want %v, got %v", tc.wantOK, got.Healthy)
			}
			if got.Reason != tc.wantReason {
				t.Fatalf("Reason: want %q, got %q", tc.wantReason, got.Reason)
			}
		})
	}
}

// Concurrent writers and readers must not race; run with -race.
func TestReporter_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := NewReporter()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				switch i % 3 {
				case 0:
					r.SetBusy(j%2 == 0)
				case 1:
					r.SetWatchdogLow(j%2 == 0)
				default:
					_ = r.Status()
				}
			}
		}(i)
	}
	wg.Wait()

	r.SetBusy(false)
	r.SetWatchdogLow(false)
	if st := r.Status(); !st.Healthy {
		t.Fatalf("expected healthy after clearing flags, got %+v", st)
	}
}
