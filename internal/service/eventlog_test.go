package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"balance_checker/internal/models"
)

func TestEventLogService_List(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("rejects inverted range", func(t *testing.T) {
		t.Parallel()
		s := NewEventLogService(&eventsStub{})
		_, err := s.List(context.Background(), LogFilter{From: base.Add(time.Hour), To: base})
		if !errors.Is(err, errInvalidTimeRange) {
			t.Fatalf("want errInvalidTimeRange, got %v", err)
		}
	})

	t.Run("passes normalized filter through", func(t *testing.T) {
		t.Parallel()
		ev := &eventsStub{appended: []models.CheckEvent{{EventID: "e1", Type: models.EventChecked}}}
		s := NewEventLogService(ev)
		got, err := s.List(context.Background(), LogFilter{Type: " checked "})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 1 || got[0].EventID != "e1" {
			t.Fatalf("unexpected events: %+v", got)
		}
	})
}
