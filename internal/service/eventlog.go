package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"balance_checker/internal/models"
	"balance_checker/internal/repository"
)

// LogFilter supports journal filtering by time range and event type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "CHECKED", "CHECK_FAILED", "RESOLUTION_ERROR", "WATCHDOG_EXPIRED"
}

type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	eventType := strings.TrimSpace(strings.ToUpper(f.Type))
	return from, to, eventType, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.CheckEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.events.List(ctx, from, to, typ)
}
