package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"balance_checker/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMockRepo(t *testing.T) (*EventSQLite, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewEventSQLite(db), mock
}

func TestAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	// Generated id and timestamp are unknown; match Exec shape and the
	// normalized type.
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO check_events (id, occurred_at, type, message, meta)
		VALUES (?, ?, ?, ?, ?)
	`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(),
			models.EventChecked, "checked 0xabc",
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(testCtx(t), models.CheckEvent{
		// EventID empty -> repo generates
		// OccurredAt zero -> repo sets UTC now
		Type:        "  checked ",
		Description: "checked 0xabc",
		Metadata:    map[string]any{"address": "0xabc", "value": "1.5"},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO check_events").
		WillReturnError(errors.New("down"))

	err := repo.Append(testCtx(t), models.CheckEvent{
		Type:        "check_failed",
		Description: "x",
	})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_NoFilters_And_MetadataParsing(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"address": "0xabc"})

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("e1", now, models.EventChecked, "checked 0xabc", string(js)).
		AddRow("e2", now.Add(time.Minute), models.EventCheckFailed, "Error: timeout", nil).
		AddRow("e3", now.Add(2*time.Minute), models.EventWatchdogExpired, "watchdog expired", "{broken")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, occurred_at, type, message, meta FROM check_events ORDER BY occurred_at ASC`)).
		WillReturnRows(rows)

	events, err := repo.List(testCtx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("want 3 events, got %d", len(events))
	}
	meta, ok := events[0].Metadata.(map[string]any)
	if !ok || meta["address"] != "0xabc" {
		t.Errorf("metadata not parsed: %+v", events[0].Metadata)
	}
	if events[1].Metadata != nil {
		t.Errorf("nil meta must stay nil, got %v", events[1].Metadata)
	}
	if raw, ok := events[2].Metadata.(string); !ok || raw != "{broken" {
		t.Errorf("malformed meta must be kept raw, got %v", events[2].Metadata)
	}
}

func TestList_WithFilters(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("e1", from.Add(time.Hour), models.EventCheckFailed, "Error: boom", nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, occurred_at, type, message, meta FROM check_events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`)).
		WithArgs(from, to, models.EventCheckFailed).
		WillReturnRows(rows)

	events, err := repo.List(testCtx(t), from, to, " check_failed ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 1 || events[0].Type != models.EventCheckFailed {
		t.Fatalf("unexpected events: %+v", events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_QueryError(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT id, occurred_at").WillReturnError(errors.New("disk io"))

	if _, err := repo.List(testCtx(t), time.Time{}, time.Time{}, ""); err == nil {
		t.Fatal("expected query error")
	}
}

var _ EventRepo = (*EventSQLite)(nil)
