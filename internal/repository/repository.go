package repository

import (
	"context"
	"database/sql"
	"time"

	"balance_checker/internal/models"
)

// EventRepo is the append-only journal of reconciliation outcomes.
type EventRepo interface {
	Append(ctx context.Context, e models.CheckEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.CheckEvent, error)
}

type Repository struct {
	Events EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Events: NewEventSQLite(db),
	}
}
