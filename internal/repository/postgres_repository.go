package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/wedding-rsvp/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var rsvpSchema = []string{
	`CREATE TABLE IF NOT EXISTS rsvps (
		id               TEXT PRIMARY KEY,
		full_name        TEXT NOT NULL,
		attending_events TEXT[] NOT NULL DEFAULT '{}',
		guest_status     TEXT NOT NULL,
		plus_one_name    TEXT,
		created_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rsvps_created_at ON rsvps (created_at DESC)`,
}

const rsvpCols = `id, full_name, attending_events, guest_status, plus_one_name, created_at`

const listRecentQuery = `SELECT ` + rsvpCols + ` FROM rsvps ORDER BY created_at DESC LIMIT $1`

type postgresRSVPRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRSVPRepository(pool *pgxpool.Pool, timeout time.Duration) RSVPRepository {
	return &postgresRSVPRepository{pool: pool, timeout: timeout}
}

// EnsurePostgresSchema creates the rsvps table when missing.
func EnsurePostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range rsvpSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create rsvps schema: %w", err)
		}
	}
	return nil
}

func (r *postgresRSVPRepository) Insert(ctx context.Context, rsvp *domain.RSVP) error {
	const q = `INSERT INTO rsvps (` + rsvpCols + `) VALUES ($1,$2,$3,$4,$5,$6)`
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.pool.Exec(ctx, q,
		rsvp.ID, rsvp.FullName, rsvp.AttendingEvents,
		rsvp.GuestStatus, rsvp.PlusOneName, rsvp.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert rsvp: %w", err)
	}
	return nil
}

func (r *postgresRSVPRepository) ListRecent(ctx context.Context, limit int) ([]domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, listRecentQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query rsvps: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RSVP, error) {
		var rec domain.RSVP
		err := row.Scan(
			&rec.ID, &rec.FullName, &rec.AttendingEvents,
			&rec.GuestStatus, &rec.PlusOneName, &rec.Timestamp,
		)
		rec.Timestamp = rec.Timestamp.UTC()
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan rsvps: %w", err)
	}
	return out, nil
}

func (r *postgresRSVPRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.pool.Ping(ctx)
}
