package repository

import (
	"context"

	"github.com/diagnosis/wedding-rsvp/internal/domain"
)

// RSVPRepository is the record store. Implementations must return records
// newest first and never more than limit.
type RSVPRepository interface {
	Insert(ctx context.Context, rsvp *domain.RSVP) error
	ListRecent(ctx context.Context, limit int) ([]domain.RSVP, error)
	Ping(ctx context.Context) error
}
