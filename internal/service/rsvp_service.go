package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/diagnosis/wedding-rsvp/internal/domain"
	"github.com/diagnosis/wedding-rsvp/internal/repository"
	"github.com/diagnosis/wedding-rsvp/pkg/logger"
	"github.com/google/uuid"
)

var csvHeader = []string{"ID", "Timestamp", "Primary Guest", "Events Selected", "Guest Status", "Plus One Name"}

type RSVPService interface {
	Submit(ctx context.Context, req *domain.CreateRSVPRequest) (*domain.RSVP, error)
	ListAll(ctx context.Context) ([]domain.RSVP, error)
	ComputeStats(ctx context.Context) (*domain.Stats, error)
	ExportCSV(ctx context.Context) ([]byte, error)
}

type rsvpService struct {
	repo  repository.RSVPRepository
	newID func() string
	now   func() time.Time
}

func NewRSVPService(repo repository.RSVPRepository) RSVPService {
	return &rsvpService{
		repo:  repo,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

func (s *rsvpService) Submit(ctx context.Context, req *domain.CreateRSVPRequest) (*domain.RSVP, error) {
	rsvp := domain.NewRSVP(s.newID(), s.now(), req)

	if err := s.repo.Insert(ctx, &rsvp); err != nil {
		logger.ErrorContext(ctx, "Failed to store rsvp", "error", err)
		return nil, fmt.Errorf("failed to create rsvp: %w", err)
	}

	logger.InfoContext(ctx, "RSVP stored",
		"rsvp_id", rsvp.ID,
		"guest_status", rsvp.GuestStatus,
		"events", len(rsvp.AttendingEvents),
	)
	return &rsvp, nil
}

func (s *rsvpService) ListAll(ctx context.Context) ([]domain.RSVP, error) {
	rsvps, err := s.repo.ListRecent(ctx, domain.MaxRecords)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list rsvps", "error", err)
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	return rsvps, nil
}

func (s *rsvpService) ComputeStats(ctx context.Context) (*domain.Stats, error) {
	rsvps, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stats := BuildStats(rsvps)
	return &stats, nil
}

func (s *rsvpService) ExportCSV(ctx context.Context) ([]byte, error) {
	rsvps, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rsvps); err != nil {
		return nil, fmt.Errorf("failed to render csv: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildStats scans a snapshot once. total_guests adds one per plus_one record
// with a non-empty companion name and nothing for unnamed plus-ones.
func BuildStats(rsvps []domain.RSVP) domain.Stats {
	stats := domain.Stats{TotalRSVPs: len(rsvps)}
	for i := range rsvps {
		r := &rsvps[i]
		if r.BringsNamedPlusOne() {
			stats.TotalGuests++
		}
		if r.Attends(domain.EventReception) {
			stats.ReceptionCount++
		}
		if r.Attends(domain.EventMuhurtham) {
			stats.MuhurthamCount++
		}
	}
	stats.TotalGuests += stats.TotalRSVPs
	return stats
}

// WriteCSV renders the header row followed by one row per record, in the given order.
func WriteCSV(w io.Writer, rsvps []domain.RSVP) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for i := range rsvps {
		r := &rsvps[i]
		row := []string{
			r.ID,
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.FullName,
			strings.Join(r.AttendingEvents, ", "),
			r.GuestStatus,
			r.PlusOneNameOrEmpty(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
