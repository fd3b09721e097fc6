package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/diagnosis/wedding-rsvp/internal/domain"
)

// ---------- Mocks ----------

type mockRSVPRepo struct {
	records   []domain.RSVP
	insertErr error
	listErr   error
	lastLimit int
}

func (m *mockRSVPRepo) Insert(_ context.Context, rsvp *domain.RSVP) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, *rsvp)
	return nil
}

func (m *mockRSVPRepo) ListRecent(_ context.Context, limit int) ([]domain.RSVP, error) {
	m.lastLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.RSVP, len(m.records))
	copy(out, m.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRSVPRepo) Ping(context.Context) error { return nil }

// ---------- Setup ----------

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestRSVPService(repo *mockRSVPRepo) *rsvpService {
	seq := 0
	return &rsvpService{
		repo: repo,
		newID: func() string {
			seq++
			return fmt.Sprintf("rsvp-%d", seq)
		},
		now: func() time.Time {
			return baseTime.Add(time.Duration(seq) * time.Minute)
		},
	}
}

func strPtr(s string) *string { return &s }

func submitReq(name, status string, plusOne *string, events ...string) *domain.CreateRSVPRequest {
	list := make([]*string, len(events))
	for i := range events {
		list[i] = &events[i]
	}
	return &domain.CreateRSVPRequest{
		FullName:        strPtr(name),
		AttendingEvents: list,
		GuestStatus:     strPtr(status),
		PlusOneName:     plusOne,
	}
}

// ---------- Tests ----------

func TestSubmit_SoloClearsPlusOneName(t *testing.T) {
	repo := &mockRSVPRepo{}
	svc := newTestRSVPService(repo)

	got, err := svc.Submit(context.Background(), submitReq("Asha", domain.GuestSolo, strPtr("Ravi"), domain.EventReception))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got.PlusOneName != nil {
		t.Fatalf("returned record kept plus-one name %q", *got.PlusOneName)
	}
	if repo.records[0].PlusOneName != nil {
		t.Fatalf("stored record kept plus-one name %q", *repo.records[0].PlusOneName)
	}
	if got.ID != "rsvp-1" || got.ID != repo.records[0].ID {
		t.Fatalf("unexpected id %q", got.ID)
	}
	if got.Timestamp.IsZero() || got.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp not set in UTC: %s", got.Timestamp)
	}
}

func TestSubmit_PlusOnePreservesName(t *testing.T) {
	repo := &mockRSVPRepo{}
	svc := newTestRSVPService(repo)

	got, err := svc.Submit(context.Background(), submitReq("Asha", domain.GuestPlusOne, strPtr("  Ravi Kumar "), domain.EventMuhurtham))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.PlusOneName == nil || *got.PlusOneName != "  Ravi Kumar " {
		t.Fatalf("plus-one name not preserved exactly: %v", got.PlusOneName)
	}
}

func TestSubmit_DuplicatesAreDistinctRecords(t *testing.T) {
	repo := &mockRSVPRepo{}
	svc := newTestRSVPService(repo)

	for i := 0; i < 2; i++ {
		if _, err := svc.Submit(context.Background(), submitReq("Asha", domain.GuestSolo, nil)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if len(repo.records) != 2 || repo.records[0].ID == repo.records[1].ID {
		t.Fatalf("expected two distinct records, got %+v", repo.records)
	}
}

func TestSubmit_StoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := newTestRSVPService(&mockRSVPRepo{insertErr: storeErr})

	if _, err := svc.Submit(context.Background(), submitReq("Asha", domain.GuestSolo, nil)); !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestComputeStats_CountsNamedPlusOnesOnly(t *testing.T) {
	repo := &mockRSVPRepo{}
	svc := newTestRSVPService(repo)
	ctx := context.Background()

	reqs := []*domain.CreateRSVPRequest{
		submitReq("A", domain.GuestSolo, nil, domain.EventReception),
		submitReq("B", domain.GuestSolo, strPtr("ignored"), domain.EventMuhurtham),
		submitReq("C", domain.GuestSolo, nil, domain.EventReception, domain.EventMuhurtham),
		submitReq("D", domain.GuestPlusOne, strPtr("Dee"), domain.EventReception),
		submitReq("E", domain.GuestPlusOne, nil),
	}
	for _, r := range reqs {
		if _, err := svc.Submit(ctx, r); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	stats, err := svc.ComputeStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	want := domain.Stats{TotalRSVPs: 5, TotalGuests: 6, ReceptionCount: 3, MuhurthamCount: 2}
	if *stats != want {
		t.Fatalf("expected %+v, got %+v", want, *stats)
	}
	if repo.lastLimit != domain.MaxRecords {
		t.Fatalf("expected stats to read with cap %d, got %d", domain.MaxRecords, repo.lastLimit)
	}
}

func TestBuildStats(t *testing.T) {
	tests := []struct {
		name  string
		rsvps []domain.RSVP
		want  domain.Stats
	}{
		{"empty", nil, domain.Stats{}},
		{
			"plus one with empty name",
			[]domain.RSVP{{GuestStatus: domain.GuestPlusOne, PlusOneName: strPtr("")}},
			domain.Stats{TotalRSVPs: 1, TotalGuests: 1},
		},
		{
			"unknown status with name",
			[]domain.RSVP{{GuestStatus: "family", PlusOneName: strPtr("X")}},
			domain.Stats{TotalRSVPs: 1, TotalGuests: 1},
		},
		{
			"unknown event tags are ignored",
			[]domain.RSVP{{AttendingEvents: []string{"sangeet", "Reception"}}},
			domain.Stats{TotalRSVPs: 1, TotalGuests: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildStats(tt.rsvps); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestListAll_NewestFirstAndCapped(t *testing.T) {
	repo := &mockRSVPRepo{}
	for i := 0; i < domain.MaxRecords+5; i++ {
		repo.records = append(repo.records, domain.RSVP{
			ID:        fmt.Sprintf("r-%d", i),
			Timestamp: baseTime.Add(time.Duration(i) * time.Second),
		})
	}
	svc := newTestRSVPService(repo)

	list, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != domain.MaxRecords {
		t.Fatalf("expected %d records, got %d", domain.MaxRecords, len(list))
	}
	if list[0].ID != fmt.Sprintf("r-%d", domain.MaxRecords+4) {
		t.Fatalf("expected newest first, got %s", list[0].ID)
	}
	if list[len(list)-1].ID != "r-5" {
		t.Fatalf("expected oldest five omitted, last is %s", list[len(list)-1].ID)
	}

	stats, err := svc.ComputeStats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalRSVPs != domain.MaxRecords {
		t.Fatalf("stats should see the capped snapshot, got %d", stats.TotalRSVPs)
	}
}

func TestExportCSV_RowsMatchList(t *testing.T) {
	repo := &mockRSVPRepo{}
	svc := newTestRSVPService(repo)
	ctx := context.Background()

	svc.Submit(ctx, submitReq("Asha, Jr.", domain.GuestSolo, strPtr("dropped"), domain.EventReception, domain.EventMuhurtham))
	svc.Submit(ctx, submitReq("Bala", domain.GuestPlusOne, strPtr("Chitra"), domain.EventMuhurtham))
	svc.Submit(ctx, submitReq("Dev", domain.GuestPlusOne, nil))

	out, err := svc.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.Contains(out, []byte("\r\n")) {
		t.Fatal("expected CRLF line endings")
	}

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	list, _ := svc.ListAll(ctx)
	if len(rows)-1 != len(list) {
		t.Fatalf("expected %d data rows, got %d", len(list), len(rows)-1)
	}
	if strings.Join(rows[0], "|") != strings.Join(csvHeader, "|") {
		t.Fatalf("unexpected header %v", rows[0])
	}

	for i, rec := range list {
		row := rows[i+1]
		if len(row) != 6 {
			t.Fatalf("row %d has %d columns", i, len(row))
		}
		if row[0] != rec.ID || row[2] != rec.FullName || row[4] != rec.GuestStatus {
			t.Fatalf("row %d mismatch: %v vs %+v", i, row, rec)
		}
		if row[3] != strings.Join(rec.AttendingEvents, ", ") {
			t.Fatalf("row %d events %q", i, row[3])
		}
		if row[1] != rec.Timestamp.Format(time.RFC3339Nano) {
			t.Fatalf("row %d timestamp %q", i, row[1])
		}
		if row[5] == "None" || row[5] == "null" {
			t.Fatalf("row %d rendered absent plus-one as %q", i, row[5])
		}
	}

	// newest first: Dev, Bala, Asha
	if rows[1][2] != "Dev" || rows[1][5] != "" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][5] != "Chitra" {
		t.Fatalf("expected plus-one name in second row, got %v", rows[2])
	}
	if rows[3][3] != "reception, muhurtham" || rows[3][5] != "" {
		t.Fatalf("unexpected third row %v", rows[3])
	}
}

func TestExportCSV_EmptyHasHeaderOnly(t *testing.T) {
	svc := newTestRSVPService(&mockRSVPRepo{})

	out, err := svc.ExportCSV(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(out) != strings.Join(csvHeader, ",")+"\r\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestExportCSV_StoreFailure(t *testing.T) {
	storeErr := errors.New("timeout")
	svc := newTestRSVPService(&mockRSVPRepo{listErr: storeErr})

	if _, err := svc.ExportCSV(context.Background()); !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
