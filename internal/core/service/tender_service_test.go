package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/filter"
)

type stubTenderRepo struct {
	sessions []domain.ParseSession
}

func (r *stubTenderRepo) SaveSession(_ context.Context, session *domain.ParseSession) error {
	r.sessions = append(r.sessions, *session)
	return nil
}

func (r *stubTenderRepo) LatestSession(_ context.Context) (*domain.ParseSession, error) {
	if len(r.sessions) == 0 {
		return nil, domain.ErrNoStoredResults
	}
	out := r.sessions[len(r.sessions)-1]
	return &out, nil
}

type stubCollector struct {
	records  []domain.TenderRecord
	calls    int
	criteria filter.Criteria
}

func (c *stubCollector) Collect(_ context.Context, criteria filter.Criteria) ([]domain.TenderRecord, error) {
	c.calls++
	c.criteria = criteria
	out := make([]domain.TenderRecord, len(c.records))
	copy(out, c.records)
	return out, nil
}

func adminIdentity() *domain.Identity {
	return &domain.Identity{ID: "bob", Username: "bob", Role: domain.RoleAdmin}
}

func TestTenderService_TriggerScan_StoresSession(t *testing.T) {
	repo := &stubTenderRepo{}
	collector := &stubCollector{records: []domain.TenderRecord{
		{Title: "Road works", Price: "1 200 000,50"},
		{Title: "IT support", Price: "300 000,00"},
	}}
	svc := NewTenderService(repo, collector, zerolog.Nop())

	session, err := svc.TriggerScan(context.Background(), adminIdentity(), filter.Default())
	if err != nil {
		t.Fatalf("trigger scan failed: %v", err)
	}
	if session.CreatedBy != "bob" {
		t.Fatalf("session must record who triggered it, got %q", session.CreatedBy)
	}
	if len(session.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(session.Records))
	}
	for _, rec := range session.Records {
		if rec.ID == "" {
			t.Fatalf("records must be stamped with an ID")
		}
		if rec.ParsedBy != "bob" || rec.ParsedAt.IsZero() {
			t.Fatalf("records must carry parse provenance: %+v", rec)
		}
	}

	stored, err := repo.LatestSession(context.Background())
	if err != nil || stored.ID != session.ID {
		t.Fatalf("session was not stored: %v", err)
	}
}

func TestTenderService_TriggerScan_PermissionDenied(t *testing.T) {
	collector := &stubCollector{}
	svc := NewTenderService(&stubTenderRepo{}, collector, zerolog.Nop())

	caller := &domain.Identity{Username: "alice", Role: domain.RoleUser}
	if _, err := svc.TriggerScan(context.Background(), caller, filter.Default()); err != domain.ErrPermissionDenied {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if collector.calls != 0 {
		t.Fatalf("denied scan must not reach the collector")
	}
}

func TestTenderService_TriggerScan_NormalizesCriteria(t *testing.T) {
	collector := &stubCollector{}
	svc := NewTenderService(&stubTenderRepo{}, collector, zerolog.Nop())

	criteria := filter.Criteria{PageStart: 8, PageEnd: 3, PriceFrom: 500, PriceTo: 100}
	if _, err := svc.TriggerScan(context.Background(), adminIdentity(), criteria); err != nil {
		t.Fatalf("trigger scan failed: %v", err)
	}
	if collector.criteria.PageEnd != 8 {
		t.Fatalf("inverted page range must be repaired before collection, got end=%d", collector.criteria.PageEnd)
	}
	if collector.criteria.PriceTo != 500 {
		t.Fatalf("inverted price range must be repaired, got to=%f", collector.criteria.PriceTo)
	}
}

func TestTenderService_TriggerScan_RejectsFutureDate(t *testing.T) {
	collector := &stubCollector{}
	svc := NewTenderService(&stubTenderRepo{}, collector, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }

	criteria := filter.Default()
	criteria.PublishDateFrom = "2026-02-01"
	if _, err := svc.TriggerScan(context.Background(), adminIdentity(), criteria); err != filter.ErrDateInFuture {
		t.Fatalf("expected ErrDateInFuture, got %v", err)
	}
	if collector.calls != 0 {
		t.Fatalf("invalid criteria must not reach the collector")
	}
}

func TestTenderService_Fetch_NeverCollects(t *testing.T) {
	repo := &stubTenderRepo{sessions: []domain.ParseSession{{
		ID: "s1",
		Records: []domain.TenderRecord{
			{ID: "t1", Title: "B", UpdateDate: "01.03.2026"},
			{ID: "t2", Title: "A", UpdateDate: "05.03.2026"},
		},
	}}}
	collector := &stubCollector{}
	svc := NewTenderService(repo, collector, zerolog.Nop())

	caller := &domain.Identity{Username: "alice", Role: domain.RoleUser}
	records, err := svc.Fetch(context.Background(), caller, filter.Default())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if collector.calls != 0 {
		t.Fatalf("fetch must never trigger a collection pass")
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Default sort is update date descending.
	if records[0].ID != "t2" {
		t.Fatalf("expected newest update first, got %s", records[0].ID)
	}
}

func TestTenderService_Fetch_NoStoredResults(t *testing.T) {
	svc := NewTenderService(&stubTenderRepo{}, &stubCollector{}, zerolog.Nop())

	caller := &domain.Identity{Username: "alice", Role: domain.RoleUser}
	if _, err := svc.Fetch(context.Background(), caller, filter.Default()); err != domain.ErrNoStoredResults {
		t.Fatalf("expected ErrNoStoredResults, got %v", err)
	}
}

func TestTenderService_Fetch_DoesNotMutateStored(t *testing.T) {
	repo := &stubTenderRepo{sessions: []domain.ParseSession{{
		ID: "s1",
		Records: []domain.TenderRecord{
			{ID: "t1", Title: "B", Price: "100,00"},
			{ID: "t2", Title: "A", Price: "900,00"},
		},
	}}}
	svc := NewTenderService(repo, &stubCollector{}, zerolog.Nop())

	caller := &domain.Identity{Username: "alice", Role: domain.RoleUser}
	criteria := filter.Default()
	criteria.SortBy = domain.SortByPrice
	criteria.SortAscending = true
	if _, err := svc.Fetch(context.Background(), caller, criteria); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if repo.sessions[0].Records[0].ID != "t1" {
		t.Fatalf("fetch must sort a copy, not the stored session")
	}
}
