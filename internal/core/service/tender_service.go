package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/filter"
	"github.com/breachscan/tender-system/internal/core/ports"
)

// TenderService triggers collection passes against the external collector
// and serves stored result sets sorted per the request criteria.
type TenderService struct {
	repo      ports.TenderRepository
	collector ports.Collector
	logger    zerolog.Logger
	now       func() time.Time
}

func NewTenderService(repo ports.TenderRepository, collector ports.Collector, logger zerolog.Logger) *TenderService {
	return &TenderService{repo: repo, collector: collector, logger: logger, now: time.Now}
}

// TriggerScan runs one collection pass and stores it as a new parse session.
// Gated on the scanning capability; the criteria are re-normalized here so a
// client that skipped repair cannot push an inverted range to the collector.
func (s *TenderService) TriggerScan(ctx context.Context, caller *domain.Identity, criteria filter.Criteria) (*domain.ParseSession, error) {
	if err := domain.Require(caller, domain.CapManageScanning); err != nil {
		return nil, err
	}

	criteria, err := filter.Normalize(criteria, s.now())
	if err != nil {
		return nil, err
	}

	records, err := s.collector.Collect(ctx, criteria)
	if err != nil {
		s.logger.Error().Err(err).Str("criteria", criteria.String()).Msg("collection pass failed")
		return nil, err
	}

	now := s.now().UTC()
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		records[i].ParsedAt = now
		records[i].ParsedBy = caller.Username
	}

	session := &domain.ParseSession{
		ID:        uuid.NewString(),
		Records:   records,
		CreatedBy: caller.Username,
		CreatedAt: now,
	}

	if err := s.repo.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Int("records", len(records)).
		Str("triggered_by", caller.Username).
		Msg("collection pass stored")
	return session, nil
}

// Fetch serves the most recent stored result set, sorted per the criteria.
// It never reaches the collector: latest=true is the caller saying "stored
// data only", and a plain fetch simply reads what the last scan stored.
func (s *TenderService) Fetch(ctx context.Context, caller *domain.Identity, criteria filter.Criteria) ([]domain.TenderRecord, error) {
	if err := domain.Require(caller, domain.CapViewTable); err != nil {
		return nil, err
	}

	criteria, err := filter.Normalize(criteria, s.now())
	if err != nil {
		return nil, err
	}

	session, err := s.repo.LatestSession(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]domain.TenderRecord, len(session.Records))
	copy(records, session.Records)
	domain.SortRecords(records, criteria.SortBy, criteria.SortAscending, criteria.SearchString)
	return records, nil
}
