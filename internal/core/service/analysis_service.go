package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/ports"
)

// AnalysisService serves per-tender AI analysis. Results are looked up in a
// hot cache first, then the durable store, and only then computed by the
// analyzer. Concurrent requests for the same tender share one in-flight
// computation instead of issuing duplicates.
type AnalysisService struct {
	tenders  ports.TenderRepository
	cache    ports.AnalysisStore
	store    ports.AnalysisStore
	analyzer ports.Analyzer
	logger   zerolog.Logger
	inflight singleflight.Group
}

func NewAnalysisService(tenders ports.TenderRepository, cache, store ports.AnalysisStore, analyzer ports.Analyzer, logger zerolog.Logger) *AnalysisService {
	return &AnalysisService{tenders: tenders, cache: cache, store: store, analyzer: analyzer, logger: logger}
}

// Analyze returns the analysis for one tender. Cached is true whenever the
// text was not computed during this call, including results replayed from a
// computation another caller started.
func (s *AnalysisService) Analyze(ctx context.Context, caller *domain.Identity, tenderID string) (*domain.AnalysisResult, error) {
	if err := domain.Require(caller, domain.CapDoAnalysis); err != nil {
		return nil, err
	}

	if res, err := s.cache.Get(ctx, tenderID); err == nil {
		res.Cached = true
		return res, nil
	} else if err != domain.ErrTenderNotFound {
		// Cache trouble is not fatal; fall through to the durable path.
		s.logger.Warn().Err(err).Str("tender_id", tenderID).Msg("analysis cache read failed")
	}

	if res, err := s.store.Get(ctx, tenderID); err == nil {
		res.Cached = true
		s.backfillCache(ctx, res)
		return res, nil
	} else if err != domain.ErrTenderNotFound {
		return nil, err
	}

	fresh := false
	v, err, _ := s.inflight.Do(tenderID, func() (interface{}, error) {
		record, err := s.findRecord(ctx, tenderID)
		if err != nil {
			return nil, err
		}

		text, err := s.analyzer.Analyze(ctx, *record)
		if err != nil {
			return nil, err
		}

		fresh = true
		res := &domain.AnalysisResult{
			TenderID:   tenderID,
			Analysis:   text,
			AnalyzedAt: time.Now().UTC(),
		}
		if err := s.store.Put(ctx, res); err != nil {
			s.logger.Error().Err(err).Str("tender_id", tenderID).Msg("analysis store write failed")
		}
		s.backfillCache(ctx, res)
		return res, nil
	})
	if err != nil {
		return nil, err
	}

	res := *(v.(*domain.AnalysisResult))
	// fresh is only set when this caller's closure ran; callers that
	// piggybacked on another request's computation got a replayed result.
	res.Cached = !fresh
	return &res, nil
}

func (s *AnalysisService) findRecord(ctx context.Context, tenderID string) (*domain.TenderRecord, error) {
	session, err := s.tenders.LatestSession(ctx)
	if err != nil {
		return nil, err
	}
	for i := range session.Records {
		if session.Records[i].ID == tenderID {
			return &session.Records[i], nil
		}
	}
	return nil, domain.ErrTenderNotFound
}

func (s *AnalysisService) backfillCache(ctx context.Context, res *domain.AnalysisResult) {
	if err := s.cache.Put(ctx, res); err != nil {
		s.logger.Warn().Err(err).Str("tender_id", res.TenderID).Msg("analysis cache write failed")
	}
}
