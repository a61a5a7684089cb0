package ports

import (
	"context"

	"github.com/breachscan/tender-system/internal/core/domain"
)

// TenderRepository stores collection passes and serves the most recent one.
type TenderRepository interface {
	SaveSession(ctx context.Context, session *domain.ParseSession) error
	LatestSession(ctx context.Context) (*domain.ParseSession, error)
}

// AnalysisStore is a keyed store for per-tender analysis results. Get
// returns domain.ErrTenderNotFound when no result is stored.
type AnalysisStore interface {
	Get(ctx context.Context, tenderID string) (*domain.AnalysisResult, error)
	Put(ctx context.Context, result *domain.AnalysisResult) error
}
