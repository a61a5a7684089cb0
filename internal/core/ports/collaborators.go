package ports

import (
	"context"

	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/filter"
)

// Collector is the external tender-scanning collaborator, reached over HTTP.
// Collect performs one collection pass over the page range in the criteria
// and returns the records it found. The call honours ctx cancellation.
type Collector interface {
	Collect(ctx context.Context, criteria filter.Criteria) ([]domain.TenderRecord, error)
}

// Analyzer is the external AI-analysis collaborator. Analyze produces a
// fresh textual review of one tender record.
type Analyzer interface {
	Analyze(ctx context.Context, record domain.TenderRecord) (string, error)
}
