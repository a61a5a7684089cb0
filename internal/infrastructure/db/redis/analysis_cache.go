package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/breachscan/tender-system/internal/core/domain"
)

const analysisTTL = 24 * time.Hour

// AnalysisCache is the hot per-tender analysis cache.
// Key format: analysis:<tender_id>
type AnalysisCache struct {
	client *redis.Client
}

// NewAnalysisCache creates an AnalysisCache wrapping the given Redis client.
func NewAnalysisCache(client *redis.Client) *AnalysisCache {
	return &AnalysisCache{client: client}
}

type cachedAnalysis struct {
	Analysis   string    `json:"analysis"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

func (c *AnalysisCache) Get(ctx context.Context, tenderID string) (*domain.AnalysisResult, error) {
	raw, err := c.client.Get(ctx, c.key(tenderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTenderNotFound
		}
		return nil, fmt.Errorf("analysis cache get: %w", err)
	}

	var doc cachedAnalysis
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("analysis cache decode: %w", err)
	}

	return &domain.AnalysisResult{
		TenderID:   tenderID,
		Analysis:   doc.Analysis,
		AnalyzedAt: doc.AnalyzedAt,
	}, nil
}

func (c *AnalysisCache) Put(ctx context.Context, result *domain.AnalysisResult) error {
	raw, err := json.Marshal(cachedAnalysis{
		Analysis:   result.Analysis,
		AnalyzedAt: result.AnalyzedAt,
	})
	if err != nil {
		return fmt.Errorf("analysis cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(result.TenderID), raw, analysisTTL).Err()
}

func (c *AnalysisCache) key(tenderID string) string {
	return fmt.Sprintf("analysis:%s", tenderID)
}
