package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/breachscan/tender-system/internal/core/domain"
)

const analysesCollection = "tender_analyses"

// AnalysisRepository is the durable analysis record: one document per
// tender, upserted on each fresh computation. It backs the Redis cache so a
// cache flush never forces a recomputation.
type AnalysisRepository struct {
	coll *mongo.Collection
}

func NewAnalysisRepository(db *mongo.Database) *AnalysisRepository {
	return &AnalysisRepository{coll: db.Collection(analysesCollection)}
}

type mongoAnalysis struct {
	TenderID   string `bson:"_id"`
	Analysis   string `bson:"analysis"`
	AnalyzedAt int64  `bson:"analyzed_at"`
}

func (r *AnalysisRepository) Get(ctx context.Context, tenderID string) (*domain.AnalysisResult, error) {
	var doc mongoAnalysis
	if err := r.coll.FindOne(ctx, bson.M{"_id": tenderID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTenderNotFound
		}
		return nil, fmt.Errorf("find analysis: %w", err)
	}

	return &domain.AnalysisResult{
		TenderID:   doc.TenderID,
		Analysis:   doc.Analysis,
		AnalyzedAt: unixToTime(doc.AnalyzedAt),
	}, nil
}

func (r *AnalysisRepository) Put(ctx context.Context, result *domain.AnalysisResult) error {
	analyzedAt := result.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}
	doc := mongoAnalysis{
		TenderID:   result.TenderID,
		Analysis:   result.Analysis,
		AnalyzedAt: analyzedAt.Unix(),
	}

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": result.TenderID}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}
