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

const sessionsCollection = "parse_sessions"

// TenderRepository stores parse sessions as whole documents: one scan, one
// immutable result set. Records never mutate after the session is written.
type TenderRepository struct {
	coll *mongo.Collection
}

func NewTenderRepository(db *mongo.Database) *TenderRepository {
	return &TenderRepository{coll: db.Collection(sessionsCollection)}
}

type mongoSession struct {
	ID        string        `bson:"_id"`
	Records   []mongoRecord `bson:"records"`
	CreatedBy string        `bson:"created_by"`
	CreatedAt int64         `bson:"created_at"`
}

type mongoRecord struct {
	ID              string `bson:"id"`
	Title           string `bson:"title"`
	Link            string `bson:"link"`
	Customer        string `bson:"customer"`
	Price           string `bson:"price"`
	ContractNumber  string `bson:"contract_number"`
	PurchaseObjects string `bson:"purchase_objects"`
	ContractDate    string `bson:"contract_date"`
	ExecutionDate   string `bson:"execution_date"`
	PublishDate     string `bson:"publish_date"`
	UpdateDate      string `bson:"update_date"`
	ParsedAt        int64  `bson:"parsed_at"`
	ParsedBy        string `bson:"parsed_by"`
}

func (r *TenderRepository) SaveSession(ctx context.Context, session *domain.ParseSession) error {
	doc := mongoSession{
		ID:        session.ID,
		Records:   make([]mongoRecord, len(session.Records)),
		CreatedBy: session.CreatedBy,
		CreatedAt: session.CreatedAt.Unix(),
	}
	for i, rec := range session.Records {
		doc.Records[i] = mongoRecord{
			ID:              rec.ID,
			Title:           rec.Title,
			Link:            rec.Link,
			Customer:        rec.Customer,
			Price:           rec.Price,
			ContractNumber:  rec.ContractNumber,
			PurchaseObjects: rec.PurchaseObjects,
			ContractDate:    rec.ContractDate,
			ExecutionDate:   rec.ExecutionDate,
			PublishDate:     rec.PublishDate,
			UpdateDate:      rec.UpdateDate,
			ParsedAt:        rec.ParsedAt.Unix(),
			ParsedBy:        rec.ParsedBy,
		}
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert parse session: %w", err)
	}
	return nil
}

func (r *TenderRepository) LatestSession(ctx context.Context) (*domain.ParseSession, error) {
	var doc mongoSession
	err := r.coll.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoStoredResults
		}
		return nil, fmt.Errorf("find latest session: %w", err)
	}

	session := &domain.ParseSession{
		ID:        doc.ID,
		Records:   make([]domain.TenderRecord, len(doc.Records)),
		CreatedBy: doc.CreatedBy,
		CreatedAt: unixToTime(doc.CreatedAt),
	}
	for i, rec := range doc.Records {
		session.Records[i] = domain.TenderRecord{
			ID:              rec.ID,
			Title:           rec.Title,
			Link:            rec.Link,
			Customer:        rec.Customer,
			Price:           rec.Price,
			ContractNumber:  rec.ContractNumber,
			PurchaseObjects: rec.PurchaseObjects,
			ContractDate:    rec.ContractDate,
			ExecutionDate:   rec.ExecutionDate,
			PublishDate:     rec.PublishDate,
			UpdateDate:      rec.UpdateDate,
			ParsedAt:        unixToTime(rec.ParsedAt),
			ParsedBy:        rec.ParsedBy,
		}
	}
	return session, nil
}

// EnsureIndexes creates the recency index used by LatestSession.
func (r *TenderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}
