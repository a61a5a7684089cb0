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

const requestsCollection = "admin_requests"

// RequestRepository is the Mongo-backed role-elevation ledger. The single
// pending request per username invariant rests on a partial unique index
// over (username, status=pending), so a duplicate submit loses the race at
// the database, not in application code.
type RequestRepository struct {
	coll *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{coll: db.Collection(requestsCollection)}
}

type mongoRequest struct {
	ID        string `bson:"_id"`
	Username  string `bson:"username"`
	Status    string `bson:"status"`
	CreatedAt int64  `bson:"created_at"`
	DecidedAt int64  `bson:"decided_at,omitempty"`
	DecidedBy string `bson:"decided_by,omitempty"`
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.AdminRequest) error {
	doc := mongoRequest{
		ID:        req.ID,
		Username:  req.Username,
		Status:    string(req.Status),
		CreatedAt: req.CreatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrRequestAlreadyPending
		}
		return fmt.Errorf("insert admin request: %w", err)
	}
	return nil
}

func (r *RequestRepository) HasPending(ctx context.Context, username string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"username": username,
		"status":   string(domain.RequestPending),
	})
	if err != nil {
		return false, fmt.Errorf("count pending requests: %w", err)
	}
	return n > 0, nil
}

func (r *RequestRepository) List(ctx context.Context) ([]domain.AdminRequest, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list admin requests: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoRequest
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode admin requests: %w", err)
	}

	requests := make([]domain.AdminRequest, len(docs))
	for i, d := range docs {
		requests[i] = d.toDomain()
	}
	return requests, nil
}

// Decide atomically flips the target user's pending request to next. The
// status precondition rides in the update filter: when no pending request
// matches, the request either does not exist or was already handled, and
// the two are distinguished with a follow-up lookup.
func (r *RequestRepository) Decide(ctx context.Context, username string, next domain.RequestStatus, decidedBy string) (*domain.AdminRequest, error) {
	if !domain.RequestPending.CanTransitionTo(next) {
		return nil, domain.ErrRequestNotPending
	}

	var doc mongoRequest
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"username": username, "status": string(domain.RequestPending)},
		bson.M{"$set": bson.M{
			"status":     string(next),
			"decided_at": time.Now().UTC().Unix(),
			"decided_by": decidedBy,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			n, cerr := r.coll.CountDocuments(ctx, bson.M{"username": username})
			if cerr == nil && n > 0 {
				return nil, domain.ErrRequestNotPending
			}
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("decide admin request: %w", err)
	}

	req := doc.toDomain()
	return &req, nil
}

// EnsureIndexes creates the partial unique index guarding the one-pending
// invariant plus a recency index for listing.
func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.RequestPending)}),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (d mongoRequest) toDomain() domain.AdminRequest {
	return domain.AdminRequest{
		ID:        d.ID,
		Username:  d.Username,
		Status:    domain.RequestStatus(d.Status),
		CreatedAt: unixToTime(d.CreatedAt),
		DecidedAt: unixToTime(d.DecidedAt),
		DecidedBy: d.DecidedBy,
	}
}
