package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Conn owns the single driver client behind the system's document stores:
// user accounts, the admin-request ledger, parse sessions and durable
// analysis records. The repositories all share the database it selects.
type Conn struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens the client for the given URI, proves it live with a ping
// and selects the system database. The supplied timeout bounds the whole
// handshake; zero falls back to a conservative default.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Conn, error) {
	if timeout <= 0 {
		timeout = connectTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Conn{client: client, db: client.Database(database)}, nil
}

// Database exposes the selected database for repository construction.
func (c *Conn) Database() *mongo.Database {
	return c.db
}

// EnsureIndexes builds every index the repositories rely on. Idempotent,
// so it runs on every startup.
func (c *Conn) EnsureIndexes(ctx context.Context) error {
	if err := NewUserRepository(c.db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := NewRequestRepository(c.db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("request indexes: %w", err)
	}
	if err := NewTenderRepository(c.db).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("session indexes: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (c *Conn) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
