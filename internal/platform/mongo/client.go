// Package mongo owns the process-wide MongoDB client. The driver pools
// connections internally; callers share one Client and close it on shutdown.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"potterdex/internal/platform/config"
)

// Client wraps the driver client together with the configured database name.
type Client struct {
	*mongo.Client
	database string
}

// New connects to MongoDB and verifies the connection with a primary ping.
func New(ctx context.Context, cfg config.Mongo) (*Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	opts := options.Client().ApplyURI(cfg.URI).SetAppName("potterdex")
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout).SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &Client{Client: client, database: cfg.Database}, nil
}

// Database returns the configured database handle.
func (c *Client) Database() *mongo.Database {
	return c.Client.Database(c.database)
}

// Health checks if the MongoDB primary is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx, readpref.Primary())
}

// Close disconnects the pooled client.
func (c *Client) Close(ctx context.Context) error {
	return c.Disconnect(ctx)
}
