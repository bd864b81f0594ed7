// Package queue decouples usage recording from usage persistence.
//
// Two backends implement the same interface:
//
//  1. Memory queue (channel-based): no persistence, no external
//     dependencies; good for standalone deployments and tests.
//  2. Redis queue (list-based): survives restarts and supports
//     multiple worker processes draining the same queue.
//
// Usage metering is best-effort by contract: items that cannot be
// persisted downstream are logged and dropped, so the queue carries no
// retry or dead-letter machinery.
package queue

import (
	"context"
	"time"
)

// Queue is the interface between the usage recorder (producer) and
// the usage queue worker (consumer).
type Queue interface {
	// Enqueue adds an item to the queue.
	Enqueue(ctx context.Context, item interface{}) error

	// DequeueWithTimeout retrieves up to maxItems items, waiting at
	// most timeout for the first one. Returns an empty slice on
	// timeout.
	DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]interface{}, error)

	// Length returns the current queue length.
	Length(ctx context.Context) (int, error)

	// Close shuts down the queue gracefully.
	Close() error
}

// Config holds queue configuration
type Config struct {
	// BatchSize is the maximum number of items to drain in one batch
	BatchSize int

	// BatchTimeout is how long the consumer waits before processing a
	// partial batch
	BatchTimeout time.Duration

	// UseRedis selects the Redis backend over the in-memory one
	UseRedis bool

	// RedisAddr is the Redis server address (if UseRedis is true)
	RedisAddr string

	// RedisPassword is the Redis password (if UseRedis is true)
	RedisPassword string

	// RedisDB is the Redis database number (if UseRedis is true)
	RedisDB int

	// QueueName is the name/key for the queue
	QueueName string
}

// DefaultConfig returns default queue configuration
func DefaultConfig(queueName string) *Config {
	return &Config{
		BatchSize:    100,
		BatchTimeout: 5 * time.Second,
		UseRedis:     false,
		QueueName:    queueName,
	}
}
