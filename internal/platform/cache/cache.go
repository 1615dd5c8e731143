// Package cache provides the Dragonfly/Redis client that backs learner
// session state when SPAN_CACHE_URL is set.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPoolSize = 10
	defaultTimeout  = 3 * time.Second
)

// Options configures the client. Zero values use defaults.
type Options struct {
	URL      string
	PoolSize int
	Timeout  time.Duration
}

// Cache wraps a Redis/Dragonfly client.
type Cache struct {
	Client *redis.Client
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// clientOptions merges o into the options parsed from its URL.
func clientOptions(o Options) (*redis.Options, error) {
	opts, err := ParseURL(o.URL)
	if err != nil {
		return nil, err
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	poolSize := o.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	opts.DialTimeout = timeout + 2*time.Second
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout
	opts.PoolSize = poolSize
	opts.ClientName = "span2030"
	return opts, nil
}

// New creates a client and verifies the connection.
func New(ctx context.Context, o Options) (*Cache, error) {
	opts, err := clientOptions(o)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	return &Cache{Client: client}, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
