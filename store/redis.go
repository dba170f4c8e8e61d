package store

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key the template is stored under.
const DefaultRedisKey = "compose:template"

// RedisBackend stores the template under a single Redis key.
type RedisBackend struct {
	client *backend.Client
	key    string
}

// RedisOption configures a RedisBackend.
type RedisOption func(*RedisBackend)

// WithKey sets the key the template is stored under.
func WithKey(key string) RedisOption {
	return func(r *RedisBackend) {
		if key != "" {
			r.key = key
		}
	}
}

// NewRedisBackend connects to the Redis server at address.
func NewRedisBackend(address, password string, db int, opts ...RedisOption) *RedisBackend {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisBackendFromClient(rdb, opts...)
}

// NewRedisBackendFromClient creates a backend from an existing client.
func NewRedisBackendFromClient(client *backend.Client, opts ...RedisOption) *RedisBackend {
	r := &RedisBackend{client: client, key: DefaultRedisKey}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load implements Backend.
func (r *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return data, nil
}

// Save implements Backend.
func (r *RedisBackend) Save(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
