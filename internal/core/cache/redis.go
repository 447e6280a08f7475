package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis delegates TTL enforcement to a Redis server. Entries are stored with
// SET ... EX, so expiry never needs a janitor.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ Cache = (*Redis)(nil)

// RedisOptions configures the Redis cache backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Redis{client: client, ttl: ttl, prefix: "userlens:lookup:"}, nil
}

// Get returns the cached payload or nil on a miss. The entry expiry is
// reconstructed from the key's remaining TTL.
func (r *Redis) Get(ctx context.Context, key string) (*Entry, error) {
	full := r.prefix + key

	payload, err := r.client.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry := &Entry{Payload: json.RawMessage(payload)}
	if remaining, err := r.client.TTL(ctx, full).Result(); err == nil && remaining > 0 {
		entry.ExpiresAt = time.Now().UTC().Add(remaining)
	}
	return entry, nil
}

// Set stores the payload with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, payload json.RawMessage) error {
	return r.client.Set(ctx, r.prefix+key, []byte(payload), r.ttl).Err()
}

// Close releases the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
