package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "mcp:sessions:"

// RedisConfig configures a Redis store.
type RedisConfig struct {
	// Addr like "localhost:6379".
	Addr string
	// KeyPrefix for all keys. Defaults to "mcp:sessions:".
	KeyPrefix string
	// TTL of an idle session. Defaults to DefaultTTL.
	TTL time.Duration
}

// Redis is a Store backed by Redis keys with expiry, shared by every
// replica pointing at the same server.
type Redis struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedis(client, cfg), nil
}

func newRedis(client *redis.Client, cfg RedisConfig) *Redis {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, keyPrefix: prefix, ttl: ttl}
}

// Close closes the Redis client.
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) key(id string) string { return r.keyPrefix + id }

// Touch implements Store.
func (r *Redis) Touch(ctx context.Context, id string) error {
	if err := r.client.Set(ctx, r.key(id), time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Exists implements Store.
func (r *Redis) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("session exists: %w", err)
	}
	return n > 0, nil
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
