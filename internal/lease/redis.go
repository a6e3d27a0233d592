package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cividex/portalwatch/internal/portal"
)

// RedisConfig points the lease at a Redis instance shared by all workers.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Redis is a cross-process lease backed by SET NX with a TTL.
type Redis struct {
	client *redis.Client
}

// NewRedis connects and pings the Redis instance.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// Acquire takes the lease via SET NX; false means another worker holds it.
func (r *Redis) Acquire(ctx context.Context, sourceCode string, mode portal.Mode, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key(sourceCode, mode), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lease: %w", err)
	}
	return ok, nil
}

// Release frees the lease.
func (r *Redis) Release(ctx context.Context, sourceCode string, mode portal.Mode) error {
	if err := r.client.Del(ctx, key(sourceCode, mode)).Err(); err != nil {
		return fmt.Errorf("release lease: %w", err)
	}
	return nil
}

// Close shuts down the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
