package blocklist

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis - общий для всех экземпляров сервиса blocklist.
// Каждая запись - ключ с TTL, равным остатку жизни токена, поэтому
// вытеснение выполняет сам Redis.
type Redis struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedis создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой - используется "library:revoked:".
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	if prefix == "" {
		prefix = "library:revoked:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Redis{rdb: rdb, prefix: prefix, now: time.Now}, nil
}

func (r *Redis) key(jti string) string { return r.prefix + jti }

func (r *Redis) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	return r.rdb.Set(ctx, r.key(jti), expiresAt.Unix(), ttl).Err()
}

func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.rdb.Get(ctx, r.key(jti)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

func (r *Redis) Close() error { return r.rdb.Close() }

var _ Blocklist = (*Redis)(nil)
