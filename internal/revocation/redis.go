package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked:"

// Redis implements Cache on a live Redis connection.
type Redis struct {
	client redis.UniversalClient
}

var _ Cache = (*Redis)(nil)

// NewRedis wraps an already-configured client. The caller owns the client's
// lifecycle (close on shutdown).
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func key(fingerprint string) string { return keyPrefix + fingerprint }

func (r *Redis) Set(ctx context.Context, fingerprint, reason string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key(fingerprint), reason, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, fingerprint string) (string, error) {
	reason, err := r.client.Get(ctx, key(fingerprint)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return reason, nil
}

func (r *Redis) Exists(ctx context.Context, fingerprint string) (bool, error) {
	n, err := r.client.Exists(ctx, key(fingerprint)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

func (r *Redis) Delete(ctx context.Context, fingerprint string) error {
	if err := r.client.Del(ctx, key(fingerprint)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Redis) Available(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}
