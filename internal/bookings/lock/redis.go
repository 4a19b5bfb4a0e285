package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token, so a
// lock that expired and was re-taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker takes each key with SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, keys []string) (Release, error) {
	token := uuid.NewString()

	lockOne := func(ctx context.Context, key string) error {
		return poll(ctx, key, func(ctx context.Context) (bool, error) {
			ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
			if err != nil {
				if ctx.Err() != nil {
					return false, timeout(ctx, key)
				}
				return false, fmt.Errorf("failed to acquire redis lock %s: %w", key, err)
			}
			return ok, nil
		})
	}
	unlockOne := func(ctx context.Context, key string) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release redis lock %s: %w", key, err)
		}
		return nil
	}

	return acquireAll(ctx, keys, lockOne, unlockOne)
}
