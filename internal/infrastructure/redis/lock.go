package redis

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/cassiomorais/payment-orchestrator/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Only the owner may release.
var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

const defaultPollInterval = 50 * time.Millisecond

// Locker hands out per-key mutexes backed by SET NX PX. Locks expire after
// ttl so a crashed holder cannot block a payment forever.
type Locker struct {
	client       redis.UniversalClient
	ttl          time.Duration
	wait         time.Duration
	pollInterval time.Duration
}

func NewLocker(client redis.UniversalClient, ttl, wait time.Duration) *Locker {
	return &Locker{
		client:       client,
		ttl:          ttl,
		wait:         wait,
		pollInterval: defaultPollInterval,
	}
}

// Lock polls until key is free, wait elapses or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	lockKey := "lock:" + key
	token := uuid.NewString()

	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return func(ctx context.Context) error {
				return l.release(ctx, lockKey, token)
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%s held elsewhere: %w", key, domainErrors.ErrLockAcquisitionFailed)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.pollInterval):
		}
	}
}

func (l *Locker) release(ctx context.Context, lockKey, token string) error {
	n, err := releaseLockScript.Run(ctx, l.client, []string{lockKey}, token).Int64()
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if n == 0 {
		return domainErrors.ErrLockNotHeld
	}
	return nil
}
