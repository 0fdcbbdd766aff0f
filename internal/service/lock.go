package service

import (
	"context"

	"github.com/rs/zerolog"
)

// Locker serializes orchestrator operations on one payment across processes.
type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}

// withLock runs fn while holding the payment lock. A nil locker runs fn directly.
// A failed release is logged; fn's result stands.
func withLock[T any](ctx context.Context, locker Locker, logger zerolog.Logger, key string, fn func() (T, error)) (T, error) {
	if locker == nil {
		return fn()
	}
	lockKey := "payment:" + key
	unlock, err := locker.Lock(ctx, lockKey)
	if err != nil {
		var zero T
		return zero, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.Error().Err(err).Str("lock_key", lockKey).Msg("failed to release payment lock")
		}
	}()
	return fn()
}
