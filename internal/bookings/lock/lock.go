// Package lock serializes booking creation per local calendar day.
//
// A booking write takes one lock for every day its buffered interval touches.
// Keys are acquired in sorted order so two writers spanning the same days
// can never deadlock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	bookingserrors "slotkeeper/internal/bookings/errors"
	"slotkeeper/internal/bookings/repository"
	"slotkeeper/internal/scheduling"
	"slotkeeper/pkg/config"
)

const keyPrefix = "slot_lock:"

// Release frees every key taken by one Acquire call.
type Release func(ctx context.Context) error

type SlotLocker interface {
	// Acquire blocks until all keys are held or ctx is done. It is
	// all-or-nothing: on failure nothing stays locked.
	Acquire(ctx context.Context, keys []string) (Release, error)
}

// Keys returns the sorted, de-duplicated lock keys for dates.
func Keys(dates []scheduling.Date) []string {
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, keyPrefix+d.String())
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// New builds the locker selected by cfg.BookingLockBackend.
func New(cfg *config.Config, lockRepo repository.BookingLockRepository) (SlotLocker, error) {
	switch cfg.BookingLockBackend {
	case config.LockBackendMemory, "":
		return NewMemoryLocker(), nil
	case config.LockBackendMongo:
		return NewMongoLocker(lockRepo, cfg.BookingLockTTL), nil
	case config.LockBackendRedis:
		if cfg.Client == nil || cfg.Client.Redis == nil {
			return nil, errors.New("redis lock backend requires a redis client")
		}
		return NewRedisLocker(cfg.Client.Redis, cfg.BookingLockTTL), nil
	default:
		return nil, fmt.Errorf("unknown booking lock backend %q", cfg.BookingLockBackend)
	}
}

// acquireAll takes keys one by one with lockOne and unwinds on failure.
func acquireAll(ctx context.Context, keys []string, lockOne func(context.Context, string) error, unlockOne func(context.Context, string) error) (Release, error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]string, 0, len(sorted))
	release := func(ctx context.Context) error {
		var errs []error
		for i := len(held) - 1; i >= 0; i-- {
			if err := unlockOne(ctx, held[i]); err != nil {
				errs = append(errs, err)
			}
		}
		held = held[:0]
		return errors.Join(errs...)
	}

	for _, key := range sorted {
		if err := lockOne(ctx, key); err != nil {
			_ = release(context.WithoutCancel(ctx))
			return nil, err
		}
		held = append(held, key)
	}
	return release, nil
}

// poll retries try with capped exponential backoff until it succeeds,
// fails, or ctx is done.
func poll(ctx context.Context, key string, try func(context.Context) (bool, error)) error {
	backoff := 10 * time.Millisecond
	const maxBackoff = 250 * time.Millisecond

	for {
		ok, err := try(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return timeout(ctx, key)
		case <-timer.C:
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func timeout(ctx context.Context, key string) error {
	return fmt.Errorf("%w: %s: %w", bookingserrors.ErrLockTimeout, key, ctx.Err())
}
