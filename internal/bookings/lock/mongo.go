package lock

import (
	"context"
	"errors"
	"time"

	bookingserrors "slotkeeper/internal/bookings/errors"
	"slotkeeper/internal/bookings/repository"
	"slotkeeper/pkg/model"

	"github.com/google/uuid"
)

// MongoLocker stores one advisory document per key in Booking_locks. A lock
// left behind by a crashed process expires after ttl.
type MongoLocker struct {
	repo repository.BookingLockRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewMongoLocker(repo repository.BookingLockRepository, ttl time.Duration) *MongoLocker {
	return &MongoLocker{
		repo: repo,
		ttl:  ttl,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (l *MongoLocker) Acquire(ctx context.Context, keys []string) (Release, error) {
	owner := uuid.NewString()

	lockOne := func(ctx context.Context, key string) error {
		return poll(ctx, key, func(ctx context.Context) (bool, error) {
			now := l.now()
			err := l.repo.Create(ctx, &model.BookingLock{
				ID:        key,
				Owner:     owner,
				ExpiresAt: now.Add(l.ttl),
				CreatedAt: now,
			})
			if errors.Is(err, bookingserrors.ErrLockHeld) {
				return false, nil
			}
			return err == nil, err
		})
	}
	unlockOne := func(ctx context.Context, key string) error {
		return l.repo.Delete(ctx, key, owner)
	}

	return acquireAll(ctx, keys, lockOne, unlockOne)
}
