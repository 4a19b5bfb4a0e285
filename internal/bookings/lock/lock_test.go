package lock

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bookingserrors "slotkeeper/internal/bookings/errors"
	"slotkeeper/internal/scheduling"
	"slotkeeper/pkg/model"

	"github.com/redis/go-redis/v9"
)

func TestKeys_SortedAndUnique(t *testing.T) {
	dates := []scheduling.Date{
		{Year: 2026, Month: time.March, Day: 3},
		{Year: 2026, Month: time.March, Day: 2},
		{Year: 2026, Month: time.March, Day: 3},
	}

	got := Keys(dates)
	want := []string{"slot_lock:2026-03-02", "slot_lock:2026-03-03"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

// exerciseMutualExclusion runs many goroutines through the same key and
// fails if two are ever inside the critical section together.
func exerciseMutualExclusion(t *testing.T, locker SlotLocker) {
	t.Helper()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			release, err := locker.Acquire(ctx, []string{"slot_lock:2026-03-02"})
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			if err := release(context.Background()); err != nil {
				t.Errorf("release failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("observed %d concurrent holders, want 1", maxInside)
	}
}

func TestMemoryLocker_Serializes(t *testing.T) {
	locker := NewMemoryLocker()
	exerciseMutualExclusion(t, locker)

	if locker.Len() != 0 {
		t.Errorf("expected no entries left, got %d", locker.Len())
	}
}

func TestMemoryLocker_TimesOut(t *testing.T) {
	locker := NewMemoryLocker()
	release, err := locker.Acquire(context.Background(), []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	defer release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, []string{"a"})
	if !errors.Is(err, bookingserrors.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped deadline, got %v", err)
	}
}

func TestMemoryLocker_PartialAcquireIsUnwound(t *testing.T) {
	locker := NewMemoryLocker()
	release, err := locker.Acquire(context.Background(), []string{"b"})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Acquire(ctx, []string{"a", "b"}); err == nil {
		t.Fatal("expected timeout on b")
	}

	// "a" must have been released by the failed call.
	quick, cancelQuick := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelQuick()
	releaseA, err := locker.Acquire(quick, []string{"a"})
	if err != nil {
		t.Fatalf("a should be free after unwinding, got %v", err)
	}
	_ = releaseA(context.Background())
	_ = release(context.Background())
}

func TestMemoryLocker_DisjointKeysDoNotBlock(t *testing.T) {
	locker := NewMemoryLocker()
	release, err := locker.Acquire(context.Background(), []string{"slot_lock:2026-03-02"})
	if err != nil {
		t.Fatal(err)
	}
	defer release(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	other, err := locker.Acquire(ctx, []string{"slot_lock:2026-03-03"})
	if err != nil {
		t.Fatalf("different day should not block: %v", err)
	}
	_ = other(context.Background())
}

type fakeLockRepository struct {
	mu      sync.Mutex
	locks   map[string]model.BookingLock
	deletes int
}

func newFakeLockRepository() *fakeLockRepository {
	return &fakeLockRepository{locks: make(map[string]model.BookingLock)}
}

func (f *fakeLockRepository) Create(ctx context.Context, lock *model.BookingLock) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.locks[lock.ID]; ok && existing.ExpiresAt.After(lock.CreatedAt) {
		return bookingserrors.ErrLockHeld
	}
	f.locks[lock.ID] = *lock
	return nil
}

func (f *fakeLockRepository) Delete(ctx context.Context, lockID, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.locks[lockID]; ok && existing.Owner == owner {
		delete(f.locks, lockID)
		f.deletes++
	}
	return nil
}

func TestMongoLocker_Serializes(t *testing.T) {
	exerciseMutualExclusion(t, NewMongoLocker(newFakeLockRepository(), time.Minute))
}

func TestMongoLocker_TimesOutWhileHeld(t *testing.T) {
	repo := newFakeLockRepository()
	locker := NewMongoLocker(repo, time.Minute)

	release, err := locker.Acquire(context.Background(), []string{"k"})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := locker.Acquire(ctx, []string{"k"}); !errors.Is(err, bookingserrors.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}

	if err := release(context.Background()); err != nil {
		t.Fatal(err)
	}
	if repo.deletes != 1 {
		t.Errorf("deletes = %d, want 1", repo.deletes)
	}
}

func TestMongoLocker_ExpiredLockIsTakenOver(t *testing.T) {
	repo := newFakeLockRepository()
	repo.locks["k"] = model.BookingLock{ID: "k", Owner: "crashed", ExpiresAt: time.Now().Add(-time.Second)}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	release, err := NewMongoLocker(repo, time.Minute).Acquire(ctx, []string{"k"})
	if err != nil {
		t.Fatalf("expired lock should be reclaimed: %v", err)
	}
	_ = release(context.Background())
}

func TestMongoLocker_ReleaseLeavesForeignLock(t *testing.T) {
	repo := newFakeLockRepository()
	locker := NewMongoLocker(repo, time.Minute)

	release, err := locker.Acquire(context.Background(), []string{"k"})
	if err != nil {
		t.Fatal(err)
	}
	repo.locks["k"] = model.BookingLock{ID: "k", Owner: "someone-else", ExpiresAt: time.Now().Add(time.Minute)}

	_ = release(context.Background())
	if _, ok := repo.locks["k"]; !ok {
		t.Error("release removed a lock owned by another process")
	}
}

func TestRedisLocker_Serializes(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	client.Del(context.Background(), "slot_lock:2026-03-02")

	exerciseMutualExclusion(t, NewRedisLocker(client, 5*time.Second))
}
