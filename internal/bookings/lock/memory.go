package lock

import (
	"context"
	"sync"
)

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

// MemoryLocker holds keyed locks inside one process. Entries are dropped
// once no goroutine holds or waits on them.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{entries: make(map[string]*memoryEntry)}
}

func (l *MemoryLocker) Acquire(ctx context.Context, keys []string) (Release, error) {
	return acquireAll(ctx, keys, l.lock, l.unlock)
}

func (l *MemoryLocker) lock(ctx context.Context, key string) error {
	l.mu.Lock()
	entry, ok := l.entries[key]
	if !ok {
		entry = &memoryEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.deref(key, entry)
		l.mu.Unlock()
		return timeout(ctx, key)
	}
}

func (l *MemoryLocker) unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return nil
	}
	<-entry.sem
	l.deref(key, entry)
	return nil
}

func (l *MemoryLocker) deref(key string, entry *memoryEntry) {
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (l *MemoryLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
