package review

import (
	"context"
	"sync"
)

// keyLock serializes work per key within the process. Entries are removed
// once no goroutine holds or waits for them.
type keyLock[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

func newKeyLock[K comparable]() *keyLock[K] {
	return &keyLock[K]{entries: make(map[K]*lockEntry)}
}

// Lock blocks until k is free or ctx is done. The returned func releases k.
func (l *keyLock[K]) Lock(ctx context.Context, k K) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[k]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[k] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
		return func() {
			<-e.sem
			l.release(k, e)
		}, nil
	case <-ctx.Done():
		l.release(k, e)
		return nil, ctx.Err()
	}
}

func (l *keyLock[K]) release(k K, e *lockEntry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, k)
	}
	l.mu.Unlock()
}

func (l *keyLock[K]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
