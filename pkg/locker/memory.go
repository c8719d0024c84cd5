package locker

import (
	"context"
	"errors"
	"sync"
)

// Memory is an in-process Locker. Entries are dropped once no caller holds
// or waits on them, so the map does not grow with the number of tenants.
type Memory struct {
	mu    sync.Mutex
	locks map[string]*memoryEntry
}

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

func NewMemory() *Memory {
	return &Memory{locks: make(map[string]*memoryEntry)}
}

func (m *Memory) Lock(ctx context.Context, key string) (func(), error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &memoryEntry{sem: make(chan struct{}, 1)}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.unref(key, e)
		return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			m.unref(key, e)
		})
	}, nil
}

func (m *Memory) unref(key string, e *memoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}
