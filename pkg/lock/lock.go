// Package lock serializes work that must not run concurrently for the same
// key, such as auto-scheduling two tasks of one farm at once.
package lock

import (
	"context"
	"sync"
)

// Release gives the lock back. It is safe to call more than once.
type Release func()

// Locker hands out exclusive locks per key
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Memory is a process-local Locker
type Memory struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewMemory() *Memory {
	return &Memory{locks: make(map[string]chan struct{})}
}

func (m *Memory) slot(key string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[key] = ch
	}
	return ch
}

func (m *Memory) Acquire(ctx context.Context, key string) (Release, error) {
	ch := m.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
