// Package mirror keeps a session-scoped "cart cleared" flag. It is a UI hint
// only; nothing reads it as the truth about a cart or a payment.
package mirror

import (
	"context"
	"sync"
	"time"
)

type Mirror interface {
	MarkCleared(ctx context.Context, key string) error
	Cleared(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]time.Time
}

// NewMemory keeps flags for ttl. A zero ttl keeps them until Forget.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]time.Time),
	}
}

func (m *Memory) MarkCleared(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = m.now()
	return nil
}

func (m *Memory) Cleared(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if m.ttl > 0 && m.now().Sub(at) >= m.ttl {
		delete(m.entries, key)
		return false, nil
	}
	return true, nil
}

func (m *Memory) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
