package cartstore

import (
	"context"
	"sync"
	"time"
)

type memoryCart struct {
	lines   map[string]int
	expires time.Time
}

// Memory is a process-local Store with the same sliding TTL as the Redis store.
type Memory struct {
	mu    sync.Mutex
	carts map[string]*memoryCart
	ttl   time.Duration
	now   func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{carts: map[string]*memoryCart{}, ttl: ttl, now: time.Now}
}

func (m *Memory) cartLocked(actor string, create bool) *memoryCart {
	c, ok := m.carts[actor]
	if ok && m.ttl > 0 && !m.now().Before(c.expires) {
		delete(m.carts, actor)
		ok = false
	}
	if !ok && create {
		c = &memoryCart{lines: map[string]int{}}
		m.carts[actor] = c
		ok = true
	}
	if !ok {
		return nil
	}
	return c
}

func (m *Memory) touchLocked(c *memoryCart) {
	if m.ttl > 0 {
		c.expires = m.now().Add(m.ttl)
	}
}

func (m *Memory) Lines(_ context.Context, actor string) ([]Line, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.cartLocked(actor, false)
	if c == nil {
		return []Line{}, nil
	}
	return sortedLines(c.lines), nil
}

func (m *Memory) Set(ctx context.Context, actor, productID string, quantity int) error {
	if quantity <= 0 {
		return m.Remove(ctx, actor, productID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.cartLocked(actor, true)
	c.lines[productID] = quantity
	m.touchLocked(c)
	return nil
}

func (m *Memory) Remove(_ context.Context, actor string, productIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.cartLocked(actor, false)
	if c == nil {
		return nil
	}
	for _, id := range productIDs {
		delete(c.lines, id)
	}
	if len(c.lines) == 0 {
		delete(m.carts, actor)
		return nil
	}
	m.touchLocked(c)
	return nil
}
