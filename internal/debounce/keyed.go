// Package debounce coalesces bursts of calls per key into a single trailing call.
package debounce

import (
	"sync"
	"time"
)

type entry struct {
	timer Timer
	fn    func()
	gen   uint64
}

// Keyed holds one pending trailing call per key. Scheduling a key again before its
// timer fires replaces the pending call and restarts the wait.
type Keyed[K comparable] struct {
	clock Clock
	wait  time.Duration

	mu      sync.Mutex
	pending map[K]*entry
	gen     uint64
	stopped bool
}

// NewKeyed builds a debouncer that fires wait after the last Schedule per key.
func NewKeyed[K comparable](clock Clock, wait time.Duration) *Keyed[K] {
	if clock == nil {
		clock = System()
	}
	if wait < 0 {
		wait = 0
	}
	return &Keyed[K]{
		clock:   clock,
		wait:    wait,
		pending: make(map[K]*entry),
	}
}

// Schedule sets fn as the pending call for key and (re)starts its timer.
// It reports false when the debouncer has been stopped.
func (k *Keyed[K]) Schedule(key K, fn func()) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.stopped {
		return false
	}
	if current, ok := k.pending[key]; ok {
		current.timer.Stop()
	}
	k.gen++
	gen := k.gen
	e := &entry{fn: fn, gen: gen}
	k.pending[key] = e
	e.timer = k.clock.AfterFunc(k.wait, func() { k.fire(key, gen) })
	return true
}

func (k *Keyed[K]) fire(key K, gen uint64) {
	fn := k.take(key, gen)
	if fn != nil {
		fn()
	}
}

// take removes the pending entry for key when it still belongs to gen.
// A zero gen matches any entry.
func (k *Keyed[K]) take(key K, gen uint64) func() {
	k.mu.Lock()
	defer k.mu.Unlock()
	current, ok := k.pending[key]
	if !ok || (gen != 0 && current.gen != gen) {
		return nil
	}
	delete(k.pending, key)
	current.timer.Stop()
	return current.fn
}

// Cancel drops the pending call for key. It reports whether one was pending.
func (k *Keyed[K]) Cancel(key K) bool {
	return k.take(key, 0) != nil
}

// Flush runs the pending call for key immediately on the caller's goroutine.
func (k *Keyed[K]) Flush(key K) bool {
	fn := k.take(key, 0)
	if fn == nil {
		return false
	}
	fn()
	return true
}

// FlushAll runs every pending call immediately and returns how many ran.
func (k *Keyed[K]) FlushAll() int {
	k.mu.Lock()
	fns := make([]func(), 0, len(k.pending))
	for key, e := range k.pending {
		e.timer.Stop()
		delete(k.pending, key)
		fns = append(fns, e.fn)
	}
	k.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Pending reports whether key has a call waiting.
func (k *Keyed[K]) Pending(key K) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.pending[key]
	return ok
}

// Len returns the number of keys with a pending call.
func (k *Keyed[K]) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.pending)
}

// Stop cancels every pending call and rejects future Schedule calls.
func (k *Keyed[K]) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.stopped = true
	for key, e := range k.pending {
		e.timer.Stop()
		delete(k.pending, key)
	}
}
