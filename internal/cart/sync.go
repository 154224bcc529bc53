package cart

import (
	"context"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
)

// burst is the rollback target captured before the first mutation of a debounce window.
type burst struct {
	before   *Item // nil when the product was absent
	position int
	selected bool
}

func (e *Engine) beginMutationLocked(id ProductID) {
	e.revs[id]++
	if _, ok := e.bursts[id]; ok {
		return
	}
	b := &burst{position: -1}
	if idx := e.indexLocked(id); idx >= 0 {
		item := e.items[idx]
		b.before = &item
		b.position = idx
		b.selected = e.isSelectedLocked(id)
	}
	e.bursts[id] = b
}

func (e *Engine) scheduleSyncLocked(id ProductID) {
	e.syncs.Schedule(id, func() { e.sendSync(id) })
}

// sendSync issues the upsert carrying the current quantity for id.
func (e *Engine) sendSync(id ProductID) {
	e.mu.Lock()
	b, ok := e.bursts[id]
	if !ok {
		e.unlock()
		return
	}
	delete(e.bursts, id)
	quantity := 0
	if idx := e.indexLocked(id); idx >= 0 {
		quantity = e.items[idx].Quantity
	}
	rev := e.revs[id]
	e.beginCallLocked()
	e.unlock()

	go func() {
		defer e.endCall()

		ctx, cancel := e.callContext()
		defer cancel()

		start := e.clock.Now()
		err := e.remote.UpsertItem(ctx, id, quantity)
		e.metrics.ObserveDuration("upsert", e.clock.Now().Sub(start))
		e.metrics.ObserveSync("upsert", err)
		if err != nil {
			e.syncFailed(id, quantity, rev, b, err)
		}
	}()
}

func (e *Engine) syncFailed(id ProductID, quantity int, rev uint64, b *burst, err error) {
	e.mu.Lock()
	defer e.unlock()

	wrapped := pkgerrors.Wrap(pkgerrors.CodeSyncFailed, err, "sync cart item").
		WithDetails(map[string]any{"product_id": string(id), "quantity": quantity})

	rolledBack := false
	if e.revs[id] == rev {
		e.rollbackLocked(id, b)
		rolledBack = true
		e.metrics.IncRollback()
	} else if next, ok := e.bursts[id]; ok {
		// the newer burst must fall back to what the server last accepted
		*next = *b
	}

	e.raiseLocked(Notice{
		Kind:       NoticeSyncFailed,
		ProductIDs: []ProductID{id},
		Message:    "Could not update your cart.",
		Err:        wrapped,
	})

	ctx := e.logg.WithProductID(context.Background(), string(id))
	e.logg.Warn(e.logg.WithFields(ctx, map[string]any{
		"op":          "upsert",
		"quantity":    quantity,
		"rolled_back": rolledBack,
		"error":       err.Error(),
	}), "cart sync failed")
}

func (e *Engine) rollbackLocked(id ProductID, b *burst) {
	idx := e.indexLocked(id)
	wasSelected := e.isSelectedLocked(id)

	switch {
	case b.before == nil:
		if idx >= 0 {
			e.removeAtLocked(idx)
		}
	case idx >= 0:
		e.items[idx].Quantity = b.before.Quantity
	default:
		e.insertAtLocked(b.position, *b.before)
		if b.selected {
			e.selected[id] = struct{}{}
		}
	}

	if wasSelected || e.isSelectedLocked(id) {
		e.schedulePricingLocked()
	}
}
