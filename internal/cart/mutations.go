package cart

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
)

func (e *Engine) mutableLocked() error {
	switch e.state {
	case StateReady, StateFailed:
		return nil
	case StateClosed:
		return errClosed()
	default:
		return pkgerrors.New(pkgerrors.CodeCartNotReady, "cart is still loading")
	}
}

func (e *Engine) limitLocked(id ProductID) error {
	err := pkgerrors.New(pkgerrors.CodeQuantityLimit, fmt.Sprintf("you can add at most %d of this product", e.maxQty)).
		WithDetails(map[string]any{"product_id": string(id), "max_quantity": e.maxQty})
	e.raiseLocked(Notice{
		Kind:       NoticeLimitReached,
		ProductIDs: []ProductID{id},
		Message:    err.Message(),
		Err:        err,
	})
	return err
}

// AddItem increments an existing line or appends a new selected line with quantity 1.
func (e *Engine) AddItem(product Product) error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	id := product.ID
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if idx := e.indexLocked(id); idx >= 0 {
		if e.items[idx].Quantity >= e.maxQty {
			return e.limitLocked(id)
		}
		e.beginMutationLocked(id)
		e.items[idx].Quantity++
		e.scheduleSyncLocked(id)
		if e.isSelectedLocked(id) {
			e.schedulePricingLocked()
		}
		return nil
	}

	e.beginMutationLocked(id)
	e.items = append(e.items, Item{
		ProductID:     id,
		Product:       product,
		Quantity:      1,
		OriginalPrice: product.Price,
	})
	e.selected[id] = struct{}{}
	e.scheduleSyncLocked(id)
	e.schedulePricingLocked()
	return nil
}

// UpdateQuantity sets an absolute quantity. Zero or less removes the line.
func (e *Engine) UpdateQuantity(id ProductID, quantity int) error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	if quantity > e.maxQty {
		return e.limitLocked(id)
	}

	idx := e.indexLocked(id)
	if idx < 0 {
		if quantity <= 0 {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart").
			WithDetails(map[string]any{"product_id": string(id)})
	}

	selected := e.isSelectedLocked(id)
	if quantity <= 0 {
		e.beginMutationLocked(id)
		e.removeAtLocked(idx)
	} else {
		if e.items[idx].Quantity == quantity {
			return nil
		}
		e.beginMutationLocked(id)
		e.items[idx].Quantity = quantity
	}
	e.scheduleSyncLocked(id)
	if selected {
		e.schedulePricingLocked()
	}
	return nil
}

// ToggleItemSelection flips one line in or out of the selection.
func (e *Engine) ToggleItemSelection(id ProductID) error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	if e.indexLocked(id) < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart").
			WithDetails(map[string]any{"product_id": string(id)})
	}
	if e.isSelectedLocked(id) {
		delete(e.selected, id)
	} else {
		e.selected[id] = struct{}{}
	}
	e.schedulePricingLocked()
	return nil
}

// ToggleSelectAll clears the selection when every line is selected and selects all otherwise.
func (e *Engine) ToggleSelectAll() error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.mutableLocked(); err != nil {
		return err
	}
	if len(e.items) == 0 {
		return nil
	}
	if len(e.selected) == len(e.items) {
		e.selected = map[ProductID]struct{}{}
	} else {
		for _, item := range e.items {
			e.selected[item.ProductID] = struct{}{}
		}
	}
	e.schedulePricingLocked()
	return nil
}

// DeleteSelectedItems removes the selected lines locally and then asks the remote to
// delete them in one call. On failure lines that were not re-added are restored.
func (e *Engine) DeleteSelectedItems(ctx context.Context) error {
	return e.removeItems(ctx, "delete_selected", func(item Item) bool {
		return e.isSelectedLocked(item.ProductID)
	})
}

// ClearCart removes every line through the same batched delete.
func (e *Engine) ClearCart(ctx context.Context) error {
	return e.removeItems(ctx, "clear", func(Item) bool { return true })
}

type removedLine struct {
	item     Item
	position int
	selected bool
	burst    *burst
}

func (e *Engine) removeItems(ctx context.Context, op string, pick func(Item) bool) error {
	e.mu.Lock()
	if err := e.mutableLocked(); err != nil {
		e.unlock()
		return err
	}

	var (
		removed []removedLine
		kept    = make([]Item, 0, len(e.items))
		ids     []ProductID
	)
	hadSelection := len(e.selected) > 0
	for pos, item := range e.items {
		if !pick(item) {
			kept = append(kept, item)
			continue
		}
		id := item.ProductID
		line := removedLine{item: item, position: pos, selected: e.isSelectedLocked(id)}
		if e.syncs.Cancel(id) {
			line.burst = e.bursts[id]
		}
		delete(e.bursts, id)
		e.revs[id]++
		delete(e.selected, id)
		removed = append(removed, line)
		ids = append(ids, id)
	}
	if len(removed) == 0 {
		e.unlock()
		return nil
	}
	e.items = kept
	if hadSelection {
		e.schedulePricingLocked()
	}
	e.beginCallLocked()
	e.unlock()
	defer e.endCall()

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	start := e.clock.Now()
	err := e.remote.DeleteItems(callCtx, ids)
	cancel()
	e.metrics.ObserveDuration(op, e.clock.Now().Sub(start))
	e.metrics.ObserveSync(op, err)
	if err == nil {
		return nil
	}

	e.mu.Lock()
	defer e.unlock()

	wrapped := pkgerrors.Wrap(pkgerrors.CodeSyncFailed, err, "delete cart items").
		WithDetails(map[string]any{"product_ids": ids})
	restored := make([]ProductID, 0, len(removed))
	for _, line := range removed {
		id := line.item.ProductID
		if e.indexLocked(id) >= 0 {
			continue
		}
		e.insertAtLocked(line.position, line.item)
		if line.selected {
			e.selected[id] = struct{}{}
		}
		if line.burst != nil {
			e.bursts[id] = line.burst
			e.scheduleSyncLocked(id)
		}
		restored = append(restored, id)
	}
	e.schedulePricingLocked()
	e.raiseLocked(Notice{
		Kind:       NoticeDeleteFailed,
		ProductIDs: restored,
		Message:    "Could not remove items from your cart.",
		Err:        wrapped,
	})
	e.logg.Warn(e.logg.WithFields(ctx, map[string]any{
		"op":       op,
		"restored": len(restored),
		"error":    err.Error(),
	}), "cart delete failed")
	return wrapped
}
