package cart

import (
	"context"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
)

func (e *Engine) schedulePricingLocked() {
	e.stale = true
	e.pricing.Schedule(struct{}{}, e.recomputePricing)
}

func (e *Engine) selectionLocked() []SelectionLine {
	lines := make([]SelectionLine, 0, len(e.selected))
	for _, item := range e.items {
		if _, ok := e.selected[item.ProductID]; ok {
			lines = append(lines, SelectionLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	return lines
}

// recomputePricing issues a tagged pricing call for the current selection.
func (e *Engine) recomputePricing() {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	lines := e.selectionLocked()
	if len(lines) == 0 {
		e.summary = Summary{}
		e.stale = e.pricing.Pending(struct{}{})
		e.unlock()
		return
	}
	e.beginCallLocked()
	e.unlock()

	go func() {
		defer e.endCall()

		ctx, cancel := e.callContext()
		defer cancel()

		start := e.clock.Now()
		summary, err := e.remote.PriceSelection(ctx, lines)
		e.metrics.ObserveDuration("pricing", e.clock.Now().Sub(start))
		e.metrics.ObservePricing(err)
		e.applyPricing(seq, summary, err)
	}()
}

func (e *Engine) applyPricing(seq uint64, summary Summary, err error) {
	e.mu.Lock()
	defer e.unlock()

	ctx := e.logg.WithFields(context.Background(), map[string]any{"op": "pricing", "seq": seq})
	if seq != e.seq {
		e.metrics.IncStaleDiscarded()
		e.logg.Debug(ctx, "discarded stale pricing response")
		return
	}
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodePricingFailed, err, "calculate selection")
		e.raiseLocked(Notice{
			Kind:    NoticePricingFailed,
			Message: "Could not update your totals.",
			Err:     wrapped,
		})
		e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), "cart pricing failed")
		return
	}
	e.summary = summary
	e.stale = e.pricing.Pending(struct{}{})
}
