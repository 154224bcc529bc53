// Package cartstore keeps per-actor cart quantities for the reference API.
package cartstore

import (
	"context"
	"sort"
)

// Line is a stored cart row.
type Line struct {
	ProductID string
	Quantity  int
}

// Store persists product quantities per actor. Quantities are always positive.
type Store interface {
	Lines(ctx context.Context, actor string) ([]Line, error)
	Set(ctx context.Context, actor, productID string, quantity int) error
	Remove(ctx context.Context, actor string, productIDs ...string) error
}

func sortedLines(quantities map[string]int) []Line {
	out := make([]Line, 0, len(quantities))
	for id, qty := range quantities {
		if qty > 0 {
			out = append(out, Line{ProductID: id, Quantity: qty})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
