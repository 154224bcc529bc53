package cart

import "context"

// Remote is the authoritative cart store. Implementations attach the actor identity.
type Remote interface {
	GetCart(ctx context.Context) ([]Item, error)
	// UpsertItem sets the quantity for a product; zero removes it.
	UpsertItem(ctx context.Context, productID ProductID, quantity int) error
	DeleteItems(ctx context.Context, productIDs []ProductID) error
	PriceSelection(ctx context.Context, selection []SelectionLine) (Summary, error)
}
