package cartstore

import (
	"context"
	"time"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
)

// Carts is the slice of pkg/redis.Client the Redis store needs.
type Carts interface {
	CartQuantities(ctx context.Context, actor string) (map[string]int, error)
	SetCartQuantity(ctx context.Context, actor, productID string, quantity int, ttl time.Duration) error
	RemoveCartLines(ctx context.Context, actor string, ttl time.Duration, productIDs ...string) error
}

// Redis stores each cart as a hash of product id to quantity.
type Redis struct {
	carts Carts
	ttl   time.Duration
}

var _ Store = (*Redis)(nil)

func NewRedis(carts Carts, ttl time.Duration) *Redis {
	return &Redis{carts: carts, ttl: ttl}
}

func (r *Redis) Lines(ctx context.Context, actor string) ([]Line, error) {
	quantities, err := r.carts.CartQuantities(ctx, actor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart")
	}
	return sortedLines(quantities), nil
}

func (r *Redis) Set(ctx context.Context, actor, productID string, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, actor, productID)
	}
	if err := r.carts.SetCartQuantity(ctx, actor, productID, quantity, r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write cart line")
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, actor string, productIDs ...string) error {
	if err := r.carts.RemoveCartLines(ctx, actor, r.ttl, productIDs...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart lines")
	}
	return nil
}
