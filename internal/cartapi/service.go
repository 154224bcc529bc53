// Package cartapi implements the reference Cart API operations on top of the
// cart store, the catalog and the pricing rules.
package cartapi

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/cartsync/internal/cartstore"
	"github.com/angelmondragon/cartsync/internal/catalog"
	"github.com/angelmondragon/cartsync/internal/pricing"
	"github.com/angelmondragon/cartsync/pkg/db/models"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/angelmondragon/cartsync/pkg/types"
)

// Service exposes the cart endpoints for a resolved actor.
type Service interface {
	GetCart(ctx context.Context, actor string) (*types.CartDetail, error)
	UpsertItem(ctx context.Context, actor, productID string, quantity int) (*types.CartDetail, error)
	DeleteItems(ctx context.Context, actor string, productIDs []string) (*types.CartDetail, error)
	CalculateSelection(ctx context.Context, selection []types.SelectionLine) (*types.SelectionPricing, error)
}

type Options struct {
	Store       cartstore.Store
	Catalog     catalog.Reader
	Logger      *logger.Logger
	MaxQuantity int
	Now         func() time.Time
}

type service struct {
	store   cartstore.Store
	catalog catalog.Reader
	logg    *logger.Logger
	maxQty  int
	now     func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(opts Options) (Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if opts.MaxQuantity < 1 {
		return nil, fmt.Errorf("max quantity must be at least 1")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		store:   opts.Store,
		catalog: opts.Catalog,
		logg:    opts.Logger,
		maxQty:  opts.MaxQuantity,
		now:     opts.Now,
	}, nil
}

func (s *service) GetCart(ctx context.Context, actor string) (*types.CartDetail, error) {
	return s.detail(ctx, actor)
}

// UpsertItem sets an absolute quantity. Zero or less removes the line.
func (s *service) UpsertItem(ctx context.Context, actor, productID string, quantity int) (*types.CartDetail, error) {
	if quantity > s.maxQty {
		return nil, pkgerrors.New(pkgerrors.CodeQuantityLimit, fmt.Sprintf("quantity may not exceed %d", s.maxQty)).
			WithDetails(map[string]any{"product_id": productID, "max_quantity": s.maxQty})
	}
	if quantity > 0 {
		if _, err := s.catalog.Product(ctx, productID); err != nil {
			return nil, err
		}
	}
	if err := s.store.Set(ctx, actor, productID, quantity); err != nil {
		return nil, err
	}
	return s.detail(ctx, actor)
}

func (s *service) DeleteItems(ctx context.Context, actor string, productIDs []string) (*types.CartDetail, error) {
	if err := s.store.Remove(ctx, actor, productIDs...); err != nil {
		return nil, err
	}
	return s.detail(ctx, actor)
}

// CalculateSelection prices an arbitrary selection. Unknown products are ignored and
// repeated products have their quantities summed.
func (s *service) CalculateSelection(ctx context.Context, selection []types.SelectionLine) (*types.SelectionPricing, error) {
	order := make([]string, 0, len(selection))
	quantities := make(map[string]int, len(selection))
	for _, line := range selection {
		if line.Quantity <= 0 {
			continue
		}
		if _, seen := quantities[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}
	lines := make([]cartstore.Line, 0, len(order))
	for _, id := range order {
		lines = append(lines, cartstore.Line{ProductID: id, Quantity: quantities[id]})
	}

	res, _, err := s.price(ctx, lines)
	if err != nil {
		return nil, err
	}
	return &types.SelectionPricing{
		Subtotal:       types.NewMoney(res.Subtotal),
		DiscountAmount: types.NewMoney(res.DiscountAmount),
		FinalTotal:     types.NewMoney(res.FinalTotal),
		AppliedRule:    res.AppliedRule,
		UpsellHint:     res.UpsellHint,
	}, nil
}

func (s *service) detail(ctx context.Context, actor string) (*types.CartDetail, error) {
	lines, err := s.store.Lines(ctx, actor)
	if err != nil {
		return nil, err
	}
	res, products, err := s.price(ctx, lines)
	if err != nil {
		return nil, err
	}

	now := s.now()
	detail := &types.CartDetail{
		Items:          make([]types.CartItem, 0, len(res.Lines)),
		Subtotal:       types.NewMoney(res.Subtotal),
		DiscountAmount: types.NewMoney(res.DiscountAmount),
		FinalTotal:     types.NewMoney(res.FinalTotal),
		AppliedRule:    res.AppliedRule,
		UpsellHint:     res.UpsellHint,
	}
	for _, line := range res.Lines {
		p := products[line.ProductID]
		price := types.NewMoney(p.CurrentPrice(now))
		detail.Items = append(detail.Items, types.CartItem{
			Product: types.Product{
				ID:    p.ID,
				Name:  p.Name,
				Slug:  p.Slug,
				Image: p.Image,
				Price: price,
			},
			Quantity:        line.Quantity,
			OriginalPrice:   price,
			DiscountedPrice: types.NewMoneyPtr(line.DiscountedPrice),
		})
	}
	return detail, nil
}

// price resolves lines against the catalog and runs the active rules. Lines whose
// product is gone or inactive are dropped.
func (s *service) price(ctx context.Context, lines []cartstore.Line) (pricing.Result, map[string]models.Product, error) {
	rules, err := s.catalog.ActiveRules(ctx)
	if err != nil {
		return pricing.Result{}, nil, err
	}
	ids := make([]string, 0, len(lines)+len(rules))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	for _, rule := range rules {
		if rule.ProductTargetID != nil {
			ids = append(ids, *rule.ProductTargetID)
		}
	}
	products, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return pricing.Result{}, nil, err
	}
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return pricing.Result{}, nil, err
	}

	in := pricing.Input{
		Lines:      make([]pricing.Line, 0, len(lines)),
		Rules:      rules,
		Categories: categories,
		Products:   products,
		Now:        s.now(),
	}
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			s.logg.Debug(s.logg.WithProductID(ctx, line.ProductID), "skipping unavailable product")
			continue
		}
		in.Lines = append(in.Lines, pricing.Line{Product: p, Quantity: line.Quantity})
	}
	return pricing.Calculate(in), products, nil
}
