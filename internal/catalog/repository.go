package catalog

import (
	"context"
	"errors"

	"github.com/angelmondragon/cartsync/internal/repo"
	"github.com/angelmondragon/cartsync/pkg/db/models"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"gorm.io/gorm"
)

// Reader is the catalog surface the cart API depends on.
type Reader interface {
	Product(ctx context.Context, id string) (*models.Product, error)
	ProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
	ActiveRules(ctx context.Context) ([]models.DiscountRule, error)
	Categories(ctx context.Context) (map[uint]models.Category, error)
}

// Repository reads products, categories and discount rules through GORM.
type Repository struct {
	repo.Base
}

var _ Reader = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Product returns an active product or a NOT_FOUND error.
func (r *Repository) Product(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).Where("id = ? AND is_active = ?", id, true).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"product_id": id})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

// ProductsByIDs returns the active products among ids keyed by id.
func (r *Repository) ProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.DB(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// ActiveRules returns active discount rules in id order.
func (r *Repository) ActiveRules(ctx context.Context) ([]models.DiscountRule, error) {
	var rules []models.DiscountRule
	if err := r.DB(ctx).Where("is_active = ?", true).Order("id").Find(&rules).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount rules")
	}
	return rules, nil
}

// Categories returns the whole category tree keyed by id.
func (r *Repository) Categories(ctx context.Context) (map[uint]models.Category, error) {
	var categories []models.Category
	if err := r.DB(ctx).Find(&categories).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	out := make(map[uint]models.Category, len(categories))
	for _, c := range categories {
		out[c.ID] = c
	}
	return out, nil
}
