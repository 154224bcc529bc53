package catalog

import (
	"context"

	"github.com/angelmondragon/cartsync/internal/repo"
	"github.com/angelmondragon/cartsync/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// Seed inserts a small demo catalog. Existing rows are left untouched.
func (r *Repository) Seed(ctx context.Context) error {
	return r.Transaction(ctx, func(tx repo.Base) error {
		// Each insert needs its own statement so the target table is not carried over.
		insert := func(value any) error {
			return tx.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(value).Error
		}

		audio := models.Category{ID: 1, Name: "Audio", Slug: "audio"}
		headphones := models.Category{ID: 2, Name: "Headphones", Slug: "headphones", ParentID: &audio.ID}
		cases := models.Category{ID: 3, Name: "Cases", Slug: "cases"}
		categories := []models.Category{audio, headphones, cases}
		if err := insert(&categories); err != nil {
			return err
		}

		products := []models.Product{
			{ID: "1", Name: "Studio Headphones", Slug: "studio-headphones", RegularPrice: decimal.NewFromInt(100), CategoryID: &headphones.ID, IsActive: true},
			{ID: "2", Name: "Bluetooth Speaker", Slug: "bluetooth-speaker", RegularPrice: decimal.RequireFromString("59.90"), CategoryID: &audio.ID, IsActive: true},
			{ID: "3", Name: "Silicone Case", Slug: "silicone-case", RegularPrice: decimal.RequireFromString("12.50"), CategoryID: &cases.ID, IsActive: true},
			{ID: "4", Name: "Leather Case", Slug: "leather-case", RegularPrice: decimal.RequireFromString("24.00"), CategoryID: &cases.ID, IsActive: true},
		}
		if err := insert(&products); err != nil {
			return err
		}

		caseID := "3"
		rules := []models.DiscountRule{
			{ID: 1, Name: "Any 5 items: 5% off", RuleType: models.RuleTotalQuantity, MinQuantity: 5, Percentage: decimal.NewFromInt(5), IsActive: true},
			{ID: 2, Name: "3 silicone cases: 15% off", RuleType: models.RuleProductQuantity, MinQuantity: 3, Percentage: decimal.NewFromInt(15), ProductTargetID: &caseID, IsActive: true},
			{ID: 3, Name: "2 audio items: 10% off", RuleType: models.RuleCategoryQuantity, MinQuantity: 2, Percentage: decimal.NewFromInt(10), CategoryTargetID: &audio.ID, IsActive: true},
		}
		return insert(&rules)
	})
}
