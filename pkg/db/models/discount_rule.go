package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountRuleType selects how MinQuantity is counted.
type DiscountRuleType string

const (
	RuleTotalQuantity    DiscountRuleType = "total_quantity"
	RuleProductQuantity  DiscountRuleType = "product_quantity"
	RuleCategoryQuantity DiscountRuleType = "category_quantity"
)

func (t DiscountRuleType) IsValid() bool {
	switch t {
	case RuleTotalQuantity, RuleProductQuantity, RuleCategoryQuantity:
		return true
	}
	return false
}

// DiscountRule grants Percentage off once MinQuantity eligible units are selected.
type DiscountRule struct {
	ID               uint             `gorm:"primaryKey"`
	Name             string           `gorm:"not null"`
	RuleType         DiscountRuleType `gorm:"column:rule_type;not null"`
	MinQuantity      int              `gorm:"not null"`
	Percentage       decimal.Decimal  `gorm:"type:numeric(5,2);not null"`
	ProductTargetID  *string          `gorm:"index"`
	CategoryTargetID *uint            `gorm:"index"`
	IsActive         bool             `gorm:"not null;default:true"`
	CreatedAt        time.Time        `gorm:"autoCreateTime"`
}

func (DiscountRule) TableName() string { return "discount_rules" }
