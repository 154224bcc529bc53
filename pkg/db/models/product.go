package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry referenced by cart lines.
type Product struct {
	ID           string              `gorm:"primaryKey"`
	Name         string              `gorm:"not null"`
	Slug         string              `gorm:"uniqueIndex;not null"`
	Image        string              `gorm:"not null;default:''"`
	RegularPrice decimal.Decimal     `gorm:"type:numeric(12,2);not null"`
	DealPrice    decimal.NullDecimal `gorm:"type:numeric(12,2)"`
	DealEndsAt   *time.Time
	CategoryID   *uint     `gorm:"index"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

// OnDeal reports whether the deal price applies at now.
func (p Product) OnDeal(now time.Time) bool {
	return p.DealPrice.Valid && p.DealEndsAt != nil && p.DealEndsAt.After(now)
}

// CurrentPrice is the deal price while the deal runs, the regular price otherwise.
func (p Product) CurrentPrice(now time.Time) decimal.Decimal {
	if p.OnDeal(now) {
		return p.DealPrice.Decimal
	}
	return p.RegularPrice
}
