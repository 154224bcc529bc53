package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestProductCurrentPrice(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	p := Product{RegularPrice: decimal.NewFromInt(100)}
	if !p.CurrentPrice(now).Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected regular price without deal")
	}

	p.DealPrice = decimal.NewNullDecimal(decimal.NewFromInt(80))
	p.DealEndsAt = &later
	if !p.CurrentPrice(now).Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected deal price while deal runs")
	}

	p.DealEndsAt = &earlier
	if p.OnDeal(now) {
		t.Fatalf("expired deal should not apply")
	}
}

func TestDiscountRuleTypeIsValid(t *testing.T) {
	for _, rt := range []DiscountRuleType{RuleTotalQuantity, RuleProductQuantity, RuleCategoryQuantity} {
		if !rt.IsValid() {
			t.Fatalf("expected %s to be valid", rt)
		}
	}
	if DiscountRuleType("bogus").IsValid() {
		t.Fatalf("unexpected valid rule type")
	}
}
