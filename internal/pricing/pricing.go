// Package pricing evaluates discount rules against a set of priced lines.
package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/angelmondragon/cartsync/pkg/db/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line is one product and quantity being priced.
type Line struct {
	Product  models.Product
	Quantity int
}

// Input carries everything Calculate needs. Products resolves rule target names for hints.
type Input struct {
	Lines      []Line
	Rules      []models.DiscountRule
	Categories map[uint]models.Category
	Products   map[string]models.Product
	Now        time.Time
}

type LineResult struct {
	ProductID       string
	Quantity        int
	Price           decimal.Decimal
	DiscountedPrice decimal.NullDecimal
}

type Result struct {
	Lines          []LineResult
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
	AppliedRule    string
	UpsellHint     string
}

type stats struct {
	subtotal   decimal.Decimal
	total      int
	byProduct  map[string]int
	byCategory map[uint]int
}

// Calculate applies the single most valuable rule and, when none applies, suggests the
// rule that needs the fewest extra units.
func Calculate(in Input) Result {
	lines := make([]Line, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.Quantity > 0 {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return Result{
			Lines:          []LineResult{},
			Subtotal:       decimal.Zero.Round(2),
			DiscountAmount: decimal.Zero.Round(2),
			FinalTotal:     decimal.Zero.Round(2),
		}
	}

	st := gather(in, lines)

	var (
		best         *models.DiscountRule
		bestDiscount = decimal.Zero
	)
	for i := range in.Rules {
		rule := &in.Rules[i]
		if d := discountFor(in, lines, st, rule); d.GreaterThan(bestDiscount) {
			best, bestDiscount = rule, d
		}
	}

	res := Result{
		Lines:          make([]LineResult, 0, len(lines)),
		Subtotal:       st.subtotal.Round(2),
		DiscountAmount: bestDiscount.Round(2),
		FinalTotal:     st.subtotal.Sub(bestDiscount).Round(2),
	}
	for _, l := range lines {
		price := l.Product.CurrentPrice(in.Now)
		lr := LineResult{ProductID: l.Product.ID, Quantity: l.Quantity, Price: price}
		if best != nil && covers(in, best, l.Product) {
			multiplier := hundred.Sub(best.Percentage).Div(hundred)
			lr.DiscountedPrice = decimal.NewNullDecimal(price.Mul(multiplier).Round(2))
		}
		res.Lines = append(res.Lines, lr)
	}
	if best != nil {
		res.AppliedRule = best.Name
	} else {
		res.UpsellHint = hint(in, st)
	}
	return res
}

func gather(in Input, lines []Line) stats {
	st := stats{
		subtotal:   decimal.Zero,
		byProduct:  map[string]int{},
		byCategory: map[uint]int{},
	}
	for _, l := range lines {
		st.subtotal = st.subtotal.Add(l.Product.CurrentPrice(in.Now).Mul(decimal.NewFromInt(int64(l.Quantity))))
		st.total += l.Quantity
		st.byProduct[l.Product.ID] += l.Quantity
		for _, id := range ancestry(in.Categories, l.Product.CategoryID) {
			st.byCategory[id] += l.Quantity
		}
	}
	return st
}

// ancestry lists the category and all of its parents, stopping at a cycle.
func ancestry(categories map[uint]models.Category, start *uint) []uint {
	var out []uint
	seen := map[uint]bool{}
	for cur := start; cur != nil && !seen[*cur]; {
		seen[*cur] = true
		out = append(out, *cur)
		c, ok := categories[*cur]
		if !ok {
			break
		}
		cur = c.ParentID
	}
	return out
}

func inCategory(categories map[uint]models.Category, p models.Product, target uint) bool {
	for _, id := range ancestry(categories, p.CategoryID) {
		if id == target {
			return true
		}
	}
	return false
}

func covers(in Input, rule *models.DiscountRule, p models.Product) bool {
	switch rule.RuleType {
	case models.RuleTotalQuantity:
		return true
	case models.RuleProductQuantity:
		return rule.ProductTargetID != nil && *rule.ProductTargetID == p.ID
	case models.RuleCategoryQuantity:
		return rule.CategoryTargetID != nil && inCategory(in.Categories, p, *rule.CategoryTargetID)
	}
	return false
}

func eligibleUnits(st stats, rule *models.DiscountRule) (int, bool) {
	switch rule.RuleType {
	case models.RuleTotalQuantity:
		return st.total, true
	case models.RuleProductQuantity:
		if rule.ProductTargetID == nil {
			return 0, false
		}
		return st.byProduct[*rule.ProductTargetID], true
	case models.RuleCategoryQuantity:
		if rule.CategoryTargetID == nil {
			return 0, false
		}
		return st.byCategory[*rule.CategoryTargetID], true
	}
	return 0, false
}

func discountFor(in Input, lines []Line, st stats, rule *models.DiscountRule) decimal.Decimal {
	units, ok := eligibleUnits(st, rule)
	if !ok || units < rule.MinQuantity {
		return decimal.Zero
	}
	base := decimal.Zero
	for _, l := range lines {
		if covers(in, rule, l.Product) {
			base = base.Add(l.Product.CurrentPrice(in.Now).Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	return base.Mul(rule.Percentage).Div(hundred)
}

func hint(in Input, st stats) string {
	var (
		best   string
		fewest = math.MaxInt
	)
	for i := range in.Rules {
		rule := &in.Rules[i]
		units, ok := eligibleUnits(st, rule)
		if !ok {
			continue
		}
		needed := rule.MinQuantity - units
		if needed <= 0 || needed >= fewest {
			continue
		}
		var text string
		switch rule.RuleType {
		case models.RuleTotalQuantity:
			text = fmt.Sprintf("Add %d more items of any product to get %s%% off!", needed, rule.Percentage.String())
		case models.RuleProductQuantity:
			target, found := in.Products[*rule.ProductTargetID]
			if !found {
				continue
			}
			text = fmt.Sprintf("Add %d more of «%s» to get %s%% off!", needed, target.Name, rule.Percentage.String())
		case models.RuleCategoryQuantity:
			target, found := in.Categories[*rule.CategoryTargetID]
			if !found {
				continue
			}
			text = fmt.Sprintf("Add %d more from «%s» to get %s%% off!", needed, target.Name, rule.Percentage.String())
		}
		best, fewest = text, needed
	}
	return best
}
