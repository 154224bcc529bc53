package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyMarshalsTwoPlaces(t *testing.T) {
	out, err := json.Marshal(SelectionPricing{
		Subtotal:       NewMoney(decimal.RequireFromString("10.5")),
		DiscountAmount: NewMoney(decimal.Zero),
		FinalTotal:     NewMoney(decimal.RequireFromString("10.499")),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"subtotal":"10.50","discount_amount":"0.00","final_total":"10.50"}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestMoneyUnmarshalAcceptsStringsAndNumbers(t *testing.T) {
	var item CartItem
	if err := json.Unmarshal([]byte(`{"product":{"id":"1","price":12.3},"quantity":2,"original_price":"12.30","discounted_price":null}`), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !item.Product.Price.Decimal().Equal(decimal.RequireFromString("12.3")) {
		t.Fatalf("unexpected price %s", item.Product.Price)
	}
	if item.DiscountedPrice != nil {
		t.Fatalf("expected nil discounted price")
	}
	if item.DiscountedPrice.NullDecimal().Valid {
		t.Fatalf("expected invalid null decimal")
	}

	if err := json.Unmarshal([]byte(`{"discounted_price":"9.99"}`), &item); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := item.DiscountedPrice.NullDecimal(); !got.Valid || got.Decimal.String() != "9.99" {
		t.Fatalf("unexpected discounted price %+v", got)
	}
}
