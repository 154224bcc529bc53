package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount serialized as a string with two decimal places.
type Money decimal.Decimal

func NewMoney(d decimal.Decimal) Money {
	return Money(d.Round(2))
}

// NewMoneyPtr returns nil for an invalid NullDecimal.
func NewMoneyPtr(d decimal.NullDecimal) *Money {
	if !d.Valid {
		return nil
	}
	m := NewMoney(d.Decimal)
	return &m
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.Decimal(m)
}

func (m Money) String() string {
	return decimal.Decimal(m).StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts quoted strings and bare numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// NullDecimal converts an optional amount back to the decimal form.
func (m *Money) NullDecimal() decimal.NullDecimal {
	if m == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(m.Decimal())
}
