package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency amount in major units (e.g. CZK).
type Amount struct {
	value decimal.Decimal
}

var ErrInvalidAmount = errors.New("amount must be a positive number")

// ParseAmount parses a major-unit amount from its textual form.
// The gateway only accepts positive charges, so zero and negative
// amounts are rejected here.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{value: d}, nil
}

// AmountFromMinorUnits reconstructs a major-unit amount from the
// integer minor-unit representation (haléře for CZK).
func AmountFromMinorUnits(n int64) Amount {
	return Amount{value: decimal.NewFromInt(n).Div(decimal.NewFromInt(100))}
}

// MinorUnits converts the amount to the integer minor-unit form the
// gateway requires: round(value * 100).
func (a Amount) MinorUnits() int64 {
	return a.value.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (a Amount) IsPositive() bool {
	return a.value.IsPositive()
}

func (a Amount) Float64() float64 {
	return a.value.InexactFloat64()
}

func (a Amount) String() string {
	return a.value.StringFixed(2)
}

// FormatCZK renders the amount for display, e.g. 100 -> "100,00 Kč".
func (a Amount) FormatCZK() string {
	return strings.ReplaceAll(a.value.StringFixed(2), ".", ",") + " Kč"
}
