package model

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Amount is a sum of money in minor units (cents).
type Amount int64

var centsInUnit = decimal.NewFromInt(CentsInUnit)

func NewAmount(units, cents int64) Amount {
	return Amount(units*CentsInUnit + cents)
}

func (a Amount) Cents() int64 {
	return int64(a)
}

func (a Amount) ToDecimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

func (a Amount) String() string {
	return a.ToDecimal().StringFixed(2)
}

// FromDecimal converts major units to cents, rounding half away from zero.
func FromDecimal(amount decimal.Decimal) (Amount, error) {
	if amount.IsNegative() {
		return 0, errors.New("amount must be positive")
	}
	cents := amount.Mul(centsInUnit).Round(0)
	if cents.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, errors.New("amount does not fit in cents")
	}
	return Amount(cents.IntPart()), nil
}

// Fraction returns floor(a * rate) in cents. A non-positive result is zero.
func (a Amount) Fraction(rate decimal.Decimal) Amount {
	v := decimal.NewFromInt(int64(a)).Mul(rate).Floor()
	if !v.IsPositive() {
		return 0
	}
	return Amount(v.IntPart())
}
