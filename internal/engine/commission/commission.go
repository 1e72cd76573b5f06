// Package commission prices the fees charged on simulated order fills.
package commission

import "github.com/shopspring/decimal"

type Fee interface {
	// Calculate returns the fee in quote currency for filling the given
	// quantity at the given price.
	Calculate(quantity decimal.Decimal, price decimal.Decimal) decimal.Decimal
}

// PercentageFee charges a flat fraction of the order value, the fee model of
// the spot exchanges this service targets.
type PercentageFee struct {
	rate decimal.Decimal
}

func NewPercentageFee(rate float64) Fee {
	return &PercentageFee{rate: decimal.NewFromFloat(rate)}
}

func (f *PercentageFee) Calculate(quantity decimal.Decimal, price decimal.Decimal) decimal.Decimal {
	return quantity.Mul(price).Mul(f.rate)
}

// ZeroFee charges nothing.
type ZeroFee struct{}

func NewZeroFee() Fee {
	return &ZeroFee{}
}

func (f *ZeroFee) Calculate(quantity decimal.Decimal, price decimal.Decimal) decimal.Decimal {
	return decimal.Zero
}

// ForRate picks the fee model for a commission rate.
func ForRate(rate float64) Fee {
	if rate == 0 {
		return NewZeroFee()
	}

	return NewPercentageFee(rate)
}
