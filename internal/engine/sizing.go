package engine

import (
	"github.com/shopspring/decimal"

	"github.com/marketloop/backtestd/internal/engine/commission"
)

// maxQuantity calculates the maximum quantity that can be bought with the
// given balance at the given price once the commission on the fill is
// accounted for.
func maxQuantity(balance decimal.Decimal, price decimal.Decimal, fee commission.Fee) decimal.Decimal {
	if price.Sign() <= 0 || balance.Sign() <= 0 {
		return decimal.Zero
	}

	// Initial estimate ignoring fees.
	quantity := balance.Div(price)

	// Iteratively refine by accounting for fees. Usually converges in one
	// pass; cap the iterations regardless.
	for i := 0; i < 10; i++ {
		total := quantity.Mul(price).Add(fee.Calculate(quantity, price))
		if total.LessThanOrEqual(balance) {
			break
		}

		quantity = quantity.Mul(balance.Div(total))
	}

	return quantity
}

// floorToPlaces truncates a quantity to the given decimal precision. Sizing
// always rounds down so an order never costs more than the available cash.
func floorToPlaces(quantity decimal.Decimal, places int32) decimal.Decimal {
	return quantity.RoundFloor(places)
}
