package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/marketloop/backtestd/internal/engine/commission"
)

type SizingTestSuite struct {
	suite.Suite
}

func TestSizingSuite(t *testing.T) {
	suite.Run(t, new(SizingTestSuite))
}

func (suite *SizingTestSuite) TestMaxQuantityWithoutFees() {
	quantity := maxQuantity(decimal.NewFromInt(10000), decimal.NewFromInt(100), commission.NewZeroFee())
	suite.True(quantity.Equal(decimal.NewFromInt(100)), "got %s", quantity.String())
}

func (suite *SizingTestSuite) TestMaxQuantityReservesFee() {
	balance := decimal.NewFromInt(10000)
	price := decimal.NewFromInt(100)
	fee := commission.NewPercentageFee(0.001)

	quantity := maxQuantity(balance, price, fee)

	// 10000 / (100 * 1.001)
	suite.InDelta(99.9000999, quantity.InexactFloat64(), 1e-6)

	total := quantity.Mul(price).Add(fee.Calculate(quantity, price))
	suite.True(total.LessThanOrEqual(balance), "total cost %s exceeds balance", total.String())
}

func (suite *SizingTestSuite) TestMaxQuantityEdgeCases() {
	fee := commission.NewZeroFee()

	tests := []struct {
		name    string
		balance float64
		price   float64
	}{
		{"zero balance", 0, 100},
		{"negative balance", -50, 100},
		{"zero price", 10000, 0},
		{"negative price", 10000, -1},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			quantity := maxQuantity(decimal.NewFromFloat(tc.balance), decimal.NewFromFloat(tc.price), fee)
			suite.True(quantity.IsZero())
		})
	}
}

func (suite *SizingTestSuite) TestFlooredQuantityStaysAffordable() {
	balance := decimal.NewFromFloat(1234.56)
	price := decimal.NewFromFloat(7.89)
	fee := commission.NewPercentageFee(0.00075)

	quantity := floorToPlaces(maxQuantity(balance, price, fee), 8)

	total := quantity.Mul(price).Add(fee.Calculate(quantity, price))
	suite.True(total.LessThanOrEqual(balance), "total cost %s exceeds balance %s", total.String(), balance.String())
	suite.True(quantity.Sign() > 0)
}

func (suite *SizingTestSuite) TestFloorToPlaces() {
	tests := []struct {
		name     string
		input    string
		places   int32
		expected string
	}{
		{"truncates extra digits", "90.909090909090909", 8, "90.90909090"},
		{"shorter value unchanged", "1.5", 8, "1.5"},
		{"rounds down not half-up", "0.999999999", 8, "0.99999999"},
		{"integer precision", "123.456", 0, "123"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			got := floorToPlaces(decimal.RequireFromString(tc.input), tc.places)
			suite.True(got.Equal(decimal.RequireFromString(tc.expected)),
				"expected %s, got %s", tc.expected, got.String())
		})
	}
}
