package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CommissionTestSuite struct {
	suite.Suite
}

func TestCommissionSuite(t *testing.T) {
	suite.Run(t, new(CommissionTestSuite))
}

func (suite *CommissionTestSuite) TestZeroFee() {
	fee := NewZeroFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		price    float64
	}{
		{"zero quantity", 0, 100},
		{"small order", 10, 50},
		{"large order", 10000, 25000},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(decimal.NewFromFloat(tc.quantity), decimal.NewFromFloat(tc.price))
			suite.True(result.IsZero())
		})
	}
}

func (suite *CommissionTestSuite) TestPercentageFee() {
	fee := NewPercentageFee(0.001)
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		price    float64
		expected string
	}{
		{"zero quantity", 0, 100, "0"},
		{"unit order", 1, 100, "0.1"},     // 0.001 * 100
		{"larger order", 50, 200, "10"},   // 0.001 * 10000
		{"fractional qty", 0.5, 40, "0.02"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(decimal.NewFromFloat(tc.quantity), decimal.NewFromFloat(tc.price))
			suite.True(result.Equal(decimal.RequireFromString(tc.expected)),
				"expected %s, got %s", tc.expected, result.String())
		})
	}
}

func (suite *CommissionTestSuite) TestForRate() {
	zero := ForRate(0)
	suite.IsType(&ZeroFee{}, zero)

	pct := ForRate(0.001)
	suite.IsType(&PercentageFee{}, pct)

	value := pct.Calculate(decimal.NewFromInt(10), decimal.NewFromInt(1000))
	suite.True(value.Equal(decimal.NewFromInt(10)))
}
