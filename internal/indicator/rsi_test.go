package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) TestRSIWarmup() {
	values := []float64{10, 11, 12, 13, 14, 15}
	result := RSI(values, 3)

	suite.Len(result, 6)
	for i := 0; i < 3; i++ {
		suite.True(math.IsNaN(result[i]), "index %d should be NaN", i)
	}

	for i := 3; i < 6; i++ {
		suite.False(math.IsNaN(result[i]), "index %d should be defined", i)
	}
}

func (suite *RSITestSuite) TestRSIAllGains() {
	values := []float64{10, 11, 12, 13, 14, 15}
	result := RSI(values, 3)

	suite.InDelta(100.0, result[5], 1e-9)
}

func (suite *RSITestSuite) TestRSIAllLosses() {
	values := []float64{15, 14, 13, 12, 11, 10}
	result := RSI(values, 3)

	suite.InDelta(0.0, result[5], 1e-9)
}

func (suite *RSITestSuite) TestRSIWilderSmoothing() {
	// Hand-computed with period 2:
	// changes: +1, -1, +1, -1
	// first averages: gain (1+0)/2 = 0.5, loss (0+1)/2 = 0.5 -> rsi[2] = 50
	// bar 3 (+1): gain (0.5+1)/2 = 0.75, loss 0.5/2 = 0.25 -> rsi[3] = 75
	// bar 4 (-1): gain 0.75/2 = 0.375, loss (0.25+1)/2 = 0.625 -> rsi[4] = 37.5
	values := []float64{10, 11, 10, 11, 10}
	result := RSI(values, 2)

	suite.True(math.IsNaN(result[0]))
	suite.True(math.IsNaN(result[1]))
	suite.InDelta(50.0, result[2], 1e-9)
	suite.InDelta(75.0, result[3], 1e-9)
	suite.InDelta(37.5, result[4], 1e-9)
}

func (suite *RSITestSuite) TestRSIFlatSeries() {
	values := []float64{10, 10, 10, 10, 10}
	result := RSI(values, 2)

	// No losses in the window reads as 100.
	suite.InDelta(100.0, result[4], 1e-9)
}

func (suite *RSITestSuite) TestRSIPeriodTooLong() {
	result := RSI([]float64{1, 2, 3}, 3)

	for _, v := range result {
		suite.True(math.IsNaN(v))
	}
}

func (suite *RSITestSuite) TestRSIInvalidPeriod() {
	result := RSI([]float64{1, 2, 3}, 0)

	for _, v := range result {
		suite.True(math.IsNaN(v))
	}
}

func (suite *RSITestSuite) TestRSIBounds() {
	values := []float64{100, 103, 99, 105, 98, 107, 96, 110, 94, 112}
	result := RSI(values, 3)

	for i := 3; i < len(result); i++ {
		suite.GreaterOrEqual(result[i], 0.0)
		suite.LessOrEqual(result[i], 100.0)
	}
}

func BenchmarkRSI(b *testing.B) {
	values := make([]float64, 100000)
	for i := range values {
		values[i] = 100 + float64(i%7) - float64(i%3)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		RSI(values, 14)
	}
}
