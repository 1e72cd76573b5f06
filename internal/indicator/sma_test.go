package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type SMATestSuite struct {
	suite.Suite
}

func TestSMASuite(t *testing.T) {
	suite.Run(t, new(SMATestSuite))
}

func (suite *SMATestSuite) TestSMA() {
	values := []float64{1, 2, 3, 4, 5}
	result := SMA(values, 3)

	suite.Len(result, 5)
	suite.True(math.IsNaN(result[0]))
	suite.True(math.IsNaN(result[1]))
	suite.InDelta(2.0, result[2], 1e-9)
	suite.InDelta(3.0, result[3], 1e-9)
	suite.InDelta(4.0, result[4], 1e-9)
}

func (suite *SMATestSuite) TestSMAWindowOne() {
	values := []float64{10, 20, 30}
	result := SMA(values, 1)

	suite.Equal(values, result)
}

func (suite *SMATestSuite) TestSMAWindowLargerThanSeries() {
	result := SMA([]float64{1, 2, 3}, 10)

	suite.Len(result, 3)
	for _, v := range result {
		suite.True(math.IsNaN(v))
	}
}

func (suite *SMATestSuite) TestSMAInvalidWindow() {
	result := SMA([]float64{1, 2, 3}, 0)

	for _, v := range result {
		suite.True(math.IsNaN(v))
	}
}

func (suite *SMATestSuite) TestSMAEmptySeries() {
	suite.Empty(SMA(nil, 3))
}

func (suite *SMATestSuite) TestSMARollingSumStability() {
	// A long constant series must not drift from accumulated rounding.
	values := make([]float64, 10000)
	for i := range values {
		values[i] = 0.1
	}

	result := SMA(values, 50)
	suite.InDelta(0.1, result[len(result)-1], 1e-9)
}

func BenchmarkSMA(b *testing.B) {
	values := make([]float64, 100000)
	for i := range values {
		values[i] = float64(i % 100)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		SMA(values, 50)
	}
}
