package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/errors"
)

// makeCandles builds a series from closing prices, one bar per 15 minutes.
// Open/high/low hug the close so only close-driven logic fires.
func makeCandles(closes ...float64) types.CandleSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make(types.CandleSeries, len(closes))

	for i, c := range closes {
		candles[i] = types.Candle{
			Timestamp: start.Add(time.Duration(i) * 15 * time.Minute),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1,
		}
	}

	return candles
}

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) TestNew() {
	maStrategy, err := New(StrategyTypeMACrossover)
	suite.NoError(err)
	suite.Equal("ma_crossover", maStrategy.Name())

	rsiStrategy, err := New(StrategyTypeRSI)
	suite.NoError(err)
	suite.Equal("rsi", rsiStrategy.Name())
}

func (suite *StrategyTestSuite) TestNewUnknownType() {
	unknown, err := New("momentum")
	suite.Nil(unknown)
	suite.Error(err)
	suite.Equal("Strategy type 'momentum' not supported", err.(*errors.Error).Message)
	suite.True(errors.HasCode(err, errors.ErrCodeUnknownStrategy))
}

func (suite *StrategyTestSuite) TestDefaultParams() {
	params := DefaultParams()

	suite.Equal(20, params.FastWindow)
	suite.Equal(50, params.SlowWindow)
	suite.Equal(14, params.RSIWindow)
	suite.Equal(30.0, params.RSIOversold)
	suite.Equal(70.0, params.RSIOverbought)
	suite.Equal(0.02, params.StopLossPct)
	suite.Equal(0.04, params.TakeProfitPct)
	suite.Equal(StrategyTypeMACrossover, params.StrategyType)
	suite.Equal(10000.0, params.InitialCapital)
	suite.Equal(0.001, params.CommissionPct)
}

func (suite *StrategyTestSuite) TestParamsValidate() {
	tests := []struct {
		name    string
		mutate  func(p *Params)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(p *Params) {}},
		{
			name:    "fast window must stay below slow window",
			mutate:  func(p *Params) { p.FastWindow = 50; p.SlowWindow = 20 },
			wantErr: "slow_window (20) must be greater than fast_window (50)",
		},
		{
			name:   "window rule only applies to ma_crossover",
			mutate: func(p *Params) { p.StrategyType = StrategyTypeRSI; p.FastWindow = 50; p.SlowWindow = 20 },
		},
		{
			name:    "oversold must stay below overbought",
			mutate:  func(p *Params) { p.StrategyType = StrategyTypeRSI; p.RSIOversold = 80; p.RSIOverbought = 20 },
			wantErr: "rsi_oversold (80.00) must be less than rsi_overbought (20.00)",
		},
		{
			name:    "zero fast window",
			mutate:  func(p *Params) { p.FastWindow = 0 },
			wantErr: "invalid strategy parameters",
		},
		{
			name:    "oversold above 100",
			mutate:  func(p *Params) { p.StrategyType = StrategyTypeRSI; p.RSIOversold = 150 },
			wantErr: "invalid strategy parameters",
		},
		{
			name:    "negative stop loss",
			mutate:  func(p *Params) { p.StopLossPct = -0.1 },
			wantErr: "invalid strategy parameters",
		},
		{
			name:    "zero initial capital",
			mutate:  func(p *Params) { p.InitialCapital = 0 },
			wantErr: "invalid strategy parameters",
		},
		{
			name:    "commission of one would make sizing impossible",
			mutate:  func(p *Params) { p.CommissionPct = 1 },
			wantErr: "invalid strategy parameters",
		},
		{
			name:    "empty strategy type",
			mutate:  func(p *Params) { p.StrategyType = "" },
			wantErr: "invalid strategy parameters",
		},
		{
			name:   "unknown strategy type passes validation",
			mutate: func(p *Params) { p.StrategyType = "momentum" },
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			params := DefaultParams()
			tc.mutate(&params)

			err := params.Validate()
			if tc.wantErr == "" {
				suite.NoError(err)
			} else {
				suite.Error(err)
				suite.Contains(err.Error(), tc.wantErr)
			}
		})
	}
}
