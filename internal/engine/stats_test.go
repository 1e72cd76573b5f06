package engine

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/marketloop/backtestd/internal/types"
)

type StatsTestSuite struct {
	suite.Suite
}

func TestStatsSuite(t *testing.T) {
	suite.Run(t, new(StatsTestSuite))
}

func equityCurve(values []float64) []types.EquityPoint {
	base := time.Date(2023, 11, 3, 10, 0, 0, 0, time.UTC)
	points := make([]types.EquityPoint, len(values))

	for i, v := range values {
		points[i] = types.EquityPoint{
			Timestamp: base.Add(time.Duration(i) * 15 * time.Minute),
			Value:     v,
		}
	}

	return points
}

func closedTrade(pnl float64) types.Trade {
	return types.Trade{
		ID:     "t",
		Symbol: "BTC/USDT",
		Side:   types.SideBuy,
		PnL:    pnl,
		Status: types.TradeStatusClosed,
	}
}

func (suite *StatsTestSuite) TestSummarizeCounts() {
	trades := []types.Trade{
		closedTrade(10),
		closedTrade(30),
		closedTrade(-5),
		closedTrade(-15),
		closedTrade(0),
	}

	summary := Summarize(10000, equityCurve([]float64{10000, 10020}), trades, 35040, 0.001)

	suite.Equal(4, summary.TotalTrades, "zero-pnl trades count as neither win nor loss")
	suite.Equal(2, summary.WinningTrades)
	suite.Equal(2, summary.LosingTrades)
	suite.InDelta(50.0, summary.WinRate, 1e-9)
	suite.InDelta(20.0, summary.AvgWin, 1e-9)
	suite.InDelta(-10.0, summary.AvgLoss, 1e-9)
	suite.InDelta(30.0, summary.LargestWin, 1e-9)
	suite.InDelta(-15.0, summary.LargestLoss, 1e-9)

	suite.Require().True(summary.ProfitFactor.IsSome())
	suite.InDelta(2.0, summary.ProfitFactor.Unwrap(), 1e-9)

	suite.InDelta(20.0, summary.TotalReturn, 1e-9)
	suite.InDelta(0.2, summary.TotalReturnPct, 1e-9)
	suite.InDelta(0.001, summary.ExecutionTime, 1e-12)
}

func (suite *StatsTestSuite) TestSummarizeProfitFactorUndefinedWithoutLosses() {
	trades := []types.Trade{closedTrade(10), closedTrade(5)}

	summary := Summarize(10000, equityCurve([]float64{10000, 10015}), trades, 35040, 0)

	suite.True(summary.ProfitFactor.IsNone())
	suite.Zero(summary.AvgLoss)
	suite.Zero(summary.LargestLoss)
}

func (suite *StatsTestSuite) TestSummarizeAllLosses() {
	trades := []types.Trade{closedTrade(-10), closedTrade(-30)}

	summary := Summarize(10000, equityCurve([]float64{10000, 9960}), trades, 35040, 0)

	suite.Equal(2, summary.TotalTrades)
	suite.Zero(summary.WinRate)

	suite.Require().True(summary.ProfitFactor.IsSome())
	suite.Zero(summary.ProfitFactor.Unwrap())
}

func (suite *StatsTestSuite) TestSummarizeEmptyEquity() {
	summary := Summarize(10000, nil, nil, 35040, 0)

	suite.Zero(summary.TotalReturn)
	suite.Zero(summary.TotalReturnPct)
	suite.Zero(summary.SharpeRatio)
	suite.Zero(summary.MaxDrawdown)
	suite.Zero(summary.TotalTrades)
	suite.True(summary.ProfitFactor.IsNone())
}

func (suite *StatsTestSuite) TestSharpeRatio() {
	// Returns 0.1 and -0.05: mean 0.025, sample std 0.10606602. Annualized
	// with 4 periods per year the ratio is 0.025/0.10606602*2.
	points := equityCurve([]float64{100, 110, 104.5})
	suite.InDelta(0.4714045, sharpeRatio(points, 4), 1e-6)
}

func (suite *StatsTestSuite) TestSharpeRatioZeroVariance() {
	points := equityCurve([]float64{100, 110, 121})
	suite.Zero(sharpeRatio(points, 35040))
}

func (suite *StatsTestSuite) TestSharpeRatioTooShort() {
	suite.Zero(sharpeRatio(equityCurve([]float64{100, 110}), 35040))
	suite.Zero(sharpeRatio(equityCurve([]float64{100}), 35040))
	suite.Zero(sharpeRatio(nil, 35040))
}

func (suite *StatsTestSuite) TestMaxDrawdown() {
	tests := []struct {
		name    string
		equity  []float64
		wantAbs float64
		wantPct float64
	}{
		{
			name:    "single dip",
			equity:  []float64{100, 120, 90, 95, 130, 117},
			wantAbs: 30,
			wantPct: 25,
		},
		{
			// The deepest absolute drop and the deepest relative drop happen
			// at different points of the curve.
			name:    "abs and pct peaks differ",
			equity:  []float64{100, 50, 1000, 800},
			wantAbs: 200,
			wantPct: 50,
		},
		{
			name:    "monotonic rise",
			equity:  []float64{100, 110, 120},
			wantAbs: 0,
			wantPct: 0,
		},
		{
			name:    "empty",
			equity:  nil,
			wantAbs: 0,
			wantPct: 0,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			abs, pct := maxDrawdown(equityCurve(tc.equity))
			suite.InDelta(tc.wantAbs, abs, 1e-9)
			suite.InDelta(tc.wantPct, pct, 1e-9)
		})
	}
}

func (suite *StatsTestSuite) TestDrawdownMagnitudesArePositive() {
	abs, pct := maxDrawdown(equityCurve([]float64{10000, 8000, 9000}))
	suite.Greater(abs, 0.0)
	suite.Greater(pct, 0.0)
	suite.InDelta(2000.0, abs, 1e-9)
	suite.InDelta(20.0, pct, 1e-9)
}

func (suite *StatsTestSuite) TestSummarizeOpenTradeIncluded() {
	open := types.Trade{
		ID:     "o",
		Symbol: "BTC/USDT",
		Side:   types.SideBuy,
		PnL:    42.5,
		Status: types.TradeStatusOpen,
	}
	open.ExitTime = optional.None[time.Time]()

	summary := Summarize(10000, equityCurve([]float64{10000, 10042.5}), []types.Trade{open}, 35040, 0)

	suite.Equal(1, summary.TotalTrades)
	suite.Equal(1, summary.WinningTrades)
	suite.InDelta(42.5, summary.AvgWin, 1e-9)
}
