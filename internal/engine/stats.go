package engine

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/marketloop/backtestd/internal/types"
)

// Summarize aggregates the performance statistics of a completed run. Win and
// loss counts cover every trade in the log, open positions marked to market
// included; trades with exactly zero pnl count as neither.
func Summarize(initialCapital float64, equity []types.EquityPoint, trades []types.Trade, periodsPerYear float64, executionTime float64) types.Summary {
	finalEquity := initialCapital
	if len(equity) > 0 {
		finalEquity = equity[len(equity)-1].Value
	}

	summary := types.Summary{
		TotalReturn:   finalEquity - initialCapital,
		ProfitFactor:  optional.None[float64](),
		ExecutionTime: executionTime,
	}
	if initialCapital != 0 {
		summary.TotalReturnPct = (finalEquity/initialCapital - 1) * 100
	}

	summary.SharpeRatio = sharpeRatio(equity, periodsPerYear)
	summary.MaxDrawdown, summary.MaxDrawdownPct = maxDrawdown(equity)

	var winSum, lossSum float64

	for _, trade := range trades {
		switch {
		case trade.IsWin():
			summary.WinningTrades++
			winSum += trade.PnL

			if trade.PnL > summary.LargestWin {
				summary.LargestWin = trade.PnL
			}
		case trade.IsLoss():
			summary.LosingTrades++
			lossSum += trade.PnL

			if trade.PnL < summary.LargestLoss {
				summary.LargestLoss = trade.PnL
			}
		}
	}

	summary.TotalTrades = summary.WinningTrades + summary.LosingTrades
	if summary.TotalTrades > 0 {
		summary.WinRate = float64(summary.WinningTrades) / float64(summary.TotalTrades) * 100
	}

	if summary.WinningTrades > 0 {
		summary.AvgWin = winSum / float64(summary.WinningTrades)
	}

	if summary.LosingTrades > 0 {
		summary.AvgLoss = lossSum / float64(summary.LosingTrades)
		// A run with no losing trades has no defined profit factor; it stays
		// None and serializes as null.
		summary.ProfitFactor = optional.Some(winSum / math.Abs(lossSum))
	}

	return summary
}

// sharpeRatio annualizes the mean per-bar equity return over its sample
// standard deviation. Runs that produce fewer than two returns, or whose
// returns have zero variance, score 0.
func sharpeRatio(equity []types.EquityPoint, periodsPerYear float64) float64 {
	if len(equity) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)

	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev == 0 {
			continue
		}

		returns = append(returns, equity[i].Value/prev-1)
	}

	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}

	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}

	variance /= float64(len(returns) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	return mean / std * math.Sqrt(periodsPerYear)
}

// maxDrawdown walks the equity curve tracking the running peak and returns the
// deepest peak-to-trough drop, absolute and as a percentage of its peak. Both
// values are positive magnitudes.
func maxDrawdown(equity []types.EquityPoint) (float64, float64) {
	if len(equity) == 0 {
		return 0, 0
	}

	peak := equity[0].Value

	var maxDrop, maxDropPct float64

	for _, point := range equity {
		if point.Value > peak {
			peak = point.Value
		}

		drop := peak - point.Value
		if drop > maxDrop {
			maxDrop = drop
		}

		if peak > 0 {
			if pct := drop / peak * 100; pct > maxDropPct {
				maxDropPct = pct
			}
		}
	}

	return maxDrop, maxDropPct
}
