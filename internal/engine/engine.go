// Package engine simulates strategy executions over candle series and
// aggregates performance statistics.
//
// The simulator is long-only with a single position sized from the full cash
// balance. Entries and signal exits fill at bar close; protective stops fill
// intrabar, with a bar that gaps past its stop level filling at the open.
// Money flows through shopspring/decimal and converts to float64 only at the
// wire boundary.
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marketloop/backtestd/internal/engine/commission"
	"github.com/marketloop/backtestd/internal/logger"
	"github.com/marketloop/backtestd/internal/strategy"
	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/errors"
)

// DefaultDecimalPlaces is the quantity precision used when none is configured.
const DefaultDecimalPlaces = 8

// Engine runs strategy simulations over candle series.
type Engine struct {
	logger        *logger.Logger
	maxCandles    int
	decimalPlaces int32
}

// NewEngine builds an engine. maxCandles of 0 disables the series length
// limit.
func NewEngine(log *logger.Logger, maxCandles int, decimalPlaces int32) *Engine {
	if decimalPlaces <= 0 {
		decimalPlaces = DefaultDecimalPlaces
	}

	return &Engine{
		logger:        log,
		maxCandles:    maxCandles,
		decimalPlaces: decimalPlaces,
	}
}

// RunInput carries one simulation request. Candles may arrive in any order;
// Run sorts them by timestamp in place before simulating.
type RunInput struct {
	Symbol    string
	Timeframe types.Timeframe
	Candles   types.CandleSeries
	Params    strategy.Params
	// OnBar, when set, is called synchronously after each simulated bar
	// with the 1-based bar index and the series length.
	OnBar func(current, total int)
}

// RunResult is the simulator output before persistence.
type RunResult struct {
	Summary     types.Summary
	Trades      []types.Trade
	Equity      []types.EquityPoint
	FinalEquity float64
}

// Run simulates the strategy over the candle series.
//
// Position rules: when flat, an entry signal opens a long at that bar's close
// with the full cash balance. While in a position, each later bar is checked
// in priority order for the stop-loss (low at or below the stop level, filled
// at the lower of stop price and open), the take-profit (high at or above the
// target, filled at the higher of target and open), and finally the exit
// signal at the close. Stops are never evaluated on the entry bar itself. A
// bar whose stop closed the position can re-enter at its own close if it also
// carries an entry signal. A position still open after the final bar is
// reported as an open trade marked to market.
func (e *Engine) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	started := time.Now()

	if err := input.Candles.Validate(); err != nil {
		return nil, err
	}

	if e.maxCandles > 0 && len(input.Candles) > e.maxCandles {
		return nil, errors.Newf(errors.ErrCodeInvalidRequest,
			"series of %d candles exceeds the configured limit of %d", len(input.Candles), e.maxCandles)
	}

	if err := input.Params.Validate(); err != nil {
		return nil, err
	}

	st, err := strategy.New(input.Params.StrategyType)
	if err != nil {
		return nil, err
	}

	input.Candles.SortByTime()

	signals, err := st.Signals(input.Symbol, input.Candles, input.Params)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSignalFailed, "signal computation failed", err)
	}

	book := newPortfolio(input.Symbol, input.Params.InitialCapital, commission.ForRate(input.Params.CommissionPct), e.decimalPlaces)

	one := decimal.NewFromInt(1)
	stopFactor := one.Sub(decimal.NewFromFloat(input.Params.StopLossPct))
	targetFactor := one.Add(decimal.NewFromFloat(input.Params.TakeProfitPct))
	stopEnabled := input.Params.StopLossPct > 0
	targetEnabled := input.Params.TakeProfitPct > 0

	equity := make([]types.EquityPoint, 0, len(input.Candles))

	for i, candle := range input.Candles {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodeBacktestCanceled, "backtest canceled", ctx.Err())
		default:
		}

		closePrice := decimal.NewFromFloat(candle.Close)

		if book.inPosition() && i > book.position.entryIndex {
			exited := false

			if stopEnabled {
				stopPrice := book.position.entryPrice.Mul(stopFactor)
				if decimal.NewFromFloat(candle.Low).LessThanOrEqual(stopPrice) {
					fill := decimal.Min(stopPrice, decimal.NewFromFloat(candle.Open))
					book.exit(candle.Timestamp, fill, types.ExitReasonStopLoss)

					exited = true
				}
			}

			if !exited && targetEnabled {
				targetPrice := book.position.entryPrice.Mul(targetFactor)
				if decimal.NewFromFloat(candle.High).GreaterThanOrEqual(targetPrice) {
					fill := decimal.Max(targetPrice, decimal.NewFromFloat(candle.Open))
					book.exit(candle.Timestamp, fill, types.ExitReasonTakeProfit)

					exited = true
				}
			}

			if !exited && signals[i].Type == types.SignalTypeExitLong {
				book.exit(candle.Timestamp, closePrice, types.ExitReasonSignal)
			}
		}

		if !book.inPosition() && signals[i].Type == types.SignalTypeEntryLong {
			book.enter(i, candle.Timestamp, closePrice)
		}

		equity = append(equity, types.EquityPoint{Timestamp: candle.Timestamp, Value: book.equity(closePrice)})

		if input.OnBar != nil {
			input.OnBar(i+1, len(input.Candles))
		}
	}

	lastClose := decimal.NewFromFloat(input.Candles[len(input.Candles)-1].Close)
	book.markOpen(lastClose)

	finalEquity := equity[len(equity)-1].Value
	summary := Summarize(input.Params.InitialCapital, equity, book.trades, e.periodsPerYear(input), time.Since(started).Seconds())

	e.logger.Debug("backtest run complete",
		zap.String("symbol", input.Symbol),
		zap.String("strategy", input.Params.StrategyType),
		zap.Int("candles", len(input.Candles)),
		zap.Int("trades", len(book.trades)),
		zap.Float64("total_return_pct", summary.TotalReturnPct),
		zap.Duration("duration", time.Since(started)),
	)

	return &RunResult{
		Summary:     summary,
		Trades:      book.trades,
		Equity:      equity,
		FinalEquity: finalEquity,
	}, nil
}

// periodsPerYear derives the annualization factor from the declared
// timeframe, falling back to the observed bar spacing when the timeframe does
// not parse.
func (e *Engine) periodsPerYear(input RunInput) float64 {
	if periods, err := input.Timeframe.PeriodsPerYear(); err == nil {
		return periods
	}

	return types.PeriodsPerYearFromInterval(input.Candles.MedianInterval())
}
