package strategy

import (
	"fmt"
	"math"

	"github.com/marketloop/backtestd/internal/indicator"
	"github.com/marketloop/backtestd/internal/types"
)

// RSIReversion signals long entries while the RSI reads oversold and exits
// while it reads overbought.
type RSIReversion struct{}

// Name returns the wire name of the strategy.
func (s *RSIReversion) Name() string {
	return StrategyTypeRSI
}

// Signals implements Strategy.
func (s *RSIReversion) Signals(symbol string, candles types.CandleSeries, params Params) ([]types.Signal, error) {
	closes := candles.Closes()
	rsi := indicator.RSI(closes, params.RSIWindow)

	signals := make([]types.Signal, len(candles))

	for i := range candles {
		signal := types.Signal{
			Time:      candles[i].Timestamp,
			Type:      types.SignalTypeNoAction,
			Symbol:    symbol,
			Indicator: types.IndicatorTypeRSI,
		}

		switch {
		case math.IsNaN(rsi[i]):
			// Warm-up region.
		case rsi[i] < params.RSIOversold:
			signal.Type = types.SignalTypeEntryLong
			signal.Reason = fmt.Sprintf("RSI oversold (value=%.2f)", rsi[i])
		case rsi[i] > params.RSIOverbought:
			signal.Type = types.SignalTypeExitLong
			signal.Reason = fmt.Sprintf("RSI overbought (value=%.2f)", rsi[i])
		}

		signals[i] = signal
	}

	return signals, nil
}
