package strategy

import (
	"fmt"
	"math"

	"github.com/marketloop/backtestd/internal/indicator"
	"github.com/marketloop/backtestd/internal/types"
)

// MACrossover signals long entries while the fast moving average sits above
// the slow one and exits while it sits below. Signals are level conditions
// per bar, not edge detections; the engine's position state collapses
// repeated entries into one position.
type MACrossover struct{}

// Name returns the wire name of the strategy.
func (s *MACrossover) Name() string {
	return StrategyTypeMACrossover
}

// Signals implements Strategy.
func (s *MACrossover) Signals(symbol string, candles types.CandleSeries, params Params) ([]types.Signal, error) {
	closes := candles.Closes()
	fast := indicator.SMA(closes, params.FastWindow)
	slow := indicator.SMA(closes, params.SlowWindow)

	signals := make([]types.Signal, len(candles))

	for i := range candles {
		signal := types.Signal{
			Time:      candles[i].Timestamp,
			Type:      types.SignalTypeNoAction,
			Symbol:    symbol,
			Indicator: types.IndicatorTypeSMA,
		}

		switch {
		case math.IsNaN(fast[i]) || math.IsNaN(slow[i]):
			// Warm-up region, either average is undefined.
		case fast[i] > slow[i]:
			signal.Type = types.SignalTypeEntryLong
			signal.Reason = fmt.Sprintf("fast MA above slow MA (fast=%.4f, slow=%.4f)", fast[i], slow[i])
		case fast[i] < slow[i]:
			signal.Type = types.SignalTypeExitLong
			signal.Reason = fmt.Sprintf("fast MA below slow MA (fast=%.4f, slow=%.4f)", fast[i], slow[i])
		}

		signals[i] = signal
	}

	return signals, nil
}
