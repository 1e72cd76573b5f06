// Package api holds the wire types of the HTTP surface: request and
// response bodies and the JSON schema describing them. Handlers in the
// server package translate between these shapes and the engine, store,
// and risk layers.
package api

import (
	"encoding/json"

	"github.com/marketloop/backtestd/internal/strategy"
	"github.com/marketloop/backtestd/internal/types"
)

// DefaultSymbol is assumed when a request names no instrument.
const DefaultSymbol = "BTC/USDT"

// BacktestRequest is the POST /run-backtest body. Every field is optional
// except candles; omitted fields take the documented defaults, including
// individual strategy_params keys.
type BacktestRequest struct {
	Candles        types.CandleSeries `json:"candles"`
	StrategyParams strategy.Params    `json:"strategy_params"`
	Symbol         string             `json:"symbol"`
	Timeframe      types.Timeframe    `json:"timeframe"`
}

// UnmarshalJSON decodes over a fully defaulted request, so keys absent from
// the body keep their default instead of the Go zero value.
func (r *BacktestRequest) UnmarshalJSON(data []byte) error {
	type plain BacktestRequest
	request := plain{
		StrategyParams: strategy.DefaultParams(),
		Symbol:         DefaultSymbol,
		Timeframe:      types.Timeframe15m,
	}
	if err := json.Unmarshal(data, &request); err != nil {
		return err
	}

	*r = BacktestRequest(request)

	return nil
}
