package api

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/marketloop/backtestd/internal/strategy"
)

// candleWire spells out the millisecond wire form of a bar for schema
// generation. Reflecting types.Candle directly would report the timestamp
// as a date-time string, which is not what travels on the wire.
type candleWire struct {
	Timestamp int64   `json:"timestamp" jsonschema:"title=Timestamp,description=Bar open time in Unix milliseconds"`
	Open      float64 `json:"open" jsonschema:"minimum=0"`
	High      float64 `json:"high" jsonschema:"minimum=0"`
	Low       float64 `json:"low" jsonschema:"minimum=0"`
	Close     float64 `json:"close" jsonschema:"minimum=0"`
	Volume    float64 `json:"volume" jsonschema:"minimum=0"`
}

// backtestRequestWire mirrors BacktestRequest with schema-friendly field
// types.
type backtestRequestWire struct {
	Candles        []candleWire    `json:"candles" jsonschema:"required,minItems=1,title=Candles,description=OHLCV series sorted or unsorted"`
	StrategyParams strategy.Params `json:"strategy_params" jsonschema:"title=Strategy Parameters"`
	Symbol         string          `json:"symbol" jsonschema:"title=Symbol,default=BTC/USDT"`
	Timeframe      string          `json:"timeframe" jsonschema:"title=Timeframe,description=Bar interval such as 15m or 1h,default=15m"`
}

// BacktestRequestSchema renders the JSON schema of the POST /run-backtest
// body.
func BacktestRequestSchema() (string, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
	}

	schema := reflector.Reflect(&backtestRequestWire{})
	schema.Title = "backtest-request"
	schema.Description = "Request body for POST /run-backtest"

	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
