// Package strategy turns candle series into per-bar trading signals. Two
// built-in strategies are available: a moving-average crossover and an RSI
// mean-reversion.
package strategy

import (
	"github.com/go-playground/validator/v10"

	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/errors"
)

const (
	StrategyTypeMACrossover = "ma_crossover"
	StrategyTypeRSI         = "rsi"
)

// Params holds every tunable of the built-in strategies plus the account
// settings of a run. Zero values are not meaningful; start from
// DefaultParams and overlay.
type Params struct {
	FastWindow    int     `json:"fast_window" yaml:"fast_window" jsonschema:"title=Fast Window,description=Fast moving-average window in bars,default=20,minimum=1" validate:"gte=1"`
	SlowWindow    int     `json:"slow_window" yaml:"slow_window" jsonschema:"title=Slow Window,description=Slow moving-average window in bars,default=50,minimum=1" validate:"gte=1"`
	RSIWindow     int     `json:"rsi_window" yaml:"rsi_window" jsonschema:"title=RSI Window,description=RSI lookback in bars,default=14,minimum=1" validate:"gte=1"`
	RSIOversold   float64 `json:"rsi_oversold" yaml:"rsi_oversold" jsonschema:"title=RSI Oversold,description=Long entry threshold,default=30,minimum=0,maximum=100" validate:"gte=0,lte=100"`
	RSIOverbought float64 `json:"rsi_overbought" yaml:"rsi_overbought" jsonschema:"title=RSI Overbought,description=Long exit threshold,default=70,minimum=0,maximum=100" validate:"gte=0,lte=100"`
	// StopLossPct and TakeProfitPct are fractions of the entry price
	// (0.02 = 2%); zero disables the respective stop.
	StopLossPct    float64 `json:"stop_loss_pct" yaml:"stop_loss_pct" jsonschema:"title=Stop Loss,description=Stop distance as a fraction of the entry price,default=0.02,minimum=0" validate:"gte=0"`
	TakeProfitPct  float64 `json:"take_profit_pct" yaml:"take_profit_pct" jsonschema:"title=Take Profit,description=Target distance as a fraction of the entry price,default=0.04,minimum=0" validate:"gte=0"`
	StrategyType   string  `json:"strategy_type" yaml:"strategy_type" jsonschema:"title=Strategy Type,description=Signal generator to run,default=ma_crossover,enum=ma_crossover,enum=rsi" validate:"required"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital in quote currency,default=10000,minimum=0" validate:"gt=0"`
	// CommissionPct is the fee fraction charged on every fill's order value.
	CommissionPct float64 `json:"commission_pct" yaml:"commission_pct" jsonschema:"title=Commission,description=Fee fraction charged on each fill,default=0.001,minimum=0" validate:"gte=0,lt=1"`
}

// DefaultParams returns the parameter set a request starts from when fields
// are omitted.
func DefaultParams() Params {
	return Params{
		FastWindow:     20,
		SlowWindow:     50,
		RSIWindow:      14,
		RSIOversold:    30,
		RSIOverbought:  70,
		StopLossPct:    0.02,
		TakeProfitPct:  0.04,
		StrategyType:   StrategyTypeMACrossover,
		InitialCapital: 10000,
		CommissionPct:  0.001,
	}
}

// Validate checks field ranges plus the cross-field rules of the selected
// strategy. Unknown strategy types pass here; New rejects them with the
// canonical message.
func (p Params) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid strategy parameters", err)
	}

	switch p.StrategyType {
	case StrategyTypeMACrossover:
		if p.SlowWindow <= p.FastWindow {
			return errors.Newf(errors.ErrCodeInvalidParameter,
				"slow_window (%d) must be greater than fast_window (%d)", p.SlowWindow, p.FastWindow)
		}
	case StrategyTypeRSI:
		if p.RSIOversold >= p.RSIOverbought {
			return errors.Newf(errors.ErrCodeInvalidParameter,
				"rsi_oversold (%.2f) must be less than rsi_overbought (%.2f)", p.RSIOversold, p.RSIOverbought)
		}
	}

	return nil
}

// Strategy produces one signal per bar of the series.
type Strategy interface {
	// Name returns the wire name of the strategy.
	Name() string
	// Signals returns exactly one signal per candle; bars without an
	// actionable condition carry SignalTypeNoAction.
	Signals(symbol string, candles types.CandleSeries, params Params) ([]types.Signal, error)
}

// New returns the strategy registered under the given type name.
func New(strategyType string) (Strategy, error) {
	switch strategyType {
	case StrategyTypeMACrossover:
		return &MACrossover{}, nil
	case StrategyTypeRSI:
		return &RSIReversion{}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownStrategy, "Strategy type '%s' not supported", strategyType)
	}
}
