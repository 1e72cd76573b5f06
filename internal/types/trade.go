package types

import (
	"encoding/json"
	"time"

	"github.com/moznion/go-optional"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type TradeStatus string

const (
	TradeStatusOpen   TradeStatus = "open"
	TradeStatusClosed TradeStatus = "closed"
)

// ExitReason records what closed a trade.
type ExitReason string

const (
	ExitReasonSignal     ExitReason = "signal"
	ExitReasonStopLoss   ExitReason = "stop_loss"
	ExitReasonTakeProfit ExitReason = "take_profit"
)

// Trade is one round trip, or a still-open position, produced by a backtest.
// PnL of a closed trade is net of entry and exit commission; an open trade
// is marked to market against the last close.
type Trade struct {
	ID         string
	Symbol     string
	Side       Side
	EntryTime  time.Time
	ExitTime   optional.Option[time.Time]
	EntryPrice float64
	ExitPrice  optional.Option[float64]
	Quantity   float64
	PnL        float64
	PnLPercent float64
	ExitReason optional.Option[ExitReason]
	Status     TradeStatus
}

// tradeJSON is the wire form: camelCase keys, times as Unix milliseconds,
// open trades carry null exit fields.
type tradeJSON struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Side       Side        `json:"side"`
	EntryTime  int64       `json:"entryTime"`
	ExitTime   *int64      `json:"exitTime"`
	EntryPrice float64     `json:"entryPrice"`
	ExitPrice  *float64    `json:"exitPrice"`
	Quantity   float64     `json:"quantity"`
	PnL        float64     `json:"pnl"`
	PnLPercent float64     `json:"pnlPercent"`
	Status     TradeStatus `json:"status"`
}

// MarshalJSON implements json.Marshaler.
func (t Trade) MarshalJSON() ([]byte, error) {
	wire := tradeJSON{
		ID:         t.ID,
		Symbol:     t.Symbol,
		Side:       t.Side,
		EntryTime:  t.EntryTime.UnixMilli(),
		EntryPrice: t.EntryPrice,
		Quantity:   t.Quantity,
		PnL:        t.PnL,
		PnLPercent: t.PnLPercent,
		Status:     t.Status,
	}

	if t.ExitTime.IsSome() {
		ms := t.ExitTime.Unwrap().UnixMilli()
		wire.ExitTime = &ms
	}

	if t.ExitPrice.IsSome() {
		price := t.ExitPrice.Unwrap()
		wire.ExitPrice = &price
	}

	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Trade) UnmarshalJSON(data []byte) error {
	var wire tradeJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	t.ID = wire.ID
	t.Symbol = wire.Symbol
	t.Side = wire.Side
	t.EntryTime = time.UnixMilli(wire.EntryTime).UTC()
	t.EntryPrice = wire.EntryPrice
	t.Quantity = wire.Quantity
	t.PnL = wire.PnL
	t.PnLPercent = wire.PnLPercent
	t.Status = wire.Status

	t.ExitTime = optional.None[time.Time]()
	if wire.ExitTime != nil {
		t.ExitTime = optional.Some(time.UnixMilli(*wire.ExitTime).UTC())
	}

	t.ExitPrice = optional.None[float64]()
	if wire.ExitPrice != nil {
		t.ExitPrice = optional.Some(*wire.ExitPrice)
	}

	return nil
}

// IsWin reports whether the trade has positive pnl.
func (t Trade) IsWin() bool {
	return t.PnL > 0
}

// IsLoss reports whether the trade has negative pnl.
func (t Trade) IsLoss() bool {
	return t.PnL < 0
}

// EquityPoint is one sample of the portfolio equity curve.
type EquityPoint struct {
	Timestamp time.Time
	Value     float64
}

type equityPointJSON struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// MarshalJSON implements json.Marshaler.
func (p EquityPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(equityPointJSON{
		Timestamp: p.Timestamp.UnixMilli(),
		Value:     p.Value,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *EquityPoint) UnmarshalJSON(data []byte) error {
	var wire equityPointJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	p.Timestamp = time.UnixMilli(wire.Timestamp).UTC()
	p.Value = wire.Value

	return nil
}
