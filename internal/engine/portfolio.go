package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/marketloop/backtestd/internal/engine/commission"
	"github.com/marketloop/backtestd/internal/types"
)

var hundred = decimal.NewFromInt(100)

// position is the single open long lot, tracked at decimal precision until
// it is closed out into a wire trade.
type position struct {
	entryIndex int
	entryTime  time.Time
	entryPrice decimal.Decimal
	quantity   decimal.Decimal
	cost       decimal.Decimal
	entryFee   decimal.Decimal
}

// costBasis is what the position consumed from cash, entry fee included.
// Trade pnl is measured against it.
func (p *position) costBasis() decimal.Decimal {
	return p.cost.Add(p.entryFee)
}

// portfolio holds the cash ledger and trade log of one simulation run.
type portfolio struct {
	symbol        string
	cash          decimal.Decimal
	fee           commission.Fee
	decimalPlaces int32
	position      *position
	trades        []types.Trade
}

func newPortfolio(symbol string, initialCapital float64, fee commission.Fee, decimalPlaces int32) *portfolio {
	return &portfolio{
		symbol:        symbol,
		cash:          decimal.NewFromFloat(initialCapital),
		fee:           fee,
		decimalPlaces: decimalPlaces,
		trades:        []types.Trade{},
	}
}

func (p *portfolio) inPosition() bool {
	return p.position != nil
}

// enter opens a long position at price with the full cash balance. A quantity
// that floors to zero at the configured precision leaves the portfolio flat.
func (p *portfolio) enter(barIndex int, at time.Time, price decimal.Decimal) {
	quantity := floorToPlaces(maxQuantity(p.cash, price, p.fee), p.decimalPlaces)
	if quantity.Sign() <= 0 {
		return
	}

	cost := quantity.Mul(price)
	entryFee := p.fee.Calculate(quantity, price)

	p.cash = p.cash.Sub(cost).Sub(entryFee)
	p.position = &position{
		entryIndex: barIndex,
		entryTime:  at,
		entryPrice: price,
		quantity:   quantity,
		cost:       cost,
		entryFee:   entryFee,
	}
}

// exit closes the open position at price and records the completed trade.
// Must not be called while flat.
func (p *portfolio) exit(at time.Time, price decimal.Decimal, reason types.ExitReason) {
	pos := p.position
	proceeds := pos.quantity.Mul(price)
	exitFee := p.fee.Calculate(pos.quantity, price)

	p.cash = p.cash.Add(proceeds).Sub(exitFee)

	pnl := proceeds.Sub(exitFee).Sub(pos.costBasis())
	pnlPct := pnl.Div(pos.costBasis()).Mul(hundred)

	p.trades = append(p.trades, types.Trade{
		ID:         uuid.New().String(),
		Symbol:     p.symbol,
		Side:       types.SideBuy,
		EntryTime:  pos.entryTime,
		ExitTime:   optional.Some(at),
		EntryPrice: pos.entryPrice.InexactFloat64(),
		ExitPrice:  optional.Some(price.InexactFloat64()),
		Quantity:   pos.quantity.InexactFloat64(),
		PnL:        pnl.InexactFloat64(),
		PnLPercent: pnlPct.InexactFloat64(),
		ExitReason: optional.Some(reason),
		Status:     types.TradeStatusClosed,
	})
	p.position = nil
}

// markOpen appends the still-open position to the trade log as an open trade,
// marked to market against the final close. The position itself is left in
// place so equity stays consistent.
func (p *portfolio) markOpen(lastClose decimal.Decimal) {
	pos := p.position
	if pos == nil {
		return
	}

	pnl := pos.quantity.Mul(lastClose).Sub(pos.costBasis())
	pnlPct := pnl.Div(pos.costBasis()).Mul(hundred)

	p.trades = append(p.trades, types.Trade{
		ID:         uuid.New().String(),
		Symbol:     p.symbol,
		Side:       types.SideBuy,
		EntryTime:  pos.entryTime,
		EntryPrice: pos.entryPrice.InexactFloat64(),
		Quantity:   pos.quantity.InexactFloat64(),
		PnL:        pnl.InexactFloat64(),
		PnLPercent: pnlPct.InexactFloat64(),
		Status:     types.TradeStatusOpen,
	})
}

// equity values the portfolio at a close price: cash plus the open position
// marked at that price.
func (p *portfolio) equity(close decimal.Decimal) float64 {
	value := p.cash
	if p.position != nil {
		value = value.Add(p.position.quantity.Mul(close))
	}

	return value.InexactFloat64()
}
