package types

import "time"

// BacktestRun is a persisted backtest: its identity, inputs, aggregate
// summary, and the per-trade and per-bar detail needed to rebuild the
// response or assess risk later.
type BacktestRun struct {
	ID             string
	CreatedAt      time.Time
	Symbol         string
	Timeframe      Timeframe
	Strategy       string
	InitialCapital float64
	FinalEquity    float64
	CandleCount    int
	Summary        Summary
	Trades         []Trade
	Equity         []EquityPoint
}

// RunSummary is the list-view projection of a stored run.
type RunSummary struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Symbol         string    `json:"symbol"`
	Timeframe      Timeframe `json:"timeframe"`
	Strategy       string    `json:"strategy"`
	InitialCapital float64   `json:"initial_capital"`
	FinalEquity    float64   `json:"final_equity"`
	TotalReturnPct float64   `json:"total_return_pct"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	TotalTrades    int       `json:"total_trades"`
}
