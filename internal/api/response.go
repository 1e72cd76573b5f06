package api

import (
	"github.com/moznion/go-optional"

	"github.com/marketloop/backtestd/internal/types"
)

// BacktestResponse is the POST /run-backtest reply. Trade objects keep
// their camelCase keys and profit_factor stays null when undefined, both
// part of the original wire contract.
type BacktestResponse struct {
	PortfolioID    string                   `json:"portfolio_id"`
	TotalReturn    float64                  `json:"total_return"`
	TotalReturnPct float64                  `json:"total_return_pct"`
	SharpeRatio    float64                  `json:"sharpe_ratio"`
	MaxDrawdown    float64                  `json:"max_drawdown"`
	MaxDrawdownPct float64                  `json:"max_drawdown_pct"`
	WinRate        float64                  `json:"win_rate"`
	ProfitFactor   optional.Option[float64] `json:"profit_factor"`
	TotalTrades    int                      `json:"total_trades"`
	WinningTrades  int                      `json:"winning_trades"`
	LosingTrades   int                      `json:"losing_trades"`
	AvgWin         float64                  `json:"avg_win"`
	AvgLoss        float64                  `json:"avg_loss"`
	LargestWin     float64                  `json:"largest_win"`
	LargestLoss    float64                  `json:"largest_loss"`
	EquityCurve    []types.EquityPoint      `json:"equity_curve"`
	Trades         []types.Trade            `json:"trades"`
	ExecutionTime  float64                  `json:"execution_time"`
}

// NewBacktestResponse flattens a run summary into the wire shape. Slices
// are initialized so empty results encode as [] rather than null.
func NewBacktestResponse(portfolioID string, summary types.Summary, trades []types.Trade, equity []types.EquityPoint) BacktestResponse {
	if trades == nil {
		trades = []types.Trade{}
	}
	if equity == nil {
		equity = []types.EquityPoint{}
	}

	return BacktestResponse{
		PortfolioID:    portfolioID,
		TotalReturn:    summary.TotalReturn,
		TotalReturnPct: summary.TotalReturnPct,
		SharpeRatio:    summary.SharpeRatio,
		MaxDrawdown:    summary.MaxDrawdown,
		MaxDrawdownPct: summary.MaxDrawdownPct,
		WinRate:        summary.WinRate,
		ProfitFactor:   summary.ProfitFactor,
		TotalTrades:    summary.TotalTrades,
		WinningTrades:  summary.WinningTrades,
		LosingTrades:   summary.LosingTrades,
		AvgWin:         summary.AvgWin,
		AvgLoss:        summary.AvgLoss,
		LargestWin:     summary.LargestWin,
		LargestLoss:    summary.LargestLoss,
		EquityCurve:    equity,
		Trades:         trades,
		ExecutionTime:  summary.ExecutionTime,
	}
}

// RootResponse is the GET / body.
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// HealthResponse is the GET /health body. Timestamp is RFC3339.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// PortfolioListResponse is the GET /api/portfolios body.
type PortfolioListResponse struct {
	Portfolios []types.RunSummary `json:"portfolios"`
}

// ErrorResponse is the error envelope of every failing endpoint.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
