// Package store persists backtest runs in an embedded DuckDB database so the
// portfolio and risk endpoints can serve results after the originating
// request has completed.
package store

import (
	"context"

	"github.com/marketloop/backtestd/internal/types"
)

// Store is the persistence boundary of the service. Handlers depend on this
// interface; the DuckDB implementation backs it in production and a generated
// mock backs it in handler tests.
type Store interface {
	// SaveRun persists a run with its trades and equity curve, then prunes
	// runs beyond the configured history limit.
	SaveRun(ctx context.Context, run *types.BacktestRun) error
	// GetRun loads a full run. Unknown ids return ErrCodeRunNotFound.
	GetRun(ctx context.Context, id string) (*types.BacktestRun, error)
	// ListRuns returns run summaries ordered newest first.
	ListRuns(ctx context.Context, limit int) ([]types.RunSummary, error)
	// GetTrades returns the trades of a run ordered by entry time.
	GetTrades(ctx context.Context, runID string) ([]types.Trade, error)
	// GetEquity returns the equity curve of a run in bar order.
	GetEquity(ctx context.Context, runID string) ([]types.EquityPoint, error)
	Close() error
}
