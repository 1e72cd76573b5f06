package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/marketloop/backtestd/internal/logger"
	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/errors"
)

// defaultListLimit applies when a caller asks for a listing without a limit.
const defaultListLimit = 50

var runColumns = []string{
	"id", "created_at", "symbol", "timeframe", "strategy",
	"initial_capital", "final_equity", "candle_count",
	"total_return", "total_return_pct", "sharpe_ratio",
	"max_drawdown", "max_drawdown_pct", "win_rate", "profit_factor",
	"total_trades", "winning_trades", "losing_trades",
	"avg_win", "avg_loss", "largest_win", "largest_loss",
	"execution_time",
}

var tradeColumns = []string{
	"trade_id", "symbol", "side", "entry_time", "exit_time",
	"entry_price", "exit_price", "quantity", "pnl", "pnl_percent",
	"exit_reason", "status",
}

// DuckDBStore keeps runs in DuckDB, either in memory or in a database file.
type DuckDBStore struct {
	db           *sql.DB
	sq           squirrel.StatementBuilderType
	logger       *logger.Logger
	historyLimit int
}

// NewDuckDBStore opens (or creates) the database at path and ensures the
// schema exists. A historyLimit of 0 keeps every run.
func NewDuckDBStore(path string, historyLimit int, log *logger.Logger) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStoreInit, err, "failed to open database at %s", path)
	}

	s := &DuckDBStore{
		db:           db,
		sq:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger:       log,
		historyLimit: historyLimit,
	}

	if err := s.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	log.Info("run store ready",
		zap.String("path", path),
		zap.Int("history_limit", historyLimit),
	)

	return s, nil
}

// initialize creates the run tables.
func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS backtest_runs (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			symbol TEXT,
			timeframe TEXT,
			strategy TEXT,
			initial_capital DOUBLE,
			final_equity DOUBLE,
			candle_count INTEGER,
			total_return DOUBLE,
			total_return_pct DOUBLE,
			sharpe_ratio DOUBLE,
			max_drawdown DOUBLE,
			max_drawdown_pct DOUBLE,
			win_rate DOUBLE,
			profit_factor DOUBLE,
			total_trades INTEGER,
			winning_trades INTEGER,
			losing_trades INTEGER,
			avg_win DOUBLE,
			avg_loss DOUBLE,
			largest_win DOUBLE,
			largest_loss DOUBLE,
			execution_time DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreInit, "failed to create backtest_runs table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_trades (
			run_id TEXT,
			trade_id TEXT,
			symbol TEXT,
			side TEXT,
			entry_time TIMESTAMP,
			exit_time TIMESTAMP,
			entry_price DOUBLE,
			exit_price DOUBLE,
			quantity DOUBLE,
			pnl DOUBLE,
			pnl_percent DOUBLE,
			exit_reason TEXT,
			status TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreInit, "failed to create run_trades table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_equity (
			run_id TEXT,
			ts TIMESTAMP,
			value DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreInit, "failed to create run_equity table", err)
	}

	return nil
}

// SaveRun implements Store. The run row, its trades and its equity curve are
// written in one transaction together with the history prune, so a reader
// never observes a partially stored run.
func (s *DuckDBStore) SaveRun(ctx context.Context, run *types.BacktestRun) error {
	if run.ID == "" {
		return errors.New(errors.ErrCodeStoreWrite, "run id is empty")
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to begin transaction", err)
	}

	if err := s.insertRun(ctx, tx, run); err != nil {
		tx.Rollback()

		return err
	}

	if err := s.insertTrades(ctx, tx, run.ID, run.Trades); err != nil {
		tx.Rollback()

		return err
	}

	if err := s.insertEquity(ctx, tx, run.ID, run.Equity); err != nil {
		tx.Rollback()

		return err
	}

	if err := s.prune(ctx, tx); err != nil {
		tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to commit run", err)
	}

	return nil
}

func (s *DuckDBStore) insertRun(ctx context.Context, tx *sql.Tx, run *types.BacktestRun) error {
	var profitFactor *float64
	if run.Summary.ProfitFactor.IsSome() {
		v := run.Summary.ProfitFactor.Unwrap()
		profitFactor = &v
	}

	_, err := s.sq.
		Insert("backtest_runs").
		Columns(runColumns...).
		Values(
			run.ID, run.CreatedAt, run.Symbol, string(run.Timeframe), run.Strategy,
			run.InitialCapital, run.FinalEquity, run.CandleCount,
			run.Summary.TotalReturn, run.Summary.TotalReturnPct, run.Summary.SharpeRatio,
			run.Summary.MaxDrawdown, run.Summary.MaxDrawdownPct, run.Summary.WinRate, profitFactor,
			run.Summary.TotalTrades, run.Summary.WinningTrades, run.Summary.LosingTrades,
			run.Summary.AvgWin, run.Summary.AvgLoss, run.Summary.LargestWin, run.Summary.LargestLoss,
			run.Summary.ExecutionTime,
		).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to insert run", err)
	}

	return nil
}

func (s *DuckDBStore) insertTrades(ctx context.Context, tx *sql.Tx, runID string, trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	insert := s.sq.
		Insert("run_trades").
		Columns(append([]string{"run_id"}, tradeColumns...)...)

	for _, trade := range trades {
		var exitTime *time.Time
		if trade.ExitTime.IsSome() {
			v := trade.ExitTime.Unwrap()
			exitTime = &v
		}

		var exitPrice *float64
		if trade.ExitPrice.IsSome() {
			v := trade.ExitPrice.Unwrap()
			exitPrice = &v
		}

		var exitReason *string
		if trade.ExitReason.IsSome() {
			v := string(trade.ExitReason.Unwrap())
			exitReason = &v
		}

		insert = insert.Values(
			runID, trade.ID, trade.Symbol, string(trade.Side), trade.EntryTime, exitTime,
			trade.EntryPrice, exitPrice, trade.Quantity, trade.PnL, trade.PnLPercent,
			exitReason, string(trade.Status),
		)
	}

	if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to insert trades", err)
	}

	return nil
}

// insertEquity writes the curve through a prepared statement; curves can run
// to hundreds of thousands of rows.
func (s *DuckDBStore) insertEquity(ctx context.Context, tx *sql.Tx, runID string, points []types.EquityPoint) error {
	if len(points) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_equity (run_id, ts, value) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to prepare equity insert", err)
	}
	defer stmt.Close()

	for _, point := range points {
		if _, err := stmt.ExecContext(ctx, runID, point.Timestamp, point.Value); err != nil {
			return errors.Wrap(errors.ErrCodeStoreWrite, "failed to insert equity point", err)
		}
	}

	return nil
}

// prune drops the oldest runs beyond the history limit, cascading to their
// trade and equity rows. Raw SQL: squirrel cannot express the subselects.
func (s *DuckDBStore) prune(ctx context.Context, tx *sql.Tx) error {
	if s.historyLimit <= 0 {
		return nil
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM backtest_runs
		WHERE id NOT IN (
			SELECT id FROM backtest_runs ORDER BY created_at DESC, id LIMIT ?
		)
	`, s.historyLimit)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWrite, "failed to prune runs", err)
	}

	for _, table := range []string{"run_trades", "run_equity"} {
		query := fmt.Sprintf(`DELETE FROM %s WHERE run_id NOT IN (SELECT id FROM backtest_runs)`, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return errors.Wrapf(errors.ErrCodeStoreWrite, err, "failed to prune %s", table)
		}
	}

	if pruned, err := result.RowsAffected(); err == nil && pruned > 0 {
		s.logger.Debug("pruned stored runs", zap.Int64("count", pruned))
	}

	return nil
}

// GetRun implements Store.
func (s *DuckDBStore) GetRun(ctx context.Context, id string) (*types.BacktestRun, error) {
	row := s.sq.
		Select(runColumns...).
		From("backtest_runs").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		QueryRowContext(ctx)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Newf(errors.ErrCodeRunNotFound, "Portfolio not found: %s", id)
	}

	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "failed to load run", err)
	}

	run.Trades, err = s.GetTrades(ctx, id)
	if err != nil {
		return nil, err
	}

	run.Equity, err = s.GetEquity(ctx, id)
	if err != nil {
		return nil, err
	}

	return run, nil
}

func scanRun(row squirrel.RowScanner) (*types.BacktestRun, error) {
	var (
		run          types.BacktestRun
		timeframe    string
		profitFactor sql.NullFloat64
	)

	err := row.Scan(
		&run.ID, &run.CreatedAt, &run.Symbol, &timeframe, &run.Strategy,
		&run.InitialCapital, &run.FinalEquity, &run.CandleCount,
		&run.Summary.TotalReturn, &run.Summary.TotalReturnPct, &run.Summary.SharpeRatio,
		&run.Summary.MaxDrawdown, &run.Summary.MaxDrawdownPct, &run.Summary.WinRate, &profitFactor,
		&run.Summary.TotalTrades, &run.Summary.WinningTrades, &run.Summary.LosingTrades,
		&run.Summary.AvgWin, &run.Summary.AvgLoss, &run.Summary.LargestWin, &run.Summary.LargestLoss,
		&run.Summary.ExecutionTime,
	)
	if err != nil {
		return nil, err
	}

	run.Timeframe = types.Timeframe(timeframe)
	run.CreatedAt = run.CreatedAt.UTC()

	run.Summary.ProfitFactor = optional.None[float64]()
	if profitFactor.Valid {
		run.Summary.ProfitFactor = optional.Some(profitFactor.Float64)
	}

	return &run, nil
}

// ListRuns implements Store.
func (s *DuckDBStore) ListRuns(ctx context.Context, limit int) ([]types.RunSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.sq.
		Select(
			"id", "created_at", "symbol", "timeframe", "strategy",
			"initial_capital", "final_equity", "total_return_pct", "max_drawdown_pct", "total_trades",
		).
		From("backtest_runs").
		OrderBy("created_at DESC, id").
		Limit(uint64(limit)).
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "failed to list runs", err)
	}
	defer rows.Close()

	summaries := []types.RunSummary{}

	for rows.Next() {
		var (
			summary   types.RunSummary
			timeframe string
		)

		err := rows.Scan(
			&summary.ID, &summary.CreatedAt, &summary.Symbol, &timeframe, &summary.Strategy,
			&summary.InitialCapital, &summary.FinalEquity, &summary.TotalReturnPct,
			&summary.MaxDrawdownPct, &summary.TotalTrades,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "failed to scan run summary", err)
		}

		summary.Timeframe = types.Timeframe(timeframe)
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "error iterating runs", err)
	}

	return summaries, nil
}

// GetTrades implements Store.
func (s *DuckDBStore) GetTrades(ctx context.Context, runID string) ([]types.Trade, error) {
	rows, err := s.sq.
		Select(tradeColumns...).
		From("run_trades").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("entry_time ASC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "failed to query trades", err)
	}
	defer rows.Close()

	trades := []types.Trade{}

	for rows.Next() {
		var (
			trade      types.Trade
			side       string
			status     string
			exitTime   sql.NullTime
			exitPrice  sql.NullFloat64
			exitReason sql.NullString
		)

		err := rows.Scan(
			&trade.ID, &trade.Symbol, &side, &trade.EntryTime, &exitTime,
			&trade.EntryPrice, &exitPrice, &trade.Quantity, &trade.PnL, &trade.PnLPercent,
			&exitReason, &status,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "failed to scan trade", err)
		}

		trade.Side = types.Side(side)
		trade.Status = types.TradeStatus(status)
		trade.EntryTime = trade.EntryTime.UTC()

		trade.ExitTime = optional.None[time.Time]()
		if exitTime.Valid {
			trade.ExitTime = optional.Some(exitTime.Time.UTC())
		}

		trade.ExitPrice = optional.None[float64]()
		if exitPrice.Valid {
			trade.ExitPrice = optional.Some(exitPrice.Float64)
		}

		trade.ExitReason = optional.None[types.ExitReason]()
		if exitReason.Valid {
			trade.ExitReason = optional.Some(types.ExitReason(exitReason.String))
		}

		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "error iterating trades", err)
	}

	return trades, nil
}

// GetEquity implements Store.
func (s *DuckDBStore) GetEquity(ctx context.Context, runID string) ([]types.EquityPoint, error) {
	rows, err := s.sq.
		Select("ts", "value").
		From("run_equity").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("ts ASC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "failed to query equity curve", err)
	}
	defer rows.Close()

	points := []types.EquityPoint{}

	for rows.Next() {
		var point types.EquityPoint
		if err := rows.Scan(&point.Timestamp, &point.Value); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreQuery, "failed to scan equity point", err)
		}

		point.Timestamp = point.Timestamp.UTC()
		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreQuery, "error iterating equity curve", err)
	}

	return points, nil
}

// Close implements Store.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
