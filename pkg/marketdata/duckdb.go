package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/errors"
)

// DuckDB stores candles in a DuckDB database, one row per bar keyed by
// symbol, timeframe and open time. It implements Writer and Reader.
type DuckDB struct {
	db *sql.DB
	sq squirrel.StatementBuilderType
}

// NewDuckDB opens (or creates) the database at path and ensures the schema
// exists. Use ":memory:" for an ephemeral store.
func NewDuckDB(path string) (*DuckDB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStoreInit, err, "failed to open market data database at %s", path)
	}

	d := &DuckDB{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := d.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return d, nil
}

func (d *DuckDB) initialize() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			symbol TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			ts TIMESTAMP NOT NULL,
			open DOUBLE NOT NULL,
			high DOUBLE NOT NULL,
			low DOUBLE NOT NULL,
			close DOUBLE NOT NULL,
			volume DOUBLE NOT NULL,
			PRIMARY KEY (symbol, timeframe, ts)
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreInit, "failed to create market_data table", err)
	}

	return nil
}

// WriteCandles implements Writer. The whole batch lands in one transaction,
// and re-writing a bar that already exists replaces it, so repeating a
// download range is idempotent.
func (d *DuckDB) WriteCandles(ctx context.Context, symbol string, timeframe types.Timeframe, candles types.CandleSeries) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin market data transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO market_data (symbol, timeframe, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare market data insert", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx,
			symbol,
			string(timeframe),
			c.Timestamp.UTC(),
			c.Open,
			c.High,
			c.Low,
			c.Close,
			c.Volume,
		); err != nil {
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to insert %s bar at %s", symbol, c.Timestamp.Format(time.RFC3339))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit market data batch", err)
	}

	return nil
}

// ReadCandles implements Reader, returning bars ordered by open time
// ascending. A zero start or end leaves that bound open.
func (d *DuckDB) ReadCandles(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time) (types.CandleSeries, error) {
	query := d.sq.
		Select("ts", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.Eq{"symbol": symbol, "timeframe": string(timeframe)}).
		OrderBy("ts ASC")

	if !start.IsZero() {
		query = query.Where(squirrel.GtOrEq{"ts": start.UTC()})
	}

	if !end.IsZero() {
		query = query.Where(squirrel.LtOrEq{"ts": end.UTC()})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to build market data query", err)
	}

	rows, err := d.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataReadFailed, err, "failed to query %s %s candles", symbol, timeframe)
	}
	defer rows.Close()

	candles := types.CandleSeries{}

	for rows.Next() {
		var (
			ts     time.Time
			candle types.Candle
		)

		if err := rows.Scan(&ts, &candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to scan market data row", err)
		}

		candle.Timestamp = ts.UTC()
		candles = append(candles, candle)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMarketDataReadFailed, "failed to iterate market data rows", err)
	}

	return candles, nil
}

// ExportParquet copies the stored bars for one symbol and timeframe to a
// Parquet file at path, ordered by open time.
func (d *DuckDB) ExportParquet(ctx context.Context, symbol string, timeframe types.Timeframe, path string) error {
	// COPY does not take bound parameters, so values are escaped inline.
	stmt := fmt.Sprintf(
		`COPY (SELECT ts, open, high, low, close, volume FROM market_data WHERE symbol = '%s' AND timeframe = '%s' ORDER BY ts) TO '%s' (FORMAT PARQUET)`,
		escapeSQLString(symbol),
		escapeSQLString(string(timeframe)),
		escapeSQLString(path),
	)

	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to export %s %s to parquet", symbol, timeframe)
	}

	return nil
}

// Close releases the database handle.
func (d *DuckDB) Close() error {
	if err := d.db.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreInit, "failed to close market data database", err)
	}

	return nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
