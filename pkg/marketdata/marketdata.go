// Package marketdata fetches historical OHLCV series from exchange APIs and
// persists them locally, so backtests can run against real data without
// hitting the network on every request.
//
// A Provider speaks to one upstream API (Binance, Polygon). Downloads stream
// page by page into a Writer, which keeps memory flat for multi-year pulls;
// GetCandles is the in-memory convenience for small ranges. The DuckDB type
// implements both Writer and Reader over a single market_data table keyed by
// symbol, timeframe and bar time, so re-downloading a range is idempotent.
package marketdata

import (
	"context"
	"time"

	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/errors"
)

// ProviderType identifies an upstream market data API.
type ProviderType string

const (
	ProviderBinance ProviderType = "binance"
	ProviderPolygon ProviderType = "polygon"
)

// OnProgress reports download progress. current and total are milliseconds of
// the requested time range covered so far; message is human readable. A nil
// callback is allowed everywhere one is accepted.
type OnProgress = func(current float64, total float64, message string)

// Writer persists batches of candles for a symbol and timeframe.
type Writer interface {
	WriteCandles(ctx context.Context, symbol string, timeframe types.Timeframe, candles types.CandleSeries) error
}

// Reader loads previously stored candles. Zero start or end times leave that
// side of the range unbounded.
type Reader interface {
	ReadCandles(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time) (types.CandleSeries, error)
}

// Provider downloads historical candles from one upstream API.
type Provider interface {
	// Name returns the provider type string ("binance", "polygon").
	Name() string
	// GetCandles fetches the range [start, end] and returns it in memory,
	// ordered by bar open time ascending.
	GetCandles(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time) (types.CandleSeries, error)
	// Download streams the range [start, end] into w page by page and
	// returns the number of candles written. Cancel the context to stop
	// early; candles written before cancellation stay written.
	Download(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time, w Writer, onProgress OnProgress) (int, error)
}

// New builds a provider of the given type. Binance needs no credentials for
// public kline data; Polygon requires an API key.
func New(providerType ProviderType, apiKey string) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceProvider(), nil
	case ProviderPolygon:
		return NewPolygonProvider(apiKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider %q", providerType)
	}
}

// memoryWriter buffers candles in memory, backing the GetCandles convenience
// path of both providers.
type memoryWriter struct {
	candles types.CandleSeries
}

func (m *memoryWriter) WriteCandles(_ context.Context, _ string, _ types.Timeframe, candles types.CandleSeries) error {
	m.candles = append(m.candles, candles...)

	return nil
}

// collect runs a download into a memory buffer and returns the result.
func collect(ctx context.Context, p Provider, symbol string, timeframe types.Timeframe, start, end time.Time) (types.CandleSeries, error) {
	buf := &memoryWriter{candles: types.CandleSeries{}}

	if _, err := p.Download(ctx, symbol, timeframe, start, end, buf, nil); err != nil {
		return nil, err
	}

	return buf.candles, nil
}

// validateRange rejects download ranges the upstream APIs would refuse.
func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return errors.New(errors.ErrCodeInvalidParameter, "download range requires both start and end times")
	}

	if !end.After(start) {
		return errors.Newf(errors.ErrCodeInvalidParameter, "download start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	return nil
}

// reportProgress invokes the callback when one is set, clamping current to
// total so partial last pages never overshoot.
func reportProgress(onProgress OnProgress, current, total float64, message string) {
	if onProgress == nil {
		return
	}

	if current > total {
		current = total
	}

	onProgress(current, total, message)
}
