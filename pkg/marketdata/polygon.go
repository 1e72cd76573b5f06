package marketdata

import (
	"context"
	"fmt"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/errors"
)

const (
	// polygonPageLimit is the aggregates page size requested upstream.
	polygonPageLimit = 50000
	// polygonFlushSize is how many candles accumulate before a write, so
	// multi-year downloads do not buffer everything in memory.
	polygonFlushSize = 5000
)

// polygonAggsIterator is the part of the Polygon aggregates iterator the
// provider consumes.
type polygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// polygonAggsAPI is the slice of the Polygon REST client the provider uses,
// kept narrow so tests can fake the iterator without the network.
type polygonAggsAPI interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) polygonAggsIterator
}

// polygonREST adapts the real client to polygonAggsAPI.
type polygonREST struct {
	client *polygon.Client
}

func (r polygonREST) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) polygonAggsIterator {
	return r.client.ListAggs(ctx, params, options...)
}

// PolygonProvider downloads aggregate bars from the Polygon.io REST API.
type PolygonProvider struct {
	api polygonAggsAPI
}

// NewPolygonProvider builds a provider against the live API.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidProvider, "polygon provider requires an api key")
	}

	return &PolygonProvider{api: polygonREST{client: polygon.New(apiKey)}}, nil
}

// newPolygonProviderWithAPI injects a fake API client in tests.
func newPolygonProviderWithAPI(api polygonAggsAPI) *PolygonProvider {
	return &PolygonProvider{api: api}
}

// Name implements Provider.
func (p *PolygonProvider) Name() string {
	return string(ProviderPolygon)
}

// GetCandles implements Provider.
func (p *PolygonProvider) GetCandles(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time) (types.CandleSeries, error) {
	return collect(ctx, p, symbol, timeframe, start, end)
}

// Download implements Provider. Polygon pages transparently behind its
// iterator, so this loop only batches candles into writer-sized chunks.
func (p *PolygonProvider) Download(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time, w Writer, onProgress OnProgress) (int, error) {
	multiplier, timespan, err := polygonAggParams(timeframe)
	if err != nil {
		return 0, err
	}

	if w == nil {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "download requires a writer")
	}

	if err := validateRange(start, end); err != nil {
		return 0, err
	}

	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(polygonPageLimit)

	var (
		iter    = p.api.ListAggs(ctx, params)
		batch   = make(types.CandleSeries, 0, polygonFlushSize)
		totalMs = float64(end.Sub(start).Milliseconds())
		written = 0
		message = fmt.Sprintf("downloading %s %s candles from polygon", symbol, timeframe)
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if err := w.WriteCandles(ctx, symbol, timeframe, batch); err != nil {
			return err
		}

		written += len(batch)
		covered := batch[len(batch)-1].Timestamp.Sub(start).Milliseconds()
		reportProgress(onProgress, float64(covered), totalMs, message)
		batch = batch[:0]

		return nil
	}

	for iter.Next() {
		agg := iter.Item()
		batch = append(batch, types.Candle{
			Timestamp: time.Time(agg.Timestamp).UTC(),
			Open:      agg.Open,
			High:      agg.High,
			Low:       agg.Low,
			Close:     agg.Close,
			Volume:    agg.Volume,
		})

		if len(batch) >= polygonFlushSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}

	if err := iter.Err(); err != nil {
		return written, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "listing %s aggregates from polygon", symbol)
	}

	if err := flush(); err != nil {
		return written, err
	}

	reportProgress(onProgress, totalMs, totalMs, message)

	return written, nil
}

// polygonAggParams maps a timeframe to the multiplier and timespan pair the
// aggregates endpoint expects.
func polygonAggParams(timeframe types.Timeframe) (int, models.Timespan, error) {
	switch timeframe {
	case types.Timeframe1m:
		return 1, models.Minute, nil
	case types.Timeframe5m:
		return 5, models.Minute, nil
	case types.Timeframe15m:
		return 15, models.Minute, nil
	case types.Timeframe30m:
		return 30, models.Minute, nil
	case types.Timeframe1h:
		return 1, models.Hour, nil
	case types.Timeframe4h:
		return 4, models.Hour, nil
	case types.Timeframe1d:
		return 1, models.Day, nil
	case types.Timeframe1w:
		return 1, models.Week, nil
	default:
		return 0, "", errors.Newf(errors.ErrCodeInvalidTimeframe, "timeframe %q has no polygon aggregate mapping", timeframe)
	}
}
