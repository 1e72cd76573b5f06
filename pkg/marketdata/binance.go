package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/marketloop/backtestd/internal/types"
	"github.com/marketloop/backtestd/pkg/errors"
)

// binanceKlineLimit is the page size requested per klines call. Binance caps
// a single request at 1000 bars; a shorter page marks the end of the range.
const binanceKlineLimit = 1000

// binanceKlines is the slice of the Binance REST client the provider uses,
// kept narrow so tests can fake pagination without the network.
type binanceKlines interface {
	Klines(ctx context.Context, symbol, interval string, startMs, endMs int64, limit int) ([]*binance.Kline, error)
}

// binanceREST adapts the real client to binanceKlines.
type binanceREST struct {
	client *binance.Client
}

func (r binanceREST) Klines(ctx context.Context, symbol, interval string, startMs, endMs int64, limit int) ([]*binance.Kline, error) {
	return r.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(startMs).
		EndTime(endMs).
		Limit(limit).
		Do(ctx)
}

// BinanceProvider downloads klines from the public Binance spot API.
type BinanceProvider struct {
	api binanceKlines
}

// NewBinanceProvider builds a provider against the live API. Public kline
// endpoints need no credentials.
func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{api: binanceREST{client: binance.NewClient("", "")}}
}

// newBinanceProviderWithAPI injects a fake API client in tests.
func newBinanceProviderWithAPI(api binanceKlines) *BinanceProvider {
	return &BinanceProvider{api: api}
}

// Name implements Provider.
func (p *BinanceProvider) Name() string {
	return string(ProviderBinance)
}

// GetCandles implements Provider.
func (p *BinanceProvider) GetCandles(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time) (types.CandleSeries, error) {
	return collect(ctx, p, symbol, timeframe, start, end)
}

// Download implements Provider. Binance returns at most binanceKlineLimit
// bars per call, so the range is walked forward from the close time of the
// last bar of each page until a short page signals the end.
func (p *BinanceProvider) Download(ctx context.Context, symbol string, timeframe types.Timeframe, start, end time.Time, w Writer, onProgress OnProgress) (int, error) {
	interval, err := binanceInterval(timeframe)
	if err != nil {
		return 0, err
	}

	if w == nil {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "download requires a writer")
	}

	if err := validateRange(start, end); err != nil {
		return 0, err
	}

	var (
		startMs   = start.UnixMilli()
		endMs     = end.UnixMilli()
		currentMs = startMs
		totalMs   = float64(endMs - startMs)
		written   = 0
		message   = fmt.Sprintf("downloading %s %s candles from binance", symbol, timeframe)
	)

	for {
		if err := ctx.Err(); err != nil {
			return written, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "binance download of %s canceled", symbol)
		}

		klines, err := p.api.Klines(ctx, symbol, interval, currentMs, endMs, binanceKlineLimit)
		if err != nil {
			return written, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "fetching %s %s klines from binance", symbol, timeframe)
		}

		batch, err := klinesToCandles(klines)
		if err != nil {
			return written, err
		}

		if len(batch) > 0 {
			if err := w.WriteCandles(ctx, symbol, timeframe, batch); err != nil {
				return written, err
			}

			written += len(batch)
			reportProgress(onProgress, float64(klines[len(klines)-1].OpenTime-startMs), totalMs, message)
		}

		if len(klines) < binanceKlineLimit {
			break
		}

		// Resume one millisecond after the last bar closed so pages
		// never overlap.
		currentMs = klines[len(klines)-1].CloseTime + 1
		if currentMs >= endMs {
			break
		}
	}

	reportProgress(onProgress, totalMs, totalMs, message)

	return written, nil
}

// binanceInterval maps a timeframe to the kline interval string. The compact
// notation used by Timeframe matches the Binance API for every interval the
// service supports.
func binanceInterval(timeframe types.Timeframe) (string, error) {
	switch timeframe {
	case types.Timeframe1m, types.Timeframe5m, types.Timeframe15m, types.Timeframe30m,
		types.Timeframe1h, types.Timeframe4h, types.Timeframe1d, types.Timeframe1w:
		return string(timeframe), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimeframe, "timeframe %q is not a binance kline interval", timeframe)
	}
}

func klinesToCandles(klines []*binance.Kline) (types.CandleSeries, error) {
	candles := make(types.CandleSeries, 0, len(klines))

	for _, k := range klines {
		candle, err := parseKline(k)
		if err != nil {
			return nil, err
		}

		candles = append(candles, candle)
	}

	return candles, nil
}

// parseKline converts one Binance kline to a candle. Binance ships prices as
// strings; a value that does not parse means the payload is corrupt, so the
// whole page is rejected rather than written with zeros.
func parseKline(k *binance.Kline) (types.Candle, error) {
	open, err := parseKlineField("open", k.Open)
	if err != nil {
		return types.Candle{}, err
	}

	high, err := parseKlineField("high", k.High)
	if err != nil {
		return types.Candle{}, err
	}

	low, err := parseKlineField("low", k.Low)
	if err != nil {
		return types.Candle{}, err
	}

	closePrice, err := parseKlineField("close", k.Close)
	if err != nil {
		return types.Candle{}, err
	}

	volume, err := parseKlineField("volume", k.Volume)
	if err != nil {
		return types.Candle{}, err
	}

	return types.Candle{
		Timestamp: time.UnixMilli(k.OpenTime).UTC(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
	}, nil
}

func parseKlineField(name, raw string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "malformed kline %s %q", name, raw)
	}

	return value, nil
}
