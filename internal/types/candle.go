package types

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/marketloop/backtestd/pkg/errors"
)

// Candle is a single OHLCV bar.
type Candle struct {
	Timestamp time.Time `yaml:"timestamp"`
	Open      float64   `yaml:"open"`
	High      float64   `yaml:"high"`
	Low       float64   `yaml:"low"`
	Close     float64   `yaml:"close"`
	Volume    float64   `yaml:"volume"`
}

// candleJSON is the wire form: timestamps travel as Unix milliseconds.
type candleJSON struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// MarshalJSON implements json.Marshaler.
func (c Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal(candleJSON{
		Timestamp: c.Timestamp.UnixMilli(),
		Open:      c.Open,
		High:      c.High,
		Low:       c.Low,
		Close:     c.Close,
		Volume:    c.Volume,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Candle) UnmarshalJSON(data []byte) error {
	var wire candleJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	c.Timestamp = time.UnixMilli(wire.Timestamp).UTC()
	c.Open = wire.Open
	c.High = wire.High
	c.Low = wire.Low
	c.Close = wire.Close
	c.Volume = wire.Volume

	return nil
}

// Validate checks a single bar for impossible values.
func (c Candle) Validate() error {
	switch {
	case c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0:
		return errors.Newf(errors.ErrCodeInvalidCandle, "candle at %s has a non-positive price", c.Timestamp.Format(time.RFC3339))
	case c.High < c.Low:
		return errors.Newf(errors.ErrCodeInvalidCandle, "candle at %s has high below low", c.Timestamp.Format(time.RFC3339))
	case c.Volume < 0:
		return errors.Newf(errors.ErrCodeInvalidCandle, "candle at %s has negative volume", c.Timestamp.Format(time.RFC3339))
	}

	return nil
}

// CandleSeries is an ordered series of bars.
type CandleSeries []Candle

// SortByTime orders the series by timestamp ascending. The sort is stable,
// so duplicate timestamps keep their input order.
func (cs CandleSeries) SortByTime() {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Timestamp.Before(cs[j].Timestamp)
	})
}

// Closes returns the close column of the series.
func (cs CandleSeries) Closes() []float64 {
	closes := make([]float64, len(cs))
	for i, c := range cs {
		closes[i] = c.Close
	}

	return closes
}

// Validate checks that the series is non-empty and every bar is well formed.
func (cs CandleSeries) Validate() error {
	if len(cs) == 0 {
		return errors.New(errors.ErrCodeInvalidCandle, "candle series is empty")
	}

	for _, c := range cs {
		if err := c.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Span returns the first and last timestamps of the series. The series must
// already be sorted.
func (cs CandleSeries) Span() (start, end time.Time) {
	if len(cs) == 0 {
		return time.Time{}, time.Time{}
	}

	return cs[0].Timestamp, cs[len(cs)-1].Timestamp
}

// MedianInterval estimates the bar spacing from the series itself. Used as a
// fallback when the declared timeframe cannot be parsed. Returns 0 for series
// shorter than two bars.
func (cs CandleSeries) MedianInterval() time.Duration {
	if len(cs) < 2 {
		return 0
	}

	gaps := make([]time.Duration, 0, len(cs)-1)
	for i := 1; i < len(cs); i++ {
		gaps = append(gaps, cs[i].Timestamp.Sub(cs[i-1].Timestamp))
	}

	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })

	return gaps[len(gaps)/2]
}
