package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CandleTestSuite struct {
	suite.Suite
}

func TestCandleSuite(t *testing.T) {
	suite.Run(t, new(CandleTestSuite))
}

func (suite *CandleTestSuite) TestUnmarshalWireFormat() {
	payload := `{"timestamp":1699000000000,"open":1.0,"high":1.2,"low":0.9,"close":1.1,"volume":12.5}`

	var candle Candle
	suite.NoError(json.Unmarshal([]byte(payload), &candle))

	suite.Equal(time.UnixMilli(1699000000000).UTC(), candle.Timestamp)
	suite.Equal(1.0, candle.Open)
	suite.Equal(1.2, candle.High)
	suite.Equal(0.9, candle.Low)
	suite.Equal(1.1, candle.Close)
	suite.Equal(12.5, candle.Volume)
}

func (suite *CandleTestSuite) TestMarshalRoundTrip() {
	candle := Candle{
		Timestamp: time.UnixMilli(1699000000000).UTC(),
		Open:      100,
		High:      105,
		Low:       99,
		Close:     103,
		Volume:    1000,
	}

	data, err := json.Marshal(candle)
	suite.NoError(err)
	suite.Contains(string(data), `"timestamp":1699000000000`)

	var decoded Candle
	suite.NoError(json.Unmarshal(data, &decoded))
	suite.Equal(candle, decoded)
}

func (suite *CandleTestSuite) TestValidate() {
	base := Candle{
		Timestamp: time.UnixMilli(1699000000000).UTC(),
		Open:      100,
		High:      105,
		Low:       99,
		Close:     103,
		Volume:    1000,
	}

	tests := []struct {
		name    string
		mutate  func(c *Candle)
		wantErr string
	}{
		{name: "valid candle", mutate: func(c *Candle) {}},
		{
			name:    "zero close",
			mutate:  func(c *Candle) { c.Close = 0 },
			wantErr: "non-positive price",
		},
		{
			name:    "negative open",
			mutate:  func(c *Candle) { c.Open = -1 },
			wantErr: "non-positive price",
		},
		{
			name:    "high below low",
			mutate:  func(c *Candle) { c.High = 90 },
			wantErr: "high below low",
		},
		{
			name:    "negative volume",
			mutate:  func(c *Candle) { c.Volume = -5 },
			wantErr: "negative volume",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			candle := base
			tc.mutate(&candle)

			err := candle.Validate()
			if tc.wantErr == "" {
				suite.NoError(err)
			} else {
				suite.Error(err)
				suite.Contains(err.Error(), tc.wantErr)
			}
		})
	}
}

func (suite *CandleTestSuite) TestSeriesValidateEmpty() {
	var series CandleSeries
	err := series.Validate()
	suite.Error(err)
	suite.Contains(err.Error(), "empty")
}

func (suite *CandleTestSuite) TestSortByTime() {
	t0 := time.UnixMilli(1699000000000).UTC()
	series := CandleSeries{
		{Timestamp: t0.Add(30 * time.Minute), Close: 3},
		{Timestamp: t0, Close: 1},
		{Timestamp: t0.Add(15 * time.Minute), Close: 2},
	}

	series.SortByTime()

	suite.Equal([]float64{1, 2, 3}, series.Closes())

	start, end := series.Span()
	suite.Equal(t0, start)
	suite.Equal(t0.Add(30*time.Minute), end)
}

func (suite *CandleTestSuite) TestMedianInterval() {
	t0 := time.UnixMilli(1699000000000).UTC()
	series := CandleSeries{
		{Timestamp: t0},
		{Timestamp: t0.Add(15 * time.Minute)},
		{Timestamp: t0.Add(30 * time.Minute)},
		// One gap in the feed should not skew the estimate.
		{Timestamp: t0.Add(90 * time.Minute)},
		{Timestamp: t0.Add(105 * time.Minute)},
	}

	suite.Equal(15*time.Minute, series.MedianInterval())
}

func (suite *CandleTestSuite) TestMedianIntervalShortSeries() {
	series := CandleSeries{{Timestamp: time.Now()}}
	suite.Equal(time.Duration(0), series.MedianInterval())
}
