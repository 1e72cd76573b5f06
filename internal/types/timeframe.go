package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timeframe is the bar interval of a candle series, in the compact exchange
// notation ("1m", "15m", "4h", "1d").
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
	Timeframe1w  Timeframe = "1w"
)

// yearDuration uses the 365-day year: crypto markets trade around the clock.
const yearDuration = 365 * 24 * time.Hour

// Duration converts the timeframe notation to a time.Duration.
func (tf Timeframe) Duration() (time.Duration, error) {
	s := strings.TrimSpace(string(tf))
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}

	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}

	switch s[len(s)-1] {
	case 'm':
		return time.Duration(value) * time.Minute, nil
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid timeframe %q", tf)
	}
}

// PeriodsPerYear returns how many bars of this timeframe fit into a 365-day
// year, used to annualize per-bar statistics.
func (tf Timeframe) PeriodsPerYear() (float64, error) {
	d, err := tf.Duration()
	if err != nil {
		return 0, err
	}

	return float64(yearDuration) / float64(d), nil
}

// PeriodsPerYearFromInterval derives the annualization factor from a measured
// bar spacing, for series whose declared timeframe is not parseable.
func PeriodsPerYearFromInterval(interval time.Duration) float64 {
	if interval <= 0 {
		return 0
	}

	return float64(yearDuration) / float64(interval)
}
