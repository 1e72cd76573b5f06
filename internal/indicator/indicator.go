// Package indicator implements the series-form technical indicators the
// strategies consume. Each function maps a value series to an equal-length
// output series; math.NaN marks bars inside the warm-up window, and a window
// longer than the series yields an all-NaN result rather than an error.
package indicator

import "math"

// nanSeries returns a slice of the given length filled with NaN.
func nanSeries(n int) []float64 {
	series := make([]float64, n)
	for i := range series {
		series[i] = math.NaN()
	}

	return series
}
