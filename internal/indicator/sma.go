package indicator

// SMA computes the simple moving average of values over the given window
// using a single-pass rolling sum. result[i] is NaN while fewer than window
// values are available.
func SMA(values []float64, window int) []float64 {
	result := nanSeries(len(values))
	if window <= 0 || window > len(values) {
		return result
	}

	var sum float64

	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}

		if i >= window-1 {
			result[i] = sum / float64(window)
		}
	}

	return result
}
