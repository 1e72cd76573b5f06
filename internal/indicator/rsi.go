package indicator

// RSI computes the relative strength index of values using Wilder's
// smoothing: the first average gain and loss are simple means over the first
// period changes, every later average is (prev*(period-1) + current) / period.
// result[i] is NaN while i < period.
func RSI(values []float64, period int) []float64 {
	result := nanSeries(len(values))
	if period <= 0 || len(values) <= period {
		return result
	}

	var avgGain, avgLoss float64

	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)
	result[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]

		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		result[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return result
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	// No losses in the window reads as a perfect uptrend.
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
