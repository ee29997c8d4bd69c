package domain

// trendWindow is the number of trailing history entries used by WindowedTrend.
const trendWindow = 5

// WindowedTrend returns the mean first difference over the last five entries
// of history (fewer when the history is shorter). Histories with fewer than
// two entries have no trend.
func WindowedTrend(history []float64) float64 {
	if len(history) < 2 {
		return 0
	}

	window := history
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}

	var sum float64
	for i := 1; i < len(window); i++ {
		sum += window[i] - window[i-1]
	}
	return sum / float64(len(window)-1)
}

// SpanTrend returns last minus first over the whole history, without
// windowing or averaging. Only the two-factor strategy uses it.
func SpanTrend(history []float64) float64 {
	if len(history) < 2 {
		return 0
	}
	return history[len(history)-1] - history[0]
}
