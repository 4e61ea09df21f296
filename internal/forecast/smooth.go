package forecast

// DefaultAlpha is the EWMA smoothing factor: more stable than the raw last
// observation, more responsive than a flat average.
const DefaultAlpha = 0.3

// EWMA computes the exponentially weighted moving average series, seeded
// with the first observation.
func EWMA(values []float64, alpha float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// EWMALast returns the final smoothed value, the "current demand level".
func EWMALast(values []float64, alpha float64) float64 {
	series := EWMA(values, alpha)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
