package forecast

import "math"

// TrendResult is an ordinary-least-squares fit over a usage series.
type TrendResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R2        float64 `json:"r2"`

	// Significant is true only when the fit explains most of the variance
	// (R² > 0.5) and the relative slope exceeds 5% of the mean. Both guards
	// keep noisy, small samples from declaring a trend.
	Significant bool `json:"significant"`
}

// Trend fits value = slope·day + intercept over (dayIndex, value) pairs.
func Trend(days, values []float64) TrendResult {
	n := float64(len(values))
	if len(values) < 2 || len(days) != len(values) {
		return TrendResult{}
	}

	var sumX, sumY, sumXY, sumXX float64
	for i := range values {
		sumX += days[i]
		sumY += values[i]
		sumXY += days[i] * values[i]
		sumXX += days[i] * days[i]
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return TrendResult{}
	}

	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	// R² from residual and total sums of squares.
	meanY := sumY / n
	var ssRes, ssTot float64
	for i := range values {
		fit := slope*days[i] + intercept
		ssRes += (values[i] - fit) * (values[i] - fit)
		ssTot += (values[i] - meanY) * (values[i] - meanY)
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	significant := false
	if meanY != 0 {
		relative := math.Abs(slope/meanY) * 100
		significant = r2 > 0.5 && relative > 5
	}

	return TrendResult{
		Slope:       slope,
		Intercept:   intercept,
		R2:          r2,
		Significant: significant,
	}
}

// TrendOf fits a trend over a usage series using day offsets as x values.
func TrendOf(usage []DayUsage) TrendResult {
	if len(usage) == 0 {
		return TrendResult{}
	}
	days := make([]float64, len(usage))
	values := make([]float64, len(usage))
	first := usage[0].Date
	for i, u := range usage {
		days[i] = u.Date.Sub(first).Hours() / 24
		values[i] = u.Qty
	}
	return Trend(days, values)
}
