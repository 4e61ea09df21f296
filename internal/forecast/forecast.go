// Package forecast implements the statistics over transaction history:
// trend detection, EWMA smoothing, demand forecasting, Wilson safety stock,
// seasonality detection and stockout-date prediction. Every function is pure
// given its inputs; store reads happen in the caller. Sparse history never
// errors, it degrades confidence.
package forecast

import (
	"math"
	"time"
)

// Confidence labels attached to predictions.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Forecast status
const (
	StatusAdequate = "adequate"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// DefaultHorizon is the standard forecast length in days.
const DefaultHorizon = 7

// DayUsage is one day's total consumption of a drug.
type DayUsage struct {
	Date time.Time `json:"date"`
	Qty  float64   `json:"qty"`
}

// ForecastPoint is one projected day.
type ForecastPoint struct {
	Date           time.Time `json:"date"`
	Predicted      float64   `json:"predicted"`
	Lower          float64   `json:"lower"`
	Upper          float64   `json:"upper"`
	RemainingStock float64   `json:"remaining_stock"`
}

// Result is a per-drug demand forecast.
type Result struct {
	DrugID        string          `json:"drug_id"`
	DrugName      string          `json:"drug_name"`
	CurrentStock  int             `json:"current_stock"`
	DailyUse      float64         `json:"daily_use"`
	TrendFactor   float64         `json:"trend_factor"`
	Points        []ForecastPoint `json:"points"`
	TotalForecast float64         `json:"total_forecast"`
	ProjectedGap  float64         `json:"projected_gap"`
	Status        string          `json:"status"`
	Confidence    string          `json:"confidence"`
}

// Input bundles everything Forecast needs.
type Input struct {
	DrugID       string
	DrugName     string
	CurrentStock int
	Usage        []DayUsage // daily usage over the observation window, oldest first
	Start        time.Time  // first forecast day
	Horizon      int        // days; DefaultHorizon when <= 0
}

// Forecast projects daily demand over the horizon. Each day's prediction is
// the smoothed demand level scaled by the day-of-week factor and a bounded
// trend factor; the confidence band is ±20%. Remaining stock is decremented
// per day and floored at zero for display.
func Forecast(in Input) Result {
	horizon := in.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	values := make([]float64, len(in.Usage))
	for i, u := range in.Usage {
		values[i] = u.Qty
	}

	level := EWMALast(values, DefaultAlpha)
	trend := TrendOf(in.Usage)
	trendFactor := clamp(1+trend.Slope*0.1, 0.5, 1.5)
	factors := dayOfWeekFactors(in.Usage)

	res := Result{
		DrugID:       in.DrugID,
		DrugName:     in.DrugName,
		CurrentStock: in.CurrentStock,
		DailyUse:     level,
		TrendFactor:  trendFactor,
		Points:       make([]ForecastPoint, 0, horizon),
		Confidence:   sampleConfidence(len(in.Usage)),
	}

	remaining := float64(in.CurrentStock)
	for d := 0; d < horizon; d++ {
		date := in.Start.AddDate(0, 0, d)
		predicted := level * factors[date.Weekday()] * trendFactor
		remaining -= predicted

		res.Points = append(res.Points, ForecastPoint{
			Date:           date,
			Predicted:      predicted,
			Lower:          predicted * 0.8,
			Upper:          predicted * 1.2,
			RemainingStock: math.Max(0, remaining),
		})
		res.TotalForecast += predicted
	}

	res.ProjectedGap = float64(in.CurrentStock) - res.TotalForecast

	avg := mean(values)
	switch {
	case res.ProjectedGap < 0:
		res.Status = StatusCritical
	case res.ProjectedGap < 2*avg:
		res.Status = StatusWarning
	default:
		res.Status = StatusAdequate
	}
	return res
}

// dayOfWeekFactors derives per-weekday demand multipliers from the usage
// series. With under two weeks of data the factors stay flat at 1.0.
func dayOfWeekFactors(usage []DayUsage) [7]float64 {
	factors := [7]float64{1, 1, 1, 1, 1, 1, 1}
	if len(usage) < 14 {
		return factors
	}

	var sums, counts [7]float64
	var total float64
	for _, u := range usage {
		d := u.Date.Weekday()
		sums[d] += u.Qty
		counts[d]++
		total += u.Qty
	}
	overall := total / float64(len(usage))
	if overall <= 0 {
		return factors
	}

	for d := 0; d < 7; d++ {
		if counts[d] > 0 {
			factors[d] = (sums[d] / counts[d]) / overall
		}
	}
	return factors
}

func sampleConfidence(n int) string {
	switch {
	case n >= 30:
		return ConfidenceHigh
	case n >= 14:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}
