package forecast

import (
	"math"
	"time"
)

// Prediction methods
const (
	MethodAlreadyOut      = "already_out"
	MethodTrendSimulation = "trend_simulation"
	MethodAverageUsage    = "average_usage"
)

// simulationCapDays bounds the day-by-day simulation.
const simulationCapDays = 365

// StockoutPrediction estimates when a drug runs out.
type StockoutPrediction struct {
	DrugID            string     `json:"drug_id"`
	HasStockout       bool       `json:"has_stockout"`
	DaysUntilStockout int        `json:"days_until_stockout"`
	StockoutDate      *time.Time `json:"stockout_date,omitempty"`
	Confidence        string     `json:"confidence"`
	Method            string     `json:"method"`
}

// PredictStockout projects the stockout date for the given stock level and
// usage history. With a significant upward trend the consumption is simulated
// day by day with usage growing by slope/30 daily; otherwise the flat
// qty/avg estimate is used with confidence tied to sample size.
func PredictStockout(drugID string, qtyOnHand int, usage []DayUsage, now time.Time) StockoutPrediction {
	if qtyOnHand == 0 {
		date := now
		return StockoutPrediction{
			DrugID:            drugID,
			HasStockout:       true,
			DaysUntilStockout: 0,
			StockoutDate:      &date,
			Confidence:        ConfidenceHigh,
			Method:            MethodAlreadyOut,
		}
	}

	values := make([]float64, len(usage))
	for i, u := range usage {
		values[i] = u.Qty
	}
	avg := mean(values)
	trend := TrendOf(usage)

	if trend.Significant && trend.Slope > 0 {
		return simulateStockout(drugID, qtyOnHand, avg, trend, now)
	}

	if avg <= 0 {
		// No measurable consumption; no stockout to predict.
		return StockoutPrediction{
			DrugID:     drugID,
			Confidence: ConfidenceLow,
			Method:     MethodAverageUsage,
		}
	}

	days := int(math.Floor(float64(qtyOnHand) / avg))
	confidence := ConfidenceLow
	if len(usage) > 30 {
		confidence = ConfidenceMedium
	}

	date := now.AddDate(0, 0, days)
	return StockoutPrediction{
		DrugID:            drugID,
		HasStockout:       true,
		DaysUntilStockout: days,
		StockoutDate:      &date,
		Confidence:        confidence,
		Method:            MethodAverageUsage,
	}
}

func simulateStockout(drugID string, qtyOnHand int, avg float64, trend TrendResult, now time.Time) StockoutPrediction {
	dailyTrend := trend.Slope / 30

	remaining := float64(qtyOnHand)
	usage := avg
	for day := 1; day <= simulationCapDays; day++ {
		usage += dailyTrend
		if usage < 0 {
			usage = 0
		}
		remaining -= usage
		if remaining <= 0 {
			confidence := ConfidenceLow
			switch {
			case trend.R2 > 0.7:
				confidence = ConfidenceHigh
			case trend.R2 > 0.5:
				confidence = ConfidenceMedium
			}
			date := now.AddDate(0, 0, day)
			return StockoutPrediction{
				DrugID:            drugID,
				HasStockout:       true,
				DaysUntilStockout: day,
				StockoutDate:      &date,
				Confidence:        confidence,
				Method:            MethodTrendSimulation,
			}
		}
	}

	// Not exhausted within the cap.
	return StockoutPrediction{
		DrugID:     drugID,
		Confidence: ConfidenceLow,
		Method:     MethodTrendSimulation,
	}
}
