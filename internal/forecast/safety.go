package forecast

import "math"

// zScores maps service level to the standard normal quantile used in the
// Wilson safety-stock formula. Unknown levels fall back to 95%.
var zScores = map[float64]float64{
	0.90: 1.28,
	0.95: 1.65,
	0.98: 2.05,
	0.99: 2.33,
}

const defaultZ = 1.65

// defaultCV is the demand coefficient of variation assumed when historical
// variance is unavailable.
const defaultCV = 0.2

// SafetyStock sizes the reorder buffer: ceil(Z × σ × sqrt(leadTimeDays)).
// Pass sigma <= 0 to estimate it as 20% of the average daily use.
func SafetyStock(avgDailyUse, sigma float64, leadTimeDays int, serviceLevel float64) int {
	if leadTimeDays < 1 || avgDailyUse < 0 {
		return 0
	}

	z, ok := zScores[serviceLevel]
	if !ok {
		z = defaultZ
	}

	if sigma <= 0 {
		sigma = defaultCV * avgDailyUse
	}

	return int(math.Ceil(z * sigma * math.Sqrt(float64(leadTimeDays))))
}

// DemandSigma estimates the daily demand standard deviation from a usage
// series; zero when fewer than two observations exist.
func DemandSigma(usage []DayUsage) float64 {
	values := make([]float64, len(usage))
	for i, u := range usage {
		values[i] = u.Qty
	}
	return stddev(values)
}
