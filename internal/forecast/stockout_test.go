package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stockoutNow = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func TestPredictStockoutAlreadyOut(t *testing.T) {
	got := PredictStockout("D-001", 0, constantUsage(30, 5), stockoutNow)

	assert.True(t, got.HasStockout)
	assert.Equal(t, 0, got.DaysUntilStockout)
	assert.Equal(t, ConfidenceHigh, got.Confidence)
	assert.Equal(t, MethodAlreadyOut, got.Method)
	require.NotNil(t, got.StockoutDate)
	assert.Equal(t, stockoutNow, *got.StockoutDate)
}

func TestPredictStockoutFlatUsage(t *testing.T) {
	got := PredictStockout("D-001", 50, constantUsage(20, 5), stockoutNow)

	assert.True(t, got.HasStockout)
	assert.Equal(t, 10, got.DaysUntilStockout)
	assert.Equal(t, MethodAverageUsage, got.Method)
	assert.Equal(t, ConfidenceLow, got.Confidence, "20 observations is a small sample")
}

func TestPredictStockoutLargerSampleRaisesConfidence(t *testing.T) {
	got := PredictStockout("D-001", 50, constantUsage(35, 5), stockoutNow)

	assert.Equal(t, 10, got.DaysUntilStockout)
	assert.Equal(t, ConfidenceMedium, got.Confidence)
}

func TestPredictStockoutUpwardTrendSimulates(t *testing.T) {
	// Usage climbing 1 unit/day is a perfect fit, so confidence is HIGH.
	usage := make([]DayUsage, 30)
	for i := range usage {
		usage[i] = DayUsage{Date: seriesStart.AddDate(0, 0, i), Qty: float64(i + 1)}
	}

	got := PredictStockout("D-001", 100, usage, stockoutNow)

	require.True(t, got.HasStockout)
	assert.Equal(t, MethodTrendSimulation, got.Method)
	assert.Equal(t, ConfidenceHigh, got.Confidence)

	// Mean usage is 15.5/day and the slope adds ~0.03/day, so 100 units
	// last about a week.
	assert.Equal(t, 7, got.DaysUntilStockout)
}

func TestPredictStockoutNoConsumption(t *testing.T) {
	got := PredictStockout("D-001", 50, constantUsage(30, 0), stockoutNow)

	assert.False(t, got.HasStockout)
	assert.Nil(t, got.StockoutDate)
	assert.Equal(t, ConfidenceLow, got.Confidence)
}

func TestPredictStockoutSimulationCap(t *testing.T) {
	// Significant upward trend but a huge stockpile: nothing within a year.
	usage := make([]DayUsage, 30)
	for i := range usage {
		usage[i] = DayUsage{Date: seriesStart.AddDate(0, 0, i), Qty: float64(i + 1)}
	}

	got := PredictStockout("D-001", 10_000_000, usage, stockoutNow)
	assert.False(t, got.HasStockout)
	assert.Equal(t, MethodTrendSimulation, got.Method)
}
