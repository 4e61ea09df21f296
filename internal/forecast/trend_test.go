package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func series(start time.Time, qtys ...float64) []DayUsage {
	usage := make([]DayUsage, len(qtys))
	for i, q := range qtys {
		usage[i] = DayUsage{Date: start.AddDate(0, 0, i), Qty: q}
	}
	return usage
}

var seriesStart = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func TestTrendPerfectIncrease(t *testing.T) {
	days := []float64{0, 1, 2, 3, 4}
	values := []float64{2, 4, 6, 8, 10}

	got := Trend(days, values)
	assert.InDelta(t, 2.0, got.Slope, 1e-9)
	assert.InDelta(t, 2.0, got.Intercept, 1e-9)
	assert.InDelta(t, 1.0, got.R2, 1e-9)
	assert.True(t, got.Significant)
}

func TestTrendFlatSeriesNotSignificant(t *testing.T) {
	days := []float64{0, 1, 2, 3, 4, 5}
	values := []float64{5, 5, 5, 5, 5, 5}

	got := Trend(days, values)
	assert.InDelta(t, 0.0, got.Slope, 1e-9)
	assert.False(t, got.Significant, "no variance means no trend")
}

func TestTrendSmallSlopeNotSignificant(t *testing.T) {
	// Perfect fit but the slope is under 5% of the mean.
	days := []float64{0, 1, 2, 3}
	values := []float64{100, 100.5, 101, 101.5}

	got := Trend(days, values)
	assert.Greater(t, got.R2, 0.5)
	assert.False(t, got.Significant)
}

func TestTrendTooFewPoints(t *testing.T) {
	got := Trend([]float64{0}, []float64{5})
	assert.Zero(t, got.Slope)
	assert.False(t, got.Significant)
}

func TestTrendOfUsesDayOffsets(t *testing.T) {
	usage := series(seriesStart, 1, 2, 3, 4, 5, 6, 7)
	got := TrendOf(usage)
	assert.InDelta(t, 1.0, got.Slope, 1e-9)
	assert.True(t, got.Significant)
}

func TestEWMASeededWithFirstObservation(t *testing.T) {
	got := EWMA([]float64{10, 0, 0}, 0.3)
	assert.InDelta(t, 10.0, got[0], 1e-9)
	assert.InDelta(t, 7.0, got[1], 1e-9)
	assert.InDelta(t, 4.9, got[2], 1e-9)
}

func TestEWMAConstantSeriesStaysConstant(t *testing.T) {
	assert.InDelta(t, 5.0, EWMALast([]float64{5, 5, 5, 5, 5}, 0.3), 1e-9)
}

func TestEWMAEmpty(t *testing.T) {
	assert.Nil(t, EWMA(nil, 0.3))
	assert.Zero(t, EWMALast(nil, 0.3))
}
