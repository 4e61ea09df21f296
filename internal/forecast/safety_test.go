package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafetyStockWilson(t *testing.T) {
	tests := []struct {
		name         string
		avgDailyUse  float64
		sigma        float64
		leadTimeDays int
		serviceLevel float64
		want         int
	}{
		// ceil(1.65 × 2 × 3) with the default 20% CV assumption (σ = 2)
		{"default sigma at 95%", 10, 0, 9, 0.95, 10},
		{"explicit sigma", 10, 4, 4, 0.95, 14}, // ceil(1.65×4×2) = 14
		{"90 percent z", 10, 0, 9, 0.90, 8},    // ceil(1.28×2×3) = 8
		{"98 percent z", 10, 0, 9, 0.98, 13},   // ceil(2.05×2×3) = 13
		{"99 percent z", 10, 0, 9, 0.99, 14},   // ceil(2.33×2×3) = 14
		{"unknown level defaults to 95", 10, 0, 9, 0.80, 10},
		{"zero usage", 0, 0, 7, 0.95, 0},
		{"invalid lead time", 10, 0, 0, 0.95, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafetyStock(tt.avgDailyUse, tt.sigma, tt.leadTimeDays, tt.serviceLevel)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDemandSigma(t *testing.T) {
	usage := series(seriesStart, 2, 4, 4, 4, 5, 5, 7, 9)
	got := DemandSigma(usage)
	assert.InDelta(t, 2.0, got, 1e-9)

	assert.Zero(t, DemandSigma(nil))
	assert.Zero(t, DemandSigma(usage[:1]))
}
