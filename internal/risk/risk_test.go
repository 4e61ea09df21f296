package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pharmstock/pharmstock-backend/internal/inventory/enrich"
	"github.com/pharmstock/pharmstock-backend/internal/store"
)

var params = Params{LeadTimeDays: 7, TargetDaysSupply: 30, PackSize: 50}

func enriched(qty, safety int, avgUse float64, category string) enrich.EnrichedItem {
	return enrich.EnrichedItem{
		InventoryItem: store.InventoryItem{
			DrugID:      "D-001",
			DrugName:    "Test Drug",
			QtyOnHand:   qty,
			SafetyStock: safety,
			AvgDailyUse: avgUse,
			ExpiryDate:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Category: category,
	}
}

func TestAssessStockoutAlwaysCritical(t *testing.T) {
	for _, category := range []string{enrich.CategoryStandard, enrich.CategoryControlled, enrich.CategoryRefrigerated} {
		t.Run(category, func(t *testing.T) {
			got := Assess(enriched(0, 10, 2, category), StockoutEstimate{HasStockout: true}, params)
			assert.Equal(t, 100.0, got.Score)
			assert.Equal(t, UrgencyCritical, got.Urgency)
		})
	}
}

func TestAssessStockoutInsideLeadTime(t *testing.T) {
	got := Assess(enriched(10, 10, 2, enrich.CategoryStandard), StockoutEstimate{HasStockout: true, DaysUntilStockout: 5}, params)
	assert.Equal(t, 90.0, got.Score)
	assert.Equal(t, UrgencyCritical, got.Urgency)
}

func TestAssessScoreInterpolatesBeyondLeadTime(t *testing.T) {
	near := Assess(enriched(50, 10, 2, enrich.CategoryStandard), StockoutEstimate{HasStockout: true, DaysUntilStockout: 8}, params)
	far := Assess(enriched(50, 10, 2, enrich.CategoryStandard), StockoutEstimate{HasStockout: true, DaysUntilStockout: 37}, params)

	assert.Less(t, near.Score, 90.0)
	assert.GreaterOrEqual(t, near.Score, 20.0)
	assert.Greater(t, near.Score, far.Score, "closer stockout scores higher")
	assert.Equal(t, 20.0, far.Score, "a full supply span past lead time bottoms out")
}

func TestAssessCategoryFactor(t *testing.T) {
	est := StockoutEstimate{HasStockout: true, DaysUntilStockout: 20}

	std := Assess(enriched(50, 10, 2, enrich.CategoryStandard), est, params)
	fridge := Assess(enriched(50, 10, 2, enrich.CategoryRefrigerated), est, params)
	ctrl := Assess(enriched(50, 10, 2, enrich.CategoryControlled), est, params)

	assert.InDelta(t, std.Score*1.1, fridge.Score, 1e-9)
	assert.InDelta(t, std.Score*1.2, ctrl.Score, 1e-9)
}

func TestAssessScoreClamped(t *testing.T) {
	got := Assess(enriched(10, 10, 2, enrich.CategoryControlled), StockoutEstimate{HasStockout: true, DaysUntilStockout: 3}, params)
	assert.Equal(t, 100.0, got.Score, "90 × 1.2 clamps to 100")
}

func TestAssessNoStockoutBelowSafety(t *testing.T) {
	got := Assess(enriched(4, 10, 0, enrich.CategoryStandard), StockoutEstimate{}, params)
	// shortfall 0.6 → 20 + 60×0.6 = 56
	assert.InDelta(t, 56.0, got.Score, 1e-9)
	assert.Equal(t, UrgencyMedium, got.Urgency)
}

func TestAssessAdequateStockMinimalRisk(t *testing.T) {
	got := Assess(enriched(100, 10, 2, enrich.CategoryStandard), StockoutEstimate{}, params)
	assert.Equal(t, 20.0, got.Score)
	assert.Equal(t, UrgencyLow, got.Urgency)
}

func TestUrgencyBands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, UrgencyCritical},
		{80, UrgencyCritical},
		{79.9, UrgencyHigh},
		{60, UrgencyHigh},
		{59, UrgencyMedium},
		{40, UrgencyMedium},
		{39, UrgencyLow},
		{20, UrgencyLow},
		{19, UrgencyMinimal},
		{0, UrgencyMinimal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UrgencyFor(tt.score), "score %v", tt.score)
	}
}

func TestRecommendedQtyPackMultiples(t *testing.T) {
	tests := []struct {
		name    string
		qty     int
		safety  int
		avgUse  float64
		want    int
	}{
		{"zero stock, low usage", 0, 10, 0.5, 50},   // target max(20,15)=20 → 1 pack
		{"zero stock, high usage", 0, 10, 4, 150},   // target 120 → 3 packs
		{"partial stock", 30, 10, 4, 100},           // raw 90 → 2 packs
		{"fully stocked", 500, 10, 4, 0},            // no action
		{"exact pack boundary", 70, 10, 4, 50},      // raw 50 → 1 pack
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecommendedQty(tt.qty, tt.safety, tt.avgUse, params)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.Zero(t, got%params.PackSize, "always a pack multiple")
		})
	}
}

func TestEndToEndStockoutScenario(t *testing.T) {
	// Inventory item {qty 0, safety 10, standard}, lead time 7 days.
	item := enriched(0, 10, 2, enrich.CategoryStandard)
	got := Assess(item, StockoutEstimate{HasStockout: true, DaysUntilStockout: 0}, params)

	assert.Equal(t, 100.0, got.Score)
	assert.Equal(t, UrgencyCritical, got.Urgency)
	// ceil(max(20, 2×30)/50)×50 = ceil(60/50)×50 = 100
	assert.Equal(t, 100, got.RecommendedQty)
}
