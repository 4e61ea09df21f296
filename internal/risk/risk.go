// Package risk turns stock state and stockout predictions into the single
// decision table consumed by every report surface: a 0–100 risk score, an
// urgency tier and a pack-rounded reorder quantity.
package risk

import (
	"fmt"
	"math"

	"github.com/pharmstock/pharmstock-backend/internal/inventory/enrich"
)

// Urgency tiers, from score bands.
const (
	UrgencyCritical = "CRITICAL"
	UrgencyHigh     = "HIGH"
	UrgencyMedium   = "MEDIUM"
	UrgencyLow      = "LOW"
	UrgencyMinimal  = "MINIMAL"
)

// DefaultPackSize is the fixed order multiple.
const DefaultPackSize = 50

// Params are the caller-supplied decision tunables.
type Params struct {
	LeadTimeDays     int
	TargetDaysSupply int
	PackSize         int
}

// Assessment is the decision output for one item.
type Assessment struct {
	DrugID         string  `json:"drug_id"`
	DrugName       string  `json:"drug_name"`
	Score          float64 `json:"score"`
	Urgency        string  `json:"urgency"`
	RecommendedQty int     `json:"recommended_qty"`
	Rationale      string  `json:"rationale"`
}

// StockoutEstimate is the slice of a stockout prediction the scorer needs.
type StockoutEstimate struct {
	HasStockout       bool
	DaysUntilStockout int
}

// Assess scores one enriched item. Already-out items score 100; items
// projected to exhaust within the lead time score 90; otherwise the score
// interpolates between 20 and 80 by how close the stockout date is to the
// lead time, falling back to safety-stock proximity when no stockout is
// predictable. Controlled and refrigerated items carry a category factor.
func Assess(item enrich.EnrichedItem, stockout StockoutEstimate, p Params) Assessment {
	if p.PackSize <= 0 {
		p.PackSize = DefaultPackSize
	}

	score, rationale := baseScore(item, stockout, p)

	score *= categoryFactor(item.Category)
	if score > 100 {
		score = 100
	}

	return Assessment{
		DrugID:         item.DrugID,
		DrugName:       item.DrugName,
		Score:          score,
		Urgency:        UrgencyFor(score),
		RecommendedQty: RecommendedQty(item.QtyOnHand, item.SafetyStock, item.AvgDailyUse, p),
		Rationale:      rationale,
	}
}

func baseScore(item enrich.EnrichedItem, stockout StockoutEstimate, p Params) (float64, string) {
	if item.QtyOnHand == 0 {
		return 100, "already out of stock"
	}

	if stockout.HasStockout {
		days := stockout.DaysUntilStockout
		if days <= p.LeadTimeDays {
			return 90, fmt.Sprintf("projected stockout in %d days, inside the %d-day lead time", days, p.LeadTimeDays)
		}

		// Beyond the lead time the score falls linearly from 80 down to 20
		// across one target-days-of-supply span.
		span := float64(p.TargetDaysSupply)
		if span <= 0 {
			span = 30
		}
		frac := float64(days-p.LeadTimeDays) / span
		score := 80 - 60*clamp01(frac)
		return score, fmt.Sprintf("projected stockout in %d days", days)
	}

	// No predictable stockout: score by how far below safety stock we sit.
	if item.SafetyStock > 0 && item.QtyOnHand < item.SafetyStock {
		shortfall := 1 - float64(item.QtyOnHand)/float64(item.SafetyStock)
		return 20 + 60*shortfall, fmt.Sprintf("stock below safety level (%d/%d)", item.QtyOnHand, item.SafetyStock)
	}
	return 20, "stock adequate, no projected stockout"
}

func categoryFactor(category string) float64 {
	switch category {
	case enrich.CategoryControlled:
		return 1.2
	case enrich.CategoryRefrigerated:
		return 1.1
	default:
		return 1.0
	}
}

// UrgencyFor maps a risk score to its tier.
func UrgencyFor(score float64) string {
	switch {
	case score >= 80:
		return UrgencyCritical
	case score >= 60:
		return UrgencyHigh
	case score >= 40:
		return UrgencyMedium
	case score >= 20:
		return UrgencyLow
	default:
		return UrgencyMinimal
	}
}

// RecommendedQty sizes the reorder: bring stock up to
// max(2×safetyStock, avgDailyUse×targetDays), rounded up to the pack size.
// Zero means no action; never negative.
func RecommendedQty(qtyOnHand, safetyStock int, avgDailyUse float64, p Params) int {
	packSize := p.PackSize
	if packSize <= 0 {
		packSize = DefaultPackSize
	}

	target := math.Max(float64(2*safetyStock), avgDailyUse*float64(p.TargetDaysSupply))
	raw := math.Ceil(target - float64(qtyOnHand))
	if raw <= 0 {
		return 0
	}

	packs := int(math.Ceil(raw / float64(packSize)))
	return packs * packSize
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
