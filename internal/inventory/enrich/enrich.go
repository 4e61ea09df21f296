// Package enrich derives actionable status from raw inventory records.
// Enrichment is a pure function of the record and "now"; results are
// recomputed on every read and never persisted.
package enrich

import (
	"math"
	"strings"
	"time"

	"github.com/pharmstock/pharmstock-backend/internal/store"
)

// Stock status, in decreasing order of severity for expiry and quantity.
const (
	StatusExpired  = "expired"
	StatusStockout = "stockout"
	StatusCritical = "critical"
	StatusLow      = "low"
	StatusAdequate = "adequate"
)

// Storage/handling category
const (
	CategoryControlled   = "controlled"
	CategoryRefrigerated = "refrigerated"
	CategoryStandard     = "standard"
)

// EnrichedItem is an inventory record plus derived fields. DaysRemaining is
// signed and goes negative once the batch has expired.
type EnrichedItem struct {
	store.InventoryItem
	Status        string `json:"status"`
	Category      string `json:"category"`
	DaysRemaining int    `json:"days_remaining"`
}

// CategoryTable drives category assignment. It is injected rather than kept
// as package state so tests and deployments can substitute their own lists.
type CategoryTable struct {
	// ControlledSubstances are matched against the drug name,
	// case-insensitively, as substrings.
	ControlledSubstances []string

	// RefrigeratedKeywords are matched against location and drug name.
	RefrigeratedKeywords []string
}

// DefaultCategoryTable returns the built-in controlled-substance list and
// refrigeration keywords.
func DefaultCategoryTable() CategoryTable {
	return CategoryTable{
		ControlledSubstances: []string{
			"morphine", "fentanyl", "oxycodone", "hydromorphone",
			"ketamine", "midazolam", "diazepam", "lorazepam",
			"propofol", "codeine", "methadone", "buprenorphine",
		},
		RefrigeratedKeywords: []string{
			"fridge", "refrigerated", "cold", "cooler",
			"insulin", "vaccine",
		},
	}
}

// Enrich computes the derived view of item at the given instant. Expiry takes
// priority over quantity-based status.
func Enrich(item store.InventoryItem, now time.Time, table CategoryTable) EnrichedItem {
	return EnrichedItem{
		InventoryItem: item,
		Status:        statusOf(item, now),
		Category:      table.Categorize(item),
		DaysRemaining: daysRemaining(item.ExpiryDate, now),
	}
}

// EnrichAll maps Enrich over a collection.
func EnrichAll(items []store.InventoryItem, now time.Time, table CategoryTable) []EnrichedItem {
	out := make([]EnrichedItem, len(items))
	for i, item := range items {
		out[i] = Enrich(item, now, table)
	}
	return out
}

func statusOf(item store.InventoryItem, now time.Time) string {
	if item.ExpiryDate.Before(now) {
		return StatusExpired
	}
	switch {
	case item.QtyOnHand == 0:
		return StatusStockout
	case float64(item.QtyOnHand) < float64(item.SafetyStock)*0.5:
		return StatusCritical
	case item.QtyOnHand < item.SafetyStock:
		return StatusLow
	default:
		return StatusAdequate
	}
}

// Categorize assigns a handling category; ambiguous items are standard.
// Controlled wins over refrigerated when both match.
func (t CategoryTable) Categorize(item store.InventoryItem) string {
	name := strings.ToLower(item.DrugName)
	for _, c := range t.ControlledSubstances {
		if strings.Contains(name, c) {
			return CategoryControlled
		}
	}

	location := strings.ToLower(item.Location)
	for _, kw := range t.RefrigeratedKeywords {
		if strings.Contains(location, kw) || strings.Contains(name, kw) {
			return CategoryRefrigerated
		}
	}
	return CategoryStandard
}

func daysRemaining(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}
