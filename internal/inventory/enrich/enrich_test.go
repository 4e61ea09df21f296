package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pharmstock/pharmstock-backend/internal/store"
)

var now = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func item(qty, safety int, expiry time.Time) store.InventoryItem {
	return store.InventoryItem{
		DrugID:      "D-001",
		DrugName:    "Amoxicillin 500mg",
		Location:    "Main Pharmacy",
		BatchLot:    "LOT-1",
		QtyOnHand:   qty,
		ExpiryDate:  expiry,
		SafetyStock: safety,
		AvgDailyUse: 3,
	}
}

func TestStatusDecisionTable(t *testing.T) {
	future := now.AddDate(0, 6, 0)
	past := now.AddDate(0, 0, -1)

	tests := []struct {
		name   string
		qty    int
		safety int
		expiry time.Time
		want   string
	}{
		{"expired beats quantity", 100, 10, past, StatusExpired},
		{"expired even at zero stock", 0, 10, past, StatusExpired},
		{"stockout", 0, 10, future, StatusStockout},
		{"critical below half safety", 4, 10, future, StatusCritical},
		{"low at exactly half safety", 5, 10, future, StatusLow},
		{"low below safety", 9, 10, future, StatusLow},
		{"adequate at safety", 10, 10, future, StatusAdequate},
		{"adequate above safety", 50, 10, future, StatusAdequate},
		{"zero safety stock never low", 1, 0, future, StatusAdequate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Enrich(item(tt.qty, tt.safety, tt.expiry), now, DefaultCategoryTable())
			assert.Equal(t, tt.want, got.Status)
		})
	}
}

func TestDaysRemaining(t *testing.T) {
	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"one week out", now.AddDate(0, 0, 7), 7},
		{"half a day rounds up", now.Add(12 * time.Hour), 1},
		{"same instant", now, 0},
		{"expired yesterday", now.AddDate(0, 0, -1), -1},
		{"expired an hour ago", now.Add(-time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Enrich(item(10, 5, tt.expiry), now, DefaultCategoryTable())
			assert.Equal(t, tt.want, got.DaysRemaining)
		})
	}
}

func TestCategorize(t *testing.T) {
	table := DefaultCategoryTable()
	future := now.AddDate(1, 0, 0)

	tests := []struct {
		name     string
		drugName string
		location string
		want     string
	}{
		{"controlled by name", "Morphine Sulfate 10mg", "Main Pharmacy", CategoryControlled},
		{"controlled case-insensitive", "FENTANYL patch", "Ward A", CategoryControlled},
		{"refrigerated by location", "Amoxicillin", "Fridge 2", CategoryRefrigerated},
		{"refrigerated by name", "Insulin Glargine", "Main Pharmacy", CategoryRefrigerated},
		{"controlled wins over fridge", "Propofol", "Fridge 1", CategoryControlled},
		{"plain standard", "Paracetamol 500mg", "Shelf 3", CategoryStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := item(10, 5, future)
			it.DrugName = tt.drugName
			it.Location = tt.location
			got := Enrich(it, now, table)
			assert.Equal(t, tt.want, got.Category)
		})
	}
}

func TestCategoryTableIsInjectable(t *testing.T) {
	custom := CategoryTable{ControlledSubstances: []string{"paracetamol"}}
	it := item(10, 5, now.AddDate(1, 0, 0))
	it.DrugName = "Paracetamol 500mg"

	got := Enrich(it, now, custom)
	assert.Equal(t, CategoryControlled, got.Category)
}
