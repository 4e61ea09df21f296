package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// dateLayout is the calendar-date encoding for expiry dates.
const dateLayout = "2006-01-02"

// InventoryItem is a raw stock record. Identity is drug ID × location ×
// batch lot. QtyOnHand is never negative.
type InventoryItem struct {
	DrugID      string    `json:"drug_id"`
	DrugName    string    `json:"drug_name"`
	Location    string    `json:"location"`
	BatchLot    string    `json:"batch_lot"`
	QtyOnHand   int       `json:"qty_on_hand"`
	ExpiryDate  time.Time `json:"expiry_date"`
	SafetyStock int       `json:"safety_stock"`
	AvgDailyUse float64   `json:"avg_daily_use"`
}

// Key returns the composite identity of the item.
func (it *InventoryItem) Key() string {
	return it.DrugID + "|" + it.Location + "|" + it.BatchLot
}

var inventoryHeader = []string{
	"drug_id", "drug_name", "location", "batch_lot",
	"qty_on_hand", "expiry_date", "safety_stock", "avg_daily_use",
}

// InventoryStore persists inventory items
type InventoryStore struct {
	s    *Store
	path string
}

// NewInventoryStore creates a new inventory store
func NewInventoryStore(s *Store) *InventoryStore {
	return &InventoryStore{s: s, path: s.path(inventoryFile)}
}

// LoadAll reads every inventory row. A missing file yields an empty slice.
func (r *InventoryStore) LoadAll(ctx context.Context) ([]InventoryItem, error) {
	unlock := r.s.locks.acquire(r.path)
	defer unlock()

	rows, err := readRows(r.path, inventoryHeader)
	if err != nil {
		return nil, err
	}

	items := make([]InventoryItem, 0, len(rows))
	for i, row := range rows {
		item, err := decodeInventoryItem(row)
		if err != nil {
			// +2: one for the header, one for 1-based line numbers
			return nil, errors.ValidationRow(inventoryFile, i+2, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveAll replaces the full collection via temp-file + atomic rename.
func (r *InventoryStore) SaveAll(ctx context.Context, items []InventoryItem) error {
	for i := range items {
		if err := validateInventoryItem(&items[i]); err != nil {
			return errors.ValidationRow(inventoryFile, i+2, err)
		}
	}

	unlock := r.s.locks.acquire(r.path)
	defer unlock()

	rows := make([][]string, len(items))
	for i := range items {
		rows[i] = encodeInventoryItem(&items[i])
	}
	return writeRowsAtomic(r.path, inventoryHeader, rows)
}

func validateInventoryItem(it *InventoryItem) error {
	if it.DrugID == "" {
		return fmt.Errorf("empty drug_id")
	}
	if it.QtyOnHand < 0 {
		return fmt.Errorf("negative qty_on_hand %d for %s", it.QtyOnHand, it.DrugID)
	}
	if it.SafetyStock < 0 {
		return fmt.Errorf("negative safety_stock %d for %s", it.SafetyStock, it.DrugID)
	}
	if it.AvgDailyUse < 0 {
		return fmt.Errorf("negative avg_daily_use %v for %s", it.AvgDailyUse, it.DrugID)
	}
	return nil
}

func encodeInventoryItem(it *InventoryItem) []string {
	return []string{
		it.DrugID,
		it.DrugName,
		it.Location,
		it.BatchLot,
		strconv.Itoa(it.QtyOnHand),
		it.ExpiryDate.Format(dateLayout),
		strconv.Itoa(it.SafetyStock),
		strconv.FormatFloat(it.AvgDailyUse, 'f', -1, 64),
	}
}

func decodeInventoryItem(row []string) (InventoryItem, error) {
	var it InventoryItem
	it.DrugID = row[0]
	it.DrugName = row[1]
	it.Location = row[2]
	it.BatchLot = row[3]

	qty, err := strconv.Atoi(row[4])
	if err != nil {
		return it, fmt.Errorf("qty_on_hand: %w", err)
	}
	it.QtyOnHand = qty

	expiry, err := time.Parse(dateLayout, row[5])
	if err != nil {
		return it, fmt.Errorf("expiry_date: %w", err)
	}
	it.ExpiryDate = expiry

	safety, err := strconv.Atoi(row[6])
	if err != nil {
		return it, fmt.Errorf("safety_stock: %w", err)
	}
	it.SafetyStock = safety

	avg, err := strconv.ParseFloat(row[7], 64)
	if err != nil {
		return it, fmt.Errorf("avg_daily_use: %w", err)
	}
	it.AvgDailyUse = avg

	if err := validateInventoryItem(&it); err != nil {
		return it, err
	}
	return it, nil
}
