package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmstock/pharmstock-backend/internal/store"
)

// FixtureFactory creates test records with sensible defaults
type FixtureFactory struct {
	sequence int
	now      time.Time
}

// NewFixtureFactory creates a new fixture factory anchored at now
func NewFixtureFactory(now time.Time) *FixtureFactory {
	return &FixtureFactory{now: now}
}

func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// InventoryItem creates an inventory item with defaults: a year of shelf
// life, adequate stock and a modest daily use.
func (f *FixtureFactory) InventoryItem(opts ...func(*store.InventoryItem)) store.InventoryItem {
	seq := f.nextSeq()

	item := store.InventoryItem{
		DrugID:      fmt.Sprintf("D-%03d", seq),
		DrugName:    fmt.Sprintf("Test Drug %d", seq),
		Location:    "Shelf A1",
		BatchLot:    fmt.Sprintf("LOT-%03d", seq),
		QtyOnHand:   100,
		ExpiryDate:  f.now.AddDate(1, 0, 0),
		SafetyStock: 10,
		AvgDailyUse: 4,
	}

	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// WithDrugName sets the drug name
func WithDrugName(name string) func(*store.InventoryItem) {
	return func(i *store.InventoryItem) {
		i.DrugName = name
	}
}

// WithQty sets the quantity on hand
func WithQty(qty int) func(*store.InventoryItem) {
	return func(i *store.InventoryItem) {
		i.QtyOnHand = qty
	}
}

// WithExpiry sets the expiry date
func WithExpiry(expiry time.Time) func(*store.InventoryItem) {
	return func(i *store.InventoryItem) {
		i.ExpiryDate = expiry
	}
}

// WithLocation sets the storage location
func WithLocation(location string) func(*store.InventoryItem) {
	return func(i *store.InventoryItem) {
		i.Location = location
	}
}

// WithSafetyStock sets the safety stock level
func WithSafetyStock(level int) func(*store.InventoryItem) {
	return func(i *store.InventoryItem) {
		i.SafetyStock = level
	}
}

// User creates an account with the given password hashed at minimum cost.
func (f *FixtureFactory) User(username, password, role string, opts ...func(*store.User)) store.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	user := store.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    f.now,
	}

	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// Inactive marks the account as deactivated
func Inactive() func(*store.User) {
	return func(u *store.User) {
		u.Active = false
	}
}

// UseTransaction creates a USE transaction for the drug, daysAgo days before
// the factory's anchor time.
func (f *FixtureFactory) UseTransaction(drugID string, qty, daysAgo int) store.Transaction {
	return store.Transaction{
		TxnID:     uuid.New().String(),
		Timestamp: f.now.AddDate(0, 0, -daysAgo),
		UserID:    "u-test",
		DrugID:    drugID,
		Action:    store.ActionUse,
		QtyChange: -qty,
	}
}
