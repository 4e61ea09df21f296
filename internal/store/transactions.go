package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// Transaction actions
const (
	ActionUse      = "USE"
	ActionReceive  = "RECEIVE"
	ActionAdjusted = "ADJUSTED"
)

// Transaction is an append-only record of a stock mutation. QtyChange is
// negative for USE. Immutable once written; never deleted by this package.
type Transaction struct {
	TxnID     string    `json:"txn_id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	DrugID    string    `json:"drug_id"`
	Action    string    `json:"action"`
	QtyChange int       `json:"qty_change"`
	Details   string    `json:"details,omitempty"`
}

var transactionsHeader = []string{
	"txn_id", "timestamp", "user_id", "drug_id", "action", "qty_change", "details",
}

// TransactionStore persists the append-only transaction log
type TransactionStore struct {
	s    *Store
	path string
}

// NewTransactionStore creates a new transaction store
func NewTransactionStore(s *Store) *TransactionStore {
	return &TransactionStore{s: s, path: s.path(transactionsFile)}
}

// LoadAll reads the full transaction log. A missing file yields an empty slice.
func (r *TransactionStore) LoadAll(ctx context.Context) ([]Transaction, error) {
	unlock := r.s.locks.acquire(r.path)
	defer unlock()

	rows, err := readRows(r.path, transactionsHeader)
	if err != nil {
		return nil, err
	}

	txns := make([]Transaction, 0, len(rows))
	for i, row := range rows {
		txn, err := decodeTransaction(row)
		if err != nil {
			return nil, errors.ValidationRow(transactionsFile, i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// Append writes a single transaction to the end of the log, creating the
// file with its header on first use.
func (r *TransactionStore) Append(ctx context.Context, txn Transaction) error {
	if err := validateTransaction(&txn); err != nil {
		return errors.Validation(map[string]string{"transaction": err.Error()})
	}

	unlock := r.s.locks.acquire(r.path)
	defer unlock()

	return appendRow(r.path, transactionsHeader, encodeTransaction(&txn))
}

// LoadRecent returns transactions whose timestamp falls within the last
// `days` days relative to now.
func (r *TransactionStore) LoadRecent(ctx context.Context, now time.Time, days int) ([]Transaction, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := now.AddDate(0, 0, -days)
	recent := make([]Transaction, 0, len(all))
	for _, txn := range all {
		if !txn.Timestamp.Before(cutoff) {
			recent = append(recent, txn)
		}
	}
	return recent, nil
}

func validateTransaction(t *Transaction) error {
	if t.TxnID == "" {
		return fmt.Errorf("empty txn_id")
	}
	switch t.Action {
	case ActionUse, ActionReceive, ActionAdjusted:
	default:
		return fmt.Errorf("unknown action %q in txn %s", t.Action, t.TxnID)
	}
	if t.DrugID == "" {
		return fmt.Errorf("empty drug_id in txn %s", t.TxnID)
	}
	return nil
}

func encodeTransaction(t *Transaction) []string {
	return []string{
		t.TxnID,
		t.Timestamp.UTC().Format(time.RFC3339),
		t.UserID,
		t.DrugID,
		t.Action,
		strconv.Itoa(t.QtyChange),
		t.Details,
	}
}

func decodeTransaction(row []string) (Transaction, error) {
	var t Transaction
	t.TxnID = row[0]

	ts, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return t, fmt.Errorf("timestamp: %w", err)
	}
	t.Timestamp = ts

	t.UserID = row[2]
	t.DrugID = row[3]
	t.Action = row[4]

	qty, err := strconv.Atoi(row[5])
	if err != nil {
		return t, fmt.Errorf("qty_change: %w", err)
	}
	t.QtyChange = qty
	t.Details = row[6]

	if err := validateTransaction(&t); err != nil {
		return t, err
	}
	return t, nil
}
