// Package store persists the four record families (inventory, users,
// transactions, access log) as CSV files with per-resource locking and
// atomic full-file replacement. Persisted rows are the sole source of
// truth; nothing is cached across calls.
package store

import (
	"os"

	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// Resource file names inside the data directory.
const (
	inventoryFile    = "inventory.csv"
	usersFile        = "users.csv"
	transactionsFile = "transactions.csv"
	accessLogFile    = "access_log.csv"
)

// Store owns the data directory and the per-resource lock table. The four
// record families are independent resources: no family's lock blocks
// another's.
type Store struct {
	dir   string
	locks *lockTable
	log   *logger.Logger
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IO("create data dir", err)
	}
	return &Store{
		dir:   dir,
		locks: newLockTable(),
		log:   log.WithComponent("store"),
	}, nil
}

// Dir returns the data directory backing this store.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return s.dir + string(os.PathSeparator) + name
}
