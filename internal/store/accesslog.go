package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// AccessLogEntry records an authentication or admin action for audit.
type AccessLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	IP        string    `json:"ip,omitempty"`
}

var accessLogHeader = []string{"timestamp", "user_id", "action", "detail", "ip"}

// AccessLogStore persists the append-only access log
type AccessLogStore struct {
	s    *Store
	path string
}

// NewAccessLogStore creates a new access log store
func NewAccessLogStore(s *Store) *AccessLogStore {
	return &AccessLogStore{s: s, path: s.path(accessLogFile)}
}

// Append writes a single entry, creating the file with its header on first use.
func (r *AccessLogStore) Append(ctx context.Context, e AccessLogEntry) error {
	if e.Action == "" {
		return errors.Validation(map[string]string{"access_log": "empty action"})
	}

	unlock := r.s.locks.acquire(r.path)
	defer unlock()

	row := []string{
		e.Timestamp.UTC().Format(time.RFC3339),
		e.UserID,
		e.Action,
		e.Detail,
		e.IP,
	}
	return appendRow(r.path, accessLogHeader, row)
}

// LoadAll reads the full access log. A missing file yields an empty slice.
func (r *AccessLogStore) LoadAll(ctx context.Context) ([]AccessLogEntry, error) {
	unlock := r.s.locks.acquire(r.path)
	defer unlock()

	rows, err := readRows(r.path, accessLogHeader)
	if err != nil {
		return nil, err
	}

	entries := make([]AccessLogEntry, 0, len(rows))
	for i, row := range rows {
		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			return nil, errors.ValidationRow(accessLogFile, i+2, fmt.Errorf("timestamp: %w", err))
		}
		entries = append(entries, AccessLogEntry{
			Timestamp: ts,
			UserID:    row[1],
			Action:    row[2],
			Detail:    row[3],
			IP:        row[4],
		})
	}
	return entries, nil
}
