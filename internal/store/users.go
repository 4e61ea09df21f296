package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is an application account. Passwords are stored as bcrypt hashes.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

var usersHeader = []string{
	"id", "username", "password_hash", "role", "active", "created_at",
}

// UserStore persists user accounts
type UserStore struct {
	s    *Store
	path string
}

// NewUserStore creates a new user store
func NewUserStore(s *Store) *UserStore {
	return &UserStore{s: s, path: s.path(usersFile)}
}

// LoadAll reads every user row. A missing file yields an empty slice.
func (r *UserStore) LoadAll(ctx context.Context) ([]User, error) {
	unlock := r.s.locks.acquire(r.path)
	defer unlock()

	rows, err := readRows(r.path, usersHeader)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(rows))
	for i, row := range rows {
		u, err := decodeUser(row)
		if err != nil {
			return nil, errors.ValidationRow(usersFile, i+2, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// SaveAll replaces the full collection via temp-file + atomic rename.
func (r *UserStore) SaveAll(ctx context.Context, users []User) error {
	for i := range users {
		if err := validateUser(&users[i]); err != nil {
			return errors.ValidationRow(usersFile, i+2, err)
		}
	}

	unlock := r.s.locks.acquire(r.path)
	defer unlock()

	rows := make([][]string, len(users))
	for i := range users {
		rows[i] = encodeUser(&users[i])
	}
	return writeRowsAtomic(r.path, usersHeader, rows)
}

func validateUser(u *User) error {
	if u.ID == "" {
		return fmt.Errorf("empty user id")
	}
	if u.Username == "" {
		return fmt.Errorf("empty username for user %s", u.ID)
	}
	if u.Role != RoleAdmin && u.Role != RoleStaff {
		return fmt.Errorf("unknown role %q for user %s", u.Role, u.ID)
	}
	return nil
}

func encodeUser(u *User) []string {
	return []string{
		u.ID,
		u.Username,
		u.PasswordHash,
		u.Role,
		strconv.FormatBool(u.Active),
		u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func decodeUser(row []string) (User, error) {
	var u User
	u.ID = row[0]
	u.Username = row[1]
	u.PasswordHash = row[2]
	u.Role = row[3]

	active, err := strconv.ParseBool(row[4])
	if err != nil {
		return u, fmt.Errorf("active: %w", err)
	}
	u.Active = active

	created, err := time.Parse(time.RFC3339, row[5])
	if err != nil {
		return u, fmt.Errorf("created_at: %w", err)
	}
	u.CreatedAt = created

	if err := validateUser(&u); err != nil {
		return u, err
	}
	return u, nil
}
