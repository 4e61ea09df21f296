package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmstock/pharmstock-backend/internal/store"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
)

// User management actions in the access log
const (
	actionUserCreated     = "USER_CREATED"
	actionUserDeactivated = "USER_DEACTIVATED"
)

// CreateUserRequest creates a new account
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin staff"`
}

// ListUsers returns every account sorted by username.
func (s *AuthService) ListUsers(ctx context.Context) ([]store.User, error) {
	users, err := s.users.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// CreateUser adds an account. Usernames are unique.
func (s *AuthService) CreateUser(ctx context.Context, req *CreateUserRequest, performedBy, ip string) (*store.User, error) {
	users, err := s.users.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Username == req.Username {
			return nil, errors.Conflict("username already taken")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	user := store.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
		Active:       true,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.SaveAll(ctx, append(users, user)); err != nil {
		return nil, err
	}

	s.audit(ctx, performedBy, actionUserCreated, "created "+user.Username, ip)
	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Str("role", user.Role).Msg("user created")
	return &user, nil
}

// DeactivateUser disables an account without deleting its history.
func (s *AuthService) DeactivateUser(ctx context.Context, userID, performedBy, ip string) error {
	users, err := s.users.LoadAll(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.NotFound("user")
	}
	if !users[idx].Active {
		return errors.Conflict("user already deactivated")
	}

	users[idx].Active = false
	if err := s.users.SaveAll(ctx, users); err != nil {
		return err
	}

	s.audit(ctx, performedBy, actionUserDeactivated, "deactivated "+users[idx].Username, ip)
	return nil
}

// AccessLog returns the access log entries, newest first.
func (s *AuthService) AccessLog(ctx context.Context) ([]store.AccessLogEntry, error) {
	entries, err := s.accessLog.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	return entries, nil
}
