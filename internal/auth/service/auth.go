// Package service implements authentication against the CSV-backed user
// store: bcrypt credential checks, JWT issuance and the append-only access
// log. Failed attempts are logged the same as successes.
package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pharmstock/pharmstock-backend/internal/auth/jwt"
	"github.com/pharmstock/pharmstock-backend/internal/store"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// Access log actions
const (
	actionLoginSuccess = "LOGIN_SUCCESS"
	actionLoginFailed  = "LOGIN_FAILED"
	actionTokenRefresh = "TOKEN_REFRESH"
)

// AuthService handles authentication logic
type AuthService struct {
	users      *store.UserStore
	accessLog  *store.AccessLogStore
	jwtManager *jwt.Manager
	logger     *logger.Logger
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users *store.UserStore, accessLog *store.AccessLogStore, jwtManager *jwt.Manager, log *logger.Logger) *AuthService {
	return &AuthService{
		users:      users,
		accessLog:  accessLog,
		jwtManager: jwtManager,
		logger:     log,
		now:        time.Now,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresAt    time.Time  `json:"expires_at"`
	TokenType    string     `json:"token_type"`
	User         store.User `json:"user"`
}

// Login authenticates a user and returns tokens. Inactive accounts and bad
// passwords get the same error so the response does not leak which usernames
// exist.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, ip string) (*LoginResponse, error) {
	user, err := s.findByUsername(ctx, req.Username)
	if err != nil {
		s.audit(ctx, "", actionLoginFailed, "unknown username "+req.Username, ip)
		return nil, errors.InvalidCredentials()
	}

	if !user.Active {
		s.audit(ctx, user.ID, actionLoginFailed, "inactive account", ip)
		return nil, errors.InvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.audit(ctx, user.ID, actionLoginFailed, "wrong password", ip)
		return nil, errors.InvalidCredentials()
	}

	tokens, err := s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate tokens")
		return nil, errors.Internal("failed to generate tokens")
	}

	s.audit(ctx, user.ID, actionLoginSuccess, "", ip)
	s.logger.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user logged in")

	return &LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
		TokenType:    tokens.TokenType,
		User:         user,
	}, nil
}

// Refresh issues a new token pair from a valid refresh token. The account
// must still exist and be active.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.findByID(ctx, claims.UserID)
	if err != nil || !user.Active {
		return nil, errors.Unauthorized("account no longer active")
	}

	s.audit(ctx, user.ID, actionTokenRefresh, "", ip)

	return s.jwtManager.GenerateTokenPair(&jwt.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

// GetCurrentUser returns the account behind a user ID.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*store.User, error) {
	user, err := s.findByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) findByUsername(ctx context.Context, username string) (store.User, error) {
	users, err := s.users.LoadAll(ctx)
	if err != nil {
		return store.User{}, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return store.User{}, errors.NotFound("user")
}

func (s *AuthService) findByID(ctx context.Context, id string) (store.User, error) {
	users, err := s.users.LoadAll(ctx)
	if err != nil {
		return store.User{}, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return store.User{}, errors.NotFound("user")
}

// audit appends an access log entry. Logging failures are reported but never
// block the authentication flow.
func (s *AuthService) audit(ctx context.Context, userID, action, detail, ip string) {
	err := s.accessLog.Append(ctx, store.AccessLogEntry{
		Timestamp: s.now().UTC(),
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		IP:        ip,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to append access log")
	}
}
