package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmstock/pharmstock-backend/internal/auth/jwt"
	"github.com/pharmstock/pharmstock-backend/internal/store"
	"github.com/pharmstock/pharmstock-backend/pkg/config"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

func newTestAuth(t *testing.T) (*AuthService, *store.UserStore, *store.AccessLogStore) {
	t.Helper()

	st, err := store.New(t.TempDir(), logger.Nop())
	require.NoError(t, err)

	users := store.NewUserStore(st)
	accessLog := store.NewAccessLogStore(st)

	manager := jwt.NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "pharmstock-test",
	})

	return NewAuthService(users, accessLog, manager, logger.Nop()), users, accessLog
}

func seedUser(t *testing.T, users *store.UserStore, username, password, role string, active bool) store.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	existing, err := users.LoadAll(context.Background())
	require.NoError(t, err)

	u := store.User{
		ID:           "u-" + username,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, users.SaveAll(context.Background(), append(existing, u)))
	return u
}

func TestLoginSuccess(t *testing.T) {
	svc, users, accessLog := newTestAuth(t)
	seedUser(t, users, "anna", "correct-horse", store.RoleStaff, true)

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Username: "anna", Password: "correct-horse",
	}, "10.0.0.1")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "anna", resp.User.Username)
	assert.Empty(t, resp.User.PasswordHash, "hash is never serialized")

	entries, err := accessLog.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "LOGIN_SUCCESS", entries[0].Action)
	assert.Equal(t, "10.0.0.1", entries[0].IP)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users, accessLog := newTestAuth(t)
	seedUser(t, users, "anna", "correct-horse", store.RoleStaff, true)

	_, err := svc.Login(context.Background(), &LoginRequest{
		Username: "anna", Password: "wrong",
	}, "10.0.0.1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	entries, err := accessLog.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "LOGIN_FAILED", entries[0].Action)
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	seedUser(t, users, "anna", "correct-horse", store.RoleStaff, true)

	_, unknownErr := svc.Login(context.Background(), &LoginRequest{Username: "ghost", Password: "x"}, "")
	_, wrongErr := svc.Login(context.Background(), &LoginRequest{Username: "anna", Password: "x"}, "")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error(), "unknown user and wrong password look the same")
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	seedUser(t, users, "left", "correct-horse", store.RoleStaff, false)

	_, err := svc.Login(context.Background(), &LoginRequest{
		Username: "left", Password: "correct-horse",
	}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
}

func TestRefreshRoundTrip(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	seedUser(t, users, "anna", "correct-horse", store.RoleStaff, true)

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Username: "anna", Password: "correct-horse",
	}, "")
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), resp.RefreshToken, "")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestRefreshDeactivatedAccount(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	u := seedUser(t, users, "anna", "correct-horse", store.RoleStaff, true)

	resp, err := svc.Login(context.Background(), &LoginRequest{
		Username: "anna", Password: "correct-horse",
	}, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateUser(context.Background(), u.ID, "admin-1", ""))

	_, err = svc.Refresh(context.Background(), resp.RefreshToken, "")
	assert.Error(t, err, "tokens of deactivated accounts stop refreshing")
}

func TestRefreshGarbageToken(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	_, err := svc.Refresh(context.Background(), "not-a-token", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTokenInvalid))
}

func TestCreateUser(t *testing.T) {
	svc, users, _ := newTestAuth(t)

	created, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Username: "bram", Password: "long-enough-pw", Role: store.RoleAdmin,
	}, "admin-1", "")
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	assert.NotEqual(t, "long-enough-pw", created.PasswordHash, "password stored hashed")

	persisted, err := users.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(persisted[0].PasswordHash), []byte("long-enough-pw")))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	seedUser(t, users, "anna", "correct-horse", store.RoleStaff, true)

	_, err := svc.CreateUser(context.Background(), &CreateUserRequest{
		Username: "anna", Password: "long-enough-pw", Role: store.RoleStaff,
	}, "admin-1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestDeactivateUnknownUser(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	err := svc.DeactivateUser(context.Background(), "u-404", "admin-1", "")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestAccessLogNewestFirst(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	seedUser(t, users, "anna", "correct-horse", store.RoleStaff, true)

	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Hour), base.Add(30 * time.Minute)}
	i := 0
	svc.now = func() time.Time { ts := times[i%len(times)]; i++; return ts }

	for range times {
		svc.Login(context.Background(), &LoginRequest{Username: "anna", Password: "correct-horse"}, "")
	}

	entries, err := svc.AccessLog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, base.Add(time.Hour), entries[0].Timestamp)
	assert.Equal(t, base, entries[2].Timestamp)
}
