package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmstock/pharmstock-backend/internal/auth/jwt"
	"github.com/pharmstock/pharmstock-backend/pkg/actor"
	"github.com/pharmstock/pharmstock-backend/pkg/config"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

func newManager() *jwt.Manager {
	return jwt.NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "pharmstock-test",
	})
}

func token(t *testing.T, m *jwt.Manager, role string) string {
	t.Helper()
	pair, err := m.GenerateTokenPair(&jwt.UserInfo{ID: "u-1", Username: "anna", Role: role})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestAuthenticateSetsActor(t *testing.T) {
	m := newManager()

	var got *actor.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = actor.FromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, m, "staff"))
	rec := httptest.NewRecorder()

	Authenticate(m, logger.Nop())(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "anna", got.Username)
	assert.Equal(t, "staff", got.Role)
}

func TestAuthenticateMissingToken(t *testing.T) {
	m := newManager()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	Authenticate(m, logger.Nop())(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	m := newManager()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	for _, header := range []string{"Bearer", "Basic abc", "garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		Authenticate(m, logger.Nop())(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestRequireAdmin(t *testing.T) {
	m := newManager()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	chain := Authenticate(m, logger.Nop())(RequireAdmin(next))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, m, "staff"))
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "staff is rejected")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, m, "admin"))
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "admin passes")
}
