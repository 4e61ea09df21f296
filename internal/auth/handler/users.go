package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pharmstock/pharmstock-backend/internal/auth/service"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
)

// ListUsers lists all accounts. Admin only.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, users)
}

// CreateUser creates a new account. Admin only.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), &req, httputil.GetUserID(r.Context()), r.RemoteAddr)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, user)
}

// DeactivateUser disables an account. Admin only.
func (h *AuthHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeactivateUser(r.Context(), id, httputil.GetUserID(r.Context()), r.RemoteAddr); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// AccessLog returns the access log, newest first. Admin only.
func (h *AuthHandler) AccessLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.AccessLog(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}
