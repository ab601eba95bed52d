// ABOUTME: HTTP API surface with routing, response envelope, and error mapping
// ABOUTME: Translates the typed domain error taxonomy into status codes at the boundary

package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kirppis/kirppis/internal/auth"
	"github.com/kirppis/kirppis/internal/store"
)

// API holds the HTTP handlers for the versioned JSON API.
type API struct {
	store  store.Store
	auth   *auth.Service
	tokens *auth.TokenManager
	logger *slog.Logger
}

// New creates the API handler set.
func New(st store.Store, authSvc *auth.Service, tokens *auth.TokenManager) *API {
	return &API{
		store:  st,
		auth:   authSvc,
		tokens: tokens,
		logger: slog.Default().With("component", "api"),
	}
}

// RegisterRoutes registers all API endpoints on the mux. Public reads are
// unauthenticated; everything else goes through the token middleware, and
// admin-only routes additionally through the role gate.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	authed := auth.Middleware(a.store, a.tokens)
	admin := func(h http.Handler) http.Handler {
		return authed(auth.RequireAdmin()(h))
	}

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", a.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", a.handleLogin)
	mux.Handle("POST /api/v1/auth/logout", authed(http.HandlerFunc(a.handleLogout)))
	mux.Handle("GET /api/v1/auth/me", authed(http.HandlerFunc(a.handleMe)))
	mux.Handle("PATCH /api/v1/auth/update-password", authed(http.HandlerFunc(a.handleUpdatePassword)))

	// Users
	mux.Handle("GET /api/v1/users", admin(http.HandlerFunc(a.handleListUsers)))
	mux.Handle("GET /api/v1/users/{id}", authed(http.HandlerFunc(a.handleGetUser)))
	mux.Handle("PATCH /api/v1/users/{id}", authed(http.HandlerFunc(a.handleUpdateUser)))
	mux.Handle("DELETE /api/v1/users/{id}", admin(http.HandlerFunc(a.handleDeleteUser)))
	mux.Handle("PATCH /api/v1/users/{id}/role", admin(http.HandlerFunc(a.handleUpdateUserRole)))

	// Categories
	mux.HandleFunc("GET /api/v1/categories", a.handleListCategories)
	mux.HandleFunc("GET /api/v1/categories/{id}", a.handleGetCategory)
	mux.Handle("POST /api/v1/categories", admin(http.HandlerFunc(a.handleCreateCategory)))
	mux.Handle("PATCH /api/v1/categories/{id}", admin(http.HandlerFunc(a.handleUpdateCategory)))
	mux.Handle("DELETE /api/v1/categories/{id}", admin(http.HandlerFunc(a.handleDeleteCategory)))

	// Items
	mux.HandleFunc("GET /api/v1/items", a.handleListItems)
	mux.HandleFunc("GET /api/v1/items/{id}", a.handleGetItem)
	mux.Handle("POST /api/v1/items", authed(http.HandlerFunc(a.handleCreateItem)))
	mux.Handle("PATCH /api/v1/items/{id}", authed(http.HandlerFunc(a.handleUpdateItem)))
	mux.Handle("DELETE /api/v1/items/{id}", authed(http.HandlerFunc(a.handleDeleteItem)))
	mux.Handle("PATCH /api/v1/items/{id}/reserve", authed(http.HandlerFunc(a.handleReserveItem)))
	mux.Handle("PATCH /api/v1/items/{id}/cancel-reservation", authed(http.HandlerFunc(a.handleCancelReservation)))
	mux.Handle("PATCH /api/v1/items/{id}/mark-sold", authed(http.HandlerFunc(a.handleMarkSold)))
}

// writeJSON writes a response body with the given status.
func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("encoding response", "error", err)
	}
}

// errorBody is the failure envelope. Client errors carry status "fail",
// server errors "error", mirroring the success envelope's "success".
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (a *API) fail(w http.ResponseWriter, status int, message string) {
	kind := "fail"
	if status >= 500 {
		kind = "error"
	}
	a.writeJSON(w, status, errorBody{Status: kind, Message: message})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Anything unrecognized is logged and surfaces as a generic 500.
func (a *API) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case auth.IsValidationError(err):
		a.fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		a.fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrDuplicateEmail):
		a.fail(w, http.StatusConflict, "email already in use")
	case errors.Is(err, store.ErrDuplicateCategory):
		a.fail(w, http.StatusConflict, "category name already in use")
	case errors.Is(err, store.ErrItemConflict):
		a.fail(w, http.StatusConflict, "item status changed, reload and retry")
	case errors.Is(err, store.ErrNotFound):
		a.fail(w, http.StatusNotFound, "not found")
	default:
		a.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		a.fail(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes a JSON request body, rejecting unknown garbage early.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return auth.NewValidationError("invalid request body")
	}
	return nil
}

// decodeOptionalBody decodes a JSON request body when one was sent. A
// missing body is fine; a malformed one is still a validation error.
func decodeOptionalBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return auth.NewValidationError("invalid request body")
}

// UserResponse is the JSON shape of a user. The password hash never
// leaves the store layer.
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func newUserResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
