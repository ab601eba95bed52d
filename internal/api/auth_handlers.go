// ABOUTME: Handlers for registration, login, logout, and password changes
// ABOUTME: Issues bearer tokens and returns the session envelope

package api

import (
	"net/http"

	"github.com/kirppis/kirppis/internal/auth"
)

// RegisterRequest is the JSON request body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdatePasswordRequest is the JSON request body for PATCH /api/v1/auth/update-password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SessionResponse is the JSON response for endpoints that establish or
// refresh a session.
type SessionResponse struct {
	Status string      `json:"status"`
	Token  string      `json:"token"`
	Data   SessionData `json:"data"`
}

// SessionData wraps the user payload inside the session envelope.
type SessionData struct {
	User UserResponse `json:"user"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	user, token, err := a.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, SessionResponse{
		Status: "success",
		Token:  token,
		Data:   SessionData{User: newUserResponse(user)},
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		a.fail(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, token, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, SessionResponse{
		Status: "success",
		Token:  token,
		Data:   SessionData{User: newUserResponse(user)},
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())
	a.auth.Logout(r.Context(), authCtx.User)

	a.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "logged out",
	})
}

// UserEnvelope is the JSON response wrapping a single user.
type UserEnvelope struct {
	Status string      `json:"status"`
	Data   SessionData `json:"data"`
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustFromContext(r.Context())

	a.writeJSON(w, http.StatusOK, UserEnvelope{
		Status: "success",
		Data:   SessionData{User: newUserResponse(authCtx.User)},
	})
}

func (a *API) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	authCtx := auth.MustFromContext(r.Context())
	token, err := a.auth.ChangePassword(r.Context(), authCtx.User, req.CurrentPassword, req.NewPassword)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, SessionResponse{
		Status: "success",
		Token:  token,
		Data:   SessionData{User: newUserResponse(authCtx.User)},
	})
}
