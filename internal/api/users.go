// ABOUTME: Handlers for the user management endpoints
// ABOUTME: Enforces self-or-admin reads, field-restricted updates, and self-protection

package api

import (
	"net/http"
	"strings"

	"github.com/kirppis/kirppis/internal/auth"
	"github.com/kirppis/kirppis/internal/store"
)

// UpdateUserRequest is the JSON request body for PATCH /api/v1/users/{id}.
// Only name and email are updatable here; pointer fields distinguish
// absent from empty.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// UpdateRoleRequest is the JSON request body for PATCH /api/v1/users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UserListResponse is the JSON response for GET /api/v1/users.
type UserListResponse struct {
	Status  string `json:"status"`
	Results int    `json:"results"`
	Data    struct {
		Users []UserResponse `json:"users"`
	} `json:"data"`
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.store.ListUsers(r.Context())
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	resp := UserListResponse{Status: "success", Results: len(users)}
	resp.Data.Users = make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp.Data.Users = append(resp.Data.Users, newUserResponse(u))
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	authCtx := auth.MustFromContext(r.Context())
	if !authCtx.CanAccessUser(id) {
		a.fail(w, http.StatusForbidden, "you do not have permission to access this user")
		return
	}

	user, err := a.store.GetUser(r.Context(), id)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, UserEnvelope{
		Status: "success",
		Data:   SessionData{User: newUserResponse(user)},
	})
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	authCtx := auth.MustFromContext(r.Context())
	if !authCtx.CanAccessUser(id) {
		a.fail(w, http.StatusForbidden, "you do not have permission to update this user")
		return
	}

	var req UpdateUserRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if req.Password != nil {
		a.fail(w, http.StatusBadRequest, "this route is not for password updates, use /auth/update-password")
		return
	}
	if req.Role != nil {
		a.fail(w, http.StatusBadRequest, "this route is not for role updates, use /users/{id}/role")
		return
	}

	user, err := a.store.GetUser(r.Context(), id)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			a.fail(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		user.Name = name
	}
	if req.Email != nil {
		if !auth.ValidEmail(*req.Email) {
			a.fail(w, http.StatusBadRequest, "a valid email is required")
			return
		}
		user.Email = store.NormalizeEmail(*req.Email)
	}

	if err := a.store.UpdateUser(r.Context(), user); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, UserEnvelope{
		Status: "success",
		Data:   SessionData{User: newUserResponse(user)},
	})
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	authCtx := auth.MustFromContext(r.Context())
	if authCtx.IsSelf(id) {
		a.fail(w, http.StatusForbidden, "you cannot delete your own account")
		return
	}

	if err := a.store.DeleteUser(r.Context(), id); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	authCtx := auth.MustFromContext(r.Context())
	if authCtx.IsSelf(id) {
		a.fail(w, http.StatusForbidden, "you cannot change your own role")
		return
	}

	var req UpdateRoleRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	role := store.UserRole(req.Role)
	if !store.ValidRole(role) {
		a.fail(w, http.StatusBadRequest, "role must be user or admin")
		return
	}

	if err := a.store.UpdateUserRole(r.Context(), id, role); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	user, err := a.store.GetUser(r.Context(), id)
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, UserEnvelope{
		Status: "success",
		Data:   SessionData{User: newUserResponse(user)},
	})
}
