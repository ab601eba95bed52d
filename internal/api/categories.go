// ABOUTME: Handlers for category endpoints
// ABOUTME: Public reads, admin-gated writes, unique names, optional parent

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirppis/kirppis/internal/store"
)

// CategoryRequest is the JSON request body for category create and update.
type CategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
}

// CategoryResponse is the JSON shape of a category.
type CategoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// CategoryEnvelope is the JSON response wrapping a single category.
type CategoryEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		Category CategoryResponse `json:"category"`
	} `json:"data"`
}

// CategoryListResponse is the JSON response for GET /api/v1/categories.
type CategoryListResponse struct {
	Status  string `json:"status"`
	Results int    `json:"results"`
	Data    struct {
		Categories []CategoryResponse `json:"categories"`
	} `json:"data"`
}

func newCategoryResponse(c *store.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func categoryEnvelope(c *store.Category) CategoryEnvelope {
	env := CategoryEnvelope{Status: "success"}
	env.Data.Category = newCategoryResponse(c)
	return env
}

func (a *API) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.store.ListCategories(r.Context())
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	resp := CategoryListResponse{Status: "success", Results: len(categories)}
	resp.Data.Categories = make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp.Data.Categories = append(resp.Data.Categories, newCategoryResponse(c))
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := a.store.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, categoryEnvelope(category))
}

// resolveParent checks that a parent category reference points at an
// existing category.
func (a *API) resolveParent(w http.ResponseWriter, r *http.Request, parentID *string) bool {
	if parentID == nil || *parentID == "" {
		return true
	}
	if _, err := a.store.GetCategory(r.Context(), *parentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.fail(w, http.StatusBadRequest, "parent category does not exist")
		} else {
			a.writeDomainError(w, r, err)
		}
		return false
	}
	return true
}

func (a *API) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		a.fail(w, http.StatusBadRequest, "category name is required")
		return
	}
	if !a.resolveParent(w, r, req.ParentID) {
		return
	}

	now := time.Now().UTC()
	category := &store.Category{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(*req.Name),
		ParentID:  req.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ParentID != nil && *req.ParentID == "" {
		category.ParentID = nil
	}

	if err := a.store.CreateCategory(r.Context(), category); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, categoryEnvelope(category))
}

func (a *API) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, err := a.store.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	var req CategoryRequest
	if err := decodeBody(r, &req); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			a.fail(w, http.StatusBadRequest, "category name cannot be empty")
			return
		}
		category.Name = name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ParentID != nil {
		if *req.ParentID == "" {
			category.ParentID = nil
		} else {
			if *req.ParentID == category.ID {
				a.fail(w, http.StatusBadRequest, "category cannot be its own parent")
				return
			}
			if !a.resolveParent(w, r, req.ParentID) {
				return
			}
			category.ParentID = req.ParentID
		}
	}

	if err := a.store.UpdateCategory(r.Context(), category); err != nil {
		a.writeDomainError(w, r, err)
		return
	}

	a.writeJSON(w, http.StatusOK, categoryEnvelope(category))
}

func (a *API) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		a.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
