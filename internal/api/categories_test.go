// ABOUTME: Tests for category endpoints
// ABOUTME: Covers public reads, admin-gated writes, duplicates, and parent references

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func (ta *testAPI) createCategory(t *testing.T, token, name string) string {
	t.Helper()
	rec := ta.do(t, http.MethodPost, "/api/v1/categories", token, CategoryRequest{Name: &name})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decodeResponse[CategoryEnvelope](t, rec).Data.Category.ID
}

func TestCategories_PublicReads(t *testing.T) {
	ta := newTestAPI(t)
	adminToken, _ := ta.registerAdmin(t, "boss@example.com")
	id := ta.createCategory(t, adminToken, "Books")

	// No token needed for reads.
	rec := ta.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeResponse[CategoryListResponse](t, rec)
	assert.Equal(t, 1, list.Results)

	rec = ta.do(t, http.MethodGet, "/api/v1/categories/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeResponse[CategoryEnvelope](t, rec)
	assert.Equal(t, "Books", got.Data.Category.Name)

	rec = ta.do(t, http.MethodGet, "/api/v1/categories/no-such-id", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategories_WritesAreAdminGated(t *testing.T) {
	ta := newTestAPI(t)
	userToken, _ := ta.register(t, "Ann", "ann@example.com", "Secret123")

	rec := ta.do(t, http.MethodPost, "/api/v1/categories", userToken, CategoryRequest{Name: strPtr("Books")})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ta.do(t, http.MethodPost, "/api/v1/categories", "", CategoryRequest{Name: strPtr("Books")})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	ta := newTestAPI(t)
	adminToken, _ := ta.registerAdmin(t, "boss@example.com")
	ta.createCategory(t, adminToken, "Books")

	rec := ta.do(t, http.MethodPost, "/api/v1/categories", adminToken, CategoryRequest{Name: strPtr("Books")})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateCategory_WithParent(t *testing.T) {
	ta := newTestAPI(t)
	adminToken, _ := ta.registerAdmin(t, "boss@example.com")
	parentID := ta.createCategory(t, adminToken, "Books")

	rec := ta.do(t, http.MethodPost, "/api/v1/categories", adminToken, CategoryRequest{
		Name: strPtr("Comics"), ParentID: &parentID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	got := decodeResponse[CategoryEnvelope](t, rec)
	require.NotNil(t, got.Data.Category.ParentID)
	assert.Equal(t, parentID, *got.Data.Category.ParentID)

	// A dangling parent reference is rejected.
	rec = ta.do(t, http.MethodPost, "/api/v1/categories", adminToken, CategoryRequest{
		Name: strPtr("Orphans"), ParentID: strPtr("no-such-id"),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCategory(t *testing.T) {
	ta := newTestAPI(t)
	adminToken, _ := ta.registerAdmin(t, "boss@example.com")
	id := ta.createCategory(t, adminToken, "Books")

	rec := ta.do(t, http.MethodPatch, "/api/v1/categories/"+id, adminToken, CategoryRequest{
		Name: strPtr("Literature"), Description: strPtr("Printed matter"),
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	got := decodeResponse[CategoryEnvelope](t, rec)
	assert.Equal(t, "Literature", got.Data.Category.Name)
	assert.Equal(t, "Printed matter", got.Data.Category.Description)

	// A category cannot become its own parent.
	rec = ta.do(t, http.MethodPatch, "/api/v1/categories/"+id, adminToken, CategoryRequest{ParentID: &id})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCategory(t *testing.T) {
	ta := newTestAPI(t)
	adminToken, _ := ta.registerAdmin(t, "boss@example.com")
	id := ta.createCategory(t, adminToken, "Books")

	rec := ta.do(t, http.MethodDelete, "/api/v1/categories/"+id, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ta.do(t, http.MethodGet, "/api/v1/categories/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
