// ABOUTME: Test harness and auth endpoint tests for the HTTP API
// ABOUTME: Runs requests through the full mux so gates and routing are exercised

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirppis/kirppis/internal/auth"
	"github.com/kirppis/kirppis/internal/store"
)

type testAPI struct {
	mux    *http.ServeMux
	store  *store.MockStore
	tokens *auth.TokenManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	st := store.NewMockStore()
	tokens := auth.NewTokenManager([]byte("api-test-secret-api-test-secret"), time.Hour)
	svc := auth.NewService(st, tokens)

	mux := http.NewServeMux()
	New(st, svc, tokens).RegisterRoutes(mux)
	return &testAPI{mux: mux, store: st, tokens: tokens}
}

// do runs a request through the mux. A non-empty token is attached as a
// bearer credential; body is JSON-encoded when non-nil.
func (ta *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ta.mux.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

// register creates an account through the API and returns its token and ID.
func (ta *testAPI) register(t *testing.T, name, email, password string) (token, id string) {
	t.Helper()
	rec := ta.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: name, Email: email, Password: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	resp := decodeResponse[SessionResponse](t, rec)
	return resp.Token, resp.Data.User.ID
}

// registerAdmin registers an account and promotes it directly in the store.
func (ta *testAPI) registerAdmin(t *testing.T, email string) (token, id string) {
	t.Helper()
	token, id = ta.register(t, "Admin", email, "Admin123!")
	require.NoError(t, ta.store.UpdateUserRole(context.Background(), id, store.RoleAdmin))
	return token, id
}

func TestRegister(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: "Ann", Email: "Ann@Example.com", Password: "Secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	resp := decodeResponse[SessionResponse](t, rec)
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ann@example.com", resp.Data.User.Email)
	assert.Equal(t, "user", resp.Data.User.Role)

	// Hash never leaks into the wire payload.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegister_Validation(t *testing.T) {
	ta := newTestAPI(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"weak password", RegisterRequest{Name: "Ann", Email: "a@b.com", Password: "weak"}},
		{"bad email", RegisterRequest{Name: "Ann", Email: "nope", Password: "Secret123"}},
		{"no name", RegisterRequest{Email: "a@b.com", Password: "Secret123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ta.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeResponse[errorBody](t, rec)
			assert.Equal(t, "fail", resp.Status)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ta := newTestAPI(t)
	ta.register(t, "Ann", "ann@example.com", "Secret123")

	rec := ta.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Name: "Imposter", Email: "ANN@example.com", Password: "Secret456",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	ta := newTestAPI(t)
	ta.register(t, "Ann", "ann@example.com", "Secret123")

	rec := ta.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email: "ann@example.com", Password: "Secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	resp := decodeResponse[SessionResponse](t, rec)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_UniformFailure(t *testing.T) {
	ta := newTestAPI(t)
	ta.register(t, "Ann", "ann@example.com", "Secret123")

	unknown := ta.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email: "ghost@example.com", Password: "Secret123",
	})
	wrong := ta.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email: "ann@example.com", Password: "WrongPass1",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	// Identical bodies: the response must not reveal which part failed.
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestLogin_MissingFields(t *testing.T) {
	ta := newTestAPI(t)

	rec := ta.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe(t *testing.T) {
	ta := newTestAPI(t)
	token, id := ta.register(t, "Ann", "ann@example.com", "Secret123")

	rec := ta.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse[UserEnvelope](t, rec)
	assert.Equal(t, id, resp.Data.User.ID)

	// Without a token the same route is a 401.
	rec = ta.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	ta := newTestAPI(t)
	token, _ := ta.register(t, "Ann", "ann@example.com", "Secret123")

	rec := ta.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Logout is a stateless acknowledgment; the token still verifies.
	rec = ta.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdatePassword(t *testing.T) {
	ta := newTestAPI(t)
	token, _ := ta.register(t, "Ann", "ann@example.com", "Secret123")

	rec := ta.do(t, http.MethodPatch, "/api/v1/auth/update-password", token, UpdatePasswordRequest{
		CurrentPassword: "Secret123", NewPassword: "NewSecret456",
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	resp := decodeResponse[SessionResponse](t, rec)
	assert.NotEmpty(t, resp.Token)

	// Old credential rejected, new accepted.
	old := ta.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email: "ann@example.com", Password: "Secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, old.Code)
	fresh := ta.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Email: "ann@example.com", Password: "NewSecret456",
	})
	assert.Equal(t, http.StatusOK, fresh.Code)
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	ta := newTestAPI(t)
	token, _ := ta.register(t, "Ann", "ann@example.com", "Secret123")

	rec := ta.do(t, http.MethodPatch, "/api/v1/auth/update-password", token, UpdatePasswordRequest{
		CurrentPassword: "WrongPass1", NewPassword: "NewSecret456",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
