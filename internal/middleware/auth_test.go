package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-task-manager/internal/model"
)

type stubValidator struct {
	claims *model.AuthClaims
	err    error
}

func (v *stubValidator) ValidateAccessToken(string) (*model.AuthClaims, error) {
	return v.claims, v.err
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var resp model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	validClaims := &model.AuthClaims{Username: "alice", Role: "admin"}

	okHandler := func(t *testing.T) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, "alice", claims.Username)
			w.WriteHeader(http.StatusNoContent)
		})
	}

	t.Run("missing header", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{claims: validClaims})
		rec := httptest.NewRecorder()
		m.RequireAuth(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	})

	t.Run("non-bearer scheme", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{claims: validClaims})
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		m.RequireAuth(okHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{err: model.ErrInvalidToken})
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		m.RequireAuth(okHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	})

	t.Run("valid token puts claims in context", func(t *testing.T) {
		m := NewAuthMiddleware(&stubValidator{claims: validClaims})
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		m.RequireAuth(okHandler(t)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	m := NewAuthMiddleware(&stubValidator{})
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guard := m.RequireRoles("admin")(next)

	t.Run("no claims in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/tasks/1", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("insufficient role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/tasks/1", nil)
		req = req.WithContext(ContextWithClaims(req.Context(), &model.AuthClaims{Username: "bob", Role: "user"}))
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		resp := decodeEnvelope(t, rec)
		assert.Equal(t, "FORBIDDEN", resp.Error.Code)
	})

	t.Run("role comparison ignores case", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/tasks/1", nil)
		req = req.WithContext(ContextWithClaims(req.Context(), &model.AuthClaims{Username: "alice", Role: "Admin"}))
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
