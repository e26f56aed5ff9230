package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("auth bucket throttles login attempts", func(t *testing.T) {
		handler := NewRateLimitMiddleware(0, 3).Handler(next)

		var last *httptest.ResponseRecorder
		for i := 0; i < 4; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.RemoteAddr = "10.0.0.1:52000"
			last = httptest.NewRecorder()
			handler.ServeHTTP(last, req)
		}

		assert.Equal(t, http.StatusTooManyRequests, last.Code)
		assert.Equal(t, "60", last.Header().Get("Retry-After"))
	})

	t.Run("general traffic is unlimited when generalRPM is zero", func(t *testing.T) {
		handler := NewRateLimitMiddleware(0, 3).Handler(next)

		for i := 0; i < 50; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			req.RemoteAddr = "10.0.0.2:52000"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("general bucket applies outside auth paths", func(t *testing.T) {
		handler := NewRateLimitMiddleware(2, 10).Handler(next)

		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			req.RemoteAddr = "10.0.0.3:52000"
			last = httptest.NewRecorder()
			handler.ServeHTTP(last, req)
		}

		assert.Equal(t, http.StatusTooManyRequests, last.Code)
	})

	t.Run("clients have independent buckets", func(t *testing.T) {
		handler := NewRateLimitMiddleware(0, 1).Handler(next)

		for i := 0; i < 5; i++ {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
			req.RemoteAddr = fmt.Sprintf("10.1.0.%d:52000", i)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestExtractClientIP(t *testing.T) {
	t.Parallel()

	t.Run("prefers first forwarded address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
		assert.Equal(t, "203.0.113.5", extractClientIP(req))
	})

	t.Run("falls back to real ip header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "203.0.113.9")
		assert.Equal(t, "203.0.113.9", extractClientIP(req))
	})

	t.Run("strips the port from the remote address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:41234"
		assert.Equal(t, "198.51.100.7", extractClientIP(req))
	})
}
