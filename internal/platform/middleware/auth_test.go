package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	t.Run("generates an id when absent", func(t *testing.T) {
		var seen string
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		})
		rec := httptest.NewRecorder()
		RequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))
	})

	t.Run("propagates a caller-supplied id", func(t *testing.T) {
		var seen string
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "req-123")
		RequestID(next).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "req-123", seen)
	})
}

func TestRequireConsoleAuth(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	authorize := func(token string) error {
		if token == "valid-session" {
			return nil
		}
		return fmt.Errorf("invalid token")
	}
	guarded := RequireConsoleAuth("admin-token", authorize, logger)(okHandler())

	t.Run("admin token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/console/apps", nil)
		req.Header.Set("X-Admin-Token", "admin-token")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("console session token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/console/apps", nil)
		req.Header.Set("Authorization", "Bearer valid-session")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong admin token is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/console/apps", nil)
		req.Header.Set("X-Admin-Token", "wrong")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	})

	t.Run("invalid bearer token is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/console/apps", nil)
		req.Header.Set("Authorization", "Bearer expired-session")
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no auth at all is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/console/apps", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
