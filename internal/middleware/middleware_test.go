package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"cozycorner-be/internal/user"
	"cozycorner-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthentication(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	t.Run("Valid token sets user context", func(t *testing.T) {
		token, err := user.GenerateJWT(7, "admin", "admin@example.com", "Admin")
		require.NoError(t, err)

		var gotID uint
		var gotRole string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotID, _ = utils.GetUserIDFromContext(r.Context())
			gotRole = utils.GetUserRoleFromContext(r.Context())
		})

		req := httptest.NewRequest("GET", "/api/menu", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		Authentication(next).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, uint(7), gotID)
		assert.Equal(t, "admin", gotRole)
	})

	t.Run("Garbage token leaves request anonymous", func(t *testing.T) {
		var ok bool
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok = utils.GetUserIDFromContext(r.Context())
		})

		req := httptest.NewRequest("GET", "/api/menu", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		Authentication(next).ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, ok)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("Rejects anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/orders", nil)

		RequireAuth(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Allows authenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/orders", nil)
		ctx := utils.SetUserContext(req.Context(), 1, "u@example.com", "U", "user")

		RequireAuth(okHandler()).ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("Rejects non-admin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
		ctx := utils.SetUserContext(req.Context(), 1, "u@example.com", "U", "user")

		RequireAdmin(okHandler()).ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Rejects anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)

		RequireAdmin(okHandler()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Allows admin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
		ctx := utils.SetUserContext(req.Context(), 1, "a@example.com", "A", "admin")

		RequireAdmin(okHandler()).ServeHTTP(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestResolveRateTier(t *testing.T) {
	strictReq := httptest.NewRequest("POST", "/api/payments/create-payment-intent", nil)
	_, _, tier := resolveRateTier(strictReq)
	assert.Equal(t, "strict", tier)

	authReq := httptest.NewRequest("POST", "/api/auth/login", nil)
	_, _, tier = resolveRateTier(authReq)
	assert.Equal(t, "strict", tier)

	generalReq := httptest.NewRequest("GET", "/api/menu", nil)
	_, _, tier = resolveRateTier(generalReq)
	assert.Equal(t, "general", tier)
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(okHandler())

	// Strict tier has a burst of 5; the sixth immediate request must be rejected.
	var lastCode int
	for i := 0; i < burstStrict+1; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/login", nil)
		req.RemoteAddr = "10.1.2.3:1234"
		handler.ServeHTTP(w, req)
		lastCode = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestLoggingMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/menu", nil)

	assert.NotPanics(t, func() {
		LoggingMiddleware(okHandler()).ServeHTTP(w, req)
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
