package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-challenge/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/services"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Parallel()

	secret := "test-secret-middleware"
	issuer := "test-issuer"

	setup := func(t *testing.T, ttl time.Duration) (*gin.Engine, *services.TokenService, *repository.InMemoryUserRepository) {
		users := repository.NewInMemoryUserRepository()
		tokenService := services.NewTokenService(secret, issuer, ttl, users)

		router := gin.New()
		router.Use(AuthMiddleware(tokenService))
		router.GET("/protected", func(c *gin.Context) {
			userID, ok := GetUserID(c)
			if !ok {
				c.String(http.StatusInternalServerError, "UserID not found in context")
				return
			}
			c.String(http.StatusOK, "Hello "+userID)
		})
		return router, tokenService, users
	}

	call := func(router *gin.Engine, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Success: Valid Token", func(t *testing.T) {
		t.Parallel()
		router, tokenService, users := setup(t, time.Hour)

		u, err := domain.NewUser("user-123", "mw@kanso.app")
		require.NoError(t, err)
		require.NoError(t, users.Create(t.Context(), u))

		validToken, _, err := tokenService.GenerateToken("user-123")
		require.NoError(t, err)

		w := call(router, "Bearer "+validToken)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Hello user-123", w.Body.String())
	})

	t.Run("Fail: Missing Authorization Header", func(t *testing.T) {
		t.Parallel()
		router, _, _ := setup(t, time.Hour)

		w := call(router, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "authorization header required")
	})

	t.Run("Fail: Invalid Header Format", func(t *testing.T) {
		t.Parallel()
		router, _, _ := setup(t, time.Hour)

		for _, h := range []string{"Bearer", "Token 12345", "Bearer12345", "Bearer a b"} {
			w := call(router, h)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "Should fail for header: "+h)
		}
	})

	t.Run("Fail: Token of a deleted user", func(t *testing.T) {
		t.Parallel()
		router, tokenService, _ := setup(t, time.Hour)

		token, _, _ := tokenService.GenerateToken("ghost")
		w := call(router, "Bearer "+token)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid or expired token")
	})

	t.Run("Fail: Expired Token", func(t *testing.T) {
		t.Parallel()
		router, tokenService, _ := setup(t, -time.Second)

		expiredToken, _, _ := tokenService.GenerateToken("user-expired")
		w := call(router, "Bearer "+expiredToken)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid or expired token")
	})
}
