package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(onSuccess gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ping", AuthMiddleware(), onSuccess)
	return router
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	signed := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": float64(7),
		"email":   "user@example.com",
	})

	var gotUserID uint
	router := authRouter(func(c *gin.Context) {
		id, _ := c.Get("user_id")
		gotUserID = id.(uint)
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(7), gotUserID)
}

func TestAuthMiddlewareRejectsTokenWithoutUserClaim(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	// Validly signed, but carries no user_id claim
	signed := signToken(t, "test-secret", jwt.MapClaims{"email": "user@example.com"})

	router := authRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMissingAndMalformedHeaders(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")
	router := authRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "token-without-scheme", "Basic abc123"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthMiddlewareRejectsWrongSignature(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	signed := signToken(t, "other-secret", jwt.MapClaims{"user_id": float64(7)})

	router := authRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
