package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sitepulse/api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(t *testing.T, apiKey string) (*gin.Engine, *utils.TokenIssuer) {
	tokens, err := utils.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/private", AuthRequired(tokens, apiKey, zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextOperatorKey))
	})
	return r, tokens
}

func TestAuthRequired_NoToken(t *testing.T) {
	r, _ := newProtectedRouter(t, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_BearerToken(t *testing.T) {
	r, tokens := newProtectedRouter(t, "")
	token, err := tokens.Generate("ops@example.com", time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops@example.com", w.Body.String())
}

func TestAuthRequired_Cookie(t *testing.T) {
	r, tokens := newProtectedRouter(t, "")
	token, _ := tokens.Generate("ops@example.com", time.Now())

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired_AuthorizationWithoutBearerScheme(t *testing.T) {
	r, tokens := newProtectedRouter(t, "")
	token, err := tokens.Generate("ops@example.com", time.Now())
	require.NoError(t, err)

	for _, header := range []string{token, "Basic " + token, "bearer " + token} {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), "no token provided")
	}
}

func TestAuthRequired_InvalidToken(t *testing.T) {
	r, _ := newProtectedRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_APIKey(t *testing.T) {
	r, _ := newProtectedRouter(t, "dash-key")

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-API-KEY", "dash-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-API-KEY", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequired_EmptyAPIKeyNeverMatches(t *testing.T) {
	r, _ := newProtectedRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-API-KEY", "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(1, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, l.Allow("10.0.0.1", now))
	assert.True(t, l.Allow("10.0.0.1", now))
	assert.False(t, l.Allow("10.0.0.1", now))
	assert.True(t, l.Allow("10.0.0.2", now))
	assert.True(t, l.Allow("10.0.0.1", now.Add(time.Second)))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("https://dash.example.com", "/api/track"))
	r.POST("/api/track", func(c *gin.Context) { c.Status(http.StatusAccepted) })
	r.GET("/api/tracking/summary", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/track", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tracking/summary", nil))
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
