package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(sid string, mws ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if sid != "" {
		r.Use(func(c *gin.Context) { c.Set(SessionIDKey, sid) })
	}
	r.Use(mws...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDPropagatesOrGenerates(t *testing.T) {
	r := newEngine("", RequestIDMiddleware())

	w := do(r, http.MethodGet, "/ping", http.Header{"X-Request-Id": {"abc"}})
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc", w.Body.String())

	w = do(r, http.MethodGet, "/ping", nil)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestRateLimitKeysBySession(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_RPS", "0.001")
	t.Setenv("RATE_LIMIT_BURST", "2")
	t.Setenv("RATE_LIMIT_WHITELIST", "")

	limit := RateLimitMiddleware()
	first := newEngine("s1", limit)
	second := newEngine("s2", limit)

	assert.Equal(t, http.StatusOK, do(first, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, do(first, http.MethodGet, "/ping", nil).Code)
	w := do(first, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(second, http.MethodGet, "/ping", nil).Code, "other sessions keep their own bucket")
	assert.Equal(t, http.StatusOK, do(first, http.MethodGet, "/health", nil).Code)
}

func TestRateLimitWhitelist(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("RATE_LIMIT_RPS", "0.001")
	t.Setenv("RATE_LIMIT_BURST", "1")
	t.Setenv("RATE_LIMIT_WHITELIST", "192.0.2.0/24")

	r := newEngine("", RateLimitMiddleware())
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	}
}

func TestRateLimitDisabledInTests(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("RATE_LIMIT_RPS", "0.001")
	t.Setenv("RATE_LIMIT_BURST", "1")

	r := newEngine("", RateLimitAuthMiddleware())
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	}
}

func TestLimiterStoreCleanup(t *testing.T) {
	store := &limiterStore{entries: map[string]*limiterEntry{}, staleAfter: 0}
	store.getOrCreate("a", 1, 1)
	store.cleanup()
	assert.Equal(t, 0, store.size())
}

func TestCORSProductionReflectsAllowedOrigin(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.com")
	t.Setenv("ALLOW_CREDENTIALS", "true")
	r := newEngine("", CORSMiddleware())

	w := do(r, http.MethodOptions, "/ping", http.Header{"Origin": {"https://admin.example.com"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = do(r, http.MethodGet, "/ping", http.Header{"Origin": {"https://evil.example.com"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDevelopmentAllowsAny(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	r := newEngine("", CORSMiddleware())

	w := do(r, http.MethodGet, "/ping", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
