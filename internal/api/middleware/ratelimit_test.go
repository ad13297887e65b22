package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"isp-billing/internal/config"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(t *testing.T, cfg config.RateLimitConfig) *RateLimiterMiddleware {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRateLimiterMiddleware(ctx, cfg, logger)
}

func TestRateLimiterMiddleware(t *testing.T) {
	middleware := newTestRateLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2})

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := middleware.Middleware(nextHandler)

	t.Run("allows requests within the burst", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "127.0.0.1:12345"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("blocks requests exceeding the rate limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))

		var response map[string]interface{}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "Rate limit exceeded", response["error"].(map[string]interface{})["message"])
	})

	t.Run("other clients keep their own bucket", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.1.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimiterDisabled(t *testing.T) {
	middleware := newTestRateLimiter(t, config.RateLimitConfig{Enabled: false, RPS: 0, Burst: 0})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		middleware.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestExtractIP(t *testing.T) {
	middleware := newTestRateLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
	assert.Equal(t, "192.168.1.1", middleware.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	assert.Equal(t, "10.0.0.1", middleware.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	req.RemoteAddr = "127.0.0.1:12345"
	assert.Equal(t, "127.0.0.1", middleware.extractIP(req))
}

func TestEvictIdleLimiters(t *testing.T) {
	middleware := newTestRateLimiter(t, config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	middleware.now = func() time.Time { return now }

	middleware.getLimiter("10.0.0.1")
	now = now.Add(limiterIdleTTL / 2)
	middleware.getLimiter("10.0.0.2")

	now = now.Add(limiterIdleTTL/2 + time.Minute)
	assert.Equal(t, 1, middleware.evictIdle())

	_, stale := middleware.limiters.Load("10.0.0.1")
	_, fresh := middleware.limiters.Load("10.0.0.2")
	assert.False(t, stale)
	assert.True(t, fresh)
}
