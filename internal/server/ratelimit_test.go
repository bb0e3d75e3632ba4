package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	current := start
	return func() time.Time { return current },
		func(d time.Duration) { current = current.Add(d) }
}

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	rl := newRateLimiter(1, 2)
	now, advance := fixedClock(time.Now())
	rl.now = now

	_, ok := rl.allow("10.0.0.1")
	assert.True(t, ok)
	_, ok = rl.allow("10.0.0.1")
	assert.True(t, ok)

	wait, ok := rl.allow("10.0.0.1")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, time.Second)

	advance(time.Second)
	_, ok = rl.allow("10.0.0.1")
	assert.True(t, ok)
}

func TestRateLimiter_RefillCappedAtBurst(t *testing.T) {
	rl := newRateLimiter(10, 3)
	now, advance := fixedClock(time.Now())
	rl.now = now

	for i := 0; i < 3; i++ {
		_, ok := rl.allow("10.0.0.1")
		require.True(t, ok, "request %d within burst", i)
	}
	_, ok := rl.allow("10.0.0.1")
	require.False(t, ok)

	// A long idle period refills to burst, never beyond.
	advance(time.Hour)
	for i := 0; i < 3; i++ {
		_, ok := rl.allow("10.0.0.1")
		require.True(t, ok, "request %d after refill", i)
	}
	_, ok = rl.allow("10.0.0.1")
	assert.False(t, ok)
}

func TestRateLimiter_ClientsIndependent(t *testing.T) {
	rl := newRateLimiter(1, 1)
	now, _ := fixedClock(time.Now())
	rl.now = now

	_, ok := rl.allow("10.0.0.1")
	assert.True(t, ok)
	_, ok = rl.allow("10.0.0.1")
	assert.False(t, ok)

	_, ok = rl.allow("10.0.0.2")
	assert.True(t, ok)
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	rl := newRateLimiter(1, 1)
	now, advance := fixedClock(time.Now())
	rl.now = now

	rl.allow("10.0.0.1")
	advance(10 * time.Minute)
	rl.allow("10.0.0.2")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.clients, "10.0.0.1")
	assert.Contains(t, rl.clients, "10.0.0.2")
}

func TestRateLimiter_MinimumBurst(t *testing.T) {
	rl := newRateLimiter(5, 0)
	assert.Equal(t, float64(1), rl.burst)
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimitRPS = 0.01
	cfg.RateLimitBurst = 1
	s := New(&stubProcessor{result: prescriptionResult()}, cfg, "test")
	handler := s.Handler()

	body, contentType := multipartBody(t, "document", "scan.png", []byte("bytes"), nil)
	req := httptest.NewRequest(http.MethodPost, "/ocr", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(handler, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body, contentType = multipartBody(t, "document", "scan.png", []byte("bytes"), nil)
	req = httptest.NewRequest(http.MethodPost, "/ocr", body)
	req.Header.Set("Content-Type", contentType)
	rec = doRequest(handler, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimitMiddleware_DisabledByDefault(t *testing.T) {
	_, handler := newTestServer(t, &stubProcessor{result: prescriptionResult()})

	for i := 0; i < 5; i++ {
		body, contentType := multipartBody(t, "document", "scan.png", []byte("bytes"), nil)
		req := httptest.NewRequest(http.MethodPost, "/ocr", body)
		req.Header.Set("Content-Type", contentType)
		rec := doRequest(handler, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitMiddleware_OnlyLimitsOCR(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimitRPS = 0.01
	cfg.RateLimitBurst = 1
	s := New(&stubProcessor{}, cfg, "test")
	handler := s.Handler()

	for i := 0; i < 5; i++ {
		rec := doRequest(handler, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
