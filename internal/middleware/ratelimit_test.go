package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/top-movies/internal/config"
)

func TestTokenBucketWithoutRedisPassesThrough(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/add", nil), httptest.NewRecorder())

	called := false
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, nil)
	err := mw(func(c echo.Context) error { called = true; return nil })(c)

	require.NoError(t, err)
	assert.True(t, called)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/select/27205", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/select/:externalId")

	tests := map[string]string{
		"ip":       "rl:ip:10.0.0.7",
		"route":    "rl:route:POST /select/:externalId",
		"ip_route": "rl:ip:10.0.0.7:route:POST /select/:externalId",
		"":         "rl:ip:10.0.0.7:route:POST /select/:externalId",
	}
	for strategy, want := range tests {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		assert.Equal(t, want, buildRateKey(cfg, c), strategy)
	}
}

func newBucketServer(t *testing.T, cfg config.RateLimitConfig) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	e.POST("/add", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb, nil))
	return e, mr
}

func search(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/add", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucketBlocksWhenEmpty(t *testing.T) {
	e, mr := newBucketServer(t, config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	})

	rec := search(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = search(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = search(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many searches. Try again in 60 seconds.")

	// other clients have their own bucket
	rec = search(e, "10.0.0.2")
	assert.Equal(t, http.StatusOK, rec.Code)

	key := "rl:ip:10.0.0.1:route:POST /add"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 10*time.Minute, mr.TTL(key))
}

func TestTokenBucketRefillsAfterInterval(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute, TTL: time.Hour, Prefix: "rl"}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	b := &tokenBucket{cfg: cfg, rdb: rdb, log: hclog.NewNullLogger(), now: func() time.Time { return now }}
	ctx := context.Background()

	got, err := b.take(ctx, "k")
	require.NoError(t, err)
	assert.True(t, got.allowed)

	now = now.Add(45 * time.Second)
	got, err = b.take(ctx, "k")
	require.NoError(t, err)
	assert.False(t, got.allowed)
	assert.Equal(t, 15*time.Second, got.wait)

	now = now.Add(15 * time.Second)
	got, err = b.take(ctx, "k")
	require.NoError(t, err)
	assert.True(t, got.allowed)
	assert.Equal(t, int64(0), got.remaining)
}

func TestTokenBucketFailsOpenWhenRedisDies(t *testing.T) {
	e, mr := newBucketServer(t, config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute, TTL: time.Hour, Prefix: "rl"})
	mr.Close()

	rec := search(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Remaining"))
}
