package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/top-movies/internal/config"
)

// takeToken refills the bucket stored at KEYS[1] for the whole intervals
// elapsed since its last refill, then tries to take one token.
// ARGV: now_ms, capacity, refill_tokens, interval_ms, ttl_seconds.
// Returns {allowed, tokens_left, wait_ms}.
var takeToken = redis.NewScript(`
local now = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local interval = tonumber(ARGV[4])

local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
local ts = tonumber(redis.call('HGET', KEYS[1], 'ts'))
if tokens == nil or ts == nil then
	tokens, ts = capacity, now
end

if interval > 0 then
	local steps = math.floor(math.max(0, now - ts) / interval)
	if steps > 0 then
		tokens = math.min(capacity, tokens + steps * refill)
		ts = ts + steps * interval
	end
end

local allowed, wait = 0, 0
if tokens >= 1 then
	allowed, tokens = 1, tokens - 1
else
	wait = math.max(0, interval - (now - ts))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', ts)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[5]))
return {allowed, tokens, wait}
`)

// bucketResult is the outcome of one bucket check.
type bucketResult struct {
	allowed   bool
	remaining int64
	wait      time.Duration
}

type tokenBucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
	log hclog.Logger
	now func() time.Time
}

// NewTokenBucket limits how often a client may hit the routes that call the
// movie metadata API.  The bucket lives in Redis so the limit holds across
// server instances; without a client the middleware passes everything through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log hclog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	b := &tokenBucket{cfg: cfg, rdb: rdb, log: log, now: time.Now}
	return b.middleware
}

func (b *tokenBucket) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := buildRateKey(b.cfg, c)
		t, err := b.take(c.Request().Context(), key)
		if err != nil {
			// Redis trouble must not take searching down with it.
			b.log.Warn("rate limit check failed, allowing request", "key", key, "error", err)
			return next(c)
		}

		h := c.Response().Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(b.cfg.Capacity))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(t.remaining, 10))
		if b.cfg.Debug {
			h.Set("X-RateLimit-Key", key)
		}
		if t.allowed {
			return next(c)
		}

		secs := int64((t.wait + time.Second - 1) / time.Second)
		h.Set("Retry-After", strconv.FormatInt(secs, 10))
		if b.cfg.Debug {
			b.log.Info("rate limit block", "key", key, "retry_after", t.wait)
		}
		return echo.NewHTTPError(http.StatusTooManyRequests,
			fmt.Sprintf("Too many searches. Try again in %d seconds.", secs))
	}
}

func (b *tokenBucket) take(ctx context.Context, key string) (bucketResult, error) {
	vals, err := takeToken.Run(ctx, b.rdb, []string{key},
		b.now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketResult{}, err
	}
	if len(vals) != 3 {
		return bucketResult{}, fmt.Errorf("rate limit script returned %d values", len(vals))
	}
	return bucketResult{
		allowed:   vals[0] == 1,
		remaining: vals[1],
		wait:      time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "route":
		parts = append(parts, "route", route)
	default: // ip_route
		parts = append(parts, "ip", ip, "route", route)
	}
	return strings.Join(parts, ":")
}
