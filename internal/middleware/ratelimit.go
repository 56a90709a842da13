package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avelora/slot-reservation/internal/config"
)

// tokenBucketScript refills and drains one bucket atomically.  State is
// two hash fields (tokens, last refill in ms); KEYS[1] is the bucket,
// ARGV = capacity, refill tokens, refill interval ms, now ms, ttl ms.
// Returns {allowed, remaining}.
var tokenBucketScript = redis.NewScript(`
local tokens = tonumber(redis.call('HGET', KEYS[1], 't') or ARGV[1])
local last = tonumber(redis.call('HGET', KEYS[1], 'ts') or ARGV[4])
local cap = tonumber(ARGV[1])
local refill = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local elapsed = now - last
if elapsed > 0 then
  tokens = math.min(cap, tokens + math.floor(elapsed / interval) * refill)
  last = last + math.floor(elapsed / interval) * interval
end
local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end
redis.call('HSET', KEYS[1], 't', tokens, 'ts', last)
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return {allowed, tokens}
`)

// RateLimit returns a per-client token bucket middleware backed by
// Redis, so the limit holds across replicas.  Buckets are keyed by
// authenticated user when present, falling back to client IP, plus the
// route, so hammering hold acquisition does not eat a client's budget
// for browsing.  A nil client or disabled config yields a no-op.
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if rdb == nil || !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := c.RealIP()
			if uid := c.Get("user_id"); uid != nil {
				subject = fmt.Sprintf("u:%v", uid)
			}
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, subject, c.Path())

			now := time.Now().UnixMilli()
			res, err := tokenBucketScript.Run(c.Request().Context(), rdb, []string{key},
				cfg.Capacity, cfg.RefillTokens, cfg.RefillInterval.Milliseconds(),
				now, cfg.TTL.Milliseconds()).Int64Slice()
			if err != nil || len(res) != 2 {
				// Redis trouble must not take the API down.
				return next(c)
			}
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
			if res[0] == 0 {
				retry := cfg.RefillInterval / time.Duration(cfg.RefillTokens)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
