package middleware

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avelora/slot-reservation/internal/config"
)

// bodyCapture tees the response body so a successful render can be
// stored after the handler runs.
type bodyCapture struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bodyCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// CacheGET returns a middleware that serves repeated GET requests from
// Redis for a short TTL.  Keys include route, path params and query
// string.  Only 200 responses under the size cap are stored.  The TTL
// is deliberately a few seconds: availability is racy by nature and the
// hold protocol re-validates, so slightly stale lists are acceptable
// but long-lived ones would advertise phantom slots.  A nil client or
// disabled config yields a no-op.
func CacheGET(rdb *redis.Client, cfg config.CacheConfig) echo.MiddlewareFunc {
	if rdb == nil || !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, c.Request().URL.Path, c.Request().URL.RawQuery)

			if body, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			rec := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && rec.buf.Len() > 0 && rec.buf.Len() <= cfg.MaxBodyBytes {
				// Best effort; a failed SET just means a cache miss later.
				rdb.Set(c.Request().Context(), key, rec.buf.Bytes(), cfg.TTL)
			}
			return nil
		}
	}
}
