package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimit applies a fixed one-minute window of at most `limit`
// attempts per client IP, counted in redis so the limit holds across
// replicas.  A nil client or non-positive limit disables the check; a
// redis failure lets the request through rather than locking everyone
// out.
func LoginRateLimit(rdb *redis.Client, limit int) echo.MiddlewareFunc {
	if rdb == nil || limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := "ratelimit:login:" + c.RealIP()

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, time.Minute).Err()
			}
			if n > int64(limit) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many attempts"})
			}
			return next(c)
		}
	}
}
