package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Allower hands out request tokens per key.
type Allower interface {
	Allow(key string, capacity, refillPerSec float64) bool
}

// RateLimit rejects requests beyond perMinute per client IP with 429. burst is
// the bucket capacity.
func RateLimit(a Allower, perMinute, burst int) echo.MiddlewareFunc {
	refill := float64(perMinute) / 60
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if a == nil || perMinute <= 0 {
				return next(c)
			}
			if !a.Allow(c.RealIP(), float64(burst), refill) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": http.StatusText(http.StatusTooManyRequests),
				})
			}
			return next(c)
		}
	}
}
