package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/config"
	"github.com/talenthub/competency-api/internal/metrics"
	"github.com/talenthub/competency-api/internal/ratelimit"
	"github.com/talenthub/competency-api/pkg/logger"
)

// RateLimit guards a single route with a fixed-window rule keyed by client
// IP. Counter-store errors fail open: availability wins over strictness.
// Denials are throttling, not security events, so they are never written to
// the audit log.
func RateLimit(limiter *ratelimit.Limiter, route string, rule config.RateRule, enabled bool) echo.MiddlewareFunc {
	if !enabled || limiter == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}

			d, err := limiter.Check(c.Request().Context(), ip, route, rule)
			if err != nil {
				log := logger.Get()
				log.Warn().Err(err).Str("route", route).Msg("rate limit check failed, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))

			if !d.Allowed {
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				if secs < 0 {
					secs = 0
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				metrics.RateLimitedTotal.WithLabelValues(route).Inc()
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}
