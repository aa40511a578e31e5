package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/pkg/logger"
)

// AccessLog emits one structured log line per request.
func AccessLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			log := logger.Get()
			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("ip", c.RealIP()).
				Str("request_id", GetRequestID(c)).
				Msg("request")
			return nil
		}
	}
}
