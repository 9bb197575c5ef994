package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/poshable/visitlog/internal/platform/auth"
)

// Logger writes one line per request. Errors are rendered before logging so
// the recorded status is the one the client saw. Query strings are left out
// because they can carry patient names.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			res := c.Response()
			level := zerolog.InfoLevel
			switch {
			case res.Status >= http.StatusInternalServerError:
				level = zerolog.ErrorLevel
			case res.Status >= http.StatusBadRequest:
				level = zerolog.WarnLevel
			}

			rid, _ := c.Get(requestIDKey).(string)
			logger.WithLevel(level).
				Str("request_id", rid).
				Str("staff_id", auth.UserIDFromContext(c.Request().Context())).
				Str("method", c.Request().Method).
				Str("route", c.Path()).
				Str("path", c.Request().URL.Path).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}

