package middleware

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/appcontext"
)

// Logger emits one structured access-log line per request. It runs after
// Context, so the request id and user id come from the enriched context
// rather than raw headers.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			ctx := c.Request().Context()
			logger.WithContext(ctx).WithFields(map[string]interface{}{
				"request_id":  appcontext.GetRequestID(ctx),
				"user_id":     appcontext.GetUserID(ctx),
				"method":      req.Method,
				"uri":         req.RequestURI,
				"route":       c.Path(),
				"status":      res.Status,
				"remote_ip":   c.RealIP(),
				"user_agent":  req.UserAgent(),
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes_out":   res.Size,
			}).Info("Request")

			return nil
		}
	}
}
