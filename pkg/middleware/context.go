package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cloverhq/clover/pkg/appcontext"
)

// HeaderUserID is the header key for user ID
const HeaderUserID = "X-User-ID"

func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			// get request id from header
			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			// get user id from header
			userID := req.Header.Get(HeaderUserID)

			ctx := req.Context()
			ctx = appcontext.SetRequestID(ctx, requestID)
			ctx = appcontext.SetMethod(ctx, req.Method)
			ctx = appcontext.SetRoute(ctx, req.URL.Path)
			ctx = appcontext.SetRemoteIP(ctx, c.RealIP())
			ctx = appcontext.SetReferer(ctx, req.Referer())
			ctx = appcontext.SetUserID(ctx, userID)

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
