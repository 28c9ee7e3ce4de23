package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wine-dine/internal/auth"
)

// JWTAuth returns an Echo middleware for API routes.  It validates the
// access token (Bearer header or access_token cookie) and stores the caller
// in both the echo context ("user_id", "role") and the request context.
// Requests without a valid token get 401.
func JWTAuth(gate *auth.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := gate.Authenticate(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or missing token"})
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// SessionGate guards browser views.  When no authenticated admin is present
// the request is redirected to loginPath instead of being rendered.
func SessionGate(gate *auth.Gate, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := gate.Authenticate(c.Request())
			if !ok || !id.IsAdmin() {
				return c.Redirect(http.StatusFound, loginPath)
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}
