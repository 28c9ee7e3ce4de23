package middleware

// identity.go keeps the echo context and the request context in agreement
// about who the caller is.  Handlers that only see a context.Context use
// auth.CurrentIdentity; echo handlers may also read c.Get("user_id").

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wine-dine/internal/auth"
)

func setIdentity(c echo.Context, id auth.Identity) {
	c.Set("user_id", id.UserID)
	c.Set("role", id.Role)
	c.SetRequest(c.Request().WithContext(auth.WithIdentity(c.Request().Context(), id)))
}

// CurrentIdentity returns the caller stored by JWTAuth or SessionGate.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	return auth.CurrentIdentity(c.Request().Context())
}
