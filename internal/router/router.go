package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wine-dine/internal/auth"
	"github.com/iliyamo/wine-dine/internal/handler"
	"github.com/iliyamo/wine-dine/internal/middleware"
	"github.com/iliyamo/wine-dine/internal/model"
)

// LoginPath is where the session gate sends anonymous visitors.
const LoginPath = "/admin-login"

// RegisterRoutes registers routes that do not touch any store.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET(LoginPath, handler.LoginView)
}

// RegisterAuth registers the authentication endpoints.  Token exchange and
// password reset live under /v1/auth; account operations need a session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, gate *auth.Gate) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout works with either a refresh token in the body or a bearer
	// token, so it stays outside the JWT group.
	g.POST("/logout", a.Logout)
	g.POST("/password-reset", a.RequestPasswordReset)
	g.POST("/password-reset/confirm", a.ConfirmPasswordReset)

	v1 := e.Group("/v1", middleware.JWTAuth(gate), middleware.RequireRole(model.RoleAdmin))
	v1.GET("/me", a.Me)

	acct := e.Group("/v1/admin/account", middleware.JWTAuth(gate), middleware.RequireRole(model.RoleAdmin))
	acct.PUT("/email", a.ChangeEmail)
	acct.PUT("/password", a.ChangePassword)
}

// RegisterPublic registers the unauthenticated site endpoints.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	e.GET("/v1/categories", p.Categories)
	e.GET("/v1/menu", p.BrowseMenu)
	e.GET("/v1/reviews", p.Reviews)
	e.POST("/v1/reviews", p.SubmitReview)
	e.POST("/v1/contact", p.SubmitContact)
}
