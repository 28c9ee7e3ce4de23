package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wine-dine/internal/auth"
	"github.com/iliyamo/wine-dine/internal/handler"
	"github.com/iliyamo/wine-dine/internal/middleware"
	"github.com/iliyamo/wine-dine/internal/model"
)

// RegisterAdmin registers the back office.  The panel view redirects
// anonymous visitors to LoginPath; the JSON API answers them with 401.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, gate *auth.Gate) {
	e.GET("/admin", a.Dashboard, middleware.SessionGate(gate, LoginPath))

	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(gate),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Reviews ----
	g.GET("/reviews/pending", a.PendingReviews)
	g.POST("/reviews/:id/approve", a.ApproveReview)
	g.DELETE("/reviews/:id", a.RejectReview)

	// ---- Menu ----
	g.GET("/menu", a.ListMenu)
	g.POST("/menu", a.CreateMenuItem)
	g.DELETE("/menu/:id", a.DeleteMenuItem)
	g.POST("/uploads", a.UploadImage)

	// ---- Messages ----
	g.GET("/messages", a.Messages)
	g.POST("/messages/:id/read", a.MarkMessageRead)
	g.DELETE("/messages/:id", a.DeleteMessage)
}
