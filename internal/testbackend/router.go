package testbackend

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
)

// newRouter registers the backend routes under /api.
func newRouter(b *Backend) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(echomiddleware.Recover())
	e.Use(b.recorder)

	api := e.Group("/api")

	// --- Public ---
	api.GET("/health", b.health)
	api.POST("/auth/register", b.register)
	api.POST("/auth/login", b.login)

	// --- Authenticated ---
	authed := api.Group("", auth(jwtSecret))
	staff := rbac(domain.RoleSupportAgent, domain.RoleAdmin)
	admin := rbac(domain.RoleAdmin)

	authed.GET("/auth/me", b.me)
	authed.GET("/users", b.listUsers, admin)
	authed.GET("/categories", b.listCategories)
	authed.POST("/categories", b.createCategory, admin)

	authed.GET("/tickets", b.listTickets)
	authed.POST("/tickets", b.createTicket)
	authed.GET("/tickets/:id", b.getTicket)
	authed.PUT("/tickets/:id/status", b.updateStatus, staff)
	authed.PUT("/tickets/:id/assign", b.assignTicket, staff)
	authed.POST("/tickets/:id/comments", b.addComment)
	authed.POST("/tickets/:id/vote", b.vote)
	authed.POST("/tickets/:id/attachments", b.uploadAttachment)
	authed.GET("/attachments/:id/download", b.downloadAttachment)

	authed.GET("/notifications", b.listNotifications)
	authed.PUT("/notifications/:id/read", b.markRead)
	authed.GET("/dashboard", b.dashboard)
	authed.GET("/db-info", b.dbInfo, admin)

	return e
}
