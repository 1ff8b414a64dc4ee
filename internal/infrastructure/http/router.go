// Package http serves the local diagnostics endpoints of a long-running
// client process (the watch command): liveness, readiness of the backend
// and session store, the notification badge, and Prometheus metrics.
package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk-client/internal/infrastructure/http/handlers"
	"github.com/quickdesk/helpdesk-client/internal/infrastructure/poll"
)

// Dependencies wires the diagnostics routes.
type Dependencies struct {
	Probes []handlers.Probe
	Badge  func() (poll.Badge, bool)
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// --- Global middleware ---
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			deps.Log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Msg("diagnostics request")
			return nil
		},
	}))

	// --- Probes ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(deps.Probes...).Readiness)

	// --- Watch state ---
	badge := deps.Badge
	if badge == nil {
		badge = func() (poll.Badge, bool) { return poll.Badge{}, false }
	}
	e.GET("/notifications/badge", handlers.NewBadgeHandler(badge).Badge)

	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
