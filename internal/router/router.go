// Package router registers the HTTP routes of the scoring service.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/festival-jury-scoring/internal/handler"
	"github.com/iliyamo/festival-jury-scoring/internal/middleware"
	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// RegisterRoutes registers the probes and the metrics endpoint.
func RegisterRoutes(e *echo.Echo, ready func() bool, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Readiness(ready))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterAuth registers organizer authentication.  Login, refresh and
// logout are open; registering a new organizer and /v1/me need an
// organizer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleOrganizer))
	auth.POST("/auth/register", a.Register)
	auth.GET("/me", a.Me)
}
