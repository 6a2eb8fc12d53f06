package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-jury-scoring/internal/handler"
	"github.com/iliyamo/festival-jury-scoring/internal/middleware"
	"github.com/iliyamo/festival-jury-scoring/internal/model"
)

// RegisterAdmin registers roster management and exports under /v1/admin.
// Every route requires an organizer token.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, x *handler.ExportHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOrganizer),
	)

	g.POST("/bands", a.CreateBand)
	g.PATCH("/bands/:id", a.RenameBand)
	g.POST("/jury-members", a.CreateJuryMember)
	g.PATCH("/jury-members/:id", a.UpdateJuryMember)
	g.PATCH("/stages/:id", a.RenameStage)

	g.GET("/export/ranking.sql", x.RankingSQL)
	g.GET("/export/ranking.xlsx", x.RankingXLSX)
}
