package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-jury-scoring/internal/handler"
)

// RegisterPublic registers the jury and audience endpoints.  They carry no
// authentication.  cache wraps the read endpoints that change only on
// submission; limit wraps score submission.
func RegisterPublic(e *echo.Echo, j *handler.JuryHandler, r *handler.ResultsHandler, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/v1")

	g.GET("/stages", j.ListStages)
	g.GET("/bands", j.ListBands)
	g.GET("/categories", j.ListCategories)
	g.GET("/jury-members", j.ListJuryMembers)
	g.GET("/jury-members/:id", j.GetJuryMember)
	g.GET("/jury-members/:id/progress", j.Progress)
	g.POST("/jury-members/:id/scores", j.SubmitScores, limit)

	g.GET("/performances/:band_id/:stage_id", r.Performance)
	g.GET("/performances/:band_id/:stage_id/complete", r.PerformanceComplete)
	g.GET("/bands/:id/stages/:stage_id/score", r.StageScore)
	g.GET("/rankings", r.Rankings, cache)
	g.GET("/rankings/top", r.Top, cache)
}
