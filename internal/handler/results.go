package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/scoring"
)

// ResultsHandler serves derived scores and rankings.
type ResultsHandler struct {
	Engine *scoring.Engine
	TopN   int
	Log    *zap.Logger
}

func NewResultsHandler(e *scoring.Engine, topN int, log *zap.Logger) *ResultsHandler {
	if topN < 1 {
		topN = 10
	}
	return &ResultsHandler{Engine: e, TopN: topN, Log: nopLogger(log)}
}

// Performance returns the aggregated scores of a band at a stage.  A band
// that was never scored there yields 404 rather than zero totals.
func (h *ResultsHandler) Performance(c echo.Context) error {
	bandID, ok := intParam(c, "band_id")
	if !ok {
		return badParam(c, "band_id")
	}
	stageID, ok := intParam(c, "stage_id")
	if !ok {
		return badParam(c, "stage_id")
	}
	ps, found, err := h.Engine.PerformanceScore(bandID, stageID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_judged"})
	}
	return c.JSON(http.StatusOK, ps)
}

// PerformanceComplete reports whether ?jury_member_id= scored every
// category of their discipline for the performance.
func (h *ResultsHandler) PerformanceComplete(c echo.Context) error {
	bandID, ok := intParam(c, "band_id")
	if !ok {
		return badParam(c, "band_id")
	}
	stageID, ok := intParam(c, "stage_id")
	if !ok {
		return badParam(c, "stage_id")
	}
	juryID := model.JuryMemberID(c.QueryParam("jury_member_id"))
	if juryID == "" {
		return badParam(c, "jury_member_id")
	}
	done, err := h.Engine.IsPerformanceComplete(bandID, stageID, juryID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"complete": done})
}

// StageScore returns a band's musicality, show and total at one stage.
func (h *ResultsHandler) StageScore(c echo.Context) error {
	bandID, ok := intParam(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	stageID, ok := intParam(c, "stage_id")
	if !ok {
		return badParam(c, "stage_id")
	}
	ss, found, err := h.Engine.BandScoreByStage(bandID, stageID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_judged"})
	}
	return c.JSON(http.StatusOK, ss)
}

type rankingEntry struct {
	scoring.RankedBand
	Forms scoring.FormsProgress `json:"forms"`
}

type rankingResp struct {
	Ranking      []rankingEntry           `json:"ranking"`
	Leaders      scoring.Leaders          `json:"leaders"`
	Completion   scoring.CompletionStatus `json:"completion"`
	Unattributed int                      `json:"unattributed"`
}

// Rankings returns the full ranking with jury form progress per band.
func (h *ResultsHandler) Rankings(c echo.Context) error {
	v, err := h.Engine.View()
	if err != nil {
		return respond(c, h.Log, err)
	}
	ranked := v.Ranking(0)
	out := rankingResp{
		Ranking:      make([]rankingEntry, 0, len(ranked)),
		Leaders:      v.CategoryLeaders(),
		Completion:   v.Completion(),
		Unattributed: v.Unattributed(),
	}
	for _, rb := range ranked {
		out.Ranking = append(out.Ranking, rankingEntry{RankedBand: rb, Forms: v.FormsProgress(rb.BandID)})
	}
	return c.JSON(http.StatusOK, out)
}

// Top returns the first ?limit= bands, defaulting to the configured size.
func (h *ResultsHandler) Top(c echo.Context) error {
	limit := h.TopN
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return badParam(c, "limit")
		}
		limit = n
	}
	ranked, err := h.Engine.Ranking(limit)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": ranked})
}
