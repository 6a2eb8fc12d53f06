package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
	"github.com/iliyamo/festival-jury-scoring/internal/scoring"
)

// ScorePublisher announces accepted submissions to other instances.
type ScorePublisher interface {
	PublishScoresSubmitted(ctx context.Context, bandID, stageID int, juryID model.JuryMemberID) error
}

// CachePurger drops cached read responses after a write.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// JuryHandler serves the roster to the jury app and accepts score forms.
type JuryHandler struct {
	Roster    *roster.Store
	Engine    *scoring.Engine
	Publisher ScorePublisher
	Cache     CachePurger
	Log       *zap.Logger
}

func NewJuryHandler(rs *roster.Store, e *scoring.Engine, pub ScorePublisher, cache CachePurger, log *zap.Logger) *JuryHandler {
	return &JuryHandler{Roster: rs, Engine: e, Publisher: pub, Cache: cache, Log: nopLogger(log)}
}

func (h *JuryHandler) snapshot() (*roster.Snapshot, error) {
	snap, ok := h.Roster.Current()
	if !ok {
		return nil, roster.ErrNotReady
	}
	return snap, nil
}

// ListStages returns every stage ordered by id.
func (h *JuryHandler) ListStages(c echo.Context) error {
	snap, err := h.snapshot()
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": snap.Stages})
}

// ListBands returns every band ordered by id.
func (h *JuryHandler) ListBands(c echo.Context) error {
	snap, err := h.snapshot()
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": snap.Bands})
}

// ListCategories returns the catalog, optionally filtered by ?discipline=.
func (h *JuryHandler) ListCategories(c echo.Context) error {
	snap, err := h.snapshot()
	if err != nil {
		return respond(c, h.Log, err)
	}
	raw := c.QueryParam("discipline")
	if raw == "" {
		return c.JSON(http.StatusOK, echo.Map{"items": snap.Categories})
	}
	d, err := model.ParseDiscipline(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid discipline"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": snap.CategoriesFor(d)})
}

// ListJuryMembers returns the jury ordered by stage.
func (h *JuryHandler) ListJuryMembers(c echo.Context) error {
	snap, err := h.snapshot()
	if err != nil {
		return respond(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": snap.JuryMembers})
}

type juryDetail struct {
	model.JuryMember
	Stage       model.Stage      `json:"stage"`
	Categories  []model.Category `json:"categories"`
	ScoredBands []int            `json:"scored_bands"`
}

// GetJuryMember returns what the jury app needs to render a member's form:
// their stage, the categories of their discipline and the bands they have
// already scored.
func (h *JuryHandler) GetJuryMember(c echo.Context) error {
	v, err := h.Engine.View()
	if err != nil {
		return respond(c, h.Log, err)
	}
	snap := v.Roster()
	j, ok := snap.JuryMember(juryParam(c))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "jury member not found"})
	}
	stage, _ := snap.Stage(j.StageID)
	scored := v.ScoredBands(j.ID)
	if scored == nil {
		scored = []int{}
	}
	return c.JSON(http.StatusOK, juryDetail{
		JuryMember:  j,
		Stage:       stage,
		Categories:  snap.CategoriesFor(j.Discipline),
		ScoredBands: scored,
	})
}

// Progress returns the bands a jury member has fully scored.
func (h *JuryHandler) Progress(c echo.Context) error {
	v, err := h.Engine.View()
	if err != nil {
		return respond(c, h.Log, err)
	}
	p, ok := v.JuryProgress(juryParam(c))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "jury member not found"})
	}
	return c.JSON(http.StatusOK, p)
}

type submitReq struct {
	BandID  int         `json:"band_id" validate:"required,gt=0"`
	StageID int         `json:"stage_id" validate:"omitempty,gt=0"`
	Scores  map[int]int `json:"scores" validate:"required,min=1,dive,keys,gt=0,endkeys,min=1,max=10"`
}

// SubmitScores stores one complete form for the jury member in the path.
// The stage defaults to the member's own stage.  A 201 is only sent after
// the scores are durably stored.
func (h *JuryHandler) SubmitScores(c echo.Context) error {
	var req submitReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	juryID := juryParam(c)
	sub := scoring.Submission{BandID: req.BandID, StageID: req.StageID, JuryMemberID: juryID, Values: req.Scores}
	if sub.StageID == 0 {
		if snap, ok := h.Roster.Current(); ok {
			if j, ok := snap.JuryMember(juryID); ok {
				sub.StageID = j.StageID
			}
		}
	}

	ctx := c.Request().Context()
	stored, err := h.Engine.Submit(ctx, sub)
	if err != nil {
		return respond(c, h.Log, err)
	}
	h.Log.Info("scores submitted",
		zap.Int("band_id", sub.BandID),
		zap.Int("stage_id", sub.StageID),
		zap.String("jury_member_id", string(juryID)),
		zap.Int("categories", len(stored)))

	if h.Cache != nil {
		if err := h.Cache.Purge(ctx); err != nil {
			h.Log.Warn("cache purge failed", zap.Error(err))
		}
	}
	if h.Publisher != nil {
		if err := h.Publisher.PublishScoresSubmitted(ctx, sub.BandID, sub.StageID, juryID); err != nil {
			h.Log.Warn("score broadcast failed", zap.Error(err))
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"scores": stored})
}
