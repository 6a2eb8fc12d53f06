package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
)

// AdminHandler lets organizers edit the roster.
type AdminHandler struct {
	Roster *roster.Service
	Cache  CachePurger
	Log    *zap.Logger
}

func NewAdminHandler(svc *roster.Service, cache CachePurger, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Roster: svc, Cache: cache, Log: nopLogger(log)}
}

// purge drops cached result pages that may still carry old roster names.
func (h *AdminHandler) purge(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Purge(ctx); err != nil {
		h.Log.Warn("cache purge failed", zap.Error(err))
	}
}

type createBandReq struct {
	ID   int    `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required,max=120"`
}

type renameReq struct {
	Name string `json:"name" validate:"required,max=120"`
}

type createJuryReq struct {
	Name       string `json:"name" validate:"required,max=120"`
	Discipline string `json:"discipline" validate:"required"`
	StageID    int    `json:"stage_id" validate:"required,gt=0"`
}

type updateJuryReq struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Discipline *string `json:"discipline"`
	StageID    *int    `json:"stage_id" validate:"omitempty,gt=0"`
}

// CreateBand registers a band under the id chosen by the organizers.
func (h *AdminHandler) CreateBand(c echo.Context) error {
	var req createBandReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	b, err := h.Roster.AddBand(c.Request().Context(), req.ID, req.Name)
	if err != nil {
		return respond(c, h.Log, err)
	}
	h.purge(c.Request().Context())
	return c.JSON(http.StatusCreated, b)
}

// RenameBand changes a band's display name.
func (h *AdminHandler) RenameBand(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var req renameReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	if err := h.Roster.RenameBand(c.Request().Context(), id, req.Name); err != nil {
		return respond(c, h.Log, err)
	}
	h.purge(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// CreateJuryMember adds a jury member and returns the generated id.
func (h *AdminHandler) CreateJuryMember(c echo.Context) error {
	var req createJuryReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	d, err := model.ParseDiscipline(req.Discipline)
	if err != nil {
		return respond(c, h.Log, err)
	}
	j, err := h.Roster.AddJuryMember(c.Request().Context(), req.Name, d, req.StageID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	h.purge(c.Request().Context())
	return c.JSON(http.StatusCreated, j)
}

// UpdateJuryMember changes the name, discipline or stage of a jury member.
// Scores already given keep their original stage.
func (h *AdminHandler) UpdateJuryMember(c echo.Context) error {
	id := juryParam(c)
	if id == "" {
		return badParam(c, "id")
	}
	var req updateJuryReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	upd := roster.JuryMemberUpdate{Name: req.Name, StageID: req.StageID}
	if req.Discipline != nil {
		d, err := model.ParseDiscipline(*req.Discipline)
		if err != nil {
			return respond(c, h.Log, err)
		}
		upd.Discipline = &d
	}
	if err := h.Roster.UpdateJuryMember(c.Request().Context(), id, upd); err != nil {
		return respond(c, h.Log, err)
	}
	h.purge(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// RenameStage changes a stage's display name.
func (h *AdminHandler) RenameStage(c echo.Context) error {
	id, ok := intParam(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	var req renameReq
	if err := bind(c, &req); err != nil {
		return respond(c, h.Log, err)
	}
	if err := h.Roster.RenameStage(c.Request().Context(), id, req.Name); err != nil {
		return respond(c, h.Log, err)
	}
	h.purge(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
