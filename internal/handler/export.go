package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/export"
	"github.com/iliyamo/festival-jury-scoring/internal/scoring"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves ranking snapshots as downloads.
type ExportHandler struct {
	Engine *scoring.Engine
	Table  string
	Log    *zap.Logger
	now    func() time.Time
}

func NewExportHandler(e *scoring.Engine, table string, log *zap.Logger) *ExportHandler {
	return &ExportHandler{Engine: e, Table: table, Log: nopLogger(log), now: time.Now}
}

// RankingSQL returns an UPDATE script that writes the current totals and
// ranks into the band table.
func (h *ExportHandler) RankingSQL(c echo.Context) error {
	v, err := h.Engine.View()
	if err != nil {
		return respond(c, h.Log, err)
	}
	now := h.now()
	script := export.SQLScript(v.Ranking(0), export.SQLOptions{Table: h.Table, GeneratedAt: now})
	setAttachment(c, fmt.Sprintf("ranking_%s.sql", now.Format("20060102-1504")))
	return c.Blob(http.StatusOK, "application/sql; charset=utf-8", []byte(script))
}

// RankingXLSX returns the ranking as an Excel workbook.
func (h *ExportHandler) RankingXLSX(c echo.Context) error {
	v, err := h.Engine.View()
	if err != nil {
		return respond(c, h.Log, err)
	}
	buf, name, err := export.Workbook(v.Ranking(0), v.Roster().Stages)
	if err != nil {
		return respond(c, h.Log, err)
	}
	setAttachment(c, name)
	return c.Stream(http.StatusOK, xlsxContentType, buf)
}

func setAttachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename)))
}
