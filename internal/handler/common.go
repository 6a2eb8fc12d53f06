// Package handler exposes the HTTP API of the jury scoring service.  Public
// handlers serve the jury and the audience screens; organizer handlers sit
// behind JWT auth.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/festival-jury-scoring/internal/model"
	"github.com/iliyamo/festival-jury-scoring/internal/repository"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
	"github.com/iliyamo/festival-jury-scoring/internal/scoring"
)

// Validator plugs go-playground/validator into Echo.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

var errBadBody = errors.New("invalid request body")

// bind decodes and validates a request DTO.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errBadBody
	}
	return c.Validate(req)
}

// fieldError is one failed validation rule in a 400 response.
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// respond translates service errors into HTTP responses.  Unmapped errors
// are logged and reported as 500.
func respond(c echo.Context, log *zap.Logger, err error) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, scoring.ErrNotReady), errors.Is(err, roster.ErrNotReady):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":   "not_ready",
			"message": "scores are still loading, try again shortly",
		})
	case scoring.IsRetryable(err):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":     "storage_unavailable",
			"message":   "scores could not be saved, nothing was changed; please submit again",
			"retryable": true,
		})
	case errors.Is(err, errBadBody):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body"})
	case errors.As(err, &verrs):
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Namespace(), Rule: fe.Tag()})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_failed", "fields": fields})
	case errors.Is(err, scoring.ErrUnknownJuryMember), errors.Is(err, roster.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, roster.ErrDuplicate), errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "message": err.Error()})
	case errors.Is(err, scoring.ErrUnknownBand),
		errors.Is(err, scoring.ErrStageMismatch),
		errors.Is(err, scoring.ErrCategoryMismatch),
		errors.Is(err, scoring.ErrIncompleteSubmission),
		errors.Is(err, roster.ErrUnknownStage),
		errors.Is(err, roster.ErrInvalidName),
		errors.Is(err, roster.ErrInvalidID),
		errors.Is(err, roster.ErrEmptyUpdate),
		errors.Is(err, model.ErrUnknownDiscipline):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "unprocessable", "message": err.Error()})
	}
	log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal"})
}

func intParam(c echo.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func badParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
}

func juryParam(c echo.Context) model.JuryMemberID {
	return model.JuryMemberID(strings.TrimSpace(c.Param("id")))
}

func nopLogger(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
