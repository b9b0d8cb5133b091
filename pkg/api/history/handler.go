// Package history exposes stored valuation runs. Routes 503 when no
// database is configured; the rest of the API keeps working.
package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/core/store"
	xhttp "privco_valuation/pkg/http"
	"privco_valuation/pkg/metrics"
)

type Handler struct {
	engine  *engine.Engine
	repo    *store.HistoryRepo
	metrics *metrics.Recorder
	log     zerolog.Logger
}

func NewHandler(eng *engine.Engine, repo *store.HistoryRepo, rec *metrics.Recorder, log zerolog.Logger) *Handler {
	return &Handler{engine: eng, repo: repo, metrics: rec, log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/history")
	g.POST("/run", h.RunAndSave)
	g.GET("/recent", h.Recent)
	g.GET("/:id", h.Get)
}

func (h *Handler) unavailable(c echo.Context) error {
	return xhttp.DataResponse(c, http.StatusServiceUnavailable, "valuation history requires a configured database")
}

type RunRequest struct {
	Company     model.Company      `json:"company" validate:"required"`
	Comparables []model.Comparable `json:"comparables"`
	Seed        *int64             `json:"seed"`
}

type runResponse struct {
	ID     string             `json:"id"`
	Report *engine.FullReport `json:"report"`
}

// RunAndSave runs a full valuation and persists the result.
func (h *Handler) RunAndSave(c echo.Context) error {
	if h.repo == nil {
		return h.unavailable(c)
	}

	req := &RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.engine.FullValuation(c.Request().Context(), &req.Company, engine.FullOptions{
		Comparables: req.Comparables,
		Seed:        req.Seed,
	})
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	id, err := h.repo.Save(c.Request().Context(), &req.Company, report)
	if err != nil {
		h.log.Error().Err(err).Str("company", req.Company.Name).Msg("failed to persist valuation")
		h.metrics.RecordError("history_run", "store")
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to persist valuation").WithError(err))
	}
	h.metrics.RecordValuation("history_run", "full")
	if report.Recommendation != nil {
		h.metrics.RecordFinalValue("history_run", report.Recommendation.FinalValue)
	}

	return xhttp.CreatedResponse(c, runResponse{ID: id, Report: report})
}

// Get returns one stored valuation with its full report.
func (h *Handler) Get(c echo.Context) error {
	if h.repo == nil {
		return h.unavailable(c)
	}

	rec, err := h.repo.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to load valuation").WithError(err))
	}

	return xhttp.SuccessResponse(c, rec)
}

// Recent lists recent valuation runs, newest first.
func (h *Handler) Recent(c echo.Context) error {
	if h.repo == nil {
		return h.unavailable(c)
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("limit must be in 1..100"))
		}
		limit = n
	}

	records, err := h.repo.Recent(c.Request().Context(), limit)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to list valuations").WithError(err))
	}

	return xhttp.SuccessResponse(c, records)
}
