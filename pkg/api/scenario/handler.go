// Package scenario exposes the scenario-comparison endpoint.
package scenario

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/core/scenario"
	xhttp "privco_valuation/pkg/http"
)

type Handler struct {
	log zerolog.Logger
}

func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/scenario/analyze", h.Analyze)
}

type AnalyzeRequest struct {
	Company   model.Company          `json:"company" validate:"required"`
	Scenarios []model.ScenarioConfig `json:"scenarios"`
}

type AnalyzeResponse struct {
	Company string               `json:"company"`
	Results *scenario.Comparison `json:"results"`
}

// Analyze values the company under each scenario. Omitting scenarios runs
// the standard base, bull and bear set.
func (h *Handler) Analyze(c echo.Context) error {
	req := &AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	scenarios := req.Scenarios
	if len(scenarios) == 0 {
		scenarios = scenario.DefaultScenarios()
	}

	comparison, err := scenario.Compare(&req.Company, scenarios)
	if err != nil {
		h.log.Warn().Err(err).Str("company", req.Company.Name).Msg("scenario analysis failed")
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	return xhttp.SuccessResponse(c, AnalyzeResponse{
		Company: req.Company.Name,
		Results: comparison,
	})
}
