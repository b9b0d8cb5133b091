// Package sensitivity exposes the sensitivity and tornado endpoints.
package sensitivity

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/core/sensitivity"
	xhttp "privco_valuation/pkg/http"
)

type Handler struct {
	log zerolog.Logger
}

func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/sensitivity")
	g.POST("/one-way", h.OneWay)
	g.POST("/tornado", h.Tornado)
	g.POST("/comprehensive", h.Comprehensive)
}

type OneWayRequest struct {
	Company   model.Company `json:"company" validate:"required"`
	Parameter string        `json:"parameter" validate:"required,oneof=growth_rate operating_margin wacc terminal_growth"`
	Min       *float64      `json:"min"`
	Max       *float64      `json:"max"`
	Steps     int           `json:"steps" default:"10" validate:"gte=3,lte=100"`
}

type oneWayResponse struct {
	Company string                    `json:"company"`
	Result  *sensitivity.OneWayResult `json:"result"`
}

// OneWay sweeps a single parameter across a range and reports the
// valuation at each point.
func (h *Handler) OneWay(c echo.Context) error {
	req := &OneWayRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if (req.Min == nil) != (req.Max == nil) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("min and max must be provided together"))
	}

	analyzer, err := sensitivity.NewAnalyzer(&req.Company)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	var r *sensitivity.Range
	if req.Min != nil {
		r = &sensitivity.Range{Min: *req.Min, Max: *req.Max}
	}

	result, err := analyzer.OneWay(dcf.Parameter(req.Parameter), r, req.Steps)
	if err != nil {
		h.log.Warn().Err(err).Str("company", req.Company.Name).Msg("one-way sensitivity failed")
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	return xhttp.SuccessResponse(c, oneWayResponse{
		Company: req.Company.Name,
		Result:  result,
	})
}

type TornadoRequest struct {
	Company model.Company      `json:"company" validate:"required"`
	Changes map[string]float64 `json:"changes"`
}

type tornadoResponse struct {
	Company string                     `json:"company"`
	Entries []sensitivity.TornadoEntry `json:"entries"`
}

// Tornado perturbs each parameter symmetrically and ranks them by impact.
func (h *Handler) Tornado(c echo.Context) error {
	req := &TornadoRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	analyzer, err := sensitivity.NewAnalyzer(&req.Company)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	var changes map[dcf.Parameter]float64
	if len(req.Changes) > 0 {
		changes = make(map[dcf.Parameter]float64, len(req.Changes))
		for name, delta := range req.Changes {
			changes[dcf.Parameter(name)] = delta
		}
	}

	return xhttp.SuccessResponse(c, tornadoResponse{
		Company: req.Company.Name,
		Entries: analyzer.Tornado(changes),
	})
}

type ComprehensiveRequest struct {
	Company model.Company `json:"company" validate:"required"`
}

type comprehensiveResponse struct {
	Company string                           `json:"company"`
	Results *sensitivity.ComprehensiveResult `json:"results"`
}

// Comprehensive sweeps every standard parameter and includes the tornado
// ranking.
func (h *Handler) Comprehensive(c echo.Context) error {
	req := &ComprehensiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	analyzer, err := sensitivity.NewAnalyzer(&req.Company)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	return xhttp.SuccessResponse(c, comprehensiveResponse{
		Company: req.Company.Name,
		Results: analyzer.Comprehensive(),
	})
}
