// Package stress exposes the stress-test and Monte Carlo endpoints.
package stress

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/core/stress"
	xhttp "privco_valuation/pkg/http"
)

type Handler struct {
	log zerolog.Logger
}

func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/stress-test")
	g.POST("/revenue", h.RevenueShock)
	g.POST("/monte-carlo", h.MonteCarlo)
	g.POST("/full", h.Full)
}

type RevenueShockRequest struct {
	Company model.Company `json:"company" validate:"required"`
	Shocks  []float64     `json:"shocks" validate:"omitempty,dive,lte=0"`
}

type shockResponse struct {
	Company string                   `json:"company"`
	Results []model.StressTestResult `json:"results"`
}

// RevenueShock applies one-off revenue drops. Omitting shocks uses the
// standard -10/-20/-30% set.
func (h *Handler) RevenueShock(c echo.Context) error {
	req := &RevenueShockRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	tester, err := stress.NewTester(&req.Company)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	shocks := req.Shocks
	if len(shocks) == 0 {
		shocks = stress.DefaultRevenueShocks
	}

	results, err := tester.RevenueShock(shocks)
	if err != nil {
		h.log.Warn().Err(err).Str("company", req.Company.Name).Msg("revenue shock test failed")
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	return xhttp.SuccessResponse(c, shockResponse{
		Company: req.Company.Name,
		Results: results,
	})
}

type MonteCarloRequest struct {
	Company    model.Company `json:"company" validate:"required"`
	Iterations int           `json:"iterations" default:"1000" validate:"gte=100,lte=10000"`
	Workers    int           `json:"workers" validate:"gte=0,lte=64"`
	Seed       *int64        `json:"seed"`
}

type monteCarloResponse struct {
	Company string                  `json:"company"`
	Result  *model.MonteCarloResult `json:"result"`
}

// MonteCarlo samples the assumption space and returns the valuation
// distribution. A fixed seed makes the run reproducible.
func (h *Handler) MonteCarlo(c echo.Context) error {
	req := &MonteCarloRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	tester, err := stress.NewTester(&req.Company)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	result, err := tester.MonteCarlo(stress.MonteCarloConfig{
		Iterations: req.Iterations,
		Workers:    req.Workers,
		Seed:       req.Seed,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("company", req.Company.Name).Msg("monte carlo simulation failed")
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	return xhttp.SuccessResponse(c, monteCarloResponse{
		Company: req.Company.Name,
		Result:  result,
	})
}

type FullRequest struct {
	Company model.Company `json:"company" validate:"required"`
}

type fullResponse struct {
	Company string         `json:"company"`
	Report  *stress.Report `json:"report"`
}

// Full runs every stress battery plus a Monte Carlo pass.
func (h *Handler) Full(c echo.Context) error {
	req := &FullRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	tester, err := stress.NewTester(&req.Company)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	report, err := tester.GenerateReport(stress.MonteCarloConfig{})
	if err != nil {
		h.log.Warn().Err(err).Str("company", req.Company.Name).Msg("full stress test failed")
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}

	return xhttp.SuccessResponse(c, fullResponse{
		Company: req.Company.Name,
		Report:  report,
	})
}
