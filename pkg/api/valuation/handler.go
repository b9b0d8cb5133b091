// Package valuation exposes the relative and DCF valuation endpoints.
package valuation

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/core/multiproduct"
	"privco_valuation/pkg/core/relative"
	xhttp "privco_valuation/pkg/http"
	"privco_valuation/pkg/metrics"
)

type Handler struct {
	engine  *engine.Engine
	metrics *metrics.Recorder
	log     zerolog.Logger
}

func NewHandler(eng *engine.Engine, rec *metrics.Recorder, log zerolog.Logger) *Handler {
	return &Handler{engine: eng, metrics: rec, log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/valuation")
	g.POST("/relative", h.Relative)
	g.POST("/absolute", h.Absolute)
	g.POST("/compare", h.Compare)
	g.POST("/multi-product", h.MultiProduct)
}

type RelativeRequest struct {
	Company     model.Company      `json:"company" validate:"required"`
	Comparables []model.Comparable `json:"comparables" validate:"required,min=1"`
	Methods     []string           `json:"methods"`
}

type RelativeResponse struct {
	Company string                            `json:"company"`
	Results map[string]*model.ValuationResult `json:"results"`
}

// Relative runs multiple-based valuation against a caller-supplied peer set.
func (h *Handler) Relative(c echo.Context) error {
	req := &RelativeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	results := relative.AutoComparableAnalysis(&req.Company, req.Comparables, req.Methods, relative.DefaultWeights())
	if len(results) == 0 {
		h.metrics.RecordError("relative", "no_method")
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("no relative method applicable to this company"))
	}
	for method := range results {
		h.metrics.RecordValuation("relative", method)
	}

	return xhttp.SuccessResponse(c, RelativeResponse{
		Company: req.Company.Name,
		Results: results,
	})
}

type AbsoluteRequest struct {
	Company         model.Company `json:"company" validate:"required"`
	ProjectionYears int           `json:"projection_years" default:"5" validate:"gte=1,lte=30"`
}

type AbsoluteResponse struct {
	Company string                 `json:"company"`
	Result  *model.ValuationResult `json:"result"`
}

// Absolute runs a standalone DCF valuation.
func (h *Handler) Absolute(c echo.Context) error {
	req := &AbsoluteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	start := time.Now()
	result, err := dcf.Valuation(&req.Company, dcf.Assumptions{ProjectionYears: req.ProjectionYears})
	if err != nil {
		h.log.Warn().Err(err).Str("company", req.Company.Name).Msg("dcf valuation failed")
		h.metrics.RecordError("absolute", "domain")
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}
	h.metrics.RecordValuation("absolute", dcf.MethodDCF)
	h.metrics.RecordDuration("absolute", time.Since(start).Seconds())

	return xhttp.SuccessResponse(c, AbsoluteResponse{
		Company: req.Company.Name,
		Result:  result,
	})
}

type CompareRequest struct {
	Company     model.Company      `json:"company" validate:"required"`
	Comparables []model.Comparable `json:"comparables"`
	Methods     []string           `json:"methods"`
}

// Compare cross-validates DCF and relative methods and returns the
// engine's recommendation alongside the per-method results.
func (h *Handler) Compare(c echo.Context) error {
	req := &CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	start := time.Now()
	report, err := h.engine.FullValuation(c.Request().Context(), &req.Company, engine.FullOptions{
		Comparables:      req.Comparables,
		Methods:          req.Methods,
		SkipRiskAnalysis: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Str("company", req.Company.Name).Msg("compare valuation failed")
		h.metrics.RecordError("compare", "valuation")
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}
	h.metrics.RecordDuration("compare", time.Since(start).Seconds())
	if report.Recommendation != nil {
		h.metrics.RecordValuation("compare", "recommendation")
		h.metrics.RecordFinalValue("compare", report.Recommendation.FinalValue)
	}

	return xhttp.SuccessResponse(c, report)
}

// MultiProductRequest carries the segment list plus the company-level
// DCF inputs, which sit flattened at the top level of the body.
type MultiProductRequest struct {
	CompanyName string                 `json:"company_name" validate:"required"`
	Industry    string                 `json:"industry"`
	Products    []model.ProductSegment `json:"products" validate:"required,min=1,max=10"`

	multiproduct.Config
}

type MultiProductResponse struct {
	Company       string                             `json:"company"`
	Industry      string                             `json:"industry,omitempty"`
	Result        *model.MultiProductValuationResult `json:"result"`
	Contributions []multiproduct.Contribution        `json:"contributions"`
}

// MultiProduct values the company as the sum of per-segment DCFs and
// reports each segment's contribution to enterprise value.
func (h *Handler) MultiProduct(c echo.Context) error {
	req := &MultiProductRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	start := time.Now()
	result, err := multiproduct.Valuation(req.Products, req.Config)
	if err != nil {
		h.log.Warn().Err(err).Str("company", req.CompanyName).Msg("multi-product valuation failed")
		h.metrics.RecordError("multi_product", "domain")
		return xhttp.AppErrorResponse(c, xhttp.FromDomainError(err))
	}
	h.metrics.RecordValuation("multi_product", "multi_product_dcf")
	h.metrics.RecordDuration("multi_product", time.Since(start).Seconds())
	h.metrics.RecordFinalValue("multi_product", result.TotalEquityValue)

	return xhttp.SuccessResponse(c, MultiProductResponse{
		Company:       req.CompanyName,
		Industry:      req.Industry,
		Result:        result,
		Contributions: multiproduct.Contributions(result),
	})
}
