// Package data exposes the market-data lookup endpoints.
package data

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/marketdata"
	"privco_valuation/pkg/core/model"
	xhttp "privco_valuation/pkg/http"
)

const maxComparables = 100

type Handler struct {
	source marketdata.Source
	log    zerolog.Logger
}

func NewHandler(source marketdata.Source, log zerolog.Logger) *Handler {
	return &Handler{source: source, log: log}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/data")
	g.GET("/comparable/:industry", h.Comparables)
	g.GET("/industry-multiples/:industry", h.IndustryMultiples)
	g.GET("/company/:ts_code", h.CompanyFinancials)
	g.POST("/search", h.Search)
}

type comparablesResponse struct {
	Industry  string             `json:"industry"`
	Count     int                `json:"count"`
	Companies []model.Comparable `json:"companies"`
}

// Comparables lists listed peers for an industry.
func (h *Handler) Comparables(c echo.Context) error {
	if h.source == nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no market data source configured"))
	}

	industry := c.Param("industry")
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxComparables {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("limit must be in 1..%d", maxComparables))
		}
		limit = n
	}

	companies, err := h.source.Comparables(c.Request().Context(), industry)
	if err != nil {
		h.log.Warn().Err(err).Str("industry", industry).Msg("comparable lookup failed")
		return xhttp.AppErrorResponse(c, xhttp.InternalError("comparable lookup failed").WithError(err))
	}
	if len(companies) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no comparables found for industry "+industry))
	}
	if len(companies) > limit {
		companies = companies[:limit]
	}

	return xhttp.SuccessResponse(c, comparablesResponse{
		Industry:  industry,
		Count:     len(companies),
		Companies: companies,
	})
}

type multiplesResponse struct {
	Industry  string             `json:"industry"`
	Multiples map[string]float64 `json:"multiples"`
}

// IndustryMultiples returns median valuation multiples for an industry.
func (h *Handler) IndustryMultiples(c echo.Context) error {
	if h.source == nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no market data source configured"))
	}

	industry := c.Param("industry")
	multiples, err := h.source.IndustryMultiples(c.Request().Context(), industry)
	if err != nil {
		h.log.Warn().Err(err).Str("industry", industry).Msg("industry multiples lookup failed")
		return xhttp.AppErrorResponse(c, xhttp.InternalError("industry multiples lookup failed").WithError(err))
	}
	if len(multiples) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no multiples found for industry "+industry))
	}

	return xhttp.SuccessResponse(c, multiplesResponse{
		Industry:  industry,
		Multiples: multiples,
	})
}

// CompanyFinancials returns one listed company's financial record by its
// exchange code.
func (h *Handler) CompanyFinancials(c echo.Context) error {
	if h.source == nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no market data source configured"))
	}

	tsCode := c.Param("ts_code")
	comp, err := h.source.CompanyFinancials(c.Request().Context(), tsCode)
	if err != nil {
		h.log.Warn().Err(err).Str("ts_code", tsCode).Msg("company lookup failed")
		return xhttp.AppErrorResponse(c, xhttp.InternalError("company lookup failed").WithError(err))
	}
	if comp == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no listed company with code "+tsCode))
	}

	return xhttp.SuccessResponse(c, comp)
}

type SearchRequest struct {
	Keywords []string `json:"keywords" validate:"required,min=1,dive,required"`
	Limit    int      `json:"limit" default:"10" validate:"gte=1,lte=50"`
}

type searchResponse struct {
	Keywords  []string           `json:"keywords"`
	Count     int                `json:"count"`
	Companies []model.Comparable `json:"companies"`
}

// Search finds listed companies whose names contain any of the keywords.
func (h *Handler) Search(c echo.Context) error {
	if h.source == nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("no market data source configured"))
	}

	req := &SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	companies, err := h.source.Search(c.Request().Context(), req.Keywords, req.Limit)
	if err != nil {
		h.log.Warn().Err(err).Strs("keywords", req.Keywords).Msg("company search failed")
		return xhttp.AppErrorResponse(c, xhttp.InternalError("company search failed").WithError(err))
	}

	return xhttp.SuccessResponse(c, searchResponse{
		Keywords:  req.Keywords,
		Count:     len(companies),
		Companies: companies,
	})
}
