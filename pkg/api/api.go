// Package api wires the endpoint groups into one route set for the
// server.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/api/data"
	"privco_valuation/pkg/api/history"
	"privco_valuation/pkg/api/scenario"
	"privco_valuation/pkg/api/sensitivity"
	"privco_valuation/pkg/api/stress"
	"privco_valuation/pkg/api/valuation"
	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/marketdata"
	"privco_valuation/pkg/core/store"
	"privco_valuation/pkg/metrics"
)

// Routes aggregates every endpoint group. A nil repo disables history,
// a nil source disables the data lookups; everything else always works.
type Routes struct {
	Valuation   *valuation.Handler
	Scenario    *scenario.Handler
	Stress      *stress.Handler
	Sensitivity *sensitivity.Handler
	Data        *data.Handler
	History     *history.Handler
}

// NewRoutes builds the full route set around one engine instance.
func NewRoutes(eng *engine.Engine, source marketdata.Source, repo *store.HistoryRepo, rec *metrics.Recorder, log zerolog.Logger) *Routes {
	return &Routes{
		Valuation:   valuation.NewHandler(eng, rec, log),
		Scenario:    scenario.NewHandler(log),
		Stress:      stress.NewHandler(log),
		Sensitivity: sensitivity.NewHandler(log),
		Data:        data.NewHandler(source, log),
		History:     history.NewHandler(eng, repo, rec, log),
	}
}

// RegisterRoutes implements the server's Handler interface.
func (r *Routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", Health)

	r.Valuation.RegisterRoutes(e)
	r.Scenario.RegisterRoutes(e)
	r.Stress.RegisterRoutes(e)
	r.Sensitivity.RegisterRoutes(e)
	r.Data.RegisterRoutes(e)
	r.History.RegisterRoutes(e)
}

// Health reports process liveness.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
