// Package stress re-runs the DCF kernel under adverse parameter shocks
// and a Monte Carlo perturbation of the key inputs. Every test reports
// against the same unstressed base valuation computed once at Tester
// construction.
package stress

import (
	"fmt"
	"math"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/model"
)

// Default shock schedules, each applied independently.
var (
	DefaultRevenueShocks      = []float64{-0.3, -0.2, -0.1}
	DefaultMarginCompressions = []float64{0.05, 0.10, 0.15}
	DefaultWACCIncreases      = []float64{0.01, 0.02, 0.03}
	DefaultSlowdownFactors    = []float64{0.3, 0.5, 0.7}
)

// Extreme crash composition.
const (
	crashRevenueDecline    = -0.40
	crashMarginCompression = 0.10
	crashWACCIncrease      = 0.03
)

// Tester holds the target company and its unstressed base valuation. All
// shock methods are read-only on the company, so one Tester can serve
// concurrent callers.
type Tester struct {
	company *model.Company
	base    *model.ValuationResult
}

// NewTester computes the base DCF valuation and returns a tester bound to
// it. The error is the base valuation's own failure, surfaced here so the
// shock methods never run against a broken baseline.
func NewTester(c *model.Company) (*Tester, error) {
	base, err := dcf.Valuation(c, dcf.Assumptions{})
	if err != nil {
		return nil, err
	}
	return &Tester{company: c, base: base}, nil
}

// Base returns the unstressed valuation every shock is compared against.
func (t *Tester) Base() *model.ValuationResult { return t.base }

func (t *Tester) changePct(stressed float64) float64 {
	if t.base.Value <= 0 {
		return 0
	}
	return (stressed - t.base.Value) / t.base.Value
}

func (t *Tester) stressed(name, description string, a dcf.Assumptions, details map[string]any) (*model.StressTestResult, error) {
	res, err := dcf.Valuation(t.company, a)
	if err != nil {
		return nil, err
	}
	return &model.StressTestResult{
		TestName:            name,
		ScenarioDescription: description,
		BaseValue:           t.base.Value,
		StressedValue:       res.Value,
		ChangePct:           t.changePct(res.Value),
		Details:             details,
	}, nil
}

// RevenueShock scales the growth rate by (1 + shock) for each shock in
// the list, floored at zero, and re-runs the DCF. A shock of -0.3 models
// revenue growth falling 30% short of plan.
func (t *Tester) RevenueShock(shocks []float64) ([]model.StressTestResult, error) {
	if shocks == nil {
		shocks = DefaultRevenueShocks
	}

	results := make([]model.StressTestResult, 0, len(shocks))
	for _, shock := range shocks {
		growth := math.Max(0, t.company.GrowthRate*(1+shock))
		direction := "down"
		if shock >= 0 {
			direction = "up"
		}
		r, err := t.stressed(
			"revenue_shock",
			fmt.Sprintf("revenue %s %.0f%%", direction, math.Abs(shock)*100),
			dcf.Assumptions{GrowthRate: &growth},
			map[string]any{"shock": shock, "new_growth_rate": growth},
		)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}

// MarginCompression subtracts each compression level from the operating
// margin, floored at zero, and re-runs the DCF.
func (t *Tester) MarginCompression(levels []float64) ([]model.StressTestResult, error) {
	if levels == nil {
		levels = DefaultMarginCompressions
	}

	results := make([]model.StressTestResult, 0, len(levels))
	for _, compression := range levels {
		margin := math.Max(0, t.company.OperatingMargin-compression)
		r, err := t.stressed(
			"margin_compression",
			fmt.Sprintf("margin down %.0fpp (%.1f%% to %.1f%%)", compression*100, t.company.OperatingMargin*100, margin*100),
			dcf.Assumptions{OperatingMargin: &margin},
			map[string]any{"compression": compression, "base_margin": t.company.OperatingMargin, "new_margin": margin},
		)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}

// WACCShock adds each increase to the company's computed WACC and
// re-runs the DCF at the raised discount rate.
func (t *Tester) WACCShock(increases []float64) ([]model.StressTestResult, error) {
	if increases == nil {
		increases = DefaultWACCIncreases
	}

	baseWACC := dcf.CalculateWACC(t.company)
	results := make([]model.StressTestResult, 0, len(increases))
	for _, increase := range increases {
		wacc := baseWACC + increase
		r, err := t.stressed(
			"wacc_shock",
			fmt.Sprintf("wacc up %.1fpp (%.2f%% to %.2f%%)", increase*100, baseWACC*100, wacc*100),
			dcf.Assumptions{WACC: &wacc},
			map[string]any{"wacc_increase": increase, "base_wacc": baseWACC, "new_wacc": wacc},
		)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}

// GrowthSlowdown scales the growth rate down to each factor (0.5 halves
// it) and re-runs the DCF.
func (t *Tester) GrowthSlowdown(factors []float64) ([]model.StressTestResult, error) {
	if factors == nil {
		factors = DefaultSlowdownFactors
	}

	results := make([]model.StressTestResult, 0, len(factors))
	for _, factor := range factors {
		growth := t.company.GrowthRate * factor
		r, err := t.stressed(
			"growth_slowdown",
			fmt.Sprintf("growth at %.0f%% of base (%.1f%% to %.1f%%)", factor*100, t.company.GrowthRate*100, growth*100),
			dcf.Assumptions{GrowthRate: &growth},
			map[string]any{"slowdown_factor": factor, "base_growth": t.company.GrowthRate, "new_growth": growth},
		)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}

// ExtremeMarketCrash composes a -40% revenue shock, a 10pp margin
// compression and a +3pp WACC increase in a single re-evaluation. The
// kernel takes one overridden parameter set per call, so composition
// order is irrelevant.
func (t *Tester) ExtremeMarketCrash() (*model.StressTestResult, error) {
	growth := math.Max(0, t.company.GrowthRate*(1+crashRevenueDecline))
	margin := math.Max(0, t.company.OperatingMargin-crashMarginCompression)
	wacc := dcf.CalculateWACC(t.company) + crashWACCIncrease

	return t.stressed(
		"extreme_market_crash",
		fmt.Sprintf("revenue %.0f%%, margin -%.0fpp, wacc +%.0fpp",
			crashRevenueDecline*100, crashMarginCompression*100, crashWACCIncrease*100),
		dcf.Assumptions{GrowthRate: &growth, OperatingMargin: &margin, WACC: &wacc},
		map[string]any{
			"revenue_decline":    crashRevenueDecline,
			"margin_compression": crashMarginCompression,
			"wacc_increase":      crashWACCIncrease,
			"new_growth_rate":    growth,
			"new_margin":         margin,
			"new_wacc":           wacc,
		},
	)
}
