// Package relative implements multiple-based valuation from comparable
// companies: P/E, P/S, P/B and EV/EBITDA, individually or as an automatic
// multi-method analysis.
//
// The skip-not-fail policy: a method silently drops out when the company's
// base metric is non-positive or when no comparable supplies that multiple.
// An analysis with nothing usable returns an empty mapping, never an error.
package relative

import (
	"sort"

	"privco_valuation/pkg/core/model"
)

// Method keys in the analysis result mapping.
const (
	MethodPE        = "PE"
	MethodPS        = "PS"
	MethodPB        = "PB"
	MethodEV        = "EV"
	MethodComposite = "composite"
)

// AllMethods lists the four multiple methods in canonical order.
var AllMethods = []string{MethodPE, MethodPS, MethodPB, MethodEV}

// Options adjusts how a single-method valuation is computed.
type Options struct {
	// UseForwardMetrics grows the company metric one year at the company's
	// growth rate before applying the multiple (forward P/E, forward P/S).
	UseForwardMetrics bool
	// IlliquidityDiscount shaves the private-company value, e.g. 0.2 for
	// a 20% marketability discount.
	IlliquidityDiscount float64
	// ControlPremium adds a premium for a controlling stake.
	ControlPremium float64
}

// DefaultOptions matches the conventional setup: forward metrics, no
// adjustment.
func DefaultOptions() Options {
	return Options{UseForwardMetrics: true}
}

func (o Options) adjustment() float64 {
	return 1 - o.IlliquidityDiscount + o.ControlPremium
}

// Median returns the median of vals; for an even count, the average of the
// two middle values. vals is left unmodified.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// multipleValuation is the shared shape of the three equity-multiple
// methods: value = metric × aggregate multiple, range from min/max.
func multipleValuation(method string, metric float64, multiples []float64, opt Options) *model.ValuationResult {
	agg := Median(multiples)
	lo, hi := minMax(multiples)
	adj := opt.adjustment()

	res := model.NewResult(method, metric*agg*adj)
	res.ValueLow = model.Float(metric * lo * adj)
	res.ValueHigh = model.Float(metric * hi * adj)
	res.Details = map[string]any{
		"multiple_median": agg,
		"multiple_min":    lo,
		"multiple_max":    hi,
		"metric_used":     metric,
		"is_forward":      opt.UseForwardMetrics,
	}
	res.Assumptions = map[string]any{
		"comparable_count":     len(multiples),
		"illiquidity_discount": opt.IlliquidityDiscount,
		"control_premium":      opt.ControlPremium,
	}
	return res
}

// PEValuation values equity as earnings × median comparable P/E.
// Requires positive net income and at least one comparable P/E.
func PEValuation(c *model.Company, peRatios []float64, opt Options) (*model.ValuationResult, error) {
	if c.NetIncome <= 0 {
		return nil, &model.DomainError{Param: "net_income", Message: "P/E requires positive net income"}
	}
	if len(peRatios) == 0 {
		return nil, &model.DomainError{Param: "pe_ratio", Message: "no comparable P/E multiples"}
	}
	earnings := c.NetIncome
	if opt.UseForwardMetrics {
		earnings *= 1 + c.GrowthRate
	}
	return multipleValuation(MethodPE, earnings, peRatios, opt), nil
}

// PSValuation values equity as revenue × median comparable P/S.
func PSValuation(c *model.Company, psRatios []float64, opt Options) (*model.ValuationResult, error) {
	if c.Revenue <= 0 {
		return nil, &model.DomainError{Param: "revenue", Message: "P/S requires positive revenue"}
	}
	if len(psRatios) == 0 {
		return nil, &model.DomainError{Param: "ps_ratio", Message: "no comparable P/S multiples"}
	}
	revenue := c.Revenue
	if opt.UseForwardMetrics {
		revenue *= 1 + c.GrowthRate
	}
	return multipleValuation(MethodPS, revenue, psRatios, opt), nil
}

// PBValuation values equity as net assets × median comparable P/B.
// Book value is not grown forward.
func PBValuation(c *model.Company, pbRatios []float64, opt Options) (*model.ValuationResult, error) {
	if c.NetAssets <= 0 {
		return nil, &model.DomainError{Param: "net_assets", Message: "P/B requires positive net assets"}
	}
	if len(pbRatios) == 0 {
		return nil, &model.DomainError{Param: "pb_ratio", Message: "no comparable P/B multiples"}
	}
	opt.UseForwardMetrics = false
	return multipleValuation(MethodPB, c.NetAssets, pbRatios, opt), nil
}

// EVEBITDAValuation values the enterprise as EBITDA × median comparable
// EV/EBITDA, then bridges to equity by subtracting net debt.
func EVEBITDAValuation(c *model.Company, evMultiples []float64, opt Options) (*model.ValuationResult, error) {
	if c.EBITDA <= 0 {
		return nil, &model.DomainError{Param: "ebitda", Message: "EV/EBITDA requires positive EBITDA"}
	}
	if len(evMultiples) == 0 {
		return nil, &model.DomainError{Param: "ev_ebitda", Message: "no comparable EV/EBITDA multiples"}
	}

	agg := Median(evMultiples)
	lo, hi := minMax(evMultiples)
	adj := opt.adjustment()
	netDebt := c.NetDebt()

	enterpriseValue := c.EBITDA * agg * adj
	res := model.NewResult(MethodEV, enterpriseValue-netDebt)
	res.ValueLow = model.Float(c.EBITDA*lo*adj - netDebt)
	res.ValueHigh = model.Float(c.EBITDA*hi*adj - netDebt)
	res.Details = map[string]any{
		"multiple_median":  agg,
		"multiple_min":     lo,
		"multiple_max":     hi,
		"ebitda":           c.EBITDA,
		"enterprise_value": enterpriseValue,
		"net_debt":         netDebt,
	}
	res.Assumptions = map[string]any{
		"comparable_count":     len(evMultiples),
		"illiquidity_discount": opt.IlliquidityDiscount,
		"control_premium":      opt.ControlPremium,
	}
	return res, nil
}
