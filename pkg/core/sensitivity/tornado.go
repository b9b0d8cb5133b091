package sensitivity

import (
	"math"
	"sort"

	"privco_valuation/pkg/core/dcf"
)

// DefaultTornadoChanges are the symmetric perturbations used when the
// caller supplies none, in absolute parameter units.
var DefaultTornadoChanges = map[dcf.Parameter]float64{
	dcf.ParamGrowthRate:      0.10,
	dcf.ParamOperatingMargin: 0.05,
	dcf.ParamWACC:            0.01,
	dcf.ParamTerminalGrowth:  0.005,
}

// Tornado-down clamps keep the perturbed parameter evaluable.
const minTornadoWACC = 0.01

// TornadoEntry is one bar of the chart: the valuation at base ± change
// and the larger of the two absolute impacts.
type TornadoEntry struct {
	Parameter  dcf.Parameter `json:"parameter"`
	Change     float64       `json:"change"`
	ValueUp    float64       `json:"value_up"`
	ValueDown  float64       `json:"value_down"`
	ImpactUp   float64       `json:"impact_up"`
	ImpactDown float64       `json:"impact_down"`
	MaxImpact  float64       `json:"max_impact"`
	ImpactPct  float64       `json:"impact_pct"`
}

// Tornado perturbs each standard parameter by ± its change and ranks the
// entries by descending MaxImpact. Ties keep parameter declaration order.
// A direction that fails to evaluate falls back to the base valuation,
// contributing zero impact for that side.
func (a *Analyzer) Tornado(changes map[dcf.Parameter]float64) []TornadoEntry {
	if changes == nil {
		changes = DefaultTornadoChanges
	}

	entries := make([]TornadoEntry, 0, len(dcf.StandardParameters))
	for _, p := range dcf.StandardParameters {
		change, ok := changes[p]
		if !ok {
			continue
		}
		base, err := a.baseParamValue(p)
		if err != nil {
			continue
		}

		up := a.valueAt(p, base+change)
		downParam := math.Max(0, base-change)
		if p == dcf.ParamWACC {
			downParam = math.Max(minTornadoWACC, base-change)
		}
		down := a.valueAt(p, downParam)

		impactUp := math.Abs(up - a.base.Value)
		impactDown := math.Abs(down - a.base.Value)
		maxImpact := math.Max(impactUp, impactDown)

		e := TornadoEntry{
			Parameter:  p,
			Change:     change,
			ValueUp:    up,
			ValueDown:  down,
			ImpactUp:   impactUp,
			ImpactDown: impactDown,
			MaxImpact:  maxImpact,
		}
		if a.base.Value > 0 {
			e.ImpactPct = maxImpact / a.base.Value
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].MaxImpact > entries[j].MaxImpact
	})
	return entries
}

func (a *Analyzer) valueAt(p dcf.Parameter, v float64) float64 {
	res, err := dcf.ValuationWithParam(a.company, p, v)
	if err != nil {
		return a.base.Value
	}
	return res.Value
}

// ComprehensiveResult bundles every one-way sweep with the tornado
// ranking for dashboard consumption.
type ComprehensiveResult struct {
	BaseValuation float64                         `json:"base_valuation"`
	Parameters    map[dcf.Parameter]*OneWayResult `json:"parameters"`
	Tornado       []TornadoEntry                  `json:"tornado_chart"`
}

// Comprehensive runs a default one-way sweep for each standard parameter
// plus the tornado ranking. A parameter whose sweep fails entirely is
// omitted from Parameters rather than failing the analysis.
func (a *Analyzer) Comprehensive() *ComprehensiveResult {
	out := &ComprehensiveResult{
		BaseValuation: a.base.Value,
		Parameters:    map[dcf.Parameter]*OneWayResult{},
	}
	for _, p := range dcf.StandardParameters {
		res, err := a.OneWay(p, nil, DefaultSteps)
		if err != nil {
			continue
		}
		out.Parameters[p] = res
	}
	out.Tornado = a.Tornado(nil)
	return out
}
