// Package sensitivity sweeps the DCF kernel over one or two perturbed
// inputs and ranks parameters by how hard they move the valuation. Sweep
// points that fail to evaluate (a WACC below the terminal growth floor,
// for instance) are recorded as NaN and excluded from the summary
// statistics rather than failing the sweep.
package sensitivity

import (
	"math"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/model"
)

// DefaultSteps is the number of sweep points per dimension.
const DefaultSteps = 10

// Range bounds one parameter sweep.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Analyzer binds a company to its base DCF valuation, the denominator of
// every impact figure.
type Analyzer struct {
	company *model.Company
	base    *model.ValuationResult
}

// NewAnalyzer computes the base valuation once; all sweeps reuse it.
func NewAnalyzer(c *model.Company) (*Analyzer, error) {
	base, err := dcf.Valuation(c, dcf.Assumptions{})
	if err != nil {
		return nil, err
	}
	return &Analyzer{company: c, base: base}, nil
}

// Base returns the unperturbed valuation.
func (a *Analyzer) Base() *model.ValuationResult { return a.base }

// baseParamValue resolves the unperturbed value of a sweep parameter.
func (a *Analyzer) baseParamValue(p dcf.Parameter) (float64, error) {
	switch p {
	case dcf.ParamGrowthRate:
		return a.company.GrowthRate, nil
	case dcf.ParamOperatingMargin:
		return a.company.OperatingMargin, nil
	case dcf.ParamWACC:
		return dcf.CalculateWACC(a.company), nil
	case dcf.ParamTerminalGrowth:
		return a.company.TerminalGrowthRate, nil
	default:
		return 0, &model.ValidationError{Field: "parameter", Message: "unknown sensitivity parameter " + string(p)}
	}
}

// defaultRange is the conventional sweep window per parameter. Growth
// sweeps symmetrically around the base (zero to double); the others use
// fixed market-plausible windows.
func (a *Analyzer) defaultRange(p dcf.Parameter) Range {
	switch p {
	case dcf.ParamGrowthRate:
		return Range{Min: 0, Max: a.company.GrowthRate * 2}
	case dcf.ParamOperatingMargin:
		return Range{Min: 0.05, Max: 0.5}
	case dcf.ParamWACC:
		return Range{Min: 0.04, Max: 0.15}
	default:
		return Range{Min: 0, Max: 0.05}
	}
}

// linspace returns n evenly spaced points over [lo, hi] inclusive.
func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// OneWayResult is a single-parameter sweep. Valuations is parallel to
// ParamValues, NaN at failed points. ImpactPercentage is
// ValuationRange over the base valuation.
type OneWayResult struct {
	Parameter        dcf.Parameter `json:"parameter"`
	BaseParamValue   float64       `json:"base_value"`
	ParamValues      []float64     `json:"param_values"`
	Valuations       []float64     `json:"valuations"`
	MinValuation     float64       `json:"min_valuation"`
	MaxValuation     float64       `json:"max_valuation"`
	ValuationRange   float64       `json:"valuation_range"`
	ImpactPercentage float64       `json:"impact_percentage"`
	Elasticity       *float64      `json:"elasticity,omitempty"`
}

// OneWay sweeps one parameter across r (or its default window when nil)
// in steps points and evaluates the DCF at each.
func (a *Analyzer) OneWay(p dcf.Parameter, r *Range, steps int) (*OneWayResult, error) {
	baseVal, err := a.baseParamValue(p)
	if err != nil {
		return nil, err
	}
	if steps <= 0 {
		steps = DefaultSteps
	}
	window := a.defaultRange(p)
	if r != nil {
		window = *r
	}

	points := linspace(window.Min, window.Max, steps)
	valuations := make([]float64, len(points))
	for i, v := range points {
		res, err := dcf.ValuationWithParam(a.company, p, v)
		if err != nil {
			valuations[i] = math.NaN()
			continue
		}
		valuations[i] = res.Value
	}

	out := &OneWayResult{
		Parameter:      p,
		BaseParamValue: baseVal,
		ParamValues:    points,
		Valuations:     valuations,
	}

	minV, maxV := math.Inf(1), math.Inf(-1)
	firstValid, lastValid := -1, -1
	for i, v := range valuations {
		if math.IsNaN(v) {
			continue
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		if firstValid < 0 {
			firstValid = i
		}
		lastValid = i
	}
	if firstValid < 0 {
		return nil, &model.DomainError{Param: string(p), Message: "no sweep point produced a valid valuation"}
	}

	out.MinValuation = minV
	out.MaxValuation = maxV
	out.ValuationRange = maxV - minV
	if a.base.Value > 0 {
		out.ImpactPercentage = out.ValuationRange / a.base.Value
	}

	if firstValid != lastValid && baseVal != 0 {
		pctVal := (valuations[lastValid] - valuations[firstValid]) / a.base.Value
		pctParam := (points[lastValid] - points[firstValid]) / baseVal
		if pctParam != 0 {
			e := pctVal / pctParam
			out.Elasticity = &e
		}
	}
	return out, nil
}
