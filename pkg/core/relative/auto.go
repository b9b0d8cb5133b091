package relative

import "privco_valuation/pkg/core/model"

// Weights blend the per-method values into the composite entry.
type Weights struct {
	PE float64
	PS float64
	PB float64
	EV float64
}

// DefaultWeights leans on the income-statement multiples.
func DefaultWeights() Weights {
	return Weights{PE: 0.3, PS: 0.3, PB: 0.2, EV: 0.2}
}

func (w Weights) of(method string) float64 {
	switch method {
	case MethodPE:
		return w.PE
	case MethodPS:
		return w.PS
	case MethodPB:
		return w.PB
	case MethodEV:
		return w.EV
	}
	return 0
}

// Multiples extracts the valid (non-nil, positive) comparable multiples
// per method.
func Multiples(comparables []model.Comparable) map[string][]float64 {
	out := map[string][]float64{}
	valid := func(p *float64) bool { return p != nil && *p > 0 }
	for _, comp := range comparables {
		if valid(comp.PERatio) {
			out[MethodPE] = append(out[MethodPE], *comp.PERatio)
		}
		if valid(comp.PSRatio) {
			out[MethodPS] = append(out[MethodPS], *comp.PSRatio)
		}
		if valid(comp.PBRatio) {
			out[MethodPB] = append(out[MethodPB], *comp.PBRatio)
		}
		if valid(comp.EVEBITDA) {
			out[MethodEV] = append(out[MethodEV], *comp.EVEBITDA)
		}
	}
	return out
}

// AutoComparableAnalysis runs every requested multiple method against the
// comparable set and reports a low/high range per method from the
// comparable multiples' min/max, exposing dispersion rather than only the
// median. Methods with no usable data are skipped; an empty mapping means
// relative valuation is unavailable for this company, which is not an
// error condition.
//
// When two or more methods succeed, a weighted composite entry is added
// under the "composite" key with the widest combined range.
func AutoComparableAnalysis(c *model.Company, comparables []model.Comparable, methods []string, weights Weights) map[string]*model.ValuationResult {
	if len(methods) == 0 {
		methods = AllMethods
	}
	multiples := Multiples(comparables)
	opt := DefaultOptions()
	results := map[string]*model.ValuationResult{}

	for _, method := range methods {
		vals := multiples[method]
		if len(vals) == 0 {
			continue
		}
		var (
			res *model.ValuationResult
			err error
		)
		switch method {
		case MethodPE:
			res, err = PEValuation(c, vals, opt)
		case MethodPS:
			res, err = PSValuation(c, vals, opt)
		case MethodPB:
			res, err = PBValuation(c, vals, opt)
		case MethodEV:
			res, err = EVEBITDAValuation(c, vals, opt)
		default:
			continue
		}
		if err != nil {
			// Skip, not fail: the base metric disqualified the method.
			continue
		}
		results[method] = res
	}

	if len(results) >= 2 {
		if composite := compositeResult(results, weights); composite != nil {
			results[MethodComposite] = composite
		}
	}
	return results
}

func compositeResult(results map[string]*model.ValuationResult, weights Weights) *model.ValuationResult {
	var weighted, totalWeight float64
	var lows, highs []float64
	used := make([]string, 0, len(results))

	for _, method := range AllMethods {
		res, ok := results[method]
		if !ok {
			continue
		}
		w := weights.of(method)
		weighted += res.Value * w
		totalWeight += w
		used = append(used, method)
		if res.ValueLow != nil {
			lows = append(lows, *res.ValueLow)
		}
		if res.ValueHigh != nil {
			highs = append(highs, *res.ValueHigh)
		}
	}
	if totalWeight <= 0 {
		return nil
	}

	res := model.NewResult(MethodComposite, weighted/totalWeight)
	if len(lows) > 0 {
		lo, _ := minMax(lows)
		res.ValueLow = model.Float(lo)
	}
	if len(highs) > 0 {
		_, hi := minMax(highs)
		res.ValueHigh = model.Float(hi)
	}
	res.Details = map[string]any{
		"methods_used": used,
		"weights": map[string]float64{
			MethodPE: weights.PE, MethodPS: weights.PS,
			MethodPB: weights.PB, MethodEV: weights.EV,
		},
	}
	return res
}
