package dcf

import (
	"math"

	"privco_valuation/pkg/core/model"
)

// MethodDCF is the Method label carried by DCF valuation results.
const MethodDCF = "DCF"

// CalculateTerminalValue capitalizes value beyond the forecast horizon,
// evaluated as of the end of the final forecast year.
//
// FORMULA (perpetuity): TV = FCF_N × (1 + g) / (WACC - g)
// FORMULA (exit multiple): TV = FCF_N × multiple
func CalculateTerminalValue(finalFCF, wacc, terminalGrowth float64, method TerminalMethod, exitMultiple float64) (float64, error) {
	switch method {
	case TerminalExitMultiple:
		return finalFCF * exitMultiple, nil
	default:
		if err := GuardPerpetuity(wacc, terminalGrowth); err != nil {
			return 0, err
		}
		return finalFCF * (1 + terminalGrowth) / (wacc - terminalGrowth), nil
	}
}

// PresentValue discounts a single cash flow t periods out.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, rate float64, periods int) float64 {
	return cashFlow / math.Pow(1+rate, float64(periods))
}

// Valuation runs the full DCF: forecast, discount, terminal value,
// enterprise-to-equity bridge.
//
//	enterprise value = Σ PV(FCF_t) + PV(TV)
//	equity value     = enterprise value - total debt + cash
//
// The details map carries wacc, pv_forecasts, pv_terminal, terminal_value,
// enterprise_value, net_debt and the per-year forecasts. Invariant:
// pv_forecasts + pv_terminal equals the enterprise-value component within
// floating tolerance.
func Valuation(c *model.Company, a Assumptions) (*model.ValuationResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	wacc := orDefault(a.WACC, CalculateWACC(c))
	terminalGrowth := orDefault(a.TerminalGrowthRate, c.TerminalGrowthRate)

	method := a.terminalMethod()
	if method == TerminalPerpetuity {
		if err := GuardPerpetuity(wacc, terminalGrowth); err != nil {
			return nil, err
		}
	}

	forecasts := ForecastFreeCashFlows(c, a)

	var pvForecasts float64
	for _, f := range forecasts {
		pvForecasts += PresentValue(f.FCF, wacc, f.Year)
	}

	finalFCF := forecasts[len(forecasts)-1].FCF
	terminalValue, err := CalculateTerminalValue(finalFCF, wacc, terminalGrowth, method, a.exitMultiple())
	if err != nil {
		return nil, err
	}
	pvTerminal := PresentValue(terminalValue, wacc, len(forecasts))

	enterpriseValue := pvForecasts + pvTerminal
	equityValue := enterpriseValue - c.TotalDebt + c.CashAndEquivalents

	res := model.NewResult(MethodDCF, equityValue)
	res.Details = map[string]any{
		"wacc":                 wacc,
		"projection_years":     len(forecasts),
		"terminal_growth_rate": terminalGrowth,
		"terminal_method":      string(method),
		"pv_forecasts":         pvForecasts,
		"pv_terminal":          pvTerminal,
		"terminal_value":       terminalValue,
		"enterprise_value":     enterpriseValue,
		"net_debt":             c.NetDebt(),
		"fcf_forecasts":        forecasts,
	}
	res.Assumptions = a.Map()
	return res, nil
}

// ValuationWithParam re-runs the DCF with exactly one named input
// perturbed; the sensitivity sweeps are built on this rather than
// duplicating override plumbing.
func ValuationWithParam(c *model.Company, p Parameter, value float64) (*model.ValuationResult, error) {
	switch p {
	case ParamGrowthRate, ParamOperatingMargin, ParamWACC, ParamTerminalGrowth:
		return Valuation(c, Assumptions{}.WithParam(p, value))
	default:
		return nil, &model.ValidationError{
			Field:   "parameter",
			Message: "unknown DCF parameter " + string(p),
		}
	}
}
