// Package dcf implements the discounted-cash-flow kernel: WACC via CAPM,
// free-cash-flow forecasting, terminal value, and the single evaluation
// entry point every randomized and combinatorial analysis calls.
//
// Every function here is a pure function of its inputs. Degenerate models
// (a perpetuity whose growth meets or exceeds the discount rate) are
// rejected with a *model.DomainError rather than evaluated to Inf.
package dcf

import (
	"privco_valuation/pkg/core/model"
)

// MinWACCSpread is the minimum margin by which WACC must exceed the
// terminal growth rate before the Gordon perpetuity is considered
// evaluable. 10 basis points.
const MinWACCSpread = 0.001

// CostOfEquityCAPM calculates the required return on equity.
//
// FORMULA: r_e = r_f + β × MRP
func CostOfEquityCAPM(riskFreeRate, beta, marketRiskPremium float64) float64 {
	return riskFreeRate + beta*marketRiskPremium
}

// CalculateWACC computes the weighted average cost of capital from the
// company's cost-of-capital inputs.
//
// FORMULA: WACC = r_e × (1 - D/V) + r_d × (1 - T) × (D/V)
//
// Where:
//   - r_e = cost of equity from CAPM
//   - r_d = pre-tax cost of debt
//   - T   = corporate tax rate
//   - D/V = target debt ratio
func CalculateWACC(c *model.Company) float64 {
	costOfEquity := CostOfEquityCAPM(c.RiskFreeRate, c.Beta, c.MarketRiskPremium)
	afterTaxCostOfDebt := c.CostOfDebt * (1 - c.TaxRate)
	return costOfEquity*(1-c.TargetDebtRatio) + afterTaxCostOfDebt*c.TargetDebtRatio
}

// GuardPerpetuity rejects discount/growth pairs for which the Gordon
// perpetuity diverges. Returns a domain error naming the offending
// parameter; callers must not divide before checking.
func GuardPerpetuity(wacc, terminalGrowth float64) error {
	if wacc-terminalGrowth < MinWACCSpread {
		return &model.DomainError{
			Param: "wacc",
			Message: "WACC must exceed terminal growth rate by at least 0.1%; " +
				"perpetuity value diverges otherwise",
		}
	}
	return nil
}
