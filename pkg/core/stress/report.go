package stress

import "privco_valuation/pkg/core/model"

// Report aggregates every discrete shock family, the extreme crash
// composition and a Monte Carlo run against a single base valuation.
// MaxDownside is the worst (most negative) ChangePct across all discrete
// tests, or 0 when none is negative.
type Report struct {
	Company           string                   `json:"company"`
	BaseValuation     float64                  `json:"base_valuation"`
	RevenueShock      []model.StressTestResult `json:"revenue_shock"`
	MarginCompression []model.StressTestResult `json:"margin_compression"`
	WACCShock         []model.StressTestResult `json:"wacc_shock"`
	GrowthSlowdown    []model.StressTestResult `json:"growth_slowdown"`
	ExtremeCrash      *model.StressTestResult  `json:"extreme_crash"`
	MonteCarlo        *model.MonteCarloResult  `json:"monte_carlo"`
	MaxDownside       float64                  `json:"max_downside"`
}

// GenerateReport runs the full stress battery with default schedules. The
// Monte Carlo leg uses the supplied config so callers can pin a seed or
// raise the iteration count.
func (t *Tester) GenerateReport(mc MonteCarloConfig) (*Report, error) {
	report := &Report{
		Company:       t.company.Name,
		BaseValuation: t.base.Value,
	}

	var err error
	if report.RevenueShock, err = t.RevenueShock(nil); err != nil {
		return nil, err
	}
	if report.MarginCompression, err = t.MarginCompression(nil); err != nil {
		return nil, err
	}
	if report.WACCShock, err = t.WACCShock(nil); err != nil {
		return nil, err
	}
	if report.GrowthSlowdown, err = t.GrowthSlowdown(nil); err != nil {
		return nil, err
	}
	if report.ExtremeCrash, err = t.ExtremeMarketCrash(); err != nil {
		return nil, err
	}
	if report.MonteCarlo, err = t.MonteCarlo(mc); err != nil {
		return nil, err
	}

	for _, batch := range [][]model.StressTestResult{
		report.RevenueShock,
		report.MarginCompression,
		report.WACCShock,
		report.GrowthSlowdown,
		{*report.ExtremeCrash},
	} {
		for _, r := range batch {
			if r.ChangePct < report.MaxDownside {
				report.MaxDownside = r.ChangePct
			}
		}
	}
	return report, nil
}
