// Package multiproduct values a company as the sum of independent DCFs
// over its business lines. Each segment forecasts its own revenue path
// (per-year growth schedule, own margin and capital ratios) while the
// discount rate stays company-wide; segment enterprise values add up and
// the debt bridge is applied once at the company level.
package multiproduct

import (
	"fmt"
	"math"
	"sort"
	"time"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/model"
)

// Tolerance for the revenue-weight sum check.
const weightTolerance = 0.01

// Config carries the company-level inputs shared by every segment.
// Zero-valued rate fields fall back to the conventional defaults used by
// the single-company model.
type Config struct {
	Beta              float64 `json:"beta"`
	TaxRate           float64 `json:"tax_rate"`
	RiskFreeRate      float64 `json:"risk_free_rate"`
	MarketRiskPremium float64 `json:"market_risk_premium"`
	CostOfDebt        float64 `json:"cost_of_debt"`
	TargetDebtRatio   float64 `json:"target_debt_ratio"`

	TotalDebt          float64 `json:"total_debt"`
	CashAndEquivalents float64 `json:"cash_and_equivalents"`

	ProjectionYears int                `json:"projection_years"`
	TerminalMethod  dcf.TerminalMethod `json:"terminal_method"`
}

func (cfg Config) withDefaults() Config {
	if cfg.Beta == 0 {
		cfg.Beta = 1.0
	}
	if cfg.TaxRate == 0 {
		cfg.TaxRate = 0.25
	}
	if cfg.RiskFreeRate == 0 {
		cfg.RiskFreeRate = 0.03
	}
	if cfg.MarketRiskPremium == 0 {
		cfg.MarketRiskPremium = 0.07
	}
	if cfg.CostOfDebt == 0 {
		cfg.CostOfDebt = 0.05
	}
	if cfg.TargetDebtRatio == 0 {
		cfg.TargetDebtRatio = 0.3
	}
	if cfg.ProjectionYears <= 0 {
		cfg.ProjectionYears = dcf.DefaultProjectionYears
	}
	if cfg.TerminalMethod == "" {
		cfg.TerminalMethod = dcf.TerminalPerpetuity
	}
	return cfg
}

// wacc derives the company discount rate through the same CAPM blend the
// single-company kernel uses.
func (cfg Config) wacc() float64 {
	return dcf.CalculateWACC(&model.Company{
		Beta:              cfg.Beta,
		RiskFreeRate:      cfg.RiskFreeRate,
		MarketRiskPremium: cfg.MarketRiskPremium,
		CostOfDebt:        cfg.CostOfDebt,
		TargetDebtRatio:   cfg.TargetDebtRatio,
		TaxRate:           cfg.TaxRate,
	})
}

// ForecastSegment projects one segment's free cash flows. Year i uses the
// i-th entry of the segment's growth schedule; years past the schedule
// grow at the segment's terminal rate.
func ForecastSegment(p *model.ProductSegment, years int, taxRate float64) []model.ProductForecastYear {
	out := make([]model.ProductForecastYear, 0, years)
	revenue := p.CurrentRevenue

	for year := 1; year <= years; year++ {
		growth := p.TerminalGrowthRate
		if year <= len(p.GrowthRateYears) {
			growth = p.GrowthRateYears[year-1]
		}
		revenue *= 1 + growth

		nopat := revenue * p.OperatingMargin * (1 - taxRate)
		depreciation := revenue * p.DepreciationRatio
		capex := revenue * p.CapexRatio
		wcChange := revenue * p.WCChangeRatio

		out = append(out, model.ProductForecastYear{
			Year:       year,
			Revenue:    revenue,
			FCF:        nopat + depreciation - capex - wcChange,
			GrowthRate: growth,
		})
	}
	return out
}

// ValueSegment runs a standalone DCF for one segment at the company WACC.
func ValueSegment(p *model.ProductSegment, wacc float64, cfg Config) (*model.ProductValuationResult, error) {
	cfg = cfg.withDefaults()
	forecasts := ForecastSegment(p, cfg.ProjectionYears, cfg.TaxRate)

	var pvForecasts float64
	for _, f := range forecasts {
		pvForecasts += dcf.PresentValue(f.FCF, wacc, f.Year)
	}

	final := forecasts[len(forecasts)-1]
	terminalValue, err := dcf.CalculateTerminalValue(final.FCF, wacc, p.TerminalGrowthRate, cfg.TerminalMethod, dcf.DefaultExitMultiple)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", p.Name, err)
	}
	pvTerminal := dcf.PresentValue(terminalValue, wacc, cfg.ProjectionYears)

	cagr := 0.0
	if p.CurrentRevenue > 0 {
		cagr = math.Pow(final.Revenue/p.CurrentRevenue, 1/float64(cfg.ProjectionYears)) - 1
	}

	return &model.ProductValuationResult{
		ProductName:     p.Name,
		RevenueWeight:   p.RevenueWeight,
		PVForecasts:     pvForecasts,
		PVTerminal:      pvTerminal,
		EnterpriseValue: pvForecasts + pvTerminal,
		FCFForecasts:    forecasts,
		CurrentRevenue:  p.CurrentRevenue,
		TerminalRevenue: final.Revenue,
		RevenueCAGR:     cagr,
	}, nil
}

// Consolidate sums the per-segment forecasts year by year into the
// company-level cash flow view.
func Consolidate(results []model.ProductValuationResult, years int) []model.ProductForecastYear {
	out := make([]model.ProductForecastYear, years)
	for i := range out {
		out[i].Year = i + 1
	}
	for _, r := range results {
		for i, f := range r.FCFForecasts {
			if i >= years {
				break
			}
			out[i].Revenue += f.Revenue
			out[i].FCF += f.FCF
		}
	}
	return out
}

// Contribution is one segment's share of the total enterprise value.
type Contribution struct {
	Product      string  `json:"product"`
	Contribution float64 `json:"contribution"`
}

// Valuation runs the full multi-segment DCF: weight check, shared WACC,
// per-segment valuation, consolidation and the company-level debt bridge.
func Valuation(segments []model.ProductSegment, cfg Config) (*model.MultiProductValuationResult, error) {
	if len(segments) == 0 {
		return nil, &model.ValidationError{Field: "products", Message: "at least one product segment required"}
	}

	var totalWeight float64
	for _, p := range segments {
		totalWeight += p.RevenueWeight
	}
	if math.Abs(totalWeight-1.0) > weightTolerance {
		return nil, &model.ValidationError{
			Field:   "revenue_weight",
			Message: fmt.Sprintf("segment weights must sum to 1.0, got %.2f", totalWeight),
		}
	}

	cfg = cfg.withDefaults()
	wacc := cfg.wacc()

	results := make([]model.ProductValuationResult, 0, len(segments))
	breakdown := map[string]float64{}
	revenueByProduct := map[string]float64{}
	var totalEV, totalRevenue float64

	for i := range segments {
		p := &segments[i]
		res, err := ValueSegment(p, wacc, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
		breakdown[p.Name] = res.EnterpriseValue
		revenueByProduct[p.Name] = p.CurrentRevenue
		totalEV += res.EnterpriseValue
		totalRevenue += p.CurrentRevenue
	}

	return &model.MultiProductValuationResult{
		TotalEnterpriseValue: totalEV,
		TotalEquityValue:     totalEV - (cfg.TotalDebt - cfg.CashAndEquivalents),
		WACC:                 wacc,
		ProductResults:       results,
		ValueBreakdown:       breakdown,
		TotalRevenue:         totalRevenue,
		RevenueByProduct:     revenueByProduct,
		ConsolidatedFCF:      Consolidate(results, cfg.ProjectionYears),
		Timestamp:            time.Now().UTC(),
	}, nil
}

// Contributions ranks segments by their share of enterprise value,
// largest first.
func Contributions(r *model.MultiProductValuationResult) []Contribution {
	out := make([]Contribution, 0, len(r.ProductResults))
	for _, pr := range r.ProductResults {
		var share float64
		if r.TotalEnterpriseValue > 0 {
			share = pr.EnterpriseValue / r.TotalEnterpriseValue
		}
		out = append(out, Contribution{Product: pr.ProductName, Contribution: share})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Contribution > out[j].Contribution
	})
	return out
}
