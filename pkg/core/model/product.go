package model

import "time"

// ProductSegment is one business line of a multi-product company. Growth
// can differ per forecast year; margin and capital-efficiency ratios are
// segment-specific while the discount rate stays company-wide.
type ProductSegment struct {
	Name          string  `json:"name" yaml:"name"`
	Description   string  `json:"description,omitempty" yaml:"description,omitempty"`
	CurrentRevenue float64 `json:"current_revenue" yaml:"current_revenue"`
	RevenueWeight  float64 `json:"revenue_weight" yaml:"revenue_weight"`

	GrowthRateYears    []float64 `json:"growth_rate_years" yaml:"growth_rate_years"`
	TerminalGrowthRate float64   `json:"terminal_growth_rate" yaml:"terminal_growth_rate" default:"0.025"`

	GrossMargin     float64 `json:"gross_margin" yaml:"gross_margin" default:"0.5"`
	OperatingMargin float64 `json:"operating_margin" yaml:"operating_margin" default:"0.2"`

	CapexRatio        float64 `json:"capex_ratio" yaml:"capex_ratio" default:"0.05"`
	WCChangeRatio     float64 `json:"wc_change_ratio" yaml:"wc_change_ratio" default:"0.02"`
	DepreciationRatio float64 `json:"depreciation_ratio" yaml:"depreciation_ratio" default:"0.03"`
}

// ProductValuationResult is the standalone DCF outcome for one segment.
type ProductValuationResult struct {
	ProductName     string  `json:"product_name"`
	RevenueWeight   float64 `json:"revenue_weight"`
	PVForecasts     float64 `json:"pv_forecasts"`
	PVTerminal      float64 `json:"pv_terminal"`
	EnterpriseValue float64 `json:"enterprise_value"`

	FCFForecasts []ProductForecastYear `json:"fcf_forecasts"`

	CurrentRevenue  float64 `json:"current_revenue"`
	TerminalRevenue float64 `json:"terminal_revenue"`
	RevenueCAGR     float64 `json:"revenue_cagr"`
}

// ProductForecastYear is one projected year of a segment's cash flows.
type ProductForecastYear struct {
	Year       int     `json:"year"`
	Revenue    float64 `json:"revenue"`
	FCF        float64 `json:"fcf"`
	GrowthRate float64 `json:"growth_rate"`
}

// MultiProductValuationResult consolidates per-segment DCFs into a
// company-level enterprise and equity value.
type MultiProductValuationResult struct {
	TotalEnterpriseValue float64 `json:"total_enterprise_value"`
	TotalEquityValue     float64 `json:"total_equity_value"`
	WACC                 float64 `json:"wacc"`

	ProductResults []ProductValuationResult `json:"product_results"`
	ValueBreakdown map[string]float64       `json:"value_breakdown"`

	TotalRevenue     float64            `json:"total_revenue"`
	RevenueByProduct map[string]float64 `json:"revenue_by_product"`

	ConsolidatedFCF []ProductForecastYear `json:"consolidated_fcf_forecasts"`

	Timestamp time.Time `json:"timestamp"`
}
