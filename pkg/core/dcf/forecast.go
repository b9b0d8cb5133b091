package dcf

import "privco_valuation/pkg/core/model"

// ForecastYear is one projected year of the explicit forecast period.
// The sequence is ordered, finite, and exactly horizon entries long.
type ForecastYear struct {
	Year             int     `json:"year"`
	Revenue          float64 `json:"revenue"`
	OperatingProfit  float64 `json:"operating_profit"`
	NOPAT            float64 `json:"nopat"`
	Depreciation     float64 `json:"depreciation"`
	Capex            float64 `json:"capex"`
	WCChange         float64 `json:"wc_change"`
	FCF              float64 `json:"fcf"`
	GrowthRate       float64 `json:"growth_rate"`
}

// ForecastFreeCashFlows projects revenue and free cash flow over the
// forecast horizon.
//
// The revenue growth rate decays linearly from the company's current
// growth rate in year 1 to the terminal growth rate in the final year:
//
//	g_i = g + (i-1)/(N-1) × (g_T - g)
//
// so the explicit period hands off smoothly to the perpetuity. Free cash
// flow per year:
//
//	FCF = NOPAT + depreciation - capex - ΔWC
//	NOPAT = revenue × operating_margin × (1 - tax_rate)
//
// with depreciation, capex and ΔWC modeled as flat fractions of revenue.
func ForecastFreeCashFlows(c *model.Company, a Assumptions) []ForecastYear {
	years := a.years()
	startGrowth := orDefault(a.GrowthRate, c.GrowthRate)
	terminalGrowth := orDefault(a.TerminalGrowthRate, c.TerminalGrowthRate)
	margin := orDefault(a.OperatingMargin, c.OperatingMargin)

	capexRatio := orDefault(a.CapexRatio, DefaultCapexRatio)
	wcRatio := orDefault(a.WCChangeRatio, DefaultWCChangeRatio)
	depRatio := orDefault(a.DepreciationRatio, DefaultDepreciationRatio)

	forecasts := make([]ForecastYear, 0, years)
	revenue := c.Revenue

	for year := 1; year <= years; year++ {
		growth := startGrowth
		if years > 1 {
			growth = startGrowth + float64(year-1)/float64(years-1)*(terminalGrowth-startGrowth)
		}
		revenue *= 1 + growth

		operatingProfit := revenue * margin
		nopat := operatingProfit * (1 - c.TaxRate)
		depreciation := revenue * depRatio
		capex := revenue * capexRatio
		wcChange := revenue * wcRatio

		forecasts = append(forecasts, ForecastYear{
			Year:            year,
			Revenue:         revenue,
			OperatingProfit: operatingProfit,
			NOPAT:           nopat,
			Depreciation:    depreciation,
			Capex:           capex,
			WCChange:        wcChange,
			FCF:             nopat + depreciation - capex - wcChange,
			GrowthRate:      growth,
		})
	}

	return forecasts
}
