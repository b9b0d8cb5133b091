package multiproduct

import (
	"math"
	"testing"

	"privco_valuation/pkg/core/model"
)

func segments() []model.ProductSegment {
	return []model.ProductSegment{
		{
			Name:               "cloud",
			CurrentRevenue:     30000,
			RevenueWeight:      0.6,
			GrowthRateYears:    []float64{0.40, 0.35, 0.30},
			TerminalGrowthRate: 0.03,
			OperatingMargin:    0.30,
			CapexRatio:         0.05,
			WCChangeRatio:      0.02,
			DepreciationRatio:  0.03,
		},
		{
			Name:               "legacy",
			CurrentRevenue:     20000,
			RevenueWeight:      0.4,
			GrowthRateYears:    []float64{0.05, 0.03},
			TerminalGrowthRate: 0.01,
			OperatingMargin:    0.15,
			CapexRatio:         0.04,
			WCChangeRatio:      0.01,
			DepreciationRatio:  0.03,
		},
	}
}

func TestForecastSegmentGrowthSchedule(t *testing.T) {
	p := segments()[0]
	forecasts := ForecastSegment(&p, 5, 0.25)
	if len(forecasts) != 5 {
		t.Fatalf("expected 5 forecast years, got %d", len(forecasts))
	}
	// schedule covers years 1-3, then the terminal rate takes over
	if forecasts[0].GrowthRate != 0.40 || forecasts[2].GrowthRate != 0.30 {
		t.Errorf("scheduled growth misapplied: %v, %v", forecasts[0].GrowthRate, forecasts[2].GrowthRate)
	}
	if forecasts[3].GrowthRate != 0.03 || forecasts[4].GrowthRate != 0.03 {
		t.Errorf("post-schedule years should use terminal growth, got %v, %v",
			forecasts[3].GrowthRate, forecasts[4].GrowthRate)
	}
	// year 1: 30000 × 1.4 = 42000, fcf = nopat + dep - capex - wc
	if math.Abs(forecasts[0].Revenue-42000) > 1e-9 {
		t.Errorf("year-1 revenue = %v, want 42000", forecasts[0].Revenue)
	}
	wantFCF := 42000 * (0.30*0.75 + 0.03 - 0.05 - 0.02)
	if math.Abs(forecasts[0].FCF-wantFCF) > 1e-6 {
		t.Errorf("year-1 fcf = %v, want %v", forecasts[0].FCF, wantFCF)
	}
}

func TestValuationSumsSegments(t *testing.T) {
	res, err := Valuation(segments(), Config{
		Beta:               1.1,
		TotalDebt:          8000,
		CashAndEquivalents: 3000,
	})
	if err != nil {
		t.Fatalf("Valuation failed: %v", err)
	}

	var sumEV float64
	for _, pr := range res.ProductResults {
		if pr.EnterpriseValue <= 0 {
			t.Errorf("segment %s has non-positive value %v", pr.ProductName, pr.EnterpriseValue)
		}
		sumEV += pr.EnterpriseValue
	}
	if math.Abs(res.TotalEnterpriseValue-sumEV) > 1e-6 {
		t.Errorf("total EV %v != segment sum %v", res.TotalEnterpriseValue, sumEV)
	}
	if math.Abs(res.TotalEquityValue-(sumEV-5000)) > 1e-6 {
		t.Errorf("equity bridge wrong: %v, want %v", res.TotalEquityValue, sumEV-5000)
	}
	if res.TotalRevenue != 50000 {
		t.Errorf("total revenue = %v, want 50000", res.TotalRevenue)
	}
	if res.ValueBreakdown["cloud"] <= res.ValueBreakdown["legacy"] {
		t.Error("high-growth high-margin segment should dominate the breakdown")
	}
}

func TestConsolidatedCashFlows(t *testing.T) {
	res, err := Valuation(segments(), Config{})
	if err != nil {
		t.Fatalf("Valuation failed: %v", err)
	}
	if len(res.ConsolidatedFCF) != 5 {
		t.Fatalf("expected 5 consolidated years, got %d", len(res.ConsolidatedFCF))
	}
	for i, year := range res.ConsolidatedFCF {
		var wantRevenue float64
		for _, pr := range res.ProductResults {
			wantRevenue += pr.FCFForecasts[i].Revenue
		}
		if math.Abs(year.Revenue-wantRevenue) > 1e-6 {
			t.Errorf("year %d consolidated revenue %v, want %v", year.Year, year.Revenue, wantRevenue)
		}
	}
}

func TestValuationRejectsBadWeights(t *testing.T) {
	bad := segments()
	bad[0].RevenueWeight = 0.9
	if _, err := Valuation(bad, Config{}); err == nil {
		t.Fatal("expected error when weights do not sum to 1")
	}
}

func TestValuationRejectsEmptySegments(t *testing.T) {
	if _, err := Valuation(nil, Config{}); err == nil {
		t.Fatal("expected error for empty segment list")
	}
}

func TestContributionsRankedDescending(t *testing.T) {
	res, err := Valuation(segments(), Config{})
	if err != nil {
		t.Fatalf("Valuation failed: %v", err)
	}
	contribs := Contributions(res)
	if len(contribs) != 2 {
		t.Fatalf("expected 2 contributions, got %d", len(contribs))
	}
	if contribs[0].Product != "cloud" {
		t.Errorf("largest contributor = %s, want cloud", contribs[0].Product)
	}
	total := contribs[0].Contribution + contribs[1].Contribution
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("contributions sum to %v, want 1", total)
	}
}
