package dcf

import (
	"errors"
	"math"
	"testing"

	"privco_valuation/pkg/core/model"
)

func testCompany() *model.Company {
	return &model.Company{
		Name:               "TestCo",
		Industry:           "software",
		Stage:              model.StageGrowth,
		Revenue:            50000,
		NetIncome:          8000,
		EBITDA:             12000,
		NetAssets:          20000,
		TotalDebt:          5000,
		CashAndEquivalents: 2000,
		GrowthRate:         0.20,
		OperatingMargin:    0.25,
		TaxRate:            0.25,
		Beta:               1.2,
		RiskFreeRate:       0.03,
		MarketRiskPremium:  0.07,
		CostOfDebt:         0.05,
		TargetDebtRatio:    0.3,
		TerminalGrowthRate: 0.025,
	}
}

func TestCAPMNoDebt(t *testing.T) {
	c := testCompany()
	c.TargetDebtRatio = 0

	// r_e = 0.03 + 1.2*0.07 = 0.114; no debt, so WACC == r_e exactly.
	wacc := CalculateWACC(c)
	if wacc != 0.114 {
		t.Errorf("expected WACC 0.114, got %v", wacc)
	}
}

func TestWACCBlendsDebt(t *testing.T) {
	c := testCompany()

	// r_e = 0.114, r_d(1-t) = 0.05*0.75 = 0.0375
	// WACC = 0.114*0.7 + 0.0375*0.3 = 0.0798 + 0.01125 = 0.09105
	wacc := CalculateWACC(c)
	if math.Abs(wacc-0.09105) > 1e-12 {
		t.Errorf("expected WACC 0.09105, got %v", wacc)
	}
}

func TestForecastHorizonAndDecay(t *testing.T) {
	c := testCompany()
	forecasts := ForecastFreeCashFlows(c, Assumptions{})

	if len(forecasts) != DefaultProjectionYears {
		t.Fatalf("expected %d forecast years, got %d", DefaultProjectionYears, len(forecasts))
	}
	if forecasts[0].GrowthRate != c.GrowthRate {
		t.Errorf("year 1 growth should equal current growth: got %v", forecasts[0].GrowthRate)
	}
	last := forecasts[len(forecasts)-1]
	if math.Abs(last.GrowthRate-c.TerminalGrowthRate) > 1e-12 {
		t.Errorf("final year growth should equal terminal growth: got %v", last.GrowthRate)
	}
	for i := 1; i < len(forecasts); i++ {
		if forecasts[i].GrowthRate > forecasts[i-1].GrowthRate {
			t.Errorf("growth must decay monotonically: year %d %v > year %d %v",
				forecasts[i].Year, forecasts[i].GrowthRate, forecasts[i-1].Year, forecasts[i-1].GrowthRate)
		}
	}

	// Year 1: revenue = 50000*1.2 = 60000
	// operating profit = 15000, NOPAT = 11250
	// FCF = 11250 + 1800 - 3000 - 1200 = 8850
	if math.Abs(forecasts[0].Revenue-60000) > 1e-9 {
		t.Errorf("year 1 revenue expected 60000, got %v", forecasts[0].Revenue)
	}
	if math.Abs(forecasts[0].FCF-8850) > 1e-9 {
		t.Errorf("year 1 FCF expected 8850, got %v", forecasts[0].FCF)
	}
}

func TestValuationPVInvariant(t *testing.T) {
	c := testCompany()
	res, err := Valuation(c, Assumptions{})
	if err != nil {
		t.Fatalf("valuation failed: %v", err)
	}

	pvForecasts := res.Details["pv_forecasts"].(float64)
	pvTerminal := res.Details["pv_terminal"].(float64)
	ev := res.Details["enterprise_value"].(float64)

	if rel := math.Abs(pvForecasts+pvTerminal-ev) / ev; rel > 1e-6 {
		t.Errorf("pv_forecasts + pv_terminal must equal enterprise value: rel err %v", rel)
	}

	// Equity bridge: EV - debt + cash.
	if math.Abs(res.Value-(ev-5000+2000)) > 1e-9 {
		t.Errorf("equity value bridge broken: got %v, EV %v", res.Value, ev)
	}
}

func TestValuationMonotoneInWACC(t *testing.T) {
	c := testCompany()
	prev := math.Inf(1)
	for _, w := range []float64{0.06, 0.08, 0.10, 0.12, 0.15} {
		res, err := Valuation(c, Assumptions{WACC: &w})
		if err != nil {
			t.Fatalf("wacc %v: %v", w, err)
		}
		if res.Value > prev {
			t.Errorf("value must be non-increasing in WACC: %v at wacc %v exceeds %v", res.Value, w, prev)
		}
		prev = res.Value
	}
}

func TestPerpetuityGuard(t *testing.T) {
	c := testCompany()
	w := 0.025 // equal to terminal growth
	_, err := Valuation(c, Assumptions{WACC: &w})
	if err == nil {
		t.Fatal("expected domain error for WACC <= terminal growth")
	}
	var derr *model.DomainError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *model.DomainError, got %T", err)
	}
	if derr.Param != "wacc" {
		t.Errorf("domain error should name wacc, got %q", derr.Param)
	}
}

func TestExitMultipleTerminal(t *testing.T) {
	c := testCompany()
	res, err := Valuation(c, Assumptions{TerminalMethod: TerminalExitMultiple, ExitMultiple: 8})
	if err != nil {
		t.Fatalf("valuation failed: %v", err)
	}
	forecasts := res.Details["fcf_forecasts"].([]ForecastYear)
	finalFCF := forecasts[len(forecasts)-1].FCF
	tv := res.Details["terminal_value"].(float64)
	if math.Abs(tv-finalFCF*8) > 1e-9 {
		t.Errorf("exit-multiple terminal value expected %v, got %v", finalFCF*8, tv)
	}
}

func TestValuationWithParamUnknown(t *testing.T) {
	_, err := ValuationWithParam(testCompany(), Parameter("ebit_margin"), 0.3)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for unknown parameter, got %v", err)
	}
}

func TestValuationRejectsInvalidInput(t *testing.T) {
	c := testCompany()
	c.TaxRate = 1.2
	if _, err := Valuation(c, Assumptions{}); err == nil {
		t.Error("expected validation error for tax rate >= 1")
	}

	c = testCompany()
	c.Revenue = -1
	if _, err := Valuation(c, Assumptions{}); err == nil {
		t.Error("expected validation error for negative revenue")
	}
}
