package sensitivity

import (
	"math"
	"testing"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/model"
)

func testCompany() *model.Company {
	return &model.Company{
		Name:               "SensCo",
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

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := NewAnalyzer(testCompany())
	if err != nil {
		t.Fatalf("NewAnalyzer failed: %v", err)
	}
	return a
}

func TestOneWayGrowthSweep(t *testing.T) {
	a := newAnalyzer(t)
	res, err := a.OneWay(dcf.ParamGrowthRate, nil, 0)
	if err != nil {
		t.Fatalf("OneWay failed: %v", err)
	}
	if len(res.ParamValues) != DefaultSteps || len(res.Valuations) != DefaultSteps {
		t.Fatalf("expected %d sweep points, got %d", DefaultSteps, len(res.ParamValues))
	}
	if res.ParamValues[0] != 0 || res.ParamValues[DefaultSteps-1] != 0.40 {
		t.Errorf("default growth window = [%v, %v], want [0, 0.40]",
			res.ParamValues[0], res.ParamValues[DefaultSteps-1])
	}
	// valuation rises with growth
	for i := 1; i < len(res.Valuations); i++ {
		if res.Valuations[i] <= res.Valuations[i-1] {
			t.Errorf("valuation not increasing in growth at step %d", i)
		}
	}
	if res.ValuationRange != res.MaxValuation-res.MinValuation {
		t.Errorf("valuation_range %v != max-min %v", res.ValuationRange, res.MaxValuation-res.MinValuation)
	}
	want := res.ValuationRange / a.Base().Value
	if math.Abs(res.ImpactPercentage-want) > 1e-12 {
		t.Errorf("impact_percentage = %v, want %v", res.ImpactPercentage, want)
	}
	if res.Elasticity == nil || *res.Elasticity <= 0 {
		t.Error("expected positive growth elasticity")
	}
}

func TestOneWayWACCDecreasing(t *testing.T) {
	a := newAnalyzer(t)
	res, err := a.OneWay(dcf.ParamWACC, nil, 0)
	if err != nil {
		t.Fatalf("OneWay failed: %v", err)
	}
	for i := 1; i < len(res.Valuations); i++ {
		if res.Valuations[i] >= res.Valuations[i-1] {
			t.Errorf("valuation not decreasing in wacc at step %d", i)
		}
	}
	if res.Elasticity == nil || *res.Elasticity >= 0 {
		t.Error("expected negative wacc elasticity")
	}
}

func TestOneWaySkipsDegeneratePoints(t *testing.T) {
	a := newAnalyzer(t)
	// window dips below the terminal growth rate; low points must come
	// back NaN without failing the sweep
	res, err := a.OneWay(dcf.ParamWACC, &Range{Min: 0.01, Max: 0.15}, 10)
	if err != nil {
		t.Fatalf("OneWay failed: %v", err)
	}
	if !math.IsNaN(res.Valuations[0]) {
		t.Errorf("expected NaN at wacc=0.01, got %v", res.Valuations[0])
	}
	var valid int
	for _, v := range res.Valuations {
		if !math.IsNaN(v) {
			valid++
		}
	}
	if valid == 0 || valid == len(res.Valuations) {
		t.Errorf("expected a mix of valid and NaN points, got %d/%d valid", valid, len(res.Valuations))
	}
}

func TestOneWayUnknownParameter(t *testing.T) {
	a := newAnalyzer(t)
	if _, err := a.OneWay(dcf.Parameter("ebitda"), nil, 0); err == nil {
		t.Fatal("expected error for unknown parameter")
	}
}

func TestSymmetricPerturbationEndpoints(t *testing.T) {
	a := newAnalyzer(t)
	c := testCompany()
	delta := 0.05

	up, err := dcf.ValuationWithParam(c, dcf.ParamGrowthRate, c.GrowthRate+delta)
	if err != nil {
		t.Fatalf("up valuation failed: %v", err)
	}
	down, err := dcf.ValuationWithParam(c, dcf.ParamGrowthRate, c.GrowthRate-delta)
	if err != nil {
		t.Fatalf("down valuation failed: %v", err)
	}
	if !(down.Value < a.Base().Value && a.Base().Value < up.Value) {
		t.Errorf("expected down < base < up, got %v / %v / %v", down.Value, a.Base().Value, up.Value)
	}
}

func TestTwoWayMatrixShape(t *testing.T) {
	a := newAnalyzer(t)
	res, err := a.TwoWay(dcf.ParamGrowthRate, dcf.ParamWACC, nil, nil, 5)
	if err != nil {
		t.Fatalf("TwoWay failed: %v", err)
	}
	if len(res.Matrix) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(res.Matrix))
	}
	for i, row := range res.Matrix {
		if len(row) != 5 {
			t.Fatalf("row %d has %d cells, want 5", i, len(row))
		}
	}
	// rows sweep growth: down a column, higher growth means higher value
	for j := 0; j < 5; j++ {
		for i := 1; i < 5; i++ {
			lo, hi := res.Matrix[i-1][j], res.Matrix[i][j]
			if math.IsNaN(lo) || math.IsNaN(hi) {
				continue
			}
			if hi <= lo {
				t.Errorf("matrix[%d][%d] = %v not above matrix[%d][%d] = %v", i, j, hi, i-1, j, lo)
			}
		}
	}
	if res.MinValuation >= res.MaxValuation {
		t.Errorf("min %v not below max %v", res.MinValuation, res.MaxValuation)
	}
}

func TestTwoWayRejectsSameParameter(t *testing.T) {
	a := newAnalyzer(t)
	if _, err := a.TwoWay(dcf.ParamWACC, dcf.ParamWACC, nil, nil, 5); err == nil {
		t.Fatal("expected error for identical sweep parameters")
	}
}

func TestTornadoRankedDescending(t *testing.T) {
	a := newAnalyzer(t)
	entries := a.Tornado(nil)
	if len(entries) != len(dcf.StandardParameters) {
		t.Fatalf("expected %d entries, got %d", len(dcf.StandardParameters), len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].MaxImpact > entries[i-1].MaxImpact {
			t.Errorf("entries not sorted by impact: %v after %v",
				entries[i].MaxImpact, entries[i-1].MaxImpact)
		}
	}
	for _, e := range entries {
		if e.MaxImpact != math.Max(e.ImpactUp, e.ImpactDown) {
			t.Errorf("%s: max_impact %v inconsistent with up %v / down %v",
				e.Parameter, e.MaxImpact, e.ImpactUp, e.ImpactDown)
		}
		if e.ImpactPct < 0 {
			t.Errorf("%s: negative impact_pct", e.Parameter)
		}
	}
}

func TestComprehensiveCoversStandardParameters(t *testing.T) {
	a := newAnalyzer(t)
	res := a.Comprehensive()
	if res.BaseValuation != a.Base().Value {
		t.Errorf("base valuation mismatch")
	}
	for _, p := range dcf.StandardParameters {
		if _, ok := res.Parameters[p]; !ok {
			t.Errorf("missing one-way result for %s", p)
		}
	}
	if len(res.Tornado) == 0 {
		t.Error("missing tornado data")
	}
}
