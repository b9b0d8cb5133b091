package relative

import (
	"math"
	"testing"

	"privco_valuation/pkg/core/model"
)

func target() *model.Company {
	return &model.Company{
		Name:               "Target",
		Stage:              model.StageGrowth,
		Revenue:            50000,
		NetIncome:          8000,
		EBITDA:             12000,
		NetAssets:          20000,
		TotalDebt:          5000,
		CashAndEquivalents: 2000,
		GrowthRate:         0.25,
		OperatingMargin:    0.25,
		TaxRate:            0.25,
	}
}

func comps() []model.Comparable {
	return []model.Comparable{
		{Name: "A", TSCode: "000001.SZ", PERatio: model.Float(25.5), PSRatio: model.Float(6.2), PBRatio: model.Float(4.8), EVEBITDA: model.Float(18.3)},
		{Name: "B", PERatio: model.Float(22.0), PSRatio: model.Float(5.5), PBRatio: model.Float(4.2), EVEBITDA: model.Float(16.5)},
		{Name: "C", PERatio: model.Float(28.0), PSRatio: model.Float(7.0), PBRatio: model.Float(5.5), EVEBITDA: model.Float(20.0)},
	}
}

func TestMedian(t *testing.T) {
	if m := Median([]float64{3, 1, 2}); m != 2 {
		t.Errorf("odd-count median expected 2, got %v", m)
	}
	// Even count: average of the two middle values.
	if m := Median([]float64{4, 1, 3, 2}); m != 2.5 {
		t.Errorf("even-count median expected 2.5, got %v", m)
	}
	if m := Median(nil); m != 0 {
		t.Errorf("empty median expected 0, got %v", m)
	}
}

func TestPEValuationForward(t *testing.T) {
	c := target()
	res, err := PEValuation(c, []float64{22.0, 25.5, 28.0}, DefaultOptions())
	if err != nil {
		t.Fatalf("pe valuation failed: %v", err)
	}

	// forward earnings = 8000 * 1.25 = 10000; median P/E = 25.5
	want := 10000 * 25.5
	if math.Abs(res.Value-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, res.Value)
	}
	if *res.ValueLow != 10000*22.0 || *res.ValueHigh != 10000*28.0 {
		t.Errorf("range should come from min/max multiples: got [%v, %v]", *res.ValueLow, *res.ValueHigh)
	}
}

func TestPESkipsNonPositiveEarnings(t *testing.T) {
	c := target()
	c.NetIncome = -500
	if _, err := PEValuation(c, []float64{20}, DefaultOptions()); err == nil {
		t.Error("expected domain error for negative earnings")
	}
}

func TestEVEBITDABridgesToEquity(t *testing.T) {
	c := target()
	res, err := EVEBITDAValuation(c, []float64{16.5, 18.3, 20.0}, Options{})
	if err != nil {
		t.Fatalf("ev valuation failed: %v", err)
	}

	// EV = 12000 * 18.3 = 219600; net debt = 3000
	want := 12000*18.3 - 3000
	if math.Abs(res.Value-want) > 1e-9 {
		t.Errorf("expected equity %v, got %v", want, res.Value)
	}
}

func TestAutoAnalysisAllMethods(t *testing.T) {
	results := AutoComparableAnalysis(target(), comps(), nil, DefaultWeights())

	for _, method := range AllMethods {
		if _, ok := results[method]; !ok {
			t.Errorf("expected method %s in results", method)
		}
	}
	if _, ok := results[MethodComposite]; !ok {
		t.Error("expected composite entry with all four methods available")
	}
}

func TestAutoAnalysisSkipsMethodsWithoutData(t *testing.T) {
	partial := []model.Comparable{
		{Name: "A", PSRatio: model.Float(6.0)},
		{Name: "B", PSRatio: model.Float(5.0)},
	}
	results := AutoComparableAnalysis(target(), partial, nil, DefaultWeights())

	if len(results) != 1 {
		t.Fatalf("expected only PS, got %d entries", len(results))
	}
	if _, ok := results[MethodPS]; !ok {
		t.Error("expected PS entry")
	}
}

func TestAutoAnalysisEmptyWhenNothingUsable(t *testing.T) {
	// No comparables at all.
	results := AutoComparableAnalysis(target(), nil, nil, DefaultWeights())
	if len(results) != 0 {
		t.Errorf("expected empty mapping with zero comparables, got %d entries", len(results))
	}

	// Comparables present but all multiples nil (loss-making peers).
	unusable := []model.Comparable{{Name: "A"}, {Name: "B"}}
	results = AutoComparableAnalysis(target(), unusable, nil, DefaultWeights())
	if len(results) != 0 {
		t.Errorf("expected empty mapping with unusable comparables, got %d entries", len(results))
	}
}

func TestAutoAnalysisSkipsLossMakingCompanyPE(t *testing.T) {
	c := target()
	c.NetIncome = 0
	results := AutoComparableAnalysis(c, comps(), nil, DefaultWeights())

	if _, ok := results[MethodPE]; ok {
		t.Error("PE must be skipped for a company with no earnings")
	}
	if _, ok := results[MethodPS]; !ok {
		t.Error("PS should still be available")
	}
}
