package report

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/model"
)

func sampleReport(t *testing.T) *engine.FullReport {
	t.Helper()
	e := engine.New(nil, zerolog.Nop())
	seed := int64(9)
	r, err := e.FullValuation(context.Background(), &model.Company{
		Name:               "ReportCo",
		Industry:           "software",
		Stage:              model.StageGrowth,
		Revenue:            50000,
		NetIncome:          8000,
		EBITDA:             12000,
		NetAssets:          20000,
		TotalDebt:          5000,
		CashAndEquivalents: 2000,
		GrowthRate:         0.25,
		OperatingMargin:    0.25,
		Beta:               1.2,
		TerminalGrowthRate: 0.025,
	}, engine.FullOptions{
		Comparables: []model.Comparable{
			{Name: "A", PERatio: model.Float(30), PSRatio: model.Float(6)},
			{Name: "B", PERatio: model.Float(25), PSRatio: model.Float(5)},
		},
		MonteCarloIterations: 200,
		Seed:                 &seed,
	})
	if err != nil {
		t.Fatalf("building sample report: %v", err)
	}
	return r
}

func TestTextReportSections(t *testing.T) {
	out := Text(sampleReport(t))
	for _, want := range []string{
		"ReportCo - Valuation Report",
		"Valuation Methods",
		"DCF",
		"Recommendation",
		"Risk Analysis",
		"Max downside",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestMarkdownReportTables(t *testing.T) {
	out := Markdown(sampleReport(t))
	if !strings.HasPrefix(out, "# ReportCo - Valuation Report") {
		t.Error("markdown should open with the title heading")
	}
	for _, want := range []string{
		"| Method | Value | Low | High |",
		"| DCF |",
		"## Recommendation",
		"## Sensitivity",
		"| Parameter | Max Impact | Impact % |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}
}

func TestHTMLReportRendersTables(t *testing.T) {
	out, err := HTML(sampleReport(t))
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "ReportCo") {
		t.Error("html report missing title")
	}
	if !strings.Contains(out, "<table>") {
		t.Error("markdown tables should render as html tables")
	}
}
