package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/core/report"
	"privco_valuation/pkg/core/scenario"
	"privco_valuation/pkg/core/sensitivity"
	"privco_valuation/pkg/core/stress"
)

func dcfValuation(c *model.Company) (*model.ValuationResult, error) {
	return dcf.Valuation(c, dcf.Assumptions{})
}

func stressReport(c *model.Company, iterations int, seed *int64) (*stress.Report, error) {
	tester, err := stress.NewTester(c)
	if err != nil {
		return nil, err
	}
	return tester.GenerateReport(stress.MonteCarloConfig{
		Iterations: iterations,
		Seed:       seed,
	})
}

func sensitivityAnalysis(c *model.Company) (*sensitivity.ComprehensiveResult, error) {
	analyzer, err := sensitivity.NewAnalyzer(c)
	if err != nil {
		return nil, err
	}
	return analyzer.Comprehensive(), nil
}

func scenarioComparison(c *model.Company) (*scenario.Comparison, error) {
	return scenario.Compare(c, scenario.DefaultScenarios())
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%+.1f%%", v*100)
}

func renderFullReport(w io.Writer, r *engine.FullReport) error {
	_, err := io.WriteString(w, report.Text(r))
	return err
}

func renderDCF(w io.Writer, c *model.Company, result *model.ValuationResult) {
	fmt.Fprintf(w, "%s\n", text.Bold.Sprintf("DCF valuation: %s", c.Name))

	tw := newTable(w)
	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRow(table.Row{"Equity value", money(result.Value)})
	if result.ValueLow != nil && result.ValueHigh != nil {
		tw.AppendRow(table.Row{"Range", money(*result.ValueLow) + " .. " + money(*result.ValueHigh)})
	}
	keys := make([]string, 0, len(result.Details))
	for k := range result.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tw.AppendRow(table.Row{k, fmt.Sprintf("%v", result.Details[k])})
	}
	tw.Render()
}

func renderStress(w io.Writer, r *stress.Report) {
	fmt.Fprintf(w, "%s\n", text.Bold.Sprintf("Stress test: %s (base %.2f)", r.Company, r.BaseValuation))

	tw := newTable(w)
	tw.AppendHeader(table.Row{"Test", "Stressed value", "Change"})
	appendResults := func(results []model.StressTestResult) {
		for _, res := range results {
			tw.AppendRow(table.Row{res.TestName, money(res.StressedValue), pct(res.ChangePct)})
		}
	}
	appendResults(r.RevenueShock)
	appendResults(r.MarginCompression)
	appendResults(r.WACCShock)
	appendResults(r.GrowthSlowdown)
	if r.ExtremeCrash != nil {
		tw.AppendRow(table.Row{r.ExtremeCrash.TestName, money(r.ExtremeCrash.StressedValue), pct(r.ExtremeCrash.ChangePct)})
	}
	tw.Render()

	if mc := r.MonteCarlo; mc != nil {
		if mc.Warning != "" {
			fmt.Fprintf(w, "Monte Carlo: %s\n", mc.Warning)
		} else {
			lo, hi := mc.ConfidenceInterval90()
			fmt.Fprintf(w, "Monte Carlo (n=%d): mean %.2f, median %.2f, 90%% CI [%.2f, %.2f]\n",
				mc.ValidIterations, mc.Mean, mc.Median, lo, hi)
		}
	}
	fmt.Fprintf(w, "Max downside: %s\n", pct(r.MaxDownside))
}

func renderSensitivity(w io.Writer, r *sensitivity.ComprehensiveResult) {
	fmt.Fprintf(w, "%s\n", text.Bold.Sprintf("Sensitivity (base %.2f)", r.BaseValuation))

	tw := newTable(w)
	tw.AppendHeader(table.Row{"Parameter", "Change", "Down", "Up", "Max impact"})
	for _, entry := range r.Tornado {
		tw.AppendRow(table.Row{
			string(entry.Parameter),
			fmt.Sprintf("±%.3f", entry.Change),
			money(entry.ValueDown),
			money(entry.ValueUp),
			money(entry.MaxImpact),
		})
	}
	tw.Render()
}

func renderScenarios(w io.Writer, comparison *scenario.Comparison) {
	fmt.Fprintln(w, text.Bold.Sprint("Scenario comparison"))

	names := make([]string, 0, len(comparison.Scenarios))
	for name := range comparison.Scenarios {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return comparison.Scenarios[names[i]].Value > comparison.Scenarios[names[j]].Value
	})

	tw := newTable(w)
	tw.AppendHeader(table.Row{"Scenario", "Value", "Growth adj", "Margin adj", "WACC adj"})
	for _, name := range names {
		outcome := comparison.Scenarios[name]
		tw.AppendRow(table.Row{
			name,
			money(outcome.Value),
			pct(outcome.Config.RevenueGrowthAdj),
			pct(outcome.Config.MarginAdj),
			pct(outcome.Config.WACCAdj),
		})
	}
	tw.Render()

	if s := comparison.Statistics; s != nil {
		fmt.Fprintf(w, "Spread: %.2f (%.1f%% of mean)\n", s.Range, 100*s.Range/s.Mean)
	}
}
