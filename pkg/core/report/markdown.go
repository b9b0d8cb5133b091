package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/relative"
)

// Markdown renders the report as a markdown document with tables for the
// method comparison and the tornado ranking.
func Markdown(r *engine.FullReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s - Valuation Report\n\n", r.Company)
	if r.Industry != "" {
		fmt.Fprintf(&b, "- **Industry**: %s\n", r.Industry)
	}
	if r.Stage != "" {
		fmt.Fprintf(&b, "- **Stage**: %s\n", r.Stage)
	}
	fmt.Fprintf(&b, "- **Generated**: %s\n\n", r.Timestamp.Format("2006-01-02 15:04:05"))

	b.WriteString("## Valuation Methods\n\n")
	b.WriteString("| Method | Value | Low | High |\n|---|---|---|---|\n")
	for _, method := range append(append([]string(nil), relative.AllMethods...), relative.MethodComposite) {
		res, ok := r.Relative[method]
		if !ok {
			continue
		}
		low, high := "-", "-"
		if res.ValueLow != nil {
			low = amount(*res.ValueLow)
		}
		if res.ValueHigh != nil {
			high = amount(*res.ValueHigh)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", method, amount(res.Value), low, high)
	}
	if r.DCF != nil {
		fmt.Fprintf(&b, "| DCF | %s | - | - |\n", amount(r.DCF.Value))
	}
	b.WriteString("\n")

	if rec := r.Recommendation; rec != nil {
		b.WriteString("## Recommendation\n\n")
		fmt.Fprintf(&b, "- **Value**: %s\n", amount(rec.FinalValue))
		fmt.Fprintf(&b, "- **Range**: %s - %s\n", amount(rec.ValueLow), amount(rec.ValueHigh))
		fmt.Fprintf(&b, "- **Confidence**: %s\n\n", rec.Confidence)
	}

	if r.Scenario != nil && r.Scenario.Statistics != nil {
		s := r.Scenario.Statistics
		b.WriteString("## Scenario Analysis\n\n")
		fmt.Fprintf(&b, "- **Mean**: %s\n", amount(s.Mean))
		fmt.Fprintf(&b, "- **Std**: %s\n", amount(s.Std))
		fmt.Fprintf(&b, "- **Spread**: %s\n\n", amount(s.Range))
	}

	if r.Stress != nil {
		b.WriteString("## Stress Testing\n\n")
		fmt.Fprintf(&b, "- **Max downside**: %.1f%%\n", r.Stress.MaxDownside*100)
		if mc := r.Stress.MonteCarlo; mc != nil && mc.ValidIterations > 0 {
			lo, hi := mc.ConfidenceInterval90()
			fmt.Fprintf(&b, "- **Monte Carlo mean**: %s\n", amount(mc.Mean))
			fmt.Fprintf(&b, "- **90%% interval**: %s - %s\n", amount(lo), amount(hi))
		}
		b.WriteString("\n")
	}

	if r.Sensitivity != nil && len(r.Sensitivity.Tornado) > 0 {
		b.WriteString("## Sensitivity\n\n")
		b.WriteString("| Parameter | Max Impact | Impact % |\n|---|---|---|\n")
		for _, e := range r.Sensitivity.Tornado {
			fmt.Fprintf(&b, "| %s | %s | %.1f%% |\n", e.Parameter, amount(e.MaxImpact), e.ImpactPct*100)
		}
		b.WriteString("\n")
	}

	return b.String()
}

var htmlRenderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML converts the markdown report to an HTML fragment.
func HTML(r *engine.FullReport) (string, error) {
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(Markdown(r)), &buf); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return buf.String(), nil
}
