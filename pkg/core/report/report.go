// Package report renders a FullReport for human consumption: a fixed
// width plain-text layout for terminals, a markdown document for docs
// and chat surfaces, and an HTML conversion of the markdown.
package report

import (
	"fmt"
	"strings"

	"privco_valuation/pkg/core/engine"
	"privco_valuation/pkg/core/relative"
)

const lineWidth = 70

// amount formats a monetary figure in the unit convention of the inputs
// (ten-thousands), shown in hundreds of millions for readability.
func amount(v float64) string {
	return fmt.Sprintf("%.2f", v/10000)
}

// Text renders the fixed-width terminal report.
func Text(r *engine.FullReport) string {
	var b strings.Builder
	rule := strings.Repeat("=", lineWidth)
	thin := strings.Repeat("-", lineWidth)

	b.WriteString(rule + "\n")
	b.WriteString(center(r.Company+" - Valuation Report", lineWidth) + "\n")
	b.WriteString(rule + "\n")
	if r.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", r.Industry)
	}
	if r.Stage != "" {
		fmt.Fprintf(&b, "Stage: %s\n", r.Stage)
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", r.Timestamp.Format("2006-01-02 15:04:05"))

	b.WriteString(thin + "\nValuation Methods\n" + thin + "\n")
	for _, method := range append(append([]string(nil), relative.AllMethods...), relative.MethodComposite) {
		if res, ok := r.Relative[method]; ok {
			fmt.Fprintf(&b, "  %-10s %s\n", method, amount(res.Value))
		}
	}
	if r.DCF != nil {
		fmt.Fprintf(&b, "  %-10s %s\n", "DCF", amount(r.DCF.Value))
	}

	if rec := r.Recommendation; rec != nil {
		b.WriteString("\n" + thin + "\nRecommendation\n" + thin + "\n")
		fmt.Fprintf(&b, "  Value:      %s\n", amount(rec.FinalValue))
		fmt.Fprintf(&b, "  Range:      %s - %s\n", amount(rec.ValueLow), amount(rec.ValueHigh))
		fmt.Fprintf(&b, "  Confidence: %s (%d methods)\n", rec.Confidence, rec.MethodsUsed)
	}

	if r.Scenario != nil || r.Stress != nil {
		b.WriteString("\n" + thin + "\nRisk Analysis\n" + thin + "\n")
		if r.Scenario != nil && r.Scenario.Statistics != nil {
			s := r.Scenario.Statistics
			fmt.Fprintf(&b, "  Scenario spread:  %s (mean %s)\n", amount(s.Range), amount(s.Mean))
		}
		if r.Stress != nil {
			fmt.Fprintf(&b, "  Max downside:     %.1f%%\n", r.Stress.MaxDownside*100)
			if mc := r.Stress.MonteCarlo; mc != nil && mc.ValidIterations > 0 {
				lo, hi := mc.ConfidenceInterval90()
				fmt.Fprintf(&b, "  Monte Carlo mean: %s\n", amount(mc.Mean))
				fmt.Fprintf(&b, "  90%% interval:     %s - %s\n", amount(lo), amount(hi))
			}
		}
		if r.Sensitivity != nil && len(r.Sensitivity.Tornado) > 0 {
			top := r.Sensitivity.Tornado[0]
			fmt.Fprintf(&b, "  Key driver:       %s (impact %.1f%%)\n", top.Parameter, top.ImpactPct*100)
		}
	}

	b.WriteString("\n" + rule + "\n")
	return b.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
