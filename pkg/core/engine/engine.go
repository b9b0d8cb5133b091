// Package engine is the orchestration layer: it runs the individual
// valuation methods, layers the risk analyses on top, and cross-checks
// the results into a recommendation. The engine itself holds no mutable
// state between calls; every request builds its own inputs and the
// collaborators (market data, persistence) are injected.
package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/marketdata"
	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/core/othermethods"
	"privco_valuation/pkg/core/relative"
	"privco_valuation/pkg/core/scenario"
	"privco_valuation/pkg/core/sensitivity"
	"privco_valuation/pkg/core/stress"
)

// Confidence labels on a recommendation, driven by the coefficient of
// variation across method values.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Engine bundles the valuation methods behind one entry point. A nil
// market data source disables automatic comparable fetching; callers can
// still pass comparables explicitly.
type Engine struct {
	source marketdata.Source
	log    zerolog.Logger
}

// New constructs an engine. source may be nil.
func New(source marketdata.Source, log zerolog.Logger) *Engine {
	return &Engine{source: source, log: log.With().Str("component", "engine").Logger()}
}

// prepared returns a defaulted, validated copy of the input so the
// caller's Company is never written to.
func prepared(c *model.Company) (*model.Company, error) {
	cc := *c
	if err := cc.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cc.Validate(); err != nil {
		return nil, err
	}
	return &cc, nil
}

// FullOptions tunes a FullValuation run.
type FullOptions struct {
	// Comparables for the relative leg; fetched by industry from the
	// market data source when nil.
	Comparables []model.Comparable
	// Methods restricts the relative methods; nil means all.
	Methods []string
	// SkipRiskAnalysis drops the scenario, stress and sensitivity legs.
	SkipRiskAnalysis bool
	// Stress Monte Carlo controls.
	MonteCarloIterations int
	Seed                 *int64
}

// MethodDetail is one method's contribution to the cross-check.
type MethodDetail struct {
	Method    string   `json:"method"`
	Value     float64  `json:"value"`
	ValueLow  *float64 `json:"value_low,omitempty"`
	ValueHigh *float64 `json:"value_high,omitempty"`
}

// Recommendation is the cross-validated verdict: the median of all
// method values, a range widened 10% past the observed extremes, and a
// confidence grade from the dispersion across methods.
type Recommendation struct {
	FinalValue    float64        `json:"final_value"`
	ValueLow      float64        `json:"value_low"`
	ValueHigh     float64        `json:"value_high"`
	Confidence    string         `json:"confidence"`
	MethodsUsed   int            `json:"methods_used"`
	MethodDetails []MethodDetail `json:"method_details"`
}

// FullReport is the complete output of a FullValuation run. Sections that
// could not be computed are nil rather than failing the whole report.
type FullReport struct {
	Company   string      `json:"company"`
	Industry  string      `json:"industry,omitempty"`
	Stage     model.Stage `json:"stage,omitempty"`
	Timestamp time.Time   `json:"timestamp"`

	Relative map[string]*model.ValuationResult `json:"relative,omitempty"`
	DCF      *model.ValuationResult            `json:"dcf,omitempty"`

	Scenario    *scenario.Comparison             `json:"scenario,omitempty"`
	Stress      *stress.Report                   `json:"stress_test,omitempty"`
	Sensitivity *sensitivity.ComprehensiveResult `json:"sensitivity,omitempty"`

	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// FullValuation runs relative valuation, DCF, the risk battery and the
// cross-check. Individual legs may fail without sinking the report; an
// error is returned only when no valuation method succeeds at all.
func (e *Engine) FullValuation(ctx context.Context, c *model.Company, opts FullOptions) (*FullReport, error) {
	c, err := prepared(c)
	if err != nil {
		return nil, err
	}

	report := &FullReport{
		Company:   c.Name,
		Industry:  c.Industry,
		Stage:     c.Stage,
		Timestamp: time.Now().UTC(),
	}

	comparables := opts.Comparables
	if comparables == nil && e.source != nil && c.Industry != "" {
		fetched, err := e.source.Comparables(ctx, c.Industry)
		if err != nil {
			e.log.Warn().Err(err).Str("industry", c.Industry).Msg("comparable fetch failed")
		} else {
			comparables = fetched
		}
	}

	if len(comparables) > 0 {
		report.Relative = relative.AutoComparableAnalysis(c, comparables, opts.Methods, relative.DefaultWeights())
	}

	dcfResult, err := dcf.Valuation(c, dcf.Assumptions{})
	if err != nil {
		e.log.Warn().Err(err).Str("company", c.Name).Msg("dcf valuation failed")
	} else {
		report.DCF = dcfResult
	}

	if report.DCF == nil && len(report.Relative) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, &model.ValidationError{Field: "company", Message: "no valuation method produced a result"}
	}

	if !opts.SkipRiskAnalysis && report.DCF != nil {
		e.runRiskAnalysis(c, report, opts)
	}

	report.Recommendation = e.recommend(report)
	return report, nil
}

// runRiskAnalysis attaches the scenario, stress and sensitivity legs.
// Each leg fails independently.
func (e *Engine) runRiskAnalysis(c *model.Company, report *FullReport, opts FullOptions) {
	if cmp, err := scenario.Compare(c, nil); err != nil {
		e.log.Warn().Err(err).Msg("scenario analysis failed")
	} else {
		report.Scenario = cmp
	}

	if tester, err := stress.NewTester(c); err != nil {
		e.log.Warn().Err(err).Msg("stress tester init failed")
	} else {
		mc := stress.MonteCarloConfig{Iterations: opts.MonteCarloIterations, Seed: opts.Seed}
		if sr, err := tester.GenerateReport(mc); err != nil {
			e.log.Warn().Err(err).Msg("stress report failed")
		} else {
			report.Stress = sr
		}
	}

	if analyzer, err := sensitivity.NewAnalyzer(c); err != nil {
		e.log.Warn().Err(err).Msg("sensitivity analyzer init failed")
	} else {
		report.Sensitivity = analyzer.Comprehensive()
	}
}

// recommend cross-validates every positive method value into a final
// figure. Nil when nothing usable was produced.
func (e *Engine) recommend(report *FullReport) *Recommendation {
	var details []MethodDetail
	for _, method := range append(append([]string(nil), relative.AllMethods...), relative.MethodComposite) {
		res, ok := report.Relative[method]
		if !ok || res.Value <= 0 {
			continue
		}
		details = append(details, MethodDetail{
			Method:    "relative_" + method,
			Value:     res.Value,
			ValueLow:  res.ValueLow,
			ValueHigh: res.ValueHigh,
		})
	}
	if report.DCF != nil && report.DCF.Value > 0 {
		details = append(details, MethodDetail{Method: dcf.MethodDCF, Value: report.DCF.Value})
	}
	if len(details) == 0 {
		return nil
	}

	values := make([]float64, len(details))
	for i, d := range details {
		values[i] = d.Value
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return &Recommendation{
		FinalValue:    median,
		ValueLow:      sorted[0] * 0.9,
		ValueHigh:     sorted[len(sorted)-1] * 1.1,
		Confidence:    confidence(values),
		MethodsUsed:   len(details),
		MethodDetails: details,
	}
}

// confidence grades the dispersion of method values: a coefficient of
// variation under 10% is high, under 20% medium, anything wider low.
func confidence(values []float64) string {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean <= 0 {
		return ConfidenceLow
	}

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	cv := math.Sqrt(variance/float64(len(values))) / mean

	switch {
	case cv < 0.1:
		return ConfidenceHigh
	case cv < 0.2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// QuickValuation picks one method from the company's stage and runs it.
// Early stage leans on P/S for revenue-level loss-makers and the VC
// projection otherwise; growth stage on P/S or DCF by profitability;
// mature and listed companies on P/E or DCF.
func (e *Engine) QuickValuation(ctx context.Context, c *model.Company, method string) (*model.ValuationResult, error) {
	c, err := prepared(c)
	if err != nil {
		return nil, err
	}

	if method == "" || method == "auto" {
		switch c.Stage {
		case model.StageEarly:
			if c.Revenue > 0 && c.NetIncome <= 0 {
				method = relative.MethodPS
			} else {
				method = "VC"
			}
		case model.StageGrowth:
			if c.NetIncome <= 0 {
				method = relative.MethodPS
			} else {
				method = dcf.MethodDCF
			}
		default:
			if c.NetIncome > 0 {
				method = relative.MethodPE
			} else {
				method = dcf.MethodDCF
			}
		}
	}

	switch method {
	case dcf.MethodDCF:
		return dcf.Valuation(c, dcf.Assumptions{})
	case "VC":
		return othermethods.VCMethodWithProjection(c, 0, 0, 0, 0)
	case relative.MethodPE, relative.MethodPS:
		comparables, err := e.fetchComparables(ctx, c)
		if err != nil {
			return nil, err
		}
		multiples := relative.Multiples(comparables)
		if method == relative.MethodPE {
			return relative.PEValuation(c, multiples[relative.MethodPE], relative.DefaultOptions())
		}
		return relative.PSValuation(c, multiples[relative.MethodPS], relative.DefaultOptions())
	default:
		return nil, &model.ValidationError{Field: "method", Message: "unsupported valuation method " + method}
	}
}

func (e *Engine) fetchComparables(ctx context.Context, c *model.Company) ([]model.Comparable, error) {
	if e.source == nil || c.Industry == "" {
		return nil, &model.ValidationError{Field: "comparables", Message: "multiple-based methods need comparable data"}
	}
	comparables, err := e.source.Comparables(ctx, c.Industry)
	if err != nil {
		return nil, err
	}
	if len(comparables) == 0 {
		return nil, &model.ValidationError{Field: "comparables", Message: "no comparables found for industry " + c.Industry}
	}
	return comparables, nil
}

// BatchItem is one company's outcome in a batch run.
type BatchItem struct {
	Company string      `json:"company"`
	Success bool        `json:"success"`
	Report  *FullReport `json:"report,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BatchValuation values each company with a shared comparable set. Risk
// analysis is disabled for throughput; failures are recorded per item.
func (e *Engine) BatchValuation(ctx context.Context, companies []*model.Company, comparables []model.Comparable) []BatchItem {
	out := make([]BatchItem, 0, len(companies))
	for _, c := range companies {
		report, err := e.FullValuation(ctx, c, FullOptions{
			Comparables:      comparables,
			SkipRiskAnalysis: true,
		})
		if err != nil {
			out = append(out, BatchItem{Company: c.Name, Error: err.Error()})
			continue
		}
		out = append(out, BatchItem{Company: c.Name, Success: true, Report: report})
	}
	return out
}

// CompareScenarios proxies the scenario comparison for callers that hold
// an engine rather than the scenario package.
func (e *Engine) CompareScenarios(c *model.Company, scenarios []model.ScenarioConfig) (*scenario.Comparison, error) {
	c, err := prepared(c)
	if err != nil {
		return nil, err
	}
	return scenario.Compare(c, scenarios)
}
