package model

import "time"

// ValuationResult is the outcome of one valuation method applied once.
// Value is an equity value. ValueLow/ValueHigh bound the range when the
// method produces one (comparable dispersion); nil otherwise. Details
// carries method-specific diagnostics keyed by snake_case names so the
// HTTP layer can pass them through unchanged. Never mutated after
// construction.
type ValuationResult struct {
	Method    string         `json:"method"`
	Value     float64        `json:"value"`
	ValueLow  *float64       `json:"value_low,omitempty"`
	ValueHigh *float64       `json:"value_high,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	// Assumptions records the overrides in effect for this evaluation.
	Assumptions map[string]any `json:"assumptions,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NewResult constructs a point result for a method.
func NewResult(method string, value float64) *ValuationResult {
	return &ValuationResult{
		Method:    method,
		Value:     value,
		Details:   map[string]any{},
		Timestamp: time.Now().UTC(),
	}
}

// ValueMid returns the midpoint of the range, or Value when no range is set.
func (r *ValuationResult) ValueMid() float64 {
	if r.ValueLow != nil && r.ValueHigh != nil {
		return (*r.ValueLow + *r.ValueHigh) / 2
	}
	return r.Value
}

// ScenarioConfig is a named bundle of signed deltas applied additively to
// the base company parameters before a DCF evaluation. Defaults live in
// scenario.DefaultScenarios, not in package state, so concurrent callers
// with different assumptions cannot interfere.
type ScenarioConfig struct {
	Name              string  `json:"name" yaml:"name"`
	RevenueGrowthAdj  float64 `json:"revenue_growth_adj" yaml:"revenue_growth_adj"`
	MarginAdj         float64 `json:"margin_adj" yaml:"margin_adj"`
	WACCAdj           float64 `json:"wacc_adj" yaml:"wacc_adj"`
	TerminalGrowthAdj float64 `json:"terminal_growth_adj" yaml:"terminal_growth_adj"`
}

// StressTestResult is one shocked re-evaluation relative to the unstressed
// base valuation. ChangePct = (stressed - base) / base.
type StressTestResult struct {
	TestName            string         `json:"test_name"`
	ScenarioDescription string         `json:"scenario_description"`
	BaseValue           float64        `json:"base_value"`
	StressedValue       float64        `json:"stressed_value"`
	ChangePct           float64        `json:"change_pct"`
	Details             map[string]any `json:"details,omitempty"`
}

// HistogramBin is one equal-width bucket of the Monte Carlo outcome
// distribution, [BinLower, BinUpper).
type HistogramBin struct {
	BinLower float64 `json:"bin_lower"`
	BinUpper float64 `json:"bin_upper"`
	Count    int     `json:"count"`
}

// MonteCarloResult aggregates a full simulation run. Std is the population
// standard deviation. ValidIterations counts iterations whose sampled
// parameters produced an evaluable model; when it is zero the result
// carries a Warning instead of statistics.
type MonteCarloResult struct {
	Iterations      int                `json:"iterations"`
	ValidIterations int                `json:"valid_iterations"`
	Mean            float64            `json:"mean"`
	Median          float64            `json:"median"`
	Std             float64            `json:"std"`
	MinValue        float64            `json:"min_value"`
	MaxValue        float64            `json:"max_value"`
	Percentiles     map[string]float64 `json:"percentiles"`
	Histogram       []HistogramBin     `json:"distribution"`
	Warning         string             `json:"warning,omitempty"`
}

// Percentile5 returns the 5th percentile of the simulated values.
func (m *MonteCarloResult) Percentile5() float64 { return m.Percentiles["p5"] }

// Percentile95 returns the 95th percentile of the simulated values.
func (m *MonteCarloResult) Percentile95() float64 { return m.Percentiles["p95"] }

// ConfidenceInterval90 returns the (p5, p95) band.
func (m *MonteCarloResult) ConfidenceInterval90() (float64, float64) {
	return m.Percentiles["p5"], m.Percentiles["p95"]
}
