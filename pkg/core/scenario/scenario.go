// Package scenario runs the DCF kernel under named parameter bundles
// (base / bull / bear / custom) and compares the outcomes.
//
// There is no package-level scenario state: callers get the default
// bundles from DefaultScenarios and may pass their own, so concurrent
// analyses with different assumptions cannot interfere.
package scenario

import (
	"math"
	"sort"

	"privco_valuation/pkg/core/dcf"
	"privco_valuation/pkg/core/model"
)

// DefaultScenarios returns the conventional three-scenario set. The bull
// and bear deltas are sign-opposed; base applies none.
func DefaultScenarios() []model.ScenarioConfig {
	return []model.ScenarioConfig{
		{Name: "base"},
		{
			Name:              "bull",
			RevenueGrowthAdj:  0.2,
			MarginAdj:         0.05,
			WACCAdj:           -0.01,
			TerminalGrowthAdj: 0.005,
		},
		{
			Name:              "bear",
			RevenueGrowthAdj:  -0.2,
			MarginAdj:         -0.05,
			WACCAdj:           0.02,
			TerminalGrowthAdj: -0.005,
		},
	}
}

// Run evaluates one scenario: the config's signed deltas are applied
// additively to the base company's growth, margin, WACC and terminal
// growth, and the DCF kernel is called on the overridden copy. Growth and
// margin are floored at zero after adjustment.
func Run(c *model.Company, cfg model.ScenarioConfig) (*model.ValuationResult, error) {
	growth := math.Max(0, c.GrowthRate+cfg.RevenueGrowthAdj)
	margin := math.Max(0, c.OperatingMargin+cfg.MarginAdj)
	wacc := dcf.CalculateWACC(c) + cfg.WACCAdj
	terminal := math.Max(0, c.TerminalGrowthRate+cfg.TerminalGrowthAdj)

	return dcf.Valuation(c, dcf.Assumptions{
		GrowthRate:         &growth,
		OperatingMargin:    &margin,
		WACC:               &wacc,
		TerminalGrowthRate: &terminal,
	})
}

// Outcome pairs one scenario's config with its valuation.
type Outcome struct {
	Config model.ScenarioConfig   `json:"scenario"`
	Result *model.ValuationResult `json:"valuation"`
	Value  float64                `json:"value"`
}

// Stats summarizes the distribution of values across scenarios.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Range  float64 `json:"range"`
	Count  int     `json:"count"`
}

// Comparison holds the per-scenario outcomes and their distribution
// statistics. Statistics is a dedicated field, not an entry in Scenarios,
// so iterating named scenarios can never pick it up by accident.
type Comparison struct {
	Scenarios  map[string]Outcome `json:"scenarios"`
	Statistics *Stats             `json:"statistics,omitempty"`
}

// Compare runs every scenario and aggregates distribution statistics
// across the resulting values. Scenarios that fail to evaluate (for
// example a WACC adjustment pushing the perpetuity degenerate) are
// dropped from the comparison; an error is returned only when no scenario
// evaluates at all.
func Compare(c *model.Company, scenarios []model.ScenarioConfig) (*Comparison, error) {
	if len(scenarios) == 0 {
		scenarios = DefaultScenarios()
	}

	cmp := &Comparison{Scenarios: map[string]Outcome{}}
	var lastErr error
	values := make([]float64, 0, len(scenarios))

	for _, cfg := range scenarios {
		res, err := Run(c, cfg)
		if err != nil {
			lastErr = err
			continue
		}
		cmp.Scenarios[cfg.Name] = Outcome{Config: cfg, Result: res, Value: res.Value}
		values = append(values, res.Value)
	}
	if len(values) == 0 {
		return nil, lastErr
	}

	cmp.Statistics = statsOf(values)
	return cmp, nil
}

func statsOf(values []float64) *Stats {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var variance float64
	for _, v := range sorted {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(sorted))

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return &Stats{
		Mean:   mean,
		Median: median,
		Std:    math.Sqrt(variance),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Range:  sorted[len(sorted)-1] - sorted[0],
		Count:  len(sorted),
	}
}

// WeightedScenario attaches an occurrence probability to a scenario.
type WeightedScenario struct {
	Config      model.ScenarioConfig `json:"scenario"`
	Probability float64              `json:"probability"`
}

// ProbabilityAnalysis computes the probability-weighted expected equity
// value across scenarios. Probabilities are normalized by their sum, so
// they need not add to one.
func ProbabilityAnalysis(c *model.Company, scenarios []WeightedScenario) (*model.ValuationResult, error) {
	if len(scenarios) == 0 {
		return nil, &model.ValidationError{Field: "scenarios", Message: "at least one weighted scenario required"}
	}

	var expected, totalProb float64
	contributions := make([]map[string]any, 0, len(scenarios))

	for _, ws := range scenarios {
		res, err := Run(c, ws.Config)
		if err != nil {
			return nil, err
		}
		expected += res.Value * ws.Probability
		totalProb += ws.Probability
		contributions = append(contributions, map[string]any{
			"scenario":     ws.Config.Name,
			"probability":  ws.Probability,
			"value":        res.Value,
			"contribution": res.Value * ws.Probability,
		})
	}
	if totalProb <= 0 {
		return nil, &model.ValidationError{Field: "probability", Message: "probabilities must sum to a positive value"}
	}
	expected /= totalProb

	res := model.NewResult("scenario_probability", expected)
	res.Details = map[string]any{
		"scenario_values":   contributions,
		"total_probability": totalProb,
	}
	return res, nil
}
