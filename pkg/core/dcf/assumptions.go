package dcf

// TerminalMethod selects how value beyond the forecast horizon is
// capitalized.
type TerminalMethod string

const (
	// TerminalPerpetuity is the Gordon growth model (default).
	TerminalPerpetuity TerminalMethod = "perpetuity"
	// TerminalExitMultiple capitalizes the final FCF at a flat multiple.
	TerminalExitMultiple TerminalMethod = "exit_multiple"
)

// Default forecasting ratios, as fractions of revenue.
const (
	DefaultProjectionYears   = 5
	DefaultCapexRatio        = 0.05
	DefaultWCChangeRatio     = 0.02
	DefaultDepreciationRatio = 0.03
	DefaultExitMultiple      = 10.0
)

// Parameter names one overridable DCF input. The sensitivity and stress
// components sweep these; unknown names are a validation error there.
type Parameter string

const (
	ParamGrowthRate      Parameter = "growth_rate"
	ParamOperatingMargin Parameter = "operating_margin"
	ParamWACC            Parameter = "wacc"
	ParamTerminalGrowth  Parameter = "terminal_growth"
)

// StandardParameters is the fixed sweep set for tornado ranking, in
// declaration order (the tie-break order).
var StandardParameters = []Parameter{
	ParamGrowthRate,
	ParamOperatingMargin,
	ParamWACC,
	ParamTerminalGrowth,
}

// Assumptions carries per-call overrides for a DCF evaluation. A nil
// pointer means "use the company's value"; zero-valued scalars fall back
// to the package defaults. Analyses build these instead of mutating the
// Company they were handed.
type Assumptions struct {
	GrowthRate         *float64 `json:"growth_rate,omitempty"`
	OperatingMargin    *float64 `json:"operating_margin,omitempty"`
	WACC               *float64 `json:"wacc,omitempty"`
	TerminalGrowthRate *float64 `json:"terminal_growth_rate,omitempty"`

	CapexRatio        *float64 `json:"capex_ratio,omitempty"`
	WCChangeRatio     *float64 `json:"wc_change_ratio,omitempty"`
	DepreciationRatio *float64 `json:"depreciation_ratio,omitempty"`

	ProjectionYears int            `json:"projection_years,omitempty"`
	TerminalMethod  TerminalMethod `json:"terminal_method,omitempty"`
	ExitMultiple    float64        `json:"exit_multiple,omitempty"`
}

// WithParam returns a copy of a with the named parameter overridden.
func (a Assumptions) WithParam(p Parameter, value float64) Assumptions {
	v := value
	switch p {
	case ParamGrowthRate:
		a.GrowthRate = &v
	case ParamOperatingMargin:
		a.OperatingMargin = &v
	case ParamWACC:
		a.WACC = &v
	case ParamTerminalGrowth:
		a.TerminalGrowthRate = &v
	}
	return a
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func (a Assumptions) years() int {
	if a.ProjectionYears > 0 {
		return a.ProjectionYears
	}
	return DefaultProjectionYears
}

func (a Assumptions) terminalMethod() TerminalMethod {
	if a.TerminalMethod != "" {
		return a.TerminalMethod
	}
	return TerminalPerpetuity
}

func (a Assumptions) exitMultiple() float64 {
	if a.ExitMultiple > 0 {
		return a.ExitMultiple
	}
	return DefaultExitMultiple
}

// Map flattens the overrides actually in effect, for the result's
// assumptions block.
func (a Assumptions) Map() map[string]any {
	m := map[string]any{}
	if a.GrowthRate != nil {
		m["growth_rate"] = *a.GrowthRate
	}
	if a.OperatingMargin != nil {
		m["operating_margin"] = *a.OperatingMargin
	}
	if a.WACC != nil {
		m["wacc"] = *a.WACC
	}
	if a.TerminalGrowthRate != nil {
		m["terminal_growth_rate"] = *a.TerminalGrowthRate
	}
	if a.CapexRatio != nil {
		m["capex_ratio"] = *a.CapexRatio
	}
	if a.WCChangeRatio != nil {
		m["wc_change_ratio"] = *a.WCChangeRatio
	}
	if a.DepreciationRatio != nil {
		m["depreciation_ratio"] = *a.DepreciationRatio
	}
	if a.TerminalMethod != "" {
		m["terminal_method"] = string(a.TerminalMethod)
	}
	return m
}
