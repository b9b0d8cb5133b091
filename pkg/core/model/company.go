// Package model defines the value objects shared by every valuation and
// risk-analysis component: companies, comparables, results, and the
// configuration bundles the analyses consume.
//
// All entities are created per request and never mutated by the engine;
// analyses derive overridden copies instead of writing back.
package model

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Stage classifies a company's development phase. It drives the automatic
// method selection in the valuation engine (early companies rarely have
// positive earnings, so P/E is a poor fit there).
type Stage string

const (
	StageEarly  Stage = "early"
	StageGrowth Stage = "growth"
	StageMature Stage = "mature"
	StageListed Stage = "listed"
)

var validate = validator.New()

// Company holds the subject company's financials and the forecast
// parameters the DCF kernel needs. Monetary fields share one currency unit;
// all rates are fractional (0.15 == 15%), never percentages.
//
// Zero-valued assumption fields are filled with the documented defaults by
// ApplyDefaults. NetIncome is the one monetary field allowed to be negative:
// loss-making companies are a normal input and the relative-valuation skip
// policy depends on seeing the real sign.
type Company struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Industry string `json:"industry" yaml:"industry"`
	Stage    Stage  `json:"stage" yaml:"stage" default:"growth" validate:"omitempty,oneof=early growth mature listed"`

	// Financials, most recent fiscal year.
	Revenue            float64 `json:"revenue" yaml:"revenue" validate:"gte=0"`
	NetIncome          float64 `json:"net_income" yaml:"net_income"`
	NetAssets          float64 `json:"net_assets" yaml:"net_assets" validate:"gte=0"`
	EBITDA             float64 `json:"ebitda" yaml:"ebitda" validate:"gte=0"`
	TotalDebt          float64 `json:"total_debt" yaml:"total_debt" validate:"gte=0"`
	CashAndEquivalents float64 `json:"cash_and_equivalents" yaml:"cash_and_equivalents" validate:"gte=0"`

	// Forecast assumptions.
	GrowthRate      float64 `json:"growth_rate" yaml:"growth_rate" default:"0.15"`
	OperatingMargin float64 `json:"operating_margin" yaml:"operating_margin" default:"0.2" validate:"gte=0,lt=1"`
	TaxRate         float64 `json:"tax_rate" yaml:"tax_rate" default:"0.25" validate:"gte=0,lt=1"`

	// Cost-of-capital inputs.
	Beta              float64 `json:"beta" yaml:"beta" default:"1.0"`
	RiskFreeRate      float64 `json:"risk_free_rate" yaml:"risk_free_rate" default:"0.03" validate:"gte=0"`
	MarketRiskPremium float64 `json:"market_risk_premium" yaml:"market_risk_premium" default:"0.07" validate:"gte=0"`
	CostOfDebt        float64 `json:"cost_of_debt" yaml:"cost_of_debt" default:"0.05" validate:"gte=0"`
	TargetDebtRatio   float64 `json:"target_debt_ratio" yaml:"target_debt_ratio" default:"0.3" validate:"gte=0,lte=1"`

	// Terminal-value input.
	TerminalGrowthRate float64 `json:"terminal_growth_rate" yaml:"terminal_growth_rate" default:"0.025" validate:"gte=0"`
}

// ApplyDefaults fills zero-valued assumption fields with the documented
// defaults. An operating margin of exactly zero is treated as "unknown" and
// defaulted, matching the upstream data source's convention.
func (c *Company) ApplyDefaults() error {
	return defaults.Set(c)
}

// Validate rejects structurally invalid input before any computation runs.
func (c *Company) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return &ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
			}
		}
		return err
	}
	return nil
}

// NetDebt is total debt net of cash. Negative net debt (cash-rich company)
// is valid and increases equity value.
func (c *Company) NetDebt() float64 {
	return c.TotalDebt - c.CashAndEquivalents
}

// Comparable is a peer company observed in the market, carrying the same
// financial shape as Company plus its observed valuation multiples.
// A nil multiple means the market does not price that ratio for this peer
// (negative earnings, missing disclosure); consumers must skip, not fail.
type Comparable struct {
	Name     string `json:"name" yaml:"name"`
	TSCode   string `json:"ts_code,omitempty" yaml:"ts_code,omitempty"`
	Industry string `json:"industry,omitempty" yaml:"industry,omitempty"`

	MarketCap float64 `json:"market_cap,omitempty" yaml:"market_cap,omitempty"`
	Revenue   float64 `json:"revenue" yaml:"revenue"`
	NetIncome float64 `json:"net_income" yaml:"net_income"`
	NetAssets float64 `json:"net_assets" yaml:"net_assets"`
	EBITDA    float64 `json:"ebitda,omitempty" yaml:"ebitda,omitempty"`

	PERatio  *float64 `json:"pe_ratio,omitempty" yaml:"pe_ratio,omitempty"`
	PSRatio  *float64 `json:"ps_ratio,omitempty" yaml:"ps_ratio,omitempty"`
	PBRatio  *float64 `json:"pb_ratio,omitempty" yaml:"pb_ratio,omitempty"`
	EVEBITDA *float64 `json:"ev_ebitda,omitempty" yaml:"ev_ebitda,omitempty"`

	GrowthRate float64 `json:"growth_rate,omitempty" yaml:"growth_rate,omitempty"`
}

// Float is a convenience for building optional fields in literals and tests.
func Float(v float64) *float64 { return &v }
