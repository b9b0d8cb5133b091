// Package othermethods implements valuation approaches outside the DCF
// and comparable-multiple families: the venture capital back-solve, cost
// and adjusted net asset methods, transaction comparables, the first
// Chicago weighting and sum-of-parts. These mostly serve early-stage or
// asset-heavy companies where earnings-based methods break down.
package othermethods

import (
	"math"

	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/core/relative"
)

// Method labels carried on results.
const (
	MethodVC            = "vc"
	MethodVCProjection  = "vc_projection"
	MethodCost          = "cost"
	MethodAdjustedAsset = "adjusted_net_asset"
	MethodTransaction   = "transaction_comparable"
	MethodFirstChicago  = "first_chicago"
	MethodSumOfParts    = "sum_of_parts"
)

// VC method defaults.
const (
	DefaultTargetReturnMultiple = 10.0
	DefaultInvestmentYears      = 5
	DefaultTargetPE             = 20.0
)

// VCOptions parameterizes the venture capital back-solve. ExitMultiple,
// when positive, recomputes ExitValuation from projected earnings or
// revenue instead of taking it as given.
type VCOptions struct {
	ExitValuation        float64 `json:"exit_valuation"`
	TargetReturnMultiple float64 `json:"target_return_multiple"`
	InvestmentYears      int     `json:"investment_years"`
	ExitMethod           string  `json:"exit_method"`
	ExitMultiple         float64 `json:"exit_multiple,omitempty"`
}

// VCMethod back-solves the current post-money valuation from the
// expected exit valuation and the investor's target return multiple.
//
// FORMULA: current = exit_valuation / target_return_multiple
func VCMethod(c *model.Company, opts VCOptions) (*model.ValuationResult, error) {
	if opts.TargetReturnMultiple <= 0 {
		opts.TargetReturnMultiple = DefaultTargetReturnMultiple
	}
	if opts.InvestmentYears <= 0 {
		opts.InvestmentYears = DefaultInvestmentYears
	}
	if opts.ExitMethod == "" {
		opts.ExitMethod = relative.MethodPE
	}

	exitValuation := opts.ExitValuation
	if opts.ExitMultiple > 0 {
		growth := math.Pow(1+c.GrowthRate, float64(opts.InvestmentYears))
		switch {
		case opts.ExitMethod == relative.MethodPE && c.NetIncome > 0:
			exitValuation = c.NetIncome * growth * opts.ExitMultiple
		case opts.ExitMethod == relative.MethodPS && c.Revenue > 0:
			exitValuation = c.Revenue * growth * opts.ExitMultiple
		}
	}
	if exitValuation <= 0 {
		return nil, &model.ValidationError{Field: "exit_valuation", Message: "exit valuation must be positive"}
	}

	current := exitValuation / opts.TargetReturnMultiple

	res := model.NewResult(MethodVC, current)
	res.Details = map[string]any{
		"exit_valuation":         exitValuation,
		"target_return_multiple": opts.TargetReturnMultiple,
		"investment_years":       opts.InvestmentYears,
		"exit_method":            opts.ExitMethod,
		"exit_multiple":          opts.ExitMultiple,
		"implied_irr":            math.Pow(opts.TargetReturnMultiple, 1/float64(opts.InvestmentYears)) - 1,
	}
	res.Assumptions = map[string]any{"growth_rate": c.GrowthRate}
	return res, nil
}

// VCMethodWithProjection projects net income forward at the company's
// growth rate (optionally compounding an annual margin improvement),
// applies a target exit P/E, and back-solves as VCMethod does.
func VCMethodWithProjection(c *model.Company, projectionYears int, targetPE, targetReturnMultiple, marginImprovement float64) (*model.ValuationResult, error) {
	if c.NetIncome <= 0 {
		return nil, &model.ValidationError{Field: "net_income", Message: "projection requires positive net income"}
	}
	if projectionYears <= 0 {
		projectionYears = DefaultInvestmentYears
	}
	if targetPE <= 0 {
		targetPE = DefaultTargetPE
	}
	if targetReturnMultiple <= 0 {
		targetReturnMultiple = DefaultTargetReturnMultiple
	}

	futureNetIncome := c.NetIncome
	for i := 0; i < projectionYears; i++ {
		futureNetIncome *= 1 + c.GrowthRate
		if marginImprovement > 0 {
			futureNetIncome *= 1 + marginImprovement
		}
	}

	exitValuation := futureNetIncome * targetPE
	current := exitValuation / targetReturnMultiple

	res := model.NewResult(MethodVCProjection, current)
	res.Details = map[string]any{
		"future_net_income":      futureNetIncome,
		"target_pe":              targetPE,
		"exit_valuation":         exitValuation,
		"target_return_multiple": targetReturnMultiple,
		"projection_years":       projectionYears,
	}
	res.Assumptions = map[string]any{
		"growth_rate":        c.GrowthRate,
		"margin_improvement": marginImprovement,
	}
	return res, nil
}

// CostMethod values the company off its net asset base plus appraised
// intangibles and goodwill, scaled by an adjustment factor. Suited to
// asset-intensive businesses.
func CostMethod(c *model.Company, intangibles, goodwill, adjustmentFactor float64) (*model.ValuationResult, error) {
	if c.NetAssets <= 0 {
		return nil, &model.ValidationError{Field: "net_assets", Message: "net asset data required"}
	}
	if adjustmentFactor <= 0 {
		adjustmentFactor = 1.0
	}

	adjusted := c.NetAssets + intangibles + goodwill
	value := adjusted * adjustmentFactor

	res := model.NewResult(MethodCost, value)
	res.Details = map[string]any{
		"net_assets":             c.NetAssets,
		"intangible_asset_value": intangibles,
		"goodwill_value":         goodwill,
		"adjusted_net_assets":    adjusted,
		"adjustment_factor":      adjustmentFactor,
		"price_to_book_ratio":    value / c.NetAssets,
	}
	return res, nil
}

// AdjustedNetAssetMethod restates each asset and liability line to fair
// value. Asset adjustments add, liability adjustments subtract.
func AdjustedNetAssetMethod(c *model.Company, assetAdjustments, liabilityAdjustments map[string]float64) (*model.ValuationResult, error) {
	if c.NetAssets <= 0 {
		return nil, &model.ValidationError{Field: "net_assets", Message: "net asset data required"}
	}

	var totalAssetAdj, totalLiabilityAdj float64
	for _, v := range assetAdjustments {
		totalAssetAdj += v
	}
	for _, v := range liabilityAdjustments {
		totalLiabilityAdj += v
	}

	adjusted := c.NetAssets + totalAssetAdj - totalLiabilityAdj

	res := model.NewResult(MethodAdjustedAsset, adjusted)
	res.Details = map[string]any{
		"original_net_assets":        c.NetAssets,
		"asset_adjustments":          assetAdjustments,
		"liability_adjustments":      liabilityAdjustments,
		"total_asset_adjustment":     totalAssetAdj,
		"total_liability_adjustment": totalLiabilityAdj,
		"adjusted_net_assets":        adjusted,
	}
	return res, nil
}

// Transaction is one observed deal in the target's market.
type Transaction struct {
	CompanyName string  `json:"company_name"`
	DealValue   float64 `json:"deal_value"`
	MetricValue float64 `json:"metric_value"`
	Multiple    float64 `json:"multiple"`
	DealDate    string  `json:"deal_date,omitempty"`
	Stage       string  `json:"stage,omitempty"`
}

// TransactionComparable applies the median multiple from recent deals to
// the target's net income, falling back to revenue for loss-makers.
func TransactionComparable(c *model.Company, transactions []Transaction) (*model.ValuationResult, error) {
	if len(transactions) == 0 {
		return nil, &model.ValidationError{Field: "transactions", Message: "transaction data required"}
	}

	multiples := make([]float64, 0, len(transactions))
	for _, t := range transactions {
		if t.Multiple > 0 {
			multiples = append(multiples, t.Multiple)
		}
	}
	if len(multiples) == 0 {
		return nil, &model.ValidationError{Field: "transactions", Message: "no transaction carries a multiple"}
	}

	var sum float64
	for _, m := range multiples {
		sum += m
	}
	avg := sum / float64(len(multiples))
	median := relative.Median(multiples)

	var metricValue float64
	var metricName string
	switch {
	case c.NetIncome > 0:
		metricValue, metricName = c.NetIncome, "net_income"
	case c.Revenue > 0:
		metricValue, metricName = c.Revenue, "revenue"
	default:
		return nil, &model.ValidationError{Field: "company", Message: "no usable financial metric for transaction comparison"}
	}

	minM, maxM := multiples[0], multiples[0]
	for _, m := range multiples[1:] {
		if m < minM {
			minM = m
		}
		if m > maxM {
			maxM = m
		}
	}

	res := model.NewResult(MethodTransaction, metricValue*median)
	res.Details = map[string]any{
		"transaction_count": len(transactions),
		"avg_multiple":      avg,
		"median_multiple":   median,
		"multiple_min":      minM,
		"multiple_max":      maxM,
		"metric_used":       metricName,
		"metric_value":      metricValue,
	}
	return res, nil
}

// FirstChicagoMethod weights a success and a failure outcome by the
// probability of success, for early-stage binary-risk companies.
func FirstChicagoMethod(successValue, failureValue, probabilityOfSuccess float64) (*model.ValuationResult, error) {
	if probabilityOfSuccess < 0 || probabilityOfSuccess > 1 {
		return nil, &model.ValidationError{Field: "probability_of_success", Message: "probability must be in [0, 1]"}
	}

	expected := successValue*probabilityOfSuccess + failureValue*(1-probabilityOfSuccess)

	res := model.NewResult(MethodFirstChicago, expected)
	res.Details = map[string]any{
		"success_value":          successValue,
		"failure_value":          failureValue,
		"probability_of_success": probabilityOfSuccess,
	}
	return res, nil
}

// BusinessUnit is one line of a sum-of-parts valuation. Value, when set,
// wins over Revenue × Multiple.
type BusinessUnit struct {
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue,omitempty"`
	Multiple float64 `json:"multiple,omitempty"`
	Value    float64 `json:"value,omitempty"`
}

// Fraction of the summed parts deducted for unallocated corporate cost.
const corporateDiscountRate = 0.10

// SumOfParts values each business unit independently, sums them, and
// deducts a corporate-level discount. Units with neither a direct value
// nor a revenue/multiple pair are skipped.
func SumOfParts(units []BusinessUnit) (*model.ValuationResult, error) {
	var partsValue float64
	valued := make([]map[string]any, 0, len(units))

	for _, u := range units {
		var unitValue float64
		switch {
		case u.Value > 0:
			unitValue = u.Value
		case u.Revenue > 0 && u.Multiple > 0:
			unitValue = u.Revenue * u.Multiple
		default:
			continue
		}
		partsValue += unitValue
		valued = append(valued, map[string]any{
			"name":     u.Name,
			"value":    unitValue,
			"revenue":  u.Revenue,
			"multiple": u.Multiple,
		})
	}
	if len(valued) == 0 {
		return nil, &model.ValidationError{Field: "business_units", Message: "no business unit could be valued"}
	}

	discount := partsValue * corporateDiscountRate

	res := model.NewResult(MethodSumOfParts, partsValue-discount)
	res.Details = map[string]any{
		"parts_value":        partsValue,
		"corporate_discount": discount,
		"business_units":     valued,
	}
	return res, nil
}

// RecommendedMethods maps a company stage to the valuation methods that
// suit it, for presentation alongside results.
func RecommendedMethods(stage model.Stage) []string {
	switch stage {
	case model.StageEarly:
		return []string{MethodVC, MethodTransaction}
	case model.StageGrowth:
		return []string{relative.MethodPS, "DCF", MethodVC}
	case model.StageMature:
		return []string{relative.MethodPE, "DCF", relative.MethodEV}
	default:
		return []string{relative.MethodPE, relative.MethodPB, relative.MethodEV, "DCF"}
	}
}
