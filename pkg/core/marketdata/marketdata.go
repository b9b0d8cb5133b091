// Package marketdata supplies comparable-company records and raw
// financials from external sources. The engine depends only on the
// Source interface; the HTTP client and the HTML scraper are
// interchangeable behind it, and a static in-memory source backs tests
// and offline CLI runs.
//
// Sources are expected to return partial records: a comparable with no
// usable multiple is still returned and left for the valuation layer's
// skip-not-fail policy to deal with.
package marketdata

import (
	"context"
	"sort"
	"strings"

	"privco_valuation/pkg/core/model"
	"privco_valuation/pkg/core/relative"
)

// Source is the engine's view of a market data provider.
type Source interface {
	// Comparables returns comparable companies for an industry
	// classifier. Missing multiples come back as nil pointers, never as
	// an error.
	Comparables(ctx context.Context, industry string) ([]model.Comparable, error)

	// IndustryMultiples aggregates the median multiple per method across
	// an industry's comparables. Methods with no usable observations are
	// absent from the map.
	IndustryMultiples(ctx context.Context, industry string) (map[string]float64, error)

	// CompanyFinancials looks up one listed company by its exchange code
	// and returns its financial record with multiples filled. A nil
	// record with a nil error means the provider does not know the code.
	CompanyFinancials(ctx context.Context, tsCode string) (*model.Comparable, error)

	// Search matches listed companies whose names contain any of the
	// keywords, capped at limit records.
	Search(ctx context.Context, keywords []string, limit int) ([]model.Comparable, error)
}

// StaticSource serves a fixed comparable set, keyed by industry. Used by
// the CLI's offline mode and throughout the tests.
type StaticSource struct {
	ByIndustry map[string][]model.Comparable
}

// Comparables returns the configured set for the industry; an unknown
// industry yields an empty slice, consistent with the tolerant contract.
func (s *StaticSource) Comparables(_ context.Context, industry string) ([]model.Comparable, error) {
	return s.ByIndustry[industry], nil
}

// IndustryMultiples computes medians over the static set.
func (s *StaticSource) IndustryMultiples(_ context.Context, industry string) (map[string]float64, error) {
	return aggregateMultiples(s.ByIndustry[industry]), nil
}

// CompanyFinancials scans every industry for a matching exchange code.
func (s *StaticSource) CompanyFinancials(_ context.Context, tsCode string) (*model.Comparable, error) {
	for _, comparables := range s.ByIndustry {
		for i := range comparables {
			if comparables[i].TSCode == tsCode {
				comp := comparables[i]
				return &comp, nil
			}
		}
	}
	return nil, nil
}

// Search returns static entries whose names contain any keyword, sorted
// by name so the result order does not depend on map iteration.
func (s *StaticSource) Search(_ context.Context, keywords []string, limit int) ([]model.Comparable, error) {
	var out []model.Comparable
	for _, comparables := range s.ByIndustry {
		for _, comp := range comparables {
			if matchesAnyKeyword(comp.Name, keywords) {
				out = append(out, comp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matchesAnyKeyword(name string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func aggregateMultiples(comparables []model.Comparable) map[string]float64 {
	collect := func(pick func(model.Comparable) *float64) []float64 {
		var vals []float64
		for _, c := range comparables {
			if v := pick(c); v != nil && *v > 0 {
				vals = append(vals, *v)
			}
		}
		return vals
	}

	out := map[string]float64{}
	if vals := collect(func(c model.Comparable) *float64 { return c.PERatio }); len(vals) > 0 {
		out["pe_ratio"] = relative.Median(vals)
	}
	if vals := collect(func(c model.Comparable) *float64 { return c.PSRatio }); len(vals) > 0 {
		out["ps_ratio"] = relative.Median(vals)
	}
	if vals := collect(func(c model.Comparable) *float64 { return c.PBRatio }); len(vals) > 0 {
		out["pb_ratio"] = relative.Median(vals)
	}
	if vals := collect(func(c model.Comparable) *float64 { return c.EVEBITDA }); len(vals) > 0 {
		out["ev_ebitda"] = relative.Median(vals)
	}
	return out
}
