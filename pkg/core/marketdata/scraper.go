package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/model"
)

// Scraper extracts comparable tables from HTML listing pages. It is the
// fallback comparable feed for industries the API does not cover;
// parsing is tolerant, a malformed row is skipped rather than failing
// the page.
type Scraper struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewScraper builds a scraper against a listing page template; the
// industry name replaces %s.
func NewScraper(baseURL string, log zerolog.Logger) *Scraper {
	return &Scraper{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("component", "marketdata.scraper").Logger(),
	}
}

// Comparables fetches and parses the industry's listing page.
func (s *Scraper) Comparables(ctx context.Context, industry string) ([]model.Comparable, error) {
	url := fmt.Sprintf(s.baseURL, industry)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", industry, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape %s: status %d", industry, resp.StatusCode)
	}

	comparables, err := ParseComparables(resp.Body)
	if err != nil {
		return nil, err
	}
	for i := range comparables {
		comparables[i].Industry = industry
	}
	s.log.Debug().Str("industry", industry).Int("count", len(comparables)).Msg("scraped comparables")
	return comparables, nil
}

// IndustryMultiples aggregates medians over the scraped set.
func (s *Scraper) IndustryMultiples(ctx context.Context, industry string) (map[string]float64, error) {
	comparables, err := s.Comparables(ctx, industry)
	if err != nil {
		return nil, err
	}
	return aggregateMultiples(comparables), nil
}

// Column headers recognized in listing tables, lowercased.
var headerAliases = map[string]string{
	"name":       "name",
	"company":    "name",
	"code":       "ts_code",
	"symbol":     "ts_code",
	"revenue":    "revenue",
	"net income": "net_income",
	"pe":         "pe",
	"p/e":        "pe",
	"ps":         "ps",
	"p/s":        "ps",
	"pb":         "pb",
	"p/b":        "pb",
	"ev/ebitda":  "ev_ebitda",
}

// ParseComparables reads the first table with a recognizable header row.
// Cells that do not parse as numbers leave the corresponding field unset.
func ParseComparables(r io.Reader) ([]model.Comparable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	var comparables []model.Comparable
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		columns := headerColumns(table)
		if _, ok := columns["name"]; !ok {
			return true // not a comparables table, keep looking
		}
		byIndex := map[int]string{}
		for name, idx := range columns {
			byIndex[idx] = name
		}

		table.Find("tbody tr, tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return // header row
			}
			comp := model.Comparable{}
			cells.Each(func(i int, cell *goquery.Selection) {
				text := strings.TrimSpace(cell.Text())
				switch byIndex[i] {
				case "name":
					comp.Name = text
				case "ts_code":
					comp.TSCode = text
				case "revenue":
					comp.Revenue = parseNumber(text)
				case "net_income":
					comp.NetIncome = parseNumber(text)
				case "pe":
					comp.PERatio = parseMultiple(text)
				case "ps":
					comp.PSRatio = parseMultiple(text)
				case "pb":
					comp.PBRatio = parseMultiple(text)
				case "ev_ebitda":
					comp.EVEBITDA = parseMultiple(text)
				}
			})
			if comp.Name != "" {
				comparables = append(comparables, comp)
			}
		})
		return false // parsed the table we wanted
	})

	return comparables, nil
}

// headerColumns maps recognized field names to their column index.
func headerColumns(table *goquery.Selection) map[string]int {
	columns := map[string]int{}
	table.Find("th").Each(func(i int, th *goquery.Selection) {
		header := strings.ToLower(strings.TrimSpace(th.Text()))
		if field, ok := headerAliases[header]; ok {
			columns[field] = i
		}
	})
	return columns
}

func parseNumber(text string) float64 {
	cleaned := strings.NewReplacer(",", "", "%", "", "x", "").Replace(text)
	v, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseMultiple returns nil for dashes, blanks and non-positive values,
// matching how the API client reports missing multiples.
func parseMultiple(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" || text == "-" || text == "—" || strings.EqualFold(text, "n/a") {
		return nil
	}
	if v := parseNumber(text); v > 0 {
		return &v
	}
	return nil
}
