package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/model"
)

const (
	defaultAPIURL = "http://api.tushare.pro"
	userAgent     = "privco-valuation data-client"

	// Upstream rows are fetched in one page; the API caps daily_basic at
	// a few thousand rows which is plenty for one industry.
	comparableLimit = 50
)

// Client pulls comparables from a tushare-style JSON API: one POST
// endpoint, an api_name discriminator, token auth, and a columnar
// fields/items response.
type Client struct {
	apiURL string
	token  string
	client *http.Client
	log    zerolog.Logger
}

// NewClient builds a client against the default endpoint.
func NewClient(token string, log zerolog.Logger) *Client {
	return &Client{
		apiURL: defaultAPIURL,
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log.With().Str("component", "marketdata").Logger(),
	}
}

// WithEndpoint points the client at a non-default API URL; servers for
// tests and regional mirrors.
func (c *Client) WithEndpoint(url string) *Client {
	c.apiURL = url
	return c
}

type apiRequest struct {
	APIName string         `json:"api_name"`
	Token   string         `json:"token"`
	Params  map[string]any `json:"params,omitempty"`
	Fields  string         `json:"fields,omitempty"`
}

type apiResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Fields []string `json:"fields"`
		Items  [][]any  `json:"items"`
	} `json:"data"`
}

// call posts one API request and decodes the columnar payload into
// per-row field maps.
func (c *Client) call(ctx context.Context, apiName string, params map[string]any, fields string) ([]map[string]any, error) {
	body, err := json.Marshal(apiRequest{APIName: apiName, Token: c.token, Params: params, Fields: fields})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market data request %s: %w", apiName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("market data request %s: status %d", apiName, resp.StatusCode)
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("market data decode %s: %w", apiName, err)
	}
	if decoded.Code != 0 {
		return nil, fmt.Errorf("market data api %s: %s", apiName, decoded.Msg)
	}

	rows := make([]map[string]any, 0, len(decoded.Data.Items))
	for _, item := range decoded.Data.Items {
		row := map[string]any{}
		for i, field := range decoded.Data.Fields {
			if i < len(item) {
				row[field] = item[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowString(row map[string]any, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

func rowFloat(row map[string]any, key string) float64 {
	if v, ok := row[key].(float64); ok {
		return v
	}
	return 0
}

// rowMultiple treats null, absent and non-positive upstream values as a
// missing multiple.
func rowMultiple(row map[string]any, key string) *float64 {
	if v, ok := row[key].(float64); ok && v > 0 {
		return &v
	}
	return nil
}

// Comparables lists an industry's companies with their valuation
// multiples. Rows missing some or all multiples are kept; the valuation
// layer decides what is usable.
func (c *Client) Comparables(ctx context.Context, industry string) ([]model.Comparable, error) {
	rows, err := c.call(ctx, "stock_basic",
		map[string]any{"list_status": "L", "industry": industry},
		"ts_code,name,industry")
	if err != nil {
		return nil, err
	}
	if len(rows) > comparableLimit {
		rows = rows[:comparableLimit]
	}

	comparables := make([]model.Comparable, 0, len(rows))
	for _, row := range rows {
		comp := model.Comparable{
			Name:     rowString(row, "name"),
			TSCode:   rowString(row, "ts_code"),
			Industry: rowString(row, "industry"),
		}
		if err := c.fillFinancials(ctx, &comp); err != nil {
			// partial data is expected from this provider; keep the
			// bare record rather than dropping the comparable
			c.log.Warn().Err(err).Str("ts_code", comp.TSCode).Msg("financials unavailable")
		}
		comparables = append(comparables, comp)
	}

	c.log.Debug().Str("industry", industry).Int("count", len(comparables)).Msg("fetched comparables")
	return comparables, nil
}

// fillFinancials enriches one comparable with income-statement figures
// and trading multiples.
func (c *Client) fillFinancials(ctx context.Context, comp *model.Comparable) error {
	income, err := c.call(ctx, "income",
		map[string]any{"ts_code": comp.TSCode},
		"ts_code,revenue,n_income")
	if err != nil {
		return err
	}
	if len(income) > 0 {
		comp.Revenue = rowFloat(income[0], "revenue")
		comp.NetIncome = rowFloat(income[0], "n_income")
	}

	basic, err := c.call(ctx, "daily_basic",
		map[string]any{"ts_code": comp.TSCode},
		"ts_code,pe_ttm,ps_ttm,pb,total_mv")
	if err != nil {
		return err
	}
	if len(basic) > 0 {
		comp.PERatio = rowMultiple(basic[0], "pe_ttm")
		comp.PSRatio = rowMultiple(basic[0], "ps_ttm")
		comp.PBRatio = rowMultiple(basic[0], "pb")
		comp.MarketCap = rowFloat(basic[0], "total_mv")
	}
	return nil
}

// CompanyFinancials resolves one exchange code through stock_basic and
// fills its financial record, balance sheet included. Nil when the code
// is unknown upstream.
func (c *Client) CompanyFinancials(ctx context.Context, tsCode string) (*model.Comparable, error) {
	rows, err := c.call(ctx, "stock_basic",
		map[string]any{"ts_code": tsCode, "list_status": "L"},
		"ts_code,name,industry")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	comp := model.Comparable{
		Name:     rowString(rows[0], "name"),
		TSCode:   rowString(rows[0], "ts_code"),
		Industry: rowString(rows[0], "industry"),
	}
	if err := c.fillFinancials(ctx, &comp); err != nil {
		return nil, err
	}

	balance, err := c.call(ctx, "balancesheet",
		map[string]any{"ts_code": tsCode},
		"ts_code,total_hldr_eqy_exc_min_int")
	if err != nil {
		return nil, err
	}
	if len(balance) > 0 {
		comp.NetAssets = rowFloat(balance[0], "total_hldr_eqy_exc_min_int")
	}
	return &comp, nil
}

// Search scans the full listing for names containing any keyword; the
// upstream API has no keyword filter, so matching happens client-side
// and financials are fetched only for the matches.
func (c *Client) Search(ctx context.Context, keywords []string, limit int) ([]model.Comparable, error) {
	rows, err := c.call(ctx, "stock_basic",
		map[string]any{"list_status": "L"},
		"ts_code,name,industry")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	var out []model.Comparable
	for _, row := range rows {
		name := rowString(row, "name")
		if !matchesAnyKeyword(name, keywords) {
			continue
		}
		comp := model.Comparable{
			Name:     name,
			TSCode:   rowString(row, "ts_code"),
			Industry: rowString(row, "industry"),
		}
		if err := c.fillFinancials(ctx, &comp); err != nil {
			c.log.Warn().Err(err).Str("ts_code", comp.TSCode).Msg("financials unavailable")
		}
		out = append(out, comp)
		if len(out) == limit {
			break
		}
	}

	c.log.Debug().Strs("keywords", keywords).Int("count", len(out)).Msg("keyword search")
	return out, nil
}

// IndustryMultiples aggregates median multiples across the industry's
// comparable set.
func (c *Client) IndustryMultiples(ctx context.Context, industry string) (map[string]float64, error) {
	comparables, err := c.Comparables(ctx, industry)
	if err != nil {
		return nil, err
	}
	return aggregateMultiples(comparables), nil
}
