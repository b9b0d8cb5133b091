package valuation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/engine"
)

func newHandler() *Handler {
	eng := engine.New(nil, zerolog.Nop())
	return NewHandler(eng, nil, zerolog.Nop())
}

func post(t *testing.T, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return rec, envelope
}

const companyJSON = `{
	"name": "TechCo",
	"industry": "software",
	"stage": "growth",
	"revenue": 10000,
	"net_income": 1500,
	"net_assets": 5000,
	"ebitda": 2000,
	"total_debt": 3000,
	"cash_and_equivalents": 2000,
	"growth_rate": 0.2,
	"operating_margin": 0.25
}`

func TestRelativeReturnsPerMethodResults(t *testing.T) {
	body := `{
		"company": ` + companyJSON + `,
		"comparables": [
			{"name": "PeerA", "revenue": 50000, "net_income": 8000, "net_assets": 30000,
			 "pe_ratio": 20, "ps_ratio": 4, "pb_ratio": 3},
			{"name": "PeerB", "revenue": 40000, "net_income": 5000, "net_assets": 20000,
			 "pe_ratio": 24, "ps_ratio": 5, "pb_ratio": 4}
		]
	}`

	rec, envelope := post(t, newHandler().Relative, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	data := envelope["data"].(map[string]any)
	if data["company"] != "TechCo" {
		t.Errorf("company = %v", data["company"])
	}
	results := data["results"].(map[string]any)
	for _, method := range []string{"PE", "PS", "PB", "composite"} {
		if _, ok := results[method]; !ok {
			t.Errorf("missing %s result, got keys %v", method, results)
		}
	}
}

func TestRelativeRejectsEmptyComparables(t *testing.T) {
	rec, _ := post(t, newHandler().Relative, `{"company": `+companyJSON+`, "comparables": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAbsoluteReturnsPositiveValue(t *testing.T) {
	rec, envelope := post(t, newHandler().Absolute, `{"company": `+companyJSON+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	data := envelope["data"].(map[string]any)
	result := data["result"].(map[string]any)
	if v := result["value"].(float64); v <= 0 {
		t.Errorf("value = %v, want > 0", v)
	}
}

func TestAbsoluteRejectsDegenerateWACC(t *testing.T) {
	body := `{"company": {
		"name": "BadCo", "revenue": 1000, "net_income": 100,
		"risk_free_rate": 0.01, "market_risk_premium": 0.001, "beta": 0.1,
		"cost_of_debt": 0.01, "terminal_growth_rate": 0.05
	}}`

	rec, _ := post(t, newHandler().Absolute, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestCompareIncludesRecommendation(t *testing.T) {
	body := `{
		"company": ` + companyJSON + `,
		"comparables": [
			{"name": "PeerA", "revenue": 50000, "net_income": 8000, "net_assets": 30000,
			 "pe_ratio": 20, "ps_ratio": 4}
		]
	}`

	rec, envelope := post(t, newHandler().Compare, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	data := envelope["data"].(map[string]any)
	recommendation, ok := data["recommendation"].(map[string]any)
	if !ok {
		t.Fatalf("missing recommendation in %v", data)
	}
	if v := recommendation["final_value"].(float64); v <= 0 {
		t.Errorf("final_value = %v, want > 0", v)
	}
	if _, ok := data["stress_test"]; ok {
		t.Error("compare should not run the risk analyses")
	}
}

const segmentsJSON = `[
	{"name": "Cloud", "current_revenue": 6000, "revenue_weight": 0.6,
	 "growth_rate_years": [0.3, 0.25, 0.2, 0.15, 0.1]},
	{"name": "Hardware", "current_revenue": 4000, "revenue_weight": 0.4,
	 "growth_rate_years": [0.05, 0.05, 0.05, 0.05, 0.05]}
]`

func TestMultiProductSumsSegments(t *testing.T) {
	body := `{
		"company_name": "TechCo",
		"industry": "software",
		"products": ` + segmentsJSON + `,
		"total_debt": 3000,
		"cash_and_equivalents": 2000
	}`

	rec, envelope := post(t, newHandler().MultiProduct, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	data := envelope["data"].(map[string]any)
	result := data["result"].(map[string]any)
	totalEV := result["total_enterprise_value"].(float64)
	if totalEV <= 0 {
		t.Fatalf("total_enterprise_value = %v, want > 0", totalEV)
	}
	if eq := result["total_equity_value"].(float64); eq != totalEV-1000 {
		t.Errorf("equity = %v, want EV minus net debt %v", eq, totalEV-1000)
	}

	breakdown := result["value_breakdown"].(map[string]any)
	if len(breakdown) != 2 {
		t.Errorf("breakdown has %d segments, want 2", len(breakdown))
	}
	sum := 0.0
	for _, v := range breakdown {
		sum += v.(float64)
	}
	if diff := sum - totalEV; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("segment values sum to %v, total is %v", sum, totalEV)
	}

	contributions := data["contributions"].([]any)
	if len(contributions) != 2 {
		t.Fatalf("got %d contributions, want 2", len(contributions))
	}
	first := contributions[0].(map[string]any)["contribution"].(float64)
	second := contributions[1].(map[string]any)["contribution"].(float64)
	if first < second {
		t.Errorf("contributions not ranked: %v before %v", first, second)
	}
}

func TestMultiProductRejectsBadWeights(t *testing.T) {
	body := `{
		"company_name": "TechCo",
		"products": [
			{"name": "Cloud", "current_revenue": 6000, "revenue_weight": 0.9},
			{"name": "Hardware", "current_revenue": 4000, "revenue_weight": 0.6}
		]
	}`

	rec, _ := post(t, newHandler().MultiProduct, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMultiProductRejectsEmptySegments(t *testing.T) {
	rec, _ := post(t, newHandler().MultiProduct, `{"company_name": "TechCo", "products": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
