package scenario

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

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
	"revenue": 10000,
	"net_income": 1500,
	"net_assets": 5000,
	"total_debt": 3000,
	"cash_and_equivalents": 2000,
	"growth_rate": 0.2,
	"operating_margin": 0.25
}`

func TestAnalyzeDefaultScenarios(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	rec, envelope := post(t, h.Analyze, `{"company": `+companyJSON+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	results := envelope["data"].(map[string]any)["results"].(map[string]any)
	scenarios := results["scenarios"].(map[string]any)
	for _, name := range []string{"base", "bull", "bear"} {
		if _, ok := scenarios[name]; !ok {
			t.Errorf("missing scenario %q", name)
		}
	}
	if _, ok := results["statistics"]; !ok {
		t.Error("missing statistics")
	}
}

func TestAnalyzeCustomScenarioNames(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	body := `{
		"company": ` + companyJSON + `,
		"scenarios": [
			{"name": "recession", "revenue_growth_adj": -0.3, "margin_adj": -0.05},
			{"name": "boom", "revenue_growth_adj": 0.3}
		]
	}`

	rec, envelope := post(t, h.Analyze, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	scenarios := envelope["data"].(map[string]any)["results"].(map[string]any)["scenarios"].(map[string]any)
	if len(scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(scenarios))
	}
	boom := scenarios["boom"].(map[string]any)["value"].(float64)
	recession := scenarios["recession"].(map[string]any)["value"].(float64)
	if boom <= recession {
		t.Errorf("boom (%v) should value above recession (%v)", boom, recession)
	}
}

func TestAnalyzeRejectsMissingCompany(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	rec, _ := post(t, h.Analyze, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
