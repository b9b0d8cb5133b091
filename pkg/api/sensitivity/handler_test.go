package sensitivity

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

func TestOneWaySweep(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	body := `{"company": ` + companyJSON + `, "parameter": "growth_rate", "min": 0.05, "max": 0.35, "steps": 7}`

	rec, envelope := post(t, h.OneWay, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	result := envelope["data"].(map[string]any)["result"].(map[string]any)
	values := result["param_values"].([]any)
	if len(values) != 7 {
		t.Fatalf("got %d sweep points, want 7", len(values))
	}
	if result["parameter"] != "growth_rate" {
		t.Errorf("parameter = %v", result["parameter"])
	}
}

func TestOneWayRejectsUnknownParameter(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	rec, _ := post(t, h.OneWay, `{"company": `+companyJSON+`, "parameter": "beta"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOneWayRejectsHalfOpenRange(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	rec, _ := post(t, h.OneWay, `{"company": `+companyJSON+`, "parameter": "wacc", "min": 0.05}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTornadoRanksAllParameters(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	rec, envelope := post(t, h.Tornado, `{"company": `+companyJSON+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	entries := envelope["data"].(map[string]any)["entries"].([]any)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	prev := entries[0].(map[string]any)["max_impact"].(float64)
	for _, e := range entries[1:] {
		cur := e.(map[string]any)["max_impact"].(float64)
		if cur > prev {
			t.Error("entries not sorted by impact")
		}
		prev = cur
	}
}

func TestComprehensiveIncludesTornado(t *testing.T) {
	h := NewHandler(zerolog.Nop())
	rec, envelope := post(t, h.Comprehensive, `{"company": `+companyJSON+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	results := envelope["data"].(map[string]any)["results"].(map[string]any)
	if _, ok := results["tornado_chart"]; !ok {
		t.Error("missing tornado section")
	}
	if _, ok := results["parameters"]; !ok {
		t.Error("missing parameters section")
	}
}
