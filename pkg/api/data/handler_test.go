package data

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/marketdata"
	"privco_valuation/pkg/core/model"
)

func staticSource() *marketdata.StaticSource {
	return &marketdata.StaticSource{
		ByIndustry: map[string][]model.Comparable{
			"software": {
				{Name: "PeerA", TSCode: "600001.SH", Revenue: 50000, NetIncome: 8000, NetAssets: 30000, PERatio: model.Float(20), PSRatio: model.Float(4)},
				{Name: "PeerB", TSCode: "600002.SH", Revenue: 40000, NetIncome: 5000, NetAssets: 20000, PERatio: model.Float(24), PSRatio: model.Float(5)},
				{Name: "PeerC", TSCode: "600003.SH", Revenue: 30000, NetIncome: 4000, NetAssets: 15000, PERatio: model.Float(28)},
			},
		},
	}
}

func get(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return rec, envelope
}

func TestComparablesByIndustry(t *testing.T) {
	h := NewHandler(staticSource(), zerolog.Nop())
	rec, envelope := get(t, h, "/api/data/comparable/software")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	data := envelope["data"].(map[string]any)
	if data["count"].(float64) != 3 {
		t.Errorf("count = %v, want 3", data["count"])
	}
}

func TestComparablesLimitApplied(t *testing.T) {
	h := NewHandler(staticSource(), zerolog.Nop())
	rec, envelope := get(t, h, "/api/data/comparable/software?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	data := envelope["data"].(map[string]any)
	if got := len(data["companies"].([]any)); got != 2 {
		t.Errorf("got %d companies, want 2", got)
	}
}

func TestComparablesUnknownIndustry(t *testing.T) {
	h := NewHandler(staticSource(), zerolog.Nop())
	rec, _ := get(t, h, "/api/data/comparable/biotech")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestComparablesWithoutSource(t *testing.T) {
	h := NewHandler(nil, zerolog.Nop())
	rec, _ := get(t, h, "/api/data/comparable/software")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func post(t *testing.T, h *Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var envelope map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return rec, envelope
}

func TestCompanyFinancialsByCode(t *testing.T) {
	h := NewHandler(staticSource(), zerolog.Nop())
	rec, envelope := get(t, h, "/api/data/company/600002.SH")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	data := envelope["data"].(map[string]any)
	if data["name"] != "PeerB" {
		t.Errorf("name = %v, want PeerB", data["name"])
	}
	if data["revenue"].(float64) != 40000 {
		t.Errorf("revenue = %v, want 40000", data["revenue"])
	}
	if data["pe_ratio"].(float64) != 24 {
		t.Errorf("pe_ratio = %v, want 24", data["pe_ratio"])
	}
}

func TestCompanyFinancialsUnknownCode(t *testing.T) {
	h := NewHandler(staticSource(), zerolog.Nop())
	rec, _ := get(t, h, "/api/data/company/000000.SZ")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCompanyFinancialsWithoutSource(t *testing.T) {
	h := NewHandler(nil, zerolog.Nop())
	rec, _ := get(t, h, "/api/data/company/600001.SH")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchByKeyword(t *testing.T) {
	h := NewHandler(staticSource(), zerolog.Nop())
	rec, envelope := post(t, h, "/api/data/search", `{"keywords":["PeerA","PeerC"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	data := envelope["data"].(map[string]any)
	if data["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", data["count"])
	}
	companies := data["companies"].([]any)
	if companies[0].(map[string]any)["name"] != "PeerA" {
		t.Errorf("first match = %v, want PeerA", companies[0])
	}
}

func TestSearchLimitApplied(t *testing.T) {
	h := NewHandler(staticSource(), zerolog.Nop())
	rec, envelope := post(t, h, "/api/data/search", `{"keywords":["Peer"],"limit":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	data := envelope["data"].(map[string]any)
	if got := len(data["companies"].([]any)); got != 1 {
		t.Errorf("got %d companies, want 1", got)
	}
}

func TestSearchRejectsEmptyKeywords(t *testing.T) {
	h := NewHandler(staticSource(), zerolog.Nop())
	rec, _ := post(t, h, "/api/data/search", `{"keywords":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIndustryMultiplesMedian(t *testing.T) {
	h := NewHandler(staticSource(), zerolog.Nop())
	rec, envelope := get(t, h, "/api/data/industry-multiples/software")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	multiples := envelope["data"].(map[string]any)["multiples"].(map[string]any)
	if pe := multiples["pe_ratio"].(float64); pe != 24 {
		t.Errorf("median pe_ratio = %v, want 24", pe)
	}
}
