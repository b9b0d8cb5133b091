package history

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"privco_valuation/pkg/core/engine"
)

// Without a configured repo every history route answers 503 so the rest
// of the API stays usable. The storage paths themselves need a live
// database and are covered by integration tooling, not unit tests.
func TestRoutesUnavailableWithoutRepo(t *testing.T) {
	h := NewHandler(engine.New(nil, zerolog.Nop()), nil, nil, zerolog.Nop())
	e := echo.New()
	h.RegisterRoutes(e)

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/history/run", `{"company": {"name": "X", "revenue": 100}}`},
		{http.MethodGet, "/api/history/recent", ""},
		{http.MethodGet, "/api/history/some-id", ""},
	}

	for _, tc := range cases {
		var req *http.Request
		if tc.body != "" {
			req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		} else {
			req = httptest.NewRequest(tc.method, tc.path, nil)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: status = %d, want 503", tc.method, tc.path, rec.Code)
		}
	}
}
