package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"PriceGate/internal/domain/models"
	xhttp "PriceGate/pkg/http"
)

func bindHistoryRequest(t *testing.T, target string) (*models.HistoryRequest, interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	hr := &models.HistoryRequest{}
	return hr, xhttp.ReadAndValidateRequest(c, hr)
}

func TestHistoryRequestOmittedLimit(t *testing.T) {
	// No limit in the query: validation passes and the zero value flows
	// through so the interval's catalog default applies downstream.
	hr, verr := bindHistoryRequest(t, "/prices/history?symbol=BTCUSDT&interval=1h")
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if hr.Limit != 0 {
		t.Fatalf("omitted limit must stay zero, got %d", hr.Limit)
	}
	if hr.Symbol != "BTCUSDT" || hr.Interval != "1h" {
		t.Fatalf("unexpected bind result: %+v", hr)
	}
}

func TestHistoryRequestExplicitLimit(t *testing.T) {
	hr, verr := bindHistoryRequest(t, "/prices/history?symbol=BTCUSDT&interval=1m&limit=250")
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if hr.Limit != 250 {
		t.Fatalf("want limit 250, got %d", hr.Limit)
	}
}

func TestHistoryRequestLimitBounds(t *testing.T) {
	if _, verr := bindHistoryRequest(t, "/prices/history?symbol=BTCUSDT&interval=1m&limit=2001"); verr == nil {
		t.Fatal("limit above 2000 must fail validation")
	}
	if _, verr := bindHistoryRequest(t, "/prices/history?symbol=BTCUSDT&interval=1m&limit=-5"); verr == nil {
		t.Fatal("negative limit must fail validation")
	}
}

func TestHistoryRequestMissingSymbol(t *testing.T) {
	if _, verr := bindHistoryRequest(t, "/prices/history?interval=1m"); verr == nil {
		t.Fatal("missing symbol must fail validation")
	}
}
