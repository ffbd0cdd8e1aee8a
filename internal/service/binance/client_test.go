package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
)

func klineServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchKlinesNormalizes(t *testing.T) {
	// One provider row: ms timestamps, string prices, trailing fields ignored.
	body := `[[1700000040000,"100.5","108.0","99.2","105.1","30.25",1700000099999,"3000.0",42,"15.0","1500.0","0"]]`
	srv := klineServer(t, http.StatusOK, body)
	defer srv.Close()

	c := New(srv.URL, time.Second)
	candles, err := c.FetchKlines(context.Background(), "BTCUSDT", domrepo.TF1m, 1)
	if err != nil {
		t.Fatalf("FetchKlines: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("want 1 candle, got %d", len(candles))
	}
	got := candles[0]
	if got.OpenTime != 1700000040 {
		t.Fatalf("open time not converted to seconds: %d", got.OpenTime)
	}
	if got.CloseTime != 1700000099 {
		t.Fatalf("close time not converted to seconds: %d", got.CloseTime)
	}
	if got.Open != 100.5 || got.High != 108.0 || got.Low != 99.2 || got.Close != 105.1 {
		t.Fatalf("prices not parsed: %+v", got)
	}
	if got.Volume != 30.25 {
		t.Fatalf("volume not parsed: %v", got.Volume)
	}
}

func TestFetchKlinesQueryParams(t *testing.T) {
	var gotSymbol, gotInterval, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotSymbol = q.Get("symbol")
		gotInterval = q.Get("interval")
		gotLimit = q.Get("limit")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.FetchKlines(context.Background(), "ETHUSDT", domrepo.TF4h, 250); err != nil {
		t.Fatalf("FetchKlines: %v", err)
	}
	if gotSymbol != "ETHUSDT" || gotInterval != "4h" || gotLimit != "250" {
		t.Fatalf("unexpected query: symbol=%s interval=%s limit=%s", gotSymbol, gotInterval, gotLimit)
	}
}

func TestFetchKlinesRateLimited(t *testing.T) {
	srv := klineServer(t, http.StatusTooManyRequests, `{"code":-1003}`)
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.FetchKlines(context.Background(), "BTCUSDT", domrepo.TF1m, 10)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
}

func TestFetchKlinesBadStatus(t *testing.T) {
	srv := klineServer(t, http.StatusBadGateway, "upstream broken")
	defer srv.Close()

	c := New(srv.URL, time.Second)
	_, err := c.FetchKlines(context.Background(), "BTCUSDT", domrepo.TF1m, 10)
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("want ErrBadStatus, got %v", err)
	}
}

func TestFetchKlinesUnsupportedTimeframe(t *testing.T) {
	c := New("http://localhost:0", time.Second)
	_, err := c.FetchKlines(context.Background(), "BTCUSDT", domrepo.Timeframe("45m"), 10)
	if !errors.Is(err, models.ErrUnsupportedTimeframe) {
		t.Fatalf("want ErrUnsupportedTimeframe, got %v", err)
	}
}

func TestFetchKlinesShortRow(t *testing.T) {
	srv := klineServer(t, http.StatusOK, `[[1700000040000,"100.5"]]`)
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.FetchKlines(context.Background(), "BTCUSDT", domrepo.TF1m, 1); err == nil {
		t.Fatal("want error for short kline row")
	}
}
