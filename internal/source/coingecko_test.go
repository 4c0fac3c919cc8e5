package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestCoinGeckoFetchSuccess(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "bitcoin", "symbol": "btc", "current_price": 64000.5},
			{"id": "ethereum", "symbol": "eth", "current_price": 3100.25},
		})
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{
		BaseURL:    srv.URL,
		VSCurrency: "usd",
		PerPage:    2,
		Timeout:    time.Second,
		UserAgent:  "test",
	}, noopLogger())
	fixed := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	batch, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch should succeed: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 records, got %d", len(batch))
	}
	if batch[0]["fetched_at"] != "2026-08-29T10:00:00Z" {
		t.Fatalf("fetched_at should be stamped, got %v", batch[0]["fetched_at"])
	}
	if gotQuery["vs_currency"][0] != "usd" || gotQuery["per_page"][0] != "2" || gotQuery["order"][0] != "market_cap_desc" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
}

func TestCoinGeckoFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]any{"error_code": 429, "error_message": "You've exceeded the Rate Limit"},
		})
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("HTTP 429 should surface an error")
	}
}

func TestCoinGeckoFetchNullArrayElement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[null, {"id": "bitcoin", "symbol": "btc", "current_price": 64000.5}]`))
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	batch, err := c.Fetch(context.Background())
	if err == nil {
		t.Fatalf("null array element should surface an error, got %d records", len(batch))
	}
	if !strings.Contains(err.Error(), "null") {
		t.Fatalf("error should name the null element, got %v", err)
	}
}

func TestCoinGeckoFetchMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	}))
	defer srv.Close()

	c := NewCoinGecko(CoinGeckoOptions{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("malformed payload should surface an error")
	}
}
