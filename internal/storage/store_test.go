package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"crypto-price-pipeline/internal/model"
)

func testRecord(symbol string) model.RawRecord {
	return model.RawRecord{
		"id":                               symbol,
		"symbol":                           symbol,
		"name":                             "Test " + symbol,
		"image":                            "https://example.com/" + symbol + ".png",
		"current_price":                    123.45,
		"market_cap":                       1_000_000.0,
		"market_cap_rank":                  1.0,
		"fully_diluted_valuation":          1_100_000.0,
		"total_volume":                     50_000.0,
		"high_24h":                         130.0,
		"low_24h":                          120.0,
		"price_change_24h":                 1.5,
		"price_change_percentage_24h":      1.2,
		"market_cap_change_24h":            12_000.0,
		"market_cap_change_percentage_24h": 1.2,
		"circulating_supply":               8_100.0,
		"total_supply":                     10_000.0,
		"max_supply":                       12_000.0,
		"ath":                              200.0,
		"ath_change_percentage":            -38.3,
		"ath_date":                         "2024-03-14T07:10:36.635Z",
		"atl":                              1.0,
		"atl_change_percentage":            12245.0,
		"atl_date":                         "2020-03-13T02:22:55.044Z",
		"roi":                              map[string]any{"percentage": 42.0, "currency": "usd"},
		"last_updated":                     "2026-08-29T10:00:00Z",
		"fetched_at":                       "2026-08-29T10:00:05Z",
	}
}

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(context.Background(), Config{Path: path}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndCount(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "data", "crypto.db"))

	total, err := store.Append(ctx, []model.RawRecord{testRecord("btc"), testRecord("eth")})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 rows, got %d", total)
	}
}

func TestIdempotentCreateThenAppend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "crypto.db")

	first := openTestStore(t, path)
	if _, err := first.Append(ctx, []model.RawRecord{testRecord("btc"), testRecord("eth")}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening asserts the schema without altering it, then appends.
	second := openTestStore(t, path)
	total, err := second.Append(ctx, []model.RawRecord{testRecord("ada")})
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if total != 3 {
		t.Fatalf("rows should accumulate across opens, got %d", total)
	}
}

func TestAppendEmptyIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "crypto.db"))

	if _, err := store.Append(ctx, []model.RawRecord{testRecord("btc")}); err != nil {
		t.Fatalf("append: %v", err)
	}
	total, err := store.Append(ctx, nil)
	if err != nil {
		t.Fatalf("empty append should succeed: %v", err)
	}
	if total != 1 {
		t.Fatalf("empty append must not change the table, got %d rows", total)
	}
}

func TestRoundTripValues(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "crypto.db"))

	if _, err := store.Append(ctx, []model.RawRecord{testRecord("btc")}); err != nil {
		t.Fatalf("append: %v", err)
	}

	var (
		id, symbol, athDate, lastUpdated, roi string
		currentPrice                          float64
		marketCap                             int64
		fdv                                   *float64
	)
	row := store.db.QueryRowContext(ctx,
		`SELECT id, symbol, current_price, market_cap, fully_diluted_valuation, ath_date, last_updated, roi
		 FROM validated_crypto_data`)
	if err := row.Scan(&id, &symbol, &currentPrice, &marketCap, &fdv, &athDate, &lastUpdated, &roi); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if id != "btc" || symbol != "btc" || currentPrice != 123.45 || marketCap != 1_000_000 {
		t.Fatalf("scalar columns did not round-trip: %s %s %f %d", id, symbol, currentPrice, marketCap)
	}
	if fdv == nil || *fdv != 1_100_000.0 {
		t.Fatalf("optional numeric should round-trip: %v", fdv)
	}
	if athDate != "2024-03-14 07:10:36" {
		t.Fatalf("ath_date should be canonicalised, got %q", athDate)
	}
	if lastUpdated != "2026-08-29 10:00:00" {
		t.Fatalf("last_updated should be canonicalised, got %q", lastUpdated)
	}
	if roi != `{"currency":"usd","percentage":42}` {
		t.Fatalf("roi should be a JSON string, got %q", roi)
	}
}

func TestMissingOptionalsBecomeNullOrEmpty(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "crypto.db"))

	rec := testRecord("eth")
	delete(rec, "fully_diluted_valuation")
	delete(rec, "total_supply")
	delete(rec, "max_supply")
	delete(rec, "roi")
	rec["ath_date"] = "not a timestamp"

	if _, err := store.Append(ctx, []model.RawRecord{rec}); err != nil {
		t.Fatalf("append: %v", err)
	}

	var (
		fdv, totalSupply *float64
		athDate, roi     string
	)
	row := store.db.QueryRowContext(ctx,
		`SELECT fully_diluted_valuation, total_supply, ath_date, roi FROM validated_crypto_data`)
	if err := row.Scan(&fdv, &totalSupply, &athDate, &roi); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if fdv != nil || totalSupply != nil {
		t.Fatal("missing optional numerics must be NULL")
	}
	if athDate != "" {
		t.Fatalf("unparseable timestamp must be stored as empty string, got %q", athDate)
	}
	if roi != "" {
		t.Fatalf("missing roi must be stored as empty string, got %q", roi)
	}
}

func TestListRecentAndSymbolHistory(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, filepath.Join(t.TempDir(), "crypto.db"))

	if _, err := store.Append(ctx, []model.RawRecord{testRecord("btc"), testRecord("eth"), testRecord("btc")}); err != nil {
		t.Fatalf("append: %v", err)
	}

	recent, err := store.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Symbol != "btc" || recent[1].Symbol != "eth" {
		t.Fatalf("recent rows should come back newest first: %+v", recent)
	}

	history, err := store.ListSymbolHistory(ctx, "btc")
	if err != nil {
		t.Fatalf("symbol history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 btc rows, got %d", len(history))
	}
}
