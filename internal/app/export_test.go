package app

import (
	"strconv"
	"testing"

	"crypto-price-pipeline/internal/storage"
)

func historyRows(n int) []storage.PriceRow {
	rows := make([]storage.PriceRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, storage.PriceRow{
			Symbol:       "btc",
			Name:         "Bitcoin",
			CurrentPrice: float64(100 + i),
			FetchedAt:    "2026-08-29 10:00:" + strconv.Itoa(i%60),
		})
	}
	return rows
}

func TestDownsampleRowsKeepsEndpoints(t *testing.T) {
	rows := historyRows(100)
	got := downsampleRows(rows, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(got))
	}
	if got[0].CurrentPrice != rows[0].CurrentPrice {
		t.Fatal("first row must survive downsampling")
	}
	if got[len(got)-1].CurrentPrice != rows[len(rows)-1].CurrentPrice {
		t.Fatal("last row must survive downsampling")
	}
}

func TestDownsampleRowsSinglePoint(t *testing.T) {
	rows := historyRows(50)
	got := downsampleRows(rows, 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].CurrentPrice != rows[0].CurrentPrice {
		t.Fatal("single-point downsample should keep the first row")
	}
}

func TestDownsampleRowsNoLimit(t *testing.T) {
	rows := historyRows(5)
	if got := downsampleRows(rows, 0); len(got) != 5 {
		t.Fatalf("max <= 0 must return all rows, got %d", len(got))
	}
	if got := downsampleRows(rows, 20); len(got) != 5 {
		t.Fatalf("max above len must return all rows, got %d", len(got))
	}
}
