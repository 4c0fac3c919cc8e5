package storage

import (
	"context"
	"database/sql"
)

const listRecentSQL = `SELECT
    id, symbol, name,
    current_price, market_cap, market_cap_rank,
    price_change_percentage_24h, high_24h, low_24h,
    last_updated, fetched_at
FROM validated_crypto_data
ORDER BY rowid DESC
LIMIT ?;`

const listSymbolHistorySQL = `SELECT
    id, symbol, name,
    current_price, market_cap, market_cap_rank,
    price_change_percentage_24h, high_24h, low_24h,
    last_updated, fetched_at
FROM validated_crypto_data
WHERE symbol = ?
ORDER BY rowid;`

// PriceRow is the read-side projection used by the show and export
// commands. Reads are observational; the table is never mutated here.
type PriceRow struct {
	ID            string
	Symbol        string
	Name          string
	CurrentPrice  float64
	MarketCap     int64
	MarketCapRank int64
	ChangePct24h  float64
	High24h       float64
	Low24h        float64
	LastUpdated   string
	FetchedAt     string
}

// ListRecent returns the most recently appended rows, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]PriceRow, error) {
	return s.queryRows(ctx, listRecentSQL, limit)
}

// ListSymbolHistory returns every stored row for one symbol in append
// order.
func (s *Store) ListSymbolHistory(ctx context.Context, symbol string) ([]PriceRow, error) {
	return s.queryRows(ctx, listSymbolHistorySQL, symbol)
}

func (s *Store) queryRows(ctx context.Context, query string, args ...any) ([]PriceRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	defer rows.Close()

	result := make([]PriceRow, 0)
	for rows.Next() {
		row, err := scanPriceRow(rows)
		if err != nil {
			return nil, &StorageError{Op: "query", Err: err}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	return result, nil
}

func scanPriceRow(rows *sql.Rows) (PriceRow, error) {
	var row PriceRow
	err := rows.Scan(
		&row.ID,
		&row.Symbol,
		&row.Name,
		&row.CurrentPrice,
		&row.MarketCap,
		&row.MarketCapRank,
		&row.ChangePct24h,
		&row.High24h,
		&row.Low24h,
		&row.LastUpdated,
		&row.FetchedAt,
	)
	return row, err
}
