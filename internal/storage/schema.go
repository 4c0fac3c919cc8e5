package storage

import (
	"encoding/json"
	"time"

	"crypto-price-pipeline/internal/model"
)

// TableTimeFormat is the canonical text form every timestamp column is
// normalised to before writing.
const TableTimeFormat = "2006-01-02 15:04:05"

// The column order here is the table's column order; it is fixed at first
// creation and never altered on append.
const createTableSQL = `CREATE TABLE IF NOT EXISTS validated_crypto_data (
    id VARCHAR,
    symbol VARCHAR,
    name VARCHAR,
    image VARCHAR,
    current_price DOUBLE,
    market_cap BIGINT,
    market_cap_rank INTEGER,
    fully_diluted_valuation DOUBLE,
    total_volume BIGINT,
    high_24h DOUBLE,
    low_24h DOUBLE,
    price_change_24h DOUBLE,
    price_change_percentage_24h DOUBLE,
    market_cap_change_24h DOUBLE,
    market_cap_change_percentage_24h DOUBLE,
    circulating_supply DOUBLE,
    total_supply DOUBLE,
    max_supply DOUBLE,
    ath DOUBLE,
    ath_change_percentage DOUBLE,
    ath_date VARCHAR,
    atl DOUBLE,
    atl_change_percentage DOUBLE,
    atl_date VARCHAR,
    last_updated VARCHAR,
    fetched_at VARCHAR,
    roi VARCHAR
);`

const insertRecordSQL = `INSERT INTO validated_crypto_data (
    id, symbol, name, image,
    current_price, market_cap, market_cap_rank,
    fully_diluted_valuation, total_volume,
    high_24h, low_24h,
    price_change_24h, price_change_percentage_24h,
    market_cap_change_24h, market_cap_change_percentage_24h,
    circulating_supply, total_supply, max_supply,
    ath, ath_change_percentage, ath_date,
    atl, atl_change_percentage, atl_date,
    last_updated, fetched_at, roi
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

const countRecordsSQL = `SELECT COUNT(*) FROM validated_crypto_data;`

// rowValues maps one raw record onto the fixed column set, in table column
// order. Unrecognised keys are dropped; missing optional numerics become
// NULL, text-like columns become empty strings, timestamps are normalised
// to TableTimeFormat, and roi is flattened to a JSON string.
func rowValues(rec model.RawRecord) []any {
	return []any{
		textValue(rec["id"]),
		textValue(rec["symbol"]),
		textValue(rec["name"]),
		textValue(rec["image"]),
		numberValue(rec["current_price"]),
		integerValue(rec["market_cap"]),
		integerValue(rec["market_cap_rank"]),
		numberValue(rec["fully_diluted_valuation"]),
		integerValue(rec["total_volume"]),
		numberValue(rec["high_24h"]),
		numberValue(rec["low_24h"]),
		numberValue(rec["price_change_24h"]),
		numberValue(rec["price_change_percentage_24h"]),
		numberValue(rec["market_cap_change_24h"]),
		numberValue(rec["market_cap_change_percentage_24h"]),
		numberValue(rec["circulating_supply"]),
		numberValue(rec["total_supply"]),
		numberValue(rec["max_supply"]),
		numberValue(rec["ath"]),
		numberValue(rec["ath_change_percentage"]),
		timestampValue(rec["ath_date"]),
		numberValue(rec["atl"]),
		numberValue(rec["atl_change_percentage"]),
		timestampValue(rec["atl_date"]),
		timestampValue(rec["last_updated"]),
		timestampValue(rec["fetched_at"]),
		roiValue(rec["roi"]),
	}
}

func textValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func numberValue(v any) any {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return nil
	}
}

func integerValue(v any) any {
	f := numberValue(v)
	if f == nil {
		return nil
	}
	return int64(f.(float64))
}

// timestampLayouts are tried in order; the live feed uses RFC3339 with
// millisecond precision, the canonical table form round-trips via the
// space-separated layout.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	TableTimeFormat,
	"2006-01-02",
}

// timestampValue normalises any parseable timestamp string to
// TableTimeFormat. Missing or unparseable values become empty strings so a
// bad date never fails the write.
func timestampValue(v any) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(TableTimeFormat)
		}
	}
	return ""
}

// roiValue serialises the open-shape roi object to a scalar JSON string;
// the table never stores nested structures.
func roiValue(v any) string {
	if v == nil {
		return ""
	}
	m, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	encoded, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(encoded)
}
