package model

import (
	"math"
	"regexp"
)

var symbolPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// maxAbsPercentage bounds the 24h percentage-change fields; anything beyond
// it is treated as corrupt rather than an extreme market move.
const maxAbsPercentage = 1000.0

// Coerce converts a raw record into its canonical typed form. Every
// constraint is checked; the returned Violations name each one that failed,
// never just the first. Unrecognized keys are dropped silently. When the
// record is valid the returned Violations is nil. Coerce is pure.
func Coerce(raw RawRecord) (CryptoPrice, Violations) {
	r := reader{raw: raw}
	var rec CryptoPrice

	rec.ID, _ = r.requireString("id")
	if sym, ok := r.requireString("symbol"); ok {
		rec.Symbol = sym
		if !symbolPattern.MatchString(sym) {
			r.reject("symbol", sym, "must be lowercase alphanumeric")
		}
	}
	rec.Name, _ = r.requireString("name")
	rec.Image, _ = r.requireStringAllowEmpty("image")

	if v, ok := r.requireNumber("current_price"); ok {
		rec.CurrentPrice = v
		r.rejectNegative("current_price", v)
	}
	if v, ok := r.requireInteger("market_cap"); ok {
		rec.MarketCap = v
		if v < 0 {
			r.reject("market_cap", v, "must not be negative")
		}
	}
	if v, ok := r.requireInteger("market_cap_rank"); ok {
		rec.MarketCapRank = v
		if v <= 0 {
			r.reject("market_cap_rank", v, "must be a positive integer")
		}
	}
	rec.FullyDilutedValuation = r.optionalNumber("fully_diluted_valuation")
	if v, ok := r.requireInteger("total_volume"); ok {
		rec.TotalVolume = v
		if v < 0 {
			r.reject("total_volume", v, "must not be negative")
		}
	}

	if v, ok := r.requireNumber("high_24h"); ok {
		rec.High24h = v
		r.rejectNegative("high_24h", v)
	}
	if v, ok := r.requireNumber("low_24h"); ok {
		rec.Low24h = v
		r.rejectNegative("low_24h", v)
	}

	rec.PriceChange24h, _ = r.requireNumber("price_change_24h")
	if v, ok := r.requireNumber("price_change_percentage_24h"); ok {
		rec.PriceChangePercentage24h = v
		r.rejectOutOfRange("price_change_percentage_24h", v)
	}
	rec.MarketCapChange24h, _ = r.requireNumber("market_cap_change_24h")
	if v, ok := r.requireNumber("market_cap_change_percentage_24h"); ok {
		rec.MarketCapChangePercentage24h = v
		r.rejectOutOfRange("market_cap_change_percentage_24h", v)
	}

	rec.CirculatingSupply, _ = r.requireNumber("circulating_supply")
	rec.TotalSupply = r.optionalNumber("total_supply")
	rec.MaxSupply = r.optionalNumber("max_supply")

	rec.ATH, _ = r.requireNumber("ath")
	rec.ATHChangePercentage, _ = r.requireNumber("ath_change_percentage")
	rec.ATHDate, _ = r.requireStringAllowEmpty("ath_date")
	rec.ATL, _ = r.requireNumber("atl")
	rec.ATLChangePercentage, _ = r.requireNumber("atl_change_percentage")
	rec.ATLDate, _ = r.requireStringAllowEmpty("atl_date")

	rec.ROI = r.optionalObject("roi")

	rec.LastUpdated, _ = r.requireStringAllowEmpty("last_updated")
	rec.FetchedAt = r.optionalString("fetched_at")

	if len(r.violations) > 0 {
		return CryptoPrice{}, r.violations
	}
	return rec, nil
}

// reader accumulates violations while pulling typed values out of a raw
// record. Absent optional fields and nil values are treated alike.
type reader struct {
	raw        RawRecord
	violations Violations
}

func (r *reader) reject(field string, value any, reason string) {
	r.violations = append(r.violations, Violation{Field: field, Value: value, Reason: reason})
}

func (r *reader) rejectNegative(field string, v float64) {
	if v < 0 {
		r.reject(field, v, "must not be negative")
	}
}

func (r *reader) rejectOutOfRange(field string, v float64) {
	if math.Abs(v) > maxAbsPercentage {
		r.reject(field, v, "absolute value exceeds 1000")
	}
}

func (r *reader) lookup(field string) (any, bool) {
	v, ok := r.raw[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *reader) requireString(field string) (string, bool) {
	s, ok := r.requireStringAllowEmpty(field)
	if !ok {
		return "", false
	}
	if s == "" {
		r.reject(field, s, "must not be empty")
		return "", false
	}
	return s, true
}

func (r *reader) requireStringAllowEmpty(field string) (string, bool) {
	v, ok := r.lookup(field)
	if !ok {
		r.reject(field, nil, "required but absent")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		r.reject(field, v, "expected type string")
		return "", false
	}
	return s, true
}

func (r *reader) optionalString(field string) string {
	v, ok := r.lookup(field)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.reject(field, v, "expected type string")
		return ""
	}
	return s
}

// asNumber widens the numeric types a JSON decoder (or an in-process
// generator) can hand us.
func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func (r *reader) requireNumber(field string) (float64, bool) {
	v, ok := r.lookup(field)
	if !ok {
		r.reject(field, nil, "required but absent")
		return 0, false
	}
	f, ok := asNumber(v)
	if !ok {
		r.reject(field, v, "expected type number")
		return 0, false
	}
	return f, true
}

// requireInteger accepts any numeric value without a fractional part; the
// backing columns are BIGINT/INTEGER so 5.5 is a type mismatch, not a
// rounding opportunity.
func (r *reader) requireInteger(field string) (int64, bool) {
	v, ok := r.lookup(field)
	if !ok {
		r.reject(field, nil, "required but absent")
		return 0, false
	}
	f, ok := asNumber(v)
	if !ok || f != math.Trunc(f) {
		r.reject(field, v, "expected type integer")
		return 0, false
	}
	return int64(f), true
}

func (r *reader) optionalNumber(field string) *float64 {
	v, ok := r.lookup(field)
	if !ok {
		return nil
	}
	f, ok := asNumber(v)
	if !ok {
		r.reject(field, v, "expected type number")
		return nil
	}
	return &f
}

func (r *reader) optionalObject(field string) ROI {
	v, ok := r.lookup(field)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		r.reject(field, v, "expected type object")
		return nil
	}
	return ROI(m)
}
