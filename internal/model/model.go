// Package model defines the canonical market record shape and the schema
// contract applied to loosely-typed records coming off a source.
package model

import (
	"fmt"
	"strings"
)

// RawRecord is a single market entry as decoded from a source payload.
// No invariants hold: fields may be missing, extra keys may be present,
// and values carry whatever types the JSON decoder produced.
type RawRecord map[string]any

// ROI is the open-shape return-on-investment object some records carry.
type ROI map[string]any

// CryptoPrice is the canonical typed form of a validated record. Optional
// fields are pointers; absence is nil.
type CryptoPrice struct {
	ID     string
	Symbol string
	Name   string
	Image  string

	CurrentPrice          float64
	MarketCap             int64
	MarketCapRank         int64
	FullyDilutedValuation *float64
	TotalVolume           int64

	High24h float64
	Low24h  float64

	PriceChange24h               float64
	PriceChangePercentage24h     float64
	MarketCapChange24h           float64
	MarketCapChangePercentage24h float64

	CirculatingSupply float64
	TotalSupply       *float64
	MaxSupply         *float64

	ATH                 float64
	ATHChangePercentage float64
	ATHDate             string
	ATL                 float64
	ATLChangePercentage float64
	ATLDate             string

	ROI ROI

	LastUpdated string
	FetchedAt   string
}

// Violation describes a single failed constraint on one field.
type Violation struct {
	Field  string
	Value  any
	Reason string
}

func (v Violation) String() string {
	return fmt.Sprintf("field %q: %v - %s", v.Field, v.Value, v.Reason)
}

// Violations collects every constraint a record broke. It satisfies error
// so a failed coercion can propagate through standard error plumbing.
type Violations []Violation

func (vs Violations) Error() string {
	if len(vs) == 0 {
		return "schema: no violations"
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return "schema: " + strings.Join(parts, "; ")
}
