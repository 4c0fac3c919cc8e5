// Package source supplies raw market-data batches. The live CoinGecko
// client and the synthetic generator are interchangeable at the pipeline
// boundary.
package source

import (
	"context"

	"crypto-price-pipeline/internal/model"
)

// Source produces one batch of raw records per invocation, or fails.
type Source interface {
	// Name identifies the source in logs and results.
	Name() string
	Fetch(ctx context.Context) ([]model.RawRecord, error)
}
