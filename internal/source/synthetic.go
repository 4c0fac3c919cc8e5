package source

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"crypto-price-pipeline/internal/model"
)

// catalogue of realistic (name, symbol) pairs the generator draws from.
var catalogue = []struct {
	name   string
	symbol string
}{
	{"Bitcoin", "btc"}, {"Ethereum", "eth"}, {"Cardano", "ada"},
	{"Solana", "sol"}, {"Polkadot", "dot"}, {"Chainlink", "link"},
	{"Litecoin", "ltc"}, {"Stellar", "xlm"}, {"VeChain", "vet"},
	{"Filecoin", "fil"}, {"Avalanche", "avax"}, {"Polygon", "matic"},
	{"Cosmos", "atom"}, {"Uniswap", "uni"}, {"Algorand", "algo"},
	{"Tezos", "xtz"}, {"Monero", "xmr"}, {"Dash", "dash"},
	{"Zcash", "zec"}, {"Decred", "dcr"},
}

// SyntheticOptions tune the generator.
type SyntheticOptions struct {
	Count int
	Seed  int64
}

// Synthetic produces well-formed fake market records for testing and
// offline runs. A fixed seed makes the first batch fully deterministic;
// subsequent fetches advance the seed so periodic runs do not append
// identical data.
type Synthetic struct {
	opts    SyntheticOptions
	logger  zerolog.Logger
	now     func() time.Time
	fetches atomic.Int64
}

// NewSynthetic constructs a synthetic source.
func NewSynthetic(opts SyntheticOptions, logger zerolog.Logger) *Synthetic {
	if opts.Count <= 0 {
		opts.Count = 10
	}
	return &Synthetic{
		opts:   opts,
		logger: logger.With().Str("component", "synthetic_source").Logger(),
		now:    time.Now,
	}
}

// Name implements Source.
func (s *Synthetic) Name() string { return "synthetic" }

// Fetch generates a batch of records shaped like the CoinGecko markets
// payload. Derived quantities (market cap, 24h range, ath/atl distances)
// are computed with decimal arithmetic and emitted as floats.
func (s *Synthetic) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := s.opts.Seed + s.fetches.Add(1) - 1
	rng := rand.New(rand.NewSource(seed))
	now := s.now().UTC()
	fetchedAt := now.Format(time.RFC3339)

	batch := make([]model.RawRecord, 0, s.opts.Count)
	for i := 0; i < s.opts.Count; i++ {
		entry := catalogue[rng.Intn(len(catalogue))]

		var price decimal.Decimal
		switch entry.symbol {
		case "btc":
			price = randDecimal(rng, 50_000, 150_000).Round(2)
		case "eth":
			price = randDecimal(rng, 2_000, 5_000).Round(2)
		default:
			price = randDecimal(rng, 0.01, 500).Round(4)
		}

		supply := randDecimal(rng, 1e6, 1e9)
		marketCap := price.Mul(supply)

		change := price.Mul(randDecimal(rng, -0.1, 0.1))
		changePct := change.Div(price).Mul(decimal.NewFromInt(100))
		halfSpread := change.Abs().Mul(decimal.NewFromFloat(0.5))
		high := price.Add(halfSpread)
		low := price.Sub(halfSpread)

		ath := price.Mul(randDecimal(rng, 1.1, 3.0))
		athPct := price.Sub(ath).Div(ath).Mul(decimal.NewFromInt(100))
		atl := price.Mul(randDecimal(rng, 0.01, 0.5))
		atlPct := price.Sub(atl).Div(atl).Mul(decimal.NewFromInt(100))

		rec := model.RawRecord{
			"id":                               entry.symbol,
			"symbol":                           entry.symbol,
			"name":                             entry.name,
			"image":                            fmt.Sprintf("https://coin-images.coingecko.com/coins/images/%d/large/%s.png", 1+rng.Intn(999), entry.symbol),
			"current_price":                    price.InexactFloat64(),
			"market_cap":                       float64(marketCap.IntPart()),
			"market_cap_rank":                  float64(i + 1),
			"total_volume":                     float64(marketCap.Mul(randDecimal(rng, 0.01, 0.1)).IntPart()),
			"high_24h":                         high.InexactFloat64(),
			"low_24h":                          low.InexactFloat64(),
			"price_change_24h":                 change.InexactFloat64(),
			"price_change_percentage_24h":      changePct.InexactFloat64(),
			"market_cap_change_24h":            change.Mul(supply).InexactFloat64(),
			"market_cap_change_percentage_24h": changePct.InexactFloat64(),
			"circulating_supply":               supply.InexactFloat64(),
			"ath":                              ath.InexactFloat64(),
			"ath_change_percentage":            athPct.InexactFloat64(),
			"ath_date":                         pastTimestamp(rng, now, 2*365, 1),
			"atl":                              atl.InexactFloat64(),
			"atl_change_percentage":            atlPct.InexactFloat64(),
			"atl_date":                         pastTimestamp(rng, now, 5*365, 365),
			"last_updated":                     now.Add(-time.Duration(rng.Intn(3600)) * time.Second).Format(time.RFC3339),
			"fetched_at":                       fetchedAt,
		}

		// Optional fields are omitted probabilistically to mirror the
		// live feed, where most of them are frequently null.
		if rng.Float64() > 0.3 {
			rec["fully_diluted_valuation"] = float64(marketCap.Mul(decimal.NewFromFloat(1.1)).IntPart())
		}
		if rng.Float64() > 0.4 {
			rec["total_supply"] = supply.Mul(randDecimal(rng, 1.0, 1.5)).InexactFloat64()
		}
		if rng.Float64() > 0.5 {
			rec["max_supply"] = supply.Mul(randDecimal(rng, 1.2, 2.0)).InexactFloat64()
		}
		if rng.Float64() > 0.6 {
			rec["roi"] = map[string]any{
				"percentage": randDecimal(rng, -50, 200).Round(2).InexactFloat64(),
				"currency":   "usd",
			}
		}

		batch = append(batch, rec)
	}

	s.logger.Info().Int("records", len(batch)).Int64("seed", seed).Msg("generated synthetic batch")
	return batch, nil
}

func randDecimal(rng *rand.Rand, min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(min + rng.Float64()*(max-min))
}

// pastTimestamp picks a moment between maxDaysAgo and minDaysAgo days back.
func pastTimestamp(rng *rand.Rand, now time.Time, maxDaysAgo, minDaysAgo int) string {
	span := maxDaysAgo - minDaysAgo
	if span <= 0 {
		span = 1
	}
	daysAgo := minDaysAgo + rng.Intn(span)
	at := now.AddDate(0, 0, -daysAgo).Add(-time.Duration(rng.Intn(86400)) * time.Second)
	return at.Format(time.RFC3339)
}

var _ Source = (*Synthetic)(nil)
