package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"crypto-price-pipeline/internal/config"
	"crypto-price-pipeline/internal/pipeline"
	"crypto-price-pipeline/internal/source"
	"crypto-price-pipeline/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// newSource builds the configured source; sourceName overrides the config
// selection when non-empty. An unknown name is a configuration error and
// nothing is attempted past it.
func (a *App) newSource(sourceName string) (source.Source, error) {
	name := sourceName
	if name == "" {
		name = a.Config.Source
	}

	switch name {
	case config.SourceCoinGecko:
		return source.NewCoinGecko(source.CoinGeckoOptions{
			BaseURL:    a.Config.CoinGecko.BaseURL,
			VSCurrency: a.Config.CoinGecko.VSCurrency,
			PerPage:    a.Config.CoinGecko.PerPage,
			Page:       a.Config.CoinGecko.Page,
			Timeout:    a.Config.CoinGecko.RequestTimeout,
			UserAgent:  a.Config.CoinGecko.UserAgent,
		}, a.Logger), nil
	case config.SourceSynthetic:
		return source.NewSynthetic(source.SyntheticOptions{
			Count: a.Config.Synthetic.Count,
			Seed:  a.Config.Synthetic.Seed,
		}, a.Logger), nil
	default:
		return nil, fmt.Errorf("no such source %q", name)
	}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	store, err := storage.Open(ctx, a.Config.Database, a.Logger)
	if err != nil {
		return nil, nil, err
	}
	closer := func() { _ = store.Close() }
	return store, closer, nil
}

func (a *App) newPipeline(src source.Source, store *storage.Store) *pipeline.Pipeline {
	return pipeline.New(src, store, a.Logger)
}
