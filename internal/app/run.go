package app

import (
	"context"
)

// RunOnce executes one pipeline run against the selected source.
func (a *App) RunOnce(ctx context.Context, sourceName string) error {
	src, err := a.newSource(sourceName)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	result, err := a.newPipeline(src, store).Run(ctx)
	if err != nil {
		return err
	}

	event := a.Logger.Info().
		Str("source", result.Source).
		Int("total", result.Summary.Total).
		Int("valid", result.Summary.Valid).
		Int("invalid", result.Summary.Invalid).
		Float64("success_rate", result.Summary.SuccessRate).
		Str("table", result.TablePath)
	if result.Stored {
		event = event.Int64("total_rows", result.RowCount)
	} else {
		event = event.Bool("stored", false)
	}
	event.Msg("pipeline run complete")

	return nil
}
