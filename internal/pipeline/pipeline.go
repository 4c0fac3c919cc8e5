// Package pipeline sequences one batch through fetch, validate, and store.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"crypto-price-pipeline/internal/source"
	"crypto-price-pipeline/internal/storage"
	"crypto-price-pipeline/internal/validator"
)

// SourceError marks a failed fetch; it aborts the run before validation.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Result summarises one completed run.
type Result struct {
	Source  string
	Summary validator.Summary
	// Stored is false when the run completed without a write, either
	// because no records validated or the batch was empty.
	Stored    bool
	TablePath string
	RowCount  int64
}

// Pipeline runs fetch -> validate -> store for a single batch. One run is
// strictly sequential; there is no overlap between phases.
type Pipeline struct {
	src    source.Source
	writer storage.Writer
	logger zerolog.Logger
}

// New wires a source and a storage writer into a pipeline.
func New(src source.Source, writer storage.Writer, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		src:    src,
		writer: writer,
		logger: logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run processes one batch to completion. Per-record schema violations are
// reported in the result, never as an error; only a source or storage
// failure fails the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	batch, err := p.src.Fetch(ctx)
	if err != nil {
		return Result{}, &SourceError{Source: p.src.Name(), Err: err}
	}

	outcome := validator.Run(batch)
	summary := outcome.Summary()

	p.logger.Info().
		Str("source", p.src.Name()).
		Int("total", summary.Total).
		Int("valid", summary.Valid).
		Int("invalid", summary.Invalid).
		Float64("success_rate", summary.SuccessRate).
		Msg("batch validated")

	for i, rej := range outcome.Rejected {
		if i >= 3 {
			p.logger.Warn().Int("more", len(outcome.Rejected)-i).Msg("further rejections omitted")
			break
		}
		p.logger.Warn().
			Int("index", rej.Index).
			Str("name", nameOf(rej.Record)).
			Str("violations", rej.Violations.Error()).
			Msg("record rejected")
	}

	result := Result{
		Source:    p.src.Name(),
		Summary:   summary,
		TablePath: p.writer.Path(),
	}

	if summary.Valid == 0 {
		p.logger.Info().Msg("no valid records; skipping storage write")
		return result, nil
	}

	rows, err := p.writer.Append(ctx, outcome.Valid)
	if err != nil {
		return Result{}, err
	}

	result.Stored = true
	result.RowCount = rows
	return result, nil
}

func nameOf(rec map[string]any) string {
	if name, ok := rec["name"].(string); ok {
		return name
	}
	return "unknown"
}
