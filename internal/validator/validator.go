// Package validator applies the schema contract to a whole batch,
// partitioning it into valid and rejected records. It gatekeeps only: valid
// records pass through in their original raw form and order, and storage
// re-normalizes them independently.
package validator

import (
	"crypto-price-pipeline/internal/model"
)

// Rejection records why one raw record failed the schema.
type Rejection struct {
	// Index is the record's position in the original batch.
	Index      int
	Record     model.RawRecord
	Violations model.Violations
}

// Summary carries the batch-level counts exposed after a run.
type Summary struct {
	Total   int
	Valid   int
	Invalid int
	// SuccessRate is Valid/Total, or 0 for an empty batch.
	SuccessRate float64
}

// Outcome is the ordered partition of one batch.
type Outcome struct {
	Valid    []model.RawRecord
	Rejected []Rejection
}

// Summary derives the counts for this outcome.
func (o Outcome) Summary() Summary {
	s := Summary{
		Total:   len(o.Valid) + len(o.Rejected),
		Valid:   len(o.Valid),
		Invalid: len(o.Rejected),
	}
	if s.Total > 0 {
		s.SuccessRate = float64(s.Valid) / float64(s.Total)
	}
	return s
}

// Run validates every record in the batch independently; one record's
// failure never aborts the rest. Deterministic for a given batch.
func Run(batch []model.RawRecord) Outcome {
	out := Outcome{Valid: make([]model.RawRecord, 0, len(batch))}
	for i, rec := range batch {
		if _, violations := model.Coerce(rec); violations != nil {
			out.Rejected = append(out.Rejected, Rejection{
				Index:      i,
				Record:     rec,
				Violations: violations,
			})
			continue
		}
		out.Valid = append(out.Valid, rec)
	}
	return out
}
