package domain

import (
	"time"
)

// SourceStats collects per-source quality counters gathered while a single
// trip file moves through load, normalize, derive, and filter.
type SourceStats struct {
	Source     SchemaGeneration `json:"source"`
	File       string           `json:"file"`
	RowsLoaded int              `json:"rows_loaded"`

	// Normalization counters.
	NonCanonicalRiders map[string]int `json:"non_canonical_riders,omitempty"`

	// Derivation counters. Timestamp parse failures become missing values,
	// never errors; they are surfaced here instead.
	StartParseFailures int `json:"start_parse_failures"`
	EndParseFailures   int `json:"end_parse_failures"`
	BadDurations       int `json:"bad_durations"`

	// Filter counters. A row is attributed to the first clause it fails.
	RowsRetained    int `json:"rows_retained"`
	DroppedDuration int `json:"dropped_duration"`
	DroppedStation  int `json:"dropped_station"`
}

// NonCanonicalTotal sums the occurrences of rider labels outside the
// canonical vocabulary.
func (s *SourceStats) NonCanonicalTotal() int {
	total := 0
	for _, n := range s.NonCanonicalRiders {
		total += n
	}
	return total
}

// RunReport is the quality report for one reconciliation run. It is logged,
// embedded in the summary JSON envelope, and returned to the caller.
type RunReport struct {
	RunID       string        `json:"run_id"`
	Sources     []SourceStats `json:"sources"`
	RowsCombined int          `json:"rows_combined"`

	// DuplicateRideIDs counts ride identifiers seen more than once across
	// both sources. Duplicates are reported, not dropped.
	DuplicateRideIDs int `json:"duplicate_ride_ids"`

	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// TotalLoaded sums the rows loaded across all sources.
func (r *RunReport) TotalLoaded() int {
	total := 0
	for _, s := range r.Sources {
		total += s.RowsLoaded
	}
	return total
}

// TotalDropped sums the rows removed by the row filter across all sources.
func (r *RunReport) TotalDropped() int {
	total := 0
	for _, s := range r.Sources {
		total += s.DroppedDuration + s.DroppedStation
	}
	return total
}

// TotalParseFailures sums the timestamp parse failures across all sources.
func (r *RunReport) TotalParseFailures() int {
	total := 0
	for _, s := range r.Sources {
		total += s.StartParseFailures + s.EndParseFailures
	}
	return total
}

// TotalNonCanonicalRiders sums the non-canonical rider labels across all
// sources.
func (r *RunReport) TotalNonCanonicalRiders() int {
	total := 0
	for _, s := range r.Sources {
		total += s.NonCanonicalTotal()
	}
	return total
}
