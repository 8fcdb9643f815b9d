package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/srstoner21/Cyclistic-Case-Study/internal/errors"
	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// Unifier concatenates the two filtered tables into the single canonical
// trip table. The output schema is the union of both inputs; a field absent
// from one generation stays at its missing marker for that generation's
// rows.
type Unifier struct {
	logger *slog.Logger
}

// NewUnifier creates a table unifier. A nil logger falls back to
// slog.Default.
func NewUnifier(logger *slog.Logger) *Unifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Unifier{logger: logger}
}

// Unify materializes the canonical trip records, legacy rows first. Every
// row on both sides must carry its ride id as non-empty text; any other
// representation fails the run, because a type mismatch between the sources
// would otherwise concatenate into two half-empty identifier columns
// instead of one. Ride ids seen in more than one row are counted and
// reported, never dropped.
func (u *Unifier) Unify(ctx context.Context, legacy, current *RawTable) ([]domain.TripRecord, int, error) {
	total := len(legacy.Rows) + len(current.Rows)
	records := make([]domain.TripRecord, 0, total)

	// Hashing the ids keeps the seen set small even across multi-quarter
	// inputs.
	seen := make(map[uint64]struct{}, total)
	duplicated := make(map[uint64]struct{})

	for _, table := range []*RawTable{legacy, current} {
		for i, row := range table.Rows {
			id, ok := row[domain.ColRideID].(string)
			if !ok {
				return nil, 0, errors.NewValidationError(
					fmt.Sprintf("ride id must be text before unification, got %T", row[domain.ColRideID])).
					WithContext("source", string(table.Source)).
					WithContext("row", i)
			}
			if id == "" {
				return nil, 0, errors.NewValidationError("ride id is empty").
					WithContext("source", string(table.Source)).
					WithContext("row", i)
			}

			hash := xxh3.HashString(id)
			if _, dup := seen[hash]; dup {
				duplicated[hash] = struct{}{}
			} else {
				seen[hash] = struct{}{}
			}

			records = append(records, materializeRecord(table.Source, id, row))
		}
	}

	u.logger.InfoContext(ctx, "unified trip sources",
		slog.Int("legacy_rows", len(legacy.Rows)),
		slog.Int("current_rows", len(current.Rows)),
		slog.Int("combined_rows", len(records)),
		slog.Int("duplicate_ride_ids", len(duplicated)))

	return records, len(duplicated), nil
}

// materializeRecord converts one canonical-schema row into a TripRecord.
// Absent or nil cells become the record's missing markers.
func materializeRecord(source domain.SchemaGeneration, id string, row Row) domain.TripRecord {
	record := domain.TripRecord{
		RideID:           id,
		BikeType:         textValue(row[domain.ColBikeType]),
		StartStationName: textValue(row[domain.ColStartStationName]),
		StartStationID:   textValue(row[domain.ColStartStationID]),
		EndStationName:   textValue(row[domain.ColEndStationName]),
		EndStationID:     textValue(row[domain.ColEndStationID]),
		RiderCategory:    domain.RiderCategory(textValue(row[domain.ColRiderCategory])),
		Gender:           textValue(row[domain.ColGender]),
		BirthYear:        textValue(row[domain.ColBirthYear]),
		Source:           source,
	}
	if ts, ok := row[domain.ColStartedAt].(time.Time); ok {
		record.StartedAt = ts
	}
	if ts, ok := row[domain.ColEndedAt].(time.Time); ok {
		record.EndedAt = ts
	}
	if seconds, ok := row[domain.ColDurationSeconds].(float64); ok {
		record.DurationSeconds = &seconds
	}
	return record
}

func textValue(v any) string {
	s, _ := v.(string)
	return s
}
