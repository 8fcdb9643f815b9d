package domain

import (
	"time"
)

// RiderCategory identifies the rider membership bucket for a trip.
type RiderCategory string

const (
	RiderMember RiderCategory = "member"
	RiderCasual RiderCategory = "casual"
)

// legacyRiderLabels maps the retired membership labels onto the canonical
// vocabulary. Values outside this map pass through unchanged so that new or
// unexpected labels surface in the aggregates instead of being silently lost.
var legacyRiderLabels = map[string]RiderCategory{
	"Subscriber": RiderMember,
	"Customer":   RiderCasual,
}

// CanonicalRiderCategory translates a raw rider label to the canonical
// vocabulary. The second return value reports whether the result is one of
// the canonical categories; callers use it to count non-canonical labels.
func CanonicalRiderCategory(raw string) (RiderCategory, bool) {
	if mapped, ok := legacyRiderLabels[raw]; ok {
		return mapped, true
	}
	c := RiderCategory(raw)
	return c, c == RiderMember || c == RiderCasual
}

// SchemaGeneration identifies which trip file layout a source uses.
type SchemaGeneration string

const (
	SchemaLegacy  SchemaGeneration = "legacy"
	SchemaCurrent SchemaGeneration = "current"
	SchemaUnknown SchemaGeneration = "unknown"
)

// TripRecord is the canonical representation of a single ride after schema
// reconciliation. Missing values are modelled explicitly: a zero time.Time
// for timestamps, an empty string for text fields, and a nil pointer for
// the derived duration.
type TripRecord struct {
	RideID           string        `json:"ride_id" csv:"ride_id" validate:"required"`
	BikeType         string        `json:"rideable_type,omitempty" csv:"rideable_type"`
	StartedAt        time.Time     `json:"started_at" csv:"started_at"`
	EndedAt          time.Time     `json:"ended_at" csv:"ended_at"`
	StartStationName string        `json:"start_station_name" csv:"start_station_name"`
	StartStationID   string        `json:"start_station_id,omitempty" csv:"start_station_id"`
	EndStationName   string        `json:"end_station_name" csv:"end_station_name"`
	EndStationID     string        `json:"end_station_id,omitempty" csv:"end_station_id"`
	RiderCategory    RiderCategory `json:"member_casual" csv:"member_casual"`

	// Fields carried from one generation only; empty on the other side.
	Gender    string `json:"gender,omitempty" csv:"gender"`
	BirthYear string `json:"birthyear,omitempty" csv:"birthyear"`

	// DurationSeconds is nil when the duration could not be derived.
	DurationSeconds *float64 `json:"duration_seconds" csv:"duration_seconds"`

	// Source records which file generation the row came from.
	Source SchemaGeneration `json:"source" csv:"source"`
}

// HasStartTime reports whether the start timestamp parsed successfully.
func (t *TripRecord) HasStartTime() bool {
	return !t.StartedAt.IsZero()
}

// StartHour returns the hour of day (0-23) the ride began. The second
// return value is false when the start timestamp is missing.
func (t *TripRecord) StartHour() (int, bool) {
	if !t.HasStartTime() {
		return 0, false
	}
	return t.StartedAt.Hour(), true
}

// StartWeekday returns the weekday the ride began.
func (t *TripRecord) StartWeekday() (time.Weekday, bool) {
	if !t.HasStartTime() {
		return time.Sunday, false
	}
	return t.StartedAt.Weekday(), true
}

// StartMonth returns the calendar month the ride began.
func (t *TripRecord) StartMonth() (time.Month, bool) {
	if !t.HasStartTime() {
		return time.January, false
	}
	return t.StartedAt.Month(), true
}

// Duration returns the derived ride duration. The second return value is
// false when the duration is missing.
func (t *TripRecord) Duration() (time.Duration, bool) {
	if t.DurationSeconds == nil {
		return 0, false
	}
	return time.Duration(*t.DurationSeconds * float64(time.Second)), true
}
