package domain

// TimestampLayout is the textual timestamp pattern both source generations
// use for started_at and ended_at. Exports render timestamps in the same
// layout so the combined file round-trips.
const TimestampLayout = "2006-01-02 15:04:05"

// Canonical column names shared by both source generations after
// normalization. These match the current-generation file headers so that
// current files pass through the normalizer unchanged.
const (
	ColRideID           = "ride_id"
	ColBikeType         = "rideable_type"
	ColStartedAt        = "started_at"
	ColEndedAt          = "ended_at"
	ColStartStationName = "start_station_name"
	ColStartStationID   = "start_station_id"
	ColEndStationName   = "end_station_name"
	ColEndStationID     = "end_station_id"
	ColRiderCategory    = "member_casual"

	// Columns present on one generation only.
	ColGender    = "gender"
	ColBirthYear = "birthyear"

	// Columns introduced by the field deriver.
	ColDurationSeconds = "duration_seconds"
)

// Legacy-generation column names.
const (
	LegacyColTripID       = "trip_id"
	LegacyColStartTime    = "start_time"
	LegacyColEndTime      = "end_time"
	LegacyColBikeID       = "bikeid"
	LegacyColTripDuration = "tripduration"
	LegacyColFromName     = "from_station_name"
	LegacyColFromID       = "from_station_id"
	LegacyColToName       = "to_station_name"
	LegacyColToID         = "to_station_id"
	LegacyColUserType     = "usertype"
)

// LegacyRename maps legacy column names to their canonical equivalents.
// tripduration is intentionally absent: the deriver consumes it directly
// and replaces it with duration_seconds.
var LegacyRename = map[string]string{
	LegacyColTripID:    ColRideID,
	LegacyColStartTime: ColStartedAt,
	LegacyColEndTime:   ColEndedAt,
	LegacyColBikeID:    ColBikeType,
	LegacyColFromName:  ColStartStationName,
	LegacyColFromID:    ColStartStationID,
	LegacyColToName:    ColEndStationName,
	LegacyColToID:      ColEndStationID,
	LegacyColUserType:  ColRiderCategory,
}

// GeoColumns lists the coordinate columns the row filter drops. They exist
// only on current-generation files.
var GeoColumns = []string{"start_lat", "start_lng", "end_lat", "end_lng"}

// CombinedColumns is the union schema of the reconciled table, in output
// order. Fields present on one generation only hold missing markers on the
// other side.
var CombinedColumns = []string{
	ColRideID,
	ColBikeType,
	ColStartedAt,
	ColEndedAt,
	ColStartStationName,
	ColStartStationID,
	ColEndStationName,
	ColEndStationID,
	ColRiderCategory,
	ColGender,
	ColBirthYear,
	ColDurationSeconds,
}

// DetectGeneration classifies a header row as legacy, current, or unknown.
// The trip identifier column is the discriminator: the two generations never
// share one.
func DetectGeneration(header []string) SchemaGeneration {
	for _, col := range header {
		switch col {
		case LegacyColTripID:
			return SchemaLegacy
		case ColRideID:
			return SchemaCurrent
		}
	}
	return SchemaUnknown
}
