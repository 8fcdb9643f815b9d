package domain

// CategoryCount is one row of the per-category ride count summary.
type CategoryCount struct {
	Category RiderCategory `json:"member_casual" csv:"member_casual"`
	Rides    int64         `json:"rides" csv:"rides"`
}

// CategoryWeekdayCount is one row of the per-category, per-weekday summary.
// Weekday holds the full English day name.
type CategoryWeekdayCount struct {
	Category RiderCategory `json:"member_casual" csv:"member_casual"`
	Weekday  string        `json:"weekday" csv:"weekday"`
	Rides    int64         `json:"rides" csv:"rides"`
}

// CategoryHourCount is one row of the per-category, per-hour summary.
// Hour is the hour of day in the range 0-23.
type CategoryHourCount struct {
	Category RiderCategory `json:"member_casual" csv:"member_casual"`
	Hour     int           `json:"hour" csv:"hour"`
	Rides    int64         `json:"rides" csv:"rides"`
}

// CategoryMonthCount is one row of the per-category, per-month summary.
// Month holds the full English month name.
type CategoryMonthCount struct {
	Category RiderCategory `json:"member_casual" csv:"member_casual"`
	Month    string        `json:"month" csv:"month"`
	Rides    int64         `json:"rides" csv:"rides"`
}

// CategoryMeanDuration is one row of the mean ride duration summary.
type CategoryMeanDuration struct {
	Category            RiderCategory `json:"member_casual" csv:"member_casual"`
	Rides               int64         `json:"rides" csv:"rides"`
	MeanDurationSeconds float64       `json:"mean_duration_seconds" csv:"mean_duration_seconds"`
}

// StationRank is one row of a top-station summary. Rankings are computed
// per rider category; ties on ride count break by station name ascending.
type StationRank struct {
	Category RiderCategory `json:"member_casual" csv:"member_casual"`
	Rank     int           `json:"rank" csv:"rank"`
	Station  string        `json:"station" csv:"station"`
	Rides    int64         `json:"rides" csv:"rides"`
}

// BikeTypeShare is one row of the bike-type distribution summary. Percent
// is the share of the rider category's rides, so the percents within one
// category sum to 100 up to rounding.
type BikeTypeShare struct {
	Category RiderCategory `json:"member_casual" csv:"member_casual"`
	BikeType string        `json:"rideable_type" csv:"rideable_type"`
	Rides    int64         `json:"rides" csv:"rides"`
	Percent  float64       `json:"percent" csv:"percent"`
}

// RideSummary bundles the named summary tables produced from one combined
// trip table. Each slice is a fresh table; generating a summary never
// mutates the source records.
type RideSummary struct {
	RidesByCategory        []CategoryCount        `json:"rides_by_category"`
	RidesByWeekday         []CategoryWeekdayCount `json:"rides_by_weekday"`
	RidesByHour            []CategoryHourCount    `json:"rides_by_hour"`
	RidesByMonth           []CategoryMonthCount   `json:"rides_by_month"`
	MeanDurationByCategory []CategoryMeanDuration `json:"mean_duration_by_category"`
	TopStartStations       []StationRank          `json:"top_start_stations"`
	TopEndStations         []StationRank          `json:"top_end_stations"`
	BikeTypeShares         []BikeTypeShare        `json:"bike_type_shares"`
}
