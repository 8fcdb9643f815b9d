package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// AggregatorConfig holds tuning options for summary generation.
type AggregatorConfig struct {
	// TopStations is the number of stations kept per rider category in the
	// station rankings.
	TopStations int
}

// Aggregator computes the descriptive summaries over the unified trip
// table. Every operation returns a fresh, deterministically ordered table
// and never reorders or mutates the input records. Rider categories outside
// the canonical pair appear as their own rows rather than being folded away.
type Aggregator struct {
	logger      *slog.Logger
	topStations int
}

// NewAggregator creates an aggregator with the given configuration.
func NewAggregator(logger *slog.Logger, config AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopStations <= 0 {
		config.TopStations = 10
	}
	return &Aggregator{logger: logger, topStations: config.TopStations}
}

// Summarize computes every summary table over the unified records.
func (a *Aggregator) Summarize(ctx context.Context, records []domain.TripRecord) *domain.RideSummary {
	a.logger.InfoContext(ctx, "aggregating ride statistics",
		slog.Int("records", len(records)),
		slog.Int("top_stations", a.topStations))

	summary := &domain.RideSummary{
		RidesByCategory:        a.RidesByCategory(records),
		RidesByWeekday:         a.RidesByWeekday(records),
		RidesByHour:            a.RidesByHour(records),
		RidesByMonth:           a.RidesByMonth(records),
		MeanDurationByCategory: a.MeanDurationByCategory(records),
		TopStartStations:       a.TopStartStations(records),
		TopEndStations:         a.TopEndStations(records),
		BikeTypeShares:         a.BikeTypeShares(records),
	}

	a.logger.InfoContext(ctx, "ride statistics ready",
		slog.Int("categories", len(summary.RidesByCategory)),
		slog.Int("weekday_rows", len(summary.RidesByWeekday)),
		slog.Int("hour_rows", len(summary.RidesByHour)),
		slog.Int("month_rows", len(summary.RidesByMonth)),
		slog.Int("station_rows", len(summary.TopStartStations)+len(summary.TopEndStations)),
		slog.Int("bike_type_rows", len(summary.BikeTypeShares)))

	return summary
}

// RidesByCategory counts every unified row per rider category, so the
// counts sum to the unified table's row count. Rows are ordered by category
// ascending.
func (a *Aggregator) RidesByCategory(records []domain.TripRecord) []domain.CategoryCount {
	counts := make(map[domain.RiderCategory]int64)
	for i := range records {
		counts[records[i].RiderCategory]++
	}

	out := make([]domain.CategoryCount, 0, len(counts))
	for _, category := range sortedCategories(counts) {
		out = append(out, domain.CategoryCount{Category: category, Rides: counts[category]})
	}
	return out
}

// RidesByWeekday counts rides per (category, weekday). The weekday comes
// from the start timestamp; rows whose start failed to parse are excluded.
// Rows are ordered by category ascending, then Sunday-first calendar order.
func (a *Aggregator) RidesByWeekday(records []domain.TripRecord) []domain.CategoryWeekdayCount {
	counts := make(map[domain.RiderCategory]map[time.Weekday]int64)
	for i := range records {
		weekday, ok := records[i].StartWeekday()
		if !ok {
			continue
		}
		byDay := counts[records[i].RiderCategory]
		if byDay == nil {
			byDay = make(map[time.Weekday]int64)
			counts[records[i].RiderCategory] = byDay
		}
		byDay[weekday]++
	}

	var out []domain.CategoryWeekdayCount
	for _, category := range sortedCategories(counts) {
		for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
			if rides, ok := counts[category][weekday]; ok {
				out = append(out, domain.CategoryWeekdayCount{
					Category: category,
					Weekday:  weekday.String(),
					Rides:    rides,
				})
			}
		}
	}
	return out
}

// RidesByHour counts rides per (category, hour of day 0-23) from the start
// timestamp. Rows are ordered by category ascending, then hour ascending.
func (a *Aggregator) RidesByHour(records []domain.TripRecord) []domain.CategoryHourCount {
	counts := make(map[domain.RiderCategory]map[int]int64)
	for i := range records {
		hour, ok := records[i].StartHour()
		if !ok {
			continue
		}
		byHour := counts[records[i].RiderCategory]
		if byHour == nil {
			byHour = make(map[int]int64)
			counts[records[i].RiderCategory] = byHour
		}
		byHour[hour]++
	}

	var out []domain.CategoryHourCount
	for _, category := range sortedCategories(counts) {
		for hour := 0; hour < 24; hour++ {
			if rides, ok := counts[category][hour]; ok {
				out = append(out, domain.CategoryHourCount{
					Category: category,
					Hour:     hour,
					Rides:    rides,
				})
			}
		}
	}
	return out
}

// RidesByMonth counts rides per (category, calendar month) from the start
// timestamp. Rows are ordered by category ascending, then January-first.
func (a *Aggregator) RidesByMonth(records []domain.TripRecord) []domain.CategoryMonthCount {
	counts := make(map[domain.RiderCategory]map[time.Month]int64)
	for i := range records {
		month, ok := records[i].StartMonth()
		if !ok {
			continue
		}
		byMonth := counts[records[i].RiderCategory]
		if byMonth == nil {
			byMonth = make(map[time.Month]int64)
			counts[records[i].RiderCategory] = byMonth
		}
		byMonth[month]++
	}

	var out []domain.CategoryMonthCount
	for _, category := range sortedCategories(counts) {
		for month := time.January; month <= time.December; month++ {
			if rides, ok := counts[category][month]; ok {
				out = append(out, domain.CategoryMonthCount{
					Category: category,
					Month:    month.String(),
					Rides:    rides,
				})
			}
		}
	}
	return out
}

// MeanDurationByCategory averages the ride duration per rider category over
// the rows that carry a duration. Rows are ordered by category ascending.
func (a *Aggregator) MeanDurationByCategory(records []domain.TripRecord) []domain.CategoryMeanDuration {
	type accumulator struct {
		rides   int64
		seconds float64
	}
	totals := make(map[domain.RiderCategory]*accumulator)
	for i := range records {
		if records[i].DurationSeconds == nil {
			continue
		}
		acc := totals[records[i].RiderCategory]
		if acc == nil {
			acc = &accumulator{}
			totals[records[i].RiderCategory] = acc
		}
		acc.rides++
		acc.seconds += *records[i].DurationSeconds
	}

	out := make([]domain.CategoryMeanDuration, 0, len(totals))
	for _, category := range sortedCategories(totals) {
		acc := totals[category]
		out = append(out, domain.CategoryMeanDuration{
			Category:            category,
			Rides:               acc.rides,
			MeanDurationSeconds: acc.seconds / float64(acc.rides),
		})
	}
	return out
}

// TopStartStations ranks the most frequent start stations within each rider
// category.
func (a *Aggregator) TopStartStations(records []domain.TripRecord) []domain.StationRank {
	return a.topStationRanks(records, func(t *domain.TripRecord) string { return t.StartStationName })
}

// TopEndStations ranks the most frequent end stations within each rider
// category.
func (a *Aggregator) TopEndStations(records []domain.TripRecord) []domain.StationRank {
	return a.topStationRanks(records, func(t *domain.TripRecord) string { return t.EndStationName })
}

// topStationRanks ranks stations by ride count within each rider category,
// keeping the configured number of stations per category. Ties on ride
// count break by station name ascending so rankings are stable run to run.
func (a *Aggregator) topStationRanks(records []domain.TripRecord, station func(*domain.TripRecord) string) []domain.StationRank {
	counts := make(map[domain.RiderCategory]map[string]int64)
	for i := range records {
		name := station(&records[i])
		if name == "" {
			continue
		}
		byStation := counts[records[i].RiderCategory]
		if byStation == nil {
			byStation = make(map[string]int64)
			counts[records[i].RiderCategory] = byStation
		}
		byStation[name]++
	}

	var out []domain.StationRank
	for _, category := range sortedCategories(counts) {
		byStation := counts[category]
		ranked := make([]domain.StationRank, 0, len(byStation))
		for name, rides := range byStation {
			ranked = append(ranked, domain.StationRank{Category: category, Station: name, Rides: rides})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Rides != ranked[j].Rides {
				return ranked[i].Rides > ranked[j].Rides
			}
			return ranked[i].Station < ranked[j].Station
		})
		if len(ranked) > a.topStations {
			ranked = ranked[:a.topStations]
		}
		for i := range ranked {
			ranked[i].Rank = i + 1
		}
		out = append(out, ranked...)
	}
	return out
}

// BikeTypeShares computes the bike-type distribution per rider category as
// a count and a share of that category's rides. Rows without a bike type
// stay out of both the counts and the denominators, so the shares within a
// category sum to 100 up to rounding. Rows are ordered by category
// ascending, then count descending with ties by bike type ascending.
func (a *Aggregator) BikeTypeShares(records []domain.TripRecord) []domain.BikeTypeShare {
	counts := make(map[domain.RiderCategory]map[string]int64)
	totals := make(map[domain.RiderCategory]int64)
	for i := range records {
		bike := records[i].BikeType
		if bike == "" {
			continue
		}
		byBike := counts[records[i].RiderCategory]
		if byBike == nil {
			byBike = make(map[string]int64)
			counts[records[i].RiderCategory] = byBike
		}
		byBike[bike]++
		totals[records[i].RiderCategory]++
	}

	var out []domain.BikeTypeShare
	for _, category := range sortedCategories(counts) {
		byBike := counts[category]
		shares := make([]domain.BikeTypeShare, 0, len(byBike))
		for bike, rides := range byBike {
			shares = append(shares, domain.BikeTypeShare{
				Category: category,
				BikeType: bike,
				Rides:    rides,
				Percent:  float64(rides) * 100 / float64(totals[category]),
			})
		}
		sort.Slice(shares, func(i, j int) bool {
			if shares[i].Rides != shares[j].Rides {
				return shares[i].Rides > shares[j].Rides
			}
			return shares[i].BikeType < shares[j].BikeType
		})
		out = append(out, shares...)
	}
	return out
}

// sortedCategories returns the map's rider categories in ascending order,
// giving every per-category table one deterministic outer ordering.
func sortedCategories[V any](m map[domain.RiderCategory]V) []domain.RiderCategory {
	categories := make([]domain.RiderCategory, 0, len(m))
	for category := range m {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
