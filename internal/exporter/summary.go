package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/srstoner21/Cyclistic-Case-Study/internal/config"
	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// Summary table file names under the summary reports directory.
const (
	RidesByCategoryCSV        = "rides_by_category.csv"
	RidesByWeekdayCSV         = "rides_by_weekday.csv"
	RidesByHourCSV            = "rides_by_hour.csv"
	RidesByMonthCSV           = "rides_by_month.csv"
	MeanDurationByCategoryCSV = "mean_duration_by_category.csv"
	TopStartStationsCSV       = "top_start_stations.csv"
	TopEndStationsCSV         = "top_end_stations.csv"
	BikeTypeSharesCSV         = "bike_type_shares.csv"
)

// SummaryExporter writes the aggregate ride statistics: one CSV per summary
// table plus a single JSON envelope bundling the tables with the run report.
type SummaryExporter struct {
	paths     *config.Paths
	csvWriter *CSVWriter
}

// NewSummaryExporter creates a summary exporter.
func NewSummaryExporter(paths *config.Paths) *SummaryExporter {
	return &SummaryExporter{
		paths:     paths,
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportSummaryCSVs writes each summary table to its own CSV file in the
// summary reports directory. Summary CSVs carry a BOM so spreadsheet tools
// open them cleanly.
func (s *SummaryExporter) ExportSummaryCSVs(summary *domain.RideSummary) error {
	exports := []struct {
		file    string
		headers []string
		records [][]string
	}{
		{RidesByCategoryCSV, []string{"member_casual", "rides"}, categoryCountRows(summary.RidesByCategory)},
		{RidesByWeekdayCSV, []string{"member_casual", "weekday", "rides"}, weekdayCountRows(summary.RidesByWeekday)},
		{RidesByHourCSV, []string{"member_casual", "hour", "rides"}, hourCountRows(summary.RidesByHour)},
		{RidesByMonthCSV, []string{"member_casual", "month", "rides"}, monthCountRows(summary.RidesByMonth)},
		{MeanDurationByCategoryCSV, []string{"member_casual", "rides", "mean_duration_seconds"}, meanDurationRows(summary.MeanDurationByCategory)},
		{TopStartStationsCSV, []string{"member_casual", "rank", "station", "rides"}, stationRankRows(summary.TopStartStations)},
		{TopEndStationsCSV, []string{"member_casual", "rank", "station", "rides"}, stationRankRows(summary.TopEndStations)},
		{BikeTypeSharesCSV, []string{"member_casual", "rideable_type", "rides", "percent"}, bikeTypeShareRows(summary.BikeTypeShares)},
	}

	for _, export := range exports {
		path := s.paths.GetSummaryCSVPath(export.file)
		if err := s.csvWriter.WriteSimpleCSV(path, export.headers, export.records); err != nil {
			return fmt.Errorf("failed to write summary table %s: %w", export.file, err)
		}
	}
	return nil
}

// rideSummaryEnvelope is the JSON document bundling one run's aggregate
// tables with its quality report.
type rideSummaryEnvelope struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Report      *domain.RunReport   `json:"report"`
	Summary     *domain.RideSummary `json:"summary"`
}

// ExportRideSummaryJSON writes the JSON envelope to the given path.
func (s *SummaryExporter) ExportRideSummaryJSON(summary *domain.RideSummary, report *domain.RunReport, outputPath string) error {
	envelope := rideSummaryEnvelope{
		GeneratedAt: time.Now(),
		Report:      report,
		Summary:     summary,
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ride summary: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write ride summary: %w", err)
	}
	return nil
}

func categoryCountRows(rows []domain.CategoryCount) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{string(r.Category), formatInt(r.Rides)})
	}
	return out
}

func weekdayCountRows(rows []domain.CategoryWeekdayCount) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{string(r.Category), r.Weekday, formatInt(r.Rides)})
	}
	return out
}

func hourCountRows(rows []domain.CategoryHourCount) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{string(r.Category), strconv.Itoa(r.Hour), formatInt(r.Rides)})
	}
	return out
}

func monthCountRows(rows []domain.CategoryMonthCount) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{string(r.Category), r.Month, formatInt(r.Rides)})
	}
	return out
}

func meanDurationRows(rows []domain.CategoryMeanDuration) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{string(r.Category), formatInt(r.Rides), formatFloat(r.MeanDurationSeconds)})
	}
	return out
}

func stationRankRows(rows []domain.StationRank) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{string(r.Category), strconv.Itoa(r.Rank), r.Station, formatInt(r.Rides)})
	}
	return out
}

func bikeTypeShareRows(rows []domain.BikeTypeShare) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{string(r.Category), r.BikeType, formatInt(r.Rides), formatFloat(r.Percent)})
	}
	return out
}
