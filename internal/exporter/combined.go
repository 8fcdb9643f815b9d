package exporter

import (
	"fmt"
	"strconv"

	"github.com/srstoner21/Cyclistic-Case-Study/internal/config"
	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// CombinedExporter writes the reconciled trip table to disk.
type CombinedExporter struct {
	csvWriter *CSVWriter
}

// NewCombinedExporter creates a combined-table exporter
func NewCombinedExporter(paths *config.Paths) *CombinedExporter {
	return &CombinedExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportCombinedTrips streams the reconciled table to a single CSV file.
// Rows keep pipeline order: the legacy block first, then the current block,
// exactly as unified. The file carries no BOM so analysis tools read the
// header row cleanly.
func (c *CombinedExporter) ExportCombinedTrips(records []domain.TripRecord, outputPath string) error {
	stream, err := c.csvWriter.CreateStreamWriter(outputPath, c.getHeaders(), false)
	if err != nil {
		return fmt.Errorf("failed to create stream writer for combined trips: %w", err)
	}

	for i := range records {
		if err := stream.WriteRecord(c.recordToCSVRow(&records[i])); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write trip %s: %w", records[i].RideID, err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close combined trips file: %w", err)
	}

	return nil
}

// getHeaders returns the combined CSV header row: the union schema, the
// calendar fields derived from the start timestamp, and the source tag.
func (c *CombinedExporter) getHeaders() []string {
	headers := make([]string, 0, len(domain.CombinedColumns)+4)
	headers = append(headers, domain.CombinedColumns...)
	headers = append(headers, "ride_month", "ride_weekday", "ride_hour", "source")
	return headers
}

// recordToCSVRow converts a trip record to a combined CSV row. Missing
// values become empty cells.
func (c *CombinedExporter) recordToCSVRow(record *domain.TripRecord) []string {
	var month, weekday, hour string
	if m, ok := record.StartMonth(); ok {
		month = m.String()
	}
	if w, ok := record.StartWeekday(); ok {
		weekday = w.String()
	}
	if h, ok := record.StartHour(); ok {
		hour = strconv.Itoa(h)
	}

	var duration string
	if record.DurationSeconds != nil {
		duration = formatSeconds(*record.DurationSeconds)
	}

	return []string{
		record.RideID,
		record.BikeType,
		formatTimestamp(record.StartedAt),
		formatTimestamp(record.EndedAt),
		record.StartStationName,
		record.StartStationID,
		record.EndStationName,
		record.EndStationID,
		string(record.RiderCategory),
		record.Gender,
		record.BirthYear,
		duration,
		month,
		weekday,
		hour,
		string(record.Source),
	}
}
