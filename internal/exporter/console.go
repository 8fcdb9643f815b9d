package exporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// ConsoleRenderer prints summary tables to a writer for ad-hoc inspection.
// The exported CSV and JSON files are the real interface for downstream
// reporting; this rendering exists for the -print flag.
type ConsoleRenderer struct {
	out io.Writer
}

// NewConsoleRenderer creates a console renderer writing to out.
func NewConsoleRenderer(out io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{out: out}
}

// RenderSummary prints every summary table in a fixed order.
func (c *ConsoleRenderer) RenderSummary(summary *domain.RideSummary) {
	c.renderTable("Rides by rider category", []string{"Category", "Rides"}, categoryCountRows(summary.RidesByCategory))
	c.renderTable("Rides by weekday", []string{"Category", "Weekday", "Rides"}, weekdayCountRows(summary.RidesByWeekday))
	c.renderTable("Rides by hour of day", []string{"Category", "Hour", "Rides"}, hourCountRows(summary.RidesByHour))
	c.renderTable("Rides by month", []string{"Category", "Month", "Rides"}, monthCountRows(summary.RidesByMonth))
	c.renderTable("Mean ride duration (seconds)", []string{"Category", "Rides", "Mean Duration"}, meanDurationRows(summary.MeanDurationByCategory))
	c.renderTable("Top start stations", []string{"Category", "Rank", "Station", "Rides"}, stationRankRows(summary.TopStartStations))
	c.renderTable("Top end stations", []string{"Category", "Rank", "Station", "Rides"}, stationRankRows(summary.TopEndStations))
	c.renderTable("Bike type share", []string{"Category", "Bike Type", "Rides", "Percent"}, bikeTypeShareRows(summary.BikeTypeShares))
}

// RenderReport prints the run quality report.
func (c *ConsoleRenderer) RenderReport(report *domain.RunReport) {
	fmt.Fprintf(c.out, "\nRun %s\n", report.RunID)

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"Source", "File", "Loaded", "Retained", "Dropped", "Parse Failures", "Non-Canonical Riders"})
	for _, s := range report.Sources {
		table.Append([]string{
			string(s.Source),
			s.File,
			strconv.Itoa(s.RowsLoaded),
			strconv.Itoa(s.RowsRetained),
			strconv.Itoa(s.DroppedDuration + s.DroppedStation),
			strconv.Itoa(s.StartParseFailures + s.EndParseFailures),
			strconv.Itoa(s.NonCanonicalTotal()),
		})
	}
	table.Render()

	fmt.Fprintf(c.out, "Combined rows: %d  Duplicate ride ids: %d  Elapsed: %s\n",
		report.RowsCombined, report.DuplicateRideIDs, report.Elapsed)
}

func (c *ConsoleRenderer) renderTable(title string, headers []string, rows [][]string) {
	fmt.Fprintf(c.out, "\n%s\n", title)

	table := tablewriter.NewWriter(c.out)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
}
