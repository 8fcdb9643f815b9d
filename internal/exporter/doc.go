// Package exporter writes the reconciliation pipeline's outputs to disk.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and an optional UTF-8 BOM for Excel compatibility.
//
// CombinedExporter: Streams the unified canonical trip table to a single
// combined CSV, legacy rows first, in pipeline order.
//
// SummaryExporter: Writes each aggregate ride statistic to its own CSV in
// the summary reports directory and bundles all tables with the run report
// into a ride_summary.json envelope.
//
// ConsoleRenderer renders the summary tables to a terminal for ad-hoc
// inspection; the CSV and JSON exports are the interface downstream
// reporting tools consume.
//
// Example usage:
//
//	combined := exporter.NewCombinedExporter(paths)
//	err := combined.ExportCombinedTrips(result.Records, paths.CombinedTripsCSV)
//
//	summaries := exporter.NewSummaryExporter(paths)
//	err = summaries.ExportSummaryCSVs(result.Summary)
//	err = summaries.ExportRideSummaryJSON(result.Summary, result.Report, paths.RideSummaryJSON)
package exporter
