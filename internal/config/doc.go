// Package config provides centralized configuration management for the
// Cyclistic trip reconciliation pipeline. It handles loading configuration
// from multiple sources, validation, and provides a type-safe API for
// accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration files (YAML)
//	3. Default values (lowest priority)
//
// Defaults are applied through envconfig struct tags before the file merge,
// so a YAML value only takes effect for fields that carry no default.
//
// # Environment Variables
//
// All environment variables follow the pattern CYCLISTIC_* for namespacing:
//
//	CYCLISTIC_LOGGING_LEVEL=debug
//	CYCLISTIC_PIPELINE_LEGACY_FILE=/exports/divvy_trips_2019_q1.csv
//	CYCLISTIC_PIPELINE_TOP_STATIONS=25
//	CYCLISTIC_TELEMETRY_PUSHGATEWAY_URL=http://localhost:9091
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	summaryPath := paths.GetSummaryCSVPath("rides_by_weekday.csv")
//	combinedPath := paths.GetCombinedTripsCSVPath()
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- File paths are accessible
//	- URLs are properly formatted
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
