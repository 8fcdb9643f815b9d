package config

import "time"

// Application constants - all hardcoded values for the trip reconciliation pipeline
const (
	// Application Info
	AppName        = "Cyclistic Trip Reconciler"
	AppVersion     = "1.0.0"
	AppServiceName = "cyclistic-reconciler"

	// File Paths (relative to executable)
	DefaultDataDir     = "data"
	DefaultLogsDir     = "logs"
	DefaultTripsDir    = "data/trips"
	DefaultReportsDir  = "data/reports"
	DefaultLogFilePath = "logs/reconciler.log"

	// Well-known source exports. The legacy file carries the 2019 Q1
	// rider schema, the current file carries the 2020 Q1 schema.
	DefaultLegacyTripsFile  = "divvy_trips_2019_q1.csv"
	DefaultCurrentTripsFile = "divvy_trips_2020_q1.csv"

	// Aggregation Settings
	DefaultTopStations = 10

	// Operation Timeouts
	DefaultStageTimeout    = 30 * time.Minute
	DefaultPipelineTimeout = 2 * time.Hour

	// Telemetry Settings
	DefaultPushJobName = "cyclistic_reconciler"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Error Messages
	ErrSourceFileMissing = "Source trip export not found. Place the Divvy CSV exports under data/trips or point the pipeline at them explicitly."
	ErrSchemaUnknown     = "Could not recognize the trip export schema. Expected either the 2019 or the 2020 Divvy column layout."

	// Success Messages
	MsgPipelineSuccess = "Trip reconciliation completed successfully."
)
