package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	TripsDir      string
	ReportsDir    string
	CacheDir      string
	LogsDir       string

	// Report subdirectories for organized structure
	SummaryReportsDir  string
	CombinedReportsDir string

	// Well-known source exports (inputs)
	LegacyTripsCSV  string
	CurrentTripsCSV string

	// Well-known report files (outputs)
	CombinedTripsCSV string
	RideSummaryJSON  string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	// Get the directory containing the executable
	exeDir := filepath.Dir(exe)

	// All paths are relative to the executable directory
	// This ensures the application works correctly whether run from dev/ or dist/
	// Directory structure:
	// dist/
	//   ├── config.yaml       (optional overrides)
	//   ├── data/
	//   │   ├── trips/        (Divvy source exports)
	//   │   ├── reports/
	//   │   │   ├── summary/  (aggregate CSVs + ride_summary.json)
	//   │   │   └── combined/ (unified trip CSV)
	//   │   └── cache/        (temporary files)
	//   └── logs/             (application logs)

	dataDir := filepath.Join(exeDir, DefaultDataDir)
	reportsDir := filepath.Join(exeDir, DefaultReportsDir)
	tripsDir := filepath.Join(exeDir, DefaultTripsDir)

	summaryReportsDir := filepath.Join(reportsDir, "summary")
	combinedReportsDir := filepath.Join(reportsDir, "combined")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		TripsDir:      tripsDir,
		ReportsDir:    reportsDir,
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(exeDir, DefaultLogsDir),

		SummaryReportsDir:  summaryReportsDir,
		CombinedReportsDir: combinedReportsDir,

		// Source exports (inputs placed next to the binary)
		LegacyTripsCSV:  filepath.Join(tripsDir, DefaultLegacyTripsFile),
		CurrentTripsCSV: filepath.Join(tripsDir, DefaultCurrentTripsFile),

		// Well-known report files (in proper subdirectories)
		CombinedTripsCSV: filepath.Join(combinedReportsDir, "trips_combined.csv"),
		RideSummaryJSON:  filepath.Join(summaryReportsDir, "ride_summary.json"),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.TripsDir,
		p.ReportsDir,
		p.SummaryReportsDir,
		p.CombinedReportsDir,
		p.CacheDir,
		p.LogsDir,
	}

	// Log directory creation
	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		// Log successful directory creation
		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetSummaryCSVPath returns the path for a summary CSV file (e.g., rides_by_weekday.csv)
func (p *Paths) GetSummaryCSVPath(filename string) string {
	return filepath.Join(p.SummaryReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCachePath returns the path for a cache file
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetCombinedTripsCSVPath returns the path for the trips_combined.csv file
func (p *Paths) GetCombinedTripsCSVPath() string {
	return p.CombinedTripsCSV
}

// GetRideSummaryJSONPath returns the path for the ride_summary.json file
func (p *Paths) GetRideSummaryJSONPath() string {
	return p.RideSummaryJSON
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("trips", p.TripsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("cache", p.CacheDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("source_files",
			slog.String("legacy_trips", p.LegacyTripsCSV),
			slog.String("current_trips", p.CurrentTripsCSV),
		),
		slog.Group("report_files",
			slog.String("combined_trips_csv", p.CombinedTripsCSV),
			slog.String("ride_summary_json", p.RideSummaryJSON),
		))
}

// ValidateSourceFiles checks if the source trip exports exist and returns
// detailed error information. Missing source files are fatal before any
// transformation starts.
func (p *Paths) ValidateSourceFiles(legacyFile, currentFile string) error {
	requiredFiles := map[string]string{
		"Legacy trips":  legacyFile,
		"Current trips": currentFile,
	}

	var missingFiles []string
	for name, path := range requiredFiles {
		if !FileExists(path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", name, path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s. %s", strings.Join(missingFiles, ", "), ErrSourceFileMissing)
	}

	return nil
}
