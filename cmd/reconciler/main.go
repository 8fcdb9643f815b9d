package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/srstoner21/Cyclistic-Case-Study/internal/config"
	"github.com/srstoner21/Cyclistic-Case-Study/internal/dataprocessing"
	"github.com/srstoner21/Cyclistic-Case-Study/internal/exporter"
	"github.com/srstoner21/Cyclistic-Case-Study/internal/infrastructure"
	"github.com/srstoner21/Cyclistic-Case-Study/internal/operations"
	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// runOptions carries the parsed command-line flags.
type runOptions struct {
	legacyFile  string
	currentFile string
	topStations int
	printTables bool
}

func main() {
	opts := runOptions{}
	flag.StringVar(&opts.legacyFile, "legacy", "", "legacy-schema trip export (defaults to data/trips/divvy_trips_2019_q1.csv relative to executable)")
	flag.StringVar(&opts.currentFile, "current", "", "current-schema trip export (defaults to data/trips/divvy_trips_2020_q1.csv relative to executable)")
	flag.IntVar(&opts.topStations, "top", 0, "station ranking depth per rider category (defaults to configured value)")
	flag.BoolVar(&opts.printTables, "print", false, "render the summary tables to stdout")
	flag.Parse()

	// All cleanup lives in run so deferred shutdown still fires on failure.
	os.Exit(run(opts))
}

func run(opts runOptions) int {
	// Initialize paths first to get default directories
	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		return 1
	}

	// Ensure all required directories exist
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("reconciler.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx := infrastructure.EnsureRunID(context.Background())

	// A stuck batch should die eventually even when no stage timeout fires.
	ctx, cancel := context.WithTimeout(ctx, config.DefaultPipelineTimeout)
	defer cancel()

	legacyFile := resolveSourcePath(opts.legacyFile, cfg.Pipeline.LegacyFile, paths.LegacyTripsCSV)
	currentFile := resolveSourcePath(opts.currentFile, cfg.Pipeline.CurrentFile, paths.CurrentTripsCSV)

	logger.InfoContext(ctx, "Starting trip reconciliation",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("legacy_file", legacyFile),
		slog.String("current_file", currentFile),
		slog.String("executable_dir", paths.ExecutableDir))

	// A missing source file is fatal before any transformation begins.
	if err := paths.ValidateSourceFiles(legacyFile, currentFile); err != nil {
		return failRun(ctx, logger, nil, "Source validation failed", err)
	}

	providers, pipelineMetrics := setupTelemetry(ctx, cfg, logger)
	var collector *infrastructure.RuntimeMetricsCollector
	if providers != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
			}
		}()

		// Sample Go runtime stats while the batch runs.
		collector, err = infrastructure.NewRuntimeMetricsCollector(providers.Meter, 5*time.Second)
		if err != nil {
			logger.WarnContext(ctx, "Runtime metrics unavailable", slog.String("error", err.Error()))
			collector = nil
		} else {
			go collector.Start(ctx)
			defer collector.Stop()
		}
	}

	runnerOpts := operations.RunnerOptions{
		Metrics: pipelineMetrics,
		Timeout: cfg.Pipeline.StageTimeout,
	}
	if providers != nil {
		runnerOpts.Tracer = providers.Tracer
	}
	runner := operations.NewStageRunner(logger, runnerOpts)

	top := cfg.Pipeline.TopStations
	if opts.topStations > 0 {
		top = opts.topStations
	}
	rec := dataprocessing.NewReconciler(logger, dataprocessing.Options{
		TopStations:  top,
		ParallelLoad: cfg.Pipeline.ParallelLoad,
		Runner:       runner,
	})

	started := time.Now()
	result, err := rec.Run(ctx, legacyFile, currentFile)
	infrastructure.RecordRunMetrics(ctx, pipelineMetrics, infrastructure.GetRunID(ctx), time.Since(started), err == nil, err)
	if err != nil {
		return failRun(ctx, logger, providers, "Reconciliation failed", err)
	}

	recordReportMetrics(ctx, pipelineMetrics, result.Report)

	if err := exportResults(paths, result); err != nil {
		return failRun(ctx, logger, providers, "Export failed", err)
	}

	logger.InfoContext(ctx, "Reports written",
		slog.String("combined_csv", paths.GetCombinedTripsCSVPath()),
		slog.String("summary_dir", paths.SummaryReportsDir),
		slog.String("summary_json", paths.GetRideSummaryJSONPath()))

	if opts.printTables {
		renderer := exporter.NewConsoleRenderer(os.Stdout)
		renderer.RenderSummary(result.Summary)
		renderer.RenderReport(result.Report)
	}

	if collector != nil {
		if stats := collector.GetCurrentStats(ctx); stats != nil {
			infrastructure.WithFields(logger, stats.FormatStats()).InfoContext(ctx, "Final runtime snapshot")
		}
	}
	logger.InfoContext(ctx, config.MsgPipelineSuccess,
		slog.Duration("elapsed", time.Since(started)))

	pushMetrics(ctx, providers, logger)
	return 0
}

// failRun logs a fatal pipeline error and still pushes whatever metrics the
// run accumulated before it died.
func failRun(ctx context.Context, logger *slog.Logger, providers *infrastructure.OTelProviders, msg string, err error) int {
	infrastructure.WithError(logger, err).ErrorContext(ctx, msg)
	pushMetrics(ctx, providers, logger)
	return 1
}

// resolveSourcePath picks the first configured location for a source file:
// command-line flag, then config, then the well-known path.
func resolveSourcePath(flagValue, configValue, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if configValue != "" {
		return configValue
	}
	return defaultValue
}

// setupTelemetry initializes tracing and metrics when telemetry is enabled.
// Telemetry failures degrade to a plain run, they never abort the batch.
func setupTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*infrastructure.OTelProviders, *infrastructure.PipelineMetrics) {
	if !cfg.Telemetry.Enabled {
		return nil, nil
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		logger.WarnContext(ctx, "Telemetry initialization failed, continuing without it",
			slog.String("error", err.Error()))
		return nil, nil
	}

	pipelineMetrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		logger.WarnContext(ctx, "Metric creation failed, continuing without metrics",
			slog.String("error", err.Error()))
		return providers, nil
	}
	return providers, pipelineMetrics
}

// recordReportMetrics feeds the run report's quality counters into the
// pipeline meters.
func recordReportMetrics(ctx context.Context, m *infrastructure.PipelineMetrics, report *domain.RunReport) {
	if m == nil {
		return
	}

	for _, s := range report.Sources {
		attrs := metric.WithAttributes(attribute.String("source", string(s.Source)))
		m.RowsLoaded.Add(ctx, int64(s.RowsLoaded), attrs)
		m.RowsRetained.Add(ctx, int64(s.RowsRetained), attrs)
		m.RowsDropped.Add(ctx, int64(s.DroppedDuration+s.DroppedStation), attrs)
		m.TimestampParseFailures.Add(ctx, int64(s.StartParseFailures+s.EndParseFailures), attrs)
		m.NonCanonicalRiders.Add(ctx, int64(s.NonCanonicalTotal()), attrs)
	}
	m.RowsCombined.Add(ctx, int64(report.RowsCombined))
	m.DuplicateRideIDs.Add(ctx, int64(report.DuplicateRideIDs))
}

// exportResults writes the combined table, the per-table summary CSVs, and
// the JSON envelope.
func exportResults(paths *config.Paths, result *dataprocessing.Result) error {
	combined := exporter.NewCombinedExporter(paths)
	if err := combined.ExportCombinedTrips(result.Records, paths.GetCombinedTripsCSVPath()); err != nil {
		return err
	}

	summaries := exporter.NewSummaryExporter(paths)
	if err := summaries.ExportSummaryCSVs(result.Summary); err != nil {
		return err
	}
	return summaries.ExportRideSummaryJSON(result.Summary, result.Report, paths.GetRideSummaryJSONPath())
}

func pushMetrics(ctx context.Context, providers *infrastructure.OTelProviders, logger *slog.Logger) {
	if providers == nil {
		return
	}
	if err := providers.PushMetrics(ctx); err != nil {
		logger.WarnContext(ctx, "Metrics push failed", slog.String("error", err.Error()))
	}
}
