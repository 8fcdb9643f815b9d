package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"github.com/srstoner21/Cyclistic-Case-Study/internal/infrastructure"
	"github.com/srstoner21/Cyclistic-Case-Study/pkg/contracts/domain"
)

// Stage identifiers, in pipeline order.
const (
	StageLoad      = "load"
	StageNormalize = "normalize"
	StageDerive    = "derive"
	StageFilter    = "filter"
	StageUnify     = "unify"
	StageAggregate = "aggregate"
)

// Runner executes one pipeline stage. Implementations wrap fn with timing,
// tracing, and metrics; the default runner just calls fn.
type Runner interface {
	RunStage(ctx context.Context, id, name string, fn func(context.Context) error) error
}

type directRunner struct{}

func (directRunner) RunStage(ctx context.Context, _, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

// Options tunes a reconciliation run.
type Options struct {
	// TopStations caps the per-category station rankings. Zero means 10.
	TopStations int
	// ParallelLoad loads the two sources concurrently.
	ParallelLoad bool
	// Runner wraps each stage. Nil runs stages directly.
	Runner Runner
}

// Result bundles everything one reconciliation run produces.
type Result struct {
	Records []domain.TripRecord
	Summary *domain.RideSummary
	Report  *domain.RunReport
}

// Reconciler wires the pipeline stages into a one-shot batch run:
// load, normalize, derive, filter, unify, aggregate. Data flows strictly
// forward; every stage takes its input table and returns a new one.
type Reconciler struct {
	logger       *slog.Logger
	runner       Runner
	loader       *Loader
	normalizer   *Normalizer
	deriver      *Deriver
	filter       *RowFilter
	unifier      *Unifier
	aggregator   *Aggregator
	parallelLoad bool
}

// NewReconciler creates a reconciler. A nil logger falls back to
// slog.Default.
func NewReconciler(logger *slog.Logger, opts Options) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = directRunner{}
	}
	return &Reconciler{
		logger:       logger,
		runner:       runner,
		loader:       NewLoader(infrastructure.WithComponent(logger, "loader")),
		normalizer:   NewNormalizer(infrastructure.WithComponent(logger, "normalizer")),
		deriver:      NewDeriver(infrastructure.WithComponent(logger, "deriver")),
		filter:       NewRowFilter(infrastructure.WithComponent(logger, "filter")),
		unifier:      NewUnifier(infrastructure.WithComponent(logger, "unifier")),
		aggregator:   NewAggregator(infrastructure.WithComponent(logger, "aggregator"), AggregatorConfig{TopStations: opts.TopStations}),
		parallelLoad: opts.ParallelLoad,
	}
}

// Run executes the full pipeline over the two source files. A stage error
// aborts the run; per-row quality issues never do, they are tallied in the
// report instead.
func (r *Reconciler) Run(ctx context.Context, legacyPath, currentPath string) (*Result, error) {
	report := &domain.RunReport{
		RunID:     infrastructure.GetRunID(ctx),
		StartedAt: time.Now(),
	}

	var legacy, current *RawTable
	err := r.runner.RunStage(ctx, StageLoad, "Load trip sources", func(ctx context.Context) error {
		var err error
		legacy, current, err = r.loader.LoadPair(ctx, legacyPath, currentPath, r.parallelLoad)
		if err != nil {
			return err
		}
		infrastructure.AddSpanEvent(ctx, "sources.loaded", map[string]interface{}{
			"legacy_rows":  len(legacy.Rows),
			"current_rows": len(current.Rows),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	legacyStats := &domain.SourceStats{
		Source:     domain.SchemaLegacy,
		File:       legacy.File,
		RowsLoaded: len(legacy.Rows),
	}
	currentStats := &domain.SourceStats{
		Source:     domain.SchemaCurrent,
		File:       current.File,
		RowsLoaded: len(current.Rows),
	}

	err = r.runner.RunStage(ctx, StageNormalize, "Normalize schemas", func(ctx context.Context) error {
		legacy = r.normalizer.Normalize(ctx, legacy, legacyStats)
		current = r.normalizer.Normalize(ctx, current, currentStats)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.runner.RunStage(ctx, StageDerive, "Derive ride fields", func(ctx context.Context) error {
		legacy = r.deriver.Derive(ctx, legacy, legacyStats)
		current = r.deriver.Derive(ctx, current, currentStats)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.runner.RunStage(ctx, StageFilter, "Filter trip rows", func(ctx context.Context) error {
		legacy = r.filter.Filter(ctx, legacy, legacyStats)
		current = r.filter.Filter(ctx, current, currentStats)
		infrastructure.AddSpanEvent(ctx, "rows.filtered", map[string]interface{}{
			"legacy_retained":  legacyStats.RowsRetained,
			"current_retained": currentStats.RowsRetained,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	var (
		records    []domain.TripRecord
		duplicates int
	)
	err = r.runner.RunStage(ctx, StageUnify, "Unify sources", func(ctx context.Context) error {
		var err error
		records, duplicates, err = r.unifier.Unify(ctx, legacy, current)
		if err != nil {
			return err
		}
		infrastructure.AddSpanEvent(ctx, "rows.unified", map[string]interface{}{
			"combined_rows":      len(records),
			"duplicate_ride_ids": duplicates,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	var summary *domain.RideSummary
	err = r.runner.RunStage(ctx, StageAggregate, "Aggregate ride statistics", func(ctx context.Context) error {
		summary = r.aggregator.Summarize(ctx, records)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Sources = []domain.SourceStats{*legacyStats, *currentStats}
	report.RowsCombined = len(records)
	report.DuplicateRideIDs = duplicates
	report.CompletedAt = time.Now()
	report.Elapsed = report.CompletedAt.Sub(report.StartedAt)

	r.logger.InfoContext(ctx, "reconciliation complete",
		slog.Int("rows_loaded", report.TotalLoaded()),
		slog.Int("rows_combined", report.RowsCombined),
		slog.Int("rows_dropped", report.TotalDropped()),
		slog.Int("parse_failures", report.TotalParseFailures()),
		slog.Int("non_canonical_riders", report.TotalNonCanonicalRiders()),
		slog.Int("duplicate_ride_ids", report.DuplicateRideIDs),
		slog.Duration("elapsed", report.Elapsed))

	return &Result{Records: records, Summary: summary, Report: report}, nil
}
