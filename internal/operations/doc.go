// Package operations decorates the reconciliation pipeline stages with
// operational concerns: per-stage state tracking, structured logging,
// timing, trace spans, and metrics.
//
// The pipeline itself lives in internal/dataprocessing; the Reconciler
// there accepts a Runner and calls it once per stage. StageRunner is the
// production Runner: it records a StageState per stage, logs start and
// completion with durations, opens an OpenTelemetry span per stage when a
// tracer is configured, and feeds the stage counters and histograms in
// infrastructure.PipelineMetrics.
//
// Usage:
//
//	runner := operations.NewStageRunner(logger, operations.RunnerOptions{
//	    Tracer:  providers.Tracer,
//	    Metrics: metrics,
//	    Timeout: cfg.Pipeline.StageTimeout,
//	})
//	rec := dataprocessing.NewReconciler(logger, dataprocessing.Options{Runner: runner})
//	result, err := rec.Run(ctx, legacyPath, currentPath)
//
// After the run, States reports what happened to each stage in execution
// order, which the reconciler binary logs as the run postmortem when a
// stage failed.
package operations
