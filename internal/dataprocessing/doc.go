// Package dataprocessing implements the trip reconciliation pipeline: it
// loads the two Divvy source files that straddle the 2020 schema change,
// maps both onto one canonical schema, derives ride fields, filters out
// unusable rows, concatenates the survivors, and aggregates descriptive
// ride statistics per rider category.
//
// # Architecture
//
// Each stage is an independent component that takes an input table and
// returns a new one; nothing mutates shared state between stages:
//
//	Loader → Normalizer → Deriver → RowFilter → Unifier → Aggregator
//
// The Reconciler wires the stages into one batch run and collects the run
// report. Per-source quality counters (parse failures, dropped rows,
// non-canonical rider labels, duplicate ride ids) accumulate in
// domain.SourceStats as the tables move through the stages.
//
// # Usage
//
// One-shot run over the two source files:
//
//	rec := dataprocessing.NewReconciler(logger, dataprocessing.Options{ParallelLoad: true})
//	result, err := rec.Run(ctx, "divvy_trips_2019_q1.csv", "divvy_trips_2020_q1.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.RowsCombined)
//
// Individual stages compose directly when a caller wants only part of the
// flow:
//
//	table, err := dataprocessing.NewLoader(logger).Load(ctx, path)
//
// # Error Handling
//
// A missing or unreadable source file and a non-text ride id are fatal and
// abort the run before or at the affected stage. Everything else recovers
// locally: a timestamp that fails to parse becomes a missing value, a row
// failing the retention predicate is dropped, and a rider label outside the
// canonical vocabulary passes through unchanged. All three are tallied in
// the run report so callers can judge data quality.
package dataprocessing
