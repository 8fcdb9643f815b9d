package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/srstoner21/Cyclistic-Case-Study/internal/infrastructure"
)

// StageRunner executes pipeline stages in order, wrapping each one with
// structured logging, per-stage timing, an optional trace span, and
// optional pipeline metrics. It implements dataprocessing.Runner, so the
// reconciler drives the stages and this type only decorates them.
type StageRunner struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	timeout time.Duration

	mu     sync.Mutex
	states []*StageState
}

// RunnerOptions configures a StageRunner. Tracer and Metrics are optional;
// a zero Timeout leaves stage contexts unbounded.
type RunnerOptions struct {
	Tracer  trace.Tracer
	Metrics *infrastructure.PipelineMetrics
	Timeout time.Duration
}

// NewStageRunner creates a stage runner. A nil logger falls back to
// slog.Default.
func NewStageRunner(logger *slog.Logger, opts RunnerOptions) *StageRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &StageRunner{
		logger:  logger,
		tracer:  opts.Tracer,
		metrics: opts.Metrics,
		timeout: opts.Timeout,
	}
}

// RunStage executes one stage. The stage inherits a deadline when the
// runner carries a timeout. A stage error is returned wrapped with the
// stage identifier; per-row data issues never reach here, the stages tally
// those in the run report instead.
func (r *StageRunner) RunStage(ctx context.Context, id, name string, fn func(context.Context) error) error {
	state := NewStageState(id, name)
	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()

	runID := infrastructure.GetRunID(ctx)

	if r.tracer != nil {
		var span trace.Span
		ctx, span = r.tracer.Start(ctx, "pipeline."+id,
			trace.WithAttributes(
				attribute.String("stage.id", id),
				attribute.String("stage.name", name),
				attribute.String("run.id", runID),
			))
		defer span.End()
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	state.Start()
	r.logger.InfoContext(ctx, "stage started",
		slog.String("stage", id),
		slog.String("name", name))

	infrastructure.RecordActiveStageChange(ctx, r.metrics, 1, id)
	err := fn(ctx)
	infrastructure.RecordActiveStageChange(ctx, r.metrics, -1, id)

	if err != nil {
		state.Fail(err)
	} else {
		state.Complete()
	}
	duration := state.Duration()

	infrastructure.RecordStageMetrics(ctx, r.metrics, runID, id, duration, err == nil, err)

	if err != nil {
		infrastructure.WithError(r.logger, err).ErrorContext(ctx, "stage failed",
			slog.String("stage", id),
			slog.Duration("duration", duration))
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		// Preserve the underlying typed error so errors.IsType keeps working.
		return fmt.Errorf("stage %s: %w", id, err)
	}

	r.logger.InfoContext(ctx, "stage completed",
		slog.String("stage", id),
		slog.Duration("duration", duration))
	return nil
}

// States returns the stage states recorded so far, in execution order.
func (r *StageRunner) States() []*StageState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*StageState, len(r.states))
	copy(out, r.states)
	return out
}

// Failed reports whether any recorded stage ended in failure.
func (r *StageRunner) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if s.GetStatus() == StageStatusFailed {
			return true
		}
	}
	return false
}
