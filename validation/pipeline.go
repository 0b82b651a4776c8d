package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	otelattr "go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/c360studio/orevalidate/events"
	"github.com/c360studio/orevalidate/resourcemap"
)

// Span names and attributes.
const (
	SpanPrefixStage = "validation.stage."
	SpanRun         = "validation.run"

	AttrDepositID = "deposit.id"
	AttrStage     = "validation.stage"
	AttrErrors    = "validation.errors"
)

// Stage outcomes used as metric label values.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	StageRuns     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	Diagnostics   *prometheus.CounterVec
	Runs          *prometheus.CounterVec
}

// NewMetrics creates and registers the pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StageRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orevalidate",
			Name:      "stage_runs_total",
			Help:      "Validation stage executions by stage and outcome.",
		}, []string{"stage", "outcome"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orevalidate",
			Name:      "stage_duration_seconds",
			Help:      "Validation stage execution time.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"stage"}),
		Diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orevalidate",
			Name:      "diagnostics_total",
			Help:      "Diagnostic messages appended by each stage.",
		}, []string{"stage"}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orevalidate",
			Name:      "runs_total",
			Help:      "Validation runs by outcome.",
		}, []string{"outcome"}),
	}
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Tracer creates one span per run and per stage. If nil, no spans are
	// created.
	Tracer trace.Tracer

	// Metrics records stage outcomes. If nil, nothing is recorded.
	Metrics *Metrics

	// ContinueOnError keeps running later stages after a stage fails. The
	// run error then joins every stage error in order.
	ContinueOnError bool

	Logger *slog.Logger
}

// Pipeline runs stages in order over one workflow state.
type Pipeline struct {
	stages []Stage
	cfg    PipelineConfig
	logger *slog.Logger
}

// NewPipeline creates a pipeline running stages in the given order.
func NewPipeline(cfg PipelineConfig, stages ...Stage) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{stages: stages, cfg: cfg, logger: logger}
}

// Stages returns the pipeline's stages in order.
func (p *Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// Run executes the stages. It stops at the first failing stage unless
// ContinueOnError is set. The returned error wraps the stage errors, so
// errors.Is and errors.As see the typed failures.
func (p *Pipeline) Run(ctx context.Context, depositID string, state *WorkflowState) error {
	if state.Recorder == nil {
		state.Recorder = events.Discard
	}

	var span trace.Span
	if p.cfg.Tracer != nil {
		ctx, span = p.cfg.Tracer.Start(ctx, SpanRun, trace.WithSpanKind(trace.SpanKindInternal))
		span.SetAttributes(otelattr.String(AttrDepositID, depositID))
		defer span.End()
	}

	var errs []error
	for _, stage := range p.stages {
		if err := p.runStage(ctx, depositID, stage, state); err != nil {
			errs = append(errs, err)
			if !p.cfg.ContinueOnError {
				break
			}
		}
	}

	err := errors.Join(errs...)
	outcome := OutcomePassed
	if err != nil {
		outcome = OutcomeFailed
	}
	if p.cfg.Metrics != nil {
		p.cfg.Metrics.Runs.WithLabelValues(outcome).Inc()
	}
	if span != nil {
		span.SetAttributes(otelattr.Int(AttrErrors, len(state.Errors)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
	state.record(ctx, events.New(depositID, events.TypeValidationCompleted, "validation "+outcome).
		With("outcome", outcome).
		With("errors", fmt.Sprint(len(state.Errors))))

	p.logger.Info("Validation finished",
		"deposit_id", depositID,
		"outcome", outcome,
		"errors", len(state.Errors))
	return err
}

func (p *Pipeline) runStage(ctx context.Context, depositID string, stage Stage, state *WorkflowState) error {
	if p.cfg.Tracer == nil {
		return p.execute(ctx, depositID, stage, state)
	}

	name := stage.Name()
	ctx, span := p.cfg.Tracer.Start(ctx, SpanPrefixStage+name, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		otelattr.String(AttrDepositID, depositID),
		otelattr.String(AttrStage, name),
	)

	before := len(state.Errors)
	err := p.execute(ctx, depositID, stage, state)
	span.SetAttributes(otelattr.Int(AttrErrors, len(state.Errors)-before))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return err
}

func (p *Pipeline) execute(ctx context.Context, depositID string, stage Stage, state *WorkflowState) error {
	name := stage.Name()
	before := len(state.Errors)
	state.record(ctx, events.New(depositID, events.TypeStageStarted, "").WithStage(name))
	p.logger.Debug("Running validation stage", "deposit_id", depositID, "stage", name)

	start := time.Now()
	err := stage.Execute(ctx, depositID, state)
	elapsed := time.Since(start)

	outcome := OutcomePassed
	if err != nil {
		outcome = OutcomeFailed
	}
	if m := p.cfg.Metrics; m != nil {
		m.StageRuns.WithLabelValues(name, outcome).Inc()
		m.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		m.Diagnostics.WithLabelValues(name).Add(float64(len(state.Errors) - before))
	}

	if err != nil {
		p.logger.Warn("Validation stage failed",
			"deposit_id", depositID,
			"stage", name,
			"duration", elapsed,
			"error", err)
		state.record(ctx, events.New(depositID, events.TypeStageFailed, err.Error()).WithStage(name))
		return fmt.Errorf("stage %s: %w", name, err)
	}
	p.logger.Debug("Validation stage passed", "deposit_id", depositID, "stage", name, "duration", elapsed)
	state.record(ctx, events.New(depositID, events.TypeStagePassed, "").WithStage(name))
	return nil
}

// DefaultStages returns the stages of a full validation run in order.
func DefaultStages(loader *resourcemap.Loader, logger *slog.Logger) []Stage {
	return []Stage{
		NewProfileStage(logger),
		NewLoadStage(loader),
		NewUnsupportedAggregationStage(logger),
		OrphanStage{},
		NewAggregationConstraintStage(logger),
		PayloadStage{},
	}
}

// SelectStages keeps the stages named in enabled, in their original order.
// An empty enabled list keeps every stage. Unknown names are an error.
func SelectStages(stages []Stage, enabled []string) ([]Stage, error) {
	if len(enabled) == 0 {
		return stages, nil
	}
	want := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		want[name] = true
	}
	var out []Stage
	for _, s := range stages {
		if want[s.Name()] {
			out = append(out, s)
			delete(want, s.Name())
		}
	}
	for _, name := range enabled {
		if want[name] {
			return nil, fmt.Errorf("unknown validation stage %q", name)
		}
	}
	return out, nil
}
