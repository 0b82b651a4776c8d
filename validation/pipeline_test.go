package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/c360studio/orevalidate/events"
	"github.com/c360studio/orevalidate/resourcemap/testutil"
	"github.com/c360studio/orevalidate/vocabulary/ore"
)

func setupTestTracer(t *testing.T) (trace.Tracer, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	return provider.Tracer("test-tracer"), exporter
}

func getSpanByName(exporter *tracetest.InMemoryExporter, name string) (tracetest.SpanStub, bool) {
	for _, span := range exporter.GetSpans() {
		if span.Name == name {
			return span, true
		}
	}
	return tracetest.SpanStub{}, false
}

// twoRootPackage has four typed nodes in two disconnected aggregation chains.
func twoRootPackage() map[string]string {
	return map[string]string{
		"bag-info.txt": testutil.BagInfo(testutil.PackageReM),
		"ORE-REM/package.xml": testutil.Document(
			testutil.Resource{ID: "urn:a", Class: ore.ClassPackage, Aggregates: []string{"urn:b"}},
			testutil.Resource{ID: "urn:b", Class: ore.ClassProject},
			testutil.Resource{ID: "urn:c", Class: ore.ClassCollection, Aggregates: []string{"urn:d"}},
			testutil.Resource{ID: "urn:d", Class: ore.ClassDataItem, IsPartOf: []string{"urn:elsewhere"}},
		),
	}
}

func runPipeline(t *testing.T, files map[string]string, cfg PipelineConfig) (*WorkflowState, *events.MemoryRecorder, error) {
	t.Helper()
	pkg := testutil.WriteBag(t, files)
	rec := events.NewMemoryRecorder()
	state, err := PrepareState(pkg, "dep", rec)
	require.NoError(t, err)
	p := NewPipeline(cfg, DefaultStages(nil, nil)...)
	return state, rec, p.Run(context.Background(), "dep", state)
}

func TestPipeline_ValidPackage(t *testing.T) {
	state, rec, err := runPipeline(t, testutil.ValidPackage(), PipelineConfig{})
	require.NoError(t, err)
	assert.Empty(t, state.Errors)
	assert.Empty(t, state.Roots)

	assert.Len(t, rec.OfType(events.TypeStagePassed), 6)
	completed := rec.OfType(events.TypeValidationCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, OutcomePassed, completed[0].Attrs["outcome"])
}

func TestPipeline_TwoRootsStopsAtOrphanStage(t *testing.T) {
	state, rec, err := runPipeline(t, twoRootPackage(), PipelineConfig{})
	require.Error(t, err)

	var orphan *OrphanResourceError
	require.True(t, errors.As(err, &orphan))
	assert.Equal(t, []string{"urn:a", "urn:c"}, orphan.Roots)
	assert.Equal(t, []string{"urn:a", "urn:c"}, state.Roots)
	assert.Len(t, state.Errors, 2)
	assert.False(t, IsConstraintViolation(err))

	failed := rec.OfType(events.TypeStageFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "orphan-resources", failed[0].Stage)
}

func TestPipeline_ContinueOnError(t *testing.T) {
	state, _, err := runPipeline(t, twoRootPackage(), PipelineConfig{ContinueOnError: true})
	require.Error(t, err)

	assert.True(t, IsOrphanResource(err))
	assert.True(t, IsConstraintViolation(err))
	// Two roots and the stray isPartOf.
	assert.Len(t, state.Errors, 3)
}

func TestPipeline_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	_, _, err := runPipeline(t, twoRootPackage(), PipelineConfig{Metrics: metrics})
	require.Error(t, err)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.StageRuns.WithLabelValues("resource-map-load", OutcomePassed)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.StageRuns.WithLabelValues("orphan-resources", OutcomeFailed)))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(metrics.Diagnostics.WithLabelValues("orphan-resources")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.Runs.WithLabelValues(OutcomeFailed)))
	// Stages after the failure never ran.
	assert.Equal(t, 0.0, promtestutil.ToFloat64(metrics.StageRuns.WithLabelValues("payload-files", OutcomePassed)))
}

func TestPipeline_Tracing(t *testing.T) {
	tracer, exporter := setupTestTracer(t)

	_, _, err := runPipeline(t, twoRootPackage(), PipelineConfig{Tracer: tracer})
	require.Error(t, err)

	run, ok := getSpanByName(exporter, SpanRun)
	require.True(t, ok)
	assert.Equal(t, codes.Error, run.Status.Code)

	load, ok := getSpanByName(exporter, SpanPrefixStage+"resource-map-load")
	require.True(t, ok)
	assert.Equal(t, codes.Ok, load.Status.Code)
	assert.Equal(t, run.SpanContext.TraceID(), load.SpanContext.TraceID())
	assert.Equal(t, run.SpanContext.SpanID(), load.Parent.SpanID())

	orphan, ok := getSpanByName(exporter, SpanPrefixStage+"orphan-resources")
	require.True(t, ok)
	assert.Equal(t, codes.Error, orphan.Status.Code)
	assert.NotEmpty(t, orphan.Events, "error should be recorded on the span")

	_, ok = getSpanByName(exporter, SpanPrefixStage+"payload-files")
	assert.False(t, ok)
}

func TestSelectStages(t *testing.T) {
	stages := DefaultStages(nil, nil)

	all, err := SelectStages(stages, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(stages))

	some, err := SelectStages(stages, []string{"orphan-resources", "bagit-profile"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "bagit-profile", some[0].Name())
	assert.Equal(t, "orphan-resources", some[1].Name())

	_, err = SelectStages(stages, []string{"nope"})
	assert.ErrorContains(t, err, "nope")
}
