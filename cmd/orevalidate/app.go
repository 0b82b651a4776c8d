package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/c360studio/orevalidate/attribute"
	"github.com/c360studio/orevalidate/bag"
	"github.com/c360studio/orevalidate/config"
	"github.com/c360studio/orevalidate/events"
	"github.com/c360studio/orevalidate/export"
	"github.com/c360studio/orevalidate/graph"
	"github.com/c360studio/orevalidate/resourcemap"
	"github.com/c360studio/orevalidate/tracing"
	"github.com/c360studio/orevalidate/validation"
)

// Report is the outcome of one validation run.
type Report struct {
	DepositID   string
	BagRoot     string
	Stages      []string
	Diagnostics []string
	Roots       []string
	Err         error
}

// Passed reports whether every stage passed.
func (r *Report) Passed() bool {
	return r.Err == nil
}

// Write prints the report in a human readable form.
func (r *Report) Write(w io.Writer) {
	status := "PASSED"
	if !r.Passed() {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s %s (deposit %s)\n", status, r.BagRoot, r.DepositID)
	fmt.Fprintf(w, "  stages: %s\n", strings.Join(r.Stages, ", "))
	for _, d := range r.Diagnostics {
		fmt.Fprintf(w, "  - %s\n", d)
	}
	if len(r.Roots) > 0 {
		fmt.Fprintf(w, "  roots: %s\n", strings.Join(r.Roots, ", "))
	}
	if r.Err != nil && len(r.Diagnostics) == 0 {
		fmt.Fprintf(w, "  error: %v\n", r.Err)
	}
}

// App wires configuration, event publishing, metrics and tracing around the
// validation pipeline.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *validation.Metrics
	tracing  *tracing.Provider
	recorder events.Recorder
	natsConn *nats.Conn

	// graphPublisher receives the entities of passing packages. Nil
	// disables graph publishing.
	graphPublisher graph.Publisher
}

// NewApp creates a new application instance. It connects to NATS when an
// events URL is configured.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("create tracer provider: %w", err)
	}

	app := &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  validation.NewMetrics(registry),
		tracing:  provider,
		recorder: events.NewSlogRecorder(logger, slog.LevelDebug),
	}

	if cfg.Events.NATSURL != "" {
		conn, err := events.Connect(cfg.Events.NATSURL, logger)
		if err != nil {
			_ = provider.Shutdown(context.Background())
			return nil, err
		}
		app.natsConn = conn
		app.recorder = events.Multi(app.recorder,
			events.NewNATSRecorder(conn, cfg.Events.SubjectPrefix, logger))
		if cfg.Events.PublishGraph {
			app.graphPublisher = conn
		}
	}

	return app, nil
}

// Registry returns the Prometheus registry holding the pipeline metrics.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Close drains the NATS connection and flushes pending spans.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			errs = append(errs, fmt.Errorf("drain NATS: %w", err))
		}
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
	}
	return errors.Join(errs...)
}

// OpenPackage opens the bag extracted into extractDir. baseDir overrides the
// configured base dir; when both are empty the base dir is detected.
func (a *App) OpenPackage(extractDir, baseDir string) (*bag.Package, error) {
	if baseDir == "" {
		baseDir = a.cfg.Package.BaseDir
	}
	if baseDir == "" {
		detected, err := bag.DetectBaseDir(extractDir)
		if err != nil {
			return nil, err
		}
		baseDir = detected
	}
	pkg, err := bag.Open(extractDir, baseDir)
	if err != nil {
		return nil, err
	}
	pkg.InfoFile = a.cfg.Package.InfoFile
	pkg.PayloadGlob = a.cfg.Package.PayloadGlob
	return pkg, nil
}

func (a *App) newLoader() *resourcemap.Loader {
	loader := resourcemap.NewLoader(a.logger)
	loader.MaxDocuments = a.cfg.Package.MaxDocuments
	return loader
}

// Validate runs the configured stages over one extracted package. The
// returned error is non-nil only when the run could not start; validation
// failures are reported through Report.Err.
func (a *App) Validate(ctx context.Context, extractDir, baseDir string) (*Report, error) {
	pkg, err := a.OpenPackage(extractDir, baseDir)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	stages, err := validation.SelectStages(validation.DefaultStages(a.newLoader(), a.logger), a.cfg.Pipeline.Stages)
	if err != nil {
		return nil, err
	}

	depositID := uuid.NewString()
	state, err := validation.PrepareState(pkg, depositID, a.recorder)
	if err != nil {
		return nil, err
	}

	pipeline := validation.NewPipeline(validation.PipelineConfig{
		Tracer:          a.tracing.Tracer(),
		Metrics:         a.metrics,
		ContinueOnError: a.cfg.Pipeline.ContinueOnError,
		Logger:          a.logger,
	}, stages...)

	report := &Report{
		DepositID: depositID,
		BagRoot:   pkg.Root(),
	}
	for _, s := range stages {
		report.Stages = append(report.Stages, s.Name())
	}
	report.Err = pipeline.Run(ctx, depositID, state)
	report.Diagnostics = state.Errors
	report.Roots = state.Roots

	if report.Passed() && a.graphPublisher != nil {
		n, err := graph.Publish(ctx, a.graphPublisher, state.Graph, depositID, "")
		if err != nil {
			a.logger.Warn("Graph publish incomplete",
				"deposit_id", depositID,
				"published", n,
				"error", err)
		} else {
			a.logger.Info("Published package resources",
				"deposit_id", depositID,
				"resources", n)
		}
	}
	return report, nil
}

// Graph loads and merges the resource maps of one package and serializes the
// merged graph. No validation stage runs.
func (a *App) Graph(extractDir, baseDir string, format export.Format, profile export.Profile) (string, error) {
	pkg, err := a.OpenPackage(extractDir, baseDir)
	if err != nil {
		return "", fmt.Errorf("open package: %w", err)
	}

	depositID := uuid.NewString()
	store := attribute.NewStore()
	if err := pkg.LoadProfile(store, depositID); err != nil {
		return "", err
	}
	profileSet, err := validation.ProfileSet(store, depositID)
	if err != nil {
		return "", err
	}
	g, err := a.newLoader().Merge(pkg, attribute.Values(profileSet, attribute.PackageReM))
	if err != nil {
		return "", err
	}

	exporter := export.NewRDFExporter(profile)
	exporter.AddGraph(g)
	return exporter.Export(format)
}
