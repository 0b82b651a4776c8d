// Package main provides the orevalidate binary entry point.
// Orevalidate checks the semantic graph of extracted BagIt packages whose
// content is described by OAI-ORE resource maps.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/orevalidate/config"
	"github.com/c360studio/orevalidate/export"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "orevalidate"
)

// errValidationFailed signals a completed run whose package failed. The
// report has already been printed.
var errValidationFailed = errors.New("validation failed")

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// cliState is shared by the subcommands once the root command has loaded
// configuration.
type cliState struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	state := &cliState{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Package semantic-graph validator",
		Long: `Orevalidate validates extracted BagIt packages described by OAI-ORE
resource maps.

It loads every resource map referenced from bag-info.txt, merges them into
one graph and checks that:
- the graph has exactly one root resource
- every aggregated resource declares a consistent isPartOf parent
- File resources and bag payload files match`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			state.logger = newLogger(cmd.ErrOrStderr(), state.logLevel)
			slog.SetDefault(state.logger)

			cfg, err := config.NewLoader(state.logger).Load(state.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			state.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&state.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&state.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		validateCmd(state),
		graphCmd(state),
		watchCmd(state),
		initConfigCmd(state),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			// Skip config loading.
			PersistentPreRun: func(cmd *cobra.Command, args []string) {},
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func validateCmd(state *cliState) *cobra.Command {
	var (
		baseDir         string
		continueOnError bool
		stages          []string
	)

	cmd := &cobra.Command{
		Use:   "validate <extract-dir>",
		Short: "Validate one extracted package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if continueOnError {
				state.cfg.Pipeline.ContinueOnError = true
			}
			if len(stages) > 0 {
				state.cfg.Pipeline.Stages = stages
			}

			app, err := NewApp(state.cfg, state.logger)
			if err != nil {
				return err
			}
			defer closeApp(app, state.logger)

			report, err := app.Validate(cmd.Context(), args[0], baseDir)
			if err != nil {
				return err
			}
			report.Write(cmd.OutOrStdout())
			if !report.Passed() {
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Bag directory relative to the extract dir (default: detected)")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Run every stage even after one fails")
	cmd.Flags().StringSliceVar(&stages, "stage", nil, "Run only the named stages (repeatable)")
	return cmd
}

func graphCmd(state *cliState) *cobra.Command {
	var (
		baseDir string
		format  string
		profile string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "graph <extract-dir>",
		Short: "Export the merged resource map graph as RDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			p := export.Profile(profile)
			if _, ok := export.Profiles[p]; !ok {
				return fmt.Errorf("unknown export profile %q", profile)
			}

			app, err := NewApp(state.cfg, state.logger)
			if err != nil {
				return err
			}
			defer closeApp(app, state.logger)

			out, err := app.Graph(args[0], baseDir, f, p)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			return os.WriteFile(output, []byte(out), 0644)
		},
	}

	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Bag directory relative to the extract dir (default: detected)")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatTurtle), "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVarP(&profile, "profile", "p", string(export.ProfileData), "Export profile (data, ore, full)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func watchCmd(state *cliState) *cobra.Command {
	var (
		baseDir     string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch <extract-dir>",
		Short: "Revalidate a package whenever its files change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if metricsAddr != "" {
				state.cfg.Metrics.ListenAddr = metricsAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(state.cfg, state.logger)
			if err != nil {
				return err
			}
			defer closeApp(app, state.logger)

			if addr := state.cfg.Metrics.ListenAddr; addr != "" {
				srv := serveMetrics(app, addr, state.logger)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			return runWatch(ctx, app, args[0], baseDir, state.cfg.Watch.Debounce, cmd.OutOrStdout(), state.logger)
		},
	}

	cmd.Flags().StringVar(&baseDir, "base-dir", "", "Bag directory relative to the extract dir (default: detected)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

// runWatch validates once, then again after every debounced change, until
// ctx is cancelled. Runs never overlap.
func runWatch(ctx context.Context, app *App, extractDir, baseDir string, debounce time.Duration, out io.Writer, logger *slog.Logger) error {
	w, err := NewBagWatcher(extractDir, debounce, logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	validate := func() {
		report, err := app.Validate(ctx, extractDir, baseDir)
		if err != nil {
			logger.Warn("Validation could not run", "extract_dir", extractDir, "error", err)
			return
		}
		report.Write(out)
	}

	validate()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes():
			if !ok {
				return nil
			}
			validate()
		}
	}
}

func serveMetrics(app *App, addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	return srv
}

func initConfigCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Create the user config file with defaults if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.NewLoader(state.logger).EnsureUserConfig()
		},
	}
}

func closeApp(app *App, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Close(ctx); err != nil {
		logger.Warn("Shutdown incomplete", "error", err)
	}
}
