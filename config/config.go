// Package config provides configuration loading and management for orevalidate.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Config represents the complete orevalidate configuration
type Config struct {
	Package  PackageConfig  `yaml:"package"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Events   EventsConfig   `yaml:"events"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// PackageConfig describes where bags live inside an extraction directory
type PackageConfig struct {
	// BaseDir is the bag directory relative to the extract dir. Empty means
	// the single subdirectory of the extract dir.
	BaseDir string `yaml:"base_dir"`
	// InfoFile is the bag metadata tag file (default: bag-info.txt)
	InfoFile string `yaml:"info_file"`
	// PayloadGlob selects payload files relative to the bag root (default: data/**)
	PayloadGlob string `yaml:"payload_glob"`
	// MaxDocuments bounds the resource maps merged per package (0 = no limit)
	MaxDocuments int `yaml:"max_documents"`
}

// PipelineConfig configures stage execution
type PipelineConfig struct {
	// ContinueOnError runs every stage even after one fails
	ContinueOnError bool `yaml:"continue_on_error"`
	// Stages lists the enabled stages by name (empty = all)
	Stages []string `yaml:"stages"`
}

// EventsConfig configures event publishing
type EventsConfig struct {
	// NATSURL enables publishing to NATS when set
	NATSURL string `yaml:"nats_url"`
	// SubjectPrefix is prepended to event types (default: orevalidate.events)
	SubjectPrefix string `yaml:"subject_prefix"`
	// PublishGraph sends the entities of each passing package to the
	// knowledge graph ingest subject
	PublishGraph bool `yaml:"publish_graph"`
}

// MetricsConfig configures the Prometheus endpoint served in watch mode
type MetricsConfig struct {
	// ListenAddr is the metrics listen address (empty = disabled)
	ListenAddr string `yaml:"listen_addr"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Debounce is the quiet period before revalidating after a change
	Debounce time.Duration `yaml:"debounce"`
}

// TracingConfig configures OpenTelemetry span export
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Exporter is one of none, stdout or otlp (default: stdout)
	Exporter     string  `yaml:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Package: PackageConfig{
			BaseDir:     "", // Auto-detect
			InfoFile:    "bag-info.txt",
			PayloadGlob: "data/**",
		},
		Pipeline: PipelineConfig{
			ContinueOnError: false,
			Stages:          nil, // All stages
		},
		Events: EventsConfig{
			SubjectPrefix: "orevalidate.events",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "stdout",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if filepath.IsAbs(c.Package.BaseDir) {
		return fmt.Errorf("package.base_dir must be relative")
	}
	if c.Package.InfoFile == "" {
		return fmt.Errorf("package.info_file is required")
	}
	if !doublestar.ValidatePattern(c.Package.PayloadGlob) {
		return fmt.Errorf("package.payload_glob %q is not a valid pattern", c.Package.PayloadGlob)
	}
	if c.Package.MaxDocuments < 0 {
		return fmt.Errorf("package.max_documents must not be negative")
	}
	if c.Events.SubjectPrefix == "" || strings.ContainsAny(c.Events.SubjectPrefix, " *>") {
		return fmt.Errorf("events.subject_prefix %q is not a valid NATS subject", c.Events.SubjectPrefix)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	switch c.Tracing.Exporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter %q must be none, stdout or otlp", c.Tracing.Exporter)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1")
	}
	return nil
}

// LoadFromFile loads a standalone configuration file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// loadLayer reads a YAML file into a zero Config, so that fields the file
// leaves out stay zero and do not override earlier layers on Merge.
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	layer := &Config{}
	if err := yaml.Unmarshal(data, layer); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return layer, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Package
	if other.Package.BaseDir != "" {
		c.Package.BaseDir = other.Package.BaseDir
	}
	if other.Package.InfoFile != "" {
		c.Package.InfoFile = other.Package.InfoFile
	}
	if other.Package.PayloadGlob != "" {
		c.Package.PayloadGlob = other.Package.PayloadGlob
	}
	if other.Package.MaxDocuments != 0 {
		c.Package.MaxDocuments = other.Package.MaxDocuments
	}

	// Pipeline
	if other.Pipeline.ContinueOnError {
		c.Pipeline.ContinueOnError = true
	}
	if len(other.Pipeline.Stages) > 0 {
		c.Pipeline.Stages = other.Pipeline.Stages
	}

	// Events
	if other.Events.NATSURL != "" {
		c.Events.NATSURL = other.Events.NATSURL
	}
	if other.Events.SubjectPrefix != "" {
		c.Events.SubjectPrefix = other.Events.SubjectPrefix
	}
	if other.Events.PublishGraph {
		c.Events.PublishGraph = true
	}

	// Metrics
	if other.Metrics.ListenAddr != "" {
		c.Metrics.ListenAddr = other.Metrics.ListenAddr
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}

	// Tracing
	if other.Tracing.Enabled {
		c.Tracing.Enabled = true
	}
	if other.Tracing.Exporter != "" {
		c.Tracing.Exporter = other.Tracing.Exporter
	}
	if other.Tracing.OTLPEndpoint != "" {
		c.Tracing.OTLPEndpoint = other.Tracing.OTLPEndpoint
	}
	if other.Tracing.SampleRate != 0 {
		c.Tracing.SampleRate = other.Tracing.SampleRate
	}
}
