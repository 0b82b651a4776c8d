package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Package.InfoFile != "bag-info.txt" {
		t.Errorf("expected default info file bag-info.txt, got %s", cfg.Package.InfoFile)
	}
	if cfg.Package.PayloadGlob != "data/**" {
		t.Errorf("expected default payload glob data/**, got %s", cfg.Package.PayloadGlob)
	}
	if cfg.Events.SubjectPrefix != "orevalidate.events" {
		t.Errorf("expected default subject prefix orevalidate.events, got %s", cfg.Events.SubjectPrefix)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if cfg.Pipeline.ContinueOnError {
		t.Error("expected fail-fast pipeline by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "absolute base dir",
			modify:  func(c *Config) { c.Package.BaseDir = "/abs/bag" },
			wantErr: true,
		},
		{
			name:    "relative base dir",
			modify:  func(c *Config) { c.Package.BaseDir = "bag" },
			wantErr: false,
		},
		{
			name:    "missing info file",
			modify:  func(c *Config) { c.Package.InfoFile = "" },
			wantErr: true,
		},
		{
			name:    "invalid payload glob",
			modify:  func(c *Config) { c.Package.PayloadGlob = "data/[" },
			wantErr: true,
		},
		{
			name:    "negative max documents",
			modify:  func(c *Config) { c.Package.MaxDocuments = -1 },
			wantErr: true,
		},
		{
			name:    "wildcard subject prefix",
			modify:  func(c *Config) { c.Events.SubjectPrefix = "events.>" },
			wantErr: true,
		},
		{
			name:    "empty subject prefix",
			modify:  func(c *Config) { c.Events.SubjectPrefix = "" },
			wantErr: true,
		},
		{
			name:    "unknown tracing exporter",
			modify:  func(c *Config) { c.Tracing.Exporter = "zipkin" },
			wantErr: true,
		},
		{
			name:    "sample rate above one",
			modify:  func(c *Config) { c.Tracing.SampleRate = 1.5 },
			wantErr: true,
		},
		{
			name:    "negative debounce",
			modify:  func(c *Config) { c.Watch.Debounce = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temp file with config
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
package:
  base_dir: "mybag"
  max_documents: 50
pipeline:
  continue_on_error: true
  stages:
    - orphan-resources
    - aggregation-constraints
events:
  nats_url: "nats://test:4222"
metrics:
  listen_addr: ":9090"
watch:
  debounce: 2s
tracing:
  enabled: true
  exporter: otlp
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Package.BaseDir != "mybag" {
		t.Errorf("expected base dir mybag, got %s", cfg.Package.BaseDir)
	}
	if cfg.Package.MaxDocuments != 50 {
		t.Errorf("expected max documents 50, got %d", cfg.Package.MaxDocuments)
	}
	// Unset fields keep their defaults
	if cfg.Package.InfoFile != "bag-info.txt" {
		t.Errorf("expected default info file, got %s", cfg.Package.InfoFile)
	}
	if !cfg.Pipeline.ContinueOnError {
		t.Error("expected continue_on_error true")
	}
	if len(cfg.Pipeline.Stages) != 2 {
		t.Errorf("expected 2 stages, got %d", len(cfg.Pipeline.Stages))
	}
	if cfg.Events.NATSURL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.Events.NATSURL)
	}
	if cfg.Metrics.ListenAddr != ":9090" {
		t.Errorf("expected listen addr :9090, got %s", cfg.Metrics.ListenAddr)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %v", cfg.Watch.Debounce)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Exporter != "otlp" {
		t.Errorf("expected otlp tracing enabled, got %+v", cfg.Tracing)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("expected default sample rate, got %f", cfg.Tracing.SampleRate)
	}
}

func TestLoadFromFileMalformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("package: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Package: PackageConfig{
			BaseDir: "override",
		},
		Events: EventsConfig{
			NATSURL: "nats://override:4222",
		},
	}

	base.Merge(override)

	if base.Package.BaseDir != "override" {
		t.Errorf("expected base dir override, got %s", base.Package.BaseDir)
	}
	// Info file should remain from base since override didn't set it
	if base.Package.InfoFile != "bag-info.txt" {
		t.Errorf("expected info file to remain default, got %s", base.Package.InfoFile)
	}
	if base.Events.NATSURL != "nats://override:4222" {
		t.Errorf("expected NATS URL override, got %s", base.Events.NATSURL)
	}
	if base.Events.SubjectPrefix != "orevalidate.events" {
		t.Errorf("expected subject prefix to remain default, got %s", base.Events.SubjectPrefix)
	}

	base.Merge(nil)
	if base.Package.BaseDir != "override" {
		t.Error("merging nil should be a no-op")
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Package.BaseDir = "saved"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	// Load and verify
	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Package.BaseDir != "saved" {
		t.Errorf("expected base dir saved, got %s", loaded.Package.BaseDir)
	}
	if loaded.Watch.Debounce != cfg.Watch.Debounce {
		t.Errorf("expected debounce %v, got %v", cfg.Watch.Debounce, loaded.Watch.Debounce)
	}
}
