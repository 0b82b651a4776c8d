package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoaderLayering(t *testing.T) {
	root := t.TempDir()
	userPath := filepath.Join(root, "home", UserConfigDir, UserConfigFile)
	writeFile(t, userPath, "events:\n  nats_url: nats://user:4222\nwatch:\n  debounce: 1s\n")

	project := filepath.Join(root, "project")
	writeFile(t, filepath.Join(project, ProjectConfigFile), "watch:\n  debounce: 3s\n")
	workDir := filepath.Join(project, "deposits", "incoming")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	explicit := filepath.Join(root, "explicit.yaml")
	writeFile(t, explicit, "package:\n  base_dir: bag\n")

	loader := NewLoader(nil)
	loader.UserConfigPath = userPath
	loader.WorkDir = workDir

	cfg, err := loader.Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Events.NATSURL != "nats://user:4222" {
		t.Errorf("expected user NATS URL, got %s", cfg.Events.NATSURL)
	}
	// Project config found in a parent directory overrides the user config
	if cfg.Watch.Debounce != 3*time.Second {
		t.Errorf("expected project debounce 3s, got %v", cfg.Watch.Debounce)
	}
	if cfg.Package.BaseDir != "bag" {
		t.Errorf("expected explicit base dir, got %s", cfg.Package.BaseDir)
	}
}

func TestLoaderLaterLayersKeepEarlierValues(t *testing.T) {
	root := t.TempDir()
	userPath := filepath.Join(root, "home", UserConfigDir, UserConfigFile)
	writeFile(t, userPath, `package:
  info_file: tags.txt
  payload_glob: "payload/**"
events:
  subject_prefix: archive.events
watch:
  debounce: 2s
tracing:
  exporter: otlp
  sample_rate: 0.25
`)

	project := filepath.Join(root, "project")
	writeFile(t, filepath.Join(project, ProjectConfigFile), "metrics:\n  listen_addr: \":9100\"\n")
	explicit := filepath.Join(root, "explicit.yaml")
	writeFile(t, explicit, "package:\n  max_documents: 10\n")

	loader := NewLoader(nil)
	loader.UserConfigPath = userPath
	loader.WorkDir = project

	cfg, err := loader.Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"info file", cfg.Package.InfoFile, "tags.txt"},
		{"payload glob", cfg.Package.PayloadGlob, "payload/**"},
		{"subject prefix", cfg.Events.SubjectPrefix, "archive.events"},
		{"debounce", cfg.Watch.Debounce, 2 * time.Second},
		{"exporter", cfg.Tracing.Exporter, "otlp"},
		{"sample rate", cfg.Tracing.SampleRate, 0.25},
		{"listen addr", cfg.Metrics.ListenAddr, ":9100"},
		{"max documents", cfg.Package.MaxDocuments, 10},
		{"otlp endpoint default", cfg.Tracing.OTLPEndpoint, DefaultConfig().Tracing.OTLPEndpoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoaderDefaultsWithoutFiles(t *testing.T) {
	root := t.TempDir()
	loader := NewLoader(nil)
	loader.UserConfigPath = filepath.Join(root, "missing.yaml")
	loader.WorkDir = root

	cfg, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Package.InfoFile != DefaultConfig().Package.InfoFile {
		t.Errorf("expected defaults, got %+v", cfg.Package)
	}
}

func TestLoaderExplicitErrors(t *testing.T) {
	root := t.TempDir()
	loader := NewLoader(nil)
	loader.UserConfigPath = filepath.Join(root, "missing.yaml")
	loader.WorkDir = root

	if _, err := loader.Load(filepath.Join(root, "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}

	invalid := filepath.Join(root, "invalid.yaml")
	writeFile(t, invalid, "package:\n  base_dir: /absolute\n")
	if _, err := loader.Load(invalid); err == nil {
		t.Error("expected validation error")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), UserConfigDir, UserConfigFile)
	loader := NewLoader(nil)
	loader.UserConfigPath = path

	if err := loader.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load created config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("created config should be valid: %v", err)
	}

	// Existing files are left alone
	writeFile(t, path, "package:\n  base_dir: kept\n")
	if err := loader.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	cfg, _ = LoadFromFile(path)
	if cfg.Package.BaseDir != "kept" {
		t.Errorf("existing config overwritten: %+v", cfg.Package)
	}
}
