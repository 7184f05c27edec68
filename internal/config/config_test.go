package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"woffsmith/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	wantPath := filepath.Join(tempHome, ".config", "woffsmith", "config.toml")
	if resolved != wantPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, wantPath)
	}
	if cfg.Convert.DefaultFormat != "woff2" {
		t.Fatalf("expected woff2 default format, got %q", cfg.Convert.DefaultFormat)
	}
	if !filepath.IsAbs(cfg.Convert.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Convert.OutputDir)
	}
	if cfg.Convert.ArchiveName != "converted-fonts.zip" {
		t.Fatalf("unexpected archive name: %q", cfg.Convert.ArchiveName)
	}
	if cfg.Encoder.WOFFLevel != 6 || cfg.Encoder.WOFF2Level != 9 {
		t.Fatalf("unexpected encoder levels: %+v", cfg.Encoder)
	}
	if !cfg.Encoder.ValidateSfnt {
		t.Fatal("expected sfnt validation enabled by default")
	}
	if cfg.Workflow.Concurrency != 1 {
		t.Fatalf("expected sequential default, got concurrency %d", cfg.Workflow.Concurrency)
	}
	if cfg.LogFilePath() != "" {
		t.Fatalf("expected no log file by default, got %q", cfg.LogFilePath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "woffsmith.toml")

	type payload struct {
		Convert struct {
			DefaultFormat string `toml:"default_format"`
			OutputDir     string `toml:"output_dir"`
		} `toml:"convert"`
		Workflow struct {
			Concurrency int `toml:"concurrency"`
		} `toml:"workflow"`
		Logging struct {
			Format string `toml:"format"`
			Dir    string `toml:"dir"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Convert.DefaultFormat = " WOFF "
	custom.Convert.OutputDir = filepath.Join(tempDir, "out")
	custom.Workflow.Concurrency = 4
	custom.Logging.Format = "JSON"
	custom.Logging.Dir = filepath.Join(tempDir, "logs")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: path=%q exists=%v", resolved, exists)
	}
	if cfg.Convert.DefaultFormat != "woff" {
		t.Fatalf("expected normalized woff format, got %q", cfg.Convert.DefaultFormat)
	}
	if cfg.Workflow.Concurrency != 4 {
		t.Fatalf("unexpected concurrency: %d", cfg.Workflow.Concurrency)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased log format, got %q", cfg.Logging.Format)
	}
	if cfg.LogFilePath() != filepath.Join(tempDir, "logs", "woffsmith.log") {
		t.Fatalf("unexpected log file path: %q", cfg.LogFilePath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Convert.OutputDir, cfg.Logging.Dir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "woffsmith.toml")
	if err := os.WriteFile(configPath, []byte("[convert]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected parse error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{
			name:    "unknown format",
			mutate:  func(c *config.Config) { c.Convert.DefaultFormat = "ttf" },
			wantErr: "convert.default_format",
		},
		{
			name:    "archive path",
			mutate:  func(c *config.Config) { c.Convert.ArchiveName = "out/fonts.zip" },
			wantErr: "convert.archive_name",
		},
		{
			name:    "archive extension",
			mutate:  func(c *config.Config) { c.Convert.ArchiveName = "fonts.tar" },
			wantErr: "convert.archive_name",
		},
		{
			name:    "woff level",
			mutate:  func(c *config.Config) { c.Encoder.WOFFLevel = 10 },
			wantErr: "encoder.woff_level",
		},
		{
			name:    "woff2 level",
			mutate:  func(c *config.Config) { c.Encoder.WOFF2Level = -2 },
			wantErr: "encoder.woff2_level",
		},
		{
			name:    "concurrency",
			mutate:  func(c *config.Config) { c.Workflow.Concurrency = 65 },
			wantErr: "workflow.concurrency",
		},
		{
			name:    "log format",
			mutate:  func(c *config.Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "log level",
			mutate:  func(c *config.Config) { c.Logging.Level = "trace" },
			wantErr: "logging.level",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	path := filepath.Join(tempDir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	defaults := config.Default()
	if cfg.Convert.DefaultFormat != defaults.Convert.DefaultFormat {
		t.Fatalf("sample default format %q differs from default %q", cfg.Convert.DefaultFormat, defaults.Convert.DefaultFormat)
	}
	if cfg.Encoder != defaults.Encoder {
		t.Fatalf("sample encoder %+v differs from default %+v", cfg.Encoder, defaults.Encoder)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.Concurrency = 3
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.Workflow.Concurrency != 3 {
		t.Fatalf("unexpected concurrency after round trip: %d", decoded.Workflow.Concurrency)
	}
}
