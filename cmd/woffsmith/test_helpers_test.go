package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"woffsmith/internal/config"
	"woffsmith/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	inputDir   string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	env := &cliTestEnv{cfg: cfg, configPath: filepath.Join(base, "woffsmith.toml")}
	env.writeConfig(t)

	inputDir := filepath.Join(base, "in")
	for _, dir := range []string{inputDir, cfg.Convert.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	env.inputDir = inputDir
	return env
}

// writeConfig persists env.cfg so later CLI runs pick up changes.
func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	data, err := e.cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	testsupport.WriteFile(t, e.configPath, data)
}

func (e *cliTestEnv) font(t *testing.T, name string) string {
	t.Helper()
	return testsupport.WriteFont(t, e.inputDir, name)
}

func (e *cliTestEnv) file(t *testing.T, name string, data []byte) string {
	t.Helper()
	return testsupport.WriteFile(t, filepath.Join(e.inputDir, name), data)
}

func (e *cliTestEnv) output(name string) string {
	return filepath.Join(e.cfg.Convert.OutputDir, name)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	full := append([]string{"--log-level", "error"}, args...)
	if configPath != "" {
		full = append([]string{"--config", configPath}, full...)
	}
	cmd.SetArgs(full)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\noutput:\n%s", needle, haystack)
	}
}

func requireFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file %s: %v", path, err)
	}
	return data
}
