package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"woffsmith/internal/config"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if res := CheckDirectoryAccess("Output directory", dir); !res.Passed {
		t.Fatalf("expected pass, got %+v", res)
	}

	missing := filepath.Join(dir, "missing")
	res := CheckDirectoryAccess("Output directory", missing)
	if res.Passed || !strings.Contains(res.Detail, "does not exist") {
		t.Fatalf("expected missing failure, got %+v", res)
	}

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	res = CheckDirectoryAccess("Output directory", file)
	if res.Passed || !strings.Contains(res.Detail, "not a directory") {
		t.Fatalf("expected not-a-directory failure, got %+v", res)
	}
}

func TestCheckReadableFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "font.ttf")
	if err := os.WriteFile(file, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	if res := CheckReadableFile("Input", file); !res.Passed || !strings.Contains(res.Detail, "3 bytes") {
		t.Fatalf("expected pass, got %+v", res)
	}
	if res := CheckReadableFile("Input", dir); res.Passed {
		t.Fatalf("directory should fail, got %+v", res)
	}
}

func TestRunAll(t *testing.T) {
	cfg := config.Default()
	cfg.Convert.OutputDir = t.TempDir()
	cfg.Logging.Dir = filepath.Join(t.TempDir(), "absent")

	results := RunAll(&cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	failed := Failures(results)
	if len(failed) != 1 || failed[0].Name != "Log directory" {
		t.Fatalf("unexpected failures: %+v", failed)
	}
	if RunAll(nil) != nil {
		t.Fatal("nil config should produce no results")
	}
}
