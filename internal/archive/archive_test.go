package archive_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"woffsmith/internal/archive"
	"woffsmith/internal/container"
	"woffsmith/internal/queue"
)

func convertedJob(artifacts ...queue.Artifact) *queue.Job {
	return &queue.Job{Status: queue.StatusConverted, Artifacts: artifacts}
}

func readArchive(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	out := map[string]string{}
	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", file.Name, err)
		}
		out[file.Name] = string(content)
	}
	return out
}

func TestBuildPacksConvertedArtifacts(t *testing.T) {
	jobs := []*queue.Job{
		convertedJob(queue.Artifact{Format: container.FormatWOFF, Name: "a.woff", Data: []byte("A")}),
		{Status: queue.StatusError, ErrorMessage: "bad"},
		convertedJob(queue.Artifact{Format: container.FormatWOFF2, Name: "nested/dir/b.woff2", Data: []byte("B")}),
	}

	data, err := archive.Build(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := map[string]string{"a.woff": "A", "b.woff2": "B"}
	if diff := cmp.Diff(want, readArchive(t, data)); diff != "" {
		t.Fatalf("archive mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDuplicateNamesLastWins(t *testing.T) {
	jobs := []*queue.Job{
		convertedJob(queue.Artifact{Format: container.FormatWOFF2, Name: "font.woff2", Data: []byte("first")}),
		convertedJob(queue.Artifact{Format: container.FormatWOFF2, Name: "other.woff2", Data: []byte("other")}),
		convertedJob(queue.Artifact{Format: container.FormatWOFF2, Name: "font.woff2", Data: []byte("last")}),
	}

	if diff := cmp.Diff([]string{"font.woff2", "other.woff2"}, archive.Entries(jobs)); diff != "" {
		t.Fatalf("entry order mismatch (-want +got):\n%s", diff)
	}
	data, err := archive.Build(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got := readArchive(t, data)
	if got["font.woff2"] != "last" || len(got) != 2 {
		t.Fatalf("unexpected archive contents: %v", got)
	}
}

func TestBuildKeepsDistinctNames(t *testing.T) {
	jobs := []*queue.Job{
		convertedJob(queue.Artifact{Format: container.FormatWOFF, Name: "Font: Bold?.woff", Data: []byte("a")}),
		convertedJob(queue.Artifact{Format: container.FormatWOFF, Name: "Font- Bold.woff", Data: []byte("b")}),
		convertedJob(queue.Artifact{Format: container.FormatWOFF, Name: "Cafe\u0301.woff", Data: []byte("c")}),
		convertedJob(queue.Artifact{Format: container.FormatWOFF, Name: "Caf\u00e9.woff", Data: []byte("d")}),
	}
	data, err := archive.Build(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := map[string]string{
		"Font: Bold?.woff": "a",
		"Font- Bold.woff":  "b",
		"Cafe\u0301.woff":  "c",
		"Caf\u00e9.woff":   "d",
	}
	if diff := cmp.Diff(want, readArchive(t, data)); diff != "" {
		t.Fatalf("archive contents mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildStripsDirectories(t *testing.T) {
	jobs := []*queue.Job{
		convertedJob(queue.Artifact{Format: container.FormatWOFF2, Name: "../../etc/evil.woff2", Data: []byte("x")}),
		convertedJob(queue.Artifact{Format: container.FormatWOFF2, Name: "..", Data: []byte("y")}),
	}
	names := archive.Entries(jobs)
	if diff := cmp.Diff([]string{"evil.woff2", "font.woff2"}, names); diff != "" {
		t.Fatalf("entry names mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildNothingToArchive(t *testing.T) {
	data, err := archive.Build(context.Background(), []*queue.Job{{Status: queue.StatusPending}})
	if err != nil || data != nil {
		t.Fatalf("expected nil, nil; got %d bytes, %v", len(data), err)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jobs := []*queue.Job{
		convertedJob(queue.Artifact{Format: container.FormatWOFF, Name: "a.woff", Data: []byte("A")}),
	}
	_, err := archive.Build(ctx, jobs)
	if !errors.Is(err, archive.ErrAssembly) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected ErrAssembly wrapping context.Canceled, got %v", err)
	}
}
