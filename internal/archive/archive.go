// Package archive bundles converted font containers into a single zip file.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"woffsmith/internal/queue"
	"woffsmith/internal/textutil"
)

// DefaultName is the file name used when the archive is delivered.
const DefaultName = "converted-fonts.zip"

// ErrAssembly wraps every failure to produce the archive.
var ErrAssembly = errors.New("archive assembly failed")

// MIMEType is the media type of the produced archive.
const MIMEType = "application/zip"

type entry struct {
	name string
	data []byte
}

// Entries lists the archive entry names for the artifacts of converted jobs in
// job order. Names lose any directory part and are otherwise kept as they are.
// A repeated name keeps its first position and takes the last data.
func Entries(jobs []*queue.Job) []string {
	names := make([]string, 0, len(jobs))
	for _, e := range collect(jobs) {
		names = append(names, e.name)
	}
	return names
}

func collect(jobs []*queue.Job) []entry {
	var entries []entry
	index := make(map[string]int)
	for _, job := range jobs {
		if job == nil || job.Status != queue.StatusConverted {
			continue
		}
		for _, artifact := range job.Artifacts {
			name := textutil.FlatName(artifact.Name, "font"+artifact.Format.Extension())
			if i, ok := index[name]; ok {
				entries[i].data = artifact.Data
				continue
			}
			index[name] = len(entries)
			entries = append(entries, entry{name: name, data: artifact.Data})
		}
	}
	return entries
}

// Build returns a zip archive holding every artifact of the converted jobs.
// It returns nil, nil when there is nothing to archive.
func Build(ctx context.Context, jobs []*queue.Job) ([]byte, error) {
	entries := collect(jobs)
	if len(entries) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Now()
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAssembly, errors.Join(err, zw.Close()))
		}
		header := &zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: modified,
		}
		header.SetMode(0o644)
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("%w: create entry %s: %w", ErrAssembly, e.name, errors.Join(err, zw.Close()))
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, fmt.Errorf("%w: write entry %s: %w", ErrAssembly, e.name, errors.Join(err, zw.Close()))
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: finish archive: %w", ErrAssembly, err)
	}
	return buf.Bytes(), nil
}
