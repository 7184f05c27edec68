package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"woffsmith/internal/queue"
)

// FontBytes returns a copy of a real TrueType font.
func FontBytes() []byte {
	return append([]byte(nil), goregular.TTF...)
}

// CorruptFontBytes returns bytes that carry a font extension in tests but no
// sfnt structure.
func CorruptFontBytes() []byte {
	return []byte("corrupted font data, not an sfnt table directory")
}

// Font builds a valid source file with the given name.
func Font(name string) queue.SourceFile {
	return queue.SourceFile{Name: name, Data: FontBytes()}
}

// CorruptFont builds an invalid source file with the given name.
func CorruptFont(name string) queue.SourceFile {
	return queue.SourceFile{Name: name, Data: CorruptFontBytes()}
}

// WriteFont writes a valid font to dir/name and returns the path.
func WriteFont(t testing.TB, dir, name string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, name), FontBytes())
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
