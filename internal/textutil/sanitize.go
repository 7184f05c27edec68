package textutil

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns name in Unicode NFC with surrounding whitespace removed.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// BaseName strips directory components using either separator style.
func BaseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// FlatName reduces name to its last path segment so it cannot leave the
// directory or archive it is written into. The segment is kept byte for byte.
// Names without a usable segment fall back to fallback.
func FlatName(name, fallback string) string {
	flat := BaseName(name)
	if flat == "" || flat == "." || flat == ".." {
		return fallback
	}
	return flat
}
