package container

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a target web font container.
type Format string

const (
	FormatWOFF  Format = "woff"
	FormatWOFF2 Format = "woff2"
)

// Formats lists the supported container formats in display order.
func Formats() []Format {
	return []Format{FormatWOFF, FormatWOFF2}
}

// ParseFormat converts user input into a Format.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatWOFF:
		return FormatWOFF, nil
	case FormatWOFF2:
		return FormatWOFF2, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, value)
	}
}

// Valid reports whether the format is one the encoder understands.
func (f Format) Valid() bool {
	return f == FormatWOFF || f == FormatWOFF2
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	if !f.Valid() {
		return ""
	}
	return "." + string(f)
}

// MIMEType returns the media type used when the container is delivered.
func (f Format) MIMEType() string {
	switch f {
	case FormatWOFF:
		return "font/woff"
	case FormatWOFF2:
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}

func (f Format) String() string {
	return string(f)
}

// OutputName derives the container file name from the source name by
// replacing its extension. Names without an extension get one appended.
func OutputName(sourceName string, format Format) string {
	base := filepath.Base(strings.TrimSpace(sourceName))
	if base == "." || base == string(filepath.Separator) {
		base = "font"
	}
	ext := filepath.Ext(base)
	if ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base + format.Extension()
}
