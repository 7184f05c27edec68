package container

import "errors"

var (
	// ErrUnsupportedFormat indicates a target format outside woff/woff2.
	ErrUnsupportedFormat = errors.New("unsupported container format")
	// ErrMalformedSource indicates source bytes that are not a usable sfnt font.
	ErrMalformedSource = errors.New("malformed font source")
	// ErrMalformedContainer indicates bytes that are not a container this package produces.
	ErrMalformedContainer = errors.New("malformed container")
)
