package container

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

const (
	DefaultWOFFLevel  = zlib.DefaultCompression
	DefaultWOFF2Level = zlib.BestCompression
)

// Encoder converts sfnt sources into containers. The zero value compresses
// with zlib level 0 for both formats; use DefaultEncoder for the standard
// settings.
type Encoder struct {
	WOFFLevel    int
	WOFF2Level   int
	ValidateSfnt bool
}

// DefaultEncoder returns the encoder used when no configuration is supplied.
func DefaultEncoder() Encoder {
	return Encoder{
		WOFFLevel:    DefaultWOFFLevel,
		WOFF2Level:   DefaultWOFF2Level,
		ValidateSfnt: true,
	}
}

// Encode frames source as a container of the given format using
// DefaultEncoder.
func Encode(source []byte, format Format) ([]byte, error) {
	return DefaultEncoder().Encode(source, format)
}

// Encode deflates the full source and prefixes it with the format header.
// The same input always produces the same output.
func (e Encoder) Encode(source []byte, format Format) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	if len(source) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedSource)
	}
	if e.ValidateSfnt {
		if _, err := InspectSource(source); err != nil {
			return nil, err
		}
	}

	size := headerSize(format)
	var buf bytes.Buffer
	buf.Grow(size + len(source)/2)
	buf.Write(make([]byte, size))

	zw, err := zlib.NewWriterLevel(&buf, e.level(format))
	if err != nil {
		return nil, fmt.Errorf("create %s compressor: %w", format, err)
	}
	if _, err := zw.Write(source); err != nil {
		return nil, fmt.Errorf("compress %s payload: %w", format, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finish %s payload: %w", format, err)
	}

	out := buf.Bytes()
	putHeader(out, format, len(source), len(out)-size)
	return out, nil
}

func (e Encoder) level(format Format) int {
	if format == FormatWOFF2 {
		return e.WOFF2Level
	}
	return e.WOFFLevel
}

// Payload decompresses the body of a container and checks it against the
// declared sfnt size.
func Payload(data []byte) ([]byte, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	zr, err := zlib.NewReader(bytes.NewReader(data[h.Size():]))
	if err != nil {
		return nil, fmt.Errorf("%w: open payload: %v", ErrMalformedContainer, err)
	}
	defer zr.Close()

	source, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: inflate payload: %v", ErrMalformedContainer, err)
	}
	if int64(len(source)) != int64(h.TotalSfntSize) {
		return nil, fmt.Errorf("%w: payload inflates to %d bytes, header declares %d", ErrMalformedContainer, len(source), h.TotalSfntSize)
	}
	return source, nil
}
