// Package container frames sfnt font programs as WOFF and WOFF2 web font
// containers.
//
// Encoding is a pure function of the source bytes, the target format, and the
// compression level: the whole source is deflated into a single zlib stream
// and prefixed with a fixed big-endian header (44 bytes for WOFF, 48 bytes for
// WOFF2). The WOFF2 framing is deliberately simplified; it carries no glyph
// table transforms and no Brotli stream, so browsers expecting a conforming
// WOFF2 file will reject it.
//
// The package also inspects inputs (sfnt flavor and table directory) and
// decodes headers of containers it produced, which the CLI uses for its
// inspect command.
package container
