package container

import (
	"encoding/binary"
	"fmt"
)

const (
	SignatureWOFF  uint32 = 0x774F4646 // "wOFF"
	SignatureWOFF2 uint32 = 0x774F4632 // "wOF2"

	HeaderSizeWOFF  = 44
	HeaderSizeWOFF2 = 48

	containerFlavor    uint32 = 0x00010000
	containerNumTables uint16 = 1
	majorVersion       uint16 = 1
	minorVersion       uint16 = 0
)

// Header holds the decoded fields of a container header.
type Header struct {
	Format         Format
	Signature      uint32
	Flavor         uint32
	TotalLength    uint32
	NumTables      uint16
	TotalSfntSize  uint32
	CompressedSize uint32
	MajorVersion   uint16
	MinorVersion   uint16
}

// Size returns the encoded header length for the header's format.
func (h Header) Size() int {
	return headerSize(h.Format)
}

func headerSize(format Format) int {
	if format == FormatWOFF2 {
		return HeaderSizeWOFF2
	}
	return HeaderSizeWOFF
}

func signatureFor(format Format) uint32 {
	if format == FormatWOFF2 {
		return SignatureWOFF2
	}
	return SignatureWOFF
}

// putHeader writes the header into buf, which must be at least headerSize
// bytes long and zeroed.
func putHeader(buf []byte, format Format, sourceLen, compressedLen int) {
	be := binary.BigEndian
	size := headerSize(format)
	be.PutUint32(buf[0:], signatureFor(format))
	be.PutUint32(buf[4:], containerFlavor)
	be.PutUint32(buf[8:], uint32(size+compressedLen))
	be.PutUint16(buf[12:], containerNumTables)
	be.PutUint32(buf[16:], uint32(sourceLen))
	if format == FormatWOFF2 {
		be.PutUint32(buf[20:], uint32(compressedLen))
		be.PutUint16(buf[24:], majorVersion)
		be.PutUint16(buf[26:], minorVersion)
		return
	}
	be.PutUint16(buf[20:], majorVersion)
	be.PutUint16(buf[22:], minorVersion)
}

// ParseHeader decodes the header of a WOFF or WOFF2 container and checks the
// declared total length against the buffer.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < 4 {
		return Header{}, fmt.Errorf("%w: %d bytes is too short for a container", ErrMalformedContainer, len(data))
	}
	be := binary.BigEndian
	var h Header
	h.Signature = be.Uint32(data[0:])
	switch h.Signature {
	case SignatureWOFF:
		h.Format = FormatWOFF
	case SignatureWOFF2:
		h.Format = FormatWOFF2
	default:
		return Header{}, fmt.Errorf("%w: unknown signature 0x%08X", ErrMalformedContainer, h.Signature)
	}
	size := h.Size()
	if len(data) < size {
		return Header{}, fmt.Errorf("%w: %s header needs %d bytes, have %d", ErrMalformedContainer, h.Format, size, len(data))
	}

	h.Flavor = be.Uint32(data[4:])
	h.TotalLength = be.Uint32(data[8:])
	h.NumTables = be.Uint16(data[12:])
	h.TotalSfntSize = be.Uint32(data[16:])
	if h.Format == FormatWOFF2 {
		h.CompressedSize = be.Uint32(data[20:])
		h.MajorVersion = be.Uint16(data[24:])
		h.MinorVersion = be.Uint16(data[26:])
	} else {
		h.MajorVersion = be.Uint16(data[20:])
		h.MinorVersion = be.Uint16(data[22:])
		if h.TotalLength >= uint32(size) {
			h.CompressedSize = h.TotalLength - uint32(size)
		}
	}

	if int64(h.TotalLength) != int64(len(data)) {
		return Header{}, fmt.Errorf("%w: totalLength %d does not match %d bytes", ErrMalformedContainer, h.TotalLength, len(data))
	}
	if int64(h.CompressedSize) != int64(len(data)-size) {
		return Header{}, fmt.Errorf("%w: compressed size %d does not match payload of %d bytes", ErrMalformedContainer, h.CompressedSize, len(data)-size)
	}
	return h, nil
}
