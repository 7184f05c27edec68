package container

import (
	"bytes"
	"fmt"
	"sort"

	"seehuhn.de/go/sfnt/header"
)

const (
	scalerTrueType uint32 = 0x00010000
	scalerCFF      uint32 = 0x4F54544F // "OTTO"
	scalerApple    uint32 = 0x74727565 // "true"

	sfntOffsetTableSize = 12
	sfntTableRecordSize = 16
)

// Flavor names the outline technology announced by an sfnt scaler type.
type Flavor string

const (
	FlavorTrueType Flavor = "TrueType"
	FlavorCFF      Flavor = "CFF"
	FlavorApple    Flavor = "Apple TrueType"
)

// SourceTable describes one entry of the sfnt table directory.
type SourceTable struct {
	Tag    string
	Offset uint32
	Length uint32
}

// SourceInfo summarizes an sfnt font program.
type SourceInfo struct {
	ScalerType uint32
	Flavor     Flavor
	Size       int
	Tables     []SourceTable
}

// HasTable reports whether the table directory lists tag.
func (s SourceInfo) HasTable(tag string) bool {
	for _, t := range s.Tables {
		if t.Tag == tag {
			return true
		}
	}
	return false
}

// InspectSource validates the sfnt offset table and table directory of data.
// Every table record must lie inside the buffer.
func InspectSource(data []byte) (SourceInfo, error) {
	if len(data) < sfntOffsetTableSize {
		return SourceInfo{}, fmt.Errorf("%w: %d bytes is too short for an sfnt header", ErrMalformedSource, len(data))
	}

	info, err := header.Read(bytes.NewReader(data))
	if err != nil {
		return SourceInfo{}, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	flavor, ok := flavorOf(info.ScalerType)
	if !ok {
		return SourceInfo{}, fmt.Errorf("%w: unknown sfnt version 0x%08X", ErrMalformedSource, info.ScalerType)
	}
	if len(info.Toc) == 0 {
		return SourceInfo{}, fmt.Errorf("%w: table directory is empty", ErrMalformedSource)
	}
	if dirEnd := sfntOffsetTableSize + sfntTableRecordSize*len(info.Toc); dirEnd > len(data) {
		return SourceInfo{}, fmt.Errorf("%w: table directory ends at %d, past %d bytes", ErrMalformedSource, dirEnd, len(data))
	}

	tables := make([]SourceTable, 0, len(info.Toc))
	for tag, rec := range info.Toc {
		end := uint64(rec.Offset) + uint64(rec.Length)
		if end > uint64(len(data)) {
			return SourceInfo{}, fmt.Errorf("%w: table %q ends at %d, past %d bytes", ErrMalformedSource, tag, end, len(data))
		}
		tables = append(tables, SourceTable{Tag: tag, Offset: rec.Offset, Length: rec.Length})
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Offset < tables[j].Offset })

	return SourceInfo{
		ScalerType: info.ScalerType,
		Flavor:     flavor,
		Size:       len(data),
		Tables:     tables,
	}, nil
}

func flavorOf(scalerType uint32) (Flavor, bool) {
	switch scalerType {
	case scalerTrueType:
		return FlavorTrueType, true
	case scalerCFF:
		return FlavorCFF, true
	case scalerApple:
		return FlavorApple, true
	default:
		return "", false
	}
}
