package ot

import (
	"encoding/binary"
	"math/bits"
	"slices"
)

// AssembleFont writes a font file from binary tables, keyed by tag.
// Tables are ordered by tag and aligned to 4 bytes; table checksums and the
// checksum adjustment of table head (if present) are computed.
// The font is flagged as having TrueType outlines unless it contains a CFF table.
func AssembleFont(tables map[Tag][]byte) []byte {
	tags := make([]Tag, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	w := newStreamWriter()
	if tables[T("CFF ")] != nil || tables[T("CFF2")] != nil {
		w.WriteUint32(0x4f54544f) // OTTO
	} else {
		w.WriteUint32(0x00010000)
	}
	numTables := uint16(len(tags))
	entrySelector := uint16(0)
	if numTables > 0 {
		entrySelector = uint16(bits.Len16(numTables) - 1)
	}
	searchRange := uint16(1 << (entrySelector + 4))
	w.WriteUint16(numTables)
	w.WriteUint16(searchRange)
	w.WriteUint16(entrySelector)
	w.WriteUint16(numTables<<4 - searchRange) // rangeShift
	w.WriteBytes(make([]byte, int(numTables)<<4))

	checksumAdjustmentPos := -1
	offsets, lengths := make([]uint32, numTables), make([]uint32, numTables)
	for i, tag := range tags {
		offsets[i] = w.Len()
		table := tables[tag]
		w.WriteBytes(table)
		if tag == T("head") && len(table) >= 12 {
			checksumAdjustmentPos = int(offsets[i]) + 8
		}
		lengths[i] = w.Len() - offsets[i]
		for w.Len()%4 != 0 {
			w.WriteByte(0)
		}
	}

	buf := w.Bytes()
	if checksumAdjustmentPos >= 0 {
		binary.BigEndian.PutUint32(buf[checksumAdjustmentPos:], 0)
	}
	for i, tag := range tags {
		pos := 12 + i<<4
		padded := (lengths[i] + 3) &^ 3
		binary.BigEndian.PutUint32(buf[pos:], uint32(tag))
		binary.BigEndian.PutUint32(buf[pos+4:], calcChecksum(buf[offsets[i]:offsets[i]+padded]))
		binary.BigEndian.PutUint32(buf[pos+8:], offsets[i])
		binary.BigEndian.PutUint32(buf[pos+12:], lengths[i])
	}
	if checksumAdjustmentPos >= 0 {
		binary.BigEndian.PutUint32(buf[checksumAdjustmentPos:], 0xB1B0AFBA-calcChecksum(buf))
	}
	return buf
}

// calcChecksum sums the big-endian uint32 words of data; len(data) must be a
// multiple of 4.
func calcChecksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i+4 <= len(data); i += 4 {
		sum += u32(data[i:])
	}
	return sum
}
