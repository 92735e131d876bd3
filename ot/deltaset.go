package ot

import (
	"fmt"
	"math/bits"
)

// DeltaSetIndexMap maps items (glyph IDs) to rows of an item variation store.
// Items beyond the end of the map use the last entry.
// A nil map is the identity mapping: item i maps to (0, i).
type DeltaSetIndexMap struct {
	entries []VarIndex
}

const (
	innerBitCountMask = 0x0F
	mapEntrySizeMask  = 0x30
	mapEntrySizeShift = 4
)

// NewDeltaSetIndexMap creates a map from a list of entries.
func NewDeltaSetIndexMap(entries []VarIndex) *DeltaSetIndexMap {
	return &DeltaSetIndexMap{entries: entries}
}

// Len returns the number of entries in the map.
func (m *DeltaSetIndexMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns the entries of the map.
func (m *DeltaSetIndexMap) Entries() []VarIndex {
	if m == nil {
		return nil
	}
	return m.entries
}

// Lookup returns the variation index for item i.
func (m *DeltaSetIndexMap) Lookup(i int) VarIndex {
	if m == nil || len(m.entries) == 0 {
		return VarIndex{Outer: 0, Inner: uint16(i)}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.entries) {
		return m.entries[len(m.entries)-1]
	}
	return m.entries[i]
}

// parseDeltaSetIndexMap reads a delta-set index map at offset at of table b.
// A map with zero entries is reported as a warning and results in (nil, nil),
// i.e. the identity mapping.
func parseDeltaSetIndexMap(tag Tag, b binarySegm, at, tableOffset uint32, ec *errorCollector) (*DeltaSetIndexMap, error) {
	fail := func(msg string) (*DeltaSetIndexMap, error) {
		return nil, ec.addError(tag, "DeltaSetIndexMap", msg, SeverityMinor, tableOffset+at)
	}
	if !b.fits(uint64(at), 4) {
		return fail("header out of bounds")
	}
	r := b.stream(at)
	format := r.ReadUint8()
	entryFormat := r.ReadUint8()
	var mapCount uint32
	switch format {
	case 0:
		mapCount = uint32(r.ReadUint16())
	case 1:
		if !b.fits(uint64(at), 6) {
			return fail("header out of bounds")
		}
		mapCount = r.ReadUint32()
	default:
		return fail(fmt.Sprintf("unsupported format %d", format))
	}
	if mapCount == 0 {
		ec.addWarning(tag, "delta-set index map without entries, using identity", tableOffset+at)
		return nil, nil
	}
	if mapCount > MaxGlyphCount {
		return fail(fmt.Sprintf("map count too large: %d", mapCount))
	}
	entrySize := int((entryFormat&mapEntrySizeMask)>>mapEntrySizeShift) + 1
	innerBits := uint(entryFormat&innerBitCountMask) + 1
	if !b.fits(uint64(r.Pos()), uint64(mapCount)*uint64(entrySize)) {
		return fail(fmt.Sprintf("%d entries of size %d out of bounds", mapCount, entrySize))
	}
	m := &DeltaSetIndexMap{entries: make([]VarIndex, mapCount)}
	for i := range m.entries {
		var v uint32
		switch entrySize {
		case 1:
			v = uint32(r.ReadUint8())
		case 2:
			v = uint32(r.ReadUint16())
		case 3:
			v = readUint24(r)
		default:
			v = r.ReadUint32()
		}
		outer := v >> innerBits
		if outer > 0xFFFF {
			return fail(fmt.Sprintf("entry %d: outer index %d too large", i, outer))
		}
		m.entries[i] = VarIndex{Outer: uint16(outer), Inner: uint16(v & (1<<innerBits - 1))}
	}
	return m, nil
}

// EntryFormat returns the narrowest entry size in bytes and the number of bits
// for inner indices which can represent all entries of the map.
func (m *DeltaSetIndexMap) EntryFormat() (entrySize int, innerBits int) {
	var maxOuter, maxInner uint16
	for _, e := range m.Entries() {
		maxOuter = max(maxOuter, e.Outer)
		maxInner = max(maxInner, e.Inner)
	}
	innerBits = max(1, bits.Len16(maxInner))
	total := innerBits + bits.Len16(maxOuter)
	entrySize = max(1, (total+7)/8)
	if entrySize > 4 {
		panic(fmt.Sprintf("delta-set index map entry needs %d bits", total))
	}
	return entrySize, innerBits
}

// Encode produces the binary form of the map, using the narrowest entry format.
// Maps with up to 65535 entries are written in format 0, larger ones in format 1.
func (m *DeltaSetIndexMap) Encode() []byte {
	if m.Len() == 0 {
		panic("cannot encode an empty delta-set index map")
	}
	entrySize, innerBits := m.EntryFormat()
	w := newStreamWriter()
	format := uint8(0)
	if len(m.entries) > 0xFFFF {
		format = 1
	}
	w.WriteUint8(format)
	w.WriteUint8(uint8((entrySize-1)<<mapEntrySizeShift | (innerBits - 1)))
	if format == 0 {
		w.WriteUint16(uint16(len(m.entries)))
	} else {
		w.WriteUint32(uint32(len(m.entries)))
	}
	for _, e := range m.entries {
		v := uint32(e.Outer)<<innerBits | uint32(e.Inner)
		switch entrySize {
		case 1:
			w.WriteUint8(uint8(v))
		case 2:
			w.WriteUint16(uint16(v))
		case 3:
			writeUint24(w, v)
		default:
			w.WriteUint32(v)
		}
	}
	return w.Bytes()
}

// Trimmed returns a map without trailing entries equal to their predecessor.
// Lookups are unaffected, as items beyond the end of a map use its last entry.
func (m *DeltaSetIndexMap) Trimmed() *DeltaSetIndexMap {
	n := m.Len()
	for n > 1 && m.entries[n-1] == m.entries[n-2] {
		n--
	}
	return &DeltaSetIndexMap{entries: m.entries[:n]}
}

// IsIdentity reports whether every entry i equals (0, i), i.e. whether the
// map could be omitted in favour of the implicit identity mapping.
func (m *DeltaSetIndexMap) IsIdentity() bool {
	for i, e := range m.Entries() {
		if e.Outer != 0 || int(e.Inner) != i {
			return false
		}
	}
	return true
}
