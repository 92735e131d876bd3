package ot

import (
	"fmt"
)

// --- avar table ------------------------------------------------------------

// AvarTable is the axis variations table. It modifies the default
// normalization of each axis by a piecewise-linear segment map.
//
// Segment maps which are not well-formed are dropped individually: SegmentMaps
// holds None for an axis with an identity mapping, be it by declaration
// (no entries) or because the map has been discarded.
type AvarTable struct {
	tableBase
	SegmentMaps []Option[SegmentMap]
}

// SegmentMap maps normalized coordinates of one axis to modified normalized
// coordinates. A well-formed map starts at (-1,-1), contains (0,0) and ends
// at (1,1), with fromCoord strictly and toCoord weakly increasing.
type SegmentMap []AxisValueMap

// AxisValueMap is a single mapping (fromCoord, toCoord) of a segment map.
type AxisValueMap struct {
	From, To F2Dot14
}

func newAvarTable(tag Tag, b binarySegm, offset, size uint32) *AvarTable {
	t := &AvarTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// parseAvar reads table avar. Structural errors discard the whole table (it is
// optional); a malformed segment map is discarded for its axis only.
func parseAvar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	if size < 8 {
		ec.addError(tag, "Header", fmt.Sprintf("avar table too small: %d bytes", size), SeverityMinor, offset)
		return nil
	}
	r := b.stream(0)
	major, minor := r.ReadUint16(), r.ReadUint16()
	_ = r.ReadUint16() // reserved
	axisCount := r.ReadUint16()
	if major != 1 || minor != 0 {
		ec.addError(tag, "Header", fmt.Sprintf("unsupported version %d.%d", major, minor), SeverityMinor, offset)
		return nil
	}
	if axisCount > MaxAxes {
		ec.addError(tag, "Header", fmt.Sprintf("axis count too large: %d", axisCount), SeverityMinor, offset+6)
		return nil
	}
	t := newAvarTable(tag, b, offset, size)
	t.SegmentMaps = make([]Option[SegmentMap], axisCount)
	for i := range t.SegmentMaps {
		at := r.Pos()
		if !b.fits(uint64(at), 2) {
			ec.addError(tag, "SegmentMap", fmt.Sprintf("segment map %d out of bounds", i), SeverityMinor, offset+at)
			return nil
		}
		n := r.ReadUint16()
		if !b.fits(uint64(r.Pos()), 4*uint64(n)) {
			ec.addError(tag, "SegmentMap", fmt.Sprintf("segment map %d with %d entries out of bounds", i, n),
				SeverityMinor, offset+at)
			return nil
		}
		m := make(SegmentMap, n)
		for j := range m {
			m[j].From = readF2Dot14(r)
			m[j].To = readF2Dot14(r)
		}
		if n == 0 {
			t.SegmentMaps[i] = None[SegmentMap]()
			continue
		}
		if err := m.validate(); err != nil {
			ec.addError(tag, "SegmentMap", fmt.Sprintf("axis %d: %v, using identity", i, err), SeverityMinor, offset+at)
			t.SegmentMaps[i] = None[SegmentMap]()
			continue
		}
		t.SegmentMaps[i] = Some(m)
	}
	return t
}

func (m SegmentMap) validate() error {
	if len(m) < 3 {
		return fmt.Errorf("segment map has %d entries, need at least 3", len(m))
	}
	if m[0] != (AxisValueMap{-F2Dot14One, -F2Dot14One}) {
		return fmt.Errorf("segment map does not start at (-1,-1)")
	}
	if m[len(m)-1] != (AxisValueMap{F2Dot14One, F2Dot14One}) {
		return fmt.Errorf("segment map does not end at (1,1)")
	}
	zero := false
	for i, avm := range m {
		if avm == (AxisValueMap{}) {
			zero = true
		}
		if i > 0 && (avm.From <= m[i-1].From || avm.To < m[i-1].To) {
			return fmt.Errorf("segment map not monotonic at entry %d", i)
		}
	}
	if !zero {
		return fmt.Errorf("segment map does not contain (0,0)")
	}
	return nil
}

// Map applies the segment map to a default-normalized coordinate.
// Coordinates are interpolated linearly between adjacent map entries.
func (m SegmentMap) Map(v Fixed) Fixed {
	if len(m) == 0 {
		return v
	}
	if v <= m[0].From.Fixed() {
		return m[0].To.Fixed()
	}
	for k := 1; k < len(m); k++ {
		from := m[k].From.Fixed()
		if v > from {
			continue
		}
		if v == from {
			return m[k].To.Fixed()
		}
		prevFrom, prevTo := m[k-1].From.Fixed(), m[k-1].To.Fixed()
		t := FixedDiv(v-prevFrom, from-prevFrom)
		return prevTo + FixedMul(t, m[k].To.Fixed()-prevTo)
	}
	return m[len(m)-1].To.Fixed()
}

// EncodeAvar produces the binary form of an avar table (version 1.0).
// None entries are written as empty segment maps.
func EncodeAvar(maps []Option[SegmentMap]) []byte {
	w := newStreamWriter()
	w.WriteUint16(1) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteUint16(0) // reserved
	w.WriteUint16(uint16(len(maps)))
	for _, opt := range maps {
		m := opt.Or(nil)
		w.WriteUint16(uint16(len(m)))
		for _, avm := range m {
			writeF2Dot14(w, avm.From)
			writeF2Dot14(w, avm.To)
		}
	}
	return w.Bytes()
}
