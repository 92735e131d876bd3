package ot

import (
	"fmt"
)

// HVarTable holds the glyph metrics variations of table HVAR (horizontal) or
// VVAR (vertical). It references an item variation store and up to three
// (HVAR) or four (VVAR) delta-set index maps.
//
// Without an advance map, glyph IDs map to (0, gid). Without a
// side bearing map, side bearings do not vary. A map which has been found to
// be malformed makes the corresponding metric non-variable.
type HVarTable struct {
	tableBase
	Store           *ItemVariationStore
	AdvanceMap      *DeltaSetIndexMap
	StartBearingMap *DeltaSetIndexMap // lsb for HVAR, tsb for VVAR
	EndBearingMap   *DeltaSetIndexMap // rsb for HVAR, bsb for VVAR
	OriginMap       *DeltaSetIndexMap // VVAR only: vertical origins
	advanceBroken   bool
}

const (
	hvarHeaderSize = 20
	vvarHeaderSize = 24
)

func newHVarTable(tag Tag, b binarySegm, offset, size uint32) *HVarTable {
	t := &HVarTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// IsVertical reports whether this is a VVAR table.
func (t *HVarTable) IsVertical() bool {
	return t.name == T("VVAR")
}

// parseHVar reads table HVAR or VVAR. A malformed header or item variation
// store drops the table; malformed delta-set index maps are dropped individually.
func parseHVar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	vertical := tag == T("VVAR")
	headerSize := uint32(hvarHeaderSize)
	if vertical {
		headerSize = vvarHeaderSize
	}
	if size < headerSize {
		ec.addError(tag, "Header", fmt.Sprintf("table too small: %d bytes", size), SeverityMajor, offset)
		return nil
	}
	r := b.stream(0)
	major, minor := r.ReadUint16(), r.ReadUint16()
	if major != 1 || minor != 0 {
		ec.addError(tag, "Header", fmt.Sprintf("unsupported version %d.%d", major, minor), SeverityMajor, offset)
		return nil
	}
	ivsOffset := r.ReadUint32()
	mapOffsets := make([]uint32, 3, 4)
	for i := range mapOffsets {
		mapOffsets[i] = r.ReadUint32()
	}
	if vertical {
		mapOffsets = append(mapOffsets, r.ReadUint32())
	}
	if ivsOffset == 0 {
		ec.addError(tag, "Header", "no item variation store", SeverityMajor, offset)
		return nil
	}
	store, err := parseItemVariationStore(tag, b, ivsOffset, offset, ec)
	if err != nil {
		return nil
	}
	t := newHVarTable(tag, b, offset, size)
	t.Store = store
	maps := make([]*DeltaSetIndexMap, len(mapOffsets))
	for i, at := range mapOffsets {
		if at == 0 {
			continue
		}
		m, err := parseDeltaSetIndexMap(tag, b, at, offset, ec)
		if err != nil && i == 0 {
			t.advanceBroken = true
		}
		maps[i] = m
	}
	t.AdvanceMap, t.StartBearingMap, t.EndBearingMap = maps[0], maps[1], maps[2]
	if vertical {
		t.OriginMap = maps[3]
	}
	return t
}

// AdvanceDelta returns the variation of the advance of glyph gid, given
// the region scalars of an instance (see ItemVariationStore.CalcRegionScalars).
func (t *HVarTable) AdvanceDelta(gid GlyphIndex, scalars []Fixed) Fixed {
	if t == nil || t.advanceBroken {
		return 0
	}
	return t.Store.ApplyDeltasForGid(t.AdvanceMap, gid, scalars)
}

// StartBearingDelta returns the variation of the left (HVAR) or top (VVAR)
// side bearing of glyph gid. ok is false if the table has no such data.
func (t *HVarTable) StartBearingDelta(gid GlyphIndex, scalars []Fixed) (Fixed, bool) {
	return t.mappedDelta(t.StartBearingMap, gid, scalars)
}

// EndBearingDelta returns the variation of the right (HVAR) or bottom (VVAR)
// side bearing of glyph gid. ok is false if the table has no such data.
func (t *HVarTable) EndBearingDelta(gid GlyphIndex, scalars []Fixed) (Fixed, bool) {
	return t.mappedDelta(t.EndBearingMap, gid, scalars)
}

// OriginDelta returns the variation of the vertical origin of glyph gid
// (VVAR only). ok is false if the table has no such data.
func (t *HVarTable) OriginDelta(gid GlyphIndex, scalars []Fixed) (Fixed, bool) {
	return t.mappedDelta(t.OriginMap, gid, scalars)
}

func (t *HVarTable) mappedDelta(m *DeltaSetIndexMap, gid GlyphIndex, scalars []Fixed) (Fixed, bool) {
	if t == nil || m == nil {
		return 0, false
	}
	return t.Store.ApplyDeltasForGid(m, gid, scalars), true
}

// --- Encoding --------------------------------------------------------------

// GlyphVariations collects the variation indices of glyph metrics, as
// returned by ItemVariationStore.AddValue, one entry per glyph. Nil slices
// are omitted from the table.
type GlyphVariations struct {
	Advances      []VarIndex
	StartBearings []VarIndex
	EndBearings   []VarIndex
	Origins       []VarIndex // VVAR only
}

// EncodeHVAR produces the binary form of table HVAR.
func EncodeHVAR(ivs *ItemVariationStore, gv GlyphVariations) []byte {
	return encodeMetricsVariations(ivs, gv, false)
}

// EncodeVVAR produces the binary form of table VVAR.
func EncodeVVAR(ivs *ItemVariationStore, gv GlyphVariations) []byte {
	return encodeMetricsVariations(ivs, gv, true)
}

// encodeMetricsVariations writes the header, the item variation store and the
// delta-set index maps. Entries with the NoVariation sentinel are pointed to
// the store's zero-delta row. An advance map equal to the identity is omitted.
func encodeMetricsVariations(ivs *ItemVariationStore, gv GlyphVariations, vertical bool) []byte {
	entries := [][]VarIndex{gv.Advances, gv.StartBearings, gv.EndBearings}
	headerSize := uint32(hvarHeaderSize)
	if vertical {
		entries = append(entries, gv.Origins)
		headerSize = vvarHeaderSize
	} else if gv.Origins != nil {
		panic("HVAR cannot carry vertical origins")
	}
	maps := make([]*DeltaSetIndexMap, len(entries))
	for i, e := range entries {
		if len(e) == 0 {
			continue
		}
		resolved := make([]VarIndex, len(e))
		for j, vi := range e {
			if vi == NoVariation {
				vi = ivs.NoVariationIndex()
			}
			resolved[j] = vi
		}
		m := NewDeltaSetIndexMap(resolved)
		if i == 0 && m.IsIdentity() {
			continue
		}
		maps[i] = m.Trimmed()
	}
	store := ivs.Encode() // after resolving sentinels, which may add a subtable
	w := newStreamWriter()
	w.WriteUint16(1) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteUint32(headerSize)
	w.WriteBytes(make([]byte, 4*len(maps)))
	w.WriteBytes(store)
	mapOffsets := make([]uint32, len(maps))
	for i, m := range maps {
		if m == nil {
			continue
		}
		mapOffsets[i] = w.Len()
		w.WriteBytes(m.Encode())
	}
	b := w.Bytes()
	for i, off := range mapOffsets {
		patchOffset32(b, uint32(8+4*i), off)
	}
	return b
}
