package ot

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
)

// ItemVariationStore holds variation data for items like glyph advances or
// font-wide metrics. It consists of a list of variation regions, shared by all
// items, and of subtables (ItemVariationData) holding rows of deltas, one
// row per item.
//
// An item is addressed by a VarIndex (outer = subtable, inner = row).
// Its value at an instance is the default value plus the sum of its
// deltas, each weighted by the scalar of the corresponding region.
//
// Decoded stores are read-only. Stores created by NewItemVariationStore are
// filled with AddValue; they must not be shared between goroutines while
// values are added.
type ItemVariationStore struct {
	axisCount int
	regions   []VariationRegion
	subtables []*ItemVariationData
	// encode path
	regionIndex map[string]uint16 // region key → index
	models      *treemap.Map      // location-id vector → *VariationModel
	noVariation Option[VarIndex]  // row of zero deltas, see NoVariationIndex
}

// ItemVariationData is a subtable of an item variation store. Each row
// holds the deltas of one item, one column per referenced region.
type ItemVariationData struct {
	RegionIndices []uint16
	Deltas        [][]int32 // [item][column]
}

// ItemCount returns the number of rows.
func (ivd *ItemVariationData) ItemCount() int {
	return len(ivd.Deltas)
}

// VarIndex addresses a row of deltas within an item variation store.
type VarIndex struct {
	Outer, Inner uint16
}

// NoVariation is the sentinel index of values without variation.
var NoVariation = VarIndex{Outer: 0xFFFF, Inner: 0xFFFF}

func (vi VarIndex) String() string {
	if vi == NoVariation {
		return "(none)"
	}
	return fmt.Sprintf("(%d,%d)", vi.Outer, vi.Inner)
}

// AxisCount returns the number of axes the regions of the store span.
func (ivs *ItemVariationStore) AxisCount() int {
	if ivs == nil {
		return 0
	}
	return ivs.axisCount
}

// RegionCount returns the number of regions.
func (ivs *ItemVariationStore) RegionCount() int {
	if ivs == nil {
		return 0
	}
	return len(ivs.regions)
}

// Region returns region i.
func (ivs *ItemVariationStore) Region(i int) VariationRegion {
	return ivs.regions[i]
}

// SubtableCount returns the number of item variation data subtables.
func (ivs *ItemVariationStore) SubtableCount() int {
	if ivs == nil {
		return 0
	}
	return len(ivs.subtables)
}

// Subtable returns subtable i (the outer index of a VarIndex).
func (ivs *ItemVariationStore) Subtable(i int) *ItemVariationData {
	return ivs.subtables[i]
}

// IsEmpty reports whether the store carries any variation data.
func (ivs *ItemVariationStore) IsEmpty() bool {
	return ivs == nil || (len(ivs.regions) == 0 && len(ivs.subtables) == 0)
}

// --- Decoding --------------------------------------------------------------

const (
	ivsHeaderSize    = 8
	ivdHeaderSize    = 6
	longWordsFlag    = 0x8000
	wordCountMask    = 0x7FFF
	regionRecordSize = 6
)

// DecodeItemVariationStore decodes an item variation store located at ivsOffset
// within the binary data of its containing table.
// On error, an empty store is returned together with the error.
func DecodeItemVariationStore(table []byte, ivsOffset uint32) (*ItemVariationStore, error) {
	return parseItemVariationStore(T("IVS "), table, ivsOffset, 0, nil)
}

// parseItemVariationStore reads an item variation store at ivsOffset of table b.
// All offsets and counts are checked against the table size. If any check fails,
// the error is recorded and returned together with an empty store.
// tableOffset is the position of b within the font, used for error reporting.
func parseItemVariationStore(tag Tag, b binarySegm, ivsOffset, tableOffset uint32, ec *errorCollector) (*ItemVariationStore, error) {
	fail := func(section, msg string, at uint64) (*ItemVariationStore, error) {
		return &ItemVariationStore{}, ec.addError(tag, section, msg, SeverityMajor, tableOffset+uint32(at))
	}
	base := uint64(ivsOffset)
	if !b.fits(base, ivsHeaderSize) {
		return fail("ItemVariationStore", "header out of bounds", base)
	}
	r := b.stream(ivsOffset)
	format := r.ReadUint16()
	regionListOffset := uint64(r.ReadUint32())
	subtableCount := int(r.ReadUint16())
	if format != 1 {
		return fail("ItemVariationStore", fmt.Sprintf("unsupported format %d", format), base)
	}
	if !b.fits(base+ivsHeaderSize, 4*uint64(subtableCount)) {
		return fail("ItemVariationStore", "subtable offsets out of bounds", base)
	}
	subtableOffsets := make([]uint64, subtableCount)
	for i := range subtableOffsets {
		subtableOffsets[i] = uint64(r.ReadUint32())
	}
	// region list
	at := base + regionListOffset
	if regionListOffset == 0 || !b.fits(at, 4) {
		return fail("RegionList", "region list out of bounds", at)
	}
	r.Seek(uint32(at))
	axisCount := int(r.ReadUint16())
	regionCount := int(r.ReadUint16())
	if axisCount > MaxAxes || regionCount > MaxRegions {
		return fail("RegionList", fmt.Sprintf("pathological region list: %d axes, %d regions",
			axisCount, regionCount), at)
	}
	if !b.fits(at+4, uint64(regionCount)*uint64(axisCount)*regionRecordSize) {
		return fail("RegionList", "regions out of bounds", at)
	}
	ivs := &ItemVariationStore{axisCount: axisCount}
	ivs.regions = make([]VariationRegion, regionCount)
	for i := range ivs.regions {
		region := make(VariationRegion, axisCount)
		for j := range region {
			region[j].Start = readF2Dot14(r)
			region[j].Peak = readF2Dot14(r)
			region[j].End = readF2Dot14(r)
		}
		ivs.regions[i] = region
	}
	// item variation data subtables
	ivs.subtables = make([]*ItemVariationData, subtableCount)
	for i, off := range subtableOffsets {
		at := base + off
		if off == 0 || !b.fits(at, ivdHeaderSize) {
			return fail("ItemVariationData", fmt.Sprintf("subtable %d out of bounds", i), at)
		}
		r.Seek(uint32(at))
		itemCount := int(r.ReadUint16())
		wordDeltaCount := r.ReadUint16()
		regionIndexCount := int(r.ReadUint16())
		longWords := wordDeltaCount&longWordsFlag != 0
		wordCount := int(wordDeltaCount & wordCountMask)
		if wordCount > regionIndexCount {
			return fail("ItemVariationData", fmt.Sprintf("subtable %d: word delta count %d exceeds region count %d",
				i, wordCount, regionIndexCount), at)
		}
		wide, narrow := 2, 1
		if longWords {
			wide, narrow = 4, 2
		}
		rowSize := uint64(wordCount*wide + (regionIndexCount-wordCount)*narrow)
		if !b.fits(at+ivdHeaderSize, 2*uint64(regionIndexCount)+uint64(itemCount)*rowSize) {
			return fail("ItemVariationData", fmt.Sprintf("subtable %d: deltas out of bounds", i), at)
		}
		ivd := &ItemVariationData{RegionIndices: make([]uint16, regionIndexCount)}
		for k := range ivd.RegionIndices {
			ri := r.ReadUint16()
			if int(ri) >= regionCount {
				return fail("ItemVariationData", fmt.Sprintf("subtable %d: region index %d out of range", i, ri), at)
			}
			ivd.RegionIndices[k] = ri
		}
		ivd.Deltas = make([][]int32, itemCount)
		for item := range ivd.Deltas {
			row := make([]int32, regionIndexCount)
			for k := range row {
				switch {
				case k < wordCount && longWords:
					row[k] = int32(r.ReadUint32())
				case k < wordCount || longWords:
					row[k] = int32(r.ReadInt16())
				default:
					row[k] = int32(int8(r.ReadUint8()))
				}
			}
			ivd.Deltas[item] = row
		}
		ivs.subtables[i] = ivd
	}
	if r.EOF() {
		return fail("ItemVariationStore", "read past end of table", base)
	}
	tracer().Debugf("%s: item variation store with %d axes, %d regions, %d subtables",
		tag, axisCount, regionCount, subtableCount)
	return ivs, nil
}

// --- Evaluation ------------------------------------------------------------

// CalcRegionScalar returns the scalar of region i at a location given in
// normalized coordinates.
func (ivs *ItemVariationStore) CalcRegionScalar(i int, coords []Fixed) Fixed {
	if i < 0 || i >= ivs.RegionCount() || len(coords) != ivs.axisCount {
		tracer().Errorf("region scalar: region %d / %d coordinates out of range", i, len(coords))
		return 0
	}
	return ivs.regions[i].Scalar(coords)
}

// CalcRegionScalars returns the scalars of all regions at a location given in
// normalized coordinates. If the number of coordinates does not match the
// store's axis count, all scalars will be 0, i.e. values will not vary.
func (ivs *ItemVariationStore) CalcRegionScalars(coords []Fixed) []Fixed {
	scalars := make([]Fixed, ivs.RegionCount())
	if ivs.RegionCount() == 0 {
		return scalars
	}
	if len(coords) != ivs.axisCount {
		tracer().Errorf("region scalars: instance has %d coordinates, variation store %d axes",
			len(coords), ivs.axisCount)
		return scalars
	}
	for i, region := range ivs.regions {
		scalars[i] = region.Scalar(coords)
	}
	return scalars
}

// ApplyDeltasForIndexPair sums the deltas of row vi, weighted by their
// region scalars, as obtained from CalcRegionScalars.
// Out-of-range indices are logged and yield 0. The NoVariation sentinel and
// empty scalars (no location) yield 0.
func (ivs *ItemVariationStore) ApplyDeltasForIndexPair(vi VarIndex, scalars []Fixed) Fixed {
	if vi == NoVariation || ivs == nil || len(scalars) == 0 {
		return 0
	}
	if int(vi.Outer) >= len(ivs.subtables) {
		tracer().Errorf("variation index %v: outer index out of range (%d subtables)", vi, len(ivs.subtables))
		return 0
	}
	ivd := ivs.subtables[vi.Outer]
	if int(vi.Inner) >= len(ivd.Deltas) {
		tracer().Errorf("variation index %v: inner index out of range (%d items)", vi, len(ivd.Deltas))
		return 0
	}
	if len(scalars) != len(ivs.regions) {
		tracer().Errorf("variation index %v: %d scalars for %d regions", vi, len(scalars), len(ivs.regions))
		return 0
	}
	var sum Fixed
	for k, delta := range ivd.Deltas[vi.Inner] {
		s := scalars[ivd.RegionIndices[k]]
		if s == 0 || delta == 0 {
			continue
		}
		sum = saturateFixed(int64(sum) + int64(s)*int64(delta)) // Fixed × integer is exact
	}
	return sum
}

// ApplyDeltasForGid resolves a glyph through a delta-set index map (identity
// if m is nil) and sums its weighted deltas.
func (ivs *ItemVariationStore) ApplyDeltasForGid(m *DeltaSetIndexMap, gid GlyphIndex, scalars []Fixed) Fixed {
	return ivs.ApplyDeltasForIndexPair(m.Lookup(int(gid)), scalars)
}
