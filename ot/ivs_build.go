package ot

import (
	"fmt"
	"math"
	"slices"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/tdewolff/parse/v2"
)

// NewItemVariationStore creates an empty item variation store, to be filled
// with AddValue.
func NewItemVariationStore(axisCount int) *ItemVariationStore {
	if axisCount <= 0 || axisCount > MaxAxes {
		panic(fmt.Sprintf("item variation store with %d axes", axisCount))
	}
	return &ItemVariationStore{
		axisCount:   axisCount,
		regionIndex: make(map[string]uint16),
		models:      treemap.NewWith(compareLocationIDs),
	}
}

func compareLocationIDs(a, b interface{}) int {
	return slices.Compare(a.([]uint32), b.([]uint32))
}

// AddValue adds the variation data of a value record and returns the index of
// its deltas. Records with the same set of override locations share a variation
// model and thus a subtable. A record without overrides returns NoVariation;
// its default value stands for itself.
func (ivs *ItemVariationStore) AddValue(vlm *VarLocationMap, rec *VarValueRecord) VarIndex {
	if !rec.IsVariable() {
		return NoVariation
	}
	ids := rec.LocationIDs()
	if ivs.models == nil {
		ivs.models = treemap.NewWith(compareLocationIDs)
	}
	var vm *VariationModel
	if m, found := ivs.models.Get(ids); found {
		vm = m.(*VariationModel)
	} else {
		vm = NewVariationModel(ivs, vlm, ids)
		ivs.models.Put(ids, vm)
	}
	inner := vm.AddValue(rec)
	return VarIndex{Outer: vm.Subtable(), Inner: inner}
}

// NoVariationIndex returns the index of a row without deltas. Tables which
// need a valid index for every item (e.g., delta-set index maps) point
// non-variable items to it. The row lives in a subtable without regions, which
// is created on first use.
func (ivs *ItemVariationStore) NoVariationIndex() VarIndex {
	if vi, ok := ivs.noVariation.Unwrap(); ok {
		return vi
	}
	outer := ivs.NewSubtable(nil)
	inner := ivs.appendRow(outer, nil)
	vi := VarIndex{Outer: outer, Inner: inner}
	ivs.noVariation = Some(vi)
	return vi
}

// AddRegion returns the index of a region, adding it if the store does not
// contain an identical region.
func (ivs *ItemVariationStore) AddRegion(region VariationRegion) uint16 {
	assertEqualInt("region axis count", len(region), ivs.axisCount)
	if ivs.regionIndex == nil {
		ivs.regionIndex = make(map[string]uint16, len(ivs.regions))
		for i, r := range ivs.regions {
			ivs.regionIndex[r.key()] = uint16(i)
		}
	}
	key := region.key()
	if i, ok := ivs.regionIndex[key]; ok {
		return i
	}
	if len(ivs.regions) >= MaxRegions {
		panic(fmt.Sprintf("item variation store exceeds %d regions", MaxRegions))
	}
	i := uint16(len(ivs.regions))
	ivs.regions = append(ivs.regions, slices.Clone(region))
	ivs.regionIndex[key] = i
	return i
}

// NewSubtable appends an empty subtable referencing the given regions and
// returns its outer index.
func (ivs *ItemVariationStore) NewSubtable(regionIndices []uint16) uint16 {
	if len(ivs.subtables) >= MaxVarSubtables {
		panic(fmt.Sprintf("item variation store exceeds %d subtables", MaxVarSubtables))
	}
	for _, ri := range regionIndices {
		if int(ri) >= len(ivs.regions) {
			panic(fmt.Sprintf("subtable references unknown region %d", ri))
		}
	}
	ivs.subtables = append(ivs.subtables, &ItemVariationData{
		RegionIndices: slices.Clone(regionIndices),
	})
	return uint16(len(ivs.subtables) - 1)
}

// appendRow appends a row of deltas to a subtable and returns its inner index.
func (ivs *ItemVariationStore) appendRow(outer uint16, deltas []int32) uint16 {
	ivd := ivs.subtables[outer]
	assertEqualInt("delta row width", len(deltas), len(ivd.RegionIndices))
	if len(ivd.Deltas) >= math.MaxUint16 {
		panic(fmt.Sprintf("subtable %d exceeds %d items", outer, math.MaxUint16))
	}
	ivd.Deltas = append(ivd.Deltas, slices.Clone(deltas))
	return uint16(len(ivd.Deltas) - 1)
}

// --- Encoding --------------------------------------------------------------

// Encode produces the binary form of the item variation store. Offsets are
// relative to the start of the store.
//
// Within each subtable, columns whose deltas need 16 bits (32 bits, if any
// delta does not fit into 16 bits) are moved in front of the narrow columns,
// keeping their relative order. Decoding and re-encoding therefore reproduces
// the same bytes.
func (ivs *ItemVariationStore) Encode() []byte {
	w := newStreamWriter()
	n := len(ivs.subtables)
	w.WriteUint16(1) // format
	regionListOffset := uint32(ivsHeaderSize + 4*n)
	w.WriteUint32(regionListOffset)
	w.WriteUint16(uint16(n))
	w.WriteBytes(make([]byte, 4*n)) // subtable offsets, patched below
	w.WriteUint16(uint16(ivs.axisCount))
	w.WriteUint16(uint16(len(ivs.regions)))
	for _, region := range ivs.regions {
		for _, ar := range region {
			writeF2Dot14(w, ar.Start)
			writeF2Dot14(w, ar.Peak)
			writeF2Dot14(w, ar.End)
		}
	}
	offsets := make([]uint32, n)
	for i, ivd := range ivs.subtables {
		offsets[i] = w.Len()
		ivd.encode(w)
	}
	b := w.Bytes()
	for i, off := range offsets {
		patchOffset32(b, uint32(ivsHeaderSize+4*i), off)
	}
	return b
}

func deltaSize(d int32) int {
	switch {
	case d >= math.MinInt8 && d <= math.MaxInt8:
		return 1
	case d >= math.MinInt16 && d <= math.MaxInt16:
		return 2
	}
	return 4
}

func (ivd *ItemVariationData) encode(w *parse.BinaryWriter) {
	cols := len(ivd.RegionIndices)
	need := make([]int, cols)
	longWords := false
	for _, row := range ivd.Deltas {
		for k, d := range row {
			need[k] = max(need[k], deltaSize(d))
			longWords = longWords || need[k] == 4
		}
	}
	wideSize := 2
	if longWords {
		wideSize = 4
	}
	// stable partition: wide columns first
	order := make([]int, 0, cols)
	for k := range cols {
		if need[k] == wideSize {
			order = append(order, k)
		}
	}
	wordCount := len(order)
	for k := range cols {
		if need[k] != wideSize {
			order = append(order, k)
		}
	}
	wordDeltaCount := uint16(wordCount)
	if longWords {
		wordDeltaCount |= longWordsFlag
	}
	w.WriteUint16(uint16(len(ivd.Deltas)))
	w.WriteUint16(wordDeltaCount)
	w.WriteUint16(uint16(cols))
	for _, k := range order {
		w.WriteUint16(ivd.RegionIndices[k])
	}
	for _, row := range ivd.Deltas {
		for pos, k := range order {
			d := row[k]
			switch {
			case pos < wordCount && longWords:
				w.WriteUint32(uint32(d))
			case pos < wordCount || longWords:
				w.WriteInt16(int16(d))
			default:
				w.WriteUint8(uint8(int8(d)))
			}
		}
	}
}
