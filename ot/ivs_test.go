package ot

import (
	"bytes"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTestStore creates a store over one axis with a positive and a negative
// region, and a single subtable holding two rows. The second row needs
// 32-bit deltas.
func makeTestStore() *ItemVariationStore {
	ivs := NewItemVariationStore(1)
	up := ivs.AddRegion(VariationRegion{{0, 16384, 16384}})
	down := ivs.AddRegion(VariationRegion{{-16384, -16384, 0}})
	sub := ivs.NewSubtable([]uint16{up, down})
	ivs.appendRow(sub, []int32{100, -5})
	ivs.appendRow(sub, []int32{3, 40000})
	return ivs
}

func TestIVSRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ivs := makeTestStore()
	b := ivs.Encode()
	decoded, err := DecodeItemVariationStore(b, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.AxisCount())
	assert.Equal(t, 2, decoded.RegionCount())
	require.Equal(t, 1, decoded.SubtableCount())
	ivd := decoded.Subtable(0)
	// 32-bit column is moved in front
	assert.Equal(t, []uint16{1, 0}, ivd.RegionIndices)
	assert.Equal(t, [][]int32{{-5, 100}, {40000, 3}}, ivd.Deltas)
	if !bytes.Equal(b, decoded.Encode()) {
		t.Errorf("re-encoding a decoded store must reproduce its bytes")
	}
}

func TestIVSDecodeAtOffset(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	table := append([]byte{0xde, 0xad, 0xbe, 0xef}, makeTestStore().Encode()...)
	ivs, err := DecodeItemVariationStore(table, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, ivs.RegionCount())
}

func TestIVSApplyDeltas(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ivs := makeTestStore()
	decoded, err := DecodeItemVariationStore(ivs.Encode(), 0)
	require.NoError(t, err)
	for _, store := range []*ItemVariationStore{ivs, decoded} {
		scalars := store.CalcRegionScalars([]Fixed{32768})
		assert.Equal(t, IntToFixed(50), store.ApplyDeltasForIndexPair(VarIndex{0, 0}, scalars))
		assert.Equal(t, Fixed(0x18000), store.ApplyDeltasForIndexPair(VarIndex{0, 1}, scalars)) // 1.5
		scalars = store.CalcRegionScalars([]Fixed{-FixedOne})
		assert.Equal(t, IntToFixed(-5), store.ApplyDeltasForIndexPair(VarIndex{0, 0}, scalars))
		assert.Equal(t, IntToFixed(40000), store.ApplyDeltasForIndexPair(VarIndex{0, 1}, scalars))
	}
}

func TestIVSApplyDeltasOutOfRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ivs := makeTestStore()
	scalars := ivs.CalcRegionScalars([]Fixed{FixedOne})
	assert.Equal(t, Fixed(0), ivs.ApplyDeltasForIndexPair(NoVariation, scalars))
	assert.Equal(t, Fixed(0), ivs.ApplyDeltasForIndexPair(VarIndex{5, 0}, scalars))
	assert.Equal(t, Fixed(0), ivs.ApplyDeltasForIndexPair(VarIndex{0, 9}, scalars))
	assert.Equal(t, Fixed(0), ivs.ApplyDeltasForIndexPair(VarIndex{0, 0}, scalars[:1]))
	// coordinate count mismatch: no variation at all
	assert.Equal(t, []Fixed{0, 0}, ivs.CalcRegionScalars([]Fixed{FixedOne, FixedOne}))
	assert.Equal(t, Fixed(0), ivs.CalcRegionScalar(7, []Fixed{FixedOne}))
	var empty *ItemVariationStore
	assert.Equal(t, Fixed(0), empty.ApplyDeltasForIndexPair(VarIndex{0, 0}, nil))
	assert.True(t, empty.IsEmpty())
}

func TestIVSDecodeMalformed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	good := makeTestStore().Encode()
	badFormat := bytes.Clone(good)
	badFormat[1] = 2
	badRegion := bytes.Clone(good)
	// region index of the first column of subtable 0 (header 6 bytes)
	subOffset := u32(good[8:12])
	badRegion[subOffset+6+1] = 9
	tooManyAxes := bytes.Clone(good)
	regionList := u32(good[2:6])
	tooManyAxes[regionList+1] = MaxAxes + 1
	var tests = []struct {
		name string
		data []byte
	}{
		{"truncated", good[:len(good)-1]},
		{"header only", good[:6]},
		{"format", badFormat},
		{"region index", badRegion},
		{"axis count", tooManyAxes},
	}
	for _, tt := range tests {
		ivs, err := DecodeItemVariationStore(tt.data, 0)
		if err == nil {
			t.Errorf("%s: expected decoding to fail", tt.name)
		}
		if !ivs.IsEmpty() || ivs.AxisCount() != 0 {
			t.Errorf("%s: expected an empty store", tt.name)
		}
		if _, ok := err.(FontError); !ok {
			t.Errorf("%s: expected a FontError, have %T", tt.name, err)
		}
	}
}

func TestIVSRegionDeduplication(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ivs := NewItemVariationStore(2)
	a := ivs.AddRegion(VariationRegion{{0, 16384, 16384}, {0, 0, 0}})
	b := ivs.AddRegion(VariationRegion{{0, 0, 0}, {0, 16384, 16384}})
	c := ivs.AddRegion(VariationRegion{{0, 16384, 16384}, {0, 0, 0}})
	assert.Equal(t, a, c)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, ivs.RegionCount())
	// decoded stores de-duplicate against their existing regions
	decoded, err := DecodeItemVariationStore(ivs.Encode(), 0)
	require.NoError(t, err)
	assert.Equal(t, b, decoded.AddRegion(VariationRegion{{0, 0, 0}, {0, 16384, 16384}}))
	assert.Panics(t, func() { ivs.AddRegion(VariationRegion{{0, 16384, 16384}}) })
}

func TestIVSNoVariationIndex(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ivs := makeTestStore()
	vi := ivs.NoVariationIndex()
	assert.Equal(t, VarIndex{1, 0}, vi)
	assert.Equal(t, vi, ivs.NoVariationIndex())
	decoded, err := DecodeItemVariationStore(ivs.Encode(), 0)
	require.NoError(t, err)
	scalars := decoded.CalcRegionScalars([]Fixed{FixedOne})
	assert.Equal(t, Fixed(0), decoded.ApplyDeltasForIndexPair(vi, scalars))
}
