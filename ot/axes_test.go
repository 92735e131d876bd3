package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// wght 100…400…900 with an avar map sending 0.5 to 0.8;
// wdth 75…100…100 without a segment map.
func makeTestAxes() (fvar, avar []byte) {
	axes := []VariationAxis{
		{Tag: T("wght"), Min: IntToFixed(100), Default: IntToFixed(400), Max: IntToFixed(900), NameID: 256},
		{Tag: T("wdth"), Min: IntToFixed(75), Default: IntToFixed(100), Max: IntToFixed(100), NameID: 257},
	}
	instances := []NamedInstance{
		{SubfamilyNameID: 258, Coords: []Fixed{IntToFixed(400), IntToFixed(100)}},
		{SubfamilyNameID: 259, Coords: []Fixed{IntToFixed(700), IntToFixed(100)}, PostScriptNameID: Some[uint16](260)},
	}
	fvar = EncodeFvar(axes, instances)
	avar = EncodeAvar([]Option[SegmentMap]{
		Some(SegmentMap{{-16384, -16384}, {0, 0}, {8192, 13107}, {16384, 16384}}),
		None[SegmentMap](),
	})
	return
}

func TestLoadDesignAxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fvar, avar := makeTestAxes()
	da, err := LoadDesignAxes(fvar, avar)
	if err != nil {
		t.Fatal(err)
	}
	if da.AxisCount() != 2 || da.AxisIndex(T("wdth")) != 1 || da.AxisIndex(T("ital")) != -1 {
		t.Errorf("unexpected axes")
	}
	if a, _ := da.Axis(0); a.Max != IntToFixed(900) || a.NameID != 256 {
		t.Errorf("unexpected axis record %+v", a)
	}
	if _, err := da.Axis(2); !errors.Is(err, ErrAxisIndex) {
		t.Errorf("expected ErrAxisIndex, have %v", err)
	}
	if len(da.Instances()) != 2 {
		t.Fatalf("expected 2 named instances, have %d", len(da.Instances()))
	}
	if id, ok := da.Instances()[1].PostScriptNameID.Unwrap(); !ok || id != 260 {
		t.Errorf("expected PostScript name ID 260")
	}
	if da.Instances()[0].PostScriptNameID.IsSome() {
		t.Errorf("expected instance without PostScript name ID")
	}
	if da.SegmentMap(0).IsNone() || da.SegmentMap(1).IsSome() {
		t.Errorf("expected segment map for wght only")
	}
}

func TestNormalizeCoords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fvar, avar := makeTestAxes()
	da, _ := LoadDesignAxes(fvar, avar)
	var tests = []struct {
		axis     int
		user     Fixed
		expected Fixed
	}{
		{0, IntToFixed(400), 0},
		{0, IntToFixed(100), -FixedOne},
		{0, IntToFixed(900), FixedOne},
		{0, IntToFixed(50), -FixedOne},  // clamped
		{0, IntToFixed(1000), FixedOne}, // clamped
		{0, IntToFixed(650), 52428},     // 0.5 → 0.8 by avar
		{0, IntToFixed(250), -32768},    // identity part of the map
		{1, FixedFromFloat(87.5), -32768},
		{1, IntToFixed(100), 0},
		{7, IntToFixed(100), 0}, // no such axis
	}
	for _, tt := range tests {
		if n := da.NormalizeCoord(tt.axis, tt.user); n != tt.expected {
			t.Errorf("axis %d, user %v: expected %d, have %d", tt.axis, tt.user, tt.expected, n)
		}
	}
	norm, err := da.NormalizeCoords(da.DefaultCoords())
	if err != nil || norm[0] != 0 || norm[1] != 0 {
		t.Errorf("expected default coordinates to normalize to 0, have %v", norm)
	}
	if _, err := da.NormalizeCoords([]Fixed{0}); !errors.Is(err, ErrAxisCount) {
		t.Errorf("expected ErrAxisCount, have %v", err)
	}
}

func TestNormalizeMonotonic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fvar, avar := makeTestAxes()
	da, _ := LoadDesignAxes(fvar, avar)
	prev := FixedMin
	for w := int32(50); w <= 950; w += 5 {
		n := da.NormalizeCoord(0, IntToFixed(w))
		if n < prev {
			t.Fatalf("normalization not monotonic at %d: %v < %v", w, n, prev)
		}
		if n < -FixedOne || n > FixedOne {
			t.Fatalf("normalized coordinate out of range at %d: %v", w, n)
		}
		prev = n
	}
}

func TestNormalizeWideAxis(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fvar := EncodeFvar([]VariationAxis{
		{Tag: T("wide"), Min: IntToFixed(-30000), Default: IntToFixed(20000), Max: IntToFixed(30000)},
		{Tag: T("span"), Min: IntToFixed(-32768), Default: 0, Max: IntToFixed(32767)},
	}, nil)
	da, err := LoadDesignAxes(fvar, nil)
	if err != nil {
		t.Fatal(err)
	}
	var tests = []struct {
		axis     int
		user     Fixed
		expected Fixed
	}{
		{0, IntToFixed(-5000), -32768},
		{0, IntToFixed(-30000), -FixedOne},
		{0, IntToFixed(20000), 0},
		{0, IntToFixed(25000), 32768},
		{0, IntToFixed(30000), FixedOne},
		{1, IntToFixed(-16384), -32768},
		{1, IntToFixed(-32768), -FixedOne},
		{1, IntToFixed(32767), FixedOne},
	}
	for _, tt := range tests {
		if n := da.NormalizeCoord(tt.axis, tt.user); n != tt.expected {
			t.Errorf("axis %d, user %v: expected %d, have %d", tt.axis, tt.user, tt.expected, n)
		}
	}
	for axis := 0; axis < 2; axis++ {
		prev := FixedMin
		for u := int32(-32768); u <= 32767; u += 97 {
			n := da.NormalizeCoord(axis, IntToFixed(u))
			if n < prev {
				t.Fatalf("axis %d: normalization not monotonic at %d: %v < %v", axis, u, n, prev)
			}
			if n < -FixedOne || n > FixedOne {
				t.Fatalf("axis %d: normalized coordinate out of range at %d: %v", axis, u, n)
			}
			prev = n
		}
	}
}

func TestAvarDiscardsMalformedMap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	avar := EncodeAvar([]Option[SegmentMap]{
		Some(SegmentMap{{-8192, -16384}, {0, 0}, {16384, 16384}}), // does not start at -1
		Some(SegmentMap{{-16384, -16384}, {0, 0}, {16384, 16384}}),
	})
	ec := &errorCollector{}
	table := parseAvar(T("avar"), avar, 0, uint32(len(avar)), ec)
	if table == nil {
		t.Fatal("expected avar table to survive a malformed segment map")
	}
	maps := table.Self().AsAvar().SegmentMaps
	if maps[0].IsSome() || maps[1].IsNone() {
		t.Errorf("expected first map to be discarded, second to be kept")
	}
	if len(ec.errors) != 1 || ec.errors[0].Severity != SeverityMinor {
		t.Errorf("expected 1 minor error, have %v", ec.errors)
	}
}

func TestAvarAxisCountMismatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fvar, _ := makeTestAxes()
	avar := EncodeAvar([]Option[SegmentMap]{
		Some(SegmentMap{{-16384, -16384}, {0, 0}, {8192, 16000}, {16384, 16384}}),
	})
	da, err := LoadDesignAxes(fvar, avar)
	if err != nil {
		t.Fatal(err)
	}
	if n := da.NormalizeCoord(0, IntToFixed(650)); n != 32768 {
		t.Errorf("expected avar to be ignored, have %v", n)
	}
}

func TestFvarMalformed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fvar, _ := makeTestAxes()
	if _, err := LoadDesignAxes(fvar[:30], nil); !errors.Is(err, ErrNoVariationData) {
		t.Errorf("expected truncated fvar to fail with ErrNoVariationData, have %v", err)
	}
	broken := append([]byte{}, fvar...)
	broken[9] = 0 // axis count
	if _, err := LoadDesignAxes(broken, nil); !errors.Is(err, ErrNoVariationData) {
		t.Errorf("expected fvar without axes to fail, have %v", err)
	}
	broken = append([]byte{}, fvar...)
	broken[16+4] = 0x10 // min of first axis > default
	if _, err := LoadDesignAxes(broken, nil); err == nil {
		t.Errorf("expected non-monotonic axis to fail")
	}
}

func TestFindInstance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	fvar, avar := makeTestAxes()
	da, _ := LoadDesignAxes(fvar, avar)
	inst, err := da.FindInstance([]Fixed{IntToFixed(700), IntToFixed(100)})
	if err != nil || inst.SubfamilyNameID != 259 {
		t.Errorf("expected to find instance 259, have %v / %v", inst, err)
	}
	if _, err = da.FindInstance([]Fixed{IntToFixed(500), IntToFixed(100)}); !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("expected ErrInstanceNotFound, have %v", err)
	}
}
