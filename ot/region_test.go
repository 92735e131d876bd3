package ot

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestAxisRegionTent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	ar := AxisRegion{Start: -16384, Peak: 8192, End: 16384}
	var tests = []struct {
		coord, expected Fixed
	}{
		{49152, 32768},  // 0.75 → (1-0.75)/(1-0.5)
		{-32768, 21845}, // -0.5 → 0.5/1.5
		{32768, FixedOne},
		{-FixedOne, 0},
		{FixedOne, 0},
		{-FixedOne - 1, 0},
	}
	for _, tt := range tests {
		if s := ar.Tent(tt.coord); s != tt.expected {
			t.Errorf("tent %v at %v: expected %d, have %d", ar, tt.coord, tt.expected, s)
		}
	}
}

func TestAxisRegionScalarRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	var tests = []struct {
		name     string
		ar       AxisRegion
		coord    Fixed
		expected Fixed
	}{
		{"inactive axis", AxisRegion{0, 0, 0}, 49152, FixedOne},
		{"zero peak, wide span", AxisRegion{-16384, 0, 16384}, -FixedOne, FixedOne},
		{"ill-formed", AxisRegion{8192, 4096, 16384}, 0, FixedOne},
		{"spanning zero", AxisRegion{-16384, 8192, 16384}, -32768, FixedOne},
		{"positive tent", AxisRegion{0, 16384, 16384}, 32768, 32768},
		{"outside positive tent", AxisRegion{0, 16384, 16384}, -32768, 0},
		{"negative tent", AxisRegion{-16384, -16384, 0}, -16384, 16384},
	}
	for _, tt := range tests {
		if s := tt.ar.Scalar(tt.coord); s != tt.expected {
			t.Errorf("%s: expected scalar %d, have %d", tt.name, tt.expected, s)
		}
	}
}

func TestVariationRegionScalar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	r := VariationRegion{{0, 16384, 16384}, {0, 16384, 16384}}
	if s := r.Scalar([]Fixed{32768, 32768}); s != 16384 {
		t.Errorf("expected product of axis scalars to be 0.25, is %v", s)
	}
	if s := r.Scalar([]Fixed{32768, -32768}); s != 0 {
		t.Errorf("expected scalar 0 outside of region, is %v", s)
	}
	q := VariationRegion{{0, 16384, 16384}, {0, 0, 0}}
	if s := q.Scalar([]Fixed{FixedOne, -FixedOne}); s != FixedOne {
		t.Errorf("expected inactive second axis to be ignored, scalar is %v", s)
	}
	if !r.Equal(VariationRegion{{0, 16384, 16384}, {0, 16384, 16384}}) || r.Equal(q) {
		t.Errorf("region equality broken")
	}
	if r.key() == q.key() {
		t.Errorf("different regions must have different keys")
	}
}
