package main

import (
	"strings"
	"testing"

	"github.com/npillmayer/otvar/internal/fontbuild"
	"github.com/npillmayer/otvar/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGlyphRange(t *testing.T) {
	var tests = []struct {
		spec     string
		expected []ot.GlyphIndex
	}{
		{"0-3", []ot.GlyphIndex{0, 1, 2, 3}},
		{"3,5, 8", []ot.GlyphIndex{3, 5, 8}},
		{"7", []ot.GlyphIndex{7}},
		{"1-2,9", []ot.GlyphIndex{1, 2, 9}},
	}
	for _, tt := range tests {
		gids, err := parseGlyphRange(tt.spec)
		require.NoError(t, err, tt.spec)
		assert.Equal(t, tt.expected, gids, tt.spec)
	}
	for _, bad := range []string{"5-3", "x", "70000", "-1"} {
		_, err := parseGlyphRange(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseLocation(t *testing.T) {
	loc, err := parseLocation("wght=700, wdth=87.5")
	require.NoError(t, err)
	assert.Equal(t, map[ot.Tag]float64{ot.T("wght"): 700, ot.T("wdth"): 87.5}, loc)
	loc, err = parseLocation("-")
	require.NoError(t, err)
	assert.Empty(t, loc)
	_, err = parseLocation("wght:700")
	assert.Error(t, err)
}

func TestDescribeDesignSpace(t *testing.T) {
	d, err := fontbuild.ParseDesign([]byte(`
family: Test Sans
axes:
  - {tag: wght, name: Weight, min: 100, default: 400, max: 900}
masters:
  - {location: {}, advances: [500, 600]}
  - {location: {wght: 900}, advances: [500, 700]}
instances:
  - {name: Bold, postscriptName: TestSans-Bold, location: {wght: 700}}
`))
	require.NoError(t, err)
	font, err := fontbuild.Build(d)
	require.NoError(t, err)
	otf, err := ot.Parse(font)
	require.NoError(t, err)
	report := describeDesignSpace("test.ttf", otf)
	lines := strings.Split(strings.TrimSpace(report), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "test.ttf (Test Sans)", lines[0])
	assert.Contains(t, lines[1], "axis wght")
	assert.Contains(t, lines[1], "min=100 default=400 max=900")
	assert.Equal(t, `  instance 0 "Bold" [TestSans-Bold] at wght=700`, lines[2])
}
