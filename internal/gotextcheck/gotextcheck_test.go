package gotextcheck

import (
	"testing"

	"github.com/npillmayer/otvar/internal/fontbuild"
	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const design = `
family: Check Sans
axes:
  - {tag: wght, name: Weight, min: 100, default: 400, max: 900}
  - {tag: wdth, name: Width, min: 75, default: 100, max: 100, map: [{from: -0.5, to: -0.7}]}
masters:
  - location: {}
    advances: [500, 600, 700, 250]
  - location: {wght: 900}
    advances: [500, 640, 780, 250]
  - location: {wght: 100}
    advances: [480, 570, 660, 250]
  - location: {wdth: 75}
    advances: [400, 500, 560, 200]
  - location: {wght: 900, wdth: 75}
    advances: [420, 560, 650, 210]
`

func TestCompareAdvances(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.gotextcheck")
	defer teardown()
	//
	d, err := fontbuild.ParseDesign([]byte(design))
	require.NoError(t, err)
	font, err := fontbuild.Build(d)
	require.NoError(t, err)
	font, err = AddCmap(font)
	require.NoError(t, err)
	otf, err := ot.Parse(font)
	require.NoError(t, err)
	require.NotNil(t, otf.Table(ot.T("cmap")))
	again, err := AddCmap(font)
	require.NoError(t, err)
	assert.Equal(t, font, again, "expected font with cmap to be returned unchanged")
	//
	gids := []ot.GlyphIndex{0, 1, 2, 3}
	locations := []map[ot.Tag]float64{
		nil,
		{ot.T("wght"): 900},
		{ot.T("wght"): 250},
		{ot.T("wdth"): 87.5},
		{ot.T("wght"): 900, ot.T("wdth"): 75},
		{ot.T("wght"): 600, ot.T("wdth"): 80},
	}
	for _, loc := range locations {
		inst, err := otquery.InstanceAt(otf, loc)
		require.NoError(t, err)
		mismatches, err := Compare(font, inst, gids)
		require.NoError(t, err)
		assert.Empty(t, mismatches, "at %v", loc)
	}
}

func TestCompareWithoutCmap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.gotextcheck")
	defer teardown()
	//
	_, err := AddCmap([]byte("no font"))
	assert.Error(t, err)
}
