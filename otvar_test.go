package otvar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/otvar/internal/fontbuild"
	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const design = `
family: Test Sans
axes:
  - {tag: wght, name: Weight, min: 100, default: 400, max: 900}
  - {tag: wdth, name: Width, min: 50, default: 100, max: 100}
masters:
  - location: {}
    advances: [500, 600]
  - location: {wght: 900}
    advances: [500, 700]
  - location: {wdth: 50}
    advances: [300, 400]
instances:
  - {name: Regular, location: {wght: 400}}
  - {name: Condensed Bold, location: {wght: 700, wdth: 50}}
`

func buildFont(t *testing.T) []byte {
	d, err := fontbuild.ParseDesign([]byte(design))
	require.NoError(t, err)
	font, err := fontbuild.Build(d)
	require.NoError(t, err)
	return font
}

func TestLoadVariableFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otvar")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "TestSans.ttf")
	require.NoError(t, os.WriteFile(path, buildFont(t), 0o644))
	f, err := LoadVariableFont(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Filepath)
	assert.Equal(t, "Test Sans Regular", f.Fontname)
	assert.Equal(t, 2, f.OTF.DesignAxes().AxisCount())
	_, err = LoadVariableFont(filepath.Join(t.TempDir(), "missing.ttf"))
	assert.Error(t, err)
	_, err = ParseVariableFont([]byte("not a font"))
	assert.Error(t, err)
}

func TestFamilyName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otvar")
	defer teardown()
	//
	otf, err := FromBinary(buildFont(t))
	require.NoError(t, err)
	family, subfamily := FamilyName(otf)
	assert.Equal(t, "Test Sans", family)
	assert.Equal(t, "Regular", subfamily)
}

func TestInstanceName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otvar")
	defer teardown()
	//
	otf, err := FromBinary(buildFont(t))
	require.NoError(t, err)
	var tests = []struct {
		location map[ot.Tag]float64
		name     string
	}{
		{nil, "Regular"},
		{map[ot.Tag]float64{ot.T("wght"): 700, ot.T("wdth"): 50}, "Condensed Bold"},
		{map[ot.Tag]float64{ot.T("wght"): 650}, "wght=650 wdth=100"},
		{map[ot.Tag]float64{ot.T("wdth"): 87.5}, "wght=400 wdth=87.5"},
	}
	for _, tt := range tests {
		inst, err := otquery.InstanceAt(otf, tt.location)
		require.NoError(t, err)
		assert.Equal(t, tt.name, InstanceName(inst))
	}
}
