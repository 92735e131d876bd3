package fontbuild

import (
	"errors"
	"testing"

	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
)

const testDesign = `
family: Test Sans
unitsPerEm: 1000
axes:
  - tag: wght
    name: Weight
    min: 100
    default: 400
    max: 900
masters:
  - name: Regular
    location: {wght: 400}
    advances: [500, 600, 700]
    metrics: {hasc: 800, hdsc: -200, xhgt: 500, cpht: 700}
  - name: Black
    location: {wght: 900}
    advances: [500, 540, 760]
    metrics: {xhgt: 540}
  - name: Thin
    location: {wght: 100}
    advances: [500, 560, 640]
instances:
  - name: Regular
    location: {wght: 400}
  - name: Bold
    postscriptName: TestSans-Bold
    location: {wght: 700}
`

// --- Test Suite Preparation ------------------------------------------------

type BuildTestEnviron struct {
	suite.Suite
	design *Design
	otf    *ot.Font
}

// listen for 'go test' command --> run test methods
func TestBuildFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.fontbuild")
	defer teardown()
	suite.Run(t, new(BuildTestEnviron))
}

// run once, before test suite methods
func (env *BuildTestEnviron) SetupSuite() {
	tracing.Select("font.opentype").SetTraceLevel(tracing.LevelError)
	d, err := ParseDesign([]byte(testDesign))
	env.Require().NoError(err)
	env.design = d
	font, err := Build(d)
	env.Require().NoError(err)
	env.otf, err = ot.Parse(font)
	env.Require().NoError(err)
}

// --- Tests -----------------------------------------------------------------

func (env *BuildTestEnviron) TestTables() {
	env.Empty(env.otf.Errors(), "expected built font to parse without errors")
	env.Empty(env.otf.Warnings(), "expected built font to contain all required tables")
	env.Equal(3, env.otf.NumGlyphs())
	env.Equal(uint16(1000), env.otf.UnitsPerEm())
	env.Require().NotNil(env.otf.HHea)
	env.Equal(int16(800), env.otf.HHea.Ascender)
	env.Equal(int16(-200), env.otf.HHea.Descender)
	env.Equal(uint16(700), env.otf.HHea.AdvanceMax)
	adv, _, ok := env.otf.HMtx.Metrics(2)
	env.True(ok)
	env.Equal(uint16(700), adv)
	xh, ok := env.otf.OS2.XHeight.Unwrap()
	env.True(ok)
	env.Equal(int16(500), xh)
	env.Equal(int16(-200), env.otf.OS2.TypoDescender)
	env.Equal(uint16(200), env.otf.OS2.WinDescent)
	env.Nil(env.otf.Table(ot.T("avar")), "expected no avar for axes without mappings")
}

func (env *BuildTestEnviron) TestAxes() {
	da := env.otf.DesignAxes()
	env.Require().NotNil(da)
	env.Equal(1, da.AxisCount())
	a, err := da.Axis(0)
	env.Require().NoError(err)
	env.Equal(ot.T("wght"), a.Tag)
	env.Equal(ot.IntToFixed(900), a.Max)
	env.Equal(uint16(256), a.NameID)
	instances := da.Instances()
	env.Require().Len(instances, 2)
	env.Equal(ot.IntToFixed(700), instances[1].Coords[0])
	env.True(instances[1].PostScriptNameID.IsSome())
	env.False(instances[0].PostScriptNameID.IsSome())
}

func (env *BuildTestEnviron) TestAdvanceVariations() {
	hvar := env.otf.HVar()
	env.Require().NotNil(hvar)
	da := env.otf.DesignAxes()
	var tests = []struct {
		wght     int32
		expected [3]int32
	}{
		{400, [3]int32{0, 0, 0}},
		{900, [3]int32{0, -60, 60}},
		{100, [3]int32{0, -40, -60}},
		{650, [3]int32{0, -30, 30}},
	}
	for _, tt := range tests {
		coords, err := da.NormalizeCoords([]ot.Fixed{ot.IntToFixed(tt.wght)})
		env.Require().NoError(err)
		scalars := hvar.Store.CalcRegionScalars(coords)
		for gid, d := range tt.expected {
			env.Equal(ot.IntToFixed(d), hvar.AdvanceDelta(ot.GlyphIndex(gid), scalars),
				"glyph %d at wght=%d", gid, tt.wght)
		}
	}
	_, ok := hvar.StartBearingDelta(1, nil)
	env.False(ok, "expected no bearing variations")
}

func (env *BuildTestEnviron) TestMetricsVariations() {
	mvar := env.otf.MVar()
	env.Require().NotNil(mvar)
	env.Require().Len(mvar.Records(), 1)
	env.Equal(ot.T("xhgt"), mvar.Records()[0].Tag)
	da := env.otf.DesignAxes()
	for wght, expected := range map[int32]int32{900: 40, 650: 20, 100: 0} {
		coords, _ := da.NormalizeCoords([]ot.Fixed{ot.IntToFixed(wght)})
		d, ok := mvar.Delta(ot.T("xhgt"), mvar.Store.CalcRegionScalars(coords))
		env.True(ok)
		env.Equal(ot.IntToFixed(expected), d, "x-height at wght=%d", wght)
	}
}

func (env *BuildTestEnviron) TestAxisMapping() {
	d, err := ParseDesign([]byte(testDesign))
	env.Require().NoError(err)
	d.Axes[0].Map = []AxisMapping{{From: 0.5, To: 0.8}}
	font, err := Build(d)
	env.Require().NoError(err)
	otf, err := ot.Parse(font)
	env.Require().NoError(err)
	env.NotNil(otf.Table(ot.T("avar")))
	da := otf.DesignAxes()
	env.True(da.SegmentMap(0).IsSome())
	coords, _ := da.NormalizeCoords([]ot.Fixed{ot.IntToFixed(650)})
	env.Equal(ot.F2Dot14(13107).Fixed(), coords[0])
	// masters are located after mapping: Black is still at 1.0
	scalars := otf.HVar().Store.CalcRegionScalars([]ot.Fixed{ot.FixedOne})
	env.Equal(ot.IntToFixed(60), otf.HVar().AdvanceDelta(2, scalars))
}

func (env *BuildTestEnviron) TestInvalidDesigns() {
	var tests = []struct {
		name   string
		modify func(d *Design)
	}{
		{"no default master", func(d *Design) { d.Masters[0].Location["wght"] = 500 }},
		{"unknown axis", func(d *Design) { d.Masters[1].Location["wdth"] = 100 }},
		{"advance count", func(d *Design) { d.Masters[1].Advances = d.Masters[1].Advances[:2] }},
		{"axis range", func(d *Design) { d.Axes[0].Min = 500 }},
		{"location outside range", func(d *Design) { d.Instances[1].Location["wght"] = 1000 }},
		{"duplicate location", func(d *Design) { d.Masters[2].Location["wght"] = 900 }},
		{"unsupported metric", func(d *Design) { d.Masters[1].Metrics["gsp0"] = 8 }},
		{"not monotonic", func(d *Design) {
			d.Axes[0].Map = []AxisMapping{{From: 0.25, To: 0.8}, {From: 0.5, To: 0.6}}
		}},
		{"tag", func(d *Design) { d.Axes[0].Tag = "weight" }},
	}
	for _, tt := range tests {
		d, err := ParseDesign([]byte(testDesign))
		env.Require().NoError(err)
		tt.modify(d)
		_, err = Build(d)
		env.True(errors.Is(err, ErrInvalidDesign), "%s: expected ErrInvalidDesign, have %v", tt.name, err)
	}
	_, err := ParseDesign([]byte("axes: [wght"))
	env.True(errors.Is(err, ErrInvalidDesign), "expected YAML syntax error to be reported as invalid design")
}

func (env *BuildTestEnviron) TestNameTable() {
	nt := newNameTable()
	env.Equal(uint16(256), nt.addNew("Weight", "wght"))
	env.Equal(uint16(257), nt.addNew("", "wdth"))
	env.Equal(uint16(256), nt.addNew("Weight", ""))
	env.Equal(uint16(0), nt.addNew("", ""))
	nt.add(1, "Family")
	b := nt.encode()
	env.Equal([]byte{0, 0, 0, 3, 0, 6 + 36}, b[:6])
	// records sorted by name ID: 1, 256, 257
	env.Equal([]byte{0, 3, 0, 1, 4, 9, 0, 1, 0, 12, 0, 0}, b[6:18])
	env.Equal([]byte{0, 'F', 0, 'a'}, b[42:46])
	env.Equal("TestSans-Regular", psName("Test Sans", "Regular"))
}
