package otquery

import (
	"errors"
	"testing"

	"github.com/npillmayer/otvar/internal/fontbuild"
	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// --- Test Suite Preparation ------------------------------------------------

type QueryTestEnviron struct {
	suite.Suite
	otf *ot.Font
}

// listen for 'go test' command --> run test methods
func TestQueryFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.otquery")
	defer teardown()
	suite.Run(t, new(QueryTestEnviron))
}

// run once, before test suite methods
func (env *QueryTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	tracing.Select("font.opentype").SetTraceLevel(tracing.LevelError)
	env.otf = buildTestFont(env.T(), false)
}

// --- Tests -----------------------------------------------------------------

func (env *QueryTestEnviron) TestAxes() {
	axes := Axes(env.otf)
	env.Require().Len(axes, 1)
	env.Equal(ot.T("wght"), axes[0].Tag)
	env.Equal("Weight", axes[0].Name)
	env.Equal(100.0, axes[0].Min)
	env.Equal(400.0, axes[0].Default)
	env.Equal(900.0, axes[0].Max)
	env.False(axes[0].Hidden)
	family, ok := NameByID(env.otf, 1)
	env.True(ok)
	env.Equal("Test Sans", family)
}

func (env *QueryTestEnviron) TestNamedInstances() {
	instances := Instances(env.otf)
	env.Require().Len(instances, 2)
	env.Equal("Regular", instances[0].Subfamily)
	env.Empty(instances[0].PostScriptName)
	env.Equal("Bold", instances[1].Subfamily)
	env.Equal("TestSans-Bold", instances[1].PostScriptName)
	env.Equal(700.0, instances[1].Coords[ot.T("wght")])
	inst, err := NamedInstance(env.otf, 1)
	env.Require().NoError(err)
	env.Equal([]ot.Fixed{ot.IntToFixed(700)}, inst.UserCoords())
	info, err := FindInstance(inst)
	env.Require().NoError(err)
	env.Equal(1, info.Index)
	_, err = NamedInstance(env.otf, 2)
	env.Error(err)
	inst, _ = InstanceAt(env.otf, map[ot.Tag]float64{ot.T("wght"): 500})
	_, err = FindInstance(inst)
	env.True(errors.Is(err, ot.ErrInstanceNotFound))
}

func (env *QueryTestEnviron) TestInstanceAt() {
	inst, err := InstanceAt(env.otf, nil)
	env.Require().NoError(err)
	env.True(inst.IsDefault())
	inst, err = InstanceAt(env.otf, map[ot.Tag]float64{ot.T("wght"): 650})
	env.Require().NoError(err)
	env.Equal([]ot.Fixed{32768}, inst.NormalizedCoords())
	env.False(inst.IsDefault())
	inst, err = InstanceAt(env.otf, map[ot.Tag]float64{ot.T("wght"): 2000})
	env.Require().NoError(err)
	env.Equal([]ot.Fixed{ot.FixedOne}, inst.NormalizedCoords(), "expected coordinate to be clamped")
	_, err = InstanceAt(env.otf, map[ot.Tag]float64{ot.T("wdth"): 100})
	env.True(errors.Is(err, ErrUnknownAxis))
	env.True(DefaultInstance(env.otf).IsDefault())
}

func (env *QueryTestEnviron) TestScalarCache() {
	inst, _ := InstanceAt(env.otf, map[ot.Tag]float64{ot.T("wght"): 900})
	store := env.otf.HVar().Store
	a, b := inst.Scalars(store), inst.Scalars(store)
	env.Require().NotEmpty(a)
	env.Same(&a[0], &b[0], "expected scalars to be computed once")
	env.Nil(inst.Scalars(nil))
}

func (env *QueryTestEnviron) TestGlyphMetrics() {
	var tests = []struct {
		wght     float64
		expected [3]int32
	}{
		{400, [3]int32{500, 600, 700}},
		{900, [3]int32{500, 540, 760}},
		{100, [3]int32{500, 560, 640}},
		{650, [3]int32{500, 570, 730}},
	}
	for _, tt := range tests {
		inst, err := InstanceAt(env.otf, map[ot.Tag]float64{ot.T("wght"): tt.wght})
		env.Require().NoError(err)
		for gid, adv := range tt.expected {
			m, ok := GlyphMetrics(inst, ot.GlyphIndex(gid))
			env.True(ok)
			env.Equal(ot.IntToFixed(adv), m.Advance, "glyph %d at wght=%g", gid, tt.wght)
			env.False(m.BearingVaries)
		}
	}
	_, ok := GlyphMetrics(DefaultInstance(env.otf), 3)
	env.False(ok, "expected glyph 3 to be out of range")
	_, ok = VerticalGlyphMetrics(DefaultInstance(env.otf), 1)
	env.False(ok, "expected font without vertical metrics")
}

func (env *QueryTestEnviron) TestGlyphAdvance() {
	inst, _ := InstanceAt(env.otf, map[ot.Tag]float64{ot.T("wght"): 900})
	ppem := fixed.I(10)
	env.Equal(fixed.Int26_6(486), GlyphAdvance(inst, 2, ppem)) // 760 units = 7.6 px
	env.Equal(fixed.Int26_6(0), GlyphAdvance(inst, 7, ppem))
	env.Equal(fixed.Int26_6(-384), Scale(ot.IntToFixed(-600), 1000, ppem))
	env.Equal(fixed.Int26_6(0), Scale(ot.IntToFixed(600), 0, ppem))
}

func (env *QueryTestEnviron) TestFontMetrics() {
	inst, _ := InstanceAt(env.otf, map[ot.Tag]float64{ot.T("wght"): 900})
	m := FontMetrics(inst)
	env.Equal(sfnt.Units(1000), m.UnitsPerEm)
	env.Equal(sfnt.Units(800), m.Ascent)
	env.Equal(sfnt.Units(-200), m.Descent)
	env.Equal(sfnt.Units(540), m.XHeight)
	env.Equal(sfnt.Units(700), m.CapHeight)
	env.Equal(sfnt.Units(700), m.MaxAdvance) // hhea does not vary
	inst, _ = InstanceAt(env.otf, map[ot.Tag]float64{ot.T("wght"): 650})
	v, ok := MetricValue(inst, ot.T("xhgt"))
	env.True(ok)
	env.Equal(ot.IntToFixed(520), v)
	v, ok = MetricValue(inst, ot.T("unds"))
	env.True(ok)
	env.Equal(ot.IntToFixed(50), v)
	_, ok = MetricValue(inst, ot.T("gsp0"))
	env.False(ok, "gasp ranges have no default")
	_, ok = MetricValue(inst, ot.T("vasc"))
	env.False(ok, "font has no vhea")
}

func (env *QueryTestEnviron) TestVerticalMetrics() {
	otf := buildTestFont(env.T(), true)
	inst, _ := InstanceAt(otf, map[ot.Tag]float64{ot.T("wght"): 900})
	m, ok := VerticalGlyphMetrics(inst, 1)
	env.Require().True(ok)
	env.Equal(ot.IntToFixed(1100), m.Advance)
	env.Equal(ot.IntToFixed(80), m.Bearing)
	env.True(m.HasOrigin)
	env.Equal(ot.IntToFixed(880), m.OriginY)
	m, _ = VerticalGlyphMetrics(inst, 2)
	env.Equal(ot.IntToFixed(920), m.OriginY)
	m, _ = VerticalGlyphMetrics(DefaultInstance(otf), 2)
	env.Equal(ot.IntToFixed(900), m.OriginY)
	env.Equal(ot.IntToFixed(1000), m.Advance)
	v, ok := MetricValue(inst, ot.T("vasc"))
	env.True(ok)
	env.Equal(ot.IntToFixed(500), v)
}

func (env *QueryTestEnviron) TestStaticFont() {
	tables := make(map[ot.Tag][]byte)
	for _, tag := range env.otf.TableTags() {
		switch tag {
		case ot.T("fvar"), ot.T("HVAR"), ot.T("MVAR"):
		default:
			tables[tag] = env.otf.Table(tag).Binary()
		}
	}
	otf, err := ot.Parse(ot.AssembleFont(tables))
	env.Require().NoError(err)
	env.Nil(Axes(otf))
	env.Nil(Instances(otf))
	inst, err := InstanceAt(otf, nil)
	env.Require().NoError(err)
	m, ok := GlyphMetrics(inst, 2)
	env.True(ok)
	env.Equal(ot.IntToFixed(700), m.Advance)
	_, err = InstanceAt(otf, map[ot.Tag]float64{ot.T("wght"): 700})
	env.True(errors.Is(err, ot.ErrNoVariationData))
	_, err = NamedInstance(otf, 0)
	env.True(errors.Is(err, ot.ErrNoVariationData))
	env.Equal(sfnt.Units(500), FontMetrics(inst).XHeight)
}

func (env *QueryTestEnviron) TestVariationTablesWithoutAxes() {
	tables := make(map[ot.Tag][]byte)
	for _, tag := range env.otf.TableTags() {
		switch tag {
		case ot.T("fvar"), ot.T("avar"):
		default:
			tables[tag] = env.otf.Table(tag).Binary()
		}
	}
	otf, err := ot.Parse(ot.AssembleFont(tables))
	env.Require().NoError(err)
	env.Require().NotNil(otf.HVar())
	env.Require().NotNil(otf.MVar())
	inst := DefaultInstance(otf)
	store := otf.HVar().Store
	scalars := inst.Scalars(store)
	env.Len(scalars, store.RegionCount())
	for _, s := range scalars {
		env.Equal(ot.Fixed(0), s)
	}
	env.Nil(inst.Scalars(nil))
	m, ok := GlyphMetrics(inst, 2)
	env.True(ok)
	env.Equal(ot.IntToFixed(700), m.Advance)
	v, ok := MetricValue(inst, ot.T("xhgt"))
	env.True(ok)
	env.Equal(ot.IntToFixed(500), v)
}

// --- Helpers ----------------------------------------------------------

const testDesign = `
family: Test Sans
axes:
  - {tag: wght, name: Weight, min: 100, default: 400, max: 900}
masters:
  - location: {wght: 400}
    advances: [500, 600, 700]
    metrics: {hasc: 800, hdsc: -200, xhgt: 500, cpht: 700}
  - location: {wght: 900}
    advances: [500, 540, 760]
    metrics: {xhgt: 540}
  - location: {wght: 100}
    advances: [500, 560, 640]
instances:
  - {name: Regular, location: {wght: 400}}
  - {name: Bold, postscriptName: TestSans-Bold, location: {wght: 700}}
`

// buildTestFont builds a font with a weight axis. With vertical set, tables
// vhea, vmtx, VVAR and VORG are added: glyph 1 grows by 100 in height and
// glyph 2 has its vertical origin raised by 20 towards wght=900.
func buildTestFont(t *testing.T, vertical bool) *ot.Font {
	d, err := fontbuild.ParseDesign([]byte(testDesign))
	if err != nil {
		t.Fatal(err)
	}
	font, err := fontbuild.Build(d)
	if err != nil {
		t.Fatal(err)
	}
	if vertical {
		otf, _ := ot.Parse(font)
		tables := make(map[ot.Tag][]byte)
		for _, tag := range otf.TableTags() {
			tables[tag] = otf.Table(tag).Binary()
		}
		tables[ot.T("vhea")] = makeVHea(3)
		tables[ot.T("vmtx")] = []byte{3, 232, 0, 80, 3, 232, 0, 80, 3, 232, 0, 80} // 1000, 80
		tables[ot.T("VORG")] = []byte{0, 1, 0, 0, 3, 112, 0, 1, 0, 2, 3, 132}      // 880; glyph 2: 900
		vlm := ot.NewVarLocationMap(1)
		black := vlm.Index(ot.VarLocation{16384})
		ivs := ot.NewItemVariationStore(1)
		height := ot.NewVarValueRecord(1000)
		height.SetValue(black, 1100)
		origin := ot.NewVarValueRecord(900)
		origin.SetValue(black, 920)
		nv := ot.NoVariation
		tables[ot.T("VVAR")] = ot.EncodeVVAR(ivs, ot.GlyphVariations{
			Advances: []ot.VarIndex{nv, ivs.AddValue(vlm, height), nv},
			Origins:  []ot.VarIndex{nv, nv, ivs.AddValue(vlm, origin)},
		})
		font = ot.AssembleFont(tables)
	}
	otf, err := ot.Parse(font)
	if err != nil {
		t.Fatal(err)
	}
	if len(otf.Errors()) > 0 {
		t.Fatalf("test font has errors: %v", otf.Errors())
	}
	return otf
}

func makeVHea(numLong uint16) []byte {
	b := make([]byte, 36)
	b[1], b[2] = 1, 0x10 // version 1.1
	b[4], b[5] = 0x01, 0xF4 // ascent 500
	b[6], b[7] = 0xFE, 0x0C // descent -500
	b[34], b[35] = byte(numLong>>8), byte(numLong)
	return b
}
