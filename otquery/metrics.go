package otquery

import (
	"github.com/npillmayer/otvar/ot"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// --- Font Information -------------------------------------------------

// FontMetrics retrieves selected metrics of a font instance.
//
// Ascent, descent and line gap are taken from table hhea, falling back to the
// typographic values of table OS/2 if hhea has none. MVAR deltas for 'hasc',
// 'hdsc' and 'hlgp' are applied to whichever source has been used.
func FontMetrics(inst *Instance) FontMetricsInfo {
	otf := inst.Font()
	metrics := FontMetricsInfo{}
	if hhea := otf.HHea; hhea != nil {
		metrics.Ascent = sfnt.Units(hhea.Ascender)
		metrics.Descent = sfnt.Units(hhea.Descender)
		metrics.LineGap = sfnt.Units(hhea.LineGap)
		metrics.MaxAdvance = sfnt.Units(hhea.AdvanceMax)
	}
	if metrics.Ascent == 0 && metrics.Descent == 0 {
		if os2 := otf.OS2; os2 != nil {
			tracer().Debugf("OS/2")
			a := sfnt.Units(os2.TypoAscender)
			if a > metrics.Ascent {
				tracer().Debugf("override of ascent: %d -> %d", metrics.Ascent, a)
				metrics.Ascent = a
			}
			d := sfnt.Units(os2.TypoDescender)
			if d < metrics.Descent {
				tracer().Debugf("override of descent: %d -> %d", metrics.Descent, d)
				metrics.Descent = d
			}
			metrics.LineGap = sfnt.Units(os2.TypoLineGap)
		}
	}
	metrics.Ascent += sfnt.Units(metricDelta(inst, ot.T("hasc")).Round())
	metrics.Descent += sfnt.Units(metricDelta(inst, ot.T("hdsc")).Round())
	metrics.LineGap += sfnt.Units(metricDelta(inst, ot.T("hlgp")).Round())
	if v, ok := MetricValue(inst, ot.T("xhgt")); ok {
		metrics.XHeight = sfnt.Units(v.Round())
	}
	if v, ok := MetricValue(inst, ot.T("cpht")); ok {
		metrics.CapHeight = sfnt.Units(v.Round())
	}
	metrics.UnitsPerEm = sfnt.Units(otf.UnitsPerEm())
	return metrics
}

// MetricValue returns a font-wide metric at a font instance. The metric is
// identified by its MVAR value tag (see ot.MVarTags); its default is read from
// the table the tag refers to, and the MVAR delta, if any, is added.
// If the font does not have the default value, ok is false.
func MetricValue(inst *Instance, tag ot.Tag) (v ot.Fixed, ok bool) {
	dflt, ok := defaultMetric(inst.Font(), tag)
	if !ok {
		return 0, false
	}
	return ot.IntToFixed(dflt) + metricDelta(inst, tag), true
}

func metricDelta(inst *Instance, tag ot.Tag) ot.Fixed {
	mvar := inst.Font().MVar()
	if mvar == nil {
		return 0
	}
	d, _ := mvar.Delta(tag, inst.Scalars(mvar.Store))
	return d
}

// defaultMetric reads the unvaried value for an MVAR value tag.
func defaultMetric(otf *ot.Font, tag ot.Tag) (int32, bool) {
	os2, hhea, vhea, post := otf.OS2, otf.HHea, otf.VHea, otf.Post
	switch {
	case os2 != nil && tag == ot.T("hasc"):
		return int32(os2.TypoAscender), true
	case os2 != nil && tag == ot.T("hdsc"):
		return int32(os2.TypoDescender), true
	case os2 != nil && tag == ot.T("hlgp"):
		return int32(os2.TypoLineGap), true
	case os2 != nil && tag == ot.T("hcla"):
		return int32(os2.WinAscent), true
	case os2 != nil && tag == ot.T("hcld"):
		return int32(os2.WinDescent), true
	case os2 != nil && tag == ot.T("xhgt"):
		xh, ok := os2.XHeight.Unwrap()
		return int32(xh), ok
	case os2 != nil && tag == ot.T("cpht"):
		ch, ok := os2.CapHeight.Unwrap()
		return int32(ch), ok
	case os2 != nil && tag == ot.T("sbxs"):
		return int32(os2.SubscriptXSize), true
	case os2 != nil && tag == ot.T("sbys"):
		return int32(os2.SubscriptYSize), true
	case os2 != nil && tag == ot.T("sbxo"):
		return int32(os2.SubscriptXOffset), true
	case os2 != nil && tag == ot.T("sbyo"):
		return int32(os2.SubscriptYOffset), true
	case os2 != nil && tag == ot.T("spxs"):
		return int32(os2.SuperscriptXSize), true
	case os2 != nil && tag == ot.T("spys"):
		return int32(os2.SuperscriptYSize), true
	case os2 != nil && tag == ot.T("spxo"):
		return int32(os2.SuperscriptXOffset), true
	case os2 != nil && tag == ot.T("spyo"):
		return int32(os2.SuperscriptYOffset), true
	case os2 != nil && tag == ot.T("strs"):
		return int32(os2.StrikeoutSize), true
	case os2 != nil && tag == ot.T("stro"):
		return int32(os2.StrikeoutPosition), true
	case hhea != nil && tag == ot.T("hcrs"):
		return int32(hhea.CaretSlopeRise), true
	case hhea != nil && tag == ot.T("hcrn"):
		return int32(hhea.CaretSlopeRun), true
	case hhea != nil && tag == ot.T("hcof"):
		return int32(hhea.CaretOffset), true
	case vhea != nil && tag == ot.T("vasc"):
		return int32(vhea.Ascender), true
	case vhea != nil && tag == ot.T("vdsc"):
		return int32(vhea.Descender), true
	case vhea != nil && tag == ot.T("vlgp"):
		return int32(vhea.LineGap), true
	case vhea != nil && tag == ot.T("vcrs"):
		return int32(vhea.CaretSlopeRise), true
	case vhea != nil && tag == ot.T("vcrn"):
		return int32(vhea.CaretSlopeRun), true
	case vhea != nil && tag == ot.T("vcof"):
		return int32(vhea.CaretOffset), true
	case post != nil && tag == ot.T("unds"):
		return int32(post.UnderlineThickness), true
	case post != nil && tag == ot.T("undo"):
		return int32(post.UnderlinePosition), true
	}
	if _, known := ot.MVarTags[tag]; !known {
		tracer().Infof("%s is not a registered MVAR value tag", tag)
	}
	return 0, false
}

// --- Glyph Routines --------------------------------------------------------

// GlyphMetrics retrieves the horizontal metrics of a glyph at a font instance.
// The advance and left side bearing of table hmtx are varied by table HVAR.
// If the glyph is out of range, ok is false.
func GlyphMetrics(inst *Instance, gid ot.GlyphIndex) (GlyphMetricsInfo, bool) {
	otf := inst.Font()
	return glyphMetrics(inst, otf.HMtx, otf.HVar(), gid)
}

// VerticalGlyphMetrics retrieves the vertical metrics of a glyph at a font
// instance, from tables vmtx, VVAR and VORG. If the font has no vertical
// metrics or the glyph is out of range, ok is false.
func VerticalGlyphMetrics(inst *Instance, gid ot.GlyphIndex) (GlyphMetricsInfo, bool) {
	otf := inst.Font()
	vvar := otf.VVar()
	metrics, ok := glyphMetrics(inst, otf.VMtx, vvar, gid)
	if !ok {
		return metrics, false
	}
	if vorg := otf.VOrg(); vorg != nil {
		metrics.OriginY = ot.IntToFixed(int32(vorg.VertOriginY(gid)))
		metrics.HasOrigin = true
		if vvar != nil {
			d, _ := vvar.OriginDelta(gid, inst.Scalars(vvar.Store))
			metrics.OriginY += d
		}
	}
	return metrics, true
}

func glyphMetrics(inst *Instance, mtx *ot.HMtxTable, hvar *ot.HVarTable, gid ot.GlyphIndex) (GlyphMetricsInfo, bool) {
	metrics := GlyphMetricsInfo{}
	advance, bearing, ok := mtx.Metrics(gid)
	if !ok {
		tracer().Infof("no metrics for glyph %d", gid)
		return metrics, false
	}
	metrics.Advance = ot.IntToFixed(int32(advance))
	metrics.Bearing = ot.IntToFixed(int32(bearing))
	if hvar == nil {
		return metrics, true
	}
	scalars := inst.Scalars(hvar.Store)
	metrics.Advance += hvar.AdvanceDelta(gid, scalars)
	if metrics.Advance < 0 {
		metrics.Advance = 0
	}
	if d, ok := hvar.StartBearingDelta(gid, scalars); ok {
		metrics.Bearing += d
		metrics.BearingVaries = true
	}
	return metrics, true
}

// GlyphAdvance returns the horizontal advance of a glyph at a font instance,
// scaled to a font size given in pixels per em.
func GlyphAdvance(inst *Instance, gid ot.GlyphIndex, ppem fixed.Int26_6) fixed.Int26_6 {
	m, ok := GlyphMetrics(inst, gid)
	if !ok {
		return 0
	}
	return Scale(m.Advance, inst.Font().UnitsPerEm(), ppem)
}

// Scale converts a value in font units to pixels, for a font size given in
// pixels per em. Results are rounded to the nearest 1/64 pixel.
func Scale(v ot.Fixed, unitsPerEm uint16, ppem fixed.Int26_6) fixed.Int26_6 {
	if unitsPerEm == 0 {
		return 0
	}
	num := int64(v) * int64(ppem)
	den := int64(unitsPerEm) << 16
	if num < 0 {
		return fixed.Int26_6(-((-num + den/2) / den))
	}
	return fixed.Int26_6((num + den/2) / den)
}
