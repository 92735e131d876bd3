package otquery

import (
	"github.com/npillmayer/otvar/ot"
	"golang.org/x/image/font/sfnt"
)

// FontMetricsInfo contains selected metric information for a font instance.
type FontMetricsInfo struct {
	UnitsPerEm      sfnt.Units // ad-hoc units per em
	Ascent, Descent sfnt.Units // ascender and descender
	MaxAdvance      sfnt.Units // maximum advance width value in 'hhea' table; does not vary
	LineGap         sfnt.Units // typographic line gap
	XHeight         sfnt.Units // 0 if not present in 'OS/2'
	CapHeight       sfnt.Units // 0 if not present in 'OS/2'
}

// GlyphMetricsInfo contains the metric information of a glyph at a font instance.
// Values are in font units, with the fractional part variations may introduce.
type GlyphMetricsInfo struct {
	Advance ot.Fixed // advance width (horizontal) or height (vertical)
	Bearing ot.Fixed // left (horizontal) or top (vertical) side bearing
	// Bearings vary only if the variations table carries a mapping for them.
	BearingVaries bool
	// OriginY is the y coordinate of the vertical origin (vertical metrics only),
	// valid if HasOrigin is set.
	OriginY   ot.Fixed
	HasOrigin bool
}

// AxisInfo describes a variation axis of a font, in user coordinates.
type AxisInfo struct {
	Tag     ot.Tag
	Name    string // from table 'name'; empty if not present
	Min     float64
	Default float64
	Max     float64
	Hidden  bool
}

// InstanceInfo describes a named instance of a font.
type InstanceInfo struct {
	Index          int
	Subfamily      string // from table 'name'; empty if not present
	PostScriptName string // from table 'name'; empty if not present
	Coords         map[ot.Tag]float64
}
