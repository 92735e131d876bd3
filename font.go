/*
Package otvar is for reading the variation data of OpenType fonts.

A variable font spans a design space with one or more axes, e.g. weight or
width. Every location in that space is an instance of the font; some of
them are named instances such as "Bold". Fonts store their metrics for the
default location, together with deltas for other locations:

▪︎ fvar and avar define the axes and how user coordinates are normalized.

▪︎ HVAR and VVAR vary the advances and side bearings of glyphs.

▪︎ MVAR varies font-wide metrics like the x-height.

Package ot decodes these tables, package otquery answers questions about
metrics at a font instance. This package ties them to font files.

# Links

OpenType font variations overview:
https://learn.microsoft.com/en-us/typography/opentype/spec/otvaroverview

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otvar

import (
	"github.com/npillmayer/otvar/internal/fontload"
	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.otvar'
func tracer() tracing.Trace {
	return tracing.Select("font.otvar")
}

// ScalableFont is a font together with its raw data and the file it has
// been loaded from, if any.
type ScalableFont = fontload.ScalableFont

// LoadVariableFont loads an OpenType font (TTF or OTF) from a file. Fonts
// without variation data are loaded as well; they have a default instance only.
func LoadVariableFont(fontfile string, opts ...ot.ParseOption) (*ScalableFont, error) {
	f, err := fontload.LoadOpenTypeFont(fontfile, opts...)
	if err != nil {
		return nil, err
	}
	logVariations(f)
	return f, nil
}

// ParseVariableFont loads an OpenType font (TTF or OTF) from memory.
func ParseVariableFont(fbytes []byte, opts ...ot.ParseOption) (*ScalableFont, error) {
	f, err := fontload.ParseOpenTypeFont(fbytes, opts...)
	if err != nil {
		return nil, err
	}
	logVariations(f)
	return f, nil
}

func logVariations(f *ScalableFont) {
	da := f.OTF.DesignAxes()
	if da == nil {
		tracer().Debugf("font %s has no variations", f.Fontname)
		return
	}
	tracer().Debugf("font %s has %d axes, %d named instances", f.Fontname,
		da.AxisCount(), len(da.Instances()))
}
