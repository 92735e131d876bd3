/*
Package otquery answers questions about variable fonts on a higher level than
package ot: which axes and named instances a font offers, and what the metrics
of glyphs and of the font as a whole are at a given location in design space.

Queries take an Instance, which fixes a location in design space:

	inst, err := otquery.InstanceAt(otf, map[ot.Tag]float64{ot.T("wght"): 700})
	m, ok := otquery.GlyphMetrics(inst, gid)

Fonts without variation data are served by their default instance.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.otquery'
func tracer() tracing.Trace {
	return tracing.Select("font.otquery")
}
