/*
Package fontbuild puts variable fonts together from a design description:
axes, masters with glyph advances and font-wide metrics, and named instances.

The resulting fonts carry no outlines. They contain the tables needed to
describe metrics and their variations (head, hhea, hmtx, maxp, OS/2, post,
name, fvar, avar, HVAR and MVAR) and are used to test and demonstrate the
variation machinery of package ot.

Designs are usually read from YAML:

	family: Test Sans
	axes:
	  - {tag: wght, name: Weight, min: 100, default: 400, max: 900}
	masters:
	  - location: {wght: 400}
	    advances: [500, 600, 700]
	  - location: {wght: 900}
	    advances: [500, 540, 760]
*/
package fontbuild

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.fontbuild'
func tracer() tracing.Trace {
	return tracing.Select("font.fontbuild")
}
