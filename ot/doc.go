/*
Package ot provides access to the tables of variable OpenType fonts.
Intended audience for this package are:

▪︎ text layout and rendering code which needs glyph metrics and font-wide
metrics at arbitrary positions of a font's design space

▪︎ font tooling which builds variation tables (fvar, avar, HVAR, VVAR, MVAR)
from a set of masters

Package `ot` exposes the tables it understands as typed tables, and every other
table as a generic blob. Reading a font (Parse) is lenient: problems within
single tables are recorded as FontErrors and the affected table falls back to
its default behaviour. Only a broken table directory will let Parse fail.

# Design space

Axes are described by table fvar. User coordinates (e.g., a weight of 700) are
mapped to normalized coordinates in [-1, 1] by DesignAxes.NormalizeCoords,
applying the segment maps of table avar if present. Normalized coordinates
are the input to all variation computations.

# Item variation stores

Tables HVAR, VVAR and MVAR carry their deltas in an ItemVariationStore. For an
instance, CalcRegionScalars computes the scalar of every region once; the
delta of an item is then the scalar-weighted sum of its deltas
(ApplyDeltasForIndexPair, ApplyDeltasForGid). Values are in font units,
represented as 16.16 fixed-point numbers (type Fixed).

Variation data is built the other way round: master values at sparse
locations (VarLocationMap, VarValueRecord) are decomposed by a VariationModel
into deltas of a new ItemVariationStore. Encode functions produce the binary
tables; AssembleFont puts a font file together.

# Status

Outlines (glyf, gvar, CFF2) are not interpreted. Neither are layout tables.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

// Code comments often cite passages from the OpenType specification version 1.9;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/otvaroverview.

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}

func assertEqualInt(name string, a, b int) {
	if a != b {
		panic(fmt.Sprintf("assertion [%s] failed: %d != %d", name, a, b))
	}
}
