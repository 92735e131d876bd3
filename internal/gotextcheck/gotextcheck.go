// Package gotextcheck compares glyph advances of font instances with the
// results of go-text/typesetting, an independent reader of the same tables.
//
// go-text insists on a cmap table, which fonts built by package fontbuild do
// not have; AddCmap adds an empty one.
package gotextcheck

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype/tables"
	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return tracing.Select("font.gotextcheck")
}

// Tolerance is the largest difference in font units for advances to be
// considered equal. go-text computes deltas in floating point, while
// package ot rounds to 16.16.
const Tolerance = 0.5

// Mismatch is a glyph whose advance differs between the two readers.
type Mismatch struct {
	Glyph  ot.GlyphIndex
	Have   ot.Fixed // advance as computed by package otquery
	GoText float32  // advance as computed by go-text
}

func (m Mismatch) String() string {
	return fmt.Sprintf("glyph %d: advance %s, go-text has %g", m.Glyph, m.Have, m.GoText)
}

// Compare computes the advances of glyphs at a font instance with both
// otquery and go-text, and returns the glyphs they disagree on. data has to
// be the binary of the instance's font.
func Compare(data []byte, inst *otquery.Instance, gids []ot.GlyphIndex) ([]Mismatch, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("go-text cannot parse font: %w", err)
	}
	norm := inst.NormalizedCoords()
	coords := make([]tables.Coord, len(norm))
	for i, c := range norm {
		coords[i] = tables.Coord(ot.F2Dot14FromFixed(c))
	}
	face.SetCoords(coords)
	var mismatches []Mismatch
	for _, gid := range gids {
		m, ok := otquery.GlyphMetrics(inst, gid)
		if !ok {
			return mismatches, fmt.Errorf("glyph %d out of range", gid)
		}
		other := face.HorizontalAdvance(font.GID(gid))
		if math.Abs(m.Advance.Float()-float64(other)) > Tolerance {
			tracer().Infof("advance of glyph %d differs: %s vs. %g", gid, m.Advance, other)
			mismatches = append(mismatches, Mismatch{Glyph: gid, Have: m.Advance, GoText: other})
		}
	}
	return mismatches, nil
}

// AddCmap returns a font with an additional cmap table which maps no
// characters. Fonts which already have a cmap are returned unchanged.
func AddCmap(data []byte) ([]byte, error) {
	otf, err := ot.Parse(data)
	if err != nil {
		return nil, err
	}
	if otf.Table(ot.T("cmap")) != nil {
		return data, nil
	}
	raw := make(map[ot.Tag][]byte)
	for _, tag := range otf.TableTags() {
		raw[tag] = otf.Table(tag).Binary()
	}
	raw[ot.T("cmap")] = emptyCmap
	return ot.AssembleFont(raw), nil
}

// emptyCmap is a cmap with a single format 4 subtable (Windows, Unicode
// BMP), holding only the final segment 0xFFFF.
var emptyCmap = []byte{
	0, 0, 0, 1, // version, numTables
	0, 3, 0, 1, 0, 0, 0, 12, // platform 3, encoding 1, offset 12
	0, 4, 0, 24, 0, 0, // format 4, length, language
	0, 2, 0, 2, 0, 0, 0, 0, // segCountX2, searchRange, entrySelector, rangeShift
	0xFF, 0xFF, 0, 0, // endCode, reservedPad
	0xFF, 0xFF, 0, 1, 0, 0, // startCode, idDelta, idRangeOffset
}
