package ot

import (
	"fmt"
	"sort"
)

// VOrgTable holds the vertical origins of glyphs (table VORG), used by fonts
// with CFF outlines. Glyphs without a record use the default origin.
type VOrgTable struct {
	tableBase
	DefaultVertOriginY int16
	records            []vertOrigin // sorted by glyph
}

type vertOrigin struct {
	glyph GlyphIndex
	y     int16
}

func newVOrgTable(tag Tag, b binarySegm, offset, size uint32) *VOrgTable {
	t := &VOrgTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

func parseVOrg(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	if size < 8 {
		ec.addError(tag, "Header", fmt.Sprintf("table too small: %d bytes", size), SeverityMinor, offset)
		return nil
	}
	r := b.stream(0)
	if major := r.ReadUint16(); major != 1 {
		ec.addError(tag, "Header", fmt.Sprintf("unsupported version %d", major), SeverityMinor, offset)
		return nil
	}
	_ = r.ReadUint16() // minorVersion
	t := newVOrgTable(tag, b, offset, size)
	t.DefaultVertOriginY = r.ReadInt16()
	n := int(r.ReadUint16())
	if !b.fits(8, 4*uint64(n)) {
		ec.addError(tag, "Records", fmt.Sprintf("%d records out of bounds", n), SeverityMinor, offset)
		return nil
	}
	t.records = make([]vertOrigin, n)
	for i := range t.records {
		t.records[i].glyph = GlyphIndex(r.ReadUint16())
		t.records[i].y = r.ReadInt16()
		if i > 0 && t.records[i].glyph <= t.records[i-1].glyph {
			ec.addError(tag, "Records", "records not sorted by glyph", SeverityMinor, offset+8)
			return nil
		}
	}
	return t
}

// VertOriginY returns the y coordinate of the vertical origin of a glyph.
func (t *VOrgTable) VertOriginY(gid GlyphIndex) int16 {
	i := sort.Search(len(t.records), func(i int) bool {
		return t.records[i].glyph >= gid
	})
	if i < len(t.records) && t.records[i].glyph == gid {
		return t.records[i].y
	}
	return t.DefaultVertOriginY
}
