package ot

import (
	"fmt"
	"math"
)

// Code comment often will cite passage from the
// OpenType specification version 1.9;
// see https://docs.microsoft.com/en-us/typography/opentype/spec/.

// ---------------------------------------------------------------------------

// Maximum reasonable counts for variation table structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation during scalar computation.
const (
	MaxAxes            = 64    // Axes: typically < 10
	MaxRegions         = 32767 // Regions of an item variation store
	MaxNamedInstances  = 4096  // Named instances in fvar
	MaxGlyphCount      = 65536 // Maximum glyph index (uint16)
	MaxTableCount      = 1024  // Table records in the font directory
	MaxVarSubtables    = 65535 // Item variation data subtables
	MaxMVarRecordCount = 1024  // MVAR value records; there are < 30 registered tags
)

// ---------------------------------------------------------------------------

// Checked arithmetic operations to prevent integer overflow

// checkedMulInt checks for overflow in multiplication of two integers
func checkedMulInt(a, b int) (int, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > 0 && b > 0 && a > math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if a < 0 && b < 0 && a < math.MaxInt/b {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	if (a < 0 && b > 0 && a < math.MinInt/b) || (a > 0 && b < 0 && b < math.MinInt/a) {
		return 0, fmt.Errorf("integer overflow: %d * %d", a, b)
	}
	return a * b, nil
}

// checkedAddUint32 checks for overflow in addition of two uint32 values
func checkedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, fmt.Errorf("integer overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// ---------------------------------------------------------------------------

// errFontFormat produces user level errors for font parsing.
func errFontFormat(message string) error {
	return fmt.Errorf("OpenType font format: %s", message)
}

// ---------------------------------------------------------------------------

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the fonts byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
//
// Only a broken table directory lets Parse fail. Problems within single tables
// are recorded (see Font.Errors) and the affected table falls back to a
// generic table, i.e. a malformed HVAR table will make the font behave as if
// it had no HVAR table.
func Parse(font []byte, opts ...ParseOption) (*Font, error) {
	ec := &errorCollector{}
	src := binarySegm(font)
	// https://www.microsoft.com/typography/otspec/otff.htm: Offset Table is 12 bytes.
	if len(src) < 12 {
		ec.addError(T(""), "Header", "font too short for table directory", SeverityCritical, 0)
		return nil, errFontFormat("font header")
	}
	r := src.stream(0)
	h := FontHeader{FontType: r.ReadUint32(), TableCount: r.ReadUint16()}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())

	if !(h.FontType == 0x4f54544f || // OTTO
		h.FontType == 0x00010000 || // TrueType
		h.FontType == 0x74727565) { // true
		ec.addError(T(""), "Header", fmt.Sprintf("font type not supported: %x", h.FontType), SeverityCritical, 0)
		return nil, errFontFormat(fmt.Sprintf("font type not supported: %x", h.FontType))
	}
	if h.TableCount > MaxTableCount {
		ec.addError(T(""), "Header", fmt.Sprintf("table count too large: %d", h.TableCount), SeverityCritical, 4)
		return nil, errFontFormat("table count")
	}
	otf := &Font{Header: &h, tables: make(map[Tag]Table), parseOptions: opts}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	tableRecordsSize, err := checkedMulInt(16, int(h.TableCount))
	if err != nil {
		ec.addError(T(""), "TableRecords", fmt.Sprintf("table count too large: %v", err), SeverityCritical, 12)
		return nil, errFontFormat(fmt.Sprintf("table count too large: %v", err))
	}
	buf, err := src.view(12, tableRecordsSize)
	if err != nil {
		ec.addError(T(""), "TableRecords", "table record entries", SeverityCritical, 12)
		return nil, errFontFormat("table record entries")
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			ec.addError(T(""), "TableRecords", "table order", SeverityCritical, 12)
			return nil, errFontFormat("table order")
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			ec.addError(tag, "Offset", "invalid table offset", SeverityCritical, off)
			return nil, errFontFormat("invalid table offset")
		}
		tableEnd, err := checkedAddUint32(off, size)
		if err != nil {
			ec.addError(tag, "Size", fmt.Sprintf("size calculation overflow: %v", err), SeverityCritical, off)
			return nil, errFontFormat(fmt.Sprintf("table %s: size calculation overflow: %v", tag, err))
		}
		if off > uint32(len(src)) || tableEnd > uint32(len(src)) {
			ec.addError(tag, "Bounds", fmt.Sprintf("bounds [%d:%d] exceed font size %d", off, tableEnd, len(src)), SeverityCritical, off)
			return nil, errFontFormat(fmt.Sprintf("table %s: bounds [%d:%d] exceed font size %d",
				tag, off, tableEnd, len(src)))
		}
		otf.tables[tag] = parseTable(tag, src[off:tableEnd], off, size, ec)
	}
	linkMetricsTables(otf, ec)
	linkDesignAxes(otf, ec)
	if !otf.hasOption(IsTestfont) {
		for _, tag := range RequiredTables {
			if otf.Table(T(tag)) == nil {
				ec.addWarning(T(tag), "required table missing", 0)
			}
		}
	}
	if ec.hasErrors() {
		tracer().Infof("font parsed with %d errors, %d of them critical", len(ec.errors), len(ec.criticalErrors()))
	}
	otf.parseErrors = ec.errors
	otf.parseWarnings = ec.warnings
	return otf, nil
}

// RequiredTables lists the tables required by the OpenType specification
// for the font to function correctly, as far as this package is concerned.
var RequiredTables = []string{
	"head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
}

// linkMetricsTables resolves the dependencies between hhea/vhea, hmtx/vmtx and maxp.
// A metrics table which cannot be interpreted will not be accessible as a typed table.
func linkMetricsTables(otf *Font, ec *errorCollector) {
	numGlyphs := otf.NumGlyphs()
	link := func(headerTag, metricsTag Tag) (*HHeaTable, *HMtxTable) {
		var hdr *HHeaTable
		if t := otf.Table(headerTag); t != nil {
			hdr = t.Self().AsHHea()
		}
		var mtx *HMtxTable
		if t := otf.Table(metricsTag); t != nil {
			mtx = t.Self().AsHMtx()
		}
		if mtx == nil {
			return hdr, nil
		}
		if hdr == nil {
			ec.addError(metricsTag, "Header", fmt.Sprintf("%s without %s", metricsTag, headerTag), SeverityMajor, 0)
			return nil, nil
		}
		if err := mtx.parseAll(numGlyphs, hdr.NumberOfLongMetrics); err != nil {
			off, _ := mtx.Extent()
			ec.addError(metricsTag, "Metrics", err.Error(), SeverityMajor, off)
			otf.tables[metricsTag] = newTable(metricsTag, mtx.data, mtx.offset, mtx.length)
			return hdr, nil
		}
		return hdr, mtx
	}
	otf.HHea, otf.HMtx = link(T("hhea"), T("hmtx"))
	otf.VHea, otf.VMtx = link(T("vhea"), T("vmtx"))
	if t := otf.Table(T("OS/2")); t != nil {
		otf.OS2 = t.Self().AsOS2()
	}
	if t := otf.Table(T("post")); t != nil {
		otf.Post = t.Self().AsPost()
	}
}

// linkDesignAxes combines fvar and avar. A missing or broken fvar leaves the
// font without axes; an avar not matching fvar is ignored.
func linkDesignAxes(otf *Font, ec *errorCollector) {
	t := otf.Table(T("fvar"))
	if t == nil {
		return
	}
	fvar := t.Self().AsFvar()
	if fvar == nil {
		return
	}
	var avar *AvarTable
	if a := otf.Table(T("avar")); a != nil {
		avar = a.Self().AsAvar()
	}
	if avar != nil && len(avar.SegmentMaps) != len(fvar.Axes) {
		off, _ := avar.Extent()
		ec.addError(T("avar"), "Header", fmt.Sprintf("axis count %d does not match fvar (%d), avar ignored",
			len(avar.SegmentMaps), len(fvar.Axes)), SeverityMinor, off)
		avar = nil
	}
	otf.axes = newDesignAxes(fvar, avar)
}

func parseTable(t Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	var table Table
	switch t {
	case T("head"):
		table = parseHead(t, b, offset, size, ec)
	case T("maxp"):
		table = parseMaxP(t, b, offset, size, ec)
	case T("hhea"), T("vhea"):
		table = parseHHea(t, b, offset, size, ec)
	case T("hmtx"), T("vmtx"):
		table = newHMtxTable(t, b, offset, size) // completed by linkMetricsTables
	case T("OS/2"):
		table = parseOS2(t, b, offset, size, ec)
	case T("post"):
		table = parsePost(t, b, offset, size, ec)
	case T("fvar"):
		table = parseFvar(t, b, offset, size, ec)
	case T("avar"):
		table = parseAvar(t, b, offset, size, ec)
	case T("HVAR"), T("VVAR"):
		table = parseHVar(t, b, offset, size, ec)
	case T("MVAR"):
		table = parseMVar(t, b, offset, size, ec)
	case T("VORG"):
		table = parseVOrg(t, b, offset, size, ec)
	default:
		tracer().Debugf("font contains table (%s), will not be interpreted", t)
		return newTable(t, b, offset, size)
	}
	if table == nil { // parser has recorded an error
		return newTable(t, b, offset, size)
	}
	return table
}

// --- Head table ------------------------------------------------------------

func parseHead(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	if size < 54 {
		ec.addError(tag, "Size", fmt.Sprintf("head table too small: %d bytes (need 54)", size), SeverityMajor, offset)
		return nil
	}
	t := newHeadTable(tag, b, offset, size)
	t.Flags, _ = b.u16(16)      // flags
	t.UnitsPerEm, _ = b.u16(18) // units per em
	t.IndexToLocFormat, _ = b.u16(50)
	if t.UnitsPerEm < 16 || t.UnitsPerEm > 16384 {
		ec.addWarning(tag, fmt.Sprintf("unitsPerEm out of range: %d", t.UnitsPerEm), offset+18)
	}
	return t
}

// --- MaxP table ------------------------------------------------------------

// This table establishes the memory requirements for this font. Fonts with CFF data
// must use Version 0.5 of this table, specifying only the numGlyphs field. Fonts
// with TrueType outlines must use Version 1.0 of this table, where all data is required.
func parseMaxP(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	if size < 6 {
		ec.addError(tag, "Size", fmt.Sprintf("maxp table too small: %d bytes (need 6)", size), SeverityMajor, offset)
		return nil
	}
	t := newMaxPTable(tag, b, offset, size)
	n, _ := b.u16(4)
	t.NumGlyphs = int(n)
	return t
}

// --- HHea and VHea tables --------------------------------------------------

// Tables hhea and vhea have an identical layout of 36 bytes, the last field being
// the number of long metrics in hmtx and vmtx, respectively.
func parseHHea(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	tracer().Debugf("%s table has size %d", tag, size)
	if size < 36 {
		ec.addError(tag, "Size", fmt.Sprintf("%s table too small: %d bytes (need 36)", tag, size), SeverityMajor, offset)
		return nil
	}
	t := newHHeaTable(tag, b, offset, size)
	r := b.stream(4)
	t.Ascender = r.ReadInt16()
	t.Descender = r.ReadInt16()
	t.LineGap = r.ReadInt16()
	t.AdvanceMax = r.ReadUint16()
	t.MinStartSideBearing = r.ReadInt16()
	t.MinEndSideBearing = r.ReadInt16()
	t.MaxExtent = r.ReadInt16()
	t.CaretSlopeRise = r.ReadInt16()
	t.CaretSlopeRun = r.ReadInt16()
	t.CaretOffset = r.ReadInt16()
	n, _ := b.u16(34)
	t.NumberOfLongMetrics = int(n)
	return t
}

// --- OS/2 table ------------------------------------------------------------

func parseOS2(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	if size < 78 {
		ec.addError(tag, "Size", fmt.Sprintf("OS/2 table too small: %d bytes (need 78)", size), SeverityMajor, offset)
		return nil
	}
	t := newOS2Table(tag, b, offset, size)
	t.Version, _ = b.u16(0)
	t.XAvgCharWidth, _ = b.i16(2)
	r := b.stream(10)
	t.SubscriptXSize, t.SubscriptYSize = r.ReadInt16(), r.ReadInt16()
	t.SubscriptXOffset, t.SubscriptYOffset = r.ReadInt16(), r.ReadInt16()
	t.SuperscriptXSize, t.SuperscriptYSize = r.ReadInt16(), r.ReadInt16()
	t.SuperscriptXOffset, t.SuperscriptYOffset = r.ReadInt16(), r.ReadInt16()
	t.StrikeoutSize, _ = b.i16(26)
	t.StrikeoutPosition, _ = b.i16(28)
	t.TypoAscender, _ = b.i16(68)
	t.TypoDescender, _ = b.i16(70)
	t.TypoLineGap, _ = b.i16(72)
	t.WinAscent, _ = b.u16(74)
	t.WinDescent, _ = b.u16(76)
	if t.Version >= 2 {
		if size < 96 {
			ec.addWarning(tag, fmt.Sprintf("OS/2 version %d truncated", t.Version), offset)
			return t
		}
		xh, _ := b.i16(86)
		ch, _ := b.i16(88)
		t.XHeight, t.CapHeight = Some(xh), Some(ch)
	}
	return t
}

// --- Post table ------------------------------------------------------------

func parsePost(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	if size < 32 {
		ec.addError(tag, "Size", fmt.Sprintf("post table too small: %d bytes (need 32)", size), SeverityMinor, offset)
		return nil
	}
	t := newPostTable(tag, b, offset, size)
	t.Version, _ = b.u32(0)
	t.UnderlinePosition, _ = b.i16(8)
	t.UnderlineThickness, _ = b.i16(10)
	return t
}
