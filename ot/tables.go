package ot

import "fmt"

// --- Table -----------------------------------------------------------------

// Table represents one of the various OpenType font tables.
//
// Tables interpreted by this package are:
// 'head', 'hhea', 'hmtx', 'vhea', 'vmtx', 'maxp', 'OS/2', 'post' (default metrics),
// 'fvar', 'avar' (design axes), 'HVAR', 'VVAR', 'MVAR' (metrics variations),
// and 'VORG' (vertical origins).
// Every other table is kept as a generic table, giving access to its binary data.
//
// Currently not supported: glyph outline variations ('gvar', 'CFF2' blends),
// feature variations, 'STAT' and 'cvar'.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b binarySegm, offset, size uint32) *genericTable {
	t := &genericTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of OpenType tables.
type tableBase struct {
	data   binarySegm // a table is a slice of font data
	name   Tag        // 4-byte name as an integer
	offset uint32     // from offset
	length uint32     // to offset + length
	self   any
}

func newTableBase(tag Tag, b binarySegm, offset, size uint32) tableBase {
	return tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
}

// Extent returns offset and byte size of this table within the OpenType font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// TableSelf is a reference to a table. Its primary use is for converting
// a generic table to a concrete table flavour, and for reproducing the
// name tag of a table.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	if tself.tableBase == nil {
		return 0
	}
	return tself.tableBase.name
}

func safeSelf(tself TableSelf) any {
	if tself.tableBase == nil || tself.tableBase.self == nil {
		return TableSelf{}
	}
	return tself.tableBase.self
}

func as[T any](tself TableSelf) *T {
	if t, ok := safeSelf(tself).(*T); ok {
		return t
	}
	return nil
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable { return as[HeadTable](tself) }

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable { return as[MaxPTable](tself) }

// AsHHea returns this table as a hhea or vhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable { return as[HHeaTable](tself) }

// AsHMtx returns this table as a hmtx or vmtx table, or nil.
func (tself TableSelf) AsHMtx() *HMtxTable { return as[HMtxTable](tself) }

// AsOS2 returns this table as an OS/2 table, or nil.
func (tself TableSelf) AsOS2() *OS2Table { return as[OS2Table](tself) }

// AsPost returns this table as a post table, or nil.
func (tself TableSelf) AsPost() *PostTable { return as[PostTable](tself) }

// AsFvar returns this table as a fvar table, or nil.
func (tself TableSelf) AsFvar() *FvarTable { return as[FvarTable](tself) }

// AsAvar returns this table as an avar table, or nil.
func (tself TableSelf) AsAvar() *AvarTable { return as[AvarTable](tself) }

// AsHVar returns this table as a HVAR or VVAR table, or nil.
func (tself TableSelf) AsHVar() *HVarTable { return as[HVarTable](tself) }

// AsMVar returns this table as a MVAR table, or nil.
func (tself TableSelf) AsMVar() *MVarTable { return as[MVarTable](tself) }

// AsVOrg returns this table as a VORG table, or nil.
func (tself TableSelf) AsVOrg() *VOrgTable { return as[VOrgTable](tself) }

// --- Concrete table implementations ----------------------------------------

// HeadTable gives global information about the font.
// Only a small subset of fields are made public by HeadTable.
type HeadTable struct {
	tableBase
	Flags            uint16 // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16 // values 16 … 16384 are valid
	IndexToLocFormat uint16 // 0 for short offsets, 1 for long
}

func newHeadTable(tag Tag, b binarySegm, offset, size uint32) *HeadTable {
	t := &HeadTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// MaxPTable establishes the memory requirements for this font.
// The 'maxp' table contains a count for the number of glyphs in the font.
// Whenever this value changes, other tables which depend on it should also be updated.
type MaxPTable struct {
	tableBase
	NumGlyphs int
}

func newMaxPTable(tag Tag, b binarySegm, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// HHeaTable contains information for horizontal layout (table 'hhea') or
// vertical layout (table 'vhea'), which share a common layout. For 'vhea',
// Ascender etc. hold the vertTypo* values and NumberOfLongMetrics holds
// numOfLongVerMetrics.
type HHeaTable struct {
	tableBase
	Ascender            int16
	Descender           int16
	LineGap             int16
	AdvanceMax          uint16
	MinStartSideBearing int16
	MinEndSideBearing   int16
	MaxExtent           int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	NumberOfLongMetrics int
}

func newHHeaTable(tag Tag, b binarySegm, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// OS2Table contains a small, concrete subset of metrics from table 'OS/2',
// namely those which may be varied by table MVAR.
type OS2Table struct {
	tableBase
	Version            uint16
	XAvgCharWidth      int16
	SubscriptXSize     int16
	SubscriptYSize     int16
	SubscriptXOffset   int16
	SubscriptYOffset   int16
	SuperscriptXSize   int16
	SuperscriptYSize   int16
	SuperscriptXOffset int16
	SuperscriptYOffset int16
	StrikeoutSize      int16
	StrikeoutPosition  int16
	TypoAscender       int16
	TypoDescender      int16
	TypoLineGap        int16
	WinAscent          uint16
	WinDescent         uint16
	XHeight            Option[int16] // version ≥ 2
	CapHeight          Option[int16] // version ≥ 2
}

func newOS2Table(tag Tag, b binarySegm, offset, size uint32) *OS2Table {
	t := &OS2Table{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// PostTable holds the underline metrics from table 'post'.
type PostTable struct {
	tableBase
	Version            uint32
	UnderlinePosition  int16
	UnderlineThickness int16
}

func newPostTable(tag Tag, b binarySegm, offset, size uint32) *PostTable {
	t := &PostTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// HMtxTable contains metric information for the horizontal layout each of the glyphs in
// the font (table 'hmtx'), or for the vertical layout (table 'vmtx').
// Each element in the contained metrics-array has two parts: the advance
// and the start side bearing (left or top). The value NumberOfLongMetrics is taken
// from the `hhea` (`vhea`) table. In a monospaced font, only one entry is required
// but that entry may not be omitted.
// Optionally, an array of side bearings follows.
// The corresponding glyphs are assumed to have the same
// advance as that found in the last entry in the metrics array.
type HMtxTable struct {
	tableBase
	NumberOfLongMetrics int
	numGlyphs           int
	longMetrics         []MetricRecord
	bearings            []int16
}

// MetricRecord is one long metric record from table hmtx or vmtx.
type MetricRecord struct {
	Advance          uint16
	StartSideBearing int16
}

func newHMtxTable(tag Tag, b binarySegm, offset, size uint32) *HMtxTable {
	t := &HMtxTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

func (t *HMtxTable) parseAll(numGlyphs, numberOfLongMetrics int) error {
	if t == nil {
		return nil
	}
	if numGlyphs < 0 {
		return fmt.Errorf("invalid glyph count %d", numGlyphs)
	}
	if numberOfLongMetrics < 0 || numberOfLongMetrics > numGlyphs {
		return fmt.Errorf("invalid number of long metrics %d (numGlyphs=%d)", numberOfLongMetrics, numGlyphs)
	}
	required := numberOfLongMetrics*4 + (numGlyphs-numberOfLongMetrics)*2
	if required > len(t.data) {
		return fmt.Errorf("%s table too small: need %d bytes, have %d", t.name, required, len(t.data))
	}
	r := t.data.stream(0)
	t.longMetrics = make([]MetricRecord, numberOfLongMetrics)
	for i := range t.longMetrics {
		t.longMetrics[i].Advance = r.ReadUint16()
		t.longMetrics[i].StartSideBearing = r.ReadInt16()
	}
	t.bearings = make([]int16, numGlyphs-numberOfLongMetrics)
	for i := range t.bearings {
		t.bearings[i] = r.ReadInt16()
	}
	t.NumberOfLongMetrics = numberOfLongMetrics
	t.numGlyphs = numGlyphs
	return nil
}

// Metrics returns the advance and the start side bearing for glyph g.
// Glyphs beyond the long metrics share the last advance.
// If g is out of range, ok will be false.
func (t *HMtxTable) Metrics(g GlyphIndex) (advance uint16, bearing int16, ok bool) {
	if t == nil || len(t.longMetrics) == 0 || int(g) >= t.numGlyphs {
		return 0, 0, false
	}
	if int(g) < len(t.longMetrics) {
		m := t.longMetrics[g]
		return m.Advance, m.StartSideBearing, true
	}
	last := t.longMetrics[len(t.longMetrics)-1]
	return last.Advance, t.bearings[int(g)-len(t.longMetrics)], true
}

// NumGlyphs returns the number of glyphs covered by this table.
func (t *HMtxTable) NumGlyphs() int {
	if t == nil {
		return 0
	}
	return t.numGlyphs
}
