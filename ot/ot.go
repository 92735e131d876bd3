package ot

// Font represents the internal structure of an OpenType font.
// It is used to navigate the variation data of a font, together with the
// tables the variation data refers to (default metrics, glyph counts).
//
// Fonts without variation tables are valid; DesignAxes will then return nil.
type Font struct {
	Header        *FontHeader
	tables        map[Tag]Table
	HHea          *HHeaTable    // typed access to hhea
	HMtx          *HMtxTable    // typed access to hmtx
	VHea          *HHeaTable    // typed access to vhea (same layout as hhea)
	VMtx          *HMtxTable    // typed access to vmtx (same layout as hmtx)
	OS2           *OS2Table     // typed access to OS/2
	Post          *PostTable    // typed access to post
	axes          *DesignAxes   // derived from fvar + avar
	parseErrors   []FontError   // Errors accumulated during parsing
	parseWarnings []FontWarning // Warnings accumulated during parsing
	parseOptions  []ParseOption // Options to guide the parsing process
}

// ParseOption guides and influences the parsing of the font.
type ParseOption int

const (
	IsTestfont ParseOption = iota // relaxes a number of cross-checks that are normally enforced
)

func (otf *Font) hasOption(opt ParseOption) bool {
	for _, o := range otf.parseOptions {
		if o == opt {
			return true
		}
	}
	return false
}

// FontHeader is a directory of the top-level tables in a font. If the font file
// contains only one font, the table directory will begin at byte 0 of the file.
//
// OpenType fonts that contain TrueType outlines should use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2) should
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// Tables not interpreted by this package are returned as generic tables,
// i.e. no table information will be dropped. To get at a concrete table type,
// clients call
//
//	hvar := otf.Table(ot.T("HVAR")).Self().AsHVar()
//
// Table tag names are case-sensitive, following the names in the OpenType specification.
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// TableTags returns a list of tags, one for each table contained in the font.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	return tags
}

// DesignAxes returns the design axes of a variable font, or nil if the font
// has no (usable) fvar table.
func (otf *Font) DesignAxes() *DesignAxes {
	if otf == nil {
		return nil
	}
	return otf.axes
}

// NumGlyphs returns the number of glyphs as stated in table maxp, or 0.
func (otf *Font) NumGlyphs() int {
	if otf == nil {
		return 0
	}
	if t := otf.Table(T("maxp")); t != nil {
		if maxp := t.Self().AsMaxP(); maxp != nil {
			return maxp.NumGlyphs
		}
	}
	return 0
}

// UnitsPerEm returns the design units per em from table head, or 0.
func (otf *Font) UnitsPerEm() uint16 {
	if otf == nil {
		return 0
	}
	if t := otf.Table(T("head")); t != nil {
		if head := t.Self().AsHead(); head != nil {
			return head.UnitsPerEm
		}
	}
	return 0
}

// HVar returns the horizontal metrics variations table, if present and valid.
func (otf *Font) HVar() *HVarTable {
	if t := otf.Table(T("HVAR")); t != nil {
		return t.Self().AsHVar()
	}
	return nil
}

// VVar returns the vertical metrics variations table, if present and valid.
func (otf *Font) VVar() *HVarTable {
	if t := otf.Table(T("VVAR")); t != nil {
		return t.Self().AsHVar()
	}
	return nil
}

// MVar returns the metrics variations table, if present and valid.
func (otf *Font) MVar() *MVarTable {
	if t := otf.Table(T("MVAR")); t != nil {
		return t.Self().AsMVar()
	}
	return nil
}

// VOrg returns the vertical origin table, if present and valid.
func (otf *Font) VOrg() *VOrgTable {
	if t := otf.Table(T("VORG")); t != nil {
		return t.Self().AsVOrg()
	}
	return nil
}

// Errors returns all errors encountered during font parsing.
// These errors represent issues that were found but did not prevent parsing from completing.
// Clients can inspect these errors to determine if the font is suitable for their use case.
func (otf *Font) Errors() []FontError {
	if otf.parseErrors == nil {
		return []FontError{}
	}
	return otf.parseErrors
}

// Warnings returns all warnings encountered during font parsing.
func (otf *Font) Warnings() []FontWarning {
	if otf.parseWarnings == nil {
		return []FontWarning{}
	}
	return otf.parseWarnings
}

// CriticalErrors returns all errors with critical severity.
func (otf *Font) CriticalErrors() []FontError {
	critical := make([]FontError, 0)
	for _, err := range otf.parseErrors {
		if err.Severity == SeverityCritical {
			critical = append(critical, err)
		}
	}
	return critical
}

// HasCriticalErrors returns true if any critical errors were encountered during parsing.
func (otf *Font) HasCriticalErrors() bool {
	return len(otf.CriticalErrors()) > 0
}

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// --- Tag -------------------------------------------------------------------

// Tag is defined by OpenType as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("wght"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}
