package ot

import (
	"encoding/binary"
)

// Test fonts are put together in memory from a minimal set of tables.

func putU16(b []byte, at int, v uint16) {
	binary.BigEndian.PutUint16(b[at:], v)
}

func makeHead(unitsPerEm uint16) []byte {
	b := make([]byte, 54)
	binary.BigEndian.PutUint32(b[0:], 0x00010000)
	binary.BigEndian.PutUint32(b[12:], 0x5F0F3CF5) // magic
	putU16(b, 18, unitsPerEm)
	return b
}

func makeMaxP(numGlyphs uint16) []byte {
	b := make([]byte, 6)
	binary.BigEndian.PutUint32(b[0:], 0x00005000)
	putU16(b, 4, numGlyphs)
	return b
}

func makeHHea(ascender, descender int16, numLong uint16) []byte {
	b := make([]byte, 36)
	binary.BigEndian.PutUint32(b[0:], 0x00010000)
	putU16(b, 4, uint16(ascender))
	putU16(b, 6, uint16(descender))
	putU16(b, 34, numLong)
	return b
}

func makeHMtx(metrics []MetricRecord, bearings ...int16) []byte {
	w := newStreamWriter()
	for _, m := range metrics {
		w.WriteUint16(m.Advance)
		w.WriteInt16(m.StartSideBearing)
	}
	for _, sb := range bearings {
		w.WriteInt16(sb)
	}
	return w.Bytes()
}

func makeOS2(xHeight, capHeight int16) []byte {
	b := make([]byte, 96)
	putU16(b, 0, 4)
	putU16(b, 68, 800)
	putU16(b, 70, uint16(0xFFFF-200+1)) // -200
	putU16(b, 86, uint16(xHeight))
	putU16(b, 88, uint16(capHeight))
	return b
}

// makeTestFont creates a font with 3 glyphs and a weight axis (100…400…900).
// HVAR lets the advances of glyphs 1 and 2 vary; MVAR varies the x-height.
func makeTestFont() []byte {
	return AssembleFont(makeTestTables())
}

func makeTestTables() map[Tag][]byte {
	fvar := EncodeFvar([]VariationAxis{
		{Tag: T("wght"), Min: IntToFixed(100), Default: IntToFixed(400), Max: IntToFixed(900)},
	}, nil)
	ivs, advances := makeTestAdvances()
	hvar := EncodeHVAR(ivs, GlyphVariations{Advances: advances})
	vlm := NewVarLocationMap(1)
	mvs := NewItemVariationStore(1)
	xhgt := NewVarValueRecord(500)
	xhgt.SetValue(vlm.Index(VarLocation{16384}), 540)
	mvar := EncodeMVAR(mvs, []MVarRecord{{Tag: T("xhgt"), Index: mvs.AddValue(vlm, xhgt)}})
	return map[Tag][]byte{
		T("head"): makeHead(1000),
		T("maxp"): makeMaxP(3),
		T("hhea"): makeHHea(800, -200, 2),
		T("hmtx"): makeHMtx([]MetricRecord{{500, 10}, {600, 20}}, 30),
		T("OS/2"): makeOS2(500, 700),
		T("post"): make([]byte, 32),
		T("fvar"): fvar,
		T("HVAR"): hvar,
		T("MVAR"): mvar,
	}
}
