package ot

import (
	"fmt"
	"slices"
	"sort"
)

// MVarTable holds the variations of font-wide metrics (table MVAR), such as
// ascender or x-height. Each value record references a row of the item
// variation store by a tag identifying the metric.
type MVarTable struct {
	tableBase
	Store   *ItemVariationStore
	records []MVarRecord // sorted by tag, unique
}

// MVarRecord associates a metric tag with a row of the item variation store.
type MVarRecord struct {
	Tag   Tag
	Index VarIndex
}

const (
	mvarHeaderSize     = 12
	mvarMinRecordSize  = 8
	mvarEncodedRecSize = 8
)

// MVarTags lists the registered value tags of table MVAR together with the
// field each of them varies.
var MVarTags = map[Tag]string{
	T("hasc"): "OS/2.sTypoAscender",
	T("hdsc"): "OS/2.sTypoDescender",
	T("hlgp"): "OS/2.sTypoLineGap",
	T("hcla"): "OS/2.usWinAscent",
	T("hcld"): "OS/2.usWinDescent",
	T("vasc"): "vhea.ascent",
	T("vdsc"): "vhea.descent",
	T("vlgp"): "vhea.lineGap",
	T("hcrs"): "hhea.caretSlopeRise",
	T("hcrn"): "hhea.caretSlopeRun",
	T("hcof"): "hhea.caretOffset",
	T("vcrs"): "vhea.caretSlopeRise",
	T("vcrn"): "vhea.caretSlopeRun",
	T("vcof"): "vhea.caretOffset",
	T("xhgt"): "OS/2.sxHeight",
	T("cpht"): "OS/2.sCapHeight",
	T("sbxs"): "OS/2.ySubscriptXSize",
	T("sbys"): "OS/2.ySubscriptYSize",
	T("sbxo"): "OS/2.ySubscriptXOffset",
	T("sbyo"): "OS/2.ySubscriptYOffset",
	T("spxs"): "OS/2.ySuperscriptXSize",
	T("spys"): "OS/2.ySuperscriptYSize",
	T("spxo"): "OS/2.ySuperscriptXOffset",
	T("spyo"): "OS/2.ySuperscriptYOffset",
	T("strs"): "OS/2.yStrikeoutSize",
	T("stro"): "OS/2.yStrikeoutPosition",
	T("unds"): "post.underlineThickness",
	T("undo"): "post.underlinePosition",
	T("gsp0"): "gasp.gaspRange[0]",
	T("gsp1"): "gasp.gaspRange[1]",
	T("gsp2"): "gasp.gaspRange[2]",
	T("gsp3"): "gasp.gaspRange[3]",
	T("gsp4"): "gasp.gaspRange[4]",
	T("gsp5"): "gasp.gaspRange[5]",
	T("gsp6"): "gasp.gaspRange[6]",
	T("gsp7"): "gasp.gaspRange[7]",
	T("gsp8"): "gasp.gaspRange[8]",
	T("gsp9"): "gasp.gaspRange[9]",
}

func newMVarTable(tag Tag, b binarySegm, offset, size uint32) *MVarTable {
	t := &MVarTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// parseMVar reads table MVAR. A malformed header or item variation store drops
// the table. Records referencing rows outside of the store are dropped
// individually.
func parseMVar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	if size < mvarHeaderSize {
		ec.addError(tag, "Header", fmt.Sprintf("table too small: %d bytes", size), SeverityMajor, offset)
		return nil
	}
	r := b.stream(0)
	major, minor := r.ReadUint16(), r.ReadUint16()
	if major != 1 || minor != 0 {
		ec.addError(tag, "Header", fmt.Sprintf("unsupported version %d.%d", major, minor), SeverityMajor, offset)
		return nil
	}
	_ = r.ReadUint16() // reserved
	recordSize := int(r.ReadUint16())
	recordCount := int(r.ReadUint16())
	ivsOffset := uint32(r.ReadUint16())
	if recordCount > 0 && recordSize < mvarMinRecordSize {
		ec.addError(tag, "Header", fmt.Sprintf("value record size %d too small", recordSize), SeverityMajor, offset)
		return nil
	}
	if recordCount > MaxMVarRecordCount {
		ec.addError(tag, "Header", fmt.Sprintf("value record count too large: %d", recordCount), SeverityMajor, offset)
		return nil
	}
	if !b.fits(mvarHeaderSize, uint64(recordCount)*uint64(recordSize)) {
		ec.addError(tag, "ValueRecords", "value records out of bounds", SeverityMajor, offset)
		return nil
	}
	t := newMVarTable(tag, b, offset, size)
	if ivsOffset == 0 {
		if recordCount > 0 {
			ec.addError(tag, "Header", "value records without item variation store", SeverityMajor, offset)
			return nil
		}
		t.Store = &ItemVariationStore{}
		return t
	}
	store, err := parseItemVariationStore(tag, b, ivsOffset, offset, ec)
	if err != nil {
		return nil
	}
	t.Store = store
	t.records = make([]MVarRecord, 0, recordCount)
	sorted := true
	for i := range recordCount {
		at := uint32(mvarHeaderSize + i*recordSize)
		r.Seek(at)
		rec := MVarRecord{Tag: Tag(r.ReadUint32())}
		rec.Index.Outer = r.ReadUint16()
		rec.Index.Inner = r.ReadUint16()
		if !store.contains(rec.Index) {
			ec.addError(tag, "ValueRecords", fmt.Sprintf("record %s: variation index %v out of range",
				rec.Tag, rec.Index), SeverityMinor, offset+at)
			continue
		}
		if n := len(t.records); n > 0 && t.records[n-1].Tag >= rec.Tag {
			sorted = false
		}
		t.records = append(t.records, rec)
	}
	if !sorted {
		ec.addWarning(tag, "value records not sorted by tag", offset+mvarHeaderSize)
		sort.SliceStable(t.records, func(i, j int) bool {
			return t.records[i].Tag < t.records[j].Tag
		})
		// the first of a number of duplicates wins
		t.records = slices.CompactFunc(t.records, func(a, b MVarRecord) bool {
			return a.Tag == b.Tag
		})
	}
	return t
}

// contains reports whether vi addresses an existing row of the store.
func (ivs *ItemVariationStore) contains(vi VarIndex) bool {
	return int(vi.Outer) < ivs.SubtableCount() && int(vi.Inner) < ivs.subtables[vi.Outer].ItemCount()
}

// Records returns the value records, sorted by tag.
func (t *MVarTable) Records() []MVarRecord {
	if t == nil {
		return nil
	}
	return t.records
}

// Lookup returns the variation index for a metric tag.
func (t *MVarTable) Lookup(tag Tag) (VarIndex, bool) {
	if t == nil {
		return NoVariation, false
	}
	i := sort.Search(len(t.records), func(i int) bool {
		return t.records[i].Tag >= tag
	})
	if i < len(t.records) && t.records[i].Tag == tag {
		return t.records[i].Index, true
	}
	return NoVariation, false
}

// Delta returns the variation of the metric identified by tag, given the
// region scalars of an instance. ok is false if the metric does not vary.
func (t *MVarTable) Delta(tag Tag, scalars []Fixed) (Fixed, bool) {
	vi, ok := t.Lookup(tag)
	if !ok {
		return 0, false
	}
	return t.Store.ApplyDeltasForIndexPair(vi, scalars), true
}

// EncodeMVAR produces the binary form of table MVAR. Records with the
// NoVariation sentinel are left out; the others are written sorted by tag.
func EncodeMVAR(ivs *ItemVariationStore, records []MVarRecord) []byte {
	recs := make([]MVarRecord, 0, len(records))
	for _, rec := range records {
		if rec.Index != NoVariation {
			recs = append(recs, rec)
		}
	}
	slices.SortStableFunc(recs, func(a, b MVarRecord) int {
		switch {
		case a.Tag < b.Tag:
			return -1
		case a.Tag > b.Tag:
			return 1
		}
		return 0
	})
	recs = slices.CompactFunc(recs, func(a, b MVarRecord) bool { return a.Tag == b.Tag })
	ivsOffset := mvarHeaderSize + mvarEncodedRecSize*len(recs)
	if ivsOffset > 0xFFFF {
		panic(fmt.Sprintf("MVAR item variation store offset %d exceeds 16 bits", ivsOffset))
	}
	w := newStreamWriter()
	w.WriteUint16(1) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteUint16(0) // reserved
	w.WriteUint16(mvarEncodedRecSize)
	w.WriteUint16(uint16(len(recs)))
	w.WriteUint16(uint16(ivsOffset))
	for _, rec := range recs {
		w.WriteUint32(uint32(rec.Tag))
		w.WriteUint16(rec.Index.Outer)
		w.WriteUint16(rec.Index.Inner)
	}
	w.WriteBytes(ivs.Encode())
	return w.Bytes()
}
