package fontbuild

import (
	"slices"

	"github.com/tdewolff/parse/v2"
	"golang.org/x/text/encoding/unicode"
)

// Encoders for the tables of default metrics. Values which do not concern
// metrics are written as zero or as a neutral default.

func encodeHead(unitsPerEm uint16) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(1)          // majorVersion
	w.WriteUint16(0)          // minorVersion
	w.WriteUint32(0x00010000) // fontRevision
	w.WriteUint32(0)          // checksumAdjustment, set when assembling the font
	w.WriteUint32(0x5F0F3CF5) // magicNumber
	w.WriteUint16(0x0003)     // flags: baseline at y=0, left sidebearing at x=0
	w.WriteUint16(unitsPerEm)
	w.WriteBytes(make([]byte, 16)) // created, modified
	w.WriteBytes(make([]byte, 8))  // xMin, yMin, xMax, yMax
	w.WriteUint16(0)               // macStyle
	w.WriteUint16(8)               // lowestRecPPEM
	w.WriteInt16(2)                // fontDirectionHint
	w.WriteInt16(0)                // indexToLocFormat
	w.WriteInt16(0)                // glyphDataFormat
	return w.Bytes()
}

func encodeMaxP(numGlyphs int) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00005000) // version 0.5
	w.WriteUint16(uint16(numGlyphs))
	return w.Bytes()
}

// longMetricsCount returns the number of long metrics for hmtx: trailing
// glyphs with the same advance share the last long metric.
func longMetricsCount(advances []int32) int {
	n := len(advances)
	for n > 1 && advances[n-1] == advances[n-2] {
		n--
	}
	return n
}

func encodeHHea(metrics map[string]int32, advances, bearings []int32) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(1) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteInt16(int16(metrics["hasc"]))
	w.WriteInt16(int16(metrics["hdsc"]))
	w.WriteInt16(int16(metrics["hlgp"]))
	w.WriteUint16(uint16(slices.Max(advances)))
	w.WriteInt16(int16(slices.Min(bearings))) // minLeftSideBearing
	w.WriteInt16(0)                           // minRightSideBearing
	w.WriteInt16(0)                           // xMaxExtent
	rise, ok := metrics["hcrs"]
	if !ok {
		rise = 1
	}
	w.WriteInt16(int16(rise))
	w.WriteInt16(int16(metrics["hcrn"]))
	w.WriteInt16(int16(metrics["hcof"]))
	w.WriteBytes(make([]byte, 8)) // reserved
	w.WriteInt16(0)               // metricDataFormat
	w.WriteUint16(uint16(longMetricsCount(advances)))
	return w.Bytes()
}

func encodeHMtx(advances, bearings []int32) []byte {
	w := parse.NewBinaryWriter([]byte{})
	n := longMetricsCount(advances)
	for gid := range n {
		w.WriteUint16(uint16(advances[gid]))
		w.WriteInt16(int16(bearings[gid]))
	}
	for _, lsb := range bearings[n:] {
		w.WriteInt16(int16(lsb))
	}
	return w.Bytes()
}

// encodeOS2 writes an OS/2 table of version 4.
func encodeOS2(metrics map[string]int32, advances []int32, weightClass uint16) []byte {
	var sum, count int64
	for _, adv := range advances {
		if adv > 0 {
			sum, count = sum+int64(adv), count+1
		}
	}
	avg := int16(0)
	if count > 0 {
		avg = int16((sum + count/2) / count)
	}
	m := func(tag string) int16 { return int16(metrics[tag]) }
	winAscent, ok := metrics["hcla"]
	if !ok {
		winAscent = max(metrics["hasc"], 0)
	}
	winDescent, ok := metrics["hcld"]
	if !ok {
		winDescent = max(-metrics["hdsc"], 0)
	}
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(4) // version
	w.WriteInt16(avg)
	w.WriteUint16(weightClass)
	w.WriteUint16(5) // usWidthClass: medium
	w.WriteUint16(0) // fsType: installable
	for _, tag := range []string{"sbxs", "sbys", "sbxo", "sbyo", "spxs", "spys", "spxo", "spyo", "strs", "stro"} {
		w.WriteInt16(m(tag))
	}
	w.WriteInt16(0)                // sFamilyClass
	w.WriteBytes(make([]byte, 10)) // panose
	w.WriteBytes(make([]byte, 16)) // ulUnicodeRange1-4
	w.WriteBytes([]byte("NONE"))   // achVendID
	w.WriteUint16(0x0040)          // fsSelection: REGULAR
	w.WriteUint16(0)               // usFirstCharIndex
	w.WriteUint16(0)               // usLastCharIndex
	w.WriteInt16(m("hasc"))
	w.WriteInt16(m("hdsc"))
	w.WriteInt16(m("hlgp"))
	w.WriteUint16(uint16(winAscent))
	w.WriteUint16(uint16(winDescent))
	w.WriteBytes(make([]byte, 8)) // ulCodePageRange1-2
	w.WriteInt16(m("xhgt"))
	w.WriteInt16(m("cpht"))
	w.WriteUint16(0)  // usDefaultChar
	w.WriteUint16(32) // usBreakChar
	w.WriteUint16(0)  // usMaxContext
	return w.Bytes()
}

// encodePost writes a post table of version 3.0, i.e. without glyph names.
func encodePost(metrics map[string]int32) []byte {
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint32(0x00030000)
	w.WriteUint32(0) // italicAngle
	w.WriteInt16(int16(metrics["undo"]))
	w.WriteInt16(int16(metrics["unds"]))
	w.WriteBytes(make([]byte, 20)) // isFixedPitch, memory usage
	return w.Bytes()
}

// --- name table ------------------------------------------------------------

// nameTable collects Windows Unicode BMP name records (platform 3, encoding 1,
// language en-US).
type nameTable struct {
	records map[uint16]string
	next    uint16 // next free name ID for font-specific names
}

func newNameTable() *nameTable {
	return &nameTable{records: make(map[uint16]string), next: 256}
}

func (nt *nameTable) add(id uint16, value string) {
	nt.records[id] = value
}

// addNew adds a font-specific name and returns its ID. Identical names share
// an ID. If value is empty, fallback is used instead; if both are empty, no
// name is added and 0 is returned.
func (nt *nameTable) addNew(value, fallback string) uint16 {
	if value == "" {
		value = fallback
	}
	if value == "" {
		return 0
	}
	for id, v := range nt.records {
		if id >= 256 && v == value {
			return id
		}
	}
	id := nt.next
	nt.records[id] = value
	nt.next++
	return id
}

func (nt *nameTable) encode() []byte {
	ids := make([]uint16, 0, len(nt.records))
	for id := range nt.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	storage := parse.NewBinaryWriter([]byte{})
	w := parse.NewBinaryWriter([]byte{})
	w.WriteUint16(0) // format
	w.WriteUint16(uint16(len(ids)))
	w.WriteUint16(uint16(6 + 12*len(ids)))
	for _, id := range ids {
		s, err := enc.String(nt.records[id])
		if err != nil {
			tracer().Errorf("name %d cannot be encoded: %v", id, err)
			s = ""
		}
		w.WriteUint16(3)      // platformID: Windows
		w.WriteUint16(1)      // encodingID: Unicode BMP
		w.WriteUint16(0x0409) // languageID: en-US
		w.WriteUint16(id)
		w.WriteUint16(uint16(len(s)))
		w.WriteUint16(uint16(storage.Len()))
		storage.WriteBytes([]byte(s))
	}
	w.WriteBytes(storage.Bytes())
	return w.Bytes()
}
