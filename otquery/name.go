package otquery

import (
	"fmt"
	"iter"
	"slices"

	"github.com/npillmayer/otvar/ot"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/encoding/unicode"
)

const (
	nameHeaderSize = 6
	nameRecordSize = 12
)

// nameKey identifies a NameRecord entry in OpenType table 'name'.
// The key follows the OpenType NameRecord fields directly.
type nameKey struct {
	Platform PlatformID
	Encoding EncodingID
	Language uint16      // not supported
	Name     sfnt.NameID // see https://pkg.go.dev/golang.org/x/image/font/sfnt#NameID
}

// PlatformID is the platform of a name record.
type PlatformID uint16

const (
	PlatformIDUnicode   PlatformID = 0
	PlatformIDMacintosh PlatformID = 1 // not supported
	PlatformIDWindows   PlatformID = 3
)

// EncodingID is the platform-specific encoding of a name record.
type EncodingID uint16

const (
	EncodingIDUnicodeBMP    EncodingID = 3
	EncodingIDWindowsSymbol EncodingID = 0 // for now we will not support symbol fonts
	EncodingIDWindowsBMP    EncodingID = 1
)

// NamesRange yields decoded `(nameID, value)` pairs from a font's OpenType
// `name` table.
//
// Only currently supported encodings are yielded (Unicode BMP and Windows BMP),
// and malformed or out-of-bounds records are skipped.
func NamesRange(otf *ot.Font) iter.Seq2[sfnt.NameID, string] {
	names := checkNameTableSafe(otf)
	return func(yield func(sfnt.NameID, string) bool) {
		if names == nil {
			return
		}
		binary := names.Binary()
		count := int(u16(binary[2:4])) // number of name records
		stringStorageOffset := int(u16(binary[4:6]))
		for i := range count {
			recordSlice := binary[nameHeaderSize+i*nameRecordSize : nameHeaderSize+(i+1)*nameRecordSize]
			key := nameKey{
				Platform: PlatformID(u16(recordSlice[0:2])),
				Encoding: EncodingID(u16(recordSlice[2:4])),
				Language: u16(recordSlice[4:6]),
				Name:     sfnt.NameID(u16(recordSlice[6:8])),
			}
			if !isSupportedNameEncoding(key) {
				continue
			}
			strLen := int(u16(recordSlice[8:10]))
			recordOffset := int(u16(recordSlice[10:12]))
			start := stringStorageOffset + recordOffset
			end := start + strLen
			if start < 0 || strLen < 0 || end > len(binary) {
				continue
			}
			stringValue, err := decodeNameUTF16(binary[start:end])
			if err != nil || stringValue == "" {
				continue
			}
			if !yield(key.Name, stringValue) {
				return
			}
		}
	}
}

// checkNameTableSafe checks if the name table is safe to use, i.e. no out-of-bounds access,
// no empty tables, etc.
func checkNameTableSafe(otf *ot.Font) ot.Table {
	if otf == nil {
		return nil
	}
	table := otf.Table(ot.T("name"))
	if table == nil {
		tracer().Debugf("no name table found in font")
		return nil
	}
	b := table.Binary()
	if len(b) < nameHeaderSize {
		tracer().Debugf("name table too short: %d", len(b))
		return nil
	}
	count := int(u16(b[2:4]))
	strOff := int(u16(b[4:6]))
	if strOff < 0 || strOff > len(b) {
		tracer().Debugf("name table invalid string offset: %d", strOff)
		return nil
	}
	recordsEnd := nameHeaderSize + count*nameRecordSize
	if recordsEnd > len(b) {
		tracer().Debugf("name table record section out of bounds: count=%d", count)
		return nil
	}
	return table
}

func isSupportedNameEncoding(key nameKey) bool {
	// Keep current behavior: decode Unicode BMP + Windows BMP entries only.
	return (key.Platform == PlatformIDUnicode && key.Encoding == EncodingIDUnicodeBMP) ||
		(key.Platform == PlatformIDWindows && key.Encoding == EncodingIDWindowsBMP)
}

func decodeNameUTF16(str []byte) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	decoder := enc.NewDecoder()
	s, err := decoder.Bytes(str)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 error: %v", err)
	}
	return string(s), nil
}

// NameByID returns the first decodable entry of table name for a name ID.
// Variable fonts use IDs above 255 for the names of axes and instances.
func NameByID(otf *ot.Font, id uint16) (string, bool) {
	for nameID, value := range NamesRange(otf) {
		if uint16(nameID) == id {
			return value, true
		}
	}
	return "", false
}

// Axes lists the variation axes of a font, together with their names.
// Fonts without variation data have no axes.
func Axes(otf *ot.Font) []AxisInfo {
	da := otf.DesignAxes()
	if da == nil {
		return nil
	}
	axes := make([]AxisInfo, da.AxisCount())
	for i := range axes {
		a, _ := da.Axis(i)
		axes[i] = AxisInfo{
			Tag:     a.Tag,
			Min:     a.Min.Float(),
			Default: a.Default.Float(),
			Max:     a.Max.Float(),
			Hidden:  a.Flags&ot.AxisHidden != 0,
		}
		axes[i].Name, _ = NameByID(otf, a.NameID)
	}
	return axes
}

// Instances lists the named instances of a font, together with their names.
func Instances(otf *ot.Font) []InstanceInfo {
	da := otf.DesignAxes()
	if da == nil {
		return nil
	}
	instances := make([]InstanceInfo, len(da.Instances()))
	for i, inst := range da.Instances() {
		instances[i] = describeInstance(otf, da, i, inst)
	}
	return instances
}

// FindInstance returns the named instance located exactly at the user
// coordinates of inst.
func FindInstance(inst *Instance) (InstanceInfo, error) {
	otf := inst.Font()
	da := otf.DesignAxes()
	if da == nil {
		return InstanceInfo{}, ot.ErrNoVariationData
	}
	named, err := da.FindInstance(inst.UserCoords())
	if err != nil {
		return InstanceInfo{}, err
	}
	for i, candidate := range da.Instances() {
		if candidate.SubfamilyNameID == named.SubfamilyNameID && slices.Equal(candidate.Coords, named.Coords) {
			return describeInstance(otf, da, i, candidate), nil
		}
	}
	return InstanceInfo{}, ot.ErrInstanceNotFound
}

func describeInstance(otf *ot.Font, da *ot.DesignAxes, i int, inst ot.NamedInstance) InstanceInfo {
	info := InstanceInfo{Index: i, Coords: make(map[ot.Tag]float64, len(inst.Coords))}
	for j, c := range inst.Coords {
		a, _ := da.Axis(j)
		info.Coords[a.Tag] = c.Float()
	}
	info.Subfamily, _ = NameByID(otf, inst.SubfamilyNameID)
	if id, ok := inst.PostScriptNameID.Unwrap(); ok {
		info.PostScriptName, _ = NameByID(otf, id)
	}
	return info
}

// u16 reads a big-endian uint16; callers have checked the bounds.
func u16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}
