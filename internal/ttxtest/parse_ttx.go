package ttxtest

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseTTX reads a ttx dump and extracts the tables fvar, avar and MVAR.
func ParseTTX(path string) (*Expected, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTTXBytes(data)
}

// ParseTTXBytes is ParseTTX for a dump held in memory.
func ParseTTXBytes(data []byte) (*Expected, error) {
	var doc ttxFont
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ttx: %w", err)
	}
	exp := &Expected{}
	var err error
	if doc.Fvar != nil {
		if exp.Fvar, err = normalizeFvar(doc.Fvar); err != nil {
			return nil, fmt.Errorf("fvar: %w", err)
		}
	}
	if doc.Avar != nil {
		if exp.Avar, err = normalizeAvar(doc.Avar); err != nil {
			return nil, fmt.Errorf("avar: %w", err)
		}
	}
	if doc.MVAR != nil {
		if exp.MVAR, err = normalizeMVAR(doc.MVAR); err != nil {
			return nil, fmt.Errorf("MVAR: %w", err)
		}
	}
	return exp, nil
}

func normalizeFvar(t *ttxFvar) (*ExpectedFvar, error) {
	out := &ExpectedFvar{}
	for i, a := range t.Axes {
		axis := ExpectedAxis{Tag: strings.TrimSpace(a.Tag)}
		if len(axis.Tag) != 4 {
			return nil, fmt.Errorf("axis %d: invalid tag %q", i, a.Tag)
		}
		var err error
		if axis.Min, err = parseFloat(a.Min); err != nil {
			return nil, fmt.Errorf("axis %s: MinValue: %w", axis.Tag, err)
		}
		if axis.Default, err = parseFloat(a.Default); err != nil {
			return nil, fmt.Errorf("axis %s: DefaultValue: %w", axis.Tag, err)
		}
		if axis.Max, err = parseFloat(a.Max); err != nil {
			return nil, fmt.Errorf("axis %s: MaxValue: %w", axis.Tag, err)
		}
		if axis.Flags, err = parseUint16(a.Flags, 0); err != nil {
			return nil, fmt.Errorf("axis %s: Flags: %w", axis.Tag, err)
		}
		if axis.NameID, err = parseUint16(a.NameID, 0); err != nil {
			return nil, fmt.Errorf("axis %s: AxisNameID: %w", axis.Tag, err)
		}
		out.Axes = append(out.Axes, axis)
	}
	for i, ni := range t.Instances {
		inst := ExpectedInstance{Coords: make(map[string]float64, len(ni.Coords))}
		var err error
		if inst.Flags, err = parseUint16(ni.Flags, 0); err != nil {
			return nil, fmt.Errorf("instance %d: flags: %w", i, err)
		}
		if inst.SubfamilyNameID, err = parseUint16(ni.SubfamilyNameID, 0); err != nil {
			return nil, fmt.Errorf("instance %d: subfamilyNameID: %w", i, err)
		}
		if inst.PostScriptNameID, err = parseUint16(ni.PostScriptNameID, 0xFFFF); err != nil {
			return nil, fmt.Errorf("instance %d: postscriptNameID: %w", i, err)
		}
		for _, c := range ni.Coords {
			v, err := parseFloat(c.Value)
			if err != nil {
				return nil, fmt.Errorf("instance %d: coord %s: %w", i, c.Axis, err)
			}
			inst.Coords[c.Axis] = v
		}
		out.Instances = append(out.Instances, inst)
	}
	return out, nil
}

func normalizeAvar(t *ttxAvar) (*ExpectedAvar, error) {
	out := &ExpectedAvar{Segments: make(map[string][]ExpectedMapping)}
	for _, seg := range t.Segments {
		if len(seg.Mappings) == 0 {
			continue
		}
		if _, dup := out.Segments[seg.Axis]; dup {
			return nil, fmt.Errorf("duplicate segment for axis %s", seg.Axis)
		}
		mappings := make([]ExpectedMapping, len(seg.Mappings))
		for i, m := range seg.Mappings {
			var err error
			if mappings[i].From, err = parseFloat(m.From); err != nil {
				return nil, fmt.Errorf("axis %s: mapping %d: %w", seg.Axis, i, err)
			}
			if mappings[i].To, err = parseFloat(m.To); err != nil {
				return nil, fmt.Errorf("axis %s: mapping %d: %w", seg.Axis, i, err)
			}
		}
		out.Segments[seg.Axis] = mappings
	}
	return out, nil
}

func normalizeMVAR(t *ttxMVAR) (*ExpectedMVAR, error) {
	out := &ExpectedMVAR{}
	for i, r := range t.Records {
		tag := r.Tag.Value
		if len(tag) != 4 {
			return nil, fmt.Errorf("value record %d: invalid tag %q", i, tag)
		}
		idx, err := r.VarIdx.Int()
		if err != nil {
			return nil, fmt.Errorf("value record %s: %w", tag, err)
		}
		out.Records = append(out.Records, ExpectedValueRecord{Tag: tag, VarIdx: uint32(idx)})
	}
	return out, nil
}

// --- XML model ---------------------------------------------------------

type ttxFont struct {
	XMLName xml.Name `xml:"ttFont"`
	Fvar    *ttxFvar `xml:"fvar"`
	Avar    *ttxAvar `xml:"avar"`
	MVAR    *ttxMVAR `xml:"MVAR"`
}

type ttxFvar struct {
	Axes      []ttxAxis          `xml:"Axis"`
	Instances []ttxNamedInstance `xml:"NamedInstance"`
}

type ttxAxis struct {
	Tag     string `xml:"AxisTag"`
	Flags   string `xml:"Flags"`
	Min     string `xml:"MinValue"`
	Default string `xml:"DefaultValue"`
	Max     string `xml:"MaxValue"`
	NameID  string `xml:"AxisNameID"`
}

type ttxNamedInstance struct {
	Flags            string     `xml:"flags,attr"`
	SubfamilyNameID  string     `xml:"subfamilyNameID,attr"`
	PostScriptNameID string     `xml:"postscriptNameID,attr"`
	Coords           []ttxCoord `xml:"coord"`
}

type ttxCoord struct {
	Axis  string `xml:"axis,attr"`
	Value string `xml:"value,attr"`
}

type ttxAvar struct {
	Segments []ttxSegment `xml:"segment"`
}

type ttxSegment struct {
	Axis     string       `xml:"axis,attr"`
	Mappings []ttxMapping `xml:"mapping"`
}

type ttxMapping struct {
	From string `xml:"from,attr"`
	To   string `xml:"to,attr"`
}

type ttxMVAR struct {
	Records []ttxValueRecord `xml:"ValueRecord"`
}

type ttxValueRecord struct {
	Tag    ttxValue `xml:"ValueTag"`
	VarIdx ttxValue `xml:"VarIdx"`
}

type ttxValue struct {
	Value string `xml:"value,attr"`
}

func (v ttxValue) Int() (int64, error) {
	if v.Value == "" {
		return 0, fmt.Errorf("missing value")
	}
	return parseInt(v.Value)
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseInt(s[2:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}

// parseUint16 returns dflt for an empty string.
func parseUint16(s string, dflt uint16) (uint16, error) {
	if strings.TrimSpace(s) == "" {
		return dflt, nil
	}
	n, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 0xFFFF {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return uint16(n), nil
}

func parseFloat(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
