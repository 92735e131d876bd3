package fontbuild

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/otvar/ot"
	"gopkg.in/yaml.v3"
)

// Design describes a variable font.
type Design struct {
	Family     string     `yaml:"family"`
	UnitsPerEm uint16     `yaml:"unitsPerEm"`
	Axes       []Axis     `yaml:"axes"`
	Masters    []Master   `yaml:"masters"`
	Instances  []Instance `yaml:"instances"`
}

// Axis describes a design axis in user coordinates. Map optionally lists
// avar mappings of normalized coordinates; (-1,-1), (0,0) and (1,1) are
// added if missing.
type Axis struct {
	Tag     string        `yaml:"tag"`
	Name    string        `yaml:"name"`
	Min     float64       `yaml:"min"`
	Default float64       `yaml:"default"`
	Max     float64       `yaml:"max"`
	Hidden  bool          `yaml:"hidden"`
	Map     []AxisMapping `yaml:"map"`
}

// AxisMapping maps a normalized coordinate to another one.
type AxisMapping struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
}

// Master is a source of glyph and font metrics at a location in design
// space. Locations are given in user coordinates; missing axes are at
// their default. Exactly one master has to be at the default location.
//
// Advances and Bearings hold one entry per glyph, or none if the master
// does not contribute to them. Metrics are keyed by MVAR value tag,
// e.g. "xhgt".
type Master struct {
	Name     string             `yaml:"name"`
	Location map[string]float64 `yaml:"location"`
	Advances []int32            `yaml:"advances"`
	Bearings []int32            `yaml:"bearings"`
	Metrics  map[string]int32   `yaml:"metrics"`
}

// Instance is a named instance of the font.
type Instance struct {
	Name           string             `yaml:"name"`
	PostScriptName string             `yaml:"postscriptName"`
	Location       map[string]float64 `yaml:"location"`
}

// ErrInvalidDesign is returned for designs which cannot be built.
var ErrInvalidDesign = errors.New("invalid font design")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDesign, fmt.Sprintf(format, args...))
}

// ParseDesign reads a design description from YAML and validates it.
func ParseDesign(data []byte) (*Design, error) {
	d := &Design{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDesign, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks a design for consistency and sets defaults for the family
// name and units per em.
func (d *Design) Validate() error {
	if d.Family == "" {
		d.Family = "Untitled"
	}
	if d.UnitsPerEm == 0 {
		d.UnitsPerEm = 1000
	}
	if d.UnitsPerEm < 16 || d.UnitsPerEm > 16384 {
		return invalid("units per em out of range: %d", d.UnitsPerEm)
	}
	if len(d.Axes) == 0 || len(d.Axes) > ot.MaxAxes {
		return invalid("design needs 1 to %d axes, has %d", ot.MaxAxes, len(d.Axes))
	}
	tags := make(map[string]Axis)
	for _, a := range d.Axes {
		if len(a.Tag) != 4 {
			return invalid("axis tag %q does not have 4 characters", a.Tag)
		}
		if _, dup := tags[a.Tag]; dup {
			return invalid("duplicate axis %s", a.Tag)
		}
		tags[a.Tag] = a
		if a.Min > a.Default || a.Default > a.Max {
			return invalid("axis %s: need min ≤ default ≤ max", a.Tag)
		}
		for _, m := range a.Map {
			if m.From < -1 || m.From > 1 || m.To < -1 || m.To > 1 {
				return invalid("axis %s: mapping (%g, %g) outside [-1, 1]", a.Tag, m.From, m.To)
			}
		}
	}
	checkLocation := func(what string, loc map[string]float64) error {
		for tag, v := range loc {
			a, ok := tags[tag]
			if !ok {
				return invalid("%s refers to unknown axis %s", what, tag)
			}
			if v < a.Min || v > a.Max {
				return invalid("%s: %s=%g outside axis range", what, tag, v)
			}
		}
		return nil
	}
	if len(d.Masters) == 0 {
		return invalid("design has no masters")
	}
	glyphs := d.GlyphCount()
	if glyphs == 0 || glyphs > 0xFFFF {
		return invalid("glyph count %d out of range", glyphs)
	}
	for i, m := range d.Masters {
		if err := checkLocation(fmt.Sprintf("master %d", i), m.Location); err != nil {
			return err
		}
		if len(m.Advances) != 0 && len(m.Advances) != glyphs {
			return invalid("master %d has %d advances, expected %d", i, len(m.Advances), glyphs)
		}
		if len(m.Bearings) != 0 && len(m.Bearings) != glyphs {
			return invalid("master %d has %d bearings, expected %d", i, len(m.Bearings), glyphs)
		}
		for tag := range m.Metrics {
			if _, ok := ot.MVarTags[ot.T(tag)]; !ok || len(tag) != 4 || strings.HasPrefix(tag, "gsp") {
				return invalid("master %d: unsupported metric %q", i, tag)
			}
		}
	}
	for i, inst := range d.Instances {
		if err := checkLocation(fmt.Sprintf("instance %d", i), inst.Location); err != nil {
			return err
		}
		if inst.Name == "" {
			return invalid("instance %d has no name", i)
		}
	}
	return nil
}

// GlyphCount returns the number of glyphs, i.e. the largest number of
// advances of any master.
func (d *Design) GlyphCount() int {
	n := 0
	for _, m := range d.Masters {
		n = max(n, len(m.Advances))
	}
	return n
}

// userCoords returns a location as user coordinates, one per axis.
func (d *Design) userCoords(loc map[string]float64) []ot.Fixed {
	coords := make([]ot.Fixed, len(d.Axes))
	for i, a := range d.Axes {
		v, ok := loc[a.Tag]
		if !ok {
			v = a.Default
		}
		coords[i] = ot.FixedFromFloat(v)
	}
	return coords
}

// PostScriptName returns the PostScript name of the default instance.
func (d *Design) PostScriptName() string {
	return psName(d.Family, "Regular")
}

func psName(family, style string) string {
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r <= ' ' || r > '~' || strings.ContainsRune("[](){}<>/%", r) {
				return -1
			}
			return r
		}, s)
	}
	return clean(family) + "-" + clean(style)
}
