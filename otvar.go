package otvar

import (
	"fmt"
	"strings"

	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"golang.org/x/image/font/sfnt"
)

// FromBinary parses raw OpenType bytes and returns a decoded font.
//
// The input is expected to contain a complete single-font SFNT stream.
// It must not change after parsing for the font to be usable.
func FromBinary(data []byte) (*ot.Font, error) {
	return ot.Parse(data)
}

// FamilyName extracts family and subfamily names from a font's `name` table.
//
// Returned values are empty if no matching records exist or if records cannot be
// decoded by the current name-table reader.
func FamilyName(f *ot.Font) (family, subfamily string) {
	for nameId, stringValue := range otquery.NamesRange(f) {
		switch nameId {
		case sfnt.NameIDFamily:
			family = stringValue
		case sfnt.NameIDSubfamily:
			subfamily = stringValue
		}
	}
	return
}

// InstanceName returns a human readable name for a font instance: the
// subfamily name of a named instance at the same location, if there is one,
// otherwise the location itself, e.g. "wght=650 wdth=87.5".
// The default instance of a font without named instances is called after the
// font's subfamily.
func InstanceName(inst *otquery.Instance) string {
	if info, err := otquery.FindInstance(inst); err == nil && info.Subfamily != "" {
		return info.Subfamily
	}
	otf := inst.Font()
	if inst.IsDefault() {
		if _, subfamily := FamilyName(otf); subfamily != "" {
			return subfamily
		}
	}
	axes := otquery.Axes(otf)
	if len(axes) == 0 {
		return "Regular"
	}
	parts := make([]string, len(axes))
	for i, a := range axes {
		parts[i] = fmt.Sprintf("%s=%g", a.Tag, inst.UserCoords()[i].Float())
	}
	return strings.Join(parts, " ")
}
