package ot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"
)

// VarLocation is a location in normalized design space, one coordinate per axis.
// Master locations are usually sparse, i.e. most coordinates are 0.
type VarLocation []F2Dot14

// Fixed returns the coordinates of the location in 16.16 format.
func (loc VarLocation) Fixed() []Fixed {
	coords := make([]Fixed, len(loc))
	for i, c := range loc {
		coords[i] = c.Fixed()
	}
	return coords
}

// IsDefault reports whether all coordinates are 0.
func (loc VarLocation) IsDefault() bool {
	for _, c := range loc {
		if c != 0 {
			return false
		}
	}
	return true
}

func (loc VarLocation) String() string {
	parts := make([]string, len(loc))
	for i, c := range loc {
		parts[i] = fmt.Sprintf("%.4g", c.Float())
	}
	return "<" + strings.Join(parts, ",") + ">"
}

// compareLocations orders locations lexicographically.
func compareLocations(a, b interface{}) int {
	return slices.Compare(a.(VarLocation), b.(VarLocation))
}

// VarLocationMap is a de-duplicated set of master locations. Each distinct
// location is assigned a stable id, in order of insertion. Id 0 is always the
// default location (all coordinates 0).
//
// A VarLocationMap is filled before variation data is built. Once filled it
// may be shared between goroutines for reading.
type VarLocationMap struct {
	axisCount int
	ids       *treemap.Map // VarLocation → uint32
	locations []VarLocation
}

// NewVarLocationMap creates a location map for a design space with axisCount axes.
func NewVarLocationMap(axisCount int) *VarLocationMap {
	m := &VarLocationMap{
		axisCount: axisCount,
		ids:       treemap.NewWith(compareLocations),
	}
	m.Index(make(VarLocation, axisCount))
	return m
}

// AxisCount returns the number of axes of the design space.
func (m *VarLocationMap) AxisCount() int {
	return m.axisCount
}

// Len returns the number of distinct locations, including the default location.
func (m *VarLocationMap) Len() int {
	return len(m.locations)
}

// Index returns the id of a location, adding the location if it is not yet known.
func (m *VarLocationMap) Index(loc VarLocation) uint32 {
	assertEqualInt("location axis count", len(loc), m.axisCount)
	if id, found := m.ids.Get(loc); found {
		return id.(uint32)
	}
	id := uint32(len(m.locations))
	loc = slices.Clone(loc)
	m.ids.Put(loc, id)
	m.locations = append(m.locations, loc)
	return id
}

// Lookup returns the id of a location, if the location is known.
func (m *VarLocationMap) Lookup(loc VarLocation) (uint32, bool) {
	if len(loc) != m.axisCount {
		return 0, false
	}
	if id, found := m.ids.Get(loc); found {
		return id.(uint32), true
	}
	return 0, false
}

// Location returns the location for id. Unknown ids are a programming error.
func (m *VarLocationMap) Location(id uint32) VarLocation {
	if int(id) >= len(m.locations) {
		panic(fmt.Sprintf("location id %d not in location map (%d locations)", id, len(m.locations)))
	}
	return m.locations[id]
}

// --- Value records ---------------------------------------------------------

// VarValueRecord is a value with a default and sparse overrides at master
// locations, keyed by location id of a VarLocationMap.
type VarValueRecord struct {
	Default   int32
	overrides map[uint32]int32
}

// NewVarValueRecord creates a value record without overrides.
func NewVarValueRecord(dflt int32) *VarValueRecord {
	return &VarValueRecord{Default: dflt, overrides: make(map[uint32]int32)}
}

// SetValue sets the value at a location. Setting location 0 sets the default.
func (rec *VarValueRecord) SetValue(locID uint32, v int32) {
	if locID == 0 {
		rec.Default = v
		return
	}
	if rec.overrides == nil {
		rec.overrides = make(map[uint32]int32)
	}
	rec.overrides[locID] = v
}

// Value returns the value at a location, if the record has one.
func (rec *VarValueRecord) Value(locID uint32) (int32, bool) {
	if locID == 0 {
		return rec.Default, true
	}
	v, ok := rec.overrides[locID]
	return v, ok
}

// IsVariable reports whether the record has an override beyond the default.
func (rec *VarValueRecord) IsVariable() bool {
	return len(rec.overrides) > 0
}

// LocationIDs returns the sorted ids of all locations with an override.
func (rec *VarValueRecord) LocationIDs() []uint32 {
	ids := make([]uint32, 0, len(rec.overrides))
	for id := range rec.overrides {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
