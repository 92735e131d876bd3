package ot

import (
	"fmt"
)

// DesignAxes combines the axes of table fvar with the segment maps of table avar.
// It maps user coordinates (e.g., a weight of 700) to normalized coordinates
// in [-1, 1], which is the coordinate space of all variation data.
//
// DesignAxes is immutable and may be shared between goroutines.
type DesignAxes struct {
	axes        []VariationAxis
	instances   []NamedInstance
	segmentMaps []Option[SegmentMap] // nil or one per axis
}

func newDesignAxes(fvar *FvarTable, avar *AvarTable) *DesignAxes {
	da := &DesignAxes{
		axes:      fvar.Axes,
		instances: fvar.Instances,
	}
	if avar != nil && len(avar.SegmentMaps) == len(fvar.Axes) {
		da.segmentMaps = avar.SegmentMaps
	}
	return da
}

// LoadDesignAxes decodes the binary data of table fvar and (optionally) avar.
// If fvar cannot be decoded, ErrNoVariationData is returned, wrapping the
// decode error. An avar table with a different axis count than fvar
// is ignored.
func LoadDesignAxes(fvar, avar []byte) (*DesignAxes, error) {
	ec := &errorCollector{}
	ft := parseFvar(T("fvar"), fvar, 0, uint32(len(fvar)), ec)
	if ft == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoVariationData, ec.errors[0])
	}
	var at *AvarTable
	if len(avar) > 0 {
		if t := parseAvar(T("avar"), avar, 0, uint32(len(avar)), ec); t != nil {
			at = t.Self().AsAvar()
		}
	}
	fv := ft.Self().AsFvar()
	if at != nil && len(at.SegmentMaps) != len(fv.Axes) {
		tracer().Infof("avar axis count %d does not match fvar axis count %d, avar ignored",
			len(at.SegmentMaps), len(fv.Axes))
		at = nil
	}
	return newDesignAxes(fv, at), nil
}

// AxisCount returns the number of axes. Coordinate vectors have this length.
func (da *DesignAxes) AxisCount() int {
	if da == nil {
		return 0
	}
	return len(da.axes)
}

// Axis returns the axis record at index i.
func (da *DesignAxes) Axis(i int) (VariationAxis, error) {
	if i < 0 || i >= da.AxisCount() {
		return VariationAxis{}, fmt.Errorf("%w: %d", ErrAxisIndex, i)
	}
	return da.axes[i], nil
}

// AxisIndex returns the index of the axis with tag t, or -1.
func (da *DesignAxes) AxisIndex(t Tag) int {
	for i := 0; i < da.AxisCount(); i++ {
		if da.axes[i].Tag == t {
			return i
		}
	}
	return -1
}

// Instances returns the named instances declared in fvar.
func (da *DesignAxes) Instances() []NamedInstance {
	if da == nil {
		return nil
	}
	return da.instances
}

// SegmentMap returns the avar segment map of axis i, if there is one.
func (da *DesignAxes) SegmentMap(i int) Option[SegmentMap] {
	if da == nil || i < 0 || i >= len(da.segmentMaps) {
		return None[SegmentMap]()
	}
	return da.segmentMaps[i]
}

// DefaultCoords returns the user coordinates of the default instance.
func (da *DesignAxes) DefaultCoords() []Fixed {
	coords := make([]Fixed, da.AxisCount())
	for i := range coords {
		coords[i] = da.axes[i].Default
	}
	return coords
}

// NormalizeCoord maps a user coordinate of axis i to normalized design space.
// Values are clamped to the axis range, then mapped piecewise linearly
// min → -1, default → 0, max → 1, and finally remapped through the
// axis' segment map, if present. An invalid axis index yields 0 (the default).
func (da *DesignAxes) NormalizeCoord(i int, user Fixed) Fixed {
	if i < 0 || i >= da.AxisCount() {
		tracer().Errorf("normalize coordinate: axis index %d out of range", i)
		return 0
	}
	a := da.axes[i]
	var v Fixed
	switch {
	case user < a.Default:
		if user <= a.Min {
			v = -FixedOne
		} else {
			v = max(-FixedOne, fixedRatio(int64(user)-int64(a.Default), int64(a.Default)-int64(a.Min)))
		}
	case user > a.Default:
		if user >= a.Max {
			v = FixedOne
		} else {
			v = min(FixedOne, fixedRatio(int64(user)-int64(a.Default), int64(a.Max)-int64(a.Default)))
		}
	}
	if m, ok := da.SegmentMap(i).Unwrap(); ok {
		v = m.Map(v)
	}
	return v
}

// NormalizeCoords maps a vector of user coordinates, one per axis, to
// normalized design space.
func (da *DesignAxes) NormalizeCoords(user []Fixed) ([]Fixed, error) {
	if len(user) != da.AxisCount() {
		return nil, fmt.Errorf("%w: have %d, axes %d", ErrAxisCount, len(user), da.AxisCount())
	}
	norm := make([]Fixed, len(user))
	for i, u := range user {
		norm[i] = da.NormalizeCoord(i, u)
	}
	return norm, nil
}

// FindInstance searches the named instances for one located exactly at
// the given user coordinates.
func (da *DesignAxes) FindInstance(user []Fixed) (NamedInstance, error) {
	if len(user) != da.AxisCount() {
		return NamedInstance{}, fmt.Errorf("%w: have %d, axes %d", ErrAxisCount, len(user), da.AxisCount())
	}
	for _, inst := range da.Instances() {
		match := true
		for i, c := range inst.Coords {
			if c != user[i] {
				match = false
				break
			}
		}
		if match {
			return inst, nil
		}
	}
	return NamedInstance{}, ErrInstanceNotFound
}
