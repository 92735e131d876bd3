package ot

import (
	"fmt"
	"strings"
)

// AxisRegion is the extent of a variation region along one axis, given as
// a tent (start, peak, end) of normalized coordinates.
type AxisRegion struct {
	Start, Peak, End F2Dot14
}

// VariationRegion is a region of design space, defined by one AxisRegion per axis.
// A region with a zero peak on an axis is independent of that axis.
type VariationRegion []AxisRegion

// Tent evaluates the tent function of an axis region at coord: 0 outside of
// [Start, End], 1 at Peak, and linearly interpolated in between.
func (ar AxisRegion) Tent(coord Fixed) Fixed {
	start, peak, end := ar.Start.Fixed(), ar.Peak.Fixed(), ar.End.Fixed()
	switch {
	case coord < start || coord > end:
		return 0
	case coord == peak:
		return FixedOne
	case coord < peak:
		return FixedDiv(coord-start, peak-start)
	}
	return FixedDiv(end-coord, end-peak)
}

// Scalar returns the contribution of this axis region at coord, following
// the rules of OpenType: an ill-formed region, a region spanning zero, or a
// zero peak do not restrict the region along this axis.
func (ar AxisRegion) Scalar(coord Fixed) Fixed {
	switch {
	case ar.Start > ar.Peak || ar.Peak > ar.End:
		return FixedOne
	case ar.Start < 0 && ar.End > 0 && ar.Peak != 0:
		return FixedOne
	case ar.Peak == 0:
		return FixedOne
	}
	return ar.Tent(coord)
}

// Scalar returns the product of the axis scalars at a normalized location.
// coords must have one entry per axis of the region.
func (r VariationRegion) Scalar(coords []Fixed) Fixed {
	assertEqualInt("region axis count", len(coords), len(r))
	s := FixedOne
	for i, ar := range r {
		s = FixedMul(s, ar.Scalar(coords[i]))
		if s == 0 {
			break
		}
	}
	return s
}

// Equal reports whether two regions are structurally identical.
func (r VariationRegion) Equal(other VariationRegion) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// key is used to de-duplicate regions of an item variation store.
func (r VariationRegion) key() string {
	var sb strings.Builder
	for _, ar := range r {
		sb.WriteString(fmt.Sprintf("%d:%d:%d;", ar.Start, ar.Peak, ar.End))
	}
	return sb.String()
}

func (r VariationRegion) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, ar := range r {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "(%.3g %.3g %.3g)", ar.Start.Float(), ar.Peak.Float(), ar.End.Float())
	}
	sb.WriteByte(']')
	return sb.String()
}
