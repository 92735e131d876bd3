package ot

import (
	"fmt"
	"slices"
)

// VariationModel turns master values at a set of sparse locations into
// deltas of an item variation store.
//
// The model sorts its locations, derives one region per location and narrows
// each region against the locations placed before it, such that no master
// contributes outside of the part of design space it is responsible for.
// The regions become the columns of a new subtable of the item variation
// store. Values are then decomposed row by row: the delta of location i is its
// value minus the default minus the weighted deltas of all earlier locations
// whose regions reach location i.
//
// Models are created by ItemVariationStore.AddValue, one per distinct set of
// override locations.
type VariationModel struct {
	ivs          *ItemVariationStore
	locationIDs  []uint32        // sorted
	locations    []VarLocation   // in sort order
	axisPoints   []map[F2Dot14]bool
	regions      []VariationRegion
	deltaWeights [][]deltaWeight // lower triangular: row i references j < i
	subtable     uint16
}

type deltaWeight struct {
	index  int
	weight Fixed
}

// NewVariationModel creates a model for a set of location ids (excluding the
// default location) and allocates a new subtable in ivs for it.
func NewVariationModel(ivs *ItemVariationStore, vlm *VarLocationMap, ids []uint32) *VariationModel {
	if len(ids) == 0 {
		panic("variation model without locations")
	}
	assertEqualInt("model axis count", vlm.AxisCount(), ivs.AxisCount())
	vm := &VariationModel{ivs: ivs}
	locs := make(map[uint32]VarLocation, len(ids))
	for _, id := range ids {
		if id == 0 {
			panic("variation model must not contain the default location")
		}
		locs[id] = vlm.Location(id)
	}
	vm.axisPoints = collectAxisPoints(vlm.AxisCount(), locs)
	vm.locationIDs = slices.Clone(ids)
	slices.SortFunc(vm.locationIDs, func(a, b uint32) int {
		if c := cmpLocation(locs[a], locs[b], vm.axisPoints); c != 0 {
			return c
		}
		return int(a) - int(b)
	})
	vm.locations = make([]VarLocation, len(vm.locationIDs))
	for i, id := range vm.locationIDs {
		vm.locations[i] = locs[id]
	}
	vm.regions = initialRegions(vm.locations, vlm.AxisCount())
	for i := range vm.regions {
		narrowRegion(vm.regions, i)
	}
	regionIndices := make([]uint16, len(vm.regions))
	for i, region := range vm.regions {
		regionIndices[i] = ivs.AddRegion(region)
	}
	vm.subtable = ivs.NewSubtable(regionIndices)
	vm.computeDeltaWeights()
	tracer().Debugf("variation model for %v: subtable %d, regions %v", vm.locationIDs, vm.subtable, vm.regions)
	return vm
}

// collectAxisPoints collects, per axis, the coordinates of locations which
// vary on this axis only. 0 is an axis point for every axis.
func collectAxisPoints(axisCount int, locs map[uint32]VarLocation) []map[F2Dot14]bool {
	points := make([]map[F2Dot14]bool, axisCount)
	for i := range points {
		points[i] = map[F2Dot14]bool{0: true}
	}
	for _, loc := range locs {
		axis := -1
		for i, c := range loc {
			if c == 0 {
				continue
			}
			if axis >= 0 {
				axis = -1
				break
			}
			axis = i
		}
		if axis >= 0 {
			points[axis][loc[axis]] = true
		}
	}
	return points
}

func sign(c F2Dot14) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	}
	return 0
}

func abs16(c F2Dot14) int32 {
	if c < 0 {
		return -int32(c)
	}
	return int32(c)
}

// cmpLocation orders master locations such that a location is placed after
// all locations it depends on:
// (a) fewer non-zero axes first,
// (b) more coordinates on an axis point first,
// (c) a zero coordinate before a non-zero one, in axis order,
// (d) negative before positive, then smaller magnitudes first, in axis order.
func cmpLocation(a, b VarLocation, axisPoints []map[F2Dot14]bool) int {
	rank := func(loc VarLocation) (nonzero, onPoint int) {
		for i, c := range loc {
			if c != 0 {
				nonzero++
				if axisPoints[i][c] {
					onPoint++
				}
			}
		}
		return
	}
	rankA, onPointA := rank(a)
	rankB, onPointB := rank(b)
	if rankA != rankB {
		return rankA - rankB
	}
	if onPointA != onPointB {
		return onPointB - onPointA
	}
	for i := range a {
		if (a[i] == 0) != (b[i] == 0) {
			if a[i] == 0 {
				return -1
			}
			return 1
		}
	}
	for i := range a {
		if sa, sb := sign(a[i]), sign(b[i]); sa != sb {
			return sa - sb
		}
	}
	for i := range a {
		if ma, mb := abs16(a[i]), abs16(b[i]); ma != mb {
			if ma < mb {
				return -1
			}
			return 1
		}
	}
	return 0
}

// initialRegions creates one region per location, spanning from the location
// to the outermost observed coordinate on each active axis.
func initialRegions(locations []VarLocation, axisCount int) []VariationRegion {
	minV := make([]F2Dot14, axisCount)
	maxV := make([]F2Dot14, axisCount)
	for _, loc := range locations {
		for i, c := range loc {
			minV[i] = min(minV[i], c)
			maxV[i] = max(maxV[i], c)
		}
	}
	regions := make([]VariationRegion, len(locations))
	for k, loc := range locations {
		region := make(VariationRegion, axisCount)
		for i, c := range loc {
			switch {
			case c > 0:
				region[i] = AxisRegion{Start: 0, Peak: c, End: maxV[i]}
			case c < 0:
				region[i] = AxisRegion{Start: minV[i], Peak: c, End: 0}
			}
		}
		regions[k] = region
	}
	return regions
}

// ratio is a non-negative fraction num/den, den > 0.
type ratio struct {
	num, den int64
}

func (r ratio) cmp(s ratio) int {
	a, b := r.num*s.den, s.num*r.den
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type narrowing struct {
	axis int
	ar   AxisRegion
}

// narrowRegion restricts region i so that it does not extend past the peaks
// of relevant earlier regions. Earlier regions are visited in order; a region
// j < i is relevant if it is active on the same axes and its peak lies within
// (or on the peak of) region i as narrowed so far. For each relevant region,
// the cuts with the largest ratio (distance to the cut relative to the
// distance to the region's border) are applied; cuts with equal ratio are
// applied together.
func narrowRegion(regions []VariationRegion, i int) {
	region := slices.Clone(regions[i])
	for _, prev := range regions[:i] {
		if !isRelevant(prev, region) {
			continue
		}
		var best ratio
		var cuts []narrowing
		for axis, ar := range region {
			val, peak := int64(prev[axis].Peak), int64(ar.Peak)
			if ar.Peak == 0 || val == peak {
				continue
			}
			cut := ar
			var r ratio
			if val < peak {
				cut.Start = prev[axis].Peak
				r = ratio{num: peak - val, den: peak - int64(ar.Start)}
			} else {
				cut.End = prev[axis].Peak
				r = ratio{num: val - peak, den: int64(ar.End) - peak}
			}
			switch c := r.cmp(best); {
			case len(cuts) == 0 || c > 0:
				best, cuts = r, []narrowing{{axis, cut}}
			case c == 0:
				cuts = append(cuts, narrowing{axis, cut})
			}
		}
		for _, n := range cuts {
			region[n.axis] = n.ar
		}
	}
	regions[i] = region
}

func isRelevant(prev, region VariationRegion) bool {
	for axis, ar := range region {
		p := prev[axis].Peak
		if (p == 0) != (ar.Peak == 0) {
			return false
		}
		if ar.Peak == 0 {
			continue
		}
		if p != ar.Peak && !(ar.Start < p && p < ar.End) {
			return false
		}
	}
	return true
}

func (vm *VariationModel) computeDeltaWeights() {
	vm.deltaWeights = make([][]deltaWeight, len(vm.locations))
	for i, loc := range vm.locations {
		coords := loc.Fixed()
		for j, region := range vm.regions[:i] {
			if s := region.Scalar(coords); s != 0 {
				vm.deltaWeights[i] = append(vm.deltaWeights[i], deltaWeight{index: j, weight: s})
			}
		}
	}
}

// AddValue decomposes the values of rec at the model's locations into deltas,
// appends them as a new row to the model's subtable and returns the row index.
// rec must have a value for every location of the model.
func (vm *VariationModel) AddValue(rec *VarValueRecord) uint16 {
	deltas := make([]int32, len(vm.locationIDs))
	for i, id := range vm.locationIDs {
		v, ok := rec.Value(id)
		if !ok {
			panic(fmt.Sprintf("value record has no value for location %d", id))
		}
		acc := int64(v-rec.Default) << 16
		for _, dw := range vm.deltaWeights[i] {
			acc -= int64(dw.weight) * int64(deltas[dw.index])
		}
		deltas[i] = int32((acc + 0x8000) >> 16)
	}
	return vm.ivs.appendRow(vm.subtable, deltas)
}

// Subtable returns the outer index of the model's subtable.
func (vm *VariationModel) Subtable() uint16 {
	return vm.subtable
}

// LocationIDs returns the model's location ids in sort order.
func (vm *VariationModel) LocationIDs() []uint32 {
	return vm.locationIDs
}

// Regions returns the narrowed regions, in sort order of the locations.
func (vm *VariationModel) Regions() []VariationRegion {
	return vm.regions
}

// DeltaWeights returns, for location i, the weights of the deltas of earlier
// locations j < i at location i, as a map j → weight.
func (vm *VariationModel) DeltaWeights(i int) map[int]Fixed {
	weights := make(map[int]Fixed, len(vm.deltaWeights[i]))
	for _, dw := range vm.deltaWeights[i] {
		weights[dw.index] = dw.weight
	}
	return weights
}
