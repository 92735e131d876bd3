package otquery

import (
	"errors"
	"fmt"
	"sync"

	"github.com/npillmayer/otvar/ot"
)

// ErrUnknownAxis is returned if a location names an axis the font does not have.
var ErrUnknownAxis = errors.New("font has no such axis")

// Instance is a location in the design space of a font. It holds user and
// normalized coordinates, and caches the region scalars of every item
// variation store it has been queried with.
//
// An Instance may be shared between goroutines.
type Instance struct {
	otf     *ot.Font
	user    []ot.Fixed
	norm    []ot.Fixed
	mx      sync.Mutex
	scalars map[*ot.ItemVariationStore][]ot.Fixed
}

func newInstance(otf *ot.Font, user []ot.Fixed) (*Instance, error) {
	inst := &Instance{
		otf:     otf,
		user:    user,
		scalars: make(map[*ot.ItemVariationStore][]ot.Fixed),
	}
	if da := otf.DesignAxes(); da != nil {
		norm, err := da.NormalizeCoords(user)
		if err != nil {
			return nil, err
		}
		inst.norm = norm
	}
	tracer().Debugf("instance at %v, normalized %v", inst.user, inst.norm)
	return inst, nil
}

// DefaultInstance returns the instance at the default location of a font.
// For fonts without variation data this is the only instance there is.
func DefaultInstance(otf *ot.Font) *Instance {
	var user []ot.Fixed
	if da := otf.DesignAxes(); da != nil {
		user = da.DefaultCoords()
	}
	inst, _ := newInstance(otf, user)
	return inst
}

// InstanceAt returns the instance at a location in user coordinates, given as
// a map from axis tag to value, e.g.
//
//	InstanceAt(otf, map[ot.Tag]float64{ot.T("wght"): 700, ot.T("wdth"): 87.5})
//
// Axes missing from the map are set to their default. Values outside an axis'
// range are clamped.
func InstanceAt(otf *ot.Font, user map[ot.Tag]float64) (*Instance, error) {
	da := otf.DesignAxes()
	if da == nil {
		if len(user) > 0 {
			return nil, ot.ErrNoVariationData
		}
		return DefaultInstance(otf), nil
	}
	coords := da.DefaultCoords()
	for tag, v := range user {
		i := da.AxisIndex(tag)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAxis, tag)
		}
		coords[i] = ot.FixedFromFloat(v)
	}
	return newInstance(otf, coords)
}

// NamedInstance returns the i-th named instance of a font.
func NamedInstance(otf *ot.Font, i int) (*Instance, error) {
	da := otf.DesignAxes()
	if da == nil {
		return nil, ot.ErrNoVariationData
	}
	instances := da.Instances()
	if i < 0 || i >= len(instances) {
		return nil, fmt.Errorf("named instance %d out of range (font has %d)", i, len(instances))
	}
	coords := make([]ot.Fixed, len(instances[i].Coords))
	copy(coords, instances[i].Coords)
	return newInstance(otf, coords)
}

// Font returns the font this instance belongs to.
func (inst *Instance) Font() *ot.Font {
	return inst.otf
}

// UserCoords returns the user coordinates of this instance, one per axis.
func (inst *Instance) UserCoords() []ot.Fixed {
	return inst.user
}

// NormalizedCoords returns the normalized coordinates of this instance, one per axis.
func (inst *Instance) NormalizedCoords() []ot.Fixed {
	return inst.norm
}

// IsDefault reports whether this instance is located at the default of all axes.
func (inst *Instance) IsDefault() bool {
	for _, c := range inst.norm {
		if c != 0 {
			return false
		}
	}
	return true
}

// Scalars returns the region scalars of an item variation store for this
// instance. They are computed once per store. Fonts without axes get scalars
// of 0 for every region, i.e. the default values.
func (inst *Instance) Scalars(store *ot.ItemVariationStore) []ot.Fixed {
	if store == nil {
		return nil
	}
	inst.mx.Lock()
	defer inst.mx.Unlock()
	if s, ok := inst.scalars[store]; ok {
		return s
	}
	var s []ot.Fixed
	if len(inst.norm) == 0 {
		s = make([]ot.Fixed, store.RegionCount())
	} else {
		s = store.CalcRegionScalars(inst.norm)
	}
	inst.scalars[store] = s
	return s
}
