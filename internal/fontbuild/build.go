package fontbuild

import (
	"slices"

	"github.com/npillmayer/otvar/ot"
)

// master is a Master located in normalized design space.
type master struct {
	*Master
	id uint32 // location id; 0 for the default master
}

// builder carries the state of building one font.
type builder struct {
	d        *Design
	axes     *ot.DesignAxes
	vlm      *ot.VarLocationMap
	dflt     *Master
	masters  []master // non-default masters
	names    *nameTable
	metrics  map[string]int32 // default values of font-wide metrics
	advances []int32          // default advances
	bearings []int32          // default side bearings
}

// Build creates the binary font for a design.
func Build(d *Design) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b := &builder{d: d, names: newNameTable()}
	fvar, avar, err := b.buildAxes()
	if err != nil {
		return nil, err
	}
	if err = b.locateMasters(); err != nil {
		return nil, err
	}
	b.collectDefaults()
	hvar := b.buildHVAR()
	mvar := b.buildMVAR()
	tables := map[ot.Tag][]byte{
		ot.T("head"): encodeHead(d.UnitsPerEm),
		ot.T("hhea"): encodeHHea(b.metrics, b.advances, b.bearings),
		ot.T("hmtx"): encodeHMtx(b.advances, b.bearings),
		ot.T("maxp"): encodeMaxP(len(b.advances)),
		ot.T("OS/2"): encodeOS2(b.metrics, b.advances, b.weightClass()),
		ot.T("post"): encodePost(b.metrics),
		ot.T("fvar"): fvar,
		ot.T("HVAR"): hvar,
	}
	if avar != nil {
		tables[ot.T("avar")] = avar
	}
	if mvar != nil {
		tables[ot.T("MVAR")] = mvar
	}
	b.names.add(1, d.Family)
	b.names.add(2, "Regular")
	b.names.add(4, d.Family+" Regular")
	b.names.add(6, d.PostScriptName())
	tables[ot.T("name")] = b.names.encode()
	tracer().Infof("built font %s with %d glyphs, %d axes, %d masters",
		d.Family, len(b.advances), len(d.Axes), len(d.Masters))
	return ot.AssembleFont(tables), nil
}

// buildAxes encodes fvar and avar, and loads them back to be used for
// normalizing master locations.
func (b *builder) buildAxes() (fvar, avar []byte, err error) {
	d := b.d
	axes := make([]ot.VariationAxis, len(d.Axes))
	maps := make([]ot.Option[ot.SegmentMap], len(d.Axes))
	hasMaps := false
	for i, a := range d.Axes {
		axes[i] = ot.VariationAxis{
			Tag:     ot.T(a.Tag),
			Min:     ot.FixedFromFloat(a.Min),
			Default: ot.FixedFromFloat(a.Default),
			Max:     ot.FixedFromFloat(a.Max),
			NameID:  b.names.addNew(a.Name, a.Tag),
		}
		if a.Hidden {
			axes[i].Flags |= ot.AxisHidden
		}
		maps[i] = ot.None[ot.SegmentMap]()
		if len(a.Map) > 0 {
			maps[i] = ot.Some(segmentMap(a.Map))
			hasMaps = true
		}
	}
	instances := make([]ot.NamedInstance, len(d.Instances))
	for i, inst := range d.Instances {
		instances[i] = ot.NamedInstance{
			SubfamilyNameID: b.names.addNew(inst.Name, inst.Name),
			Coords:          d.userCoords(inst.Location),
		}
		if inst.PostScriptName != "" {
			instances[i].PostScriptNameID = ot.Some(b.names.addNew(inst.PostScriptName, ""))
		}
	}
	fvar = ot.EncodeFvar(axes, instances)
	if hasMaps {
		avar = ot.EncodeAvar(maps)
	}
	if b.axes, err = ot.LoadDesignAxes(fvar, avar); err != nil {
		return nil, nil, err
	}
	for i, m := range maps {
		if m.IsSome() && b.axes.SegmentMap(i).IsNone() {
			return nil, nil, invalid("axis %s: mapping is not monotonic", d.Axes[i].Tag)
		}
	}
	return fvar, avar, nil
}

// segmentMap converts axis mappings to an avar segment map, adding the
// mandatory mappings of -1, 0 and 1.
func segmentMap(mappings []AxisMapping) ot.SegmentMap {
	m := ot.SegmentMap{
		{From: -ot.F2Dot14One, To: -ot.F2Dot14One},
		{From: 0, To: 0},
		{From: ot.F2Dot14One, To: ot.F2Dot14One},
	}
	for _, am := range mappings {
		from := ot.F2Dot14FromFixed(ot.FixedFromFloat(am.From))
		to := ot.F2Dot14FromFixed(ot.FixedFromFloat(am.To))
		if i := slices.IndexFunc(m, func(avm ot.AxisValueMap) bool { return avm.From == from }); i >= 0 {
			m[i].To = to
			continue
		}
		m = append(m, ot.AxisValueMap{From: from, To: to})
	}
	slices.SortFunc(m, func(a, b ot.AxisValueMap) int { return int(a.From) - int(b.From) })
	return m
}

// locateMasters normalizes the master locations and registers them with a
// location map. The master at the default location becomes the default master.
func (b *builder) locateMasters() error {
	b.vlm = ot.NewVarLocationMap(len(b.d.Axes))
	seen := make(map[uint32]int)
	for i := range b.d.Masters {
		m := &b.d.Masters[i]
		norm, err := b.axes.NormalizeCoords(b.d.userCoords(m.Location))
		if err != nil {
			return err
		}
		loc := make(ot.VarLocation, len(norm))
		for j, c := range norm {
			loc[j] = ot.F2Dot14FromFixed(c)
		}
		id := b.vlm.Index(loc)
		if other, dup := seen[id]; dup {
			return invalid("masters %d and %d share location %v", other, i, loc)
		}
		seen[id] = i
		if id == 0 {
			b.dflt = m
			continue
		}
		b.masters = append(b.masters, master{Master: m, id: id})
	}
	if b.dflt == nil {
		return invalid("no master at the default location")
	}
	if len(b.dflt.Advances) == 0 {
		return invalid("default master has no advances")
	}
	return nil
}

func (b *builder) collectDefaults() {
	upem := int32(b.d.UnitsPerEm)
	b.metrics = map[string]int32{
		"hasc": upem * 4 / 5,
		"hdsc": -upem / 5,
		"hlgp": 0,
		"strs": upem / 20,
		"stro": upem / 4,
		"unds": upem / 20,
		"undo": -upem / 10,
	}
	for tag, v := range b.dflt.Metrics {
		b.metrics[tag] = v
	}
	b.advances = b.dflt.Advances
	b.bearings = b.dflt.Bearings
	if len(b.bearings) == 0 {
		b.bearings = make([]int32, len(b.advances))
	}
}

// varValue builds a value record for a value which the masters may
// override. value reports a master's value, if it has one. Masters without
// a value keep the default at their location. If no master deviates from
// the default, the value does not vary.
func (b *builder) varValue(dflt int32, value func(m master) (int32, bool)) *ot.VarValueRecord {
	rec := ot.NewVarValueRecord(dflt)
	varies := false
	for _, m := range b.masters {
		v, ok := value(m)
		varies = varies || (ok && v != dflt)
	}
	if !varies {
		return rec
	}
	for _, m := range b.masters {
		if v, ok := value(m); ok {
			rec.SetValue(m.id, v)
		} else {
			rec.SetValue(m.id, dflt)
		}
	}
	return rec
}

func (b *builder) buildHVAR() []byte {
	ivs := ot.NewItemVariationStore(len(b.d.Axes))
	gv := ot.GlyphVariations{Advances: make([]ot.VarIndex, len(b.advances))}
	for gid, adv := range b.advances {
		rec := b.varValue(adv, func(m master) (int32, bool) {
			if len(m.Advances) == 0 {
				return 0, false
			}
			return m.Advances[gid], true
		})
		gv.Advances[gid] = ivs.AddValue(b.vlm, rec)
	}
	if slices.ContainsFunc(b.masters, func(m master) bool { return len(m.Bearings) > 0 }) {
		gv.StartBearings = make([]ot.VarIndex, len(b.advances))
		for gid, lsb := range b.bearings {
			rec := b.varValue(lsb, func(m master) (int32, bool) {
				if len(m.Bearings) == 0 {
					return 0, false
				}
				return m.Bearings[gid], true
			})
			gv.StartBearings[gid] = ivs.AddValue(b.vlm, rec)
		}
	}
	return ot.EncodeHVAR(ivs, gv)
}

// buildMVAR returns nil if no font-wide metric varies.
func (b *builder) buildMVAR() []byte {
	ivs := ot.NewItemVariationStore(len(b.d.Axes))
	tags := make([]string, 0, len(ot.MVarTags))
	for _, m := range b.masters {
		for tag := range m.Metrics {
			if !slices.Contains(tags, tag) {
				tags = append(tags, tag)
			}
		}
	}
	slices.Sort(tags)
	var records []ot.MVarRecord
	for _, tag := range tags {
		dflt, ok := b.metrics[tag]
		if !ok {
			dflt = b.derivedMetric(tag)
		}
		rec := b.varValue(dflt, func(m master) (int32, bool) {
			v, ok := m.Metrics[tag]
			return v, ok
		})
		if vi := ivs.AddValue(b.vlm, rec); vi != ot.NoVariation {
			records = append(records, ot.MVarRecord{Tag: ot.T(tag), Index: vi})
		}
	}
	if len(records) == 0 {
		return nil
	}
	return ot.EncodeMVAR(ivs, records)
}

// derivedMetric returns the default value for metrics the default master
// does not state explicitly.
func (b *builder) derivedMetric(tag string) int32 {
	switch tag {
	case "hcla", "vasc":
		return b.metrics["hasc"]
	case "hcld":
		return -b.metrics["hdsc"]
	case "vdsc":
		return b.metrics["hdsc"]
	case "hcrs", "vcrs":
		return 1
	}
	return 0
}

// weightClass is the default of axis wght, or 400 if there is none.
func (b *builder) weightClass() uint16 {
	for _, a := range b.d.Axes {
		if a.Tag == "wght" {
			return uint16(min(max(a.Default, 1), 1000))
		}
	}
	return 400
}
