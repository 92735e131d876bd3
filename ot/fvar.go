package ot

import (
	"fmt"
)

// --- fvar table ------------------------------------------------------------

// FvarTable is the font variations table. It defines the axes of the
// font's design space and a list of named instances, i.e. locations in
// design space a designer has given a name to.
type FvarTable struct {
	tableBase
	Axes      []VariationAxis
	Instances []NamedInstance
}

// VariationAxis is an axis record of table fvar. Values are in user
// coordinates, as 16.16 fixed-point numbers.
type VariationAxis struct {
	Tag     Tag
	Min     Fixed
	Default Fixed
	Max     Fixed
	Flags   uint16
	NameID  uint16
}

// Axis flag HIDDEN_AXIS: the axis should not be exposed directly in user interfaces.
const AxisHidden uint16 = 0x0001

// NamedInstance is an instance record of table fvar.
type NamedInstance struct {
	SubfamilyNameID  uint16
	Flags            uint16
	Coords           []Fixed        // user coordinates, one per axis
	PostScriptNameID Option[uint16] // optional; 0xFFFF in the font means absent
}

const (
	fvarHeaderSize   = 16
	fvarAxisSize     = 20
	noPostScriptName = 0xFFFF
)

func newFvarTable(tag Tag, b binarySegm, offset, size uint32) *FvarTable {
	t := &FvarTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// parseFvar reads table fvar. fvar is mandatory for a variable font, thus every
// deviation from the format results in no axes being available at all.
func parseFvar(tag Tag, b binarySegm, offset, size uint32, ec *errorCollector) Table {
	fail := func(section, msg string, at uint32) Table {
		ec.addError(tag, section, msg, SeverityMajor, offset+at)
		return nil
	}
	if size < fvarHeaderSize {
		return fail("Header", fmt.Sprintf("fvar table too small: %d bytes", size), 0)
	}
	r := b.stream(0)
	major, minor := r.ReadUint16(), r.ReadUint16()
	axesOffset := r.ReadUint16()
	countSizePairs := r.ReadUint16()
	axisCount := r.ReadUint16()
	axisSize := r.ReadUint16()
	instanceCount := r.ReadUint16()
	instanceSize := r.ReadUint16()
	switch {
	case major != 1 || minor != 0:
		return fail("Header", fmt.Sprintf("unsupported version %d.%d", major, minor), 0)
	case axesOffset < fvarHeaderSize:
		return fail("Header", fmt.Sprintf("offset to axes array too small: %d", axesOffset), 4)
	case countSizePairs < 2:
		return fail("Header", fmt.Sprintf("countSizePairs must be ≥ 2, is %d", countSizePairs), 6)
	case axisCount == 0 || axisCount > MaxAxes:
		return fail("Header", fmt.Sprintf("axis count out of range: %d", axisCount), 8)
	case axisSize < fvarAxisSize:
		return fail("Header", fmt.Sprintf("axis record size too small: %d", axisSize), 10)
	case instanceCount > MaxNamedInstances:
		return fail("Header", fmt.Sprintf("instance count too large: %d", instanceCount), 12)
	case uint32(instanceSize) < 4+4*uint32(axisCount):
		return fail("Header", fmt.Sprintf("instance record size too small: %d", instanceSize), 14)
	}
	total := uint64(axesOffset) + uint64(axisCount)*uint64(axisSize) + uint64(instanceCount)*uint64(instanceSize)
	if total > uint64(len(b)) {
		return fail("Header", fmt.Sprintf("axes and instances need %d bytes, table has %d", total, len(b)), 0)
	}
	t := newFvarTable(tag, b, offset, size)
	t.Axes = make([]VariationAxis, axisCount)
	for i := range t.Axes {
		at := uint32(axesOffset) + uint32(i)*uint32(axisSize)
		r.Seek(at)
		a := VariationAxis{
			Tag:     Tag(r.ReadUint32()),
			Min:     readFixed(r),
			Default: readFixed(r),
			Max:     readFixed(r),
			Flags:   r.ReadUint16(),
			NameID:  r.ReadUint16(),
		}
		if a.Min > a.Default || a.Default > a.Max {
			return fail("AxisRecord", fmt.Sprintf("axis %s: min/default/max not monotonic", a.Tag), at)
		}
		t.Axes[i] = a
	}
	hasPSName := uint32(instanceSize) >= 6+4*uint32(axisCount)
	instancesStart := uint32(axesOffset) + uint32(axisCount)*uint32(axisSize)
	t.Instances = make([]NamedInstance, instanceCount)
	for i := range t.Instances {
		r.Seek(instancesStart + uint32(i)*uint32(instanceSize))
		inst := NamedInstance{
			SubfamilyNameID:  r.ReadUint16(),
			Flags:            r.ReadUint16(),
			Coords:           make([]Fixed, axisCount),
			PostScriptNameID: None[uint16](),
		}
		for j := range inst.Coords {
			inst.Coords[j] = readFixed(r)
		}
		if hasPSName {
			if id := r.ReadUint16(); id != noPostScriptName {
				inst.PostScriptNameID = Some(id)
			}
		}
		t.Instances[i] = inst
	}
	if r.EOF() {
		return fail("InstanceRecord", "read past end of table", 0)
	}
	tracer().Debugf("fvar: %d axes, %d named instances", len(t.Axes), len(t.Instances))
	return t
}

// EncodeFvar produces the binary form of a fvar table. If any instance carries
// a PostScript name ID, all instance records include the field.
func EncodeFvar(axes []VariationAxis, instances []NamedInstance) []byte {
	if len(axes) == 0 || len(axes) > MaxAxes {
		panic(fmt.Sprintf("fvar: cannot encode %d axes", len(axes)))
	}
	withPSName := false
	for _, inst := range instances {
		assertEqualInt("fvar instance coordinates", len(inst.Coords), len(axes))
		withPSName = withPSName || inst.PostScriptNameID.IsSome()
	}
	instanceSize := 4 + 4*len(axes)
	if withPSName {
		instanceSize += 2
	}
	w := newStreamWriter()
	w.WriteUint16(1) // majorVersion
	w.WriteUint16(0) // minorVersion
	w.WriteUint16(fvarHeaderSize)
	w.WriteUint16(2) // countSizePairs
	w.WriteUint16(uint16(len(axes)))
	w.WriteUint16(fvarAxisSize)
	w.WriteUint16(uint16(len(instances)))
	w.WriteUint16(uint16(instanceSize))
	for _, a := range axes {
		w.WriteUint32(uint32(a.Tag))
		writeFixed(w, a.Min)
		writeFixed(w, a.Default)
		writeFixed(w, a.Max)
		w.WriteUint16(a.Flags)
		w.WriteUint16(a.NameID)
	}
	for _, inst := range instances {
		w.WriteUint16(inst.SubfamilyNameID)
		w.WriteUint16(inst.Flags)
		for _, c := range inst.Coords {
			writeFixed(w, c)
		}
		if withPSName {
			w.WriteUint16(inst.PostScriptNameID.Or(noPostScriptName))
		}
	}
	return w.Bytes()
}
