package ttxtest

import (
	"fmt"

	"github.com/npillmayer/otvar/ot"
)

// Compare checks the variation tables of a parsed font against a ttx dump and
// returns a description of every difference found. Tables missing from the
// dump are not checked.
//
// Float values of the dump are converted the way the font stores them, i.e.
// user coordinates to 16.16 and avar mappings to 2.14.
func Compare(exp *Expected, otf *ot.Font) []string {
	var diffs []string
	diff := func(format string, args ...interface{}) {
		diffs = append(diffs, fmt.Sprintf(format, args...))
	}
	da := otf.DesignAxes()
	if exp.Fvar != nil {
		if da == nil {
			diff("fvar: font has no axes")
			return diffs
		}
		compareFvar(exp.Fvar, da, diff)
	}
	if exp.Avar != nil && da != nil {
		compareAvar(exp.Avar, da, diff)
	}
	if exp.MVAR != nil {
		compareMVAR(exp.MVAR, otf.MVar(), diff)
	}
	return diffs
}

func compareFvar(exp *ExpectedFvar, da *ot.DesignAxes, diff func(string, ...interface{})) {
	if len(exp.Axes) != da.AxisCount() {
		diff("fvar: %d axes, expected %d", da.AxisCount(), len(exp.Axes))
		return
	}
	for i, ea := range exp.Axes {
		a, err := da.Axis(i)
		if err != nil {
			diff("fvar: axis %d: %v", i, err)
			continue
		}
		if a.Tag != ot.T(ea.Tag) {
			diff("fvar: axis %d has tag %s, expected %s", i, a.Tag, ea.Tag)
		}
		for _, v := range []struct {
			name string
			have ot.Fixed
			want float64
		}{
			{"min", a.Min, ea.Min},
			{"default", a.Default, ea.Default},
			{"max", a.Max, ea.Max},
		} {
			if v.have != ot.FixedFromFloat(v.want) {
				diff("fvar: axis %s: %s is %s, expected %g", ea.Tag, v.name, v.have, v.want)
			}
		}
		if a.Flags != ea.Flags {
			diff("fvar: axis %s: flags 0x%x, expected 0x%x", ea.Tag, a.Flags, ea.Flags)
		}
		if a.NameID != ea.NameID {
			diff("fvar: axis %s: name ID %d, expected %d", ea.Tag, a.NameID, ea.NameID)
		}
	}
	instances := da.Instances()
	if len(instances) != len(exp.Instances) {
		diff("fvar: %d instances, expected %d", len(instances), len(exp.Instances))
		return
	}
	for i, ei := range exp.Instances {
		inst := instances[i]
		if inst.SubfamilyNameID != ei.SubfamilyNameID {
			diff("fvar: instance %d: subfamily name ID %d, expected %d", i, inst.SubfamilyNameID, ei.SubfamilyNameID)
		}
		if ps := inst.PostScriptNameID.Or(0xFFFF); ps != ei.PostScriptNameID {
			diff("fvar: instance %d: PostScript name ID %d, expected %d", i, ps, ei.PostScriptNameID)
		}
		if inst.Flags != ei.Flags {
			diff("fvar: instance %d: flags 0x%x, expected 0x%x", i, inst.Flags, ei.Flags)
		}
		for j, ea := range exp.Axes {
			want, ok := ei.Coords[ea.Tag]
			if !ok {
				diff("fvar: instance %d: no coordinate for axis %s", i, ea.Tag)
				continue
			}
			if inst.Coords[j] != ot.FixedFromFloat(want) {
				diff("fvar: instance %d: %s=%s, expected %g", i, ea.Tag, inst.Coords[j], want)
			}
		}
	}
}

func compareAvar(exp *ExpectedAvar, da *ot.DesignAxes, diff func(string, ...interface{})) {
	for i := 0; i < da.AxisCount(); i++ {
		a, err := da.Axis(i)
		if err != nil {
			continue
		}
		tag := a.Tag.String()
		want, hasWant := exp.Segments[tag]
		have, hasHave := da.SegmentMap(i).Unwrap()
		switch {
		case !hasWant && !hasHave:
			continue
		case !hasWant:
			diff("avar: axis %s has a segment map, expected none", tag)
			continue
		case !hasHave:
			diff("avar: axis %s has no segment map, expected %d mappings", tag, len(want))
			continue
		}
		if len(have) != len(want) {
			diff("avar: axis %s: %d mappings, expected %d", tag, len(have), len(want))
			continue
		}
		for j, m := range want {
			from := ot.F2Dot14FromFixed(ot.FixedFromFloat(m.From))
			to := ot.F2Dot14FromFixed(ot.FixedFromFloat(m.To))
			if have[j].From != from || have[j].To != to {
				diff("avar: axis %s: mapping %d is %g->%g, expected %g->%g",
					tag, j, have[j].From.Float(), have[j].To.Float(), m.From, m.To)
			}
		}
	}
	for tag := range exp.Segments {
		if da.AxisIndex(ot.T(tag)) < 0 {
			diff("avar: segment map for unknown axis %s", tag)
		}
	}
}

func compareMVAR(exp *ExpectedMVAR, mvar *ot.MVarTable, diff func(string, ...interface{})) {
	if mvar == nil {
		if len(exp.Records) > 0 {
			diff("MVAR: table missing, expected %d records", len(exp.Records))
		}
		return
	}
	records := mvar.Records()
	if len(records) != len(exp.Records) {
		diff("MVAR: %d records, expected %d", len(records), len(exp.Records))
		return
	}
	for i, er := range exp.Records {
		r := records[i]
		if r.Tag != ot.T(er.Tag) {
			diff("MVAR: record %d has tag %s, expected %s", i, r.Tag, er.Tag)
			continue
		}
		want := ot.VarIndex{Outer: uint16(er.VarIdx >> 16), Inner: uint16(er.VarIdx)}
		if r.Index != want {
			diff("MVAR: record %s: index %s, expected %s", er.Tag, r.Index, want)
		}
	}
}
