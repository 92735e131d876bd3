package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"github.com/pterm/pterm"
)

func tablesOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	data := [][]string{{"Tag", "Offset", "Size"}}
	for _, tag := range intp.font.TableTags() {
		off, size := intp.font.Table(tag).Extent()
		data = append(data, []string{tag.String(), strconv.Itoa(int(off)), strconv.Itoa(int(size))})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func errorsOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	errs, warnings := intp.font.Errors(), intp.font.Warnings()
	if len(errs) == 0 && len(warnings) == 0 {
		pterm.Println("no errors or warnings")
		return nil, false
	}
	for _, e := range errs {
		pterm.Error.Println(e.Error())
	}
	for _, w := range warnings {
		pterm.Warning.Println(w.String())
	}
	return nil, false
}

func axesOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	axes := otquery.Axes(intp.font)
	if len(axes) == 0 {
		return ot.ErrNoVariationData, false
	}
	user, norm := intp.inst.UserCoords(), intp.inst.NormalizedCoords()
	data := [][]string{{"Tag", "Name", "Min", "Default", "Max", "Current", "Normalized"}}
	for i, a := range axes {
		name := a.Name
		if a.Hidden {
			name += " (hidden)"
		}
		data = append(data, []string{
			a.Tag.String(), name,
			formatFloat(a.Min), formatFloat(a.Default), formatFloat(a.Max),
			user[i].String(), norm[i].String(),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

func instancesOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	instances := otquery.Instances(intp.font)
	if len(instances) == 0 {
		pterm.Println("font has no named instances")
		return nil, false
	}
	axes := otquery.Axes(intp.font)
	data := [][]string{{"#", "Name", "PostScript", "Location"}}
	for _, inst := range instances {
		loc := make([]string, len(axes))
		for i, a := range axes {
			loc[i] = fmt.Sprintf("%s=%s", a.Tag, formatFloat(inst.Coords[a.Tag]))
		}
		data = append(data, []string{
			strconv.Itoa(inst.Index), inst.Subfamily, inst.PostScriptName, strings.Join(loc, " "),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}

// atOp sets the current instance, e.g. "at:wght=700,wdth=87.5".
func atOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	loc, err := parseLocation(op.arg)
	if err != nil {
		return err, false
	}
	inst, err := otquery.InstanceAt(intp.font, loc)
	if err != nil {
		return err, false
	}
	intp.inst = inst
	tracer().Infof("instance at %v", inst.NormalizedCoords())
	return nil, false
}

func parseLocation(arg string) (map[ot.Tag]float64, error) {
	loc := make(map[ot.Tag]float64)
	if arg == "" {
		return loc, nil
	}
	for _, coord := range strings.Split(arg, ",") {
		tag, value, ok := strings.Cut(coord, "=")
		if !ok || len(tag) != 4 {
			return nil, fmt.Errorf("invalid coordinate %q, expected e.g. wght=700", coord)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", coord, err)
		}
		loc[ot.T(tag)] = v
	}
	return loc, nil
}

func namedOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	i, err := strconv.Atoi(op.arg)
	if err != nil {
		return fmt.Errorf("instance index not numeric: %v", op.arg), false
	}
	inst, err := otquery.NamedInstance(intp.font, i)
	if err != nil {
		return err, false
	}
	intp.inst = inst
	return nil, false
}

func avarOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	da := intp.font.DesignAxes()
	if da == nil {
		return ot.ErrNoVariationData, false
	}
	for i := range da.AxisCount() {
		a, _ := da.Axis(i)
		m, ok := da.SegmentMap(i).Unwrap()
		if !ok {
			pterm.Printf("%s: no mapping\n", a.Tag)
			continue
		}
		pterm.Printf("%s: %s\n", a.Tag, formatSegmentMap(m))
	}
	return nil, false
}

// regionsOp lists the regions of the item variation store of HVAR, VVAR or
// MVAR, with their scalars at the current instance.
func regionsOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	tag := "HVAR"
	if t, ok := op.hasArg(); ok {
		tag = strings.ToUpper(t)
	}
	store, err := intp.store(tag)
	if err != nil {
		return err, false
	}
	printStore(store, intp.inst.Scalars(store))
	return nil, false
}

func (intp *Intp) store(tag string) (*ot.ItemVariationStore, error) {
	var store *ot.ItemVariationStore
	switch tag {
	case "HVAR":
		if t := intp.font.HVar(); t != nil {
			store = t.Store
		}
	case "VVAR":
		if t := intp.font.VVar(); t != nil {
			store = t.Store
		}
	case "MVAR":
		if t := intp.font.MVar(); t != nil {
			store = t.Store
		}
	default:
		return nil, fmt.Errorf("table %s has no item variation store", tag)
	}
	if store == nil {
		return nil, fmt.Errorf("font has no usable %s table", tag)
	}
	return store, nil
}

func hvarOp(intp *Intp, op *Op) (error, bool) {
	return glyphMetricsOp(intp, op, false)
}

func vvarOp(intp *Intp, op *Op) (error, bool) {
	return glyphMetricsOp(intp, op, true)
}

func glyphMetricsOp(intp *Intp, op *Op, vertical bool) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	if op.noArg() {
		return errors.New("glyph index missing, e.g. hvar:12"), false
	}
	gid, err := strconv.Atoi(op.arg)
	if err != nil || gid < 0 || gid > 0xFFFF {
		return fmt.Errorf("invalid glyph index: %v", op.arg), false
	}
	query := otquery.GlyphMetrics
	if vertical {
		query = otquery.VerticalGlyphMetrics
	}
	m, ok := query(intp.inst, ot.GlyphIndex(gid))
	if !ok {
		return fmt.Errorf("no metrics for glyph %d", gid), false
	}
	dflt, _ := query(otquery.DefaultInstance(intp.font), ot.GlyphIndex(gid))
	printGlyphMetrics(gid, dflt, m, vertical)
	return nil, false
}

func mvarOp(intp *Intp, op *Op) (error, bool) {
	if err := intp.checkFont(); err != nil {
		return err, false
	}
	mvar := intp.font.MVar()
	if mvar == nil {
		return errors.New("font has no usable MVAR table"), false
	}
	data := [][]string{{"Tag", "Source", "Index", "Default", "Current"}}
	for _, rec := range mvar.Records() {
		dflt, ok := otquery.MetricValue(otquery.DefaultInstance(intp.font), rec.Tag)
		if !ok {
			data = append(data, []string{rec.Tag.String(), ot.MVarTags[rec.Tag], rec.Index.String(), "-", "-"})
			continue
		}
		v, _ := otquery.MetricValue(intp.inst, rec.Tag)
		data = append(data, []string{
			rec.Tag.String(), ot.MVarTags[rec.Tag], rec.Index.String(), dflt.String(), v.String(),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil, false
}
