package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"github.com/pterm/pterm"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatSegmentMap(m ot.SegmentMap) string {
	parts := make([]string, len(m))
	for i, avm := range m {
		parts[i] = fmt.Sprintf("%s→%s", formatFloat(avm.From.Float()), formatFloat(avm.To.Float()))
	}
	return strings.Join(parts, " ")
}

func printStore(store *ot.ItemVariationStore, scalars []ot.Fixed) {
	pterm.Printf("store has %d axes, %d regions, %d subtables\n",
		store.AxisCount(), store.RegionCount(), store.SubtableCount())
	if store.RegionCount() == 0 {
		return
	}
	data := [][]string{{"Region", "Tents", "Scalar"}}
	for i := range store.RegionCount() {
		scalar := "-"
		if i < len(scalars) {
			scalar = scalars[i].String()
		}
		data = append(data, []string{strconv.Itoa(i), store.Region(i).String(), scalar})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	data = [][]string{{"Subtable", "Regions", "Items"}}
	for i := range store.SubtableCount() {
		sub := store.Subtable(i)
		data = append(data, []string{
			strconv.Itoa(i), fmt.Sprintf("%v", sub.RegionIndices), strconv.Itoa(sub.ItemCount()),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printGlyphMetrics(gid int, dflt, m otquery.GlyphMetricsInfo, vertical bool) {
	bearing := "lsb"
	if vertical {
		bearing = "tsb"
	}
	data := [][]string{
		{"Glyph " + strconv.Itoa(gid), "Default", "Current"},
		{"advance", dflt.Advance.String(), m.Advance.String()},
		{bearing, dflt.Bearing.String(), m.Bearing.String()},
	}
	if m.HasOrigin {
		data = append(data, []string{"origin y", dflt.OriginY.String(), m.OriginY.String()})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	if !m.BearingVaries {
		pterm.Printf("%s does not vary\n", bearing)
	}
}
