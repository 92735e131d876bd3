package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/npillmayer/otvar"
	"github.com/npillmayer/otvar/internal/fontbuild"
	"github.com/npillmayer/otvar/internal/gotextcheck"
	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
	"golang.org/x/image/math/fixed"
)

func runInstanceCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	f, err := loadFont(fontPath, mustFlagBool(flags["testfont"], "testfont"))
	if err != nil {
		fatalf("cannot load font %s: %v", fontPath, err)
	}
	otf := f.OTF
	var inst *otquery.Instance
	if named := mustFlagInt(flags["named"], "named"); named >= 0 {
		inst, err = otquery.NamedInstance(otf, named)
	} else {
		var loc map[ot.Tag]float64
		if loc, err = parseLocation(mustFlagString(flags["at"], "at")); err != nil {
			fatalf("%v", err)
		}
		inst, err = otquery.InstanceAt(otf, loc)
	}
	if err != nil {
		fatalf("%v", err)
	}
	gids, err := parseGlyphRange(mustFlagString(flags["glyphs"], "glyphs"))
	if err != nil {
		fatalf("%v", err)
	}
	ppem := mustFlagInt(flags["ppem"], "ppem")
	if ppem <= 0 {
		fatalf("invalid --ppem flag: %d", ppem)
	}
	fmt.Printf("Instance: %s\n", otvar.InstanceName(inst))
	fmt.Printf("Normalized: %v\n", inst.NormalizedCoords())
	m := otquery.FontMetrics(inst)
	fmt.Printf("Metrics: ascent=%d descent=%d line gap=%d x-height=%d cap height=%d\n",
		m.Ascent, m.Descent, m.LineGap, m.XHeight, m.CapHeight)
	printGlyphTable(inst, gids, fixed.I(ppem), mustFlagBool(flags["vertical"], "vertical"))
	if mustFlagBool(flags["crosscheck"], "crosscheck") {
		crosscheck(f.Binary, inst, gids)
	}
}

func crosscheck(data []byte, inst *otquery.Instance, gids []ot.GlyphIndex) {
	n := inst.Font().NumGlyphs()
	gids = slices.DeleteFunc(slices.Clone(gids), func(gid ot.GlyphIndex) bool { return int(gid) >= n })
	mismatches, err := gotextcheck.Compare(data, inst, gids)
	if err != nil {
		fatalf("cross-check failed: %v", err)
	}
	if len(mismatches) == 0 {
		fmt.Printf("go-text agrees on %d advances\n", len(gids))
		return
	}
	for _, m := range mismatches {
		fmt.Printf("mismatch: %s\n", m)
	}
}

func printGlyphTable(inst *otquery.Instance, gids []ot.GlyphIndex, ppem fixed.Int26_6, vertical bool) {
	query := otquery.GlyphMetrics
	data := [][]string{{"glyph", "advance", "lsb", "px"}}
	if vertical {
		query = otquery.VerticalGlyphMetrics
		data = [][]string{{"glyph", "advance", "tsb", "origin", "px"}}
	}
	upem := inst.Font().UnitsPerEm()
	for _, gid := range gids {
		m, ok := query(inst, gid)
		if !ok {
			break
		}
		row := []string{fmt.Sprint(gid), m.Advance.String(), m.Bearing.String()}
		if vertical {
			origin := "-"
			if m.HasOrigin {
				origin = m.OriginY.String()
			}
			row = append(row, origin)
		}
		data = append(data, append(row, otquery.Scale(m.Advance, upem, ppem).String()))
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runBuildCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	designPath := strings.TrimSpace(args["design"].Value)
	if designPath == "" {
		fatalf("design path is required")
	}
	yml, err := os.ReadFile(designPath)
	if err != nil {
		fatalf("cannot read design %s: %v", designPath, err)
	}
	d, err := fontbuild.ParseDesign(yml)
	if err != nil {
		fatalf("%v", err)
	}
	font, err := fontbuild.Build(d)
	if err != nil {
		fatalf("%v", err)
	}
	out := mustFlagString(flags["output"], "output")
	if err := os.WriteFile(out, font, 0o644); err != nil {
		fatalf("cannot write font: %v", err)
	}
	fmt.Printf("wrote %s: %d bytes, %d glyphs, %d axes, %d masters\n",
		out, len(font), d.GlyphCount(), len(d.Axes), len(d.Masters))
}
