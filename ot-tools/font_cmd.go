package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/otvar"
	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"github.com/thatisuday/commando"
	"golang.org/x/sync/errgroup"
)

func runFontCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	fontPath := strings.TrimSpace(args["font"].Value)
	if fontPath == "" {
		fatalf("font path is required")
	}
	otf := mustLoadFont(fontPath, mustFlagBool(flags["testfont"], "testfont"))

	fmt.Printf("Path: %s\n", fontPath)
	family, subfamily := otvar.FamilyName(otf)
	if family != "" {
		fmt.Printf("Family: %s\n", family)
	}
	if subfamily != "" {
		fmt.Printf("Subfamily: %s\n", subfamily)
	}
	fmt.Printf("Glyphs: %d, units per em: %d\n", otf.NumGlyphs(), otf.UnitsPerEm())

	tags := otf.TableTags()
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	fmt.Printf("Tables (%d):", len(tags))
	for _, tag := range tags {
		fmt.Printf(" %s", tag.String())
	}
	fmt.Println()

	var variations []string
	for _, tag := range []string{"fvar", "avar", "HVAR", "VVAR", "MVAR"} {
		if otf.Table(ot.T(tag)) != nil {
			variations = append(variations, tag)
		}
	}
	if len(variations) == 0 {
		fmt.Println("Variations: none")
	} else {
		fmt.Printf("Variations: %s (%d axes)\n", strings.Join(variations, ","), len(otquery.Axes(otf)))
	}

	errs := otf.Errors()
	warns := otf.Warnings()
	crit := otf.CriticalErrors()
	fmt.Printf("Issues: errors=%d warnings=%d critical=%d\n", len(errs), len(warns), len(crit))

	if len(args["tables"].Value) > 0 {
		printSelectedTables(otf, args["tables"].Value)
	}
	if mustFlagBool(flags["errors"], "errors") {
		for _, e := range errs {
			fmt.Printf("error: %s\n", e.Error())
		}
		for _, w := range warns {
			fmt.Printf("warning: %s\n", w.String())
		}
	}
}

func printSelectedTables(otf *ot.Font, raw string) {
	requested := splitCSVSpace(raw)
	for _, t := range requested {
		tagName := strings.TrimSpace(t)
		if tagName == "" {
			continue
		}
		tag := ot.T(tagName)
		table := otf.Table(tag)
		if table == nil {
			fmt.Printf("table %s: missing\n", tagName)
			continue
		}
		off, size := table.Extent()
		fmt.Printf("table %s: offset=%d size=%d\n", tagName, off, size)
	}
}

// runAxesCommand loads fonts concurrently and prints their design spaces in
// the order given.
func runAxesCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	paths := splitCSVSpace(args["fonts"].Value)
	if len(paths) == 0 {
		fatalf("at least one font path is required")
	}
	testfont := mustFlagBool(flags["testfont"], "testfont")
	reports := make([]string, len(paths))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := loadFont(path, testfont)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = describeDesignSpace(path, f.OTF)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatalf("%v", err)
	}
	fmt.Print(strings.Join(reports, "\n"))
}

func describeDesignSpace(path string, otf *ot.Font) string {
	sb := strings.Builder{}
	family, _ := otvar.FamilyName(otf)
	fmt.Fprintf(&sb, "%s (%s)\n", path, family)
	axes := otquery.Axes(otf)
	if len(axes) == 0 {
		sb.WriteString("  no variation axes\n")
		return sb.String()
	}
	for _, a := range axes {
		hidden := ""
		if a.Hidden {
			hidden = " hidden"
		}
		fmt.Fprintf(&sb, "  axis %s %-12q min=%g default=%g max=%g%s\n",
			a.Tag, a.Name, a.Min, a.Default, a.Max, hidden)
	}
	for _, inst := range otquery.Instances(otf) {
		loc := make([]string, len(axes))
		for i, a := range axes {
			loc[i] = fmt.Sprintf("%s=%g", a.Tag, inst.Coords[a.Tag])
		}
		ps := ""
		if inst.PostScriptName != "" {
			ps = " [" + inst.PostScriptName + "]"
		}
		fmt.Fprintf(&sb, "  instance %d %q%s at %s\n", inst.Index, inst.Subfamily, ps, strings.Join(loc, " "))
	}
	return sb.String()
}
