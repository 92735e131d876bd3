package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/otvar"
	"github.com/npillmayer/otvar/ot"
	"github.com/thatisuday/commando"
)

func main() {
	commando.
		SetExecutableName("ot-tools").
		SetVersion("v0.0.1").
		SetDescription("CLI for inspecting OpenType font variations.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("font").
		SetDescription("Print diagnostics and table information for an OpenType font.").
		SetShortDescription("font diagnostics").
		AddArgument("font", "OpenType font file path", "").
		AddArgument("tables...", "optional list of table tags (e.g. fvar,HVAR,MVAR)", "").
		AddFlag("testfont,t", "parse font as relaxed test font fixture", commando.Bool, nil).
		AddFlag("errors,e", "print parse errors and warnings", commando.Bool, nil).
		SetAction(runFontCommand)

	commando.
		Register("axes").
		SetDescription("List the variation axes and named instances of one or more fonts.").
		SetShortDescription("axes and named instances").
		AddArgument("fonts...", "OpenType font file paths", "").
		AddFlag("testfont,t", "parse fonts as relaxed test font fixtures", commando.Bool, nil).
		SetAction(runAxesCommand)

	commando.
		Register("instance").
		SetDescription("Print font and glyph metrics at a location in design space.").
		SetShortDescription("metrics of an instance").
		AddArgument("font", "OpenType font file path", "").
		AddFlag("at,a", "location in user coordinates (e.g. wght=700,wdth=87.5)", commando.String, "-").
		AddFlag("named,n", "index of a named instance (overrides --at)", commando.Int, -1).
		AddFlag("glyphs,g", "glyph range (e.g. 0-10 or 3,5,8)", commando.String, "0-9").
		AddFlag("ppem,p", "font size in pixels-per-em for scaled advances", commando.Int, 16).
		AddFlag("vertical,v", "print vertical glyph metrics", commando.Bool, nil).
		AddFlag("crosscheck,c", "compare advances with go-text/typesetting", commando.Bool, nil).
		AddFlag("testfont,t", "parse font as relaxed test font fixture", commando.Bool, nil).
		SetAction(runInstanceCommand)

	commando.
		Register("build").
		SetDescription("Build a variable font from a YAML design description.").
		SetShortDescription("build a font").
		AddArgument("design", "YAML design file path", "").
		AddFlag("output,o", "output font file", commando.String, "ot-tools-build.ttf").
		SetAction(runBuildCommand)

	commando.Parse(nil)
}

func splitCSVSpace(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// parseLocation reads coordinates like "wght=700,wdth=87.5". "-" denotes the
// default location.
func parseLocation(spec string) (map[ot.Tag]float64, error) {
	loc := make(map[ot.Tag]float64)
	if spec == "-" || spec == "" {
		return loc, nil
	}
	for _, item := range splitCSVSpace(spec) {
		tag, value, ok := strings.Cut(item, "=")
		tag = strings.TrimSpace(tag)
		if !ok || len(tag) != 4 {
			return nil, fmt.Errorf("invalid coordinate %q (expected e.g. wght=700)", item)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", item, err)
		}
		loc[ot.T(tag)] = v
	}
	return loc, nil
}

// parseGlyphRange reads glyph IDs like "0-10" or "3,5,8", or mixtures thereof.
func parseGlyphRange(spec string) ([]ot.GlyphIndex, error) {
	var gids []ot.GlyphIndex
	for _, item := range splitCSVSpace(spec) {
		from, to, isRange := strings.Cut(item, "-")
		lo, err := parseGlyphID(from)
		if err != nil {
			return nil, err
		}
		hi := lo
		if isRange {
			if hi, err = parseGlyphID(to); err != nil {
				return nil, err
			}
		}
		if hi < lo {
			return nil, fmt.Errorf("invalid glyph range %q", item)
		}
		for gid := lo; gid <= hi; gid++ {
			gids = append(gids, ot.GlyphIndex(gid))
		}
	}
	return gids, nil
}

func parseGlyphID(token string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || n < 0 || n > 0xFFFF {
		return 0, fmt.Errorf("invalid glyph ID %q", token)
	}
	return n, nil
}

func loadFont(path string, testfont bool) (*otvar.ScalableFont, error) {
	if testfont {
		return otvar.LoadVariableFont(path, ot.IsTestfont)
	}
	return otvar.LoadVariableFont(path)
}

func mustLoadFont(path string, testfont bool) *ot.Font {
	f, err := loadFont(path, testfont)
	if err != nil {
		fatalf("cannot load font %s: %v", path, err)
	}
	return f.OTF
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func mustFlagString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return s
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "ot-tools: "+format+"\n", args...)
	os.Exit(1)
}
