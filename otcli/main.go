package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/otvar"
	"github.com/npillmayer/otvar/internal/fontbuild"
	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'tyse.fonts'
func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}

func main() {
	initDisplay()
	if err := setupTracing(); err != nil {
		fmt.Printf("error configuring tracing: %v\n", err)
		os.Exit(1)
	}
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load")
	design := flag.String("design", "", "YAML font design to build and load instead of a font")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError) // until the font is loaded
	pterm.Info.Println("Welcome to the OpenType variations CLI")
	repl, err := readline.New("otvar > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	if err := intp.loadFont(*fontname, *design); err != nil {
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	if !setTraceLevel(*tlevel) {
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	pterm.Info.Println("Quit with <ctrl>D")
	intp.REPL()
}

func setTraceLevel(name string) bool {
	switch name {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		return false
	}
	return true
}

// setupTracing routes all tracers to the Go standard logger.
func setupTracing() error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.tyse.fonts":   "Info",
		"trace.font.otvar":   "Error",
		"trace.font.otquery": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object. It holds a font and the instance all
// variation queries refer to.
type Intp struct {
	font *ot.Font
	inst *otquery.Instance
	repl *readline.Instance
}

func (intp *Intp) String() string {
	if intp == nil || intp.inst == nil {
		return "()"
	}
	return fmt.Sprintf("( instance=%s )", otvar.InstanceName(intp.inst))
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if quit := intp.execute(intp.parseCommand(line)); quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a single step of a command line, e.g. "hvar:12".
type Op struct {
	code int
	arg  string
}

const (
	QUIT int = iota // takes no argument and ends a command line
	HELP
	TABLES
	ERRORS
	AXES
	INSTANCES
	AT
	NAMED
	AVAR
	REGIONS
	HVAR
	VVAR
	MVAR
)

// opNames is indexed by op code.
var opNames = []string{
	"quit", "help", "tables", "errors", "axes", "instances", "at",
	"named", "avar", "regions", "hvar", "vvar", "mvar",
}

var opMap = func() map[string]int {
	m := make(map[string]int, len(opNames))
	for code, name := range opNames {
		m[name] = code
	}
	return m
}()

// parseCommand splits a line into steps, separated by blanks. Each step
// is of the form "op:arg", e.g. "at:wght=700,wdth=80" or "hvar:12".
// Unknown ops show help; steps after a quit are dropped.
func (intp *Intp) parseCommand(line string) []Op {
	var cmd []Op
	for _, step := range strings.Fields(line) {
		name, arg, _ := strings.Cut(step, ":")
		code, ok := opMap[strings.ToLower(name)]
		if !ok {
			code = HELP
		}
		if code == QUIT {
			return append(cmd, Op{code: QUIT})
		}
		tracer().Debugf("%s %s", opNames[code], arg)
		cmd = append(cmd, Op{code: code, arg: arg})
	}
	return cmd
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:      quitOp,
	HELP:      helpOp,
	TABLES:    tablesOp,
	ERRORS:    errorsOp,
	AXES:      axesOp,
	INSTANCES: instancesOp,
	AT:        atOp,
	NAMED:     namedOp,
	AVAR:      avarOp,
	REGIONS:   regionsOp,
	HVAR:      hvarOp,
	VVAR:      vvarOp,
	MVAR:      mvarOp,
}

// execute runs the steps of a command until one of them fails or quits.
func (intp *Intp) execute(cmd []Op) (quit bool) {
	for i := range cmd {
		err, stop := commandFn[cmd[i].code](intp, &cmd[i])
		if err != nil {
			pterm.Error.Println(err)
			return false
		}
		if stop {
			return true
		}
	}
	return false
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Font Loading -----------------------------------------------------

// loadFont loads a font file or, if a design is given, builds a font from it.
func (intp *Intp) loadFont(fontname, design string) error {
	var f *otvar.ScalableFont
	var err error
	switch {
	case design != "":
		f, err = buildFont(design)
	case fontname != "":
		f, err = otvar.LoadVariableFont(fontname)
	default:
		err = errors.New("no font given; use -font or -design")
	}
	if err != nil {
		return err
	}
	tracer().Infof("loaded font %s", f.Fontname)
	intp.font = f.OTF
	intp.inst = otquery.DefaultInstance(intp.font)
	pterm.Printf("font tables: %v\n", intp.font.TableTags())
	return nil
}

func buildFont(path string) (*otvar.ScalableFont, error) {
	yml, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := fontbuild.ParseDesign(yml)
	if err != nil {
		return nil, err
	}
	font, err := fontbuild.Build(d)
	if err != nil {
		return nil, err
	}
	return otvar.ParseVariableFont(font)
}

// ----------------------------------------------------------------------

var ErrNoFont = errors.New("no font loaded")

func (intp *Intp) checkFont() error {
	if intp.font == nil || intp.inst == nil {
		return ErrNoFont
	}
	return nil
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
