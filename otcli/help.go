package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "at", "instance", "location":
		pterm.Info.Println("Instances")
		pterm.Println(`
	Variation queries refer to the current instance, i.e. a location in
	design space. It starts out as the default instance.

	at:wght=700,wdth=87.5   sets the location in user coordinates;
	                        axes not mentioned are at their default
	at                      returns to the default instance
	named:3                 selects named instance #3 (see 'instances')
	`)
	case "regions", "store", "ivs":
		pterm.Info.Println("Item Variation Store")
		pterm.Println(`
	HVAR, VVAR and MVAR each carry an item variation store. Its regions are
	lists of tents, one per axis:
	+-------+------+-------+
	| start | peak | end   |   in normalized coordinates
	+-------+------+-------+
	A region's scalar is the product of its tents at the current instance.
	Deltas are weighted by these scalars and summed up.

	regions:MVAR            lists regions and scalars of the store of MVAR
	`)
	case "metrics", "hvar", "vvar", "mvar":
		pterm.Info.Println("Metrics")
		pterm.Println(`
	hvar:12     advance and left side bearing of glyph 12
	vvar:12     advance, top side bearing and vertical origin of glyph 12
	mvar        font-wide metrics with their default and current values
	`)
	default:
		pterm.Info.Println("General Help")
		pterm.Println(`
	Commands are separated by blanks, arguments by colons:

	tables      list the tables of the font
	errors      list errors and warnings found while parsing
	axes        list the variation axes
	instances   list the named instances
	avar        list the axis value maps
	at, named   set the current instance (help:at)
	regions     list variation regions (help:regions)
	hvar, vvar  glyph metrics (help:metrics)
	mvar        font-wide metrics
	quit        leave the CLI
	`)
	}
}
