// Package fontload reads font files for the command line tools and for the
// top-level package.
package fontload

import (
	"os"

	"github.com/npillmayer/otvar/ot"
	"github.com/npillmayer/otvar/otquery"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

func tracer() tracing.Trace {
	return tracing.Select("tyse.fonts")
}

// ScalableFont is a parsed font with its original bytes.
type ScalableFont struct {
	Fontname string
	Filepath string
	Binary   []byte
	OTF      *ot.Font
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string, opts ...ot.ParseOption) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez, opts...)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
//
// The font name is taken from x/image's SFNT parser if it accepts the font.
// It is pickier than package ot, e.g. it insists on a cmap table, so the name
// table is read directly otherwise.
func ParseOpenTypeFont(fbytes []byte, opts ...ot.ParseOption) (*ScalableFont, error) {
	otf, err := ot.Parse(fbytes, opts...)
	if err != nil {
		return nil, err
	}
	f := &ScalableFont{Binary: fbytes, OTF: otf}
	if sf, err := sfnt.Parse(fbytes); err == nil {
		f.Fontname, err = sf.Name(nil, sfnt.NameIDFull)
		if err != nil {
			tracer().Debugf("SFNT has no full name: %v", err)
		}
	} else {
		tracer().Debugf("SFNT parser rejected font: %v", err)
	}
	if f.Fontname == "" {
		f.Fontname, _ = otquery.NameByID(otf, uint16(sfnt.NameIDFull))
	}
	tracer().Infof("loaded font %q, %d tables", f.Fontname, len(otf.TableTags()))
	return f, nil
}
