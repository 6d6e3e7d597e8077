package gcode

import (
	"log"

	"github.com/mastercactapus/gplot/internal/diaglog"
)

// AttrKind is the plotter attribute a word sets.
type AttrKind int

const (
	AttrPen AttrKind = iota
	AttrX
	AttrY
)

// Attr is an interpreted word.
type Attr struct {
	Kind  AttrKind
	Value float64
}

// Interpreter turns single words into plotter attributes according to
// the configured pen detection Mode.
type Interpreter struct {
	mode Mode
	log  *log.Logger
}

// NewInterpreter returns an Interpreter for mode. Diagnostics go to l,
// which may be nil.
func NewInterpreter(mode Mode, l *log.Logger) (*Interpreter, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	return &Interpreter{mode: mode, log: diaglog.Or(l)}, nil
}

func (in *Interpreter) Mode() Mode { return in.mode }

// Attribute interprets token found on the given source line.
//
// It returns false for empty tokens, malformed tokens and tags that carry no
// meaning under the current mode; all but the first are reported.
func (in *Interpreter) Attribute(token string, line int) (Attr, bool) {
	if token == "" {
		return Attr{}, false
	}
	a, ok := in.attribute(token)
	if !ok {
		in.log.Printf("WARNING line %5d: ignoring unknown attribute \"%s\"", line, token)
	}
	return a, ok
}

func (in *Interpreter) attribute(token string) (Attr, bool) {
	w, err := ParseWord(token)
	if err != nil {
		return Attr{}, false
	}

	switch {
	case w.W == 'G' && in.mode.Kind == ModeG:
		if w.Arg != 0 && w.Arg != 1 {
			return Attr{}, false
		}
		return Attr{Kind: AttrPen, Value: w.Arg}, true
	case w.W == 'F' && in.mode.Kind == ModeFeed,
		w.W == 'S' && in.mode.Kind == ModeSpeed:
		return Attr{Kind: AttrPen, Value: in.visible(w.Arg)}, true
	case w.W == 'X':
		return Attr{Kind: AttrX, Value: w.Arg}, true
	case w.W == 'Y':
		return Attr{Kind: AttrY, Value: w.Arg}, true
	}

	return Attr{}, false
}

func (in *Interpreter) visible(v float64) float64 {
	if v < in.mode.Threshold {
		return 1
	}
	return 0
}
