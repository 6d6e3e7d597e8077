// Package job runs a document through the whole pipeline: pen detection,
// parsing, normalization and encoding.
package job

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/mastercactapus/gplot/coord"
	"github.com/mastercactapus/gplot/gcode"
	"github.com/mastercactapus/gplot/internal/diaglog"
	"github.com/mastercactapus/gplot/toolpath"
	"github.com/mastercactapus/gplot/wire"
)

var ErrNothingToDraw = errors.New("document has no drawable states")

// Config is everything a single conversion needs.
type Config struct {
	// Mode selects pen detection; the zero value detects it from the document.
	Mode gcode.Mode

	// Width and Height bound the output, in steps.
	Width, Height float64
	// Dilation is an extra factor applied after fitting.
	Dilation float64

	// EndHome returns the pen to the origin when done.
	EndHome bool

	Log *log.Logger
}

func (c Config) Validate() error {
	if !(c.Width > 0) || !(c.Height > 0) {
		return fmt.Errorf("invalid size %gx%g: both sides must be positive", c.Width, c.Height)
	}
	if !(c.Dilation > 0) {
		return fmt.Errorf("invalid dilation %g: must be positive", c.Dilation)
	}
	if !c.Mode.Auto() {
		return c.Mode.Validate()
	}
	return nil
}


// Result holds the normalized path and its encoding.
type Result struct {
	Mode        gcode.Mode
	Path        toolpath.Path
	Translation coord.Point
	Factor      float64
	Binary      []byte
}

// WriteGcode writes the normalized path as G-code.
func (r *Result) WriteGcode(w io.Writer) error {
	return gcode.Write(w, r.Path)
}

// Build converts a G-code document.
func Build(text string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := diaglog.Or(cfg.Log)

	mode := cfg.Mode
	if mode.Auto() {
		var err error
		mode, err = gcode.Detect(text, l)
		if err != nil {
			return nil, fmt.Errorf("detect pen mode: %w", err)
		}
	}
	interp, err := gcode.NewInterpreter(mode, l)
	if err != nil {
		return nil, err
	}

	p, err := gcode.Parse(text, interp, l)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	res, err := normalize(p, cfg, l)
	if err != nil {
		return nil, err
	}
	res.Mode = interp.Mode()
	return res, nil
}

// BuildPath converts raw states, such as laid out text, using G0/G1 semantics.
func BuildPath(raw toolpath.Path, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := diaglog.Or(cfg.Log)

	p, err := gcode.ReadPath(&gcode.StatesReader{States: raw})
	if err != nil {
		return nil, err
	}
	res, err := normalize(p, cfg, l)
	if err != nil {
		return nil, err
	}
	res.Mode = gcode.UseG()
	return res, nil
}

func normalize(p toolpath.Path, cfg Config, l *log.Logger) (*Result, error) {
	if len(p) == 0 {
		return nil, ErrNothingToDraw
	}
	res := &Result{Path: p}

	var err error
	res.Translation, err = res.Path.TranslateToFirstQuadrant()
	if err != nil {
		return nil, err
	}
	l.Printf("translate: x=%g y=%g", res.Translation.X, res.Translation.Y)

	res.Path.AppendEnd(cfg.EndHome)

	res.Factor, err = res.Path.Resize(cfg.Width, cfg.Height, cfg.Dilation)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}
	l.Printf("resize: factor=%g", res.Factor)

	res.Binary, err = wire.Encode(res.Path)
	if err != nil {
		return nil, err
	}
	return res, nil
}
