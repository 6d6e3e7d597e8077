// Package glyph lays out text using per-character G-code drawings.
package glyph

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/mastercactapus/gplot/gcode"
	"github.com/mastercactapus/gplot/toolpath"
)

var ErrNoGlyph = errors.New("no glyph for character")

// A Font supplies the drawing of a single character in glyph units, with
// the pen starting up, and the horizontal distance it occupies.
type Font interface {
	Glyph(r rune) (p toolpath.Path, advance float64, err error)
}

// DefaultSpaceWidth is used for ' ' when a font has no drawing for it.
const DefaultSpaceWidth = 4.0

// DirFont reads glyphs from a directory holding one file per character,
// named after the decimal character code (65.gcode for 'A').
//
// Glyph files are parsed with G0/G1 pen detection. The advance of a glyph
// is its rightmost X coordinate.
type DirFont struct {
	Dir        string
	SpaceWidth float64
	Log        *log.Logger

	mx    sync.Mutex
	cache map[rune]cached
}

type cached struct {
	path    toolpath.Path
	advance float64
}

func NewDirFont(dir string, l *log.Logger) *DirFont {
	return &DirFont{Dir: dir, SpaceWidth: DefaultSpaceWidth, Log: l}
}

func (f *DirFont) filename(r rune) string {
	return filepath.Join(f.Dir, fmt.Sprintf("%d.gcode", r))
}

func (f *DirFont) Glyph(r rune) (toolpath.Path, float64, error) {
	f.mx.Lock()
	defer f.mx.Unlock()
	if c, ok := f.cache[r]; ok {
		return c.path, c.advance, nil
	}

	c, err := f.load(r)
	if err != nil {
		return nil, 0, err
	}
	if f.cache == nil {
		f.cache = make(map[rune]cached)
	}
	f.cache[r] = c
	return c.path, c.advance, nil
}

func (f *DirFont) load(r rune) (cached, error) {
	data, err := os.ReadFile(f.filename(r))
	if errors.Is(err, os.ErrNotExist) && r == ' ' {
		return cached{advance: f.SpaceWidth}, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return cached{}, fmt.Errorf("%w %q", ErrNoGlyph, r)
	}
	if err != nil {
		return cached{}, fmt.Errorf("read glyph %q: %w", r, err)
	}

	interp, err := gcode.NewInterpreter(gcode.UseG(), f.Log)
	if err != nil {
		return cached{}, err
	}
	p, err := gcode.Parse(string(data), interp, f.Log)
	if err != nil {
		return cached{}, fmt.Errorf("parse glyph %q: %w", r, err)
	}

	c := cached{path: p}
	if b := p.Bounds(); !b.Empty() {
		c.advance = b.Max.X
	}
	return c, nil
}
