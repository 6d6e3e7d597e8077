package glyph

import (
	"fmt"

	"github.com/mastercactapus/gplot/toolpath"
)

// Options control text placement, all in glyph units.
type Options struct {
	// LineLength is the width after which text wraps to a new line.
	LineLength float64
	// LineSpacing is the vertical distance between two lines.
	LineSpacing float64
	// Padding is the empty space between two characters.
	Padding float64
}

// DefaultOptions mirror common single-stroke font proportions.
var DefaultOptions = Options{LineSpacing: 8, Padding: 1.5}

// Layout places text left to right, starting new lines downward at a
// newline or when the next character would pass LineLength.
//
// The result is a raw sequence of states that still needs to be coalesced.
func Layout(font Font, text string, opt Options) (toolpath.Path, error) {
	if opt.LineLength <= 0 {
		return nil, fmt.Errorf("layout: line length must be positive, got %g", opt.LineLength)
	}

	var p toolpath.Path
	var x, y float64
	for _, r := range text {
		switch r {
		case '\r':
			continue
		case '\n':
			x = 0
			y -= opt.LineSpacing
			continue
		}

		g, advance, err := font.Glyph(r)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		if x > 0 && x+advance > opt.LineLength {
			x = 0
			y -= opt.LineSpacing
		}

		if len(g) > 0 {
			p = append(p, toolpath.Raw(toolpath.Up, g[0].X+x, g[0].Y+y))
		}
		for _, s := range g {
			p = append(p, toolpath.Raw(s.Pen, s.X+x, s.Y+y))
		}
		x += advance + opt.Padding
	}

	return p, nil
}
