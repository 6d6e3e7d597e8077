// Package toolpath holds the plotter states produced from a G-code document
// and the geometric transforms applied to them before encoding.
package toolpath

import (
	"fmt"

	"github.com/mastercactapus/gplot/coord"
)

const (
	// Up is a travel move; nothing is drawn.
	Up = 0
	// Down draws a stroke to the target point.
	Down = 1
)

// State is the full plotter state after one instruction.
type State struct {
	Pen int
	coord.Point

	// Line is the 1-indexed source line, or 0 for synthesized states.
	Line int
}

// Seed is the state every document starts from.
func Seed() State { return State{Pen: Up} }

// Raw builds a synthesized state from coordinates.
func Raw(pen int, x, y float64) State {
	return State{Pen: pen, Point: coord.Pt(x, y)}
}

// Drawing reports whether the segment ending at s marks the medium.
func (s State) Drawing() bool { return s.Pen == Down }

// Same reports whether s and o have identical pen and coordinates.
func (s State) Same(o State) bool {
	return s.Pen == o.Pen && s.Point.Equal(o.Point)
}

func (s State) String() string {
	line := "EOF"
	if s.Line > 0 {
		line = fmt.Sprint(s.Line)
	}
	return fmt.Sprintf("[%5s] pen=%d x=%12.5f y=%12.5f", line, s.Pen, s.X, s.Y)
}

// Path is an ordered polyline of states.
type Path []State

// Bounds returns the bounding box of every state in p.
func (p Path) Bounds() coord.Bounds {
	var b coord.Bounds
	for _, s := range p {
		b = b.Extend(s.Point)
	}
	return b
}

// Last returns the final state of p.
func (p Path) Last() (State, bool) {
	if len(p) == 0 {
		return State{}, false
	}
	return p[len(p)-1], true
}
