package coord

import (
	"math"
)

type Point struct{ X, Y float64 }

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Equal(b Point) bool {
	return p.X == b.X && p.Y == b.Y
}

func (p Point) Mul(val float64) Point {
	p.X *= val
	p.Y *= val
	return p
}

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	return p
}

// Sub will subtract the target values from p.
func (p Point) Sub(target Point) Point {
	p.X -= target.X
	p.Y -= target.Y
	return p
}

// Round will round both coordinates half away from zero.
func (p Point) Round() Point {
	p.X = math.Round(p.X)
	p.Y = math.Round(p.Y)
	return p
}

// Finite reports whether neither coordinate is NaN or infinite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Bounds is an axis-aligned box. The zero value is empty.
type Bounds struct {
	Min, Max Point
	valid    bool
}

// Extend grows b to contain p.
func (b Bounds) Extend(p Point) Bounds {
	if !b.valid {
		return Bounds{Min: p, Max: p, valid: true}
	}
	b.Min.X = math.Min(b.Min.X, p.X)
	b.Min.Y = math.Min(b.Min.Y, p.Y)
	b.Max.X = math.Max(b.Max.X, p.X)
	b.Max.Y = math.Max(b.Max.Y, p.Y)
	return b
}

func (b Bounds) Empty() bool { return !b.valid }

// Span returns the width and height of b.
func (b Bounds) Span() Point {
	return b.Max.Sub(b.Min)
}
