package toolpath

import (
	"errors"
	"math"

	"github.com/mastercactapus/gplot/coord"
)

var (
	// ErrEmptyPath is returned when a transform needs at least one state.
	ErrEmptyPath = errors.New("toolpath: empty path")

	// ErrDegenerate is returned when the path has no extent to scale.
	ErrDegenerate = errors.New("toolpath: path has zero span on both axes")
)

// TranslateToFirstQuadrant moves p so that its minimum X and Y are both 0.
//
// It returns the translation vector that was added to every state.
func (p Path) TranslateToFirstQuadrant() (coord.Point, error) {
	b := p.Bounds()
	if b.Empty() {
		return coord.Point{}, ErrEmptyPath
	}
	off := coord.Point{}.Sub(b.Min)
	for i := range p {
		p[i].Point = p[i].Point.Add(off)
	}
	return off, nil
}

// AppendEnd terminates p with a travel state, either back at the origin or
// lifting the pen in place.
func (p *Path) AppendEnd(home bool) {
	if home {
		*p = append(*p, Raw(Up, 0, 0))
		return
	}
	last, ok := p.Last()
	if !ok {
		return
	}
	*p = append(*p, Raw(Up, last.X, last.Y))
}

// DilationFactor returns the largest uniform scale that fits p inside
// width x height.
//
// An axis with zero span does not constrain the factor.
func (p Path) DilationFactor(width, height float64) (float64, error) {
	b := p.Bounds()
	if b.Empty() {
		return 0, ErrEmptyPath
	}
	span := b.Span()
	factor := math.Inf(1)
	if span.X > 0 {
		factor = math.Min(factor, width/span.X)
	}
	if span.Y > 0 {
		factor = math.Min(factor, height/span.Y)
	}
	if math.IsInf(factor, 1) || math.IsNaN(factor) {
		return 0, ErrDegenerate
	}
	return factor, nil
}

// Dilate multiplies every coordinate by factor.
func (p Path) Dilate(factor float64) {
	for i := range p {
		p[i].Point = p[i].Point.Mul(factor)
	}
}

// Resize scales p to fit width x height, multiplied by extra.
//
// It returns the factor that was applied.
func (p Path) Resize(width, height, extra float64) (float64, error) {
	factor, err := p.DilationFactor(width, height)
	if err != nil {
		return 0, err
	}
	factor *= extra
	p.Dilate(factor)
	return factor, nil
}
