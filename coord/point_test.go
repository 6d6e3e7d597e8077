package coord

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint_Add(t *testing.T) {
	a := Point{X: 1, Y: 2}
	b := Point{X: 4, Y: 5}

	assert.Equal(t, Point{X: 5, Y: 7}, a.Add(b))
	assert.Equal(t, Point{X: -3, Y: -3}, a.Sub(b))
	assert.Equal(t, Point{X: 2, Y: 4}, a.Mul(2))
}

func TestPoint_Round(t *testing.T) {
	assert.Equal(t, Point{X: 3, Y: -3}, Point{X: 2.5, Y: -2.5}.Round())
	assert.Equal(t, Point{X: 0, Y: 1}, Point{X: 0.4, Y: 0.6}.Round())
}

func TestPoint_Finite(t *testing.T) {
	assert.True(t, Pt(1, 2).Finite())
	assert.False(t, Pt(math.NaN(), 2).Finite())
	assert.False(t, Pt(1, math.Inf(-1)).Finite())
}

func TestBounds(t *testing.T) {
	var b Bounds
	assert.True(t, b.Empty())

	b = b.Extend(Pt(1, 5)).Extend(Pt(-2, 3)).Extend(Pt(4, 4))
	assert.False(t, b.Empty())
	assert.Equal(t, Pt(-2, 3), b.Min)
	assert.Equal(t, Pt(4, 5), b.Max)
	assert.Equal(t, Pt(6, 2), b.Span())
}
