package job

import (
	"bytes"
	"errors"
	"log"
	"math"
	"testing"

	"github.com/mastercactapus/gplot/coord"
	"github.com/mastercactapus/gplot/gcode"
	"github.com/mastercactapus/gplot/toolpath"
	"github.com/mastercactapus/gplot/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const square = `(square)
G0 X-10 Y-10
G1 X10 Y-10
G1 X10 Y10
G1 X-10 Y10
G1 X-10 Y-10
G0 X0 Y0
`

func TestBuild(t *testing.T) {
	var logBuf bytes.Buffer
	res, err := Build(square, Config{Width: 100, Height: 50, Dilation: 1, Log: log.New(&logBuf, "", 0)})
	require.NoError(t, err)

	assert.Equal(t, gcode.UseG(), res.Mode)
	assert.Equal(t, coord.Pt(10, 10), res.Translation)
	assert.Equal(t, 2.5, res.Factor)

	want := toolpath.Path{
		toolpath.Raw(toolpath.Up, 0, 0),
		toolpath.Raw(toolpath.Down, 50, 0),
		toolpath.Raw(toolpath.Down, 50, 50),
		toolpath.Raw(toolpath.Down, 0, 50),
		toolpath.Raw(toolpath.Down, 0, 0),
		toolpath.Raw(toolpath.Up, 0, 0),
	}
	require.Len(t, res.Path, len(want))
	for i := range want {
		assert.True(t, want[i].Same(res.Path[i]), "state %d: %s", i, res.Path[i])
	}

	cmds, err := wire.Decode(res.Binary)
	require.NoError(t, err)
	assert.Len(t, cmds, len(want))

	var out bytes.Buffer
	require.NoError(t, res.WriteGcode(&out))
	assert.Equal(t, "G0 X0.000 Y0.000\nG1 X50.000 Y0.000\n", out.String()[:35])

	assert.Contains(t, logBuf.String(), "detect: using g\n")
	assert.Contains(t, logBuf.String(), "comment line     1: square\n")
	assert.Contains(t, logBuf.String(), "translate: x=10 y=10\n")
	assert.Contains(t, logBuf.String(), "resize: factor=2.5\n")
}

func TestBuild_Bounds(t *testing.T) {
	res, err := Build(square, Config{Width: 30, Height: 80, Dilation: 1, EndHome: true})
	require.NoError(t, err)

	b := res.Path.Bounds()
	assert.Equal(t, coord.Point{}, b.Min)
	assert.InDelta(t, 30, b.Span().X, 1e-9)
	assert.LessOrEqual(t, b.Span().Y, 80.0)

	last, _ := res.Path.Last()
	assert.True(t, last.Same(toolpath.Raw(toolpath.Up, 0, 0)))
}

func TestBuild_FeedMode(t *testing.T) {
	doc := "F3000 X0 Y0\nF200 X4 Y0\nF200 X4 Y2\nF3000 X0 Y0\n"
	res, err := Build(doc, Config{Mode: gcode.UseFeed(1000), Width: 8, Height: 8, Dilation: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Factor)
	assert.Len(t, res.Path, 4)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(square, Config{Width: 0, Height: 1, Dilation: 1})
	assert.Error(t, err)

	_, err = Build(square, Config{Width: 1, Height: 1, Dilation: math.NaN()})
	assert.Error(t, err)

	_, err = Build("M3\nM5\n", Config{Width: 1, Height: 1, Dilation: 1})
	assert.True(t, errors.Is(err, gcode.ErrNoMode))

	_, err = Build("G0 X1 Y1\n", Config{Mode: gcode.UseG(), Width: 1, Height: 1, Dilation: 1})
	assert.True(t, errors.Is(err, ErrNothingToDraw))

	_, err = Build("G1 X0 Y0\n", Config{Mode: gcode.UseG(), Width: 1, Height: 1, Dilation: 1})
	assert.True(t, errors.Is(err, toolpath.ErrDegenerate))

	_, err = Build("G1 X0 Y0\nG1 X100000 Y0\n", Config{Mode: gcode.UseG(), Width: 1e6, Height: 1e6, Dilation: 1})
	assert.True(t, errors.Is(err, wire.ErrDeltaOverflow))
}

func TestBuildPath(t *testing.T) {
	raw := toolpath.Path{
		toolpath.Raw(toolpath.Up, 0, 0),
		toolpath.Raw(toolpath.Up, 0, 0),
		toolpath.Raw(toolpath.Down, 0, 5),
		toolpath.Raw(toolpath.Up, 2, 5),
		toolpath.Raw(toolpath.Up, 3, 0),
		toolpath.Raw(toolpath.Down, 3, 5),
		toolpath.Raw(toolpath.Up, 5, 5),
	}
	res, err := BuildPath(raw, Config{Width: 10, Height: 10, Dilation: 1})
	require.NoError(t, err)
	assert.Equal(t, gcode.UseG(), res.Mode)
	assert.Equal(t, 2.0, res.Factor)

	want := toolpath.Path{
		toolpath.Raw(toolpath.Up, 0, 0),
		toolpath.Raw(toolpath.Down, 0, 10),
		toolpath.Raw(toolpath.Up, 6, 0),
		toolpath.Raw(toolpath.Down, 6, 10),
		toolpath.Raw(toolpath.Up, 6, 10),
	}
	assert.Equal(t, want, res.Path)
}
