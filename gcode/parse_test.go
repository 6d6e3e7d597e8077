package gcode

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mastercactapus/gplot/coord"
	"github.com/mastercactapus/gplot/toolpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignoreLine = cmpopts.IgnoreFields(toolpath.State{}, "Line")

func parseG(t *testing.T, data string) (toolpath.Path, string) {
	t.Helper()
	var buf bytes.Buffer
	l := log.New(&buf, "", 0)
	in, err := NewInterpreter(UseG(), l)
	require.NoError(t, err)
	p, err := Parse(data, in, l)
	require.NoError(t, err)
	return p, buf.String()
}

func TestParser_Read(t *testing.T) {
	in, err := NewInterpreter(UseG(), nil)
	require.NoError(t, err)
	p := NewParser(strings.NewReader("G1 X1\nY2\r\n\nG0 X3"), in, nil)

	var got []toolpath.State
	for {
		s, err := p.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, s)
	}

	want := []toolpath.State{
		{Pen: 1, Point: coord.Pt(1, 0), Line: 1},
		{Pen: 1, Point: coord.Pt(1, 2), Line: 2},
		{Pen: 1, Point: coord.Pt(1, 2), Line: 3},
		{Pen: 0, Point: coord.Pt(3, 2), Line: 4},
	}
	assert.Equal(t, want, got)
}

func TestParse_Coalescing(t *testing.T) {
	in, err := NewInterpreter(UseG(), nil)
	require.NoError(t, err)
	p := NewParser(strings.NewReader("G1 X0 Y0\nX0 Y0\nG0\nG0 X5 Y5\n"), in, nil)

	path := toolpath.Path{toolpath.Seed()}
	for {
		s, err := p.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		path = coalesce(path, s)
	}

	want := toolpath.Path{
		toolpath.Seed(),
		toolpath.Raw(toolpath.Down, 0, 0),
		toolpath.Raw(toolpath.Up, 5, 5),
	}
	if diff := cmp.Diff(want, path, ignoreLine); diff != "" {
		t.Errorf("coalesced path mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, path[2].Line)

	// the trailing travel move is then dropped
	parsed, _ := parseG(t, "G1 X0 Y0\nX0 Y0\nG0\nG0 X5 Y5\n")
	if diff := cmp.Diff(want[:2], parsed, ignoreLine); diff != "" {
		t.Errorf("parsed path mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_TrailingTrim(t *testing.T) {
	p, _ := parseG(t, "G0 X1 Y1\nG1 X2 Y2\nG1 X3 Y1\nG0 X9 Y9\n")
	last, ok := p.Last()
	require.True(t, ok)
	assert.False(t, last.Same(toolpath.Raw(toolpath.Up, 9, 9)))
	assert.Equal(t, coord.Pt(3, 1), last.Point)
	assert.Len(t, p, 3)
}

func TestParse_ConsecutiveDraws(t *testing.T) {
	p, _ := parseG(t, "G1 X1 Y0\nG1 X2 Y0\nX3\n")
	want := toolpath.Path{
		toolpath.Seed(),
		toolpath.Raw(toolpath.Down, 1, 0),
		toolpath.Raw(toolpath.Down, 2, 0),
		toolpath.Raw(toolpath.Down, 3, 0),
	}
	if diff := cmp.Diff(want, p, ignoreLine); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Comments(t *testing.T) {
	p, diag := parseG(t, "G1 X1 (draw) Y2 (second one)\nG1 X4 (oops Y8\nG1 Y3")
	want := toolpath.Path{
		toolpath.Seed(),
		toolpath.Raw(toolpath.Down, 1, 2),
		toolpath.Raw(toolpath.Down, 4, 2),
		toolpath.Raw(toolpath.Down, 4, 3),
	}
	if diff := cmp.Diff(want, p, ignoreLine); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}

	assert.Contains(t, diag, "comment line     1: draw\n")
	assert.Contains(t, diag, "comment line     1: second one\n")
	assert.Contains(t, diag, "WARNING line     2: missing closing parenthesis on comment starting in position 7\n")
	assert.NotContains(t, diag, "unknown attribute")
}

func TestParse_Malformed(t *testing.T) {
	p, diag := parseG(t, "G21\nG1 Xabc Y2 M3\n")
	want := toolpath.Path{toolpath.Seed(), toolpath.Raw(toolpath.Down, 0, 2)}
	if diff := cmp.Diff(want, p, ignoreLine); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, diag, "WARNING line     1: ignoring unknown attribute \"G21\"")
	assert.Contains(t, diag, "WARNING line     2: ignoring unknown attribute \"Xabc\"")
	assert.Contains(t, diag, "WARNING line     2: ignoring unknown attribute \"M3\"")

	p, diag = parseG(t, "G1 XNaN Y1\nG1 XNaN Y1\nG1 Xinf Y2\n")
	want = toolpath.Path{
		toolpath.Seed(),
		toolpath.Raw(toolpath.Down, 0, 1),
		toolpath.Raw(toolpath.Down, 0, 2),
	}
	if diff := cmp.Diff(want, p, ignoreLine); diff != "" {
		t.Errorf("non-finite path mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, diag, "WARNING line     1: ignoring unknown attribute \"XNaN\"")
	assert.Contains(t, diag, "WARNING line     2: ignoring unknown attribute \"XNaN\"")
	assert.Contains(t, diag, "WARNING line     3: ignoring unknown attribute \"Xinf\"")
}

func TestParse_FeedMode(t *testing.T) {
	in, err := NewInterpreter(UseFeed(1000), nil)
	require.NoError(t, err)
	p, err := Parse("G0 X1 Y1 F3000\nG1 X2 Y2 F200\nG1 X3 Y3 F3000\nX4 Y4\nG1 F200\n", in, nil)
	require.NoError(t, err)

	want := toolpath.Path{
		toolpath.Raw(toolpath.Up, 1, 1),
		toolpath.Raw(toolpath.Down, 2, 2),
		toolpath.Raw(toolpath.Up, 4, 4),
		toolpath.Raw(toolpath.Down, 4, 4),
	}
	if diff := cmp.Diff(want, p, ignoreLine); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Empty(t *testing.T) {
	p, _ := parseG(t, "")
	assert.Empty(t, p)

	p, _ = parseG(t, "G0 X1 Y1\nG0 X2 Y2\n")
	assert.Empty(t, p)
}

func TestParse_Idempotent(t *testing.T) {
	first, _ := parseG(t, strings.Join([]string{
		"(header)",
		"G0 X-1.5 Y2",
		"G1 X3.25 Y2",
		"G1 Y4.125 F100",
		"G1 Y4.125",
		"G0 X10 Y-3",
		"G0 X11 Y-3.5",
		"G1 X12 Y0",
		"G0 X0 Y0",
	}, "\n"))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, first))

	second, _ := parseG(t, buf.String())
	if diff := cmp.Diff(first, second, ignoreLine); diff != "" {
		t.Errorf("re-parsed path mismatch (-first +second):\n%s", diff)
	}
}
