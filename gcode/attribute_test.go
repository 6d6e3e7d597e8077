package gcode

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpreter_Attribute(t *testing.T) {
	type result struct {
		attr Attr
		ok   bool
	}
	for _, tc := range []struct {
		name  string
		mode  Mode
		token string
		want  result
	}{
		{"g0", UseG(), "G0", result{Attr{AttrPen, 0}, true}},
		{"g1 lower", UseG(), "g1", result{Attr{AttrPen, 1}, true}},
		{"g1 float", UseG(), "G1.0", result{Attr{AttrPen, 1}, true}},
		{"g2", UseG(), "G2", result{}},
		{"g under feed", UseFeed(100), "G1", result{}},
		{"feed below", UseFeed(100), "F50", result{Attr{AttrPen, 1}, true}},
		{"feed at", UseFeed(100), "F100", result{Attr{AttrPen, 0}, true}},
		{"feed under g", UseG(), "F50", result{}},
		{"speed below", UseSpeed(10), "S9.5", result{Attr{AttrPen, 1}, true}},
		{"speed above", UseSpeed(10), "s11", result{Attr{AttrPen, 0}, true}},
		{"x", UseSpeed(10), "X-3.5", result{Attr{AttrX, -3.5}, true}},
		{"y", UseG(), "y7", result{Attr{AttrY, 7}, true}},
		{"other tag", UseG(), "M3", result{}},
		{"malformed", UseG(), "X1,5", result{}},
		{"empty", UseG(), "", result{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			in, err := NewInterpreter(tc.mode, nil)
			require.NoError(t, err)
			a, ok := in.Attribute(tc.token, 1)
			assert.Equal(t, tc.want, result{a, ok})
		})
	}
}

func TestInterpreter_Diagnostics(t *testing.T) {
	var buf bytes.Buffer
	in, err := NewInterpreter(UseG(), log.New(&buf, "", 0))
	require.NoError(t, err)

	in.Attribute("", 3)
	assert.Empty(t, buf.String())

	in.Attribute("M3", 42)
	assert.Equal(t, "WARNING line    42: ignoring unknown attribute \"M3\"\n", buf.String())

	buf.Reset()
	in.Attribute("X1", 42)
	assert.Empty(t, buf.String())
}
