package gcode

import (
	"bytes"
	"io"
	"testing"

	"github.com/mastercactapus/gplot/toolpath"
	"github.com/stretchr/testify/assert"
)

func TestBuffer_Read(t *testing.T) {
	states := toolpath.Path{
		toolpath.Raw(toolpath.Up, 0, 0),
		toolpath.Raw(toolpath.Down, 1.5, -2.25),
	}

	b := NewBuffer(&StatesReader{States: states})

	buf := make([]byte, 64)
	n, err := b.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, "G0 X0.000 Y0.000\nG1 X1.500 Y-2.250\n", string(buf[:n]))

	n, err = b.Read(buf)
	assert.Error(t, err)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, n)
}

func TestBuffer_SmallReads(t *testing.T) {
	states := toolpath.Path{
		toolpath.Raw(toolpath.Down, 10, 20),
		toolpath.Raw(toolpath.Up, 30, 40),
	}
	var out bytes.Buffer
	buf := make([]byte, 7)
	b := NewBuffer(&StatesReader{States: states})
	for {
		n, err := b.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		assert.NoError(t, err)
	}
	assert.Equal(t, "G1 X10.000 Y20.000\nG0 X30.000 Y40.000\n", out.String())
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Write(&buf, toolpath.Path{toolpath.Raw(toolpath.Down, 1, 2)}))
	assert.Equal(t, "G1 X1.000 Y2.000\n", buf.String())
}
