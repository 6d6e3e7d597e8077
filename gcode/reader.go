package gcode

import (
	"io"

	"github.com/mastercactapus/gplot/toolpath"
)

type Reader interface {
	Read() (toolpath.State, error)
}

type StatesReader struct {
	States toolpath.Path
	n      int
}

func (r *StatesReader) Read() (toolpath.State, error) {
	if r.n == len(r.States) {
		return toolpath.State{}, io.EOF
	}

	r.n++
	return r.States[r.n-1], nil
}
