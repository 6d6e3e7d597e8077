package gcode

import (
	"io"
	"log"
	"strings"

	"github.com/mastercactapus/gplot/toolpath"
)

// Parse reads a whole document into a path of distinct plotter states.
//
// A state replaces the previous one instead of being appended when nothing
// changed, or when both are travel moves; only the last travel target
// matters. A trailing travel move is dropped since it draws nothing.
func Parse(data string, interp *Interpreter, l *log.Logger) (toolpath.Path, error) {
	return ReadPath(NewParser(strings.NewReader(data), interp, l))
}

// ReadPath collects and coalesces every state from r, starting at the seed state.
func ReadPath(r Reader) (toolpath.Path, error) {
	path := toolpath.Path{toolpath.Seed()}
	for {
		s, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		path = coalesce(path, s)
	}

	if last, ok := path.Last(); ok && !last.Drawing() {
		path = path[:len(path)-1]
	}
	return path, nil
}

func coalesce(path toolpath.Path, s toolpath.State) toolpath.Path {
	last := path[len(path)-1]
	if s.Same(last) || (!s.Drawing() && !last.Drawing()) {
		path[len(path)-1] = s
		return path
	}
	return append(path, s)
}
