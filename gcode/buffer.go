package gcode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mastercactapus/gplot/toolpath"
)

// Format renders s as one line of normalized G-code, without the newline.
func Format(s toolpath.State) string {
	return fmt.Sprintf("G%d X%.3f Y%.3f", s.Pen, s.X, s.Y)
}

// Buffer renders states from a Reader as normalized G-code text.
type Buffer struct {
	gr  Reader
	buf bytes.Buffer
	err error
}

var _ io.Reader = &Buffer{}

func NewBuffer(r Reader) *Buffer {
	return &Buffer{gr: r}
}

func (b *Buffer) Read(p []byte) (n int, err error) {
	var s toolpath.State
	for b.err == nil && b.buf.Len() < len(p) {
		s, b.err = b.gr.Read()
		if b.err != nil {
			break
		}
		b.buf.WriteString(Format(s) + "\n")
	}

	if b.buf.Len() > 0 {
		return b.buf.Read(p)
	}
	return 0, b.err
}

// Write writes path to w as normalized G-code.
func Write(w io.Writer, path toolpath.Path) error {
	_, err := io.Copy(w, NewBuffer(&StatesReader{States: path}))
	return err
}
