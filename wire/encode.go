// Package wire implements the plotter's binary command stream.
//
// Each command is a 5-byte record: a mode byte followed by the X and Y step
// deltas as big-endian int16. A single End byte terminates a stream.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/mastercactapus/gplot/toolpath"
)

const (
	// Move travels with the pen up.
	Move byte = 'm'
	// Write draws with the pen down.
	Write byte = 'w'
	// End tells the firmware no more commands follow.
	End byte = 'a'

	RecordSize = 5
)

var ErrDeltaOverflow = errors.New("step delta out of int16 range")

// OverflowError reports the state that could not be encoded.
type OverflowError struct {
	Index int
	State toolpath.State
	DX    float64
	DY    float64
}

func (e *OverflowError) Error() string {
	line := "synthesized state"
	if e.State.Line > 0 {
		line = fmt.Sprintf("line %d", e.State.Line)
	}
	return fmt.Sprintf("encode state %d (%s): dx=%g dy=%g: %v", e.Index, line, e.DX, e.DY, ErrDeltaOverflow)
}

func (e *OverflowError) Unwrap() error { return ErrDeltaOverflow }

// Command is one decoded record.
type Command struct {
	Mode   byte
	DX, DY int16
}

func (c Command) String() string {
	return fmt.Sprintf("%-2c x=%5d y=%5d", c.Mode, c.DX, c.DY)
}

// Drawing reports whether c moves with the pen down.
func (c Command) Drawing() bool { return c.Mode == Write }

// AppendTo appends the 5-byte record for c to buf.
func (c Command) AppendTo(buf []byte) []byte {
	var rec [RecordSize]byte
	rec[0] = c.Mode
	binary.BigEndian.PutUint16(rec[1:], uint16(c.DX))
	binary.BigEndian.PutUint16(rec[3:], uint16(c.DY))
	return append(buf, rec[:]...)
}

// Encode converts p to the binary command stream.
//
// Coordinates are rounded to whole steps on their absolute value, so the
// emitted position never drifts from the rounded path. No output is
// returned if any delta does not fit in an int16.
func Encode(p toolpath.Path) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(p) * RecordSize)

	var stepsX, stepsY float64
	for i, s := range p {
		dx := math.Round(s.X) - stepsX
		dy := math.Round(s.Y) - stepsY
		if !fits(dx) || !fits(dy) {
			return nil, &OverflowError{Index: i, State: s, DX: dx, DY: dy}
		}
		stepsX += dx
		stepsY += dy

		c := Command{Mode: Move, DX: int16(dx), DY: int16(dy)}
		if s.Drawing() {
			c.Mode = Write
		}
		buf.Write(c.AppendTo(nil))
	}

	return buf.Bytes(), nil
}

func fits(d float64) bool {
	return !math.IsNaN(d) && d >= math.MinInt16 && d <= math.MaxInt16
}
