package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mastercactapus/gplot/toolpath"
)

var (
	ErrShortRecord = errors.New("trailing partial record")
	ErrBadMode     = errors.New("unknown mode byte")
)

// Commands is a decoded command stream.
type Commands []Command

// Decode splits data into commands.
func Decode(data []byte) (Commands, error) {
	if len(data)%RecordSize != 0 {
		return nil, fmt.Errorf("decode %d bytes: %w", len(data), ErrShortRecord)
	}

	cmds := make(Commands, 0, len(data)/RecordSize)
	for i := 0; i < len(data); i += RecordSize {
		c, err := DecodeRecord(data[i : i+RecordSize])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i/RecordSize, err)
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

// DecodeRecord decodes a single 5-byte record.
func DecodeRecord(rec []byte) (Command, error) {
	if len(rec) != RecordSize {
		return Command{}, ErrShortRecord
	}
	c := Command{
		Mode: rec[0],
		DX:   int16(binary.BigEndian.Uint16(rec[1:])),
		DY:   int16(binary.BigEndian.Uint16(rec[3:])),
	}
	if c.Mode != Move && c.Mode != Write {
		return c, fmt.Errorf("%w: %q", ErrBadMode, c.Mode)
	}
	return c, nil
}

// Path accumulates the deltas back into absolute step positions.
func (cmds Commands) Path() toolpath.Path {
	p := make(toolpath.Path, 0, len(cmds))
	var x, y int
	for _, c := range cmds {
		x += int(c.DX)
		y += int(c.DY)
		pen := toolpath.Up
		if c.Drawing() {
			pen = toolpath.Down
		}
		p = append(p, toolpath.Raw(pen, float64(x), float64(y)))
	}
	return p
}
