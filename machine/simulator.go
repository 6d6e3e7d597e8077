package machine

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/mastercactapus/gplot/wire"
)

// Simulator is an in-memory stand-in for the plotter firmware.
//
// It announces itself with "Setup", answers every record with the
// resulting position and answers the End byte with Status (if set)
// followed by "Completed!".
type Simulator struct {
	// Status is an optional line sent before the terminal line.
	Status string

	mx     sync.Mutex
	cond   *sync.Cond
	in     []byte
	out    bytes.Buffer
	closed bool

	x, y     int
	received wire.Commands
	ended    bool
}

var _ io.ReadWriteCloser = &Simulator{}

func NewSimulator() *Simulator {
	sim := &Simulator{}
	sim.cond = sync.NewCond(&sim.mx)
	sim.out.WriteString("Setup\r\n")
	return sim
}

func (sim *Simulator) Write(p []byte) (int, error) {
	sim.mx.Lock()
	defer sim.mx.Unlock()
	if sim.closed {
		return 0, io.ErrClosedPipe
	}

	sim.in = append(sim.in, p...)
	for len(sim.in) > 0 {
		if sim.in[0] == wire.End {
			sim.in = sim.in[1:]
			sim.ended = true
			if sim.Status != "" {
				sim.reply(sim.Status)
			}
			sim.reply(DefaultTerminal)
			continue
		}
		if len(sim.in) < wire.RecordSize {
			break
		}
		c, err := wire.DecodeRecord(sim.in[:wire.RecordSize])
		sim.in = sim.in[wire.RecordSize:]
		if err != nil {
			sim.reply("error: " + err.Error())
			continue
		}
		sim.x += int(c.DX)
		sim.y += int(c.DY)
		sim.received = append(sim.received, c)
		sim.reply(fmt.Sprintf("%c %d %d", c.Mode, sim.x, sim.y))
	}
	sim.cond.Broadcast()
	return len(p), nil
}

func (sim *Simulator) reply(line string) {
	sim.out.WriteString(line)
	sim.out.WriteString("\r\n")
}

// Read blocks until the firmware has something to say.
func (sim *Simulator) Read(p []byte) (int, error) {
	sim.mx.Lock()
	defer sim.mx.Unlock()
	for sim.out.Len() == 0 && !sim.closed {
		sim.cond.Wait()
	}
	if sim.out.Len() == 0 {
		return 0, io.EOF
	}
	return sim.out.Read(p)
}

func (sim *Simulator) Close() error {
	sim.mx.Lock()
	sim.closed = true
	sim.cond.Broadcast()
	sim.mx.Unlock()
	return nil
}

// Received returns every command accepted so far.
func (sim *Simulator) Received() wire.Commands {
	sim.mx.Lock()
	defer sim.mx.Unlock()
	return append(wire.Commands(nil), sim.received...)
}

// Ended reports whether the End byte was seen.
func (sim *Simulator) Ended() bool {
	sim.mx.Lock()
	defer sim.mx.Unlock()
	return sim.ended
}
