// Package machine streams encoded commands to the plotter firmware.
package machine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/mastercactapus/gplot/internal/diaglog"
	"github.com/mastercactapus/gplot/wire"
)

// DefaultTerminal is the line the firmware prints once it has stopped.
const DefaultTerminal = "Completed!"

const deviceLabel = "[info from serial]"

var ErrNotIdle = errors.New("session already used")

// State is the phase of a transfer.
type State int

const (
	Idle State = iota
	Streaming
	Draining
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Draining:
		return "draining"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Options struct {
	// Timeout bounds every wait for a device line. Zero waits forever.
	Timeout time.Duration

	// Terminal is the final line expected after the End byte.
	Terminal string

	Log *log.Logger

	// Progress, if set, is called after every acknowledged command.
	Progress func(sent, total int)
}

// Session performs one transfer of a command stream.
type Session struct {
	conn *Conn
	opt  Options
	log  *log.Logger

	mx    sync.Mutex
	state State
}

// NewSession prepares a transfer over a new Conn reading and writing rw.
func NewSession(rw io.ReadWriter, opt Options) *Session {
	return NewConnSession(NewConn(rw), opt)
}

// NewConnSession prepares a transfer over an already open Conn.
func NewConnSession(conn *Conn, opt Options) *Session {
	if opt.Terminal == "" {
		opt.Terminal = DefaultTerminal
	}
	return &Session{conn: conn, opt: opt, log: diaglog.Or(opt.Log)}
}

func (s *Session) State() State {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mx.Lock()
	s.state = st
	s.mx.Unlock()
}

func (s *Session) fail(err error) error {
	s.setState(Closed)
	return err
}

func (s *Session) readLine() (string, error) {
	line, err := s.conn.ReadLine(s.opt.Timeout)
	if err != nil {
		return "", err
	}
	s.log.Println(deviceLabel, line)
	return line, nil
}

// Send streams data, a sequence of 5-byte records, waiting for one line
// of acknowledgement after each record.
//
// Cancelling ctx stops sending after the command in flight is
// acknowledged; the End handshake still runs and ctx.Err() is returned.
// Transport errors close the session without the handshake.
func (s *Session) Send(ctx context.Context, data []byte) error {
	cmds, err := wire.Decode(data)
	if err != nil {
		return err
	}

	s.mx.Lock()
	if s.state != Idle {
		st := s.state
		s.mx.Unlock()
		return fmt.Errorf("send: %w (%s)", ErrNotIdle, st)
	}
	s.state = Streaming
	s.mx.Unlock()

	if _, err := s.readLine(); err != nil {
		return s.fail(fmt.Errorf("wait for ready: %w", err))
	}

	for i, c := range cmds {
		if ctx.Err() != nil {
			s.log.Println("[info] Sending interrupted by user")
			break
		}
		s.log.Printf("[info] Sent: %s", c)
		_, err = s.conn.Write(data[i*wire.RecordSize : (i+1)*wire.RecordSize])
		if err != nil {
			return s.fail(fmt.Errorf("write command %d: %w", i, err))
		}
		if _, err = s.readLine(); err != nil {
			return s.fail(fmt.Errorf("ack command %d: %w", i, err))
		}
		if s.opt.Progress != nil {
			s.opt.Progress(i+1, len(cmds))
		}
	}

	s.setState(Draining)
	if err := s.conn.WriteByte(wire.End); err != nil {
		return s.fail(fmt.Errorf("write end: %w", err))
	}
	final, err := s.readLine()
	if err != nil {
		return s.fail(fmt.Errorf("wait for completion: %w", err))
	}
	if final != s.opt.Terminal {
		// firmware may report a status before the terminal line
		if _, err = s.readLine(); err != nil {
			return s.fail(fmt.Errorf("wait for completion: %w", err))
		}
	}
	s.setState(Closed)

	return ctx.Err()
}

// Close releases the underlying connection.
func (s *Session) Close() error {
	s.setState(Closed)
	return s.conn.Close()
}
