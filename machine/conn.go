package machine

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned when the device does not answer in time.
	ErrTimeout = errors.New("timed out waiting for device")
	// ErrClosed is returned from any method called after Close.
	ErrClosed = errors.New("connection closed")
)

// Conn is a line-oriented connection to the plotter firmware.
//
// Lines are read in the background so a read can be abandoned after a
// timeout without losing data that arrives later.
type Conn struct {
	rw io.ReadWriter

	lines   chan string
	readErr error

	closeCh   chan struct{}
	closeOnce sync.Once

	mx sync.Mutex
}

// NewConn creates a new Conn using the provided ReadWriter for data.
func NewConn(rw io.ReadWriter) *Conn {
	c := &Conn{
		rw:      rw,
		lines:   make(chan string, 16),
		closeCh: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Conn) readLoop() {
	defer close(c.lines)

	scan := bufio.NewScanner(c.rw)
	for scan.Scan() {
		select {
		case c.lines <- strings.TrimSuffix(scan.Text(), "\r"):
		case <-c.closeCh:
			c.readErr = ErrClosed
			return
		}
	}
	c.readErr = scan.Err()
	if c.readErr == nil {
		c.readErr = io.ErrUnexpectedEOF
	}
}

// ReadLine returns the next line from the device without its line ending.
// A timeout of zero waits forever.
func (c *Conn) ReadLine(timeout time.Duration) (string, error) {
	var expire <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expire = t.C
	}

	select {
	case <-c.closeCh:
		return "", ErrClosed
	case <-expire:
		return "", ErrTimeout
	case s, ok := <-c.lines:
		if !ok {
			return "", c.readErr
		}
		return s, nil
	}
}

// Write writes p to the device in full.
func (c *Conn) Write(p []byte) (int, error) {
	select {
	case <-c.closeCh:
		return 0, ErrClosed
	default:
	}
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.rw.Write(p)
}

// WriteByte writes a single byte to the device.
func (c *Conn) WriteByte(b byte) error {
	_, err := c.Write([]byte{b})
	return err
}

// Close will abort any pending reads and close the
// underlying ReadWriter, if it implements io.Closer.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		if closer, ok := c.rw.(io.Closer); ok {
			err = closer.Close()
		}
	})
	return err
}
