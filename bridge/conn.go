// Package bridge relays a plotter's serial stream over a websocket, so a
// plotter attached to another host can be driven like a local port.
package bridge

import (
	"fmt"
	"io"
	"sync"

	"github.com/gorilla/websocket"
)

// Conn is the client end of a bridge. Device bytes arrive as binary
// messages; writes are sent as one binary message each.
type Conn struct {
	ws  *websocket.Conn
	buf []byte

	mx sync.Mutex
}

var _ io.ReadWriteCloser = &Conn{}

// Dial connects to the bridge at url (ws:// or wss://).
func Dial(url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial bridge %s: %w", url, err)
	}
	return &Conn{ws: ws}, nil
}

func (c *Conn) Read(p []byte) (int, error) {
	for len(c.buf) == 0 {
		typ, data, err := c.ws.ReadMessage()
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return 0, io.EOF
		}
		if err != nil {
			return 0, err
		}
		if typ != websocket.BinaryMessage {
			// ignore text frames, the bridge only reports status with them
			continue
		}
		c.buf = data
	}

	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

func (c *Conn) Write(p []byte) (int, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	err := c.ws.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *Conn) Close() error {
	c.mx.Lock()
	c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.mx.Unlock()
	return c.ws.Close()
}
