package bridge

import (
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// maxPending bounds device output kept while no client is connected.
const maxPending = 4096

// Handler serves one websocket client at a time, relaying its binary
// messages to the device and everything the device prints back to it.
type Handler struct {
	dev io.ReadWriter
	log *log.Logger

	upgrader websocket.Upgrader

	mx      sync.Mutex
	client  *websocket.Conn
	pending []byte
	devErr  error
}

// NewHandler starts reading from dev. Log output goes to l, or the
// standard logger if l is nil.
func NewHandler(dev io.ReadWriter, l *log.Logger) *Handler {
	if l == nil {
		l = log.Default()
	}
	h := &Handler{
		dev: dev,
		log: l,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	go h.readLoop()
	return h
}

func (h *Handler) readLoop() {
	buf := make([]byte, 1024)
	for {
		n, err := h.dev.Read(buf)
		if n > 0 {
			h.forward(buf[:n])
		}
		if err != nil {
			h.log.Println("ERROR: read from device:", err)
			h.mx.Lock()
			h.devErr = err
			if h.client != nil {
				h.client.Close()
			}
			h.mx.Unlock()
			return
		}
	}
}

func (h *Handler) forward(data []byte) {
	h.mx.Lock()
	defer h.mx.Unlock()

	if h.client == nil {
		h.pending = append(h.pending, data...)
		if len(h.pending) > maxPending {
			h.pending = h.pending[len(h.pending)-maxPending:]
		}
		return
	}
	err := h.client.WriteMessage(websocket.BinaryMessage, data)
	if err != nil {
		h.log.Println("ERROR: send to client:", err)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.mx.Lock()
	busy := h.client != nil
	devErr := h.devErr
	h.mx.Unlock()
	if devErr != nil {
		http.Error(w, "device unavailable: "+devErr.Error(), http.StatusServiceUnavailable)
		return
	}
	if busy {
		http.Error(w, "plotter in use", http.StatusConflict)
		return
	}

	ws, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.log.Println("ERROR: upgrade:", err)
		return
	}

	h.mx.Lock()
	if h.client != nil {
		h.mx.Unlock()
		ws.Close()
		return
	}
	h.client = ws
	if len(h.pending) > 0 {
		err = ws.WriteMessage(websocket.BinaryMessage, h.pending)
		h.pending = nil
	}
	h.mx.Unlock()
	h.log.Println("bridge client connected:", req.RemoteAddr)

	defer func() {
		h.mx.Lock()
		h.client = nil
		h.mx.Unlock()
		ws.Close()
		h.log.Println("bridge client disconnected:", req.RemoteAddr)
	}()
	if err != nil {
		h.log.Println("ERROR: send to client:", err)
		return
	}

	for {
		typ, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Println("ERROR: read from client:", err)
			}
			return
		}
		if typ != websocket.BinaryMessage {
			continue
		}
		_, err = h.dev.Write(data)
		if err != nil {
			h.log.Println("ERROR: write to device:", err)
			return
		}
	}
}
