// Package websocket pushes telemetry to browsers as JSON frames.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/aldl.go/pkg/aldl/msgs"
	fx "github.com/robotalks/aldl.go/pkg/framework"
)

// Envelope is the JSON frame sent to clients.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TypeOf names the envelope type of a message.
func TypeOf(msg fx.Message) string {
	switch msg.(type) {
	case *msgs.FuelRate:
		return "fuel"
	case *msgs.ECUData:
		return "ecu"
	case *msgs.Heartbeat:
		return "heartbeat"
	}
	return ""
}

// Defaults of a Hub.
const (
	DefaultClientBuffer = 64
	DefaultWriteTimeout = time.Second
)

// Hub tracks connected clients and broadcasts to them. Each client has
// its own buffered writer, a client which can't keep up misses frames
// without delaying the others.
type Hub struct {
	Addr         string
	ClientBuffer int
	WriteTimeout time.Duration

	lock    sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a Hub listening on addr when run.
func NewHub(addr string) *Hub {
	return &Hub{
		Addr:         addr,
		ClientBuffer: DefaultClientBuffer,
		WriteTimeout: DefaultWriteTimeout,
		clients:      make(map[*client]struct{}),
	}
}

// ServeHTTP implements http.Handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(h.serve).ServeHTTP(w, r)
}

func (h *Hub) serve(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, h.ClientBuffer)}
	h.lock.Lock()
	h.clients[c] = struct{}{}
	h.lock.Unlock()
	glog.V(1).Infof("websocket client %s connected", conn.Request().RemoteAddr)
	defer h.drop(c)
	go h.write(c)
	// Incoming frames are ignored, reading detects the close.
	var discard []byte
	for {
		if err := websocket.Message.Receive(conn, &discard); err != nil {
			return
		}
	}
}

func (h *Hub) write(c *client) {
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
		if err := websocket.Message.Send(c.conn, string(frame)); err != nil {
			glog.V(1).Infof("websocket client %s: %v", c.conn.Request().RemoteAddr, err)
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.lock.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.lock.Unlock()
	if ok {
		c.conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// Publish queues a message to every client without waiting for the
// writes. A client whose buffer is full misses the frame.
func (h *Hub) Publish(msg fx.Message) error {
	typ := TypeOf(msg)
	if typ == "" {
		return nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(&Envelope{Type: typ, Data: data})
	if err != nil {
		return err
	}
	h.broadcast(frame)
	return nil
}

// broadcast returns the number of clients which missed the frame.
func (h *Hub) broadcast(frame []byte) int {
	missed := 0
	h.lock.RLock()
	defer h.lock.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			missed++
			glog.V(2).Infof("websocket client %s is behind, frame dropped", c.conn.Request().RemoteAddr)
		}
	}
	return missed
}

// Run implements Runnable.
func (h *Hub) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	server := &http.Server{Addr: h.Addr, Handler: mux}
	glog.Infof("websocket listening on %s/ws", h.Addr)
	err := fx.RunWithContextCancel(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}, server.ListenAndServe)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
