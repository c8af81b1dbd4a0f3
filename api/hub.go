package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matt-g-everett/keyframer/stream"
	"github.com/rs/zerolog/log"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// sendQueue is how many frames a client may fall behind before new frames
// are dropped for it.
const sendQueue = 16

type client struct {
	conn *websocket.Conn
	id   string
	send chan []byte
}

// Hub fans rendered frames out to WebSocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
	control stream.ControlHandler
}

// NewHub creates a Hub. Control messages sent by clients go to control,
// which may be set later with SetControl.
func NewHub() *Hub {
	h := new(Hub)
	h.clients = make(map[*websocket.Conn]*client)
	return h
}

// SetControl sets where client control messages are forwarded.
func (h *Hub) SetControl(control stream.ControlHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.control = control
}

func (h *Hub) add(conn *websocket.Conn) *client {
	c := &client{conn: conn, id: uuid.NewString(), send: make(chan []byte, sendQueue)}
	h.mu.Lock()
	h.clients[conn] = c
	count := len(h.clients)
	h.mu.Unlock()
	log.Info().Str("client", c.id).Int("clients", count).Msg("WebSocket client connected")
	go h.write(c)
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.conn]
	if ok {
		delete(h.clients, c.conn)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
		log.Info().Str("client", c.id).Int("clients", count).Msg("WebSocket client disconnected")
	}
}

// write is the only goroutine that writes to c.conn.
func (h *Hub) write(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Debug().Err(err).Str("client", c.id).Msg("WebSocket write failed")
			h.remove(c)
			return
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// SendFrame queues f as JSON for every client without waiting on the network.
// A client whose queue is full misses the frame.
func (h *Hub) SendFrame(f *stream.Frame) error {
	if h.Clients() == 0 {
		return nil
	}

	data, err := f.MarshalJSON()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Debug().Str("client", c.id).Float64("frame", f.Number).Msg("WebSocket client lagging, frame dropped")
		}
	}
	return nil
}

// ServeHTTP upgrades the request and reads control messages until the client
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	c := h.add(conn)
	defer h.remove(c)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		msg, err := stream.DecodeControlMessage(data)
		if err != nil {
			log.Warn().Err(err).Str("client", c.id).Msg("Dropping control message")
			continue
		}
		h.mu.Lock()
		control := h.control
		h.mu.Unlock()
		if control == nil {
			continue
		}
		if err := control.Apply(msg); err != nil {
			log.Warn().Err(err).Str("client", c.id).Str("type", msg.Type).Msg("Control message rejected")
		}
	}
}
