package broadcast

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// HubConfig holds WebSocket tuning for the console-side hub.
type HubConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
	// TrustedOrigin is the only Origin value accepted on inbound messages.
	TrustedOrigin string
	// InboundBuffer bounds the reverse-channel queue.
	InboundBuffer int
}

// DefaultHubConfig returns the default WebSocket configuration.
func DefaultHubConfig(trustedOrigin string) HubConfig {
	return HubConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
		TrustedOrigin:   trustedOrigin,
		InboundBuffer:   64,
	}
}

// Hub is the console side of the WebSocket transport. It fans every snapshot
// out to all connected displays and funnels their reverse messages into one
// inbound channel. The console is fully usable with zero displays connected:
// Send simply reaches nobody.
type Hub struct {
	mu       sync.RWMutex
	conns    map[*hubConn]bool
	upgrader websocket.Upgrader
	config   HubConfig
	inbound  chan Message
	done     chan struct{}
	once     sync.Once
}

type hubConn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	hub  *Hub
}

// NewHub creates a hub with the given configuration.
func NewHub(config HubConfig) *Hub {
	if config.InboundBuffer <= 0 {
		config.InboundBuffer = 64
	}
	return &Hub{
		conns: make(map[*hubConn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:  config,
		inbound: make(chan Message, config.InboundBuffer),
		done:    make(chan struct{}),
	}
}

// HandleDisplay upgrades an HTTP request to a display connection. Safe to hit
// repeatedly: each display window gets its own connection and all of them
// receive every broadcast.
func (h *Hub) HandleDisplay(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade display connection")
		return
	}

	conn := &hubConn{
		id:   uuid.New().String(),
		ws:   ws,
		send: make(chan []byte, 256),
		hub:  h,
	}
	h.register(conn)

	go conn.writePump()
	go conn.readPump()

	log.Info().Str("connection_id", conn.id).Msg("display connected")
}

func (h *Hub) register(conn *hubConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
}

func (h *Hub) unregister(conn *hubConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		close(conn.send)
		log.Info().Str("connection_id", conn.id).Msg("display disconnected")
	}
}

// Send broadcasts a message to every connected display. Slow consumers are
// disconnected rather than blocking the broadcast.
func (h *Hub) Send(msg Message) error {
	select {
	case <-h.done:
		return nil
	default:
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*hubConn, 0, len(h.conns))
	for conn := range h.conns {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		select {
		case conn.send <- data:
		default:
			log.Warn().Str("connection_id", conn.id).Msg("display send buffer full, closing connection")
			h.unregister(conn)
			conn.ws.Close()
		}
	}
	return nil
}

// Receive yields reverse messages from displays, already origin-checked.
func (h *Hub) Receive() <-chan Message {
	return h.inbound
}

// ConnectionCount returns the number of displays currently connected.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close shuts the hub down and disconnects every display. Idempotent.
func (h *Hub) Close() error {
	h.once.Do(func() {
		close(h.done)
		h.mu.Lock()
		for conn := range h.conns {
			delete(h.conns, conn)
			close(conn.send)
			conn.ws.Close()
		}
		h.mu.Unlock()
	})
	return nil
}

// forward delivers an inbound display message, dropping it if nobody is
// consuming fast enough.
func (h *Hub) forward(msg Message) {
	if msg.Origin != h.config.TrustedOrigin {
		log.Warn().Str("origin", msg.Origin).Msg("rejecting message from untrusted origin")
		return
	}
	select {
	case h.inbound <- msg:
	default:
		log.Warn().Str("type", string(msg.Type)).Msg("inbound buffer full, dropping display message")
	}
}

func (c *hubConn) writePump() {
	ticker := time.NewTicker(c.hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		c.hub.unregister(c)
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("connection_id", c.id).Msg("failed to write to display")
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.hub.config.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *hubConn) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(c.hub.config.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.id).Msg("unexpected display close")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Str("connection_id", c.id).Msg("dropping malformed display message")
			continue
		}
		c.hub.forward(msg)
		c.ws.SetReadDeadline(time.Now().Add(c.hub.config.ReadTimeout))
	}
}
