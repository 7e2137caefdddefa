package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client is the display side of the WebSocket transport: it dials the
// console's hub, delivers inbound snapshots and carries the reverse channel.
type Client struct {
	ws            *websocket.Conn
	trustedOrigin string
	inbound       chan Message

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// Dial connects to the console hub at url. trustedOrigin is the only Origin
// accepted on inbound messages; anything else is dropped silently.
func Dial(ctx context.Context, url, trustedOrigin string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		ws:            ws,
		trustedOrigin: trustedOrigin,
		inbound:       make(chan Message, 64),
		done:          make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) Send(msg Message) error {
	select {
	case <-c.done:
		return nil
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := c.ws.WriteJSON(msg); err != nil {
		log.Error().Err(err).Str("type", string(msg.Type)).Msg("failed to send to console")
		return err
	}
	return nil
}

func (c *Client) Receive() <-chan Message {
	return c.inbound
}

// Close disconnects from the console. Idempotent; safe to call after the
// console already dropped the connection.
func (c *Client) Close() error {
	c.once.Do(func() {
		close(c.done)
		c.ws.Close()
	})
	return nil
}

func (c *Client) readLoop() {
	defer c.Close()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Info().Err(err).Msg("console connection closed")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("dropping malformed console message")
			continue
		}
		if msg.Origin != c.trustedOrigin {
			log.Warn().Str("origin", msg.Origin).Msg("rejecting message from untrusted origin")
			continue
		}
		select {
		case c.inbound <- msg:
		default:
			// Receiver lagging; the next snapshot fully supersedes this one.
		}
	}
}
