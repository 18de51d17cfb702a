package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrChannelClosed = errors.New("chat channel is closed")

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// ChannelClient is the client end of the duplex chat channel. One instance
// per session, lazily connected, shared by every conversation. It owns the
// reconnect policy: on a dropped connection it redials with backoff and
// re-registers its identity; in-flight sends that were lost simply stay
// unconfirmed (the engine never auto-retries them).
type ChannelClient struct {
	mu       sync.Mutex
	url      string
	identity Identity
	conn     *websocket.Conn
	handler  func(Envelope)
	closed   bool
}

func NewChannelClient(url string, identity Identity) *ChannelClient {
	return &ChannelClient{url: url, identity: identity}
}

// OnEvent installs the incoming-event handler. Must be set before Connect.
func (c *ChannelClient) OnEvent(fn func(Envelope)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = fn
}

// Connect dials the hub, registers identity and starts the read loop.
func (c *ChannelClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if err := c.Emit(EventRegister, RegisterPayload{UserID: c.identity.UserID, Role: c.identity.Role}); err != nil {
		return err
	}

	go c.readLoop(conn)
	return nil
}

// Emit sends an event envelope to the hub.
func (c *ChannelClient) Emit(event string, payload any) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		return ErrChannelClosed
	}
	return c.conn.WriteJSON(env)
}

// Close shuts the channel down permanently; no reconnect follows.
func (c *ChannelClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *ChannelClient) readLoop(conn *websocket.Conn) {
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
			}
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				log.Printf("[Chat] Channel read failed, reconnecting: %v", err)
				c.reconnect()
			}
			return
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()
		if handler != nil {
			handler(env)
		}
	}
}

func (c *ChannelClient) reconnect() {
	delay := reconnectBaseDelay
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		time.Sleep(delay)
		if delay < reconnectMaxDelay {
			delay *= 2
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.Connect(ctx)
		cancel()
		if err == nil {
			log.Printf("[Chat] Channel reconnected as %s", c.identity.UserID)
			return
		}
		if errors.Is(err, ErrChannelClosed) {
			return
		}
		log.Printf("[Chat] Reconnect failed: %v", err)
	}
}
