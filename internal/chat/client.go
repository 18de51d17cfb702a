package chat

import (
	"context"
	"errors"

	"github.com/example/printshop/internal/session"
)

var ErrNotLoggedIn = errors.New("chat requires a logged-in session")

// Client bundles the whole client-side chat stack for one logged-in user:
// the persisted session that carries identity, the channel to the hub, the
// pair registry and the sync engine. Identity comes from the session store,
// never from anything scraped out of a rendered page.
type Client struct {
	session session.Store
	channel *ChannelClient
	engine  *SyncEngine
}

// NewClient loads the session, derives the user identity from it and wires
// channel, registry and engine together. The channel stays unconnected
// until Connect; constructing a Client is cheap and cannot fail on I/O
// other than the session load.
func NewClient(s session.Store, wsURL string, history HistoryLoader) (*Client, error) {
	if err := s.Load(); err != nil {
		return nil, err
	}

	userID, role, ok := session.Identity(s)
	if !ok {
		return nil, ErrNotLoggedIn
	}

	self := Identity{UserID: userID, Role: role}
	channel := NewChannelClient(wsURL, self)
	engine := NewSyncEngine(self, channel, history, NewRegistry())
	channel.OnEvent(func(env Envelope) {
		_ = engine.HandleEvent(env)
	})

	return &Client{session: s, channel: channel, engine: engine}, nil
}

// Connect dials the hub and registers the session identity.
func (c *Client) Connect(ctx context.Context) error {
	return c.channel.Connect(ctx)
}

// Engine exposes the sync engine for sending and reading messages.
func (c *Client) Engine() *SyncEngine {
	return c.engine
}

// Close flushes the session and shuts the channel down permanently.
func (c *Client) Close() error {
	if err := c.session.Flush(); err != nil {
		c.channel.Close()
		return err
	}
	return c.channel.Close()
}
