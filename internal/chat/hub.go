package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/example/printshop/internal/domain/conversation"
	"github.com/gorilla/websocket"
)

// ConversationFinder looks up an existing conversation id for a pair, used
// to rebuild the hub's pair index from the read side after a restart.
type ConversationFinder interface {
	ConversationByPair(ctx context.Context, customerID, ownerID string) (string, bool)
}

// Hub is the process-wide websocket endpoint every chat participant shares.
// It owns the pair index, so when two startConversation intents for the same
// pair race, the second one reuses the conversation the first one created —
// the hub's answer is authoritative and clients rebind to it.
type Hub struct {
	mu            sync.Mutex
	clients       map[string]*hubClient
	pairs         map[string]string
	conversations *conversation.Service
	finder        ConversationFinder
	upgrader      websocket.Upgrader
}

type hubClient struct {
	userID string
	role   string
	conn   *websocket.Conn

	mu     sync.Mutex
	send   chan Envelope
	closed bool
}

func (c *hubClient) shutdown() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.conn.Close()
}

func NewHub(conversations *conversation.Service, finder ConversationFinder) *Hub {
	return &Hub{
		clients:       make(map[string]*hubClient),
		pairs:         make(map[string]string),
		conversations: conversations,
		finder:        finder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced by the auth middleware in front
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the request and runs the connection until it closes.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Chat] Websocket upgrade failed: %v", err)
		return
	}

	c := &hubClient{conn: conn, send: make(chan Envelope, 32)}
	go c.writePump()
	h.readPump(r.Context(), c)
}

func (c *hubClient) writePump() {
	for env := range c.send {
		if err := c.conn.WriteJSON(env); err != nil {
			return
		}
	}
}

func (c *hubClient) deliver(event string, payload any) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		log.Printf("[Chat] Failed to encode %s event: %v", event, err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- env:
	default:
		log.Printf("[Chat] Dropping %s event for slow client %s", event, c.userID)
	}
}

func (h *Hub) readPump(ctx context.Context, c *hubClient) {
	defer h.detach(c)

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}
		switch env.Event {
		case EventRegister:
			var p RegisterPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				c.deliver(EventError, ErrorPayload{Message: "malformed register payload"})
				continue
			}
			h.attach(c, p)
		case EventStartConversation:
			var p StartConversationPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				c.deliver(EventError, ErrorPayload{Message: "malformed startConversation payload"})
				continue
			}
			h.handleStart(ctx, c, p)
		case EventSendMessage:
			var p SendMessagePayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				c.deliver(EventError, ErrorPayload{Message: "malformed sendMessage payload"})
				continue
			}
			h.handleSend(ctx, c, p)
		default:
			c.deliver(EventError, ErrorPayload{Message: "unknown event: " + env.Event})
		}
	}
}

func (h *Hub) attach(c *hubClient, p RegisterPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.userID = p.UserID
	c.role = p.Role
	// A reconnect replaces the previous connection for this user
	if old, ok := h.clients[p.UserID]; ok && old != c {
		old.shutdown()
	}
	h.clients[p.UserID] = c
	log.Printf("[Chat] Registered %s (%s)", p.UserID, p.Role)
}

func (h *Hub) detach(c *hubClient) {
	h.mu.Lock()
	if current, ok := h.clients[c.userID]; ok && current == c {
		delete(h.clients, c.userID)
	}
	h.mu.Unlock()
	c.shutdown()
}

func (h *Hub) lookupClient(userID string) (*hubClient, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[userID]
	return c, ok
}

// resolvePair returns the conversation id for a pair, creating the
// conversation when the pair has none. The boolean reports creation.
func (h *Hub) resolvePair(ctx context.Context, customerID, ownerID string) (string, bool, error) {
	key := pairKey(customerID, ownerID)

	h.mu.Lock()
	if id, ok := h.pairs[key]; ok {
		h.mu.Unlock()
		return id, false, nil
	}
	h.mu.Unlock()

	if h.finder != nil {
		if id, ok := h.finder.ConversationByPair(ctx, customerID, ownerID); ok {
			h.mu.Lock()
			h.pairs[key] = id
			h.mu.Unlock()
			return id, false, nil
		}
	}

	conv, err := h.conversations.Start(ctx, customerID, ownerID)
	if err != nil {
		return "", false, err
	}

	h.mu.Lock()
	// A concurrent start for the same pair may have won the race while the
	// event was being appended; the first id recorded wins for everyone
	if id, ok := h.pairs[key]; ok {
		h.mu.Unlock()
		return id, false, nil
	}
	h.pairs[key] = conv.ID
	h.mu.Unlock()
	return conv.ID, true, nil
}

func (h *Hub) handleStart(ctx context.Context, c *hubClient, p StartConversationPayload) {
	conversationID, created, err := h.resolvePair(ctx, p.CustomerID, p.OwnerID)
	if err != nil {
		log.Printf("[Chat] Failed to start conversation %s/%s: %v", p.CustomerID, p.OwnerID, err)
		c.deliver(EventError, ErrorPayload{Message: "failed to start conversation"})
		return
	}

	c.deliver(EventConversationCreated, ConversationCreatedPayload{
		ConversationID: conversationID,
		CustomerID:     p.CustomerID,
		OwnerID:        p.OwnerID,
	})

	if created {
		if owner, ok := h.lookupClient(p.OwnerID); ok {
			owner.deliver(EventNewConversation, NewConversationPayload{
				ConversationID: conversationID,
				CustomerID:     p.CustomerID,
			})
		}
	}

	h.handleSend(ctx, c, SendMessagePayload{
		ConversationID: conversationID,
		SenderID:       p.FirstMessage.SenderID,
		Text:           p.FirstMessage.Text,
		FileName:       p.FirstMessage.FileName,
		FileURL:        p.FirstMessage.FileURL,
	})
}

func (h *Hub) handleSend(ctx context.Context, c *hubClient, p SendMessagePayload) {
	stored, err := h.conversations.Send(ctx, p.ConversationID, p.SenderID, p.Text, p.FileName, p.FileURL)
	if err != nil {
		log.Printf("[Chat] Failed to send message in %s: %v", p.ConversationID, err)
		c.deliver(EventError, ErrorPayload{Message: "failed to send message"})
		return
	}

	wire := Message{
		ID:             stored.ID,
		ConversationID: stored.ConversationID,
		SenderID:       stored.SenderID,
		ReceiverID:     stored.ReceiverID,
		Text:           stored.Text,
		FileName:       stored.FileName,
		FileURL:        stored.FileURL,
		CreatedAt:      stored.CreatedAt,
	}

	// Echo to the sender for placeholder reconciliation
	c.deliver(EventMessageSent, wire)

	if receiver, ok := h.lookupClient(stored.ReceiverID); ok {
		receiver.deliver(EventReceiveMessage, wire)
	}
}
