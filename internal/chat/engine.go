package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var ErrUnknownReceiver = errors.New("receiver required to start a conversation")

// Channel is the duplex transport the engine sends through. Implemented by
// *ChannelClient; tests supply fakes.
type Channel interface {
	Emit(event string, payload any) error
}

// HistoryLoader fetches the full historical message list for a conversation
// from the HTTP API.
type HistoryLoader interface {
	Messages(ctx context.Context, conversationID string) ([]Message, error)
}

// Identity is the registered user on this end of the channel.
type Identity struct {
	UserID string
	Role   string
}

// unboundKey indexes optimistic messages sent before their conversation id
// is known (bootstrap in flight).
const unboundKey = ""

type bufferedEvent struct {
	event string
	msg   Message
}

// SyncEngine keeps per-conversation message lists eventually consistent with
// the hub while showing the sending user's own messages immediately. A send
// appends a placeholder with an empty id; the hub's confirmation replaces
// the first matching placeholder in place, never appending a duplicate. A
// confirmation that matches nothing is appended rather than dropped.
type SyncEngine struct {
	mu       sync.Mutex
	self     Identity
	channel  Channel
	history  HistoryLoader
	registry *Registry

	active   string
	messages map[string][]Message
	unread   map[string]int
	known    []string
	knownSet map[string]bool

	// history load in flight for this conversation; live events for it are
	// buffered and applied after the load so none are lost
	loading string
	buffer  []bufferedEvent

	onError func(string)
}

func NewSyncEngine(self Identity, channel Channel, history HistoryLoader, registry *Registry) *SyncEngine {
	return &SyncEngine{
		self:     self,
		channel:  channel,
		history:  history,
		registry: registry,
		messages: make(map[string][]Message),
		unread:   make(map[string]int),
		knownSet: make(map[string]bool),
	}
}

// SetErrorHandler installs the callback invoked for hub-reported errors.
func (e *SyncEngine) SetErrorHandler(fn func(string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onError = fn
}

// SendText appends an optimistic placeholder and transmits the message.
// conversationID may be empty for the first message to a shop; the engine
// then bootstraps the conversation, carrying the message in the start
// intent. On a transport error the placeholder stays visible, unconfirmed,
// and the error is returned for manual resend; nothing retries automatically.
func (e *SyncEngine) SendText(conversationID, receiverID, text string) (Message, error) {
	return e.send(conversationID, receiverID, Message{Text: text})
}

// SendFile follows the same placeholder discipline as SendText, correlated
// by filename instead of text.
func (e *SyncEngine) SendFile(conversationID, receiverID, fileName, fileURL string) (Message, error) {
	return e.send(conversationID, receiverID, Message{FileName: fileName, FileURL: fileURL})
}

func (e *SyncEngine) send(conversationID, receiverID string, body Message) (Message, error) {
	e.mu.Lock()

	if conversationID == "" && receiverID != "" {
		if bound, ok := e.registry.Lookup(e.self.UserID, receiverID); ok {
			conversationID = bound
		}
	}

	placeholder := Message{
		ConversationID: conversationID,
		SenderID:       e.self.UserID,
		ReceiverID:     receiverID,
		Text:           body.Text,
		FileName:       body.FileName,
		FileURL:        body.FileURL,
		CreatedAt:      time.Now(),
	}
	key := conversationID
	if key == "" {
		key = unboundKey
	}
	e.messages[key] = append(e.messages[key], placeholder)
	e.mu.Unlock()

	if conversationID != "" {
		err := e.channel.Emit(EventSendMessage, SendMessagePayload{
			ConversationID: conversationID,
			SenderID:       placeholder.SenderID,
			ReceiverID:     placeholder.ReceiverID,
			Text:           placeholder.Text,
			FileName:       placeholder.FileName,
			FileURL:        placeholder.FileURL,
		})
		if err != nil {
			return placeholder, fmt.Errorf("chat send failed: %w", err)
		}
		return placeholder, nil
	}

	if receiverID == "" {
		return placeholder, ErrUnknownReceiver
	}

	// Bootstrap: the hub creates the thread (or reuses the pair's existing
	// one if two start intents race) and answers conversationCreated.
	e.registry.BeginBootstrap(e.self.UserID, receiverID)
	err := e.channel.Emit(EventStartConversation, StartConversationPayload{
		CustomerID:   e.self.UserID,
		OwnerID:      receiverID,
		FirstMessage: placeholder,
	})
	if err != nil {
		e.registry.AbortBootstrap(e.self.UserID, receiverID)
		return placeholder, fmt.Errorf("chat bootstrap failed: %w", err)
	}
	return placeholder, nil
}

// HandleEvent dispatches an incoming envelope from the channel.
func (e *SyncEngine) HandleEvent(env Envelope) error {
	switch env.Event {
	case EventConversationCreated:
		var p ConversationCreatedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		e.handleConversationCreated(p)
	case EventMessageSent:
		var m Message
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return err
		}
		e.handleConfirmation(m)
	case EventReceiveMessage:
		var m Message
		if err := json.Unmarshal(env.Payload, &m); err != nil {
			return err
		}
		e.handleIncoming(m)
	case EventNewConversation:
		var p NewConversationPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		e.mu.Lock()
		e.registerConversation(p.ConversationID)
		e.mu.Unlock()
	case EventError:
		var p ErrorPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		e.mu.Lock()
		handler := e.onError
		e.mu.Unlock()
		if handler != nil {
			handler(p.Message)
		} else {
			log.Printf("[Chat] channel error: %s", p.Message)
		}
	}
	return nil
}

// handleConversationCreated binds the pair and rebinds every optimistic
// message sent to that peer before the id was known.
func (e *SyncEngine) handleConversationCreated(p ConversationCreatedPayload) {
	e.registry.Bind(p.CustomerID, p.OwnerID, p.ConversationID)

	peer := p.OwnerID
	if e.self.UserID == p.OwnerID {
		peer = p.CustomerID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var rest []Message
	for _, m := range e.messages[unboundKey] {
		if m.SenderID == e.self.UserID && m.ReceiverID == peer {
			m.ConversationID = p.ConversationID
			e.messages[p.ConversationID] = append(e.messages[p.ConversationID], m)
			continue
		}
		rest = append(rest, m)
	}
	if len(rest) == 0 {
		delete(e.messages, unboundKey)
	} else {
		e.messages[unboundKey] = rest
	}

	e.registerConversation(p.ConversationID)
	if e.active == "" {
		e.active = p.ConversationID
	}
}

// handleConfirmation reconciles a messageSent echo against the first
// unconfirmed placeholder with the same sender and content, FIFO. A
// confirmation for a conversation the placeholder did not know about yet is
// matched against the unbound list. An unmatched confirmation is appended.
func (e *SyncEngine) handleConfirmation(m Message) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loading == m.ConversationID && e.loading != "" {
		e.buffer = append(e.buffer, bufferedEvent{event: EventMessageSent, msg: m})
		return
	}
	e.reconcile(m)
}

func (e *SyncEngine) reconcile(m Message) {
	list := e.messages[m.ConversationID]
	for i, existing := range list {
		if existing.Confirmed() || existing.SenderID != m.SenderID {
			continue
		}
		if existing.contentMatches(m) {
			list[i] = m
			return
		}
	}

	// Bootstrap race: the send predates knowledge of the conversation id
	for i, existing := range e.messages[unboundKey] {
		if existing.Confirmed() || existing.SenderID != m.SenderID {
			continue
		}
		if existing.contentMatches(m) {
			e.messages[unboundKey] = append(e.messages[unboundKey][:i], e.messages[unboundKey][i+1:]...)
			e.messages[m.ConversationID] = append(e.messages[m.ConversationID], m)
			return
		}
	}

	// No placeholder matches (duplicate echo or a send from another tab):
	// append rather than drop
	e.messages[m.ConversationID] = append(e.messages[m.ConversationID], m)
}

// handleIncoming appends a message from the other participant. Messages for
// the open conversation render immediately and keep it read; anything else
// bumps that conversation's unread counter.
func (e *SyncEngine) handleIncoming(m Message) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loading == m.ConversationID && e.loading != "" {
		e.buffer = append(e.buffer, bufferedEvent{event: EventReceiveMessage, msg: m})
		return
	}

	e.registerConversation(m.ConversationID)
	e.messages[m.ConversationID] = append(e.messages[m.ConversationID], m)
	if m.ConversationID == e.active {
		e.unread[m.ConversationID] = 0
	} else {
		e.unread[m.ConversationID]++
	}
}

// SwitchConversation opens a conversation: the historical list replaces the
// in-memory one wholesale and the unread counter resets. Live events
// arriving while the history request is in flight are buffered and applied
// afterwards. Switching never cancels an in-flight send; its confirmation
// reconciles against the stored list whichever conversation is open.
func (e *SyncEngine) SwitchConversation(ctx context.Context, conversationID string) error {
	e.mu.Lock()
	e.active = conversationID
	e.loading = conversationID
	e.buffer = nil
	e.registerConversation(conversationID)
	e.mu.Unlock()

	history, err := e.history.Messages(ctx, conversationID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loading != conversationID {
		// user switched again mid-load; the newer switch owns the state
		return nil
	}
	e.loading = ""
	buffered := e.buffer
	e.buffer = nil

	if err != nil {
		// keep whatever list we had; buffered events still apply
		e.applyBuffered(buffered)
		return fmt.Errorf("failed to load history for %s: %w", conversationID, err)
	}

	e.messages[conversationID] = history
	e.applyBuffered(buffered)
	e.unread[conversationID] = 0
	return nil
}

func (e *SyncEngine) applyBuffered(events []bufferedEvent) {
	for _, b := range events {
		switch b.event {
		case EventMessageSent:
			e.reconcile(b.msg)
		case EventReceiveMessage:
			e.messages[b.msg.ConversationID] = append(e.messages[b.msg.ConversationID], b.msg)
		}
	}
}

// registerConversation adds a conversation to the visible list exactly once.
// Caller holds e.mu.
func (e *SyncEngine) registerConversation(conversationID string) {
	if conversationID == "" || e.knownSet[conversationID] {
		return
	}
	e.knownSet[conversationID] = true
	e.known = append(e.known, conversationID)
}

// Messages returns a snapshot of a conversation's ordered message list.
func (e *SyncEngine) Messages(conversationID string) []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	list := e.messages[conversationID]
	out := make([]Message, len(list))
	copy(out, list)
	return out
}

// Unread returns the unread counter for a conversation.
func (e *SyncEngine) Unread(conversationID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unread[conversationID]
}

// Conversations returns the visible conversation ids in discovery order.
func (e *SyncEngine) Conversations() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.known))
	copy(out, e.known)
	return out
}

// Active returns the currently open conversation id.
func (e *SyncEngine) Active() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}
