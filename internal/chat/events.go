// Package chat implements the real-time messaging layer: the websocket hub
// on the server side, the channel client, the conversation registry and the
// optimistic sync engine on the client side. All parties speak the same
// JSON event envelope over a single duplex channel per session.
package chat

import (
	"encoding/json"
	"time"
)

// Outgoing (client -> hub) event names.
const (
	EventRegister          = "register"
	EventStartConversation = "startConversation"
	EventSendMessage       = "sendMessage"
)

// Incoming (hub -> client) event names.
const (
	EventConversationCreated = "conversationCreated"
	EventReceiveMessage      = "receiveMessage"
	EventMessageSent         = "messageSent"
	EventNewConversation     = "newConversation"
	EventError               = "error"
)

// Envelope is the wire frame for every chat event.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals a payload into an envelope. Marshal failures are
// programming errors (payload structs are all plain data) and surface as an
// error envelope rather than a panic.
func NewEnvelope(event string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Payload: raw}, nil
}

// Message is the chat message as it travels on the wire and lives in the
// engine's per-conversation lists. ID is server-assigned; a locally-created
// optimistic message carries an empty ID until its confirmation arrives.
type Message struct {
	ID             string    `json:"_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id,omitempty"`
	Text           string    `json:"text,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	FileURL        string    `json:"file_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Confirmed reports whether the message has its server-assigned id.
func (m Message) Confirmed() bool { return m.ID != "" }

// contentMatches reports whether two messages carry the same payload,
// used to correlate a confirmation with its optimistic placeholder.
func (m Message) contentMatches(other Message) bool {
	if m.Text != "" || other.Text != "" {
		return m.Text == other.Text
	}
	return m.FileName == other.FileName
}

type RegisterPayload struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// StartConversationPayload bootstraps a conversation, carrying the first
// message so the lazy-create round trip costs nothing extra.
type StartConversationPayload struct {
	CustomerID   string  `json:"customer_id"`
	OwnerID      string  `json:"owner_id"`
	FirstMessage Message `json:"first_message"`
}

type SendMessagePayload struct {
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	ReceiverID     string `json:"receiver_id,omitempty"`
	Text           string `json:"text,omitempty"`
	FileName       string `json:"file_name,omitempty"`
	FileURL        string `json:"file_url,omitempty"`
}

type ConversationCreatedPayload struct {
	ConversationID string `json:"conversation_id"`
	CustomerID     string `json:"customer_id"`
	OwnerID        string `json:"owner_id"`
}

// NewConversationPayload notifies a shop owner that a customer opened a
// thread with them.
type NewConversationPayload struct {
	ConversationID string `json:"conversation_id"`
	CustomerID     string `json:"customer_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
