package conversation

import "time"

const (
	EventConversationStarted = "ConversationStarted"
	EventMessageSent         = "MessageSent"
)

type ConversationStarted struct {
	ConversationID string    `json:"conversation_id"`
	CustomerID     string    `json:"customer_id"`
	OwnerID        string    `json:"owner_id"`
	StartedAt      time.Time `json:"started_at"`
}

// MessageSent carries either text or a file reference; at least one is set.
type MessageSent struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Text           string    `json:"text,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	FileURL        string    `json:"file_url,omitempty"`
	SentAt         time.Time `json:"sent_at"`
}
