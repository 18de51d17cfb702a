// Package conversation is the event-sourced aggregate behind customer/shop
// chat threads. A conversation holds exactly two participants and is created
// lazily on the first message between a pair.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/aggregate"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Conversation"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message must carry text or a file")
	ErrNotParticipant       = errors.New("sender is not a conversation participant")
)

type Message struct {
	ID             string    `json:"_id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Text           string    `json:"text,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	FileURL        string    `json:"file_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Conversation struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	OwnerID       string    `json:"owner_id"`
	Messages      []Message `json:"messages"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	Version       int       `json:"version"`
}

func (c *Conversation) GetID() string    { return c.ID }
func (c *Conversation) GetVersion() int  { return c.Version }
func (c *Conversation) SetVersion(v int) { c.Version = v }

func (c *Conversation) isParticipant(userID string) bool {
	return userID == c.CustomerID || userID == c.OwnerID
}

// ApplyEvent applies a single event to the conversation state
func (c *Conversation) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventConversationStarted:
		var data ConversationStarted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.ID = data.ConversationID
		c.CustomerID = data.CustomerID
		c.OwnerID = data.OwnerID
		c.CreatedAt = data.StartedAt
		c.LastMessageAt = data.StartedAt
	case EventMessageSent:
		var data MessageSent
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.Messages = append(c.Messages, Message{
			ID:             data.MessageID,
			ConversationID: data.ConversationID,
			SenderID:       data.SenderID,
			ReceiverID:     data.ReceiverID,
			Text:           data.Text,
			FileName:       data.FileName,
			FileURL:        data.FileURL,
			CreatedAt:      data.SentAt,
		})
		c.LastMessageAt = data.SentAt
	}
	c.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) loadConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	conv, found, err := aggregate.LoadAggregate(ctx, s.eventStore, conversationID, func() *Conversation {
		return &Conversation{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// Get returns the current state of a conversation
func (s *Service) Get(ctx context.Context, conversationID string) (*Conversation, error) {
	return s.loadConversation(ctx, conversationID)
}

// Start creates a conversation between a customer and a shop owner. Pair
// uniqueness is enforced by the caller (the hub keeps the pair index); the
// aggregate itself only records the thread.
func (s *Service) Start(ctx context.Context, customerID, ownerID string) (*Conversation, error) {
	conversationID := uuid.New().String()
	now := time.Now()

	event := ConversationStarted{
		ConversationID: conversationID,
		CustomerID:     customerID,
		OwnerID:        ownerID,
		StartedAt:      now,
	}

	storedEvent, err := s.eventStore.Append(ctx, conversationID, AggregateType, EventConversationStarted, event)
	if err != nil {
		return nil, err
	}

	conv := &Conversation{
		ID:            conversationID,
		CustomerID:    customerID,
		OwnerID:       ownerID,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if storedEvent != nil {
		conv.Version = storedEvent.Version
	}
	return conv, nil
}

// Send appends a message to a conversation and returns the stored message
// with its server-assigned id. A message carries text, a file, or both.
func (s *Service) Send(ctx context.Context, conversationID, senderID, text, fileName, fileURL string) (*Message, error) {
	if text == "" && fileName == "" {
		return nil, ErrEmptyMessage
	}

	conv, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.isParticipant(senderID) {
		return nil, fmt.Errorf("%w: %s", ErrNotParticipant, senderID)
	}

	receiverID := conv.CustomerID
	if senderID == conv.CustomerID {
		receiverID = conv.OwnerID
	}

	event := MessageSent{
		MessageID:      uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
		FileName:       fileName,
		FileURL:        fileURL,
		SentAt:         time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, conversationID, AggregateType, EventMessageSent, event)
	if err != nil {
		return nil, err
	}
	if err := conv.ApplyEvent(*storedEvent); err != nil {
		return nil, err
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, conv, AggregateType); err != nil {
		log.Printf("[Conversation] Failed to create snapshot for conversation %s: %v", conv.ID, err)
	}

	return &Message{
		ID:             event.MessageID,
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
		FileName:       fileName,
		FileURL:        fileURL,
		CreatedAt:      event.SentAt,
	}, nil
}
