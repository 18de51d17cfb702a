package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/printshop/internal/domain/conversation"
	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	service := conversation.NewService(mocks.NewMockEventStore())
	hub := NewHub(service, nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

type testClient struct {
	channel *ChannelClient
	events  chan Envelope
}

func connectClient(t *testing.T, url string, identity Identity) *testClient {
	t.Helper()
	tc := &testClient{
		channel: NewChannelClient(url, identity),
		events:  make(chan Envelope, 16),
	}
	tc.channel.OnEvent(func(env Envelope) { tc.events <- env })
	require.NoError(t, tc.channel.Connect(context.Background()))
	t.Cleanup(func() { tc.channel.Close() })
	return tc
}

func (tc *testClient) next(t *testing.T) Envelope {
	t.Helper()
	select {
	case env := <-tc.events:
		return env
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for channel event")
		return Envelope{}
	}
}

func decodePayload[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Payload, &out))
	return out
}

func waitRegistered(t *testing.T, hub *Hub, userID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := hub.lookupClient(userID)
		return ok
	}, 3*time.Second, 10*time.Millisecond)
}

func TestHub_Bootstrap_CreatedThenConfirmed(t *testing.T) {
	hub, url := newTestHub(t)
	customer := connectClient(t, url, Identity{UserID: "cust-1", Role: "customer"})
	waitRegistered(t, hub, "cust-1")

	require.NoError(t, customer.channel.Emit(EventStartConversation, StartConversationPayload{
		CustomerID:   "cust-1",
		OwnerID:      "owner-1",
		FirstMessage: Message{SenderID: "cust-1", Text: "Hello"},
	}))

	created := customer.next(t)
	require.Equal(t, EventConversationCreated, created.Event)
	createdPayload := decodePayload[ConversationCreatedPayload](t, created)
	assert.NotEmpty(t, createdPayload.ConversationID)

	confirmed := customer.next(t)
	require.Equal(t, EventMessageSent, confirmed.Event)
	msg := decodePayload[Message](t, confirmed)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, createdPayload.ConversationID, msg.ConversationID)
	assert.Equal(t, "Hello", msg.Text)
	assert.Equal(t, "owner-1", msg.ReceiverID)
}

func TestHub_RacingStarts_ReuseOneConversation(t *testing.T) {
	hub, url := newTestHub(t)
	customer := connectClient(t, url, Identity{UserID: "cust-1", Role: "customer"})
	waitRegistered(t, hub, "cust-1")

	for _, text := range []string{"first", "second"} {
		require.NoError(t, customer.channel.Emit(EventStartConversation, StartConversationPayload{
			CustomerID:   "cust-1",
			OwnerID:      "owner-1",
			FirstMessage: Message{SenderID: "cust-1", Text: text},
		}))
	}

	var ids []string
	for i := 0; i < 4; i++ {
		env := customer.next(t)
		if env.Event == EventConversationCreated {
			ids = append(ids, decodePayload[ConversationCreatedPayload](t, env).ConversationID)
		}
	}

	// Both start intents resolved to the same conversation
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], ids[1])
}

func TestHub_RoutesMessagesToReceiver(t *testing.T) {
	hub, url := newTestHub(t)
	owner := connectClient(t, url, Identity{UserID: "owner-1", Role: "owner"})
	waitRegistered(t, hub, "owner-1")
	customer := connectClient(t, url, Identity{UserID: "cust-1", Role: "customer"})
	waitRegistered(t, hub, "cust-1")

	require.NoError(t, customer.channel.Emit(EventStartConversation, StartConversationPayload{
		CustomerID:   "cust-1",
		OwnerID:      "owner-1",
		FirstMessage: Message{SenderID: "cust-1", Text: "Hello"},
	}))

	// Owner learns of the thread, then gets the message
	notified := owner.next(t)
	require.Equal(t, EventNewConversation, notified.Event)
	conv := decodePayload[NewConversationPayload](t, notified)
	assert.Equal(t, "cust-1", conv.CustomerID)

	received := owner.next(t)
	require.Equal(t, EventReceiveMessage, received.Event)
	assert.Equal(t, "Hello", decodePayload[Message](t, received).Text)

	// Owner replies inside the thread
	require.NoError(t, owner.channel.Emit(EventSendMessage, SendMessagePayload{
		ConversationID: conv.ConversationID,
		SenderID:       "owner-1",
		Text:           "On it",
	}))

	echo := owner.next(t)
	require.Equal(t, EventMessageSent, echo.Event)

	// Customer first saw conversationCreated + own echo, then the reply
	created := customer.next(t)
	require.Equal(t, EventConversationCreated, created.Event)
	firstEcho := customer.next(t)
	require.Equal(t, EventMessageSent, firstEcho.Event)
	reply := customer.next(t)
	require.Equal(t, EventReceiveMessage, reply.Event)
	assert.Equal(t, "On it", decodePayload[Message](t, reply).Text)
}

func TestHub_SendToUnknownConversation_ErrorEvent(t *testing.T) {
	hub, url := newTestHub(t)
	customer := connectClient(t, url, Identity{UserID: "cust-1", Role: "customer"})
	waitRegistered(t, hub, "cust-1")

	require.NoError(t, customer.channel.Emit(EventSendMessage, SendMessagePayload{
		ConversationID: "missing",
		SenderID:       "cust-1",
		Text:           "anyone there?",
	}))

	env := customer.next(t)
	require.Equal(t, EventError, env.Event)
	assert.NotEmpty(t, decodePayload[ErrorPayload](t, env).Message)
}

func TestChannelClient_EmitAfterClose(t *testing.T) {
	_, url := newTestHub(t)
	client := NewChannelClient(url, Identity{UserID: "cust-1", Role: "customer"})
	require.NoError(t, client.Connect(context.Background()))
	require.NoError(t, client.Close())

	err := client.Emit(EventSendMessage, SendMessagePayload{ConversationID: "c", SenderID: "cust-1", Text: "hi"})

	assert.ErrorIs(t, err, ErrChannelClosed)
}
