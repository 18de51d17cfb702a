package conversation

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Start(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())

	conv, err := service.Start(context.Background(), "cust-1", "owner-1")

	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "cust-1", conv.CustomerID)
	assert.Equal(t, "owner-1", conv.OwnerID)
	assert.Empty(t, conv.Messages)
}

func TestService_Send_TextMessage(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	conv, err := service.Start(context.Background(), "cust-1", "owner-1")
	require.NoError(t, err)

	msg, err := service.Send(context.Background(), conv.ID, "cust-1", "Hello", "", "")

	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, conv.ID, msg.ConversationID)
	assert.Equal(t, "cust-1", msg.SenderID)
	// Receiver derived from the pair, not supplied by the sender
	assert.Equal(t, "owner-1", msg.ReceiverID)
	assert.Equal(t, "Hello", msg.Text)
}

func TestService_Send_OwnerReplyRoutesToCustomer(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	conv, err := service.Start(context.Background(), "cust-1", "owner-1")
	require.NoError(t, err)

	msg, err := service.Send(context.Background(), conv.ID, "owner-1", "Your order is ready", "", "")

	require.NoError(t, err)
	assert.Equal(t, "cust-1", msg.ReceiverID)
}

func TestService_Send_FileOnly(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	conv, err := service.Start(context.Background(), "cust-1", "owner-1")
	require.NoError(t, err)

	msg, err := service.Send(context.Background(), conv.ID, "cust-1", "", "logo.ai", "https://files/logo.ai")

	require.NoError(t, err)
	assert.Equal(t, "logo.ai", msg.FileName)
	assert.Equal(t, "https://files/logo.ai", msg.FileURL)
}

func TestService_Send_EmptyMessage(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	conv, err := service.Start(context.Background(), "cust-1", "owner-1")
	require.NoError(t, err)

	_, err = service.Send(context.Background(), conv.ID, "cust-1", "", "", "")

	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestService_Send_NotParticipant(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	conv, err := service.Start(context.Background(), "cust-1", "owner-1")
	require.NoError(t, err)

	_, err = service.Send(context.Background(), conv.ID, "intruder", "hi", "", "")

	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestService_Send_ConversationNotFound(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())

	_, err := service.Send(context.Background(), "missing", "cust-1", "hi", "", "")

	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversation_ReplayAccumulatesMessages(t *testing.T) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	conv, err := service.Start(context.Background(), "cust-1", "owner-1")
	require.NoError(t, err)
	_, err = service.Send(context.Background(), conv.ID, "cust-1", "Hello", "", "")
	require.NoError(t, err)
	_, err = service.Send(context.Background(), conv.ID, "owner-1", "Hi there", "", "")
	require.NoError(t, err)

	rebuilt, err := service.Get(context.Background(), conv.ID)

	require.NoError(t, err)
	require.Len(t, rebuilt.Messages, 2)
	assert.Equal(t, "Hello", rebuilt.Messages[0].Text)
	assert.Equal(t, "Hi there", rebuilt.Messages[1].Text)
	assert.Equal(t, rebuilt.Messages[1].CreatedAt, rebuilt.LastMessageAt)
}
