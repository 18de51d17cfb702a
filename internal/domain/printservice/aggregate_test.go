package printservice

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Create_Success(t *testing.T) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)

	created, err := service.Create(context.Background(), "shop-1", "Business cards",
		"Double-sided, 300gsm", "business-card", 1500,
		map[string][]string{"paper": {"matte", "glossy"}})

	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "shop-1", created.ShopID)
	assert.Equal(t, "business-card", created.ProductType)
	assert.Equal(t, []string{"matte", "glossy"}, created.Options["paper"])

	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventServiceCreated, eventStore.AppendCalls[0].EventType)
}

func TestService_Create_Validation(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	ctx := context.Background()

	_, err := service.Create(ctx, "", "Cards", "", "business-card", 100, nil)
	assert.ErrorIs(t, err, ErrInvalidShop)

	_, err = service.Create(ctx, "shop-1", "", "", "business-card", 100, nil)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = service.Create(ctx, "shop-1", "Cards", "", "", 100, nil)
	assert.ErrorIs(t, err, ErrInvalidProductType)

	_, err = service.Create(ctx, "shop-1", "Cards", "", "business-card", 0, nil)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestService_Update_NotFound(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())

	err := service.Update(context.Background(), "missing", "Cards", "", 100, nil)

	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestService_Update_Success(t *testing.T) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	created, err := service.Create(context.Background(), "shop-1", "Cards", "", "business-card", 1500, nil)
	require.NoError(t, err)

	err = service.Update(context.Background(), created.ID, "Premium cards", "Gold foil", 2500, nil)

	require.NoError(t, err)
	events := eventStore.GetEvents(created.ID)
	require.Len(t, events, 2)
	assert.Equal(t, EventServiceUpdated, events[1].EventType)
}

func TestService_Delete_Success(t *testing.T) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	created, err := service.Create(context.Background(), "shop-1", "Cards", "", "business-card", 1500, nil)
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), created.ID))

	events := eventStore.GetEvents(created.ID)
	assert.Equal(t, EventServiceDeleted, events[len(events)-1].EventType)
}

func TestService_UpdateImage(t *testing.T) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)
	created, err := service.Create(context.Background(), "shop-1", "Cards", "", "business-card", 1500, nil)
	require.NoError(t, err)

	require.NoError(t, service.UpdateImage(context.Background(), created.ID, "https://img/cards.png"))
	assert.ErrorIs(t, service.UpdateImage(context.Background(), "missing", "x"), ErrServiceNotFound)
}
