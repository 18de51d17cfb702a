package inventory

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_AddStock(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	ctx := context.Background()

	require.NoError(t, service.AddStock(ctx, "svc-1", 100))

	inv, err := service.Get(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 100, inv.TotalStock)
	assert.Equal(t, 100, inv.AvailableStock())
}

func TestService_Reserve_ReducesAvailable(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	ctx := context.Background()
	require.NoError(t, service.AddStock(ctx, "svc-1", 10))

	require.NoError(t, service.Reserve(ctx, "svc-1", "order-1", 4))

	inv, err := service.Get(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 10, inv.TotalStock)
	assert.Equal(t, 4, inv.ReservedStock)
	assert.Equal(t, 6, inv.AvailableStock())
}

func TestService_Reserve_InsufficientStock(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	ctx := context.Background()
	require.NoError(t, service.AddStock(ctx, "svc-1", 5))
	require.NoError(t, service.Reserve(ctx, "svc-1", "order-1", 4))

	err := service.Reserve(ctx, "svc-1", "order-2", 2)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	// No partial reservation happened
	inv, getErr := service.Get(ctx, "svc-1")
	require.NoError(t, getErr)
	assert.Equal(t, 4, inv.ReservedStock)
}

func TestService_Release_ReturnsStock(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	ctx := context.Background()
	require.NoError(t, service.AddStock(ctx, "svc-1", 10))
	require.NoError(t, service.Reserve(ctx, "svc-1", "order-1", 4))

	require.NoError(t, service.Release(ctx, "svc-1", "order-1", 4))

	inv, err := service.Get(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 10, inv.AvailableStock())
}

func TestService_Deduct_ConsumesReservation(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	ctx := context.Background()
	require.NoError(t, service.AddStock(ctx, "svc-1", 10))
	require.NoError(t, service.Reserve(ctx, "svc-1", "order-1", 4))

	require.NoError(t, service.Deduct(ctx, "svc-1", "order-1", 4))

	inv, err := service.Get(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 6, inv.TotalStock)
	assert.Zero(t, inv.ReservedStock)
}

func TestService_InvalidQuantity(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	ctx := context.Background()

	assert.ErrorIs(t, service.AddStock(ctx, "svc-1", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, service.Reserve(ctx, "svc-1", "o", -1), ErrInvalidQuantity)
	assert.ErrorIs(t, service.Release(ctx, "svc-1", "o", 0), ErrInvalidQuantity)
	assert.ErrorIs(t, service.Deduct(ctx, "svc-1", "o", 0), ErrInvalidQuantity)
}
