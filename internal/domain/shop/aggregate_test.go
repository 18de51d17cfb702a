package shop

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Create_Success(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())

	sh, err := service.Create(context.Background(), "owner-1", "Quick Prints", "Same-day printing")

	require.NoError(t, err)
	assert.NotEmpty(t, sh.ID)
	assert.Equal(t, "owner-1", sh.OwnerID)
	assert.Equal(t, "Quick Prints", sh.Name)
}

func TestService_Create_Validation(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())

	_, err := service.Create(context.Background(), "", "Quick Prints", "")
	assert.ErrorIs(t, err, ErrInvalidOwner)

	_, err = service.Create(context.Background(), "owner-1", "", "")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestService_SetTimeEstimates(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	sh, err := service.Create(context.Background(), "owner-1", "Quick Prints", "")
	require.NoError(t, err)

	err = service.SetTimeEstimates(context.Background(), sh.ID, map[string]float64{
		"processing": 24, "ready": 2,
	})
	require.NoError(t, err)

	loaded, err := service.Get(context.Background(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, 24.0, loaded.TimeEstimates["processing"])
}

func TestService_SetTimeEstimates_RejectsNonPositive(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	sh, err := service.Create(context.Background(), "owner-1", "Quick Prints", "")
	require.NoError(t, err)

	err = service.SetTimeEstimates(context.Background(), sh.ID, map[string]float64{"processing": 0})

	assert.ErrorIs(t, err, ErrInvalidEstimate)
}

func TestService_SetReturnPolicy(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	sh, err := service.Create(context.Background(), "owner-1", "Quick Prints", "")
	require.NoError(t, err)

	err = service.SetReturnPolicy(context.Background(), sh.ID, []string{"ready", "completed"})
	require.NoError(t, err)

	loaded, err := service.Get(context.Background(), sh.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ready", "completed"}, loaded.ReturnEligibleStatuses)
}

func TestService_Update_NotFound(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())

	err := service.Update(context.Background(), "missing", "New name", "")

	assert.ErrorIs(t, err, ErrShopNotFound)
}
