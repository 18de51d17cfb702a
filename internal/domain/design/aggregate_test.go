package design

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDesignService() (*Service, *mocks.MockEventStore) {
	eventStore := mocks.NewMockEventStore()
	return NewService(eventStore, nil), eventStore
}

func TestService_Save(t *testing.T) {
	service, eventStore := newTestDesignService()

	design, err := service.Save(context.Background(), "cust-1", "Band logo", "tshirt",
		"https://cdn.example.com/logo.png", "https://cdn.example.com/logo-thumb.png",
		Customization{X: 0.5, Y: 0.4, Scale: 0.3})

	require.NoError(t, err)
	assert.NotEmpty(t, design.ID)
	assert.Equal(t, "tshirt", design.ProductType)
	assert.Equal(t, 0.3, design.Customization.Scale)
	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventDesignSaved, eventStore.AppendCalls[0].EventType)
}

func TestService_Save_ClampsScale(t *testing.T) {
	service, _ := newTestDesignService()

	// tshirt profile allows 0.1..0.6
	big, err := service.Save(context.Background(), "cust-1", "Too big", "tshirt",
		"https://cdn.example.com/a.png", "", Customization{X: 0.5, Y: 0.5, Scale: 2.0})
	require.NoError(t, err)
	assert.Equal(t, 0.6, big.Customization.Scale)

	small, err := service.Save(context.Background(), "cust-1", "Too small", "tshirt",
		"https://cdn.example.com/a.png", "", Customization{X: 0.5, Y: 0.5, Scale: 0.01})
	require.NoError(t, err)
	assert.Equal(t, 0.1, small.Customization.Scale)
}

func TestService_Save_UnknownProductUsesFallbackProfile(t *testing.T) {
	service, _ := newTestDesignService()

	design, err := service.Save(context.Background(), "cust-1", "Mystery", "hologram",
		"https://cdn.example.com/a.png", "", Customization{X: 0.5, Y: 0.5, Scale: 99})
	require.NoError(t, err)
	assert.LessOrEqual(t, design.Customization.Scale, 1.0)
}

func TestService_Save_Validation(t *testing.T) {
	service, _ := newTestDesignService()

	_, err := service.Save(context.Background(), "cust-1", "", "tshirt", "https://x/a.png", "", Customization{})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = service.Save(context.Background(), "cust-1", "Logo", "tshirt", "", "", Customization{})
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestService_Update(t *testing.T) {
	service, _ := newTestDesignService()
	design, err := service.Save(context.Background(), "cust-1", "v1", "mug",
		"https://cdn.example.com/v1.png", "", Customization{X: 0.5, Y: 0.5, Scale: 0.3})
	require.NoError(t, err)

	err = service.Update(context.Background(), design.ID, "cust-1", "v2",
		"https://cdn.example.com/v2.png", "", Customization{X: 0.2, Y: 0.8, Scale: 0.9})
	require.NoError(t, err)

	got, err := service.Get(design.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Name)
	assert.Equal(t, "mug", got.ProductType)
	// mug profile caps scale at 0.5
	assert.Equal(t, 0.5, got.Customization.Scale)
}

func TestService_Update_OnlyOwner(t *testing.T) {
	service, _ := newTestDesignService()
	design, err := service.Save(context.Background(), "cust-1", "v1", "mug",
		"https://cdn.example.com/v1.png", "", Customization{Scale: 0.3})
	require.NoError(t, err)

	err = service.Update(context.Background(), design.ID, "cust-2", "v2",
		"https://cdn.example.com/v2.png", "", Customization{Scale: 0.3})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestService_Delete(t *testing.T) {
	service, _ := newTestDesignService()
	design, err := service.Save(context.Background(), "cust-1", "v1", "poster",
		"https://cdn.example.com/v1.png", "", Customization{Scale: 0.3})
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(context.Background(), design.ID, "cust-2"), ErrNotOwner)
	require.NoError(t, service.Delete(context.Background(), design.ID, "cust-1"))

	got, err := service.Get(design.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}

func TestService_Get_NotFound(t *testing.T) {
	service, _ := newTestDesignService()

	_, err := service.Get("missing")
	assert.ErrorIs(t, err, ErrDesignNotFound)
}
