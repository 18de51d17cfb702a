package review

import (
	"context"
	"testing"

	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Post(t *testing.T) {
	eventStore := mocks.NewMockEventStore()
	service := NewService(eventStore)

	review, err := service.Post(context.Background(), "shop-1", "cust-1", 4, "Great prints, fast turnaround")

	require.NoError(t, err)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "shop-1", review.ShopID)
	assert.Equal(t, 4, review.Rating)
	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, EventReviewPosted, eventStore.AppendCalls[0].EventType)
}

func TestService_Post_RatingBounds(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())

	_, err := service.Post(context.Background(), "shop-1", "cust-1", 0, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = service.Post(context.Background(), "shop-1", "cust-1", 6, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = service.Post(context.Background(), "shop-1", "cust-1", 1, "barely ok")
	assert.NoError(t, err)

	_, err = service.Post(context.Background(), "shop-1", "cust-1", 5, "perfect")
	assert.NoError(t, err)
}

func TestService_Delete(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	review, err := service.Post(context.Background(), "shop-1", "cust-1", 3, "ok")
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), review.ID, "cust-1"))

	got, err := service.Get(review.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}

func TestService_Delete_OnlyAuthor(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	review, err := service.Post(context.Background(), "shop-1", "cust-1", 3, "ok")
	require.NoError(t, err)

	err = service.Delete(context.Background(), review.ID, "cust-2")
	assert.ErrorIs(t, err, ErrNotAuthor)
}

func TestService_Delete_Twice(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())
	review, err := service.Post(context.Background(), "shop-1", "cust-1", 3, "ok")
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), review.ID, "cust-1"))
	assert.ErrorIs(t, service.Delete(context.Background(), review.ID, "cust-1"), ErrAlreadyDeleted)
}

func TestService_Get_NotFound(t *testing.T) {
	service := NewService(mocks.NewMockEventStore())

	_, err := service.Get("missing")
	assert.ErrorIs(t, err, ErrReviewNotFound)
	assert.ErrorIs(t, service.Delete(context.Background(), "missing", "cust-1"), ErrReviewNotFound)
}
