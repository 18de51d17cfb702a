package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_Struct(t *testing.T) {
	state := map[string]interface{}{
		"id":     "order-123",
		"status": "processing",
		"total":  4500,
	}
	stateJSON, err := json.Marshal(state)
	require.NoError(t, err)

	snapshot := Snapshot{
		AggregateID:   "order-123",
		AggregateType: "Order",
		Version:       10,
		State:         stateJSON,
		CreatedAt:     time.Now(),
	}

	assert.Equal(t, "order-123", snapshot.AggregateID)
	assert.Equal(t, "Order", snapshot.AggregateType)
	assert.Equal(t, 10, snapshot.Version)
	assert.NotEmpty(t, snapshot.State)
	assert.NotZero(t, snapshot.CreatedAt)
}

func TestSnapshot_JSONMarshalUnmarshal(t *testing.T) {
	state := map[string]interface{}{
		"id":     "order-123",
		"status": "ready",
	}
	stateJSON, err := json.Marshal(state)
	require.NoError(t, err)

	original := Snapshot{
		AggregateID:   "order-123",
		AggregateType: "Order",
		Version:       10,
		State:         stateJSON,
		CreatedAt:     time.Now().Truncate(time.Second),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Snapshot
	err = json.Unmarshal(data, &restored)
	require.NoError(t, err)

	assert.Equal(t, original.AggregateID, restored.AggregateID)
	assert.Equal(t, original.AggregateType, restored.AggregateType)
	assert.Equal(t, original.Version, restored.Version)
	assert.JSONEq(t, string(original.State), string(restored.State))
}

func TestSnapshotThreshold(t *testing.T) {
	assert.Equal(t, 10, SnapshotThreshold)
}

func TestEventStore_SnapshotRoundTrip(t *testing.T) {
	es := NewEventStore(nil)

	type orderState struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Total  int    `json:"total"`
	}

	stateJSON, err := json.Marshal(orderState{ID: "order-1", Status: "ready", Total: 3000})
	require.NoError(t, err)

	err = es.SaveSnapshot(context.Background(), &Snapshot{
		AggregateID:   "order-1",
		AggregateType: "Order",
		Version:       10,
		State:         stateJSON,
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)

	snap, err := es.GetSnapshot(context.Background(), "order-1")
	require.NoError(t, err)
	require.NotNil(t, snap)

	var restored orderState
	require.NoError(t, json.Unmarshal(snap.State, &restored))
	assert.Equal(t, "ready", restored.Status)
	assert.Equal(t, 3000, restored.Total)
}

func TestEventStore_GetEventsFromVersion(t *testing.T) {
	es := NewEventStore(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := es.Append(ctx, "order-1", "Order", "OrderAdvanced", map[string]int{"seq": i})
		require.NoError(t, err)
	}

	events := es.GetEventsFromVersion(ctx, "order-1", 3)
	require.Len(t, events, 2)
	assert.Equal(t, 4, events[0].Version)
	assert.Equal(t, 5, events[1].Version)
}
