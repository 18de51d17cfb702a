package kinesis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderPlacedImage() map[string]events.DynamoDBAttributeValue {
	return map[string]events.DynamoDBAttributeValue{
		"id":             events.NewStringAttribute("event-1"),
		"aggregate_id":   events.NewStringAttribute("order-42"),
		"aggregate_type": events.NewStringAttribute("Order"),
		"event_type":     events.NewStringAttribute("OrderPlaced"),
		"data":           events.NewStringAttribute(`{"order_id":"order-42"}`),
		"created_at":     events.NewStringAttribute(time.Now().Format(time.RFC3339Nano)),
		"version":        events.NewNumberAttribute("1"),
	}
}

func TestConvertDynamoDBImage(t *testing.T) {
	t.Run("valid event", func(t *testing.T) {
		event, err := convertDynamoDBImage(orderPlacedImage())
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "event-1", event.ID)
		assert.Equal(t, "order-42", event.AggregateID)
		assert.Equal(t, "Order", event.AggregateType)
		assert.Equal(t, "OrderPlaced", event.EventType)
		assert.Equal(t, 1, event.Version)
		assert.JSONEq(t, `{"order_id":"order-42"}`, string(event.Data))
	})

	t.Run("nil image", func(t *testing.T) {
		_, err := convertDynamoDBImage(nil)
		assert.Error(t, err)
	})

	t.Run("missing required fields", func(t *testing.T) {
		_, err := convertDynamoDBImage(map[string]events.DynamoDBAttributeValue{
			"id": events.NewStringAttribute("event-1"),
		})
		assert.Error(t, err)
	})

	t.Run("bad created_at", func(t *testing.T) {
		image := orderPlacedImage()
		image["created_at"] = events.NewStringAttribute("yesterday")
		_, err := convertDynamoDBImage(image)
		assert.Error(t, err)
	})
}

func TestConvertFromDynamoDBStreamRecord(t *testing.T) {
	t.Run("INSERT converts", func(t *testing.T) {
		record := events.DynamoDBEventRecord{
			EventName: "INSERT",
			Change:    events.DynamoDBStreamRecord{NewImage: orderPlacedImage()},
		}

		event, err := ConvertFromDynamoDBStreamRecord(record)
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "event-1", event.ID)
	})

	t.Run("MODIFY and REMOVE are skipped", func(t *testing.T) {
		for _, name := range []string{"MODIFY", "REMOVE"} {
			event, err := ConvertFromDynamoDBStreamRecord(events.DynamoDBEventRecord{EventName: name})
			require.NoError(t, err)
			assert.Nil(t, event)
		}
	})
}

func TestBatchConvertFromKinesisEvent(t *testing.T) {
	insertRecord := events.DynamoDBEventRecord{
		EventName: "INSERT",
		Change:    events.DynamoDBStreamRecord{NewImage: orderPlacedImage()},
	}
	insertJSON, err := json.Marshal(insertRecord)
	require.NoError(t, err)

	modifyJSON, err := json.Marshal(events.DynamoDBEventRecord{EventName: "MODIFY"})
	require.NoError(t, err)

	kinesisEvent := events.KinesisEvent{
		Records: []events.KinesisEventRecord{
			{EventID: "1", Kinesis: events.KinesisRecord{Data: insertJSON}},
			{EventID: "2", Kinesis: events.KinesisRecord{Data: modifyJSON}},
			{EventID: "3", Kinesis: events.KinesisRecord{Data: []byte("not json")}},
		},
	}

	eventList, errs := BatchConvertFromKinesisEvent(kinesisEvent)

	assert.Len(t, eventList, 1)
	assert.Len(t, errs, 1)
	assert.Equal(t, "order-42", eventList[0].AggregateID)
}
