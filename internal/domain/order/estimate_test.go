package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateDisplay_Pending(t *testing.T) {
	o := &Order{
		Status:        StatusPending,
		TimeEstimates: map[Status]float64{StatusProcessing: 24},
	}

	assert.Equal(t, "Estimated 24 hours to next stage", EstimateDisplay(o, time.Now()))
}

func TestEstimateDisplay_PendingWithoutEstimate(t *testing.T) {
	o := &Order{Status: StatusPending}

	assert.Equal(t, "Waiting for the shop to start your order", EstimateDisplay(o, time.Now()))
}

func TestEstimateDisplay_ProcessingCountsDown(t *testing.T) {
	entered := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	o := &Order{
		Status:          StatusProcessing,
		TimeEstimates:   map[Status]float64{StatusProcessing: 10},
		StageTimestamps: map[Status]time.Time{StatusProcessing: entered},
	}

	// 4 hours in: 6 remaining
	now := entered.Add(4 * time.Hour)
	assert.Equal(t, "About 6.0 hours remaining", EstimateDisplay(o, now))

	// Half an hour later the same order renders a smaller value
	assert.Equal(t, "About 5.5 hours remaining", EstimateDisplay(o, now.Add(30*time.Minute)))
}

func TestEstimateDisplay_ProcessingClampsAtZero(t *testing.T) {
	entered := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	o := &Order{
		Status:          StatusProcessing,
		TimeEstimates:   map[Status]float64{StatusProcessing: 2},
		StageTimestamps: map[Status]time.Time{StatusProcessing: entered},
	}

	// Long past the estimate: never negative
	assert.Equal(t, "About 0.0 hours remaining", EstimateDisplay(o, entered.Add(48*time.Hour)))
}

func TestEstimateDisplay_ProcessingWithoutEstimate(t *testing.T) {
	o := &Order{Status: StatusProcessing}

	assert.Equal(t, "In production", EstimateDisplay(o, time.Now()))
}

func TestEstimateDisplay_TerminalStages(t *testing.T) {
	assert.Equal(t, "Ready for pickup", EstimateDisplay(&Order{Status: StatusReady}, time.Now()))
	assert.Equal(t, "Order completed", EstimateDisplay(&Order{Status: StatusCompleted}, time.Now()))
	assert.Equal(t, "Order cancelled", EstimateDisplay(&Order{Status: StatusCancelled}, time.Now()))
}

func TestEstimateDisplay_Deterministic(t *testing.T) {
	entered := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	o := &Order{
		Status:          StatusProcessing,
		TimeEstimates:   map[Status]float64{StatusProcessing: 10},
		StageTimestamps: map[Status]time.Time{StatusProcessing: entered},
	}
	now := entered.Add(time.Hour)

	first := EstimateDisplay(o, now)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, EstimateDisplay(o, now))
	}
}
