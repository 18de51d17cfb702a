package order

import (
	"fmt"
	"time"
)

// EstimateDisplay derives the human-readable time-remaining line shown next
// to an order. Pure function of the order and the supplied clock; callers
// re-invoke it on every render tick. The estimates are display-only and
// never affect transitions.
func EstimateDisplay(o *Order, now time.Time) string {
	switch o.Status {
	case StatusPending:
		est := o.TimeEstimates[StatusProcessing]
		if est <= 0 {
			return "Waiting for the shop to start your order"
		}
		return fmt.Sprintf("Estimated %.0f hours to next stage", est)
	case StatusProcessing:
		est := o.TimeEstimates[StatusProcessing]
		entered, ok := o.StageTimestamps[StatusProcessing]
		if !ok || est <= 0 {
			return "In production"
		}
		elapsed := now.Sub(entered).Hours()
		remaining := est - elapsed
		if remaining < 0 {
			remaining = 0
		}
		return fmt.Sprintf("About %.1f hours remaining", remaining)
	case StatusReady:
		return "Ready for pickup"
	case StatusCompleted:
		return "Order completed"
	case StatusCancelled:
		return "Order cancelled"
	}
	return ""
}
