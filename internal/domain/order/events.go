package order

import "time"

const (
	EventOrderPlaced     = "OrderPlaced"
	EventOrderAdvanced   = "OrderAdvanced"
	EventOrderCancelled  = "OrderCancelled"
	EventReturnRequested = "ReturnRequested"
	EventReturnDecided   = "ReturnDecided"
)

type OrderItem struct {
	ServiceID string            `json:"service_id"`
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	UnitPrice int               `json:"unit_price"`
	Total     int               `json:"total"`
	Options   map[string]string `json:"options,omitempty"`
}

type OrderPlaced struct {
	OrderID       string             `json:"order_id"`
	CustomerID    string             `json:"customer_id"`
	ShopID        string             `json:"shop_id"`
	Items         []OrderItem        `json:"items"`
	Total         int                `json:"total"`
	TimeEstimates map[Status]float64 `json:"time_estimates,omitempty"`
	PlacedAt      time.Time          `json:"placed_at"`
}

// OrderAdvanced records a single-step move to the next status. Entering
// ready carries a freshly issued pickup token; entering completed carries
// the forced payment status.
type OrderAdvanced struct {
	OrderID       string        `json:"order_id"`
	To            Status        `json:"to"`
	PickupToken   string        `json:"pickup_token,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	AdvancedAt    time.Time     `json:"advanced_at"`
}

type OrderCancelled struct {
	OrderID     string    `json:"order_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type ReturnRequested struct {
	OrderID     string    `json:"order_id"`
	Reason      string    `json:"reason"`
	Details     string    `json:"details"`
	Evidence    []string  `json:"evidence,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ReturnDecided records the store's verdict. An approval forces the
// payment status to refunded in the same event.
type ReturnDecided struct {
	OrderID       string        `json:"order_id"`
	Decision      ReturnStatus  `json:"decision"`
	ReviewNotes   string        `json:"review_notes,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	ReviewedAt    time.Time     `json:"reviewed_at"`
}
