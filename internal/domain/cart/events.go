package cart

import "time"

const (
	EventItemAdded   = "ItemAddedToCart"
	EventItemRemoved = "ItemRemovedFromCart"
	EventCartCleared = "CartCleared"
)

type ItemAddedToCart struct {
	CartID     string            `json:"cart_id"`
	CustomerID string            `json:"customer_id"`
	ServiceID  string            `json:"service_id"`
	Quantity   int               `json:"quantity"`
	UnitPrice  int               `json:"unit_price"`
	Options    map[string]string `json:"options,omitempty"`
	AddedAt    time.Time         `json:"added_at"`
}

type ItemRemovedFromCart struct {
	CartID     string    `json:"cart_id"`
	CustomerID string    `json:"customer_id"`
	ServiceID  string    `json:"service_id"`
	RemovedAt  time.Time `json:"removed_at"`
}

type CartCleared struct {
	CartID     string    `json:"cart_id"`
	CustomerID string    `json:"customer_id"`
	ClearedAt  time.Time `json:"cleared_at"`
}
