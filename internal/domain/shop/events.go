package shop

import "time"

const (
	EventShopCreated         = "ShopCreated"
	EventShopUpdated         = "ShopUpdated"
	EventTimeEstimatesSet    = "ShopTimeEstimatesSet"
	EventReturnPolicySet     = "ShopReturnPolicySet"
)

type ShopCreated struct {
	ShopID      string    `json:"shop_id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type ShopUpdated struct {
	ShopID      string    `json:"shop_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TimeEstimatesSet carries hours per order stage, copied into orders at
// placement time for display.
type TimeEstimatesSet struct {
	ShopID    string             `json:"shop_id"`
	Estimates map[string]float64 `json:"estimates"`
	SetAt     time.Time          `json:"set_at"`
}

// ReturnPolicySet carries the order statuses from which this shop accepts
// return requests.
type ReturnPolicySet struct {
	ShopID           string    `json:"shop_id"`
	EligibleStatuses []string  `json:"eligible_statuses"`
	SetAt            time.Time `json:"set_at"`
}
