package printservice

import "time"

const (
	EventServiceCreated      = "PrintServiceCreated"
	EventServiceUpdated      = "PrintServiceUpdated"
	EventServiceDeleted      = "PrintServiceDeleted"
	EventServiceImageUpdated = "PrintServiceImageUpdated"
)

type ServiceCreated struct {
	ServiceID   string              `json:"service_id"`
	ShopID      string              `json:"shop_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	ProductType string              `json:"product_type"`
	Price       int                 `json:"price"`
	Options     map[string][]string `json:"options,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type ServiceUpdated struct {
	ServiceID   string              `json:"service_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       int                 `json:"price"`
	Options     map[string][]string `json:"options,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type ServiceDeleted struct {
	ServiceID string    `json:"service_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type ServiceImageUpdated struct {
	ServiceID string    `json:"service_id"`
	ImageURL  string    `json:"image_url"`
	UpdatedAt time.Time `json:"updated_at"`
}
