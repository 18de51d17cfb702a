package readmodel

import "time"

// ServiceReadModel is the read model for print services offered by a shop
type ServiceReadModel struct {
	ID          string              `json:"id"`
	ShopID      string              `json:"shop_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       int                 `json:"price"`
	ProductType string              `json:"product_type"`
	Options     map[string][]string `json:"options,omitempty"`
	ImageURL    string              `json:"image_url,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CartItemReadModel represents a service line in the cart
type CartItemReadModel struct {
	ServiceID string            `json:"service_id"`
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	UnitPrice int               `json:"unit_price"`
	Options   map[string]string `json:"options,omitempty"`
}

// CartReadModel is the read model for the customer cart
type CartReadModel struct {
	ID         string              `json:"id"`
	CustomerID string              `json:"customer_id"`
	Items      []CartItemReadModel `json:"items"`
	Total      int                 `json:"total"`
}

// OrderItemReadModel represents a line item in an order
type OrderItemReadModel struct {
	ServiceID string            `json:"service_id"`
	Name      string            `json:"name"`
	Quantity  int               `json:"quantity"`
	UnitPrice int               `json:"unit_price"`
	Total     int               `json:"total"`
	Options   map[string]string `json:"options,omitempty"`
}

// ReturnRequestReadModel is the return/refund sub-entity attached to an order
type ReturnRequestReadModel struct {
	Reason      string     `json:"reason"`
	Details     string     `json:"details"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`
	Evidence    []string   `json:"evidence,omitempty"`
}

// OrderReadModel is the read model for orders
type OrderReadModel struct {
	ID              string                  `json:"id"`
	CustomerID      string                  `json:"customer_id"`
	ShopID          string                  `json:"shop_id"`
	Items           []OrderItemReadModel    `json:"items"`
	Total           int                     `json:"total"`
	Status          string                  `json:"status"`
	PaymentStatus   string                  `json:"payment_status"`
	StageTimestamps map[string]time.Time    `json:"stage_timestamps"`
	TimeEstimates   map[string]float64      `json:"time_estimates,omitempty"`
	PickupToken     string                  `json:"pickup_token,omitempty"`
	ReturnRequest   *ReturnRequestReadModel `json:"return_request,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// InventoryReadModel is the read model for material stock backing a service
type InventoryReadModel struct {
	ServiceID      string `json:"service_id"`
	TotalStock     int    `json:"total_stock"`
	ReservedStock  int    `json:"reserved_stock"`
	AvailableStock int    `json:"available_stock"`
}

// UserReadModel is the read model for users
type UserReadModel struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionReadModel is the read model for user sessions
type SessionReadModel struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
}

// ShopReadModel is the read model for print shop profiles
type ShopReadModel struct {
	ID                    string             `json:"id"`
	OwnerID               string             `json:"owner_id"`
	Name                  string             `json:"name"`
	Description           string             `json:"description"`
	TimeEstimates         map[string]float64 `json:"time_estimates,omitempty"`
	ReturnEligibleStatuses []string          `json:"return_eligible_statuses,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// ReviewReadModel is the read model for store reviews
type ReviewReadModel struct {
	ID         string    `json:"id"`
	ShopID     string    `json:"shop_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationReadModel is the read model for chat conversations
type ConversationReadModel struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	OwnerID       string    `json:"owner_id"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// MessageReadModel is the read model for chat messages
type MessageReadModel struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Text           string    `json:"text,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	FileURL        string    `json:"file_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DesignCustomizationReadModel holds the decal placement saved with a design
type DesignCustomizationReadModel struct {
	ProductType string  `json:"product_type"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Scale       float64 `json:"scale"`
}

// DesignReadModel is the read model for saved designs
type DesignReadModel struct {
	ID            string                       `json:"id"`
	OwnerID       string                       `json:"owner_id"`
	Name          string                       `json:"name"`
	FileURL       string                       `json:"file_url"`
	ThumbnailURL  string                       `json:"thumbnail_url,omitempty"`
	Customization DesignCustomizationReadModel `json:"customization"`
	CreatedAt     time.Time                    `json:"created_at"`
}
