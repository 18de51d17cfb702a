package command

// Shop Commands
type CreateShop struct {
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateShop struct {
	ShopID      string `json:"shop_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SetShopTimeEstimates struct {
	ShopID    string             `json:"shop_id"`
	Estimates map[string]float64 `json:"estimates"`
}

type SetShopReturnPolicy struct {
	ShopID           string   `json:"shop_id"`
	EligibleStatuses []string `json:"eligible_statuses"`
}

// Catalog Commands
type CreateService struct {
	ShopID      string              `json:"shop_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	ProductType string              `json:"product_type"`
	Price       int                 `json:"price"`
	Options     map[string][]string `json:"options"`
	Stock       int                 `json:"stock"`
}

type UpdateService struct {
	ServiceID   string              `json:"service_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       int                 `json:"price"`
	Options     map[string][]string `json:"options"`
}

type UpdateServiceImage struct {
	ServiceID string `json:"service_id"`
	ImageURL  string `json:"image_url"`
}

type DeleteService struct {
	ServiceID string `json:"service_id"`
}

// Cart Commands
type AddToCart struct {
	CustomerID string            `json:"customer_id"`
	ServiceID  string            `json:"service_id"`
	Quantity   int               `json:"quantity"`
	Options    map[string]string `json:"options"`
}

type RemoveFromCart struct {
	CustomerID string `json:"customer_id"`
	ServiceID  string `json:"service_id"`
}

type ClearCart struct {
	CustomerID string `json:"customer_id"`
}

// Order Commands
type PlaceOrder struct {
	CustomerID string `json:"customer_id"`
	ShopID     string `json:"shop_id"`
}

type AdvanceOrder struct {
	OrderID string `json:"order_id"`
	// Target, when set, must equal the single next status; the command
	// fails before touching the order otherwise
	Target string `json:"target,omitempty"`
}

type CancelOrder struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type ConfirmPickup struct {
	Token string `json:"token"`
}

// Return Commands
type SubmitReturnRequest struct {
	OrderID  string   `json:"order_id"`
	Reason   string   `json:"reason"`
	Details  string   `json:"details"`
	Evidence []string `json:"evidence"`
}

type DecideReturnRequest struct {
	OrderID     string `json:"order_id"`
	Decision    string `json:"decision"`
	ReviewNotes string `json:"review_notes"`
}

// Review Commands
type PostReview struct {
	ShopID   string `json:"shop_id"`
	AuthorID string `json:"author_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type DeleteReview struct {
	ReviewID string `json:"review_id"`
	AuthorID string `json:"author_id"`
}

// Design Commands
type SaveDesign struct {
	OwnerID      string  `json:"owner_id"`
	Name         string  `json:"name"`
	ProductType  string  `json:"product_type"`
	FileURL      string  `json:"file_url"`
	ThumbnailURL string  `json:"thumbnail_url"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Scale        float64 `json:"scale"`
}

type UpdateDesign struct {
	DesignID     string  `json:"design_id"`
	OwnerID      string  `json:"owner_id"`
	Name         string  `json:"name"`
	FileURL      string  `json:"file_url"`
	ThumbnailURL string  `json:"thumbnail_url"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Scale        float64 `json:"scale"`
}

type DeleteDesign struct {
	DesignID string `json:"design_id"`
	OwnerID  string `json:"owner_id"`
}
