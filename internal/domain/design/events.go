package design

import "time"

const (
	EventDesignSaved   = "DesignSaved"
	EventDesignDeleted = "DesignDeleted"
)

// Customization is the normalized placement of artwork on a product.
// X and Y are fractions of the printable area, Scale is relative to
// the product profile's reference size.
type Customization struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// DesignSaved event
type DesignSaved struct {
	DesignID      string        `json:"design_id"`
	OwnerID       string        `json:"owner_id"`
	Name          string        `json:"name"`
	ProductType   string        `json:"product_type"`
	FileURL       string        `json:"file_url"`
	ThumbnailURL  string        `json:"thumbnail_url"`
	Customization Customization `json:"customization"`
	SavedAt       time.Time     `json:"saved_at"`
}

// DesignDeleted event
type DesignDeleted struct {
	DesignID  string    `json:"design_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
