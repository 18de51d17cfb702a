package review

import "time"

const (
	EventReviewPosted  = "ReviewPosted"
	EventReviewDeleted = "ReviewDeleted"
)

// ReviewPosted event
type ReviewPosted struct {
	ReviewID string    `json:"review_id"`
	ShopID   string    `json:"shop_id"`
	AuthorID string    `json:"author_id"`
	Rating   int       `json:"rating"`
	Comment  string    `json:"comment"`
	PostedAt time.Time `json:"posted_at"`
}

// ReviewDeleted event
type ReviewDeleted struct {
	ReviewID  string    `json:"review_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
