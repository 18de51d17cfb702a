package review

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Review"

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrNotAuthor      = errors.New("only the author can delete a review")
	ErrAlreadyDeleted = errors.New("review already deleted")
)

// Review represents a shop review aggregate
type Review struct {
	ID        string
	ShopID    string
	AuthorID  string
	Rating    int
	Comment   string
	IsDeleted bool
	CreatedAt time.Time
	Version   int
}

// Service handles review domain operations
type Service struct {
	eventStore store.EventStoreInterface
}

// NewService creates a new review service
func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Post publishes a review for a shop
func (s *Service) Post(ctx context.Context, shopID, authorID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	reviewID := uuid.New().String()
	now := time.Now()

	event := ReviewPosted{
		ReviewID: reviewID,
		ShopID:   shopID,
		AuthorID: authorID,
		Rating:   rating,
		Comment:  comment,
		PostedAt: now,
	}

	if _, err := s.eventStore.Append(ctx, reviewID, AggregateType, EventReviewPosted, event); err != nil {
		return nil, err
	}

	return &Review{
		ID:        reviewID,
		ShopID:    shopID,
		AuthorID:  authorID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		Version:   1,
	}, nil
}

// Delete removes a review. Only the author may delete their own review.
func (s *Service) Delete(ctx context.Context, reviewID, authorID string) error {
	review, err := s.Get(reviewID)
	if err != nil {
		return err
	}
	if review.AuthorID != authorID {
		return ErrNotAuthor
	}
	if review.IsDeleted {
		return ErrAlreadyDeleted
	}

	event := ReviewDeleted{
		ReviewID:  reviewID,
		DeletedAt: time.Now(),
	}

	_, err = s.eventStore.Append(ctx, reviewID, AggregateType, EventReviewDeleted, event)
	return err
}

// Get rebuilds a review from its events
func (s *Service) Get(reviewID string) (*Review, error) {
	events := s.eventStore.GetEvents(reviewID)
	if len(events) == 0 {
		return nil, ErrReviewNotFound
	}

	review := &Review{}
	for _, e := range events {
		if err := review.applyEvent(e); err != nil {
			return nil, err
		}
	}
	return review, nil
}

func (r *Review) applyEvent(event store.Event) error {
	switch event.EventType {
	case EventReviewPosted:
		var e ReviewPosted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		r.ID = e.ReviewID
		r.ShopID = e.ShopID
		r.AuthorID = e.AuthorID
		r.Rating = e.Rating
		r.Comment = e.Comment
		r.CreatedAt = e.PostedAt
	case EventReviewDeleted:
		r.IsDeleted = true
	}
	r.Version = event.Version
	return nil
}
