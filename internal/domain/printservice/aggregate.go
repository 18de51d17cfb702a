// Package printservice is the catalog aggregate: a print service is one
// offering of a shop (business cards, posters, apparel prints...) with a
// price and the print options a customer picks from.
package printservice

import (
	"context"
	"errors"
	"time"

	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "PrintService"

var (
	ErrServiceNotFound    = errors.New("print service not found")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidProductType = errors.New("product type is required")
	ErrInvalidShop        = errors.New("shop_id is required")
)

type PrintService struct {
	ID          string              `json:"id"`
	ShopID      string              `json:"shop_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	ProductType string              `json:"product_type"`
	Price       int                 `json:"price"`
	Options     map[string][]string `json:"options,omitempty"`
	ImageURL    string              `json:"image_url,omitempty"`
	IsDeleted   bool                `json:"is_deleted,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Create registers a new offering in a shop's catalog. Options maps an
// option name to its allowed values (paper: [matte, glossy]).
func (s *Service) Create(ctx context.Context, shopID, name, description, productType string, price int, options map[string][]string) (*PrintService, error) {
	if shopID == "" {
		return nil, ErrInvalidShop
	}
	if name == "" {
		return nil, ErrInvalidName
	}
	if productType == "" {
		return nil, ErrInvalidProductType
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}

	serviceID := uuid.New().String()
	now := time.Now()

	event := ServiceCreated{
		ServiceID:   serviceID,
		ShopID:      shopID,
		Name:        name,
		Description: description,
		ProductType: productType,
		Price:       price,
		Options:     options,
		CreatedAt:   now,
	}

	_, err := s.eventStore.Append(ctx, serviceID, AggregateType, EventServiceCreated, event)
	if err != nil {
		return nil, err
	}

	return &PrintService{
		ID:          serviceID,
		ShopID:      shopID,
		Name:        name,
		Description: description,
		ProductType: productType,
		Price:       price,
		Options:     options,
		CreatedAt:   now,
	}, nil
}

func (s *Service) Update(ctx context.Context, serviceID, name, description string, price int, options map[string][]string) error {
	if name == "" {
		return ErrInvalidName
	}
	if price <= 0 {
		return ErrInvalidPrice
	}

	events := s.eventStore.GetEvents(serviceID)
	if len(events) == 0 {
		return ErrServiceNotFound
	}

	event := ServiceUpdated{
		ServiceID:   serviceID,
		Name:        name,
		Description: description,
		Price:       price,
		Options:     options,
		UpdatedAt:   time.Now(),
	}

	_, err := s.eventStore.Append(ctx, serviceID, AggregateType, EventServiceUpdated, event)
	return err
}

func (s *Service) UpdateImage(ctx context.Context, serviceID, imageURL string) error {
	events := s.eventStore.GetEvents(serviceID)
	if len(events) == 0 {
		return ErrServiceNotFound
	}

	event := ServiceImageUpdated{
		ServiceID: serviceID,
		ImageURL:  imageURL,
		UpdatedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, serviceID, AggregateType, EventServiceImageUpdated, event)
	return err
}

func (s *Service) Delete(ctx context.Context, serviceID string) error {
	events := s.eventStore.GetEvents(serviceID)
	if len(events) == 0 {
		return ErrServiceNotFound
	}

	event := ServiceDeleted{
		ServiceID: serviceID,
		DeletedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, serviceID, AggregateType, EventServiceDeleted, event)
	return err
}
