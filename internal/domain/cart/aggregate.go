// Package cart holds a customer's pending print-service selections. Placing
// an order drains the cart.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/aggregate"
	"github.com/example/printshop/internal/infrastructure/store"
)

const AggregateType = "Cart"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidService  = errors.New("service_id is required")
)

// CartItem is one selected service with the print options the customer
// chose (paper, size, finish...). Re-adding the same service with the same
// options bumps the quantity; different options make a separate line.
type CartItem struct {
	ServiceID string            `json:"service_id"`
	Quantity  int               `json:"quantity"`
	UnitPrice int               `json:"unit_price"`
	Options   map[string]string `json:"options,omitempty"`
}

type Cart struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	Items      []CartItem `json:"items"`
	Version    int        `json:"version"`
}

func (c *Cart) GetID() string    { return c.ID }
func (c *Cart) GetVersion() int  { return c.Version }
func (c *Cart) SetVersion(v int) { c.Version = v }

// GetCartID returns the cart ID for a customer (one live cart per customer)
func GetCartID(customerID string) string {
	return "cart-" + customerID
}

func optionsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// ApplyEvent applies a single event to the cart state
func (c *Cart) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventItemAdded:
		var data ItemAddedToCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		c.ID = data.CartID
		c.CustomerID = data.CustomerID
		merged := false
		for i, item := range c.Items {
			if item.ServiceID == data.ServiceID && optionsEqual(item.Options, data.Options) {
				c.Items[i].Quantity += data.Quantity
				c.Items[i].UnitPrice = data.UnitPrice
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, CartItem{
				ServiceID: data.ServiceID,
				Quantity:  data.Quantity,
				UnitPrice: data.UnitPrice,
				Options:   data.Options,
			})
		}
	case EventItemRemoved:
		var data ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		kept := c.Items[:0]
		for _, item := range c.Items {
			if item.ServiceID != data.ServiceID {
				kept = append(kept, item)
			}
		}
		c.Items = kept
	case EventCartCleared:
		c.Items = nil
	}
	c.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Get returns the customer's current cart; an empty cart if none exists yet.
func (s *Service) Get(ctx context.Context, customerID string) (*Cart, error) {
	cartID := GetCartID(customerID)
	cart, found, err := aggregate.LoadAggregate(ctx, s.eventStore, cartID, func() *Cart {
		return &Cart{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return &Cart{ID: cartID, CustomerID: customerID}, nil
	}
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, customerID, serviceID string, quantity, unitPrice int, options map[string]string) error {
	if serviceID == "" {
		return ErrInvalidService
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	cartID := GetCartID(customerID)
	event := ItemAddedToCart{
		CartID:     cartID,
		CustomerID: customerID,
		ServiceID:  serviceID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Options:    options,
		AddedAt:    time.Now(),
	}

	return s.appendAndSnapshot(ctx, customerID, cartID, EventItemAdded, event)
}

func (s *Service) RemoveItem(ctx context.Context, customerID, serviceID string) error {
	if serviceID == "" {
		return ErrInvalidService
	}

	cartID := GetCartID(customerID)
	event := ItemRemovedFromCart{
		CartID:     cartID,
		CustomerID: customerID,
		ServiceID:  serviceID,
		RemovedAt:  time.Now(),
	}

	return s.appendAndSnapshot(ctx, customerID, cartID, EventItemRemoved, event)
}

func (s *Service) Clear(ctx context.Context, customerID string) error {
	cartID := GetCartID(customerID)
	event := CartCleared{
		CartID:     cartID,
		CustomerID: customerID,
		ClearedAt:  time.Now(),
	}

	return s.appendAndSnapshot(ctx, customerID, cartID, EventCartCleared, event)
}

func (s *Service) appendAndSnapshot(ctx context.Context, customerID, cartID, eventType string, event any) error {
	storedEvent, err := s.eventStore.Append(ctx, cartID, AggregateType, eventType, event)
	if err != nil {
		return err
	}

	if storedEvent != nil && storedEvent.Version%store.SnapshotThreshold == 0 {
		cart, err := s.Get(ctx, customerID)
		if err != nil {
			log.Printf("[Cart] Failed to load cart %s for snapshot: %v", cartID, err)
			return nil
		}
		if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, cart, AggregateType); err != nil {
			log.Printf("[Cart] Failed to create snapshot for cart %s: %v", cartID, err)
		}
	}
	return nil
}
