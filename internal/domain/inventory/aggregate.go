// Package inventory tracks material stock per print service (card sheets,
// mug blanks, apparel). Order placement reserves stock; production start
// deducts it; cancellation releases it.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/aggregate"
	"github.com/example/printshop/internal/infrastructure/store"
)

const AggregateType = "Inventory"

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

type Inventory struct {
	ServiceID     string `json:"service_id"`
	TotalStock    int    `json:"total_stock"`
	ReservedStock int    `json:"reserved_stock"`
	Version       int    `json:"version"`
}

func (i *Inventory) GetID() string    { return i.ServiceID }
func (i *Inventory) GetVersion() int  { return i.Version }
func (i *Inventory) SetVersion(v int) { i.Version = v }

func (i *Inventory) AvailableStock() int {
	return i.TotalStock - i.ReservedStock
}

// ApplyEvent applies a single event to the inventory state
func (i *Inventory) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventStockAdded:
		var data StockAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.ServiceID = data.ServiceID
		i.TotalStock += data.Quantity
	case EventStockReserved:
		var data StockReserved
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.ReservedStock += data.Quantity
	case EventStockReleased:
		var data StockReleased
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.ReservedStock -= data.Quantity
		if i.ReservedStock < 0 {
			i.ReservedStock = 0
		}
	case EventStockDeducted:
		var data StockDeducted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		i.TotalStock -= data.Quantity
		i.ReservedStock -= data.Quantity
		if i.TotalStock < 0 {
			i.TotalStock = 0
		}
		if i.ReservedStock < 0 {
			i.ReservedStock = 0
		}
	}
	i.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Get returns current stock levels for a service.
func (s *Service) Get(ctx context.Context, serviceID string) (*Inventory, error) {
	inv, _, err := aggregate.LoadAggregate(ctx, s.eventStore, serviceID, func() *Inventory {
		return &Inventory{ServiceID: serviceID}
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) AddStock(ctx context.Context, serviceID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	event := StockAdded{
		ServiceID: serviceID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
	return s.append(ctx, serviceID, EventStockAdded, event)
}

// Reserve holds stock for an order. Fails when the available stock (total
// minus already reserved) cannot cover the quantity.
func (s *Service) Reserve(ctx context.Context, serviceID, orderID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	inv, err := s.Get(ctx, serviceID)
	if err != nil {
		return err
	}
	if inv.AvailableStock() < quantity {
		return fmt.Errorf("%w: %d available, %d requested for service %s",
			ErrInsufficientStock, inv.AvailableStock(), quantity, serviceID)
	}

	event := StockReserved{
		ServiceID:  serviceID,
		OrderID:    orderID,
		Quantity:   quantity,
		ReservedAt: time.Now(),
	}
	return s.append(ctx, serviceID, EventStockReserved, event)
}

// Release drops a reservation without consuming stock (order cancelled).
func (s *Service) Release(ctx context.Context, serviceID, orderID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	event := StockReleased{
		ServiceID:  serviceID,
		OrderID:    orderID,
		Quantity:   quantity,
		ReleasedAt: time.Now(),
	}
	return s.append(ctx, serviceID, EventStockReleased, event)
}

// Deduct consumes reserved stock when production starts.
func (s *Service) Deduct(ctx context.Context, serviceID, orderID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	event := StockDeducted{
		ServiceID:  serviceID,
		OrderID:    orderID,
		Quantity:   quantity,
		DeductedAt: time.Now(),
	}
	return s.append(ctx, serviceID, EventStockDeducted, event)
}

func (s *Service) append(ctx context.Context, serviceID, eventType string, event any) error {
	storedEvent, err := s.eventStore.Append(ctx, serviceID, AggregateType, eventType, event)
	if err != nil {
		return err
	}

	if storedEvent != nil && storedEvent.Version%store.SnapshotThreshold == 0 {
		inv, err := s.Get(ctx, serviceID)
		if err != nil {
			log.Printf("[Inventory] Failed to load inventory %s for snapshot: %v", serviceID, err)
			return nil
		}
		if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, inv, AggregateType); err != nil {
			log.Printf("[Inventory] Failed to create snapshot for %s: %v", serviceID, err)
		}
	}
	return nil
}
