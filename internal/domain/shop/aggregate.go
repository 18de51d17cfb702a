// Package shop is the print shop profile aggregate: the owner's storefront,
// its per-stage production time estimates and its return policy.
package shop

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/printshop/internal/domain/aggregate"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Shop"

var (
	ErrShopNotFound    = errors.New("shop not found")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidOwner    = errors.New("owner_id is required")
	ErrInvalidEstimate = errors.New("time estimates must be positive")
)

type Shop struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Hours per order stage, display only; copied into orders at placement
	TimeEstimates map[string]float64 `json:"time_estimates,omitempty"`

	// Order statuses from which this shop accepts return requests;
	// empty means completed only
	ReturnEligibleStatuses []string `json:"return_eligible_statuses,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func (sh *Shop) GetID() string    { return sh.ID }
func (sh *Shop) GetVersion() int  { return sh.Version }
func (sh *Shop) SetVersion(v int) { sh.Version = v }

// ApplyEvent applies a single event to the shop state
func (sh *Shop) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventShopCreated:
		var data ShopCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		sh.ID = data.ShopID
		sh.OwnerID = data.OwnerID
		sh.Name = data.Name
		sh.Description = data.Description
		sh.CreatedAt = data.CreatedAt
		sh.UpdatedAt = data.CreatedAt
	case EventShopUpdated:
		var data ShopUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		sh.Name = data.Name
		sh.Description = data.Description
		sh.UpdatedAt = data.UpdatedAt
	case EventTimeEstimatesSet:
		var data TimeEstimatesSet
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		sh.TimeEstimates = data.Estimates
		sh.UpdatedAt = data.SetAt
	case EventReturnPolicySet:
		var data ReturnPolicySet
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		sh.ReturnEligibleStatuses = data.EligibleStatuses
		sh.UpdatedAt = data.SetAt
	}
	sh.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Get returns the current state of a shop
func (s *Service) Get(ctx context.Context, shopID string) (*Shop, error) {
	sh, found, err := aggregate.LoadAggregate(ctx, s.eventStore, shopID, func() *Shop {
		return &Shop{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrShopNotFound
	}
	return sh, nil
}

func (s *Service) Create(ctx context.Context, ownerID, name, description string) (*Shop, error) {
	if ownerID == "" {
		return nil, ErrInvalidOwner
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	shopID := uuid.New().String()
	now := time.Now()

	event := ShopCreated{
		ShopID:      shopID,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
	}

	_, err := s.eventStore.Append(ctx, shopID, AggregateType, EventShopCreated, event)
	if err != nil {
		return nil, err
	}

	return &Shop{
		ID:          shopID,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Service) Update(ctx context.Context, shopID, name, description string) error {
	if name == "" {
		return ErrInvalidName
	}
	if _, err := s.Get(ctx, shopID); err != nil {
		return err
	}

	event := ShopUpdated{
		ShopID:      shopID,
		Name:        name,
		Description: description,
		UpdatedAt:   time.Now(),
	}

	_, err := s.eventStore.Append(ctx, shopID, AggregateType, EventShopUpdated, event)
	return err
}

// SetTimeEstimates configures the hours shown per order stage.
func (s *Service) SetTimeEstimates(ctx context.Context, shopID string, estimates map[string]float64) error {
	for _, hours := range estimates {
		if hours <= 0 {
			return ErrInvalidEstimate
		}
	}
	if _, err := s.Get(ctx, shopID); err != nil {
		return err
	}

	event := TimeEstimatesSet{
		ShopID:    shopID,
		Estimates: estimates,
		SetAt:     time.Now(),
	}

	_, err := s.eventStore.Append(ctx, shopID, AggregateType, EventTimeEstimatesSet, event)
	return err
}

// SetReturnPolicy configures the statuses from which returns are accepted.
func (s *Service) SetReturnPolicy(ctx context.Context, shopID string, eligibleStatuses []string) error {
	if _, err := s.Get(ctx, shopID); err != nil {
		return err
	}

	event := ReturnPolicySet{
		ShopID:           shopID,
		EligibleStatuses: eligibleStatuses,
		SetAt:            time.Now(),
	}

	_, err := s.eventStore.Append(ctx, shopID, AggregateType, EventReturnPolicySet, event)
	return err
}
