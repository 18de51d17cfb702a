package design

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/printshop/internal/decal"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Design"

var (
	ErrDesignNotFound = errors.New("design not found")
	ErrInvalidName    = errors.New("design name is required")
	ErrMissingFile    = errors.New("design file URL is required")
	ErrNotOwner       = errors.New("only the owner can modify a design")
)

// Design represents a saved customer design aggregate
type Design struct {
	ID            string
	OwnerID       string
	Name          string
	ProductType   string
	FileURL       string
	ThumbnailURL  string
	Customization Customization
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int
}

// Service handles design domain operations
type Service struct {
	eventStore store.EventStoreInterface
	mapper     *decal.Mapper
}

// NewService creates a new design service
func NewService(es store.EventStoreInterface, mapper *decal.Mapper) *Service {
	if mapper == nil {
		mapper = decal.NewMapper()
	}
	return &Service{eventStore: es, mapper: mapper}
}

// Save creates a new design. The placement scale is clamped to the
// product profile's allowed range before the event is written, so
// replays always produce a printable placement.
func (s *Service) Save(ctx context.Context, ownerID, name, productType, fileURL, thumbnailURL string, c Customization) (*Design, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if fileURL == "" {
		return nil, ErrMissingFile
	}

	c.Scale = s.mapper.Profile(productType).ClampScale(c.Scale)

	designID := uuid.New().String()
	now := time.Now()

	event := DesignSaved{
		DesignID:      designID,
		OwnerID:       ownerID,
		Name:          name,
		ProductType:   productType,
		FileURL:       fileURL,
		ThumbnailURL:  thumbnailURL,
		Customization: c,
		SavedAt:       now,
	}

	if _, err := s.eventStore.Append(ctx, designID, AggregateType, EventDesignSaved, event); err != nil {
		return nil, err
	}

	return &Design{
		ID:            designID,
		OwnerID:       ownerID,
		Name:          name,
		ProductType:   productType,
		FileURL:       fileURL,
		ThumbnailURL:  thumbnailURL,
		Customization: c,
		CreatedAt:     now,
		UpdatedAt:     now,
		Version:       1,
	}, nil
}

// Update overwrites a design's artwork and placement
func (s *Service) Update(ctx context.Context, designID, ownerID, name, fileURL, thumbnailURL string, c Customization) error {
	design, err := s.Get(designID)
	if err != nil {
		return err
	}
	if design.OwnerID != ownerID {
		return ErrNotOwner
	}
	if name == "" {
		return ErrInvalidName
	}
	if fileURL == "" {
		return ErrMissingFile
	}

	c.Scale = s.mapper.Profile(design.ProductType).ClampScale(c.Scale)

	event := DesignSaved{
		DesignID:      designID,
		OwnerID:       ownerID,
		Name:          name,
		ProductType:   design.ProductType,
		FileURL:       fileURL,
		ThumbnailURL:  thumbnailURL,
		Customization: c,
		SavedAt:       time.Now(),
	}

	_, err = s.eventStore.Append(ctx, designID, AggregateType, EventDesignSaved, event)
	return err
}

// Delete removes a design
func (s *Service) Delete(ctx context.Context, designID, ownerID string) error {
	design, err := s.Get(designID)
	if err != nil {
		return err
	}
	if design.OwnerID != ownerID {
		return ErrNotOwner
	}
	if design.IsDeleted {
		return ErrDesignNotFound
	}

	event := DesignDeleted{
		DesignID:  designID,
		DeletedAt: time.Now(),
	}

	_, err = s.eventStore.Append(ctx, designID, AggregateType, EventDesignDeleted, event)
	return err
}

// Get rebuilds a design from its events
func (s *Service) Get(designID string) (*Design, error) {
	events := s.eventStore.GetEvents(designID)
	if len(events) == 0 {
		return nil, ErrDesignNotFound
	}

	design := &Design{}
	for _, e := range events {
		if err := design.applyEvent(e); err != nil {
			return nil, err
		}
	}
	return design, nil
}

func (d *Design) applyEvent(event store.Event) error {
	switch event.EventType {
	case EventDesignSaved:
		var e DesignSaved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		if d.ID == "" {
			d.CreatedAt = e.SavedAt
		}
		d.ID = e.DesignID
		d.OwnerID = e.OwnerID
		d.Name = e.Name
		d.ProductType = e.ProductType
		d.FileURL = e.FileURL
		d.ThumbnailURL = e.ThumbnailURL
		d.Customization = e.Customization
		d.UpdatedAt = e.SavedAt
	case EventDesignDeleted:
		d.IsDeleted = true
	}
	d.Version = event.Version
	return nil
}
