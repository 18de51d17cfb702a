package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/aggregate"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Order"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "pending"
	ReturnApproved ReturnStatus = "approved"
	ReturnDenied   ReturnStatus = "denied"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyOrder         = errors.New("order must have at least one item")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrNotEligible        = errors.New("order is not eligible for a return request")
	ErrAlreadyPending     = errors.New("a return request is already pending")
	ErrAlreadyDecided     = errors.New("return request has already been decided")
	ErrMissingReason      = errors.New("review notes are required to deny a return request")
	ErrNoReturnRequest    = errors.New("order has no return request")
	ErrInvalidDecision    = errors.New("decision must be approved or denied")
)

// nextStatus defines the single forward step from each non-terminal status.
// Advancing never skips a stage.
var nextStatus = map[Status]Status{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusReady,
	StatusReady:      StatusCompleted,
}

// validTransitions defines allowed state transitions
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusReady},
	StatusReady:      {StatusCompleted},
	StatusCompleted:  {}, // terminal state
	StatusCancelled:  {}, // terminal state
}

// CanTransitionTo checks if the order can transition to the target status
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// CanAdvance reports whether a forward step exists from the current status
func (o *Order) CanAdvance() bool {
	_, ok := nextStatus[o.Status]
	return ok
}

// NextStatus returns the status a single advance step would enter
func (o *Order) NextStatus() (Status, bool) {
	next, ok := nextStatus[o.Status]
	return next, ok
}

// IsTerminal reports whether the order is in a terminal status
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// ReturnRequest is the return/refund sub-entity attached to an order.
// Once decided it is immutable.
type ReturnRequest struct {
	Reason      string       `json:"reason"`
	Details     string       `json:"details"`
	Status      ReturnStatus `json:"status"`
	SubmittedAt time.Time    `json:"submitted_at"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
	ReviewNotes string       `json:"review_notes,omitempty"`
	Evidence    []string     `json:"evidence,omitempty"`
}

type Order struct {
	ID              string               `json:"id"`
	CustomerID      string               `json:"customer_id"`
	ShopID          string               `json:"shop_id"`
	Items           []OrderItem          `json:"items"`
	Total           int                  `json:"total"`
	Status          Status               `json:"status"`
	PaymentStatus   PaymentStatus        `json:"payment_status"`
	StageTimestamps map[Status]time.Time `json:"stage_timestamps"`
	TimeEstimates   map[Status]float64   `json:"time_estimates,omitempty"`
	PickupToken     string               `json:"pickup_token,omitempty"`
	ReturnRequest   *ReturnRequest       `json:"return_request,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	Version         int                  `json:"version"` // Current event version
}

// Aggregate interface implementation
func (o *Order) GetID() string    { return o.ID }
func (o *Order) GetVersion() int  { return o.Version }
func (o *Order) SetVersion(v int) { o.Version = v }

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// ApplyEvent applies a single event to the order state (implements aggregate.Aggregate)
func (o *Order) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventOrderPlaced:
		var data OrderPlaced
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.ID = data.OrderID
		o.CustomerID = data.CustomerID
		o.ShopID = data.ShopID
		o.Items = data.Items
		o.Total = data.Total
		o.Status = StatusPending
		o.PaymentStatus = PaymentUnpaid
		o.TimeEstimates = data.TimeEstimates
		o.StageTimestamps = map[Status]time.Time{StatusPending: data.PlacedAt}
		o.CreatedAt = data.PlacedAt
		o.UpdatedAt = data.PlacedAt
	case EventOrderAdvanced:
		var data OrderAdvanced
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = data.To
		if o.StageTimestamps == nil {
			o.StageTimestamps = make(map[Status]time.Time)
		}
		// Stage entry instants are set once, never overwritten
		if _, seen := o.StageTimestamps[data.To]; !seen {
			o.StageTimestamps[data.To] = data.AdvancedAt
		}
		switch data.To {
		case StatusReady:
			o.PickupToken = data.PickupToken
		case StatusCompleted:
			o.PickupToken = ""
			if data.PaymentStatus != "" {
				o.PaymentStatus = data.PaymentStatus
			}
		}
		o.UpdatedAt = data.AdvancedAt
	case EventOrderCancelled:
		var data OrderCancelled
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.Status = StatusCancelled
		o.PickupToken = ""
		o.UpdatedAt = data.CancelledAt
	case EventReturnRequested:
		var data ReturnRequested
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		o.ReturnRequest = &ReturnRequest{
			Reason:      data.Reason,
			Details:     data.Details,
			Status:      ReturnPending,
			SubmittedAt: data.SubmittedAt,
			Evidence:    data.Evidence,
		}
		o.UpdatedAt = data.SubmittedAt
	case EventReturnDecided:
		var data ReturnDecided
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if o.ReturnRequest != nil {
			o.ReturnRequest.Status = data.Decision
			o.ReturnRequest.ReviewNotes = data.ReviewNotes
			reviewedAt := data.ReviewedAt
			o.ReturnRequest.ReviewedAt = &reviewedAt
		}
		if data.PaymentStatus != "" {
			o.PaymentStatus = data.PaymentStatus
		}
		o.UpdatedAt = data.ReviewedAt
	}
	o.Version = event.Version
	return nil
}

// loadOrder loads an order by replaying events, using snapshot if available
func (s *Service) loadOrder(ctx context.Context, orderID string) (*Order, error) {
	order, found, err := aggregate.LoadAggregate(ctx, s.eventStore, orderID, func() *Order {
		return &Order{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Get returns the current state of an order
func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	return s.loadOrder(ctx, orderID)
}

// Place creates a new order in the pending status. The stage estimates are
// copied from the shop configuration at placement time and are display-only.
func (s *Service) Place(ctx context.Context, customerID, shopID string, items []OrderItem, estimates map[Status]float64) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	orderID := uuid.New().String()
	now := time.Now()

	var total int
	for i := range items {
		items[i].Total = items[i].UnitPrice * items[i].Quantity
		total += items[i].Total
	}

	event := OrderPlaced{
		OrderID:       orderID,
		CustomerID:    customerID,
		ShopID:        shopID,
		Items:         items,
		Total:         total,
		TimeEstimates: estimates,
		PlacedAt:      now,
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderPlaced, event)
	if err != nil {
		return nil, err
	}

	order := &Order{
		ID:              orderID,
		CustomerID:      customerID,
		ShopID:          shopID,
		Items:           items,
		Total:           total,
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		TimeEstimates:   estimates,
		StageTimestamps: map[Status]time.Time{StatusPending: now},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if storedEvent != nil {
		order.Version = storedEvent.Version
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to create snapshot for order %s: %v", order.ID, err)
	}

	return order, nil
}

// Advance moves the order a single step forward along
// pending -> processing -> ready -> completed. Entering ready issues a
// pickup token; entering completed clears it and forces the payment status
// to paid in the same event.
func (s *Service) Advance(ctx context.Context, orderID string) (*Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	target, ok := order.NextStatus()
	if !ok {
		return nil, fmt.Errorf("%w: no next status from %s", ErrInvalidTransition, order.Status)
	}

	now := time.Now()
	event := OrderAdvanced{
		OrderID:    orderID,
		To:         target,
		AdvancedAt: now,
	}
	switch target {
	case StatusReady:
		event.PickupToken = uuid.New().String()
	case StatusCompleted:
		event.PaymentStatus = PaymentPaid
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderAdvanced, event)
	if err != nil {
		return nil, err
	}
	if err := order.ApplyEvent(*storedEvent); err != nil {
		return nil, err
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to create snapshot for order %s: %v", order.ID, err)
	}

	return order, nil
}

// Cancel cancels an order. Only pending orders can be cancelled.
func (s *Service) Cancel(ctx context.Context, orderID, reason string) (*Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(StatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, order.Status)
	}

	event := OrderCancelled{
		OrderID:     orderID,
		Reason:      reason,
		CancelledAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventOrderCancelled, event)
	if err != nil {
		return nil, err
	}
	if err := order.ApplyEvent(*storedEvent); err != nil {
		return nil, err
	}

	if err := aggregate.MaybeCreateSnapshot(ctx, s.eventStore, order, AggregateType); err != nil {
		log.Printf("[Order] Failed to create snapshot for order %s: %v", order.ID, err)
	}

	return order, nil
}

// SubmitReturnRequest attaches a return request to an order. The caller
// supplies the statuses the shop considers return-eligible (completed by
// default, some shops also allow ready).
func (s *Service) SubmitReturnRequest(ctx context.Context, orderID, reason, details string, evidence []string, eligible []Status) (*Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if len(eligible) == 0 {
		eligible = []Status{StatusCompleted}
	}
	isEligible := false
	for _, st := range eligible {
		if order.Status == st {
			isEligible = true
			break
		}
	}
	if !isEligible {
		return nil, fmt.Errorf("%w: order is %s", ErrNotEligible, order.Status)
	}

	if order.ReturnRequest != nil {
		if order.ReturnRequest.Status == ReturnPending {
			return nil, ErrAlreadyPending
		}
		return nil, ErrAlreadyDecided
	}

	event := ReturnRequested{
		OrderID:     orderID,
		Reason:      reason,
		Details:     details,
		Evidence:    evidence,
		SubmittedAt: time.Now(),
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventReturnRequested, event)
	if err != nil {
		return nil, err
	}
	if err := order.ApplyEvent(*storedEvent); err != nil {
		return nil, err
	}

	return order, nil
}

// DecideReturnRequest records the store's verdict on a pending return
// request. Denial requires non-empty review notes; approval forces the
// payment status to refunded. A decided request is immutable.
func (s *Service) DecideReturnRequest(ctx context.Context, orderID string, decision ReturnStatus, reviewNotes string) (*Order, error) {
	if decision != ReturnApproved && decision != ReturnDenied {
		return nil, ErrInvalidDecision
	}
	if decision == ReturnDenied && reviewNotes == "" {
		return nil, ErrMissingReason
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.ReturnRequest == nil {
		return nil, ErrNoReturnRequest
	}
	if order.ReturnRequest.Status != ReturnPending {
		return nil, ErrAlreadyDecided
	}

	event := ReturnDecided{
		OrderID:     orderID,
		Decision:    decision,
		ReviewNotes: reviewNotes,
		ReviewedAt:  time.Now(),
	}
	if decision == ReturnApproved {
		event.PaymentStatus = PaymentRefunded
	}

	storedEvent, err := s.eventStore.Append(ctx, orderID, AggregateType, EventReturnDecided, event)
	if err != nil {
		return nil, err
	}
	if err := order.ApplyEvent(*storedEvent); err != nil {
		return nil, err
	}

	return order, nil
}
