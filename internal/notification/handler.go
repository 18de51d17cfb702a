package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/email"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/readmodel"
)

// Handler processes events for sending notifications
type Handler struct {
	emailService *email.Service
	readStore    store.ReadStoreInterface
}

// NewHandler creates a new notification handler
func NewHandler(emailSvc *email.Service, readStore store.ReadStoreInterface) *Handler {
	return &Handler{
		emailService: emailSvc,
		readStore:    readStore,
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch event.EventType {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(event)
	case order.EventOrderAdvanced:
		return h.handleOrderAdvanced(event)
	case order.EventReturnDecided:
		return h.handleReturnDecided(event)
	}

	return nil
}

func (h *Handler) handleOrderPlaced(event store.Event) error {
	var e order.OrderPlaced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing OrderPlaced event for order %s, customer %s", e.OrderID, e.CustomerID)

	user, ok := h.lookupUser(e.CustomerID)
	if !ok {
		return nil
	}

	// Convert order items to email items
	emailItems := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		// Prefer the current service name over the one frozen in the order
		serviceName := item.Name
		if serviceData, exists := h.readStore.Get("services", item.ServiceID); exists {
			if svc, ok := serviceData.(*readmodel.ServiceReadModel); ok {
				serviceName = svc.Name
			}
		}

		emailItems[i] = email.OrderItem{
			ServiceID: item.ServiceID,
			Name:      serviceName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	if err := h.emailService.SendOrderConfirmation(user.Email, e.OrderID, e.Total, emailItems); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", user.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %s", user.Email, e.OrderID)
	return nil
}

func (h *Handler) handleOrderAdvanced(event store.Event) error {
	var e order.OrderAdvanced
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderAdvanced event: %v", err)
		return err
	}

	// Only the move into ready is customer-facing
	if e.To != order.StatusReady {
		return nil
	}

	log.Printf("[Notifier] Processing ready notification for order %s", e.OrderID)

	o, ok := h.lookupOrder(e.OrderID)
	if !ok {
		return nil
	}
	user, ok := h.lookupUser(o.CustomerID)
	if !ok {
		return nil
	}

	shopName := ""
	if shopData, exists := h.readStore.Get("shops", o.ShopID); exists {
		if shop, ok := shopData.(*readmodel.ShopReadModel); ok {
			shopName = shop.Name
		}
	}

	if err := h.emailService.SendPickupReady(user.Email, e.OrderID, shopName, e.PickupToken); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", user.Email, err)
		return err
	}

	log.Printf("[Notifier] Pickup notification sent to %s for order %s", user.Email, e.OrderID)
	return nil
}

func (h *Handler) handleReturnDecided(event store.Event) error {
	var e order.ReturnDecided
	if err := json.Unmarshal(event.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal ReturnDecided event: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing return decision for order %s: %s", e.OrderID, e.Decision)

	o, ok := h.lookupOrder(e.OrderID)
	if !ok {
		return nil
	}
	user, ok := h.lookupUser(o.CustomerID)
	if !ok {
		return nil
	}

	if err := h.emailService.SendReturnDecision(user.Email, e.OrderID, string(e.Decision), e.ReviewNotes); err != nil {
		log.Printf("[Notifier] Failed to send email to %s: %v", user.Email, err)
		return err
	}

	log.Printf("[Notifier] Return decision email sent to %s for order %s", user.Email, e.OrderID)
	return nil
}

// lookupUser fetches a user from the read store. Missing or malformed
// entries are logged and skipped so a bad record never wedges the consumer.
func (h *Handler) lookupUser(userID string) (*readmodel.UserReadModel, bool) {
	userData, exists := h.readStore.Get("users", userID)
	if !exists {
		log.Printf("[Notifier] User not found: %s", userID)
		return nil, false
	}
	user, ok := userData.(*readmodel.UserReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid user data type for user: %s", userID)
		return nil, false
	}
	return user, true
}

func (h *Handler) lookupOrder(orderID string) (*readmodel.OrderReadModel, bool) {
	orderData, exists := h.readStore.Get("orders", orderID)
	if !exists {
		log.Printf("[Notifier] Order not found: %s", orderID)
		return nil, false
	}
	o, ok := orderData.(*readmodel.OrderReadModel)
	if !ok {
		log.Printf("[Notifier] Invalid order data type for order: %s", orderID)
		return nil, false
	}
	return o, true
}
