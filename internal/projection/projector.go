package projection

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/conversation"
	"github.com/example/printshop/internal/domain/design"
	"github.com/example/printshop/internal/domain/inventory"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/domain/printservice"
	"github.com/example/printshop/internal/domain/review"
	"github.com/example/printshop/internal/domain/shop"
	"github.com/example/printshop/internal/domain/user"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/readmodel"
)

type Projector struct {
	readStore store.ReadStoreInterface
}

func NewProjector(readStore store.ReadStoreInterface) *Projector {
	return &Projector{readStore: readStore}
}

func (p *Projector) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return err
	}

	log.Printf("[Projector] Received event: %s (aggregate: %s)", event.EventType, event.AggregateType)

	return p.Project(event)
}

// Project applies a single stored event to the read models
func (p *Projector) Project(event store.Event) error {
	switch event.AggregateType {
	case printservice.AggregateType:
		return p.handleServiceEvent(event)
	case cart.AggregateType:
		return p.handleCartEvent(event)
	case order.AggregateType:
		return p.handleOrderEvent(event)
	case inventory.AggregateType:
		return p.handleInventoryEvent(event)
	case shop.AggregateType:
		return p.handleShopEvent(event)
	case user.AggregateType:
		return p.handleUserEvent(event)
	case review.AggregateType:
		return p.handleReviewEvent(event)
	case design.AggregateType:
		return p.handleDesignEvent(event)
	case conversation.AggregateType:
		return p.handleConversationEvent(event)
	}

	return nil
}

func (p *Projector) handleServiceEvent(event store.Event) error {
	switch event.EventType {
	case printservice.EventServiceCreated:
		var e printservice.ServiceCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("services", e.ServiceID, &readmodel.ServiceReadModel{
			ID:          e.ServiceID,
			ShopID:      e.ShopID,
			Name:        e.Name,
			Description: e.Description,
			ProductType: e.ProductType,
			Price:       e.Price,
			Options:     e.Options,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.CreatedAt,
		})

	case printservice.EventServiceUpdated:
		var e printservice.ServiceUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("services", e.ServiceID, func(current any) any {
			svc := current.(*readmodel.ServiceReadModel)
			svc.Name = e.Name
			svc.Description = e.Description
			svc.Price = e.Price
			svc.Options = e.Options
			svc.UpdatedAt = e.UpdatedAt
			return svc
		})

	case printservice.EventServiceImageUpdated:
		var e printservice.ServiceImageUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("services", e.ServiceID, func(current any) any {
			svc := current.(*readmodel.ServiceReadModel)
			svc.ImageURL = e.ImageURL
			svc.UpdatedAt = e.UpdatedAt
			return svc
		})

	case printservice.EventServiceDeleted:
		var e printservice.ServiceDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Delete("services", e.ServiceID)
	}

	return nil
}

func (p *Projector) handleCartEvent(event store.Event) error {
	switch event.EventType {
	case cart.EventItemAdded:
		var e cart.ItemAddedToCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}

		serviceName := ""
		if svc, ok := p.readStore.Get("services", e.ServiceID); ok {
			serviceName = svc.(*readmodel.ServiceReadModel).Name
		}

		current, ok := p.readStore.Get("carts", e.CartID)
		var c *readmodel.CartReadModel
		if ok {
			c = current.(*readmodel.CartReadModel)
		} else {
			c = &readmodel.CartReadModel{
				ID:         e.CartID,
				CustomerID: e.CustomerID,
				Items:      []readmodel.CartItemReadModel{},
			}
		}

		merged := false
		for i := range c.Items {
			if c.Items[i].ServiceID == e.ServiceID && optionsEqual(c.Items[i].Options, e.Options) {
				c.Items[i].Quantity += e.Quantity
				merged = true
				break
			}
		}
		if !merged {
			c.Items = append(c.Items, readmodel.CartItemReadModel{
				ServiceID: e.ServiceID,
				Name:      serviceName,
				Quantity:  e.Quantity,
				UnitPrice: e.UnitPrice,
				Options:   e.Options,
			})
		}
		c.Total = cartTotal(c.Items)
		p.readStore.Set("carts", e.CartID, c)

	case cart.EventItemRemoved:
		var e cart.ItemRemovedFromCart
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("carts", e.CartID, func(current any) any {
			c := current.(*readmodel.CartReadModel)
			items := c.Items[:0]
			for _, item := range c.Items {
				if item.ServiceID != e.ServiceID {
					items = append(items, item)
				}
			}
			c.Items = items
			c.Total = cartTotal(c.Items)
			return c
		})

	case cart.EventCartCleared:
		var e cart.CartCleared
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Delete("carts", e.CartID)
	}

	return nil
}

func cartTotal(items []readmodel.CartItemReadModel) int {
	total := 0
	for _, item := range items {
		total += item.UnitPrice * item.Quantity
	}
	return total
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

func (p *Projector) handleOrderEvent(event store.Event) error {
	switch event.EventType {
	case order.EventOrderPlaced:
		var e order.OrderPlaced
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}

		items := make([]readmodel.OrderItemReadModel, 0, len(e.Items))
		for _, item := range e.Items {
			items = append(items, readmodel.OrderItemReadModel{
				ServiceID: item.ServiceID,
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Total:     item.Total,
				Options:   item.Options,
			})
		}
		estimates := make(map[string]float64, len(e.TimeEstimates))
		for status, hours := range e.TimeEstimates {
			estimates[string(status)] = hours
		}

		p.readStore.Set("orders", e.OrderID, &readmodel.OrderReadModel{
			ID:            e.OrderID,
			CustomerID:    e.CustomerID,
			ShopID:        e.ShopID,
			Items:         items,
			Total:         e.Total,
			Status:        string(order.StatusPending),
			PaymentStatus: string(order.PaymentUnpaid),
			StageTimestamps: map[string]time.Time{
				string(order.StatusPending): e.PlacedAt,
			},
			TimeEstimates: estimates,
			CreatedAt:     e.PlacedAt,
			UpdatedAt:     e.PlacedAt,
		})

	case order.EventOrderAdvanced:
		var e order.OrderAdvanced
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("orders", e.OrderID, func(current any) any {
			o := current.(*readmodel.OrderReadModel)
			o.Status = string(e.To)
			// Only ready carries a token; every other stage clears it
			o.PickupToken = e.PickupToken
			if e.PaymentStatus != "" {
				o.PaymentStatus = string(e.PaymentStatus)
			}
			if o.StageTimestamps == nil {
				o.StageTimestamps = make(map[string]time.Time)
			}
			if _, seen := o.StageTimestamps[string(e.To)]; !seen {
				o.StageTimestamps[string(e.To)] = e.AdvancedAt
			}
			o.UpdatedAt = e.AdvancedAt
			return o
		})

	case order.EventOrderCancelled:
		var e order.OrderCancelled
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("orders", e.OrderID, func(current any) any {
			o := current.(*readmodel.OrderReadModel)
			o.Status = string(order.StatusCancelled)
			o.PickupToken = ""
			if o.StageTimestamps == nil {
				o.StageTimestamps = make(map[string]time.Time)
			}
			o.StageTimestamps[string(order.StatusCancelled)] = e.CancelledAt
			o.UpdatedAt = e.CancelledAt
			return o
		})

	case order.EventReturnRequested:
		var e order.ReturnRequested
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("orders", e.OrderID, func(current any) any {
			o := current.(*readmodel.OrderReadModel)
			o.ReturnRequest = &readmodel.ReturnRequestReadModel{
				Reason:      e.Reason,
				Details:     e.Details,
				Status:      string(order.ReturnPending),
				SubmittedAt: e.SubmittedAt,
				Evidence:    e.Evidence,
			}
			o.UpdatedAt = e.SubmittedAt
			return o
		})

	case order.EventReturnDecided:
		var e order.ReturnDecided
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("orders", e.OrderID, func(current any) any {
			o := current.(*readmodel.OrderReadModel)
			if o.ReturnRequest != nil {
				o.ReturnRequest.Status = string(e.Decision)
				o.ReturnRequest.ReviewNotes = e.ReviewNotes
				reviewedAt := e.ReviewedAt
				o.ReturnRequest.ReviewedAt = &reviewedAt
			}
			if e.PaymentStatus != "" {
				o.PaymentStatus = string(e.PaymentStatus)
			}
			o.UpdatedAt = e.ReviewedAt
			return o
		})
	}

	return nil
}

func (p *Projector) handleInventoryEvent(event store.Event) error {
	switch event.EventType {
	case inventory.EventStockAdded:
		var e inventory.StockAdded
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		if !p.readStore.Update("inventory", e.ServiceID, func(current any) any {
			inv := current.(*readmodel.InventoryReadModel)
			inv.TotalStock += e.Quantity
			inv.AvailableStock += e.Quantity
			return inv
		}) {
			p.readStore.Set("inventory", e.ServiceID, &readmodel.InventoryReadModel{
				ServiceID:      e.ServiceID,
				TotalStock:     e.Quantity,
				AvailableStock: e.Quantity,
			})
		}

	case inventory.EventStockReserved:
		var e inventory.StockReserved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("inventory", e.ServiceID, func(current any) any {
			inv := current.(*readmodel.InventoryReadModel)
			inv.ReservedStock += e.Quantity
			inv.AvailableStock -= e.Quantity
			return inv
		})

	case inventory.EventStockReleased:
		var e inventory.StockReleased
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("inventory", e.ServiceID, func(current any) any {
			inv := current.(*readmodel.InventoryReadModel)
			inv.ReservedStock -= e.Quantity
			inv.AvailableStock += e.Quantity
			return inv
		})

	case inventory.EventStockDeducted:
		var e inventory.StockDeducted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("inventory", e.ServiceID, func(current any) any {
			inv := current.(*readmodel.InventoryReadModel)
			inv.TotalStock -= e.Quantity
			inv.ReservedStock -= e.Quantity
			return inv
		})
	}

	return nil
}

func (p *Projector) handleShopEvent(event store.Event) error {
	switch event.EventType {
	case shop.EventShopCreated:
		var e shop.ShopCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("shops", e.ShopID, &readmodel.ShopReadModel{
			ID:          e.ShopID,
			OwnerID:     e.OwnerID,
			Name:        e.Name,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
			UpdatedAt:   e.CreatedAt,
		})

	case shop.EventShopUpdated:
		var e shop.ShopUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("shops", e.ShopID, func(current any) any {
			s := current.(*readmodel.ShopReadModel)
			s.Name = e.Name
			s.Description = e.Description
			s.UpdatedAt = e.UpdatedAt
			return s
		})

	case shop.EventTimeEstimatesSet:
		var e shop.TimeEstimatesSet
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("shops", e.ShopID, func(current any) any {
			s := current.(*readmodel.ShopReadModel)
			s.TimeEstimates = e.Estimates
			s.UpdatedAt = e.SetAt
			return s
		})

	case shop.EventReturnPolicySet:
		var e shop.ReturnPolicySet
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("shops", e.ShopID, func(current any) any {
			s := current.(*readmodel.ShopReadModel)
			s.ReturnEligibleStatuses = e.EligibleStatuses
			s.UpdatedAt = e.SetAt
			return s
		})
	}

	return nil
}

func (p *Projector) handleUserEvent(event store.Event) error {
	switch event.EventType {
	case user.EventUserCreated:
		var e user.UserCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("users", e.UserID, &readmodel.UserReadModel{
			ID:           e.UserID,
			Email:        e.Email,
			PasswordHash: e.PasswordHash,
			Name:         e.Name,
			Role:         e.Role,
			IsActive:     true,
			CreatedAt:    e.CreatedAt,
			UpdatedAt:    e.CreatedAt,
		})

	case user.EventUserUpdated:
		var e user.UserUpdated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.Name = e.Name
			u.UpdatedAt = e.UpdatedAt
			return u
		})

	case user.EventUserPasswordChanged:
		var e user.UserPasswordChanged
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.PasswordHash = e.PasswordHash
			u.UpdatedAt = e.ChangedAt
			return u
		})

	case user.EventUserDeactivated:
		var e user.UserDeactivated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.IsActive = false
			return u
		})

	case user.EventUserActivated:
		var e user.UserActivated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Update("users", e.UserID, func(current any) any {
			u := current.(*readmodel.UserReadModel)
			u.IsActive = true
			return u
		})
	}

	return nil
}

func (p *Projector) handleReviewEvent(event store.Event) error {
	switch event.EventType {
	case review.EventReviewPosted:
		var e review.ReviewPosted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		authorName := ""
		if u, ok := p.readStore.Get("users", e.AuthorID); ok {
			authorName = u.(*readmodel.UserReadModel).Name
		}
		p.readStore.Set("reviews", e.ReviewID, &readmodel.ReviewReadModel{
			ID:         e.ReviewID,
			ShopID:     e.ShopID,
			AuthorID:   e.AuthorID,
			AuthorName: authorName,
			Rating:     e.Rating,
			Comment:    e.Comment,
			CreatedAt:  e.PostedAt,
		})

	case review.EventReviewDeleted:
		var e review.ReviewDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Delete("reviews", e.ReviewID)
	}

	return nil
}

func (p *Projector) handleDesignEvent(event store.Event) error {
	switch event.EventType {
	case design.EventDesignSaved:
		var e design.DesignSaved
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("designs", e.DesignID, &readmodel.DesignReadModel{
			ID:           e.DesignID,
			OwnerID:      e.OwnerID,
			Name:         e.Name,
			FileURL:      e.FileURL,
			ThumbnailURL: e.ThumbnailURL,
			Customization: readmodel.DesignCustomizationReadModel{
				ProductType: e.ProductType,
				X:           e.Customization.X,
				Y:           e.Customization.Y,
				Scale:       e.Customization.Scale,
			},
			CreatedAt: e.SavedAt,
		})

	case design.EventDesignDeleted:
		var e design.DesignDeleted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Delete("designs", e.DesignID)
	}

	return nil
}

func (p *Projector) handleConversationEvent(event store.Event) error {
	switch event.EventType {
	case conversation.EventConversationStarted:
		var e conversation.ConversationStarted
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("conversations", e.ConversationID, &readmodel.ConversationReadModel{
			ID:            e.ConversationID,
			CustomerID:    e.CustomerID,
			OwnerID:       e.OwnerID,
			LastMessageAt: e.StartedAt,
			CreatedAt:     e.StartedAt,
		})

	case conversation.EventMessageSent:
		var e conversation.MessageSent
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		p.readStore.Set("messages", e.MessageID, &readmodel.MessageReadModel{
			ID:             e.MessageID,
			ConversationID: e.ConversationID,
			SenderID:       e.SenderID,
			ReceiverID:     e.ReceiverID,
			Text:           e.Text,
			FileName:       e.FileName,
			FileURL:        e.FileURL,
			CreatedAt:      e.SentAt,
		})
		p.readStore.Update("conversations", e.ConversationID, func(current any) any {
			c := current.(*readmodel.ConversationReadModel)
			c.LastMessageAt = e.SentAt
			return c
		})
	}

	return nil
}
