package query

import (
	"context"
	"sort"
	"strings"

	"github.com/example/printshop/internal/chat"
	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/readmodel"
)

// Order list tabs as the storefront shows them
const (
	TabActive    = "active"
	TabReady     = "ready"
	TabCompleted = "completed"
	TabCancelled = "cancelled"
	TabReturns   = "returns"
)

type Handler struct {
	readStore store.ReadStoreInterface
}

func NewHandler(readStore store.ReadStoreInterface) *Handler {
	return &Handler{readStore: readStore}
}

// Services
func (h *Handler) GetService(id string) (*readmodel.ServiceReadModel, bool) {
	data, ok := h.readStore.Get("services", id)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.ServiceReadModel), true
}

func (h *Handler) ListServices() []*readmodel.ServiceReadModel {
	items := h.readStore.GetAll("services")
	services := make([]*readmodel.ServiceReadModel, 0, len(items))
	for _, item := range items {
		services = append(services, item.(*readmodel.ServiceReadModel))
	}
	return services
}

func (h *Handler) ListServicesByShop(shopID string) []*readmodel.ServiceReadModel {
	services := make([]*readmodel.ServiceReadModel, 0)
	for _, item := range h.readStore.GetAll("services") {
		s := item.(*readmodel.ServiceReadModel)
		if s.ShopID == shopID {
			services = append(services, s)
		}
	}
	return services
}

// Cart
func (h *Handler) GetCart(customerID string) *readmodel.CartReadModel {
	cartID := cart.GetCartID(customerID)
	data, ok := h.readStore.Get("carts", cartID)
	if !ok {
		return &readmodel.CartReadModel{
			ID:         cartID,
			CustomerID: customerID,
			Items:      []readmodel.CartItemReadModel{},
		}
	}
	return data.(*readmodel.CartReadModel)
}

// Orders
func (h *Handler) GetOrder(id string) (*readmodel.OrderReadModel, bool) {
	data, ok := h.readStore.Get("orders", id)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.OrderReadModel), true
}

func (h *Handler) ListOrdersByCustomer(customerID string) []*readmodel.OrderReadModel {
	orders := make([]*readmodel.OrderReadModel, 0)
	for _, item := range h.readStore.GetAll("orders") {
		o := item.(*readmodel.OrderReadModel)
		if o.CustomerID == customerID {
			orders = append(orders, o)
		}
	}
	sortOrders(orders)
	return orders
}

// ListOrdersByShop returns a shop's orders, optionally filtered by the
// storefront tab. An empty or unknown tab returns everything.
func (h *Handler) ListOrdersByShop(shopID, tab string) []*readmodel.OrderReadModel {
	orders := make([]*readmodel.OrderReadModel, 0)
	for _, item := range h.readStore.GetAll("orders") {
		o := item.(*readmodel.OrderReadModel)
		if o.ShopID != shopID {
			continue
		}
		if matchesTab(o, tab) {
			orders = append(orders, o)
		}
	}
	sortOrders(orders)
	return orders
}

func matchesTab(o *readmodel.OrderReadModel, tab string) bool {
	switch strings.ToLower(tab) {
	case TabActive:
		return o.Status == "pending" || o.Status == "processing"
	case TabReady:
		return o.Status == "ready"
	case TabCompleted:
		return o.Status == "completed"
	case TabCancelled:
		return o.Status == "cancelled"
	case TabReturns:
		return o.ReturnRequest != nil
	default:
		return true
	}
}

func sortOrders(orders []*readmodel.OrderReadModel) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// Shops
func (h *Handler) GetShop(id string) (*readmodel.ShopReadModel, bool) {
	data, ok := h.readStore.Get("shops", id)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.ShopReadModel), true
}

func (h *Handler) ListShops() []*readmodel.ShopReadModel {
	items := h.readStore.GetAll("shops")
	shops := make([]*readmodel.ShopReadModel, 0, len(items))
	for _, item := range items {
		shops = append(shops, item.(*readmodel.ShopReadModel))
	}
	return shops
}

// Inventory
func (h *Handler) GetInventory(serviceID string) (*readmodel.InventoryReadModel, bool) {
	data, ok := h.readStore.Get("inventory", serviceID)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.InventoryReadModel), true
}

// Reviews
func (h *Handler) ListReviewsByShop(shopID string) []*readmodel.ReviewReadModel {
	reviews := make([]*readmodel.ReviewReadModel, 0)
	for _, item := range h.readStore.GetAll("reviews") {
		r := item.(*readmodel.ReviewReadModel)
		if r.ShopID == shopID {
			reviews = append(reviews, r)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews
}

// Designs
func (h *Handler) ListDesignsByOwner(ownerID string) []*readmodel.DesignReadModel {
	designs := make([]*readmodel.DesignReadModel, 0)
	for _, item := range h.readStore.GetAll("designs") {
		d := item.(*readmodel.DesignReadModel)
		if d.OwnerID == ownerID {
			designs = append(designs, d)
		}
	}
	return designs
}

// Conversations
func (h *Handler) ListConversationsByParticipant(userID string) []*readmodel.ConversationReadModel {
	conversations := make([]*readmodel.ConversationReadModel, 0)
	for _, item := range h.readStore.GetAll("conversations") {
		c := item.(*readmodel.ConversationReadModel)
		if c.CustomerID == userID || c.OwnerID == userID {
			conversations = append(conversations, c)
		}
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})
	return conversations
}

// ConversationByPair resolves an existing conversation for a
// customer/shop-owner pair. Satisfies chat.ConversationFinder.
func (h *Handler) ConversationByPair(ctx context.Context, customerID, ownerID string) (string, bool) {
	for _, item := range h.readStore.GetAll("conversations") {
		c := item.(*readmodel.ConversationReadModel)
		if c.CustomerID == customerID && c.OwnerID == ownerID {
			return c.ID, true
		}
	}
	return "", false
}

// Messages returns a conversation's messages oldest first. Satisfies
// chat.HistoryLoader.
func (h *Handler) Messages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	messages := make([]chat.Message, 0)
	for _, item := range h.readStore.GetAll("messages") {
		m := item.(*readmodel.MessageReadModel)
		if m.ConversationID != conversationID {
			continue
		}
		messages = append(messages, chat.Message{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			ReceiverID:     m.ReceiverID,
			Text:           m.Text,
			FileName:       m.FileName,
			FileURL:        m.FileURL,
			CreatedAt:      m.CreatedAt,
		})
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// Users
func (h *Handler) GetUser(id string) (*readmodel.UserReadModel, bool) {
	data, ok := h.readStore.Get("users", id)
	if !ok {
		return nil, false
	}
	return data.(*readmodel.UserReadModel), true
}

func (h *Handler) GetUserByEmail(email string) (*readmodel.UserReadModel, bool) {
	for _, item := range h.readStore.GetAll("users") {
		u := item.(*readmodel.UserReadModel)
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return nil, false
}

// Pickup
func (h *Handler) GetOrderByPickupToken(token string) (*readmodel.OrderReadModel, bool) {
	if token == "" {
		return nil, false
	}
	for _, item := range h.readStore.GetAll("orders") {
		o := item.(*readmodel.OrderReadModel)
		if o.PickupToken == token {
			return o, true
		}
	}
	return nil, false
}

var _ chat.HistoryLoader = (*Handler)(nil)
var _ chat.ConversationFinder = (*Handler)(nil)
