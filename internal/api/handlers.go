package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/printshop/internal/api/middleware"
	"github.com/example/printshop/internal/command"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/pickup"
	"github.com/example/printshop/internal/query"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
	}
}

// Shop Handlers

func (h *Handlers) CreateShop(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateShop
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.OwnerID = getUserID(r)

	shop, err := h.cmdHandler.CreateShop(r.Context(), cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, shop)
}

func (h *Handlers) GetShops(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListShops())
}

func (h *Handlers) GetShop(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/shops/")
	shop, ok := h.queryHandler.GetShop(id)
	if !ok {
		http.Error(w, "Shop not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, shop)
}

func (h *Handlers) UpdateShop(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/shops/")

	var cmd command.UpdateShop
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.ShopID = id

	if err := h.cmdHandler.UpdateShop(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Shop updated"})
}

func (h *Handlers) SetShopTimeEstimates(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/shops/"), "/estimates")

	var cmd command.SetShopTimeEstimates
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.ShopID = id

	if err := h.cmdHandler.SetShopTimeEstimates(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Estimates updated"})
}

func (h *Handlers) SetShopReturnPolicy(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/shops/"), "/return-policy")

	var cmd command.SetShopReturnPolicy
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.ShopID = id

	if err := h.cmdHandler.SetShopReturnPolicy(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Return policy updated"})
}

// Service Handlers

func (h *Handlers) CreateService(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateService
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	svc, err := h.cmdHandler.CreateService(r.Context(), cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, svc)
}

func (h *Handlers) GetServices(w http.ResponseWriter, r *http.Request) {
	if shopID := r.URL.Query().Get("shopId"); shopID != "" {
		respondJSON(w, http.StatusOK, h.queryHandler.ListServicesByShop(shopID))
		return
	}
	respondJSON(w, http.StatusOK, h.queryHandler.ListServices())
}

func (h *Handlers) GetService(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/services/")
	svc, ok := h.queryHandler.GetService(id)
	if !ok {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, svc)
}

func (h *Handlers) UpdateService(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/services/")

	var cmd command.UpdateService
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.ServiceID = id

	if err := h.cmdHandler.UpdateService(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Service updated"})
}

func (h *Handlers) DeleteService(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/services/")

	if err := h.cmdHandler.DeleteService(r.Context(), command.DeleteService{ServiceID: id}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Service deleted"})
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.GetCart(getUserID(r)))
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceID string            `json:"service_id"`
		Quantity  int               `json:"quantity"`
		Options   map[string]string `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cmd := command.AddToCart{
		CustomerID: getUserID(r),
		ServiceID:  req.ServiceID,
		Quantity:   req.Quantity,
		Options:    req.Options,
	}
	if err := h.cmdHandler.AddToCart(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveFromCart{
		CustomerID: getUserID(r),
		ServiceID:  extractPathParam(r.URL.Path, "/cart/items/"),
	}
	if err := h.cmdHandler.RemoveFromCart(r.Context(), cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopID string `json:"shop_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.cmdHandler.PlaceOrder(r.Context(), command.PlaceOrder{
		CustomerID: getUserID(r),
		ShopID:     req.ShopID,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListOrdersByCustomer(getUserID(r)))
}

func (h *Handlers) GetShopOrders(w http.ResponseWriter, r *http.Request) {
	shopID := extractPathParam(r.URL.Path, "/orders/shop/")
	tab := r.URL.Query().Get("tab")
	respondJSON(w, http.StatusOK, h.queryHandler.ListOrdersByShop(shopID, tab))
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")

	o, ok := h.queryHandler.GetOrder(id)
	if !ok {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if !h.canSeeOrder(r, o.CustomerID, o.ShopID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// UpdateOrderStatus moves an order to the requested status. Only the
// single next production step is accepted, or cancellation from
// pending; anything else is rejected without touching the order.
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/status")

	var req struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var (
		updated *order.Order
		err     error
	)
	if order.Status(req.Status) == order.StatusCancelled {
		updated, err = h.cmdHandler.CancelOrder(r.Context(), command.CancelOrder{OrderID: id, Reason: req.Reason})
	} else {
		updated, err = h.advanceTo(r, id, order.Status(req.Status))
	}
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			status = http.StatusNotFound
		case errors.Is(err, order.ErrInvalidTransition):
			status = http.StatusConflict
		case errors.Is(err, command.ErrTransitionInFlight):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *Handlers) advanceTo(r *http.Request, orderID string, target order.Status) (*order.Order, error) {
	return h.cmdHandler.AdvanceOrder(r.Context(), command.AdvanceOrder{
		OrderID: orderID,
		Target:  string(target),
	})
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/cancel")

	o, ok := h.queryHandler.GetOrder(id)
	if !ok {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if o.CustomerID != getUserID(r) && !isOwner(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	cancelled, err := h.cmdHandler.CancelOrder(r.Context(), command.CancelOrder{OrderID: id, Reason: req.Reason})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, order.ErrInvalidTransition) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	respondJSON(w, http.StatusOK, cancelled)
}

// Return Handlers

func (h *Handlers) SubmitReturnRequest(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/return-request")

	var req struct {
		Reason   string   `json:"reason"`
		Details  string   `json:"details"`
		Evidence []string `json:"evidence"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.cmdHandler.SubmitReturnRequest(r.Context(), command.SubmitReturnRequest{
		OrderID:  id,
		Reason:   req.Reason,
		Details:  req.Details,
		Evidence: req.Evidence,
	})
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			status = http.StatusNotFound
		case errors.Is(err, order.ErrNotEligible), errors.Is(err, order.ErrAlreadyPending), errors.Is(err, order.ErrAlreadyDecided):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *Handlers) DecideReturnRequest(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/return-request")

	var req struct {
		Status      string `json:"status"`
		ReviewNotes string `json:"review_notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.cmdHandler.DecideReturnRequest(r.Context(), command.DecideReturnRequest{
		OrderID:     id,
		Decision:    req.Status,
		ReviewNotes: req.ReviewNotes,
	})
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, order.ErrNoReturnRequest):
			status = http.StatusNotFound
		case errors.Is(err, order.ErrAlreadyDecided):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Pickup Handlers

func (h *Handlers) ConfirmPickup(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/pickup/"), "/confirm")

	o, err := h.cmdHandler.ConfirmPickup(r.Context(), command.ConfirmPickup{Token: token})
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, pickup.ErrTokenNotFound):
			status = http.StatusNotFound
		case errors.Is(err, pickup.ErrAlreadyConsumed):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Review Handlers

func (h *Handlers) GetShopReviews(w http.ResponseWriter, r *http.Request) {
	shopID := extractPathParam(r.URL.Path, "/reviews/shop/")
	respondJSON(w, http.StatusOK, h.queryHandler.ListReviewsByShop(shopID))
}

func (h *Handlers) PostReview(w http.ResponseWriter, r *http.Request) {
	shopID := extractPathParam(r.URL.Path, "/reviews/shop/")

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	posted, err := h.cmdHandler.PostReview(r.Context(), command.PostReview{
		ShopID:   shopID,
		AuthorID: getUserID(r),
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, posted)
}

func (h *Handlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/reviews/")

	if err := h.cmdHandler.DeleteReview(r.Context(), command.DeleteReview{
		ReviewID: id,
		AuthorID: getUserID(r),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Design Handlers

func (h *Handlers) SaveDesign(w http.ResponseWriter, r *http.Request) {
	var cmd command.SaveDesign
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cmd.OwnerID = getUserID(r)

	saved, err := h.cmdHandler.SaveDesign(r.Context(), cmd)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (h *Handlers) GetMyDesigns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.queryHandler.ListDesignsByOwner(getUserID(r)))
}

func (h *Handlers) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/designs/")

	if err := h.cmdHandler.DeleteDesign(r.Context(), command.DeleteDesign{
		DesignID: id,
		OwnerID:  getUserID(r),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Inventory Handlers

func (h *Handlers) GetInventory(w http.ResponseWriter, r *http.Request) {
	serviceID := extractPathParam(r.URL.Path, "/inventory/")
	inv, ok := h.queryHandler.GetInventory(serviceID)
	if !ok {
		http.Error(w, "Inventory not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// Helper functions

func (h *Handlers) canSeeOrder(r *http.Request, customerID, shopID string) bool {
	userID := getUserID(r)
	if customerID == userID {
		return true
	}
	if !isOwner(r) {
		return false
	}
	shop, ok := h.queryHandler.GetShop(shopID)
	return ok && shop.OwnerID == userID
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// getUserID extracts user ID from JWT context or falls back to X-User-ID header
func getUserID(r *http.Request) string {
	if userID := middleware.GetUserID(r.Context()); userID != "" {
		return userID
	}
	if userID := r.Header.Get("X-User-ID"); userID != "" {
		return userID
	}
	return "default-user"
}

// isOwner checks if the current user has the shop owner role
func isOwner(r *http.Request) bool {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Role == "owner"
}
