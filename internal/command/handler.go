package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/design"
	"github.com/example/printshop/internal/domain/inventory"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/domain/printservice"
	"github.com/example/printshop/internal/domain/review"
	"github.com/example/printshop/internal/domain/shop"
	"github.com/example/printshop/internal/infrastructure/store"
	"github.com/example/printshop/internal/pickup"
	"github.com/example/printshop/internal/readmodel"
)

var ErrTransitionInFlight = errors.New("a status transition for this order is already in flight")

type Handler struct {
	shopSvc      *shop.Service
	serviceSvc   *printservice.Service
	cartSvc      *cart.Service
	orderSvc     *order.Service
	inventorySvc *inventory.Service
	reviewSvc    *review.Service
	designSvc    *design.Service
	pickupFlow   *pickup.Flow
	readStore    store.ReadStoreInterface

	mu       sync.Mutex
	inflight map[string]bool
}

func NewHandler(
	shopSvc *shop.Service,
	serviceSvc *printservice.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	inventorySvc *inventory.Service,
	reviewSvc *review.Service,
	designSvc *design.Service,
	pickupFlow *pickup.Flow,
	readStore store.ReadStoreInterface,
) *Handler {
	return &Handler{
		shopSvc:      shopSvc,
		serviceSvc:   serviceSvc,
		cartSvc:      cartSvc,
		orderSvc:     orderSvc,
		inventorySvc: inventorySvc,
		reviewSvc:    reviewSvc,
		designSvc:    designSvc,
		pickupFlow:   pickupFlow,
		readStore:    readStore,
		inflight:     make(map[string]bool),
	}
}

// CreateShop registers a new print shop profile
func (h *Handler) CreateShop(ctx context.Context, cmd CreateShop) (*shop.Shop, error) {
	return h.shopSvc.Create(ctx, cmd.OwnerID, cmd.Name, cmd.Description)
}

// UpdateShop updates a shop profile
func (h *Handler) UpdateShop(ctx context.Context, cmd UpdateShop) error {
	return h.shopSvc.Update(ctx, cmd.ShopID, cmd.Name, cmd.Description)
}

// SetShopTimeEstimates configures per-stage production estimates in hours
func (h *Handler) SetShopTimeEstimates(ctx context.Context, cmd SetShopTimeEstimates) error {
	return h.shopSvc.SetTimeEstimates(ctx, cmd.ShopID, cmd.Estimates)
}

// SetShopReturnPolicy configures which order statuses accept return requests
func (h *Handler) SetShopReturnPolicy(ctx context.Context, cmd SetShopReturnPolicy) error {
	return h.shopSvc.SetReturnPolicy(ctx, cmd.ShopID, cmd.EligibleStatuses)
}

// CreateService creates a print service and seeds its material stock
// (async projection - read store updates via the event bus)
func (h *Handler) CreateService(ctx context.Context, cmd CreateService) (*printservice.PrintService, error) {
	svc, err := h.serviceSvc.Create(ctx, cmd.ShopID, cmd.Name, cmd.Description, cmd.ProductType, cmd.Price, cmd.Options)
	if err != nil {
		return nil, err
	}

	if cmd.Stock > 0 {
		if err := h.inventorySvc.AddStock(ctx, svc.ID, cmd.Stock); err != nil {
			return nil, err
		}
	}

	return svc, nil
}

// UpdateService updates a print service
func (h *Handler) UpdateService(ctx context.Context, cmd UpdateService) error {
	return h.serviceSvc.Update(ctx, cmd.ServiceID, cmd.Name, cmd.Description, cmd.Price, cmd.Options)
}

// UpdateServiceImage replaces the catalog image of a service
func (h *Handler) UpdateServiceImage(ctx context.Context, cmd UpdateServiceImage) error {
	return h.serviceSvc.UpdateImage(ctx, cmd.ServiceID, cmd.ImageURL)
}

// DeleteService removes a print service from the catalog
func (h *Handler) DeleteService(ctx context.Context, cmd DeleteService) error {
	return h.serviceSvc.Delete(ctx, cmd.ServiceID)
}

// AddToCart adds a service line to the customer's cart
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) error {
	// Price comes from the read store so the cart cannot be placed at
	// a client-supplied price
	raw, ok := h.readStore.Get("services", cmd.ServiceID)
	if !ok {
		return printservice.ErrServiceNotFound
	}
	svc := raw.(*readmodel.ServiceReadModel)

	return h.cartSvc.AddItem(ctx, cmd.CustomerID, cmd.ServiceID, cmd.Quantity, svc.Price, cmd.Options)
}

// RemoveFromCart removes a service line from the cart
func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	return h.cartSvc.RemoveItem(ctx, cmd.CustomerID, cmd.ServiceID)
}

// ClearCart clears all items from the cart
func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	return h.cartSvc.Clear(ctx, cmd.CustomerID)
}

// PlaceOrder converts the customer's cart into an order against one
// shop: it snapshots the shop's current time estimates onto the order,
// reserves material stock per line, and clears the cart.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	cartID := cart.GetCartID(cmd.CustomerID)
	raw, ok := h.readStore.Get("carts", cartID)
	if !ok || len(raw.(*readmodel.CartReadModel).Items) == 0 {
		return nil, order.ErrEmptyOrder
	}
	cartModel := raw.(*readmodel.CartReadModel)

	var items []order.OrderItem
	for _, item := range cartModel.Items {
		items = append(items, order.OrderItem{
			ServiceID: item.ServiceID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.UnitPrice * item.Quantity,
			Options:   item.Options,
		})
	}

	// Estimates are copied at placement time; later shop edits must not
	// change what the customer was shown
	estimates := h.shopEstimates(cmd.ShopID)

	o, err := h.orderSvc.Place(ctx, cmd.CustomerID, cmd.ShopID, items, estimates)
	if err != nil {
		return nil, err
	}

	// Reserve stock per line (emits StockReserved events). If a line
	// cannot be reserved, undo the reservations made so far and cancel
	// the order so the customer is not left with a half-backed order.
	for i, item := range items {
		if err := h.inventorySvc.Reserve(ctx, item.ServiceID, o.ID, item.Quantity); err != nil {
			for _, reserved := range items[:i] {
				if relErr := h.inventorySvc.Release(ctx, reserved.ServiceID, o.ID, reserved.Quantity); relErr != nil {
					log.Printf("[Command] Failed to release stock for service %s: %v", reserved.ServiceID, relErr)
				}
			}
			if _, cancelErr := h.orderSvc.Cancel(ctx, o.ID, "insufficient stock"); cancelErr != nil {
				log.Printf("[Command] Failed to cancel order %s: %v", o.ID, cancelErr)
			}
			return nil, err
		}
	}

	// Clear cart (emits CartCleared event)
	if err := h.cartSvc.Clear(ctx, cmd.CustomerID); err != nil {
		return nil, err
	}

	return o, nil
}

// AdvanceOrder moves an order one step forward. Only one transition per
// order may be in flight at a time; a second call while the first is
// still running fails fast instead of double-stepping the order.
func (h *Handler) AdvanceOrder(ctx context.Context, cmd AdvanceOrder) (*order.Order, error) {
	if err := h.acquireOrder(cmd.OrderID); err != nil {
		return nil, err
	}
	defer h.releaseOrder(cmd.OrderID)

	prev, err := h.orderSvc.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if cmd.Target != "" {
		next, ok := prev.NextStatus()
		if !ok || next != order.Status(cmd.Target) {
			return nil, fmt.Errorf("%w: cannot move from %s to %s", order.ErrInvalidTransition, prev.Status, cmd.Target)
		}
	}

	o, err := h.orderSvc.Advance(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if prev.Status == order.StatusReady && prev.PickupToken != "" {
		h.pickupFlow.Invalidate(prev.PickupToken)
	}
	if o.Status == order.StatusReady {
		h.pickupFlow.Track(o.PickupToken, o.ID)
	}
	if o.Status == order.StatusCompleted {
		// Reservations become consumption once the customer has the goods
		for _, item := range o.Items {
			if err := h.inventorySvc.Deduct(ctx, item.ServiceID, o.ID, item.Quantity); err != nil {
				log.Printf("[Command] Failed to deduct stock for service %s: %v", item.ServiceID, err)
			}
		}
	}

	return o, nil
}

// CancelOrder cancels a pending order and releases its reservations
func (h *Handler) CancelOrder(ctx context.Context, cmd CancelOrder) (*order.Order, error) {
	if err := h.acquireOrder(cmd.OrderID); err != nil {
		return nil, err
	}
	defer h.releaseOrder(cmd.OrderID)

	o, err := h.orderSvc.Cancel(ctx, cmd.OrderID, cmd.Reason)
	if err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		if err := h.inventorySvc.Release(ctx, item.ServiceID, o.ID, item.Quantity); err != nil {
			log.Printf("[Command] Failed to release stock for service %s: %v", item.ServiceID, err)
		}
	}

	return o, nil
}

// ConfirmPickup redeems a pickup token, completing the order
func (h *Handler) ConfirmPickup(ctx context.Context, cmd ConfirmPickup) (*order.Order, error) {
	o, err := h.pickupFlow.Confirm(ctx, cmd.Token)
	if err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		if err := h.inventorySvc.Deduct(ctx, item.ServiceID, o.ID, item.Quantity); err != nil {
			log.Printf("[Command] Failed to deduct stock for service %s: %v", item.ServiceID, err)
		}
	}

	return o, nil
}

// SubmitReturnRequest opens a return request against an order, using
// the shop's configured eligibility policy
func (h *Handler) SubmitReturnRequest(ctx context.Context, cmd SubmitReturnRequest) (*order.Order, error) {
	o, err := h.orderSvc.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	return h.orderSvc.SubmitReturnRequest(ctx, cmd.OrderID, cmd.Reason, cmd.Details, cmd.Evidence, h.returnPolicy(o.ShopID))
}

// DecideReturnRequest records the shop's verdict on a return request
func (h *Handler) DecideReturnRequest(ctx context.Context, cmd DecideReturnRequest) (*order.Order, error) {
	return h.orderSvc.DecideReturnRequest(ctx, cmd.OrderID, order.ReturnStatus(cmd.Decision), cmd.ReviewNotes)
}

// PostReview publishes a review for a shop
func (h *Handler) PostReview(ctx context.Context, cmd PostReview) (*review.Review, error) {
	return h.reviewSvc.Post(ctx, cmd.ShopID, cmd.AuthorID, cmd.Rating, cmd.Comment)
}

// DeleteReview removes a review
func (h *Handler) DeleteReview(ctx context.Context, cmd DeleteReview) error {
	return h.reviewSvc.Delete(ctx, cmd.ReviewID, cmd.AuthorID)
}

// SaveDesign stores a customer design with its decal placement
func (h *Handler) SaveDesign(ctx context.Context, cmd SaveDesign) (*design.Design, error) {
	return h.designSvc.Save(ctx, cmd.OwnerID, cmd.Name, cmd.ProductType, cmd.FileURL, cmd.ThumbnailURL,
		design.Customization{X: cmd.X, Y: cmd.Y, Scale: cmd.Scale})
}

// UpdateDesign overwrites a design's artwork and placement
func (h *Handler) UpdateDesign(ctx context.Context, cmd UpdateDesign) error {
	return h.designSvc.Update(ctx, cmd.DesignID, cmd.OwnerID, cmd.Name, cmd.FileURL, cmd.ThumbnailURL,
		design.Customization{X: cmd.X, Y: cmd.Y, Scale: cmd.Scale})
}

// DeleteDesign removes a design
func (h *Handler) DeleteDesign(ctx context.Context, cmd DeleteDesign) error {
	return h.designSvc.Delete(ctx, cmd.DesignID, cmd.OwnerID)
}

func (h *Handler) acquireOrder(orderID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.inflight[orderID] {
		return ErrTransitionInFlight
	}
	h.inflight[orderID] = true
	return nil
}

func (h *Handler) releaseOrder(orderID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inflight, orderID)
}

func (h *Handler) shopEstimates(shopID string) map[order.Status]float64 {
	raw, ok := h.readStore.Get("shops", shopID)
	if !ok {
		return nil
	}
	shopModel := raw.(*readmodel.ShopReadModel)
	if len(shopModel.TimeEstimates) == 0 {
		return nil
	}
	estimates := make(map[order.Status]float64, len(shopModel.TimeEstimates))
	for stage, hours := range shopModel.TimeEstimates {
		estimates[order.Status(stage)] = hours
	}
	return estimates
}

func (h *Handler) returnPolicy(shopID string) []order.Status {
	raw, ok := h.readStore.Get("shops", shopID)
	if !ok {
		return nil
	}
	shopModel := raw.(*readmodel.ShopReadModel)
	eligible := make([]order.Status, 0, len(shopModel.ReturnEligibleStatuses))
	for _, st := range shopModel.ReturnEligibleStatuses {
		eligible = append(eligible, order.Status(st))
	}
	return eligible
}
