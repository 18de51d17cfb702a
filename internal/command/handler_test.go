package command

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/printshop/internal/domain/cart"
	"github.com/example/printshop/internal/domain/design"
	"github.com/example/printshop/internal/domain/inventory"
	"github.com/example/printshop/internal/domain/order"
	"github.com/example/printshop/internal/domain/printservice"
	"github.com/example/printshop/internal/domain/review"
	"github.com/example/printshop/internal/domain/shop"
	"github.com/example/printshop/internal/infrastructure/store/mocks"
	"github.com/example/printshop/internal/pickup"
	"github.com/example/printshop/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() (*Handler, *mocks.MockEventStore, *mocks.MockReadStore) {
	eventStore := mocks.NewMockEventStore()
	readStore := mocks.NewMockReadStore()

	orderSvc := order.NewService(eventStore)
	handler := NewHandler(
		shop.NewService(eventStore),
		printservice.NewService(eventStore),
		cart.NewService(eventStore),
		orderSvc,
		inventory.NewService(eventStore),
		review.NewService(eventStore),
		design.NewService(eventStore, nil),
		pickup.NewFlow(orderSvc),
		readStore,
	)
	return handler, eventStore, readStore
}

func seedService(readStore *mocks.MockReadStore, id string, price int) {
	readStore.Set("services", id, &readmodel.ServiceReadModel{
		ID:    id,
		Name:  "Flyer printing",
		Price: price,
	})
}

func seedCart(readStore *mocks.MockReadStore, customerID string, items ...readmodel.CartItemReadModel) {
	readStore.Set("carts", cart.GetCartID(customerID), &readmodel.CartReadModel{
		ID:         cart.GetCartID(customerID),
		CustomerID: customerID,
		Items:      items,
	})
}

func seedShop(readStore *mocks.MockReadStore, shopID string, estimates map[string]float64, returnStatuses []string) {
	readStore.Set("shops", shopID, &readmodel.ShopReadModel{
		ID:                     shopID,
		OwnerID:                "owner-1",
		Name:                   "Print Corner",
		TimeEstimates:          estimates,
		ReturnEligibleStatuses: returnStatuses,
	})
}

func placeTestOrder(t *testing.T, handler *Handler, readStore *mocks.MockReadStore) *order.Order {
	t.Helper()
	seedCart(readStore, "cust-1", readmodel.CartItemReadModel{
		ServiceID: "svc-1", Name: "Flyer printing", Quantity: 2, UnitPrice: 500,
	})
	require.NoError(t, handler.inventorySvc.AddStock(context.Background(), "svc-1", 10))

	o, err := handler.PlaceOrder(context.Background(), PlaceOrder{CustomerID: "cust-1", ShopID: "shop-1"})
	require.NoError(t, err)
	return o
}

func TestHandler_CreateService(t *testing.T) {
	handler, eventStore, _ := newTestHandler()

	svc, err := handler.CreateService(context.Background(), CreateService{
		ShopID:      "shop-1",
		Name:        "Business cards",
		ProductType: "business-card",
		Price:       1500,
		Stock:       200,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, svc.ID)

	// ServiceCreated plus StockAdded
	require.Len(t, eventStore.AppendCalls, 2)
	assert.Equal(t, printservice.EventServiceCreated, eventStore.AppendCalls[0].EventType)
	assert.Equal(t, inventory.EventStockAdded, eventStore.AppendCalls[1].EventType)
}

func TestHandler_AddToCart_PriceFromReadStore(t *testing.T) {
	handler, eventStore, readStore := newTestHandler()
	seedService(readStore, "svc-1", 750)

	err := handler.AddToCart(context.Background(), AddToCart{
		CustomerID: "cust-1", ServiceID: "svc-1", Quantity: 3,
	})

	require.NoError(t, err)
	require.Len(t, eventStore.AppendCalls, 1)
	assert.Equal(t, cart.EventItemAdded, eventStore.AppendCalls[0].EventType)
}

func TestHandler_AddToCart_UnknownService(t *testing.T) {
	handler, _, _ := newTestHandler()

	err := handler.AddToCart(context.Background(), AddToCart{
		CustomerID: "cust-1", ServiceID: "missing", Quantity: 1,
	})

	assert.ErrorIs(t, err, printservice.ErrServiceNotFound)
}

func TestHandler_PlaceOrder(t *testing.T) {
	handler, eventStore, readStore := newTestHandler()
	seedShop(readStore, "shop-1", map[string]float64{"pending": 24, "processing": 6}, nil)

	o := placeTestOrder(t, handler, readStore)

	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, 1000, o.Total)
	assert.Equal(t, 24.0, o.TimeEstimates[order.StatusPending])
	assert.Equal(t, 6.0, o.TimeEstimates[order.StatusProcessing])

	// StockAdded, OrderPlaced, StockReserved, CartCleared
	types := make([]string, 0, len(eventStore.AppendCalls))
	for _, call := range eventStore.AppendCalls {
		types = append(types, call.EventType)
	}
	assert.Contains(t, types, order.EventOrderPlaced)
	assert.Contains(t, types, inventory.EventStockReserved)
	assert.Contains(t, types, cart.EventCartCleared)
}

func TestHandler_PlaceOrder_EmptyCart(t *testing.T) {
	handler, _, readStore := newTestHandler()
	seedCart(readStore, "cust-1")

	_, err := handler.PlaceOrder(context.Background(), PlaceOrder{CustomerID: "cust-1", ShopID: "shop-1"})
	assert.ErrorIs(t, err, order.ErrEmptyOrder)
}

func TestHandler_PlaceOrder_InsufficientStockCancelsOrder(t *testing.T) {
	handler, _, readStore := newTestHandler()
	seedCart(readStore, "cust-1", readmodel.CartItemReadModel{
		ServiceID: "svc-1", Quantity: 5, UnitPrice: 500,
	})
	require.NoError(t, handler.inventorySvc.AddStock(context.Background(), "svc-1", 2))

	_, err := handler.PlaceOrder(context.Background(), PlaceOrder{CustomerID: "cust-1", ShopID: "shop-1"})
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// Stock must be untouched afterwards
	inv, err := handler.inventorySvc.Get(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, inv.AvailableStock())
	assert.Equal(t, 0, inv.ReservedStock)
}

func TestHandler_AdvanceOrder_TracksPickupToken(t *testing.T) {
	handler, _, readStore := newTestHandler()
	o := placeTestOrder(t, handler, readStore)

	o2, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, o2.Status)

	o3, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, order.StatusReady, o3.Status)
	require.NotEmpty(t, o3.PickupToken)

	// The issued token now completes the order
	done, err := handler.ConfirmPickup(context.Background(), ConfirmPickup{Token: o3.PickupToken})
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, done.Status)
	assert.Equal(t, order.PaymentPaid, done.PaymentStatus)
}

func TestHandler_AdvanceOrder_TargetMustBeNextStep(t *testing.T) {
	handler, _, readStore := newTestHandler()
	o := placeTestOrder(t, handler, readStore)

	// Skipping a stage is rejected without touching the order
	_, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID, Target: "ready"})
	require.ErrorIs(t, err, order.ErrInvalidTransition)

	current, err := handler.orderSvc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, current.Status)

	advanced, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID, Target: "processing"})
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, advanced.Status)
}

func TestHandler_AdvanceOrder_DeductsStockOnCompletion(t *testing.T) {
	handler, _, readStore := newTestHandler()
	o := placeTestOrder(t, handler, readStore)

	for i := 0; i < 3; i++ {
		_, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID})
		require.NoError(t, err)
	}

	inv, err := handler.inventorySvc.Get(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 8, inv.TotalStock)
	assert.Equal(t, 0, inv.ReservedStock)
}

func TestHandler_AdvanceOrder_SingleInFlight(t *testing.T) {
	handler, _, readStore := newTestHandler()
	o := placeTestOrder(t, handler, readStore)

	require.NoError(t, handler.acquireOrder(o.ID))
	_, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID})
	assert.ErrorIs(t, err, ErrTransitionInFlight)

	handler.releaseOrder(o.ID)
	_, err = handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID})
	assert.NoError(t, err)
}

func TestHandler_AdvanceOrder_ConcurrentCallsDoNotDoubleStep(t *testing.T) {
	handler, _, readStore := newTestHandler()
	o := placeTestOrder(t, handler, readStore)

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		// Losers either hit the in-flight guard or found the order
		// already completed
		losing := errors.Is(err, ErrTransitionInFlight) || errors.Is(err, order.ErrInvalidTransition)
		assert.True(t, losing, "unexpected error: %v", err)
	}
	// The serialized winners stepped the order forward; at most the
	// three steps from pending to completed can succeed
	assert.LessOrEqual(t, succeeded, 3)
	assert.GreaterOrEqual(t, succeeded, 1)
}

func TestHandler_CancelOrder_ReleasesStock(t *testing.T) {
	handler, _, readStore := newTestHandler()
	o := placeTestOrder(t, handler, readStore)

	cancelled, err := handler.CancelOrder(context.Background(), CancelOrder{OrderID: o.ID, Reason: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	inv, err := handler.inventorySvc.Get(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, inv.ReservedStock)
	assert.Equal(t, 10, inv.AvailableStock())
}

func TestHandler_ConfirmPickup_UnknownToken(t *testing.T) {
	handler, _, _ := newTestHandler()

	_, err := handler.ConfirmPickup(context.Background(), ConfirmPickup{Token: "nope"})
	assert.ErrorIs(t, err, pickup.ErrTokenNotFound)
}

func TestHandler_SubmitReturnRequest_UsesShopPolicy(t *testing.T) {
	handler, _, readStore := newTestHandler()
	seedShop(readStore, "shop-1", nil, []string{"ready", "completed"})
	o := placeTestOrder(t, handler, readStore)

	// Advance to ready; the shop policy makes ready-stage returns valid
	for i := 0; i < 2; i++ {
		_, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID})
		require.NoError(t, err)
	}

	updated, err := handler.SubmitReturnRequest(context.Background(), SubmitReturnRequest{
		OrderID: o.ID, Reason: "damaged", Details: "smudged ink",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ReturnRequest)
	assert.Equal(t, order.ReturnPending, updated.ReturnRequest.Status)
}

func TestHandler_SubmitReturnRequest_DefaultPolicyRejectsReady(t *testing.T) {
	handler, _, readStore := newTestHandler()
	o := placeTestOrder(t, handler, readStore)

	for i := 0; i < 2; i++ {
		_, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID})
		require.NoError(t, err)
	}

	_, err := handler.SubmitReturnRequest(context.Background(), SubmitReturnRequest{
		OrderID: o.ID, Reason: "damaged",
	})
	assert.ErrorIs(t, err, order.ErrNotEligible)
}

func TestHandler_DecideReturnRequest(t *testing.T) {
	handler, _, readStore := newTestHandler()
	o := placeTestOrder(t, handler, readStore)

	for i := 0; i < 3; i++ {
		_, err := handler.AdvanceOrder(context.Background(), AdvanceOrder{OrderID: o.ID})
		require.NoError(t, err)
	}
	_, err := handler.SubmitReturnRequest(context.Background(), SubmitReturnRequest{OrderID: o.ID, Reason: "damaged"})
	require.NoError(t, err)

	decided, err := handler.DecideReturnRequest(context.Background(), DecideReturnRequest{
		OrderID: o.ID, Decision: "approved",
	})
	require.NoError(t, err)
	assert.Equal(t, order.PaymentRefunded, decided.PaymentStatus)
}

func TestHandler_ReviewCommands(t *testing.T) {
	handler, _, _ := newTestHandler()

	posted, err := handler.PostReview(context.Background(), PostReview{
		ShopID: "shop-1", AuthorID: "cust-1", Rating: 5, Comment: "flawless",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, handler.DeleteReview(context.Background(), DeleteReview{
		ReviewID: posted.ID, AuthorID: "cust-2",
	}), review.ErrNotAuthor)
	assert.NoError(t, handler.DeleteReview(context.Background(), DeleteReview{
		ReviewID: posted.ID, AuthorID: "cust-1",
	}))
}

func TestHandler_DesignCommands(t *testing.T) {
	handler, _, _ := newTestHandler()

	saved, err := handler.SaveDesign(context.Background(), SaveDesign{
		OwnerID: "cust-1", Name: "Logo", ProductType: "tshirt",
		FileURL: "https://cdn.example.com/logo.png",
		X:       0.5, Y: 0.5, Scale: 3,
	})
	require.NoError(t, err)
	// tshirt profile caps scale at 0.6
	assert.Equal(t, 0.6, saved.Customization.Scale)

	require.NoError(t, handler.UpdateDesign(context.Background(), UpdateDesign{
		DesignID: saved.ID, OwnerID: "cust-1", Name: "Logo v2",
		FileURL: "https://cdn.example.com/logo2.png",
		X:       0.3, Y: 0.7, Scale: 0.4,
	}))
	require.NoError(t, handler.DeleteDesign(context.Background(), DeleteDesign{
		DesignID: saved.ID, OwnerID: "cust-1",
	}))
}

func TestHandler_ShopCommands(t *testing.T) {
	handler, _, _ := newTestHandler()

	created, err := handler.CreateShop(context.Background(), CreateShop{
		OwnerID: "owner-1", Name: "Print Corner", Description: "same-day printing",
	})
	require.NoError(t, err)

	require.NoError(t, handler.SetShopTimeEstimates(context.Background(), SetShopTimeEstimates{
		ShopID: created.ID, Estimates: map[string]float64{"pending": 12},
	}))
	assert.ErrorIs(t, handler.SetShopTimeEstimates(context.Background(), SetShopTimeEstimates{
		ShopID: created.ID, Estimates: map[string]float64{"pending": -1},
	}), shop.ErrInvalidEstimate)

	require.NoError(t, handler.SetShopReturnPolicy(context.Background(), SetShopReturnPolicy{
		ShopID: created.ID, EligibleStatuses: []string{"ready", "completed"},
	}))
}
