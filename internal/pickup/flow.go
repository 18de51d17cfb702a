// Package pickup implements the in-store pickup confirmation flow. A token
// is issued when an order becomes ready, shown to the customer as a QR code,
// and scanned once at the counter to complete the order.
package pickup

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/example/printshop/internal/domain/order"
)

var (
	ErrTokenNotFound   = errors.New("pickup token not found")
	ErrAlreadyConsumed = errors.New("pickup token has already been used")
)

// OrderAdvancer advances an order one stage forward. Satisfied by
// *order.Service.
type OrderAdvancer interface {
	Advance(ctx context.Context, orderID string) (*order.Order, error)
}

type tokenState struct {
	orderID  string
	consumed bool
}

// Flow tracks live pickup tokens and confirms them exactly once. Confirming
// a token advances the order from ready to completed; the two steps succeed
// or fail together.
type Flow struct {
	mu     sync.Mutex
	orders OrderAdvancer
	tokens map[string]*tokenState
}

func NewFlow(orders OrderAdvancer) *Flow {
	return &Flow{
		orders: orders,
		tokens: make(map[string]*tokenState),
	}
}

// Track registers a token issued for an order. Called when the order enters
// ready, and again on startup when replaying orders that are still ready.
func (f *Flow) Track(token, orderID string) {
	if token == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.tokens[token]; exists {
		return
	}
	f.tokens[token] = &tokenState{orderID: orderID}
}

// Invalidate drops a token without consuming it, e.g. when the order is
// completed or cancelled through another path.
func (f *Flow) Invalidate(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

// Confirm consumes a token and advances its order to completed. The token is
// marked consumed before the order transition runs so a concurrent scan of
// the same token fails with ErrAlreadyConsumed; if the transition fails the
// consumption is rolled back and the token can be scanned again.
func (f *Flow) Confirm(ctx context.Context, token string) (*order.Order, error) {
	f.mu.Lock()
	state, ok := f.tokens[token]
	if !ok {
		f.mu.Unlock()
		return nil, ErrTokenNotFound
	}
	if state.consumed {
		f.mu.Unlock()
		return nil, ErrAlreadyConsumed
	}
	state.consumed = true
	f.mu.Unlock()

	updated, err := f.orders.Advance(ctx, state.orderID)
	if err != nil {
		f.mu.Lock()
		state.consumed = false
		f.mu.Unlock()
		log.Printf("[Pickup] Failed to complete order %s: %v", state.orderID, err)
		return nil, err
	}

	return updated, nil
}
