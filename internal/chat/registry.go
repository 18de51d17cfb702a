package chat

import "sync"

// Registry maps a (customer, owner) pair to its conversation id on the
// client side. Conversations are created lazily by the hub on the first
// message; until the hub answers, the pair is marked pending so a rapid
// second send does not fire a second bootstrap.
//
// The hub is the source of truth: whatever id it announces for a pair is
// bound, replacing anything learned earlier.
type Registry struct {
	mu      sync.Mutex
	byPair  map[string]string
	pending map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		byPair:  make(map[string]string),
		pending: make(map[string]bool),
	}
}

func pairKey(customerID, ownerID string) string {
	return customerID + "|" + ownerID
}

// Lookup returns the conversation id bound to a pair, if known.
func (r *Registry) Lookup(customerID, ownerID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPair[pairKey(customerID, ownerID)]
	return id, ok
}

// BeginBootstrap marks a pair's bootstrap as in flight. Returns false if a
// bootstrap is already pending, in which case the caller must not emit a
// second startConversation — its message will be rebound when the pending
// one resolves.
func (r *Registry) BeginBootstrap(customerID, ownerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(customerID, ownerID)
	if _, bound := r.byPair[key]; bound {
		return false
	}
	if r.pending[key] {
		return false
	}
	r.pending[key] = true
	return true
}

// AbortBootstrap clears a pending mark after a failed emit so the next send
// can bootstrap again.
func (r *Registry) AbortBootstrap(customerID, ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, pairKey(customerID, ownerID))
}

// Bind records the hub-announced conversation id for a pair and clears any
// pending bootstrap. Returns the previously bound id, if there was one.
func (r *Registry) Bind(customerID, ownerID, conversationID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(customerID, ownerID)
	previous, had := r.byPair[key]
	r.byPair[key] = conversationID
	delete(r.pending, key)
	return previous, had
}
