package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_LookupUnknownPair(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup("cust-1", "owner-1")

	assert.False(t, ok)
}

func TestRegistry_BindThenLookup(t *testing.T) {
	r := NewRegistry()

	r.Bind("cust-1", "owner-1", "conv-1")

	id, ok := r.Lookup("cust-1", "owner-1")
	assert.True(t, ok)
	assert.Equal(t, "conv-1", id)

	// The reverse pair is a different key
	_, ok = r.Lookup("owner-1", "cust-1")
	assert.False(t, ok)
}

func TestRegistry_BeginBootstrap_OncePerPair(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.BeginBootstrap("cust-1", "owner-1"))
	// Second bootstrap while the first is in flight
	assert.False(t, r.BeginBootstrap("cust-1", "owner-1"))
	// Different pair is independent
	assert.True(t, r.BeginBootstrap("cust-1", "owner-2"))
}

func TestRegistry_BeginBootstrap_BoundPairNeverBootstraps(t *testing.T) {
	r := NewRegistry()
	r.Bind("cust-1", "owner-1", "conv-1")

	assert.False(t, r.BeginBootstrap("cust-1", "owner-1"))
}

func TestRegistry_AbortBootstrap(t *testing.T) {
	r := NewRegistry()
	r.BeginBootstrap("cust-1", "owner-1")

	r.AbortBootstrap("cust-1", "owner-1")

	// A fresh bootstrap may start after the failed one aborted
	assert.True(t, r.BeginBootstrap("cust-1", "owner-1"))
}

func TestRegistry_Bind_ServerWins(t *testing.T) {
	r := NewRegistry()
	r.Bind("cust-1", "owner-1", "conv-old")

	previous, had := r.Bind("cust-1", "owner-1", "conv-new")

	assert.True(t, had)
	assert.Equal(t, "conv-old", previous)

	id, _ := r.Lookup("cust-1", "owner-1")
	assert.Equal(t, "conv-new", id)
}

func TestRegistry_BindClearsPending(t *testing.T) {
	r := NewRegistry()
	r.BeginBootstrap("cust-1", "owner-1")

	r.Bind("cust-1", "owner-1", "conv-1")

	// Bound now, so no bootstrap should ever start again for the pair
	assert.False(t, r.BeginBootstrap("cust-1", "owner-1"))
}
