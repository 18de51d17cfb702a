// Package session holds client-side identity state between connections.
// The chat channel client uses it to survive reconnects without forcing
// a fresh login, and guest visitors keep their token here until they
// register.
package session

import "errors"

var ErrKeyNotFound = errors.New("session key not found")

// Well-known session keys.
const (
	KeyUserID     = "user_id"
	KeyRole       = "role"
	KeyGuestToken = "guest_token"
	KeyName       = "name"
	KeyEmail      = "email"
)

// Store is a small string key/value store with explicit persistence.
// Set and Delete mutate memory only; Flush writes the current state to
// the backing medium and Load replaces memory from it.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	Load() error
	Flush() error
}

// Identity extracts the stored user identity, if any.
func Identity(s Store) (userID, role string, ok bool) {
	userID, ok = s.Get(KeyUserID)
	if !ok || userID == "" {
		return "", "", false
	}
	role, _ = s.Get(KeyRole)
	return userID, role, true
}
