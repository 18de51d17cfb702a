package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/example/printshop/internal/readmodel"
)

// readTables maps logical collections to their backing tables. Each table
// has the same shape: id TEXT PRIMARY KEY, data JSONB, updated_at TIMESTAMPTZ.
var readTables = map[string]string{
	"services":      "read_services",
	"carts":         "read_carts",
	"orders":        "read_orders",
	"inventory":     "read_inventory",
	"users":         "read_users",
	"sessions":      "user_sessions",
	"shops":         "read_shops",
	"reviews":       "read_reviews",
	"conversations": "read_conversations",
	"messages":      "read_messages",
	"designs":       "read_designs",
}

// PostgresReadStore implements ReadStoreInterface using PostgreSQL.
// Read models are stored as JSONB documents, one table per collection,
// with lookups going through JSONB field expressions.
type PostgresReadStore struct {
	db *sql.DB
	mu sync.RWMutex // serializes read-modify-write in Update
}

// NewPostgresReadStore creates a new PostgreSQL-based read store
func NewPostgresReadStore(db *sql.DB) *PostgresReadStore {
	return &PostgresReadStore{db: db}
}

// decode unmarshals a stored document into the typed read model for its collection
func decode(collection string, raw []byte) (any, error) {
	var target any
	switch collection {
	case "services":
		target = &readmodel.ServiceReadModel{}
	case "carts":
		target = &readmodel.CartReadModel{}
	case "orders":
		target = &readmodel.OrderReadModel{}
	case "inventory":
		target = &readmodel.InventoryReadModel{}
	case "users":
		target = &userDocument{}
	case "sessions":
		target = &sessionDocument{}
	case "shops":
		target = &readmodel.ShopReadModel{}
	case "reviews":
		target = &readmodel.ReviewReadModel{}
	case "conversations":
		target = &readmodel.ConversationReadModel{}
	case "messages":
		target = &readmodel.MessageReadModel{}
	case "designs":
		target = &readmodel.DesignReadModel{}
	default:
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, err
	}
	switch doc := target.(type) {
	case *userDocument:
		return doc.toReadModel(), nil
	case *sessionDocument:
		return doc.toReadModel(), nil
	}
	return target, nil
}

// encode marshals a read model for storage. Users and sessions carry hashes
// that are excluded from API JSON, so they go through storage documents.
func encode(collection string, data any) ([]byte, error) {
	switch collection {
	case "users":
		if u, ok := data.(*readmodel.UserReadModel); ok {
			return json.Marshal(newUserDocument(u))
		}
	case "sessions":
		if s, ok := data.(*readmodel.SessionReadModel); ok {
			return json.Marshal(newSessionDocument(s))
		}
	}
	return json.Marshal(data)
}

// Set stores a read model
func (rs *PostgresReadStore) Set(collection, id string, data any) {
	table, ok := readTables[collection]
	if !ok {
		log.Printf("[ReadStore] Unknown collection: %s", collection)
		return
	}

	doc, err := encode(collection, data)
	if err != nil {
		log.Printf("[ReadStore] Failed to marshal %s/%s: %v", collection, id, err)
		return
	}

	_, err = rs.db.Exec(
		fmt.Sprintf(`INSERT INTO %s (id, data, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = NOW()`, table),
		id, doc,
	)
	if err != nil {
		log.Printf("[ReadStore] Failed to store %s/%s: %v", collection, id, err)
	}
}

// Get retrieves a read model by id
func (rs *PostgresReadStore) Get(collection, id string) (any, bool) {
	table, ok := readTables[collection]
	if !ok {
		return nil, false
	}

	var raw []byte
	err := rs.db.QueryRow(
		fmt.Sprintf("SELECT data FROM %s WHERE id = $1", table), id,
	).Scan(&raw)
	if err != nil {
		return nil, false
	}

	model, err := decode(collection, raw)
	if err != nil {
		log.Printf("[ReadStore] Failed to decode %s/%s: %v", collection, id, err)
		return nil, false
	}
	return model, true
}

// GetAll retrieves all items in a collection
func (rs *PostgresReadStore) GetAll(collection string) []any {
	table, ok := readTables[collection]
	if !ok {
		return nil
	}
	return rs.queryDocuments(collection,
		fmt.Sprintf("SELECT data FROM %s ORDER BY updated_at ASC", table))
}

// Delete removes a read model
func (rs *PostgresReadStore) Delete(collection, id string) {
	table, ok := readTables[collection]
	if !ok {
		return
	}
	if _, err := rs.db.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id,
	); err != nil {
		log.Printf("[ReadStore] Failed to delete %s/%s: %v", collection, id, err)
	}
}

// Update modifies a read model using an update function
func (rs *PostgresReadStore) Update(collection, id string, updateFn func(current any) any) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	current, ok := rs.Get(collection, id)
	if !ok {
		return false
	}
	rs.Set(collection, id, updateFn(current))
	return true
}

func (rs *PostgresReadStore) queryDocuments(collection, query string, args ...any) []any {
	rows, err := rs.db.Query(query, args...)
	if err != nil {
		log.Printf("[ReadStore] Query failed for %s: %v", collection, err)
		return nil
	}
	defer rows.Close()

	var items []any
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			continue
		}
		model, err := decode(collection, raw)
		if err != nil {
			continue
		}
		items = append(items, model)
	}
	return items
}

// GetUserByEmail finds a user by email address
func (rs *PostgresReadStore) GetUserByEmail(email string) (*readmodel.UserReadModel, bool) {
	var raw []byte
	err := rs.db.QueryRow(
		"SELECT data FROM read_users WHERE data->>'email' = $1", email,
	).Scan(&raw)
	if err != nil {
		return nil, false
	}
	model, err := decode("users", raw)
	if err != nil {
		return nil, false
	}
	return model.(*readmodel.UserReadModel), true
}

// GetSessionByUserID returns the most recent session for a user
func (rs *PostgresReadStore) GetSessionByUserID(userID string) (*readmodel.SessionReadModel, bool) {
	var raw []byte
	err := rs.db.QueryRow(
		`SELECT data FROM user_sessions WHERE data->>'user_id' = $1
		 ORDER BY updated_at DESC LIMIT 1`, userID,
	).Scan(&raw)
	if err != nil {
		return nil, false
	}
	model, err := decode("sessions", raw)
	if err != nil {
		return nil, false
	}
	return model.(*readmodel.SessionReadModel), true
}

// DeleteSessionsByUserID removes all sessions for a user (logout everywhere)
func (rs *PostgresReadStore) DeleteSessionsByUserID(userID string) {
	if _, err := rs.db.Exec(
		"DELETE FROM user_sessions WHERE data->>'user_id' = $1", userID,
	); err != nil {
		log.Printf("[ReadStore] Failed to delete sessions for user %s: %v", userID, err)
	}
}

// DeleteExpiredSessions removes sessions past their expiry
func (rs *PostgresReadStore) DeleteExpiredSessions() {
	if _, err := rs.db.Exec(
		"DELETE FROM user_sessions WHERE (data->>'expires_at')::timestamptz < NOW()",
	); err != nil {
		log.Printf("[ReadStore] Failed to delete expired sessions: %v", err)
	}
}

// GetOrdersByCustomer returns all orders placed by a customer, newest first
func (rs *PostgresReadStore) GetOrdersByCustomer(customerID string) []any {
	return rs.queryDocuments("orders",
		`SELECT data FROM read_orders WHERE data->>'customer_id' = $1
		 ORDER BY data->>'created_at' DESC`, customerID)
}

// GetOrdersByShop returns all orders for a shop, newest first
func (rs *PostgresReadStore) GetOrdersByShop(shopID string) []any {
	return rs.queryDocuments("orders",
		`SELECT data FROM read_orders WHERE data->>'shop_id' = $1
		 ORDER BY data->>'created_at' DESC`, shopID)
}

// GetMessagesByConversation returns a conversation's messages in send order
func (rs *PostgresReadStore) GetMessagesByConversation(conversationID string) []any {
	return rs.queryDocuments("messages",
		`SELECT data FROM read_messages WHERE data->>'conversation_id' = $1
		 ORDER BY data->>'created_at' ASC`, conversationID)
}

// GetConversationsByParticipant returns conversations where the user is either side
func (rs *PostgresReadStore) GetConversationsByParticipant(userID string) []any {
	return rs.queryDocuments("conversations",
		`SELECT data FROM read_conversations
		 WHERE data->>'customer_id' = $1 OR data->>'owner_id' = $1
		 ORDER BY data->>'last_message_at' DESC`, userID)
}

// GetConversationByPair returns the conversation between a customer and an owner
func (rs *PostgresReadStore) GetConversationByPair(customerID, ownerID string) (*readmodel.ConversationReadModel, bool) {
	var raw []byte
	err := rs.db.QueryRow(
		`SELECT data FROM read_conversations
		 WHERE data->>'customer_id' = $1 AND data->>'owner_id' = $2`,
		customerID, ownerID,
	).Scan(&raw)
	if err != nil {
		return nil, false
	}
	model, err := decode("conversations", raw)
	if err != nil {
		return nil, false
	}
	return model.(*readmodel.ConversationReadModel), true
}

// GetReviewsByShop returns a shop's reviews, newest first
func (rs *PostgresReadStore) GetReviewsByShop(shopID string) []any {
	return rs.queryDocuments("reviews",
		`SELECT data FROM read_reviews WHERE data->>'shop_id' = $1
		 ORDER BY data->>'created_at' DESC`, shopID)
}

// GetDesignsByOwner returns a customer's saved designs, newest first
func (rs *PostgresReadStore) GetDesignsByOwner(ownerID string) []any {
	return rs.queryDocuments("designs",
		`SELECT data FROM read_designs WHERE data->>'owner_id' = $1
		 ORDER BY data->>'created_at' DESC`, ownerID)
}

// userDocument is the storage form of a user; unlike the API read model it
// persists the password hash.
type userDocument struct {
	readmodel.UserReadModel
	PasswordHash string `json:"password_hash"`
}

func newUserDocument(u *readmodel.UserReadModel) *userDocument {
	return &userDocument{UserReadModel: *u, PasswordHash: u.PasswordHash}
}

func (d *userDocument) toReadModel() *readmodel.UserReadModel {
	u := d.UserReadModel
	u.PasswordHash = d.PasswordHash
	return &u
}

// sessionDocument is the storage form of a session, persisting the token hash
type sessionDocument struct {
	readmodel.SessionReadModel
	RefreshTokenHash string `json:"refresh_token_hash"`
}

func newSessionDocument(s *readmodel.SessionReadModel) *sessionDocument {
	return &sessionDocument{SessionReadModel: *s, RefreshTokenHash: s.RefreshTokenHash}
}

func (d *sessionDocument) toReadModel() *readmodel.SessionReadModel {
	s := d.SessionReadModel
	s.RefreshTokenHash = d.RefreshTokenHash
	return &s
}
