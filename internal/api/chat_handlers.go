package api

import (
	"net/http"

	"github.com/example/printshop/internal/chat"
	"github.com/example/printshop/internal/query"
)

// ChatHandlers exposes chat history over HTTP and hands live
// connections to the websocket hub
type ChatHandlers struct {
	hub          *chat.Hub
	queryHandler *query.Handler
}

func NewChatHandlers(hub *chat.Hub, queryHandler *query.Handler) *ChatHandlers {
	return &ChatHandlers{
		hub:          hub,
		queryHandler: queryHandler,
	}
}

// ServeWS upgrades the request into a hub connection
func (h *ChatHandlers) ServeWS(w http.ResponseWriter, r *http.Request) {
	h.hub.HandleWS(w, r)
}

// GetConversations lists the caller's conversations, most recent first
func (h *ChatHandlers) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)
	if ownerID := r.URL.Query().Get("ownerId"); ownerID != "" && isOwner(r) {
		userID = ownerID
	}
	respondJSON(w, http.StatusOK, h.queryHandler.ListConversationsByParticipant(userID))
}

// GetMessages returns a conversation's history oldest first
func (h *ChatHandlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := extractPathParam(r.URL.Path, "/chat/messages/")

	messages, err := h.queryHandler.Messages(r.Context(), conversationID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}
