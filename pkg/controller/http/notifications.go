package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// NotificationHandler serves the inbox of the signed-in user
type NotificationHandler struct {
	inbox usecase.NotificationInbox
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(inbox usecase.NotificationInbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// Routes mounts the handler
func (h *NotificationHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Delete("/", h.clear)
	r.Post("/read-all", h.markAllRead)
	r.Patch("/{id}/read", h.markRead)

	r.With(RequireRole(types.UserRoleAdmin)).Post("/broadcast", h.broadcast)
}

func (h *NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.inbox.ListNotifications(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	id := types.NotificationID(chi.URLParam(r, "id"))
	if err := h.inbox.MarkRead(r.Context(), callerID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.MarkAllRead(r.Context(), callerID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.inbox.ClearNotifications(r.Context(), callerID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type broadcastRequest struct {
	Role    types.UserRole `json:"role"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
}

func (h *NotificationHandler) broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sent, err := h.inbox.Broadcast(r.Context(), req.Role, req.Title, req.Message, callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"sent": sent})
}
