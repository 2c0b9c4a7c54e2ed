package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// UserHandler serves console account management
type UserHandler struct {
	users usecase.UserManagement
}

// NewUserHandler creates a new user handler
func NewUserHandler(users usecase.UserManagement) *UserHandler {
	return &UserHandler{users: users}
}

// Routes mounts the handler. Every route is admin only.
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}/status", h.setStatus)
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	if role := r.URL.Query().Get("role"); role != "" {
		users, err := h.users.ListUsersByRole(r.Context(), types.UserRole(role))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, users)
		return
	}

	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, users)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateUserInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.CreateUser(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, user)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), types.UserID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status types.UserStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.SetStatus(r.Context(), types.UserID(chi.URLParam(r, "id")), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, user)
}
