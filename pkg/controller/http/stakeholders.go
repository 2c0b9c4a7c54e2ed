package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// StakeholderHandler serves trainer and mentor records
type StakeholderHandler struct {
	stakeholders usecase.StakeholderManagement
}

// NewStakeholderHandler creates a new stakeholder handler
func NewStakeholderHandler(stakeholders usecase.StakeholderManagement) *StakeholderHandler {
	return &StakeholderHandler{stakeholders: stakeholders}
}

// Routes mounts the handler. Reads are open to every signed-in user.
func (h *StakeholderHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(types.UserRoleAdmin))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *StakeholderHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.stakeholders.ListStakeholders(r.Context(), types.StakeholderRole(r.URL.Query().Get("role")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (h *StakeholderHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.stakeholders.GetStakeholder(r.Context(), types.StakeholderID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}

func (h *StakeholderHandler) create(w http.ResponseWriter, r *http.Request) {
	var input usecase.StakeholderInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.stakeholders.CreateStakeholder(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, s)
}

func (h *StakeholderHandler) update(w http.ResponseWriter, r *http.Request) {
	var input usecase.StakeholderInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.stakeholders.UpdateStakeholder(r.Context(), types.StakeholderID(chi.URLParam(r, "id")), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}

func (h *StakeholderHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.stakeholders.DeleteStakeholder(r.Context(), types.StakeholderID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
