package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// ActivityHandler serves the activity log of cohorts
type ActivityHandler struct {
	activities usecase.ActivityLog
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activities usecase.ActivityLog) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// Routes mounts the handler
func (h *ActivityHandler) Routes(r chi.Router) {
	r.Get("/cohort/{cohortID}", h.listByCohort)
	r.With(RequireRole(types.UserRoleAdmin, types.UserRoleCoach)).Post("/", h.create)
}

func (h *ActivityHandler) listByCohort(w http.ResponseWriter, r *http.Request) {
	activities, err := h.activities.ListActivities(r.Context(), types.CohortID(chi.URLParam(r, "cohortID")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, activities)
}

func (h *ActivityHandler) create(w http.ResponseWriter, r *http.Request) {
	var input usecase.ActivityInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	activity, err := h.activities.LogActivity(r.Context(), input, callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, activity)
}
