package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// CohortHandler serves cohorts and their assignments
type CohortHandler struct {
	cohorts usecase.CohortManagement
}

// NewCohortHandler creates a new cohort handler
func NewCohortHandler(cohorts usecase.CohortManagement) *CohortHandler {
	return &CohortHandler{cohorts: cohorts}
}

// Routes mounts the handler. Listing is filtered by the caller's role;
// changes are admin only.
func (h *CohortHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/code/{code}", h.getByCode)
	r.Get("/{id}", h.get)
	r.Get("/{id}/weeks", h.weeks)
	r.Get("/{id}/assignments", h.listAssignments)

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(types.UserRoleAdmin))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Put("/{id}/coach", h.assignCoach)
		r.Put("/{id}/assignments/{role}", h.assignPrimary)
		r.Post("/{id}/assignments/{role}", h.addAdditional)
		r.Delete("/{id}/assignments/{role}/{stakeholderID}", h.removeAdditional)
	})
}

func cohortID(r *http.Request) types.CohortID {
	return types.CohortID(chi.URLParam(r, "id"))
}

func (h *CohortHandler) list(w http.ResponseWriter, r *http.Request) {
	cohorts, err := h.cohorts.ListCohortsFor(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cohorts)
}

func (h *CohortHandler) get(w http.ResponseWriter, r *http.Request) {
	cohort, err := h.cohorts.GetCohort(r.Context(), cohortID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cohort)
}

func (h *CohortHandler) getByCode(w http.ResponseWriter, r *http.Request) {
	cohort, err := h.cohorts.GetCohortByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cohort)
}

func (h *CohortHandler) create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CohortInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	cohort, err := h.cohorts.CreateCohort(r.Context(), input, callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, cohort)
}

func (h *CohortHandler) update(w http.ResponseWriter, r *http.Request) {
	var input usecase.CohortInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	cohort, err := h.cohorts.UpdateCohort(r.Context(), cohortID(r), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cohort)
}

func (h *CohortHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cohorts.DeleteCohort(r.Context(), cohortID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CohortHandler) weeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.cohorts.Weeks(r.Context(), cohortID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, weeks)
}

func (h *CohortHandler) assignCoach(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CoachID types.UserID `json:"coach_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cohort, err := h.cohorts.AssignCoach(r.Context(), cohortID(r), req.CoachID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cohort)
}

type assignmentRequest struct {
	StakeholderID types.StakeholderID `json:"stakeholder_id"`
}

func (h *CohortHandler) assignPrimary(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	role := types.StakeholderRole(chi.URLParam(r, "role"))
	cohort, err := h.cohorts.AssignPrimary(r.Context(), cohortID(r), role, req.StakeholderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cohort)
}

func (h *CohortHandler) addAdditional(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	role := types.StakeholderRole(chi.URLParam(r, "role"))
	cohort, err := h.cohorts.AddAdditional(r.Context(), cohortID(r), role, req.StakeholderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, cohort)
}

func (h *CohortHandler) removeAdditional(w http.ResponseWriter, r *http.Request) {
	role := types.StakeholderRole(chi.URLParam(r, "role"))
	id := types.StakeholderID(chi.URLParam(r, "stakeholderID"))
	cohort, err := h.cohorts.RemoveAdditional(r.Context(), cohortID(r), role, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cohort)
}

func (h *CohortHandler) listAssignments(w http.ResponseWriter, r *http.Request) {
	views, err := h.cohorts.ListAssignments(r.Context(), cohortID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, views)
}
