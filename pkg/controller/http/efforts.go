package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// EffortHandler serves effort logs and weekly summaries
type EffortHandler struct {
	efforts usecase.EffortManagement
}

// NewEffortHandler creates a new effort handler
func NewEffortHandler(efforts usecase.EffortManagement) *EffortHandler {
	return &EffortHandler{efforts: efforts}
}

// Routes mounts the handler. Logging effort is limited to admins and coaches.
func (h *EffortHandler) Routes(r chi.Router) {
	r.Get("/policy", h.policy)
	r.Get("/", h.list)
	r.Get("/stakeholder/{stakeholderID}", h.listByStakeholder)
	r.Get("/cohort/{cohortID}/weeks", h.byWeek)
	r.Get("/cohort/{cohortID}/summaries", h.summaries)
	r.Get("/cohort/{cohortID}/summaries/{weekStart}", h.summary)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(types.UserRoleAdmin, types.UserRoleCoach))
		r.Post("/", h.submit)
		r.Post("/weekly", h.submitWeekly)
		r.Delete("/{id}", h.delete)
	})
}

func (h *EffortHandler) policy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.efforts.Policy())
}

// parseDateParam reads an optional YYYY-MM-DD query parameter
func parseDateParam(r *http.Request, key string) (time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return time.Time{}, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "invalid date parameter", goerr.V("param", key), goerr.T(model.TagValidation))
	}
	return d, nil
}

// list returns the efforts of ?cohort_id=, optionally bounded by ?from= and ?to=
func (h *EffortHandler) list(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}

	cohortID := types.CohortID(r.URL.Query().Get("cohort_id"))
	efforts, err := h.efforts.ListEfforts(r.Context(), cohortID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, efforts)
}

func (h *EffortHandler) listByStakeholder(w http.ResponseWriter, r *http.Request) {
	id := types.StakeholderID(chi.URLParam(r, "stakeholderID"))
	efforts, err := h.efforts.ListEffortsByStakeholder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, efforts)
}

func (h *EffortHandler) get(w http.ResponseWriter, r *http.Request) {
	effort, err := h.efforts.GetEffort(r.Context(), types.EffortID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, effort)
}

func (h *EffortHandler) submit(w http.ResponseWriter, r *http.Request) {
	var input usecase.EffortInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	effort, err := h.efforts.SubmitEffort(r.Context(), input, callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, effort)
}

func (h *EffortHandler) submitWeekly(w http.ResponseWriter, r *http.Request) {
	var input usecase.WeeklyEffortInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	summary, err := h.efforts.SubmitWeeklyEffort(r.Context(), input, callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (h *EffortHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.efforts.DeleteEffort(r.Context(), types.EffortID(chi.URLParam(r, "id")), callerID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EffortHandler) byWeek(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.efforts.EffortsByWeek(r.Context(), types.CohortID(chi.URLParam(r, "cohortID")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, weeks)
}

func (h *EffortHandler) summaries(w http.ResponseWriter, r *http.Request) {
	list, err := h.efforts.ListWeeklySummaries(r.Context(), types.CohortID(chi.URLParam(r, "cohortID")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (h *EffortHandler) summary(w http.ResponseWriter, r *http.Request) {
	weekStart, err := model.ParseDate(chi.URLParam(r, "weekStart"))
	if err != nil {
		writeError(w, r, goerr.Wrap(err, "invalid week start", goerr.T(model.TagValidation)))
		return
	}
	s, err := h.efforts.GetWeeklySummary(r.Context(), types.CohortID(chi.URLParam(r, "cohortID")), weekStart)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s)
}
