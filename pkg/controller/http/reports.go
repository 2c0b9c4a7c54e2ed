package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// ReportHandler serves the dashboard and effort reports
type ReportHandler struct {
	reports usecase.Reporting
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports usecase.Reporting) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Routes mounts the handler
func (h *ReportHandler) Routes(r chi.Router) {
	r.With(RequireRole(types.UserRoleAdmin)).Get("/dashboard", h.dashboard)
	r.Get("/weekly-effort/{cohortID}", h.weeklyEffort)
	r.Get("/recent-activities", h.recentActivities)
}

func (h *ReportHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// recentActivities lists the latest weekly submissions. Coaches only see
// their own cohorts; others may narrow the feed with ?coach_id=.
func (h *ReportHandler) recentActivities(w http.ResponseWriter, r *http.Request) {
	coachID := types.UserID(r.URL.Query().Get("coach_id"))
	if c := caller(r); c != nil && c.Role == types.UserRoleCoach {
		coachID = c.UserID
	}

	items, err := h.reports.RecentActivities(r.Context(), coachID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, items)
}

// weeklyEffort returns the report as JSON, or as CSV with ?format=csv
func (h *ReportHandler) weeklyEffort(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.WeeklyEffort(r.Context(), types.CohortID(chi.URLParam(r, "cohortID")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") != "csv" {
		writeJSON(w, r, http.StatusOK, report)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="weekly_effort_%s.csv"`, report.CohortCode))
	if err := report.WriteCSV(w); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write weekly effort report", "error", err)
	}
}
