package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// FeedbackHandler serves feedback links. Session and submission are public
// and authorized by the link token alone.
type FeedbackHandler struct {
	feedback    usecase.FeedbackManagement
	frontendURL string
}

// NewFeedbackHandler creates a new feedback handler. frontendURL is the base
// of shareable links; when empty it is derived from each request.
func NewFeedbackHandler(feedback usecase.FeedbackManagement, frontendURL string) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, frontendURL: frontendURL}
}

// Routes mounts the authenticated routes
func (h *FeedbackHandler) Routes(r chi.Router) {
	r.Get("/requests", h.listRequests)
	r.Get("/cohort/{cohortID}", h.list)
	r.Get("/cohort/{cohortID}/analytics", h.analytics)
	r.Get("/cohort/{cohortID}/export/{type}", h.export)

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(types.UserRoleAdmin))
		r.Post("/requests", h.createRequest)
		r.Post("/requests/{id}/deactivate", h.deactivate)
	})
}

type feedbackRequestResponse struct {
	*model.FeedbackRequest
	Link string `json:"link"`
}

func (h *FeedbackHandler) link(r *http.Request, token types.FeedbackToken) string {
	base := strings.TrimRight(GetFrontendURL(r, h.frontendURL), "/")
	return fmt.Sprintf("%s/feedback/%s", base, token)
}

func (h *FeedbackHandler) createRequest(w http.ResponseWriter, r *http.Request) {
	var input usecase.FeedbackRequestInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := h.feedback.CreateRequest(r.Context(), input, callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, feedbackRequestResponse{
		FeedbackRequest: req,
		Link:            h.link(r, req.Token),
	})
}

// listRequests returns the links of ?cohort_id=
func (h *FeedbackHandler) listRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.feedback.ListRequests(r.Context(), types.CohortID(r.URL.Query().Get("cohort_id")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]feedbackRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		resp = append(resp, feedbackRequestResponse{FeedbackRequest: req, Link: h.link(r, req.Token)})
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *FeedbackHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	req, err := h.feedback.DeactivateRequest(r.Context(), types.FeedbackRequestID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, req)
}

func (h *FeedbackHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.feedback.ListFeedback(r.Context(), types.CohortID(chi.URLParam(r, "cohortID")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (h *FeedbackHandler) analytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.feedback.Analytics(r.Context(), types.CohortID(chi.URLParam(r, "cohortID")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, a)
}

// export writes one feedback section as CSV, or as JSON with ?format=json
func (h *FeedbackHandler) export(w http.ResponseWriter, r *http.Request) {
	cohortID := types.CohortID(chi.URLParam(r, "cohortID"))
	ft := types.FeedbackType(chi.URLParam(r, "type"))

	exp, err := h.feedback.Export(r.Context(), cohortID, ft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, r, http.StatusOK, map[string]any{"headers": exp.Headers, "rows": exp.Rows})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="feedback_%s_%s.csv"`, ft, cohortID))
	if err := usecase.WriteCSV(w, exp.Headers, exp.Rows); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write feedback export", "error", err)
	}
}

// HandleSession returns the form context of a feedback link
func (h *FeedbackHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.feedback.GetSession(r.Context(), types.FeedbackToken(chi.URLParam(r, "token")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, session)
}

// HandleSubmit records an anonymous response to a feedback link
func (h *FeedbackHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var answers model.Feedback
	if err := decodeJSON(r, &answers); err != nil {
		writeError(w, r, err)
		return
	}
	fb, err := h.feedback.SubmitFeedback(r.Context(), types.FeedbackToken(chi.URLParam(r, "token")), &answers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, fb)
}
