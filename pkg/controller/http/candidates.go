package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// maxImportSize bounds bulk import uploads
const maxImportSize = 5 << 20

// CandidateHandler serves trainees
type CandidateHandler struct {
	candidates usecase.CandidateManagement
}

// NewCandidateHandler creates a new candidate handler
func NewCandidateHandler(candidates usecase.CandidateManagement) *CandidateHandler {
	return &CandidateHandler{candidates: candidates}
}

// Routes mounts the handler
func (h *CandidateHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(types.UserRoleAdmin))
		r.Post("/", h.create)
		r.Post("/import", h.importFile)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.delete)
	})
}

func candidateID(r *http.Request) types.CandidateID {
	return types.CandidateID(chi.URLParam(r, "id"))
}

// list returns every trainee, or those of ?cohort_id=
func (h *CandidateHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.candidates.ListCandidates(r.Context(), types.CohortID(r.URL.Query().Get("cohort_id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (h *CandidateHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.candidates.GetCandidate(r.Context(), candidateID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (h *CandidateHandler) create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CandidateInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.candidates.CreateCandidate(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, c)
}

// importFile accepts a multipart form with a cohort_id field and a CSV in "file"
func (h *CandidateHandler) importFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, r, goerr.Wrap(err, "invalid upload", goerr.T(model.TagValidation)))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, goerr.Wrap(err, "file is required", goerr.T(model.TagValidation)))
		return
	}
	defer func() { _ = file.Close() }()

	cohortID := types.CohortID(r.FormValue("cohort_id"))
	result, err := h.candidates.ImportCandidates(r.Context(), cohortID, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (h *CandidateHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status types.CandidateStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.candidates.UpdateStatus(r.Context(), candidateID(r), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (h *CandidateHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.candidates.DeleteCandidate(r.Context(), candidateID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
