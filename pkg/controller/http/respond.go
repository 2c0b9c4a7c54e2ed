package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/utils/apperr"
)

const maxBodySize = 1 << 20

// statusOf maps a tagged domain error to an HTTP status code
func statusOf(err error) int {
	switch {
	case model.IsValidation(err):
		return http.StatusBadRequest
	case model.IsUnauthorized(err):
		return http.StatusUnauthorized
	case model.IsForbidden(err):
		return http.StatusForbidden
	case model.IsNotFound(err):
		return http.StatusNotFound
	case model.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the message of the innermost goerr error, which is the
// one created at the point of failure
func errorMessage(err error) string {
	msg := err.Error()
	for e := err; e != nil; e = errors.Unwrap(e) {
		if ge := goerr.Unwrap(e); ge != nil && ge == e {
			msg = ge.Error()
		}
	}
	return msg
}

// writeError writes err as a JSON body. Server errors are logged and their
// details hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	apperr.Handle(r.Context(), err)

	message := errorMessage(err)
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeJSON(w, r, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// decodeJSON reads the request body into v
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return goerr.New("request body is empty", goerr.T(model.TagValidation))
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(err, "invalid request body", goerr.T(model.TagValidation))
	}
	return nil
}
