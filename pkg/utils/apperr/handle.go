package apperr

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/ascent/pkg/domain/model"
)

// Handle logs err. Client errors such as validation or missing resources are
// logged at warn level, everything else at error level.
func Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}
	logger := ctxlog.From(ctx)
	if IsClientError(err) {
		logger.Warn("request rejected", "error", err)
		return
	}
	logger.Error("application error", "error", err)
}

// IsClientError reports whether err was caused by the caller's input or identity
func IsClientError(err error) bool {
	return model.IsValidation(err) ||
		model.IsNotFound(err) ||
		model.IsUnauthorized(err) ||
		model.IsForbidden(err) ||
		model.IsConflict(err)
}
