package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/ascent/pkg/domain/model"
)

// Dispatch runs handler in its own goroutine. The handler context outlives
// the request that started it and keeps its logger and caller identity.
// Failures are logged under the given task name and never returned.
func Dispatch(ctx context.Context, task string, handler func(ctx context.Context) error) {
	bg := detach(ctx)
	logger := ctxlog.From(bg).With("task", task)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Async task panicked", "recover", r, "stack", string(debug.Stack()))
			}
		}()

		if err := handler(bg); err != nil {
			logger.Error("Async task failed", "error", err)
		}
	}()
}

func detach(ctx context.Context) context.Context {
	bg := ctxlog.With(context.Background(), ctxlog.From(ctx))
	if authCtx, ok := model.GetAuthContext(ctx); ok {
		bg = model.WithAuthContext(bg, authCtx.Clone())
	}
	return bg
}
