package async_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/utils/async"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func loggedContext(w *syncBuffer) context.Context {
	logger := slog.New(slog.NewJSONHandler(w, nil))
	return ctxlog.With(context.Background(), logger)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDispatchRunsHandler(t *testing.T) {
	done := make(chan struct{})
	async.Dispatch(context.Background(), "noop", func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
	}
}

func TestDispatchLogsFailures(t *testing.T) {
	t.Run("error carries the task name", func(t *testing.T) {
		var out syncBuffer
		async.Dispatch(loggedContext(&out), "slack-notify", func(ctx context.Context) error {
			return goerr.New("channel not found")
		})

		eventually(t, func() bool { return strings.Contains(out.String(), "Async task failed") })
		gt.True(t, strings.Contains(out.String(), `"task":"slack-notify"`))
	})

	t.Run("panic is recovered", func(t *testing.T) {
		var out syncBuffer
		async.Dispatch(loggedContext(&out), "broken", func(ctx context.Context) error {
			panic("boom")
		})

		eventually(t, func() bool { return strings.Contains(out.String(), "Async task panicked") })
		gt.True(t, strings.Contains(out.String(), `"task":"broken"`))
	})
}

func TestDispatchDetachesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(model.WithAuthContext(context.Background(), &model.AuthContext{
		UserID: "user-1",
		Role:   types.UserRoleCoach,
		Name:   "Coach One",
	}))

	started := make(chan struct{})
	result := make(chan error, 1)
	var caller *model.AuthContext

	async.Dispatch(ctx, "detached", func(ctx context.Context) error {
		close(started)
		time.Sleep(20 * time.Millisecond)
		caller, _ = model.GetAuthContext(ctx)
		result <- ctx.Err()
		return nil
	})

	<-started
	cancel()

	select {
	case err := <-result:
		gt.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not finish")
	}
	gt.NotNil(t, caller)
	gt.Equal(t, caller.UserID, types.UserID("user-1"))
	gt.Equal(t, caller.Role, types.UserRoleCoach)
}
