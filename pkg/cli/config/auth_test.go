package config_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/cli/config"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/repository"
)

func TestAuthConfigure(t *testing.T) {
	ctx := ctxlog.With(context.Background(), slog.New(slog.NewTextHandler(os.Stdout, nil)))

	t.Run("bootstraps the admin once", func(t *testing.T) {
		repo := repository.NewMemory()
		cfg := config.Auth{
			JWTSecret:     strings.Repeat("s", 32),
			TokenTTL:      time.Hour,
			AdminEmail:    "root@example.com",
			AdminPassword: "root-password",
			AdminName:     "Root",
		}

		auth, err := cfg.Configure(ctx, repo)
		gt.NoError(t, err).Required()
		_, err = cfg.Configure(ctx, repo)
		gt.NoError(t, err).Required()

		users, err := repo.ListUsers(ctx)
		gt.NoError(t, err).Required()
		gt.Equal(t, len(users), 1)
		gt.Equal(t, users[0].Role, types.UserRoleAdmin)

		token, user, err := auth.Login(ctx, "root@example.com", "root-password")
		gt.NoError(t, err).Required()
		gt.Equal(t, user.Name, "Root")

		authCtx, err := auth.ValidateToken(ctx, token)
		gt.NoError(t, err).Required()
		gt.Equal(t, authCtx.UserID, user.ID)
	})

	t.Run("random secret when unset", func(t *testing.T) {
		cfg := config.Auth{TokenTTL: time.Hour}
		auth, err := cfg.Configure(ctx, repository.NewMemory())
		gt.NoError(t, err)
		gt.NotNil(t, auth)
	})

	t.Run("invalid settings", func(t *testing.T) {
		gt.Error(t, (&config.Auth{TokenTTL: 0}).Validate())
		gt.Error(t, (&config.Auth{TokenTTL: time.Hour, AdminEmail: "a@example.com"}).Validate())
		gt.Error(t, (&config.Auth{TokenTTL: time.Hour, JWTSecret: "short"}).Validate())
	})
}
