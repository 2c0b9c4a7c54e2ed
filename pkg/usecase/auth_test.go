package usecase_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/repository"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

var testSecret = []byte("test-secret-key-for-hs256-signing")

func TestAuthLogin(t *testing.T) {
	ctx := newContext()
	f := newFixture(t)
	user := f.createUser(t, "E100", "Coach@Example.com", types.UserRoleCoach)
	auth := usecase.NewAuth(f.repo, testSecret, usecase.WithClock(fixedClock))

	t.Run("valid credentials issue a token", func(t *testing.T) {
		token, got, err := auth.Login(ctx, "coach@example.com", "secret-E100")
		gt.NoError(t, err).Required()
		gt.NotEqual(t, "", token)
		gt.Equal(t, user.ID, got.ID)

		authCtx, err := auth.ValidateToken(ctx, token)
		gt.NoError(t, err).Required()
		gt.Equal(t, user.ID, authCtx.UserID)
		gt.Equal(t, types.UserRoleCoach, authCtx.Role)
		gt.Equal(t, user.Name, authCtx.Name)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, _, err := auth.Login(ctx, "coach@example.com", "wrong")
		gt.Error(t, err)
		gt.True(t, model.IsUnauthorized(err))
	})

	t.Run("unknown email is rejected", func(t *testing.T) {
		_, _, err := auth.Login(ctx, "nobody@example.com", "secret-E100")
		gt.Error(t, err)
		gt.True(t, model.IsUnauthorized(err))
	})

	t.Run("inactive user cannot sign in", func(t *testing.T) {
		_, err := f.users.SetStatus(ctx, user.ID, types.UserStatusInactive)
		gt.NoError(t, err).Required()

		_, _, err = auth.Login(ctx, "coach@example.com", "secret-E100")
		gt.Error(t, err)
		gt.True(t, model.IsForbidden(err))
	})
}

func TestAuthValidateToken(t *testing.T) {
	ctx := newContext()
	f := newFixture(t)
	user := f.createUser(t, "E200", "admin@example.com", types.UserRoleAdmin)

	now := testNow
	clock := func() time.Time { return now }
	auth := usecase.NewAuth(f.repo, testSecret, usecase.WithClock(clock), usecase.WithTokenTTL(time.Hour))

	token, _, err := auth.Login(ctx, "admin@example.com", "secret-E200")
	gt.NoError(t, err).Required()

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		other := usecase.NewAuth(f.repo, []byte("another-secret"), usecase.WithClock(clock))
		_, err := other.ValidateToken(ctx, token)
		gt.Error(t, err)
		gt.True(t, model.IsUnauthorized(err))
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := auth.ValidateToken(ctx, "not-a-jwt")
		gt.Error(t, err)
		gt.True(t, model.IsUnauthorized(err))
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		_, err := auth.ValidateToken(ctx, "")
		gt.True(t, model.IsUnauthorized(err))
	})

	t.Run("token of a deactivated user is rejected", func(t *testing.T) {
		_, err := f.users.SetStatus(ctx, user.ID, types.UserStatusInactive)
		gt.NoError(t, err).Required()
		defer func() {
			_, err := f.users.SetStatus(ctx, user.ID, types.UserStatusActive)
			gt.NoError(t, err)
		}()

		_, err = auth.ValidateToken(ctx, token)
		gt.Error(t, err)
		gt.True(t, model.IsForbidden(err))
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		now = testNow.Add(2 * time.Hour)
		defer func() { now = testNow }()

		_, err := auth.ValidateToken(ctx, token)
		gt.Error(t, err)
		gt.True(t, model.IsUnauthorized(err))
	})
}

func TestAuthEnsureAdmin(t *testing.T) {
	ctx := newContext()
	repo := repository.NewMemory()
	auth := usecase.NewAuth(repo, testSecret, usecase.WithClock(fixedClock))

	created, err := auth.EnsureAdmin(ctx, "root@example.com", "bootstrap-pass", "")
	gt.NoError(t, err).Required()
	gt.True(t, created)

	created, err = auth.EnsureAdmin(ctx, "root@example.com", "bootstrap-pass", "")
	gt.NoError(t, err).Required()
	gt.False(t, created)

	token, user, err := auth.Login(ctx, "root@example.com", "bootstrap-pass")
	gt.NoError(t, err).Required()
	gt.NotEqual(t, "", token)
	gt.Equal(t, types.UserRoleAdmin, user.Role)
	gt.Equal(t, "Administrator", user.Name)
}
