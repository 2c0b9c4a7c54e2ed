package usecase_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/repository"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

// Wednesday of the week starting 2024-01-22
var testNow = time.Date(2024, 1, 24, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

func newContext() context.Context {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return ctxlog.With(context.Background(), logger)
}

type fixture struct {
	repo          interfaces.Repository
	opts          []usecase.Option
	notifications *usecase.NotificationUseCase
	users         *usecase.UserUseCase
	stakeholders  *usecase.StakeholderUseCase
	cohorts       *usecase.CohortUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := repository.NewMemory()
	opts := []usecase.Option{usecase.WithClock(fixedClock)}
	notifications := usecase.NewNotificationUseCase(repo, usecase.WithNotificationOptions(opts...))

	return &fixture{
		repo:          repo,
		opts:          opts,
		notifications: notifications,
		users:         usecase.NewUserUseCase(repo, opts...),
		stakeholders:  usecase.NewStakeholderUseCase(repo, opts...),
		cohorts:       usecase.NewCohortUseCase(repo, notifications, opts...),
	}
}

func (f *fixture) createUser(t *testing.T, empID, email string, role types.UserRole) *model.User {
	t.Helper()
	user, err := f.users.CreateUser(newContext(), usecase.CreateUserInput{
		EmpID:    empID,
		Name:     "User " + empID,
		Email:    email,
		Password: "secret-" + empID,
		Role:     role,
		Location: "Chennai",
	})
	gt.NoError(t, err).Required()
	return user
}

func (f *fixture) createStakeholder(t *testing.T, empID string, role types.StakeholderRole) *model.Stakeholder {
	t.Helper()
	s, err := f.stakeholders.CreateStakeholder(newContext(), usecase.StakeholderInput{
		EmpID: empID,
		Name:  "Stakeholder " + empID,
		Email: empID + "@example.com",
		Role:  role,
	})
	gt.NoError(t, err).Required()
	return s
}

func (f *fixture) createCohort(t *testing.T, code, start, end string) *usecase.CohortView {
	t.Helper()
	cohort, err := f.cohorts.CreateCohort(newContext(), usecase.CohortInput{
		Code:             code,
		Skill:            "Java",
		TrainingLocation: "Chennai",
		StartDate:        start,
		EndDate:          end,
	}, "")
	gt.NoError(t, err).Required()
	return cohort
}
