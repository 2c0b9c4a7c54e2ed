package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

func TestCohortCreate(t *testing.T) {
	ctx := newContext()
	f := newFixture(t)
	creator := f.createUser(t, "A1", "creator@example.com", types.UserRoleAdmin)
	other := f.createUser(t, "A2", "other@example.com", types.UserRoleAdmin)
	coach := f.createUser(t, "C1", "coach@example.com", types.UserRoleCoach)

	cohort, err := f.cohorts.CreateCohort(ctx, usecase.CohortInput{
		Code:      "JAVA-01",
		StartDate: "2024-01-15",
		EndDate:   "2024-02-14",
	}, creator.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, "JAVA-01", cohort.Code)
	// 9 of 30 days elapsed on 2024-01-24
	gt.Equal(t, 30, cohort.Progress)
	gt.True(t, cohort.Active)

	t.Run("other admins are notified", func(t *testing.T) {
		list, err := f.notifications.ListNotifications(ctx, other.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(list.Items))
		gt.Equal(t, types.NotificationCohortCreated, list.Items[0].Type)
		gt.Equal(t, cohort.ID.String(), list.Items[0].EntityID)
		gt.Equal(t, 1, list.UnreadCount)

		mine, err := f.notifications.ListNotifications(ctx, creator.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 0, len(mine.Items))

		coachList, err := f.notifications.ListNotifications(ctx, coach.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 0, len(coachList.Items))
	})

	t.Run("duplicate code is a conflict", func(t *testing.T) {
		_, err := f.cohorts.CreateCohort(ctx, usecase.CohortInput{
			Code: "JAVA-01", StartDate: "2024-03-01", EndDate: "2024-04-01",
		}, creator.ID)
		gt.Error(t, err)
		gt.True(t, model.IsConflict(err))
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		_, err := f.cohorts.CreateCohort(ctx, usecase.CohortInput{
			Code: "BAD", StartDate: "2024-03-01", EndDate: "2024-02-01",
		}, creator.ID)
		gt.Error(t, err)
		gt.True(t, model.IsValidation(err))
	})

	t.Run("missing dates are rejected", func(t *testing.T) {
		_, err := f.cohorts.CreateCohort(ctx, usecase.CohortInput{Code: "NODATE"}, creator.ID)
		gt.Error(t, err)
		gt.True(t, model.IsValidation(err))
	})

	t.Run("update keeps its own code", func(t *testing.T) {
		updated, err := f.cohorts.UpdateCohort(ctx, cohort.ID, usecase.CohortInput{
			Code: "JAVA-01", Skill: "Java FSE", StartDate: "2024-01-15", EndDate: "2024-02-14",
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, "Java FSE", updated.Skill)

		byCode, err := f.cohorts.GetCohortByCode(ctx, "JAVA-01")
		gt.NoError(t, err).Required()
		gt.Equal(t, cohort.ID, byCode.ID)
	})
}

func TestCohortProgress(t *testing.T) {
	f := newFixture(t)

	future := f.createCohort(t, "FUTURE", "2024-03-01", "2024-04-01")
	gt.Equal(t, 0, future.Progress)
	gt.False(t, future.Active)

	past := f.createCohort(t, "PAST", "2023-10-01", "2023-12-01")
	gt.Equal(t, 100, past.Progress)
	gt.False(t, past.Active)
}

func TestCohortAssignments(t *testing.T) {
	ctx := newContext()
	f := newFixture(t)
	cohort := f.createCohort(t, "NET-01", "2024-01-15", "2024-03-15")
	trainer := f.createStakeholder(t, "T1", types.RoleTrainer)
	trainer2 := f.createStakeholder(t, "T2", types.RoleTrainer)
	mentor := f.createStakeholder(t, "M1", types.RoleMentor)

	t.Run("assign coach", func(t *testing.T) {
		coach := f.createUser(t, "C9", "coach9@example.com", types.UserRoleCoach)
		updated, err := f.cohorts.AssignCoach(ctx, cohort.ID, coach.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, coach.ID, updated.CoachID)

		list, err := f.notifications.ListNotifications(ctx, coach.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(list.Items))
		gt.Equal(t, types.NotificationCohortAssignment, list.Items[0].Type)

		admin := f.createUser(t, "A9", "admin9@example.com", types.UserRoleAdmin)
		_, err = f.cohorts.AssignCoach(ctx, cohort.ID, admin.ID)
		gt.True(t, model.IsValidation(err))
	})

	t.Run("primary assignment must match role", func(t *testing.T) {
		_, err := f.cohorts.AssignPrimary(ctx, cohort.ID, types.RoleMentor, trainer.ID)
		gt.Error(t, err)
		gt.True(t, model.IsValidation(err))

		updated, err := f.cohorts.AssignPrimary(ctx, cohort.ID, types.RoleTrainer, trainer.ID)
		gt.NoError(t, err).Required()
		id, ok := updated.PrimaryFor(types.RoleTrainer)
		gt.True(t, ok)
		gt.Equal(t, trainer.ID, id)
	})

	t.Run("additional assignments", func(t *testing.T) {
		_, err := f.cohorts.AddAdditional(ctx, cohort.ID, types.RoleTrainer, trainer2.ID)
		gt.NoError(t, err).Required()

		_, err = f.cohorts.AddAdditional(ctx, cohort.ID, types.RoleTrainer, trainer2.ID)
		gt.Error(t, err)
		gt.True(t, model.IsConflict(err))

		_, err = f.cohorts.AssignPrimary(ctx, cohort.ID, types.RoleMentor, mentor.ID)
		gt.NoError(t, err).Required()

		views, err := f.cohorts.ListAssignments(ctx, cohort.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 3, len(views))
		gt.True(t, views[0].Primary)
		gt.Equal(t, trainer.Name, views[0].StakeholderName)
		gt.False(t, views[2].Primary)
		gt.Equal(t, trainer2.Name, views[2].StakeholderName)

		_, err = f.cohorts.RemoveAdditional(ctx, cohort.ID, types.RoleTrainer, trainer2.ID)
		gt.NoError(t, err).Required()
		_, err = f.cohorts.RemoveAdditional(ctx, cohort.ID, types.RoleTrainer, trainer2.ID)
		gt.True(t, model.IsNotFound(err))
	})
}

func TestCohortWeeks(t *testing.T) {
	ctx := newContext()
	f := newFixture(t)
	cohort := f.createCohort(t, "WEEKS", "2024-01-15", "2024-01-29")

	weeks, err := f.cohorts.Weeks(ctx, cohort.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, 3, len(weeks.Weeks))
	gt.NotNil(t, weeks.Current)
	gt.Equal(t, 2, weeks.Current.WeekNumber)

	later := f.createCohort(t, "LATER", "2024-05-06", "2024-05-20")
	weeks, err = f.cohorts.Weeks(ctx, later.ID)
	gt.NoError(t, err).Required()
	gt.Nil(t, weeks.Current)
}

func TestCohortListFor(t *testing.T) {
	ctx := newContext()
	f := newFixture(t)
	admin := f.createUser(t, "A1", "admin@example.com", types.UserRoleAdmin)
	coach := f.createUser(t, "C1", "coach@example.com", types.UserRoleCoach)
	lead := f.createUser(t, "L1", "lead@example.com", types.UserRoleLocationLead)

	mine := f.createCohort(t, "MINE", "2024-01-15", "2024-02-15")
	_, err := f.cohorts.AssignCoach(ctx, mine.ID, coach.ID)
	gt.NoError(t, err).Required()
	_, err = f.cohorts.CreateCohort(ctx, usecase.CohortInput{
		Code: "ELSEWHERE", TrainingLocation: "Pune", StartDate: "2024-01-15", EndDate: "2024-02-15",
	}, admin.ID)
	gt.NoError(t, err).Required()

	all, err := f.cohorts.ListCohortsFor(ctx, &model.AuthContext{UserID: admin.ID, Role: admin.Role})
	gt.NoError(t, err).Required()
	gt.Equal(t, 2, len(all))

	coached, err := f.cohorts.ListCohortsFor(ctx, &model.AuthContext{UserID: coach.ID, Role: coach.Role})
	gt.NoError(t, err).Required()
	gt.Equal(t, 1, len(coached))
	gt.Equal(t, "MINE", coached[0].Code)

	local, err := f.cohorts.ListCohortsFor(ctx, &model.AuthContext{UserID: lead.ID, Role: lead.Role})
	gt.NoError(t, err).Required()
	gt.Equal(t, 1, len(local))
	gt.Equal(t, "MINE", local[0].Code)

	_, err = f.cohorts.ListCohortsFor(ctx, nil)
	gt.True(t, model.IsForbidden(err))
}
