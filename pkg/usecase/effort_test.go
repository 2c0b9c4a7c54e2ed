package usecase_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

type effortFixture struct {
	*fixture
	efforts   *usecase.EffortUseCase
	cohort    *usecase.CohortView
	trainer   *model.Stakeholder
	extra     *model.Stakeholder
	mentor    *model.Stakeholder
	bhTrainer *model.Stakeholder
	coach     *model.User
	admin     *model.User
}

func newEffortFixture(t *testing.T) *effortFixture {
	t.Helper()
	ctx := newContext()
	f := newFixture(t)
	ef := &effortFixture{
		fixture:   f,
		efforts:   usecase.NewEffortUseCase(f.repo, f.notifications, f.opts...),
		cohort:    f.createCohort(t, "JAVA-01", "2024-01-15", "2024-03-15"),
		trainer:   f.createStakeholder(t, "T1", types.RoleTrainer),
		extra:     f.createStakeholder(t, "T2", types.RoleTrainer),
		mentor:    f.createStakeholder(t, "M1", types.RoleMentor),
		bhTrainer: f.createStakeholder(t, "B1", types.RoleBHTrainer),
		coach:     f.createUser(t, "C1", "coach@example.com", types.UserRoleCoach),
		admin:     f.createUser(t, "A1", "admin@example.com", types.UserRoleAdmin),
	}

	for role, id := range map[types.StakeholderRole]types.StakeholderID{
		types.RoleTrainer:   ef.trainer.ID,
		types.RoleMentor:    ef.mentor.ID,
		types.RoleBHTrainer: ef.bhTrainer.ID,
	} {
		_, err := f.cohorts.AssignPrimary(ctx, ef.cohort.ID, role, id)
		gt.NoError(t, err).Required()
	}
	return ef
}

func TestSubmitEffort(t *testing.T) {
	ctx := newContext()
	ef := newEffortFixture(t)

	effort, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
		CohortID:      ef.cohort.ID,
		StakeholderID: ef.trainer.ID,
		Mode:          types.EffortModeVirtual,
		ReasonVirtual: "Trainer travelling",
		Hours:         4,
		Date:          "2024-01-23",
	}, ef.coach.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, types.RoleTrainer, effort.Role)
	gt.Equal(t, "JANUARY", effort.Month)
	gt.Equal(t, "Daily effort logging", effort.AreaOfWork)
	gt.Equal(t, types.EffortModeVirtual, effort.Mode)

	t.Run("summary of the week is refreshed", func(t *testing.T) {
		summary, err := ef.efforts.GetWeeklySummary(ctx, ef.cohort.ID, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC))
		gt.NoError(t, err).Required()
		gt.Equal(t, 4.0, summary.TotalHours)
		gt.Equal(t, 4.0, summary.Hours(types.RoleTrainer))
		gt.Equal(t, ef.coach.ID, summary.SubmittedBy)
	})

	t.Run("admins are notified", func(t *testing.T) {
		list, err := ef.notifications.ListNotifications(ctx, ef.admin.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(list.Items))
		gt.Equal(t, types.NotificationReportSubmitted, list.Items[0].Type)
	})

	t.Run("previous week is still open", func(t *testing.T) {
		_, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
			CohortID: ef.cohort.ID, StakeholderID: ef.mentor.ID, Hours: 2, Date: "2024-01-16",
		}, ef.coach.ID)
		gt.NoError(t, err)
	})

	t.Run("older and future weeks are closed", func(t *testing.T) {
		for _, date := range []string{"2024-01-12", "2024-01-29"} {
			_, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
				CohortID: ef.cohort.ID, StakeholderID: ef.mentor.ID, Hours: 2, Date: date,
			}, ef.coach.ID)
			gt.Error(t, err)
			gt.True(t, model.IsValidation(err))
		}
	})

	t.Run("hours must be within the role limit", func(t *testing.T) {
		for _, hours := range []float64{0, -1, 9.5} {
			_, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
				CohortID: ef.cohort.ID, StakeholderID: ef.mentor.ID, Hours: hours, Date: "2024-01-24",
			}, ef.coach.ID)
			gt.Error(t, err)
			gt.True(t, model.IsValidation(err))
		}
	})

	t.Run("daily cumulative limit", func(t *testing.T) {
		_, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
			CohortID: ef.cohort.ID, StakeholderID: ef.mentor.ID, Hours: 6, Date: "2024-01-23",
		}, ef.coach.ID)
		gt.Error(t, err)
		gt.True(t, model.IsValidation(err))

		_, err = ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
			CohortID: ef.cohort.ID, StakeholderID: ef.mentor.ID, Hours: 5, Date: "2024-01-23",
		}, ef.coach.ID)
		gt.NoError(t, err)
	})

	t.Run("unknown stakeholder", func(t *testing.T) {
		_, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
			CohortID: ef.cohort.ID, StakeholderID: "missing", Hours: 1, Date: "2024-01-24",
		}, ef.coach.ID)
		gt.True(t, model.IsNotFound(err))
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
			CohortID: ef.cohort.ID, StakeholderID: ef.mentor.ID, Hours: 1, Date: "24/01/2024",
		}, ef.coach.ID)
		gt.True(t, model.IsValidation(err))
	})
}

func TestSubmitWeeklyEffort(t *testing.T) {
	ctx := newContext()
	ef := newEffortFixture(t)

	_, err := ef.cohorts.AddAdditional(ctx, ef.cohort.ID, types.RoleTrainer, ef.extra.ID)
	gt.NoError(t, err).Required()

	old, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
		CohortID: ef.cohort.ID, StakeholderID: ef.trainer.ID, Hours: 8, Date: "2024-01-25",
	}, ef.coach.ID)
	gt.NoError(t, err).Required()

	input := usecase.WeeklyEffortInput{
		CohortID:  ef.cohort.ID,
		WeekStart: "2024-01-24",
		Days: []usecase.DayInput{
			{
				Date: "2024-01-22",
				Roles: map[types.StakeholderRole]model.EffortDetail{
					types.RoleTrainer: {Hours: 3, Notes: "Spring basics"},
					types.RoleMentor:  {Hours: 2, Mode: types.EffortModeVirtual, ReasonVirtual: "Remote"},
				},
			},
			{Date: "2024-01-23", IsHoliday: true},
			{
				Date: "2024-01-24",
				Roles: map[types.StakeholderRole]model.EffortDetail{
					types.RoleTrainer:   {Hours: 0},
					types.RoleBHTrainer: {Hours: 4},
				},
			},
		},
	}

	t.Run("invalid week leaves existing efforts untouched", func(t *testing.T) {
		bad := input
		bad.Days = []usecase.DayInput{{
			Date: "2024-01-22",
			Roles: map[types.StakeholderRole]model.EffortDetail{
				types.RoleTrainer: {Hours: 5},
				types.RoleMentor:  {Hours: 5},
			},
		}}
		_, err := ef.efforts.SubmitWeeklyEffort(ctx, bad, ef.coach.ID)
		gt.Error(t, err)
		gt.True(t, model.IsValidation(err))

		_, err = ef.efforts.GetEffort(ctx, old.ID)
		gt.NoError(t, err)
	})

	t.Run("role without assignment is rejected", func(t *testing.T) {
		bad := input
		bad.Days = []usecase.DayInput{{
			Date:  "2024-01-22",
			Roles: map[types.StakeholderRole]model.EffortDetail{types.RoleBuddyMentor: {Hours: 1}},
		}}
		_, err := ef.efforts.SubmitWeeklyEffort(ctx, bad, ef.coach.ID)
		gt.True(t, model.IsValidation(err))
	})

	t.Run("day outside the week is rejected", func(t *testing.T) {
		bad := input
		bad.Days = []usecase.DayInput{{Date: "2024-01-29"}}
		_, err := ef.efforts.SubmitWeeklyEffort(ctx, bad, ef.coach.ID)
		gt.True(t, model.IsValidation(err))
	})

	t.Run("same day twice cannot exceed the daily limit", func(t *testing.T) {
		bad := input
		bad.Days = []usecase.DayInput{
			{Date: "2024-01-22", Roles: map[types.StakeholderRole]model.EffortDetail{types.RoleTrainer: {Hours: 9}}},
			{Date: "2024-01-22", Roles: map[types.StakeholderRole]model.EffortDetail{types.RoleMentor: {Hours: 9}}},
		}
		_, err := ef.efforts.SubmitWeeklyEffort(ctx, bad, ef.coach.ID)
		gt.True(t, model.IsValidation(err))

		_, err = ef.efforts.GetEffort(ctx, old.ID)
		gt.NoError(t, err)
	})

	summary, err := ef.efforts.SubmitWeeklyEffort(ctx, input, ef.coach.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, "2024-01-22", model.FormatDate(summary.WeekStart))
	gt.Equal(t, 9.0, summary.TotalHours)
	gt.Equal(t, 3.0, summary.Hours(types.RoleTrainer))
	gt.Equal(t, 2.0, summary.Hours(types.RoleMentor))
	gt.Equal(t, 4.0, summary.Hours(types.RoleBHTrainer))
	gt.Equal(t, 1, len(summary.Holidays))
	gt.Equal(t, "2024-01-23", model.FormatDate(summary.Holidays[0]))

	t.Run("previous efforts of the week are replaced", func(t *testing.T) {
		_, err := ef.efforts.GetEffort(ctx, old.ID)
		gt.True(t, model.IsNotFound(err))

		efforts, err := ef.efforts.ListEfforts(ctx, ef.cohort.ID,
			time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 28, 0, 0, 0, 0, time.UTC))
		gt.NoError(t, err).Required()
		gt.Equal(t, 3, len(efforts))

		for _, e := range efforts {
			switch e.Role {
			case types.RoleTrainer:
				// additional assignment wins over the primary one
				gt.Equal(t, ef.extra.ID, e.StakeholderID)
				gt.Equal(t, "Spring basics", e.AreaOfWork)
			case types.RoleMentor:
				gt.Equal(t, ef.mentor.ID, e.StakeholderID)
				gt.Equal(t, types.EffortModeVirtual, e.Mode)
			case types.RoleBHTrainer:
				gt.Equal(t, ef.bhTrainer.ID, e.StakeholderID)
				gt.Equal(t, types.EffortModeInPerson, e.Mode)
			}
		}
	})

	t.Run("resubmission is idempotent", func(t *testing.T) {
		again, err := ef.efforts.SubmitWeeklyEffort(ctx, input, ef.coach.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 9.0, again.TotalHours)

		efforts, err := ef.efforts.ListEfforts(ctx, ef.cohort.ID, time.Time{}, time.Time{})
		gt.NoError(t, err).Required()
		gt.Equal(t, 3, len(efforts))

		summaries, err := ef.efforts.ListWeeklySummaries(ctx, ef.cohort.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(summaries))
	})
}

func TestDeleteEffortRefreshesSummary(t *testing.T) {
	ctx := newContext()
	ef := newEffortFixture(t)

	first, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
		CohortID: ef.cohort.ID, StakeholderID: ef.trainer.ID, Hours: 3, Date: "2024-01-22",
	}, ef.coach.ID)
	gt.NoError(t, err).Required()
	_, err = ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
		CohortID: ef.cohort.ID, StakeholderID: ef.mentor.ID, Hours: 2, Date: "2024-01-24",
	}, ef.coach.ID)
	gt.NoError(t, err).Required()

	gt.NoError(t, ef.efforts.DeleteEffort(ctx, first.ID, ef.coach.ID)).Required()

	summary, err := ef.efforts.GetWeeklySummary(ctx, ef.cohort.ID, time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC))
	gt.NoError(t, err).Required()
	gt.Equal(t, 2.0, summary.TotalHours)
	gt.Equal(t, 0.0, summary.Hours(types.RoleTrainer))

	byStakeholder, err := ef.efforts.ListEffortsByStakeholder(ctx, ef.mentor.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, 1, len(byStakeholder))

	err = ef.efforts.DeleteEffort(ctx, first.ID, ef.coach.ID)
	gt.True(t, model.IsNotFound(err))
}

func TestEffortsByWeek(t *testing.T) {
	ctx := newContext()
	ef := newEffortFixture(t)

	for _, date := range []string{"2024-01-16", "2024-01-17", "2024-01-23"} {
		_, err := ef.efforts.SubmitEffort(ctx, usecase.EffortInput{
			CohortID: ef.cohort.ID, StakeholderID: ef.trainer.ID, Hours: 1, Date: date,
		}, ef.coach.ID)
		gt.NoError(t, err).Required()
	}

	result, err := ef.efforts.EffortsByWeek(ctx, ef.cohort.ID)
	gt.NoError(t, err).Required()
	gt.Equal(t, 9, len(result.Weeks))
	gt.Equal(t, 2, len(result.Efforts["week-1"]))
	gt.Equal(t, 1, len(result.Efforts["week-2"]))
	_, ok := result.Efforts["week-3"]
	gt.False(t, ok)
}
