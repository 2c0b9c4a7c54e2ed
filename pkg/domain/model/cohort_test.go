package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

func newCohort(t *testing.T, start, end string) *model.Cohort {
	return &model.Cohort{
		ID:        types.NewCohortID(),
		Code:      "JAVA-2024-01",
		StartDate: date(t, start),
		EndDate:   date(t, end),
	}
}

func TestCohortValidate(t *testing.T) {
	t.Run("Valid cohort", func(t *testing.T) {
		gt.NoError(t, newCohort(t, "2024-01-15", "2024-03-15").Validate())
	})

	t.Run("Missing code", func(t *testing.T) {
		c := newCohort(t, "2024-01-15", "2024-03-15")
		c.Code = " "
		err := c.Validate()
		gt.Error(t, err)
		gt.True(t, model.IsValidation(err))
	})

	t.Run("End before start", func(t *testing.T) {
		err := newCohort(t, "2024-03-15", "2024-01-15").Validate()
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("end date is before start date")
	})
}

func TestCohortProgress(t *testing.T) {
	c := newCohort(t, "2024-01-01", "2024-01-11")

	gt.Equal(t, 0, c.Progress(date(t, "2023-12-31")))
	gt.Equal(t, 0, c.Progress(date(t, "2024-01-01")))
	gt.Equal(t, 50, c.Progress(date(t, "2024-01-06")))
	gt.Equal(t, 100, c.Progress(date(t, "2024-01-11")))
	gt.Equal(t, 100, c.Progress(date(t, "2024-02-01")))

	oneDay := newCohort(t, "2024-01-01", "2024-01-01")
	gt.Equal(t, 100, oneDay.Progress(date(t, "2024-01-01")))
}

func TestCohortAssignments(t *testing.T) {
	now := date(t, "2024-01-10")
	c := newCohort(t, "2024-01-15", "2024-03-15")
	trainer := types.NewStakeholderID()
	substitute := types.NewStakeholderID()

	_, ok := c.ResolveStakeholder(types.RoleTrainer)
	gt.False(t, ok)

	c.SetPrimary(types.RoleTrainer, trainer, now)
	id, ok := c.ResolveStakeholder(types.RoleTrainer)
	gt.True(t, ok)
	gt.Equal(t, trainer, id)

	t.Run("Additional assignment takes precedence", func(t *testing.T) {
		gt.NoError(t, c.AddAdditional(types.RoleTrainer, substitute, now)).Required()
		id, ok := c.ResolveStakeholder(types.RoleTrainer)
		gt.True(t, ok)
		gt.Equal(t, substitute, id)
	})

	t.Run("Duplicate additional assignment is a conflict", func(t *testing.T) {
		err := c.AddAdditional(types.RoleTrainer, substitute, now)
		gt.Error(t, err)
		gt.True(t, model.IsConflict(err))
	})

	t.Run("Stakeholder IDs are unique", func(t *testing.T) {
		c.SetPrimary(types.RoleMentor, substitute, now)
		ids := c.StakeholderIDs()
		gt.Equal(t, 2, len(ids))
		gt.Equal(t, trainer, ids[0])
	})

	t.Run("Remove additional assignment", func(t *testing.T) {
		gt.NoError(t, c.RemoveAdditional(types.RoleTrainer, substitute)).Required()
		id, _ := c.ResolveStakeholder(types.RoleTrainer)
		gt.Equal(t, trainer, id)

		err := c.RemoveAdditional(types.RoleTrainer, substitute)
		gt.True(t, model.IsNotFound(err))
	})

	t.Run("Replacing the primary keeps one entry per role", func(t *testing.T) {
		other := types.NewStakeholderID()
		c.SetPrimary(types.RoleTrainer, other, now)
		count := 0
		for _, a := range c.Primary {
			if a.Role == types.RoleTrainer {
				count++
			}
		}
		gt.Equal(t, 1, count)
		id, _ := c.PrimaryFor(types.RoleTrainer)
		gt.Equal(t, other, id)
	})
}

func TestCohortWeeks(t *testing.T) {
	c := newCohort(t, "2024-01-17", "2024-02-02")
	weeks := c.Weeks()
	gt.Equal(t, 3, len(weeks))
	gt.Equal(t, date(t, "2024-01-15"), weeks[0].StartDate)

	gt.True(t, c.IsActive(date(t, "2024-01-17")))
	gt.False(t, c.IsActive(date(t, "2024-01-16")))
}
