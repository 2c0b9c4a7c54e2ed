package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

func TestEffortPolicyWindow(t *testing.T) {
	p := model.DefaultEffortPolicy()
	now := date(t, "2024-01-24") // Wednesday

	testCases := []struct {
		name string
		date string
		ok   bool
	}{
		{"Today", "2024-01-24", true},
		{"Later in current week", "2024-01-28", true},
		{"Monday of previous week", "2024-01-15", true},
		{"Sunday two weeks ago", "2024-01-14", false},
		{"Next week", "2024-01-29", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := p.CheckWindow(date(t, tc.date), now)
			if tc.ok {
				gt.NoError(t, err)
			} else {
				gt.Error(t, err)
				gt.True(t, errors.Is(err, model.ErrSubmissionWindow))
				gt.True(t, model.IsValidation(err))
			}
		})
	}

	t.Run("No past weeks", func(t *testing.T) {
		strict := p
		strict.PastWeeks = 0
		gt.Error(t, strict.CheckWindow(date(t, "2024-01-21"), now))
		gt.NoError(t, strict.CheckWindow(date(t, "2024-01-22"), now))
	})
}

func TestEffortPolicyHours(t *testing.T) {
	p := model.DefaultEffortPolicy()

	gt.NoError(t, p.CheckRoleHours(types.RoleTrainer, 9))
	gt.Error(t, p.CheckRoleHours(types.RoleTrainer, 9.5))
	gt.Error(t, p.CheckRoleHours(types.RoleTrainer, 0))

	gt.NoError(t, p.CheckDayTotal(date(t, "2024-01-24"), 9))
	err := p.CheckDayTotal(date(t, "2024-01-24"), 10)
	gt.Error(t, err)
	gt.True(t, model.IsValidation(err))
}

func TestEffortPolicyValidate(t *testing.T) {
	gt.NoError(t, model.DefaultEffortPolicy().Validate())
	gt.Error(t, model.EffortPolicy{MaxHoursPerRole: 0, MaxHoursPerDay: 9}.Validate())
	gt.Error(t, model.EffortPolicy{MaxHoursPerRole: 9, MaxHoursPerDay: 30}.Validate())
	gt.Error(t, model.EffortPolicy{MaxHoursPerRole: 9, MaxHoursPerDay: 9, PastWeeks: -1}.Validate())
}
