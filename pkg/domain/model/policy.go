package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// EffortPolicy bounds what can be logged as effort
type EffortPolicy struct {
	MaxHoursPerRole float64 `yaml:"max_hours_per_role"` // per stakeholder role per day
	MaxHoursPerDay  float64 `yaml:"max_hours_per_day"`  // cumulative across roles per day
	PastWeeks       int     `yaml:"past_weeks"`         // closed weeks still open for submission
}

// DefaultEffortPolicy is a 9 hour working day with the previous week still open
func DefaultEffortPolicy() EffortPolicy {
	return EffortPolicy{
		MaxHoursPerRole: 9,
		MaxHoursPerDay:  9,
		PastWeeks:       1,
	}
}

// Validate validates the policy
func (p EffortPolicy) Validate() error {
	if p.MaxHoursPerRole <= 0 || p.MaxHoursPerRole > 24 {
		return goerr.New("max_hours_per_role must be within (0, 24]", goerr.V("value", p.MaxHoursPerRole))
	}
	if p.MaxHoursPerDay <= 0 || p.MaxHoursPerDay > 24 {
		return goerr.New("max_hours_per_day must be within (0, 24]", goerr.V("value", p.MaxHoursPerDay))
	}
	if p.PastWeeks < 0 {
		return goerr.New("past_weeks must not be negative", goerr.V("value", p.PastWeeks))
	}
	return nil
}

// CheckWindow rejects dates whose week is neither the current week nor one of
// the allowed past weeks relative to now.
func (p EffortPolicy) CheckWindow(date, now time.Time) error {
	current := StartOfWeek(now)
	earliest := current.AddDate(0, 0, -7*p.PastWeeks)
	week := StartOfWeek(date)

	if week.Before(earliest) || week.After(current) {
		return goerr.Wrap(ErrSubmissionWindow, "date outside submission window",
			goerr.V("date", FormatDate(date)),
			goerr.V("current_week", FormatDate(current)),
			goerr.T(TagValidation))
	}
	return nil
}

// CheckRoleHours validates the hours of a single role on a single day
func (p EffortPolicy) CheckRoleHours(role types.StakeholderRole, hours float64) error {
	if hours <= 0 {
		return validationError("effort hours must be positive", goerr.V("role", role), goerr.V("hours", hours))
	}
	if hours > p.MaxHoursPerRole {
		return validationError("daily effort hours for role exceed the limit",
			goerr.V("role", role),
			goerr.V("hours", hours),
			goerr.V("limit", p.MaxHoursPerRole))
	}
	return nil
}

// CheckDayTotal validates the cumulative hours of all roles on one day
func (p EffortPolicy) CheckDayTotal(date time.Time, total float64) error {
	if total > p.MaxHoursPerDay {
		return validationError("total cumulative effort hours for the day exceed the limit",
			goerr.V("date", FormatDate(date)),
			goerr.V("hours", total),
			goerr.V("limit", p.MaxHoursPerDay))
	}
	return nil
}
