package model

import (
	"strings"
	"time"

	"github.com/secmon-lab/ascent/pkg/domain/types"
)

const defaultAreaOfWork = "Daily effort logging"

// Effort is hours a stakeholder spent on a cohort on one day
type Effort struct {
	ID            types.EffortID        `json:"id"`
	CohortID      types.CohortID        `json:"cohort_id"`
	StakeholderID types.StakeholderID   `json:"stakeholder_id"`
	Role          types.StakeholderRole `json:"role"`
	Mode          types.EffortMode      `json:"mode"`
	ReasonVirtual string                `json:"reason_virtual,omitempty"`
	AreaOfWork    string                `json:"area_of_work"`
	Hours         float64               `json:"hours"`
	Date          time.Time             `json:"date"`
	Month         string                `json:"month"` // e.g. "JANUARY"
	UpdatedBy     types.UserID          `json:"updated_by"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// EffortDetail is the hours of one role on one day of a weekly submission
type EffortDetail struct {
	Hours         float64          `json:"hours"`
	Mode          types.EffortMode `json:"mode,omitempty"`
	ReasonVirtual string           `json:"reason_virtual,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// DayLog is one day of a weekly submission
type DayLog struct {
	Date      time.Time                              `json:"date"`
	IsHoliday bool                                   `json:"is_holiday"`
	Roles     map[types.StakeholderRole]EffortDetail `json:"roles"`
}

// Total sums the hours of every role on the day
func (d DayLog) Total() float64 {
	var total float64
	for _, detail := range d.Roles {
		total += detail.Hours
	}
	return total
}

// WeeklyEffortSubmission replaces all efforts of a cohort within one week
type WeeklyEffortSubmission struct {
	CohortID  types.CohortID `json:"cohort_id"`
	WeekStart time.Time      `json:"week_start"`
	WeekEnd   time.Time      `json:"week_end"`
	Days      []DayLog       `json:"days"`
	Holidays  []time.Time    `json:"holidays"`
}

// Normalize fills the effort's derived fields
func (e *Effort) Normalize() {
	e.Date = DayOf(e.Date)
	e.Month = MonthName(e.Date)
	if e.Mode != types.EffortModeVirtual {
		e.Mode = types.EffortModeInPerson
		e.ReasonVirtual = ""
	}
	if strings.TrimSpace(e.AreaOfWork) == "" {
		e.AreaOfWork = defaultAreaOfWork
	}
}

// NewDayEffort builds the effort of one role from a day log entry
func NewDayEffort(cohortID types.CohortID, stakeholderID types.StakeholderID, role types.StakeholderRole, date time.Time, detail EffortDetail, by types.UserID, now time.Time) *Effort {
	e := &Effort{
		ID:            types.NewEffortID(),
		CohortID:      cohortID,
		StakeholderID: stakeholderID,
		Role:          role,
		Mode:          detail.Mode,
		ReasonVirtual: detail.ReasonVirtual,
		AreaOfWork:    detail.Notes,
		Hours:         detail.Hours,
		Date:          date,
		UpdatedBy:     by,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	e.Normalize()
	return e
}

// MonthName returns the upper-case English month of t
func MonthName(t time.Time) string {
	return strings.ToUpper(t.Month().String())
}
