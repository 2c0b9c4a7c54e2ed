package model

import (
	"math"
	"time"

	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// WeeklySummary aggregates the effort of one cohort over one calendar week.
// There is at most one summary per (cohort, week start).
type WeeklySummary struct {
	ID          types.WeeklySummaryID             `json:"id"`
	CohortID    types.CohortID                    `json:"cohort_id"`
	WeekStart   time.Time                         `json:"week_start"`
	WeekEnd     time.Time                         `json:"week_end"`
	TotalHours  float64                           `json:"total_hours"`
	RoleHours   map[types.StakeholderRole]float64 `json:"role_hours"`
	Holidays    []time.Time                       `json:"holidays"`
	SubmittedBy types.UserID                      `json:"submitted_by"`
	SubmittedAt time.Time                         `json:"submitted_at"`
	CreatedAt   time.Time                         `json:"created_at"`
}

// WeeklySummaryIDFor derives the summary ID of a cohort week
func WeeklySummaryIDFor(cohortID types.CohortID, weekStart time.Time) types.WeeklySummaryID {
	return types.WeeklySummaryID(cohortID.String() + "_" + FormatDate(StartOfWeek(weekStart)))
}

// NewWeeklySummary creates an empty summary for the week containing weekStart
func NewWeeklySummary(cohortID types.CohortID, weekStart time.Time, now time.Time) *WeeklySummary {
	start := StartOfWeek(weekStart)
	return &WeeklySummary{
		ID:        WeeklySummaryIDFor(cohortID, start),
		CohortID:  cohortID,
		WeekStart: start,
		WeekEnd:   start.AddDate(0, 0, 6),
		RoleHours: make(map[types.StakeholderRole]float64),
		CreatedAt: now,
	}
}

// Recompute replaces the hour totals with the sums of efforts inside the week
func (s *WeeklySummary) Recompute(efforts []*Effort) {
	s.RoleHours = make(map[types.StakeholderRole]float64)
	s.TotalHours = 0
	for _, e := range efforts {
		d := DayOf(e.Date)
		if d.Before(s.WeekStart) || d.After(s.WeekEnd) {
			continue
		}
		s.RoleHours[e.Role] += e.Hours
		s.TotalHours += e.Hours
	}
}

// Hours returns the hours booked for role, zero when none
func (s *WeeklySummary) Hours(role types.StakeholderRole) float64 {
	if s == nil {
		return 0
	}
	return s.RoleHours[role]
}

// RoundHours rounds hours to two decimals for display
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
