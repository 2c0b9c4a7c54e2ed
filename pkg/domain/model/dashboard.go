package model

import (
	"time"

	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// DashboardStats holds the headline counters of the console
type DashboardStats struct {
	TotalCohorts      int     `json:"total_cohorts"`
	ActiveCohorts     int     `json:"active_cohorts"`
	TotalCandidates   int     `json:"total_candidates"`
	TotalStakeholders int     `json:"total_stakeholders"`
	TotalEffortHours  float64 `json:"total_effort_hours"`
}

// WeeklyEffortRow holds the effort of one cohort week
type WeeklyEffortRow struct {
	WeekID     string                            `json:"week_id"`
	WeekLabel  string                            `json:"week_label"`
	WeekNumber int                               `json:"week_number"`
	WeekStart  time.Time                         `json:"week_start"`
	WeekEnd    time.Time                         `json:"week_end"`
	RoleHours  map[types.StakeholderRole]float64 `json:"role_hours"` // role -> hours
	TotalHours float64                           `json:"total_hours"`
	Entries    int                               `json:"entries"`
}

// BuildWeeklyEffortRows sums grouped efforts per week. Every week gets a row,
// with zero hours when nothing was logged.
func BuildWeeklyEffortRows(weeks []WeekRange, efforts []*Effort) []WeeklyEffortRow {
	grouped := GroupByWeek(efforts, weeks, func(e *Effort) time.Time { return e.Date })

	rows := make([]WeeklyEffortRow, 0, len(weeks))
	for _, w := range weeks {
		row := WeeklyEffortRow{
			WeekID:     w.ID,
			WeekLabel:  w.Label,
			WeekNumber: w.WeekNumber,
			WeekStart:  w.StartDate,
			WeekEnd:    w.LastDay(),
			RoleHours:  make(map[types.StakeholderRole]float64),
		}
		for _, e := range grouped[w.ID] {
			row.RoleHours[e.Role] += e.Hours
			row.TotalHours += e.Hours
			row.Entries++
		}
		rows = append(rows, row)
	}
	return rows
}
