package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// Activity is a free-form entry in the activity log of a cohort, such as a
// mock interview or a review session run by its coach
type Activity struct {
	ID          types.ActivityID `json:"id"`
	CohortID    types.CohortID   `json:"cohort_id"`
	CoachID     types.UserID     `json:"coach_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Validate checks the required fields
func (a *Activity) Validate() error {
	if a.CohortID == "" {
		return validationError("cohort ID is required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return validationError("activity title is required")
	}
	if a.Date.IsZero() {
		return validationError("activity date is required")
	}
	return nil
}

// SortActivities orders activities newest date first, then newest creation
func SortActivities(activities []*Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		if !activities[i].Date.Equal(activities[j].Date) {
			return activities[i].Date.After(activities[j].Date)
		}
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
}

// RecentActivityTitle labels weekly submissions in the activity feed
const RecentActivityTitle = "Weekly Effort Submission"

// RecentActivity is a weekly effort submission shown in the activity feed
type RecentActivity struct {
	SummaryID   types.WeeklySummaryID `json:"summary_id"`
	CohortID    types.CohortID        `json:"cohort_id"`
	CohortCode  string                `json:"cohort_code"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	WeekStart   time.Time             `json:"week_start"`
	WeekEnd     time.Time             `json:"week_end"`
	TotalHours  float64               `json:"total_hours"`
	SubmittedBy types.UserID          `json:"submitted_by"`
}

// NewRecentActivity describes the submission of summary for cohort
func NewRecentActivity(cohort *Cohort, summary *WeeklySummary) *RecentActivity {
	return &RecentActivity{
		SummaryID:   summary.ID,
		CohortID:    cohort.ID,
		CohortCode:  cohort.Code,
		Title:       RecentActivityTitle,
		Description: fmt.Sprintf("Performance brief for week of %s", FormatDate(summary.WeekStart)),
		WeekStart:   summary.WeekStart,
		WeekEnd:     summary.WeekEnd,
		TotalHours:  summary.TotalHours,
		SubmittedBy: summary.SubmittedBy,
	}
}
