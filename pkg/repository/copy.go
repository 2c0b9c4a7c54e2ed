package repository

import (
	"sort"
	"time"

	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

func copyCohort(c *model.Cohort) *model.Cohort {
	cCopy := *c
	cCopy.Primary = append([]model.Assignment(nil), c.Primary...)
	cCopy.Additional = append([]model.Assignment(nil), c.Additional...)
	return &cCopy
}

func copySummary(s *model.WeeklySummary) *model.WeeklySummary {
	sCopy := *s
	sCopy.RoleHours = make(map[types.StakeholderRole]float64, len(s.RoleHours))
	for role, h := range s.RoleHours {
		sCopy.RoleHours[role] = h
	}
	sCopy.Holidays = append([]time.Time(nil), s.Holidays...)
	return &sCopy
}

func sortCohorts(cohorts []*model.Cohort) {
	sort.Slice(cohorts, func(i, j int) bool {
		if !cohorts[i].StartDate.Equal(cohorts[j].StartDate) {
			return cohorts[i].StartDate.Before(cohorts[j].StartDate)
		}
		return cohorts[i].Code < cohorts[j].Code
	})
}

func sortEfforts(efforts []*model.Effort) {
	sort.SliceStable(efforts, func(i, j int) bool {
		if !efforts[i].Date.Equal(efforts[j].Date) {
			return efforts[i].Date.Before(efforts[j].Date)
		}
		return efforts[i].ID < efforts[j].ID
	})
}

func sortNotifications(notifications []*model.Notification) {
	sort.Slice(notifications, func(i, j int) bool {
		if !notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
		}
		return notifications[i].ID > notifications[j].ID
	})
}
