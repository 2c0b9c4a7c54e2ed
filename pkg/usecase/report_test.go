package usecase_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/usecase"
)

func TestReports(t *testing.T) {
	ctx := newContext()
	ef := newEffortFixture(t)
	reports := usecase.NewReportUseCase(ef.repo, ef.opts...)
	candidates := usecase.NewCandidateUseCase(ef.repo, ef.opts...)

	_, err := candidates.CreateCandidate(ctx, usecase.CandidateInput{CandidateID: "C1", Name: "Asha", CohortID: ef.cohort.ID})
	gt.NoError(t, err).Required()
	ef.createCohort(t, "DONE", "2023-09-01", "2023-11-30")

	for _, in := range []usecase.EffortInput{
		{StakeholderID: ef.trainer.ID, Hours: 4, Date: "2024-01-16"},
		{StakeholderID: ef.trainer.ID, Hours: 3.5, Date: "2024-01-22"},
		{StakeholderID: ef.mentor.ID, Hours: 1.25, Date: "2024-01-23"},
	} {
		in.CohortID = ef.cohort.ID
		_, err := ef.efforts.SubmitEffort(ctx, in, ef.coach.ID)
		gt.NoError(t, err).Required()
	}

	t.Run("dashboard", func(t *testing.T) {
		stats, err := reports.Dashboard(ctx)
		gt.NoError(t, err).Required()
		gt.Equal(t, 2, stats.TotalCohorts)
		gt.Equal(t, 1, stats.ActiveCohorts)
		gt.Equal(t, 1, stats.TotalCandidates)
		gt.Equal(t, 4, stats.TotalStakeholders)
		gt.Equal(t, 8.75, stats.TotalEffortHours)
	})

	t.Run("weekly effort", func(t *testing.T) {
		report, err := reports.WeeklyEffort(ctx, ef.cohort.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, "JAVA-01", report.CohortCode)
		gt.Equal(t, 9, len(report.Rows))
		gt.Equal(t, 8.75, report.TotalHours)

		gt.Equal(t, 4.0, report.Rows[0].TotalHours)
		gt.Equal(t, 1, report.Rows[0].Entries)
		gt.Equal(t, 3.5, report.Rows[1].RoleHours[types.RoleTrainer])
		gt.Equal(t, 1.25, report.Rows[1].RoleHours[types.RoleMentor])
		gt.Equal(t, 2, report.Rows[1].Entries)
		gt.Equal(t, 0.0, report.Rows[2].TotalHours)

		var buf bytes.Buffer
		gt.NoError(t, report.WriteCSV(&buf)).Required()
		records, err := csv.NewReader(&buf).ReadAll()
		gt.NoError(t, err).Required()
		gt.Equal(t, 10, len(records))
		gt.Equal(t, []string{
			"Week", "Week Start", "Week End",
			"Technical Trainer", "Behavioral Trainer", "Mentor", "Buddy Mentor",
			"Total Hours", "Entries",
		}, records[0])
		gt.Equal(t, []string{
			report.Rows[1].WeekLabel, "2024-01-22", "2024-01-28",
			"3.5", "0", "1.25", "0",
			"4.75", "2",
		}, records[2])
	})

	t.Run("unknown cohort", func(t *testing.T) {
		_, err := reports.WeeklyEffort(ctx, "missing")
		gt.True(t, model.IsNotFound(err))
	})
}

func TestRecentActivities(t *testing.T) {
	ctx := newContext()
	ef := newEffortFixture(t)
	reports := usecase.NewReportUseCase(ef.repo, ef.opts...)

	for _, in := range []usecase.EffortInput{
		{StakeholderID: ef.trainer.ID, Hours: 4, Date: "2024-01-16"},
		{StakeholderID: ef.trainer.ID, Hours: 3, Date: "2024-01-22"},
	} {
		in.CohortID = ef.cohort.ID
		_, err := ef.efforts.SubmitEffort(ctx, in, ef.coach.ID)
		gt.NoError(t, err).Required()
	}

	// An older cohort with more submitted weeks than the feed shows
	past := ef.createCohort(t, "DONE", "2023-10-02", "2023-11-26")
	for _, week := range []string{"2023-10-02", "2023-10-09", "2023-10-16", "2023-10-23"} {
		start, err := model.ParseDate(week)
		gt.NoError(t, err).Required()
		s := model.NewWeeklySummary(past.ID, start, testNow)
		s.TotalHours = 5
		gt.NoError(t, ef.repo.PutWeeklySummary(ctx, s)).Required()
	}

	t.Run("newest weeks across cohorts", func(t *testing.T) {
		items, err := reports.RecentActivities(ctx, "")
		gt.NoError(t, err).Required()
		gt.Equal(t, 4, len(items))

		gt.Equal(t, "JAVA-01", items[0].CohortCode)
		gt.Equal(t, "2024-01-22", model.FormatDate(items[0].WeekStart))
		gt.Equal(t, "2024-01-28", model.FormatDate(items[0].WeekEnd))
		gt.Equal(t, 3.0, items[0].TotalHours)
		gt.Equal(t, ef.coach.ID, items[0].SubmittedBy)
		gt.Equal(t, model.RecentActivityTitle, items[0].Title)

		gt.Equal(t, "2024-01-15", model.FormatDate(items[1].WeekStart))
		gt.Equal(t, "DONE", items[2].CohortCode)
		gt.Equal(t, "2023-10-23", model.FormatDate(items[2].WeekStart))
		gt.Equal(t, "2023-10-16", model.FormatDate(items[3].WeekStart))
	})

	t.Run("limited to the cohorts of a coach", func(t *testing.T) {
		items, err := reports.RecentActivities(ctx, ef.coach.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 0, len(items))

		_, err = ef.cohorts.AssignCoach(ctx, past.ID, ef.coach.ID)
		gt.NoError(t, err).Required()

		items, err = reports.RecentActivities(ctx, ef.coach.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, 4, len(items))
		for _, item := range items {
			gt.Equal(t, past.ID, item.CohortID)
		}
	})
}
