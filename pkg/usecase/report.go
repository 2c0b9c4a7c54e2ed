package usecase

import (
	"context"
	"io"
	"sort"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// WeeklyEffortReport is the week-by-week effort of one cohort
type WeeklyEffortReport struct {
	CohortID   types.CohortID          `json:"cohort_id"`
	CohortCode string                  `json:"cohort_code"`
	Rows       []model.WeeklyEffortRow `json:"rows"`
	TotalHours float64                 `json:"total_hours"`
}

// ReportUseCase computes dashboards and effort reports
type ReportUseCase struct {
	repo interfaces.Repository
	config
}

// NewReportUseCase creates a new report usecase
func NewReportUseCase(repo interfaces.Repository, opts ...Option) *ReportUseCase {
	return &ReportUseCase{
		repo:   repo,
		config: newConfig(opts),
	}
}

// Dashboard collects the headline counters. The underlying lists are loaded
// concurrently.
func (r *ReportUseCase) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	now := r.now()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		cohorts, err := r.repo.ListCohorts(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to list cohorts")
		}
		stats.TotalCohorts = len(cohorts)
		for _, c := range cohorts {
			if c.IsActive(now) {
				stats.ActiveCohorts++
			}
		}
		return nil
	})
	eg.Go(func() error {
		candidates, err := r.repo.ListCandidates(ctx, "")
		if err != nil {
			return goerr.Wrap(err, "failed to list candidates")
		}
		stats.TotalCandidates = len(candidates)
		return nil
	})
	eg.Go(func() error {
		stakeholders, err := r.repo.ListStakeholders(ctx, "")
		if err != nil {
			return goerr.Wrap(err, "failed to list stakeholders")
		}
		stats.TotalStakeholders = len(stakeholders)
		return nil
	})
	eg.Go(func() error {
		efforts, err := r.repo.ListEfforts(ctx, interfaces.EffortFilter{})
		if err != nil {
			return goerr.Wrap(err, "failed to list efforts")
		}
		var total float64
		for _, e := range efforts {
			total += e.Hours
		}
		stats.TotalEffortHours = model.RoundHours(total)
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// WeeklyEffort reports the effort of a cohort for every week of its program
func (r *ReportUseCase) WeeklyEffort(ctx context.Context, cohortID types.CohortID) (*WeeklyEffortReport, error) {
	cohort, err := r.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}
	efforts, err := r.repo.ListEfforts(ctx, interfaces.EffortFilter{CohortID: cohortID})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list efforts", goerr.V("cohort_id", cohortID))
	}

	report := &WeeklyEffortReport{
		CohortID:   cohort.ID,
		CohortCode: cohort.Code,
		Rows:       model.BuildWeeklyEffortRows(cohort.Weeks(), efforts),
	}
	for _, row := range report.Rows {
		report.TotalHours += row.TotalHours
	}
	report.TotalHours = model.RoundHours(report.TotalHours)
	return report, nil
}

const recentActivityLimit = 4

// RecentActivities returns the latest weekly effort submissions across
// cohorts. A non-empty coachID keeps only the cohorts coached by that user.
func (r *ReportUseCase) RecentActivities(ctx context.Context, coachID types.UserID) ([]*model.RecentActivity, error) {
	cohorts, err := r.repo.ListCohorts(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list cohorts")
	}

	items := make([]*model.RecentActivity, 0)
	for _, cohort := range cohorts {
		if coachID != "" && cohort.CoachID != coachID {
			continue
		}
		summaries, err := r.repo.ListWeeklySummaries(ctx, cohort.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list weekly summaries", goerr.V("cohort_id", cohort.ID))
		}
		for _, s := range summaries {
			items = append(items, model.NewRecentActivity(cohort, s))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].WeekStart.Equal(items[j].WeekStart) {
			return items[i].WeekStart.After(items[j].WeekStart)
		}
		return items[i].CohortCode < items[j].CohortCode
	})
	if len(items) > recentActivityLimit {
		items = items[:recentActivityLimit]
	}
	return items, nil
}

// WriteCSV writes the report with one row per week and one column per role
func (rep *WeeklyEffortReport) WriteCSV(w io.Writer) error {
	headers := []string{"Week", "Week Start", "Week End"}
	for _, role := range types.StakeholderRoles {
		headers = append(headers, role.DisplayName())
	}
	headers = append(headers, "Total Hours", "Entries")

	rows := make([][]string, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		record := []string{
			row.WeekLabel,
			model.FormatDate(row.WeekStart),
			model.FormatDate(row.WeekEnd),
		}
		for _, role := range types.StakeholderRoles {
			record = append(record, formatHours(row.RoleHours[role]))
		}
		record = append(record, formatHours(row.TotalHours), strconv.Itoa(row.Entries))
		rows = append(rows, record)
	}
	return WriteCSV(w, headers, rows)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(model.RoundHours(h), 'f', -1, 64)
}
