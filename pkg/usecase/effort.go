package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// EffortInput is a single effort entry. Date is YYYY-MM-DD.
type EffortInput struct {
	CohortID      types.CohortID        `json:"cohort_id"`
	StakeholderID types.StakeholderID   `json:"stakeholder_id"`
	Role          types.StakeholderRole `json:"role"`
	Mode          types.EffortMode      `json:"mode"`
	ReasonVirtual string                `json:"reason_virtual"`
	AreaOfWork    string                `json:"area_of_work"`
	Hours         float64               `json:"hours"`
	Date          string                `json:"date"`
}

// DayInput is one day of a weekly submission
type DayInput struct {
	Date      string                                       `json:"date"`
	IsHoliday bool                                         `json:"is_holiday"`
	Roles     map[types.StakeholderRole]model.EffortDetail `json:"roles"`
}

// WeeklyEffortInput replaces the efforts of a cohort within one week.
// WeekStart may be any day of the week.
type WeeklyEffortInput struct {
	CohortID  types.CohortID `json:"cohort_id"`
	WeekStart string         `json:"week_start"`
	Days      []DayInput     `json:"days"`
	Holidays  []string       `json:"holidays"`
}

func (in WeeklyEffortInput) parse() (*model.WeeklyEffortSubmission, error) {
	start, err := model.ParseDate(in.WeekStart)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid week start", goerr.T(model.TagValidation))
	}
	sub := &model.WeeklyEffortSubmission{
		CohortID:  in.CohortID,
		WeekStart: model.StartOfWeek(start),
		WeekEnd:   model.StartOfWeek(start).AddDate(0, 0, 6),
	}

	seen := make(map[string]bool, len(in.Days))
	for _, day := range in.Days {
		d, err := model.ParseDate(day.Date)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid day", goerr.T(model.TagValidation))
		}
		// The daily cap is checked per entry, so each date may appear once
		key := model.FormatDate(d)
		if seen[key] {
			return nil, goerr.New("day submitted more than once",
				goerr.V("date", key),
				goerr.T(model.TagValidation))
		}
		seen[key] = true
		if d.Before(sub.WeekStart) || d.After(sub.WeekEnd) {
			return nil, goerr.New("day is outside the submitted week",
				goerr.V("date", day.Date),
				goerr.V("week_start", model.FormatDate(sub.WeekStart)),
				goerr.T(model.TagValidation))
		}
		sub.Days = append(sub.Days, model.DayLog{Date: d, IsHoliday: day.IsHoliday, Roles: day.Roles})
	}

	for _, h := range in.Holidays {
		d, err := model.ParseDate(h)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid holiday", goerr.T(model.TagValidation))
		}
		sub.Holidays = append(sub.Holidays, d)
	}
	return sub, nil
}

// WeekEfforts is the efforts of a cohort bucketed by calendar week
type WeekEfforts struct {
	Weeks   []model.WeekRange          `json:"weeks"`
	Efforts map[string][]*model.Effort `json:"efforts"` // keyed by week ID
}

// EffortUseCase records effort and maintains weekly summaries
type EffortUseCase struct {
	repo     interfaces.Repository
	notifier NotificationSender
	config
}

// NewEffortUseCase creates a new effort usecase
func NewEffortUseCase(repo interfaces.Repository, notifier NotificationSender, opts ...Option) *EffortUseCase {
	return &EffortUseCase{
		repo:     repo,
		notifier: notifier,
		config:   newConfig(opts),
	}
}

// Policy returns the submission limits in force
func (e *EffortUseCase) Policy() model.EffortPolicy {
	return e.policy
}

// SubmitEffort records one effort entry and refreshes the summary of its week
func (e *EffortUseCase) SubmitEffort(ctx context.Context, input EffortInput, by types.UserID) (*model.Effort, error) {
	date, err := model.ParseDate(input.Date)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid effort date", goerr.T(model.TagValidation))
	}
	now := e.now()
	if err := e.policy.CheckWindow(date, now); err != nil {
		return nil, err
	}

	cohort, err := e.repo.GetCohort(ctx, input.CohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", input.CohortID))
	}
	stakeholder, err := e.repo.GetStakeholder(ctx, input.StakeholderID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get stakeholder", goerr.V("stakeholder_id", input.StakeholderID))
	}

	role := input.Role
	if role == "" {
		role = stakeholder.Role
	}
	if !role.IsValid() {
		return nil, goerr.New("invalid stakeholder role", goerr.V("role", role), goerr.T(model.TagValidation))
	}
	if err := e.policy.CheckRoleHours(role, input.Hours); err != nil {
		return nil, err
	}

	sameDay, err := e.repo.ListEfforts(ctx, interfaces.EffortFilter{CohortID: cohort.ID, From: date, To: date})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list efforts of the day", goerr.V("date", input.Date))
	}
	total := input.Hours
	for _, existing := range sameDay {
		total += existing.Hours
	}
	if err := e.policy.CheckDayTotal(date, total); err != nil {
		return nil, err
	}

	effort := &model.Effort{
		ID:            types.NewEffortID(),
		CohortID:      cohort.ID,
		StakeholderID: stakeholder.ID,
		Role:          role,
		Mode:          input.Mode,
		ReasonVirtual: input.ReasonVirtual,
		AreaOfWork:    input.AreaOfWork,
		Hours:         input.Hours,
		Date:          date,
		UpdatedBy:     by,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	effort.Normalize()

	if err := e.repo.PutEffort(ctx, effort); err != nil {
		return nil, goerr.Wrap(err, "failed to save effort", goerr.V("cohort_id", cohort.ID))
	}
	if _, err := e.refreshSummary(ctx, cohort.ID, date, by, nil); err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("Effort submitted",
		"effortID", effort.ID,
		"cohortID", cohort.ID,
		"role", role,
		"hours", effort.Hours,
	)
	e.announce(ctx, cohort, date, by)
	return effort, nil
}

// SubmitWeeklyEffort replaces every effort of a cohort within one week with
// the submitted day logs. Holidays carry no effort. Each role's hours are
// booked to the stakeholder resolved from the cohort assignments.
func (e *EffortUseCase) SubmitWeeklyEffort(ctx context.Context, input WeeklyEffortInput, by types.UserID) (*model.WeeklySummary, error) {
	sub, err := input.parse()
	if err != nil {
		return nil, err
	}
	now := e.now()
	if err := e.policy.CheckWindow(sub.WeekStart, now); err != nil {
		return nil, err
	}

	cohort, err := e.repo.GetCohort(ctx, sub.CohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", sub.CohortID))
	}

	// Validate the whole week before anything is replaced
	var efforts []*model.Effort
	holidays := append([]time.Time{}, sub.Holidays...)
	for _, day := range sub.Days {
		if day.IsHoliday {
			holidays = append(holidays, day.Date)
			continue
		}
		for role := range day.Roles {
			if !role.IsValid() {
				return nil, goerr.New("invalid stakeholder role", goerr.V("role", role), goerr.T(model.TagValidation))
			}
		}
		if err := e.policy.CheckDayTotal(day.Date, day.Total()); err != nil {
			return nil, err
		}

		for _, role := range types.StakeholderRoles {
			detail, ok := day.Roles[role]
			if !ok || detail.Hours == 0 {
				continue
			}
			if err := e.policy.CheckRoleHours(role, detail.Hours); err != nil {
				return nil, err
			}
			stakeholderID, ok := cohort.ResolveStakeholder(role)
			if !ok {
				return nil, goerr.New("no stakeholder assigned for role",
					goerr.V("cohort_id", cohort.ID),
					goerr.V("role", role),
					goerr.T(model.TagValidation))
			}
			efforts = append(efforts, model.NewDayEffort(cohort.ID, stakeholderID, role, day.Date, detail, by, now))
		}
	}

	existing, err := e.repo.ListEfforts(ctx, interfaces.EffortFilter{CohortID: cohort.ID, From: sub.WeekStart, To: sub.WeekEnd})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list efforts of the week")
	}
	for _, old := range existing {
		if err := e.repo.DeleteEffort(ctx, old.ID); err != nil {
			return nil, goerr.Wrap(err, "failed to delete effort", goerr.V("effort_id", old.ID))
		}
	}
	for _, effort := range efforts {
		if err := e.repo.PutEffort(ctx, effort); err != nil {
			return nil, goerr.Wrap(err, "failed to save effort", goerr.V("date", model.FormatDate(effort.Date)))
		}
	}

	summary, err := e.refreshSummary(ctx, cohort.ID, sub.WeekStart, by, uniqueDays(holidays))
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("Weekly effort submitted",
		"cohortID", cohort.ID,
		"weekStart", model.FormatDate(sub.WeekStart),
		"replaced", len(existing),
		"saved", len(efforts),
		"totalHours", summary.TotalHours,
	)
	e.announce(ctx, cohort, sub.WeekStart, by)
	return summary, nil
}

func uniqueDays(days []time.Time) []time.Time {
	seen := make(map[string]bool)
	result := make([]time.Time, 0, len(days))
	for _, d := range days {
		key := model.FormatDate(d)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, model.DayOf(d))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Before(result[j]) })
	return result
}

// refreshSummary recomputes the summary of the week containing date. A nil
// holidays keeps the holidays already recorded.
func (e *EffortUseCase) refreshSummary(ctx context.Context, cohortID types.CohortID, date time.Time, by types.UserID, holidays []time.Time) (*model.WeeklySummary, error) {
	now := e.now()
	summary, err := e.repo.GetWeeklySummary(ctx, cohortID, date)
	if err != nil {
		if !model.IsNotFound(err) {
			return nil, goerr.Wrap(err, "failed to get weekly summary", goerr.V("cohort_id", cohortID))
		}
		summary = model.NewWeeklySummary(cohortID, date, now)
	}

	efforts, err := e.repo.ListEfforts(ctx, interfaces.EffortFilter{CohortID: cohortID, From: summary.WeekStart, To: summary.WeekEnd})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list efforts of the week", goerr.V("cohort_id", cohortID))
	}
	summary.Recompute(efforts)
	if holidays != nil {
		summary.Holidays = holidays
	}
	summary.SubmittedBy = by
	summary.SubmittedAt = now

	if err := e.repo.PutWeeklySummary(ctx, summary); err != nil {
		return nil, goerr.Wrap(err, "failed to save weekly summary", goerr.V("summary_id", summary.ID))
	}
	return summary, nil
}

func (e *EffortUseCase) announce(ctx context.Context, cohort *model.Cohort, date time.Time, by types.UserID) {
	weekStart := model.FormatDate(model.StartOfWeek(date))
	draft := model.NotificationDraft{
		Type:     types.NotificationReportSubmitted,
		Title:    "Effort submitted",
		Message:  fmt.Sprintf("Effort for cohort %s was submitted for the week of %s", cohort.Code, weekStart),
		Link:     "/cohorts/" + cohort.ID.String() + "/efforts",
		EntityID: cohort.ID.String(),
	}
	if _, err := e.notifier.NotifyRole(ctx, types.UserRoleAdmin, draft, by); err != nil {
		ctxlog.From(ctx).Warn("Failed to notify admins of effort submission", "error", err, "cohortID", cohort.ID)
	}
}

// GetEffort returns one effort entry
func (e *EffortUseCase) GetEffort(ctx context.Context, id types.EffortID) (*model.Effort, error) {
	effort, err := e.repo.GetEffort(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get effort", goerr.V("effort_id", id))
	}
	return effort, nil
}

// ListEfforts returns the efforts of a cohort, optionally bounded by from and
// to (inclusive). Zero bounds are open.
func (e *EffortUseCase) ListEfforts(ctx context.Context, cohortID types.CohortID, from, to time.Time) ([]*model.Effort, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, goerr.New("range end is before range start", goerr.T(model.TagValidation))
	}
	efforts, err := e.repo.ListEfforts(ctx, interfaces.EffortFilter{CohortID: cohortID, From: from, To: to})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list efforts", goerr.V("cohort_id", cohortID))
	}
	return efforts, nil
}

// ListEffortsByStakeholder returns every effort booked to a stakeholder
func (e *EffortUseCase) ListEffortsByStakeholder(ctx context.Context, stakeholderID types.StakeholderID) ([]*model.Effort, error) {
	efforts, err := e.repo.ListEfforts(ctx, interfaces.EffortFilter{StakeholderID: stakeholderID})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list efforts", goerr.V("stakeholder_id", stakeholderID))
	}
	return efforts, nil
}

// DeleteEffort removes an effort entry and refreshes the summary of its week
func (e *EffortUseCase) DeleteEffort(ctx context.Context, id types.EffortID, by types.UserID) error {
	effort, err := e.GetEffort(ctx, id)
	if err != nil {
		return err
	}
	if err := e.repo.DeleteEffort(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete effort", goerr.V("effort_id", id))
	}
	if _, err := e.refreshSummary(ctx, effort.CohortID, effort.Date, by, nil); err != nil {
		return err
	}

	ctxlog.From(ctx).Info("Effort deleted", "effortID", id, "cohortID", effort.CohortID)
	return nil
}

// ListWeeklySummaries returns the summaries of a cohort by ascending week
func (e *EffortUseCase) ListWeeklySummaries(ctx context.Context, cohortID types.CohortID) ([]*model.WeeklySummary, error) {
	summaries, err := e.repo.ListWeeklySummaries(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list weekly summaries", goerr.V("cohort_id", cohortID))
	}
	return summaries, nil
}

// GetWeeklySummary returns the summary of the week containing weekStart
func (e *EffortUseCase) GetWeeklySummary(ctx context.Context, cohortID types.CohortID, weekStart time.Time) (*model.WeeklySummary, error) {
	summary, err := e.repo.GetWeeklySummary(ctx, cohortID, weekStart)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get weekly summary",
			goerr.V("cohort_id", cohortID),
			goerr.V("week_start", model.FormatDate(weekStart)))
	}
	return summary, nil
}

// EffortsByWeek buckets the efforts of a cohort into its calendar weeks
func (e *EffortUseCase) EffortsByWeek(ctx context.Context, cohortID types.CohortID) (*WeekEfforts, error) {
	cohort, err := e.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}
	efforts, err := e.ListEfforts(ctx, cohortID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	weeks := cohort.Weeks()
	return &WeekEfforts{
		Weeks:   weeks,
		Efforts: model.GroupByWeek(efforts, weeks, func(e *model.Effort) time.Time { return e.Date }),
	}, nil
}
