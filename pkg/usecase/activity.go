package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// ActivityInput is an entry for the activity log of a cohort
type ActivityInput struct {
	CohortID    types.CohortID `json:"cohort_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        string         `json:"date"` // YYYY-MM-DD, today when empty
}

// ActivityUseCase keeps the per-cohort activity log
type ActivityUseCase struct {
	repo interfaces.Repository
	config
}

// NewActivityUseCase creates a new activity usecase
func NewActivityUseCase(repo interfaces.Repository, opts ...Option) *ActivityUseCase {
	return &ActivityUseCase{
		repo:   repo,
		config: newConfig(opts),
	}
}

// LogActivity appends an entry to the log of a cohort on behalf of by
func (a *ActivityUseCase) LogActivity(ctx context.Context, input ActivityInput, by types.UserID) (*model.Activity, error) {
	now := a.now()
	date := model.DayOf(now)
	if input.Date != "" {
		d, err := model.ParseDate(input.Date)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid activity date", goerr.T(model.TagValidation))
		}
		date = d
	}

	if input.CohortID == "" {
		return nil, goerr.New("cohort ID is required", goerr.T(model.TagValidation))
	}
	cohort, err := a.repo.GetCohort(ctx, input.CohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", input.CohortID))
	}

	activity := &model.Activity{
		ID:          types.NewActivityID(),
		CohortID:    cohort.ID,
		CoachID:     by,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Date:        date,
		CreatedAt:   now,
	}
	if err := activity.Validate(); err != nil {
		return nil, err
	}
	if err := a.repo.PutActivity(ctx, activity); err != nil {
		return nil, goerr.Wrap(err, "failed to save activity", goerr.V("cohort_id", cohort.ID))
	}

	ctxlog.From(ctx).Info("Activity logged",
		"activityID", activity.ID,
		"cohortID", cohort.ID,
		"title", activity.Title,
	)
	return activity, nil
}

// ListActivities returns the log of a cohort, newest first
func (a *ActivityUseCase) ListActivities(ctx context.Context, cohortID types.CohortID) ([]*model.Activity, error) {
	if _, err := a.repo.GetCohort(ctx, cohortID); err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}
	activities, err := a.repo.ListActivities(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list activities", goerr.V("cohort_id", cohortID))
	}
	return activities, nil
}
