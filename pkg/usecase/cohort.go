package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// CohortInput is the editable data of a cohort. Dates are YYYY-MM-DD.
type CohortInput struct {
	Code             string `json:"code"`
	BU               string `json:"bu"`
	SBU              string `json:"sbu"`
	SL               string `json:"sl"`
	Skill            string `json:"skill"`
	ActiveGencCount  int    `json:"active_genc_count"`
	TrainingLocation string `json:"training_location"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
}

func (in CohortInput) apply(c *model.Cohort) error {
	start, err := model.ParseDate(in.StartDate)
	if err != nil {
		return goerr.Wrap(err, "invalid start date", goerr.T(model.TagValidation))
	}
	end, err := model.ParseDate(in.EndDate)
	if err != nil {
		return goerr.Wrap(err, "invalid end date", goerr.T(model.TagValidation))
	}

	c.Code = strings.TrimSpace(in.Code)
	c.BU = strings.TrimSpace(in.BU)
	c.SBU = strings.TrimSpace(in.SBU)
	c.SL = strings.TrimSpace(in.SL)
	c.Skill = strings.TrimSpace(in.Skill)
	c.ActiveGencCount = in.ActiveGencCount
	c.TrainingLocation = strings.TrimSpace(in.TrainingLocation)
	c.StartDate = start
	c.EndDate = end
	return c.Validate()
}

// CohortView is a cohort with its progress against today
type CohortView struct {
	*model.Cohort
	Progress int  `json:"progress"`
	Active   bool `json:"active"`
}

// CohortWeeks is the calendar of a cohort
type CohortWeeks struct {
	Weeks   []model.WeekRange `json:"weeks"`
	Current *model.WeekRange  `json:"current,omitempty"`
}

// AssignmentView is one stakeholder assignment of a cohort
type AssignmentView struct {
	model.Assignment
	Primary         bool   `json:"primary"`
	StakeholderName string `json:"stakeholder_name"`
}

// NotificationSender delivers notifications on behalf of other use cases
type NotificationSender interface {
	Notify(ctx context.Context, recipient types.UserID, role string, draft model.NotificationDraft) (*model.Notification, error)
	NotifyRole(ctx context.Context, role types.UserRole, draft model.NotificationDraft, exclude types.UserID) (int, error)
}

// CohortUseCase manages cohorts and their staffing
type CohortUseCase struct {
	repo     interfaces.Repository
	notifier NotificationSender
	config
}

// NewCohortUseCase creates a new cohort usecase
func NewCohortUseCase(repo interfaces.Repository, notifier NotificationSender, opts ...Option) *CohortUseCase {
	return &CohortUseCase{
		repo:     repo,
		notifier: notifier,
		config:   newConfig(opts),
	}
}

func (c *CohortUseCase) view(cohort *model.Cohort) *CohortView {
	now := c.now()
	return &CohortView{
		Cohort:   cohort,
		Progress: cohort.Progress(now),
		Active:   cohort.IsActive(now),
	}
}

func (c *CohortUseCase) checkCodeFree(ctx context.Context, code string, self types.CohortID) error {
	existing, err := c.repo.GetCohortByCode(ctx, code)
	if err != nil {
		if model.IsNotFound(err) {
			return nil
		}
		return goerr.Wrap(err, "failed to check cohort code", goerr.V("code", code))
	}
	if existing.ID != self {
		return goerr.New("cohort code already exists", goerr.V("code", code), goerr.T(model.TagConflict))
	}
	return nil
}

// CreateCohort registers a cohort and tells the other admins about it
func (c *CohortUseCase) CreateCohort(ctx context.Context, input CohortInput, by types.UserID) (*CohortView, error) {
	now := c.now()
	cohort := &model.Cohort{
		ID:        types.NewCohortID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := input.apply(cohort); err != nil {
		return nil, err
	}
	if err := c.checkCodeFree(ctx, cohort.Code, cohort.ID); err != nil {
		return nil, err
	}

	if err := c.repo.PutCohort(ctx, cohort); err != nil {
		return nil, goerr.Wrap(err, "failed to save cohort", goerr.V("code", cohort.Code))
	}

	logger := ctxlog.From(ctx)
	logger.Info("Created cohort",
		"cohortID", cohort.ID,
		"code", cohort.Code,
	)

	draft := model.NotificationDraft{
		Type:     types.NotificationCohortCreated,
		Title:    "New cohort created",
		Message:  fmt.Sprintf("Cohort %s has been created", cohort.Code),
		Link:     "/cohorts/" + cohort.ID.String(),
		EntityID: cohort.ID.String(),
	}
	if _, err := c.notifier.NotifyRole(ctx, types.UserRoleAdmin, draft, by); err != nil {
		logger.Warn("Failed to notify admins of new cohort", "error", err, "cohortID", cohort.ID)
	}

	return c.view(cohort), nil
}

// GetCohort returns one cohort
func (c *CohortUseCase) GetCohort(ctx context.Context, id types.CohortID) (*CohortView, error) {
	cohort, err := c.repo.GetCohort(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", id))
	}
	return c.view(cohort), nil
}

// GetCohortByCode returns the cohort with code
func (c *CohortUseCase) GetCohortByCode(ctx context.Context, code string) (*CohortView, error) {
	cohort, err := c.repo.GetCohortByCode(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("code", code))
	}
	return c.view(cohort), nil
}

// ListCohorts returns every cohort ordered by start date
func (c *CohortUseCase) ListCohorts(ctx context.Context) ([]*CohortView, error) {
	cohorts, err := c.repo.ListCohorts(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list cohorts")
	}
	views := make([]*CohortView, len(cohorts))
	for i, cohort := range cohorts {
		views[i] = c.view(cohort)
	}
	return views, nil
}

// ListCohortsFor returns the cohorts visible to the caller: admins see every
// cohort, coaches the ones they coach, location leads the ones trained at
// their location.
func (c *CohortUseCase) ListCohortsFor(ctx context.Context, caller *model.AuthContext) ([]*CohortView, error) {
	if caller == nil {
		return nil, goerr.Wrap(model.ErrPermissionDenied, "no caller")
	}

	views, err := c.ListCohorts(ctx)
	if err != nil {
		return nil, err
	}
	if caller.IsAdmin() {
		return views, nil
	}

	var match func(*model.Cohort) bool
	switch caller.Role {
	case types.UserRoleCoach:
		match = func(cohort *model.Cohort) bool { return cohort.CoachID == caller.UserID }
	case types.UserRoleLocationLead:
		user, err := c.repo.GetUser(ctx, caller.UserID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get caller", goerr.V("user_id", caller.UserID))
		}
		match = func(cohort *model.Cohort) bool {
			return user.Location != "" && strings.EqualFold(cohort.TrainingLocation, user.Location)
		}
	default:
		return []*CohortView{}, nil
	}

	result := make([]*CohortView, 0, len(views))
	for _, v := range views {
		if match(v.Cohort) {
			result = append(result, v)
		}
	}
	return result, nil
}

// UpdateCohort replaces the editable fields of a cohort
func (c *CohortUseCase) UpdateCohort(ctx context.Context, id types.CohortID, input CohortInput) (*CohortView, error) {
	cohort, err := c.repo.GetCohort(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", id))
	}
	if err := input.apply(cohort); err != nil {
		return nil, err
	}
	if err := c.checkCodeFree(ctx, cohort.Code, cohort.ID); err != nil {
		return nil, err
	}
	cohort.UpdatedAt = c.now()

	if err := c.repo.PutCohort(ctx, cohort); err != nil {
		return nil, goerr.Wrap(err, "failed to save cohort", goerr.V("cohort_id", id))
	}
	return c.view(cohort), nil
}

// DeleteCohort removes a cohort
func (c *CohortUseCase) DeleteCohort(ctx context.Context, id types.CohortID) error {
	if _, err := c.repo.GetCohort(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", id))
	}
	if err := c.repo.DeleteCohort(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete cohort", goerr.V("cohort_id", id))
	}
	ctxlog.From(ctx).Info("Deleted cohort", "cohortID", id)
	return nil
}

// AssignCoach makes the COACH user coachID responsible for the cohort
func (c *CohortUseCase) AssignCoach(ctx context.Context, cohortID types.CohortID, coachID types.UserID) (*CohortView, error) {
	cohort, err := c.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}
	coach, err := c.repo.GetUser(ctx, coachID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get coach", goerr.V("user_id", coachID))
	}
	if coach.Role != types.UserRoleCoach {
		return nil, goerr.New("user is not a coach",
			goerr.V("user_id", coachID),
			goerr.V("role", coach.Role),
			goerr.T(model.TagValidation))
	}

	cohort.CoachID = coach.ID
	cohort.UpdatedAt = c.now()
	if err := c.repo.PutCohort(ctx, cohort); err != nil {
		return nil, goerr.Wrap(err, "failed to save cohort", goerr.V("cohort_id", cohortID))
	}

	draft := model.NotificationDraft{
		Type:     types.NotificationCohortAssignment,
		Title:    "Cohort assigned",
		Message:  fmt.Sprintf("You have been assigned as coach of cohort %s", cohort.Code),
		Link:     "/cohorts/" + cohort.ID.String(),
		EntityID: cohort.ID.String(),
	}
	if _, err := c.notifier.Notify(ctx, coach.ID, coach.Role.String(), draft); err != nil {
		ctxlog.From(ctx).Warn("Failed to notify coach", "error", err, "cohortID", cohortID, "coachID", coachID)
	}
	return c.view(cohort), nil
}

func (c *CohortUseCase) stakeholderFor(ctx context.Context, role types.StakeholderRole, id types.StakeholderID) (*model.Stakeholder, error) {
	if !role.IsValid() {
		return nil, goerr.New("invalid stakeholder role", goerr.V("role", role), goerr.T(model.TagValidation))
	}
	s, err := c.repo.GetStakeholder(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get stakeholder", goerr.V("stakeholder_id", id))
	}
	if s.Role != role {
		return nil, goerr.New("stakeholder does not hold role",
			goerr.V("stakeholder_id", id),
			goerr.V("role", role),
			goerr.V("actual", s.Role),
			goerr.T(model.TagValidation))
	}
	return s, nil
}

// AssignPrimary sets the primary stakeholder of role, replacing any previous one
func (c *CohortUseCase) AssignPrimary(ctx context.Context, cohortID types.CohortID, role types.StakeholderRole, stakeholderID types.StakeholderID) (*CohortView, error) {
	cohort, err := c.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}
	if _, err := c.stakeholderFor(ctx, role, stakeholderID); err != nil {
		return nil, err
	}

	now := c.now()
	cohort.SetPrimary(role, stakeholderID, now)
	cohort.UpdatedAt = now
	if err := c.repo.PutCohort(ctx, cohort); err != nil {
		return nil, goerr.Wrap(err, "failed to save cohort", goerr.V("cohort_id", cohortID))
	}

	ctxlog.From(ctx).Info("Primary stakeholder assigned",
		"cohortID", cohortID,
		"role", role,
		"stakeholderID", stakeholderID,
	)
	return c.view(cohort), nil
}

// AddAdditional assigns an extra stakeholder of role
func (c *CohortUseCase) AddAdditional(ctx context.Context, cohortID types.CohortID, role types.StakeholderRole, stakeholderID types.StakeholderID) (*CohortView, error) {
	cohort, err := c.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}
	if _, err := c.stakeholderFor(ctx, role, stakeholderID); err != nil {
		return nil, err
	}

	now := c.now()
	if err := cohort.AddAdditional(role, stakeholderID, now); err != nil {
		return nil, err
	}
	cohort.UpdatedAt = now
	if err := c.repo.PutCohort(ctx, cohort); err != nil {
		return nil, goerr.Wrap(err, "failed to save cohort", goerr.V("cohort_id", cohortID))
	}
	return c.view(cohort), nil
}

// RemoveAdditional drops an extra stakeholder assignment
func (c *CohortUseCase) RemoveAdditional(ctx context.Context, cohortID types.CohortID, role types.StakeholderRole, stakeholderID types.StakeholderID) (*CohortView, error) {
	cohort, err := c.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}
	if err := cohort.RemoveAdditional(role, stakeholderID); err != nil {
		return nil, err
	}
	cohort.UpdatedAt = c.now()
	if err := c.repo.PutCohort(ctx, cohort); err != nil {
		return nil, goerr.Wrap(err, "failed to save cohort", goerr.V("cohort_id", cohortID))
	}
	return c.view(cohort), nil
}

// ListAssignments returns the primary then additional assignments with
// stakeholder names. Assignments of deleted stakeholders keep an empty name.
func (c *CohortUseCase) ListAssignments(ctx context.Context, cohortID types.CohortID) ([]*AssignmentView, error) {
	cohort, err := c.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}

	names := make(map[types.StakeholderID]string)
	for _, id := range cohort.StakeholderIDs() {
		s, err := c.repo.GetStakeholder(ctx, id)
		if err != nil {
			if model.IsNotFound(err) {
				continue
			}
			return nil, goerr.Wrap(err, "failed to get stakeholder", goerr.V("stakeholder_id", id))
		}
		names[id] = s.Name
	}

	views := make([]*AssignmentView, 0, len(cohort.Primary)+len(cohort.Additional))
	for _, a := range cohort.Primary {
		views = append(views, &AssignmentView{Assignment: a, Primary: true, StakeholderName: names[a.StakeholderID]})
	}
	for _, a := range cohort.Additional {
		views = append(views, &AssignmentView{Assignment: a, StakeholderName: names[a.StakeholderID]})
	}
	return views, nil
}

// Weeks returns the calendar weeks of the cohort and the week containing today
func (c *CohortUseCase) Weeks(ctx context.Context, cohortID types.CohortID) (*CohortWeeks, error) {
	cohort, err := c.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}

	result := &CohortWeeks{Weeks: cohort.Weeks()}
	if current, ok := model.CurrentWeek(result.Weeks, c.now()); ok {
		result.Current = &current
	}
	return result, nil
}
