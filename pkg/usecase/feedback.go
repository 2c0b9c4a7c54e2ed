package usecase

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// FeedbackRequestInput is the data of a new feedback link
type FeedbackRequestInput struct {
	CohortID   types.CohortID `json:"cohort_id"`
	WeekNumber int            `json:"week_number"`
	ExpiryDays int            `json:"expiry_days"` // zero for a link that never expires
}

// FeedbackUseCase collects trainee feedback through shareable links
type FeedbackUseCase struct {
	repo interfaces.Repository
	config
}

// NewFeedbackUseCase creates a new feedback usecase
func NewFeedbackUseCase(repo interfaces.Repository, opts ...Option) *FeedbackUseCase {
	return &FeedbackUseCase{
		repo:   repo,
		config: newConfig(opts),
	}
}

// CreateRequest opens a feedback link for one week of a cohort
func (f *FeedbackUseCase) CreateRequest(ctx context.Context, input FeedbackRequestInput, by types.UserID) (*model.FeedbackRequest, error) {
	if _, err := f.repo.GetCohort(ctx, input.CohortID); err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", input.CohortID))
	}

	req, err := model.NewFeedbackRequest(input.CohortID, input.WeekNumber, input.ExpiryDays, by, f.now())
	if err != nil {
		return nil, err
	}
	if err := f.repo.PutFeedbackRequest(ctx, req); err != nil {
		return nil, goerr.Wrap(err, "failed to save feedback request", goerr.V("cohort_id", input.CohortID))
	}

	ctxlog.From(ctx).Info("Feedback request created",
		"requestID", req.ID,
		"cohortID", req.CohortID,
		"weekNumber", req.WeekNumber,
	)
	return req, nil
}

// ListRequests returns the feedback links of a cohort, newest first
func (f *FeedbackUseCase) ListRequests(ctx context.Context, cohortID types.CohortID) ([]*model.FeedbackRequest, error) {
	reqs, err := f.repo.ListFeedbackRequests(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list feedback requests", goerr.V("cohort_id", cohortID))
	}
	return reqs, nil
}

// DeactivateRequest closes a feedback link
func (f *FeedbackUseCase) DeactivateRequest(ctx context.Context, id types.FeedbackRequestID) (*model.FeedbackRequest, error) {
	req, err := f.repo.GetFeedbackRequest(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get feedback request", goerr.V("request_id", id))
	}
	if !req.Active {
		return req, nil
	}

	req.Active = false
	if err := f.repo.PutFeedbackRequest(ctx, req); err != nil {
		return nil, goerr.Wrap(err, "failed to save feedback request", goerr.V("request_id", id))
	}
	ctxlog.From(ctx).Info("Feedback request deactivated", "requestID", id)
	return req, nil
}

func (f *FeedbackUseCase) requestByToken(ctx context.Context, token types.FeedbackToken) (*model.FeedbackRequest, error) {
	if token == "" {
		return nil, goerr.Wrap(model.ErrFeedbackRequestNotFound, "token is empty")
	}
	req, err := f.repo.GetFeedbackRequestByToken(ctx, token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get feedback request by token")
	}
	return req, nil
}

// stakeholderName returns the name of the stakeholder serving role, primary
// assignment first. Unknown stakeholders yield an empty name.
func (f *FeedbackUseCase) stakeholderName(ctx context.Context, cohort *model.Cohort, role types.StakeholderRole) (string, error) {
	id, ok := cohort.PrimaryFor(role)
	if !ok {
		for _, a := range cohort.Additional {
			if a.Role == role {
				id, ok = a.StakeholderID, true
				break
			}
		}
	}
	if !ok {
		return "", nil
	}

	s, err := f.repo.GetStakeholder(ctx, id)
	if err != nil {
		if model.IsNotFound(err) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get stakeholder", goerr.V("stakeholder_id", id))
	}
	return s.Name, nil
}

func (f *FeedbackUseCase) coachName(ctx context.Context, cohort *model.Cohort) (string, error) {
	if cohort.CoachID == "" {
		return "", nil
	}
	coach, err := f.repo.GetUser(ctx, cohort.CoachID)
	if err != nil {
		if model.IsNotFound(err) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get coach", goerr.V("user_id", cohort.CoachID))
	}
	return coach.Name, nil
}

// GetSession resolves a feedback link for the public form. Hours come from
// the N-th weekly summary of the cohort in week order and are zero when the
// week has no summary.
func (f *FeedbackUseCase) GetSession(ctx context.Context, token types.FeedbackToken) (*model.FeedbackSession, error) {
	req, err := f.requestByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	cohort, err := f.repo.GetCohort(ctx, req.CohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", req.CohortID))
	}

	session := &model.FeedbackSession{
		Request:    req,
		CohortCode: cohort.Code,
	}

	summaries, err := f.repo.ListWeeklySummaries(ctx, cohort.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list weekly summaries", goerr.V("cohort_id", cohort.ID))
	}
	if req.WeekNumber > 0 && req.WeekNumber <= len(summaries) {
		summary := summaries[req.WeekNumber-1]
		session.TrainerHours = summary.Hours(types.RoleTrainer)
		session.MentorHours = summary.Hours(types.RoleMentor)
		session.CoachHours = summary.Hours(types.RoleBHTrainer)
		session.TotalHours = summary.TotalHours
	}

	names := []struct {
		role types.StakeholderRole
		dst  *string
	}{
		{types.RoleTrainer, &session.TrainerName},
		{types.RoleBHTrainer, &session.BehavioralName},
		{types.RoleMentor, &session.MentorName},
		{types.RoleBuddyMentor, &session.BuddyName},
	}
	for _, n := range names {
		if *n.dst, err = f.stakeholderName(ctx, cohort, n.role); err != nil {
			return nil, err
		}
	}
	if session.CoachName, err = f.coachName(ctx, cohort); err != nil {
		return nil, err
	}

	return session, nil
}

// SubmitFeedback stores a trainee's answers to the link identified by token.
// Each employee can answer a link once.
func (f *FeedbackUseCase) SubmitFeedback(ctx context.Context, token types.FeedbackToken, answers *model.Feedback) (*model.Feedback, error) {
	if answers == nil {
		return nil, goerr.New("feedback is empty", goerr.T(model.TagValidation))
	}
	req, err := f.requestByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := f.now()
	if err := req.CheckUsable(now); err != nil {
		return nil, err
	}
	feedback := *answers
	feedback.EmployeeID = strings.TrimSpace(feedback.EmployeeID)
	feedback.CandidateName = strings.TrimSpace(feedback.CandidateName)
	if err := feedback.Validate(); err != nil {
		return nil, err
	}

	exists, err := f.repo.HasFeedback(ctx, req.ID, feedback.EmployeeID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to check previous feedback", goerr.V("request_id", req.ID))
	}
	if exists {
		return nil, goerr.Wrap(model.ErrFeedbackDuplicate, "duplicate feedback",
			goerr.V("request_id", req.ID),
			goerr.V("employee_id", feedback.EmployeeID))
	}

	feedback.ID = types.NewFeedbackID()
	feedback.CohortID = req.CohortID
	feedback.RequestID = req.ID
	feedback.WeekNumber = req.WeekNumber
	feedback.CreatedAt = now

	if err := f.repo.PutFeedback(ctx, &feedback); err != nil {
		return nil, goerr.Wrap(err, "failed to save feedback", goerr.V("request_id", req.ID))
	}

	ctxlog.From(ctx).Info("Feedback submitted",
		"feedbackID", feedback.ID,
		"cohortID", feedback.CohortID,
		"weekNumber", feedback.WeekNumber,
	)
	return &feedback, nil
}

// ListFeedback returns every response of a cohort
func (f *FeedbackUseCase) ListFeedback(ctx context.Context, cohortID types.CohortID) ([]*model.Feedback, error) {
	responses, err := f.repo.ListFeedback(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list feedback", goerr.V("cohort_id", cohortID))
	}
	return responses, nil
}

// Analytics summarises the responses of a cohort
func (f *FeedbackUseCase) Analytics(ctx context.Context, cohortID types.CohortID) (*model.FeedbackAnalytics, error) {
	responses, err := f.ListFeedback(ctx, cohortID)
	if err != nil {
		return nil, err
	}
	return model.AnalyzeFeedback(responses), nil
}

// Export builds the report of one feedback type for a cohort
func (f *FeedbackUseCase) Export(ctx context.Context, cohortID types.CohortID, ft types.FeedbackType) (*model.FeedbackExport, error) {
	if !ft.IsValid() {
		return nil, goerr.New("invalid feedback type", goerr.V("type", ft), goerr.T(model.TagValidation))
	}
	cohort, err := f.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get cohort", goerr.V("cohort_id", cohortID))
	}
	responses, err := f.ListFeedback(ctx, cohortID)
	if err != nil {
		return nil, err
	}

	var receiver string
	if role, ok := model.FeedbackReceiverRole(ft); ok {
		receiver, err = f.stakeholderName(ctx, cohort, role)
	} else {
		receiver, err = f.coachName(ctx, cohort)
	}
	if err != nil {
		return nil, err
	}

	return model.ExportFeedback(ft, cohort, receiver, responses)
}

// WriteCSV writes an export as CSV with a header row
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return goerr.Wrap(err, "failed to write CSV header")
	}
	if err := cw.WriteAll(rows); err != nil {
		return goerr.Wrap(err, "failed to write CSV rows")
	}
	return nil
}
