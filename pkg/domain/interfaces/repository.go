package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// EffortFilter selects effort entries. Zero fields do not filter; From and To
// bound the effort date inclusively.
type EffortFilter struct {
	CohortID      types.CohortID
	StakeholderID types.StakeholderID
	From          time.Time
	To            time.Time
}

// Match reports whether e satisfies the filter
func (f EffortFilter) Match(e *model.Effort) bool {
	if f.CohortID != "" && e.CohortID != f.CohortID {
		return false
	}
	if f.StakeholderID != "" && e.StakeholderID != f.StakeholderID {
		return false
	}
	d := model.DayOf(e.Date)
	if !f.From.IsZero() && d.Before(model.DayOf(f.From)) {
		return false
	}
	if !f.To.IsZero() && d.After(model.DayOf(f.To)) {
		return false
	}
	return true
}

// Repository defines the interface for data persistence.
// Get methods return an error wrapping the matching model.ErrXxxNotFound
// sentinel when the entity does not exist. List methods return entities in a
// stable order documented per method.
type Repository interface {
	// User operations
	PutUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id types.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByEmpID(ctx context.Context, empID string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error) // by name

	// Stakeholder operations. An empty role lists every stakeholder.
	PutStakeholder(ctx context.Context, s *model.Stakeholder) error
	GetStakeholder(ctx context.Context, id types.StakeholderID) (*model.Stakeholder, error)
	ListStakeholders(ctx context.Context, role types.StakeholderRole) ([]*model.Stakeholder, error) // by name
	DeleteStakeholder(ctx context.Context, id types.StakeholderID) error

	// Cohort operations
	PutCohort(ctx context.Context, cohort *model.Cohort) error
	GetCohort(ctx context.Context, id types.CohortID) (*model.Cohort, error)
	GetCohortByCode(ctx context.Context, code string) (*model.Cohort, error)
	ListCohorts(ctx context.Context) ([]*model.Cohort, error) // by start date
	DeleteCohort(ctx context.Context, id types.CohortID) error

	// Candidate operations. An empty cohort ID lists every candidate.
	PutCandidate(ctx context.Context, c *model.Candidate) error
	GetCandidate(ctx context.Context, id types.CandidateID) (*model.Candidate, error)
	GetCandidateByCandidateID(ctx context.Context, candidateID string) (*model.Candidate, error)
	ListCandidates(ctx context.Context, cohortID types.CohortID) ([]*model.Candidate, error) // by candidate ID
	DeleteCandidate(ctx context.Context, id types.CandidateID) error

	// Effort operations
	PutEffort(ctx context.Context, e *model.Effort) error
	GetEffort(ctx context.Context, id types.EffortID) (*model.Effort, error)
	ListEfforts(ctx context.Context, filter EffortFilter) ([]*model.Effort, error) // by date, then creation
	DeleteEffort(ctx context.Context, id types.EffortID) error

	// Weekly summary operations
	PutWeeklySummary(ctx context.Context, s *model.WeeklySummary) error
	GetWeeklySummary(ctx context.Context, cohortID types.CohortID, weekStart time.Time) (*model.WeeklySummary, error)
	ListWeeklySummaries(ctx context.Context, cohortID types.CohortID) ([]*model.WeeklySummary, error) // by week start

	// Feedback request operations
	PutFeedbackRequest(ctx context.Context, req *model.FeedbackRequest) error
	GetFeedbackRequest(ctx context.Context, id types.FeedbackRequestID) (*model.FeedbackRequest, error)
	GetFeedbackRequestByToken(ctx context.Context, token types.FeedbackToken) (*model.FeedbackRequest, error)
	ListFeedbackRequests(ctx context.Context, cohortID types.CohortID) ([]*model.FeedbackRequest, error) // newest first

	// Feedback operations
	PutFeedback(ctx context.Context, f *model.Feedback) error
	ListFeedback(ctx context.Context, cohortID types.CohortID) ([]*model.Feedback, error) // by creation
	HasFeedback(ctx context.Context, requestID types.FeedbackRequestID, employeeID string) (bool, error)

	// Notification operations
	PutNotification(ctx context.Context, n *model.Notification) error
	GetNotification(ctx context.Context, id types.NotificationID) (*model.Notification, error)
	ListNotifications(ctx context.Context, recipientID types.UserID) ([]*model.Notification, error) // newest first
	DeleteNotifications(ctx context.Context, recipientID types.UserID) error

	// Activity log operations
	PutActivity(ctx context.Context, a *model.Activity) error
	ListActivities(ctx context.Context, cohortID types.CohortID) ([]*model.Activity, error) // newest date first

	// Close closes the repository connection
	Close() error
}
