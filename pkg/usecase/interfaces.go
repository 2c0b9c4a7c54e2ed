package usecase

import (
	"context"
	"io"
	"time"

	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// AuthUseCase defines the interface for authentication operations
type AuthUseCase interface {
	// Login verifies credentials and returns a signed access token
	Login(ctx context.Context, email, password string) (string, *model.User, error)

	// ValidateToken verifies an access token and resolves the caller
	ValidateToken(ctx context.Context, token string) (*model.AuthContext, error)
}

// UserManagement defines the interface for console account operations
type UserManagement interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id types.UserID) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	ListUsersByRole(ctx context.Context, role types.UserRole) ([]*model.User, error)
	UpdatePassword(ctx context.Context, id types.UserID, current, next string) error
	SetStatus(ctx context.Context, id types.UserID, status types.UserStatus) (*model.User, error)
}

// StakeholderManagement defines the interface for trainer and mentor operations
type StakeholderManagement interface {
	CreateStakeholder(ctx context.Context, input StakeholderInput) (*model.Stakeholder, error)
	GetStakeholder(ctx context.Context, id types.StakeholderID) (*model.Stakeholder, error)
	ListStakeholders(ctx context.Context, role types.StakeholderRole) ([]*model.Stakeholder, error)
	UpdateStakeholder(ctx context.Context, id types.StakeholderID, input StakeholderInput) (*model.Stakeholder, error)
	DeleteStakeholder(ctx context.Context, id types.StakeholderID) error
}

// CohortManagement defines the interface for cohort operations
type CohortManagement interface {
	CreateCohort(ctx context.Context, input CohortInput, by types.UserID) (*CohortView, error)
	GetCohort(ctx context.Context, id types.CohortID) (*CohortView, error)
	GetCohortByCode(ctx context.Context, code string) (*CohortView, error)
	ListCohortsFor(ctx context.Context, caller *model.AuthContext) ([]*CohortView, error)
	UpdateCohort(ctx context.Context, id types.CohortID, input CohortInput) (*CohortView, error)
	DeleteCohort(ctx context.Context, id types.CohortID) error

	AssignCoach(ctx context.Context, cohortID types.CohortID, coachID types.UserID) (*CohortView, error)
	AssignPrimary(ctx context.Context, cohortID types.CohortID, role types.StakeholderRole, stakeholderID types.StakeholderID) (*CohortView, error)
	AddAdditional(ctx context.Context, cohortID types.CohortID, role types.StakeholderRole, stakeholderID types.StakeholderID) (*CohortView, error)
	RemoveAdditional(ctx context.Context, cohortID types.CohortID, role types.StakeholderRole, stakeholderID types.StakeholderID) (*CohortView, error)
	ListAssignments(ctx context.Context, cohortID types.CohortID) ([]*AssignmentView, error)

	Weeks(ctx context.Context, cohortID types.CohortID) (*CohortWeeks, error)
}

// CandidateManagement defines the interface for trainee operations
type CandidateManagement interface {
	CreateCandidate(ctx context.Context, input CandidateInput) (*model.Candidate, error)
	GetCandidate(ctx context.Context, id types.CandidateID) (*model.Candidate, error)
	ListCandidates(ctx context.Context, cohortID types.CohortID) ([]*model.Candidate, error)
	UpdateStatus(ctx context.Context, id types.CandidateID, status types.CandidateStatus) (*model.Candidate, error)
	DeleteCandidate(ctx context.Context, id types.CandidateID) error
	ImportCandidates(ctx context.Context, cohortID types.CohortID, r io.Reader) (*model.ImportResult, error)
}

// EffortManagement defines the interface for effort logging operations
type EffortManagement interface {
	Policy() model.EffortPolicy
	SubmitEffort(ctx context.Context, input EffortInput, by types.UserID) (*model.Effort, error)
	SubmitWeeklyEffort(ctx context.Context, input WeeklyEffortInput, by types.UserID) (*model.WeeklySummary, error)
	GetEffort(ctx context.Context, id types.EffortID) (*model.Effort, error)
	ListEfforts(ctx context.Context, cohortID types.CohortID, from, to time.Time) ([]*model.Effort, error)
	ListEffortsByStakeholder(ctx context.Context, stakeholderID types.StakeholderID) ([]*model.Effort, error)
	DeleteEffort(ctx context.Context, id types.EffortID, by types.UserID) error
	ListWeeklySummaries(ctx context.Context, cohortID types.CohortID) ([]*model.WeeklySummary, error)
	GetWeeklySummary(ctx context.Context, cohortID types.CohortID, weekStart time.Time) (*model.WeeklySummary, error)
	EffortsByWeek(ctx context.Context, cohortID types.CohortID) (*WeekEfforts, error)
}

// FeedbackManagement defines the interface for trainee feedback operations
type FeedbackManagement interface {
	CreateRequest(ctx context.Context, input FeedbackRequestInput, by types.UserID) (*model.FeedbackRequest, error)
	ListRequests(ctx context.Context, cohortID types.CohortID) ([]*model.FeedbackRequest, error)
	DeactivateRequest(ctx context.Context, id types.FeedbackRequestID) (*model.FeedbackRequest, error)
	GetSession(ctx context.Context, token types.FeedbackToken) (*model.FeedbackSession, error)
	SubmitFeedback(ctx context.Context, token types.FeedbackToken, answers *model.Feedback) (*model.Feedback, error)
	ListFeedback(ctx context.Context, cohortID types.CohortID) ([]*model.Feedback, error)
	Analytics(ctx context.Context, cohortID types.CohortID) (*model.FeedbackAnalytics, error)
	Export(ctx context.Context, cohortID types.CohortID, ft types.FeedbackType) (*model.FeedbackExport, error)
}

// NotificationInbox defines the interface for per-user notification operations
type NotificationInbox interface {
	ListNotifications(ctx context.Context, userID types.UserID) (*NotificationList, error)
	MarkRead(ctx context.Context, userID types.UserID, id types.NotificationID) error
	MarkAllRead(ctx context.Context, userID types.UserID) error
	ClearNotifications(ctx context.Context, userID types.UserID) error
	Broadcast(ctx context.Context, role types.UserRole, title, message string, sender types.UserID) (int, error)
}

// Reporting defines the interface for dashboards and reports
type Reporting interface {
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
	WeeklyEffort(ctx context.Context, cohortID types.CohortID) (*WeeklyEffortReport, error)
	RecentActivities(ctx context.Context, coachID types.UserID) ([]*model.RecentActivity, error)
}

// ActivityLog defines the interface for the per-cohort activity log
type ActivityLog interface {
	LogActivity(ctx context.Context, input ActivityInput, by types.UserID) (*model.Activity, error)
	ListActivities(ctx context.Context, cohortID types.CohortID) ([]*model.Activity, error)
}

// UseCases bundles every use case served over HTTP
type UseCases struct {
	Auth          AuthUseCase
	Users         UserManagement
	Stakeholders  StakeholderManagement
	Cohorts       CohortManagement
	Candidates    CandidateManagement
	Efforts       EffortManagement
	Feedback      FeedbackManagement
	Notifications NotificationInbox
	Reports       Reporting
	Activities    ActivityLog
}

// New wires the use cases over repo. auth and notifications are built by the
// caller since they carry their own settings.
func New(repo interfaces.Repository, auth *Auth, notifications *NotificationUseCase, opts ...Option) *UseCases {
	return &UseCases{
		Auth:          auth,
		Users:         NewUserUseCase(repo, opts...),
		Stakeholders:  NewStakeholderUseCase(repo, opts...),
		Cohorts:       NewCohortUseCase(repo, notifications, opts...),
		Candidates:    NewCandidateUseCase(repo, opts...),
		Efforts:       NewEffortUseCase(repo, notifications, opts...),
		Feedback:      NewFeedbackUseCase(repo, opts...),
		Notifications: notifications,
		Reports:       NewReportUseCase(repo, opts...),
		Activities:    NewActivityUseCase(repo, opts...),
	}
}

var (
	_ AuthUseCase           = (*Auth)(nil)
	_ UserManagement        = (*UserUseCase)(nil)
	_ StakeholderManagement = (*StakeholderUseCase)(nil)
	_ CohortManagement      = (*CohortUseCase)(nil)
	_ CandidateManagement   = (*CandidateUseCase)(nil)
	_ EffortManagement      = (*EffortUseCase)(nil)
	_ FeedbackManagement    = (*FeedbackUseCase)(nil)
	_ NotificationInbox     = (*NotificationUseCase)(nil)
	_ NotificationSender    = (*NotificationUseCase)(nil)
	_ Reporting             = (*ReportUseCase)(nil)
	_ ActivityLog           = (*ActivityUseCase)(nil)
)
