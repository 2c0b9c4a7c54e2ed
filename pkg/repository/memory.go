package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu               sync.RWMutex
	users            map[types.UserID]*model.User
	stakeholders     map[types.StakeholderID]*model.Stakeholder
	cohorts          map[types.CohortID]*model.Cohort
	candidates       map[types.CandidateID]*model.Candidate
	efforts          map[types.EffortID]*model.Effort
	summaries        map[types.WeeklySummaryID]*model.WeeklySummary
	feedbackRequests map[types.FeedbackRequestID]*model.FeedbackRequest
	feedback         map[types.FeedbackID]*model.Feedback
	notifications    map[types.NotificationID]*model.Notification
	activities       map[types.ActivityID]*model.Activity
}

// NewMemory creates a new memory repository
func NewMemory() interfaces.Repository {
	return &Memory{
		users:            make(map[types.UserID]*model.User),
		stakeholders:     make(map[types.StakeholderID]*model.Stakeholder),
		cohorts:          make(map[types.CohortID]*model.Cohort),
		candidates:       make(map[types.CandidateID]*model.Candidate),
		efforts:          make(map[types.EffortID]*model.Effort),
		summaries:        make(map[types.WeeklySummaryID]*model.WeeklySummary),
		feedbackRequests: make(map[types.FeedbackRequestID]*model.FeedbackRequest),
		feedback:         make(map[types.FeedbackID]*model.Feedback),
		notifications:    make(map[types.NotificationID]*model.Notification),
		activities:       make(map[types.ActivityID]*model.Activity),
	}
}

// PutUser saves a user to memory
func (m *Memory) PutUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return goerr.New("user is nil")
	}
	if user.ID == "" {
		return goerr.New("user ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	userCopy := *user
	m.users[user.ID] = &userCopy
	return nil
}

// GetUser retrieves a user by ID
func (m *Memory) GetUser(ctx context.Context, id types.UserID) (*model.User, error) {
	if id == "" {
		return nil, goerr.New("user ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrUserNotFound, "no user for ID", goerr.V("id", id))
	}

	// Return a copy to prevent external modifications
	userCopy := *user
	return &userCopy, nil
}

// GetUserByEmail retrieves a user by e-mail address (case-insensitive)
func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = model.NormalizeEmail(email)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, goerr.Wrap(model.ErrUserNotFound, "no user for email", goerr.V("email", email))
}

// GetUserByEmpID retrieves a user by employee ID
func (m *Memory) GetUserByEmpID(ctx context.Context, empID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.EmpID == empID {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, goerr.Wrap(model.ErrUserNotFound, "no user for employee ID", goerr.V("emp_id", empID))
}

// ListUsers returns all users sorted by name
func (m *Memory) ListUsers(ctx context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*model.User, 0, len(m.users))
	for _, user := range m.users {
		userCopy := *user
		users = append(users, &userCopy)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})
	return users, nil
}

// PutStakeholder saves a stakeholder to memory
func (m *Memory) PutStakeholder(ctx context.Context, s *model.Stakeholder) error {
	if s == nil {
		return goerr.New("stakeholder is nil")
	}
	if s.ID == "" {
		return goerr.New("stakeholder ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sCopy := *s
	m.stakeholders[s.ID] = &sCopy
	return nil
}

// GetStakeholder retrieves a stakeholder by ID
func (m *Memory) GetStakeholder(ctx context.Context, id types.StakeholderID) (*model.Stakeholder, error) {
	if id == "" {
		return nil, goerr.New("stakeholder ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.stakeholders[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrStakeholderNotFound, "no stakeholder for ID", goerr.V("id", id))
	}
	sCopy := *s
	return &sCopy, nil
}

// ListStakeholders returns stakeholders with role, or all when role is empty
func (m *Memory) ListStakeholders(ctx context.Context, role types.StakeholderRole) ([]*model.Stakeholder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Stakeholder, 0, len(m.stakeholders))
	for _, s := range m.stakeholders {
		if role != "" && s.Role != role {
			continue
		}
		sCopy := *s
		result = append(result, &sCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// DeleteStakeholder removes a stakeholder
func (m *Memory) DeleteStakeholder(ctx context.Context, id types.StakeholderID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.stakeholders[id]; !exists {
		return goerr.Wrap(model.ErrStakeholderNotFound, "no stakeholder to delete", goerr.V("id", id))
	}
	delete(m.stakeholders, id)
	return nil
}

// PutCohort saves a cohort to memory
func (m *Memory) PutCohort(ctx context.Context, cohort *model.Cohort) error {
	if cohort == nil {
		return goerr.New("cohort is nil")
	}
	if cohort.ID == "" {
		return goerr.New("cohort ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cohorts[cohort.ID] = copyCohort(cohort)
	return nil
}

// GetCohort retrieves a cohort by ID
func (m *Memory) GetCohort(ctx context.Context, id types.CohortID) (*model.Cohort, error) {
	if id == "" {
		return nil, goerr.New("cohort ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	cohort, exists := m.cohorts[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrCohortNotFound, "no cohort for ID", goerr.V("id", id))
	}
	return copyCohort(cohort), nil
}

// GetCohortByCode retrieves a cohort by its unique code
func (m *Memory) GetCohortByCode(ctx context.Context, code string) (*model.Cohort, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, cohort := range m.cohorts {
		if cohort.Code == code {
			return copyCohort(cohort), nil
		}
	}
	return nil, goerr.Wrap(model.ErrCohortNotFound, "no cohort for code", goerr.V("code", code))
}

// ListCohorts returns all cohorts sorted by start date
func (m *Memory) ListCohorts(ctx context.Context) ([]*model.Cohort, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cohorts := make([]*model.Cohort, 0, len(m.cohorts))
	for _, cohort := range m.cohorts {
		cohorts = append(cohorts, copyCohort(cohort))
	}
	sortCohorts(cohorts)
	return cohorts, nil
}

// DeleteCohort removes a cohort
func (m *Memory) DeleteCohort(ctx context.Context, id types.CohortID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.cohorts[id]; !exists {
		return goerr.Wrap(model.ErrCohortNotFound, "no cohort to delete", goerr.V("id", id))
	}
	delete(m.cohorts, id)
	return nil
}

// PutCandidate saves a candidate to memory
func (m *Memory) PutCandidate(ctx context.Context, c *model.Candidate) error {
	if c == nil {
		return goerr.New("candidate is nil")
	}
	if c.ID == "" {
		return goerr.New("candidate ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cCopy := *c
	m.candidates[c.ID] = &cCopy
	return nil
}

// GetCandidate retrieves a candidate by ID
func (m *Memory) GetCandidate(ctx context.Context, id types.CandidateID) (*model.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.candidates[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrCandidateNotFound, "no candidate for ID", goerr.V("id", id))
	}
	cCopy := *c
	return &cCopy, nil
}

// GetCandidateByCandidateID retrieves a candidate by enrollment number
func (m *Memory) GetCandidateByCandidateID(ctx context.Context, candidateID string) (*model.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.candidates {
		if c.CandidateID == candidateID {
			cCopy := *c
			return &cCopy, nil
		}
	}
	return nil, goerr.Wrap(model.ErrCandidateNotFound, "no candidate for candidate ID", goerr.V("candidate_id", candidateID))
}

// ListCandidates returns candidates of a cohort, or all when cohortID is empty
func (m *Memory) ListCandidates(ctx context.Context, cohortID types.CohortID) ([]*model.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Candidate, 0)
	for _, c := range m.candidates {
		if cohortID != "" && c.CohortID != cohortID {
			continue
		}
		cCopy := *c
		result = append(result, &cCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CandidateID < result[j].CandidateID
	})
	return result, nil
}

// DeleteCandidate removes a candidate
func (m *Memory) DeleteCandidate(ctx context.Context, id types.CandidateID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.candidates[id]; !exists {
		return goerr.Wrap(model.ErrCandidateNotFound, "no candidate to delete", goerr.V("id", id))
	}
	delete(m.candidates, id)
	return nil
}

// PutEffort saves an effort entry to memory
func (m *Memory) PutEffort(ctx context.Context, e *model.Effort) error {
	if e == nil {
		return goerr.New("effort is nil")
	}
	if e.ID == "" {
		return goerr.New("effort ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	eCopy := *e
	m.efforts[e.ID] = &eCopy
	return nil
}

// GetEffort retrieves an effort entry by ID
func (m *Memory) GetEffort(ctx context.Context, id types.EffortID) (*model.Effort, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.efforts[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrEffortNotFound, "no effort for ID", goerr.V("id", id))
	}
	eCopy := *e
	return &eCopy, nil
}

// ListEfforts returns efforts matching filter sorted by date
func (m *Memory) ListEfforts(ctx context.Context, filter interfaces.EffortFilter) ([]*model.Effort, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Effort, 0)
	for _, e := range m.efforts {
		if !filter.Match(e) {
			continue
		}
		eCopy := *e
		result = append(result, &eCopy)
	}
	sortEfforts(result)
	return result, nil
}

// DeleteEffort removes an effort entry
func (m *Memory) DeleteEffort(ctx context.Context, id types.EffortID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.efforts[id]; !exists {
		return goerr.Wrap(model.ErrEffortNotFound, "no effort to delete", goerr.V("id", id))
	}
	delete(m.efforts, id)
	return nil
}

// PutWeeklySummary saves a weekly summary, replacing the one of the same cohort week
func (m *Memory) PutWeeklySummary(ctx context.Context, s *model.WeeklySummary) error {
	if s == nil {
		return goerr.New("weekly summary is nil")
	}
	if s.CohortID == "" {
		return goerr.New("weekly summary cohort ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sCopy := copySummary(s)
	sCopy.ID = model.WeeklySummaryIDFor(s.CohortID, s.WeekStart)
	m.summaries[sCopy.ID] = sCopy
	return nil
}

// GetWeeklySummary retrieves the summary of the cohort week starting at weekStart
func (m *Memory) GetWeeklySummary(ctx context.Context, cohortID types.CohortID, weekStart time.Time) (*model.WeeklySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.summaries[model.WeeklySummaryIDFor(cohortID, weekStart)]
	if !exists {
		return nil, goerr.Wrap(model.ErrWeeklySummaryNotFound, "no weekly summary",
			goerr.V("cohort_id", cohortID),
			goerr.V("week_start", model.FormatDate(weekStart)))
	}
	return copySummary(s), nil
}

// ListWeeklySummaries returns summaries of a cohort by ascending week start
func (m *Memory) ListWeeklySummaries(ctx context.Context, cohortID types.CohortID) ([]*model.WeeklySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.WeeklySummary, 0)
	for _, s := range m.summaries {
		if s.CohortID == cohortID {
			result = append(result, copySummary(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WeekStart.Before(result[j].WeekStart)
	})
	return result, nil
}

// PutFeedbackRequest saves a feedback request to memory
func (m *Memory) PutFeedbackRequest(ctx context.Context, req *model.FeedbackRequest) error {
	if req == nil {
		return goerr.New("feedback request is nil")
	}
	if req.ID == "" {
		return goerr.New("feedback request ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	reqCopy := *req
	m.feedbackRequests[req.ID] = &reqCopy
	return nil
}

// GetFeedbackRequest retrieves a feedback request by ID
func (m *Memory) GetFeedbackRequest(ctx context.Context, id types.FeedbackRequestID) (*model.FeedbackRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, exists := m.feedbackRequests[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrFeedbackRequestNotFound, "no feedback request for ID", goerr.V("id", id))
	}
	reqCopy := *req
	return &reqCopy, nil
}

// GetFeedbackRequestByToken retrieves a feedback request by its public token
func (m *Memory) GetFeedbackRequestByToken(ctx context.Context, token types.FeedbackToken) (*model.FeedbackRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, req := range m.feedbackRequests {
		if req.Token == token {
			reqCopy := *req
			return &reqCopy, nil
		}
	}
	return nil, goerr.Wrap(model.ErrFeedbackRequestNotFound, "no feedback request for token")
}

// ListFeedbackRequests returns requests of a cohort, newest first
func (m *Memory) ListFeedbackRequests(ctx context.Context, cohortID types.CohortID) ([]*model.FeedbackRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.FeedbackRequest, 0)
	for _, req := range m.feedbackRequests {
		if req.CohortID == cohortID {
			reqCopy := *req
			result = append(result, &reqCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// PutFeedback saves a feedback response to memory
func (m *Memory) PutFeedback(ctx context.Context, f *model.Feedback) error {
	if f == nil {
		return goerr.New("feedback is nil")
	}
	if f.ID == "" {
		return goerr.New("feedback ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fCopy := *f
	m.feedback[f.ID] = &fCopy
	return nil
}

// ListFeedback returns responses of a cohort in submission order
func (m *Memory) ListFeedback(ctx context.Context, cohortID types.CohortID) ([]*model.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Feedback, 0)
	for _, f := range m.feedback {
		if f.CohortID == cohortID {
			fCopy := *f
			result = append(result, &fCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// HasFeedback reports whether employeeID already answered the request
func (m *Memory) HasFeedback(ctx context.Context, requestID types.FeedbackRequestID, employeeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, f := range m.feedback {
		if f.RequestID == requestID && f.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

// PutNotification saves a notification to memory
func (m *Memory) PutNotification(ctx context.Context, n *model.Notification) error {
	if n == nil {
		return goerr.New("notification is nil")
	}
	if n.ID == "" {
		return goerr.New("notification ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	nCopy := *n
	m.notifications[n.ID] = &nCopy
	return nil
}

// GetNotification retrieves a notification by ID
func (m *Memory) GetNotification(ctx context.Context, id types.NotificationID) (*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, exists := m.notifications[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotificationNotFound, "no notification for ID", goerr.V("id", id))
	}
	nCopy := *n
	return &nCopy, nil
}

// ListNotifications returns notifications of a recipient, newest first
func (m *Memory) ListNotifications(ctx context.Context, recipientID types.UserID) ([]*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Notification, 0)
	for _, n := range m.notifications {
		if n.RecipientID == recipientID {
			nCopy := *n
			result = append(result, &nCopy)
		}
	}
	sortNotifications(result)
	return result, nil
}

// DeleteNotifications removes every notification of a recipient
func (m *Memory) DeleteNotifications(ctx context.Context, recipientID types.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, n := range m.notifications {
		if n.RecipientID == recipientID {
			delete(m.notifications, id)
		}
	}
	return nil
}

// Close is a no-op for memory repository
func (m *Memory) Close() error {
	return nil
}

// PutActivity saves an activity log entry to memory
func (m *Memory) PutActivity(ctx context.Context, a *model.Activity) error {
	if a == nil {
		return goerr.New("activity is nil")
	}
	if a.ID == "" {
		return goerr.New("activity ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	aCopy := *a
	m.activities[a.ID] = &aCopy
	return nil
}

// ListActivities returns the activity log of a cohort, newest date first
func (m *Memory) ListActivities(ctx context.Context, cohortID types.CohortID) ([]*model.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Activity, 0)
	for _, a := range m.activities {
		if a.CohortID == cohortID {
			aCopy := *a
			result = append(result, &aCopy)
		}
	}
	model.SortActivities(result)
	return result, nil
}
