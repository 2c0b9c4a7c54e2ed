package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	usersCollection            = "users"
	stakeholdersCollection     = "stakeholders"
	cohortsCollection          = "cohorts"
	candidatesCollection       = "candidates"
	effortsCollection          = "efforts"
	weeklySummariesCollection  = "weekly_summaries"
	feedbackRequestsCollection = "feedback_requests"
	feedbackCollection         = "feedback"
	notificationsCollection    = "notifications"
	activitiesCollection       = "activities"
)

// Firestore implements Repository interface with Firestore.
// Field names in Firestore match Go struct field names (e.g. CohortID).
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on a wrong project or missing permissions
	_, err = client.Collection(usersCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{
		client: client,
	}, nil
}

// getDoc reads one document into T, returning notFound wrapped when it does not exist
func getDoc[T any](ctx context.Context, ref *firestore.DocumentRef, notFound error) (*T, error) {
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(notFound, "document not found",
				goerr.V("collection", ref.Parent.ID),
				goerr.V("id", ref.ID))
		}
		return nil, goerr.Wrap(err, "failed to get document from firestore",
			goerr.V("collection", ref.Parent.ID),
			goerr.V("id", ref.ID))
	}

	var v T
	if err := doc.DataTo(&v); err != nil {
		return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", ref.ID))
	}
	return &v, nil
}

// queryDocs reads every document matched by q
func queryDocs[T any](ctx context.Context, q firestore.Query) ([]*T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	result := make([]*T, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents")
		}

		var v T
		if err := doc.DataTo(&v); err != nil {
			return nil, goerr.Wrap(err, "failed to decode document", goerr.V("id", doc.Ref.ID))
		}
		result = append(result, &v)
	}
	return result, nil
}

// firstDoc returns the first document matched by q
func firstDoc[T any](ctx context.Context, q firestore.Query, notFound error, opts ...goerr.Option) (*T, error) {
	docs, err := queryDocs[T](ctx, q.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, goerr.Wrap(notFound, "no document matched query", opts...)
	}
	return docs[0], nil
}

// deleteDoc deletes a document after checking that it exists
func deleteDoc(ctx context.Context, ref *firestore.DocumentRef, notFound error) error {
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(notFound, "document to delete not found", goerr.V("id", ref.ID))
		}
		return goerr.Wrap(err, "failed to check document existence", goerr.V("id", ref.ID))
	}
	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete document from firestore", goerr.V("id", ref.ID))
	}
	return nil
}

func (f *Firestore) set(ctx context.Context, collection, id string, v any) error {
	if id == "" {
		return goerr.New("document ID is empty", goerr.V("collection", collection))
	}
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, v); err != nil {
		return goerr.Wrap(err, "failed to save document to firestore",
			goerr.V("collection", collection),
			goerr.V("id", id))
	}
	return nil
}

// PutUser saves a user to Firestore
func (f *Firestore) PutUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return goerr.New("user is nil")
	}
	return f.set(ctx, usersCollection, user.ID.String(), user)
}

// GetUser retrieves a user by ID
func (f *Firestore) GetUser(ctx context.Context, id types.UserID) (*model.User, error) {
	if id == "" {
		return nil, goerr.New("user ID is empty")
	}
	return getDoc[model.User](ctx, f.client.Collection(usersCollection).Doc(id.String()), model.ErrUserNotFound)
}

// GetUserByEmail retrieves a user by e-mail address
func (f *Firestore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	q := f.client.Collection(usersCollection).Where("Email", "==", email)
	return firstDoc[model.User](ctx, q, model.ErrUserNotFound, goerr.V("email", email))
}

// GetUserByEmpID retrieves a user by employee ID
func (f *Firestore) GetUserByEmpID(ctx context.Context, empID string) (*model.User, error) {
	q := f.client.Collection(usersCollection).Where("EmpID", "==", empID)
	return firstDoc[model.User](ctx, q, model.ErrUserNotFound, goerr.V("emp_id", empID))
}

// ListUsers returns all users sorted by name
func (f *Firestore) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := queryDocs[model.User](ctx, f.client.Collection(usersCollection).Query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})
	return users, nil
}

// PutStakeholder saves a stakeholder to Firestore
func (f *Firestore) PutStakeholder(ctx context.Context, s *model.Stakeholder) error {
	if s == nil {
		return goerr.New("stakeholder is nil")
	}
	return f.set(ctx, stakeholdersCollection, s.ID.String(), s)
}

// GetStakeholder retrieves a stakeholder by ID
func (f *Firestore) GetStakeholder(ctx context.Context, id types.StakeholderID) (*model.Stakeholder, error) {
	if id == "" {
		return nil, goerr.New("stakeholder ID is empty")
	}
	return getDoc[model.Stakeholder](ctx, f.client.Collection(stakeholdersCollection).Doc(id.String()), model.ErrStakeholderNotFound)
}

// ListStakeholders returns stakeholders with role, or all when role is empty
func (f *Firestore) ListStakeholders(ctx context.Context, role types.StakeholderRole) ([]*model.Stakeholder, error) {
	q := f.client.Collection(stakeholdersCollection).Query
	if role != "" {
		q = q.Where("Role", "==", role.String())
	}
	result, err := queryDocs[model.Stakeholder](ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stakeholders", goerr.V("role", role))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// DeleteStakeholder removes a stakeholder
func (f *Firestore) DeleteStakeholder(ctx context.Context, id types.StakeholderID) error {
	return deleteDoc(ctx, f.client.Collection(stakeholdersCollection).Doc(id.String()), model.ErrStakeholderNotFound)
}

// PutCohort saves a cohort to Firestore
func (f *Firestore) PutCohort(ctx context.Context, cohort *model.Cohort) error {
	if cohort == nil {
		return goerr.New("cohort is nil")
	}
	return f.set(ctx, cohortsCollection, cohort.ID.String(), cohort)
}

// GetCohort retrieves a cohort by ID
func (f *Firestore) GetCohort(ctx context.Context, id types.CohortID) (*model.Cohort, error) {
	if id == "" {
		return nil, goerr.New("cohort ID is empty")
	}
	return getDoc[model.Cohort](ctx, f.client.Collection(cohortsCollection).Doc(id.String()), model.ErrCohortNotFound)
}

// GetCohortByCode retrieves a cohort by its unique code
func (f *Firestore) GetCohortByCode(ctx context.Context, code string) (*model.Cohort, error) {
	q := f.client.Collection(cohortsCollection).Where("Code", "==", code)
	return firstDoc[model.Cohort](ctx, q, model.ErrCohortNotFound, goerr.V("code", code))
}

// ListCohorts returns all cohorts sorted by start date
func (f *Firestore) ListCohorts(ctx context.Context) ([]*model.Cohort, error) {
	cohorts, err := queryDocs[model.Cohort](ctx, f.client.Collection(cohortsCollection).Query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list cohorts")
	}
	sortCohorts(cohorts)
	return cohorts, nil
}

// DeleteCohort removes a cohort
func (f *Firestore) DeleteCohort(ctx context.Context, id types.CohortID) error {
	return deleteDoc(ctx, f.client.Collection(cohortsCollection).Doc(id.String()), model.ErrCohortNotFound)
}

// PutCandidate saves a candidate to Firestore
func (f *Firestore) PutCandidate(ctx context.Context, c *model.Candidate) error {
	if c == nil {
		return goerr.New("candidate is nil")
	}
	return f.set(ctx, candidatesCollection, c.ID.String(), c)
}

// GetCandidate retrieves a candidate by ID
func (f *Firestore) GetCandidate(ctx context.Context, id types.CandidateID) (*model.Candidate, error) {
	if id == "" {
		return nil, goerr.New("candidate ID is empty")
	}
	return getDoc[model.Candidate](ctx, f.client.Collection(candidatesCollection).Doc(id.String()), model.ErrCandidateNotFound)
}

// GetCandidateByCandidateID retrieves a candidate by enrollment number
func (f *Firestore) GetCandidateByCandidateID(ctx context.Context, candidateID string) (*model.Candidate, error) {
	q := f.client.Collection(candidatesCollection).Where("CandidateID", "==", candidateID)
	return firstDoc[model.Candidate](ctx, q, model.ErrCandidateNotFound, goerr.V("candidate_id", candidateID))
}

// ListCandidates returns candidates of a cohort, or all when cohortID is empty
func (f *Firestore) ListCandidates(ctx context.Context, cohortID types.CohortID) ([]*model.Candidate, error) {
	q := f.client.Collection(candidatesCollection).Query
	if cohortID != "" {
		q = q.Where("CohortID", "==", cohortID.String())
	}
	result, err := queryDocs[model.Candidate](ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list candidates", goerr.V("cohort_id", cohortID))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CandidateID < result[j].CandidateID
	})
	return result, nil
}

// DeleteCandidate removes a candidate
func (f *Firestore) DeleteCandidate(ctx context.Context, id types.CandidateID) error {
	return deleteDoc(ctx, f.client.Collection(candidatesCollection).Doc(id.String()), model.ErrCandidateNotFound)
}

// PutEffort saves an effort entry to Firestore
func (f *Firestore) PutEffort(ctx context.Context, e *model.Effort) error {
	if e == nil {
		return goerr.New("effort is nil")
	}
	return f.set(ctx, effortsCollection, e.ID.String(), e)
}

// GetEffort retrieves an effort entry by ID
func (f *Firestore) GetEffort(ctx context.Context, id types.EffortID) (*model.Effort, error) {
	if id == "" {
		return nil, goerr.New("effort ID is empty")
	}
	return getDoc[model.Effort](ctx, f.client.Collection(effortsCollection).Doc(id.String()), model.ErrEffortNotFound)
}

// ListEfforts returns efforts matching filter sorted by date. Only the
// equality condition is pushed to Firestore; date bounds are applied in
// memory to avoid requiring a composite index.
func (f *Firestore) ListEfforts(ctx context.Context, filter interfaces.EffortFilter) ([]*model.Effort, error) {
	q := f.client.Collection(effortsCollection).Query
	switch {
	case filter.CohortID != "":
		q = q.Where("CohortID", "==", filter.CohortID.String())
	case filter.StakeholderID != "":
		q = q.Where("StakeholderID", "==", filter.StakeholderID.String())
	}

	docs, err := queryDocs[model.Effort](ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list efforts", goerr.V("cohort_id", filter.CohortID))
	}

	result := make([]*model.Effort, 0, len(docs))
	for _, e := range docs {
		if filter.Match(e) {
			result = append(result, e)
		}
	}
	sortEfforts(result)
	return result, nil
}

// DeleteEffort removes an effort entry
func (f *Firestore) DeleteEffort(ctx context.Context, id types.EffortID) error {
	return deleteDoc(ctx, f.client.Collection(effortsCollection).Doc(id.String()), model.ErrEffortNotFound)
}

// PutWeeklySummary saves a weekly summary keyed by cohort and week start
func (f *Firestore) PutWeeklySummary(ctx context.Context, s *model.WeeklySummary) error {
	if s == nil {
		return goerr.New("weekly summary is nil")
	}
	if s.CohortID == "" {
		return goerr.New("weekly summary cohort ID is empty")
	}
	sCopy := *s
	sCopy.ID = model.WeeklySummaryIDFor(s.CohortID, s.WeekStart)
	return f.set(ctx, weeklySummariesCollection, sCopy.ID.String(), &sCopy)
}

// GetWeeklySummary retrieves the summary of the cohort week starting at weekStart
func (f *Firestore) GetWeeklySummary(ctx context.Context, cohortID types.CohortID, weekStart time.Time) (*model.WeeklySummary, error) {
	id := model.WeeklySummaryIDFor(cohortID, weekStart)
	return getDoc[model.WeeklySummary](ctx, f.client.Collection(weeklySummariesCollection).Doc(id.String()), model.ErrWeeklySummaryNotFound)
}

// ListWeeklySummaries returns summaries of a cohort by ascending week start
func (f *Firestore) ListWeeklySummaries(ctx context.Context, cohortID types.CohortID) ([]*model.WeeklySummary, error) {
	q := f.client.Collection(weeklySummariesCollection).Where("CohortID", "==", cohortID.String())
	result, err := queryDocs[model.WeeklySummary](ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list weekly summaries", goerr.V("cohort_id", cohortID))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WeekStart.Before(result[j].WeekStart)
	})
	return result, nil
}

// PutFeedbackRequest saves a feedback request to Firestore
func (f *Firestore) PutFeedbackRequest(ctx context.Context, req *model.FeedbackRequest) error {
	if req == nil {
		return goerr.New("feedback request is nil")
	}
	return f.set(ctx, feedbackRequestsCollection, req.ID.String(), req)
}

// GetFeedbackRequest retrieves a feedback request by ID
func (f *Firestore) GetFeedbackRequest(ctx context.Context, id types.FeedbackRequestID) (*model.FeedbackRequest, error) {
	if id == "" {
		return nil, goerr.New("feedback request ID is empty")
	}
	return getDoc[model.FeedbackRequest](ctx, f.client.Collection(feedbackRequestsCollection).Doc(id.String()), model.ErrFeedbackRequestNotFound)
}

// GetFeedbackRequestByToken retrieves a feedback request by its public token
func (f *Firestore) GetFeedbackRequestByToken(ctx context.Context, token types.FeedbackToken) (*model.FeedbackRequest, error) {
	if token == "" {
		return nil, goerr.Wrap(model.ErrFeedbackRequestNotFound, "feedback token is empty")
	}
	q := f.client.Collection(feedbackRequestsCollection).Where("Token", "==", token.String())
	return firstDoc[model.FeedbackRequest](ctx, q, model.ErrFeedbackRequestNotFound)
}

// ListFeedbackRequests returns requests of a cohort, newest first
func (f *Firestore) ListFeedbackRequests(ctx context.Context, cohortID types.CohortID) ([]*model.FeedbackRequest, error) {
	q := f.client.Collection(feedbackRequestsCollection).Where("CohortID", "==", cohortID.String())
	result, err := queryDocs[model.FeedbackRequest](ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list feedback requests", goerr.V("cohort_id", cohortID))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// PutFeedback saves a feedback response to Firestore
func (f *Firestore) PutFeedback(ctx context.Context, fb *model.Feedback) error {
	if fb == nil {
		return goerr.New("feedback is nil")
	}
	return f.set(ctx, feedbackCollection, fb.ID.String(), fb)
}

// ListFeedback returns responses of a cohort in submission order
func (f *Firestore) ListFeedback(ctx context.Context, cohortID types.CohortID) ([]*model.Feedback, error) {
	q := f.client.Collection(feedbackCollection).Where("CohortID", "==", cohortID.String())
	result, err := queryDocs[model.Feedback](ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list feedback", goerr.V("cohort_id", cohortID))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// HasFeedback reports whether employeeID already answered the request
func (f *Firestore) HasFeedback(ctx context.Context, requestID types.FeedbackRequestID, employeeID string) (bool, error) {
	q := f.client.Collection(feedbackCollection).Where("RequestID", "==", requestID.String())
	docs, err := queryDocs[model.Feedback](ctx, q)
	if err != nil {
		return false, goerr.Wrap(err, "failed to check feedback", goerr.V("request_id", requestID))
	}
	for _, fb := range docs {
		if fb.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

// PutNotification saves a notification to Firestore
func (f *Firestore) PutNotification(ctx context.Context, n *model.Notification) error {
	if n == nil {
		return goerr.New("notification is nil")
	}
	return f.set(ctx, notificationsCollection, n.ID.String(), n)
}

// GetNotification retrieves a notification by ID
func (f *Firestore) GetNotification(ctx context.Context, id types.NotificationID) (*model.Notification, error) {
	if id == "" {
		return nil, goerr.New("notification ID is empty")
	}
	return getDoc[model.Notification](ctx, f.client.Collection(notificationsCollection).Doc(id.String()), model.ErrNotificationNotFound)
}

// ListNotifications returns notifications of a recipient, newest first
func (f *Firestore) ListNotifications(ctx context.Context, recipientID types.UserID) ([]*model.Notification, error) {
	q := f.client.Collection(notificationsCollection).Where("RecipientID", "==", recipientID.String())
	result, err := queryDocs[model.Notification](ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V("recipient_id", recipientID))
	}
	sortNotifications(result)
	return result, nil
}

// DeleteNotifications removes every notification of a recipient
func (f *Firestore) DeleteNotifications(ctx context.Context, recipientID types.UserID) error {
	iter := f.client.Collection(notificationsCollection).
		Where("RecipientID", "==", recipientID.String()).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate notifications", goerr.V("recipient_id", recipientID))
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete notification", goerr.V("id", doc.Ref.ID))
		}
	}
	return nil
}

// PutActivity saves an activity log entry to Firestore
func (f *Firestore) PutActivity(ctx context.Context, a *model.Activity) error {
	if a == nil {
		return goerr.New("activity is nil")
	}
	return f.set(ctx, activitiesCollection, a.ID.String(), a)
}

// ListActivities returns the activity log of a cohort, newest date first
func (f *Firestore) ListActivities(ctx context.Context, cohortID types.CohortID) ([]*model.Activity, error) {
	q := f.client.Collection(activitiesCollection).Where("CohortID", "==", cohortID.String())
	result, err := queryDocs[model.Activity](ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list activities", goerr.V("cohort_id", cohortID))
	}
	model.SortActivities(result)
	return result, nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
