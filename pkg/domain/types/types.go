package types

import (
	"github.com/google/uuid"
)

// UserID represents a console user identifier
type UserID string

// String returns the string representation
func (id UserID) String() string {
	return string(id)
}

// NewUserID creates a new UserID
func NewUserID() UserID {
	return UserID(uuid.New().String())
}

// StakeholderID represents a trainer or mentor identifier
type StakeholderID string

// String returns the string representation
func (id StakeholderID) String() string {
	return string(id)
}

// NewStakeholderID creates a new StakeholderID
func NewStakeholderID() StakeholderID {
	return StakeholderID(uuid.New().String())
}

// CohortID represents a cohort identifier
type CohortID string

// String returns the string representation
func (id CohortID) String() string {
	return string(id)
}

// NewCohortID creates a new CohortID
func NewCohortID() CohortID {
	return CohortID(uuid.New().String())
}

// CandidateID represents a trainee identifier
type CandidateID string

// String returns the string representation
func (id CandidateID) String() string {
	return string(id)
}

// NewCandidateID creates a new CandidateID
func NewCandidateID() CandidateID {
	return CandidateID(uuid.New().String())
}

// EffortID represents an effort entry identifier
type EffortID string

// String returns the string representation
func (id EffortID) String() string {
	return string(id)
}

// NewEffortID creates a new EffortID using UUID v7 so that IDs sort by creation time
func NewEffortID() EffortID {
	id, err := uuid.NewV7()
	if err != nil {
		return EffortID(uuid.New().String())
	}
	return EffortID(id.String())
}

// WeeklySummaryID represents a weekly summary identifier
type WeeklySummaryID string

// String returns the string representation
func (id WeeklySummaryID) String() string {
	return string(id)
}

// FeedbackRequestID represents a feedback request identifier
type FeedbackRequestID string

// String returns the string representation
func (id FeedbackRequestID) String() string {
	return string(id)
}

// NewFeedbackRequestID creates a new FeedbackRequestID
func NewFeedbackRequestID() FeedbackRequestID {
	return FeedbackRequestID(uuid.New().String())
}

// FeedbackToken is the public token embedded in a feedback link
type FeedbackToken string

// String returns the string representation
func (t FeedbackToken) String() string {
	return string(t)
}

// NewFeedbackToken creates a new random FeedbackToken
func NewFeedbackToken() FeedbackToken {
	return FeedbackToken(uuid.New().String())
}

// FeedbackID represents a submitted feedback identifier
type FeedbackID string

// String returns the string representation
func (id FeedbackID) String() string {
	return string(id)
}

// NewFeedbackID creates a new FeedbackID
func NewFeedbackID() FeedbackID {
	return FeedbackID(uuid.New().String())
}

// NotificationID represents a notification identifier
type NotificationID string

// String returns the string representation
func (id NotificationID) String() string {
	return string(id)
}

// NewNotificationID creates a new NotificationID using UUID v7
func NewNotificationID() NotificationID {
	id, err := uuid.NewV7()
	if err != nil {
		return NotificationID(uuid.New().String())
	}
	return NotificationID(id.String())
}

// ActivityID represents a cohort activity log entry identifier
type ActivityID string

// String returns the string representation
func (id ActivityID) String() string {
	return string(id)
}

// NewActivityID creates a new ActivityID using UUID v7
func NewActivityID() ActivityID {
	id, err := uuid.NewV7()
	if err != nil {
		return ActivityID(uuid.New().String())
	}
	return ActivityID(id.String())
}
