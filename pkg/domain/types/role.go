package types

// UserRole is the role of a console user
type UserRole string

const (
	UserRoleAdmin        UserRole = "ADMIN"
	UserRoleCoach        UserRole = "COACH"
	UserRoleLocationLead UserRole = "LOCATION_LEAD"
)

// String returns the string representation of the role
func (r UserRole) String() string {
	return string(r)
}

// IsValid checks if the role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleCoach, UserRoleLocationLead:
		return true
	default:
		return false
	}
}

// UserStatus is the activation status of a user or stakeholder
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// StakeholderRole is the role a trainer or mentor plays for a cohort.
// The same values classify effort entries.
type StakeholderRole string

const (
	RoleTrainer     StakeholderRole = "TRAINER"
	RoleBHTrainer   StakeholderRole = "BH_TRAINER"
	RoleMentor      StakeholderRole = "MENTOR"
	RoleBuddyMentor StakeholderRole = "BUDDY_MENTOR"
)

// StakeholderRoles lists every stakeholder role in display order
var StakeholderRoles = []StakeholderRole{
	RoleTrainer,
	RoleBHTrainer,
	RoleMentor,
	RoleBuddyMentor,
}

// String returns the string representation of the role
func (r StakeholderRole) String() string {
	return string(r)
}

// IsValid checks if the role is valid
func (r StakeholderRole) IsValid() bool {
	switch r {
	case RoleTrainer, RoleBHTrainer, RoleMentor, RoleBuddyMentor:
		return true
	default:
		return false
	}
}

// DisplayName returns a human readable label for the role
func (r StakeholderRole) DisplayName() string {
	switch r {
	case RoleTrainer:
		return "Technical Trainer"
	case RoleBHTrainer:
		return "Behavioral Trainer"
	case RoleMentor:
		return "Mentor"
	case RoleBuddyMentor:
		return "Buddy Mentor"
	default:
		return string(r)
	}
}

// EffortMode tells whether an effort was delivered virtually or in person
type EffortMode string

const (
	EffortModeVirtual  EffortMode = "VIRTUAL"
	EffortModeInPerson EffortMode = "IN_PERSON"
)

// CandidateStatus is the progress status of a trainee
type CandidateStatus string

const (
	CandidateStatusActive    CandidateStatus = "ACTIVE"
	CandidateStatusInactive  CandidateStatus = "INACTIVE"
	CandidateStatusCompleted CandidateStatus = "COMPLETED"
)

// IsValid checks if the status is valid
func (s CandidateStatus) IsValid() bool {
	switch s {
	case CandidateStatusActive, CandidateStatusInactive, CandidateStatusCompleted:
		return true
	default:
		return false
	}
}

// NotificationType classifies notifications shown in the console
type NotificationType string

const (
	NotificationCohortAssignment   NotificationType = "COHORT_ASSIGNMENT"
	NotificationReportSubmitted    NotificationType = "REPORT_SUBMITTED"
	NotificationRoleUpdate         NotificationType = "ROLE_UPDATE"
	NotificationSystemAlert        NotificationType = "SYSTEM_ALERT"
	NotificationCohortCreated      NotificationType = "COHORT_CREATED"
	NotificationCohortCompleted    NotificationType = "COHORT_COMPLETED"
	NotificationComplianceDeadline NotificationType = "COMPLIANCE_DEADLINE"
	NotificationAdminBroadcast     NotificationType = "ADMIN_BROADCAST"
)

// IsValid checks if the notification type is known
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationCohortAssignment, NotificationReportSubmitted, NotificationRoleUpdate,
		NotificationSystemAlert, NotificationCohortCreated, NotificationCohortCompleted,
		NotificationComplianceDeadline, NotificationAdminBroadcast:
		return true
	default:
		return false
	}
}

// FeedbackType selects a section of the feedback form
type FeedbackType string

const (
	FeedbackTechnical  FeedbackType = "technical"
	FeedbackMentor     FeedbackType = "mentor"
	FeedbackCoach      FeedbackType = "coach"
	FeedbackBuddy      FeedbackType = "buddy"
	FeedbackBehavioral FeedbackType = "behavioral"
)

// IsValid checks if the feedback type is valid
func (t FeedbackType) IsValid() bool {
	switch t {
	case FeedbackTechnical, FeedbackMentor, FeedbackCoach, FeedbackBuddy, FeedbackBehavioral:
		return true
	default:
		return false
	}
}
