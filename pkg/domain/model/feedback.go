package model

import (
	"math"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// FeedbackRequest is a shareable link collecting trainee feedback for one week of a cohort
type FeedbackRequest struct {
	ID         types.FeedbackRequestID `json:"id"`
	CohortID   types.CohortID          `json:"cohort_id"`
	Token      types.FeedbackToken     `json:"token"`
	WeekNumber int                     `json:"week_number"`
	Active     bool                    `json:"active"`
	CreatedBy  types.UserID            `json:"created_by"`
	CreatedAt  time.Time               `json:"created_at"`
	ExpiresAt  *time.Time              `json:"expires_at,omitempty"`
}

// NewFeedbackRequest creates an active request. expiryDays of zero means the link never expires.
func NewFeedbackRequest(cohortID types.CohortID, weekNumber, expiryDays int, by types.UserID, now time.Time) (*FeedbackRequest, error) {
	if weekNumber < 1 {
		return nil, validationError("week number must be positive", goerr.V("week_number", weekNumber))
	}
	if expiryDays < 0 {
		return nil, validationError("expiry days must not be negative", goerr.V("expiry_days", expiryDays))
	}

	req := &FeedbackRequest{
		ID:         types.NewFeedbackRequestID(),
		CohortID:   cohortID,
		Token:      types.NewFeedbackToken(),
		WeekNumber: weekNumber,
		Active:     true,
		CreatedBy:  by,
		CreatedAt:  now,
	}
	if expiryDays > 0 {
		expiresAt := now.AddDate(0, 0, expiryDays)
		req.ExpiresAt = &expiresAt
	}
	return req, nil
}

// IsExpired reports whether the request has an expiry before now
func (r *FeedbackRequest) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// CheckUsable returns an error if the link can no longer accept feedback
func (r *FeedbackRequest) CheckUsable(now time.Time) error {
	if !r.Active {
		return goerr.Wrap(ErrFeedbackInactive, "feedback request is inactive", goerr.V("request_id", r.ID))
	}
	if r.IsExpired(now) {
		return goerr.Wrap(ErrFeedbackExpired, "feedback request is expired",
			goerr.V("request_id", r.ID),
			goerr.V("expires_at", r.ExpiresAt))
	}
	return nil
}

// Feedback is one trainee's answers to a feedback request.
// Ratings are 1 to 5; a nil rating was not answered.
type Feedback struct {
	ID         types.FeedbackID        `json:"id"`
	CohortID   types.CohortID          `json:"cohort_id"`
	RequestID  types.FeedbackRequestID `json:"request_id"`
	WeekNumber int                     `json:"week_number"`

	// Technical trainer
	IsTechnicalSessionHeld       *bool  `json:"is_technical_session_held,omitempty"`
	CourseContentRating          *int   `json:"course_content_rating,omitempty"`
	TechnicalKnowledgeRating     *int   `json:"technical_knowledge_rating,omitempty"`
	TrainerEngagementRating      *int   `json:"trainer_engagement_rating,omitempty"`
	ConceptsScheduleRating       *int   `json:"concepts_schedule_rating,omitempty"`
	UdemyRecapRating             *int   `json:"udemy_recap_rating,omitempty"`
	AdditionalScenarioRating     *int   `json:"additional_scenario_rating,omitempty"`
	TechnicalLowScoreExplanation string `json:"technical_low_score_explanation,omitempty"`

	// Mentor
	IsMentorSessionHeld       *bool  `json:"is_mentor_session_held,omitempty"`
	MentorGuidanceRating      *int   `json:"mentor_guidance_rating,omitempty"`
	MentorLowScoreExplanation string `json:"mentor_low_score_explanation,omitempty"`

	// Coach
	CoachEffectivenessRating *int   `json:"coach_effectiveness_rating,omitempty"`
	CoachLowScoreExplanation string `json:"coach_low_score_explanation,omitempty"`

	// Buddy mentor
	DidBuddyMentorConnect     *bool  `json:"did_buddy_mentor_connect,omitempty"`
	WereDoubtsClarified       *bool  `json:"were_doubts_clarified,omitempty"`
	BuddyMentorGuidanceRating *int   `json:"buddy_mentor_guidance_rating,omitempty"`
	BuddyMentorSuggestions    string `json:"buddy_mentor_suggestions,omitempty"`

	// Behavioral trainer
	IsBehavioralSessionHeld       *bool  `json:"is_behavioral_session_held,omitempty"`
	BehavioralDeliveryRating      *int   `json:"behavioral_delivery_rating,omitempty"`
	BehavioralLowScoreExplanation string `json:"behavioral_low_score_explanation,omitempty"`

	OverallSatisfaction *int      `json:"overall_satisfaction,omitempty"`
	CandidateName       string    `json:"candidate_name,omitempty"`
	EmployeeID          string    `json:"employee_id"`
	CreatedAt           time.Time `json:"created_at"`
}

// Validate checks the employee ID and that every answered rating is within 1..5
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.EmployeeID) == "" {
		return validationError("employee ID is required")
	}
	ratings := map[string]*int{
		"course_content":        f.CourseContentRating,
		"technical_knowledge":   f.TechnicalKnowledgeRating,
		"trainer_engagement":    f.TrainerEngagementRating,
		"concepts_schedule":     f.ConceptsScheduleRating,
		"udemy_recap":           f.UdemyRecapRating,
		"additional_scenario":   f.AdditionalScenarioRating,
		"mentor_guidance":       f.MentorGuidanceRating,
		"coach_effectiveness":   f.CoachEffectivenessRating,
		"buddy_mentor_guidance": f.BuddyMentorGuidanceRating,
		"behavioral_delivery":   f.BehavioralDeliveryRating,
		"overall_satisfaction":  f.OverallSatisfaction,
	}
	for name, r := range ratings {
		if r != nil && (*r < 1 || *r > 5) {
			return validationError("rating must be between 1 and 5", goerr.V("field", name), goerr.V("value", *r))
		}
	}
	return nil
}

// technicalRatings returns the six technical trainer ratings in form order
func (f *Feedback) technicalRatings() []*int {
	return []*int{
		f.CourseContentRating,
		f.TechnicalKnowledgeRating,
		f.TrainerEngagementRating,
		f.ConceptsScheduleRating,
		f.UdemyRecapRating,
		f.AdditionalScenarioRating,
	}
}

// TechnicalAggregate is the mean of the six technical ratings, unanswered ones
// counting as zero. It is zero when the course content rating is missing.
func (f *Feedback) TechnicalAggregate() float64 {
	if f.CourseContentRating == nil {
		return 0
	}
	var sum int
	for _, r := range f.technicalRatings() {
		sum += intValue(r)
	}
	return float64(sum) / 6
}

// FeedbackSession is what a trainee sees when opening a feedback link
type FeedbackSession struct {
	Request        *FeedbackRequest `json:"request"`
	CohortCode     string           `json:"cohort_code"`
	TrainerHours   float64          `json:"trainer_hours"`
	MentorHours    float64          `json:"mentor_hours"`
	CoachHours     float64          `json:"coach_hours"` // behavioral trainer hours
	TotalHours     float64          `json:"total_hours"`
	TrainerName    string           `json:"trainer_name,omitempty"`
	MentorName     string           `json:"mentor_name,omitempty"`
	CoachName      string           `json:"coach_name,omitempty"`
	BuddyName      string           `json:"buddy_name,omitempty"`
	BehavioralName string           `json:"behavioral_name,omitempty"`
}

// FeedbackAverages are the mean scores of a cohort's feedback
type FeedbackAverages struct {
	Trainer float64 `json:"trainer"`
	Mentor  float64 `json:"mentor"`
	Coach   float64 `json:"coach"`
	Overall float64 `json:"overall"`
}

// FeedbackAnalytics summarises every response of a cohort
type FeedbackAnalytics struct {
	TotalResponses int              `json:"total_responses"`
	Averages       FeedbackAverages `json:"averages"`
	Responses      []*Feedback      `json:"responses"`
}

// AnalyzeFeedback computes averages over responses. Each average only counts
// responses that answered the relevant question, except the overall average
// which treats a missing answer as zero. Averages are zero without data.
func AnalyzeFeedback(responses []*Feedback) *FeedbackAnalytics {
	var trainer, mentor, coach, overall mean
	for _, f := range responses {
		if f.CourseContentRating != nil {
			trainer.add(f.TechnicalAggregate())
		}
		if f.MentorGuidanceRating != nil {
			mentor.add(float64(*f.MentorGuidanceRating))
		}
		if f.CoachEffectivenessRating != nil {
			coach.add(float64(*f.CoachEffectivenessRating))
		}
		overall.add(float64(intValue(f.OverallSatisfaction)))
	}

	if responses == nil {
		responses = []*Feedback{}
	}
	return &FeedbackAnalytics{
		TotalResponses: len(responses),
		Averages: FeedbackAverages{
			Trainer: trainer.value(),
			Mentor:  mentor.value(),
			Coach:   coach.value(),
			Overall: overall.value(),
		},
		Responses: responses,
	}
}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.count++
}

func (m *mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return math.Round(m.sum/float64(m.count)*100) / 100
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
