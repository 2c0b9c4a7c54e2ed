package model

import (
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

var feedbackCommonHeaders = []string{
	"Feedback Provider",
	"Associate Name",
	"Feedback Receiver",
	"Receiver Name",
	"Cohort Name",
	"Location",
	"SL",
	"BU",
	"SBU",
	"Feedback Date",
}

type feedbackExportConfig struct {
	headers          []string
	fallbackReceiver string
	columns          func(f *Feedback) []string
}

var feedbackExportConfigs = map[types.FeedbackType]feedbackExportConfig{
	types.FeedbackTechnical: {
		headers: []string{
			"Was the Technical session held this week?",
			"Rate Course Content",
			"Rate Technical Knowledge",
			"Rate Trainer Engagement",
			"Rate Concepts Schedule",
			"Rate Udemy Recap",
			"Rate Additional Scenario",
			"Low Score Explanation",
			"Aggregated Score",
		},
		fallbackReceiver: "Technical Trainer",
		columns: func(f *Feedback) []string {
			var sum int
			for _, r := range f.technicalRatings() {
				sum += intValue(r)
			}
			return []string{
				yesNo(f.IsTechnicalSessionHeld),
				rating(f.CourseContentRating),
				rating(f.TechnicalKnowledgeRating),
				rating(f.TrainerEngagementRating),
				rating(f.ConceptsScheduleRating),
				rating(f.UdemyRecapRating),
				rating(f.AdditionalScenarioRating),
				f.TechnicalLowScoreExplanation,
				strconv.FormatFloat(float64(sum)/6, 'f', 2, 64),
			}
		},
	},
	types.FeedbackMentor: {
		headers: []string{
			"Was the Mentor session held this week?",
			"Please reflect on the Mentor's ability to provide you guidance and practical inputs related to the course topics during this week?",
			"Please give your feedback if you have scored below 3 for any of the above questions",
			"Aggregated Score",
		},
		fallbackReceiver: "Mentor",
		columns: func(f *Feedback) []string {
			return []string{
				yesNo(f.IsMentorSessionHeld),
				rating(f.MentorGuidanceRating),
				f.MentorLowScoreExplanation,
				rating(f.MentorGuidanceRating),
			}
		},
	},
	types.FeedbackCoach: {
		headers: []string{
			"Please reflect if your GenC HR coach was effective in guiding you on day-to-day learning schedules, milestones, checkpoints, and other necessary support you required this week?",
			"Please give your feedback if you have scored below 3 for the above question",
			"Aggregated Score",
		},
		fallbackReceiver: "Coach",
		columns: func(f *Feedback) []string {
			return []string{
				rating(f.CoachEffectivenessRating),
				f.CoachLowScoreExplanation,
				rating(f.CoachEffectivenessRating),
			}
		},
	},
	types.FeedbackBuddy: {
		headers: []string{
			"Did your Buddy Mentor connect with you this week",
			"Were your doubts clarified by your Buddy Mentor",
			"Please reflect whether the Buddy Mentor was able to provide you guidance that gives you the confidence to clear your stage 1 qualifier assessment.",
			"Please share your concerns or suggestions regarding the Buddy Mentor Program",
			"Aggregated Score",
		},
		fallbackReceiver: "Buddy Mentor",
		columns: func(f *Feedback) []string {
			return []string{
				yesNo(f.DidBuddyMentorConnect),
				yesNo(f.WereDoubtsClarified),
				rating(f.BuddyMentorGuidanceRating),
				f.BuddyMentorSuggestions,
				rating(f.BuddyMentorGuidanceRating),
			}
		},
	},
	types.FeedbackBehavioral: {
		headers: []string{
			"Was the Behavioral session held this week?",
			"Please reflect on the behavioral trainer's ability to deliver course content",
			"Please give your feedback if you have scored below 3 for the above question",
			"Aggregated Score",
		},
		fallbackReceiver: "Behavioral Trainer",
		columns: func(f *Feedback) []string {
			return []string{
				yesNo(f.IsBehavioralSessionHeld),
				rating(f.BehavioralDeliveryRating),
				f.BehavioralLowScoreExplanation,
				rating(f.BehavioralDeliveryRating),
			}
		},
	},
}

// FeedbackExport is a tabular rendering of one feedback section
type FeedbackExport struct {
	Headers []string
	Rows    [][]string
}

// ExportFeedback renders one feedback section of responses as table rows.
// receiver is the name of the person the section is about; an empty name
// falls back to the role label.
func ExportFeedback(ft types.FeedbackType, cohort *Cohort, receiver string, responses []*Feedback) (*FeedbackExport, error) {
	cfg, ok := feedbackExportConfigs[ft]
	if !ok {
		return nil, validationError("unsupported feedback type", goerr.V("type", ft))
	}
	if receiver == "" {
		receiver = cfg.fallbackReceiver
	}

	headers := make([]string, 0, len(feedbackCommonHeaders)+len(cfg.headers))
	headers = append(headers, feedbackCommonHeaders...)
	headers = append(headers, cfg.headers...)

	rows := make([][]string, 0, len(responses))
	for _, f := range responses {
		associate := f.CandidateName
		if associate == "" {
			associate = "Anonymous"
		}
		row := []string{
			"Feedback Provider",
			associate,
			"Feedback Receiver",
			receiver,
			cohort.Code,
			cohort.TrainingLocation,
			cohort.SL,
			cohort.BU,
			cohort.SBU,
			FormatDate(f.CreatedAt),
		}
		rows = append(rows, append(row, cfg.columns(f)...))
	}

	return &FeedbackExport{Headers: headers, Rows: rows}, nil
}

// FeedbackReceiverRole maps a feedback section to the stakeholder role it rates.
// The coach section rates the cohort's coach and has no stakeholder role.
func FeedbackReceiverRole(ft types.FeedbackType) (types.StakeholderRole, bool) {
	switch ft {
	case types.FeedbackTechnical:
		return types.RoleTrainer, true
	case types.FeedbackMentor:
		return types.RoleMentor, true
	case types.FeedbackBuddy:
		return types.RoleBuddyMentor, true
	case types.FeedbackBehavioral:
		return types.RoleBHTrainer, true
	default:
		return "", false
	}
}

func rating(r *int) string {
	if r == nil || *r == 0 {
		return ""
	}
	return strconv.Itoa(*r)
}

func yesNo(b *bool) string {
	if b != nil && *b {
		return "Yes"
	}
	return "No"
}
