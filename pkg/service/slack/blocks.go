package slack

import (
	"fmt"
	"strings"

	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/slack-go/slack"
)

// notificationEmoji returns the emoji shown in front of a notification title
func notificationEmoji(t types.NotificationType) string {
	switch t {
	case types.NotificationCohortCreated, types.NotificationCohortAssignment:
		return "🎓"
	case types.NotificationCohortCompleted:
		return "🏁"
	case types.NotificationReportSubmitted:
		return "📝"
	case types.NotificationComplianceDeadline:
		return "⏰"
	case types.NotificationSystemAlert:
		return "⚠️"
	case types.NotificationAdminBroadcast:
		return "📢"
	default:
		return "🔔"
	}
}

// BuildNotificationBlocks renders a notification as a Slack message. The link
// is appended when both the notification and baseURL provide one.
func BuildNotificationBlocks(n *model.Notification, baseURL string) []slack.Block {
	title := fmt.Sprintf("%s *%s*", notificationEmoji(n.Type), n.Title)
	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, title, false, false),
			nil, nil,
		),
	}

	if n.Message != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, n.Message, false, false),
			nil, nil,
		))
	}

	elements := []slack.MixedElement{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("Audience: %s", audience(n.Role)), false, false),
	}
	if link := buildLink(baseURL, n.Link); link != "" {
		elements = append(elements,
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("<%s|Open in console>", link), false, false))
	}
	blocks = append(blocks, slack.NewContextBlock("", elements...))

	return blocks
}

func audience(role string) string {
	if role == "" || role == model.NotificationRoleAll {
		return "everyone"
	}
	return strings.ToLower(strings.ReplaceAll(role, "_", " "))
}

func buildLink(baseURL, path string) string {
	if baseURL == "" || path == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
