package config

import (
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	slackSvc "github.com/secmon-lab/ascent/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds configuration of the Slack notification channel
type Slack struct {
	OAuthToken string
	ChannelID  string
	Types      []string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack bot token used to post notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("ASCENT_SLACK_OAUTH_TOKEN"),
			Destination: &s.OAuthToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID receiving notifications",
			Category:    "Slack",
			Sources:     cli.EnvVars("ASCENT_SLACK_CHANNEL"),
			Destination: &s.ChannelID,
		},
		&cli.StringSliceFlag{
			Name:        "slack-notification-type",
			Usage:       "Notification types forwarded to Slack (default: all)",
			Category:    "Slack",
			Sources:     cli.EnvVars("ASCENT_SLACK_NOTIFICATION_TYPES"),
			Destination: &s.Types,
		},
	}
}

// IsConfigured reports whether notifications can be posted
func (s *Slack) IsConfigured() bool {
	return s.OAuthToken != "" && s.ChannelID != ""
}

// Configure creates the Slack notifier, or nil when Slack is not configured.
// frontendURL is used for links back to the console.
func (s *Slack) Configure(frontendURL string) (interfaces.Notifier, error) {
	if !s.IsConfigured() {
		return nil, nil
	}

	var filter []types.NotificationType
	for _, v := range s.Types {
		t := types.NotificationType(strings.ToUpper(strings.TrimSpace(v)))
		if !t.IsValid() {
			return nil, goerr.New("invalid slack notification type", goerr.V("type", v))
		}
		filter = append(filter, t)
	}

	opts := []slackSvc.Option{slackSvc.WithBaseURL(frontendURL)}
	if len(filter) > 0 {
		opts = append(opts, slackSvc.WithTypes(filter...))
	}
	return slackSvc.New(s.OAuthToken, s.ChannelID, opts...), nil
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_oauth_token", s.OAuthToken != ""),
		slog.String("channel", s.ChannelID),
		slog.Any("types", s.Types),
	)
}
