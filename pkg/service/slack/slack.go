package slack

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/slack-go/slack"
)

// Poster is the subset of the Slack API used to deliver notifications
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Service mirrors in-app notifications to a Slack channel. A notification
// fanned out to several recipients is posted once.
type Service struct {
	client    Poster
	channelID string
	baseURL   string
	types     map[types.NotificationType]bool
	window    time.Duration
	now       func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

var _ interfaces.Notifier = (*Service)(nil)

// Option configures Service
type Option func(*Service)

// WithBaseURL sets the console URL used to build links
func WithBaseURL(url string) Option {
	return func(s *Service) {
		s.baseURL = url
	}
}

// WithTypes limits the notification types posted to Slack. All types are posted by default.
func WithTypes(ts ...types.NotificationType) Option {
	return func(s *Service) {
		s.types = make(map[types.NotificationType]bool, len(ts))
		for _, t := range ts {
			s.types[t] = true
		}
	}
}

// WithClient replaces the Slack API client
func WithClient(client Poster) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithDedupWindow sets how long an identical notification is suppressed
func WithDedupWindow(d time.Duration) Option {
	return func(s *Service) {
		s.window = d
	}
}

// New creates a Slack notifier posting to channelID with a bot token
func New(token, channelID string, opts ...Option) *Service {
	s := &Service{
		client:    slack.New(token),
		channelID: channelID,
		window:    time.Minute,
		now:       time.Now,
		sent:      make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify implements interfaces.Notifier
func (s *Service) Notify(ctx context.Context, n *model.Notification) error {
	if n == nil {
		return nil
	}
	if len(s.types) > 0 && !s.types[n.Type] {
		return nil
	}
	if !s.claim(dedupKey(n)) {
		ctxlog.From(ctx).Debug("Skip duplicated Slack notification", "notificationID", n.ID, "type", n.Type)
		return nil
	}

	blocks := BuildNotificationBlocks(n, s.baseURL)
	_, ts, err := s.client.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionText(n.Title, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post notification to Slack",
			goerr.V("channel", s.channelID),
			goerr.V("notificationID", n.ID))
	}

	ctxlog.From(ctx).Debug("Posted notification to Slack",
		"channel", s.channelID,
		"ts", ts,
		"type", n.Type,
	)
	return nil
}

// claim records key and reports whether it was not posted within the window
func (s *Service) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, at := range s.sent {
		if now.Sub(at) >= s.window {
			delete(s.sent, k)
		}
	}
	if _, ok := s.sent[key]; ok {
		return false
	}
	s.sent[key] = now
	return true
}

func dedupKey(n *model.Notification) string {
	return string(n.Type) + "\x00" + n.EntityID + "\x00" + n.Title + "\x00" + n.Message
}
