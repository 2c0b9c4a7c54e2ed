package interfaces

import (
	"context"

	"github.com/secmon-lab/ascent/pkg/domain/model"
)

// Notifier forwards notifications to an external channel such as Slack
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// Publisher pushes notifications to the recipient's live connections
type Publisher interface {
	Publish(ctx context.Context, n *model.Notification)
}
