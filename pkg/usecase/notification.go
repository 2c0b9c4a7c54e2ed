package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
	"github.com/secmon-lab/ascent/pkg/utils/async"
)

// NotificationList is the inbox of one user
type NotificationList struct {
	Items       []*model.Notification `json:"items"`
	UnreadCount int                   `json:"unread_count"`
}

// NotificationUseCase delivers in-app notifications and keeps per-user inboxes
type NotificationUseCase struct {
	repo      interfaces.Repository
	publisher interfaces.Publisher
	notifier  interfaces.Notifier

	mu      sync.Mutex
	inboxes map[types.UserID]*model.Inbox
	config
}

// NotificationOption configures optional delivery channels
type NotificationOption func(*NotificationUseCase)

// WithPublisher pushes new notifications to live connections
func WithPublisher(p interfaces.Publisher) NotificationOption {
	return func(n *NotificationUseCase) {
		n.publisher = p
	}
}

// WithNotifier forwards new notifications to an external channel
func WithNotifier(notifier interfaces.Notifier) NotificationOption {
	return func(n *NotificationUseCase) {
		n.notifier = notifier
	}
}

// WithNotificationOptions applies common options
func WithNotificationOptions(opts ...Option) NotificationOption {
	return func(n *NotificationUseCase) {
		for _, opt := range opts {
			opt(&n.config)
		}
	}
}

// NewNotificationUseCase creates a new notification usecase
func NewNotificationUseCase(repo interfaces.Repository, opts ...NotificationOption) *NotificationUseCase {
	n := &NotificationUseCase{
		repo:    repo,
		inboxes: make(map[types.UserID]*model.Inbox),
		config:  newConfig(nil),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify saves a notification for recipient and pushes it to the live
// channels. role is the audience the message was addressed to.
func (n *NotificationUseCase) Notify(ctx context.Context, recipient types.UserID, role string, draft model.NotificationDraft) (*model.Notification, error) {
	if recipient == "" {
		return nil, goerr.New("recipient is required", goerr.T(model.TagValidation))
	}

	notification := model.NewNotification(recipient, role, draft, n.now())
	if err := n.repo.PutNotification(ctx, notification); err != nil {
		return nil, goerr.Wrap(err, "failed to save notification",
			goerr.V("recipient", recipient),
			goerr.V("type", draft.Type))
	}

	n.mu.Lock()
	inbox, ok := n.inboxes[recipient]
	n.mu.Unlock()
	if ok {
		inbox.Add(notification)
	}

	if n.publisher != nil {
		n.publisher.Publish(ctx, notification)
	}
	if n.notifier != nil {
		pending := *notification
		async.Dispatch(ctx, "slack-notify", func(ctx context.Context) error {
			return n.notifier.Notify(ctx, &pending)
		})
	}

	ctxlog.From(ctx).Debug("Notification sent",
		"notificationID", notification.ID,
		"recipient", recipient,
		"type", draft.Type,
	)
	return notification, nil
}

// NotifyRole sends draft to every active user holding role except exclude.
// It returns the number of notifications sent.
func (n *NotificationUseCase) NotifyRole(ctx context.Context, role types.UserRole, draft model.NotificationDraft, exclude types.UserID) (int, error) {
	users, err := n.repo.ListUsers(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list users", goerr.V("role", role))
	}

	sent := 0
	for _, user := range users {
		if user.Role != role || !user.IsActive() || user.ID == exclude {
			continue
		}
		if _, err := n.Notify(ctx, user.ID, role.String(), draft); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (n *NotificationUseCase) inbox(ctx context.Context, userID types.UserID) (*model.Inbox, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if inbox, ok := n.inboxes[userID]; ok {
		return inbox, nil
	}

	items, err := n.repo.ListNotifications(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load notifications", goerr.V("user_id", userID))
	}
	inbox := model.NewInbox(items)
	n.inboxes[userID] = inbox
	return inbox, nil
}

// ListNotifications returns the inbox of userID, newest first
func (n *NotificationUseCase) ListNotifications(ctx context.Context, userID types.UserID) (*NotificationList, error) {
	inbox, err := n.inbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{
		Items:       inbox.List(),
		UnreadCount: inbox.UnreadCount(),
	}, nil
}

// MarkRead marks one notification of userID read
func (n *NotificationUseCase) MarkRead(ctx context.Context, userID types.UserID, id types.NotificationID) error {
	inbox, err := n.inbox(ctx, userID)
	if err != nil {
		return err
	}
	change, err := inbox.MarkRead(id)
	if err != nil {
		return goerr.Wrap(err, "failed to mark notification read", goerr.V("user_id", userID))
	}
	return n.persistRead(ctx, change)
}

// MarkAllRead marks every notification of userID read
func (n *NotificationUseCase) MarkAllRead(ctx context.Context, userID types.UserID) error {
	inbox, err := n.inbox(ctx, userID)
	if err != nil {
		return err
	}
	return n.persistRead(ctx, inbox.MarkAllRead())
}

func (n *NotificationUseCase) persistRead(ctx context.Context, change *model.ReadChange) error {
	for _, id := range change.IDs() {
		notification, err := n.repo.GetNotification(ctx, id)
		if err != nil {
			change.Rollback()
			return goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
		}
		if !notification.IsRead {
			notification.IsRead = true
			if err := n.repo.PutNotification(ctx, notification); err != nil {
				change.Rollback()
				return goerr.Wrap(err, "failed to save read state", goerr.V("id", id))
			}
		}
		// Saved entries stay read when a later one fails
		change.Confirm(id)
	}
	change.Commit()
	return nil
}

// ClearNotifications deletes every notification of userID
func (n *NotificationUseCase) ClearNotifications(ctx context.Context, userID types.UserID) error {
	if err := n.repo.DeleteNotifications(ctx, userID); err != nil {
		return goerr.Wrap(err, "failed to clear notifications", goerr.V("user_id", userID))
	}

	n.mu.Lock()
	inbox, ok := n.inboxes[userID]
	n.mu.Unlock()
	if ok {
		inbox.Clear()
	}

	ctxlog.From(ctx).Info("Notifications cleared", "userID", userID)
	return nil
}

// Broadcast sends an admin announcement to every active user of role, or to
// every active user when role is empty
func (n *NotificationUseCase) Broadcast(ctx context.Context, role types.UserRole, title, message string, sender types.UserID) (int, error) {
	if title == "" || message == "" {
		return 0, goerr.New("title and message are required", goerr.T(model.TagValidation))
	}
	draft := model.NotificationDraft{
		Type:    types.NotificationAdminBroadcast,
		Title:   title,
		Message: message,
	}
	if role != "" {
		return n.NotifyRole(ctx, role, draft, sender)
	}

	users, err := n.repo.ListUsers(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list users")
	}
	sent := 0
	for _, user := range users {
		if !user.IsActive() || user.ID == sender {
			continue
		}
		if _, err := n.Notify(ctx, user.ID, model.NotificationRoleAll, draft); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
