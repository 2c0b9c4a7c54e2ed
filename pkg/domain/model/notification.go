package model

import (
	"time"

	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// NotificationRoleAll addresses a notification to every role
const NotificationRoleAll = "ALL"

// Notification is an in-app message addressed to one user
type Notification struct {
	ID          types.NotificationID   `json:"id"`
	RecipientID types.UserID           `json:"recipient_id"`
	Role        string                 `json:"role"` // user role the message was sent to, or ALL
	Type        types.NotificationType `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Link        string                 `json:"link,omitempty"`
	EntityID    string                 `json:"entity_id,omitempty"`
	IsRead      bool                   `json:"is_read"`
	CreatedAt   time.Time              `json:"created_at"`
}

// NotificationDraft is the content of a notification before it is addressed
type NotificationDraft struct {
	Type     types.NotificationType
	Title    string
	Message  string
	Link     string
	EntityID string
}

// NewNotification addresses draft to recipient
func NewNotification(recipient types.UserID, role string, draft NotificationDraft, now time.Time) *Notification {
	if role == "" {
		role = NotificationRoleAll
	}
	return &Notification{
		ID:          types.NewNotificationID(),
		RecipientID: recipient,
		Role:        role,
		Type:        draft.Type,
		Title:       draft.Title,
		Message:     draft.Message,
		Link:        draft.Link,
		EntityID:    draft.EntityID,
		CreatedAt:   now,
	}
}
