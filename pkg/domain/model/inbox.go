package model

import (
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

// Inbox is the notification list of one user, newest first. Read-state changes
// are applied tentatively and must then be committed or rolled back depending
// on whether they were persisted.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
}

// NewInbox creates an inbox holding items in the given order
func NewInbox(items []*Notification) *Inbox {
	b := &Inbox{}
	b.Set(items)
	return b
}

// Add prepends n unless a notification with the same ID is already present
func (b *Inbox) Add(n *Notification) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, item := range b.items {
		if item.ID == n.ID {
			return false
		}
	}
	b.items = append([]Notification{*n}, b.items...)
	return true
}

// Set replaces the whole list
func (b *Inbox) Set(items []*Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = make([]Notification, 0, len(items))
	for _, n := range items {
		b.items = append(b.items, *n)
	}
}

// Clear empties the inbox
func (b *Inbox) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
}

// List returns a copy of the notifications
func (b *Inbox) List() []*Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]*Notification, len(b.items))
	for i := range b.items {
		n := b.items[i]
		result[i] = &n
	}
	return result
}

// Len returns the number of notifications
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// UnreadCount returns the number of unread notifications
func (b *Inbox) UnreadCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, n := range b.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// MarkRead tentatively marks one notification read
func (b *Inbox) MarkRead(id types.NotificationID) (*ReadChange, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			change := &ReadChange{inbox: b, prev: map[types.NotificationID]bool{id: b.items[i].IsRead}}
			b.items[i].IsRead = true
			return change, nil
		}
	}
	return nil, goerr.Wrap(ErrNotificationNotFound, "notification not in inbox", goerr.V("id", id))
}

// MarkAllRead tentatively marks every unread notification read
func (b *Inbox) MarkAllRead() *ReadChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	change := &ReadChange{inbox: b, prev: make(map[types.NotificationID]bool)}
	for i := range b.items {
		if !b.items[i].IsRead {
			change.prev[b.items[i].ID] = false
			b.items[i].IsRead = true
		}
	}
	return change
}

// ReadChange is a tentative read-state transition of an Inbox
type ReadChange struct {
	inbox *Inbox
	prev  map[types.NotificationID]bool
	done  bool
}

// IDs returns the notifications touched by the change
func (c *ReadChange) IDs() []types.NotificationID {
	ids := make([]types.NotificationID, 0, len(c.prev))
	for id := range c.prev {
		ids = append(ids, id)
	}
	return ids
}

// Confirm keeps the transition of id even if the rest is rolled back
func (c *ReadChange) Confirm(id types.NotificationID) {
	c.inbox.mu.Lock()
	defer c.inbox.mu.Unlock()
	delete(c.prev, id)
}

// Commit keeps the transition
func (c *ReadChange) Commit() {
	c.inbox.mu.Lock()
	defer c.inbox.mu.Unlock()
	c.done = true
}

// Rollback restores the read state from before the transition. It is a no-op
// after Commit or a previous Rollback.
func (c *ReadChange) Rollback() {
	c.inbox.mu.Lock()
	defer c.inbox.mu.Unlock()

	if c.done {
		return
	}
	c.done = true
	for i := range c.inbox.items {
		if prev, ok := c.prev[c.inbox.items[i].ID]; ok {
			c.inbox.items[i].IsRead = prev
		}
	}
}
