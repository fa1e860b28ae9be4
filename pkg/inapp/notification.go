package inapp

import (
	"time"

	"github.com/medbillhq/notifykit/pkg/notify"
)

// Notification is a persisted in-app notification row: the record behind a
// user's notification center.
type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      notify.Type     `json:"type"`
	Severity  notify.Severity `json:"severity"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      map[string]any  `json:"data,omitempty"`
	Actions   []notify.Action `json:"actions,omitempty"`
	Read      bool            `json:"read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*n.ExpiresAt)
}

// MarkAsRead marks the notification as read with the current timestamp.
func (n *Notification) MarkAsRead() {
	n.Read = true
	now := time.Now()
	n.ReadAt = &now
}
