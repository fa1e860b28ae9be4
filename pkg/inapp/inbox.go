package inapp

import (
	"context"
)

// Inbox is the read side of the notification center: the queries a UI needs
// to list, open, and acknowledge a user's in-app notifications. Delivery
// goes through the Dispatcher; the Inbox never creates rows.
type Inbox struct {
	storage Storage
}

// NewInbox creates an Inbox over the given storage.
func NewInbox(storage Storage) *Inbox {
	return &Inbox{storage: storage}
}

func (i *Inbox) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	return i.storage.Get(ctx, userID, notifID)
}

func (i *Inbox) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	return i.storage.List(ctx, userID, opts)
}

func (i *Inbox) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	return i.storage.MarkRead(ctx, userID, notifIDs...)
}

// MarkAllRead marks every unread notification as read for a user.
func (i *Inbox) MarkAllRead(ctx context.Context, userID string) error {
	notifications, err := i.storage.List(ctx, userID, ListOptions{OnlyUnread: true})
	if err != nil {
		return err
	}

	ids := make([]string, len(notifications))
	for idx, n := range notifications {
		ids[idx] = n.ID
	}

	if len(ids) > 0 {
		return i.storage.MarkRead(ctx, userID, ids...)
	}
	return nil
}

func (i *Inbox) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	return i.storage.Delete(ctx, userID, notifIDs...)
}

func (i *Inbox) CountUnread(ctx context.Context, userID string) (int, error) {
	return i.storage.CountUnread(ctx, userID)
}
