package notify

import (
	"context"
	"time"
)

// DigestItem is one queued, not-yet-delivered notification awaiting a
// periodic consolidated send. Items are created by Manager.QueueDigest and
// marked sent by the digest flush.
type DigestItem struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      Type           `json:"type"`
	Severity  Severity       `json:"severity"`
	Content   Content        `json:"content"`
	Method    DeliveryMethod `json:"method"`
	Frequency Frequency      `json:"frequency"`
	QueuedAt  time.Time      `json:"queued_at"`
	SentAt    *time.Time     `json:"sent_at,omitempty"`
}

// DigestStorage persists queued digest items across flushes. Implementations
// must keep items pending until MarkSent so a failed flush retries them on
// the next run.
type DigestStorage interface {
	// Enqueue stores a new pending item.
	Enqueue(ctx context.Context, item DigestItem) error

	// ListPending returns all unsent items queued for the given frequency,
	// oldest first.
	ListPending(ctx context.Context, freq Frequency) ([]DigestItem, error)

	// MarkSent records the delivery time for the given item IDs.
	MarkSent(ctx context.Context, ids []string, at time.Time) error
}

// ContactResolver supplies delivery addresses at digest-flush time. Queued
// items deliberately do not snapshot addresses: resolving at flush time picks
// up contact changes made between queueing and delivery.
type ContactResolver interface {
	// Address returns where to reach the user on the given channel, or an
	// empty string when no address is on file. In-app delivery never
	// consults the resolver.
	Address(ctx context.Context, userID string, method DeliveryMethod) (string, error)
}

// DigestStats summarizes one flush run.
type DigestStats struct {
	Processed  int `json:"processed"`  // items examined
	Successful int `json:"successful"` // consolidated sends delivered
	Failed     int `json:"failed"`     // consolidated sends failed or skipped
}
