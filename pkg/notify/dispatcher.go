package notify

import (
	"context"
	"time"
)

// Target addresses one delivery attempt. Address carries whatever the
// channel needs to reach the user: an email address, a phone number, or
// nothing for in-app delivery.
type Target struct {
	UserID  string
	Address string
}

// SendOptions carries the notification classification alongside the content
// so channels can tag, expire, and prioritize without re-resolving it.
type SendOptions struct {
	Type      Type
	Severity  Severity
	ExpiresAt *time.Time
}

// Dispatcher is the per-channel delivery contract the manager orchestrates.
// Implementations wrap a transport (in-app persistence, email provider, SMS
// gateway) and convert every per-recipient transport failure into a failed
// DeliveryResult. The error return is reserved for configuration-class
// failures wrapping ErrChannelMisconfigured: the channel cannot succeed for
// any recipient, so it propagates distinctly instead of masquerading as an
// ordinary delivery failure.
type Dispatcher interface {
	// Method identifies the channel this dispatcher serves.
	Method() DeliveryMethod

	// Send delivers to a single target.
	Send(ctx context.Context, target Target, content Content, opts SendOptions) (DeliveryResult, error)

	// SendBulk delivers to many targets, returning one result per target in
	// submission order. One recipient's failure never aborts the others.
	SendBulk(ctx context.Context, targets []Target, content Content, opts SendOptions) ([]DeliveryResult, error)

	// SendDigest delivers one consolidated message covering the queued items.
	SendDigest(ctx context.Context, target Target, items []DigestItem) (DeliveryResult, error)
}

// SuccessResult builds a successful DeliveryResult for the given channel.
func SuccessResult(method DeliveryMethod, at time.Time, metadata map[string]any) DeliveryResult {
	return DeliveryResult{
		Method:    method,
		Success:   true,
		Timestamp: at,
		Metadata:  metadata,
	}
}

// FailedResult builds a failed DeliveryResult with a descriptive reason.
func FailedResult(method DeliveryMethod, at time.Time, reason string) DeliveryResult {
	return DeliveryResult{
		Method:    method,
		Success:   false,
		Timestamp: at,
		Error:     reason,
	}
}
