package notify

import "errors"

var (
	// ErrUnknownType is returned when a notification type name or ordinal is
	// outside the closed enumeration.
	ErrUnknownType = errors.New("notify: unknown notification type")

	// ErrUnknownSeverity is returned for severity values outside the scale.
	ErrUnknownSeverity = errors.New("notify: unknown severity")

	// ErrUnknownMethod is returned for delivery methods outside the closed set.
	ErrUnknownMethod = errors.New("notify: unknown delivery method")

	// ErrNoPreferences signals that a user has no stored preference set.
	// Callers fall back to DefaultPreferences.
	ErrNoPreferences = errors.New("notify: no preferences stored for user")

	// ErrChannelMisconfigured wraps configuration-class dispatch failures
	// (missing provider credentials, unreachable gateway config). These are
	// distinct from per-recipient failures because the channel cannot succeed
	// for anyone.
	ErrChannelMisconfigured = errors.New("notify: delivery channel misconfigured")

	// ErrNoDigestStorage is returned by digest operations when the manager
	// was built without digest storage.
	ErrNoDigestStorage = errors.New("notify: digest storage not configured")

	// ErrNoContactResolver is returned by the digest flush when address
	// resolution is required but no resolver was configured.
	ErrNoContactResolver = errors.New("notify: contact resolver not configured")

	// ErrSchedulerStarted is returned when a digest scheduler is started twice.
	ErrSchedulerStarted = errors.New("notify: digest scheduler already started")
)
