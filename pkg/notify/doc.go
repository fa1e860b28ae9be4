// Package notify is the multi-channel notification orchestration engine for
// the billing platform. Given an event it decides which users to notify,
// through which channels (in-app, email, SMS), when (respecting per-user
// quiet hours and digest frequencies), and tracks delivery outcomes per
// channel per recipient.
//
// # Architecture
//
// The engine composes four pieces:
//
//   - PreferenceStore: supplies a user's stored preferences, or signals that
//     none exist so the deterministic defaults apply.
//   - QuietHoursSuppressed / EligibleChannels: pure policy functions deciding
//     whether and where a notification goes.
//   - Dispatcher: the per-channel delivery contract; implementations live in
//     the inapp, email, and sms packages and wrap the actual transports.
//   - Manager: orchestrates single and bulk sends, the digest queue, and
//     aggregates per-channel DeliveryResults.
//
// # Policy summary
//
// High and Critical severities are privileged: they force delivery through
// every channel regardless of per-type preferences, and severities listed in
// a user's quiet-hours bypass set are delivered inside the window. Types the
// user never configured fail open to in-app delivery. Quiet hours gate a
// notification as a whole, never per channel.
//
// # Basic usage
//
//	prefs := notify.NewMemoryPreferenceStore()
//	manager := notify.NewManager(prefs, []notify.Dispatcher{
//	    inappDispatcher, emailDispatcher, smsDispatcher,
//	})
//
//	results, err := manager.Send(ctx,
//	    notify.Recipient{UserID: "user-1", Email: "u@clinic.example"},
//	    notify.Content{Title: "Claim approved", Message: "Claim #1042 was approved."},
//	    notify.TypeClaimStatus,
//	    notify.SeverityMedium,
//	)
//
// Every public operation returns result values; per-recipient failures are
// encoded as DeliveryResult entries, never raised. Only collaborator errors
// and configuration-class channel faults (ErrChannelMisconfigured) surface
// through the error return.
//
// # Digests
//
// Non-urgent notifications can accumulate via QueueDigest and are flushed by
// SendDigests, normally driven by a DigestScheduler on daily and weekly cron
// schedules. Items stay pending until a flush delivers them, so a failed run
// retries on the next one.
package notify
