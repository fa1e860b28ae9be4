package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medbillhq/notifykit/pkg/async"
	"github.com/medbillhq/notifykit/pkg/logger"
)

// Recipient identifies one delivery target plus the addressing hints the
// caller can supply. In-app delivery needs only the user ID; email and SMS
// are silently skipped when their hint is absent.
type Recipient struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// address returns the channel address and whether the required hint is
// present.
func (r Recipient) address(m DeliveryMethod) (string, bool) {
	switch m {
	case MethodInApp:
		return "", r.UserID != ""
	case MethodEmail:
		return r.Email, r.Email != ""
	case MethodSMS:
		return r.Phone, r.Phone != ""
	}
	return "", false
}

// RecipientStatus classifies a bulk recipient's aggregate outcome.
type RecipientStatus string

const (
	// StatusDelivered means at least one channel succeeded.
	StatusDelivered RecipientStatus = "delivered"
	// StatusFailed means every attempted channel failed.
	StatusFailed RecipientStatus = "failed"
	// StatusSkipped means nothing was attempted: suppressed by quiet hours,
	// no eligible channel, or no usable addressing hint. Skipping is a
	// silent no-op, not an error.
	StatusSkipped RecipientStatus = "skipped"
)

// RecipientResult is one bulk recipient's re-joined per-channel outcome.
type RecipientResult struct {
	UserID  string                            `json:"user_id"`
	Status  RecipientStatus                   `json:"status"`
	Error   string                            `json:"error,omitempty"`
	Results map[DeliveryMethod]DeliveryResult `json:"results,omitempty"`
}

// BulkResult aggregates a bulk send. A recipient counts as successful when
// at least one of its channels succeeded.
type BulkResult struct {
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Skipped    int               `json:"skipped"`
	Results    []RecipientResult `json:"results"`
}

// Manager orchestrates notification delivery: it resolves preferences,
// applies quiet hours and channel eligibility, fans out to the per-channel
// dispatchers, and aggregates outcomes. It holds no mutable state beyond
// configuration, so one Manager serves concurrent callers.
type Manager struct {
	prefs       PreferenceStore
	dispatchers [methodCount]Dispatcher
	digests     DigestStorage
	contacts    ContactResolver
	cfg         Config
	logger      *slog.Logger
	now         func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.logger = log
		}
	}
}

// WithConfig replaces the default engine configuration.
func WithConfig(cfg Config) ManagerOption {
	return func(m *Manager) {
		m.cfg = cfg
	}
}

// WithDigestStorage enables the digest queue.
func WithDigestStorage(storage DigestStorage) ManagerOption {
	return func(m *Manager) {
		m.digests = storage
	}
}

// WithContactResolver supplies addresses for digest flushes.
func WithContactResolver(resolver ContactResolver) ManagerOption {
	return func(m *Manager) {
		m.contacts = resolver
	}
}

// WithClock replaces the wall clock, making quiet-hours behavior
// deterministic in tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a notification manager. Channels without a registered
// dispatcher are skipped at dispatch time; registering the same method twice
// keeps the last one.
func NewManager(prefs PreferenceStore, dispatchers []Dispatcher, opts ...ManagerOption) *Manager {
	m := &Manager{
		prefs: prefs,
		cfg: Config{
			BatchSize:             DefaultBatchSize,
			BatchDelay:            DefaultBatchDelay,
			DefaultExpirationDays: 30,
			TypeExpirationDays:    DefaultTypeExpirations(),
		},
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, d := range dispatchers {
		if d != nil && d.Method().Valid() {
			m.dispatchers[d.Method()] = d
		}
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// resolvePreferences loads the user's stored preferences, falling back to
// the deterministic defaults when none exist. The fallback is never
// persisted here; writing preferences belongs to the owning application.
func (m *Manager) resolvePreferences(ctx context.Context, userID string) (Preferences, error) {
	prefs, err := m.prefs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoPreferences) {
			return DefaultPreferences(), nil
		}
		return Preferences{}, fmt.Errorf("load preferences for %s: %w", userID, err)
	}
	return prefs, nil
}

// Send delivers one notification to one recipient through every eligible
// channel for which an addressing hint is present. The returned map holds
// one DeliveryResult per attempted channel.
//
// An unknown recipient and a quiet-hours suppression both yield an empty
// map and a nil error. The error return is reserved for collaborator
// failures and configuration-class channel errors (ErrChannelMisconfigured);
// in the latter case the map still carries the other channels' results.
func (m *Manager) Send(ctx context.Context, rcpt Recipient, content Content, t Type, severity Severity) (map[DeliveryMethod]DeliveryResult, error) {
	results := make(map[DeliveryMethod]DeliveryResult)

	exists, err := m.prefs.UserExists(ctx, rcpt.UserID)
	if err != nil {
		return nil, fmt.Errorf("check recipient %s: %w", rcpt.UserID, err)
	}
	if !exists {
		m.logger.LogAttrs(ctx, slog.LevelInfo, "Skipping notification for unknown recipient",
			logger.UserID(rcpt.UserID),
			logger.NotificationType(t),
		)
		return results, nil
	}

	prefs, err := m.resolvePreferences(ctx, rcpt.UserID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if QuietHoursSuppressed(prefs.QuietHours, severity, now) {
		m.logger.LogAttrs(ctx, slog.LevelDebug, "Notification suppressed by quiet hours",
			logger.UserID(rcpt.UserID),
			logger.NotificationType(t),
			logger.Severity(severity),
		)
		return results, nil
	}

	eligible := EligibleChannels(prefs, t, severity)
	opts := SendOptions{Type: t, Severity: severity, ExpiresAt: m.cfg.expirationFor(t, now)}

	type channelOutcome struct {
		method DeliveryMethod
		result DeliveryResult
		err    error
	}

	var futures []*async.Future[channelOutcome]
	for _, method := range AllDeliveryMethods() {
		if !eligible.Has(method) {
			continue
		}
		d := m.dispatchers[method]
		if d == nil {
			continue
		}
		addr, ok := rcpt.address(method)
		if !ok {
			// Eligible but unaddressable channels are skipped, not failed.
			continue
		}

		target := Target{UserID: rcpt.UserID, Address: addr}
		futures = append(futures, async.Async(ctx, target, func(ctx context.Context, tgt Target) (channelOutcome, error) {
			res, sendErr := d.Send(ctx, tgt, content, opts)
			return channelOutcome{method: d.Method(), result: res, err: sendErr}, nil
		}))
	}

	var dispatchErr error
	for _, f := range futures {
		outcome, waitErr := f.Await()
		if waitErr != nil {
			dispatchErr = errors.Join(dispatchErr, waitErr)
			continue
		}
		if outcome.err != nil {
			// Configuration-class failure: the channel cannot succeed for
			// anyone. Record it and propagate distinctly.
			results[outcome.method] = FailedResult(outcome.method, m.now(), outcome.err.Error())
			dispatchErr = errors.Join(dispatchErr, fmt.Errorf("%s: %w", outcome.method, outcome.err))
			m.logger.LogAttrs(ctx, slog.LevelError, "Channel dispatch failed",
				logger.UserID(rcpt.UserID),
				logger.Method(outcome.method),
				logger.Error(outcome.err),
			)
			continue
		}
		results[outcome.method] = outcome.result
	}

	return results, dispatchErr
}

// SendBulk delivers one notification to many recipients. Preference
// resolution, quiet hours, and eligibility are evaluated per recipient,
// recipients are partitioned per channel, and each populated channel's bulk
// dispatcher runs once. Per-recipient outcomes are re-joined afterwards.
func (m *Manager) SendBulk(ctx context.Context, recipients []Recipient, content Content, t Type, severity Severity) (BulkResult, error) {
	now := m.now()
	opts := SendOptions{Type: t, Severity: severity, ExpiresAt: m.cfg.expirationFor(t, now)}

	entries := make([]RecipientResult, len(recipients))
	channelTargets := [methodCount][]Target{}
	channelIndexes := [methodCount][]int{}

	for i, rcpt := range recipients {
		entries[i] = RecipientResult{
			UserID:  rcpt.UserID,
			Status:  StatusSkipped,
			Results: make(map[DeliveryMethod]DeliveryResult),
		}

		prefs, err := m.resolvePreferences(ctx, rcpt.UserID)
		if err != nil {
			// Isolate resolution failures: one broken preference row must
			// not abort the rest of the batch.
			entries[i].Status = StatusFailed
			entries[i].Error = err.Error()
			m.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to resolve preferences for bulk recipient",
				logger.UserID(rcpt.UserID),
				logger.Error(err),
			)
			continue
		}

		if QuietHoursSuppressed(prefs.QuietHours, severity, now) {
			continue
		}

		eligible := EligibleChannels(prefs, t, severity)
		for _, method := range AllDeliveryMethods() {
			if !eligible.Has(method) || m.dispatchers[method] == nil {
				continue
			}
			addr, ok := rcpt.address(method)
			if !ok {
				continue
			}
			channelTargets[method] = append(channelTargets[method], Target{UserID: rcpt.UserID, Address: addr})
			channelIndexes[method] = append(channelIndexes[method], i)
		}
	}

	type channelOutcome struct {
		method  DeliveryMethod
		results []DeliveryResult
		err     error
	}

	var futures []*async.Future[channelOutcome]
	for _, method := range AllDeliveryMethods() {
		targets := channelTargets[method]
		if len(targets) == 0 {
			continue
		}
		d := m.dispatchers[method]
		futures = append(futures, async.Async(ctx, targets, func(ctx context.Context, tgts []Target) (channelOutcome, error) {
			res, sendErr := d.SendBulk(ctx, tgts, content, opts)
			return channelOutcome{method: d.Method(), results: res, err: sendErr}, nil
		}))
	}

	var dispatchErr error
	for _, f := range futures {
		outcome, waitErr := f.Await()
		if waitErr != nil {
			dispatchErr = errors.Join(dispatchErr, waitErr)
			continue
		}

		indexes := channelIndexes[outcome.method]
		if outcome.err != nil {
			// The whole channel is down: every recipient routed to it gets
			// an explicit failed result.
			dispatchErr = errors.Join(dispatchErr, fmt.Errorf("%s: %w", outcome.method, outcome.err))
			for _, idx := range indexes {
				entries[idx].Results[outcome.method] = FailedResult(outcome.method, m.now(), outcome.err.Error())
			}
			m.logger.LogAttrs(ctx, slog.LevelError, "Bulk channel dispatch failed",
				logger.Method(outcome.method),
				slog.Int("recipients", len(indexes)),
				logger.Error(outcome.err),
			)
			continue
		}

		for i, res := range outcome.results {
			if i >= len(indexes) {
				break
			}
			entries[indexes[i]].Results[outcome.method] = res
		}
	}

	var bulk BulkResult
	bulk.Results = entries
	for i := range entries {
		if len(entries[i].Results) > 0 {
			entries[i].Status = StatusFailed
			for _, res := range entries[i].Results {
				if res.Success {
					entries[i].Status = StatusDelivered
					break
				}
			}
		}

		switch entries[i].Status {
		case StatusDelivered:
			bulk.Successful++
		case StatusFailed:
			bulk.Failed++
		default:
			bulk.Skipped++
		}
	}

	return bulk, dispatchErr
}

// QueueDigest enqueues a notification for periodic consolidated delivery on
// the given channel. It reports false without error when the user's
// preferences do not route that channel through a digest.
func (m *Manager) QueueDigest(ctx context.Context, userID string, content Content, t Type, severity Severity, method DeliveryMethod) (bool, error) {
	if m.digests == nil {
		return false, ErrNoDigestStorage
	}
	if !method.Valid() {
		return false, fmt.Errorf("%w: %d", ErrUnknownMethod, uint8(method))
	}

	prefs, err := m.resolvePreferences(ctx, userID)
	if err != nil {
		return false, err
	}

	mp := prefs.MethodPreference(method)
	if !mp.effectiveEnabled() {
		return false, nil
	}
	freq := mp.EffectiveFrequency()
	if freq == FrequencyRealTime {
		return false, nil
	}

	item := DigestItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      t,
		Severity:  severity,
		Content:   content,
		Method:    method,
		Frequency: freq,
		QueuedAt:  m.now(),
	}

	if err := m.digests.Enqueue(ctx, item); err != nil {
		return false, fmt.Errorf("enqueue digest item: %w", err)
	}

	m.logger.LogAttrs(ctx, slog.LevelDebug, "Queued digest notification",
		logger.UserID(userID),
		logger.Method(method),
		slog.String("frequency", string(freq)),
	)
	return true, nil
}

// SendDigests flushes all pending digest items for one frequency: items are
// grouped by (user, channel), each group is rendered as one consolidated
// send, and delivered groups are marked sent. Failed groups keep their items
// pending so the next run retries them.
func (m *Manager) SendDigests(ctx context.Context, freq Frequency) (DigestStats, error) {
	var stats DigestStats
	if m.digests == nil {
		return stats, ErrNoDigestStorage
	}

	items, err := m.digests.ListPending(ctx, freq)
	if err != nil {
		return stats, fmt.Errorf("list pending digest items: %w", err)
	}
	stats.Processed = len(items)
	if len(items) == 0 {
		return stats, nil
	}

	type groupKey struct {
		userID string
		method DeliveryMethod
	}
	groups := make(map[groupKey][]DigestItem)
	var order []groupKey
	for _, item := range items {
		key := groupKey{userID: item.UserID, method: item.Method}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], item)
	}

	var flushErr error
	for _, key := range order {
		group := groups[key]

		d := m.dispatchers[key.method]
		if d == nil {
			stats.Failed++
			m.logger.LogAttrs(ctx, slog.LevelWarn, "No dispatcher for digest channel",
				logger.UserID(key.userID),
				logger.Method(key.method),
			)
			continue
		}

		target := Target{UserID: key.userID}
		if key.method != MethodInApp {
			if m.contacts == nil {
				stats.Failed++
				flushErr = errors.Join(flushErr, ErrNoContactResolver)
				continue
			}
			addr, addrErr := m.contacts.Address(ctx, key.userID, key.method)
			if addrErr != nil {
				stats.Failed++
				m.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to resolve digest address",
					logger.UserID(key.userID),
					logger.Method(key.method),
					logger.Error(addrErr),
				)
				continue
			}
			if addr == "" {
				// No address on file; leave the items pending in case one
				// appears before the next run.
				stats.Failed++
				continue
			}
			target.Address = addr
		}

		res, sendErr := d.SendDigest(ctx, target, group)
		if sendErr != nil {
			stats.Failed++
			flushErr = errors.Join(flushErr, fmt.Errorf("%s: %w", key.method, sendErr))
			continue
		}
		if !res.Success {
			stats.Failed++
			m.logger.LogAttrs(ctx, slog.LevelWarn, "Digest delivery failed",
				logger.UserID(key.userID),
				logger.Method(key.method),
				slog.String("reason", res.Error),
			)
			continue
		}

		ids := make([]string, len(group))
		for i, item := range group {
			ids[i] = item.ID
		}
		if err := m.digests.MarkSent(ctx, ids, m.now()); err != nil {
			// Delivered but not recorded: surface loudly, the next run will
			// deliver duplicates otherwise.
			flushErr = errors.Join(flushErr, fmt.Errorf("mark digest items sent: %w", err))
		}
		stats.Successful++
	}

	return stats, flushErr
}
