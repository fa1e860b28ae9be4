package inapp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/medbillhq/notifykit/pkg/notify"
)

// Dispatcher delivers notifications by persisting in-app rows. It implements
// notify.Dispatcher; the "transport" is the Storage collaborator.
type Dispatcher struct {
	storage Storage
	batcher notify.Batcher
	feed    *Feed
	logger  *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for the Dispatcher.
func WithDispatcherLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.logger = log
		}
	}
}

// WithBatcher replaces the default bulk pacing.
func WithBatcher(b notify.Batcher) DispatcherOption {
	return func(d *Dispatcher) {
		d.batcher = b
	}
}

// WithFeed publishes stored notifications to the given live feed.
func WithFeed(feed *Feed) DispatcherOption {
	return func(d *Dispatcher) {
		d.feed = feed
	}
}

// NewDispatcher creates an in-app dispatcher over the given storage.
func NewDispatcher(storage Storage, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		storage: storage,
		batcher: notify.NewBatcher(notify.DefaultBatchSize, notify.DefaultBatchDelay),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Dispatcher) Method() notify.DeliveryMethod { return notify.MethodInApp }

func (d *Dispatcher) Send(ctx context.Context, target notify.Target, content notify.Content, opts notify.SendOptions) (notify.DeliveryResult, error) {
	return d.deliver(ctx, target, content, opts), nil
}

func (d *Dispatcher) SendBulk(ctx context.Context, targets []notify.Target, content notify.Content, opts notify.SendOptions) ([]notify.DeliveryResult, error) {
	results := make([]notify.DeliveryResult, len(targets))

	// In-app addressing is the user ID itself; a blank one can never be
	// stored, so it fails before batching.
	valid := make([]notify.Target, 0, len(targets))
	validIdx := make([]int, 0, len(targets))
	for i, t := range targets {
		if t.UserID == "" {
			results[i] = notify.FailedResult(notify.MethodInApp, time.Now(), "missing user id")
			continue
		}
		valid = append(valid, t)
		validIdx = append(validIdx, i)
	}

	sent := d.batcher.Run(ctx, notify.MethodInApp, valid, func(ctx context.Context, t notify.Target) notify.DeliveryResult {
		return d.deliver(ctx, t, content, opts)
	})
	for i, res := range sent {
		results[validIdx[i]] = res
	}

	return results, nil
}

// SendDigest persists one consolidated row summarizing the queued items.
func (d *Dispatcher) SendDigest(ctx context.Context, target notify.Target, items []notify.DigestItem) (notify.DeliveryResult, error) {
	if len(items) == 0 {
		return notify.FailedResult(notify.MethodInApp, time.Now(), "empty digest"), nil
	}

	content := digestContent(items)
	opts := notify.SendOptions{Type: items[0].Type, Severity: highestSeverity(items)}
	return d.deliver(ctx, target, content, opts), nil
}

func (d *Dispatcher) deliver(ctx context.Context, target notify.Target, content notify.Content, opts notify.SendOptions) notify.DeliveryResult {
	now := time.Now()
	notif := Notification{
		ID:        uuid.NewString(),
		UserID:    target.UserID,
		Type:      opts.Type,
		Severity:  opts.Severity,
		Title:     content.Title,
		Message:   content.Message,
		Data:      content.Data,
		Actions:   content.Actions,
		CreatedAt: now,
		ExpiresAt: opts.ExpiresAt,
	}

	if err := d.storage.Create(ctx, notif); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to store in-app notification",
			slog.String("user_id", target.UserID),
			slog.String("error", err.Error()),
		)
		return notify.FailedResult(notify.MethodInApp, now, err.Error())
	}

	if d.feed != nil {
		d.feed.Publish(ctx, notif)
	}

	return notify.SuccessResult(notify.MethodInApp, now, map[string]any{"notification_id": notif.ID})
}

// digestContent consolidates queued items into one notification body.
func digestContent(items []notify.DigestItem) notify.Content {
	title := fmt.Sprintf("You have %d pending updates", len(items))
	if len(items) == 1 {
		title = "You have 1 pending update"
	}

	message := ""
	for i, item := range items {
		if i > 0 {
			message += "\n"
		}
		message += "• " + item.Content.Title
	}

	return notify.Content{
		Title:   title,
		Message: message,
		Data:    map[string]any{"digest_size": len(items)},
	}
}

func highestSeverity(items []notify.DigestItem) notify.Severity {
	highest := notify.SeverityLow
	for _, item := range items {
		if item.Severity > highest {
			highest = item.Severity
		}
	}
	return highest
}
