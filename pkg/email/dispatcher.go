package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medbillhq/notifykit/pkg/logger"
	"github.com/medbillhq/notifykit/pkg/notify"
)

// Dispatcher adapts a Sender to the engine's delivery contract. It validates
// addresses before any provider call, paces bulk sends through the batch
// coordinator, and converts per-recipient transport failures into failed
// DeliveryResults. Configuration-class sender errors propagate wrapped in
// notify.ErrChannelMisconfigured.
type Dispatcher struct {
	sender  Sender
	batcher notify.Batcher
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

// NewDispatcher creates an email dispatcher over the given sender.
func NewDispatcher(sender Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		batcher: notify.NewBatcher(notify.DefaultBatchSize, notify.DefaultBatchDelay),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Dispatcher) Method() notify.DeliveryMethod { return notify.MethodEmail }

func (d *Dispatcher) Send(ctx context.Context, target notify.Target, content notify.Content, opts notify.SendOptions) (notify.DeliveryResult, error) {
	if d.sender == nil {
		return notify.FailedResult(notify.MethodEmail, time.Now(), "email sender not configured"),
			fmt.Errorf("%w: email sender is nil", notify.ErrChannelMisconfigured)
	}
	if !ValidAddress(target.Address) {
		return notify.FailedResult(notify.MethodEmail, time.Now(), "invalid email address"), nil
	}

	body, err := renderNotification(content)
	if err != nil {
		return notify.FailedResult(notify.MethodEmail, time.Now(), err.Error()), nil
	}

	return d.deliver(ctx, target, SendEmailParams{
		SendTo:   target.Address,
		Subject:  content.Title,
		BodyHTML: body,
		Tag:      opts.Type.String(),
	}), nil
}

func (d *Dispatcher) SendBulk(ctx context.Context, targets []notify.Target, content notify.Content, opts notify.SendOptions) ([]notify.DeliveryResult, error) {
	if d.sender == nil {
		return nil, fmt.Errorf("%w: email sender is nil", notify.ErrChannelMisconfigured)
	}

	body, err := renderNotification(content)
	if err != nil {
		// A body that cannot render fails for everyone, same as bad config.
		return nil, fmt.Errorf("%w: %v", notify.ErrChannelMisconfigured, err)
	}

	results := make([]notify.DeliveryResult, len(targets))

	// Malformed addresses never reach the provider; they fail immediately.
	valid := make([]notify.Target, 0, len(targets))
	validIdx := make([]int, 0, len(targets))
	for i, t := range targets {
		if !ValidAddress(t.Address) {
			results[i] = notify.FailedResult(notify.MethodEmail, time.Now(), "invalid email address: "+t.Address)
			continue
		}
		valid = append(valid, t)
		validIdx = append(validIdx, i)
	}

	sent := d.batcher.Run(ctx, notify.MethodEmail, valid, func(ctx context.Context, t notify.Target) notify.DeliveryResult {
		return d.deliver(ctx, t, SendEmailParams{
			SendTo:   t.Address,
			Subject:  content.Title,
			BodyHTML: body,
			Tag:      opts.Type.String(),
		})
	})
	for i, res := range sent {
		results[validIdx[i]] = res
	}

	return results, nil
}

// SendDigest delivers one consolidated email covering the queued items.
func (d *Dispatcher) SendDigest(ctx context.Context, target notify.Target, items []notify.DigestItem) (notify.DeliveryResult, error) {
	if d.sender == nil {
		return notify.FailedResult(notify.MethodEmail, time.Now(), "email sender not configured"),
			fmt.Errorf("%w: email sender is nil", notify.ErrChannelMisconfigured)
	}
	if len(items) == 0 {
		return notify.FailedResult(notify.MethodEmail, time.Now(), "empty digest"), nil
	}
	if !ValidAddress(target.Address) {
		return notify.FailedResult(notify.MethodEmail, time.Now(), "invalid email address"), nil
	}

	body, err := renderDigest(items)
	if err != nil {
		return notify.FailedResult(notify.MethodEmail, time.Now(), err.Error()), nil
	}

	subject := fmt.Sprintf("Your billing updates (%d)", len(items))
	return d.deliver(ctx, target, SendEmailParams{
		SendTo:   target.Address,
		Subject:  subject,
		BodyHTML: body,
		Tag:      "digest",
	}), nil
}

// deliver performs one provider call, folding the outcome into a
// DeliveryResult. Invalid-config errors from the sender are reported in the
// result as well; the caller paths that can refuse the whole channel do so
// before reaching here.
func (d *Dispatcher) deliver(ctx context.Context, target notify.Target, params SendEmailParams) notify.DeliveryResult {
	now := time.Now()
	if err := d.sender.SendEmail(ctx, params); err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "Email delivery failed",
			logger.UserID(target.UserID),
			logger.Error(err),
		)
		reason := err.Error()
		if errors.Is(err, ErrInvalidParams) {
			reason = "invalid email parameters: " + reason
		}
		return notify.FailedResult(notify.MethodEmail, now, reason)
	}

	return notify.SuccessResult(notify.MethodEmail, now, map[string]any{"address": target.Address})
}
