package sms

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/medbillhq/notifykit/pkg/logger"
	"github.com/medbillhq/notifykit/pkg/notify"
)

// maxMessageRunes keeps consolidated texts within a small number of GSM
// segments; longer content belongs in email or in-app.
const maxMessageRunes = 450

// Dispatcher adapts a Sender to the engine's delivery contract. Numbers are
// validated before any gateway call, bulk sends go through the batch
// coordinator, and per-recipient gateway failures become failed
// DeliveryResults.
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

// NewDispatcher creates an SMS dispatcher over the given sender.
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

func (d *Dispatcher) Method() notify.DeliveryMethod { return notify.MethodSMS }

func (d *Dispatcher) Send(ctx context.Context, target notify.Target, content notify.Content, opts notify.SendOptions) (notify.DeliveryResult, error) {
	if d.sender == nil {
		return notify.FailedResult(notify.MethodSMS, time.Now(), "sms sender not configured"),
			fmt.Errorf("%w: sms sender is nil", notify.ErrChannelMisconfigured)
	}
	if !ValidNumber(target.Address) {
		return notify.FailedResult(notify.MethodSMS, time.Now(), "invalid phone number"), nil
	}

	return d.deliver(ctx, target, messageText(content), opts.Type.String()), nil
}

func (d *Dispatcher) SendBulk(ctx context.Context, targets []notify.Target, content notify.Content, opts notify.SendOptions) ([]notify.DeliveryResult, error) {
	if d.sender == nil {
		return nil, fmt.Errorf("%w: sms sender is nil", notify.ErrChannelMisconfigured)
	}

	text := messageText(content)
	results := make([]notify.DeliveryResult, len(targets))

	// Malformed numbers never reach the gateway; they fail immediately.
	valid := make([]notify.Target, 0, len(targets))
	validIdx := make([]int, 0, len(targets))
	for i, t := range targets {
		if !ValidNumber(t.Address) {
			results[i] = notify.FailedResult(notify.MethodSMS, time.Now(), "invalid phone number: "+t.Address)
			continue
		}
		valid = append(valid, t)
		validIdx = append(validIdx, i)
	}

	sent := d.batcher.Run(ctx, notify.MethodSMS, valid, func(ctx context.Context, t notify.Target) notify.DeliveryResult {
		return d.deliver(ctx, t, text, opts.Type.String())
	})
	for i, res := range sent {
		results[validIdx[i]] = res
	}

	return results, nil
}

// SendDigest delivers one summary text covering the queued items.
func (d *Dispatcher) SendDigest(ctx context.Context, target notify.Target, items []notify.DigestItem) (notify.DeliveryResult, error) {
	if d.sender == nil {
		return notify.FailedResult(notify.MethodSMS, time.Now(), "sms sender not configured"),
			fmt.Errorf("%w: sms sender is nil", notify.ErrChannelMisconfigured)
	}
	if len(items) == 0 {
		return notify.FailedResult(notify.MethodSMS, time.Now(), "empty digest"), nil
	}
	if !ValidNumber(target.Address) {
		return notify.FailedResult(notify.MethodSMS, time.Now(), "invalid phone number"), nil
	}

	text := fmt.Sprintf("You have %d billing updates: ", len(items))
	for i, item := range items {
		if i > 0 {
			text += "; "
		}
		text += item.Content.Title
	}
	return d.deliver(ctx, target, truncate(text), "digest"), nil
}

func (d *Dispatcher) deliver(ctx context.Context, target notify.Target, text, tag string) notify.DeliveryResult {
	now := time.Now()
	err := d.sender.SendSMS(ctx, SendSMSParams{
		SendTo:  target.Address,
		Message: text,
		Tag:     tag,
	})
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelWarn, "SMS delivery failed",
			logger.UserID(target.UserID),
			logger.Error(err),
		)
		return notify.FailedResult(notify.MethodSMS, now, err.Error())
	}

	return notify.SuccessResult(notify.MethodSMS, now, map[string]any{"number": NormalizePhone(target.Address)})
}

// messageText flattens content into a single text suitable for SMS.
func messageText(content notify.Content) string {
	text := content.Title
	if content.Message != "" {
		text += ": " + content.Message
	}
	return truncate(text)
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxMessageRunes-1]) + "…"
}
