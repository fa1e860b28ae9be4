package notify

import (
	"context"
	"time"

	"github.com/medbillhq/notifykit/pkg/async"
)

const (
	// DefaultBatchSize is the per-batch fan-out width used when a channel
	// does not configure its own.
	DefaultBatchSize = 50

	// DefaultBatchDelay is the pause between consecutive batches.
	DefaultBatchDelay = time.Second
)

// Batcher paces bulk delivery for one channel. Targets are split into
// fixed-size batches; all members of a batch are sent concurrently and the
// whole batch is awaited before the next one starts. A configurable delay
// separates batches (never trailing the final one) so provider rate limits
// are respected.
type Batcher struct {
	size  int
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher)

// WithBatchSleep replaces the inter-batch wait. Tests inject a recorder to
// verify pacing without real sleeps.
func WithBatchSleep(fn func(ctx context.Context, d time.Duration) error) BatcherOption {
	return func(b *Batcher) {
		if fn != nil {
			b.sleep = fn
		}
	}
}

// NewBatcher creates a Batcher. Non-positive size or negative delay fall
// back to the defaults.
func NewBatcher(size int, delay time.Duration, opts ...BatcherOption) Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if delay < 0 {
		delay = DefaultBatchDelay
	}

	b := Batcher{size: size, delay: delay, sleep: sleepContext}

	for _, opt := range opts {
		opt(&b)
	}

	return b
}

// Run sends to every target through send, batch by batch, and returns one
// result per target in submission order. send must encode its own failures
// into the DeliveryResult; Run never drops a target. When the context is
// canceled between batches, the remaining targets are reported as failed
// instead of being silently abandoned.
func (b Batcher) Run(ctx context.Context, method DeliveryMethod, targets []Target, send func(ctx context.Context, target Target) DeliveryResult) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(targets))

	for start := 0; start < len(targets); start += b.size {
		end := min(start+b.size, len(targets))
		batch := targets[start:end]

		if start > 0 {
			if err := b.sleep(ctx, b.delay); err != nil {
				for range targets[start:] {
					results = append(results, FailedResult(method, time.Now(), "bulk send canceled: "+err.Error()))
				}
				return results
			}
		}

		futures := make([]*async.Future[DeliveryResult], len(batch))
		for i, target := range batch {
			futures[i] = async.Async(ctx, target, func(ctx context.Context, t Target) (DeliveryResult, error) {
				return send(ctx, t), nil
			})
		}

		// Awaiting each future in order keeps results aligned with submission.
		for _, f := range futures {
			res, err := f.Await()
			if err != nil {
				// A pre-canceled context short-circuits the future before
				// send runs; surface that as an explicit failure.
				res = FailedResult(method, time.Now(), "bulk send canceled: "+err.Error())
			}
			results = append(results, res)
		}
	}

	return results
}

// BatchCount returns how many batches Run will form for n targets.
func (b Batcher) BatchCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + b.size - 1) / b.size
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
