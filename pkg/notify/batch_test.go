package notify_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbillhq/notifykit/pkg/notify"
)

func makeTargets(n int) []notify.Target {
	targets := make([]notify.Target, n)
	for i := range targets {
		targets[i] = notify.Target{UserID: fmt.Sprintf("user-%03d", i)}
	}
	return targets
}

// sleepRecorder counts inter-batch delays without sleeping.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func TestBatcher_Run(t *testing.T) {
	t.Parallel()

	t.Run("partitions into fixed batches with delay between", func(t *testing.T) {
		t.Parallel()

		rec := &sleepRecorder{}
		b := notify.NewBatcher(50, 250*time.Millisecond, notify.WithBatchSleep(rec.sleep))
		targets := makeTargets(125)

		var mu sync.Mutex
		sent := make(map[string]bool)
		results := b.Run(context.Background(), notify.MethodEmail, targets, func(ctx context.Context, tgt notify.Target) notify.DeliveryResult {
			mu.Lock()
			sent[tgt.UserID] = true
			mu.Unlock()
			return notify.SuccessResult(notify.MethodEmail, time.Now(), nil)
		})

		require.Len(t, results, 125)
		assert.Len(t, sent, 125)
		for _, res := range results {
			assert.True(t, res.Success)
		}

		// 125 targets at batch size 50 form 3 batches, so exactly 2 pauses
		// and never one after the final batch.
		require.Len(t, rec.delays, 2)
		for _, d := range rec.delays {
			assert.Equal(t, 250*time.Millisecond, d)
		}
	})

	t.Run("exact multiple has no trailing delay", func(t *testing.T) {
		t.Parallel()

		rec := &sleepRecorder{}
		b := notify.NewBatcher(10, time.Second, notify.WithBatchSleep(rec.sleep))

		results := b.Run(context.Background(), notify.MethodSMS, makeTargets(20), func(ctx context.Context, tgt notify.Target) notify.DeliveryResult {
			return notify.SuccessResult(notify.MethodSMS, time.Now(), nil)
		})

		assert.Len(t, results, 20)
		assert.Len(t, rec.delays, 1)
	})

	t.Run("single batch never sleeps", func(t *testing.T) {
		t.Parallel()

		rec := &sleepRecorder{}
		b := notify.NewBatcher(50, time.Second, notify.WithBatchSleep(rec.sleep))

		results := b.Run(context.Background(), notify.MethodInApp, makeTargets(7), func(ctx context.Context, tgt notify.Target) notify.DeliveryResult {
			return notify.SuccessResult(notify.MethodInApp, time.Now(), nil)
		})

		assert.Len(t, results, 7)
		assert.Empty(t, rec.delays)
	})

	t.Run("results stay aligned with submission order", func(t *testing.T) {
		t.Parallel()

		b := notify.NewBatcher(3, 0, notify.WithBatchSleep(func(ctx context.Context, d time.Duration) error { return nil }))
		targets := makeTargets(8)

		results := b.Run(context.Background(), notify.MethodEmail, targets, func(ctx context.Context, tgt notify.Target) notify.DeliveryResult {
			return notify.SuccessResult(notify.MethodEmail, time.Now(), map[string]any{"user": tgt.UserID})
		})

		require.Len(t, results, 8)
		for i, res := range results {
			assert.Equal(t, targets[i].UserID, res.Metadata["user"])
		}
	})

	t.Run("per-target failures do not stop the run", func(t *testing.T) {
		t.Parallel()

		b := notify.NewBatcher(5, 0, notify.WithBatchSleep(func(ctx context.Context, d time.Duration) error { return nil }))

		results := b.Run(context.Background(), notify.MethodEmail, makeTargets(10), func(ctx context.Context, tgt notify.Target) notify.DeliveryResult {
			if tgt.UserID == "user-003" {
				return notify.FailedResult(notify.MethodEmail, time.Now(), "mailbox full")
			}
			return notify.SuccessResult(notify.MethodEmail, time.Now(), nil)
		})

		require.Len(t, results, 10)
		failed := 0
		for _, res := range results {
			if !res.Success {
				failed++
				assert.Equal(t, "mailbox full", res.Error)
			}
		}
		assert.Equal(t, 1, failed)
	})

	t.Run("cancellation fails remaining targets", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		b := notify.NewBatcher(10, time.Millisecond, notify.WithBatchSleep(func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		}))

		results := b.Run(ctx, notify.MethodSMS, makeTargets(30), func(ctx context.Context, tgt notify.Target) notify.DeliveryResult {
			return notify.SuccessResult(notify.MethodSMS, time.Now(), nil)
		})

		// First batch delivered, the rest reported failed rather than
		// silently dropped.
		require.Len(t, results, 30)
		for i, res := range results {
			if i < 10 {
				assert.True(t, res.Success, "target %d", i)
			} else {
				assert.False(t, res.Success, "target %d", i)
				assert.Contains(t, res.Error, "canceled")
			}
		}
	})
}

func TestBatcher_BatchCount(t *testing.T) {
	t.Parallel()

	b := notify.NewBatcher(50, 0)

	assert.Equal(t, 0, b.BatchCount(0))
	assert.Equal(t, 1, b.BatchCount(1))
	assert.Equal(t, 1, b.BatchCount(50))
	assert.Equal(t, 2, b.BatchCount(51))
	assert.Equal(t, 3, b.BatchCount(125))
}

func TestNewBatcher_Defaults(t *testing.T) {
	t.Parallel()

	b := notify.NewBatcher(0, -time.Second)
	assert.Equal(t, 1, b.BatchCount(notify.DefaultBatchSize))
	assert.Equal(t, 2, b.BatchCount(notify.DefaultBatchSize+1))
}
