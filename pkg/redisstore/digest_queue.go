package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medbillhq/notifykit/pkg/notify"
)

// ErrInvalidDigestItem is returned when an enqueued item is missing its ID.
var ErrInvalidDigestItem = errors.New("redisstore: digest item must have an ID")

const defaultKeyPrefix = "notify:digest"

// DigestQueue implements notify.DigestStorage on Redis. Pending items live
// in one hash per frequency keyed by item ID, so enqueue, listing, and
// removal are all single commands. Ordering is reconstructed from each
// item's queue timestamp at read time.
type DigestQueue struct {
	client    redis.UniversalClient
	keyPrefix string
	retention time.Duration
}

// DigestQueueOption configures a DigestQueue.
type DigestQueueOption func(*DigestQueue)

// WithKeyPrefix overrides the key namespace, for deployments sharing a Redis
// instance across environments.
func WithKeyPrefix(prefix string) DigestQueueOption {
	return func(q *DigestQueue) {
		if prefix != "" {
			q.keyPrefix = prefix
		}
	}
}

// WithSentRetention keeps sent items around for the given duration under a
// separate key, for debugging delivery issues. Zero disables retention and
// MarkSent simply deletes.
func WithSentRetention(d time.Duration) DigestQueueOption {
	return func(q *DigestQueue) {
		q.retention = d
	}
}

// NewDigestQueue creates a queue on the given Redis client.
func NewDigestQueue(client redis.UniversalClient, opts ...DigestQueueOption) *DigestQueue {
	q := &DigestQueue{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

func (q *DigestQueue) pendingKey(freq notify.Frequency) string {
	return fmt.Sprintf("%s:pending:%s", q.keyPrefix, freq)
}

func (q *DigestQueue) sentKey(id string) string {
	return fmt.Sprintf("%s:sent:%s", q.keyPrefix, id)
}

// Enqueue implements notify.DigestStorage.
func (q *DigestQueue) Enqueue(ctx context.Context, item notify.DigestItem) error {
	if item.ID == "" {
		return ErrInvalidDigestItem
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("redisstore: encode digest item: %w", err)
	}

	if err := q.client.HSet(ctx, q.pendingKey(item.Frequency), item.ID, raw).Err(); err != nil {
		return fmt.Errorf("redisstore: enqueue digest item: %w", err)
	}

	return nil
}

// ListPending implements notify.DigestStorage. Items come back oldest first.
func (q *DigestQueue) ListPending(ctx context.Context, freq notify.Frequency) ([]notify.DigestItem, error) {
	raw, err := q.client.HGetAll(ctx, q.pendingKey(freq)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: list pending digest items: %w", err)
	}

	items := make([]notify.DigestItem, 0, len(raw))
	for id, val := range raw {
		var item notify.DigestItem
		if err := json.Unmarshal([]byte(val), &item); err != nil {
			return nil, fmt.Errorf("redisstore: decode digest item %s: %w", id, err)
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].QueuedAt.Equal(items[j].QueuedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].QueuedAt.Before(items[j].QueuedAt)
	})

	return items, nil
}

// MarkSent implements notify.DigestStorage. Sent items are removed from
// every frequency hash; with retention enabled a stamped copy is kept under
// its own expiring key.
func (q *DigestQueue) MarkSent(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	for _, freq := range []notify.Frequency{notify.FrequencyDaily, notify.FrequencyWeekly} {
		key := q.pendingKey(freq)

		if q.retention > 0 {
			for _, id := range ids {
				raw, err := q.client.HGet(ctx, key, id).Result()
				if errors.Is(err, redis.Nil) {
					continue
				}
				if err != nil {
					return fmt.Errorf("redisstore: read digest item %s: %w", id, err)
				}

				var item notify.DigestItem
				if err := json.Unmarshal([]byte(raw), &item); err != nil {
					return fmt.Errorf("redisstore: decode digest item %s: %w", id, err)
				}
				sentAt := at
				item.SentAt = &sentAt

				stamped, err := json.Marshal(item)
				if err != nil {
					return fmt.Errorf("redisstore: encode digest item %s: %w", id, err)
				}
				if err := q.client.Set(ctx, q.sentKey(id), stamped, q.retention).Err(); err != nil {
					return fmt.Errorf("redisstore: retain digest item %s: %w", id, err)
				}
			}
		}

		if err := q.client.HDel(ctx, key, ids...).Err(); err != nil {
			return fmt.Errorf("redisstore: remove digest items: %w", err)
		}
	}

	return nil
}

// PendingCount returns the number of queued items for the frequency.
func (q *DigestQueue) PendingCount(ctx context.Context, freq notify.Frequency) (int64, error) {
	n, err := q.client.HLen(ctx, q.pendingKey(freq)).Result()
	if err != nil {
		return 0, fmt.Errorf("redisstore: count pending digest items: %w", err)
	}
	return n, nil
}

var _ notify.DigestStorage = (*DigestQueue)(nil)
