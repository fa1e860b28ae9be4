package inapp

import (
	"container/list"
	"context"
	"log/slog"
	"sync"

	"github.com/medbillhq/notifykit/pkg/logger"
)

const (
	defaultFeedBuffer   = 16
	defaultMaxFeedUsers = 10000
)

// Feed fans persisted notifications out to live subscribers, typically SSE or
// WebSocket handlers rendering the notification center. Each user gets their
// own subscriber set; slow consumers have messages dropped rather than
// blocking delivery. The number of concurrently subscribed users is bounded:
// past the cap the least recently active user's subscriptions are closed.
type Feed struct {
	mu         sync.Mutex
	users      map[string]*userFeed
	order      *list.List // front = most recently active
	bufferSize int
	maxUsers   int
	logger     *slog.Logger
	closed     bool
}

type userFeed struct {
	userID string
	elem   *list.Element
	subs   map[*FeedSubscription]struct{}
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithFeedLogger sets the logger for the Feed.
func WithFeedLogger(log *slog.Logger) FeedOption {
	return func(f *Feed) {
		if log != nil {
			f.logger = log
		}
	}
}

// WithFeedBuffer sets the per-subscription channel buffer.
func WithFeedBuffer(n int) FeedOption {
	return func(f *Feed) {
		if n > 0 {
			f.bufferSize = n
		}
	}
}

// WithMaxFeedUsers caps how many users may hold live subscriptions at once.
func WithMaxFeedUsers(n int) FeedOption {
	return func(f *Feed) {
		if n > 0 {
			f.maxUsers = n
		}
	}
}

// NewFeed creates an empty feed.
func NewFeed(opts ...FeedOption) *Feed {
	f := &Feed{
		users:      make(map[string]*userFeed),
		order:      list.New(),
		bufferSize: defaultFeedBuffer,
		maxUsers:   defaultMaxFeedUsers,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// FeedSubscription is one live listener for a single user's notifications.
type FeedSubscription struct {
	feed   *Feed
	user   string
	ch     chan Notification
	closed bool
}

// Notifications returns the channel delivering this user's notifications.
// The channel is closed when the subscription ends.
func (s *FeedSubscription) Notifications() <-chan Notification {
	return s.ch
}

// Close ends the subscription. Safe to call more than once.
func (s *FeedSubscription) Close() {
	s.feed.unsubscribe(s)
}

// Subscribe registers a live listener for the user. The subscription is
// closed automatically when ctx is cancelled.
func (f *Feed) Subscribe(ctx context.Context, userID string) *FeedSubscription {
	sub := &FeedSubscription{
		feed: f,
		user: userID,
		ch:   make(chan Notification, f.bufferSize),
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		sub.closed = true
		close(sub.ch)
		return sub
	}

	u, ok := f.users[userID]
	if !ok {
		u = &userFeed{userID: userID, subs: make(map[*FeedSubscription]struct{})}
		u.elem = f.order.PushFront(u)
		f.users[userID] = u
		f.evictLocked()
	} else {
		f.order.MoveToFront(u.elem)
	}
	u.subs[sub] = struct{}{}
	f.mu.Unlock()

	if ctx != nil {
		go func() {
			<-ctx.Done()
			sub.Close()
		}()
	}

	return sub
}

// Publish delivers the notification to the user's live subscribers, if any.
// Subscribers whose buffer is full miss the message; they are expected to
// reconcile from storage on reconnect.
func (f *Feed) Publish(ctx context.Context, notif Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	u, ok := f.users[notif.UserID]
	if !ok {
		return
	}
	f.order.MoveToFront(u.elem)

	dropped := 0
	for sub := range u.subs {
		select {
		case sub.ch <- notif:
		default:
			dropped++
		}
	}

	if dropped > 0 {
		f.logger.LogAttrs(ctx, slog.LevelWarn, "Dropped live notification for slow subscribers",
			logger.UserID(notif.UserID),
			slog.Int("dropped", dropped),
		)
	}
}

// SubscriberCount returns the number of live subscriptions for the user.
func (f *Feed) SubscriberCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return 0
	}
	return len(u.subs)
}

// Close shuts the feed down and closes every subscription.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true

	for _, u := range f.users {
		for sub := range u.subs {
			if !sub.closed {
				sub.closed = true
				close(sub.ch)
			}
		}
	}
	f.users = make(map[string]*userFeed)
	f.order.Init()
}

func (f *Feed) unsubscribe(sub *FeedSubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)

	u, ok := f.users[sub.user]
	if !ok {
		return
	}
	delete(u.subs, sub)
	if len(u.subs) == 0 {
		f.order.Remove(u.elem)
		delete(f.users, sub.user)
	}
}

// evictLocked closes the least recently active user's subscriptions when the
// user cap is exceeded. Caller holds f.mu.
func (f *Feed) evictLocked() {
	for len(f.users) > f.maxUsers {
		back := f.order.Back()
		if back == nil {
			return
		}
		u := back.Value.(*userFeed)

		for sub := range u.subs {
			if !sub.closed {
				sub.closed = true
				close(sub.ch)
			}
		}
		f.order.Remove(u.elem)
		delete(f.users, u.userID)

		f.logger.LogAttrs(context.Background(), slog.LevelInfo, "Evicted least recently active feed user",
			logger.UserID(u.userID),
		)
	}
}
