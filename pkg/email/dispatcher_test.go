package email_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbillhq/notifykit/pkg/email"
	"github.com/medbillhq/notifykit/pkg/notify"
)

// recordingSender captures provider calls and fails selected recipients.
type recordingSender struct {
	mu      sync.Mutex
	sent    []email.SendEmailParams
	failFor map[string]error
}

func (s *recordingSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[params.SendTo]; ok {
		return err
	}
	s.sent = append(s.sent, params)
	return nil
}

func (s *recordingSender) sentTo() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	addrs := make([]string, len(s.sent))
	for i, p := range s.sent {
		addrs[i] = p.SendTo
	}
	return addrs
}

func instantBatcher() notify.Batcher {
	return notify.NewBatcher(notify.DefaultBatchSize, 0,
		notify.WithBatchSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }))
}

func TestDispatcher_Send(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	content := notify.Content{
		Title:   "Filing deadline approaching",
		Message: "Claim 4471 must be filed by April 1",
		Actions: []notify.Action{{Label: "Open claim", URL: "https://app.example.com/claims/4471"}},
	}
	opts := notify.SendOptions{Type: notify.TypeFilingDeadline, Severity: notify.SeverityHigh}

	t.Run("renders and delivers", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		d := email.NewDispatcher(sender)

		res, err := d.Send(ctx, notify.Target{UserID: "u1", Address: "biller@clinic.example.com"}, content, opts)

		require.NoError(t, err)
		require.True(t, res.Success)
		assert.Equal(t, notify.MethodEmail, res.Method)
		assert.Equal(t, "biller@clinic.example.com", res.Metadata["address"])

		require.Len(t, sender.sent, 1)
		sent := sender.sent[0]
		assert.Equal(t, content.Title, sent.Subject)
		assert.Equal(t, "filing_deadline", sent.Tag)
		assert.Contains(t, sent.BodyHTML, "Filing deadline approaching")
		assert.Contains(t, sent.BodyHTML, "Claim 4471 must be filed by April 1")
		assert.Contains(t, sent.BodyHTML, "https://app.example.com/claims/4471")
	})

	t.Run("nil sender is a configuration error", func(t *testing.T) {
		t.Parallel()

		d := email.NewDispatcher(nil)
		res, err := d.Send(ctx, notify.Target{UserID: "u1", Address: "a@b.co"}, content, opts)

		require.Error(t, err)
		assert.ErrorIs(t, err, notify.ErrChannelMisconfigured)
		assert.False(t, res.Success)
	})

	t.Run("invalid address fails without provider call", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		d := email.NewDispatcher(sender)

		res, err := d.Send(ctx, notify.Target{UserID: "u1", Address: "not-an-address"}, content, opts)

		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "invalid email address")
		assert.Empty(t, sender.sent)
	})

	t.Run("provider failure becomes a failed result", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{failFor: map[string]error{
			"down@example.com": errors.New("postmark: 500"),
		}}
		d := email.NewDispatcher(sender)

		res, err := d.Send(ctx, notify.Target{UserID: "u1", Address: "down@example.com"}, content, opts)

		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "postmark: 500")
	})
}

func TestDispatcher_SendBulk(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	content := notify.Content{Title: "Maintenance", Message: "Window at midnight"}
	opts := notify.SendOptions{Type: notify.TypeSystemAlert}

	t.Run("mixed outcomes keep positions", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{failFor: map[string]error{
			"bounce@example.com": errors.New("hard bounce"),
		}}
		d := email.NewDispatcher(sender, email.WithBatcher(instantBatcher()))

		targets := []notify.Target{
			{UserID: "a", Address: "a@example.com"},
			{UserID: "b", Address: "malformed"},
			{UserID: "c", Address: "bounce@example.com"},
			{UserID: "d", Address: "d@example.com"},
		}

		results, err := d.SendBulk(ctx, targets, content, opts)

		require.NoError(t, err)
		require.Len(t, results, 4)
		assert.True(t, results[0].Success)
		assert.False(t, results[1].Success)
		assert.Contains(t, results[1].Error, "invalid email address")
		assert.False(t, results[2].Success)
		assert.Contains(t, results[2].Error, "hard bounce")
		assert.True(t, results[3].Success)

		assert.ElementsMatch(t, []string{"a@example.com", "d@example.com"}, sender.sentTo())
	})

	t.Run("nil sender refuses the whole channel", func(t *testing.T) {
		t.Parallel()

		d := email.NewDispatcher(nil)
		_, err := d.SendBulk(ctx, []notify.Target{{UserID: "a", Address: "a@example.com"}}, content, opts)
		assert.ErrorIs(t, err, notify.ErrChannelMisconfigured)
	})
}

func TestDispatcher_SendDigest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	items := []notify.DigestItem{
		{ID: "i1", UserID: "u1", Content: notify.Content{Title: "Payment posted", Message: "$120 from Aetna"}},
		{ID: "i2", UserID: "u1", Content: notify.Content{Title: "Claim denied", Message: "CO-97 on claim 8812"}},
	}

	t.Run("consolidates into one email", func(t *testing.T) {
		t.Parallel()

		sender := &recordingSender{}
		d := email.NewDispatcher(sender)

		res, err := d.SendDigest(ctx, notify.Target{UserID: "u1", Address: "u1@example.com"}, items)

		require.NoError(t, err)
		require.True(t, res.Success)

		require.Len(t, sender.sent, 1)
		sent := sender.sent[0]
		assert.Equal(t, "Your billing updates (2)", sent.Subject)
		assert.Equal(t, "digest", sent.Tag)
		assert.Contains(t, sent.BodyHTML, "Payment posted")
		assert.Contains(t, sent.BodyHTML, "CO-97 on claim 8812")
	})

	t.Run("empty digest fails", func(t *testing.T) {
		t.Parallel()

		d := email.NewDispatcher(&recordingSender{})
		res, err := d.SendDigest(ctx, notify.Target{UserID: "u1", Address: "u1@example.com"}, nil)
		require.NoError(t, err)
		assert.False(t, res.Success)
	})
}
