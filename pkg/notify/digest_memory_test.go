package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbillhq/notifykit/pkg/notify"
)

func TestMemoryDigestStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	item := func(id string, freq notify.Frequency) notify.DigestItem {
		return notify.DigestItem{
			ID:        id,
			UserID:    "user-1",
			Type:      notify.TypePaymentReceived,
			Severity:  notify.SeverityLow,
			Method:    notify.MethodEmail,
			Frequency: freq,
			QueuedAt:  time.Now(),
		}
	}

	t.Run("pending filters by frequency and sent state", func(t *testing.T) {
		t.Parallel()

		s := notify.NewMemoryDigestStorage()
		require.NoError(t, s.Enqueue(ctx, item("d1", notify.FrequencyDaily)))
		require.NoError(t, s.Enqueue(ctx, item("d2", notify.FrequencyDaily)))
		require.NoError(t, s.Enqueue(ctx, item("w1", notify.FrequencyWeekly)))

		daily, err := s.ListPending(ctx, notify.FrequencyDaily)
		require.NoError(t, err)
		require.Len(t, daily, 2)
		assert.Equal(t, "d1", daily[0].ID)
		assert.Equal(t, "d2", daily[1].ID)

		weekly, err := s.ListPending(ctx, notify.FrequencyWeekly)
		require.NoError(t, err)
		assert.Len(t, weekly, 1)
	})

	t.Run("mark sent removes from pending but not from storage", func(t *testing.T) {
		t.Parallel()

		s := notify.NewMemoryDigestStorage()
		require.NoError(t, s.Enqueue(ctx, item("d1", notify.FrequencyDaily)))
		require.NoError(t, s.Enqueue(ctx, item("d2", notify.FrequencyDaily)))

		sentAt := time.Now()
		require.NoError(t, s.MarkSent(ctx, []string{"d1"}, sentAt))

		pending, err := s.ListPending(ctx, notify.FrequencyDaily)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "d2", pending[0].ID)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("mark sent ignores unknown ids", func(t *testing.T) {
		t.Parallel()

		s := notify.NewMemoryDigestStorage()
		require.NoError(t, s.Enqueue(ctx, item("d1", notify.FrequencyDaily)))
		require.NoError(t, s.MarkSent(ctx, []string{"nope"}, time.Now()))

		pending, err := s.ListPending(ctx, notify.FrequencyDaily)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})
}

func TestMemoryPreferenceStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown user has no preferences", func(t *testing.T) {
		t.Parallel()

		s := notify.NewMemoryPreferenceStore()

		exists, err := s.UserExists(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = s.Get(ctx, "nobody")
		assert.ErrorIs(t, err, notify.ErrNoPreferences)
	})

	t.Run("added user exists without stored preferences", func(t *testing.T) {
		t.Parallel()

		s := notify.NewMemoryPreferenceStore()
		s.AddUser("user-1")

		exists, err := s.UserExists(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, exists)

		_, err = s.Get(ctx, "user-1")
		assert.ErrorIs(t, err, notify.ErrNoPreferences)
	})

	t.Run("set stores and registers the user", func(t *testing.T) {
		t.Parallel()

		s := notify.NewMemoryPreferenceStore()
		prefs := notify.DefaultPreferences()
		prefs.QuietHours.Enabled = true
		s.Set("user-1", prefs)

		exists, err := s.UserExists(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, exists)

		got, err := s.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, prefs, got)
	})
}
