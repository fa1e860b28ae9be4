package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medbillhq/notifykit/pkg/notify"
	"github.com/medbillhq/notifykit/pkg/pg"
)

// Get implements notify.PreferenceStore. Preferences are stored as a single
// JSONB document per user; a missing row maps to notify.ErrNoPreferences so
// the engine falls back to defaults.
func (s *Store) Get(ctx context.Context, userID string) (notify.Preferences, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT prefs FROM notification_preferences WHERE user_id = $1`,
		userID,
	).Scan(&raw)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return notify.Preferences{}, notify.ErrNoPreferences
		}
		return notify.Preferences{}, fmt.Errorf("pgstore: query preferences: %w", err)
	}

	var prefs notify.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return notify.Preferences{}, fmt.Errorf("pgstore: decode preferences: %w", err)
	}

	return prefs, nil
}

// SetPreferences upserts the user's preference document. The engine itself
// never calls this; it exists for the owning application's settings surface.
func (s *Store) SetPreferences(ctx context.Context, userID string, prefs notify.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("pgstore: encode preferences: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO notification_preferences (user_id, prefs, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET prefs = EXCLUDED.prefs, updated_at = now()`,
		userID, raw,
	)
	if err != nil {
		return fmt.Errorf("pgstore: upsert preferences: %w", err)
	}

	return nil
}

// DeletePreferences removes the user's stored document, reverting them to
// default behavior.
func (s *Store) DeletePreferences(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM notification_preferences WHERE user_id = $1`,
		userID,
	); err != nil {
		return fmt.Errorf("pgstore: delete preferences: %w", err)
	}
	return nil
}

// UserExists implements notify.PreferenceStore against the application's
// users table; see WithUserExistsQuery.
func (s *Store) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, s.userExistsQuery, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgstore: query user existence: %w", err)
	}
	return exists, nil
}
