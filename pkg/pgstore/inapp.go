package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medbillhq/notifykit/pkg/inapp"
	"github.com/medbillhq/notifykit/pkg/notify"
	"github.com/medbillhq/notifykit/pkg/pg"
)

// Create implements inapp.Storage.
func (s *Store) Create(ctx context.Context, notif inapp.Notification) error {
	data, err := json.Marshal(notif.Data)
	if err != nil {
		return fmt.Errorf("pgstore: encode notification data: %w", err)
	}
	actions, err := json.Marshal(notif.Actions)
	if err != nil {
		return fmt.Errorf("pgstore: encode notification actions: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO inapp_notifications
		   (id, user_id, type, severity, title, message, data, actions, read, read_at, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		notif.ID, notif.UserID, notif.Type.String(), notif.Severity.String(),
		notif.Title, notif.Message, data, actions,
		notif.Read, notif.ReadAt, notif.CreatedAt, notif.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("pgstore: insert notification: %w", err)
	}

	return nil
}

// Get implements inapp.Storage.
func (s *Store) Get(ctx context.Context, userID, notifID string) (*inapp.Notification, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, type, severity, title, message, data, actions, read, read_at, created_at, expires_at
		 FROM inapp_notifications
		 WHERE user_id = $1 AND id = $2`,
		userID, notifID,
	)

	notif, err := scanNotification(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, inapp.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("pgstore: query notification: %w", err)
	}

	return notif, nil
}

// List implements inapp.Storage. Results are ordered newest first, matching
// the notification center's presentation.
func (s *Store) List(ctx context.Context, userID string, opts inapp.ListOptions) ([]inapp.Notification, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, user_id, type, severity, title, message, data, actions, read, read_at, created_at, expires_at
		 FROM inapp_notifications
		 WHERE user_id = $1`)
	args := []any{userID}

	if opts.OnlyUnread {
		sb.WriteString(` AND NOT read`)
	}
	if len(opts.Types) > 0 {
		names := make([]string, 0, len(opts.Types))
		for _, t := range opts.Types {
			names = append(names, t.String())
		}
		args = append(args, names)
		fmt.Fprintf(&sb, ` AND type = ANY($%d)`, len(args))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		fmt.Fprintf(&sb, ` AND created_at > $%d`, len(args))
	}

	sb.WriteString(` ORDER BY created_at DESC`)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list notifications: %w", err)
	}
	defer rows.Close()

	var out []inapp.Notification
	for rows.Next() {
		notif, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("pgstore: scan notification: %w", err)
		}
		out = append(out, *notif)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: list notifications: %w", err)
	}

	return out, nil
}

// MarkRead implements inapp.Storage. Already-read rows are left untouched so
// the original read timestamp survives repeated calls.
func (s *Store) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE inapp_notifications
		 SET read = TRUE, read_at = now()
		 WHERE user_id = $1 AND id = ANY($2) AND NOT read`,
		userID, notifIDs,
	); err != nil {
		return fmt.Errorf("pgstore: mark read: %w", err)
	}

	return nil
}

// Delete implements inapp.Storage.
func (s *Store) Delete(ctx context.Context, userID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM inapp_notifications WHERE user_id = $1 AND id = ANY($2)`,
		userID, notifIDs,
	); err != nil {
		return fmt.Errorf("pgstore: delete notifications: %w", err)
	}

	return nil
}

// CountUnread implements inapp.Storage. Expired rows are excluded: they no
// longer surface in the notification center.
func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM inapp_notifications
		 WHERE user_id = $1 AND NOT read
		   AND (expires_at IS NULL OR expires_at > now())`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgstore: count unread: %w", err)
	}
	return count, nil
}

// PurgeExpired deletes rows past their expiration. Intended for a periodic
// maintenance job; the read path already filters expired rows.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM inapp_notifications WHERE expires_at IS NOT NULL AND expires_at <= now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("pgstore: purge expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*inapp.Notification, error) {
	var (
		notif          inapp.Notification
		typeName       string
		severityName   string
		data, actions  []byte
	)

	err := row.Scan(
		&notif.ID, &notif.UserID, &typeName, &severityName,
		&notif.Title, &notif.Message, &data, &actions,
		&notif.Read, &notif.ReadAt, &notif.CreatedAt, &notif.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	if err := notif.Type.UnmarshalText([]byte(typeName)); err != nil {
		return nil, err
	}
	if err := notif.Severity.UnmarshalText([]byte(severityName)); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &notif.Data); err != nil {
			return nil, err
		}
	}
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &notif.Actions); err != nil {
			return nil, err
		}
	}

	return &notif, nil
}

var _ notify.PreferenceStore = (*Store)(nil)
var _ inapp.Storage = (*Store)(nil)
