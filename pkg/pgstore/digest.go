package pgstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/medbillhq/notifykit/pkg/notify"
)

// Enqueue implements notify.DigestStorage.
func (s *Store) Enqueue(ctx context.Context, item notify.DigestItem) error {
	content, err := json.Marshal(item.Content)
	if err != nil {
		return fmt.Errorf("pgstore: encode digest content: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO digest_items
		   (id, user_id, type, severity, content, method, frequency, queued_at, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.UserID, item.Type.String(), item.Severity.String(),
		content, item.Method.String(), item.Frequency, item.QueuedAt, item.SentAt,
	)
	if err != nil {
		return fmt.Errorf("pgstore: insert digest item: %w", err)
	}

	return nil
}

// ListPending implements notify.DigestStorage, returning unsent items for the
// frequency oldest first so flush grouping preserves queue order.
func (s *Store) ListPending(ctx context.Context, freq notify.Frequency) ([]notify.DigestItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, type, severity, content, method, frequency, queued_at, sent_at
		 FROM digest_items
		 WHERE frequency = $1 AND sent_at IS NULL
		 ORDER BY queued_at`,
		string(freq),
	)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list pending digest items: %w", err)
	}
	defer rows.Close()

	var out []notify.DigestItem
	for rows.Next() {
		var (
			item         notify.DigestItem
			typeName     string
			severityName string
			methodName   string
			content      []byte
		)
		if err := rows.Scan(
			&item.ID, &item.UserID, &typeName, &severityName,
			&content, &methodName, &item.Frequency, &item.QueuedAt, &item.SentAt,
		); err != nil {
			return nil, fmt.Errorf("pgstore: scan digest item: %w", err)
		}

		if err := item.Type.UnmarshalText([]byte(typeName)); err != nil {
			return nil, fmt.Errorf("pgstore: scan digest item: %w", err)
		}
		if err := item.Severity.UnmarshalText([]byte(severityName)); err != nil {
			return nil, fmt.Errorf("pgstore: scan digest item: %w", err)
		}
		if err := item.Method.UnmarshalText([]byte(methodName)); err != nil {
			return nil, fmt.Errorf("pgstore: scan digest item: %w", err)
		}
		if len(content) > 0 {
			if err := json.Unmarshal(content, &item.Content); err != nil {
				return nil, fmt.Errorf("pgstore: decode digest content: %w", err)
			}
		}

		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: list pending digest items: %w", err)
	}

	return out, nil
}

// MarkSent implements notify.DigestStorage.
func (s *Store) MarkSent(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE digest_items SET sent_at = $2 WHERE id = ANY($1) AND sent_at IS NULL`,
		ids, at,
	); err != nil {
		return fmt.Errorf("pgstore: mark digest items sent: %w", err)
	}

	return nil
}

var _ notify.DigestStorage = (*Store)(nil)
